package invoke

import (
	"errors"
	"fmt"

	"github.com/danpilch/cuprof/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// Tracer receives a trace line for every profiling syscall. The step is
// "start", "end", or "unmatched-end" for an end that closed no section.
type Tracer interface {
	Log(scope, step, detail string)
}

// Context is the execution context of one instruction. It is created when the
// instruction starts and discarded after Complete; it is not safe for
// concurrent use.
type Context struct {
	name      string
	meter     *ComputeMeter
	logs      *LogCollector
	profiling *profiling.State
	logger    *logrus.Logger
	tracer    Tracer
	logLimit  int
}

// Option configures a Context.
type Option func(*Context)

// WithLogger sets the logger used for host-side warnings.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Context) { c.logger = l }
}

// WithTracer attaches a per-syscall tracer.
func WithTracer(t Tracer) Option {
	return func(c *Context) { c.tracer = t }
}

// WithLogLimit bounds the instruction log to n bytes.
func WithLogLimit(n int) Option {
	return func(c *Context) { c.logLimit = n }
}

// WithoutProfiling turns the profiling syscalls into no-ops.
func WithoutProfiling() Option {
	return func(c *Context) { c.profiling = nil }
}

// NewContext starts an instruction with the given compute budget.
func NewContext(name string, budget uint64, opts ...Option) *Context {
	c := &Context{
		name:      name,
		meter:     NewComputeMeter(budget),
		profiling: profiling.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logrus.New()
		c.logger.SetLevel(logrus.WarnLevel)
	}
	c.logs = NewLogCollector(c.logLimit)
	return c
}

// Name returns the instruction name.
func (c *Context) Name() string {
	return c.name
}

// Remaining returns the compute units left.
func (c *Context) Remaining() uint64 {
	return c.meter.Remaining()
}

// Logs returns the instruction log.
func (c *Context) Logs() []string {
	return c.logs.Messages()
}

// Consume charges compute units for work done by the instruction.
func (c *Context) Consume(units uint64) error {
	return c.meter.Consume(units)
}

// ProfileStart opens a profiling section named by the string at idAddr.
// It costs no compute units.
func (c *Context) ProfileStart(mem Memory, idAddr, idLen, heap uint64) error {
	remaining := c.meter.Remaining()
	id, err := mem.TranslateString(idAddr, idLen)
	if err != nil {
		return fmt.Errorf("cannot translate section id: %w", err)
	}
	c.trace("start", id, remaining, heap)
	if c.profiling != nil {
		c.profiling.Start(id, remaining, heap)
	}
	return nil
}

// ProfileEnd closes the most recent section named by the string at idAddr.
// Profiling errors are written to the instruction log and never fail the
// call; only a bad id address does. It costs no compute units.
func (c *Context) ProfileEnd(mem Memory, idAddr, idLen, heap uint64) error {
	remaining := c.meter.Remaining()
	id, err := mem.TranslateString(idAddr, idLen)
	if err != nil {
		return fmt.Errorf("cannot translate section id: %w", err)
	}
	if c.profiling == nil {
		c.trace("end", id, remaining, heap)
		return nil
	}
	err = c.profiling.End(id, remaining, heap)
	if errors.Is(err, profiling.ErrUnmatchedEnd) {
		c.trace("unmatched-end", id, remaining, heap)
	} else {
		c.trace("end", id, remaining, heap)
	}
	if err != nil {
		c.logs.Log(fmt.Sprintf("Profiling error: %v", err))
		c.logger.WithFields(logrus.Fields{
			"instruction": c.name,
			"section":     id,
			"error":       err,
		}).Debug("Profiling section end rejected")
	}
	return nil
}

// LogComputeUnits logs the remaining compute units.
func (c *Context) LogComputeUnits() error {
	if err := c.meter.Consume(SyscallBaseCost); err != nil {
		return err
	}
	c.logs.Log(fmt.Sprintf("Program consumption: %d units remaining", c.meter.Remaining()))
	return nil
}

// ProgramLog writes a program message, charging at least SyscallBaseCost.
func (c *Context) ProgramLog(msg string) error {
	cost := SyscallBaseCost
	if n := uint64(len(msg)); n > cost {
		cost = n
	}
	if err := c.meter.Consume(cost); err != nil {
		return err
	}
	c.logs.Log("Program log: " + msg)
	return nil
}

// Complete ends the instruction: it finalizes the profile, writes its records
// to the instruction log and returns it. Sections left open are dropped with
// a warning.
func (c *Context) Complete() *profiling.Report {
	if c.profiling == nil {
		return &profiling.Report{}
	}
	report := c.profiling.FlushReport()
	for _, line := range report.Lines() {
		c.logs.Log(line)
	}
	for _, open := range report.Unterminated {
		c.logger.WithFields(logrus.Fields{
			"instruction": c.name,
			"section":     open.ID,
			"start_cu":    open.StartResource,
		}).Warn("Dropping unterminated profiling section")
	}
	return report
}

func (c *Context) trace(step, id string, remaining, heap uint64) {
	if c.tracer == nil {
		return
	}
	c.tracer.Log(c.name, step, fmt.Sprintf("id=%s remaining=%d heap=%d", id, remaining, heap))
}
