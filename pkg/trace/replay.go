package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/danpilch/cuprof/pkg/invoke"
	"github.com/danpilch/cuprof/pkg/profiling"
	"github.com/sirupsen/logrus"
)

// DefaultBudget is the compute budget of an instruction that names none.
const DefaultBudget uint64 = 200_000

// idRegionBase is where section ids are placed in the simulated caller memory.
const idRegionBase uint64 = 0x400000000

// Options configures a replay.
type Options struct {
	DefaultBudget uint64
	LogLimit      int
	Logger        *logrus.Logger
	Tracer        invoke.Tracer
	// NoProfiling turns the profiling syscalls into no-ops, for measuring
	// their overhead.
	NoProfiling bool
}

// Result is the outcome of replaying one instruction.
type Result struct {
	Name     string
	Report   *profiling.Report
	Logs     []string
	Budget   uint64
	Consumed uint64
	Duration time.Duration
	// Err is set when the instruction aborted; Report is then nil because
	// the profile is discarded unflushed.
	Err error
}

// Run replays every instruction in a fresh invoke.Context. An aborted
// instruction does not stop the replay; a cancelled ctx does.
func Run(ctx context.Context, instrs []Instruction, opts Options) ([]Result, error) {
	if opts.DefaultBudget == 0 {
		opts.DefaultBudget = DefaultBudget
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetLevel(logrus.WarnLevel)
	}

	results := make([]Result, 0, len(instrs))
	for _, instr := range instrs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := RunInstruction(instr, opts)
		if res.Err != nil {
			opts.Logger.WithFields(logrus.Fields{
				"instruction": instr.Name,
				"error":       res.Err,
			}).Warn("Instruction aborted")
		}
		results = append(results, res)
	}
	return results, nil
}

// RunInstruction replays a single instruction.
func RunInstruction(instr Instruction, opts Options) Result {
	budget := instr.Budget
	if budget == 0 {
		budget = opts.DefaultBudget
	}
	if budget == 0 {
		budget = DefaultBudget
	}

	iopts := []invoke.Option{
		invoke.WithLogger(opts.Logger),
		invoke.WithTracer(opts.Tracer),
		invoke.WithLogLimit(opts.LogLimit),
	}
	if opts.NoProfiling {
		iopts = append(iopts, invoke.WithoutProfiling())
	}
	ictx := invoke.NewContext(instr.Name, budget, iopts...)
	mem := &invoke.Region{Base: idRegionBase}

	res := Result{Name: instr.Name, Budget: budget}
	start := time.Now()
	err := execute(ictx, mem, instr.Events)
	if err == nil {
		res.Report = ictx.Complete()
	} else {
		res.Err = err
	}
	res.Duration = time.Since(start)
	res.Logs = ictx.Logs()
	res.Consumed = budget - ictx.Remaining()
	return res
}

func execute(ictx *invoke.Context, mem *invoke.Region, events []Event) error {
	for _, ev := range events {
		var err error
		switch ev.Op {
		case OpConsume:
			err = ictx.Consume(ev.Units)
		case OpStart:
			addr := mem.Write([]byte(ev.ID))
			err = ictx.ProfileStart(mem, addr, uint64(len(ev.ID)), ev.Heap)
		case OpEnd:
			addr := mem.Write([]byte(ev.ID))
			err = ictx.ProfileEnd(mem, addr, uint64(len(ev.ID)), ev.Heap)
		case OpLog:
			err = ictx.ProgramLog(ev.Text)
		case OpUnits:
			err = ictx.LogComputeUnits()
		default:
			err = fmt.Errorf("unknown op %q", ev.Op)
		}
		if err != nil {
			return fmt.Errorf("line %d: %w", ev.Line, err)
		}
	}
	return nil
}
