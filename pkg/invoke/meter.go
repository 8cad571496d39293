// Package invoke hosts one unit of work (an instruction) around the profiler:
// it owns the compute meter, the log collector and the profiling state, and
// exposes the profiling syscalls.
package invoke

import (
	"errors"
	"fmt"
)

// SyscallBaseCost is the flat compute cost of a logging syscall.
const SyscallBaseCost uint64 = 100

// ErrBudgetExceeded is returned once an instruction runs out of compute units.
var ErrBudgetExceeded = errors.New("computational budget exceeded")

// ComputeMeter tracks the remaining compute units of an instruction.
type ComputeMeter struct {
	remaining uint64
}

// NewComputeMeter returns a meter holding budget units.
func NewComputeMeter(budget uint64) *ComputeMeter {
	return &ComputeMeter{remaining: budget}
}

// Remaining returns the units left.
func (m *ComputeMeter) Remaining() uint64 {
	return m.remaining
}

// Consume charges units. If the budget is insufficient the meter drops to
// zero and ErrBudgetExceeded is returned.
func (m *ComputeMeter) Consume(units uint64) error {
	if units > m.remaining {
		m.remaining = 0
		return fmt.Errorf("%w: needed %d units", ErrBudgetExceeded, units)
	}
	m.remaining -= units
	return nil
}
