// Package benchmark measures replay latency and the profiler's own overhead.
package benchmark

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/danpilch/cuprof/pkg/trace"
	"golang.org/x/sys/unix"
)

// Options configures a benchmark run.
type Options struct {
	Iterations int
	Warmup     int
	Replay     trace.Options
}

// DefaultOptions returns sensible benchmark defaults.
func DefaultOptions() Options {
	return Options{
		Iterations: 20,
		Warmup:     3,
	}
}

// Latency summarizes replay wall time over the measured iterations.
type Latency struct {
	P50, P95, P99 time.Duration
}

// Result holds benchmark results for a single instruction.
type Result struct {
	Instruction string
	Profiled    Latency
	Unprofiled  Latency
	// AllocsPerOp and BytesPerOp are averaged over profiled iterations.
	AllocsPerOp uint64
	BytesPerOp  uint64
	// MinCU and MaxCU differ only if replay is not deterministic.
	MinCU    uint64
	MaxCU    uint64
	Sections int
	Aborted  bool
}

// Deterministic reports whether every iteration consumed the same CU.
func (r Result) Deterministic() bool { return r.MinCU == r.MaxCU }

// OverheadPct is the extra P50 latency that profiling adds.
func (r Result) OverheadPct() float64 {
	if r.Unprofiled.P50 == 0 {
		return 0
	}
	return (float64(r.Profiled.P50) - float64(r.Unprofiled.P50)) / float64(r.Unprofiled.P50) * 100
}

// Run benchmarks each instruction with profiling on and off. It stops early,
// returning what it has, when ctx is cancelled.
func Run(ctx context.Context, instrs []trace.Instruction, opts Options) ([]Result, error) {
	if opts.Iterations < 1 {
		opts.Iterations = 1
	}
	plain := opts.Replay
	plain.NoProfiling = true

	results := make([]Result, 0, len(instrs))
	for _, instr := range instrs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		for range opts.Warmup {
			trace.RunInstruction(instr, opts.Replay)
		}

		res := Result{Instruction: instr.Name}
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)
		profiled := make([]time.Duration, opts.Iterations)
		for i := range profiled {
			r := trace.RunInstruction(instr, opts.Replay)
			profiled[i] = r.Duration
			res.observe(i, r)
		}
		runtime.ReadMemStats(&after)

		unprofiled := make([]time.Duration, opts.Iterations)
		for i := range unprofiled {
			unprofiled[i] = trace.RunInstruction(instr, plain).Duration
		}

		n := uint64(opts.Iterations)
		res.AllocsPerOp = (after.Mallocs - before.Mallocs) / n
		res.BytesPerOp = (after.TotalAlloc - before.TotalAlloc) / n
		res.Profiled = summarize(profiled)
		res.Unprofiled = summarize(unprofiled)
		results = append(results, res)
	}
	return results, nil
}

func (res *Result) observe(iteration int, r trace.Result) {
	if iteration == 0 || r.Consumed < res.MinCU {
		res.MinCU = r.Consumed
	}
	res.MaxCU = max(res.MaxCU, r.Consumed)
	if r.Err != nil {
		res.Aborted = true
	}
	if r.Report != nil {
		res.Sections = len(r.Report.Entries)
	}
}

func summarize(latencies []time.Duration) Latency {
	sorted := slices.Sorted(slices.Values(latencies))
	return Latency{
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	return sorted[min(max(rank-1, 0), len(sorted)-1)]
}

// Overhead is the process's own resource usage.
type Overhead struct {
	AllocBytes uint64
	AllocCount uint64
	NumGC      uint32
	UserTime   time.Duration
	SysTime    time.Duration
}

// MeasureOverhead returns the process's allocation, GC and CPU usage so far.
func MeasureOverhead() Overhead {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	o := Overhead{
		AllocBytes: m.TotalAlloc,
		AllocCount: m.Mallocs,
		NumGC:      m.NumGC,
	}

	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err == nil {
		o.UserTime = time.Duration(ru.Utime.Nano())
		o.SysTime = time.Duration(ru.Stime.Nano())
	}
	return o
}

var (
	bmTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	bmHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	bmCell   = lipgloss.NewStyle().Padding(0, 1)
	bmDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	bmWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// RenderResults outputs styled benchmark results.
func RenderResults(w io.Writer, results []Result, overhead Overhead) {
	rows := make([][]string, len(results))
	for i, r := range results {
		cu := fmt.Sprintf("%d", r.MaxCU)
		if !r.Deterministic() {
			cu = bmWarn.Render(fmt.Sprintf("%d..%d", r.MinCU, r.MaxCU))
		}
		name := r.Instruction
		if r.Aborted {
			name += " (aborted)"
		}
		rows[i] = []string{
			name,
			fmt.Sprintf("%d", r.Sections),
			cu,
			r.Profiled.P50.String(),
			r.Profiled.P99.String(),
			fmt.Sprintf("%+.1f%%", r.OverheadPct()),
			fmt.Sprintf("%d B/op, %d allocs/op", r.BytesPerOp, r.AllocsPerOp),
		}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(bmDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return bmHeader
			}
			return bmCell
		}).
		Headers("INSTRUCTION", "SECTIONS", "CU", "P50", "P99", "PROFILING", "MEMORY").
		Rows(rows...)

	fmt.Fprintln(w, bmTitle.Render("Replay Benchmark Results"))
	fmt.Fprintln(w, tbl.Render())
	fmt.Fprintln(w)
	fmt.Fprintln(w, bmTitle.Render("Process"))
	fmt.Fprintf(w, "  Allocated:    %d B in %d allocations, %d GCs\n", overhead.AllocBytes, overhead.AllocCount, overhead.NumGC)
	fmt.Fprintf(w, "  CPU user/sys: %v / %v\n",
		overhead.UserTime.Round(time.Microsecond), overhead.SysTime.Round(time.Microsecond))
}
