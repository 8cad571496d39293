package debug

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/danpilch/cuprof/pkg/trace"
)

var (
	debugTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	debugHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	debugCell   = lipgloss.NewStyle().Padding(0, 1)
	debugDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// InstructionTiming records the wall time spent replaying an instruction.
type InstructionTiming struct {
	Name     string
	Duration time.Duration
	Consumed uint64
	Aborted  bool
}

// UnitsPerMillisecond is the replay throughput in CU per wall-clock ms.
func (t InstructionTiming) UnitsPerMillisecond() float64 {
	ms := float64(t.Duration) / float64(time.Millisecond)
	if ms == 0 {
		return 0
	}
	return float64(t.Consumed) / ms
}

// Timings extracts replay timings from results.
func Timings(results []trace.Result) []InstructionTiming {
	timings := make([]InstructionTiming, len(results))
	for i, r := range results {
		timings[i] = InstructionTiming{
			Name:     r.Name,
			Duration: r.Duration,
			Consumed: r.Consumed,
			Aborted:  r.Err != nil,
		}
	}
	return timings
}

// TimingReport prints a styled timing summary for replayed instructions.
func TimingReport(w io.Writer, timings []InstructionTiming) {
	var total time.Duration
	var units uint64
	rows := make([][]string, 0, len(timings)+1)
	for _, t := range timings {
		total += t.Duration
		units += t.Consumed
		name := t.Name
		if t.Aborted {
			name += " (aborted)"
		}
		rows = append(rows, []string{
			name,
			t.Duration.String(),
			fmt.Sprintf("%d", t.Consumed),
			fmt.Sprintf("%.0f", t.UnitsPerMillisecond()),
		})
	}
	sum := InstructionTiming{Duration: total, Consumed: units}
	rows = append(rows, []string{
		"TOTAL",
		total.String(),
		fmt.Sprintf("%d", units),
		fmt.Sprintf("%.0f", sum.UnitsPerMillisecond()),
	})

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(debugDim).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return debugHeader
			}
			return debugCell
		}).
		Headers("INSTRUCTION", "DURATION", "CU", "CU/MS").
		Rows(rows...)

	fmt.Fprintln(w)
	fmt.Fprintln(w, debugTitle.Render("Replay Timing Report"))
	fmt.Fprintln(w, tbl.Render())
}
