package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/danpilch/cuprof/pkg/profiling"
)

// DumpRawEntries outputs a finalized report at sequence level, including the
// sections that were dropped because they never ended.
func DumpRawEntries(w io.Writer, instruction string, report *profiling.Report) {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	header := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Raw Profile Dump: "+instruction))
	fmt.Fprintln(w, dim.Render(strings.Repeat("═", 85)))
	if report == nil {
		fmt.Fprintln(w, "  "+dim.Render("instruction aborted, profile discarded"))
		return
	}

	fmt.Fprintf(w, "  %s %s %s %s %s\n",
		header.Render("SECTION                 "),
		header.Render("SEQ       "),
		header.Render("CU START..END     "),
		header.Render("TOTAL/NET     "),
		header.Render("HEAP      "))
	fmt.Fprintln(w, "  "+dim.Render(strings.Repeat("─", 85)))

	for _, e := range report.Entries {
		heap := "disabled"
		if e.Heap != nil {
			heap = fmt.Sprintf("%d..%d net %d", e.Heap.Start, e.Heap.End, e.Heap.Net)
		}
		fmt.Fprintf(w, "  %-25s %-11s %-19s %-15s %s\n",
			e.ID,
			fmt.Sprintf("%d..%d", e.StartSequence, e.EndSequence),
			fmt.Sprintf("%d..%d", e.StartResource, e.EndResource),
			fmt.Sprintf("%d/%d", e.Total, e.Net),
			dim.Render(heap))
	}

	for _, a := range report.Unterminated {
		fmt.Fprintf(w, "  %-25s %-11s %-19s %s\n",
			a.ID,
			fmt.Sprintf("%d..", a.StartSequence),
			fmt.Sprintf("%d..", a.StartResource),
			dim.Render("unterminated, dropped"))
	}
}
