// Package output provides formatters for displaying profiling reports.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/danpilch/cuprof/pkg/profiling"
	"github.com/danpilch/cuprof/pkg/trace"
)

// Format represents the output format type.
type Format string

const (
	FormatLog   Format = "log"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatAI    Format = "ai"
	FormatTSV   Format = "tsv"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatLog, FormatTable, FormatJSON, FormatAI, FormatTSV:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// Formatter handles output formatting.
type Formatter struct {
	format    Format
	writer    io.Writer
	sparkline *SparklineTracker
}

// NewFormatter creates a new formatter.
func NewFormatter(format Format, writer io.Writer) *Formatter {
	return &Formatter{
		format: format,
		writer: writer,
	}
}

// SetSparklineTracker enables sparkline tracking for watch mode.
func (f *Formatter) SetSparklineTracker(s *SparklineTracker) {
	f.sparkline = s
}

// Render outputs the replay results in the configured format.
func (f *Formatter) Render(results []trace.Result) error {
	if f.sparkline != nil {
		f.sparkline.Observe(results)
	}

	switch f.format {
	case FormatLog:
		return f.renderLog(results)
	case FormatJSON:
		return f.renderJSON(results)
	case FormatAI:
		return f.renderAI(results)
	case FormatTSV:
		return f.renderTSV(results)
	default:
		return f.renderTable(results)
	}
}

// renderLog outputs the instruction logs exactly as the runtime emits them.
func (f *Formatter) renderLog(results []trace.Result) error {
	for _, res := range results {
		fmt.Fprintf(f.writer, "Program %s invoke [1]\n", res.Name)
		for _, line := range res.Logs {
			fmt.Fprintln(f.writer, line)
		}
		fmt.Fprintf(f.writer, "Program %s consumed %d of %d compute units\n", res.Name, res.Consumed, res.Budget)
		if res.Err != nil {
			fmt.Fprintf(f.writer, "Program %s failed: %v\n", res.Name, res.Err)
		} else {
			fmt.Fprintf(f.writer, "Program %s success\n", res.Name)
		}
	}
	return nil
}

type jsonInstruction struct {
	Name         string             `json:"name"`
	Budget       uint64             `json:"budget"`
	Consumed     uint64             `json:"consumed"`
	Error        string             `json:"error,omitempty"`
	Sections     []profiling.Record `json:"sections"`
	Unterminated []string           `json:"unterminated,omitempty"`
	Logs         []string           `json:"logs"`
}

// renderJSON outputs results as JSON.
func (f *Formatter) renderJSON(results []trace.Result) error {
	out := struct {
		Instructions []jsonInstruction `json:"instructions"`
	}{
		Instructions: make([]jsonInstruction, 0, len(results)),
	}

	for _, res := range results {
		ji := jsonInstruction{
			Name:     res.Name,
			Budget:   res.Budget,
			Consumed: res.Consumed,
			Sections: []profiling.Record{},
			Logs:     res.Logs,
		}
		if res.Err != nil {
			ji.Error = res.Err.Error()
		}
		if res.Report != nil {
			ji.Sections = res.Report.Records()
			for _, open := range res.Report.Unterminated {
				ji.Unterminated = append(ji.Unterminated, open.ID)
			}
		}
		out.Instructions = append(out.Instructions, ji)
	}

	enc := json.NewEncoder(f.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// renderTable outputs one styled table per instruction.
func (f *Formatter) renderTable(results []trace.Result) error {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("15")).
		Background(lipgloss.Color("62")).
		Padding(0, 1)

	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	hasSparklines := f.sparkline != nil
	headers := []string{"SECTION", "TOTAL CU", "NET CU", "SHARE", "HEAP", "NET HEAP", "REMAINING"}
	if hasSparklines {
		headers = append(headers, "TREND")
	}

	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(f.writer)
		}
		fmt.Fprintln(f.writer, titleStyle.Render(fmt.Sprintf("Instruction %s", res.Name)))
		fmt.Fprintln(f.writer, dimStyle.Render(strings.Repeat("═", 60)))
		fmt.Fprintf(f.writer, "Consumed %d of %d CU\n", res.Consumed, res.Budget)

		if res.Err != nil {
			fmt.Fprintln(f.writer, errStyle.Render("ABORTED: "+res.Err.Error()))
			continue
		}

		records := res.Report.Records()
		if len(records) == 0 {
			fmt.Fprintln(f.writer, dimStyle.Render("No profiled sections"))
			continue
		}

		rows := make([][]string, len(records))
		for j, rec := range records {
			pct := Share(rec.Net, res.Consumed)
			row := []string{
				rec.ID,
				fmt.Sprintf("%d", rec.Total),
				fmt.Sprintf("%d", rec.Net),
				shareStyles[ShareLabel(pct)].Render(fmt.Sprintf("%.1f%%", pct)),
				"-", "-", "-",
			}
			if rec.Heap != nil {
				row[4] = fmt.Sprintf("%d", rec.Heap.Total)
				row[5] = fmt.Sprintf("%d", rec.Heap.Net)
				row[6] = fmt.Sprintf("%d", rec.Heap.Remaining)
			}
			if hasSparklines {
				key := SeriesKey{Instruction: res.Name, Section: rec.ID}
				row = append(row, trendCell(f.sparkline.Sparkline(key), f.sparkline.Delta(key)))
			}
			rows[j] = row
		}

		t := table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				return cellStyle
			}).
			Headers(headers...).
			Rows(rows...)

		fmt.Fprintln(f.writer, t)

		if n := len(res.Report.Unterminated); n > 0 {
			fmt.Fprintln(f.writer, errStyle.Render(fmt.Sprintf("%d unterminated sections dropped", n)))
		}
	}

	return nil
}

// renderAI outputs results in an LLM-friendly markdown format.
func (f *Formatter) renderAI(results []trace.Result) error {
	fmt.Fprintln(f.writer, "# Compute Unit Profile")
	fmt.Fprintln(f.writer)

	for _, res := range results {
		fmt.Fprintf(f.writer, "## %s\n\n", res.Name)
		fmt.Fprintf(f.writer, "**Consumed:** %d of %d CU\n\n", res.Consumed, res.Budget)
		if res.Err != nil {
			fmt.Fprintf(f.writer, "**Aborted:** %v. No profile was recorded.\n\n", res.Err)
			continue
		}

		records := res.Report.Records()
		if len(records) == 0 {
			fmt.Fprintln(f.writer, "No profiled sections.")
			fmt.Fprintln(f.writer)
			continue
		}

		fmt.Fprintln(f.writer, "| Section | Total CU | Net CU | Share |")
		fmt.Fprintln(f.writer, "|---------|----------|--------|-------|")
		for _, rec := range records {
			fmt.Fprintf(f.writer, "| %s | %d | %d | %.1f%% |\n",
				rec.ID, rec.Total, rec.Net, Share(rec.Net, res.Consumed))
		}
		fmt.Fprintln(f.writer)

		hot := hotspots(records, res.Consumed)
		if len(hot) > 0 {
			fmt.Fprintln(f.writer, "### Hotspots")
			fmt.Fprintln(f.writer)
			for _, rec := range hot {
				fmt.Fprintf(f.writer, "- **%s** spends %d CU in its own code (%.1f%% of the instruction)\n",
					rec.ID, rec.Net, Share(rec.Net, res.Consumed))
			}
			fmt.Fprintln(f.writer)
		}
	}

	fmt.Fprintln(f.writer, "## Interpretation Guide")
	fmt.Fprintln(f.writer)
	fmt.Fprintln(f.writer, "- **Total CU**: compute units consumed between a section's start and end")
	fmt.Fprintln(f.writer, "- **Net CU**: total minus sections nested strictly inside it")
	fmt.Fprintln(f.writer, "- Overlapping sections that do not nest are never subtracted from each other")
	return nil
}

// renderTSV outputs one row per section as tab-separated values.
func (f *Formatter) renderTSV(results []trace.Result) error {
	fmt.Fprintln(f.writer, "INSTRUCTION\tSECTION\tTOTAL_CU\tNET_CU\tTOTAL_HEAP\tNET_HEAP\tREMAINING_HEAP")

	for _, res := range results {
		if res.Report == nil {
			continue
		}
		for _, rec := range res.Report.Records() {
			heapTotal, heapNet, heapRemaining := "", "", ""
			if rec.Heap != nil {
				heapTotal = fmt.Sprintf("%d", rec.Heap.Total)
				heapNet = fmt.Sprintf("%d", rec.Heap.Net)
				heapRemaining = fmt.Sprintf("%d", rec.Heap.Remaining)
			}
			fmt.Fprintf(f.writer, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
				res.Name, rec.ID, rec.Total, rec.Net, heapTotal, heapNet, heapRemaining)
		}
	}

	return nil
}

// hotspots returns the sections labelled hot, largest net first.
func hotspots(records []profiling.Record, consumed uint64) []profiling.Record {
	var hot []profiling.Record
	for _, rec := range records {
		if ShareLabel(Share(rec.Net, consumed)) == LabelHot {
			hot = append(hot, rec)
		}
	}
	sort.SliceStable(hot, func(i, j int) bool {
		return hot[i].Net > hot[j].Net
	})
	return hot
}

func trendCell(spark string, delta int64) string {
	if delta == 0 {
		return spark
	}
	return fmt.Sprintf("%s %+d", spark, delta)
}
