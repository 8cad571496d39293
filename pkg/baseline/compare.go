package baseline

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Severity indicates the magnitude of a section's drift.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityRegress  Severity = "regression"
	SeverityNew      Severity = "new"
	SeverityGone     Severity = "gone"
)

// Thresholds are the absolute delta percentages separating severities.
type Thresholds struct {
	Minor    float64
	Moderate float64
	Major    float64
}

// DefaultThresholds returns the default drift thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Minor: 5, Moderate: 15, Major: 30}
}

// Comparison holds the drift analysis for a single section.
type Comparison struct {
	ID          string
	BaselineNet uint64
	CurrentNet  uint64
	DeltaPct    float64
	Severity    Severity
}

var (
	blTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	blHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62")).Padding(0, 1)
	blDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	blOK     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	blWarn   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	blErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	blMinor  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

// Compare matches sections by id and calculates drift of net CU. Sections
// present on only one side are reported as new or gone.
func Compare(baseline *Baseline, current []SectionStat, th Thresholds) []Comparison {
	baselineMap := make(map[string]SectionStat, len(baseline.Sections))
	for _, s := range baseline.Sections {
		baselineMap[s.ID] = s
	}

	var comparisons []Comparison
	seen := make(map[string]bool, len(current))
	for _, cur := range current {
		seen[cur.ID] = true
		base, ok := baselineMap[cur.ID]
		if !ok {
			comparisons = append(comparisons, Comparison{
				ID:         cur.ID,
				CurrentNet: cur.NetCU,
				DeltaPct:   100,
				Severity:   SeverityNew,
			})
			continue
		}

		var deltaPct float64
		if base.NetCU != 0 {
			deltaPct = (float64(cur.NetCU) - float64(base.NetCU)) / float64(base.NetCU) * 100
		} else if cur.NetCU != 0 {
			deltaPct = 100
		}

		comparisons = append(comparisons, Comparison{
			ID:          cur.ID,
			BaselineNet: base.NetCU,
			CurrentNet:  cur.NetCU,
			DeltaPct:    deltaPct,
			Severity:    classifySeverity(deltaPct, th),
		})
	}

	for _, base := range baseline.Sections {
		if seen[base.ID] {
			continue
		}
		comparisons = append(comparisons, Comparison{
			ID:          base.ID,
			BaselineNet: base.NetCU,
			DeltaPct:    -100,
			Severity:    SeverityGone,
		})
	}

	return comparisons
}

// Regressions counts comparisons that grew past the major threshold.
func Regressions(comparisons []Comparison) int {
	n := 0
	for _, c := range comparisons {
		if c.Severity == SeverityRegress {
			n++
		}
	}
	return n
}

func classifySeverity(deltaPct float64, th Thresholds) Severity {
	absDelta := math.Abs(deltaPct)
	if absDelta < th.Minor {
		return SeverityNone
	}
	if absDelta < th.Moderate {
		return SeverityMinor
	}
	if absDelta < th.Major {
		return SeverityModerate
	}
	if deltaPct > 0 {
		return SeverityRegress
	}
	return SeverityMajor
}

// RenderComparison outputs a styled comparison table.
func RenderComparison(w io.Writer, baseline *Baseline, comparisons []Comparison) {
	fmt.Fprintln(w, blTitle.Render("Baseline Comparison"))
	fmt.Fprintln(w, blDim.Render(strings.Repeat("═", 80)))
	fmt.Fprintf(w, "Comparing against %s (from %s)\n\n",
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("%q", baseline.Name)),
		blDim.Render(baseline.Timestamp.Format("2006-01-02 15:04:05")))

	fmt.Fprintf(w, "  %s %s %s %s %s\n",
		blHeader.Render("SECTION                 "),
		blHeader.Render("BASELINE  "),
		blHeader.Render("CURRENT   "),
		blHeader.Render("DELTA    "),
		blHeader.Render("SEVERITY  "))
	fmt.Fprintln(w, "  "+blDim.Render(strings.Repeat("─", 80)))

	for _, c := range comparisons {
		deltaStr := fmt.Sprintf("%+.1f%%", c.DeltaPct)
		var sevStr string
		switch c.Severity {
		case SeverityRegress:
			sevStr = blErr.Render("REGRESSION")
		case SeverityMajor:
			sevStr = blWarn.Render("MAJOR")
		case SeverityModerate:
			sevStr = blWarn.Render("moderate")
		case SeverityMinor:
			sevStr = blMinor.Render("minor")
		case SeverityNew, SeverityGone:
			sevStr = blDim.Render(string(c.Severity))
		default:
			sevStr = blOK.Render("none")
		}

		fmt.Fprintf(w, "  %-25s %-12d %-12d %-10s %s\n",
			c.ID, c.BaselineNet, c.CurrentNet, deltaStr, sevStr)
	}

	fmt.Fprintln(w)
	if n := Regressions(comparisons); n > 0 {
		fmt.Fprintf(w, "  %s\n", blErr.Render(fmt.Sprintf("%d sections regressed.", n)))
	} else {
		fmt.Fprintf(w, "  %s\n", blOK.Render("No significant regressions detected."))
	}
}
