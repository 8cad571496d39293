package output

import "github.com/charmbracelet/lipgloss"

// Share labels.
const (
	LabelHot  = "hot"
	LabelWarm = "warm"
	LabelCold = "cold"
)

var shareStyles = map[string]lipgloss.Style{
	LabelHot:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),  // Red
	LabelWarm: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true), // Yellow
	LabelCold: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),            // Green
}

// Share returns net as a percentage of the units consumed by the instruction.
func Share(net, consumed uint64) float64 {
	if consumed == 0 {
		return 0
	}
	return float64(net) / float64(consumed) * 100
}

// ShareLabel classifies a share percentage.
func ShareLabel(pct float64) string {
	if pct >= 50 {
		return LabelHot
	}
	if pct >= 20 {
		return LabelWarm
	}
	return LabelCold
}
