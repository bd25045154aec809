package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/runfiles/internal/loader"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	resolvedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")).Bold(true)
	failedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	stageStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Width(12)
	detailStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#A0AEC0"))
	hintStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
)

// RenderTrace formats a resolution trace: the outcome first, then every
// attempted location in the order it was tried.
func RenderTrace(trace loader.Trace) string {
	lines := []string{titleStyle.Render(trace.Request.String())}
	switch trace.State {
	case loader.RequestResolved:
		lines = append(lines, resolvedStyle.Render("resolved")+" "+trace.Path)
	default:
		lines = append(lines, failedStyle.Render("not found"))
	}
	for idx, attempt := range trace.Attempts {
		line := fmt.Sprintf("%2d. %s%s", idx+1, stageStyle.Render(attempt.Stage), attempt.Location)
		if attempt.Err != nil {
			line += "\n    " + detailStyle.Render(attempt.Err.Error())
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
