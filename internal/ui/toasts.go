package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/clusterboard/internal/notify"
)

var severityIcon = map[notify.Severity]string{
	notify.SeveritySuccess: "✓",
	notify.SeverityError:   "✗",
	notify.SeverityWarning: "!",
	notify.SeverityInfo:    "i",
}

// renderToasts stacks the newest toasts right-aligned above the command bar.
func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	toasts := m.toasts
	if len(toasts) > MaxToasts {
		toasts = toasts[len(toasts)-MaxToasts:]
	}
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		icon := severityIcon[t.Severity]
		if icon == "" {
			icon = "•"
		}
		text := truncate(singleLine(t.Text), max(m.width-8, 10))
		badge := m.theme.ToastStyle(t.Severity).Render(icon + " " + text)
		lines = append(lines, lipgloss.PlaceHorizontal(m.width, lipgloss.Right, badge))
	}
	return strings.Join(lines, "\n")
}
