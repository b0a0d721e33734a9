package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// renderHeader renders the stats bar: totals, average size and connection state.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bgc := lipgloss.Color(m.theme.Surface)
	on := func(s lipgloss.Style) lipgloss.Style { return s.Background(bgc) }
	sep := on(styles.FaintText).Render("  ")

	parts := []string{on(styles.Logo).Render("clusterboard")}
	snap := m.snapshot
	if snap.Loaded {
		compact := m.width < LayoutCompactWidth
		parts = append(parts,
			stat(on, styles, humanize.Comma(int64(snap.TotalComments)), "comments"),
			stat(on, styles, humanize.Comma(int64(snap.TotalClusters)), "clusters"),
		)
		if !compact {
			parts = append(parts, stat(on, styles, fmt.Sprintf("%.1f", snap.AverageSize()), "avg size"))
		}
	}
	parts = append(parts, m.connectionStatus(on, styles))

	return styles.Header.Width(m.width).MaxWidth(m.width).Render(strings.Join(parts, sep))
}

func stat(on func(lipgloss.Style) lipgloss.Style, styles Styles, value, label string) string {
	return on(styles.Text.Bold(true)).Render(value) + on(styles.MutedText).Render(" "+label)
}

func (m Model) connectionStatus(on func(lipgloss.Style) lipgloss.Style, styles Styles) string {
	snap := m.snapshot
	switch {
	case snap.LastError != nil && (snap.IsOffline() || !snap.Loaded):
		return on(styles.DangerText).Render(classifyConnectionError(snap.LastError)) +
			on(styles.WarningText).Render(" retrying")
	case snap.LastError != nil:
		return on(styles.WarningText).Render("refresh failed, showing last data")
	case !snap.Loaded:
		return on(styles.WarningText.Bold(true)).Render("Connecting...")
	default:
		return on(styles.FaintText).Render("updated " + humanize.Time(snap.LastUpdated))
	}
}

// classifyConnectionError returns a short description of the connection error.
func classifyConnectionError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return "TIMEOUT"
	case strings.Contains(msg, "status 5"):
		return "SERVER ERROR"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the focused pane.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bgc := lipgloss.Color(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd
	switch m.focus {
	case focusCompose:
		commands = []cmd{{"ctrl+s", "Submit"}, {"esc", "Back"}}
	case focusSearch:
		commands = []cmd{{"enter", "Apply"}, {"esc", "Clear"}}
	default:
		commands = []cmd{
			{"c", "Comment"},
			{"/", "Search"},
			{"s", m.view.Sort.String()},
			{"enter", "Expand"},
			{"r", "Reload"},
			{"x", "Export"},
			{"?", "More"},
		}
	}

	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			styles.AccentText.Background(bgc).Render(c.key)+
				styles.FaintText.Background(bgc).Render(":")+
				styles.MutedText.Background(bgc).Render(c.desc))
	}
	segments = append(segments,
		styles.AccentText.Background(bgc).Render("T")+
			styles.FaintText.Background(bgc).Render(":"+m.theme.Name))

	sep := lipgloss.NewStyle().Background(bgc).Render("  ")
	return styles.Header.Width(m.width).MaxWidth(m.width).Render(strings.Join(segments, sep))
}
