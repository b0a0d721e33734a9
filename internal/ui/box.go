package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderBox draws content inside a single-line frame with the title embedded
// in the top border: ┌── Title ──┐. Content is clipped to the frame.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	if width < 4 || height < 2 {
		return ""
	}
	borderColor := m.theme.Border
	bgColor := m.theme.SurfaceAlt
	if focused {
		borderColor = m.theme.BorderFocus
		bgColor = m.theme.FocusBg
	}
	bg := lipgloss.Color(bgColor)
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor)).Background(bg)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text)).Background(bg)

	inner := width - 2
	title = truncate(title, max(inner-4, 0))
	titleWidth := lipgloss.Width(title) + 2
	left := max((inner-titleWidth)/2, 0)
	right := max(inner-titleWidth-left, 0)

	var b strings.Builder
	b.WriteString(border.Render("┌" + strings.Repeat("─", left)))
	b.WriteString(titleStyle.Render(" " + title + " "))
	b.WriteString(border.Render(strings.Repeat("─", right) + "┐"))

	line := lipgloss.NewStyle().
		Width(inner).
		MaxWidth(inner).
		MaxHeight(1).
		Background(bg).
		Foreground(lipgloss.Color(m.theme.Text))

	lines := strings.Split(content, "\n")
	for i := 0; i < height-2; i++ {
		var l string
		if i < len(lines) {
			l = lines[i]
		}
		b.WriteString("\n")
		b.WriteString(border.Render("│"))
		b.WriteString(line.Render(l))
		b.WriteString(border.Render("│"))
	}
	b.WriteString("\n")
	b.WriteString(border.Render("└" + strings.Repeat("─", inner) + "┘"))
	return b.String()
}
