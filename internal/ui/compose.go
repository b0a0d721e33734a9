package ui

import (
	"fmt"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/clusterboard/internal/api"
)

// renderCompose draws the comment box with its n/500 counter and submit state.
func (m Model) renderCompose(width int) string {
	styles := m.theme.Styles()
	n := utf8.RuneCountInString(m.compose.Value())

	counter := styles.FaintText.Render(fmt.Sprintf("%d/%d", n, api.MaxCommentLength))
	if n >= api.MaxCommentLength {
		counter = styles.WarningText.Render(fmt.Sprintf("%d/%d", n, api.MaxCommentLength))
	}

	var action string
	switch {
	case m.submitting:
		action = styles.AccentText.Render(m.spinner.View() + " Processing...")
	case m.focus == focusCompose:
		action = styles.AccentText.Render("ctrl+s submit")
	default:
		action = styles.MutedText.Render("press c to write")
	}

	inner := width - 2
	gap := max(inner-lipgloss.Width(counter)-lipgloss.Width(action), 1)
	footer := counter + lipgloss.NewStyle().Width(gap).Render("") + action

	content := m.compose.View() + "\n" + footer
	return m.renderBox("Add a comment", content, width, composeBoxHeight, m.focus == focusCompose)
}
