package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/five82/clusterboard/internal/api"
)

const densityBarWidth = 12

// renderBody lays out the compose box and cluster list, plus the chart when
// the terminal is wide enough.
func (m Model) renderBody(height int) string {
	lw := m.listWidth()
	compose := m.renderCompose(lw)
	listHeight := max(height-lipgloss.Height(compose), 3)
	left := lipgloss.JoinVertical(lipgloss.Left, compose, m.renderClusterList(lw, listHeight))
	if !m.chartVisible() {
		return left
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, m.renderChart(m.width-lw, height))
}

func (m Model) listTitle() string {
	title := fmt.Sprintf("Clusters (%d) · %s", len(m.projected), m.view.Sort)
	if m.view.Search != "" {
		title += " · /" + truncate(m.view.Search, 16)
	}
	return title
}

// renderClusterList renders the visible window of cluster rows.
func (m Model) renderClusterList(width, height int) string {
	inner := width - 2
	rows := height - 2
	if m.focus == focusSearch {
		rows--
	}

	var content string
	if empty := m.emptyMessage(); empty != "" {
		content = m.theme.Styles().MutedText.Render(empty)
	} else {
		lines, offsets := m.clusterLines(inner)
		start := scrollStart(offsets, m.selected, len(lines), rows)
		end := min(start+rows, len(lines))
		content = strings.Join(lines[start:end], "\n")
	}
	if m.focus == focusSearch {
		content = m.search.View() + "\n" + content
	}
	return m.renderBox(m.listTitle(), content, width, height, m.focus != focusCompose)
}

func (m Model) emptyMessage() string {
	switch {
	case !m.snapshot.Loaded && m.snapshot.LastError != nil:
		return "Could not load clusters. Retrying in the background."
	case !m.snapshot.Loaded:
		return "Loading clusters..."
	case len(m.snapshot.Clusters) == 0:
		return "No clusters yet. Press c to add the first comment."
	case len(m.projected) == 0:
		return fmt.Sprintf("No clusters match %q", m.view.Search)
	}
	return ""
}

// clusterLines renders every projected cluster and reports the first line
// index of each one.
func (m Model) clusterLines(width int) ([]string, []int) {
	styles := m.theme.Styles()
	maxCount := m.snapshot.MaxCommentCount()

	var lines []string
	offsets := make([]int, len(m.projected))
	for i, c := range m.projected {
		offsets[i] = len(lines)
		selected := i == m.selected
		expanded := m.view.IsExpanded(c.ID)

		marker := "▸"
		if expanded {
			marker = "▾"
		}
		count := plural(c.CommentCount, "comment")
		textWidth := max(width-lipgloss.Width(count)-6, 8)
		head := fmt.Sprintf("%s %s", marker, truncate(singleLine(c.RepresentativeText), textWidth))
		head = padRight(head, width-lipgloss.Width(count)-1) + " " + count
		if selected {
			lines = append(lines, styles.Selected.Width(width).Render(head))
		} else {
			lines = append(lines, styles.Text.Render(head))
		}

		meta := "  " + m.densityBar(c.CommentCount, maxCount, densityBarWidth)
		if t := c.ParsedUpdatedAt(); !t.IsZero() {
			meta += styles.FaintText.Render("  updated " + humanize.Time(t))
		}
		lines = append(lines, meta)

		if expanded {
			lines = append(lines, m.commentLines(c, width)...)
		}
	}
	return lines, offsets
}

// densityBar draws count relative to the largest cluster in the snapshot.
func (m Model) densityBar(count, maxCount, width int) string {
	filled := 0
	if maxCount > 0 {
		filled = (count*width + maxCount - 1) / maxCount
	}
	filled = min(max(filled, 0), width)
	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.Bar)).Render(strings.Repeat("█", filled))
	track := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.BarTrack)).Render(strings.Repeat("░", width-filled))
	return bar + track
}

func (m Model) commentLines(c api.Cluster, width int) []string {
	styles := m.theme.Styles()
	if len(c.Comments) == 0 {
		return []string{styles.FaintText.Render("    no comments loaded")}
	}
	wrapAt := max(width-6, 10)
	var out []string
	for _, cm := range c.Comments {
		wrapped := wordwrap.String(strings.TrimSpace(cm.Text), wrapAt)
		for _, l := range strings.Split(wrapped, "\n") {
			out = append(out, styles.FaintText.Render("    │ ")+styles.Text.Render(truncate(l, wrapAt)))
		}
		out = append(out, styles.FaintText.Render("    └ "+commentMeta(cm)))
	}
	return out
}

func commentMeta(cm api.Comment) string {
	author := strings.TrimSpace(cm.UserID)
	if author == "" {
		author = "anonymous"
	}
	if t := cm.ParsedTimestamp(); !t.IsZero() {
		return author + " · " + humanize.Time(t)
	}
	return author
}

// scrollStart picks the first visible line so the selected cluster's block
// stays on screen.
func scrollStart(offsets []int, selected, total, rows int) int {
	if rows <= 0 || total <= rows || selected < 0 || selected >= len(offsets) {
		return 0
	}
	top := offsets[selected]
	bottom := total
	if selected+1 < len(offsets) {
		bottom = offsets[selected+1]
	}
	start := 0
	if bottom > rows {
		start = bottom - rows
	}
	if start > top {
		start = top
	}
	return min(start, total-rows)
}
