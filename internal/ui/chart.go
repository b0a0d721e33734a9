package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/clusterboard/internal/view"
)

// renderChart draws the distribution series as horizontal bars in list order.
func (m Model) renderChart(width, height int) string {
	series := view.Distribution(m.projected)
	content := renderBars(series, width-2, height-2, m.theme)
	return m.renderBox("Distribution", content, width, height, false)
}

// renderBars lays out one row per series entry: label, bar, count. Rows beyond
// height are summarized on the final line.
func renderBars(series view.Series, width, height int, theme Theme) string {
	styles := theme.Styles()
	if series.Len() == 0 {
		return styles.MutedText.Render("No data")
	}
	if height <= 0 {
		return ""
	}

	labelWidth := 0
	for _, l := range series.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}
	countWidth := len(fmt.Sprint(series.Max()))
	barWidth := max(width-labelWidth-countWidth-3, 1)
	peak := series.Max()

	shown := series.Len()
	overflow := 0
	if shown > height {
		shown = height - 1
		overflow = series.Len() - shown
	}

	bar := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Bar))
	lines := make([]string, 0, shown+1)
	for i := 0; i < shown; i++ {
		n := 0
		if peak > 0 {
			n = series.Counts[i] * barWidth / peak
		}
		if series.Counts[i] > 0 && n == 0 {
			n = 1
		}
		lines = append(lines,
			styles.MutedText.Render(padRight(series.Labels[i], labelWidth))+" "+
				bar.Render(strings.Repeat("█", n))+strings.Repeat(" ", barWidth-n)+" "+
				styles.Text.Render(fmt.Sprintf("%*d", countWidth, series.Counts[i])))
	}
	if overflow > 0 {
		lines = append(lines, styles.FaintText.Render(fmt.Sprintf("+%d more", overflow)))
	}
	return strings.Join(lines, "\n")
}
