package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the header drops detail.
	LayoutCompactWidth = 90

	// LayoutChartWidth is the minimum width to show the chart beside the list.
	LayoutChartWidth = 110
)

// Compose box sizing.
const (
	// ComposeLines is the visible height of the comment textarea.
	ComposeLines = 3

	// composeBoxHeight adds the borders and the counter line.
	composeBoxHeight = ComposeLines + 3
)

// MaxToasts caps how many toasts are drawn at once.
const MaxToasts = 4

func (m Model) chartVisible() bool {
	return m.showChart && m.width >= LayoutChartWidth
}

func (m Model) listWidth() int {
	if m.chartVisible() {
		return m.width * 60 / 100
	}
	return m.width
}
