// Package ui provides the Bubble Tea terminal dashboard for clusterboard.
//
// The model is a thin shell over the packages that own state. It never
// mutates clusters or toasts directly:
//
//   - state.Store holds the latest cluster snapshot; the model subscribes and
//     re-projects on every change.
//   - notify.Queue holds the visible toasts; expiry happens inside the queue.
//   - submit.Controller validates and sends comments; the model only forwards
//     the draft and reacts to the result.
//   - view.State carries search, sort mode and expansion, applied through
//     view.Project before anything is drawn.
//
// # Layout
//
//	header      logo, totals, average size, connection status
//	compose     textarea with character counter and spinner
//	clusters    sorted, filterable list with density bars
//	chart       distribution bars (hidden below LayoutChartWidth)
//	toasts      newest last, right aligned
//	command bar key hints for the focused pane
//
// Press ? for the full key map.
package ui
