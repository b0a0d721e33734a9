package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/clusterboard/internal/notify"
	"github.com/five82/clusterboard/internal/prefs"
)

// Theme defines colors for the UI.
type Theme struct {
	Name string

	Background string
	Surface    string
	SurfaceAlt string
	FocusBg    string

	SelectionBg   string
	SelectionText string

	Border      string
	BorderFocus string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	Bar      string
	BarTrack string
}

// Styles contains pre-built Lipgloss styles for the theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style

	Header   lipgloss.Style
	Logo     lipgloss.Style
	Selected lipgloss.Style
}

// Styles returns Lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		InfoText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info)),

		Header: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Text)).
			Padding(0, 1),
		Logo: lipgloss.NewStyle().
			Background(lipgloss.Color(t.Surface)).
			Foreground(lipgloss.Color(t.Accent)).
			Bold(true),
		Selected: lipgloss.NewStyle().
			Background(lipgloss.Color(t.SelectionBg)).
			Foreground(lipgloss.Color(t.SelectionText)),
	}
}

// SeverityColor maps a toast severity onto the palette.
func (t Theme) SeverityColor(sev notify.Severity) string {
	switch sev {
	case notify.SeveritySuccess:
		return t.Success
	case notify.SeverityError:
		return t.Danger
	case notify.SeverityWarning:
		return t.Warning
	default:
		return t.Info
	}
}

// ToastStyle renders a toast as a solid badge in its severity color.
func (t Theme) ToastStyle(sev notify.Severity) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(lipgloss.Color(t.SeverityColor(sev))).
		Foreground(lipgloss.Color(t.Background)).
		Bold(true).
		Padding(0, 1)
}

// GetTheme returns the dark or light theme; anything else is dark.
func GetTheme(name string) Theme {
	if prefs.NormalizeTheme(name) == prefs.ThemeLight {
		return lightTheme()
	}
	return darkTheme()
}

func darkTheme() Theme {
	// Tailwind slate/indigo
	return Theme{
		Name: prefs.ThemeDark,

		Background: "#020617",
		Surface:    "#0f172a",
		SurfaceAlt: "#1e293b",
		FocusBg:    "#283548",

		SelectionBg:   "#4f46e5",
		SelectionText: "#f8fafc",

		Border:      "#334155",
		BorderFocus: "#818cf8",

		Text:    "#f1f5f9",
		Muted:   "#94a3b8",
		Faint:   "#64748b",
		Accent:  "#818cf8",
		Success: "#22c55e",
		Warning: "#f59e0b",
		Danger:  "#ef4444",
		Info:    "#06b6d4",

		Bar:      "#6366f1",
		BarTrack: "#1e293b",
	}
}

func lightTheme() Theme {
	return Theme{
		Name: prefs.ThemeLight,

		Background: "#ffffff",
		Surface:    "#f1f5f9",
		SurfaceAlt: "#f8fafc",
		FocusBg:    "#e0e7ff",

		SelectionBg:   "#4f46e5",
		SelectionText: "#ffffff",

		Border:      "#cbd5e1",
		BorderFocus: "#4f46e5",

		Text:    "#0f172a",
		Muted:   "#475569",
		Faint:   "#94a3b8",
		Accent:  "#4f46e5",
		Success: "#15803d",
		Warning: "#b45309",
		Danger:  "#b91c1c",
		Info:    "#0e7490",

		Bar:      "#6366f1",
		BarTrack: "#e2e8f0",
	}
}
