package cli

import "github.com/charmbracelet/lipgloss"

type tuiTheme struct {
	canvas    lipgloss.Style
	panel     lipgloss.Style
	title     lipgloss.Style
	subtitle  lipgloss.Style
	text      lipgloss.Style
	muted     lipgloss.Style
	ok        lipgloss.Style
	warn      lipgloss.Style
	danger    lipgloss.Style
	info      lipgloss.Style
	highlight lipgloss.Style
	help      lipgloss.Style
	tabOn     lipgloss.Style
	tabOff    lipgloss.Style
	bar       lipgloss.Style
}

func newTUITheme() tuiTheme {
	return tuiTheme{
		canvas: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7DBE0")).
			Background(lipgloss.Color("#10131A")),
		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#3D4752")).
			Padding(0, 1),
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A8BDFF")),
		subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#C0C8D4")),
		text: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7DBE0")),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E7B88")),
		ok: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#63C17A")),
		warn: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E7B65A")),
		danger: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E06B75")),
		info: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#65B5FF")),
		highlight: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10131A")).
			Background(lipgloss.Color("#65B5FF")),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8FA0B3")),
		tabOn: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10131A")).
			Background(lipgloss.Color("#A8BDFF")).
			Padding(0, 1),
		tabOff: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E7B88")).
			Padding(0, 1),
		bar: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7E6BE0")),
	}
}

func severityStyle(theme tuiTheme, severity string) lipgloss.Style {
	switch severity {
	case "critical", "high":
		return theme.danger
	case "medium":
		return theme.warn
	case "low":
		return theme.info
	default:
		return theme.muted
	}
}

func statusStyle(theme tuiTheme, status string) lipgloss.Style {
	switch status {
	case "running", "queued":
		return theme.info
	case "done":
		return theme.ok
	case "failed":
		return theme.danger
	case "stopping", "stopped":
		return theme.warn
	default:
		return theme.text
	}
}
