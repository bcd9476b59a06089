package styles

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/kerbaras/mangadir/pkg/data"
)

var (
	// Color palette
	Primary   = lipgloss.Color("#FF6B9D")
	Secondary = lipgloss.Color("#C792EA")
	Success   = lipgloss.Color("#C3E88D")
	Warning   = lipgloss.Color("#FFCB6B")
	Error     = lipgloss.Color("#F07178")
	Info      = lipgloss.Color("#82AAFF")
	Muted     = lipgloss.Color("#546E7A")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	SeriesStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	StatusNew = lipgloss.NewStyle().
			Foreground(Info).
			Bold(true)

	StatusDownloaded = lipgloss.NewStyle().
				Foreground(Success)

	StatusIgnored = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)
)

func StatusStyle(status data.Status) lipgloss.Style {
	switch status {
	case data.StatusNew:
		return StatusNew
	case data.StatusDownloaded:
		return StatusDownloaded
	case data.StatusIgnored:
		return StatusIgnored
	default:
		return MutedStyle
	}
}

// Status renders the name of a chapter status in its color.
func Status(status data.Status) string {
	return StatusStyle(status).Render(status.String())
}

// Table builds a non interactive table sized to its rows.
func Table(columns []table.Column, rows []table.Row) table.Model {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	// Nothing is selectable, keep the first row unhighlighted.
	s.Selected = lipgloss.NewStyle()

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithStyles(s),
	)
	// The height includes the header.
	t.SetHeight(len(rows) + lipgloss.Height(s.Header.Render("header")))
	return t
}

// Truncate cuts s to max runes, ending with an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
