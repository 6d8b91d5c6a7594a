package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette the program is built with. It is created once at
// startup and handed to New; nothing reads a global dark-mode flag.
type Theme struct {
	Name string
	// Glamour is the glamour style path used for the preview and diagrams.
	Glamour string

	Header        lipgloss.Style
	HeaderAccent  lipgloss.Style
	Helper        lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	Saved         lipgloss.Style
	Pending       lipgloss.Style
	Selection     lipgloss.Style
	Cursor        lipgloss.Style
	Toolbar       lipgloss.Style
	ToolbarItem   lipgloss.Style
	ToolbarActive lipgloss.Style
	Panel         lipgloss.Style
	PanelTitle    lipgloss.Style
	UserTurn      lipgloss.Style
	AssistantTurn lipgloss.Style
	ListItem      lipgloss.Style
	ListCurrent   lipgloss.Style
	Key           lipgloss.Style
	KeyDesc       lipgloss.Style
	Dim           lipgloss.Style
}

// NewTheme returns the "light" theme or, for anything else, the dark one.
func NewTheme(name string) Theme {
	if strings.EqualFold(strings.TrimSpace(name), "light") {
		return lightTheme()
	}
	return darkTheme()
}

// Dark reports whether the theme has a dark background.
func (t Theme) Dark() bool {
	return t.Name != "light"
}

func darkTheme() Theme {
	accent := lipgloss.Color("#ffd166")
	return Theme{
		Name:          "dark",
		Glamour:       "dark",
		Header:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).Padding(0, 1),
		HeaderAccent:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Helper:        lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("110")),
		Saved:         lipgloss.NewStyle().Foreground(lipgloss.Color("#a3be8c")),
		Pending:       lipgloss.NewStyle().Foreground(accent),
		Selection:     lipgloss.NewStyle().Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#bde0fe")),
		Cursor:        lipgloss.NewStyle().Reverse(true),
		Toolbar:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#7f5af0")).Background(lipgloss.Color("#1e1e2e")),
		ToolbarItem:   lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")).Background(lipgloss.Color("#1e1e2e")).Padding(0, 1),
		ToolbarActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(accent).Padding(0, 1),
		Panel:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#56526e")).Padding(0, 1),
		PanelTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		UserTurn:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		AssistantTurn: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("147")),
		ListItem:      lipgloss.NewStyle().PaddingLeft(2),
		ListCurrent:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(lipgloss.Color("#8ecae6")).PaddingLeft(1),
		Key:           lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f0f0f")).Background(accent).Padding(0, 1),
		KeyDesc:       lipgloss.NewStyle().Foreground(lipgloss.Color("#e0def4")),
		Dim:           lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	}
}

func lightTheme() Theme {
	accent := lipgloss.Color("#b5179e")
	return Theme{
		Name:          "light",
		Glamour:       "light",
		Header:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3a86ff")).Padding(0, 1),
		HeaderAccent:  lipgloss.NewStyle().Bold(true).Foreground(accent),
		Helper:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("160")),
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("25")),
		Saved:         lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
		Pending:       lipgloss.NewStyle().Foreground(lipgloss.Color("130")),
		Selection:     lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffe066")),
		Cursor:        lipgloss.NewStyle().Reverse(true),
		Toolbar:       lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Background(lipgloss.Color("#f4f4f4")),
		ToolbarItem:   lipgloss.NewStyle().Foreground(lipgloss.Color("#1f1f1f")).Background(lipgloss.Color("#f4f4f4")).Padding(0, 1),
		ToolbarActive: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1),
		Panel:         lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("250")).Padding(0, 1),
		PanelTitle:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		UserTurn:      lipgloss.NewStyle().Bold(true).Foreground(accent),
		AssistantTurn: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("25")),
		ListItem:      lipgloss.NewStyle().PaddingLeft(2),
		ListCurrent:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#3a86ff")).PaddingLeft(1),
		Key:           lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(accent).Padding(0, 1),
		KeyDesc:       lipgloss.NewStyle().Foreground(lipgloss.Color("#1f1f1f")),
		Dim:           lipgloss.NewStyle().Foreground(lipgloss.Color("248")),
	}
}
