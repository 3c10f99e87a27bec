package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/tgienger/todo/internal/models"
)

// Theme is the palette the task board is drawn with
type Theme struct {
	Name string

	Surface lipgloss.Color // button text on filled backgrounds
	Text    lipgloss.Color
	Muted   lipgloss.Color

	Primary lipgloss.Color // titles, focus, selection text
	Heading lipgloss.Color // column headings
	Figure  lipgloss.Color // dashboard numbers

	// Due-date and priority signals
	Done    lipgloss.Color
	Soon    lipgloss.Color
	Overdue lipgloss.Color

	Border    lipgloss.Color
	Highlight lipgloss.Color // selected row background
}

// TokyoNight is the default theme
var TokyoNight = Theme{
	Name: "Tokyo Night",

	Surface: lipgloss.Color("#1a1b26"),
	Text:    lipgloss.Color("#c0caf5"),
	Muted:   lipgloss.Color("#565f89"),

	Primary: lipgloss.Color("#7aa2f7"),
	Heading: lipgloss.Color("#bb9af7"),
	Figure:  lipgloss.Color("#7dcfff"),

	Done:    lipgloss.Color("#9ece6a"),
	Soon:    lipgloss.Color("#e0af68"),
	Overdue: lipgloss.Color("#f7768e"),

	Border:    lipgloss.Color("#3b4261"),
	Highlight: lipgloss.Color("#33467c"),
}

// Current holds the active theme
var Current = TokyoNight

// MaxWidth caps the board width on wide terminals
const MaxWidth = 100

// ContentWidth returns the width views lay themselves out in
func ContentWidth(terminalWidth int) int {
	return min(terminalWidth, MaxWidth)
}

// CenterView centers content horizontally when the terminal is wider than
// MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight, lipgloss.Center, lipgloss.Top, content)
}

// Truncate shortens s to width cells, marking the cut with an ellipsis.
// Styled input keeps its escape sequences.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return ansi.Truncate(s, width, "…")
}

// PriorityColor returns the color a priority badge is drawn in
func PriorityColor(p models.Priority) lipgloss.Color {
	switch p {
	case models.PriorityHigh:
		return Current.Overdue
	case models.PriorityLow:
		return Current.Done
	default:
		return Current.Soon
	}
}

// ProgressBar renders ratio (0-1) as a bar of width cells
func ProgressBar(ratio float64, width int) string {
	if width <= 0 {
		return ""
	}
	ratio = min(max(ratio, 0), 1)
	filled := int(ratio*float64(width) + 0.5)

	done := lipgloss.NewStyle().Foreground(Current.Done)
	rest := lipgloss.NewStyle().Foreground(Current.Border)
	return done.Render(strings.Repeat("█", filled)) + rest.Render(strings.Repeat("░", width-filled))
}

// Styles holds the pre-computed styles shared by every view
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	FilterBar    lipgloss.Style
	FilterButton lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style

	// Board
	ColumnHeading lipgloss.Style
	TaskDone      lipgloss.Style
	TaskOverdue   lipgloss.Style
	TaskDueToday  lipgloss.Style

	// Dashboard
	Card      lipgloss.Style
	CardValue lipgloss.Style

	Input        lipgloss.Style
	InputFocused lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current
	text := lipgloss.NewStyle().Foreground(t.Text)
	bold := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c).Bold(true) }
	boxed := func(border lipgloss.Color) lipgloss.Style {
		return text.Border(lipgloss.RoundedBorder()).BorderForeground(border)
	}

	return &Styles{
		Title:      bold(t.Primary),
		TitleMuted: lipgloss.NewStyle().Foreground(t.Muted),

		ListItem:     text.Padding(0, 2),
		ListSelected: bold(t.Primary).Background(t.Highlight).Padding(0, 2),

		FilterBar:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1),
		FilterButton: lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1),

		Button:        boxed(t.Border).Padding(0, 2),
		ButtonFocused: boxed(t.Primary).Foreground(t.Primary).Bold(true).Padding(0, 2),
		ButtonPrimary: bold(t.Surface).Background(t.Primary).Padding(0, 2),

		ColumnHeading: bold(t.Heading).Padding(0, 1),
		TaskDone:      lipgloss.NewStyle().Foreground(t.Muted).Strikethrough(true),
		TaskOverdue:   bold(t.Overdue),
		TaskDueToday:  bold(t.Soon),

		Card:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Border).Padding(0, 1).Width(16),
		CardValue: bold(t.Figure),

		Input:        boxed(t.Border).Padding(0, 1),
		InputFocused: boxed(t.Primary).Padding(0, 1),

		Help:    lipgloss.NewStyle().Foreground(t.Muted).Padding(1, 2),
		HelpKey: bold(t.Primary),

		StatusBar:   lipgloss.NewStyle().Foreground(t.Muted).Padding(0, 1),
		StatusError: lipgloss.NewStyle().Foreground(t.Overdue).Padding(0, 1),
	}
}
