package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/sitegen/sitegen/internal/config"
)

// StyleManager holds the styles used by the browser
type StyleManager struct {
	// List view
	Title    lipgloss.Style
	Path     lipgloss.Style
	Date     lipgloss.Style
	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Dim      lipgloss.Style

	// Preview pane
	PreviewTitle lipgloss.Style
	PreviewPath  lipgloss.Style
	PreviewDate  lipgloss.Style
	PreviewText  lipgloss.Style

	Divider lipgloss.Style
	Status  lipgloss.Style

	SelectedBg lipgloss.Color
}

// DefaultStyles returns the styles used before config is loaded
func DefaultStyles() *StyleManager {
	return &StyleManager{
		Title:        lipgloss.NewStyle().Bold(true),
		Path:         lipgloss.NewStyle(),
		Date:         lipgloss.NewStyle(),
		Selected:     lipgloss.NewStyle().Background(lipgloss.Color("236")),
		Cursor:       lipgloss.NewStyle().Foreground(lipgloss.Color("212")),
		Dim:          lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		PreviewTitle: lipgloss.NewStyle().Bold(true),
		PreviewPath:  lipgloss.NewStyle(),
		PreviewDate:  lipgloss.NewStyle(),
		PreviewText:  lipgloss.NewStyle(),
		Divider:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		SelectedBg:   lipgloss.Color("236"),
	}
}

// LoadFromConfig rebuilds the styles from the color_* settings
func (s *StyleManager) LoadFromConfig() {
	titleColor := parseANSIColor(config.GetColorTitle())
	pathColor := parseANSIColor(config.GetColorPath())
	dateColor := parseANSIColor(config.GetColorDate())
	borderColor := parseANSIColor(config.GetColorBorder())
	cursorColor := parseANSIColor(config.GetColorCursor())
	selectedBg := parseANSIColor(config.GetColorSelected())
	dimColor := parseANSIColor(config.GetColorDim())

	s.Title = lipgloss.NewStyle().Foreground(titleColor)
	s.Path = lipgloss.NewStyle().Foreground(pathColor)
	s.Date = lipgloss.NewStyle().Foreground(dateColor)
	s.Selected = lipgloss.NewStyle().Background(selectedBg)
	s.Cursor = lipgloss.NewStyle().Foreground(cursorColor)
	s.Dim = lipgloss.NewStyle().Foreground(dimColor)

	s.PreviewTitle = lipgloss.NewStyle().Bold(true).Foreground(titleColor)
	s.PreviewPath = lipgloss.NewStyle().Foreground(pathColor)
	s.PreviewDate = lipgloss.NewStyle().Foreground(dateColor)
	s.PreviewText = lipgloss.NewStyle()

	s.Divider = lipgloss.NewStyle().Foreground(borderColor)
	s.SelectedBg = selectedBg
}

// WithSelection returns style with the selected background applied
func (s *StyleManager) WithSelection(style lipgloss.Style) lipgloss.Style {
	return style.Background(s.SelectedBg)
}

// parseANSIColor maps SGR foreground codes (30-37, 90-97) to the 16 base
// colors. Anything else is passed to lipgloss unchanged.
func parseANSIColor(code string) lipgloss.Color {
	ansiToLipgloss := map[string]string{
		"30": "0", "31": "1", "32": "2", "33": "3",
		"34": "4", "35": "5", "36": "6", "37": "7",
		"90": "8", "91": "9", "92": "10", "93": "11",
		"94": "12", "95": "13", "96": "14", "97": "15",
	}
	if mapped, ok := ansiToLipgloss[code]; ok {
		return lipgloss.Color(mapped)
	}
	return lipgloss.Color(code)
}

var styles = DefaultStyles()

// RefreshStyles reloads the package styles from config
func RefreshStyles() {
	styles.LoadFromConfig()
}
