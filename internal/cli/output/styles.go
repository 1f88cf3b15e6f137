package output

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used in text mode.
type Styles struct {
	Header1 lipgloss.Style
	Header2 lipgloss.Style
	Bold    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Muted   lipgloss.Style
	Code    lipgloss.Style
}

// NewStyles creates styles bound to re. Without color every style renders
// its input unchanged.
func NewStyles(re *lipgloss.Renderer, color bool) *Styles {
	if !color {
		plain := re.NewStyle()
		return &Styles{
			Header1: plain, Header2: plain, Bold: plain,
			Success: plain, Warning: plain, Error: plain,
			Info: plain, Muted: plain, Code: plain,
		}
	}

	return &Styles{
		Header1: re.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).MarginBottom(1),
		Header2: re.NewStyle().Bold(true).Foreground(lipgloss.Color("14")),
		Bold:    re.NewStyle().Bold(true),
		Success: re.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: re.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   re.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    re.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:   re.NewStyle().Foreground(lipgloss.Color("8")),
		Code:    re.NewStyle().Foreground(lipgloss.Color("13")),
	}
}
