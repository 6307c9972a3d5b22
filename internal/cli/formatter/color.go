package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/parada/internal/domain"
	"github.com/alexanderramin/parada/internal/scheduler"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen      = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow     = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleYellowBold = lipgloss.NewStyle().Foreground(ColorYellow).Bold(true)
	StyleRed        = lipgloss.NewStyle().Foreground(ColorRed)
	StyleRedBold    = lipgloss.NewStyle().Foreground(ColorRed).Bold(true)
	StyleBlue       = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple     = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim        = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg         = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader     = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold       = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// PhaseStatusPill returns a colored indicator such as "● Em andamento".
// PacePill is empty for phases that are on track.
func PacePill(level scheduler.PaceLevel) string {
	switch level {
	case scheduler.PaceAtRisk:
		return StyleYellowBold.Render("▲ em risco")
	case scheduler.PaceLate:
		return StyleRedBold.Render("▼ atrasada")
	default:
		return ""
	}
}

func PhaseStatusPill(status domain.PhaseStatus) string {
	switch status {
	case domain.PhaseCompleted:
		return StyleGreen.Render("✔ Concluída")
	case domain.PhaseInProgress:
		return StyleYellow.Render("● Em andamento")
	case domain.PhaseNotStarted:
		return StyleDim.Render("○ Não iniciada")
	default:
		return StyleDim.Render(string(status))
	}
}

func AssetStatusPill(status domain.AssetStatus) string {
	switch status {
	case domain.AssetCompleted:
		return StyleGreen.Render("✔ Concluído")
	case domain.AssetDelayed:
		return StyleRed.Render("▲ Atrasado")
	case domain.AssetInProgress:
		return StyleYellow.Render("● Em andamento")
	default:
		return StyleDim.Render(string(status))
	}
}

func ActivityStatusPill(status domain.ActivityStatus) string {
	switch status {
	case domain.ActivityCompleted:
		return StyleGreen.Render("✔ Concluída")
	case domain.ActivityInProgress:
		return StyleYellow.Render("● Em andamento")
	case domain.ActivityDelayed:
		return StyleRed.Render("▲ Atrasada")
	case domain.ActivityPending:
		return StyleBlue.Render("○ Pendente")
	default:
		return StyleDim.Render(string(status))
	}
}

// FormatBadge labels the export a view was built from.
func FormatBadge(f domain.SourceFormat) string {
	switch f {
	case domain.FormatPreparation:
		return StyleBlue.Render("PREP")
	case domain.FormatPFUS3:
		return StylePurple.Render("PFUS3")
	default:
		return StyleDim.Render("--")
	}
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
