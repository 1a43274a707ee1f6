package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleNarration = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleHit = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleMiss = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleHealing = lipgloss.NewStyle().
			Foreground(lipgloss.Color("114"))

	styleDown = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleOperatorInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleTrace = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of an output line for styling.
type lineKind int

const (
	kindNarration lineKind = iota
	kindHit
	kindMiss
	kindHealing
	kindDown
	kindSystem
	kindTrace
)

// classifyLine determines what kind of output line this is.
func classifyLine(line string) lineKind {
	switch {
	case strings.HasPrefix(line, "[trace]"):
		return kindTrace
	case strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]"):
		return kindSystem
	case strings.Contains(line, "goes down"):
		return kindDown
	case strings.Contains(line, "regains"):
		return kindHealing
	case strings.Contains(line, "misses"), strings.Contains(line, "saves against"):
		return kindMiss
	case strings.Contains(line, "damage"):
		return kindHit
	default:
		return kindNarration
	}
}

// renderLineKind applies the style for a given lineKind.
func renderLineKind(line string, kind lineKind) string {
	switch kind {
	case kindHit:
		return styleHit.Render(line)
	case kindMiss:
		return styleMiss.Render(line)
	case kindHealing:
		return styleHealing.Render(line)
	case kindDown:
		return styleDown.Render(line)
	case kindSystem:
		return styleSystem.Render(line)
	case kindTrace:
		return styleTrace.Render(line)
	default:
		return styleNarration.Render(line)
	}
}
