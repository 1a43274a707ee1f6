package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderStatusBar produces a full-width inverted status line showing the
// round number and per-team hit point totals.
func (m Model) renderStatusBar() string {
	enc := m.runner.Enc

	totals := map[string][2]int{} // team → {current, max}
	for _, c := range enc.Creatures() {
		t := totals[c.Team]
		hp := c.HP
		if hp < 0 {
			hp = 0
		}
		totals[c.Team] = [2]int{t[0] + hp, t[1] + c.MaxHP}
	}

	teams := make([]string, 0, len(totals))
	for team := range totals {
		teams = append(teams, team)
	}
	sort.Strings(teams)

	parts := make([]string, 0, len(teams))
	for _, team := range teams {
		t := totals[team]
		parts = append(parts, fmt.Sprintf("%s %d/%d", team, t[0], t[1]))
	}

	left := " " + strings.Join(parts, " | ")
	right := fmt.Sprintf("R:%d ", m.runner.Round())
	if m.runner.Over() {
		if winner, ok := enc.Winner(); ok {
			right = fmt.Sprintf("%s wins | R:%d ", winner, m.runner.Round())
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
