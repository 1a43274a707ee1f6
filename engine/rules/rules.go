// Package rules is the default combat-math oracle: dice expressions,
// d20 hit and save probabilities, and resistance multipliers. Every
// function is pure and deterministic.
package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/tacticore/types"
)

// Dice is a parsed dice expression like "2d6" or "1d8+3".
type Dice struct {
	Count int
	Sides int
	Mod   int
}

// ParseDice parses "NdS", "NdS+M" or "NdS-M". An empty expression parses
// to the zero Dice (no damage).
func ParseDice(expr string) (Dice, error) {
	expr = strings.TrimSpace(strings.ToLower(expr))
	if expr == "" {
		return Dice{}, nil
	}

	var d Dice
	rest := expr
	if i := strings.IndexAny(expr, "+-"); i > 0 {
		mod, err := strconv.Atoi(expr[i:])
		if err != nil {
			return Dice{}, fmt.Errorf("bad dice modifier in %q", expr)
		}
		d.Mod = mod
		rest = expr[:i]
	}

	parts := strings.Split(rest, "d")
	if len(parts) != 2 {
		return Dice{}, fmt.Errorf("bad dice expression %q", expr)
	}
	count, err := strconv.Atoi(parts[0])
	if err != nil || count < 1 {
		return Dice{}, fmt.Errorf("bad dice count in %q", expr)
	}
	sides, err := strconv.Atoi(parts[1])
	if err != nil || sides < 2 {
		return Dice{}, fmt.Errorf("bad dice sides in %q", expr)
	}
	d.Count = count
	d.Sides = sides
	return d, nil
}

// Average returns the expected value of a dice expression plus modifier.
// Unparseable expressions average to the bare modifier.
func Average(expr string, mod int) float64 {
	d, err := ParseDice(expr)
	if err != nil || d.Count == 0 {
		return float64(mod)
	}
	return float64(d.Count)*(float64(d.Sides)+1)/2 + float64(d.Mod) + float64(mod)
}

// Roll evaluates a dice expression with the given die-roll function.
// Used by the encounter resolver, never by the decision pipeline.
func Roll(expr string, mod int, roll func(sides int) int) int {
	d, err := ParseDice(expr)
	if err != nil || d.Count == 0 {
		return mod
	}
	total := d.Mod + mod
	for i := 0; i < d.Count; i++ {
		total += roll(d.Sides)
	}
	return total
}

// Oracle is the default RulesOracle implementation. Stateless.
type Oracle struct{}

// HitProbability returns P(d20 + bonus >= ac), adjusted for advantage
// state. A natural 1 always misses and a natural 20 always hits, so the
// base probability is clamped to [0.05, 0.95].
func (Oracle) HitProbability(attackBonus, targetAC int, adv types.AdvantageState) float64 {
	need := targetAC - attackBonus
	p := float64(21-need) / 20
	if p < 0.05 {
		p = 0.05
	}
	if p > 0.95 {
		p = 0.95
	}
	switch adv {
	case types.RollAdvantage:
		return 1 - (1-p)*(1-p)
	case types.RollDisadvantage:
		return p * p
	default:
		return p
	}
}

// SaveFailProbability returns P(target fails a save), i.e. P(d20 + bonus < dc).
func (Oracle) SaveFailProbability(dc, saveBonus int, adv types.AdvantageState) float64 {
	need := dc - saveBonus
	pass := float64(21-need) / 20
	if pass < 0.05 {
		pass = 0.05
	}
	if pass > 0.95 {
		pass = 0.95
	}
	switch adv {
	case types.RollAdvantage:
		pass = 1 - (1-pass)*(1-pass)
	case types.RollDisadvantage:
		pass = pass * pass
	}
	return 1 - pass
}

// CritChance returns the probability of a natural 20 under the given
// advantage state.
func (Oracle) CritChance(adv types.AdvantageState) float64 {
	switch adv {
	case types.RollAdvantage:
		return 1 - 0.95*0.95
	case types.RollDisadvantage:
		return 0.05 * 0.05
	default:
		return 0.05
	}
}

// ExpectedDamage returns the average damage of a dice expression plus
// modifier, with crits adding one extra set of dice, scaled by the
// target's resistance state.
func (Oracle) ExpectedDamage(expr string, mod int, critChance float64, res types.ResistanceState) float64 {
	base := Average(expr, mod)
	diceOnly := Average(expr, 0)
	dmg := base + critChance*diceOnly
	return dmg * ResistanceMultiplier(res)
}

// ResistanceMultiplier maps a resistance state to its damage multiplier:
// resistant ½×, vulnerable 2×, immune 0×.
func ResistanceMultiplier(res types.ResistanceState) float64 {
	switch res {
	case types.ResResistant:
		return 0.5
	case types.ResVulnerable:
		return 2
	case types.ResImmune:
		return 0
	default:
		return 1
	}
}

// AbilityMod converts an ability score to its modifier: (score-10)/2,
// rounded down.
func AbilityMod(score int) int {
	if score >= 10 {
		return (score - 10) / 2
	}
	return -((11 - score) / 2)
}
