// Package threat scores how dangerous an enemy combatant is, independent
// of who is asking. The score feeds target prioritization and resource
// policy. Assess is pure: same creature and context, same score.
package threat

import (
	"github.com/nathoo/tacticore/engine/rules"
	"github.com/nathoo/tacticore/types"
)

// Component weights. Damage per round dominates; healing and control
// presence push support creatures up the list.
const (
	weightDamage  = 1.0
	weightHealing = 0.8
	weightControl = 0.6

	concentrationBonus = 5.0

	// typicalSave approximates the save bonus of an average combatant,
	// used to weight control spells by how often they would land.
	typicalSave = 2
)

// Assess returns the threat score for a creature. Dead creatures score 0.
func Assess(c types.Creature, ctx *types.TacticalContext) float64 {
	if c.HP <= 0 {
		return 0
	}

	score := weightDamage * DamagePerRound(c)
	score += weightHealing * HealingPerRound(c)
	score += weightControl * controlPotential(c)

	if ctx.Concentration[c.ID] != "" {
		score += concentrationBonus
	}

	score += roleBonus(c)
	return score
}

// DamagePerRound estimates average damage output per round: the best of
// the creature's attack routines (multiattack counted) and damage spells.
func DamagePerRound(c types.Creature) float64 {
	var best float64
	for _, a := range c.Attacks {
		count := a.Count
		if count < 1 {
			count = 1
		}
		if d := rules.Average(a.DamageDice, a.DamageMod) * float64(count); d > best {
			best = d
		}
	}
	for _, sp := range c.Spells {
		if d := rules.Average(sp.DamageDice, sp.DamageMod); d > best {
			best = d
		}
	}
	return best
}

// HealingPerRound estimates average healing output per round from the
// creature's best healing spell.
func HealingPerRound(c types.Creature) float64 {
	var best float64
	for _, sp := range c.Spells {
		if sp.HealingDice == "" && sp.HealingMod == 0 {
			continue
		}
		if h := rules.Average(sp.HealingDice, sp.HealingMod); h > best {
			best = h
		}
	}
	return best
}

// controlPotential weights the creature's best control spell by how
// likely a typical target is to fail the save.
func controlPotential(c types.Creature) float64 {
	o := rules.Oracle{}
	var best float64
	for _, sp := range c.Spells {
		if !sp.Control {
			continue
		}
		fail := o.SaveFailProbability(sp.SaveDC, typicalSave, types.RollNormal)
		if v := fail * 10; v > best {
			best = v
		}
	}
	return best
}

// roleBonus ranks combat roles by ability-score heuristics rather than
// stored labels: healer > spellcaster > striker > tank.
func roleBonus(c types.Creature) float64 {
	switch Role(c) {
	case "healer":
		return 10
	case "spellcaster":
		return 7
	case "striker":
		return 4
	default:
		return 2
	}
}

// Role infers a combat role from ability-score and kit heuristics, not
// stored labels: healer, spellcaster, striker, or tank.
func Role(c types.Creature) string {
	hasHealing := false
	hasLeveled := false
	for _, sp := range c.Spells {
		if sp.HealingDice != "" || sp.HealingMod > 0 {
			hasHealing = true
		}
		if sp.Level > 0 {
			hasLeveled = true
		}
	}
	if hasHealing {
		return "healer"
	}
	if hasLeveled {
		return "spellcaster"
	}
	str := c.Abilities["str"]
	dex := c.Abilities["dex"]
	con := c.Abilities["con"]
	if str >= con || dex >= con {
		return "striker"
	}
	return "tank"
}
