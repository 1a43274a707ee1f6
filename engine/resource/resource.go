// Package resource is the policy layer deciding whether scarce resources
// (spell slots, limited abilities, consumables) are worth spending right
// now. The gate never forbids a candidate — it scales the scorer's cost
// penalty, so a genuinely urgent situation can still win on damage or
// tactical value.
package resource

import (
	"github.com/nathoo/tacticore/engine/threat"
	"github.com/nathoo/tacticore/types"
)

const (
	// Slot tiers 7–9 are reserved for critical situations.
	highTier = 7
	// Mid tiers 4–6 want a real fight left: at least this many enemies.
	midTier        = 4
	midTierEnemies = 3

	// Below this fraction of total resources remaining, the policy
	// biases toward free actions.
	scarcityThreshold = 0.3

	// An ally below this HP fraction marks the situation critical.
	criticalAllyHP = 0.25
	// So does a remaining-enemy threat sum above this.
	criticalThreatSum = 60.0

	perLevelPenalty   = 1.5
	abilityPenalty    = 4.0
	consumablePenalty = 3.0
	gatePenalty       = 2.5 // multiplier when the policy says "hold"
	scarcityPenalty   = 1.5 // multiplier when running dry
)

// ShouldSpend reports whether policy approves spending the resource in
// the current situation. At-will actions are always approved.
func ShouldSpend(res types.Resource, ctx *types.TacticalContext) bool {
	switch res.Kind {
	case types.ResourceNone:
		return true
	case types.ResourceSpellSlot:
		if res.Level >= highTier {
			return critical(ctx)
		}
		if res.Level >= midTier {
			return livingEnemies(ctx) >= midTierEnemies
		}
		return true
	default:
		// Abilities and consumables are once-per-encounter scale; hold
		// them unless the fight still warrants it.
		return livingEnemies(ctx) >= 2 || critical(ctx)
	}
}

// CostScore returns the (negative) resource-cost component for a
// candidate's score: proportional to scarcity, scaled up when the policy
// gate disapproves or the pool is running dry.
func CostScore(res types.Resource, ctx *types.TacticalContext) float64 {
	var base float64
	switch res.Kind {
	case types.ResourceNone:
		return 0
	case types.ResourceSpellSlot:
		base = perLevelPenalty * float64(res.Level)
	case types.ResourceAbility:
		base = abilityPenalty
	case types.ResourceConsumable:
		base = consumablePenalty
	}

	if !ShouldSpend(res, ctx) {
		base *= gatePenalty
	}
	if remainingFraction(ctx) < scarcityThreshold {
		base *= scarcityPenalty
	}
	return -base
}

// critical holds when an ally is nearly down or the enemy side still
// projects heavy threat.
func critical(ctx *types.TacticalContext) bool {
	for _, a := range append([]types.Creature{ctx.Actor}, ctx.Allies...) {
		if a.MaxHP > 0 && a.HP > 0 && float64(a.HP) < criticalAllyHP*float64(a.MaxHP) {
			return true
		}
	}
	sum := 0.0
	for _, e := range ctx.Enemies {
		sum += threat.Assess(e, ctx)
	}
	return sum > criticalThreatSum
}

// remainingFraction estimates how much of the actor's resource pool is
// left, weighting slots by level.
func remainingFraction(ctx *types.TacticalContext) float64 {
	pool, ok := ctx.Resources[ctx.Actor.ID]
	if !ok {
		return 1
	}
	have, max := 0, 0
	for lvl, n := range pool.SpellSlots {
		have += lvl * n
		max += lvl * maxSlots(lvl)
	}
	for _, n := range pool.AbilityUses {
		have += n
		max += n + 1
	}
	if max == 0 {
		return 1
	}
	return float64(have) / float64(max)
}

// maxSlots approximates a full-caster slot table per level; good enough
// for a scarcity heuristic when the starting pool is not recorded.
func maxSlots(level int) int {
	switch {
	case level <= 2:
		return 3
	case level <= 5:
		return 2
	default:
		return 1
	}
}

func livingEnemies(ctx *types.TacticalContext) int {
	n := 0
	for _, e := range ctx.Enemies {
		if e.HP > 0 {
			n++
		}
	}
	return n
}
