// Package candidates turns the action types allowed by a behavior tree
// into a bounded list of concrete, resource-checked options. Early
// pruning happens here: anything whose cost exceeds what remains in the
// actor's pool is discarded before scoring, which is what keeps the
// search space bounded under the decision time budget.
package candidates

import (
	"github.com/nathoo/tacticore/types"
)

// MaxCandidates caps the search space; destination squares are capped
// separately by the positioning strategy.
const MaxCandidates = 20

// HealingPotionID is the one consumable the engine knows how to value.
const HealingPotionID = "healing_potion"

// Generate enumerates candidates for the allowed action types in a fixed
// order (attacks, spells, abilities, movement, defensive) and truncates
// at MaxCandidates.
func Generate(ctx *types.TacticalContext, allowed []types.ActionType, priority int) []types.ActionCandidate {
	var out []types.ActionCandidate
	pool := ctx.Resources[ctx.Actor.ID]

	for _, t := range allowed {
		switch t {
		case types.ActionAttack:
			out = append(out, attackCandidates(ctx, pool, priority)...)
		case types.ActionCast:
			out = append(out, spellCandidates(ctx, pool, priority)...)
		case types.ActionAbility:
			out = append(out, consumableCandidates(ctx, pool, priority)...)
		case types.ActionMove, types.ActionDash, types.ActionDisengage:
			if ctx.Actor.Speed > 0 {
				out = append(out, types.ActionCandidate{
					Type:      t,
					Priority:  priority,
					NeedsMove: true,
				})
			}
		case types.ActionDodge:
			out = append(out, types.ActionCandidate{Type: types.ActionDodge, Priority: priority})
		case types.ActionHelp:
			if c, ok := helpCandidate(ctx, priority); ok {
				out = append(out, c)
			}
		}
		if len(out) >= MaxCandidates {
			break
		}
	}

	if len(out) > MaxCandidates {
		out = out[:MaxCandidates]
	}
	return out
}

// attackCandidates yields one candidate per attack mode. Multiattack is a
// single candidate carrying the attack count. Limited-use attack modes
// are pruned when no charge remains.
func attackCandidates(ctx *types.TacticalContext, pool types.ResourcePool, priority int) []types.ActionCandidate {
	targets := livingEnemies(ctx)
	if len(targets) == 0 {
		return nil
	}

	var out []types.ActionCandidate
	for i := range ctx.Actor.Attacks {
		a := &ctx.Actor.Attacks[i]
		cost := types.Resource{}
		if a.UsesID != "" {
			if pool.AbilityUses[a.UsesID] <= 0 {
				continue
			}
			cost = types.Resource{Kind: types.ResourceAbility, ID: a.UsesID}
		}
		out = append(out, types.ActionCandidate{
			Type:        types.ActionAttack,
			Attack:      a,
			TargetIDs:   targets,
			Cost:        cost,
			Priority:    priority,
			NeedsTarget: true,
			NeedsMove:   !a.Ranged,
		})
	}
	return out
}

// spellCandidates yields one candidate per known spell whose minimum slot
// level is currently available. Cantrips are always castable.
func spellCandidates(ctx *types.TacticalContext, pool types.ResourcePool, priority int) []types.ActionCandidate {
	var out []types.ActionCandidate
	for i := range ctx.Actor.Spells {
		sp := &ctx.Actor.Spells[i]

		cost := types.Resource{}
		if sp.Level > 0 {
			lvl, ok := lowestSlot(pool, sp.Level)
			if !ok {
				continue
			}
			cost = types.Resource{Kind: types.ResourceSpellSlot, Level: lvl}
		}

		var targets []string
		if sp.HealingDice != "" || sp.HealingMod > 0 {
			targets = injuredAllies(ctx)
		} else {
			targets = livingEnemies(ctx)
		}
		if len(targets) == 0 {
			continue
		}

		out = append(out, types.ActionCandidate{
			Type:        types.ActionCast,
			Spell:       sp,
			TargetIDs:   targets,
			Cost:        cost,
			Priority:    priority,
			NeedsTarget: true,
		})
	}
	return out
}

// consumableCandidates yields a healing-potion candidate when one remains
// and the actor is hurt.
func consumableCandidates(ctx *types.TacticalContext, pool types.ResourcePool, priority int) []types.ActionCandidate {
	if pool.Consumables[HealingPotionID] <= 0 || ctx.Actor.HP >= ctx.Actor.MaxHP {
		return nil
	}
	return []types.ActionCandidate{{
		Type:      types.ActionAbility,
		AbilityID: HealingPotionID,
		Cost:      types.Resource{Kind: types.ResourceConsumable, ID: HealingPotionID},
		Priority:  priority,
	}}
}

// helpCandidate targets the ally that would benefit from advantage, when
// any ally is standing.
func helpCandidate(ctx *types.TacticalContext, priority int) (types.ActionCandidate, bool) {
	targets := livingEnemies(ctx)
	if len(targets) == 0 {
		return types.ActionCandidate{}, false
	}
	for _, a := range ctx.Allies {
		if a.HP > 0 {
			return types.ActionCandidate{
				Type:        types.ActionHelp,
				TargetIDs:   targets,
				Priority:    priority,
				NeedsTarget: true,
			}, true
		}
	}
	return types.ActionCandidate{}, false
}

// lowestSlot finds the lowest available slot level at or above min.
func lowestSlot(pool types.ResourcePool, min int) (int, bool) {
	for lvl := min; lvl <= 9; lvl++ {
		if pool.SpellSlots[lvl] > 0 {
			return lvl, true
		}
	}
	return 0, false
}

func livingEnemies(ctx *types.TacticalContext) []string {
	var out []string
	for _, e := range ctx.Enemies {
		if e.HP > 0 {
			out = append(out, e.ID)
		}
	}
	return out
}

func injuredAllies(ctx *types.TacticalContext) []string {
	var out []string
	for _, a := range ctx.Allies {
		if a.HP > 0 && a.HP < a.MaxHP {
			out = append(out, a.ID)
		}
	}
	if ctx.Actor.HP < ctx.Actor.MaxHP {
		out = append(out, ctx.Actor.ID)
	}
	return out
}
