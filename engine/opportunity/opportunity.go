// Package opportunity detects situational bonuses for a candidate
// action against a specific target: flanking, condition exploits,
// concentration breaking, area coverage, and hazard shoves. Each
// detector is independent; results are additive score bonuses and never
// alter legality.
package opportunity

import (
	"github.com/nathoo/tacticore/engine/grid"
	"github.com/nathoo/tacticore/types"
)

// Bonus magnitudes per opportunity kind.
const (
	flankingBonus      = 4.0
	proneMeleeBonus    = 3.0
	proneRangedPenalty = -2.0
	incapacitatedBonus = 6.0
	concentrationBonus = 4.0
	aoePerTargetBonus  = 2.5
	forcedMoveBonus    = 2.0
)

// Evaluate returns all opportunities the candidate would exploit against
// the given target. The set is computed fresh per call; nothing is
// cached or persisted.
func Evaluate(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) []types.TacticalOpportunity {
	var opps []types.TacticalOpportunity

	if o, ok := detectFlanking(cand, targetID, ctx); ok {
		opps = append(opps, o)
	}
	if o, ok := detectProne(cand, targetID, ctx); ok {
		opps = append(opps, o)
	}
	if o, ok := detectIncapacitated(cand, targetID, ctx); ok {
		opps = append(opps, o)
	}
	if o, ok := detectConcentrationBreak(cand, targetID, ctx); ok {
		opps = append(opps, o)
	}
	if o, ok := detectAoECoverage(cand, targetID, ctx); ok {
		opps = append(opps, o)
	}
	if o, ok := detectForcedMovement(cand, targetID, ctx); ok {
		opps = append(opps, o)
	}

	return opps
}

// detectFlanking fires when the actor and an ally stand adjacent to the
// target on exactly opposite sides.
func detectFlanking(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) (types.TacticalOpportunity, bool) {
	if !isMeleeAttack(cand) {
		return types.TacticalOpportunity{}, false
	}
	self, ok := ctx.Positions[ctx.Actor.ID]
	if !ok {
		return types.TacticalOpportunity{}, false
	}
	target, ok := ctx.Positions[targetID]
	if !ok || grid.Distance(self, target) > 1 {
		return types.TacticalOpportunity{}, false
	}

	for _, ally := range ctx.Allies {
		if ally.HP <= 0 {
			continue
		}
		ap, ok := ctx.Positions[ally.ID]
		if !ok || grid.Distance(ap, target) > 1 {
			continue
		}
		// Opposite sides: the actor and ally offsets from the target
		// cancel out.
		if self.X-target.X+ap.X-target.X == 0 && self.Y-target.Y+ap.Y-target.Y == 0 {
			return types.TacticalOpportunity{
				Kind:     types.OppFlanking,
				TargetID: targetID,
				Bonus:    flankingBonus,
				Affected: []string{ally.ID},
			}, true
		}
	}
	return types.TacticalOpportunity{}, false
}

// detectProne gives melee attacks a bonus and ranged attacks a penalty
// against prone targets.
func detectProne(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) (types.TacticalOpportunity, bool) {
	if !hasCondition(ctx, targetID, types.CondProne) {
		return types.TacticalOpportunity{}, false
	}
	switch {
	case isMeleeAttack(cand):
		return types.TacticalOpportunity{Kind: types.OppProneTarget, TargetID: targetID, Bonus: proneMeleeBonus}, true
	case isRangedAttack(cand):
		return types.TacticalOpportunity{Kind: types.OppProneTarget, TargetID: targetID, Bonus: proneRangedPenalty}, true
	}
	return types.TacticalOpportunity{}, false
}

// detectIncapacitated fires for any attack against a target that cannot
// defend itself.
func detectIncapacitated(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) (types.TacticalOpportunity, bool) {
	if !dealsDamage(cand) {
		return types.TacticalOpportunity{}, false
	}
	for _, c := range []types.Condition{types.CondIncapacitated, types.CondParalyzed, types.CondStunned, types.CondUnconscious} {
		if hasCondition(ctx, targetID, c) {
			return types.TacticalOpportunity{Kind: types.OppIncapacitated, TargetID: targetID, Bonus: incapacitatedBonus}, true
		}
	}
	return types.TacticalOpportunity{}, false
}

// detectConcentrationBreak fires when damaging a target would force a
// concentration check.
func detectConcentrationBreak(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) (types.TacticalOpportunity, bool) {
	if !dealsDamage(cand) || ctx.Concentration[targetID] == "" {
		return types.TacticalOpportunity{}, false
	}
	return types.TacticalOpportunity{Kind: types.OppConcentrationBreak, TargetID: targetID, Bonus: concentrationBonus}, true
}

// detectAoECoverage counts enemies inside an area template centered on
// the target, minus allies (and the actor) caught in it. Only a net
// positive coverage is reported.
func detectAoECoverage(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) (types.TacticalOpportunity, bool) {
	if cand.Spell == nil || cand.Spell.AoERadius <= 0 {
		return types.TacticalOpportunity{}, false
	}
	center, ok := ctx.Positions[targetID]
	if !ok {
		return types.TacticalOpportunity{}, false
	}

	var affected []string
	net := 0
	for _, e := range ctx.Enemies {
		if e.HP <= 0 {
			continue
		}
		if p, ok := ctx.Positions[e.ID]; ok && grid.Distance(p, center) <= cand.Spell.AoERadius {
			net++
			affected = append(affected, e.ID)
		}
	}
	for _, a := range ctx.Allies {
		if a.HP <= 0 {
			continue
		}
		if p, ok := ctx.Positions[a.ID]; ok && grid.Distance(p, center) <= cand.Spell.AoERadius {
			net--
			affected = append(affected, a.ID)
		}
	}
	if p, ok := ctx.Positions[ctx.Actor.ID]; ok && grid.Distance(p, center) <= cand.Spell.AoERadius {
		net--
	}

	if net <= 1 {
		// No better than a single-target spell, or friendly fire eats
		// the gain.
		return types.TacticalOpportunity{}, false
	}
	return types.TacticalOpportunity{
		Kind:     types.OppMultiTargetAoE,
		TargetID: targetID,
		Bonus:    aoePerTargetBonus * float64(net-1),
		Affected: affected,
	}, true
}

// detectForcedMovement fires when the target stands next to a map hazard
// a push could exploit.
func detectForcedMovement(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) (types.TacticalOpportunity, bool) {
	if !isMeleeAttack(cand) && cand.Type != types.ActionAbility {
		return types.TacticalOpportunity{}, false
	}
	target, ok := ctx.Positions[targetID]
	if !ok {
		return types.TacticalOpportunity{}, false
	}
	for _, h := range ctx.Map.Hazards {
		if grid.Distance(target, h.Pos) <= 1 {
			return types.TacticalOpportunity{Kind: types.OppForcedMovement, TargetID: targetID, Bonus: forcedMoveBonus}, true
		}
	}
	return types.TacticalOpportunity{}, false
}

func isMeleeAttack(cand types.ActionCandidate) bool {
	return cand.Type == types.ActionAttack && cand.Attack != nil && !cand.Attack.Ranged
}

func isRangedAttack(cand types.ActionCandidate) bool {
	if cand.Type == types.ActionAttack && cand.Attack != nil && cand.Attack.Ranged {
		return true
	}
	return cand.Type == types.ActionCast && cand.Spell != nil && cand.Spell.AttackRoll
}

func dealsDamage(cand types.ActionCandidate) bool {
	if cand.Type == types.ActionAttack && cand.Attack != nil {
		return true
	}
	return cand.Type == types.ActionCast && cand.Spell != nil && cand.Spell.DamageDice != ""
}

func hasCondition(ctx *types.TacticalContext, id string, cond types.Condition) bool {
	for _, c := range ctx.Conditions[id] {
		if c == cond {
			return true
		}
	}
	return false
}
