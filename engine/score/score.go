// Package score combines candidate, threat, and opportunity signals plus
// seeded difficulty variance into a ranked list of scored actions. The
// total is the sum of six independently computed components; ordering is
// deterministic for a given context and seed.
package score

import (
	"sort"

	"github.com/nathoo/tacticore/engine/opportunity"
	"github.com/nathoo/tacticore/engine/resource"
	"github.com/nathoo/tacticore/engine/rng"
	"github.com/nathoo/tacticore/engine/rules"
	"github.com/nathoo/tacticore/engine/threat"
	"github.com/nathoo/tacticore/types"
)

// Oracle is the combat-math collaborator the scorer consumes.
type Oracle interface {
	HitProbability(attackBonus, targetAC int, adv types.AdvantageState) float64
	SaveFailProbability(dc, saveBonus int, adv types.AdvantageState) float64
	CritChance(adv types.AdvantageState) float64
	ExpectedDamage(expr string, mod int, critChance float64, res types.ResistanceState) float64
}

// Spatial is the geometry collaborator the scorer consumes.
type Spatial interface {
	Distance(a, b types.Position) int
	HasCover(attacker, target types.Position, m types.GridMap) bool
}

// Variance spread per difficulty. Easy is wide enough that a materially
// suboptimal action wins a meaningful share of the time; hard is near
// deterministic.
const (
	SpreadEasy   = 0.60
	SpreadNormal = 0.15
	SpreadHard   = 0.02
)

const (
	hitProbWeight    = 10.0
	targetPrioWeight = 0.3
	coverBonus       = 2.0
	rangeBandBonus   = 2.0
	rangeBandPenalty = 2.0
	oaPenalty        = 2.0
)

// Scorer ranks candidates. Both collaborators are required.
type Scorer struct {
	Rules   Oracle
	Spatial Spatial
}

// ScoreAll scores every candidate against its best target and returns
// them sorted by total descending. Variance draws come from the given
// stream in candidate order, so identical input reproduces identical
// ordering, ties included.
func (s *Scorer) ScoreAll(cands []types.ActionCandidate, ctx *types.TacticalContext, variance *rng.Stream) []types.ScoredAction {
	spread := SpreadHard
	switch ctx.Difficulty {
	case types.DifficultyEasy:
		spread = SpreadEasy
	case types.DifficultyNormal:
		spread = SpreadNormal
	}

	out := make([]types.ScoredAction, 0, len(cands))
	for _, cand := range cands {
		sa := s.scoreCandidate(cand, ctx)
		sa.Total *= variance.Variance(spread)
		out = append(out, sa)
	}

	// Stable sort: equal totals keep generation order, which is itself
	// deterministic.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// scoreCandidate scores one candidate against each possible target and
// keeps the best.
func (s *Scorer) scoreCandidate(cand types.ActionCandidate, ctx *types.TacticalContext) types.ScoredAction {
	if !cand.NeedsTarget || len(cand.TargetIDs) == 0 {
		return s.scoreUntargeted(cand, ctx)
	}

	best := types.ScoredAction{Candidate: cand, Total: -1 << 30}
	for _, targetID := range cand.TargetIDs {
		sa := s.scoreAgainst(cand, targetID, ctx)
		if sa.Total > best.Total {
			best = sa
		}
	}
	return best
}

// scoreAgainst computes the full breakdown for a candidate against one
// target.
func (s *Scorer) scoreAgainst(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) types.ScoredAction {
	target := findCreature(ctx, targetID)
	opps := opportunity.Evaluate(cand, targetID, ctx)

	var b types.ScoreBreakdown
	b.Damage = s.damageScore(cand, target, targetID, ctx)
	b.HitProbability = s.hitProbabilityScore(cand, target, targetID, ctx)
	b.TargetPriority = s.targetPriorityScore(cand, target, ctx)
	b.ResourceCost = resource.CostScore(cand.Cost, ctx)
	for _, o := range opps {
		b.TacticalValue += o.Bonus
	}
	b.Positioning = s.positioningScore(cand, targetID, ctx)

	total := b.Damage + b.HitProbability + b.TargetPriority + b.ResourceCost + b.TacticalValue + b.Positioning
	return types.ScoredAction{
		Candidate:     cand,
		TargetID:      targetID,
		Total:         total,
		Breakdown:     b,
		Opportunities: opps,
	}
}

// scoreUntargeted handles dodge, movement, and self-directed candidates,
// which have no per-target math.
func (s *Scorer) scoreUntargeted(cand types.ActionCandidate, ctx *types.TacticalContext) types.ScoredAction {
	var b types.ScoreBreakdown
	hpFrac := hpFraction(ctx.Actor)
	adjacent := adjacentEnemies(ctx)

	switch cand.Type {
	case types.ActionDodge:
		// Worth more the more enemies are on you and the lower you are.
		b.TacticalValue = 1 + 1.5*float64(adjacent)*(1.3-hpFrac)
	case types.ActionDisengage:
		b.Positioning = 1.5 * float64(adjacent) * (1.5 - hpFrac)
	case types.ActionMove, types.ActionDash:
		if adjacent == 0 && wantsMelee(ctx.Actor) {
			// Closing distance is the whole point for a melee creature.
			b.Positioning = 3
		} else {
			b.Positioning = 1 + float64(adjacent)*(1.2-hpFrac)
		}
	case types.ActionAbility:
		if cand.AbilityID != "" {
			// Healing potion: value is the HP actually recovered.
			missing := float64(ctx.Actor.MaxHP - ctx.Actor.HP)
			heal := rules.Average("2d4", 2)
			if heal > missing {
				heal = missing
			}
			b.Damage = heal
			b.ResourceCost = resource.CostScore(cand.Cost, ctx)
		}
	}

	total := b.Damage + b.HitProbability + b.TargetPriority + b.ResourceCost + b.TacticalValue + b.Positioning
	return types.ScoredAction{Candidate: cand, Total: total, Breakdown: b}
}

// damageScore is expected damage: base × hit (or save-fail) probability,
// adjusted for advantage and the target's resistance to the damage type.
func (s *Scorer) damageScore(cand types.ActionCandidate, target *types.Creature, targetID string, ctx *types.TacticalContext) float64 {
	if target == nil {
		return 0
	}

	switch cand.Type {
	case types.ActionAttack:
		a := cand.Attack
		adv := advantageFor(cand, targetID, ctx)
		p := s.Rules.HitProbability(a.Bonus, target.AC, adv)
		crit := s.Rules.CritChance(adv)
		dmg := s.Rules.ExpectedDamage(a.DamageDice, a.DamageMod, crit, target.Resistances[a.DamageType])
		count := a.Count
		if count < 1 {
			count = 1
		}
		return dmg * p * float64(count)

	case types.ActionCast:
		sp := cand.Spell
		if sp.HealingDice != "" || sp.HealingMod > 0 {
			missing := float64(target.MaxHP - target.HP)
			heal := rules.Average(sp.HealingDice, sp.HealingMod)
			if heal > missing {
				heal = missing
			}
			return heal
		}
		if sp.AttackRoll {
			adv := advantageFor(cand, targetID, ctx)
			p := s.Rules.HitProbability(sp.AttackBonus, target.AC, adv)
			crit := s.Rules.CritChance(adv)
			return s.Rules.ExpectedDamage(sp.DamageDice, sp.DamageMod, crit, target.Resistances[sp.DamageType]) * p
		}
		fail := s.Rules.SaveFailProbability(sp.SaveDC, target.SaveBonuses[sp.SaveAbility], types.RollNormal)
		dmg := s.Rules.ExpectedDamage(sp.DamageDice, sp.DamageMod, 0, target.Resistances[sp.DamageType])
		if sp.HalfOnSave {
			return dmg * (fail + 0.5*(1-fail))
		}
		return dmg * fail

	case types.ActionHelp:
		// Advantage for an ally's next attack: roughly the uplift on the
		// strongest ally attack.
		var best float64
		for _, ally := range ctx.Allies {
			if ally.HP <= 0 {
				continue
			}
			if d := threat.DamagePerRound(ally); d > best {
				best = d
			}
		}
		return best * 0.25
	}
	return 0
}

// hitProbabilityScore rewards reliable actions independent of their
// payload.
func (s *Scorer) hitProbabilityScore(cand types.ActionCandidate, target *types.Creature, targetID string, ctx *types.TacticalContext) float64 {
	if target == nil {
		return 0
	}
	switch cand.Type {
	case types.ActionAttack:
		return s.Rules.HitProbability(cand.Attack.Bonus, target.AC, advantageFor(cand, targetID, ctx)) * hitProbWeight
	case types.ActionCast:
		sp := cand.Spell
		if sp.HealingDice != "" || sp.HealingMod > 0 {
			return hitProbWeight // healing doesn't miss
		}
		if sp.AttackRoll {
			return s.Rules.HitProbability(sp.AttackBonus, target.AC, advantageFor(cand, targetID, ctx)) * hitProbWeight
		}
		return s.Rules.SaveFailProbability(sp.SaveDC, target.SaveBonuses[sp.SaveAbility], types.RollNormal) * hitProbWeight
	}
	return 0
}

// targetPriorityScore favors finishing weakened high-threat targets.
func (s *Scorer) targetPriorityScore(cand types.ActionCandidate, target *types.Creature, ctx *types.TacticalContext) float64 {
	if target == nil || target.Team == ctx.Actor.Team {
		return 0
	}
	t := threat.Assess(*target, ctx)
	return t * (0.5 + 0.5*(1-hpFraction(*target))) * targetPrioWeight
}

// positioningScore evaluates the actor's current square for this action:
// cover from the target, range-band fit, and opportunity attacks an
// approach would provoke.
func (s *Scorer) positioningScore(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) float64 {
	self, ok := ctx.Positions[ctx.Actor.ID]
	if !ok {
		return 0
	}
	tp, ok := ctx.Positions[targetID]
	if !ok {
		return 0
	}
	dist := s.Spatial.Distance(self, tp)

	var score float64
	switch {
	case cand.Type == types.ActionAttack && !cand.Attack.Ranged:
		reach := cand.Attack.Reach
		if reach < 1 {
			reach = 1
		}
		if dist <= reach {
			score += rangeBandBonus
		} else {
			// Approaching through other enemies' reach provokes.
			score -= oaPenalty * float64(threatsOnApproach(ctx, targetID))
		}
	case cand.Type == types.ActionAttack && cand.Attack.Ranged:
		if s.Spatial.HasCover(tp, self, ctx.Map) {
			score += coverBonus
		}
		if dist <= cand.Attack.Range && dist > 1 {
			score += rangeBandBonus
		} else if cand.Attack.LongRange > 0 && dist > cand.Attack.Range {
			score -= rangeBandPenalty
		}
		if dist <= 1 {
			// Shooting in melee.
			score -= rangeBandPenalty
		}
	case cand.Type == types.ActionCast:
		if dist > cand.Spell.Range && cand.Spell.Range > 0 {
			score -= rangeBandPenalty
		}
	}
	return score
}

// advantageFor folds Help-granted advantage and target conditions into a
// roll state.
func advantageFor(cand types.ActionCandidate, targetID string, ctx *types.TacticalContext) types.AdvantageState {
	adv := false
	dis := false

	if ctx.AdvantageOn[targetID] {
		adv = true
	}
	for _, c := range ctx.Conditions[targetID] {
		switch c {
		case types.CondParalyzed, types.CondUnconscious, types.CondStunned:
			adv = true
		case types.CondProne:
			if isRanged(cand) {
				dis = true
			} else {
				adv = true
			}
		}
	}
	for _, c := range ctx.Conditions[ctx.Actor.ID] {
		switch c {
		case types.CondProne, types.CondPoisoned, types.CondFrightened, types.CondRestrained:
			dis = true
		}
	}

	switch {
	case adv && !dis:
		return types.RollAdvantage
	case dis && !adv:
		return types.RollDisadvantage
	default:
		return types.RollNormal
	}
}

// threatsOnApproach counts enemies other than the target already adjacent
// to the actor; moving to the target walks out of their reach.
func threatsOnApproach(ctx *types.TacticalContext, targetID string) int {
	self, ok := ctx.Positions[ctx.Actor.ID]
	if !ok {
		return 0
	}
	n := 0
	for _, e := range ctx.Enemies {
		if e.ID == targetID || e.HP <= 0 {
			continue
		}
		if p, ok := ctx.Positions[e.ID]; ok {
			if dx, dy := abs(p.X-self.X), abs(p.Y-self.Y); dx <= 1 && dy <= 1 {
				n++
			}
		}
	}
	return n
}

func isRanged(cand types.ActionCandidate) bool {
	if cand.Type == types.ActionAttack && cand.Attack != nil {
		return cand.Attack.Ranged
	}
	return cand.Type == types.ActionCast
}

func wantsMelee(c types.Creature) bool {
	for _, a := range c.Attacks {
		if !a.Ranged {
			return true
		}
	}
	return false
}

func hpFraction(c types.Creature) float64 {
	if c.MaxHP == 0 {
		return 1
	}
	return float64(c.HP) / float64(c.MaxHP)
}

func adjacentEnemies(ctx *types.TacticalContext) int {
	self, ok := ctx.Positions[ctx.Actor.ID]
	if !ok {
		return 0
	}
	n := 0
	for _, e := range ctx.Enemies {
		if e.HP <= 0 {
			continue
		}
		if p, ok := ctx.Positions[e.ID]; ok {
			if dx, dy := abs(p.X-self.X), abs(p.Y-self.Y); dx <= 1 && dy <= 1 {
				n++
			}
		}
	}
	return n
}

func findCreature(ctx *types.TacticalContext, id string) *types.Creature {
	if ctx.Actor.ID == id {
		return &ctx.Actor
	}
	for i := range ctx.Allies {
		if ctx.Allies[i].ID == id {
			return &ctx.Allies[i]
		}
	}
	for i := range ctx.Enemies {
		if ctx.Enemies[i].ID == id {
			return &ctx.Enemies[i]
		}
	}
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
