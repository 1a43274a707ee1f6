// Package target picks the best target for a chosen action by weighted
// threat, vulnerability, and tactical-value criteria. Near-ties are
// broken first by range-band fit, then by a single seeded die roll, so
// the pick is a deterministic function of context and seed.
package target

import (
	"github.com/nathoo/tacticore/engine/rng"
	"github.com/nathoo/tacticore/engine/threat"
	"github.com/nathoo/tacticore/types"
)

// Criteria weights: threat 40%, vulnerability 30%, tactical value 30%.
const (
	threatWeight        = 0.4
	vulnerabilityWeight = 0.3
	tacticalWeight      = 0.3

	// Scores closer than this are a tie.
	epsilon = 0.01
)

// Spatial is the geometry collaborator the selector consumes.
type Spatial interface {
	Distance(a, b types.Position) int
}

// Selector picks targets.
type Selector struct {
	Spatial Spatial
}

// Select returns the best target id for the action, or false when the
// action has no possible targets. tiebreak is drawn at most once, and
// only when two or more targets tie on score and band distance.
func (s *Selector) Select(action types.ActionCandidate, ctx *types.TacticalContext, tiebreak *rng.Stream) (string, bool) {
	if len(action.TargetIDs) == 0 {
		return "", false
	}
	if len(action.TargetIDs) == 1 {
		return action.TargetIDs[0], true
	}

	type scored struct {
		id    string
		score float64
		band  int // distance from the action's optimal range band
	}

	var best []scored
	for _, id := range action.TargetIDs {
		sc := scored{
			id:    id,
			score: s.scoreTarget(action, id, ctx),
			band:  s.bandDistance(action, id, ctx),
		}
		switch {
		case len(best) == 0 || sc.score > best[0].score+epsilon:
			best = []scored{sc}
		case sc.score > best[0].score-epsilon:
			best = append(best, sc)
		}
	}

	if len(best) == 1 {
		return best[0].id, true
	}

	// First tie-break: nearest the optimal range band.
	minBand := best[0].band
	for _, sc := range best[1:] {
		if sc.band < minBand {
			minBand = sc.band
		}
	}
	var tied []scored
	for _, sc := range best {
		if sc.band == minBand {
			tied = append(tied, sc)
		}
	}
	if len(tied) == 1 {
		return tied[0].id, true
	}

	// Final tie-break: one seeded die roll modulo the tied-set size.
	return tied[tiebreak.Intn(len(tied))].id, true
}

// scoreTarget computes the weighted target score.
func (s *Selector) scoreTarget(action types.ActionCandidate, id string, ctx *types.TacticalContext) float64 {
	c := findCreature(ctx, id)
	if c == nil {
		return 0
	}
	return threatWeight*threat.Assess(*c, ctx) +
		vulnerabilityWeight*s.vulnerability(action, *c, ctx) +
		tacticalWeight*s.tacticalValue(action, *c, ctx)
}

// vulnerability rates how easy the target is to put down: inverse HP
// fraction, AC against this action's attack bonus, and resistance or
// immunity to its damage type.
func (s *Selector) vulnerability(action types.ActionCandidate, c types.Creature, ctx *types.TacticalContext) float64 {
	v := 0.0
	if c.MaxHP > 0 {
		v += 10 * (1 - float64(c.HP)/float64(c.MaxHP))
	}

	bonus, dmgType := actionOffense(action)
	// Each point of AC above what the attack bonus comfortably hits
	// costs a point.
	v += float64(10 + bonus - c.AC)

	switch c.Resistances[dmgType] {
	case types.ResResistant:
		v -= 5
	case types.ResImmune:
		v -= 15
	case types.ResVulnerable:
		v += 5
	}

	for _, cond := range ctx.Conditions[c.ID] {
		switch cond {
		case types.CondParalyzed, types.CondStunned, types.CondUnconscious, types.CondRestrained:
			v += 4
		case types.CondProne:
			if !actionIsRanged(action) {
				v += 2
			}
		}
	}
	return v
}

// tacticalValue rates the strategic payoff of hitting this target: role,
// active concentration, isolation from its allies, and how close it sits
// to the action's optimal range band.
func (s *Selector) tacticalValue(action types.ActionCandidate, c types.Creature, ctx *types.TacticalContext) float64 {
	v := 0.0
	switch threat.Role(c) {
	case "healer":
		v += 6
	case "spellcaster":
		v += 4
	case "striker":
		v += 2
	}
	if ctx.Concentration[c.ID] != "" {
		v += 4
	}

	// Isolation: no enemy-side companion within two cells.
	if p, ok := ctx.Positions[c.ID]; ok {
		isolated := true
		for _, other := range ctx.Enemies {
			if other.ID == c.ID || other.HP <= 0 {
				continue
			}
			if op, ok := ctx.Positions[other.ID]; ok && s.Spatial.Distance(p, op) <= 2 {
				isolated = false
				break
			}
		}
		if isolated {
			v += 3
		}
	}

	band := s.bandDistance(action, c.ID, ctx)
	v += 3 - float64(band)
	return v
}

// bandDistance is how far the target sits from the action's optimal
// range band: adjacent for melee, mid-band for ranged weapons, long band
// for spells.
func (s *Selector) bandDistance(action types.ActionCandidate, id string, ctx *types.TacticalContext) int {
	self, ok := ctx.Positions[ctx.Actor.ID]
	if !ok {
		return 0
	}
	tp, ok := ctx.Positions[id]
	if !ok {
		return 0
	}
	dist := s.Spatial.Distance(self, tp)

	optimal := 1
	switch {
	case action.Type == types.ActionAttack && action.Attack != nil && action.Attack.Ranged:
		optimal = action.Attack.Range / 2
	case action.Type == types.ActionCast && action.Spell != nil:
		optimal = action.Spell.Range
	}
	if optimal < 1 {
		optimal = 1
	}

	if dist > optimal {
		return dist - optimal
	}
	return optimal - dist
}

func actionOffense(action types.ActionCandidate) (bonus int, dmgType types.DamageType) {
	switch {
	case action.Attack != nil:
		return action.Attack.Bonus, action.Attack.DamageType
	case action.Spell != nil:
		return action.Spell.AttackBonus, action.Spell.DamageType
	}
	return 0, ""
}

func actionIsRanged(action types.ActionCandidate) bool {
	if action.Attack != nil {
		return action.Attack.Ranged
	}
	return action.Spell != nil
}

func findCreature(ctx *types.TacticalContext, id string) *types.Creature {
	for i := range ctx.Enemies {
		if ctx.Enemies[i].ID == id {
			return &ctx.Enemies[i]
		}
	}
	for i := range ctx.Allies {
		if ctx.Allies[i].ID == id {
			return &ctx.Allies[i]
		}
	}
	if ctx.Actor.ID == id {
		return &ctx.Actor
	}
	return nil
}
