// Package position picks a destination square and path for actions that
// require movement, specialized by combat role: hurt creatures retreat,
// melee closes to reach, ranged keeps its band, spellcasters keep their
// distance. Destination candidates are capped and scored; the best one
// that resolves to a path wins. When pathfinding fails the strategy
// holds position and says so.
package position

import (
	"sort"

	"github.com/nathoo/tacticore/engine/behavior"
	"github.com/nathoo/tacticore/types"
)

// MaxDestinations caps the number of scored candidate squares.
const MaxDestinations = 10

// pathBudget bounds pathfinding node expansion.
const pathBudget = 400

// Retreat below this HP fraction regardless of role.
const defensiveHPFrac = 0.3

// Spatial is the geometry collaborator the strategy consumes.
type Spatial interface {
	Distance(a, b types.Position) int
	HasLineOfEffect(a, b types.Position, m types.GridMap) bool
	HasCover(attacker, target types.Position, m types.GridMap) bool
	FindPath(start, end types.Position, m types.GridMap, blocked map[types.Position]bool, budget int) ([]types.Position, bool)
}

// Plan is a chosen destination with its path, or a hold-position result
// with the reason recorded.
type Plan struct {
	Destination *types.Position
	Path        []types.Position
	Note        string
}

// Strategy selects positions.
type Strategy struct {
	Spatial Spatial
}

// SelectPosition picks where the actor should move for the action. For
// actions that do not require movement it holds in place with no note.
func (s *Strategy) SelectPosition(action types.ActionCandidate, targetID string, ctx *types.TacticalContext) Plan {
	if !action.NeedsMove && action.Type != types.ActionMove && action.Type != types.ActionDash && action.Type != types.ActionDisengage {
		return Plan{}
	}
	self, ok := ctx.Positions[ctx.Actor.ID]
	if !ok {
		return Plan{Note: "actor position unknown"}
	}

	speed := ctx.Actor.Speed
	if action.Type == types.ActionDash {
		speed *= 2
	}
	if speed <= 0 {
		return Plan{Note: "no movement remaining"}
	}

	// Attacks that are already in range don't need to move.
	if action.Type == types.ActionAttack && targetID != "" {
		if tp, ok := ctx.Positions[targetID]; ok {
			reach := attackReach(action)
			if s.Spatial.Distance(self, tp) <= reach {
				return Plan{}
			}
		}
	}

	dests := s.candidateDestinations(action, targetID, ctx, self, speed)
	if len(dests) == 0 {
		return Plan{Note: "no reachable position improves on holding"}
	}

	blocked := occupiedCells(ctx)
	for _, d := range dests {
		path, ok := s.Spatial.FindPath(self, d.pos, ctx.Map, blocked, pathBudget)
		if !ok || len(path) > speed {
			continue
		}
		dest := d.pos
		return Plan{Destination: &dest, Path: path}
	}
	return Plan{Note: "pathfinding failed; holding position"}
}

type scoredDest struct {
	pos   types.Position
	score float64
}

// candidateDestinations enumerates cells within movement range, scores
// them for the acting role, and returns the top MaxDestinations in
// descending order.
func (s *Strategy) candidateDestinations(action types.ActionCandidate, targetID string, ctx *types.TacticalContext, self types.Position, speed int) []scoredDest {
	role := s.roleFor(action, ctx)
	occupied := occupiedCells(ctx)

	var dests []scoredDest
	for y := self.Y - speed; y <= self.Y+speed; y++ {
		for x := self.X - speed; x <= self.X+speed; x++ {
			p := types.Position{X: x, Y: y}
			if p == self || x < 0 || y < 0 || x >= ctx.Map.Width || y >= ctx.Map.Height {
				continue
			}
			if ctx.Map.Obstacles[p] || occupied[p] || hazardous(p, ctx) {
				continue
			}
			if sc, ok := s.scoreDestination(role, p, action, targetID, ctx); ok {
				dests = append(dests, scoredDest{pos: p, score: sc})
			}
		}
	}

	sort.SliceStable(dests, func(i, j int) bool {
		if dests[i].score != dests[j].score {
			return dests[i].score > dests[j].score
		}
		// Fixed scan-order tie-break keeps the result deterministic.
		if dests[i].pos.Y != dests[j].pos.Y {
			return dests[i].pos.Y < dests[j].pos.Y
		}
		return dests[i].pos.X < dests[j].pos.X
	})
	if len(dests) > MaxDestinations {
		dests = dests[:MaxDestinations]
	}
	return dests
}

// scoreDestination rates one square for the role. Returns false for
// squares that fail the role's hard requirement (e.g. melee squares
// without line of effect to the target).
func (s *Strategy) scoreDestination(role string, p types.Position, action types.ActionCandidate, targetID string, ctx *types.TacticalContext) (float64, bool) {
	tp, hasTarget := ctx.Positions[targetID]

	var score float64
	switch role {
	case "defensive":
		// Maximize the minimum distance to any enemy; tie-break toward
		// ally clusters.
		score = float64(s.minEnemyDistance(p, ctx)) * 2
		score += 1.0 / float64(1+s.meanAllyDistance(p, ctx))

	case "melee":
		if !hasTarget {
			// Pure movement walks toward the nearest living enemy.
			if tp, hasTarget = s.nearestEnemyPos(ctx); !hasTarget {
				return 0, false
			}
		}
		dist := s.Spatial.Distance(p, tp)
		reach := attackReach(action)
		if dist <= reach {
			if !s.Spatial.HasLineOfEffect(p, tp, ctx.Map) {
				return 0, false
			}
			score = 10
		} else {
			// Fall back to "move closer".
			score = -float64(dist)
		}

	case "ranged":
		if !hasTarget {
			if tp, hasTarget = s.nearestEnemyPos(ctx); !hasTarget {
				return 0, false
			}
		}
		if !s.Spatial.HasLineOfEffect(p, tp, ctx.Map) {
			return 0, false
		}
		dist := s.Spatial.Distance(p, tp)
		optimal := rangedBand(action)
		// The band term outweighs the keep-away term so a distant archer
		// still closes toward firing range.
		score = 8 - 2*float64(abs(dist-optimal))
		score += float64(s.minEnemyDistance(p, ctx)) // away from melee threats
		if s.Spatial.HasCover(tp, p, ctx.Map) {
			score += 2
		}

	default: // spellcaster
		score = float64(s.minEnemyDistance(p, ctx)) * 1.5
		if hasTarget {
			if !s.Spatial.HasLineOfEffect(p, tp, ctx.Map) {
				return 0, false
			}
			if spellRange := castRange(action); spellRange > 0 && s.Spatial.Distance(p, tp) > spellRange {
				return 0, false
			}
		}
	}

	if action.Type != types.ActionDisengage {
		score -= 2 * float64(s.provokedAttacks(ctx, p))
	}
	return score, true
}

// roleFor maps the action (and the actor's health) to a positioning role.
func (s *Strategy) roleFor(action types.ActionCandidate, ctx *types.TacticalContext) string {
	if ctx.Actor.MaxHP > 0 && float64(ctx.Actor.HP) < defensiveHPFrac*float64(ctx.Actor.MaxHP) {
		return "defensive"
	}
	switch {
	case action.Type == types.ActionAttack && action.Attack != nil && !action.Attack.Ranged:
		return "melee"
	case action.Type == types.ActionAttack && action.Attack != nil:
		return "ranged"
	case action.Type == types.ActionCast:
		return "spellcaster"
	case action.Type == types.ActionDisengage:
		return "defensive"
	}
	// Pure movement: fall back to the creature's overall role.
	switch behavior.RoleFor(ctx.Actor) {
	case "spellcaster":
		return "spellcaster"
	case "ranged-attacker":
		return "ranged"
	case "defensive":
		return "defensive"
	default:
		return "melee"
	}
}

// provokedAttacks counts enemies whose reach the actor leaves by moving
// from its current square to p. One opportunity attack per enemy.
func (s *Strategy) provokedAttacks(ctx *types.TacticalContext, p types.Position) int {
	self, ok := ctx.Positions[ctx.Actor.ID]
	if !ok {
		return 0
	}
	n := 0
	for _, e := range ctx.Enemies {
		if e.HP <= 0 || incapacitated(ctx, e.ID) {
			continue
		}
		ep, ok := ctx.Positions[e.ID]
		if !ok {
			continue
		}
		if s.Spatial.Distance(self, ep) <= 1 && s.Spatial.Distance(p, ep) > 1 {
			n++
		}
	}
	return n
}

// nearestEnemyPos finds the closest living enemy to the actor. Equal
// distances resolve to the first enemy in snapshot order.
func (s *Strategy) nearestEnemyPos(ctx *types.TacticalContext) (types.Position, bool) {
	self, ok := ctx.Positions[ctx.Actor.ID]
	if !ok {
		return types.Position{}, false
	}
	var best types.Position
	bestDist := 1 << 30
	for _, e := range ctx.Enemies {
		if e.HP <= 0 {
			continue
		}
		ep, ok := ctx.Positions[e.ID]
		if !ok {
			continue
		}
		if d := s.Spatial.Distance(self, ep); d < bestDist {
			bestDist = d
			best = ep
		}
	}
	return best, bestDist < 1<<30
}

func (s *Strategy) minEnemyDistance(p types.Position, ctx *types.TacticalContext) int {
	min := 1 << 30
	for _, e := range ctx.Enemies {
		if e.HP <= 0 {
			continue
		}
		if ep, ok := ctx.Positions[e.ID]; ok {
			if d := s.Spatial.Distance(p, ep); d < min {
				min = d
			}
		}
	}
	if min == 1<<30 {
		return 0
	}
	return min
}

func (s *Strategy) meanAllyDistance(p types.Position, ctx *types.TacticalContext) int {
	sum, n := 0, 0
	for _, a := range ctx.Allies {
		if a.HP <= 0 {
			continue
		}
		if ap, ok := ctx.Positions[a.ID]; ok {
			sum += s.Spatial.Distance(p, ap)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / n
}

func attackReach(action types.ActionCandidate) int {
	if action.Attack == nil {
		return 1
	}
	if action.Attack.Ranged {
		if action.Attack.Range > 0 {
			return action.Attack.Range
		}
		return 1
	}
	if action.Attack.Reach > 0 {
		return action.Attack.Reach
	}
	return 1
}

func rangedBand(action types.ActionCandidate) int {
	if action.Attack != nil && action.Attack.Range > 0 {
		return action.Attack.Range / 2
	}
	return 4
}

func castRange(action types.ActionCandidate) int {
	if action.Spell != nil {
		return action.Spell.Range
	}
	return 0
}

func occupiedCells(ctx *types.TacticalContext) map[types.Position]bool {
	out := map[types.Position]bool{}
	for id, p := range ctx.Positions {
		if id == ctx.Actor.ID {
			continue
		}
		out[p] = true
	}
	return out
}

func hazardous(p types.Position, ctx *types.TacticalContext) bool {
	for _, h := range ctx.Map.Hazards {
		if h.Pos == p {
			return true
		}
	}
	return false
}

func incapacitated(ctx *types.TacticalContext, id string) bool {
	for _, c := range ctx.Conditions[id] {
		switch c {
		case types.CondIncapacitated, types.CondParalyzed, types.CondStunned, types.CondUnconscious:
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
