// Package engine provides the TacticalAgent orchestrator: it wires the
// behavior tree, candidate generation, scoring, target and position
// selection, and legality validation into a single time-bounded decision
// per turn.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nathoo/tacticore/engine/behavior"
	"github.com/nathoo/tacticore/engine/candidates"
	"github.com/nathoo/tacticore/engine/grid"
	"github.com/nathoo/tacticore/engine/legality"
	"github.com/nathoo/tacticore/engine/position"
	"github.com/nathoo/tacticore/engine/rng"
	"github.com/nathoo/tacticore/engine/rules"
	"github.com/nathoo/tacticore/engine/score"
	"github.com/nathoo/tacticore/engine/target"
	"github.com/nathoo/tacticore/types"
)

// DefaultBudget is the hard latency budget for one decision.
const DefaultBudget = 300 * time.Millisecond

// topCandidates is how many scored actions the reasoning keeps.
const topCandidates = 5

// ErrInvalidContext marks a programming error in the snapshot, not a
// gameplay outcome. It is the only condition DecideTurn surfaces as a
// defect.
var ErrInvalidContext = errors.New("invalid tactical context")

// Stage names the orchestrator's state machine states.
type Stage int

const (
	StageIdle Stage = iota
	StageTreeEvaluated
	StageCandidatesGenerated
	StageScored
	StageTargetChosen
	StagePositionChosen
	StageValidated
	StageCommitted
	StageFallback
)

// LegalityChecker validates a decision before commit.
type LegalityChecker interface {
	Validate(d *types.TacticalDecision, ctx *types.TacticalContext) error
}

// DecisionSink receives every committed decision as an immutable record.
type DecisionSink interface {
	Record(d *types.TacticalDecision) error
}

// Agent runs the decision pipeline for one creature's turn. It owns no
// cross-turn state: everything it reads comes from the context, and
// resource spending is only proposed, never applied.
type Agent struct {
	Trees     *behavior.Library
	Scorer    *score.Scorer
	Targets   *target.Selector
	Positions *position.Strategy
	Legality  LegalityChecker
	Sink      DecisionSink

	Budget time.Duration
	Now    func() time.Time // injectable clock for budget tests
}

// New creates an agent wired to the default oracles. sink may be nil.
func New(trees *behavior.Library, sink DecisionSink) *Agent {
	sp := grid.Oracle{}
	return &Agent{
		Trees:     trees,
		Scorer:    &score.Scorer{Rules: rules.Oracle{}, Spatial: sp},
		Targets:   &target.Selector{Spatial: sp},
		Positions: &position.Strategy{Spatial: sp},
		Legality:  &legality.Checker{Spatial: sp},
		Sink:      sink,
		Budget:    DefaultBudget,
		Now:       time.Now,
	}
}

// DecideTurn runs the full pipeline against an immutable snapshot and
// returns a committed decision. It never returns "no action": any stage
// failure steps to the fallback chain (next-best, Dodge, basic attack).
// The only error it returns is an ErrInvalidContext defect.
func (a *Agent) DecideTurn(ctx *types.TacticalContext) (*types.TacticalDecision, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	start := a.Now()
	deadline := start.Add(a.Budget)
	r := rng.New(ctx.Seed)
	variance := r.Stream("variance")
	tiebreak := r.Stream("tiebreak")

	reasoning := types.DecisionReasoning{}

	// Stage 1: behavior tree picks the coarse action types.
	tree := a.Trees.ForCreature(ctx.Actor)
	result := behavior.Run(tree, ctx.Actor, ctx)
	reasoning.TreePath = result.Path

	// Stage 2: enumerate concrete, resource-checked candidates.
	cands := candidates.Generate(ctx, result.Types, result.Priority)
	if len(cands) == 0 {
		reasoning.Fallback = "no candidates generated"
		return a.commitFallback(ctx, reasoning)
	}

	// Stage 3: score everything.
	scored := a.Scorer.ScoreAll(cands, ctx, variance)
	reasoning.TopCandidates = top(scored, topCandidates)

	// Stages 4-6: walk the ranked list; the first candidate that
	// survives targeting, positioning, and legality wins. Later entries
	// are the "next-best" fallback the state machine steps to on
	// rejection.
	var committed *types.TacticalDecision
	for i := range scored {
		if i > 0 && a.Now().After(deadline) {
			// Budget exhausted mid-walk: stop advancing. Anything
			// validated already would have committed, so fall through
			// to the cheap fallback below.
			reasoning.BudgetExceeded = true
			break
		}

		d, note := a.buildDecision(&scored[i], ctx, tiebreak)
		if d == nil {
			continue
		}
		if err := a.Legality.Validate(d, ctx); err != nil {
			var lerr *legality.Error
			if errors.As(err, &lerr) {
				reasoning.Notes = append(reasoning.Notes, fmt.Sprintf("rejected %s: %s", d.Action.Type, lerr.Reason))
				continue
			}
			reasoning.Notes = append(reasoning.Notes, "validator error: "+err.Error())
			continue
		}
		if note != "" {
			reasoning.Notes = append(reasoning.Notes, note)
		}
		committed = d
		break
	}

	if committed == nil {
		reasoning.Fallback = "no scored candidate validated"
		return a.commitFallback(ctx, reasoning)
	}

	if a.Now().After(deadline) {
		reasoning.BudgetExceeded = true
	}

	return a.commit(committed, ctx, reasoning)
}

// buildDecision resolves target and position for one scored candidate.
// A nil decision means this candidate cannot be realized (no target, no
// reachable position for a move-only action).
func (a *Agent) buildDecision(sa *types.ScoredAction, ctx *types.TacticalContext, tiebreak *rng.Stream) (*types.TacticalDecision, string) {
	d := &types.TacticalDecision{
		EncounterID: ctx.EncounterID,
		Round:       ctx.Round,
		ActorID:     ctx.Actor.ID,
		Action:      sa.Candidate,
		Cost:        sa.Candidate.Cost,
	}

	if sa.Candidate.NeedsTarget {
		id, ok := a.Targets.Select(sa.Candidate, ctx, tiebreak)
		if !ok {
			return nil, ""
		}
		d.TargetID = id
	} else if sa.TargetID != "" {
		d.TargetID = sa.TargetID
	}

	plan := a.Positions.SelectPosition(sa.Candidate, d.TargetID, ctx)
	d.Destination = plan.Destination
	d.Path = plan.Path
	if plan.Destination == nil && plan.Note != "" {
		if sa.Candidate.Type == types.ActionMove || sa.Candidate.Type == types.ActionDash {
			// A pure movement action with nowhere to go is not an
			// action.
			return nil, plan.Note
		}
		return d, plan.Note
	}
	return d, plan.Note
}

// commitFallback tries Dodge, then a basic attack on the nearest enemy.
// As a last resort it commits Dodge unvalidated — the agent never
// returns nothing.
func (a *Agent) commitFallback(ctx *types.TacticalContext, reasoning types.DecisionReasoning) (*types.TacticalDecision, error) {
	dodge := &types.TacticalDecision{
		EncounterID: ctx.EncounterID,
		Round:       ctx.Round,
		ActorID:     ctx.Actor.ID,
		Action:      types.ActionCandidate{Type: types.ActionDodge},
	}
	if err := a.Legality.Validate(dodge, ctx); err == nil {
		reasoning.Fallback += "; committed dodge"
		return a.commit(dodge, ctx, reasoning)
	}

	if atk := a.nearestEnemyAttack(ctx); atk != nil {
		if err := a.Legality.Validate(atk, ctx); err == nil {
			reasoning.Fallback += "; committed basic attack"
			return a.commit(atk, ctx, reasoning)
		}
	}

	reasoning.Fallback += "; forced dodge"
	return a.commit(dodge, ctx, reasoning)
}

// nearestEnemyAttack builds a basic attack with the actor's first attack
// mode against the closest living enemy.
func (a *Agent) nearestEnemyAttack(ctx *types.TacticalContext) *types.TacticalDecision {
	if len(ctx.Actor.Attacks) == 0 {
		return nil
	}
	self := ctx.Positions[ctx.Actor.ID]

	bestID := ""
	bestDist := 1 << 30
	for _, e := range ctx.Enemies {
		if e.HP <= 0 {
			continue
		}
		p, ok := ctx.Positions[e.ID]
		if !ok {
			continue
		}
		if d := grid.Distance(self, p); d < bestDist {
			bestDist = d
			bestID = e.ID
		}
	}
	if bestID == "" {
		return nil
	}

	atk := &ctx.Actor.Attacks[0]
	return &types.TacticalDecision{
		EncounterID: ctx.EncounterID,
		Round:       ctx.Round,
		ActorID:     ctx.Actor.ID,
		Action:      types.ActionCandidate{Type: types.ActionAttack, Attack: atk, TargetIDs: []string{bestID}},
		TargetID:    bestID,
	}
}

// commit stamps the decision id and reasoning, records it with the sink,
// and returns it.
func (a *Agent) commit(d *types.TacticalDecision, ctx *types.TacticalContext, reasoning types.DecisionReasoning) (*types.TacticalDecision, error) {
	if d.Cost.Kind != types.ResourceNone {
		reasoning.ResourcesSpent = append(reasoning.ResourcesSpent, d.Cost)
	}
	d.Reasoning = reasoning
	d.ID = decisionID(ctx)

	if a.Sink != nil {
		if err := a.Sink.Record(d); err != nil {
			// Persistence failure must not cost the creature its turn.
			d.Reasoning.Notes = append(d.Reasoning.Notes, "sink: "+err.Error())
		}
	}
	return d, nil
}

// decisionID derives a deterministic v5 UUID from the decision
// coordinates, so replays produce bit-identical records.
func decisionID(ctx *types.TacticalContext) string {
	name := fmt.Sprintf("%s/%d/%s/%d", ctx.EncounterID, ctx.Round, ctx.Actor.ID, ctx.Seed)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// checkContext validates snapshot invariants that indicate host bugs.
func checkContext(ctx *types.TacticalContext) error {
	if ctx == nil {
		return fmt.Errorf("%w: nil context", ErrInvalidContext)
	}
	if ctx.Actor.ID == "" {
		return fmt.Errorf("%w: actor missing", ErrInvalidContext)
	}
	if _, ok := ctx.Positions[ctx.Actor.ID]; !ok {
		return fmt.Errorf("%w: actor %s has no position", ErrInvalidContext, ctx.Actor.ID)
	}
	if ctx.Map.Width <= 0 || ctx.Map.Height <= 0 {
		return fmt.Errorf("%w: empty map", ErrInvalidContext)
	}
	return nil
}

// top copies the first n scored actions for the reasoning record.
func top(scored []types.ScoredAction, n int) []types.ScoredAction {
	if len(scored) < n {
		n = len(scored)
	}
	out := make([]types.ScoredAction, n)
	copy(out, scored[:n])
	return out
}
