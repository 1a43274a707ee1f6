// Package sim runs a full encounter: initiative order, one decision per
// living creature per round, resolution against the shared state. The
// loop is strictly sequential so a fixed seed replays move for move.
package sim

import (
	"fmt"

	"github.com/nathoo/tacticore/engine"
	"github.com/nathoo/tacticore/engine/encounter"
	"github.com/nathoo/tacticore/types"
)

// DefaultMaxRounds caps a fight that never resolves.
const DefaultMaxRounds = 50

// Runner advances one encounter. It keeps a turn cursor so hosts can
// step a single turn at a time.
type Runner struct {
	Enc       *encounter.Encounter
	Agent     *engine.Agent
	MaxRounds int

	order []string // initiative for the current round
	turn  int      // index of the next actor in order
	over  bool
}

// NewRunner creates a runner with the default round cap.
func NewRunner(enc *encounter.Encounter, agent *engine.Agent) *Runner {
	return &Runner{Enc: enc, Agent: agent, MaxRounds: DefaultMaxRounds}
}

// TurnResult is the outcome of one creature's turn.
type TurnResult struct {
	ActorID   string
	Decision  *types.TacticalDecision
	Narration []string
	RoundEnd  bool
	Over      bool
}

// Over reports whether the encounter has resolved.
func (r *Runner) Over() bool {
	return r.over
}

// Round returns the current round number.
func (r *Runner) Round() int {
	return r.Enc.Round
}

// Step runs the next creature's turn. When the initiative order is
// exhausted it closes out the round and re-rolls initiative for the
// next one.
func (r *Runner) Step() (TurnResult, error) {
	if r.over {
		return TurnResult{Over: true}, nil
	}
	if r.order == nil {
		r.order = r.Enc.InitiativeOrder()
		r.turn = 0
	}

	// Skip creatures that dropped earlier in the round.
	for r.turn < len(r.order) {
		if c := r.Enc.Creature(r.order[r.turn]); c != nil && c.HP > 0 {
			break
		}
		r.turn++
	}
	if r.turn >= len(r.order) {
		return r.endRound(), nil
	}

	actorID := r.order[r.turn]
	r.turn++

	ctx, err := r.Enc.Snapshot(actorID)
	if err != nil {
		return TurnResult{}, fmt.Errorf("snapshot %s: %w", actorID, err)
	}
	decision, err := r.Agent.DecideTurn(ctx)
	if err != nil {
		return TurnResult{}, fmt.Errorf("decide %s: %w", actorID, err)
	}

	res := TurnResult{
		ActorID:   actorID,
		Decision:  decision,
		Narration: r.Enc.Apply(decision),
	}
	if _, done := r.Enc.Winner(); done {
		r.over = true
		res.Over = true
	}
	return res, nil
}

// RunRound steps every remaining turn of the current round.
func (r *Runner) RunRound() ([]TurnResult, error) {
	var out []TurnResult
	for {
		res, err := r.Step()
		if err != nil {
			return out, err
		}
		out = append(out, res)
		if res.Over || res.RoundEnd {
			return out, nil
		}
	}
}

// Run plays the encounter to its end or the round cap. It returns the
// winning team, or "" on a cap-out draw.
func (r *Runner) Run() (string, []TurnResult, error) {
	var all []TurnResult
	for !r.over && r.Enc.Round <= r.MaxRounds {
		results, err := r.RunRound()
		all = append(all, results...)
		if err != nil {
			return "", all, err
		}
	}
	winner, _ := r.Enc.Winner()
	return winner, all, nil
}

func (r *Runner) endRound() TurnResult {
	r.Enc.NextRound()
	r.order = nil
	if _, done := r.Enc.Winner(); done {
		r.over = true
	}
	return TurnResult{RoundEnd: true, Over: r.over}
}
