package position

import (
	"testing"

	"github.com/nathoo/tacticore/engine/grid"
	"github.com/nathoo/tacticore/types"
)

func newStrategy() *Strategy {
	return &Strategy{Spatial: grid.Oracle{}}
}

func movementContext() *types.TacticalContext {
	return &types.TacticalContext{
		Actor: types.Creature{
			ID: "hero", Team: "blue", HP: 20, MaxHP: 20, Speed: 6,
			Attacks: []types.Attack{{Name: "sword", Bonus: 5, DamageDice: "1d8", Reach: 1}},
		},
		Enemies: []types.Creature{{ID: "orc", Team: "red", HP: 15, MaxHP: 15, AC: 13}},
		Positions: map[string]types.Position{
			"hero": {X: 1, Y: 4}, "orc": {X: 8, Y: 4},
		},
		Conditions: map[string][]types.Condition{},
		Map:        types.GridMap{Width: 12, Height: 9, Obstacles: map[types.Position]bool{}},
	}
}

func meleeAction() types.ActionCandidate {
	return types.ActionCandidate{
		Type:        types.ActionAttack,
		Attack:      &types.Attack{Name: "sword", Bonus: 5, DamageDice: "1d8", Reach: 1},
		NeedsTarget: true,
		NeedsMove:   true,
	}
}

func TestSelectPosition_NoMoveNeeded(t *testing.T) {
	s := newStrategy()
	plan := s.SelectPosition(types.ActionCandidate{Type: types.ActionDodge}, "", movementContext())
	if plan.Destination != nil || plan.Note != "" {
		t.Errorf("dodge plan = %+v, want hold in place", plan)
	}
}

func TestSelectPosition_AlreadyInReachHolds(t *testing.T) {
	ctx := movementContext()
	ctx.Positions["orc"] = types.Position{X: 2, Y: 4}
	plan := newStrategy().SelectPosition(meleeAction(), "orc", ctx)
	if plan.Destination != nil {
		t.Errorf("moved to %v while already in reach", *plan.Destination)
	}
}

func TestSelectPosition_MeleeClosesWithinSpeed(t *testing.T) {
	ctx := movementContext()
	plan := newStrategy().SelectPosition(meleeAction(), "orc", ctx)
	if plan.Destination == nil {
		t.Fatalf("no destination: %s", plan.Note)
	}
	if len(plan.Path) > ctx.Actor.Speed {
		t.Errorf("path length %d exceeds speed %d", len(plan.Path), ctx.Actor.Speed)
	}
	if d := grid.Distance(*plan.Destination, ctx.Positions["orc"]); d > 1 {
		t.Errorf("destination %v is %d cells from the target, want reach", *plan.Destination, d)
	}
	if *plan.Destination == ctx.Positions["orc"] {
		t.Error("destination is the target's own square")
	}
}

func TestSelectPosition_DashExtendsReach(t *testing.T) {
	ctx := movementContext()
	ctx.Actor.Speed = 3
	ctx.Positions["orc"] = types.Position{X: 8, Y: 4} // 7 away

	walk := meleeAction()
	plan := newStrategy().SelectPosition(walk, "orc", ctx)
	if plan.Destination != nil && grid.Distance(*plan.Destination, ctx.Positions["orc"]) <= 1 {
		t.Error("3-speed walk reached a target 7 cells out")
	}

	dash := meleeAction()
	dash.Type = types.ActionDash
	dash.Attack = nil
	plan = newStrategy().SelectPosition(dash, "orc", ctx)
	if plan.Destination == nil {
		t.Fatalf("dash found no destination: %s", plan.Note)
	}
	if len(plan.Path) > 6 {
		t.Errorf("dash path %d exceeds doubled speed", len(plan.Path))
	}
}

// A pure move carries no target; the strategy must still advance on the
// nearest enemy instead of refusing every square.
func TestSelectPosition_PureMoveClosesOnNearestEnemy(t *testing.T) {
	ctx := movementContext()
	ctx.Positions["orc"] = types.Position{X: 11, Y: 4} // beyond one move

	move := types.ActionCandidate{Type: types.ActionMove, NeedsMove: true}
	plan := newStrategy().SelectPosition(move, "", ctx)
	if plan.Destination == nil {
		t.Fatalf("no destination: %s", plan.Note)
	}
	before := grid.Distance(ctx.Positions["hero"], ctx.Positions["orc"])
	after := grid.Distance(*plan.Destination, ctx.Positions["orc"])
	if after >= before {
		t.Errorf("move went from distance %d to %d, want closer", before, after)
	}
	if len(plan.Path) > ctx.Actor.Speed {
		t.Errorf("path length %d exceeds speed %d", len(plan.Path), ctx.Actor.Speed)
	}
}

func TestSelectPosition_PureMoveArcherClosesTowardItsBand(t *testing.T) {
	ctx := movementContext()
	ctx.Actor.Attacks = []types.Attack{{Name: "bow", Bonus: 5, DamageDice: "1d8", Ranged: true, Range: 8}}
	ctx.Positions["orc"] = types.Position{X: 11, Y: 4}

	move := types.ActionCandidate{Type: types.ActionMove, NeedsMove: true}
	plan := newStrategy().SelectPosition(move, "", ctx)
	if plan.Destination == nil {
		t.Fatalf("no destination: %s", plan.Note)
	}
	before := grid.Distance(ctx.Positions["hero"], ctx.Positions["orc"])
	after := grid.Distance(*plan.Destination, ctx.Positions["orc"])
	if after >= before {
		t.Errorf("archer went from distance %d to %d, want closer", before, after)
	}
	if after <= 1 {
		t.Error("archer closed into melee")
	}
}

func TestSelectPosition_AvoidsHazardsAndOccupied(t *testing.T) {
	ctx := movementContext()
	ctx.Map.Hazards = []types.Hazard{{Pos: types.Position{X: 7, Y: 4}, Kind: "fire"}}
	ctx.Allies = []types.Creature{{ID: "pal", Team: "blue", HP: 10}}
	ctx.Positions["pal"] = types.Position{X: 7, Y: 3}

	plan := newStrategy().SelectPosition(meleeAction(), "orc", ctx)
	if plan.Destination == nil {
		t.Fatalf("no destination: %s", plan.Note)
	}
	if *plan.Destination == (types.Position{X: 7, Y: 4}) {
		t.Error("destination is a hazard cell")
	}
	if *plan.Destination == (types.Position{X: 7, Y: 3}) {
		t.Error("destination is an occupied cell")
	}
}

func TestSelectPosition_HurtActorRetreats(t *testing.T) {
	ctx := movementContext()
	ctx.Actor.HP = 4
	ctx.Positions["orc"] = types.Position{X: 2, Y: 4} // breathing down our neck

	move := types.ActionCandidate{Type: types.ActionDisengage, NeedsMove: true}
	plan := newStrategy().SelectPosition(move, "", ctx)
	if plan.Destination == nil {
		t.Fatalf("no retreat destination: %s", plan.Note)
	}
	before := grid.Distance(ctx.Positions["hero"], ctx.Positions["orc"])
	after := grid.Distance(*plan.Destination, ctx.Positions["orc"])
	if after <= before {
		t.Errorf("retreat moved from distance %d to %d", before, after)
	}
}

func TestSelectPosition_RangedKeepsItsBand(t *testing.T) {
	ctx := movementContext()
	ctx.Actor.Attacks = []types.Attack{{Name: "bow", Bonus: 5, DamageDice: "1d8", Ranged: true, Range: 8}}
	ctx.Positions["orc"] = types.Position{X: 2, Y: 4} // adjacent-ish

	bow := types.ActionCandidate{
		Type:        types.ActionAttack,
		Attack:      &ctx.Actor.Attacks[0],
		NeedsTarget: true,
		NeedsMove:   true,
	}
	plan := newStrategy().SelectPosition(bow, "orc", ctx)
	if plan.Destination == nil {
		// Already in range; the ranged branch is only entered when the
		// attack cannot reach from here, so force it out of range.
		ctx.Positions["orc"] = types.Position{X: 11, Y: 8}
		plan = newStrategy().SelectPosition(bow, "orc", ctx)
		if plan.Destination == nil {
			t.Fatalf("no destination: %s", plan.Note)
		}
	}
	if grid.Distance(*plan.Destination, ctx.Positions["orc"]) <= 1 {
		t.Error("archer moved into melee")
	}
}

func TestSelectPosition_BlockedMapHolds(t *testing.T) {
	ctx := movementContext()
	// Wall the actor in completely.
	for _, p := range grid.Neighbors(ctx.Positions["hero"], ctx.Map) {
		ctx.Map.Obstacles[p] = true
	}
	plan := newStrategy().SelectPosition(meleeAction(), "orc", ctx)
	if plan.Destination != nil {
		t.Errorf("escaped a sealed room to %v", *plan.Destination)
	}
	if plan.Note == "" {
		t.Error("holding without a recorded reason")
	}
}

func TestSelectPosition_ZeroSpeedHolds(t *testing.T) {
	ctx := movementContext()
	ctx.Actor.Speed = 0
	plan := newStrategy().SelectPosition(meleeAction(), "orc", ctx)
	if plan.Destination != nil || plan.Note == "" {
		t.Errorf("plan = %+v, want hold with a note", plan)
	}
}

func TestSelectPosition_Deterministic(t *testing.T) {
	a := newStrategy().SelectPosition(meleeAction(), "orc", movementContext())
	b := newStrategy().SelectPosition(meleeAction(), "orc", movementContext())
	if (a.Destination == nil) != (b.Destination == nil) {
		t.Fatal("plans disagree on moving at all")
	}
	if a.Destination != nil && *a.Destination != *b.Destination {
		t.Errorf("same input picked %v then %v", *a.Destination, *b.Destination)
	}
}
