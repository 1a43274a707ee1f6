package opportunity

import (
	"testing"

	"github.com/nathoo/tacticore/types"
)

var (
	sword = types.Attack{Name: "sword", Bonus: 5, DamageDice: "1d8", Reach: 1}
	bow   = types.Attack{Name: "bow", Bonus: 4, DamageDice: "1d6", Ranged: true, Range: 12}
)

func meleeCand() types.ActionCandidate {
	return types.ActionCandidate{Type: types.ActionAttack, Attack: &sword, NeedsTarget: true}
}

func rangedCand() types.ActionCandidate {
	return types.ActionCandidate{Type: types.ActionAttack, Attack: &bow, NeedsTarget: true}
}

func duelContext() *types.TacticalContext {
	return &types.TacticalContext{
		Actor:   types.Creature{ID: "hero", Team: "blue", HP: 20, MaxHP: 20},
		Enemies: []types.Creature{{ID: "orc", Team: "red", HP: 15, MaxHP: 15}},
		Positions: map[string]types.Position{
			"hero": {X: 2, Y: 2}, "orc": {X: 3, Y: 2},
		},
		Conditions:    map[string][]types.Condition{},
		Concentration: map[string]string{},
		Map:           types.GridMap{Width: 10, Height: 10},
	}
}

func kinds(opps []types.TacticalOpportunity) map[types.OpportunityKind]float64 {
	out := map[types.OpportunityKind]float64{}
	for _, o := range opps {
		out[o.Kind] = o.Bonus
	}
	return out
}

func TestFlanking(t *testing.T) {
	ctx := duelContext()
	ctx.Allies = []types.Creature{{ID: "pal", Team: "blue", HP: 10, MaxHP: 10}}

	// Ally beside the target but on the same side: no flank.
	ctx.Positions["pal"] = types.Position{X: 2, Y: 3}
	if _, ok := kinds(Evaluate(meleeCand(), "orc", ctx))[types.OppFlanking]; ok {
		t.Error("same-side ally counted as flanking")
	}

	// Exactly opposite: hero (2,2), orc (3,2), pal (4,2).
	ctx.Positions["pal"] = types.Position{X: 4, Y: 2}
	if _, ok := kinds(Evaluate(meleeCand(), "orc", ctx))[types.OppFlanking]; !ok {
		t.Error("opposite-side ally not counted as flanking")
	}

	// Ranged attacks never flank.
	if _, ok := kinds(Evaluate(rangedCand(), "orc", ctx))[types.OppFlanking]; ok {
		t.Error("ranged attack reported a flank")
	}

	// A downed ally doesn't flank.
	ctx.Allies[0].HP = 0
	if _, ok := kinds(Evaluate(meleeCand(), "orc", ctx))[types.OppFlanking]; ok {
		t.Error("downed ally counted as flanking")
	}
}

func TestProne_MeleeBonusRangedPenalty(t *testing.T) {
	ctx := duelContext()
	ctx.Conditions["orc"] = []types.Condition{types.CondProne}

	k := kinds(Evaluate(meleeCand(), "orc", ctx))
	if b, ok := k[types.OppProneTarget]; !ok || b <= 0 {
		t.Errorf("melee vs prone bonus = %v", b)
	}
	k = kinds(Evaluate(rangedCand(), "orc", ctx))
	if b, ok := k[types.OppProneTarget]; !ok || b >= 0 {
		t.Errorf("ranged vs prone should be penalized, got %v", b)
	}
}

func TestIncapacitatedAndConcentration(t *testing.T) {
	ctx := duelContext()
	ctx.Conditions["orc"] = []types.Condition{types.CondStunned}
	ctx.Concentration["orc"] = "bless"

	k := kinds(Evaluate(meleeCand(), "orc", ctx))
	if _, ok := k[types.OppIncapacitated]; !ok {
		t.Error("stunned target not exploited")
	}
	if _, ok := k[types.OppConcentrationBreak]; !ok {
		t.Error("concentration break not detected")
	}

	// A non-damaging candidate exploits neither.
	help := types.ActionCandidate{Type: types.ActionHelp, NeedsTarget: true}
	if len(Evaluate(help, "orc", ctx)) != 0 {
		t.Error("help reported damage opportunities")
	}
}

func TestAoECoverage(t *testing.T) {
	ctx := duelContext()
	// Keep the caster out of their own blast.
	ctx.Positions["hero"] = types.Position{X: 0, Y: 2}
	burst := types.ActionCandidate{
		Type:  types.ActionCast,
		Spell: &types.Spell{ID: "burst", DamageDice: "3d6", AoERadius: 1},
	}

	// One enemy in the blast: no better than single-target.
	if _, ok := kinds(Evaluate(burst, "orc", ctx))[types.OppMultiTargetAoE]; ok {
		t.Error("single-victim blast reported as multi-target")
	}

	ctx.Enemies = append(ctx.Enemies, types.Creature{ID: "orc2", Team: "red", HP: 15})
	ctx.Positions["orc2"] = types.Position{X: 4, Y: 2}
	k := kinds(Evaluate(burst, "orc", ctx))
	if b, ok := k[types.OppMultiTargetAoE]; !ok || b <= 0 {
		t.Fatalf("two-victim blast bonus = %v", b)
	}

	// An ally in the area cancels the second enemy out.
	ctx.Allies = []types.Creature{{ID: "pal", Team: "blue", HP: 10}}
	ctx.Positions["pal"] = types.Position{X: 3, Y: 3}
	if _, ok := kinds(Evaluate(burst, "orc", ctx))[types.OppMultiTargetAoE]; ok {
		t.Error("friendly fire did not cancel the coverage gain")
	}
}

func TestForcedMovement(t *testing.T) {
	ctx := duelContext()
	if _, ok := kinds(Evaluate(meleeCand(), "orc", ctx))[types.OppForcedMovement]; ok {
		t.Error("shove opportunity with no hazard on the map")
	}
	ctx.Map.Hazards = []types.Hazard{{Pos: types.Position{X: 4, Y: 2}, Kind: "pit"}}
	if _, ok := kinds(Evaluate(meleeCand(), "orc", ctx))[types.OppForcedMovement]; !ok {
		t.Error("target beside a pit not reported")
	}
	if _, ok := kinds(Evaluate(rangedCand(), "orc", ctx))[types.OppForcedMovement]; ok {
		t.Error("ranged attack cannot shove")
	}
}
