package resource

import (
	"testing"

	"github.com/nathoo/tacticore/types"
)

func skirmishContext(enemies int) *types.TacticalContext {
	ctx := &types.TacticalContext{
		Actor:         types.Creature{ID: "mage", Team: "blue", HP: 20, MaxHP: 20},
		Resources:     map[string]types.ResourcePool{},
		Concentration: map[string]string{},
	}
	for i := 0; i < enemies; i++ {
		ctx.Enemies = append(ctx.Enemies, types.Creature{
			ID: string(rune('a' + i)), Team: "red", HP: 10, MaxHP: 10,
		})
	}
	return ctx
}

func TestShouldSpend_AtWillAlways(t *testing.T) {
	if !ShouldSpend(types.Resource{}, skirmishContext(0)) {
		t.Error("free actions must always be approved")
	}
}

func TestShouldSpend_LowSlotsFreely(t *testing.T) {
	ctx := skirmishContext(1)
	for lvl := 1; lvl <= 3; lvl++ {
		if !ShouldSpend(types.Resource{Kind: types.ResourceSpellSlot, Level: lvl}, ctx) {
			t.Errorf("level %d slot held back in an ordinary fight", lvl)
		}
	}
}

func TestShouldSpend_MidTierWantsARealFight(t *testing.T) {
	slot := types.Resource{Kind: types.ResourceSpellSlot, Level: 5}
	if ShouldSpend(slot, skirmishContext(1)) {
		t.Error("level 5 slot approved against a lone enemy")
	}
	if !ShouldSpend(slot, skirmishContext(3)) {
		t.Error("level 5 slot held back against three enemies")
	}
}

func TestShouldSpend_HighTierNeedsCrisis(t *testing.T) {
	slot := types.Resource{Kind: types.ResourceSpellSlot, Level: 8}
	ctx := skirmishContext(4)
	if ShouldSpend(slot, ctx) {
		t.Error("level 8 slot approved with nobody in danger")
	}
	ctx.Allies = []types.Creature{{ID: "pal", Team: "blue", HP: 2, MaxHP: 20}}
	if !ShouldSpend(slot, ctx) {
		t.Error("level 8 slot held back with an ally nearly down")
	}
}

func TestShouldSpend_ConsumablesWantStakes(t *testing.T) {
	potion := types.Resource{Kind: types.ResourceConsumable, ID: "healing_potion"}
	if ShouldSpend(potion, skirmishContext(1)) {
		t.Error("consumable approved in a mop-up fight")
	}
	if !ShouldSpend(potion, skirmishContext(2)) {
		t.Error("consumable held back with two enemies up")
	}
}

func TestCostScore_FreeIsZero(t *testing.T) {
	if got := CostScore(types.Resource{}, skirmishContext(1)); got != 0 {
		t.Errorf("free cost = %v, want 0", got)
	}
}

func TestCostScore_ScalesWithSlotLevel(t *testing.T) {
	ctx := skirmishContext(3)
	low := CostScore(types.Resource{Kind: types.ResourceSpellSlot, Level: 1}, ctx)
	high := CostScore(types.Resource{Kind: types.ResourceSpellSlot, Level: 3}, ctx)
	if low >= 0 || high >= 0 {
		t.Fatalf("cost scores must be negative: %v, %v", low, high)
	}
	if high >= low {
		t.Errorf("level 3 (%v) should cost more than level 1 (%v)", high, low)
	}
}

func TestCostScore_GateMultiplies(t *testing.T) {
	slot := types.Resource{Kind: types.ResourceSpellSlot, Level: 5}
	approved := CostScore(slot, skirmishContext(3))
	gated := CostScore(slot, skirmishContext(1))
	if gated >= approved {
		t.Errorf("gated cost %v should be steeper than approved %v", gated, approved)
	}
}

func TestCostScore_ScarcityBites(t *testing.T) {
	slot := types.Resource{Kind: types.ResourceSpellSlot, Level: 1}

	full := skirmishContext(3)
	full.Resources["mage"] = types.ResourcePool{SpellSlots: map[int]int{1: 3, 2: 3}}
	dry := skirmishContext(3)
	dry.Resources["mage"] = types.ResourcePool{SpellSlots: map[int]int{1: 1, 2: 0}}

	if CostScore(slot, dry) >= CostScore(slot, full) {
		t.Errorf("spending from a nearly empty pool should cost more: dry=%v full=%v",
			CostScore(slot, dry), CostScore(slot, full))
	}
}
