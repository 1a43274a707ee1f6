package rules

import (
	"math"
	"testing"

	"github.com/nathoo/tacticore/types"
)

func TestParseDice(t *testing.T) {
	cases := []struct {
		expr string
		want Dice
		ok   bool
	}{
		{"1d8", Dice{Count: 1, Sides: 8}, true},
		{"2d6+3", Dice{Count: 2, Sides: 6, Mod: 3}, true},
		{"1d4-1", Dice{Count: 1, Sides: 4, Mod: -1}, true},
		{" 3D10 ", Dice{Count: 3, Sides: 10}, true},
		{"", Dice{}, true},
		{"d6", Dice{}, false},
		{"2d", Dice{}, false},
		{"0d6", Dice{}, false},
		{"1d1", Dice{}, false},
		{"banana", Dice{}, false},
	}
	for _, c := range cases {
		got, err := ParseDice(c.expr)
		if c.ok && err != nil {
			t.Errorf("ParseDice(%q) failed: %v", c.expr, err)
			continue
		}
		if !c.ok {
			if err == nil {
				t.Errorf("ParseDice(%q) should have failed", c.expr)
			}
			continue
		}
		if got != c.want {
			t.Errorf("ParseDice(%q) = %+v, want %+v", c.expr, got, c.want)
		}
	}
}

func TestAverage(t *testing.T) {
	cases := []struct {
		expr string
		mod  int
		want float64
	}{
		{"1d8", 3, 7.5},
		{"2d6", 0, 7},
		{"2d6+3", 2, 12},
		{"", 5, 5},
		{"garbage", 4, 4},
	}
	for _, c := range cases {
		if got := Average(c.expr, c.mod); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Average(%q, %d) = %v, want %v", c.expr, c.mod, got, c.want)
		}
	}
}

func TestRoll(t *testing.T) {
	// A loaded die makes the total exact.
	max := func(sides int) int { return sides }
	if got := Roll("2d6+1", 3, max); got != 16 {
		t.Errorf("Roll(2d6+1, +3) with max dice = %d, want 16", got)
	}
	if got := Roll("", 4, max); got != 4 {
		t.Errorf("Roll with no dice = %d, want the bare modifier 4", got)
	}
}

func TestHitProbability(t *testing.T) {
	var o Oracle

	// +5 vs AC 15: need a 10, 11 faces hit.
	if got := o.HitProbability(5, 15, types.RollNormal); math.Abs(got-0.55) > 1e-9 {
		t.Errorf("flat roll = %v, want 0.55", got)
	}
	// Clamped: a natural 20 always hits, a natural 1 always misses.
	if got := o.HitProbability(0, 40, types.RollNormal); got != 0.05 {
		t.Errorf("impossible AC = %v, want floor 0.05", got)
	}
	if got := o.HitProbability(20, 5, types.RollNormal); got != 0.95 {
		t.Errorf("trivial AC = %v, want ceiling 0.95", got)
	}

	flat := o.HitProbability(5, 15, types.RollNormal)
	adv := o.HitProbability(5, 15, types.RollAdvantage)
	dis := o.HitProbability(5, 15, types.RollDisadvantage)
	if !(dis < flat && flat < adv) {
		t.Errorf("ordering broken: dis=%v flat=%v adv=%v", dis, flat, adv)
	}
	if math.Abs(adv-(1-0.45*0.45)) > 1e-9 {
		t.Errorf("advantage = %v", adv)
	}
	if math.Abs(dis-0.55*0.55) > 1e-9 {
		t.Errorf("disadvantage = %v", dis)
	}
}

func TestSaveFailProbability(t *testing.T) {
	var o Oracle

	// DC 15 vs +2: pass on 13+, 8 faces, P(fail) = 0.6.
	if got := o.SaveFailProbability(15, 2, types.RollNormal); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("flat = %v, want 0.6", got)
	}
	// Advantage on the save lowers the fail chance.
	adv := o.SaveFailProbability(15, 2, types.RollAdvantage)
	if adv >= 0.6 {
		t.Errorf("advantaged save fail = %v, want < 0.6", adv)
	}
}

func TestCritChance(t *testing.T) {
	var o Oracle
	if got := o.CritChance(types.RollNormal); got != 0.05 {
		t.Errorf("flat crit = %v", got)
	}
	if got := o.CritChance(types.RollAdvantage); math.Abs(got-(1-0.9025)) > 1e-9 {
		t.Errorf("advantage crit = %v", got)
	}
	if got := o.CritChance(types.RollDisadvantage); math.Abs(got-0.0025) > 1e-9 {
		t.Errorf("disadvantage crit = %v", got)
	}
}

func TestExpectedDamage_ResistanceScaling(t *testing.T) {
	var o Oracle
	base := o.ExpectedDamage("2d6", 3, 0, types.ResNone)
	if math.Abs(base-10) > 1e-9 {
		t.Fatalf("base = %v, want 10", base)
	}
	if got := o.ExpectedDamage("2d6", 3, 0, types.ResResistant); math.Abs(got-5) > 1e-9 {
		t.Errorf("resistant = %v, want 5", got)
	}
	if got := o.ExpectedDamage("2d6", 3, 0, types.ResVulnerable); math.Abs(got-20) > 1e-9 {
		t.Errorf("vulnerable = %v, want 20", got)
	}
	if got := o.ExpectedDamage("2d6", 3, 0, types.ResImmune); got != 0 {
		t.Errorf("immune = %v, want 0", got)
	}
	// Crits add one extra set of dice, unmodified.
	crit := o.ExpectedDamage("2d6", 3, 0.05, types.ResNone)
	if math.Abs(crit-(10+0.05*7)) > 1e-9 {
		t.Errorf("crit-adjusted = %v", crit)
	}
}

func TestAbilityMod(t *testing.T) {
	cases := map[int]int{1: -5, 8: -1, 9: -1, 10: 0, 11: 0, 12: 1, 15: 2, 16: 3, 20: 5}
	for score, want := range cases {
		if got := AbilityMod(score); got != want {
			t.Errorf("AbilityMod(%d) = %d, want %d", score, got, want)
		}
	}
}
