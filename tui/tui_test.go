package tui

import (
	"strings"
	"testing"

	"github.com/nathoo/tacticore/engine"
	"github.com/nathoo/tacticore/engine/behavior"
	"github.com/nathoo/tacticore/engine/encounter"
	"github.com/nathoo/tacticore/sim"
	"github.com/nathoo/tacticore/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"Hero hits Goblin with sword for 7 damage.", kindHit},
		{"Hero misses Goblin with sword (8+5 vs AC 13).", kindMiss},
		{"Goblin saves against Cleric's Sacred Flame (15 vs DC 13).", kindMiss},
		{"Cleric casts Cure Wounds: Hero regains 8 HP (20/20).", kindHealing},
		{"Goblin goes down!", kindDown},
		{"[Round 2 begins.]", kindSystem},
		{"[trace] hero: attack via aggressive-melee > engage", kindTrace},
		{"Hero moves to (3,4).", kindNarration},
		{"Hero takes a defensive stance.", kindNarration},
	}
	for _, tt := range tests {
		got := classifyLine(tt.line)
		if got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  string
	}{
		{"short", 80, "short"},
		{"hello world", 5, "hello\nworld"},
		{"Hero hits Goblin with longsword for 11 damage total.", 25,
			"Hero hits Goblin with\nlongsword for 11 damage\ntotal."},
		{"", 80, ""},
		{"a b c d e", 3, "a b\nc d\ne"},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		if got != tt.want {
			t.Errorf("wordWrap(%q, %d) =\n  %q\nwant:\n  %q", tt.text, tt.width, got, tt.want)
		}
	}
}

func TestHistory_PushAndPrev(t *testing.T) {
	h := NewHistory(5)
	h.Push("step")
	h.Push("round")
	h.Push("trace")

	prev, ok := h.Prev()
	if !ok || prev != "trace" {
		t.Errorf("expected 'trace', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "round" {
		t.Errorf("expected 'round', got %q (ok=%v)", prev, ok)
	}

	prev, ok = h.Prev()
	if !ok || prev != "step" {
		t.Errorf("expected 'step', got %q (ok=%v)", prev, ok)
	}

	// At oldest, stays there.
	prev, ok = h.Prev()
	if !ok || prev != "step" {
		t.Errorf("expected 'step' at boundary, got %q (ok=%v)", prev, ok)
	}
}

func TestHistory_Next(t *testing.T) {
	h := NewHistory(5)
	h.Push("step")
	h.Push("round")

	h.Prev() // "round"
	h.Prev() // "step"

	next, ok := h.Next()
	if !ok || next != "round" {
		t.Errorf("expected 'round', got %q (ok=%v)", next, ok)
	}

	_, ok = h.Next()
	if ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c") // "a" evicted

	prev, _ := h.Prev()
	if prev != "c" {
		t.Errorf("expected 'c', got %q", prev)
	}
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b', got %q", prev)
	}
	// "a" is gone.
	prev, _ = h.Prev()
	if prev != "b" {
		t.Errorf("expected 'b' at boundary, got %q", prev)
	}
}

func TestHistory_NoDuplicates(t *testing.T) {
	h := NewHistory(5)
	h.Push("step")
	h.Push("step") // skipped

	if len(h.entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(h.entries))
	}
}

// testRunner returns a minimal two-combatant encounter for TUI testing.
func testRunner() *sim.Runner {
	m := types.GridMap{Width: 8, Height: 8, Obstacles: map[types.Position]bool{}}
	enc := encounter.New("tui-test", m, 5, types.DifficultyNormal)
	enc.Add(types.Creature{
		ID: "hero", Name: "Hero", Team: "heroes", HP: 20, MaxHP: 20, AC: 15, Speed: 6,
		Abilities: map[string]int{"dex": 12},
		Attacks: []types.Attack{{
			Name: "sword", Bonus: 5, DamageDice: "1d8", DamageMod: 3,
			DamageType: types.DamageSlashing, Reach: 1, Count: 1,
		}},
	}, types.Position{X: 1, Y: 1}, types.ResourcePool{})
	enc.Add(types.Creature{
		ID: "gob", Name: "Goblin", Team: "monsters", HP: 7, MaxHP: 7, AC: 13, Speed: 6,
		Abilities: map[string]int{"dex": 14},
		Attacks: []types.Attack{{
			Name: "scimitar", Bonus: 4, DamageDice: "1d6", DamageMod: 2,
			DamageType: types.DamageSlashing, Reach: 1, Count: 1,
		}},
	}, types.Position{X: 3, Y: 3}, types.ResourcePool{})

	agent := engine.New(behavior.NewLibrary(), nil)
	return sim.NewRunner(enc, agent)
}

func TestRunStep_AppendsNarration(t *testing.T) {
	m := New(testRunner())
	m.ready = true
	m.width = 80

	m = m.runStep("step")
	if len(m.rawLines) == 0 {
		t.Fatal("expected narration lines after stepping")
	}
	if !m.rawLines[0].isInput || m.rawLines[0].text != "> step" {
		t.Errorf("first line = %+v, want echoed input", m.rawLines[0])
	}
}

func TestRunAll_ReportsOutcome(t *testing.T) {
	m := New(testRunner())

	m = m.runAll("run")

	var joined strings.Builder
	for _, rl := range m.rawLines {
		joined.WriteString(rl.text)
		joined.WriteString("\n")
	}
	if !strings.Contains(joined.String(), "Encounter over") {
		t.Errorf("expected outcome line, got:\n%s", joined.String())
	}
}

func TestFormatTrace(t *testing.T) {
	d := &types.TacticalDecision{
		ActorID: "hero",
		Action:  types.ActionCandidate{Type: types.ActionAttack},
		Reasoning: types.DecisionReasoning{
			TreePath: []string{"aggressive-melee", "engage"},
			TopCandidates: []types.ScoredAction{
				{Candidate: types.ActionCandidate{Type: types.ActionAttack}, TargetID: "gob", Total: 12.5},
			},
			Fallback: "dodge",
		},
	}

	lines := formatTrace(d)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "hero: attack via aggressive-melee > engage") {
		t.Errorf("missing tree path line:\n%s", joined)
	}
	if !strings.Contains(joined, "12.50") || !strings.Contains(joined, "@ gob") {
		t.Errorf("missing candidate line:\n%s", joined)
	}
	if !strings.Contains(joined, "fallback: dodge") {
		t.Errorf("missing fallback line:\n%s", joined)
	}
}
