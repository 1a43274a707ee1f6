package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nathoo/tacticore/engine"
	"github.com/nathoo/tacticore/engine/behavior"
	"github.com/nathoo/tacticore/engine/encounter"
	"github.com/nathoo/tacticore/sim"
	"github.com/nathoo/tacticore/types"
)

// testRunner returns a minimal two-combatant encounter for CLI testing.
func testRunner() *sim.Runner {
	m := types.GridMap{Width: 8, Height: 8, Obstacles: map[types.Position]bool{}}
	enc := encounter.New("cli-test", m, 11, types.DifficultyNormal)
	enc.Add(types.Creature{
		ID: "hero", Name: "Hero", Team: "heroes", HP: 20, MaxHP: 20, AC: 15, Speed: 6,
		Abilities: map[string]int{"str": 16, "dex": 12},
		Attacks: []types.Attack{{
			Name: "sword", Bonus: 5, DamageDice: "1d8", DamageMod: 3,
			DamageType: types.DamageSlashing, Reach: 1, Count: 1,
		}},
	}, types.Position{X: 1, Y: 1}, types.ResourcePool{})
	enc.Add(types.Creature{
		ID: "gob", Name: "Goblin", Team: "monsters", HP: 7, MaxHP: 7, AC: 13, Speed: 6,
		Abilities: map[string]int{"str": 8, "dex": 14},
		Attacks: []types.Attack{{
			Name: "scimitar", Bonus: 4, DamageDice: "1d6", DamageMod: 2,
			DamageType: types.DamageSlashing, Reach: 1, Count: 1,
		}},
	}, types.Position{X: 3, Y: 3}, types.ResourcePool{})

	agent := engine.New(behavior.NewLibrary(), nil)
	return sim.NewRunner(enc, agent)
}

func newTestCLI(input string) (*CLI, *bytes.Buffer) {
	var out bytes.Buffer
	c := New(testRunner())
	c.In = strings.NewReader(input)
	c.Out = &out
	return c, &out
}

func TestCLI_Quit(t *testing.T) {
	c, out := newTestCLI("quit\n")
	c.Run()

	if !strings.Contains(out.String(), "Goodbye.") {
		t.Error("expected goodbye message")
	}
}

func TestCLI_StepNarratesTurn(t *testing.T) {
	c, out := newTestCLI("step\nquit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Goblin") && !strings.Contains(output, "Hero") {
		t.Errorf("expected a turn narration, got:\n%s", output)
	}
}

func TestCLI_Status(t *testing.T) {
	c, out := newTestCLI("status\nquit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Hero") || !strings.Contains(output, "20/20 HP") {
		t.Errorf("expected combatant status, got:\n%s", output)
	}
}

func TestCLI_TraceToggle(t *testing.T) {
	c, out := newTestCLI("trace\nstep\nquit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Trace output enabled.") {
		t.Error("expected trace toggle confirmation")
	}
	if !strings.Contains(output, "[trace]") {
		t.Errorf("expected trace lines after stepping, got:\n%s", output)
	}
}

func TestCLI_RunPlaysToEnd(t *testing.T) {
	c, out := newTestCLI("run\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Encounter over") {
		t.Errorf("expected encounter outcome, got:\n%s", output)
	}
	if !strings.Contains(output, "wins") {
		t.Errorf("expected a winner, got:\n%s", output)
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	c, out := newTestCLI("frobnicate\nquit\n")
	c.Run()

	if !strings.Contains(out.String(), "Unknown command: frobnicate") {
		t.Error("expected unknown-command message")
	}
}

func TestCLI_CommentLinesIgnored(t *testing.T) {
	c, out := newTestCLI("# scripted comment\nquit\n")
	c.Run()

	if strings.Contains(out.String(), "Unknown command") {
		t.Error("comment line should be skipped")
	}
}
