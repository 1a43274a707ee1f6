package sink

import (
	"path/filepath"
	"testing"

	"github.com/nathoo/tacticore/types"
)

func sampleDecision(id, actor string, round int) *types.TacticalDecision {
	return &types.TacticalDecision{
		ID:          id,
		EncounterID: "enc-1",
		Round:       round,
		ActorID:     actor,
		Action:      types.ActionCandidate{Type: types.ActionAttack},
		TargetID:    "gob",
		Destination: &types.Position{X: 3, Y: 4},
		Reasoning: types.DecisionReasoning{
			TreePath: []string{"aggressive-melee", "engage"},
			Notes:    []string{"test"},
		},
	}
}

func TestMemory_RecordsInOrder(t *testing.T) {
	m := NewMemory()
	if err := m.Record(sampleDecision("a", "hero", 1)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := m.Record(sampleDecision("b", "gob", 1)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got := m.Decisions()
	if len(got) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "b" {
		t.Errorf("order = %s, %s; want a, b", got[0].ID, got[1].ID)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func TestMemory_CopiesDecisions(t *testing.T) {
	m := NewMemory()
	d := sampleDecision("a", "hero", 1)
	m.Record(d)
	d.ActorID = "mutated"

	if got := m.Decisions()[0].ActorID; got != "hero" {
		t.Errorf("stored decision mutated: actor = %q", got)
	}
}

func TestSQLite_RecordAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	if err := s.Record(sampleDecision("a", "hero", 1)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := s.Record(sampleDecision("b", "gob", 1)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := s.Record(sampleDecision("c", "hero", 2)); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	got, err := s.Replay("enc-1")
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 decisions, got %d", len(got))
	}
	if got[0].ID != "a" || got[2].ID != "c" {
		t.Errorf("replay order = %s..%s, want a..c", got[0].ID, got[2].ID)
	}
	if got[0].Action.Type != types.ActionAttack {
		t.Errorf("action type = %q", got[0].Action.Type)
	}
	if got[0].Destination == nil || got[0].Destination.X != 3 {
		t.Errorf("destination = %+v", got[0].Destination)
	}
	if len(got[0].Reasoning.TreePath) != 2 {
		t.Errorf("reasoning = %+v", got[0].Reasoning)
	}
}

func TestSQLite_UpsertOnReplayedID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	d := sampleDecision("a", "hero", 1)
	if err := s.Record(d); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	d.Reasoning.Notes = []string{"second run"}
	if err := s.Record(d); err != nil {
		t.Fatalf("re-Record failed: %v", err)
	}

	got, err := s.Replay("enc-1")
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 decision after upsert, got %d", len(got))
	}
	if len(got[0].Reasoning.Notes) != 1 || got[0].Reasoning.Notes[0] != "second run" {
		t.Errorf("notes = %v, want [second run]", got[0].Reasoning.Notes)
	}
}

func TestSQLite_ReplayUnknownEncounter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.db")
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	defer s.Close()

	got, err := s.Replay("nope")
	if err != nil {
		t.Fatalf("Replay failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no decisions, got %d", len(got))
	}
}
