// Package sink persists committed tactical decisions. The engine treats
// a sink as write-only and best-effort: a failed write is noted in the
// decision's reasoning, never surfaced as a turn failure.
package sink

import (
	"sync"

	"github.com/nathoo/tacticore/types"
)

// Memory keeps decisions in order of arrival. Used by the simulator's
// trace view and by tests.
type Memory struct {
	mu        sync.Mutex
	decisions []types.TacticalDecision
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Record stores a copy of the decision.
func (m *Memory) Record(d *types.TacticalDecision) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.decisions = append(m.decisions, *d)
	return nil
}

// Decisions returns all recorded decisions in arrival order.
func (m *Memory) Decisions() []types.TacticalDecision {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]types.TacticalDecision, len(m.decisions))
	copy(out, m.decisions)
	return out
}

// Len reports the number of recorded decisions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.decisions)
}
