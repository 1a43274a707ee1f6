// Package behavior implements the composable decision-tree primitives
// that pick a coarse action type for a creature's turn: Selector,
// Sequence, Condition, and Action leaves. Trees are immutable data built
// once and shared by reference; evaluation has no side effects.
package behavior

import "github.com/nathoo/tacticore/types"

// Status is the outcome of evaluating a node.
type Status int

const (
	Failure Status = iota
	Success
	Candidates // terminal: carries action types + priority
)

// Result is a node evaluation outcome. Path records the labels of the
// nodes visited on the winning branch, for decision reasoning.
type Result struct {
	Status   Status
	Types    []types.ActionType
	Priority int
	Path     []string
}

// Node is a single node in a behavior tree.
type Node interface {
	Evaluate(actor types.Creature, ctx *types.TacticalContext) Result
}

// Predicate tests the situation for a Condition node.
type Predicate func(actor types.Creature, ctx *types.TacticalContext) bool

// Selector tries children in order and returns the first non-failure.
type Selector struct {
	Label    string
	Children []Node
}

// Evaluate returns the first child result that is not a failure.
func (s *Selector) Evaluate(actor types.Creature, ctx *types.TacticalContext) Result {
	for _, c := range s.Children {
		if r := c.Evaluate(actor, ctx); r.Status != Failure {
			r.Path = append([]string{s.Label}, r.Path...)
			return r
		}
	}
	return Result{Status: Failure}
}

// Sequence runs children in order, failing on the first failure. It
// succeeds only if all children succeed, yielding the candidates of the
// last terminal child.
type Sequence struct {
	Label    string
	Children []Node
}

// Evaluate runs every child; the last Candidates result wins.
func (s *Sequence) Evaluate(actor types.Creature, ctx *types.TacticalContext) Result {
	out := Result{Status: Success}
	for _, c := range s.Children {
		r := c.Evaluate(actor, ctx)
		if r.Status == Failure {
			return Result{Status: Failure}
		}
		if r.Status == Candidates {
			out = Result{Status: Candidates, Types: r.Types, Priority: r.Priority, Path: r.Path}
		}
	}
	out.Path = append([]string{s.Label}, out.Path...)
	return out
}

// Condition evaluates a predicate over the context and acting creature.
type Condition struct {
	Label string
	Test  Predicate
}

// Evaluate returns Success when the predicate holds.
func (c *Condition) Evaluate(actor types.Creature, ctx *types.TacticalContext) Result {
	if c.Test(actor, ctx) {
		return Result{Status: Success, Path: []string{c.Label}}
	}
	return Result{Status: Failure}
}

// Action is a terminal leaf yielding candidate action types with a
// priority.
type Action struct {
	Label    string
	Types    []types.ActionType
	Priority int
}

// Evaluate always yields this leaf's candidates.
func (a *Action) Evaluate(actor types.Creature, ctx *types.TacticalContext) Result {
	return Result{Status: Candidates, Types: a.Types, Priority: a.Priority, Path: []string{a.Label}}
}

// Run evaluates a tree root and applies the fixed fallback: if no branch
// yields candidates, the result is {Dodge} at priority 1.
func Run(root Node, actor types.Creature, ctx *types.TacticalContext) Result {
	r := root.Evaluate(actor, ctx)
	if r.Status != Candidates || len(r.Types) == 0 {
		return Result{
			Status:   Candidates,
			Types:    []types.ActionType{types.ActionDodge},
			Priority: 1,
			Path:     []string{"fallback-dodge"},
		}
	}
	return r
}
