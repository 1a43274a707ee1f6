// Package legality is the default action validator. The agent re-queries
// it on the final chosen candidate immediately before commit; a rejection
// is a normal stage failure that triggers fallback, never an engine
// error.
package legality

import (
	"fmt"

	"github.com/nathoo/tacticore/types"
)

// Error is an Illegal(reason) verdict.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "illegal action: " + e.Reason
}

// Spatial is the geometry collaborator the checker consumes.
type Spatial interface {
	Distance(a, b types.Position) int
	HasLineOfEffect(a, b types.Position, m types.GridMap) bool
}

// Checker validates decisions against the action economy, range, line of
// effect, and resource availability.
type Checker struct {
	Spatial Spatial
}

// Validate returns nil when the decision is legal, or *Error with the
// rejection reason.
func (c *Checker) Validate(d *types.TacticalDecision, ctx *types.TacticalContext) error {
	if ctx.Actor.HP <= 0 {
		return &Error{Reason: "actor is down"}
	}
	if isIncapacitated(ctx, ctx.Actor.ID) {
		return &Error{Reason: "actor is incapacitated"}
	}

	if err := c.validateMovement(d, ctx); err != nil {
		return err
	}
	if err := c.validateCost(d, ctx); err != nil {
		return err
	}

	switch d.Action.Type {
	case types.ActionAttack:
		return c.validateAttack(d, ctx)
	case types.ActionCast:
		return c.validateCast(d, ctx)
	case types.ActionHelp:
		if d.TargetID == "" {
			return &Error{Reason: "help requires a target"}
		}
		return nil
	case types.ActionDodge, types.ActionMove, types.ActionDash, types.ActionDisengage, types.ActionAbility:
		return nil
	default:
		return &Error{Reason: fmt.Sprintf("unknown action type %q", d.Action.Type)}
	}
}

func (c *Checker) validateMovement(d *types.TacticalDecision, ctx *types.TacticalContext) error {
	if d.Destination == nil {
		return nil
	}
	p := *d.Destination
	if p.X < 0 || p.Y < 0 || p.X >= ctx.Map.Width || p.Y >= ctx.Map.Height {
		return &Error{Reason: "destination out of bounds"}
	}
	if ctx.Map.Obstacles[p] {
		return &Error{Reason: "destination is an obstacle"}
	}
	for id, op := range ctx.Positions {
		if id != ctx.Actor.ID && op == p {
			return &Error{Reason: "destination is occupied"}
		}
	}

	speed := ctx.Actor.Speed
	if d.Action.Type == types.ActionDash {
		speed *= 2
	}
	if len(d.Path) > speed {
		return &Error{Reason: "path exceeds movement speed"}
	}
	if isCondition(ctx, ctx.Actor.ID, types.CondGrappled) || isCondition(ctx, ctx.Actor.ID, types.CondRestrained) {
		return &Error{Reason: "actor cannot move"}
	}
	return nil
}

func (c *Checker) validateCost(d *types.TacticalDecision, ctx *types.TacticalContext) error {
	pool := ctx.Resources[ctx.Actor.ID]
	switch d.Cost.Kind {
	case types.ResourceSpellSlot:
		if pool.SpellSlots[d.Cost.Level] <= 0 {
			return &Error{Reason: fmt.Sprintf("no level %d slot remaining", d.Cost.Level)}
		}
	case types.ResourceAbility:
		if pool.AbilityUses[d.Cost.ID] <= 0 {
			return &Error{Reason: fmt.Sprintf("no use of %s remaining", d.Cost.ID)}
		}
	case types.ResourceConsumable:
		if pool.Consumables[d.Cost.ID] <= 0 {
			return &Error{Reason: fmt.Sprintf("no %s remaining", d.Cost.ID)}
		}
	}
	return nil
}

func (c *Checker) validateAttack(d *types.TacticalDecision, ctx *types.TacticalContext) error {
	if d.Action.Attack == nil {
		return &Error{Reason: "attack action without an attack"}
	}
	target, pos, err := c.resolveTarget(d, ctx)
	if err != nil {
		return err
	}
	if target.Team == ctx.Actor.Team {
		return &Error{Reason: "attacking an ally"}
	}

	from := c.finalPosition(d, ctx)
	a := d.Action.Attack
	maxRange := a.Reach
	if a.Ranged {
		maxRange = a.LongRange
		if maxRange == 0 {
			maxRange = a.Range
		}
	}
	if maxRange < 1 {
		maxRange = 1
	}
	if c.Spatial.Distance(from, pos) > maxRange {
		return &Error{Reason: "target out of range"}
	}
	if a.Ranged && !c.Spatial.HasLineOfEffect(from, pos, ctx.Map) {
		return &Error{Reason: "no line of effect to target"}
	}
	return nil
}

func (c *Checker) validateCast(d *types.TacticalDecision, ctx *types.TacticalContext) error {
	if d.Action.Spell == nil {
		return &Error{Reason: "cast action without a spell"}
	}
	target, pos, err := c.resolveTarget(d, ctx)
	if err != nil {
		return err
	}

	sp := d.Action.Spell
	healing := sp.HealingDice != "" || sp.HealingMod > 0
	if healing && target.Team != ctx.Actor.Team {
		return &Error{Reason: "healing an enemy"}
	}
	if !healing && target.Team == ctx.Actor.Team {
		return &Error{Reason: "targeting an ally with a harmful spell"}
	}

	from := c.finalPosition(d, ctx)
	if sp.Range > 0 && c.Spatial.Distance(from, pos) > sp.Range {
		return &Error{Reason: "target out of spell range"}
	}
	if !c.Spatial.HasLineOfEffect(from, pos, ctx.Map) {
		return &Error{Reason: "no line of effect to target"}
	}
	return nil
}

// resolveTarget finds the decision's target and its position.
func (c *Checker) resolveTarget(d *types.TacticalDecision, ctx *types.TacticalContext) (*types.Creature, types.Position, error) {
	if d.TargetID == "" {
		return nil, types.Position{}, &Error{Reason: "action requires a target"}
	}
	var target *types.Creature
	if ctx.Actor.ID == d.TargetID {
		target = &ctx.Actor
	}
	for i := range ctx.Allies {
		if ctx.Allies[i].ID == d.TargetID {
			target = &ctx.Allies[i]
		}
	}
	for i := range ctx.Enemies {
		if ctx.Enemies[i].ID == d.TargetID {
			target = &ctx.Enemies[i]
		}
	}
	if target == nil {
		return nil, types.Position{}, &Error{Reason: "target not in encounter"}
	}
	if target.HP <= 0 {
		return nil, types.Position{}, &Error{Reason: "target is already down"}
	}
	pos, ok := ctx.Positions[d.TargetID]
	if !ok {
		return nil, types.Position{}, &Error{Reason: "target has no position"}
	}
	return target, pos, nil
}

// finalPosition is where the actor acts from: the destination when the
// decision moves, otherwise the current square.
func (c *Checker) finalPosition(d *types.TacticalDecision, ctx *types.TacticalContext) types.Position {
	if d.Destination != nil {
		return *d.Destination
	}
	return ctx.Positions[ctx.Actor.ID]
}

func isIncapacitated(ctx *types.TacticalContext, id string) bool {
	for _, c := range ctx.Conditions[id] {
		switch c {
		case types.CondIncapacitated, types.CondParalyzed, types.CondStunned, types.CondUnconscious:
			return true
		}
	}
	return false
}

func isCondition(ctx *types.TacticalContext, id string, cond types.Condition) bool {
	for _, c := range ctx.Conditions[id] {
		if c == cond {
			return true
		}
	}
	return false
}
