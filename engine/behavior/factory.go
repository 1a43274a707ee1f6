package behavior

import (
	"github.com/nathoo/tacticore/engine/grid"
	"github.com/nathoo/tacticore/types"
)

// Library maps tree names to shared immutable trees. A creature with a
// Tree name not present in the library falls back to role heuristics.
type Library struct {
	trees map[string]Node
}

// NewLibrary creates a library pre-populated with the factory trees.
func NewLibrary() *Library {
	return &Library{trees: map[string]Node{
		"aggressive-melee": AggressiveMelee(),
		"ranged-attacker":  RangedAttacker(),
		"spellcaster":      Spellcaster(),
		"defensive":        Defensive(),
	}}
}

// Register adds a bespoke tree under the given name, replacing any
// existing tree.
func (l *Library) Register(name string, root Node) {
	l.trees[name] = root
}

// ForCreature returns the tree for a creature: its bespoke tree if named
// and registered, otherwise a factory tree picked by role heuristics.
func (l *Library) ForCreature(c types.Creature) Node {
	if c.Tree != "" {
		if t, ok := l.trees[c.Tree]; ok {
			return t
		}
	}
	return l.trees[RoleFor(c)]
}

// RoleFor infers a combat role from the creature's kit: leveled spells
// make a spellcaster, a dominant ranged attack makes a ranged attacker,
// a large HP pool with weak offense is defensive, everything else is
// melee.
func RoleFor(c types.Creature) string {
	for _, sp := range c.Spells {
		if sp.Level > 0 {
			return "spellcaster"
		}
	}
	var bestMelee, bestRanged int
	hasRanged := false
	for _, a := range c.Attacks {
		if a.Ranged {
			hasRanged = true
			if a.Bonus > bestRanged {
				bestRanged = a.Bonus
			}
		} else if a.Bonus > bestMelee {
			bestMelee = a.Bonus
		}
	}
	if hasRanged && bestRanged >= bestMelee {
		return "ranged-attacker"
	}
	if len(c.Attacks) == 0 {
		return "defensive"
	}
	return "aggressive-melee"
}

// AggressiveMelee closes in and attacks, retreating only when badly hurt.
func AggressiveMelee() Node {
	return &Selector{Label: "aggressive-melee", Children: []Node{
		&Sequence{Label: "retreat-when-hurt", Children: []Node{
			&Condition{Label: "hp-below-30", Test: HPBelow(0.3)},
			&Action{Label: "retreat", Types: []types.ActionType{types.ActionDisengage, types.ActionMove, types.ActionDodge}, Priority: 6},
		}},
		&Sequence{Label: "engage", Children: []Node{
			&Condition{Label: "enemy-alive", Test: EnemyAlive},
			&Action{Label: "melee", Types: []types.ActionType{types.ActionAttack, types.ActionMove, types.ActionDash}, Priority: 8},
		}},
	}}
}

// RangedAttacker keeps its distance and shoots, breaking away from
// adjacent enemies first.
func RangedAttacker() Node {
	return &Selector{Label: "ranged-attacker", Children: []Node{
		&Sequence{Label: "retreat-when-hurt", Children: []Node{
			&Condition{Label: "hp-below-30", Test: HPBelow(0.3)},
			&Action{Label: "retreat", Types: []types.ActionType{types.ActionDisengage, types.ActionMove, types.ActionDodge}, Priority: 6},
		}},
		&Sequence{Label: "break-away", Children: []Node{
			&Condition{Label: "enemy-adjacent", Test: EnemyAdjacent},
			&Action{Label: "reposition", Types: []types.ActionType{types.ActionDisengage, types.ActionAttack, types.ActionMove}, Priority: 7},
		}},
		&Sequence{Label: "shoot", Children: []Node{
			&Condition{Label: "enemy-alive", Test: EnemyAlive},
			&Action{Label: "ranged", Types: []types.ActionType{types.ActionAttack, types.ActionMove}, Priority: 8},
		}},
	}}
}

// Spellcaster leads with spells while slots remain, then cantrips and
// weapons.
func Spellcaster() Node {
	return &Selector{Label: "spellcaster", Children: []Node{
		&Sequence{Label: "retreat-when-hurt", Children: []Node{
			&Condition{Label: "hp-below-30", Test: HPBelow(0.3)},
			&Action{Label: "retreat", Types: []types.ActionType{types.ActionMove, types.ActionDodge, types.ActionCast}, Priority: 6},
		}},
		&Sequence{Label: "cast", Children: []Node{
			&Condition{Label: "has-slots", Test: HasSpellSlots},
			&Action{Label: "spells", Types: []types.ActionType{types.ActionCast, types.ActionAttack, types.ActionMove}, Priority: 8},
		}},
		&Sequence{Label: "cantrips", Children: []Node{
			&Condition{Label: "enemy-alive", Test: EnemyAlive},
			&Action{Label: "at-will", Types: []types.ActionType{types.ActionCast, types.ActionAttack, types.ActionMove}, Priority: 7},
		}},
	}}
}

// Defensive guards and assists, attacking only when comfortable.
func Defensive() Node {
	return &Selector{Label: "defensive", Children: []Node{
		&Sequence{Label: "guard-when-hurt", Children: []Node{
			&Condition{Label: "hp-below-50", Test: HPBelow(0.5)},
			&Action{Label: "guard", Types: []types.ActionType{types.ActionDodge, types.ActionMove, types.ActionDisengage}, Priority: 7},
		}},
		&Sequence{Label: "hold-line", Children: []Node{
			&Condition{Label: "enemy-alive", Test: EnemyAlive},
			&Action{Label: "hold", Types: []types.ActionType{types.ActionAttack, types.ActionHelp, types.ActionDodge}, Priority: 6},
		}},
	}}
}

// HPBelow returns a predicate that holds when actor HP is below the
// given fraction of max.
func HPBelow(frac float64) Predicate {
	return func(actor types.Creature, ctx *types.TacticalContext) bool {
		if actor.MaxHP == 0 {
			return false
		}
		return float64(actor.HP) < frac*float64(actor.MaxHP)
	}
}

// EnemyAlive holds when at least one enemy is standing.
func EnemyAlive(actor types.Creature, ctx *types.TacticalContext) bool {
	for _, e := range ctx.Enemies {
		if e.HP > 0 {
			return true
		}
	}
	return false
}

// EnemyAdjacent holds when a living enemy is within one cell of the actor.
func EnemyAdjacent(actor types.Creature, ctx *types.TacticalContext) bool {
	self, ok := ctx.Positions[actor.ID]
	if !ok {
		return false
	}
	for _, e := range ctx.Enemies {
		if e.HP <= 0 {
			continue
		}
		if p, ok := ctx.Positions[e.ID]; ok && grid.Distance(self, p) <= 1 {
			return true
		}
	}
	return false
}

// EnemiesAtLeast holds when at least n enemies are standing.
func EnemiesAtLeast(n int) Predicate {
	return func(actor types.Creature, ctx *types.TacticalContext) bool {
		alive := 0
		for _, e := range ctx.Enemies {
			if e.HP > 0 {
				alive++
			}
		}
		return alive >= n
	}
}

// HasSpellSlots holds when the actor has any leveled slot remaining.
func HasSpellSlots(actor types.Creature, ctx *types.TacticalContext) bool {
	pool, ok := ctx.Resources[actor.ID]
	if !ok {
		return false
	}
	for lvl, n := range pool.SpellSlots {
		if lvl > 0 && n > 0 {
			return true
		}
	}
	return false
}

// AllyBelow returns a predicate that holds when any ally is below the
// given HP fraction.
func AllyBelow(frac float64) Predicate {
	return func(actor types.Creature, ctx *types.TacticalContext) bool {
		for _, a := range ctx.Allies {
			if a.MaxHP > 0 && a.HP > 0 && float64(a.HP) < frac*float64(a.MaxHP) {
				return true
			}
		}
		return false
	}
}
