// Package loader loads Lua scenario content into Go structs at load
// time. The Lua VM is discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/tacticore/engine/behavior"
	"github.com/nathoo/tacticore/engine/encounter"
	"github.com/nathoo/tacticore/types"
)

// Scenario is a fully compiled encounter definition.
type Scenario struct {
	Name       string
	Seed       int64
	Difficulty types.Difficulty
	MaxRounds  int
	Map        types.GridMap
	Combatants []Combatant
	Trees      map[string]behavior.Node
}

// Combatant pairs a creature with its starting position and resources.
type Combatant struct {
	Creature types.Creature
	Position types.Position
	Pool     types.ResourcePool
}

// Build instantiates the scenario: a live encounter plus a tree library
// with every bespoke tree registered.
func (s *Scenario) Build() (*encounter.Encounter, *behavior.Library) {
	enc := encounter.New(s.Name, s.Map, s.Seed, s.Difficulty)
	for _, c := range s.Combatants {
		enc.Add(c.Creature, c.Position, c.Pool)
	}
	lib := behavior.NewLibrary()
	for name, root := range s.Trees {
		lib.Register(name, root)
	}
	return enc, lib
}

// rawCreature holds a creature table before compilation.
type rawCreature struct {
	id    string
	table *lua.LTable
}

// rawTree holds a behavior tree table before compilation.
type rawTree struct {
	name  string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getNumber returns a numeric field from a Lua table, or 0 if missing.
func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

// getInt returns an int field from a Lua table, or def if missing.
func getInt(tbl *lua.LTable, key string, def int) int {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(n)
	}
	return def
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToIntMap converts {str=10, dex=14} to a map[string]int.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	if tbl == nil {
		return nil
	}
	m := map[string]int{}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		if n, ok := v.(lua.LNumber); ok {
			m[string(ks)] = int(n)
		}
	})
	return m
}

// compile converts all collected Lua data into a Scenario.
func compile(coll *collector) (*Scenario, error) {
	if coll.encounter == nil {
		return nil, fmt.Errorf("no Encounter{} definition found")
	}

	sc := &Scenario{Trees: map[string]behavior.Node{}}
	if err := compileEncounter(coll.encounter, sc); err != nil {
		return nil, err
	}

	for _, raw := range coll.creatures {
		cb, err := compileCreature(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling creature %s: %w", raw.id, err)
		}
		sc.Combatants = append(sc.Combatants, cb)
	}

	for _, raw := range coll.trees {
		node, err := compileNode(raw.table)
		if err != nil {
			return nil, fmt.Errorf("compiling tree %s: %w", raw.name, err)
		}
		sc.Trees[raw.name] = node
	}

	return sc, nil
}

func compileEncounter(tbl *lua.LTable, sc *Scenario) error {
	sc.Name = getString(tbl, "name")
	sc.Seed = int64(getNumber(tbl, "seed"))
	sc.MaxRounds = getInt(tbl, "max_rounds", 0)

	switch d := getString(tbl, "difficulty"); d {
	case "", "normal":
		sc.Difficulty = types.DifficultyNormal
	case "easy":
		sc.Difficulty = types.DifficultyEasy
	case "hard":
		sc.Difficulty = types.DifficultyHard
	default:
		return fmt.Errorf("unknown difficulty %q", d)
	}

	sc.Map = types.GridMap{
		Width:     getInt(tbl, "width", 0),
		Height:    getInt(tbl, "height", 0),
		Obstacles: map[types.Position]bool{},
	}
	if sc.Map.Width <= 0 || sc.Map.Height <= 0 {
		return fmt.Errorf("encounter needs positive width and height")
	}

	if obs := getTable(tbl, "obstacles"); obs != nil {
		for i := 1; i <= obs.MaxN(); i++ {
			p, err := compilePosition(obs.RawGetInt(i))
			if err != nil {
				return fmt.Errorf("obstacle %d: %w", i, err)
			}
			sc.Map.Obstacles[p] = true
		}
	}

	if haz := getTable(tbl, "hazards"); haz != nil {
		for i := 1; i <= haz.MaxN(); i++ {
			ht, ok := haz.RawGetInt(i).(*lua.LTable)
			if !ok {
				return fmt.Errorf("hazard %d: expected a table", i)
			}
			sc.Map.Hazards = append(sc.Map.Hazards, types.Hazard{
				Pos:  types.Position{X: getInt(ht, "x", 0), Y: getInt(ht, "y", 0)},
				Kind: getString(ht, "kind"),
			})
		}
	}

	return nil
}

// compilePosition accepts a two-element array table {x, y}.
func compilePosition(v lua.LValue) (types.Position, error) {
	tbl, ok := v.(*lua.LTable)
	if !ok || tbl.MaxN() != 2 {
		return types.Position{}, fmt.Errorf("expected {x, y}")
	}
	x, xok := tbl.RawGetInt(1).(lua.LNumber)
	y, yok := tbl.RawGetInt(2).(lua.LNumber)
	if !xok || !yok {
		return types.Position{}, fmt.Errorf("expected numeric coordinates")
	}
	return types.Position{X: int(x), Y: int(y)}, nil
}

func compileCreature(raw rawCreature) (Combatant, error) {
	tbl := raw.table

	hp := getInt(tbl, "hp", 1)
	c := types.Creature{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Team:        getString(tbl, "team"),
		HP:          hp,
		MaxHP:       getInt(tbl, "max_hp", hp),
		AC:          getInt(tbl, "ac", 10),
		Speed:       getInt(tbl, "speed", 6),
		Abilities:   tableToIntMap(getTable(tbl, "abilities")),
		SaveBonuses: tableToIntMap(getTable(tbl, "saves")),
		Tree:        getString(tbl, "tree"),
	}
	if c.Name == "" {
		c.Name = raw.id
	}

	pos, err := compilePosition(tbl.RawGetString("position"))
	if err != nil {
		return Combatant{}, fmt.Errorf("position: %w", err)
	}

	if kit := getTable(tbl, "attacks"); kit != nil {
		for i := 1; i <= kit.MaxN(); i++ {
			at, ok := kit.RawGetInt(i).(*lua.LTable)
			if !ok || getString(at, "__kind") != "attack" {
				return Combatant{}, fmt.Errorf("attacks[%d]: expected Attack{}", i)
			}
			c.Attacks = append(c.Attacks, compileAttack(at))
		}
	}

	if kit := getTable(tbl, "spells"); kit != nil {
		for i := 1; i <= kit.MaxN(); i++ {
			st, ok := kit.RawGetInt(i).(*lua.LTable)
			if !ok || getString(st, "__kind") != "spell" {
				return Combatant{}, fmt.Errorf("spells[%d]: expected Spell{}", i)
			}
			c.Spells = append(c.Spells, compileSpell(st))
		}
	}

	if res := getTable(tbl, "resistances"); res != nil {
		c.Resistances = map[types.DamageType]types.ResistanceState{}
		var resErr error
		res.ForEach(func(k, v lua.LValue) {
			ks, kok := k.(lua.LString)
			vs, vok := v.(lua.LString)
			if !kok || !vok {
				return
			}
			state, err := parseResistance(string(vs))
			if err != nil && resErr == nil {
				resErr = fmt.Errorf("resistance %s: %w", ks, err)
				return
			}
			c.Resistances[types.DamageType(ks)] = state
		})
		if resErr != nil {
			return Combatant{}, resErr
		}
	}

	pool := types.ResourcePool{}
	if slots := getTable(tbl, "slots"); slots != nil {
		pool.SpellSlots = map[int]int{}
		for lvl := 1; lvl <= slots.MaxN(); lvl++ {
			if n, ok := slots.RawGetInt(lvl).(lua.LNumber); ok && n > 0 {
				pool.SpellSlots[lvl] = int(n)
			}
		}
	}
	if uses := getTable(tbl, "ability_uses"); uses != nil {
		pool.AbilityUses = tableToIntMap(uses)
	}
	if items := getTable(tbl, "items"); items != nil {
		pool.Consumables = tableToIntMap(items)
	}

	return Combatant{Creature: c, Position: pos, Pool: pool}, nil
}

func compileAttack(tbl *lua.LTable) types.Attack {
	a := types.Attack{
		Name:       getString(tbl, "name"),
		Bonus:      getInt(tbl, "bonus", 0),
		DamageDice: getString(tbl, "damage"),
		DamageMod:  getInt(tbl, "damage_mod", 0),
		DamageType: types.DamageType(getString(tbl, "damage_type")),
		Reach:      getInt(tbl, "reach", 0),
		Range:      getInt(tbl, "range", 0),
		LongRange:  getInt(tbl, "long_range", 0),
		Count:      getInt(tbl, "count", 1),
		UsesID:     getString(tbl, "uses"),
	}
	a.Ranged = a.Range > 0
	if !a.Ranged && a.Reach == 0 {
		a.Reach = 1
	}
	if a.Ranged && a.LongRange == 0 {
		a.LongRange = a.Range
	}
	return a
}

func compileSpell(tbl *lua.LTable) types.Spell {
	s := types.Spell{
		ID:            getString(tbl, "id"),
		Name:          getString(tbl, "name"),
		Level:         getInt(tbl, "level", 0),
		AttackBonus:   getInt(tbl, "attack_bonus", 0),
		SaveDC:        getInt(tbl, "save_dc", 0),
		SaveAbility:   getString(tbl, "save"),
		HalfOnSave:    getBool(tbl, "half_on_save", false),
		DamageDice:    getString(tbl, "damage"),
		DamageMod:     getInt(tbl, "damage_mod", 0),
		DamageType:    types.DamageType(getString(tbl, "damage_type")),
		HealingDice:   getString(tbl, "healing"),
		HealingMod:    getInt(tbl, "healing_mod", 0),
		Range:         getInt(tbl, "range", 1),
		AoERadius:     getInt(tbl, "radius", 0),
		Imposes:       types.Condition(getString(tbl, "imposes")),
		Concentration: getBool(tbl, "concentration", false),
	}
	if s.Name == "" {
		s.Name = s.ID
	}
	s.AttackRoll = s.AttackBonus != 0
	s.Control = s.Imposes != ""
	return s
}

func parseResistance(s string) (types.ResistanceState, error) {
	switch s {
	case "resistant":
		return types.ResResistant, nil
	case "vulnerable":
		return types.ResVulnerable, nil
	case "immune":
		return types.ResImmune, nil
	default:
		return types.ResNone, fmt.Errorf("unknown state %q", s)
	}
}

// compileNode recursively converts a marker table into a behavior node.
func compileNode(tbl *lua.LTable) (behavior.Node, error) {
	switch kind := getString(tbl, "__node"); kind {
	case "":
		// A Tree{} wrapper: exactly one child carries the root.
		if tbl.MaxN() != 1 {
			return nil, fmt.Errorf("tree body must hold exactly one root node")
		}
		root, ok := tbl.RawGetInt(1).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("tree root must be a node")
		}
		return compileNode(root)
	case "selector", "sequence":
		label := getString(tbl, "__label")
		var children []behavior.Node
		for i := 1; i <= tbl.MaxN(); i++ {
			ct, ok := tbl.RawGetInt(i).(*lua.LTable)
			if !ok {
				return nil, fmt.Errorf("%s %q: child %d is not a node", kind, label, i)
			}
			child, err := compileNode(ct)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		if len(children) == 0 {
			return nil, fmt.Errorf("%s %q has no children", kind, label)
		}
		if kind == "selector" {
			return &behavior.Selector{Label: label, Children: children}, nil
		}
		return &behavior.Sequence{Label: label, Children: children}, nil
	case "cond":
		return compileCond(tbl)
	case "action":
		return compileAction(tbl)
	default:
		return nil, fmt.Errorf("unknown node kind %q", kind)
	}
}

func compileCond(tbl *lua.LTable) (behavior.Node, error) {
	test := getString(tbl, "test")
	arg := getNumber(tbl, "arg")

	var pred behavior.Predicate
	switch test {
	case "hp_below":
		pred = behavior.HPBelow(arg)
	case "ally_below":
		pred = behavior.AllyBelow(arg)
	case "enemies_at_least":
		pred = behavior.EnemiesAtLeast(int(arg))
	case "enemy_adjacent":
		pred = behavior.EnemyAdjacent
	case "enemy_alive":
		pred = behavior.EnemyAlive
	case "has_slots":
		pred = behavior.HasSpellSlots
	default:
		return nil, fmt.Errorf("unknown predicate %q", test)
	}
	return &behavior.Condition{Label: test, Test: pred}, nil
}

func compileAction(tbl *lua.LTable) (behavior.Node, error) {
	label := getString(tbl, "__label")
	var kinds []types.ActionType
	for i := 1; i <= tbl.MaxN(); i++ {
		s, ok := tbl.RawGetInt(i).(lua.LString)
		if !ok {
			return nil, fmt.Errorf("action %q: entry %d is not an action type", label, i)
		}
		at, err := parseActionType(string(s))
		if err != nil {
			return nil, fmt.Errorf("action %q: %w", label, err)
		}
		kinds = append(kinds, at)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("action %q lists no action types", label)
	}
	return &behavior.Action{
		Label:    label,
		Types:    kinds,
		Priority: getInt(tbl, "priority", 5),
	}, nil
}

func parseActionType(s string) (types.ActionType, error) {
	switch at := types.ActionType(s); at {
	case types.ActionAttack, types.ActionCast, types.ActionMove,
		types.ActionDash, types.ActionDisengage, types.ActionDodge,
		types.ActionHelp, types.ActionAbility:
		return at, nil
	default:
		return "", fmt.Errorf("unknown action type %q", s)
	}
}
