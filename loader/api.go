package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerKitHelpers(L)
	registerTreeHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Encounter { name = "...", seed = 42, ... }
	L.SetGlobal("Encounter", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.encounter = tbl
		return 0
	}))

	// Creature "id" { ... } — curried: Creature("id") returns a function
	// that takes a table.
	L.SetGlobal("Creature", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.creatures = append(coll.creatures, rawCreature{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Tree "name" { root } — curried. The table holds exactly one node.
	L.SetGlobal("Tree", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.trees = append(coll.trees, rawTree{name: name, table: tbl})
			return 0
		}))
		return 1
	}))
}

func registerKitHelpers(L *lua.LState) {
	// Attack { name = "...", bonus = 4, damage = "1d6", ... } — tags the
	// table so compileCreature can tell attacks from spells.
	L.SetGlobal("Attack", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("__kind", lua.LString("attack"))
		L.Push(tbl)
		return 1
	}))

	// Spell { id = "...", level = 1, ... }
	L.SetGlobal("Spell", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("__kind", lua.LString("spell"))
		L.Push(tbl)
		return 1
	}))
}

func registerTreeHelpers(L *lua.LState) {
	// Select "label" { child1, child2, ... } — curried.
	L.SetGlobal("Select", L.NewFunction(func(L *lua.LState) int {
		label := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString("__node", lua.LString("selector"))
			tbl.RawSetString("__label", lua.LString(label))
			L.Push(tbl)
			return 1
		}))
		return 1
	}))

	// Seq "label" { child1, child2, ... } — curried.
	L.SetGlobal("Seq", L.NewFunction(func(L *lua.LState) int {
		label := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString("__node", lua.LString("sequence"))
			tbl.RawSetString("__label", lua.LString(label))
			L.Push(tbl)
			return 1
		}))
		return 1
	}))

	// Cond("hp_below", 0.3) — predicate by name plus optional numeric
	// argument.
	L.SetGlobal("Cond", L.NewFunction(func(L *lua.LState) int {
		test := L.CheckString(1)
		tbl := L.NewTable()
		tbl.RawSetString("__node", lua.LString("cond"))
		tbl.RawSetString("test", lua.LString(test))
		if L.GetTop() >= 2 {
			tbl.RawSetString("arg", L.CheckNumber(2))
		}
		L.Push(tbl)
		return 1
	}))

	// Do "label" { "attack", "move", priority = 8 } — curried terminal
	// leaf: the array part lists allowed action types.
	L.SetGlobal("Do", L.NewFunction(func(L *lua.LState) int {
		label := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			tbl.RawSetString("__node", lua.LString("action"))
			tbl.RawSetString("__label", lua.LString(label))
			L.Push(tbl)
			return 1
		}))
		return 1
	}))
}
