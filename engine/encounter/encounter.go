// Package encounter owns the mutable combat state the engine itself
// never touches: hit points, positions, conditions, concentration, and
// the resource ledger. It builds immutable TacticalContext snapshots for
// each decision and applies committed decisions afterward — the engine
// proposes, the ledger disposes.
package encounter

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/nathoo/tacticore/engine/rng"
	"github.com/nathoo/tacticore/engine/rules"
	"github.com/nathoo/tacticore/types"
)

// Encounter is the full mutable state of one fight.
type Encounter struct {
	ID         string
	Round      int
	Difficulty types.Difficulty
	Map        types.GridMap
	Seed       int64

	creatures []*types.Creature
	positions map[string]types.Position
	condition map[string][]types.Condition
	focus     map[string]string // creature id → concentrated spell id
	pools     map[string]types.ResourcePool

	recentDamage map[string]int // damage taken last round
	roundDamage  map[string]int // damage taken this round
	dodging      map[string]bool
	helped       map[string]bool // target id → next attack has advantage

	dice *rng.Stream // resolution rolls, separate from decision streams
}

// New creates an empty encounter.
func New(id string, m types.GridMap, seed int64, difficulty types.Difficulty) *Encounter {
	r := rng.New(seed)
	return &Encounter{
		ID:           id,
		Round:        1,
		Difficulty:   difficulty,
		Map:          m,
		Seed:         seed,
		positions:    map[string]types.Position{},
		condition:    map[string][]types.Condition{},
		focus:        map[string]string{},
		pools:        map[string]types.ResourcePool{},
		recentDamage: map[string]int{},
		roundDamage:  map[string]int{},
		dodging:      map[string]bool{},
		helped:       map[string]bool{},
		dice:         r.Stream("resolve"),
	}
}

// Add places a creature on the map with its starting resource pool.
func (e *Encounter) Add(c types.Creature, pos types.Position, pool types.ResourcePool) {
	cc := c
	e.creatures = append(e.creatures, &cc)
	e.positions[c.ID] = pos
	e.pools[c.ID] = pool
}

// Creature returns the creature with the given id, or nil.
func (e *Encounter) Creature(id string) *types.Creature {
	for _, c := range e.creatures {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Creatures returns all combatants in add order.
func (e *Encounter) Creatures() []*types.Creature {
	return e.creatures
}

// Position returns a creature's current cell.
func (e *Encounter) Position(id string) (types.Position, bool) {
	p, ok := e.positions[id]
	return p, ok
}

// Pool returns a creature's remaining resources.
func (e *Encounter) Pool(id string) types.ResourcePool {
	return e.pools[id]
}

// InitiativeOrder returns living creature ids by dexterity modifier
// descending, ties broken by id so the order is fully deterministic.
func (e *Encounter) InitiativeOrder() []string {
	var ids []string
	for _, c := range e.creatures {
		if c.HP > 0 {
			ids = append(ids, c.ID)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool {
		a, b := e.Creature(ids[i]), e.Creature(ids[j])
		if dexMod(a) != dexMod(b) {
			return dexMod(a) > dexMod(b)
		}
		return a.ID < b.ID
	})
	return ids
}

// Winner returns the last team standing, if the fight is over.
func (e *Encounter) Winner() (string, bool) {
	team := ""
	for _, c := range e.creatures {
		if c.HP <= 0 {
			continue
		}
		if team == "" {
			team = c.Team
		} else if c.Team != team {
			return "", false
		}
	}
	return team, team != ""
}

// Snapshot builds the immutable context for one creature's decision.
// Everything is copied; the decision cannot reach back into the
// encounter.
func (e *Encounter) Snapshot(actorID string) (*types.TacticalContext, error) {
	actor := e.Creature(actorID)
	if actor == nil {
		return nil, fmt.Errorf("snapshot: unknown creature %q", actorID)
	}

	ctx := &types.TacticalContext{
		EncounterID:   e.ID,
		Round:         e.Round,
		Actor:         *actor,
		Positions:     map[string]types.Position{},
		Conditions:    map[string][]types.Condition{},
		Concentration: map[string]string{},
		RecentDamage:  map[string]int{},
		Resources:     map[string]types.ResourcePool{},
		AdvantageOn:   map[string]bool{},
		Map:           e.Map,
		Difficulty:    e.Difficulty,
		Seed:          e.decisionSeed(actorID),
	}

	for _, c := range e.creatures {
		if c.ID == actorID {
			continue
		}
		if c.Team == actor.Team {
			ctx.Allies = append(ctx.Allies, *c)
		} else {
			ctx.Enemies = append(ctx.Enemies, *c)
		}
	}
	for id, p := range e.positions {
		ctx.Positions[id] = p
	}
	for id, conds := range e.condition {
		ctx.Conditions[id] = append([]types.Condition(nil), conds...)
	}
	for id, sp := range e.focus {
		ctx.Concentration[id] = sp
	}
	for id, dmg := range e.recentDamage {
		ctx.RecentDamage[id] = dmg
	}
	for id, pool := range e.pools {
		ctx.Resources[id] = copyPool(pool)
	}
	for id, adv := range e.helped {
		if adv {
			ctx.AdvantageOn[id] = true
		}
	}
	return ctx, nil
}

// decisionSeed derives a per-decision seed from the encounter seed,
// round, and actor, so replays of the same encounter reproduce every
// decision exactly.
func (e *Encounter) decisionSeed(actorID string) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s/%d/%s", e.ID, e.Round, actorID)
	return int64(h.Sum64()) ^ e.Seed
}

// NextRound rotates the damage history and clears turn-scoped flags.
func (e *Encounter) NextRound() {
	e.Round++
	e.recentDamage = e.roundDamage
	e.roundDamage = map[string]int{}
	e.dodging = map[string]bool{}
	e.helped = map[string]bool{}
}

func copyPool(p types.ResourcePool) types.ResourcePool {
	out := types.ResourcePool{}
	if p.SpellSlots != nil {
		out.SpellSlots = map[int]int{}
		for k, v := range p.SpellSlots {
			out.SpellSlots[k] = v
		}
	}
	if p.AbilityUses != nil {
		out.AbilityUses = map[string]int{}
		for k, v := range p.AbilityUses {
			out.AbilityUses[k] = v
		}
	}
	if p.Consumables != nil {
		out.Consumables = map[string]int{}
		for k, v := range p.Consumables {
			out.Consumables[k] = v
		}
	}
	return out
}

func (e *Encounter) hasCondition(id string, cond types.Condition) bool {
	for _, c := range e.condition[id] {
		if c == cond {
			return true
		}
	}
	return false
}

func (e *Encounter) addCondition(id string, cond types.Condition) {
	if !e.hasCondition(id, cond) {
		e.condition[id] = append(e.condition[id], cond)
	}
}

func dexMod(c *types.Creature) int {
	return rules.AbilityMod(c.Abilities["dex"])
}
