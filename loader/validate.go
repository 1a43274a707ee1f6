package loader

import (
	"fmt"
	"strings"

	"github.com/nathoo/tacticore/engine/rules"
	"github.com/nathoo/tacticore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Factory tree names a creature may reference without a Tree{} block.
var factoryTrees = map[string]bool{
	"aggressive-melee": true,
	"ranged-attacker":  true,
	"spellcaster":      true,
	"defensive":        true,
}

// validate checks the compiled scenario for referential integrity and
// consistency.
func validate(sc *Scenario) error {
	ve := &ValidationError{}

	if len(sc.Combatants) < 2 {
		ve.Errors = append(ve.Errors, "a scenario needs at least two combatants")
	}

	seen := map[string]bool{}
	teams := map[string]bool{}
	occupied := map[types.Position]string{}

	for _, cb := range sc.Combatants {
		c := cb.Creature
		if seen[c.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate creature id %q", c.ID))
		}
		seen[c.ID] = true

		if c.Team == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("creature %q has no team", c.ID))
		} else {
			teams[c.Team] = true
		}
		if c.HP <= 0 || c.MaxHP <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("creature %q needs positive hp", c.ID))
		}
		if c.Speed <= 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf("creature %q needs positive speed", c.ID))
		}

		validatePosition(sc, cb.Position, c.ID, occupied, ve)
		validateKit(sc, c, cb.Pool, ve)

		if c.Tree != "" && !factoryTrees[c.Tree] {
			if _, ok := sc.Trees[c.Tree]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"creature %q references undefined tree %q", c.ID, c.Tree))
			}
		}
	}

	if len(teams) < 2 && len(sc.Combatants) >= 2 {
		ve.Errors = append(ve.Errors, "a scenario needs at least two teams")
	}

	for _, h := range sc.Map.Hazards {
		if !inBounds(sc.Map, h.Pos) {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"hazard %q at (%d,%d) is out of bounds", h.Kind, h.Pos.X, h.Pos.Y))
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validatePosition(sc *Scenario, pos types.Position, id string, occupied map[types.Position]string, ve *ValidationError) {
	if !inBounds(sc.Map, pos) {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"creature %q starts out of bounds at (%d,%d)", id, pos.X, pos.Y))
		return
	}
	if sc.Map.Obstacles[pos] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"creature %q starts inside an obstacle at (%d,%d)", id, pos.X, pos.Y))
	}
	if other, ok := occupied[pos]; ok {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"creatures %q and %q share cell (%d,%d)", other, id, pos.X, pos.Y))
	}
	occupied[pos] = id
}

func validateKit(sc *Scenario, c types.Creature, pool types.ResourcePool, ve *ValidationError) {
	for _, a := range c.Attacks {
		if _, err := rules.ParseDice(a.DamageDice); err != nil {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"creature %q attack %q: bad damage dice %q", c.ID, a.Name, a.DamageDice))
		}
		if a.UsesID != "" && pool.AbilityUses[a.UsesID] == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"creature %q attack %q uses %q but has no charges", c.ID, a.Name, a.UsesID))
		}
	}
	for _, s := range c.Spells {
		if s.ID == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("creature %q has a spell with no id", c.ID))
			continue
		}
		if s.DamageDice != "" {
			if _, err := rules.ParseDice(s.DamageDice); err != nil {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"creature %q spell %q: bad damage dice %q", c.ID, s.ID, s.DamageDice))
			}
		}
		if s.HealingDice != "" {
			if _, err := rules.ParseDice(s.HealingDice); err != nil {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"creature %q spell %q: bad healing dice %q", c.ID, s.ID, s.HealingDice))
			}
		}
		if !s.AttackRoll && s.SaveDC == 0 && s.HealingDice == "" && s.HealingMod == 0 {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"creature %q spell %q needs an attack bonus, a save DC, or healing", c.ID, s.ID))
		}
		if s.SaveDC > 0 && s.SaveAbility == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"creature %q spell %q has a save DC but no save ability", c.ID, s.ID))
		}
		if s.Level > 0 && len(pool.SpellSlots) == 0 {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"creature %q knows level-%d spell %q but has no slots", c.ID, s.Level, s.ID))
		}
	}
}

func inBounds(m types.GridMap, p types.Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < m.Width && p.Y < m.Height
}
