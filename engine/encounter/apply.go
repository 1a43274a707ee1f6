package encounter

import (
	"fmt"

	"github.com/nathoo/tacticore/engine/rules"
	"github.com/nathoo/tacticore/types"
)

// Apply resolves a committed decision against the live state: debit the
// ledger, move the actor, roll the dice, apply damage and conditions.
// It returns narration lines for the host to print. All rolls come from
// the encounter's resolution stream, so a replay reproduces every swing.
func (e *Encounter) Apply(d *types.TacticalDecision) []string {
	actor := e.Creature(d.ActorID)
	if actor == nil || actor.HP <= 0 {
		return []string{fmt.Sprintf("%s can no longer act.", d.ActorID)}
	}

	var out []string

	e.debit(d.ActorID, d.Cost)

	if d.Destination != nil {
		e.positions[d.ActorID] = *d.Destination
		out = append(out, fmt.Sprintf("%s moves to (%d,%d).", actor.Name, d.Destination.X, d.Destination.Y))
	}

	switch d.Action.Type {
	case types.ActionAttack:
		out = append(out, e.resolveAttack(actor, d)...)
	case types.ActionCast:
		out = append(out, e.resolveSpell(actor, d)...)
	case types.ActionDodge:
		e.dodging[actor.ID] = true
		out = append(out, fmt.Sprintf("%s takes a defensive stance.", actor.Name))
	case types.ActionHelp:
		if d.TargetID != "" {
			e.helped[d.TargetID] = true
			out = append(out, fmt.Sprintf("%s sets up an opening against %s.", actor.Name, e.displayName(d.TargetID)))
		}
	case types.ActionAbility:
		out = append(out, e.resolveConsumable(actor, d)...)
	case types.ActionDisengage:
		out = append(out, fmt.Sprintf("%s disengages.", actor.Name))
	case types.ActionDash:
		out = append(out, fmt.Sprintf("%s dashes.", actor.Name))
	case types.ActionMove:
		// Narrated by the destination line above.
	}

	return out
}

// resolveAttack rolls every swing of an attack routine.
func (e *Encounter) resolveAttack(actor *types.Creature, d *types.TacticalDecision) []string {
	target := e.Creature(d.TargetID)
	if target == nil || target.HP <= 0 {
		return []string{fmt.Sprintf("%s attacks nothing.", actor.Name)}
	}
	a := d.Action.Attack
	if a == nil {
		return nil
	}

	count := a.Count
	if count < 1 {
		count = 1
	}

	var out []string
	for i := 0; i < count && target.HP > 0; i++ {
		roll := e.d20(e.attackAdvantage(actor, target))
		total := roll + a.Bonus
		if roll == 1 || (roll != 20 && total < target.AC) {
			out = append(out, fmt.Sprintf("%s misses %s with %s (%d+%d vs AC %d).",
				actor.Name, target.Name, a.Name, roll, a.Bonus, target.AC))
			continue
		}

		dmg := rules.Roll(a.DamageDice, a.DamageMod, e.dice.Roll)
		if roll == 20 {
			dmg += rules.Roll(a.DamageDice, 0, e.dice.Roll)
		}
		dmg = scaleDamage(dmg, target.Resistances[a.DamageType])
		out = append(out, fmt.Sprintf("%s hits %s with %s for %d damage.",
			actor.Name, target.Name, a.Name, dmg))
		out = append(out, e.damage(target, dmg)...)
	}
	delete(e.helped, target.ID)
	return out
}

// resolveSpell handles attack-roll spells, save spells, and healing.
func (e *Encounter) resolveSpell(actor *types.Creature, d *types.TacticalDecision) []string {
	sp := d.Action.Spell
	if sp == nil {
		return nil
	}

	var out []string

	if sp.Concentration {
		if prev := e.focus[actor.ID]; prev != "" {
			out = append(out, fmt.Sprintf("%s stops concentrating on %s.", actor.Name, prev))
		}
		e.focus[actor.ID] = sp.ID
	}

	// Healing spells.
	if sp.HealingDice != "" || sp.HealingMod > 0 {
		target := e.Creature(d.TargetID)
		if target == nil {
			return out
		}
		heal := rules.Roll(sp.HealingDice, sp.HealingMod, e.dice.Roll)
		target.HP += heal
		if target.HP > target.MaxHP {
			target.HP = target.MaxHP
		}
		out = append(out, fmt.Sprintf("%s casts %s: %s regains %d HP (%d/%d).",
			actor.Name, sp.Name, target.Name, heal, target.HP, target.MaxHP))
		return out
	}

	// Collect targets: single, or everything in the area.
	targets := e.spellTargets(actor, d, sp)
	for _, target := range targets {
		if sp.AttackRoll {
			roll := e.d20(e.attackAdvantage(actor, target))
			total := roll + sp.AttackBonus
			if roll == 1 || (roll != 20 && total < target.AC) {
				out = append(out, fmt.Sprintf("%s's %s misses %s.", actor.Name, sp.Name, target.Name))
				continue
			}
			dmg := rules.Roll(sp.DamageDice, sp.DamageMod, e.dice.Roll)
			if roll == 20 {
				dmg += rules.Roll(sp.DamageDice, 0, e.dice.Roll)
			}
			dmg = scaleDamage(dmg, target.Resistances[sp.DamageType])
			out = append(out, fmt.Sprintf("%s's %s hits %s for %d damage.", actor.Name, sp.Name, target.Name, dmg))
			out = append(out, e.damage(target, dmg)...)
			continue
		}

		// Save-based effect.
		save := e.dice.Roll(20) + target.SaveBonuses[sp.SaveAbility]
		dmg := rules.Roll(sp.DamageDice, sp.DamageMod, e.dice.Roll)
		dmg = scaleDamage(dmg, target.Resistances[sp.DamageType])
		if save >= sp.SaveDC {
			if sp.HalfOnSave && dmg > 0 {
				half := dmg / 2
				out = append(out, fmt.Sprintf("%s saves against %s's %s (%d vs DC %d), taking %d damage.",
					target.Name, actor.Name, sp.Name, save, sp.SaveDC, half))
				out = append(out, e.damage(target, half)...)
			} else {
				out = append(out, fmt.Sprintf("%s saves against %s's %s (%d vs DC %d).",
					target.Name, actor.Name, sp.Name, save, sp.SaveDC))
			}
			continue
		}
		if dmg > 0 {
			out = append(out, fmt.Sprintf("%s fails the save against %s's %s, taking %d damage.",
				target.Name, actor.Name, sp.Name, dmg))
			out = append(out, e.damage(target, dmg)...)
		}
		if sp.Control && sp.Imposes != "" {
			e.addCondition(target.ID, sp.Imposes)
			out = append(out, fmt.Sprintf("%s is %s.", target.Name, sp.Imposes))
		}
	}
	return out
}

// spellTargets resolves the decision target plus any creatures caught in
// an area template centered on it.
func (e *Encounter) spellTargets(actor *types.Creature, d *types.TacticalDecision, sp *types.Spell) []*types.Creature {
	primary := e.Creature(d.TargetID)
	if primary == nil || primary.HP <= 0 {
		return nil
	}
	if sp.AoERadius <= 0 {
		return []*types.Creature{primary}
	}

	center := e.positions[primary.ID]
	var out []*types.Creature
	for _, c := range e.creatures {
		if c.HP <= 0 || c.ID == actor.ID {
			continue
		}
		p, ok := e.positions[c.ID]
		if !ok {
			continue
		}
		if chebyshev(p, center) <= sp.AoERadius {
			out = append(out, c)
		}
	}
	return out
}

// resolveConsumable handles the healing potion.
func (e *Encounter) resolveConsumable(actor *types.Creature, d *types.TacticalDecision) []string {
	heal := rules.Roll("2d4", 2, e.dice.Roll)
	actor.HP += heal
	if actor.HP > actor.MaxHP {
		actor.HP = actor.MaxHP
	}
	return []string{fmt.Sprintf("%s drinks a potion and regains %d HP (%d/%d).",
		actor.Name, heal, actor.HP, actor.MaxHP)}
}

// damage applies damage, tracks the round history, drops creatures at 0,
// and forces concentration checks.
func (e *Encounter) damage(target *types.Creature, dmg int) []string {
	if dmg <= 0 {
		return nil
	}
	var out []string

	target.HP -= dmg
	e.roundDamage[target.ID] += dmg
	if target.HP <= 0 {
		target.HP = 0
		e.addCondition(target.ID, types.CondUnconscious)
		if e.focus[target.ID] != "" {
			delete(e.focus, target.ID)
		}
		out = append(out, fmt.Sprintf("%s goes down!", target.Name))
		return out
	}

	// Concentration check: DC 10 or half the damage, whichever is higher.
	if sp := e.focus[target.ID]; sp != "" {
		dc := 10
		if dmg/2 > dc {
			dc = dmg / 2
		}
		roll := e.dice.Roll(20) + target.SaveBonuses["con"]
		if roll < dc {
			delete(e.focus, target.ID)
			out = append(out, fmt.Sprintf("%s loses concentration on %s (%d vs DC %d).",
				target.Name, sp, roll, dc))
		}
	}
	return out
}

// debit spends a proposed resource cost from the ledger.
func (e *Encounter) debit(id string, cost types.Resource) {
	pool := e.pools[id]
	switch cost.Kind {
	case types.ResourceSpellSlot:
		if pool.SpellSlots[cost.Level] > 0 {
			pool.SpellSlots[cost.Level]--
		}
	case types.ResourceAbility:
		if pool.AbilityUses[cost.ID] > 0 {
			pool.AbilityUses[cost.ID]--
		}
	case types.ResourceConsumable:
		if pool.Consumables[cost.ID] > 0 {
			pool.Consumables[cost.ID]--
		}
	}
	e.pools[id] = pool
}

// d20 rolls with advantage or disadvantage.
func (e *Encounter) d20(adv types.AdvantageState) int {
	a := e.dice.Roll(20)
	switch adv {
	case types.RollNormal:
		return a
	default:
		b := e.dice.Roll(20)
		if adv == types.RollAdvantage {
			if b > a {
				return b
			}
			return a
		}
		if b < a {
			return b
		}
		return a
	}
}

// attackAdvantage folds Help openings, dodging, and conditions into the
// roll state for a resolved attack.
func (e *Encounter) attackAdvantage(actor, target *types.Creature) types.AdvantageState {
	adv := e.helped[target.ID]
	dis := e.dodging[target.ID]

	for _, c := range e.condition[target.ID] {
		switch c {
		case types.CondParalyzed, types.CondUnconscious, types.CondStunned, types.CondProne:
			adv = true
		}
	}
	for _, c := range e.condition[actor.ID] {
		switch c {
		case types.CondProne, types.CondPoisoned, types.CondFrightened, types.CondRestrained:
			dis = true
		}
	}

	switch {
	case adv && !dis:
		return types.RollAdvantage
	case dis && !adv:
		return types.RollDisadvantage
	default:
		return types.RollNormal
	}
}

func (e *Encounter) displayName(id string) string {
	if c := e.Creature(id); c != nil {
		return c.Name
	}
	return id
}

func scaleDamage(dmg int, res types.ResistanceState) int {
	switch res {
	case types.ResResistant:
		return dmg / 2
	case types.ResVulnerable:
		return dmg * 2
	case types.ResImmune:
		return 0
	default:
		return dmg
	}
}

func chebyshev(a, b types.Position) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
