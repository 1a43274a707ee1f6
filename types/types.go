// Package types defines the shared data structures for the TactiCore engine.
// This package contains only type definitions — no logic, no methods beyond
// trivial accessors.
package types

// Position is a square-grid cell. One cell is 5 feet.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Condition is a status effect currently affecting a creature.
type Condition string

const (
	CondProne         Condition = "prone"
	CondIncapacitated Condition = "incapacitated"
	CondParalyzed     Condition = "paralyzed"
	CondStunned       Condition = "stunned"
	CondUnconscious   Condition = "unconscious"
	CondRestrained    Condition = "restrained"
	CondPoisoned      Condition = "poisoned"
	CondFrightened    Condition = "frightened"
	CondGrappled      Condition = "grappled"
)

// DamageType classifies damage for resistance lookups.
type DamageType string

const (
	DamageSlashing    DamageType = "slashing"
	DamagePiercing    DamageType = "piercing"
	DamageBludgeoning DamageType = "bludgeoning"
	DamageFire        DamageType = "fire"
	DamageCold        DamageType = "cold"
	DamageLightning   DamageType = "lightning"
	DamagePoison      DamageType = "poison"
	DamageNecrotic    DamageType = "necrotic"
	DamageRadiant     DamageType = "radiant"
	DamagePsychic     DamageType = "psychic"
	DamageForce       DamageType = "force"
)

// ResistanceState is how a target takes damage of a given type.
type ResistanceState int

const (
	ResNone ResistanceState = iota
	ResResistant
	ResVulnerable
	ResImmune
)

// AdvantageState modifies a d20 roll.
type AdvantageState int

const (
	RollNormal AdvantageState = iota
	RollAdvantage
	RollDisadvantage
)

// Attack is one weapon or natural attack mode.
type Attack struct {
	Name       string     `json:"name"`
	Bonus      int        `json:"bonus"`       // to-hit bonus
	DamageDice string     `json:"damage_dice"` // e.g. "1d8", "2d6"
	DamageMod  int        `json:"damage_mod"`
	DamageType DamageType `json:"damage_type"`
	Reach      int        `json:"reach"`      // melee reach in cells (0 for ranged)
	Range      int        `json:"range"`      // normal range in cells (0 for melee)
	LongRange  int        `json:"long_range"` // max range in cells
	Ranged     bool       `json:"ranged"`
	Count      int        `json:"count"`             // attacks per action (multiattack)
	UsesID     string     `json:"uses_id,omitempty"` // limited-use ability charge, if any
}

// Spell is a castable spell known to a creature.
type Spell struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Level         int        `json:"level"` // 0 = cantrip
	AttackRoll    bool       `json:"attack_roll"`
	AttackBonus   int        `json:"attack_bonus"`
	SaveDC        int        `json:"save_dc"`
	SaveAbility   string     `json:"save_ability"` // "dex", "wis", ...
	HalfOnSave    bool       `json:"half_on_save"`
	DamageDice    string     `json:"damage_dice"`
	DamageMod     int        `json:"damage_mod"`
	DamageType    DamageType `json:"damage_type"`
	HealingDice   string     `json:"healing_dice"`
	HealingMod    int        `json:"healing_mod"`
	Range         int        `json:"range"`      // cells
	AoERadius     int        `json:"aoe_radius"` // cells; 0 = single target
	Control       bool       `json:"control"` // imposes a condition on failed save
	Imposes       Condition  `json:"imposes,omitempty"`
	Concentration bool       `json:"concentration"`
}

// ResourceKind tags the Resource union.
type ResourceKind string

const (
	ResourceNone       ResourceKind = ""
	ResourceSpellSlot  ResourceKind = "spell_slot"
	ResourceAbility    ResourceKind = "ability"
	ResourceConsumable ResourceKind = "consumable"
)

// Resource is the cost a candidate would incur: a spell slot of a given
// level, a limited-use ability, or a consumable item. Zero value = free.
type Resource struct {
	Kind  ResourceKind `json:"kind,omitempty"`
	Level int          `json:"level,omitempty"` // spell slot tier
	ID    string       `json:"id,omitempty"`    // ability or item id
}

// ResourcePool tracks what a creature has left to spend.
type ResourcePool struct {
	SpellSlots  map[int]int    `json:"spell_slots,omitempty"` // level → remaining
	AbilityUses map[string]int `json:"ability_uses,omitempty"`
	Consumables map[string]int `json:"consumables,omitempty"`
}

// Creature is a combatant definition plus current vitals.
type Creature struct {
	ID          string                         `json:"id"`
	Name        string                         `json:"name"`
	Team        string                         `json:"team"`
	HP          int                            `json:"hp"`
	MaxHP       int                            `json:"max_hp"`
	AC          int                            `json:"ac"`
	Speed       int                            `json:"speed"` // cells per move
	Abilities   map[string]int                 `json:"abilities"`    // "str".."cha" scores
	SaveBonuses map[string]int                 `json:"save_bonuses"` // "str".."cha"
	Attacks     []Attack                       `json:"attacks"`
	Spells      []Spell                        `json:"spells"`
	Resistances map[DamageType]ResistanceState `json:"resistances,omitempty"`
	Tree        string                         `json:"tree,omitempty"` // bespoke behavior tree name
}

// Hazard is a dangerous map cell a shove could exploit.
type Hazard struct {
	Pos  Position `json:"pos"`
	Kind string   `json:"kind"` // "pit", "fire", ...
}

// GridMap is the static battle-map geometry.
type GridMap struct {
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Obstacles map[Position]bool `json:"-"`
	Hazards   []Hazard          `json:"hazards,omitempty"`
}

// Difficulty parameterizes scoring variance and tactic sophistication.
type Difficulty int

const (
	DifficultyEasy Difficulty = iota
	DifficultyNormal
	DifficultyHard
)

// TacticalContext is the immutable snapshot one decision is made against.
// It is never mutated during a decision; the host builds a fresh one per
// turn.
type TacticalContext struct {
	EncounterID   string
	Round         int
	Actor         Creature
	Allies        []Creature // excludes the actor
	Enemies       []Creature
	Positions     map[string]Position
	Conditions    map[string][]Condition
	Concentration map[string]string // creature id → spell id being concentrated on
	RecentDamage  map[string]int    // creature id → damage taken last round
	Resources     map[string]ResourcePool
	AdvantageOn   map[string]bool // target id → actor attacks with advantage (Help)
	Map           GridMap
	Difficulty    Difficulty
	Seed          int64
}

// ActionType is the coarse action class a behavior tree selects.
type ActionType string

const (
	ActionAttack    ActionType = "attack"
	ActionCast      ActionType = "cast"
	ActionMove      ActionType = "move"
	ActionDash      ActionType = "dash"
	ActionDisengage ActionType = "disengage"
	ActionDodge     ActionType = "dodge"
	ActionHelp      ActionType = "help"
	ActionAbility   ActionType = "ability"
)

// ActionCandidate is one concrete, resource-checked option for the turn.
type ActionCandidate struct {
	Type        ActionType `json:"type"`
	Attack      *Attack    `json:"attack,omitempty"`
	Spell       *Spell     `json:"spell,omitempty"`
	AbilityID   string     `json:"ability_id,omitempty"`
	TargetIDs   []string   `json:"target_ids,omitempty"` // possible targets
	Cost        Resource   `json:"cost,omitempty"`
	Priority    int        `json:"priority"` // from the behavior tree
	NeedsTarget bool       `json:"needs_target"`
	NeedsMove   bool       `json:"needs_move"`
}

// ScoreBreakdown itemizes a candidate's total score.
type ScoreBreakdown struct {
	Damage         float64 `json:"damage"`
	HitProbability float64 `json:"hit_probability"`
	TargetPriority float64 `json:"target_priority"`
	ResourceCost   float64 `json:"resource_cost"` // negative
	TacticalValue  float64 `json:"tactical_value"`
	Positioning    float64 `json:"positioning"`
}

// ScoredAction is a candidate with its score against its best target.
type ScoredAction struct {
	Candidate     ActionCandidate       `json:"candidate"`
	TargetID      string                `json:"target_id,omitempty"`
	Total         float64               `json:"total"`
	Breakdown     ScoreBreakdown        `json:"breakdown"`
	Opportunities []TacticalOpportunity `json:"opportunities,omitempty"`
}

// OpportunityKind tags the TacticalOpportunity union.
type OpportunityKind string

const (
	OppFlanking           OpportunityKind = "flanking"
	OppProneTarget        OpportunityKind = "prone_target"
	OppIncapacitated      OpportunityKind = "incapacitated_target"
	OppConcentrationBreak OpportunityKind = "concentration_break"
	OppMultiTargetAoE     OpportunityKind = "multi_target_aoe"
	OppForcedMovement     OpportunityKind = "forced_movement"
)

// TacticalOpportunity is a detected situational bonus. Computed fresh per
// candidate, never persisted.
type TacticalOpportunity struct {
	Kind     OpportunityKind `json:"kind"`
	TargetID string          `json:"target_id,omitempty"`
	Bonus    float64         `json:"bonus"`
	Affected []string        `json:"affected,omitempty"` // creatures in an AoE footprint
}

// DecisionReasoning records how a decision was reached, for debugging and
// replay verification.
type DecisionReasoning struct {
	TreePath       []string              `json:"tree_path"`
	TopCandidates  []ScoredAction        `json:"top_candidates"`
	Opportunities  []TacticalOpportunity `json:"opportunities,omitempty"`
	ResourcesSpent []Resource            `json:"resources_spent,omitempty"`
	BudgetExceeded bool                  `json:"budget_exceeded,omitempty"`
	Fallback       string                `json:"fallback,omitempty"` // why/how fallback fired
	Notes          []string              `json:"notes,omitempty"`
}

// TacticalDecision is the final output of one decideTurn invocation.
type TacticalDecision struct {
	ID          string            `json:"id"`
	EncounterID string            `json:"encounter_id"`
	Round       int               `json:"round"`
	ActorID     string            `json:"actor_id"`
	Action      ActionCandidate   `json:"action"`
	TargetID    string            `json:"target_id,omitempty"`
	Destination *Position         `json:"destination,omitempty"`
	Path        []Position        `json:"path,omitempty"`
	Cost        Resource          `json:"cost,omitempty"`
	Reasoning   DecisionReasoning `json:"reasoning"`
}
