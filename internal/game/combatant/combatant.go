// Package combatant defines the unified combatant record and the arena that
// owns every participant's mutable state for the lifetime of one encounter.
package combatant

// Kind distinguishes hero combatants from enemy combatants.
type Kind int

const (
	KindHero Kind = iota
	KindEnemy
)

// Team identifies which side a combatant fights for.
type Team int

const (
	TeamHeroes Team = iota
	TeamEnemies
)

// Opponent returns the opposing team.
func (t Team) Opponent() Team {
	if t == TeamHeroes {
		return TeamEnemies
	}
	return TeamHeroes
}

// Role is the combat role used by targeting priorities and threat rules.
type Role int

const (
	RoleDPS Role = iota
	RoleTank
	RoleHealer
)

// String returns the human-readable role name.
func (r Role) String() string {
	switch r {
	case RoleTank:
		return "tank"
	case RoleHealer:
		return "healer"
	default:
		return "dps"
	}
}

// ParseRole maps a role string to a Role. Unknown strings degrade to RoleDPS.
func ParseRole(s string) Role {
	switch s {
	case "tank":
		return RoleTank
	case "healer":
		return RoleHealer
	default:
		return RoleDPS
	}
}

// Rank grades enemy combatants. Heroes are always RankBasic.
type Rank int

const (
	RankBasic Rank = iota
	RankElite
	RankBoss
)

// ParseRank maps a rank string to a Rank. Unknown strings degrade to RankBasic.
func ParseRank(s string) Rank {
	switch s {
	case "elite":
		return RankElite
	case "boss":
		return RankBoss
	default:
		return RankBasic
	}
}

// Strategy selects an enemy's targeting behavior.
type Strategy int

const (
	StrategyAggressive Strategy = iota
	StrategyTactical
	StrategyDefensive
	StrategyBoss
)

// String returns the strategy's configuration name.
func (s Strategy) String() string {
	switch s {
	case StrategyTactical:
		return "tactical"
	case StrategyDefensive:
		return "defensive"
	case StrategyBoss:
		return "boss"
	default:
		return "aggressive"
	}
}

// ParseStrategy maps a strategy string to a Strategy. Unknown strings degrade
// to StrategyAggressive.
func ParseStrategy(s string) Strategy {
	switch s {
	case "tactical":
		return StrategyTactical
	case "defensive":
		return StrategyDefensive
	case "boss":
		return StrategyBoss
	default:
		return StrategyAggressive
	}
}

// Stats holds a combatant's numeric attributes. Health and Resource are the
// only fields mutated during combat; the rest are effective base values that
// status-effect modifiers scale at resolution time.
type Stats struct {
	Health    int
	MaxHealth int
	Attack    int
	Defense   int
	// CritChance is the combatant's crit stat in percentage points; the
	// resolver divides it by 100 before adding it to the base crit chance.
	CritChance float64
	// Speed is the seconds between this combatant's actions.
	Speed float64
	// PhysicalDamagePercent scales outgoing physical damage.
	PhysicalDamagePercent float64
	Resource              int
	MaxResource           int
	ResourceType          string
}

// Combatant is one participant in an encounter, hero or enemy, unified behind
// a single tagged record.
//
// Ownership: the active encounter's Arena exclusively owns the mutable runtime
// fields (Stats.Health, Stats.Resource, CooldownRemaining, TargetLock) for the
// session's lifetime. Components receive handles into the arena, never copies,
// so every mutation is visible to all components within the same tick.
type Combatant struct {
	ID   string
	Name string
	Kind Kind
	Team Team
	Role Role

	Stats Stats

	// CooldownRemaining is the seconds until this combatant may act again.
	CooldownRemaining float64
	// TargetLock is the bound target's combatant id; empty means unbound.
	TargetLock string

	// Class and Spec identify a hero's ability kit. Hero only.
	Class string
	Spec  string
	Level int

	// TemplateID, Rank, and Strategy come from the bestiary. Enemy only.
	TemplateID string
	Rank       Rank
	Strategy   Strategy

	// RewardXP, RewardCurrency, and LootChance are copied from the enemy
	// template at spawn time and consumed by reward computation.
	RewardXP       int
	RewardCurrency int
	LootChance     float64
}

// Alive reports whether the combatant can still act.
func (c *Combatant) Alive() bool { return c.Stats.Health > 0 }

// IsHero reports whether this combatant is a hero.
func (c *Combatant) IsHero() bool { return c.Kind == KindHero }

// KitKey returns the ability-catalog owner key for this combatant:
// "class/spec" for heroes, the template id for enemies.
func (c *Combatant) KitKey() string {
	if c.Kind == KindHero {
		return c.Class + "/" + c.Spec
	}
	return c.TemplateID
}

// ApplyDamage reduces current health by amount, flooring at zero.
//
// Precondition: amount must be >= 0.
// Postcondition: Stats.Health >= 0.
func (c *Combatant) ApplyDamage(amount int) {
	c.Stats.Health -= amount
	if c.Stats.Health < 0 {
		c.Stats.Health = 0
	}
}

// ApplyHealing raises current health by amount, capped at MaxHealth.
//
// Precondition: amount must be >= 0.
// Postcondition: Stats.Health <= Stats.MaxHealth.
func (c *Combatant) ApplyHealing(amount int) {
	c.Stats.Health += amount
	if c.Stats.Health > c.Stats.MaxHealth {
		c.Stats.Health = c.Stats.MaxHealth
	}
}

// SpendResource deducts an ability's resource cost, flooring at zero.
// Insufficient resource degrades rather than blocking the action.
func (c *Combatant) SpendResource(cost int) {
	c.Stats.Resource -= cost
	if c.Stats.Resource < 0 {
		c.Stats.Resource = 0
	}
}

// HealthPercent returns current health as a fraction of maximum.
//
// Postcondition: Returns a value in [0, 1] for any MaxHealth >= Health;
// returns 0 when MaxHealth is 0.
func (c *Combatant) HealthPercent() float64 {
	if c.Stats.MaxHealth <= 0 {
		return 0
	}
	return float64(c.Stats.Health) / float64(c.Stats.MaxHealth)
}

// HealthDescription returns a visible health state string for presentation.
//
// Postcondition: Returns a non-empty string.
func (c *Combatant) HealthDescription() string {
	if c.Stats.Health <= 0 {
		return "dead"
	}
	pct := c.HealthPercent()
	switch {
	case pct >= 1.0:
		return "unharmed"
	case pct >= 0.85:
		return "barely scratched"
	case pct >= 0.60:
		return "lightly wounded"
	case pct >= 0.40:
		return "moderately wounded"
	case pct >= 0.20:
		return "heavily wounded"
	default:
		return "critically wounded"
	}
}
