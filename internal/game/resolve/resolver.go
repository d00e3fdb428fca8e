// Package resolve implements the numeric damage and healing engine.
package resolve

import (
	"math"
	"time"

	"github.com/calder-games/skirmish/internal/game/combatant"
	"github.com/calder-games/skirmish/internal/game/event"
)

// Source is the subset of dice.Source used by the resolver.
// Using a local interface avoids a circular import.
type Source interface {
	Float64() float64
}

// Modifiers is the subset of the status-effect engine the resolver consults:
// live stat modifiers and shield absorption.
type Modifiers interface {
	// StatModifier returns the summed modifier fraction for a stat.
	StatModifier(combatantID, stat string) float64
	// Absorb consumes up to amount from the combatant's shield and returns
	// the portion absorbed.
	Absorb(combatantID string, amount int) int
}

// Stat names understood by Modifiers implementations.
const (
	StatAttack  = "attack"
	StatDefense = "defense"
)

// Config holds the resolver's tuning values.
type Config struct {
	// MissChance is the probability any attack misses.
	MissChance float64
	// BaseCritChance is added to the attacker's crit stat / 100.
	BaseCritChance float64
	// CritMultiplier scales damage on a critical hit.
	CritMultiplier float64
	// Variance is the symmetric random damage variance fraction.
	Variance float64
}

// Result holds the outcome of one damage calculation.
//
// Invariant: Miss implies Damage == 0; otherwise Damage >= 1.
type Result struct {
	Damage int
	Crit   bool
	Miss   bool
}

// Resolver computes and applies damage and healing against the live
// combatant records owned by the encounter arena.
type Resolver struct {
	cfg    Config
	src    Source
	mods   Modifiers
	sink   event.Sink
	ledger *Ledger
}

// NewResolver constructs a Resolver.
//
// Precondition: src, mods, and sink must not be nil.
func NewResolver(cfg Config, src Source, mods Modifiers, sink event.Sink) *Resolver {
	if src == nil {
		panic("resolve.NewResolver: src must not be nil")
	}
	if mods == nil {
		panic("resolve.NewResolver: mods must not be nil")
	}
	if sink == nil {
		panic("resolve.NewResolver: sink must not be nil")
	}
	return &Resolver{cfg: cfg, src: src, mods: mods, sink: sink, ledger: NewLedger()}
}

// Ledger returns the per-encounter damage statistics ledger.
func (r *Resolver) Ledger() *Ledger { return r.ledger }

// ResetLedger clears statistics at the start of a new encounter.
func (r *Resolver) ResetLedger() { r.ledger = NewLedger() }

// Calculate computes a damage roll from attacker against target without
// applying it, scaled by multiplier (an ability's damage multiplier).
//
// Resolution order: stat modifiers, miss roll, base = max(1, atk - def),
// physical damage scaling, crit roll, symmetric variance, shield absorption,
// floor, then clamp to 1 on any non-miss.
//
// Precondition: attacker and target must be the live arena records.
// Postcondition: Result satisfies its invariant.
func (r *Resolver) Calculate(attacker, target *combatant.Combatant, multiplier float64) Result {
	if multiplier <= 0 {
		multiplier = 1.0
	}

	effAttack := float64(attacker.Stats.Attack) * (1 + r.mods.StatModifier(attacker.ID, StatAttack))
	effDefense := float64(target.Stats.Defense) * (1 + r.mods.StatModifier(target.ID, StatDefense))

	if r.src.Float64() < r.cfg.MissChance {
		return Result{Miss: true}
	}

	base := effAttack - effDefense
	if base < 1 {
		base = 1
	}
	base *= 1 + attacker.Stats.PhysicalDamagePercent/100
	base *= multiplier

	crit := r.src.Float64() < r.cfg.BaseCritChance+attacker.Stats.CritChance/100
	if crit {
		base *= r.cfg.CritMultiplier
	}

	// Symmetric variance in [-v, +v].
	base *= 1 + (r.src.Float64()*2-1)*r.cfg.Variance

	damage := int(math.Floor(base))
	damage -= r.mods.Absorb(target.ID, damage)
	if damage <= 0 {
		damage = 1
	}
	return Result{Damage: damage, Crit: crit}
}

// CalculateHealing computes a healing roll from healer scaled by multiplier
// (an ability's heal multiplier). Healing never misses; it applies the
// healer's attack modifiers and the symmetric variance.
//
// Postcondition: Returns >= 1.
func (r *Resolver) CalculateHealing(healer *combatant.Combatant, multiplier float64) int {
	if multiplier <= 0 {
		multiplier = 1.0
	}
	effAttack := float64(healer.Stats.Attack) * (1 + r.mods.StatModifier(healer.ID, StatAttack))
	amount := effAttack * multiplier
	amount *= 1 + (r.src.Float64()*2-1)*r.cfg.Variance
	healed := int(math.Floor(amount))
	if healed < 1 {
		healed = 1
	}
	return healed
}

// DealDamage applies amount to target's health, clamped at zero, records the
// statistics, and emits a damage event. attackerID may be empty for periodic
// effect damage.
//
// Postcondition: target.Stats.Health is in [0, MaxHealth].
func (r *Resolver) DealDamage(attackerID string, target *combatant.Combatant, amount int, crit bool) {
	wasAlive := target.Alive()
	target.ApplyDamage(amount)

	r.ledger.RecordDamage(attackerID, target.ID, amount)
	if wasAlive && !target.Alive() && attackerID != "" {
		r.ledger.RecordKill(attackerID)
	}

	r.sink.Publish(event.Event{
		Kind:   event.KindDamageApplied,
		At:     time.Now(),
		Actor:  attackerID,
		Target: target.ID,
		Amount: amount,
		Crit:   crit,
	})
}

// DealHealing applies amount to target's health, capped at MaxHealth,
// records the statistics, and emits a healing event.
//
// Postcondition: target.Stats.Health is in [0, MaxHealth].
func (r *Resolver) DealHealing(healerID string, target *combatant.Combatant, amount int) {
	before := target.Stats.Health
	target.ApplyHealing(amount)
	applied := target.Stats.Health - before

	r.ledger.RecordHealing(healerID, applied)

	r.sink.Publish(event.Event{
		Kind:   event.KindHealingApplied,
		At:     time.Now(),
		Actor:  healerID,
		Target: target.ID,
		Amount: applied,
	})
}
