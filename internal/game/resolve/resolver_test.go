package resolve

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/calder-games/skirmish/internal/game/combatant"
	"github.com/calder-games/skirmish/internal/game/event"
)

// seqSource replays a fixed sequence of rolls, then repeats 0.5.
type seqSource struct {
	vals []float64
	i    int
}

func (s *seqSource) Float64() float64 {
	if s.i < len(s.vals) {
		v := s.vals[s.i]
		s.i++
		return v
	}
	return 0.5
}

// noMods reports no stat modifiers and no shield.
type noMods struct{}

func (noMods) StatModifier(string, string) float64 { return 0 }
func (noMods) Absorb(string, int) int              { return 0 }

// fullAbsorb swallows every point of damage.
type fullAbsorb struct{}

func (fullAbsorb) StatModifier(string, string) float64 { return 0 }
func (fullAbsorb) Absorb(_ string, amount int) int     { return amount }

// attackMods grants the attacker a +50% attack modifier.
type attackMods struct{}

func (attackMods) StatModifier(id, stat string) float64 {
	if id == "a" && stat == StatAttack {
		return 0.5
	}
	return 0
}
func (attackMods) Absorb(string, int) int { return 0 }

func fighter(id string, attack, defense int) *combatant.Combatant {
	return &combatant.Combatant{
		ID:    id,
		Stats: combatant.Stats{Health: 100, MaxHealth: 100, Attack: attack, Defense: defense},
	}
}

func flatConfig() Config {
	return Config{MissChance: 0, BaseCritChance: 0, CritMultiplier: 1.5, Variance: 0}
}

func TestCalculateBaseDamage(t *testing.T) {
	r := NewResolver(flatConfig(), &seqSource{}, noMods{}, event.NopSink{})
	res := r.Calculate(fighter("a", 20, 0), fighter("b", 0, 5), 1.0)
	if res.Miss || res.Crit {
		t.Fatalf("unexpected miss/crit: %+v", res)
	}
	if res.Damage != 15 {
		t.Errorf("damage = %d, want 15", res.Damage)
	}
}

func TestCalculateMiss(t *testing.T) {
	cfg := flatConfig()
	cfg.MissChance = 1.0
	r := NewResolver(cfg, &seqSource{}, noMods{}, event.NopSink{})
	res := r.Calculate(fighter("a", 20, 0), fighter("b", 0, 5), 1.0)
	if !res.Miss || res.Damage != 0 {
		t.Errorf("miss should deal 0 damage, got %+v", res)
	}
}

func TestCalculateCrit(t *testing.T) {
	cfg := flatConfig()
	cfg.BaseCritChance = 1.0
	cfg.CritMultiplier = 2.0
	r := NewResolver(cfg, &seqSource{}, noMods{}, event.NopSink{})
	res := r.Calculate(fighter("a", 20, 0), fighter("b", 0, 5), 1.0)
	if !res.Crit {
		t.Fatal("expected a crit")
	}
	if res.Damage != 30 {
		t.Errorf("crit damage = %d, want 30", res.Damage)
	}
}

func TestCalculateMinimumOne(t *testing.T) {
	r := NewResolver(flatConfig(), &seqSource{}, noMods{}, event.NopSink{})
	res := r.Calculate(fighter("a", 5, 0), fighter("b", 0, 100), 1.0)
	if res.Damage != 1 {
		t.Errorf("overwhelming defense should still yield 1 damage, got %d", res.Damage)
	}
}

func TestCalculateAttackModifier(t *testing.T) {
	r := NewResolver(flatConfig(), &seqSource{}, attackMods{}, event.NopSink{})
	res := r.Calculate(fighter("a", 20, 0), fighter("b", 0, 5), 1.0)
	// 20 * 1.5 - 5 = 25
	if res.Damage != 25 {
		t.Errorf("buffed damage = %d, want 25", res.Damage)
	}
}

func TestCalculatePhysicalDamagePercent(t *testing.T) {
	r := NewResolver(flatConfig(), &seqSource{}, noMods{}, event.NopSink{})
	a := fighter("a", 20, 0)
	a.Stats.PhysicalDamagePercent = 100
	res := r.Calculate(a, fighter("b", 0, 5), 1.0)
	if res.Damage != 30 {
		t.Errorf("damage = %d, want 30", res.Damage)
	}
}

func TestCalculateVariance(t *testing.T) {
	cfg := flatConfig()
	cfg.Variance = 0.1
	// Miss roll, crit roll, then variance roll at the maximum.
	src := &seqSource{vals: []float64{0.99, 0.99, 1.0}}
	r := NewResolver(cfg, src, noMods{}, event.NopSink{})
	res := r.Calculate(fighter("a", 20, 0), fighter("b", 0, 5), 1.0)
	if res.Damage != 16 {
		t.Errorf("max-variance damage = %d, want 16", res.Damage)
	}
}

func TestCalculateFullyAbsorbedClampsToOne(t *testing.T) {
	r := NewResolver(flatConfig(), &seqSource{}, fullAbsorb{}, event.NopSink{})
	res := r.Calculate(fighter("a", 20, 0), fighter("b", 0, 5), 1.0)
	if res.Damage != 1 {
		t.Errorf("fully absorbed hit should land 1 damage, got %d", res.Damage)
	}
}

func TestCalculateHealing(t *testing.T) {
	r := NewResolver(flatConfig(), &seqSource{}, noMods{}, event.NopSink{})
	if got := r.CalculateHealing(fighter("a", 20, 0), 1.5); got != 30 {
		t.Errorf("healing = %d, want 30", got)
	}
	if got := r.CalculateHealing(fighter("a", 0, 0), 1.0); got != 1 {
		t.Errorf("zero-attack healing = %d, want 1", got)
	}
}

func TestDealDamageRecordsKillAndEvent(t *testing.T) {
	sink := &event.MemorySink{}
	r := NewResolver(flatConfig(), &seqSource{}, noMods{}, sink)
	target := fighter("b", 0, 0)
	target.Stats.Health = 10

	r.DealDamage("a", target, 15, false)

	if target.Stats.Health != 0 {
		t.Errorf("health = %d, want 0", target.Stats.Health)
	}
	totals := r.Ledger().Totals("a")
	if totals.DamageDealt != 15 || totals.Kills != 1 {
		t.Errorf("attacker totals = %+v, want 15 dealt and 1 kill", totals)
	}
	if taken := r.Ledger().Totals("b").DamageTaken; taken != 15 {
		t.Errorf("target damage taken = %d, want 15", taken)
	}
	evs := sink.ByKind(event.KindDamageApplied)
	if len(evs) != 1 || evs[0].Amount != 15 || evs[0].Actor != "a" || evs[0].Target != "b" {
		t.Errorf("damage event = %+v", evs)
	}
}

func TestDealDamageEffectTickNoKillCredit(t *testing.T) {
	r := NewResolver(flatConfig(), &seqSource{}, noMods{}, event.NopSink{})
	target := fighter("b", 0, 0)
	target.Stats.Health = 3

	r.DealDamage("", target, 5, false)
	all := r.Ledger().All()
	for id, tot := range all {
		if tot.Kills != 0 {
			t.Errorf("effect tick should credit no kill, %q has %d", id, tot.Kills)
		}
	}
}

func TestDealHealingRecordsAppliedDelta(t *testing.T) {
	sink := &event.MemorySink{}
	r := NewResolver(flatConfig(), &seqSource{}, noMods{}, sink)
	target := fighter("b", 0, 0)
	target.Stats.Health = 90

	r.DealHealing("a", target, 50)

	if target.Stats.Health != 100 {
		t.Errorf("health = %d, want 100", target.Stats.Health)
	}
	if done := r.Ledger().Totals("a").HealingDone; done != 10 {
		t.Errorf("healing done = %d, want 10 (overheal excluded)", done)
	}
	evs := sink.ByKind(event.KindHealingApplied)
	if len(evs) != 1 || evs[0].Amount != 10 {
		t.Errorf("healing event = %+v", evs)
	}
}

func TestPropertyNonMissDamageAtLeastOne(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := Config{
			MissChance:     rapid.Float64Range(0, 0.5).Draw(t, "miss"),
			BaseCritChance: rapid.Float64Range(0, 0.5).Draw(t, "crit"),
			CritMultiplier: rapid.Float64Range(1, 3).Draw(t, "mult"),
			Variance:       rapid.Float64Range(0, 0.5).Draw(t, "variance"),
		}
		src := &seqSource{vals: []float64{
			rapid.Float64Range(0, 0.999).Draw(t, "r1"),
			rapid.Float64Range(0, 0.999).Draw(t, "r2"),
			rapid.Float64Range(0, 0.999).Draw(t, "r3"),
		}}
		r := NewResolver(cfg, src, noMods{}, event.NopSink{})
		attacker := fighter("a", rapid.IntRange(0, 500).Draw(t, "atk"), 0)
		target := fighter("b", 0, rapid.IntRange(0, 500).Draw(t, "def"))
		res := r.Calculate(attacker, target, rapid.Float64Range(0.1, 5).Draw(t, "ability"))
		if res.Miss {
			if res.Damage != 0 {
				t.Fatalf("miss with damage %d", res.Damage)
			}
			return
		}
		if res.Damage < 1 {
			t.Fatalf("non-miss damage %d < 1", res.Damage)
		}
	})
}
