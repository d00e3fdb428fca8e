package bestiary

import (
	"testing"

	"github.com/calder-games/skirmish/internal/game/combatant"
)

func validTemplate() *Template {
	return &Template{
		ID:        "goblin-raider",
		Name:      "Goblin Raider",
		Rank:      "basic",
		Strategy:  "aggressive",
		MaxHealth: 120,
		Attack:    18,
		Defense:   6,
		Speed:     2.4,
	}
}

func TestValidateRequiresID(t *testing.T) {
	tmpl := validTemplate()
	tmpl.ID = ""
	if tmpl.Validate() == nil {
		t.Error("empty id should be rejected")
	}
}

func TestValidatePhaseThresholds(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Phases = []Phase{
		{Name: "p1", HealthThreshold: 0.7},
		{Name: "p2", HealthThreshold: 0.35},
	}
	if err := tmpl.Validate(); err != nil {
		t.Errorf("non-increasing thresholds should be valid: %v", err)
	}

	tmpl.Phases = []Phase{
		{Name: "p1", HealthThreshold: 0.35},
		{Name: "p2", HealthThreshold: 0.7},
	}
	if tmpl.Validate() == nil {
		t.Error("increasing thresholds should be rejected")
	}

	tmpl.Phases = []Phase{{Name: "p1", HealthThreshold: 1.5}}
	if tmpl.Validate() == nil {
		t.Error("threshold above 1 should be rejected")
	}
}

func TestNormalizeDegradesBadStats(t *testing.T) {
	tmpl := validTemplate()
	tmpl.MaxHealth = 0
	tmpl.Attack = -5
	tmpl.Speed = 0
	tmpl.LootChance = 2.0

	fixes := tmpl.Normalize()
	if len(fixes) != 4 {
		t.Errorf("expected 4 fixes, got %d: %v", len(fixes), fixes)
	}
	if tmpl.MaxHealth != DefaultMaxHealth || tmpl.Attack != DefaultAttack || tmpl.Speed != DefaultSpeed {
		t.Errorf("stats not degraded to defaults: %+v", tmpl)
	}
	if tmpl.LootChance != 0 {
		t.Errorf("out-of-range loot chance should reset to 0, got %g", tmpl.LootChance)
	}
}

func TestNormalizeValidTemplateUntouched(t *testing.T) {
	tmpl := validTemplate()
	if fixes := tmpl.Normalize(); len(fixes) != 0 {
		t.Errorf("valid template should need no fixes, got %v", fixes)
	}
}

func TestSpawn(t *testing.T) {
	tmpl := validTemplate()
	c := tmpl.Spawn("goblin-raider-1")
	if c.ID != "goblin-raider-1" || c.TemplateID != "goblin-raider" {
		t.Errorf("spawned ids wrong: %+v", c)
	}
	if c.Team != combatant.TeamEnemies || c.Kind != combatant.KindEnemy {
		t.Error("spawned combatant should be an enemy")
	}
	if c.Stats.Health != tmpl.MaxHealth {
		t.Errorf("spawned health = %d, want %d", c.Stats.Health, tmpl.MaxHealth)
	}
}

func TestSpawnBossForcesBossStrategy(t *testing.T) {
	tmpl := validTemplate()
	tmpl.Rank = "boss"
	tmpl.Strategy = "aggressive"
	c := tmpl.Spawn("boss-1")
	if c.Strategy != combatant.StrategyBoss {
		t.Errorf("boss rank should force boss strategy, got %v", c.Strategy)
	}
}

func TestLoadTemplateFromBytes(t *testing.T) {
	data := []byte(`
id: ember-dragon
name: Ember Dragon
rank: boss
max_health: 1200
attack: 40
defense: 22
speed: 3.5
phases:
  - name: wounded
    health_threshold: 0.7
    abilities: [claw]
`)
	tmpl, fixes, err := LoadTemplateFromBytes(data)
	if err != nil {
		t.Fatalf("LoadTemplateFromBytes: %v", err)
	}
	if len(fixes) != 0 {
		t.Errorf("unexpected fixes: %v", fixes)
	}
	if tmpl.ID != "ember-dragon" || len(tmpl.Phases) != 1 {
		t.Errorf("template parsed wrong: %+v", tmpl)
	}
}

func TestLoadTemplateRejectsUnknownField(t *testing.T) {
	data := []byte(`
id: x
name: X
hp: 50
`)
	if _, _, err := LoadTemplateFromBytes(data); err == nil {
		t.Error("unknown YAML fields should be rejected")
	}
}
