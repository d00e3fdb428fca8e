package combatant

import "testing"

func hero() *Combatant {
	return &Combatant{
		ID:    "hero-1",
		Name:  "Hero",
		Kind:  KindHero,
		Team:  TeamHeroes,
		Class: "warrior",
		Spec:  "protection",
		Stats: Stats{Health: 100, MaxHealth: 100, Resource: 50, MaxResource: 50},
	}
}

func TestApplyDamageFloorsAtZero(t *testing.T) {
	c := hero()
	c.ApplyDamage(150)
	if c.Stats.Health != 0 {
		t.Errorf("health = %d, want 0", c.Stats.Health)
	}
	if c.Alive() {
		t.Error("combatant at zero health should not be alive")
	}
}

func TestApplyHealingCapsAtMax(t *testing.T) {
	c := hero()
	c.ApplyDamage(30)
	c.ApplyHealing(500)
	if c.Stats.Health != c.Stats.MaxHealth {
		t.Errorf("health = %d, want %d", c.Stats.Health, c.Stats.MaxHealth)
	}
}

func TestSpendResourceFloorsAtZero(t *testing.T) {
	c := hero()
	c.SpendResource(80)
	if c.Stats.Resource != 0 {
		t.Errorf("resource = %d, want 0", c.Stats.Resource)
	}
}

func TestHealthPercent(t *testing.T) {
	c := hero()
	c.ApplyDamage(25)
	if got := c.HealthPercent(); got != 0.75 {
		t.Errorf("HealthPercent() = %g, want 0.75", got)
	}
}

func TestHealthPercentZeroMax(t *testing.T) {
	c := &Combatant{}
	if got := c.HealthPercent(); got != 0 {
		t.Errorf("HealthPercent() = %g, want 0 for zero max health", got)
	}
}

func TestHealthDescription(t *testing.T) {
	cases := []struct {
		health int
		want   string
	}{
		{100, "unharmed"},
		{90, "barely scratched"},
		{70, "lightly wounded"},
		{50, "moderately wounded"},
		{30, "heavily wounded"},
		{10, "critically wounded"},
		{0, "dead"},
	}
	for _, tc := range cases {
		c := hero()
		c.Stats.Health = tc.health
		if got := c.HealthDescription(); got != tc.want {
			t.Errorf("health %d: description = %q, want %q", tc.health, got, tc.want)
		}
	}
}

func TestKitKey(t *testing.T) {
	h := hero()
	if got := h.KitKey(); got != "warrior/protection" {
		t.Errorf("hero KitKey() = %q, want %q", got, "warrior/protection")
	}
	e := &Combatant{Kind: KindEnemy, TemplateID: "goblin-raider"}
	if got := e.KitKey(); got != "goblin-raider" {
		t.Errorf("enemy KitKey() = %q, want %q", got, "goblin-raider")
	}
}

func TestParseDegradation(t *testing.T) {
	if ParseRole("wizard") != RoleDPS {
		t.Error("unknown role should degrade to dps")
	}
	if ParseRank("champion") != RankBasic {
		t.Error("unknown rank should degrade to basic")
	}
	if ParseStrategy("cowardly") != StrategyAggressive {
		t.Error("unknown strategy should degrade to aggressive")
	}
}

func TestTeamOpponent(t *testing.T) {
	if TeamHeroes.Opponent() != TeamEnemies || TeamEnemies.Opponent() != TeamHeroes {
		t.Error("Opponent() should swap teams")
	}
}
