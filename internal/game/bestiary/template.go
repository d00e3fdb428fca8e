// Package bestiary provides enemy template definitions and spawning of live
// enemy combatants from them.
package bestiary

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/calder-games/skirmish/internal/game/combatant"
)

// Default stat values substituted for missing or malformed template fields.
// A single bad data entry degrades to these rather than halting a simulation.
const (
	DefaultMaxHealth = 100
	DefaultAttack    = 10
	DefaultDefense   = 5
	DefaultSpeed     = 2.5
)

// Phase is one boss behavior tier unlocked by a health-percentage threshold.
// While a phase is active, ability selection is restricted to abilities whose
// names match the phase allow-list.
type Phase struct {
	Name string `yaml:"name"`
	// HealthThreshold activates the phase once the boss's health fraction
	// drops to or below it.
	HealthThreshold float64 `yaml:"health_threshold"`
	// Abilities is the case-insensitive substring allow-list for this phase.
	Abilities []string `yaml:"abilities"`
}

// Template defines a reusable enemy archetype loaded from YAML.
type Template struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Rank     string `yaml:"rank"`     // basic | elite | boss
	Strategy string `yaml:"strategy"` // aggressive | tactical | defensive | boss
	Role     string `yaml:"role"`     // tank | healer | dps

	MaxHealth             int     `yaml:"max_health"`
	Attack                int     `yaml:"attack"`
	Defense               int     `yaml:"defense"`
	CritChance            float64 `yaml:"crit_chance"`
	Speed                 float64 `yaml:"speed"`
	PhysicalDamagePercent float64 `yaml:"physical_damage_percent"`

	Abilities []string `yaml:"abilities"`
	Phases    []Phase  `yaml:"phases"`

	RewardXP       int     `yaml:"reward_xp"`
	RewardCurrency int     `yaml:"reward_currency"`
	LootChance     float64 `yaml:"loot_chance"`
}

// Validate checks the structural invariants of the template. Numeric stat
// fields are deliberately excluded; Normalize degrades those to defaults.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID and Name are non-empty and phase
// thresholds are in [0, 1] and non-increasing.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("enemy template %q: name must not be empty", t.ID)
	}
	prev := 1.0
	for i, p := range t.Phases {
		if p.HealthThreshold < 0 || p.HealthThreshold > 1 {
			return fmt.Errorf("enemy template %q: phase %d threshold must be in [0, 1], got %g", t.ID, i, p.HealthThreshold)
		}
		if p.HealthThreshold > prev {
			return fmt.Errorf("enemy template %q: phase thresholds must be non-increasing (phase %d)", t.ID, i)
		}
		prev = p.HealthThreshold
	}
	return nil
}

// Normalize substitutes documented defaults for missing or nonsensical stat
// fields and returns a description of each correction made, for logging.
//
// Postcondition: MaxHealth, Attack, Defense >= 1 and Speed > 0; LootChance
// and CritChance are clamped to sane ranges.
func (t *Template) Normalize() []string {
	var fixes []string
	if t.MaxHealth <= 0 {
		fixes = append(fixes, fmt.Sprintf("max_health %d -> %d", t.MaxHealth, DefaultMaxHealth))
		t.MaxHealth = DefaultMaxHealth
	}
	if t.Attack <= 0 {
		fixes = append(fixes, fmt.Sprintf("attack %d -> %d", t.Attack, DefaultAttack))
		t.Attack = DefaultAttack
	}
	if t.Defense < 0 {
		fixes = append(fixes, fmt.Sprintf("defense %d -> %d", t.Defense, DefaultDefense))
		t.Defense = DefaultDefense
	}
	if t.Speed <= 0 {
		fixes = append(fixes, fmt.Sprintf("speed %g -> %g", t.Speed, DefaultSpeed))
		t.Speed = DefaultSpeed
	}
	if t.CritChance < 0 {
		fixes = append(fixes, fmt.Sprintf("crit_chance %g -> 0", t.CritChance))
		t.CritChance = 0
	}
	if t.LootChance < 0 || t.LootChance > 1 {
		fixes = append(fixes, fmt.Sprintf("loot_chance %g -> 0", t.LootChance))
		t.LootChance = 0
	}
	return fixes
}

// Spawn creates a live enemy combatant from the template.
//
// Bosses are always forced onto the boss targeting strategy regardless of the
// template's configured strategy.
//
// Precondition: instanceID must be non-empty; t should be normalized.
// Postcondition: The returned combatant's Health equals the template's
// MaxHealth.
func (t *Template) Spawn(instanceID string) *combatant.Combatant {
	rank := combatant.ParseRank(t.Rank)
	strategy := combatant.ParseStrategy(t.Strategy)
	if rank == combatant.RankBoss {
		strategy = combatant.StrategyBoss
	}
	return &combatant.Combatant{
		ID:         instanceID,
		Name:       t.Name,
		Kind:       combatant.KindEnemy,
		Team:       combatant.TeamEnemies,
		Role:       combatant.ParseRole(t.Role),
		TemplateID: t.ID,
		Rank:       rank,
		Strategy:   strategy,
		Stats: combatant.Stats{
			Health:                t.MaxHealth,
			MaxHealth:             t.MaxHealth,
			Attack:                t.Attack,
			Defense:               t.Defense,
			CritChance:            t.CritChance,
			Speed:                 t.Speed,
			PhysicalDamagePercent: t.PhysicalDamagePercent,
		},
		RewardXP:       t.RewardXP,
		RewardCurrency: t.RewardCurrency,
		LootChance:     t.LootChance,
	}
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
// The template is validated and normalized; normalization corrections are
// returned alongside for the caller to log.
//
// Precondition: data must be valid YAML for a single Template.
func LoadTemplateFromBytes(data []byte) (*Template, []string, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, nil, fmt.Errorf("parsing enemy template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, nil, err
	}
	fixes := tmpl.Normalize()
	return &tmpl, fixes, nil
}

// Registry holds all known enemy Templates keyed by ID.
type Registry struct {
	templates map[string]*Template
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]*Template)}
}

// Register adds tmpl, overwriting any existing entry with the same ID.
//
// Precondition: tmpl must not be nil and tmpl.ID must not be empty.
func (r *Registry) Register(tmpl *Template) {
	r.templates[tmpl.ID] = tmpl
}

// Get returns the Template for id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.templates[id]
	return t, ok
}

// All returns a snapshot slice of all registered Templates.
func (r *Registry) All() []*Template {
	out := make([]*Template, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as a Template,
// and returns a populated Registry plus all normalization corrections keyed
// by template id.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails
// to parse or validate.
func LoadDirectory(dir string) (*Registry, map[string][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	fixes := make(map[string][]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading %q: %w", path, err)
		}
		tmpl, corrections, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if len(corrections) > 0 {
			fixes[tmpl.ID] = corrections
		}
		reg.Register(tmpl)
	}
	return reg, fixes, nil
}
