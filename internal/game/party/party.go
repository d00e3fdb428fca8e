// Package party provides hero definitions and the roster that supplies fresh
// runtime combatants to each encounter.
package party

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/calder-games/skirmish/internal/game/combatant"
)

// HeroDef is the static definition of one hero, loaded from YAML.
type HeroDef struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Class string `yaml:"class"`
	Spec  string `yaml:"spec"`
	Role  string `yaml:"role"`
	Level int    `yaml:"level"`

	MaxHealth             int     `yaml:"max_health"`
	Attack                int     `yaml:"attack"`
	Defense               int     `yaml:"defense"`
	CritChance            float64 `yaml:"crit_chance"`
	Speed                 float64 `yaml:"speed"`
	PhysicalDamagePercent float64 `yaml:"physical_damage_percent"`
	MaxResource           int     `yaml:"max_resource"`
	ResourceType          string  `yaml:"resource_type"`
}

// Validate checks that the hero definition satisfies basic invariants.
//
// Precondition: h must not be nil.
// Postcondition: Returns nil iff ID, Name, and Class are non-empty, Level >= 1,
// MaxHealth >= 1, and Speed > 0.
func (h *HeroDef) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("hero def: id must not be empty")
	}
	if h.Name == "" {
		return fmt.Errorf("hero def %q: name must not be empty", h.ID)
	}
	if h.Class == "" {
		return fmt.Errorf("hero def %q: class must not be empty", h.ID)
	}
	if h.Level < 1 {
		return fmt.Errorf("hero def %q: level must be >= 1", h.ID)
	}
	if h.MaxHealth < 1 {
		return fmt.Errorf("hero def %q: max_health must be >= 1", h.ID)
	}
	if h.Speed <= 0 {
		return fmt.Errorf("hero def %q: speed must be > 0", h.ID)
	}
	return nil
}

// Spawn creates a fresh runtime combatant for this hero at full health.
// Each call returns a new record; the encounter that receives it becomes its
// exclusive owner.
func (h *HeroDef) Spawn() *combatant.Combatant {
	return &combatant.Combatant{
		ID:    h.ID,
		Name:  h.Name,
		Kind:  combatant.KindHero,
		Team:  combatant.TeamHeroes,
		Role:  combatant.ParseRole(h.Role),
		Class: h.Class,
		Spec:  h.Spec,
		Level: h.Level,
		Stats: combatant.Stats{
			Health:                h.MaxHealth,
			MaxHealth:             h.MaxHealth,
			Attack:                h.Attack,
			Defense:               h.Defense,
			CritChance:            h.CritChance,
			Speed:                 h.Speed,
			PhysicalDamagePercent: h.PhysicalDamagePercent,
			Resource:              h.MaxResource,
			MaxResource:           h.MaxResource,
			ResourceType:          h.ResourceType,
		},
	}
}

// Roster holds the active party's hero definitions in declaration order.
type Roster struct {
	heroes []*HeroDef
	byID   map[string]*HeroDef
}

// NewRoster creates a Roster from the given definitions.
//
// Precondition: defs must all be validated.
func NewRoster(defs []*HeroDef) *Roster {
	byID := make(map[string]*HeroDef, len(defs))
	for _, d := range defs {
		byID[d.ID] = d
	}
	return &Roster{heroes: defs, byID: byID}
}

// ListHeroes returns fresh runtime combatants for every hero, in roster
// order. Every call produces new records; previous encounters' mutations are
// never visible.
func (r *Roster) ListHeroes() []*combatant.Combatant {
	out := make([]*combatant.Combatant, 0, len(r.heroes))
	for _, h := range r.heroes {
		out = append(out, h.Spawn())
	}
	return out
}

// HeroByID returns the definition for id, or (nil, false) if not found.
func (r *Roster) HeroByID(id string) (*HeroDef, bool) {
	h, ok := r.byID[id]
	return h, ok
}

// Size returns the number of heroes in the roster.
func (r *Roster) Size() int { return len(r.heroes) }

// AverageLevel returns the mean hero level, rounded down.
//
// Postcondition: Returns 0 for an empty roster; never divides by zero.
func (r *Roster) AverageLevel() int {
	if len(r.heroes) == 0 {
		return 0
	}
	total := 0
	for _, h := range r.heroes {
		total += h.Level
	}
	return total / len(r.heroes)
}

// LoadRoster reads every *.yaml file in dir, parses each as a HeroDef, and
// returns a populated Roster ordered by file name.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Roster, or an error on the first parse or
// validate failure.
func LoadRoster(dir string) (*Roster, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading party dir %q: %w", dir, err)
	}
	var defs []*HeroDef
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def HeroDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		defs = append(defs, &def)
	}
	return NewRoster(defs), nil
}
