// Package effect implements the status-effect engine: a fixed catalog of
// effect types and per-combatant active-effect tables advanced once per
// status tick.
package effect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Type is the closed set of status effects.
type Type int

const (
	TypeStun Type = iota
	TypeBleed
	TypePoison
	TypeShield
	TypeRegeneration
	TypeAttackBuff
	TypeDefenseBuff
)

// String returns the catalog name of the Type.
func (t Type) String() string {
	switch t {
	case TypeStun:
		return "stun"
	case TypeBleed:
		return "bleed"
	case TypePoison:
		return "poison"
	case TypeShield:
		return "shield"
	case TypeRegeneration:
		return "regeneration"
	case TypeAttackBuff:
		return "attack_buff"
	case TypeDefenseBuff:
		return "defense_buff"
	default:
		return "unknown"
	}
}

// ParseType maps a catalog string to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "stun":
		return TypeStun, nil
	case "bleed":
		return TypeBleed, nil
	case "poison":
		return TypePoison, nil
	case "shield":
		return TypeShield, nil
	case "regeneration":
		return TypeRegeneration, nil
	case "attack_buff":
		return TypeAttackBuff, nil
	case "defense_buff":
		return TypeDefenseBuff, nil
	default:
		return TypeStun, fmt.Errorf("unknown effect type %q", s)
	}
}

// StatAttack and StatDefense name the stats buff effects modify.
const (
	StatAttack  = "attack"
	StatDefense = "defense"
)

// Def is the static definition of one effect type.
type Def struct {
	Type Type
	// DefaultDuration is the duration in status ticks applied when the
	// caller does not supply one.
	DefaultDuration int
	Stackable       bool
	// PerTick is the damage (bleed/poison) or healing (regeneration) applied
	// on each status tick, before stacking.
	PerTick int
	// Modifier is the stat-modifier fraction for buff effects.
	Modifier float64
	// Stat names the stat a buff modifies: StatAttack or StatDefense.
	Stat string
	// Absorb is the default shield absorption amount.
	Absorb int
}

// Catalog holds the Def for every effect type.
type Catalog struct {
	defs map[Type]*Def
}

// NewCatalog returns a Catalog populated with the built-in defaults.
func NewCatalog() *Catalog {
	c := &Catalog{defs: make(map[Type]*Def)}
	for _, d := range []*Def{
		{Type: TypeStun, DefaultDuration: 1},
		{Type: TypeBleed, DefaultDuration: 3, Stackable: true, PerTick: 4},
		{Type: TypePoison, DefaultDuration: 4, Stackable: true, PerTick: 3},
		{Type: TypeShield, DefaultDuration: 5, Absorb: 50},
		{Type: TypeRegeneration, DefaultDuration: 4, PerTick: 5},
		{Type: TypeAttackBuff, DefaultDuration: 3, Modifier: 0.25, Stat: StatAttack},
		{Type: TypeDefenseBuff, DefaultDuration: 3, Modifier: 0.25, Stat: StatDefense},
	} {
		c.defs[d.Type] = d
	}
	return c
}

// Get returns the Def for t.
//
// Postcondition: Returns a non-nil Def for every valid Type.
func (c *Catalog) Get(t Type) *Def {
	return c.defs[t]
}

// defOverride is the YAML shape of one catalog override entry.
type defOverride struct {
	Type            string  `yaml:"type"`
	DefaultDuration int     `yaml:"default_duration"`
	Stackable       *bool   `yaml:"stackable"`
	PerTick         int     `yaml:"per_tick"`
	Modifier        float64 `yaml:"modifier"`
	Absorb          int     `yaml:"absorb"`
}

type overrideFile struct {
	Effects []defOverride `yaml:"effects"`
}

// LoadOverrides reads every *.yaml file in dir and merges the tuning values
// into the catalog. The set of effect types is fixed; overrides can only
// adjust numbers on existing entries.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns nil, or an error if any file fails to parse or
// names an unknown effect type.
func (c *Catalog) LoadOverrides(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %q: %w", path, err)
		}
		var of overrideFile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&of); err != nil {
			return fmt.Errorf("parsing %q: %w", path, err)
		}
		for _, ov := range of.Effects {
			t, err := ParseType(ov.Type)
			if err != nil {
				return fmt.Errorf("loading %q: %w", path, err)
			}
			def := c.defs[t]
			if ov.DefaultDuration > 0 {
				def.DefaultDuration = ov.DefaultDuration
			}
			if ov.Stackable != nil {
				def.Stackable = *ov.Stackable
			}
			if ov.PerTick > 0 {
				def.PerTick = ov.PerTick
			}
			if ov.Modifier > 0 {
				def.Modifier = ov.Modifier
			}
			if ov.Absorb > 0 {
				def.Absorb = ov.Absorb
			}
		}
	}
	return nil
}
