package ability

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// kitFile is the YAML shape of one ability kit file.
type kitFile struct {
	// Owner is the catalog key: "class/spec" for heroes, template id for enemies.
	Owner     string      `yaml:"owner"`
	Abilities []abilityDef `yaml:"abilities"`
}

type abilityDef struct {
	Name             string  `yaml:"name"`
	Kind             string  `yaml:"kind"`
	ResourceCost     int     `yaml:"resource_cost"`
	ResourceType     string  `yaml:"resource_type"`
	Cooldown         float64 `yaml:"cooldown"`
	Range            float64 `yaml:"range"`
	Melee            bool    `yaml:"melee"`
	DamageMultiplier float64 `yaml:"damage_multiplier"`
	HealMultiplier   float64 `yaml:"heal_multiplier"`
	BuffID           string  `yaml:"buff_id"`
	FormID           string  `yaml:"form_id"`
	SummonID         string  `yaml:"summon_id"`
	DoTEffect        string  `yaml:"dot_effect"`
	DoTMultiplier    float64 `yaml:"dot_multiplier"`
	DoTDuration      int     `yaml:"dot_duration"`
	AoERadius        float64 `yaml:"aoe_radius"`
}

// Catalog holds every known ability kit, keyed by owner key and lowercase
// ability name. Catalogs are immutable after loading.
type Catalog struct {
	kits   map[string][]*Definition
	byName map[string]map[string]*Definition
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		kits:   make(map[string][]*Definition),
		byName: make(map[string]map[string]*Definition),
	}
}

// Register adds a kit for ownerKey, replacing any existing kit.
//
// Precondition: ownerKey must be non-empty; every definition must have a
// non-empty name and a valid Kind.
func (c *Catalog) Register(ownerKey string, defs []*Definition) {
	c.kits[ownerKey] = defs
	named := make(map[string]*Definition, len(defs))
	for _, d := range defs {
		named[strings.ToLower(d.Name)] = d
	}
	c.byName[ownerKey] = named
}

// Kit returns the ability definitions for ownerKey in declaration order.
// A missing owner yields an empty slice, never an error; callers degrade to
// the auto-attack fallback.
func (c *Catalog) Kit(ownerKey string) []*Definition {
	return c.kits[ownerKey]
}

// Get returns the definition for (ownerKey, name), matching name
// case-insensitively.
func (c *Catalog) Get(ownerKey, name string) (*Definition, bool) {
	named, ok := c.byName[ownerKey]
	if !ok {
		return nil, false
	}
	d, ok := named[strings.ToLower(name)]
	return d, ok
}

// Owners returns the owner keys with registered kits.
func (c *Catalog) Owners() []string {
	out := make([]string, 0, len(c.kits))
	for k := range c.kits {
		out = append(out, k)
	}
	return out
}

// parseKit converts one kit file into validated Definitions.
func parseKit(kf kitFile) ([]*Definition, error) {
	if kf.Owner == "" {
		return nil, fmt.Errorf("ability kit: owner must not be empty")
	}
	if len(kf.Abilities) == 0 {
		return nil, fmt.Errorf("ability kit %q: abilities must not be empty", kf.Owner)
	}
	defs := make([]*Definition, 0, len(kf.Abilities))
	for _, ad := range kf.Abilities {
		if ad.Name == "" {
			return nil, fmt.Errorf("ability kit %q: ability name must not be empty", kf.Owner)
		}
		kind, err := ParseKind(ad.Kind)
		if err != nil {
			return nil, fmt.Errorf("ability kit %q, ability %q: %w", kf.Owner, ad.Name, err)
		}
		dmgMult := ad.DamageMultiplier
		if dmgMult == 0 {
			dmgMult = 1.0
		}
		healMult := ad.HealMultiplier
		if healMult == 0 {
			healMult = 1.0
		}
		defs = append(defs, &Definition{
			Name:             ad.Name,
			Kind:             kind,
			ResourceCost:     ad.ResourceCost,
			ResourceType:     ad.ResourceType,
			Cooldown:         ad.Cooldown,
			Range:            ad.Range,
			Melee:            ad.Melee,
			DamageMultiplier: dmgMult,
			HealMultiplier:   healMult,
			BuffID:           ad.BuffID,
			FormID:           ad.FormID,
			SummonID:         ad.SummonID,
			DoTEffect:        ad.DoTEffect,
			DoTMultiplier:    ad.DoTMultiplier,
			DoTDuration:      ad.DoTDuration,
			AoERadius:        ad.AoERadius,
		})
	}
	return defs, nil
}

// LoadKitFromBytes parses a single kit file from raw YAML bytes.
//
// Precondition: data must be valid YAML for a kitFile.
// Postcondition: Returns the owner key and validated definitions, or an error.
func LoadKitFromBytes(data []byte) (string, []*Definition, error) {
	var kf kitFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&kf); err != nil {
		return "", nil, fmt.Errorf("parsing ability kit YAML: %w", err)
	}
	defs, err := parseKit(kf)
	if err != nil {
		return "", nil, err
	}
	return kf.Owner, defs, nil
}

// LoadDirectory reads every *.yaml file in dir, parses each as an ability
// kit, and returns a populated Catalog.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Catalog, or an error if any file fails to
// parse or validate.
func LoadDirectory(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading ability dir %q: %w", dir, err)
	}
	cat := NewCatalog()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		owner, defs, err := LoadKitFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		cat.Register(owner, defs)
	}
	return cat, nil
}
