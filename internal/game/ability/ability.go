// Package ability provides the read-only ability definition catalog keyed by
// hero class/spec or enemy template id.
package ability

import "fmt"

// Kind is the closed set of ability behaviors the action executor dispatches
// on. The zero value (KindUnknown) is intentionally invalid.
type Kind int

const (
	KindUnknown Kind = iota
	KindAttack
	KindAOE
	KindHeal
	KindAOEHeal
	KindHealAttack
	KindDoT
	KindDoTAttack
	KindDoTHeal
	KindTaunt
	KindSummon
	KindForm
	KindPartyBuff
)

// String returns the YAML/catalog name of the Kind.
func (k Kind) String() string {
	switch k {
	case KindAttack:
		return "attack"
	case KindAOE:
		return "aoe"
	case KindHeal:
		return "heal"
	case KindAOEHeal:
		return "aoe_heal"
	case KindHealAttack:
		return "heal_attack"
	case KindDoT:
		return "dot"
	case KindDoTAttack:
		return "dot_attack"
	case KindDoTHeal:
		return "dot_heal"
	case KindTaunt:
		return "taunt"
	case KindSummon:
		return "summon"
	case KindForm:
		return "form"
	case KindPartyBuff:
		return "party_buff"
	default:
		return "unknown"
	}
}

// ParseKind maps a catalog string to a Kind.
//
// Postcondition: Returns a valid Kind, or (KindUnknown, error) for
// unrecognised strings.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "attack", "":
		return KindAttack, nil
	case "aoe":
		return KindAOE, nil
	case "heal":
		return KindHeal, nil
	case "aoe_heal":
		return KindAOEHeal, nil
	case "heal_attack":
		return KindHealAttack, nil
	case "dot":
		return KindDoT, nil
	case "dot_attack":
		return KindDoTAttack, nil
	case "dot_heal":
		return KindDoTHeal, nil
	case "taunt":
		return KindTaunt, nil
	case "summon":
		return KindSummon, nil
	case "form":
		return KindForm, nil
	case "party_buff":
		return KindPartyBuff, nil
	default:
		return KindUnknown, fmt.Errorf("unknown ability kind %q", s)
	}
}

// Definition is one immutable ability entry from the catalog. The core never
// mutates definitions; per-encounter cooldown state lives in the AI state.
type Definition struct {
	Name string
	Kind Kind

	ResourceCost int
	ResourceType string

	// Cooldown is this ability's own cooldown in seconds, independent of the
	// owner's action speed.
	Cooldown float64

	// Range in world units; 0 means melee reach. Melee marks abilities whose
	// delivery is deferred by the presentation-coupled charge delay.
	Range float64
	Melee bool

	DamageMultiplier float64
	HealMultiplier   float64

	// Payload fields, meaningful per Kind.
	BuffID        string  // form / party_buff: effect type name to apply
	FormID        string  // form: stance identifier
	SummonID      string  // summon: pet template identifier
	DoTEffect     string  // dot family: effect type name (defaults to poison)
	DoTMultiplier float64 // dot family: per-tick fraction of the base hit
	DoTDuration   int     // dot family: duration in status ticks
	AoERadius     float64 // aoe / taunt: 0 restricts taunt to the current target
}

// AutoAttack returns the generic fallback used when a combatant has no usable
// abilities or a definition lookup fails.
//
// Postcondition: Returns a KindAttack definition with multiplier 1 and no
// resource cost.
func AutoAttack() *Definition {
	return &Definition{
		Name:             "auto attack",
		Kind:             KindAttack,
		DamageMultiplier: 1.0,
		Melee:            true,
	}
}
