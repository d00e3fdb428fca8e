package effect

// Instance tracks one applied effect on a combatant.
type Instance struct {
	Def *Def
	// TurnsRemaining is the status ticks left before expiry.
	TurnsRemaining int
	// Stacks is >= 1 and meaningful only for stackable effects.
	Stacks int
	// PerTickOverride replaces Def.PerTick when > 0; used by abilities that
	// register a damage-over-time entry sized from a resolved hit.
	PerTickOverride int
	// ShieldRemaining is the absorb budget left on a shield instance.
	ShieldRemaining int
	// SourceID is the combatant that applied the effect, for attribution.
	SourceID string
}

// perTick returns the effective per-tick amount for this instance.
func (i *Instance) perTick() int {
	if i.PerTickOverride > 0 {
		return i.PerTickOverride
	}
	return i.Def.PerTick
}

// TickResult aggregates the outcome of advancing one combatant's effects by
// one status tick.
type TickResult struct {
	// Stunned is true when a stun entry was present during this tick.
	Stunned bool
	// Damage is the total periodic damage from bleed and poison entries.
	Damage int
	// DamageBySource splits Damage by the applying combatant's id so periodic
	// damage is credited to its caster; unattributed entries key "".
	DamageBySource map[string]int
	// Healing is the total periodic healing from regeneration entries.
	Healing int
	// HealingBySource splits Healing by the applying combatant's id.
	HealingBySource map[string]int
	// StatMods maps stat name to the summed modifier fraction from buffs.
	StatMods map[string]float64
	// Expired lists the effect types removed this tick.
	Expired []Type
}

// ActiveSet tracks all effects currently applied to one combatant.
// It is not safe for concurrent use; the encounter tick loop serialises access.
type ActiveSet struct {
	effects map[Type]*Instance
}

// NewActiveSet creates an empty ActiveSet.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{effects: make(map[Type]*Instance)}
}

// Custom carries effect-specific payload values for Apply.
type Custom struct {
	// PerTick overrides the catalog per-tick amount when > 0.
	PerTick int
	// Absorb overrides the catalog shield amount when > 0.
	Absorb int
	// SourceID attributes the effect to the applying combatant.
	SourceID string
}

// Apply adds or refreshes an effect on this combatant.
//
// Re-application semantics:
//   - non-stackable, already active: TurnsRemaining extends to
//     max(existing, new) and never decreases;
//   - stackable, already active: Stacks increments and TurnsRemaining resets
//     to the new duration;
//   - otherwise a fresh entry is created with Stacks = 1.
//
// duration <= 0 selects the catalog default.
//
// Precondition: def must not be nil.
// Postcondition: Has(def.Type) is true.
func (s *ActiveSet) Apply(def *Def, duration int, custom Custom) {
	if duration <= 0 {
		duration = def.DefaultDuration
	}

	if existing, ok := s.effects[def.Type]; ok {
		if def.Stackable {
			existing.Stacks++
			existing.TurnsRemaining = duration
		} else if duration > existing.TurnsRemaining {
			existing.TurnsRemaining = duration
		}
		if custom.PerTick > 0 {
			existing.PerTickOverride = custom.PerTick
		}
		if def.Type == TypeShield {
			absorb := custom.Absorb
			if absorb <= 0 {
				absorb = def.Absorb
			}
			existing.ShieldRemaining += absorb
		}
		if custom.SourceID != "" {
			existing.SourceID = custom.SourceID
		}
		return
	}

	inst := &Instance{
		Def:             def,
		TurnsRemaining:  duration,
		Stacks:          1,
		PerTickOverride: custom.PerTick,
		SourceID:        custom.SourceID,
	}
	if def.Type == TypeShield {
		inst.ShieldRemaining = custom.Absorb
		if inst.ShieldRemaining <= 0 {
			inst.ShieldRemaining = def.Absorb
		}
	}
	s.effects[def.Type] = inst
}

// Tick advances every entry by one status tick and returns the aggregate.
//
// Contract: call exactly once per status tick per combatant. The call is not
// idempotent; a double call double-applies periodic amounts and
// double-decrements durations.
//
// Postcondition: Every type in the result's Expired slice satisfies
// Has(type) == false.
func (s *ActiveSet) Tick() TickResult {
	result := TickResult{
		StatMods:        make(map[string]float64),
		DamageBySource:  make(map[string]int),
		HealingBySource: make(map[string]int),
	}

	for t, inst := range s.effects {
		switch t {
		case TypeStun:
			result.Stunned = true
		case TypeBleed, TypePoison:
			amount := inst.perTick() * inst.Stacks
			result.Damage += amount
			result.DamageBySource[inst.SourceID] += amount
		case TypeRegeneration:
			result.Healing += inst.perTick()
			result.HealingBySource[inst.SourceID] += inst.perTick()
		case TypeAttackBuff, TypeDefenseBuff:
			result.StatMods[inst.Def.Stat] += inst.Def.Modifier * float64(inst.Stacks)
		}
	}

	// Deleting map entries during range iteration is safe per the Go
	// specification.
	for t, inst := range s.effects {
		inst.TurnsRemaining--
		if inst.TurnsRemaining <= 0 {
			result.Expired = append(result.Expired, t)
			delete(s.effects, t)
		}
	}

	return result
}

// Absorb consumes up to amount from an active shield and returns the portion
// absorbed. A shield drained to zero is removed immediately.
//
// Postcondition: Returns a value in [0, amount]; ShieldAmount decreases by
// exactly that value.
func (s *ActiveSet) Absorb(amount int) int {
	inst, ok := s.effects[TypeShield]
	if !ok || amount <= 0 {
		return 0
	}
	absorbed := amount
	if absorbed > inst.ShieldRemaining {
		absorbed = inst.ShieldRemaining
	}
	inst.ShieldRemaining -= absorbed
	if inst.ShieldRemaining <= 0 {
		delete(s.effects, TypeShield)
	}
	return absorbed
}

// ShieldAmount returns the remaining absorb budget, or 0 without a shield.
func (s *ActiveSet) ShieldAmount() int {
	if inst, ok := s.effects[TypeShield]; ok {
		return inst.ShieldRemaining
	}
	return 0
}

// Has reports whether the effect of type t is currently active.
func (s *ActiveSet) Has(t Type) bool {
	_, ok := s.effects[t]
	return ok
}

// Stacks returns the current stack count for t, or 0 if not present.
func (s *ActiveSet) Stacks(t Type) int {
	if inst, ok := s.effects[t]; ok {
		return inst.Stacks
	}
	return 0
}

// TurnsRemaining returns the remaining duration for t, or 0 if not present.
func (s *ActiveSet) TurnsRemaining(t Type) int {
	if inst, ok := s.effects[t]; ok {
		return inst.TurnsRemaining
	}
	return 0
}

// StatModifier returns the summed modifier fraction for stat from all active
// buff entries.
func (s *ActiveSet) StatModifier(stat string) float64 {
	total := 0.0
	for _, inst := range s.effects {
		if inst.Def.Stat == stat && inst.Def.Modifier != 0 {
			total += inst.Def.Modifier * float64(inst.Stacks)
		}
	}
	return total
}
