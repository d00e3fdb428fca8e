// Package event defines the outward event contract of the combat core.
//
// Events flow one way: the core publishes them and presentation, audio, and
// statistics collaborators consume them. Nothing consumed from a Sink ever
// re-enters the core.
package event

import "time"

// Kind identifies one outward event type. The values double as bus topics.
type Kind string

const (
	KindCombatStarted  Kind = "combat.started"
	KindCombatEnded    Kind = "combat.ended"
	KindUnitActing     Kind = "combat.unit"
	KindDamageApplied  Kind = "combat.damage"
	KindHealingApplied Kind = "combat.healing"
	KindEffectApplied  Kind = "combat.effect.applied"
	KindEffectRemoved  Kind = "combat.effect.removed"
	KindActionExecuted Kind = "combat.action"
	KindPhaseChanged   Kind = "combat.phase"
	KindEnemyEnraged   Kind = "combat.enrage"
)

// Event is one outward notification from the combat core.
//
// The struct is deliberately flat: every kind populates the subset of fields
// it needs and leaves the rest at their zero values, which keeps the JSON
// payload on the bus stable across kinds.
type Event struct {
	Kind Kind      `json:"kind"`
	At   time.Time `json:"at"`

	// SessionID is the encounter this event belongs to.
	SessionID string `json:"session_id,omitempty"`

	// Actor and Target are combatant ids, where applicable.
	Actor  string `json:"actor,omitempty"`
	Target string `json:"target,omitempty"`

	// Ability is the executed ability's name for action events.
	Ability string `json:"ability,omitempty"`

	// Amount is damage dealt or healing applied.
	Amount int  `json:"amount,omitempty"`
	Crit   bool `json:"crit,omitempty"`
	Miss   bool `json:"miss,omitempty"`

	// Victory is set on combat.ended.
	Victory bool `json:"victory,omitempty"`

	// EffectType names the status effect for effect events.
	EffectType string `json:"effect_type,omitempty"`

	// PhaseIndex and PhaseName describe a boss phase transition.
	PhaseIndex int    `json:"phase_index,omitempty"`
	PhaseName  string `json:"phase_name,omitempty"`

	// EnemyIDs lists the spawned enemy instance ids on combat.started.
	EnemyIDs []string `json:"enemy_ids,omitempty"`
}

// Sink consumes outward events. Implementations must not call back into the
// combat core and must not block the tick loop for long; slow consumers
// should buffer internally.
type Sink interface {
	Publish(ev Event)
}

// NopSink discards every event.
type NopSink struct{}

// Publish implements Sink.
func (NopSink) Publish(Event) {}

// MemorySink records every published event in order. It is intended for
// tests; it is not safe for concurrent use.
type MemorySink struct {
	Events []Event
}

// Publish implements Sink.
func (m *MemorySink) Publish(ev Event) {
	m.Events = append(m.Events, ev)
}

// ByKind returns the recorded events matching kind, in publication order.
func (m *MemorySink) ByKind(kind Kind) []Event {
	var out []Event
	for _, ev := range m.Events {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}
