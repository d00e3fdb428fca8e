// Package encounter implements the combat session manager: the tick-driven
// scheduler that owns every participant for one encounter and composes
// targeting, resolution, status effects, and threat.
package encounter

import (
	"time"

	"github.com/calder-games/skirmish/internal/game/bestiary"
	"github.com/calder-games/skirmish/internal/game/combatant"
	"github.com/calder-games/skirmish/internal/game/tactics"
)

// Phase is the lifecycle state of a combat session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseActive
	PhasePaused
	PhaseEnded
)

// String returns the human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	case PhaseEnded:
		return "ended"
	default:
		return "not_started"
	}
}

// petLifetimeSeconds is how long a summoned pet stays in the roster.
const petLifetimeSeconds = 30.0

// Pet is one summoned companion registered by a summon ability.
type Pet struct {
	ID       string
	SummonID string
	OwnerID  string
	// ExpiresAt is the session elapsed time at which the pet despawns.
	ExpiresAt float64
}

// deferredAction is a scheduled resolution queued by the tick loop, used for
// the melee charge delay. Pending actions are dropped wholesale when the
// session ends; run closures must re-check liveness themselves.
type deferredAction struct {
	due float64
	run func()
}

// Session is the live state of one encounter.
//
// The Session exclusively owns the mutable runtime state of every
// participant via its Arena; components operate on handles into it, never on
// copies, so mutations are visible to all components within the same tick.
type Session struct {
	ID        string
	StartedAt time.Time

	Arena *combatant.Arena
	Phase Phase

	// Round increments once per status tick. Informational.
	Round int
	// Victory is nil until the session ends.
	Victory *bool

	// elapsed is the accumulated simulation time in seconds.
	elapsed float64
	// statusAccum accumulates delta toward the next status tick.
	statusAccum float64

	// ai holds the per-combatant scheduling and adaptation state.
	ai map[string]*tactics.AIState
	// phases holds each enemy's boss phase list, keyed by instance id.
	phases map[string][]bestiary.Phase
	// templates remembers each enemy instance's template for reporting.
	templates map[string]*bestiary.Template

	pets     []Pet
	stances  map[string]string
	deferred []deferredAction
}

// Elapsed returns the accumulated simulation time in seconds.
func (s *Session) Elapsed() float64 { return s.elapsed }

// Pets returns a snapshot of the currently active pets.
func (s *Session) Pets() []Pet {
	out := make([]Pet, len(s.pets))
	copy(out, s.pets)
	return out
}

// Stance returns the active stance identifier for combatantID, or "".
func (s *Session) Stance(combatantID string) string {
	return s.stances[combatantID]
}

// AIState returns the state for combatantID, or nil if unknown.
func (s *Session) AIState(combatantID string) *tactics.AIState {
	return s.ai[combatantID]
}

// schedule queues run to execute once elapsed reaches due.
func (s *Session) schedule(due float64, run func()) {
	s.deferred = append(s.deferred, deferredAction{due: due, run: run})
}

// takeDue removes and returns every deferred action due at or before the
// current elapsed time, preserving scheduling order.
func (s *Session) takeDue() []deferredAction {
	var due, rest []deferredAction
	for _, d := range s.deferred {
		if d.due <= s.elapsed {
			due = append(due, d)
		} else {
			rest = append(rest, d)
		}
	}
	s.deferred = rest
	return due
}

// expirePets drops pets whose lifetime has elapsed and returns them.
func (s *Session) expirePets() []Pet {
	var expired []Pet
	kept := s.pets[:0]
	for _, p := range s.pets {
		if p.ExpiresAt <= s.elapsed {
			expired = append(expired, p)
		} else {
			kept = append(kept, p)
		}
	}
	s.pets = kept
	return expired
}
