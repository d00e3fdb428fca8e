// Package tactics implements target selection, ability selection, and the
// per-enemy adaptation state machine (boss phases and enrage).
package tactics

import (
	"math"

	"github.com/calder-games/skirmish/internal/game/bestiary"
)

// AIState is the per-combatant scheduling and adaptation state for one
// encounter. Heroes use only the ability-cooldown portion; enemies
// additionally advance phases and the enrage latch.
type AIState struct {
	// PhaseIndex is the current boss phase; -1 means no phase entered.
	// Invariant: monotonically non-decreasing for one encounter.
	PhaseIndex int
	// Enraged is a one-way latch set below the enrage health threshold.
	Enraged bool
	// IgnoreThreat is set with Enraged and overrides the configured
	// targeting strategy with uniform-random selection.
	IgnoreThreat bool
	// AdaptationLevel is floor(elapsed / adaptation interval). Informational.
	AdaptationLevel int

	// cooldowns maps lowercase ability name to the elapsed-time stamp at
	// which the ability is ready again.
	cooldowns map[string]float64
}

// NewAIState creates a fresh AIState with no phase entered.
func NewAIState() *AIState {
	return &AIState{PhaseIndex: -1, cooldowns: make(map[string]float64)}
}

// AbilityReady reports whether the named ability is off cooldown at elapsed.
func (s *AIState) AbilityReady(name string, elapsed float64) bool {
	return elapsed >= s.cooldowns[normalizeName(name)]
}

// SetAbilityCooldown marks the named ability unusable until elapsed+cooldown.
func (s *AIState) SetAbilityCooldown(name string, elapsed, cooldown float64) {
	s.cooldowns[normalizeName(name)] = elapsed + cooldown
}

// Advancement describes the observable changes from one adaptation refresh.
type Advancement struct {
	// PhaseChanged is true when PhaseIndex advanced this refresh.
	PhaseChanged bool
	// Phase is the newly entered phase when PhaseChanged.
	Phase bestiary.Phase
	// PhaseIndex is the new index when PhaseChanged.
	PhaseIndex int
	// EnragedNow is true when the enrage latch was set this refresh.
	EnragedNow bool
}

// Advance refreshes the adaptation state from the enemy's current condition.
// Called once per status tick per living enemy.
//
// Phase selection picks the highest phase index whose health threshold is
// >= healthPct; the index only ever increases. The enrage latch sets once
// healthPct drops below enrageThreshold and persists for the encounter.
//
// Precondition: healthPct in [0, 1]; adaptationInterval > 0.
// Postcondition: PhaseIndex is >= its previous value.
func (s *AIState) Advance(elapsed, healthPct float64, phases []bestiary.Phase, enrageThreshold, adaptationInterval float64) Advancement {
	var adv Advancement

	s.AdaptationLevel = int(math.Floor(elapsed / adaptationInterval))

	target := s.PhaseIndex
	for i, p := range phases {
		if p.HealthThreshold >= healthPct && i > target {
			target = i
		}
	}
	if target > s.PhaseIndex {
		s.PhaseIndex = target
		adv.PhaseChanged = true
		adv.Phase = phases[target]
		adv.PhaseIndex = target
	}

	if !s.Enraged && healthPct < enrageThreshold {
		s.Enraged = true
		s.IgnoreThreat = true
		adv.EnragedNow = true
	}

	return adv
}

// CurrentPhase returns the active phase definition, or (zero, false) when no
// phase has been entered or the index is out of range.
func (s *AIState) CurrentPhase(phases []bestiary.Phase) (bestiary.Phase, bool) {
	if s.PhaseIndex < 0 || s.PhaseIndex >= len(phases) {
		return bestiary.Phase{}, false
	}
	return phases[s.PhaseIndex], true
}
