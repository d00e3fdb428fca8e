package tactics

import (
	"strings"

	"github.com/calder-games/skirmish/internal/game/ability"
	"github.com/calder-games/skirmish/internal/game/bestiary"
)

// normalizeName lowercases an ability name for case-insensitive matching.
func normalizeName(name string) string {
	return strings.ToLower(name)
}

// SelectAbility chooses the actor's next ability from kit.
//
// Selection policy:
//  1. when the actor is inside a defined boss phase, the kit is filtered to
//     abilities whose names contain any phase allow-list entry
//     (case-insensitive substring); an empty filter result falls back to the
//     full kit;
//  2. abilities still on cooldown are removed; if none remain, the first
//     ability of the (filtered) kit is used without touching cooldowns;
//  3. otherwise one ready ability is chosen uniformly at random and its
//     cooldown is set to elapsed + its cooldown seconds.
//
// An empty kit degrades to the generic auto attack. The uniform-random
// policy is deliberate; do not replace it with utility scoring.
//
// Precondition: state and src must not be nil.
// Postcondition: Returns a non-nil Definition.
func SelectAbility(kit []*ability.Definition, state *AIState, phases []bestiary.Phase, elapsed float64, src Source) *ability.Definition {
	pool := kit
	if phase, ok := state.CurrentPhase(phases); ok {
		filtered := filterByPhase(pool, phase)
		if len(filtered) > 0 {
			pool = filtered
		}
	}

	if len(pool) == 0 {
		return ability.AutoAttack()
	}

	var ready []*ability.Definition
	for _, def := range pool {
		if state.AbilityReady(def.Name, elapsed) {
			ready = append(ready, def)
		}
	}
	if len(ready) == 0 {
		return pool[0]
	}

	pick := ready[src.Intn(len(ready))]
	state.SetAbilityCooldown(pick.Name, elapsed, pick.Cooldown)
	return pick
}

// filterByPhase keeps the definitions whose names contain any of the phase's
// allow-list entries, matched case-insensitively.
func filterByPhase(kit []*ability.Definition, phase bestiary.Phase) []*ability.Definition {
	var out []*ability.Definition
	for _, def := range kit {
		name := normalizeName(def.Name)
		for _, allowed := range phase.Abilities {
			if strings.Contains(name, normalizeName(allowed)) {
				out = append(out, def)
				break
			}
		}
	}
	return out
}
