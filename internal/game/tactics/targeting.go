package tactics

import (
	"github.com/calder-games/skirmish/internal/game/combatant"
	"github.com/calder-games/skirmish/internal/game/threat"
)

// Source is the subset of dice.Source used for random target selection.
type Source interface {
	Intn(n int) int
}

// NoTarget is returned when no living candidate exists.
const NoTarget = combatant.Handle(-1)

// HeroTarget selects a hero's enemy target.
//
// Targeting is sticky: a previously locked target persists until it dies.
// When unlocked, the living enemy with the lowest current health is chosen,
// ties broken by registration order, and the lock is bound to it.
//
// Postcondition: Returns NoTarget iff no enemy is alive; otherwise the
// hero's TargetLock names the returned enemy.
func HeroTarget(arena *combatant.Arena, hero combatant.Handle) combatant.Handle {
	h := arena.Get(hero)

	if h.TargetLock != "" {
		if locked, ok := arena.Lookup(h.TargetLock); ok && arena.Get(locked).Alive() {
			return locked
		}
		h.TargetLock = ""
	}

	best := NoTarget
	for _, eh := range arena.Living(combatant.TeamEnemies) {
		if best == NoTarget || arena.Get(eh).Stats.Health < arena.Get(best).Stats.Health {
			best = eh
		}
	}
	if best != NoTarget {
		h.TargetLock = arena.Get(best).ID
	}
	return best
}

// EnemyTarget selects an enemy's hero target according to its configured
// strategy. An enraged enemy ignores its strategy entirely and picks a
// uniformly random living hero.
//
// Strategies:
//   - aggressive: lowest health-percentage living hero;
//   - tactical: first living hero by role priority healer > dps > tank;
//   - boss: first living hero by role priority tank > healer > dps;
//   - defensive: highest threat, with a flat bonus added for tank-role heroes.
//
// Precondition: state, table, and src must not be nil.
// Postcondition: Returns NoTarget iff no hero is alive.
func EnemyTarget(arena *combatant.Arena, enemy combatant.Handle, state *AIState, table *threat.Table, tankBonus float64, src Source) combatant.Handle {
	living := arena.Living(combatant.TeamHeroes)
	if len(living) == 0 {
		return NoTarget
	}

	if state.IgnoreThreat {
		return living[src.Intn(len(living))]
	}

	e := arena.Get(enemy)
	switch e.Strategy {
	case combatant.StrategyTactical:
		return byRolePriority(arena, living, []combatant.Role{combatant.RoleHealer, combatant.RoleDPS, combatant.RoleTank})
	case combatant.StrategyBoss:
		return byRolePriority(arena, living, []combatant.Role{combatant.RoleTank, combatant.RoleHealer, combatant.RoleDPS})
	case combatant.StrategyDefensive:
		best := NoTarget
		bestScore := 0.0
		for _, hh := range living {
			hero := arena.Get(hh)
			score := table.Value(e.ID, hero.ID)
			if hero.Role == combatant.RoleTank {
				score += tankBonus
			}
			if best == NoTarget || score > bestScore {
				best, bestScore = hh, score
			}
		}
		return best
	default: // aggressive
		best := NoTarget
		for _, hh := range living {
			if best == NoTarget || arena.Get(hh).HealthPercent() < arena.Get(best).HealthPercent() {
				best = hh
			}
		}
		return best
	}
}

// byRolePriority returns the first living hero matching the earliest role in
// priority order, falling back to the first living hero when no role matches.
func byRolePriority(arena *combatant.Arena, living []combatant.Handle, priority []combatant.Role) combatant.Handle {
	for _, role := range priority {
		for _, hh := range living {
			if arena.Get(hh).Role == role {
				return hh
			}
		}
	}
	return living[0]
}

// LowestHealthAlly returns the living ally of actor with the lowest health
// percentage, including the actor itself.
//
// Postcondition: Returns NoTarget iff actor's team has no living member.
func LowestHealthAlly(arena *combatant.Arena, actor combatant.Handle) combatant.Handle {
	team := arena.Get(actor).Team
	best := NoTarget
	for _, ah := range arena.Living(team) {
		if best == NoTarget || arena.Get(ah).HealthPercent() < arena.Get(best).HealthPercent() {
			best = ah
		}
	}
	return best
}
