package encounter

import (
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calder-games/skirmish/internal/game/ability"
	"github.com/calder-games/skirmish/internal/game/combatant"
	"github.com/calder-games/skirmish/internal/game/effect"
	"github.com/calder-games/skirmish/internal/game/event"
	"github.com/calder-games/skirmish/internal/game/resolve"
	"github.com/calder-games/skirmish/internal/game/tactics"
)

// healAttackThreshold is the ally health fraction below which a heal_attack
// ability heals instead of attacking.
const healAttackThreshold = 0.9

// defaultDoTMultiplier sizes the per-tick amount of a damage-over-time entry
// when the ability does not configure one.
const defaultDoTMultiplier = 0.5

// execute dispatches one selected ability. The resource cost is spent up
// front; insufficient resource degrades the cost rather than cancelling the
// action.
func (m *Manager) execute(s *Session, actorH, targetH combatant.Handle, def *ability.Definition) {
	actor := s.Arena.Get(actorH)
	actor.SpendResource(def.ResourceCost)

	switch def.Kind {
	case ability.KindAttack:
		m.executeAttack(s, actorH, targetH, def)
	case ability.KindAOE:
		m.executeAOE(s, actorH, def)
	case ability.KindHeal:
		m.executeHeal(s, actorH, def)
	case ability.KindAOEHeal:
		m.executeAOEHeal(s, actorH, def)
	case ability.KindHealAttack:
		m.executeHealAttack(s, actorH, targetH, def)
	case ability.KindDoT:
		m.executeDoT(s, actorH, targetH, def, false)
	case ability.KindDoTAttack:
		m.executeDoT(s, actorH, targetH, def, true)
	case ability.KindDoTHeal:
		m.executeDoTHeal(s, actorH, def)
	case ability.KindTaunt:
		m.executeTaunt(s, actorH, targetH, def)
	case ability.KindSummon:
		m.executeSummon(s, actorH, targetH, def)
	case ability.KindForm:
		m.executeForm(s, actorH, def)
	case ability.KindPartyBuff:
		m.executePartyBuff(s, actorH, def)
	default:
		// Unknown kinds cannot come from the catalog loader; degrade to the
		// generic auto attack rather than wasting the action.
		m.log.Warn("unknown ability kind, degrading to auto attack",
			zap.String("ability", def.Name),
		)
		m.executeAttack(s, actorH, targetH, ability.AutoAttack())
	}
}

// executeAttack resolves a single-target attack. Melee abilities defer their
// delivery by the configured charge delay; the deferred resolution re-checks
// that both parties are still alive.
func (m *Manager) executeAttack(s *Session, actorH, targetH combatant.Handle, def *ability.Definition) {
	actor := s.Arena.Get(actorH)
	target := s.Arena.Get(targetH)

	deliver := func() {
		if !actor.Alive() || !target.Alive() {
			return
		}
		res := m.resolver.Calculate(actor, target, def.DamageMultiplier)
		if !res.Miss {
			m.resolver.DealDamage(actor.ID, target, res.Damage, res.Crit)
			m.addThreat(actor, target, res.Damage)
		}
		m.publishAction(s, actor.ID, target.ID, def.Name, res)
	}

	if def.Melee && m.combatCfg.MeleeDeliverySeconds > 0 {
		s.schedule(s.elapsed+m.combatCfg.MeleeDeliverySeconds, deliver)
		return
	}
	deliver()
}

// executeAOE resolves an independent hit against every living opponent.
func (m *Manager) executeAOE(s *Session, actorH combatant.Handle, def *ability.Definition) {
	actor := s.Arena.Get(actorH)
	for _, th := range s.Arena.Living(actor.Team.Opponent()) {
		target := s.Arena.Get(th)
		res := m.resolver.Calculate(actor, target, def.DamageMultiplier)
		if !res.Miss {
			m.resolver.DealDamage(actor.ID, target, res.Damage, res.Crit)
			m.addThreat(actor, target, res.Damage)
		}
		m.publishAction(s, actor.ID, target.ID, def.Name, res)
	}
}

// executeHeal heals the actor's most wounded living ally, itself included.
func (m *Manager) executeHeal(s *Session, actorH combatant.Handle, def *ability.Definition) {
	allyH := tactics.LowestHealthAlly(s.Arena, actorH)
	if allyH == tactics.NoTarget {
		return
	}
	actor := s.Arena.Get(actorH)
	ally := s.Arena.Get(allyH)
	amount := m.resolver.CalculateHealing(actor, def.HealMultiplier)
	m.resolver.DealHealing(actor.ID, ally, amount)
	m.publishAction(s, actor.ID, ally.ID, def.Name, resolve.Result{Damage: amount})
}

// executeAOEHeal heals every living ally with independent rolls.
func (m *Manager) executeAOEHeal(s *Session, actorH combatant.Handle, def *ability.Definition) {
	actor := s.Arena.Get(actorH)
	for _, ah := range s.Arena.Living(actor.Team) {
		ally := s.Arena.Get(ah)
		amount := m.resolver.CalculateHealing(actor, def.HealMultiplier)
		m.resolver.DealHealing(actor.ID, ally, amount)
		m.publishAction(s, actor.ID, ally.ID, def.Name, resolve.Result{Damage: amount})
	}
}

// executeHealAttack heals the most wounded living ally when one is below the
// heal threshold, otherwise falls through to the attack path.
func (m *Manager) executeHealAttack(s *Session, actorH, targetH combatant.Handle, def *ability.Definition) {
	allyH := tactics.LowestHealthAlly(s.Arena, actorH)
	if allyH != tactics.NoTarget && s.Arena.Get(allyH).HealthPercent() < healAttackThreshold {
		m.executeHeal(s, actorH, def)
		return
	}
	m.executeAttack(s, actorH, targetH, def)
}

// executeDoT resolves a base hit and registers a periodic damage entry sized
// from it. A missed base roll applies nothing. withHit additionally applies
// the base hit as immediate damage (the dot_attack kind).
func (m *Manager) executeDoT(s *Session, actorH, targetH combatant.Handle, def *ability.Definition, withHit bool) {
	actor := s.Arena.Get(actorH)
	target := s.Arena.Get(targetH)

	res := m.resolver.Calculate(actor, target, def.DamageMultiplier)
	if res.Miss {
		m.publishAction(s, actor.ID, target.ID, def.Name, res)
		return
	}
	if withHit {
		m.resolver.DealDamage(actor.ID, target, res.Damage, res.Crit)
		m.addThreat(actor, target, res.Damage)
	}

	mult := def.DoTMultiplier
	if mult <= 0 {
		mult = defaultDoTMultiplier
	}
	perTick := int(math.Floor(float64(res.Damage) * mult))
	if perTick < 1 {
		perTick = 1
	}

	effType := effect.TypePoison
	if def.DoTEffect != "" {
		t, err := effect.ParseType(def.DoTEffect)
		if err != nil {
			m.log.Warn("unknown dot effect type, using poison",
				zap.String("ability", def.Name),
				zap.String("effect", def.DoTEffect),
			)
		} else {
			effType = t
		}
	}

	m.effects.Apply(target.ID, effType, def.DoTDuration, effect.Custom{
		PerTick:  perTick,
		SourceID: actor.ID,
	})
	m.publishEffectApplied(s, actor.ID, target.ID, effType)
	if !withHit {
		res.Damage = 0
	}
	m.publishAction(s, actor.ID, target.ID, def.Name, res)
}

// executeDoTHeal registers a regeneration entry on the most wounded ally,
// sized from a healing roll.
func (m *Manager) executeDoTHeal(s *Session, actorH combatant.Handle, def *ability.Definition) {
	allyH := tactics.LowestHealthAlly(s.Arena, actorH)
	if allyH == tactics.NoTarget {
		return
	}
	actor := s.Arena.Get(actorH)
	ally := s.Arena.Get(allyH)

	mult := def.DoTMultiplier
	if mult <= 0 {
		mult = defaultDoTMultiplier
	}
	perTick := int(math.Floor(float64(m.resolver.CalculateHealing(actor, def.HealMultiplier)) * mult))
	if perTick < 1 {
		perTick = 1
	}

	m.effects.Apply(ally.ID, effect.TypeRegeneration, def.DoTDuration, effect.Custom{
		PerTick:  perTick,
		SourceID: actor.ID,
	})
	m.publishEffectApplied(s, actor.ID, ally.ID, effect.TypeRegeneration)
	m.publishAction(s, actor.ID, ally.ID, def.Name, resolve.Result{})
}

// executeTaunt puts the actor at the top of the threat table for the current
// target, or for every living enemy when the ability has an area radius.
func (m *Manager) executeTaunt(s *Session, actorH, targetH combatant.Handle, def *ability.Definition) {
	actor := s.Arena.Get(actorH)
	target := s.Arena.Get(targetH)
	if !actor.IsHero() {
		// Threat tables track heroes only; an enemy taunt resolves as a no-op
		// but still surfaces outward like every other action.
		m.publishAction(s, actor.ID, target.ID, def.Name, resolve.Result{})
		return
	}
	if def.AoERadius > 0 {
		for _, eh := range s.Arena.Living(combatant.TeamEnemies) {
			m.threats.Taunt(s.Arena.Get(eh).ID, actor.ID, m.combatCfg.TauntBonus)
		}
	} else {
		m.threats.Taunt(target.ID, actor.ID, m.combatCfg.TauntBonus)
	}
	m.publishAction(s, actor.ID, target.ID, def.Name, resolve.Result{})
}

// executeSummon registers a pet for the actor with a fixed lifetime.
func (m *Manager) executeSummon(s *Session, actorH, targetH combatant.Handle, def *ability.Definition) {
	actor := s.Arena.Get(actorH)
	s.pets = append(s.pets, Pet{
		ID:        uuid.NewString(),
		SummonID:  def.SummonID,
		OwnerID:   actor.ID,
		ExpiresAt: s.elapsed + petLifetimeSeconds,
	})
	m.publishAction(s, actor.ID, s.Arena.Get(targetH).ID, def.Name, resolve.Result{})
}

// executeForm switches the actor's stance and applies its buff, if any.
func (m *Manager) executeForm(s *Session, actorH combatant.Handle, def *ability.Definition) {
	actor := s.Arena.Get(actorH)
	s.stances[actor.ID] = def.FormID
	if def.BuffID != "" {
		t, err := effect.ParseType(def.BuffID)
		if err != nil {
			m.log.Warn("unknown form buff type",
				zap.String("ability", def.Name),
				zap.String("buff", def.BuffID),
			)
		} else {
			m.effects.Apply(actor.ID, t, 0, effect.Custom{SourceID: actor.ID})
			m.publishEffectApplied(s, actor.ID, actor.ID, t)
		}
	}
	m.publishAction(s, actor.ID, actor.ID, def.Name, resolve.Result{})
}

// executePartyBuff applies the configured buff to every living ally.
func (m *Manager) executePartyBuff(s *Session, actorH combatant.Handle, def *ability.Definition) {
	actor := s.Arena.Get(actorH)
	t := effect.TypeAttackBuff
	if def.BuffID != "" {
		parsed, err := effect.ParseType(def.BuffID)
		if err != nil {
			m.log.Warn("unknown party buff type, using attack_buff",
				zap.String("ability", def.Name),
				zap.String("buff", def.BuffID),
			)
		} else {
			t = parsed
		}
	}
	for _, ah := range s.Arena.Living(actor.Team) {
		ally := s.Arena.Get(ah)
		m.effects.Apply(ally.ID, t, 0, effect.Custom{SourceID: actor.ID})
		m.publishEffectApplied(s, actor.ID, ally.ID, t)
	}
	m.publishAction(s, actor.ID, actor.ID, def.Name, resolve.Result{})
}

// addThreat accumulates threat for hero damage against an enemy. Tank-role
// heroes generate double threat per point of damage.
func (m *Manager) addThreat(actor, target *combatant.Combatant, damage int) {
	if !actor.IsHero() || target.Team != combatant.TeamEnemies {
		return
	}
	amount := float64(damage)
	if actor.Role == combatant.RoleTank {
		amount *= 2
	}
	m.threats.Add(target.ID, actor.ID, amount)
}

// publishAction emits the action-executed event for one resolved ability use.
func (m *Manager) publishAction(s *Session, actorID, targetID, abilityName string, res resolve.Result) {
	m.sink.Publish(event.Event{
		Kind:      event.KindActionExecuted,
		At:        time.Now(),
		SessionID: s.ID,
		Actor:     actorID,
		Target:    targetID,
		Ability:   abilityName,
		Amount:    res.Damage,
		Crit:      res.Crit,
		Miss:      res.Miss,
	})
}

// publishEffectApplied emits the effect-applied event.
func (m *Manager) publishEffectApplied(s *Session, actorID, targetID string, t effect.Type) {
	m.sink.Publish(event.Event{
		Kind:       event.KindEffectApplied,
		At:         time.Now(),
		SessionID:  s.ID,
		Actor:      actorID,
		Target:     targetID,
		EffectType: t.String(),
	})
}
