package encounter

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/calder-games/skirmish/internal/config"
	"github.com/calder-games/skirmish/internal/game/ability"
	"github.com/calder-games/skirmish/internal/game/bestiary"
	"github.com/calder-games/skirmish/internal/game/combatant"
	"github.com/calder-games/skirmish/internal/game/dice"
	"github.com/calder-games/skirmish/internal/game/effect"
	"github.com/calder-games/skirmish/internal/game/event"
	"github.com/calder-games/skirmish/internal/game/resolve"
	"github.com/calder-games/skirmish/internal/game/tactics"
	"github.com/calder-games/skirmish/internal/game/threat"
)

var (
	// ErrSessionActive is returned by Start while a session is in progress.
	ErrSessionActive = errors.New("combat session already active")
	// ErrNoEnemies is returned by Start for an empty enemy group.
	ErrNoEnemies = errors.New("enemy group must not be empty")
	// ErrNoHeroes is returned by Start when the party roster is empty.
	ErrNoHeroes = errors.New("party roster must not be empty")
	// ErrNoSession is returned by End and SetPaused without an active session.
	ErrNoSession = errors.New("no active combat session")
)

// reportStoreTimeout bounds the asynchronous battle-report write.
const reportStoreTimeout = 5 * time.Second

// AbilityCatalog supplies ability kits by owner key.
type AbilityCatalog interface {
	Kit(ownerKey string) []*ability.Definition
}

// PartyProvider supplies fresh hero combatants for each encounter.
type PartyProvider interface {
	ListHeroes() []*combatant.Combatant
	AverageLevel() int
}

// ReportSink persists finished battle reports. Implementations are called
// asynchronously after a session ends and must tolerate concurrent calls.
type ReportSink interface {
	StoreReport(ctx context.Context, report Report) error
}

// Manager runs at most one combat session at a time and drives it through an
// externally-clocked tick loop. All public methods are safe for concurrent
// use; the internal tick processing is serialised under one mutex.
type Manager struct {
	mu sync.Mutex

	log        *zap.Logger
	combatCfg  config.CombatConfig
	rewardsCfg config.RewardsConfig

	catalog AbilityCatalog
	party   PartyProvider
	sink    event.Sink
	reports ReportSink
	src     dice.Source

	effects  *effect.Engine
	threats  *threat.Table
	resolver *resolve.Resolver

	session *Session
}

// NewManager constructs a Manager. reports may be nil to disable battle-report
// persistence.
//
// Precondition: log, catalog, party, sink, src, and effects must not be nil.
func NewManager(
	log *zap.Logger,
	combatCfg config.CombatConfig,
	rewardsCfg config.RewardsConfig,
	catalog AbilityCatalog,
	party PartyProvider,
	sink event.Sink,
	reports ReportSink,
	src dice.Source,
	effects *effect.Engine,
) *Manager {
	if log == nil {
		panic("encounter.NewManager: log must not be nil")
	}
	if catalog == nil {
		panic("encounter.NewManager: catalog must not be nil")
	}
	if party == nil {
		panic("encounter.NewManager: party must not be nil")
	}
	if sink == nil {
		panic("encounter.NewManager: sink must not be nil")
	}
	if src == nil {
		panic("encounter.NewManager: src must not be nil")
	}
	if effects == nil {
		panic("encounter.NewManager: effects must not be nil")
	}
	resolver := resolve.NewResolver(resolve.Config{
		MissChance:     combatCfg.MissChance,
		BaseCritChance: combatCfg.BaseCritChance,
		CritMultiplier: combatCfg.CritMultiplier,
		Variance:       combatCfg.DamageVariance,
	}, src, effects, sink)
	return &Manager{
		log:        log,
		combatCfg:  combatCfg,
		rewardsCfg: rewardsCfg,
		catalog:    catalog,
		party:      party,
		sink:       sink,
		reports:    reports,
		src:        src,
		effects:    effects,
		threats:    threat.NewTable(),
		resolver:   resolver,
	}
}

// Session returns the active session, or nil. The returned pointer must not be
// mutated by callers; it is owned by the manager's tick loop.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Ledger returns the damage-statistics ledger of the running encounter.
func (m *Manager) Ledger() *resolve.Ledger {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolver.Ledger()
}

// Start begins a new combat session against the given enemy group. Each
// template entry spawns one enemy instance; repeating a template spawns
// multiple instances.
//
// Heroes enter ready to act immediately; enemies enter with their first action
// delayed by the configured initial delay.
//
// Postcondition: On success a combat.started event has been published and the
// session is Active.
func (m *Manager) Start(group []*bestiary.Template) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return nil, ErrSessionActive
	}
	if len(group) == 0 {
		return nil, ErrNoEnemies
	}
	heroes := m.party.ListHeroes()
	if len(heroes) == 0 {
		return nil, ErrNoHeroes
	}

	s := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Arena:     combatant.NewArena(),
		Phase:     PhaseActive,
		ai:        make(map[string]*tactics.AIState),
		phases:    make(map[string][]bestiary.Phase),
		templates: make(map[string]*bestiary.Template),
		stances:   make(map[string]string),
	}

	for _, h := range heroes {
		s.Arena.Add(h)
		s.ai[h.ID] = tactics.NewAIState()
	}

	enemyIDs := make([]string, 0, len(group))
	for _, tmpl := range group {
		id := tmpl.ID + "-" + uuid.NewString()
		e := tmpl.Spawn(id)
		e.CooldownRemaining = m.combatCfg.EnemyInitialDelaySeconds
		s.Arena.Add(e)
		s.ai[id] = tactics.NewAIState()
		s.phases[id] = tmpl.Phases
		s.templates[id] = tmpl
		enemyIDs = append(enemyIDs, id)
	}

	m.resolver.ResetLedger()
	m.effects.Reset()
	m.threats.Reset()
	m.session = s

	m.sink.Publish(event.Event{
		Kind:      event.KindCombatStarted,
		At:        time.Now(),
		SessionID: s.ID,
		EnemyIDs:  enemyIDs,
	})
	m.log.Info("combat session started",
		zap.String("session_id", s.ID),
		zap.Int("heroes", len(heroes)),
		zap.Int("enemies", len(enemyIDs)),
	)
	return s, nil
}

// Tick advances the active session by delta seconds. Ticks are ignored when no
// session is active or the session is paused.
//
// Processing order within one tick: deferred melee deliveries, status ticks
// (effects, threat decay, boss-phase and enrage refresh), then combatant
// actions in stable registration order (all heroes, then all enemies), then
// the end-condition check. Enemy wipe is checked before hero wipe, so a
// simultaneous wipe counts as a victory.
func (m *Manager) Tick(delta float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session
	if s == nil || s.Phase != PhaseActive {
		return
	}
	s.elapsed += delta

	for _, d := range s.takeDue() {
		d.run()
	}

	s.statusAccum += delta
	for s.statusAccum >= m.combatCfg.StatusTickSeconds {
		s.statusAccum -= m.combatCfg.StatusTickSeconds
		m.statusTick(s)
	}

	for _, h := range s.Arena.All() {
		c := s.Arena.Get(h)
		if !c.Alive() {
			continue
		}
		c.CooldownRemaining -= delta
		if c.CooldownRemaining > 0 {
			continue
		}
		if m.effects.Stunned(c.ID) {
			// A stunned combatant loses its action and retries after one
			// status-tick period.
			c.CooldownRemaining = m.combatCfg.StatusTickSeconds
			continue
		}
		m.act(s, h)
		c.CooldownRemaining = c.Stats.Speed
	}

	switch {
	case s.Arena.TeamWiped(combatant.TeamEnemies):
		m.endLocked(s, true)
	case s.Arena.TeamWiped(combatant.TeamHeroes):
		m.endLocked(s, false)
	}
}

// statusTick runs one status-effect and AI refresh pass.
func (m *Manager) statusTick(s *Session) {
	for _, h := range s.Arena.All() {
		c := s.Arena.Get(h)
		if !c.Alive() {
			continue
		}
		res := m.effects.ProcessTick(c.ID)
		for src, amount := range res.DamageBySource {
			if amount > 0 {
				m.resolver.DealDamage(src, c, amount, false)
			}
		}
		for src, amount := range res.HealingBySource {
			if amount > 0 && c.Alive() {
				m.resolver.DealHealing(src, c, amount)
			}
		}
		for _, t := range res.Expired {
			m.sink.Publish(event.Event{
				Kind:       event.KindEffectRemoved,
				At:         time.Now(),
				SessionID:  s.ID,
				Target:     c.ID,
				EffectType: t.String(),
			})
		}
	}

	m.threats.Decay(m.combatCfg.ThreatDecay)

	for _, eh := range s.Arena.Living(combatant.TeamEnemies) {
		e := s.Arena.Get(eh)
		adv := s.ai[e.ID].Advance(
			s.elapsed,
			e.HealthPercent(),
			s.phases[e.ID],
			m.combatCfg.EnrageThreshold,
			m.combatCfg.AdaptationIntervalSeconds,
		)
		if adv.PhaseChanged {
			m.sink.Publish(event.Event{
				Kind:       event.KindPhaseChanged,
				At:         time.Now(),
				SessionID:  s.ID,
				Actor:      e.ID,
				PhaseIndex: adv.PhaseIndex,
				PhaseName:  adv.Phase.Name,
			})
			m.log.Info("boss phase change",
				zap.String("session_id", s.ID),
				zap.String("enemy", e.ID),
				zap.Int("phase", adv.PhaseIndex),
				zap.String("name", adv.Phase.Name),
			)
		}
		if adv.EnragedNow {
			m.sink.Publish(event.Event{
				Kind:      event.KindEnemyEnraged,
				At:        time.Now(),
				SessionID: s.ID,
				Actor:     e.ID,
			})
			m.log.Info("enemy enraged",
				zap.String("session_id", s.ID),
				zap.String("enemy", e.ID),
			)
		}
	}

	for _, p := range s.expirePets() {
		m.log.Debug("pet expired",
			zap.String("session_id", s.ID),
			zap.String("pet", p.ID),
			zap.String("owner", p.OwnerID),
		)
	}

	s.Round++
}

// act selects a target and ability for the combatant and executes it.
func (m *Manager) act(s *Session, h combatant.Handle) {
	actor := s.Arena.Get(h)

	m.sink.Publish(event.Event{
		Kind:      event.KindUnitActing,
		At:        time.Now(),
		SessionID: s.ID,
		Actor:     actor.ID,
	})

	var target combatant.Handle
	if actor.IsHero() {
		target = tactics.HeroTarget(s.Arena, h)
	} else {
		target = tactics.EnemyTarget(s.Arena, h, s.ai[actor.ID], m.threats, m.combatCfg.TankThreatBonus, m.src)
	}
	if target == tactics.NoTarget {
		return
	}

	kit := m.catalog.Kit(actor.KitKey())
	def := tactics.SelectAbility(kit, s.ai[actor.ID], s.phases[actor.ID], s.elapsed, m.src)
	m.execute(s, h, target, def)
}

// End finishes the active session with the given outcome. Normally the tick
// loop calls this itself when a side is wiped; the public method exists for
// forfeits and operator intervention.
func (m *Manager) End(victory bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ErrNoSession
	}
	m.endLocked(m.session, victory)
	return nil
}

// endLocked finishes s: pending deferred actions are dropped, fallen heroes
// are revived to an outcome-dependent health fraction, rewards are computed,
// the battle report is dispatched, and the session slot is cleared.
//
// Must be called with m.mu held.
func (m *Manager) endLocked(s *Session, victory bool) {
	s.Phase = PhaseEnded
	v := victory
	s.Victory = &v
	s.deferred = nil

	revivePct := m.combatCfg.ReviveDefeatPercent
	if victory {
		revivePct = m.combatCfg.ReviveVictoryPercent
	}
	for _, hh := range s.Arena.Team(combatant.TeamHeroes) {
		hero := s.Arena.Get(hh)
		if hero.Alive() {
			continue
		}
		restored := int(math.Floor(float64(hero.Stats.MaxHealth) * revivePct))
		if restored < 1 {
			restored = 1
		}
		hero.Stats.Health = restored
	}

	rewards := m.computeRewards(s, victory)
	report := m.buildReport(s, victory, rewards)

	m.sink.Publish(event.Event{
		Kind:      event.KindCombatEnded,
		At:        time.Now(),
		SessionID: s.ID,
		Victory:   victory,
	})
	m.log.Info("combat session ended",
		zap.String("session_id", s.ID),
		zap.Bool("victory", victory),
		zap.Int("rounds", s.Round),
		zap.Float64("duration_seconds", s.elapsed),
		zap.Int("xp", rewards.XP),
		zap.Int("currency", rewards.Currency),
	)

	if m.reports != nil {
		go func(rep Report) {
			ctx, cancel := context.WithTimeout(context.Background(), reportStoreTimeout)
			defer cancel()
			if err := m.reports.StoreReport(ctx, rep); err != nil {
				m.log.Error("storing battle report",
					zap.String("session_id", rep.SessionID),
					zap.Error(err),
				)
			}
		}(report)
	}

	m.effects.Reset()
	m.threats.Reset()
	m.session = nil
}

// SetPaused pauses or resumes the active session. Pausing is idempotent.
func (m *Manager) SetPaused(paused bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ErrNoSession
	}
	switch {
	case paused && m.session.Phase == PhaseActive:
		m.session.Phase = PhasePaused
		m.log.Info("combat session paused", zap.String("session_id", m.session.ID))
	case !paused && m.session.Phase == PhasePaused:
		m.session.Phase = PhaseActive
		m.log.Info("combat session resumed", zap.String("session_id", m.session.ID))
	}
	return nil
}
