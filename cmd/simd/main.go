// Package main provides the headless combat simulation daemon. It loads the
// content catalogs, wires the combat core to the in-process event bus and the
// optional battle-report store, and runs encounters on a real-time tick clock
// until terminated.
package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/calder-games/skirmish/internal/config"
	"github.com/calder-games/skirmish/internal/eventbus"
	"github.com/calder-games/skirmish/internal/game/ability"
	"github.com/calder-games/skirmish/internal/game/bestiary"
	"github.com/calder-games/skirmish/internal/game/dice"
	"github.com/calder-games/skirmish/internal/game/effect"
	"github.com/calder-games/skirmish/internal/game/encounter"
	"github.com/calder-games/skirmish/internal/game/event"
	"github.com/calder-games/skirmish/internal/game/party"
	"github.com/calder-games/skirmish/internal/observability"
	"github.com/calder-games/skirmish/internal/server"
	"github.com/calder-games/skirmish/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	abilitiesDir := flag.String("abilities-dir", "content/abilities", "path to ability kit YAML directory")
	enemiesDir := flag.String("enemies-dir", "content/enemies", "path to enemy template YAML directory")
	partyDir := flag.String("party-dir", "content/party", "path to hero YAML directory")
	effectsDir := flag.String("effects-dir", "content/effects", "path to effect override YAML directory; empty = built-in defaults")
	group := flag.String("encounter", "goblin-raider,goblin-raider,orc-warlord", "comma-separated enemy template ids to fight")
	tickInterval := flag.Duration("tick", 100*time.Millisecond, "simulation tick interval")
	rest := flag.Duration("rest", 5*time.Second, "pause between consecutive encounters")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	src := dice.NewLoggedSource(dice.NewCryptoSource(), logger)

	// Content catalogs.
	catalog, err := ability.LoadDirectory(*abilitiesDir)
	if err != nil {
		logger.Fatal("loading ability kits", zap.Error(err))
	}
	logger.Info("loaded ability kits", zap.Int("owners", len(catalog.Owners())))

	registry, fixes, err := bestiary.LoadDirectory(*enemiesDir)
	if err != nil {
		logger.Fatal("loading enemy templates", zap.Error(err))
	}
	for id, corrections := range fixes {
		logger.Warn("enemy template normalized",
			zap.String("template", id),
			zap.Strings("fixes", corrections),
		)
	}
	logger.Info("loaded enemy templates", zap.Int("count", len(registry.All())))

	roster, err := party.LoadRoster(*partyDir)
	if err != nil {
		logger.Fatal("loading party roster", zap.Error(err))
	}
	logger.Info("loaded party roster",
		zap.Int("heroes", roster.Size()),
		zap.Int("average_level", roster.AverageLevel()),
	)

	effectCatalog := effect.NewCatalog()
	if *effectsDir != "" {
		if err := effectCatalog.LoadOverrides(*effectsDir); err != nil {
			logger.Fatal("loading effect overrides", zap.Error(err))
		}
	}
	effects := effect.NewEngine(effectCatalog)

	// Resolve the requested enemy group once; every encounter reuses it.
	var templates []*bestiary.Template
	for _, id := range strings.Split(*group, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		tmpl, ok := registry.Get(id)
		if !ok {
			logger.Fatal("unknown enemy template", zap.String("template", id))
		}
		templates = append(templates, tmpl)
	}
	if len(templates) == 0 {
		logger.Fatal("encounter flag resolved to an empty enemy group")
	}

	bus := eventbus.New(cfg.EventBus, logger)

	// Optional battle-report persistence.
	var reports encounter.ReportSink
	var pool *postgres.Pool
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		reports = postgres.NewBattleReportRepository(pool.DB())
	}

	mgr := encounter.NewManager(
		logger,
		cfg.Combat,
		cfg.Rewards,
		catalog,
		roster,
		bus,
		reports,
		src,
		effects,
	)

	lifecycle := server.NewLifecycle(logger)

	// Event consumer: mirrors bus traffic into the log so a simulation run is
	// observable without a frontend.
	consumerCtx, stopConsumers := context.WithCancel(ctx)
	lifecycle.Add("event-log", &server.FuncService{
		StartFn: func() error {
			kinds := []event.Kind{
				event.KindCombatStarted,
				event.KindCombatEnded,
				event.KindDamageApplied,
				event.KindHealingApplied,
				event.KindActionExecuted,
				event.KindEffectApplied,
				event.KindEffectRemoved,
				event.KindPhaseChanged,
				event.KindEnemyEnraged,
			}
			for _, kind := range kinds {
				msgs, err := bus.Subscribe(consumerCtx, kind)
				if err != nil {
					return err
				}
				go func() {
					for msg := range msgs {
						ev, err := eventbus.Decode(msg)
						if err != nil {
							logger.Warn("decoding combat event", zap.Error(err))
							msg.Ack()
							continue
						}
						logger.Info("combat event",
							zap.String("kind", string(ev.Kind)),
							zap.String("actor", ev.Actor),
							zap.String("target", ev.Target),
							zap.String("ability", ev.Ability),
							zap.Int("amount", ev.Amount),
							zap.Bool("crit", ev.Crit),
							zap.Bool("miss", ev.Miss),
						)
						msg.Ack()
					}
				}()
			}
			<-consumerCtx.Done()
			return nil
		},
		StopFn: stopConsumers,
	})

	// Encounter runner: drives back-to-back encounters on the tick clock.
	runnerCtx, stopRunner := context.WithCancel(ctx)
	lifecycle.Add("encounter-runner", &server.FuncService{
		StartFn: func() error {
			for {
				if _, err := mgr.Start(templates); err != nil {
					return err
				}
				ticker := time.NewTicker(*tickInterval)
				last := time.Now()
				for mgr.Session() != nil {
					select {
					case <-runnerCtx.Done():
						ticker.Stop()
						return nil
					case now := <-ticker.C:
						mgr.Tick(now.Sub(last).Seconds())
						last = now
					}
				}
				ticker.Stop()

				select {
				case <-runnerCtx.Done():
					return nil
				case <-time.After(*rest):
				}
			}
		},
		StopFn: stopRunner,
	})

	logger.Info("simulation daemon initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Int("enemy_group", len(templates)),
	)

	if pool != nil {
		defer pool.Close()
	}
	defer bus.Close()

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("daemon error", zap.Error(err))
	}
}
