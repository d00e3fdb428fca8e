// Package config provides Viper-based configuration loading for the combat
// simulation server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// CombatConfig holds the numeric tuning knobs for the combat core.
type CombatConfig struct {
	// StatusTickSeconds is the period of the status-effect/AI refresh tick.
	StatusTickSeconds float64 `mapstructure:"status_tick_seconds"`
	// MissChance is the probability that any attack misses outright.
	MissChance float64 `mapstructure:"miss_chance"`
	// BaseCritChance is the flat critical chance added to the attacker's crit stat.
	BaseCritChance float64 `mapstructure:"base_crit_chance"`
	// CritMultiplier scales damage on a critical hit.
	CritMultiplier float64 `mapstructure:"crit_multiplier"`
	// DamageVariance is the symmetric random variance applied to damage, as a fraction.
	DamageVariance float64 `mapstructure:"damage_variance"`
	// EnrageThreshold is the health fraction below which an enemy enrages.
	EnrageThreshold float64 `mapstructure:"enrage_threshold"`
	// TauntBonus is the flat threat added above the current maximum by a taunt.
	TauntBonus float64 `mapstructure:"taunt_bonus"`
	// TankThreatBonus is the flat bonus defensive enemies grant tank-role heroes
	// when comparing threat values.
	TankThreatBonus float64 `mapstructure:"tank_threat_bonus"`
	// ThreatDecay is the fraction of threat removed on every status tick.
	ThreatDecay float64 `mapstructure:"threat_decay"`
	// MeleeDeliverySeconds is the deferred-delivery delay for melee abilities.
	MeleeDeliverySeconds float64 `mapstructure:"melee_delivery_seconds"`
	// EnemyInitialDelaySeconds seeds every enemy's first attack cooldown.
	EnemyInitialDelaySeconds float64 `mapstructure:"enemy_initial_delay_seconds"`
	// AdaptationIntervalSeconds is the elapsed-time window per AI adaptation level.
	AdaptationIntervalSeconds float64 `mapstructure:"adaptation_interval_seconds"`
	// ReviveVictoryPercent is the health fraction fallen heroes recover on victory.
	ReviveVictoryPercent float64 `mapstructure:"revive_victory_percent"`
	// ReviveDefeatPercent is the health fraction fallen heroes recover on defeat.
	ReviveDefeatPercent float64 `mapstructure:"revive_defeat_percent"`
}

// RewardsConfig holds reward computation tuning.
type RewardsConfig struct {
	// XPScale multiplies the summed enemy experience values.
	XPScale float64 `mapstructure:"xp_scale"`
	// CurrencyScale multiplies the summed enemy currency values.
	CurrencyScale float64 `mapstructure:"currency_scale"`
	// DefeatFraction is the share of rewards granted on a lost encounter.
	DefeatFraction float64 `mapstructure:"defeat_fraction"`
}

// DatabaseConfig holds PostgreSQL connection settings for the battle-report sink.
type DatabaseConfig struct {
	// Enabled controls whether battle reports are persisted at all.
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// EventBusConfig holds in-memory event bus settings.
type EventBusConfig struct {
	// BufferSize is the per-subscriber channel buffer for combat events.
	BufferSize int64 `mapstructure:"buffer_size"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// Config is the top-level application configuration.
type Config struct {
	Combat   CombatConfig   `mapstructure:"combat"`
	Rewards  RewardsConfig  `mapstructure:"rewards"`
	Database DatabaseConfig `mapstructure:"database"`
	EventBus EventBusConfig `mapstructure:"eventbus"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRewards(c.Rewards); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if err := validateEventBus(c.EventBus); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCombat(cc CombatConfig) error {
	var errs []string
	if cc.StatusTickSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("combat.status_tick_seconds must be > 0, got %g", cc.StatusTickSeconds))
	}
	if cc.MissChance < 0 || cc.MissChance >= 1 {
		errs = append(errs, fmt.Sprintf("combat.miss_chance must be in [0, 1), got %g", cc.MissChance))
	}
	if cc.BaseCritChance < 0 || cc.BaseCritChance >= 1 {
		errs = append(errs, fmt.Sprintf("combat.base_crit_chance must be in [0, 1), got %g", cc.BaseCritChance))
	}
	if cc.CritMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("combat.crit_multiplier must be >= 1, got %g", cc.CritMultiplier))
	}
	if cc.DamageVariance < 0 || cc.DamageVariance >= 1 {
		errs = append(errs, fmt.Sprintf("combat.damage_variance must be in [0, 1), got %g", cc.DamageVariance))
	}
	if cc.EnrageThreshold < 0 || cc.EnrageThreshold > 1 {
		errs = append(errs, fmt.Sprintf("combat.enrage_threshold must be in [0, 1], got %g", cc.EnrageThreshold))
	}
	if cc.TauntBonus < 0 {
		errs = append(errs, fmt.Sprintf("combat.taunt_bonus must be >= 0, got %g", cc.TauntBonus))
	}
	if cc.TankThreatBonus < 0 {
		errs = append(errs, fmt.Sprintf("combat.tank_threat_bonus must be >= 0, got %g", cc.TankThreatBonus))
	}
	if cc.ThreatDecay < 0 || cc.ThreatDecay >= 1 {
		errs = append(errs, fmt.Sprintf("combat.threat_decay must be in [0, 1), got %g", cc.ThreatDecay))
	}
	if cc.MeleeDeliverySeconds < 0 {
		errs = append(errs, fmt.Sprintf("combat.melee_delivery_seconds must be >= 0, got %g", cc.MeleeDeliverySeconds))
	}
	if cc.EnemyInitialDelaySeconds < 0 {
		errs = append(errs, fmt.Sprintf("combat.enemy_initial_delay_seconds must be >= 0, got %g", cc.EnemyInitialDelaySeconds))
	}
	if cc.AdaptationIntervalSeconds <= 0 {
		errs = append(errs, fmt.Sprintf("combat.adaptation_interval_seconds must be > 0, got %g", cc.AdaptationIntervalSeconds))
	}
	if cc.ReviveVictoryPercent < 0 || cc.ReviveVictoryPercent > 1 {
		errs = append(errs, fmt.Sprintf("combat.revive_victory_percent must be in [0, 1], got %g", cc.ReviveVictoryPercent))
	}
	if cc.ReviveDefeatPercent < 0 || cc.ReviveDefeatPercent > 1 {
		errs = append(errs, fmt.Sprintf("combat.revive_defeat_percent must be in [0, 1], got %g", cc.ReviveDefeatPercent))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateRewards(rc RewardsConfig) error {
	var errs []string
	if rc.XPScale < 0 {
		errs = append(errs, fmt.Sprintf("rewards.xp_scale must be >= 0, got %g", rc.XPScale))
	}
	if rc.CurrencyScale < 0 {
		errs = append(errs, fmt.Sprintf("rewards.currency_scale must be >= 0, got %g", rc.CurrencyScale))
	}
	if rc.DefeatFraction < 0 || rc.DefeatFraction > 1 {
		errs = append(errs, fmt.Sprintf("rewards.defeat_fraction must be in [0, 1], got %g", rc.DefeatFraction))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEventBus(e EventBusConfig) error {
	if e.BufferSize < 0 {
		return fmt.Errorf("eventbus.buffer_size must be >= 0, got %d", e.BufferSize)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns the built-in configuration used when no file overrides apply.
// Useful for tests and for embedding the core without a config file.
//
// Postcondition: The returned Config passes Validate.
func Defaults() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Unmarshalling pure defaults cannot fail; every key is statically typed.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("combat.status_tick_seconds", 1.0)
	v.SetDefault("combat.miss_chance", 0.05)
	v.SetDefault("combat.base_crit_chance", 0.05)
	v.SetDefault("combat.crit_multiplier", 1.5)
	v.SetDefault("combat.damage_variance", 0.1)
	v.SetDefault("combat.enrage_threshold", 0.25)
	v.SetDefault("combat.taunt_bonus", 1000.0)
	v.SetDefault("combat.tank_threat_bonus", 200.0)
	v.SetDefault("combat.threat_decay", 0.02)
	v.SetDefault("combat.melee_delivery_seconds", 0.35)
	v.SetDefault("combat.enemy_initial_delay_seconds", 1.5)
	v.SetDefault("combat.adaptation_interval_seconds", 30.0)
	v.SetDefault("combat.revive_victory_percent", 0.25)
	v.SetDefault("combat.revive_defeat_percent", 0.10)

	v.SetDefault("rewards.xp_scale", 1.0)
	v.SetDefault("rewards.currency_scale", 1.0)
	v.SetDefault("rewards.defeat_fraction", 0.25)

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "skirmish")
	v.SetDefault("database.password", "skirmish")
	v.SetDefault("database.name", "skirmish")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("eventbus.buffer_size", 256)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
