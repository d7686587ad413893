// Package config provides Viper-based configuration loading for the combat
// engine and its tools.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TACTICS_RULES_DEATH_SAVE_DC.
const EnvPrefix = "TACTICS"

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RulesConfig holds the tunable numbers of the combat rules.
type RulesConfig struct {
	DeathSaveDC           int  `mapstructure:"death_save_dc"`
	ShieldACBonus         int  `mapstructure:"shield_ac_bonus"`
	CounterspellSlotLevel int  `mapstructure:"counterspell_slot_level"`
	UncannyDodgeLevel     int  `mapstructure:"uncanny_dodge_level"`
	MassiveDamage         bool `mapstructure:"massive_damage"`
	// ActionTimeout is how long a player turn may idle before the combatant
	// dodges. Zero disables the timer.
	ActionTimeout time.Duration `mapstructure:"action_timeout"`
}

// ContentConfig points at content directories. An empty directory selects
// the built-in content.
type ContentConfig struct {
	ConditionsDir string `mapstructure:"conditions_dir"`
	ProfilesDir   string `mapstructure:"profiles_dir"`
	ScriptsDir    string `mapstructure:"scripts_dir"`
	TemplatesDir  string `mapstructure:"templates_dir"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
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

// CombatLogConfig controls persisting narration to PostgreSQL.
type CombatLogConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Rules     RulesConfig     `mapstructure:"rules"`
	Content   ContentConfig   `mapstructure:"content"`
	Database  DatabaseConfig  `mapstructure:"database"`
	CombatLog CombatLogConfig `mapstructure:"combat_log"`
}

// Validate checks all configuration invariants. The database section is only
// checked when the combat log is enabled.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateRules(c.Rules); err != nil {
		errs = append(errs, err.Error())
	}
	if c.CombatLog.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateRules(r RulesConfig) error {
	var errs []string
	if r.DeathSaveDC < 1 || r.DeathSaveDC > 20 {
		errs = append(errs, fmt.Sprintf("rules.death_save_dc must be 1-20, got %d", r.DeathSaveDC))
	}
	if r.ShieldACBonus < 0 {
		errs = append(errs, fmt.Sprintf("rules.shield_ac_bonus must be >= 0, got %d", r.ShieldACBonus))
	}
	if r.CounterspellSlotLevel < 1 || r.CounterspellSlotLevel > 9 {
		errs = append(errs, fmt.Sprintf("rules.counterspell_slot_level must be 1-9, got %d", r.CounterspellSlotLevel))
	}
	if r.UncannyDodgeLevel < 1 || r.UncannyDodgeLevel > 20 {
		errs = append(errs, fmt.Sprintf("rules.uncanny_dodge_level must be 1-20, got %d", r.UncannyDodgeLevel))
	}
	if r.ActionTimeout < 0 {
		errs = append(errs, "rules.action_timeout must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path loads the
// defaults and the environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance carrying the defaults and the TACTICS_
// environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
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

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("rules.death_save_dc", 10)
	v.SetDefault("rules.shield_ac_bonus", 5)
	v.SetDefault("rules.counterspell_slot_level", 3)
	v.SetDefault("rules.uncanny_dodge_level", 5)
	v.SetDefault("rules.massive_damage", true)
	v.SetDefault("rules.action_timeout", "30s")

	v.SetDefault("content.conditions_dir", "")
	v.SetDefault("content.profiles_dir", "")
	v.SetDefault("content.scripts_dir", "content/scripts")
	v.SetDefault("content.templates_dir", "content/templates")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tactics")
	v.SetDefault("database.password", "tactics")
	v.SetDefault("database.name", "tactics")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("combat_log.enabled", false)
}
