// Package config provides Viper-based configuration loading for raidrank.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	// Enabled turns on persistence of ranking runs.
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

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DatasetConfig locates the snapshot and the content tables.
type DatasetConfig struct {
	GameMasterPath string `mapstructure:"gamemaster_path"`
	// SourceURL is where refresh downloads the snapshot from.
	SourceURL     string `mapstructure:"source_url"`
	CPMPath       string `mapstructure:"cpm_path"`
	TypeChartPath string `mapstructure:"typechart_path"`
	// PatchesPath is optional; empty uses the built-in patch set.
	PatchesPath string `mapstructure:"patches_path"`
	// PatchScriptsDir is optional; empty skips Lua patch scripts.
	PatchScriptsDir        string `mapstructure:"patch_scripts_dir"`
	ScriptInstructionLimit int    `mapstructure:"script_instruction_limit"`
	HiddenPower            bool   `mapstructure:"hidden_power"`
}

// EngineConfig holds attacker stats, parallelism and defender class toggles.
type EngineConfig struct {
	Level             int  `mapstructure:"level"`
	AtkIV             int  `mapstructure:"atk_iv"`
	DefIV             int  `mapstructure:"def_iv"`
	HPIV              int  `mapstructure:"hp_iv"`
	Workers           int  `mapstructure:"workers"`
	IncludeLegendary  bool `mapstructure:"include_legendary"`
	IncludeMythical   bool `mapstructure:"include_mythical"`
	IncludeMega       bool `mapstructure:"include_mega"`
	IncludeUltraBeast bool `mapstructure:"include_ultra_beast"`
}

// RefreshConfig holds snapshot download settings.
type RefreshConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Refresh  RefreshConfig  `mapstructure:"refresh"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string
	for _, err := range []error{
		validateLogging(c.Logging),
		validateDataset(c.Dataset),
		validateEngine(c.Engine),
		validateRefresh(c.Refresh),
	} {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Database.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateDataset(d DatasetConfig) error {
	var errs []string
	if d.GameMasterPath == "" {
		errs = append(errs, "dataset.gamemaster_path must not be empty")
	}
	if d.CPMPath == "" {
		errs = append(errs, "dataset.cpm_path must not be empty")
	}
	if d.TypeChartPath == "" {
		errs = append(errs, "dataset.typechart_path must not be empty")
	}
	if d.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("dataset.script_instruction_limit must be >= 0, got %d", d.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if e.Level < 1 {
		errs = append(errs, fmt.Sprintf("engine.level must be >= 1, got %d", e.Level))
	}
	ivs := []struct {
		name string
		iv   int
	}{{"atk_iv", e.AtkIV}, {"def_iv", e.DefIV}, {"hp_iv", e.HPIV}}
	for _, s := range ivs {
		if s.iv < 0 || s.iv > 15 {
			errs = append(errs, fmt.Sprintf("engine.%s must be 0-15, got %d", s.name, s.iv))
		}
	}
	if e.Workers < 1 {
		errs = append(errs, fmt.Sprintf("engine.workers must be >= 1, got %d", e.Workers))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateRefresh(r RefreshConfig) error {
	if r.Timeout <= 0 {
		return fmt.Errorf("refresh.timeout must be positive, got %s", r.Timeout)
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

	// Environment variable overrides with RAIDRANK_ prefix
	v.SetEnvPrefix("RAIDRANK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
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

// Defaults returns a Viper instance holding only the default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("dataset.gamemaster_path", "content/gamemaster.json")
	v.SetDefault("dataset.source_url", "https://raw.githubusercontent.com/PokeMiners/game_masters/master/latest/latest.json")
	v.SetDefault("dataset.cpm_path", "content/cpm.yaml")
	v.SetDefault("dataset.typechart_path", "content/typechart.yaml")
	v.SetDefault("dataset.patches_path", "")
	v.SetDefault("dataset.patch_scripts_dir", "content/scripts/patches")
	v.SetDefault("dataset.script_instruction_limit", 100000)
	v.SetDefault("dataset.hidden_power", true)

	v.SetDefault("engine.level", 40)
	v.SetDefault("engine.atk_iv", 15)
	v.SetDefault("engine.def_iv", 15)
	v.SetDefault("engine.hp_iv", 15)
	v.SetDefault("engine.workers", 1)
	v.SetDefault("engine.include_legendary", true)
	v.SetDefault("engine.include_mythical", true)
	v.SetDefault("engine.include_mega", true)
	v.SetDefault("engine.include_ultra_beast", true)

	v.SetDefault("refresh.timeout", "2m")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "raidrank")
	v.SetDefault("database.password", "raidrank")
	v.SetDefault("database.name", "raidrank")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 0)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
