// Package config loads forcegraph settings from TOML or YAML files, a .env
// file and FORCEGRAPH_* environment variables.
//
// Precedence, lowest first: [Default], the config file, environment
// variables. Command-line flags are applied by the CLI on top.
//
//	cfg, err := config.Load("forcegraph.toml")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(table, cfg.Layout, logger)
//
// [Watcher] reloads the file on change for long-running processes.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/layout"
)

// Palette store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the complete settings tree.
type Config struct {
	LogLevel string         `toml:"log_level" yaml:"log_level" validate:"oneof=debug info warn error"`
	Layout   layout.Params  `toml:"layout" yaml:"layout"`
	Canvas   CanvasConfig   `toml:"canvas" yaml:"canvas"`
	Palette  PaletteConfig  `toml:"palette" yaml:"palette"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	Redis    RedisConfig    `toml:"redis" yaml:"redis"`
}

// CanvasConfig holds render defaults.
type CanvasConfig struct {
	Width       float64  `toml:"width" yaml:"width" validate:"gte=0,lte=20000"`
	Height      float64  `toml:"height" yaml:"height" validate:"gte=0,lte=20000"`
	Seed        uint64   `toml:"seed" yaml:"seed"`
	Formats     []string `toml:"formats" yaml:"formats" validate:"dive,oneof=svg png pdf json dot"`
	Interactive bool     `toml:"interactive" yaml:"interactive"`
	Scale       float64  `toml:"scale" yaml:"scale" validate:"gte=0,lte=8"`
}

// PaletteConfig selects the color strategy and where assignments live.
type PaletteConfig struct {
	Strategy string   `toml:"strategy" yaml:"strategy" validate:"oneof=hash first-seen"`
	Store    string   `toml:"store" yaml:"store" validate:"oneof=memory file redis"`
	File     string   `toml:"file,omitempty" yaml:"file,omitempty"`
	Colors   []string `toml:"colors,omitempty" yaml:"colors,omitempty"`
}

// ServerConfig configures `forcegraph serve`.
type ServerConfig struct {
	Addr          string   `toml:"addr" yaml:"addr" validate:"required"`
	ReadTimeout   Duration `toml:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout  Duration `toml:"write_timeout" yaml:"write_timeout" validate:"gte=0"`
	RenderTimeout Duration `toml:"render_timeout" yaml:"render_timeout" validate:"gte=0"`
	MaxBodyBytes  int64    `toml:"max_body_bytes" yaml:"max_body_bytes" validate:"gte=0"`
	CacheEntries  int      `toml:"cache_entries" yaml:"cache_entries" validate:"gte=0"`
	Metrics       bool     `toml:"metrics" yaml:"metrics"`
}

// RedisConfig is used when the palette store or the artifact cache is Redis.
type RedisConfig struct {
	Addr        string `toml:"addr" yaml:"addr"`
	Password    string `toml:"password,omitempty" yaml:"password,omitempty"`
	DB          int    `toml:"db" yaml:"db" validate:"gte=0"`
	PaletteKey  string `toml:"palette_key" yaml:"palette_key"`
	CachePrefix string `toml:"cache_prefix" yaml:"cache_prefix"`
	Cache       bool   `toml:"cache" yaml:"cache"`
}

// Duration is a time.Duration written as "30s" in config files.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(b)))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Layout:   layout.DefaultParams(),
		Canvas: CanvasConfig{
			Width:   800,
			Height:  600,
			Formats: []string{"svg"},
			Scale:   2,
		},
		Palette: PaletteConfig{
			Strategy: "hash",
			Store:    StoreMemory,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			ReadTimeout:   Duration(15 * time.Second),
			WriteTimeout:  Duration(60 * time.Second),
			RenderTimeout: Duration(30 * time.Second),
			MaxBodyBytes:  5 << 20,
			CacheEntries:  256,
			Metrics:       true,
		},
		Redis: RedisConfig{
			Addr:        "localhost:6379",
			PaletteKey:  "forcegraph:palette",
			CachePrefix: "forcegraph:artifact:",
		},
	}
}

var validate = validator.New()

// Validate checks every section and returns an INVALID_CONFIG error naming
// the first violation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid configuration")
	}
	for _, color := range c.Palette.Colors {
		if err := errors.ValidateHexColor(color); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "palette.colors")
		}
	}
	if c.Palette.Store == StoreFile && c.Palette.File != "" {
		if err := errors.ValidatePath(c.Palette.File); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "palette.file")
		}
	}
	if (c.Palette.Store == StoreRedis || c.Redis.Cache) && c.Redis.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "redis.addr is required when redis is enabled")
	}
	return nil
}
