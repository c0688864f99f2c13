package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FORCEGRAPH_"

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from each existing file into the process
// environment. Missing files are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "load %s", p)
		}
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), cfg)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	return nil
}

// Save writes cfg to path in the format implied by its extension.
func Save(path string, cfg *Config) error {
	if err := errors.ValidatePath(path); err != nil {
		return err
	}
	var data []byte
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
			return fmt.Errorf("encode toml: %w", err)
		}
		data = []byte(b.String())
	case ".yaml", ".yml":
		out, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		data = out
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unsupported config format %q (use .toml, .yaml or .yml)", ext)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// envVar binds one environment variable to a config field.
type envVar struct {
	name string
	set  func(cfg *Config, v string) error
}

var envVars = []envVar{
	{"LOG_LEVEL", func(c *Config, v string) error { c.LogLevel = strings.ToLower(v); return nil }},

	{"CANVAS_WIDTH", floatVar(func(c *Config) *float64 { return &c.Canvas.Width })},
	{"CANVAS_HEIGHT", floatVar(func(c *Config) *float64 { return &c.Canvas.Height })},
	{"CANVAS_SCALE", floatVar(func(c *Config) *float64 { return &c.Canvas.Scale })},
	{"CANVAS_SEED", func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		c.Canvas.Seed = n
		return nil
	}},
	{"CANVAS_FORMATS", func(c *Config, v string) error {
		c.Canvas.Formats = splitList(v)
		return nil
	}},

	{"LAYOUT_REPULSION", floatVar(func(c *Config) *float64 { return &c.Layout.Repulsion })},
	{"LAYOUT_REST_LENGTH", floatVar(func(c *Config) *float64 { return &c.Layout.RestLength })},
	{"LAYOUT_SPRING", floatVar(func(c *Config) *float64 { return &c.Layout.Spring })},
	{"LAYOUT_DAMPING", floatVar(func(c *Config) *float64 { return &c.Layout.Damping })},
	{"LAYOUT_ITERATIONS", intVar(func(c *Config) *int { return &c.Layout.Iterations })},

	{"PALETTE_STRATEGY", func(c *Config, v string) error { c.Palette.Strategy = v; return nil }},
	{"PALETTE_STORE", func(c *Config, v string) error { c.Palette.Store = v; return nil }},
	{"PALETTE_FILE", func(c *Config, v string) error { c.Palette.File = v; return nil }},

	{"SERVER_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"SERVER_CACHE_ENTRIES", intVar(func(c *Config) *int { return &c.Server.CacheEntries })},
	{"SERVER_RENDER_TIMEOUT", func(c *Config, v string) error { return c.Server.RenderTimeout.UnmarshalText([]byte(v)) }},

	{"REDIS_ADDR", func(c *Config, v string) error { c.Redis.Addr = v; return nil }},
	{"REDIS_PASSWORD", func(c *Config, v string) error { c.Redis.Password = v; return nil }},
	{"REDIS_DB", intVar(func(c *Config) *int { return &c.Redis.DB })},
	{"REDIS_CACHE", func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		c.Redis.Cache = b
		return nil
	}},
}

// ApplyEnv applies FORCEGRAPH_* overrides found through lookup.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	for _, ev := range envVars {
		v, ok := lookup(EnvPrefix + ev.name)
		if !ok || v == "" {
			continue
		}
		if err := ev.set(cfg, v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s%s", EnvPrefix, ev.name)
		}
	}
	return nil
}

// EnvNames lists the supported environment variables.
func EnvNames() []string {
	names := make([]string, len(envVars))
	for i, ev := range envVars {
		names[i] = EnvPrefix + ev.name
	}
	return names
}

func floatVar(field func(*Config) *float64) func(*Config, string) error {
	return func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*field(c) = f
		return nil
	}
}

func intVar(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
