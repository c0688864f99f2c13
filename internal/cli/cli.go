// Package cli implements the forcegraph command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/buildinfo"
	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/config"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/palette"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "forcegraph"

// defaultEnvFile is loaded before the environment is read, if present.
const defaultEnvFile = ".env"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	envFile    string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Forcegraph lays out and renders relationship graphs",
		Long:         `Forcegraph computes force-directed layouts for typed relationship graphs and renders them as interactive SVG, PNG, PDF, JSON or Graphviz DOT.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (.toml, .yaml or .yml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", defaultEnvFile, "dotenv file read before FORCEGRAPH_* variables")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.paletteCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves settings from the dotenv file, the config file and the
// environment, then applies the configured log level.
func (c *CLI) loadConfig() error {
	if c.envFile != "" {
		if err := config.LoadDotEnv(c.envFile); err != nil {
			return err
		}
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		c.Logger.SetLevel(level)
	}
	c.cfg = cfg
	return nil
}

// config returns the loaded settings, or the defaults when a command runs
// without the root pre-run (tests).
func (c *CLI) config() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// backend bundles a runner with the connections it depends on.
type backend struct {
	runner *pipeline.Runner
	redis  *redis.Client
}

// Close releases the cache and the Redis connection.
func (b *backend) Close() error {
	err := b.runner.Close()
	if b.redis != nil {
		if cerr := b.redis.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// cacheMode selects the artifact cache a command uses when Redis caching
// is not configured.
type cacheMode int

const (
	cacheOff cacheMode = iota
	cacheFile
	cacheMemory
)

// fileCacheUnless is the mode for one-shot commands with a --no-cache flag.
func fileCacheUnless(noCache bool) cacheMode {
	if noCache {
		return cacheOff
	}
	return cacheFile
}

// newBackend builds the palette and artifact cache described by the config.
func (c *CLI) newBackend(ctx context.Context, mode cacheMode) (*backend, error) {
	cfg := c.config()
	b := &backend{}

	if cfg.Palette.Store == config.StoreRedis || (cfg.Redis.Cache && mode != cacheOff) {
		b.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := pingRedis(ctx, b.redis, redisAttempts, redisDelay); err != nil {
			b.redis.Close()
			return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %s", cfg.Redis.Addr)
		}
	}

	table, err := c.newPalette(cfg, b.redis)
	if err != nil {
		if b.redis != nil {
			b.redis.Close()
		}
		return nil, err
	}

	b.runner = pipeline.NewRunner(table, cfg.Layout, c.Logger)
	b.runner.Cache = c.newCache(cfg, b.redis, mode)
	return b, nil
}

// newPalette creates the color table on the configured store.
func (c *CLI) newPalette(cfg *config.Config, client *redis.Client) (*palette.Table, error) {
	strategy, ok := palette.ParseStrategy(cfg.Palette.Strategy)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown palette strategy %q", cfg.Palette.Strategy)
	}
	opts := []palette.Option{
		palette.WithStrategy(strategy),
		palette.WithColors(cfg.Palette.Colors),
		palette.WithLogger(c.Logger),
	}

	switch cfg.Palette.Store {
	case config.StoreFile:
		path := cfg.Palette.File
		if path == "" {
			p, err := palette.DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = p
		}
		store, err := palette.NewFileStore(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "open palette file")
		}
		c.Logger.Debug("palette store", "backend", "file", "path", path)
		opts = append(opts, palette.WithStore(store))
	case config.StoreRedis:
		c.Logger.Debug("palette store", "backend", "redis", "key", cfg.Redis.PaletteKey)
		opts = append(opts, palette.WithStore(palette.NewRedisStore(client, cfg.Redis.PaletteKey)))
	}
	return palette.New(opts...), nil
}

// newCache picks Redis when enabled, otherwise the cache named by mode.
// Caching only applies to seeded runs.
func (c *CLI) newCache(cfg *config.Config, client *redis.Client, mode cacheMode) cache.Cache {
	switch {
	case mode == cacheOff:
		return cache.NewNullCache()
	case cfg.Redis.Cache && client != nil:
		return cache.NewRedisCache(client, cfg.Redis.CachePrefix)
	case mode == cacheMemory:
		return cache.NewMemoryCache(cfg.Server.CacheEntries)
	}
	dir, err := cache.DefaultFileDir()
	if err != nil {
		c.Logger.Debug("artifact cache disabled", "error", err)
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Debug("artifact cache disabled", "error", err)
		return cache.NewNullCache()
	}
	return fc
}

// =============================================================================
// Options Helpers
// =============================================================================

// defaultOptions maps the canvas section onto pipeline options.
func defaultOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Width:       cfg.Canvas.Width,
		Height:      cfg.Canvas.Height,
		Seed:        cfg.Canvas.Seed,
		Formats:     append([]string(nil), cfg.Canvas.Formats...),
		Interactive: cfg.Canvas.Interactive,
		Scale:       cfg.Canvas.Scale,
	}
}

// canvasFlags are shared by every command that lays out a graph.
type canvasFlags struct {
	width  float64
	height float64
	seed   uint64
}

func (f *canvasFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "canvas width")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "canvas height")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed for reproducible layouts (0 = random)")
}

// apply overrides config values with flags the user actually set.
func (f *canvasFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("width") {
		opts.Width = f.width
	}
	if cmd.Flags().Changed("height") {
		opts.Height = f.height
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed = f.seed
	}
}
