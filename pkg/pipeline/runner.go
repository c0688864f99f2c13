package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/palette"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// DefaultCacheTTL is how long cached artifacts live.
const DefaultCacheTTL = 24 * time.Hour

// Runner executes the pipeline against a shared palette.
//
// A Runner holds no per-run state. Concurrent Execute calls are safe as long
// as the palette's store is safe for concurrent use (all provided stores
// are).
type Runner struct {
	Palette *palette.Table
	// Params are the layout constants. Use SetParams once the runner is
	// shared between goroutines.
	Params   layout.Params
	Cache    cache.Cache
	CacheTTL time.Duration
	Logger   *log.Logger

	paramsMu sync.RWMutex
}

// NewRunner creates a runner. A nil table gets a fresh palette, invalid
// params fall back to defaults inside the layout engine, and caching is
// disabled until Cache is set.
func NewRunner(table *palette.Table, params layout.Params, logger *log.Logger) *Runner {
	if table == nil {
		table = palette.New()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Palette:  table,
		Params:   params,
		Cache:    cache.NewNullCache(),
		CacheTTL: DefaultCacheTTL,
		Logger:   logger,
	}
}

// Execute lays out g and renders it in every requested format.
func (r *Runner) Execute(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "graph is required")
	}
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger

	nodes, _ := g.UniqueNodes()
	result := &Result{
		Stats: Stats{
			NodeCount:      len(nodes),
			EdgeCount:      len(g.Edges),
			ValidEdgeCount: len(graph.FilterEdges(nodes, g.Edges)),
		},
	}

	keys := r.cacheKeys(ctx, g, nodes, opts)
	if artifacts, ok := r.lookup(ctx, keys); ok {
		logger.Debug("artifacts served from cache", "formats", opts.Formats)
		result.Artifacts = artifacts
		result.Cached = true
		result.Width, result.Height = opts.Width, opts.Height
		return result, nil
	}

	layoutStart := time.Now()
	renderer := r.Renderer(opts)
	renderer.RenderContext(ctx, g)
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Positions = renderer.Positions()
	result.Width, result.Height = renderer.Extent()

	logger.Info("computed layout",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.ValidEdgeCount,
		"duration", result.Stats.LayoutTime)

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	renderStart := time.Now()
	artifacts, err := Render(ctx, renderer, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Formats, result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts

	logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	r.store(ctx, keys, artifacts, logger)
	return result, nil
}

// Renderer builds a scene renderer over a fresh container sized by opts.
// Callers that need interaction (the explore command) render and click
// through it directly.
func (r *Runner) Renderer(opts Options, extra ...scene.Option) *scene.Renderer {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	opts.SetDefaults()
	layoutOpts := []layout.Option{layout.WithParams(r.params())}
	if opts.Seed != 0 {
		layoutOpts = append(layoutOpts, layout.WithSeed(opts.Seed))
	}
	if len(opts.Pinned) > 0 {
		layoutOpts = append(layoutOpts, layout.WithPinned(opts.Pinned))
	}
	sceneOpts := []scene.Option{
		scene.WithPalette(r.Palette),
		scene.WithSelected(opts.Selected),
		scene.WithLayoutOptions(layoutOpts...),
		scene.WithLogger(opts.Logger),
	}
	return scene.New(scene.NewContainer(opts.Width, opts.Height), append(sceneOpts, extra...)...)
}

// cacheKeys returns one key per format, or nil when the run is not
// cacheable. Type colors are resolved here in node order, matching the
// order the renderer would assign them.
func (r *Runner) cacheKeys(ctx context.Context, g *graph.Graph, nodes []graph.Node, opts Options) map[string]string {
	if opts.Seed == 0 || r.Cache == nil {
		return nil
	}
	if _, ok := r.Cache.(cache.NullCache); ok {
		return nil
	}
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return nil
	}
	colors := make(map[string]string)
	for _, n := range nodes {
		if _, ok := colors[n.Type]; !ok {
			colors[n.Type] = r.Palette.ColorForContext(ctx, n.Type)
		}
	}
	graphHash := cache.Hash(data)
	params := r.params()
	keys := make(map[string]string, len(opts.Formats))
	for _, f := range opts.Formats {
		parts := append(opts.cacheParts(f), graphHash, params, colors)
		keys[f] = cache.Key("artifact", parts...)
	}
	return keys
}

func (r *Runner) lookup(ctx context.Context, keys map[string]string) (map[string][]byte, bool) {
	if len(keys) == 0 {
		return nil, false
	}
	artifacts := make(map[string][]byte, len(keys))
	for format, key := range keys {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			return nil, false
		}
		artifacts[format] = data
	}
	return artifacts, true
}

func (r *Runner) store(ctx context.Context, keys map[string]string, artifacts map[string][]byte, logger *log.Logger) {
	for format, key := range keys {
		if err := r.Cache.Set(ctx, key, artifacts[format], r.CacheTTL); err != nil {
			logger.Warn("cache write failed", "format", format, "error", err)
		}
	}
}

// SetParams replaces the layout constants for subsequent runs.
func (r *Runner) SetParams(p layout.Params) {
	r.paramsMu.Lock()
	defer r.paramsMu.Unlock()
	r.Params = p
}

func (r *Runner) params() layout.Params {
	r.paramsMu.RLock()
	defer r.paramsMu.RUnlock()
	return r.Params
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
