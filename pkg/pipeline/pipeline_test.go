package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forcegraph/pkg/cache"
	"github.com/matzehuels/forcegraph/pkg/errors"
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/palette"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dot", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"svg", []string{"svg"}},
		{" SVG, png ,,json", []string{"svg", "png", "json"}},
		{"svg,svg", []string{"svg"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := ParseFormats(tt.in); !slices.Equal(got, tt.want) {
			t.Errorf("ParseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.Width != DefaultWidth || o.Height != DefaultHeight || o.Scale != DefaultScale {
		t.Errorf("defaults = %vx%v scale %v", o.Width, o.Height, o.Scale)
	}
	if !slices.Equal(o.Formats, []string{FormatSVG}) {
		t.Errorf("default formats = %v", o.Formats)
	}
	if o.Engine != EngineNative {
		t.Errorf("default engine = %q", o.Engine)
	}
	if o.Logger == nil {
		t.Error("default logger not set")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative width", Options{Width: -1}, errors.ErrCodeInvalidInput},
		{"huge height", Options{Height: MaxExtent + 1}, errors.ErrCodeInvalidInput},
		{"scale too large", Options{Scale: 100}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad engine", Options{Engine: "dot"}, errors.ErrCodeInvalidInput},
		{"graphviz engine", Options{Engine: EngineGraphviz}, ""},
		{"ok", Options{Formats: []string{"svg", "dot"}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.SetDefaults()
			err := tt.opts.Validate()
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("Validate() code = %q, want %q (err %v)", got, tt.code, err)
			}
		})
	}
}

func testGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{
			{ID: "a", Name: "Alpha", Type: "Person"},
			{ID: "b", Name: "Beta", Type: "Place"},
			{ID: "c", Name: "Gamma"},
		},
		Edges: []graph.Edge{
			{FromID: "a", ToID: "b", RelationType: "lives_in"},
			{FromID: "b", ToID: "c"},
			{FromID: "c", ToID: "missing"},
		},
		CenterEntityID: "a",
	}
}

func TestExecute(t *testing.T) {
	runner := NewRunner(palette.New(), layout.DefaultParams(), nil)
	result, err := runner.Execute(context.Background(), testGraph(), Options{
		Width:   400,
		Height:  300,
		Seed:    3,
		Formats: []string{FormatSVG, FormatJSON, FormatDOT, FormatPNG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 3 || result.Stats.ValidEdgeCount != 2 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if len(result.Positions) != 3 {
		t.Errorf("positions = %d, want 3", len(result.Positions))
	}
	if result.Width != 400 || result.Height != 300 {
		t.Errorf("extent = %vx%v", result.Width, result.Height)
	}
	if result.Cached {
		t.Error("first run reported cached")
	}
	for _, f := range []string{FormatSVG, FormatJSON, FormatDOT, FormatPNG} {
		if len(result.Artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if got := strings.Count(string(result.Artifacts[FormatSVG]), "<circle"); got != 3 {
		t.Errorf("svg circles = %d, want 3", got)
	}

	var l graph.Layout
	if err := json.Unmarshal(result.Artifacts[FormatJSON], &l); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	for _, n := range l.Nodes {
		p := result.Positions[n.ID]
		if n.X != p.X || n.Y != p.Y {
			t.Errorf("json position for %s disagrees with result", n.ID)
		}
	}
}

func TestExecuteGraphvizEngine(t *testing.T) {
	runner := NewRunner(palette.New(), layout.DefaultParams(), nil)
	result, err := runner.Execute(context.Background(), testGraph(), Options{
		Seed:    3,
		Engine:  EngineGraphviz,
		Formats: []string{FormatSVG},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	svg := string(result.Artifacts[FormatSVG])
	if !strings.Contains(svg, "<svg") {
		t.Fatal("graphviz artifact is not SVG")
	}
	if strings.Contains(svg, "graph-canvas") {
		t.Error("graphviz engine produced the native drawing")
	}
}

func TestExecuteSeedReproducible(t *testing.T) {
	runner := NewRunner(palette.New(), layout.DefaultParams(), nil)
	opts := Options{Seed: 11, Formats: []string{FormatSVG}}
	a, err := runner.Execute(context.Background(), testGraph(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := runner.Execute(context.Background(), testGraph(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if string(a.Artifacts[FormatSVG]) != string(b.Artifacts[FormatSVG]) {
		t.Error("seeded runs produced different SVG")
	}
}

func TestExecuteErrors(t *testing.T) {
	runner := NewRunner(nil, layout.DefaultParams(), nil)
	tests := []struct {
		name string
		g    *graph.Graph
		opts Options
		code errors.Code
	}{
		{"nil graph", nil, Options{}, errors.ErrCodeInvalidGraph},
		{"empty id", &graph.Graph{Nodes: []graph.Node{{ID: ""}}}, Options{}, errors.ErrCodeInvalidGraph},
		{"duplicate id", &graph.Graph{Nodes: []graph.Node{{ID: "a", Name: "first"}, {ID: "a", Name: "second"}}}, Options{}, errors.ErrCodeInvalidGraph},
		{"bad format", testGraph(), Options{Formats: []string{"bmp"}}, errors.ErrCodeInvalidFormat},
		{"bad width", testGraph(), Options{Width: -5}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Execute(context.Background(), tt.g, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestExecuteUsesRunLogger(t *testing.T) {
	var buf bytes.Buffer
	runLogger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	runLogger = runLogger.With("render_id", "r-42")

	runner := NewRunner(nil, layout.DefaultParams(), nil)
	g := testGraph()
	g.Edges = append(g.Edges, graph.Edge{FromID: "a", ToID: "nowhere"})
	if _, err := runner.Execute(context.Background(), g, Options{Seed: 2, Logger: runLogger}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"layout computed", "dropping dangling edges", "render_id=r-42"} {
		if !strings.Contains(out, want) {
			t.Errorf("run logger missing %q:\n%s", want, out)
		}
	}
}

func TestExecuteCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := NewRunner(nil, layout.DefaultParams(), nil)
	if _, err := runner.Execute(ctx, testGraph(), Options{}); err == nil {
		t.Error("Execute with canceled context should fail")
	}
}

func TestExecuteEmptyGraph(t *testing.T) {
	runner := NewRunner(nil, layout.DefaultParams(), nil)
	result, err := runner.Execute(context.Background(), &graph.Graph{}, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(string(result.Artifacts[FormatSVG]), "No graph data to display.") {
		t.Error("empty graph SVG missing hint")
	}
}

func TestExecuteCache(t *testing.T) {
	runner := NewRunner(palette.New(), layout.DefaultParams(), nil)
	mem := cache.NewMemoryCache(16)
	runner.Cache = mem
	ctx := context.Background()

	first, err := runner.Execute(ctx, testGraph(), Options{Seed: 5, Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if mem.Len() != 2 {
		t.Fatalf("cache entries = %d, want 2", mem.Len())
	}
	second, err := runner.Execute(ctx, testGraph(), Options{Seed: 5, Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached {
		t.Error("second seeded run not served from cache")
	}
	if string(first.Artifacts[FormatSVG]) != string(second.Artifacts[FormatSVG]) {
		t.Error("cached SVG differs")
	}

	// Different seed misses.
	third, err := runner.Execute(ctx, testGraph(), Options{Seed: 6, Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	if third.Cached {
		t.Error("different seed served from cache")
	}

	// Unseeded runs are never cached.
	before := mem.Len()
	unseeded, err := runner.Execute(ctx, testGraph(), Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	if unseeded.Cached || mem.Len() != before {
		t.Error("unseeded run touched the cache")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu        sync.Mutex
	layouts   int
	renders   int
	lastError error
}

func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.layouts++
}

func (h *recordingHooks) OnRenderComplete(_ context.Context, _ []string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.renders++
	h.lastError = err
}

func TestExecuteHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	runner := NewRunner(nil, layout.DefaultParams(), nil)
	if _, err := runner.Execute(context.Background(), testGraph(), Options{Formats: []string{FormatJSON}}); err != nil {
		t.Fatal(err)
	}
	if hooks.layouts != 1 || hooks.renders != 1 || hooks.lastError != nil {
		t.Errorf("hooks: layouts %d renders %d err %v", hooks.layouts, hooks.renders, hooks.lastError)
	}
}
