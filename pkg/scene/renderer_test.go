package scene

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/palette"
)

func chainGraph() *graph.Graph {
	return &graph.Graph{
		Nodes: []graph.Node{{ID: "A"}, {ID: "B"}, {ID: "C"}},
		Edges: []graph.Edge{
			{FromID: "A", ToID: "B", RelationType: "knows"},
			{FromID: "B", ToID: "C", RelationType: "knows"},
		},
	}
}

func countTag(c *Container, tag string) int {
	n := 0
	for _, root := range c.Children() {
		n += len(root.ByTag(tag))
	}
	return n
}

func countClass(c *Container, class string) int {
	n := 0
	for _, root := range c.Children() {
		n += len(root.ByClass(class))
	}
	return n
}

// pinned places nodes at fixed coordinates so hit tests are deterministic.
func pinned(at map[string]r2.Vec) Option {
	return WithLayoutOptions(layout.WithSeed(1), layout.WithPinned(at))
}

func TestRenderGlyphCounts(t *testing.T) {
	tests := []struct {
		name      string
		g         *graph.Graph
		wantNodes int
		wantLines int
		wantLabel int
	}{
		{"chain", chainGraph(), 3, 2, 2},
		{
			name: "dangling edge",
			g: &graph.Graph{
				Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
				Edges: []graph.Edge{{FromID: "a", ToID: "b"}, {FromID: "a", ToID: "ghost", RelationType: "x"}},
			},
			wantNodes: 2, wantLines: 1, wantLabel: 0,
		},
		{
			name: "only unknown endpoints",
			g: &graph.Graph{
				Nodes: []graph.Node{{ID: "a"}},
				Edges: []graph.Edge{{FromID: "a", ToID: "nope"}},
			},
			wantNodes: 1, wantLines: 0, wantLabel: 0,
		},
		{
			name: "self loop",
			g: &graph.Graph{
				Nodes: []graph.Node{{ID: "a"}},
				Edges: []graph.Edge{{FromID: "a", ToID: "a", RelationType: "self"}},
			},
			wantNodes: 1, wantLines: 1, wantLabel: 1,
		},
		{
			name: "duplicate ids",
			g: &graph.Graph{
				Nodes: []graph.Node{{ID: "a"}, {ID: "a"}, {ID: "b"}},
				Edges: []graph.Edge{{FromID: "a", ToID: "b"}},
			},
			wantNodes: 2, wantLines: 1, wantLabel: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewContainer(600, 400)
			r := New(c, WithLayoutOptions(layout.WithSeed(3)))
			r.Render(tt.g)

			if got := countClass(c, ClassNode); got != tt.wantNodes {
				t.Errorf("node glyphs = %d, want %d", got, tt.wantNodes)
			}
			if got := countTag(c, "circle"); got != tt.wantNodes {
				t.Errorf("circles = %d, want %d", got, tt.wantNodes)
			}
			if got := countTag(c, "line"); got != tt.wantLines {
				t.Errorf("lines = %d, want %d", got, tt.wantLines)
			}
			if got := countClass(c, ClassEdgeLabel); got != tt.wantLabel {
				t.Errorf("edge labels = %d, want %d", got, tt.wantLabel)
			}
			for id, p := range r.Positions() {
				if math.IsNaN(p.X) || math.IsNaN(p.Y) {
					t.Errorf("node %s has NaN position", id)
				}
			}
		})
	}
}

func TestRenderEdgeLabelPlacement(t *testing.T) {
	c := NewContainer(600, 400)
	r := New(c, pinned(map[string]r2.Vec{"a": {X: 100, Y: 200}, "b": {X: 300, Y: 200}}))
	r.Render(&graph.Graph{
		Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
		Edges: []graph.Edge{{FromID: "a", ToID: "b", RelationType: "knows"}},
	})

	labels := c.Children()[0].ByClass(ClassEdgeLabel)
	if len(labels) != 1 {
		t.Fatalf("labels = %d, want 1", len(labels))
	}
	x, _ := labels[0].Num("x")
	y, _ := labels[0].Num("y")
	if x != 200 || y != 200-EdgeLabelOffset {
		t.Errorf("label at (%v, %v), want (200, %v)", x, y, 200-EdgeLabelOffset)
	}
	if labels[0].Text != "knows" {
		t.Errorf("label text = %q", labels[0].Text)
	}

	line := c.Children()[0].ByTag("line")[0]
	x1, _ := line.Num("x1")
	x2, _ := line.Num("x2")
	if x1 != 100+NodeRadius || x2 != 300-NodeRadius {
		t.Errorf("line spans %v..%v, want trimmed to circle edges", x1, x2)
	}
}

func TestRenderPositionsInsideCanvas(t *testing.T) {
	g := &graph.Graph{}
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		g.Nodes = append(g.Nodes, graph.Node{ID: id})
	}
	c := NewContainer(320, 260)
	r := New(c)
	r.Render(g)
	for id, p := range r.Positions() {
		if p.X < layout.DefaultMargin || p.X > 320-layout.DefaultMargin ||
			p.Y < layout.DefaultMargin || p.Y > 260-layout.DefaultMargin {
			t.Errorf("node %s at %v outside margin box", id, p)
		}
	}
}

func TestRenderNodeClick(t *testing.T) {
	c := NewContainer(600, 400)
	var clicks []string
	r := New(c,
		WithOnNodeClick(func(id string) { clicks = append(clicks, id) }),
		pinned(map[string]r2.Vec{"A": {X: 100, Y: 100}, "B": {X: 300, Y: 200}, "C": {X: 500, Y: 300}}),
	)
	r.Render(chainGraph())

	hit := c.ClickAt(300, 200)
	if hit == nil || hit.Tag != "circle" {
		t.Fatalf("ClickAt hit %v, want circle", hit)
	}
	if len(clicks) != 1 || clicks[0] != "B" {
		t.Errorf("clicks = %v, want [B]", clicks)
	}

	clicks = nil
	c.ClickAt(590, 20)
	if len(clicks) != 0 {
		t.Errorf("background click invoked node callback: %v", clicks)
	}

	clicks = nil
	if !r.ClickNode("C") || len(clicks) != 1 || clicks[0] != "C" {
		t.Errorf("ClickNode(C) clicks = %v", clicks)
	}
	if r.ClickNode("missing") {
		t.Error("ClickNode(missing) = true")
	}
}

func TestRenderEdgeAndBackgroundClick(t *testing.T) {
	c := NewContainer(600, 400)
	var edges []graph.Edge
	background := 0
	r := New(c,
		WithOnEdgeClick(func(e graph.Edge) { edges = append(edges, e) }),
		WithOnBackgroundClick(func() { background++ }),
		pinned(map[string]r2.Vec{"A": {X: 100, Y: 100}, "B": {X: 300, Y: 100}, "C": {X: 300, Y: 300}}),
	)
	r.Render(chainGraph())

	c.ClickAt(200, 100)
	if len(edges) != 1 || edges[0].FromID != "A" || edges[0].ToID != "B" {
		t.Errorf("edge clicks = %v, want A→B", edges)
	}
	if background != 0 {
		t.Errorf("edge click reached background")
	}

	c.ClickAt(550, 380)
	if background != 1 {
		t.Errorf("background clicks = %d, want 1", background)
	}
}

func TestRenderDetachesStaleHandlers(t *testing.T) {
	c := NewContainer(600, 400)
	calls := 0
	r := New(c, WithOnNodeClick(func(string) { calls++ }), WithLayoutOptions(layout.WithSeed(1)))

	r.Render(chainGraph())
	stale, _ := r.NodeElement("A")
	first := c.ListenerCount()

	for range 5 {
		r.Render(chainGraph())
	}
	if got := c.ListenerCount(); got != first {
		t.Errorf("ListenerCount() = %d after re-render, want %d", got, first)
	}
	if n := c.Click(stale); n != 0 || calls != 0 {
		t.Errorf("stale handler invoked: %d listeners, %d calls", n, calls)
	}
	if got := countClass(c, ClassNode); got != 3 {
		t.Errorf("node glyphs after re-render = %d, want 3", got)
	}
}

func TestRenderNilGraphIsNoop(t *testing.T) {
	c := NewContainer(600, 400)
	r := New(c, WithOnNodeClick(func(string) {}))
	r.Render(chainGraph())
	gen, listeners := c.Generation(), c.ListenerCount()

	r.Render(nil)
	if c.Generation() != gen || c.ListenerCount() != listeners || countClass(c, ClassNode) != 3 {
		t.Error("Render(nil) changed the container")
	}
}

func TestRenderEmptyGraphShowsHint(t *testing.T) {
	c := NewContainer(600, 400)
	r := New(c, WithOnNodeClick(func(string) {}))
	r.Render(chainGraph())
	r.Render(&graph.Graph{Edges: []graph.Edge{{FromID: "a", ToID: "b"}}})

	roots := c.Children()
	if len(roots) != 1 || roots[0].Tag != "p" || !roots[0].HasClass(ClassHint) {
		t.Fatalf("roots = %v, want hint paragraph", roots)
	}
	if roots[0].Text != EmptyHint {
		t.Errorf("hint = %q", roots[0].Text)
	}
	if c.ListenerCount() != 0 {
		t.Errorf("ListenerCount() = %d, want 0", c.ListenerCount())
	}
}

func TestRenderFloorsExtent(t *testing.T) {
	tests := []struct {
		name         string
		w, h         float64
		wantW, wantH float64
	}{
		{"small", 100, 50, MinWidth, MinHeight},
		{"zero", 0, 0, MinWidth, MinHeight},
		{"nan", math.NaN(), math.Inf(1), MinWidth, MinHeight},
		{"large", 1024, 768, 1024, 768},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(NewContainer(tt.w, tt.h))
			r.Render(chainGraph())
			w, h := r.Extent()
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Extent() = %vx%v, want %vx%v", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderAfterResize(t *testing.T) {
	c := NewContainer(400, 300)
	r := New(c, WithLayoutOptions(layout.WithSeed(3)))
	r.Render(chainGraph())
	before := c.Children()[0]

	c.Resize(900, 700)
	if w, h := c.Bounds(); w != 900 || h != 700 {
		t.Fatalf("Bounds() = %vx%v after Resize", w, h)
	}
	if got := c.Children()[0]; got != before {
		t.Error("Resize replaced the drawn tree")
	}

	r.Render(chainGraph())
	if w, h := r.Extent(); w != 900 || h != 700 {
		t.Errorf("Extent() = %vx%v, want 900x700", w, h)
	}
	for id, p := range r.Positions() {
		if p.X < 10 || p.X > 890 || p.Y < 10 || p.Y > 690 {
			t.Errorf("%s outside resized box: %v", id, p)
		}
	}
}

func TestRenderColorsAndCenter(t *testing.T) {
	table := palette.New()
	c := NewContainer(600, 400)
	r := New(c, WithPalette(table), WithSelected("p"))
	r.Render(&graph.Graph{
		Nodes: []graph.Node{
			{ID: "e", Name: "Ada", Type: "Entity"},
			{ID: "p", Name: "Weaving", Type: "Practice"},
			{ID: "x", Name: "Untyped"},
		},
		CenterEntityID: "e",
	})

	for id, want := range map[string]string{"e": "#2563eb", "p": "#7c3aed", "x": palette.Neutral} {
		el, ok := r.NodeElement(id)
		if !ok {
			t.Fatalf("no element for %s", id)
		}
		fill, _ := el.ByTag("circle")[0].Attr("fill")
		if fill != want {
			t.Errorf("%s fill = %s, want %s", id, fill, want)
		}
	}

	center, _ := r.NodeElement("e")
	if !center.HasClass(ClassCenter) {
		t.Error("center node missing is-center class")
	}
	if radius, _ := center.ByTag("circle")[0].Num("r"); radius != CenterNodeRadius {
		t.Errorf("center radius = %v, want %v", radius, CenterNodeRadius)
	}
	sel, _ := r.NodeElement("p")
	if !sel.HasClass(ClassSelected) {
		t.Error("selected node missing selected class")
	}

	r.SetSelected("x")
	if sel.HasClass(ClassSelected) {
		t.Error("previous selection kept selected class")
	}
	if x, _ := r.NodeElement("x"); !x.HasClass(ClassSelected) {
		t.Error("SetSelected did not mark new node")
	}
}

func TestRenderSharedPaletteStable(t *testing.T) {
	table := palette.New(palette.WithStrategy(palette.StrategyFirstSeen))
	g := &graph.Graph{Nodes: []graph.Node{{ID: "a", Type: "Ritual"}, {ID: "b", Type: "Place"}}}

	fills := func() (string, string) {
		r := New(NewContainer(400, 300), WithPalette(table))
		r.Render(g)
		a, _ := r.NodeElement("a")
		b, _ := r.NodeElement("b")
		fa, _ := a.ByTag("circle")[0].Attr("fill")
		fb, _ := b.ByTag("circle")[0].Attr("fill")
		return fa, fb
	}
	a1, b1 := fills()
	a2, b2 := fills()
	if a1 != a2 || b1 != b2 {
		t.Errorf("colors changed between renders: %s/%s then %s/%s", a1, b1, a2, b2)
	}
}

func TestTruncateLabel(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"short", "short"},
		{"exactly eighteen!!", "exactly eighteen!!"},
		{"nineteen characters", "nineteen characte…"},
		{"ééééééééééééééééééééé", "ééééééééééééééééé…"},
	}
	for _, tt := range tests {
		if got := TruncateLabel(tt.in); got != tt.want {
			t.Errorf("TruncateLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInitials(t *testing.T) {
	tests := map[string]string{
		"Ada Lovelace":     "AL",
		"weaving":          "W",
		"text-collection":  "TC",
		"the quick brown":  "TQ",
		"  ":               "?",
		"#42 main":         "4M",
		"ノード":              "ノ",
	}
	for in, want := range tests {
		if got := Initials(in); got != want {
			t.Errorf("Initials(%q) = %q, want %q", in, got, want)
		}
	}
}
