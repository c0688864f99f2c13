package scene

import (
	"context"
	"io"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/observability"
	"github.com/matzehuels/forcegraph/pkg/palette"
)

// Drawing constants.
const (
	MinWidth  = 320.0
	MinHeight = 260.0

	NodeRadius       = 22.0
	CenterNodeRadius = 28.0

	// EdgeLabelOffset lifts relation labels above the edge midpoint.
	EdgeLabelOffset = 6.0
	// LabelGap separates a node label from its circle.
	LabelGap = 14.0
	// MaxLabelRunes is the longest label drawn untruncated.
	MaxLabelRunes = 18

	ArrowMarkerID = "graph-arrow"
	EmptyHint     = "No graph data to display."
)

// Class names applied to the visual tree.
const (
	ClassCanvas     = "graph-canvas"
	ClassBackground = "graph-background"
	ClassEdges      = "graph-edges"
	ClassEdge       = "graph-edge"
	ClassEdgeLabel  = "graph-edge-label"
	ClassNodes      = "graph-nodes"
	ClassNode       = "graph-node"
	ClassNodeLabel  = "graph-node-label"
	ClassInitials   = "graph-node-initials"
	ClassCenter     = "is-center"
	ClassSelected   = "selected"
	ClassHint       = "hint"
)

// Data attributes carried by node and edge groups.
const (
	AttrNodeID   = "data-node-id"
	AttrNodeType = "data-type"
	AttrEdgeFrom = "data-from"
	AttrEdgeTo   = "data-to"
	AttrRelation = "data-relation"
)

// Renderer draws graphs into a Container.
type Renderer struct {
	container *Container
	palette   *palette.Table
	logger    *log.Logger

	onNodeClick       func(id string)
	onEdgeClick       func(graph.Edge)
	onBackgroundClick func()

	selected   string
	layoutOpts []layout.Option
	minW, minH float64

	nodes      []graph.Node
	edges      []graph.Edge
	center     string
	positions  layout.Positions
	width      float64
	height     float64
	nodeGroups map[string]*Element
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithOnNodeClick sets the callback invoked with a node id when its glyph is
// clicked.
func WithOnNodeClick(fn func(id string)) Option {
	return func(r *Renderer) { r.onNodeClick = fn }
}

// WithOnEdgeClick sets the callback invoked when an edge line is clicked.
func WithOnEdgeClick(fn func(graph.Edge)) Option {
	return func(r *Renderer) { r.onEdgeClick = fn }
}

// WithOnBackgroundClick sets the callback invoked when empty canvas is
// clicked.
func WithOnBackgroundClick(fn func()) Option {
	return func(r *Renderer) { r.onBackgroundClick = fn }
}

// WithPalette sets the color table. Share one table between renderers to keep
// type colors stable.
func WithPalette(t *palette.Table) Option {
	return func(r *Renderer) {
		if t != nil {
			r.palette = t
		}
	}
}

// WithSelected marks a node as selected.
func WithSelected(id string) Option {
	return func(r *Renderer) { r.selected = id }
}

// WithLayoutOptions forwards options to layout.Compute.
func WithLayoutOptions(opts ...layout.Option) Option {
	return func(r *Renderer) { r.layoutOpts = append(r.layoutOpts, opts...) }
}

// WithMinSize overrides the minimum canvas extent.
func WithMinSize(width, height float64) Option {
	return func(r *Renderer) { r.minW, r.minH = width, height }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a renderer drawing into c. A nil container gets an empty one,
// which renders at the minimum extent.
func New(c *Container, opts ...Option) *Renderer {
	if c == nil {
		c = NewContainer(0, 0)
	}
	r := &Renderer{
		container: c,
		logger:    log.New(io.Discard),
		minW:      MinWidth,
		minH:      MinHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.palette == nil {
		r.palette = palette.New()
	}
	return r
}

// Container returns the drawing target.
func (r *Renderer) Container() *Container { return r.container }

// Palette returns the color table in use.
func (r *Renderer) Palette() *palette.Table { return r.palette }

// Positions returns the node positions of the last render.
func (r *Renderer) Positions() layout.Positions { return r.positions }

// Extent returns the canvas size of the last render.
func (r *Renderer) Extent() (width, height float64) { return r.width, r.height }

// Nodes returns the nodes drawn by the last render, duplicates removed.
func (r *Renderer) Nodes() []graph.Node { return r.nodes }

// Edges returns the valid edges drawn by the last render.
func (r *Renderer) Edges() []graph.Edge { return r.edges }

// CenterID returns the center entity of the last render.
func (r *Renderer) CenterID() string { return r.center }

// Selected returns the selected node id.
func (r *Renderer) Selected() string { return r.selected }

// NodeElement returns the group drawn for id by the last render.
func (r *Renderer) NodeElement(id string) (*Element, bool) {
	el, ok := r.nodeGroups[id]
	return el, ok
}

// Render replaces the container contents with a drawing of g. A nil graph is
// ignored and leaves the previous drawing in place.
func (r *Renderer) Render(g *graph.Graph) {
	r.RenderContext(context.Background(), g)
}

// RenderContext is Render with a context for palette lookups and hooks.
func (r *Renderer) RenderContext(ctx context.Context, g *graph.Graph) {
	if g == nil {
		return
	}
	r.container.Clear()
	r.nodeGroups = make(map[string]*Element)

	nodes, dropped := g.UniqueNodes()
	for _, id := range dropped {
		r.logger.Debug("dropping duplicate node", "id", id)
	}
	edges := graph.FilterEdges(nodes, g.Edges)
	if n := len(g.Edges) - len(edges); n > 0 {
		r.logger.Debug("dropping dangling edges", "count", n)
	}
	r.nodes, r.edges, r.center = nodes, edges, g.CenterEntityID

	w, h := r.container.Bounds()
	r.width, r.height = floor(w, r.minW), floor(h, r.minH)

	if len(nodes) == 0 {
		r.positions = layout.Positions{}
		hint := NewElement("p").AddClass(ClassHint)
		hint.Text = EmptyHint
		r.container.Append(hint)
		return
	}

	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, len(nodes), len(edges))
	start := time.Now()
	opts := append([]layout.Option{layout.WithLogger(r.logger)}, r.layoutOpts...)
	r.positions = layout.Compute(nodes, edges, r.width, r.height, opts...)
	hooks.OnLayoutComplete(ctx, len(nodes), time.Since(start))

	r.draw(ctx, g)
}

// SetSelected moves the selected class to id without re-running the layout.
// An empty id clears the selection.
func (r *Renderer) SetSelected(id string) {
	if prev, ok := r.nodeGroups[r.selected]; ok {
		prev.RemoveClass(ClassSelected)
	}
	r.selected = id
	if el, ok := r.nodeGroups[id]; ok {
		el.AddClass(ClassSelected)
	}
}

// ClickNode dispatches a click on the glyph drawn for id. It reports whether
// the node exists in the current drawing.
func (r *Renderer) ClickNode(id string) bool {
	el, ok := r.nodeGroups[id]
	if !ok || !r.container.Contains(el) {
		return false
	}
	r.container.Click(el)
	return true
}

func (r *Renderer) draw(ctx context.Context, g *graph.Graph) {
	svg := NewElement("svg").AddClass(ClassCanvas).
		SetAttr("xmlns", "http://www.w3.org/2000/svg").
		SetNum("width", r.width).
		SetNum("height", r.height).
		SetAttr("viewBox", "0 0 "+FormatNum(r.width)+" "+FormatNum(r.height)).
		SetAttr("role", "img").
		SetAttr("aria-label", "Relationship graph")
	r.container.Append(svg)

	defs := svg.AppendNew("defs")
	marker := defs.AppendNew("marker")
	marker.ID = ArrowMarkerID
	marker.SetAttr("viewBox", "0 0 10 10").
		SetAttr("refX", "10").SetAttr("refY", "5").
		SetAttr("markerWidth", "6").SetAttr("markerHeight", "6").
		SetAttr("orient", "auto-start-reverse")
	marker.AppendNew("path").SetAttr("d", "M 0 0 L 10 5 L 0 10 z")

	bg := svg.AppendNew("rect", ClassBackground).
		SetNum("x", 0).SetNum("y", 0).
		SetNum("width", r.width).SetNum("height", r.height)
	if r.onBackgroundClick != nil {
		r.container.AddListener(bg, EventClick, func(*Event) { r.onBackgroundClick() })
	}

	edgeLayer := svg.AppendNew("g", ClassEdges)
	for _, e := range r.edges {
		r.drawEdge(edgeLayer, g, e)
	}

	nodeLayer := svg.AppendNew("g", ClassNodes)
	for _, n := range r.nodes {
		r.drawNode(ctx, nodeLayer, g, n)
	}
}

func (r *Renderer) drawEdge(layer *Element, g *graph.Graph, e graph.Edge) {
	from, to := r.positions[e.FromID], r.positions[e.ToID]
	start, end := trimSegment(from, to, r.radius(g, e.FromID), r.radius(g, e.ToID))

	group := layer.AppendNew("g", ClassEdge).
		SetAttr(AttrEdgeFrom, e.FromID).
		SetAttr(AttrEdgeTo, e.ToID)
	if e.RelationType != "" {
		group.SetAttr(AttrRelation, e.RelationType)
	}

	line := group.AppendNew("line").
		SetNum("x1", start.X).SetNum("y1", start.Y).
		SetNum("x2", end.X).SetNum("y2", end.Y)
	if !e.IsSelfLoop() {
		line.SetAttr("marker-end", "url(#"+ArrowMarkerID+")")
	}

	if e.RelationType != "" {
		mid := r2.Scale(0.5, r2.Add(from, to))
		label := group.AppendNew("text", ClassEdgeLabel).
			SetNum("x", mid.X).
			SetNum("y", mid.Y-EdgeLabelOffset).
			SetAttr("text-anchor", "middle")
		label.Text = e.RelationType
	}

	if r.onEdgeClick != nil {
		edge := e
		r.container.AddListener(group, EventClick, func(*Event) { r.onEdgeClick(edge) })
	}
}

func (r *Renderer) drawNode(ctx context.Context, layer *Element, g *graph.Graph, n graph.Node) {
	p := r.positions[n.ID]
	radius := r.radius(g, n.ID)
	fill := r.palette.ColorForContext(ctx, n.Type)
	label := n.DisplayLabel()

	group := layer.AppendNew("g", ClassNode).
		SetAttr(AttrNodeID, n.ID).
		SetAttr("tabindex", "0").
		SetAttr("role", "button").
		SetAttr("aria-label", label)
	if n.Type != "" {
		group.SetAttr(AttrNodeType, n.Type)
	}
	if g.IsCenter(n.ID) {
		group.AddClass(ClassCenter)
	}
	if n.ID == r.selected {
		group.AddClass(ClassSelected)
	}
	r.nodeGroups[n.ID] = group

	group.AppendNew("circle").
		SetNum("cx", p.X).SetNum("cy", p.Y).SetNum("r", radius).
		SetAttr("fill", fill).
		SetAttr("stroke", palette.Stroke(fill)).
		SetAttr("stroke-width", "2")

	initials := group.AppendNew("text", ClassInitials).
		SetNum("x", p.X).SetNum("y", p.Y).
		SetAttr("text-anchor", "middle").
		SetAttr("dominant-baseline", "central").
		SetAttr("fill", palette.TextOn(fill))
	initials.Text = Initials(label)

	text := group.AppendNew("text", ClassNodeLabel).
		SetNum("x", p.X).SetNum("y", p.Y+radius+LabelGap).
		SetAttr("text-anchor", "middle")
	text.Text = TruncateLabel(label)

	title := group.AppendNew("title")
	title.Text = label
	if n.Type != "" {
		title.Text = label + " (" + n.Type + ")"
	}

	if r.onNodeClick != nil {
		id := n.ID
		r.container.AddListener(group, EventClick, func(*Event) { r.onNodeClick(id) })
	}
}

func (r *Renderer) radius(g *graph.Graph, id string) float64 {
	if g.IsCenter(id) {
		return CenterNodeRadius
	}
	return NodeRadius
}

// trimSegment shortens the segment from a to b so it starts and ends on the
// circles around each endpoint. Segments shorter than both radii are kept.
func trimSegment(a, b r2.Vec, ra, rb float64) (r2.Vec, r2.Vec) {
	d := r2.Sub(b, a)
	n := r2.Norm(d)
	if n <= ra+rb {
		return a, b
	}
	u := r2.Scale(1/n, d)
	return r2.Add(a, r2.Scale(ra, u)), r2.Sub(b, r2.Scale(rb, u))
}

func floor(v, minimum float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return minimum
	}
	return math.Max(v, minimum)
}

// TruncateLabel shortens labels longer than MaxLabelRunes to
// MaxLabelRunes-1 runes plus an ellipsis.
func TruncateLabel(label string) string {
	runes := []rune(label)
	if len(runes) <= MaxLabelRunes {
		return label
	}
	return string(runes[:MaxLabelRunes-1]) + "…"
}

// Initials returns up to two uppercase initials from the first words of
// label.
func Initials(label string) string {
	words := strings.FieldsFunc(label, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
	var out []rune
	for _, w := range words {
		for _, r := range w {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
