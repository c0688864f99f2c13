package sink

import (
	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/palette"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	seed uint64
}

// WithJSONSeed records the layout seed in the output, enabling reproducible
// re-rendering.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

// BuildLayout collects the positions and colors of the last render of r.
// Nodes keep input order; only drawn edges are included.
func BuildLayout(r *scene.Renderer, opts ...JSONOption) graph.Layout {
	jr := jsonRenderer{}
	for _, opt := range opts {
		opt(&jr)
	}

	w, h := r.Extent()
	out := graph.Layout{
		Width:  w,
		Height: h,
		Seed:   jr.seed,
		Nodes:  make([]graph.LayoutNode, 0, len(r.Nodes())),
		Edges:  append([]graph.Edge{}, r.Edges()...),
	}
	pos := r.Positions()
	for _, n := range r.Nodes() {
		p := pos[n.ID]
		out.Nodes = append(out.Nodes, graph.LayoutNode{
			ID:     n.ID,
			Name:   n.Name,
			Type:   n.Type,
			X:      p.X,
			Y:      p.Y,
			Color:  nodeFill(r, n),
			Center: isCenter(r, n.ID),
		})
	}
	return out
}

// RenderJSON serializes [BuildLayout] as indented JSON.
func RenderJSON(r *scene.Renderer, opts ...JSONOption) ([]byte, error) {
	return graph.MarshalLayout(BuildLayout(r, opts...))
}

// nodeFill returns the fill drawn for n, falling back to the palette when the
// node has no glyph in the current drawing.
func nodeFill(r *scene.Renderer, n graph.Node) string {
	if g, ok := r.NodeElement(n.ID); ok {
		for _, c := range g.ByTag("circle") {
			if fill, ok := c.Attr("fill"); ok {
				return fill
			}
		}
	}
	if n.Type == "" {
		return palette.Neutral
	}
	return r.Palette().ColorFor(n.Type)
}
