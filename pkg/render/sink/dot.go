package sink

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/forcegraph/pkg/palette"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// pointsPerInch converts canvas units to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts the last render of r to Graphviz DOT. Node positions are
// pinned so the neato engine reproduces the force layout instead of
// computing its own. Graphviz puts the origin bottom-left, so y is flipped.
func ToDOT(r *scene.Renderer) string {
	_, h := r.Extent()
	pos := r.Positions()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  inputscale=%g;\n", pointsPerInch)
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontname=\"Helvetica\", fontsize=11];\n")
	buf.WriteString("  edge [color=\"#94a3b8\", fontsize=10, fontcolor=\"#475569\", arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, n := range r.Nodes() {
		p := pos[n.ID]
		radius := scene.NodeRadius
		if isCenter(r, n.ID) {
			radius = scene.CenterNodeRadius
		}
		fill := nodeFill(r, n)
		label := n.DisplayLabel()
		tooltip := label
		if n.Type != "" {
			tooltip += " (" + n.Type + ")"
		}
		attrs := []string{
			fmt.Sprintf("pos=\"%s,%s!\"", scene.FormatNum(p.X), scene.FormatNum(h-p.Y)),
			fmt.Sprintf("width=%s", scene.FormatNum(2*radius/pointsPerInch)),
			"label=" + quoteDOT(scene.Initials(label)),
			"xlabel=" + quoteDOT(scene.TruncateLabel(label)),
			"tooltip=" + quoteDOT(tooltip),
			"fillcolor=" + quoteDOT(fill),
			"color=" + quoteDOT(palette.Stroke(fill)),
			"fontcolor=" + quoteDOT(palette.TextOn(fill)),
		}
		if isCenter(r, n.ID) {
			attrs = append(attrs, "penwidth=3")
		}
		fmt.Fprintf(&buf, "  %s [%s];\n", quoteDOT(n.ID), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range r.Edges() {
		if e.RelationType != "" {
			fmt.Fprintf(&buf, "  %s -> %s [label=%s];\n", quoteDOT(e.FromID), quoteDOT(e.ToID), quoteDOT(e.RelationType))
			continue
		}
		fmt.Fprintf(&buf, "  %s -> %s;\n", quoteDOT(e.FromID), quoteDOT(e.ToID))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderDOTSVG renders DOT source to SVG with Graphviz's neato engine, which
// honors pinned positions.
func RenderDOTSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

// quoteDOT renders s as a DOT double-quoted string. Only quotes and
// backslashes are escaped; newlines become Graphviz line breaks and other
// control characters are dropped.
func quoteDOT(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func isCenter(r *scene.Renderer, id string) bool {
	return id != "" && id == r.CenterID()
}
