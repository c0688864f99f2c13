package sink

import (
	"bytes"
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/matzehuels/forcegraph/pkg/fonts"
	"github.com/matzehuels/forcegraph/pkg/palette"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// Colors used for raster output. They mirror graphCSS.
const (
	pngBackground = "#ffffff"
	pngEdge       = "#94a3b8"
	pngEdgeLabel  = "#475569"
	pngNodeLabel  = "#111827"
	pngSelected   = "#f59e0b"
	pngHint       = "#6b7280"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale float64
	faces map[faceKey]font.Face
}

type faceKey struct {
	weight fonts.Weight
	size   float64
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) {
		if s > 0 && !math.IsInf(s, 0) {
			r.scale = s
		}
	}
}

// RenderPNG rasterizes the drawing held by c. Unlike [RenderPDF] it needs no
// external tools.
func RenderPNG(c *scene.Container, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, faces: make(map[faceKey]font.Face)}
	for _, opt := range opts {
		opt(&r)
	}
	defer r.close()

	root := canvas(c)
	w, h := scene.MinWidth, scene.MinHeight
	if root != nil {
		w, _ = root.Num("width")
		h, _ = root.Num("height")
	} else if c != nil {
		cw, ch := c.Bounds()
		w, h = math.Max(w, cw), math.Max(h, ch)
	}

	dc := gg.NewContext(int(math.Ceil(w*r.scale)), int(math.Ceil(h*r.scale)))
	dc.Scale(r.scale, r.scale)
	dc.SetHexColor(pngBackground)
	dc.Clear()

	if root == nil {
		if err := r.text(dc, scene.EmptyHint, w/2, h/2, fonts.Regular, 14, pngHint, 0.5); err != nil {
			return nil, err
		}
	} else {
		for _, el := range root.Children() {
			if err := r.draw(dc, el); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *pngRenderer) draw(dc *gg.Context, el *scene.Element) error {
	switch el.Tag {
	case "defs", "title":
		return nil
	case "rect":
		x, _ := el.Num("x")
		y, _ := el.Num("y")
		w, _ := el.Num("width")
		h, _ := el.Num("height")
		dc.DrawRectangle(x, y, w, h)
		dc.SetHexColor(attrOr(el, "fill", pngBackground))
		dc.Fill()
	case "line":
		r.line(dc, el)
	case "circle":
		r.circle(dc, el)
	case "text":
		return r.label(dc, el)
	}
	for _, child := range el.Children() {
		if err := r.draw(dc, child); err != nil {
			return err
		}
	}
	return nil
}

func (r *pngRenderer) line(dc *gg.Context, el *scene.Element) {
	x1, _ := el.Num("x1")
	y1, _ := el.Num("y1")
	x2, _ := el.Num("x2")
	y2, _ := el.Num("y2")
	const width = 1.5

	dc.SetHexColor(pngEdge)
	dc.SetLineWidth(width)
	dc.DrawLine(x1, y1, x2, y2)
	dc.Stroke()

	if _, ok := el.Attr("marker-end"); !ok {
		return
	}
	dx, dy := x2-x1, y2-y1
	n := math.Hypot(dx, dy)
	if n == 0 {
		return
	}
	// Arrowhead matching the SVG marker: 6 stroke widths long.
	const length = 6 * width
	ux, uy := dx/n, dy/n
	bx, by := x2-ux*length, y2-uy*length
	dc.MoveTo(x2, y2)
	dc.LineTo(bx-uy*length/2, by+ux*length/2)
	dc.LineTo(bx+uy*length/2, by-ux*length/2)
	dc.ClosePath()
	dc.Fill()
}

func (r *pngRenderer) circle(dc *gg.Context, el *scene.Element) {
	cx, _ := el.Num("cx")
	cy, _ := el.Num("cy")
	radius, _ := el.Num("r")
	fill := attrOr(el, "fill", palette.Neutral)
	stroke := attrOr(el, "stroke", palette.Stroke(fill))
	width, ok := el.Num("stroke-width")
	if !ok {
		width = 2
	}
	if g := el.Parent(); g != nil {
		if g.HasClass(scene.ClassCenter) {
			width = 3
		}
		if g.HasClass(scene.ClassSelected) {
			stroke, width = pngSelected, 4
		}
	}

	dc.DrawCircle(cx, cy, radius)
	dc.SetHexColor(fill)
	dc.FillPreserve()
	dc.SetHexColor(stroke)
	dc.SetLineWidth(width)
	dc.Stroke()
}

func (r *pngRenderer) label(dc *gg.Context, el *scene.Element) error {
	if el.Text == "" {
		return nil
	}
	x, _ := el.Num("x")
	y, _ := el.Num("y")
	ay := 0.0
	if v, _ := el.Attr("dominant-baseline"); v == "central" {
		ay = 0.5
	}
	switch {
	case el.HasClass(scene.ClassInitials):
		return r.text(dc, el.Text, x, y, fonts.Bold, 12, attrOr(el, "fill", "#ffffff"), ay)
	case el.HasClass(scene.ClassEdgeLabel):
		return r.text(dc, el.Text, x, y, fonts.Regular, 11, pngEdgeLabel, ay)
	default:
		return r.text(dc, el.Text, x, y, fonts.Regular, 12, attrOr(el, "fill", pngNodeLabel), ay)
	}
}

func (r *pngRenderer) text(dc *gg.Context, s string, x, y float64, w fonts.Weight, size float64, hex string, ay float64) error {
	face, err := r.face(w, size)
	if err != nil {
		return err
	}
	dc.SetFontFace(face)
	dc.SetHexColor(hex)
	dc.DrawStringAnchored(s, x, y, 0.5, ay)
	return nil
}

func (r *pngRenderer) face(w fonts.Weight, size float64) (font.Face, error) {
	key := faceKey{w, size}
	if f, ok := r.faces[key]; ok {
		return f, nil
	}
	f, err := fonts.Face(w, size)
	if err != nil {
		return nil, err
	}
	r.faces[key] = f
	return f, nil
}

func (r *pngRenderer) close() {
	for _, f := range r.faces {
		_ = f.Close()
	}
}

func attrOr(el *scene.Element, name, fallback string) string {
	if v, ok := el.Attr(name); ok && v != "" {
		return v
	}
	return fallback
}
