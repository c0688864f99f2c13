package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/fonts"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// NodeClickEvent is the DOM event dispatched on the svg root when a node is
// clicked in interactive output. event.detail carries {id, type}.
const NodeClickEvent = "forcegraph:nodeclick"

const graphCSS = `
    .graph-background { fill: #ffffff; }
    .graph-edges line { stroke: #94a3b8; stroke-width: 1.5; }
    #graph-arrow path { fill: #94a3b8; }
    .graph-edge-label { font-size: 11px; fill: #475569; }
    .graph-node-initials { font-size: 12px; font-weight: 600; pointer-events: none; }
    .graph-node-label { font-size: 12px; fill: #111827; }
    .graph-node.is-center circle { stroke-width: 3; }
    .graph-node.selected circle { stroke: #f59e0b; stroke-width: 4; }
    .hint { font-size: 14px; fill: #6b7280; }`

const graphInteractionCSS = `
    .graph-node { cursor: pointer; }
    .graph-node circle { transition: stroke-width 0.2s ease; }
    .graph-node:hover circle, .graph-node:focus circle { stroke-width: 4; }
    .graph-node:focus { outline: none; }`

const graphInteractionJS = `
    (function () {
      var root = document.currentScript ? document.currentScript.closest('svg') : document.querySelector('svg.graph-canvas');
      if (!root) return;
      function select(el) {
        root.querySelectorAll('.graph-node.selected').forEach(function (n) { n.classList.remove('selected'); });
        if (el) el.classList.add('selected');
      }
      function fire(el) {
        select(el);
        root.dispatchEvent(new CustomEvent('` + NodeClickEvent + `', {
          bubbles: true,
          detail: { id: el.dataset.nodeId, type: el.dataset.type || '' }
        }));
      }
      root.querySelectorAll('.graph-node').forEach(function (el) {
        el.addEventListener('click', function (ev) { ev.stopPropagation(); fire(el); });
        el.addEventListener('keydown', function (ev) {
          if (ev.key === 'Enter' || ev.key === ' ') { ev.preventDefault(); fire(el); }
        });
      });
      var bg = root.querySelector('.graph-background');
      if (bg) bg.addEventListener('click', function () { select(null); });
    })();`

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	interactive bool
	embedFont   bool
	title       string
}

// WithInteraction embeds the click script and hover styles.
func WithInteraction() SVGOption { return func(r *svgRenderer) { r.interactive = true } }

// WithEmbeddedFont embeds the Go font as a data URI so text renders the same
// in every viewer.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// WithTitle sets the document title.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// RenderSVG serializes the drawing held by c. A container holding only the
// empty-graph hint yields an SVG with the hint text centered.
func RenderSVG(c *scene.Container, opts ...SVGOption) []byte {
	r := svgRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	root := canvas(c)
	if root == nil {
		renderHint(&buf, c, &r)
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "<svg%s>\n", attrString(root))
	if r.title != "" {
		buf.WriteString("  <title>")
		escape(&buf, r.title)
		buf.WriteString("</title>\n")
	}
	renderStyle(&buf, &r)
	for _, child := range root.Children() {
		writeElement(&buf, child, 1)
	}
	if r.interactive {
		fmt.Fprintf(&buf, "  <script type=\"text/javascript\"><![CDATA[%s\n  ]]></script>\n", graphInteractionJS)
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

// canvas returns the svg root of the drawing, or nil when the container holds
// the empty hint or nothing at all.
func canvas(c *scene.Container) *scene.Element {
	if c == nil {
		return nil
	}
	for _, el := range c.Children() {
		if el.Tag == "svg" {
			return el
		}
	}
	return nil
}

func renderHint(buf *bytes.Buffer, c *scene.Container, r *svgRenderer) {
	w, h := scene.MinWidth, scene.MinHeight
	if c != nil {
		cw, ch := c.Bounds()
		if cw > w {
			w = cw
		}
		if ch > h {
			h = ch
		}
	}
	fmt.Fprintf(buf, `<svg xmlns="http://www.w3.org/2000/svg" class="%s" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		scene.ClassCanvas, scene.FormatNum(w), scene.FormatNum(h), scene.FormatNum(w), scene.FormatNum(h))
	renderStyle(buf, r)
	fmt.Fprintf(buf, `  <text class="%s" x="%s" y="%s" text-anchor="middle">`,
		scene.ClassHint, scene.FormatNum(w/2), scene.FormatNum(h/2))
	escape(buf, scene.EmptyHint)
	buf.WriteString("</text>\n</svg>\n")
}

func renderStyle(buf *bytes.Buffer, r *svgRenderer) {
	buf.WriteString("  <style>")
	if r.embedFont {
		fmt.Fprintf(buf, "\n    @font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }",
			fonts.FontFamily, fonts.RegularTTFBase64())
	}
	fmt.Fprintf(buf, "\n    .%s text { font-family: %s; }", scene.ClassCanvas, fonts.FallbackFontFamily)
	buf.WriteString(graphCSS)
	if r.interactive {
		buf.WriteString(graphInteractionCSS)
	}
	buf.WriteString("\n  </style>\n")
}

func writeElement(buf *bytes.Buffer, e *scene.Element, depth int) {
	indent := bytes.Repeat([]byte("  "), depth)
	buf.Write(indent)
	fmt.Fprintf(buf, "<%s%s", e.Tag, attrString(e))

	children := e.Children()
	if len(children) == 0 && e.Text == "" {
		buf.WriteString("/>\n")
		return
	}
	buf.WriteString(">")
	escape(buf, e.Text)
	if len(children) > 0 {
		buf.WriteString("\n")
		for _, child := range children {
			writeElement(buf, child, depth+1)
		}
		buf.Write(indent)
	}
	fmt.Fprintf(buf, "</%s>\n", e.Tag)
}

func attrString(e *scene.Element) string {
	var b bytes.Buffer
	if e.ID != "" {
		b.WriteString(` id="`)
		escape(&b, e.ID)
		b.WriteString(`"`)
	}
	if cls := e.ClassName(); cls != "" {
		b.WriteString(` class="`)
		escape(&b, cls)
		b.WriteString(`"`)
	}
	for _, a := range e.Attrs() {
		fmt.Fprintf(&b, ` %s="`, a.Name)
		escape(&b, a.Value)
		b.WriteString(`"`)
	}
	return b.String()
}

func escape(buf *bytes.Buffer, s string) {
	_ = xml.EscapeText(buf, []byte(s))
}
