// Package sink serializes a rendered scene into output formats.
//
// A [scene.Renderer] draws a graph into a [scene.Container]; the functions in
// this package turn that drawing into bytes:
//
//   - [RenderSVG]: standalone SVG, optionally with click interaction
//   - [RenderPNG]: raster image drawn with fogleman/gg
//   - [RenderPDF]: vector PDF via rsvg-convert
//   - [RenderJSON]: node positions and colors as a [graph.Layout]
//   - [ToDOT] and [RenderDOTSVG]: Graphviz source with pinned positions
//
// All sinks work from the same scene, so node positions and colors agree
// across formats for a single render.
package sink
