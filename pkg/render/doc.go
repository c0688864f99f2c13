// Package render holds format conversion shared by the output sinks.
//
// Rendering itself happens in package scene, which builds the visual tree,
// and in package render/sink, which serializes it. This package converts
// finished SVG into PDF through librsvg's rsvg-convert:
//
//	pdf, err := render.ToPDF(ctx, svg)
//
// PNG output does not require librsvg; see sink.RenderPNG.
package render
