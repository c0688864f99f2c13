package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/render/sink"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// Render serializes the last drawing of r in the requested formats. The
// context is checked between formats.
func Render(ctx context.Context, r *scene.Renderer, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := RenderFormat(ctx, r, format, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat serializes the last drawing of r in a single format.
func RenderFormat(ctx context.Context, r *scene.Renderer, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatSVG:
		if opts.Engine == EngineGraphviz {
			return sink.RenderDOTSVG(ctx, sink.ToDOT(r))
		}
		return sink.RenderSVG(r.Container(), svgOptions(opts)...), nil
	case FormatPNG:
		return sink.RenderPNG(r.Container(), sink.WithScale(opts.Scale))
	case FormatPDF:
		return sink.RenderPDF(ctx, r.Container(), sink.WithPDFSVGOptions(svgOptions(opts)...))
	case FormatJSON:
		return sink.RenderJSON(r, sink.WithJSONSeed(opts.Seed))
	case FormatDOT:
		return []byte(sink.ToDOT(r)), nil
	default:
		return nil, ValidateFormat(format)
	}
}

func svgOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if opts.Interactive {
		svgOpts = append(svgOpts, sink.WithInteraction())
	}
	if opts.EmbedFont {
		svgOpts = append(svgOpts, sink.WithEmbeddedFont())
	}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	return svgOpts
}
