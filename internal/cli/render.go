package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/render"
)

// stdoutPath writes a single artifact to standard output.
const stdoutPath = "-"

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	canvasFlags
	output      string
	formats     string
	interactive bool
	embedFont   bool
	selected    string
	title       string
	scale       float64
	graphviz    bool
	noCache     bool
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render [graph.json]",
		Short: "Lay out a graph and render it",
		Long: `Lay out a relationship graph and render it to one or more formats.

Formats: svg (default), png, pdf, json, dot. PDF needs rsvg-convert on PATH;
when several formats are requested and it is missing, PDF is skipped.

Seeded renders (--seed) are cached; unseeded renders are always fresh.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := defaultOptions(c.config())
			f.apply(cmd, &opts)
			if cmd.Flags().Changed("format") {
				opts.Formats = pipeline.ParseFormats(f.formats)
			}
			if cmd.Flags().Changed("interactive") {
				opts.Interactive = f.interactive
			}
			if cmd.Flags().Changed("scale") {
				opts.Scale = f.scale
			}
			opts.EmbedFont = f.embedFont
			opts.Selected = f.selected
			opts.Title = f.title
			if f.graphviz {
				opts.Engine = pipeline.EngineGraphviz
			}
			return c.runRender(cmd.Context(), args[0], opts, f.output, f.noCache)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format), base path (several), or - for stdout")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatSVG, "output format(s): "+strings.Join(pipeline.ValidFormats, ", ")+" (comma-separated)")
	cmd.Flags().BoolVar(&f.interactive, "interactive", false, "embed the click script in SVG output")
	cmd.Flags().BoolVar(&f.embedFont, "embed-font", false, "embed the Go font in SVG output")
	cmd.Flags().StringVar(&f.selected, "selected", "", "node id drawn as selected")
	cmd.Flags().StringVar(&f.title, "title", "", "document title for SVG output")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "pixel scale for PNG output")
	cmd.Flags().BoolVar(&f.graphviz, "graphviz", false, "draw SVG with Graphviz neato at the computed positions")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// runRender loads the graph, executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	logger := loggerFromContext(ctx)

	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	opts.Formats = available(ctx, opts.Formats)
	if output == stdoutPath && len(opts.Formats) != 1 {
		return fmt.Errorf("output %q needs exactly one format, got %d", stdoutPath, len(opts.Formats))
	}

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	logger.Info("Loaded graph", "path", input, "summary", graph.Summarize(g))

	b, err := c.newBackend(ctx, fileCacheUnless(noCache))
	if err != nil {
		return err
	}
	defer b.Close()
	opts.Logger = logger

	spinner := newSpinnerWithContext(ctx, os.Stderr, "Rendering "+strings.Join(opts.Formats, ", ")+"...")
	spinner.Start()
	result, err := b.runner.Execute(ctx, g, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, output, input)
	if err != nil {
		return err
	}
	if output == stdoutPath {
		return nil
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.ValidEdgeCount, result.Cached)
	if !slices.Contains(opts.Formats, pipeline.FormatSVG) {
		return nil
	}
	printNewline()
	printNextStep("Explore", appName+" explore "+input)
	return nil
}

// errSkipFormat marks a format that cannot be produced on this machine.
var errSkipFormat = stderrors.New("skip unavailable format")

// checkFormat reports errSkipFormat for formats whose external tools are
// missing.
func checkFormat(format string) error {
	if format == pipeline.FormatPDF && !render.HasRSVG() {
		return errSkipFormat
	}
	return nil
}

// available drops formats that cannot be produced, as long as at least one
// remains. A lone unavailable format is kept so the pipeline reports why.
func available(ctx context.Context, formats []string) []string {
	if len(formats) < 2 {
		return formats
	}
	logger := loggerFromContext(ctx)
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		if err := checkFormat(f); stderrors.Is(err, errSkipFormat) {
			logger.Warn("Skipping format", "format", f, "reason", "rsvg-convert not found")
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return formats
	}
	return out
}

// writeArtifacts writes each artifact and returns the paths written, in
// format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, output, input string) ([]string, error) {
	if output == stdoutPath {
		_, err := os.Stdout.Write(artifacts[formats[0]])
		return nil, err
	}

	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := outputPath(output, input, format, len(formats) == 1)
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath picks the file for one format. A single format writes to
// output verbatim; otherwise output is a base path and the format becomes
// the extension.
func outputPath(output, input, format string, single bool) string {
	if single && output != "" {
		return output
	}
	return basePath(output, input) + "." + format
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .png, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.ValidFormats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
