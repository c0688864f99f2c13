package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// layoutCommand creates the layout command.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		f       canvasFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "layout [graph.json]",
		Short: "Compute node positions and print them as a table",
		Long: `Compute the force-directed layout of a graph.

Positions are printed as a table. With --output the layout is also written as
JSON (the same document as 'render -f json').`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := defaultOptions(c.config())
			f.apply(cmd, &opts)
			opts.Formats = []string{pipeline.FormatJSON}
			return c.runLayout(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "also write the layout JSON to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")

	return cmd
}

// runLayout computes the layout and prints the positions table.
func (c *CLI) runLayout(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	logger := loggerFromContext(ctx)

	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}

	b, err := c.newBackend(ctx, fileCacheUnless(noCache))
	if err != nil {
		return err
	}
	defer b.Close()
	opts.Logger = logger

	prog := newProgress(logger)
	result, err := b.runner.Execute(ctx, g, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done("Computed layout", "nodes", result.Stats.NodeCount, "cached", result.Cached)

	data := result.Artifacts[pipeline.FormatJSON]
	var l graph.Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return fmt.Errorf("decode layout: %w", err)
	}

	printLayoutTable(os.Stdout, l)
	printStats(result.Stats.NodeCount, result.Stats.ValidEdgeCount, result.Cached)

	if output == "" {
		return nil
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	printFile(output)
	return nil
}

// printLayoutTable renders one row per node with a swatch of its fill.
func printLayoutTable(w io.Writer, l graph.Layout) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	cell := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(l.Nodes))
	for _, n := range l.Nodes {
		label := scene.TruncateLabel(n.Name)
		if label == "" {
			label = n.ID
		}
		if n.Center {
			label += " ★"
		}
		rows = append(rows, []string{
			n.ID,
			label,
			n.Type,
			swatch(n.Color) + " " + n.Color,
			fmt.Sprintf("%.1f", n.X),
			fmt.Sprintf("%.1f", n.Y),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Label", "Type", "Color", "X", "Y").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			if col >= 4 {
				return cell.Foreground(colorCyan).Align(lipgloss.Right)
			}
			return cell
		})

	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("Layout %gx%g", l.Width, l.Height)))
	fmt.Fprintln(w, t.Render())
}
