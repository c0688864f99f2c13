package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/palette"
)

// paletteCommand creates the palette command.
func (c *CLI) paletteCommand() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "palette [graph.json...]",
		Short: "Show type → color assignments",
		Long: `Show the type → color assignments held by the configured palette store.

Types found in the given graphs are assigned first, so the table shows the
colors a render would use. With a file or Redis store, assignments persist
across runs; --reset clears them and re-seeds the default types.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPalette(cmd.Context(), args, reset)
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "clear stored assignments before listing")

	return cmd
}

func (c *CLI) runPalette(ctx context.Context, inputs []string, reset bool) error {
	b, err := c.newBackend(ctx, cacheOff)
	if err != nil {
		return err
	}
	defer b.Close()
	colors := b.runner.Palette

	if reset {
		if err := colors.ResetContext(ctx); err != nil {
			return fmt.Errorf("reset palette: %w", err)
		}
		printSuccess("Palette reset")
	}

	for _, input := range inputs {
		g, err := graph.ReadGraphFile(input)
		if err != nil {
			return err
		}
		for _, n := range g.Nodes {
			colors.ColorForContext(ctx, n.Type)
		}
	}

	assignments, err := colors.AssignmentsContext(ctx)
	if err != nil {
		return fmt.Errorf("list palette: %w", err)
	}
	printKeyValue("Strategy", colors.Strategy().String())
	printKeyValue("Store", c.config().Palette.Store)
	printPaletteTable(os.Stdout, assignments)
	return nil
}

// printPaletteTable renders one row per assignment with fill and stroke
// swatches.
func printPaletteTable(w io.Writer, assignments []palette.Assignment) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		seeded := ""
		if a.Seeded {
			seeded = iconSuccess
		}
		stroke := palette.Stroke(a.Color)
		rows = append(rows, []string{
			a.Type,
			swatch(a.Color) + " " + a.Color,
			swatch(stroke) + " " + stroke,
			seeded,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Type", "Fill", "Stroke", "Seeded").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 3 {
				return cell.Foreground(colorGreen).Align(lipgloss.Center)
			}
			return cell
		})

	fmt.Fprintln(w, t.Render())
}
