package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		f      canvasFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "explore [graph.json]",
		Short: "Browse a laid-out graph and click nodes in the terminal",
		Long: `Lay out a graph once and browse its nodes in an interactive list.

Enter clicks the highlighted node through the scene, which selects it and
shows its relations. 's' saves the drawing, selection included, as an
interactive SVG.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := defaultOptions(c.config())
			f.apply(cmd, &opts)
			if output == "" {
				output = basePath("", args[0]) + "." + pipeline.FormatSVG
			}
			return c.runExplore(cmd.Context(), args[0], opts, output)
		},
	}

	f.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "file written by 's' (default: <input>.svg)")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, opts pipeline.Options, output string) error {
	g, err := graph.ReadGraphFile(input)
	if err != nil {
		return err
	}
	if err := g.Validate(); err != nil {
		return err
	}

	b, err := c.newBackend(ctx, cacheOff)
	if err != nil {
		return err
	}
	defer b.Close()

	model, onClick := NewNodeListModel(output)
	r := b.runner.Renderer(opts, scene.WithOnNodeClick(onClick))
	r.RenderContext(ctx, g)
	model = model.Attach(r)

	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("explore: %w", err)
	}
	if m, ok := final.(NodeListModel); ok && m.Selected() != "" {
		printInfo("Last selected: %s", m.Selected())
	}
	return nil
}
