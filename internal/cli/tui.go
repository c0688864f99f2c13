package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/render/sink"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

// List styles
var (
	listDimStyle   = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle = lipgloss.NewStyle().Foreground(colorGray)
)

// =============================================================================
// NodeListModel - Interactive node browser
// =============================================================================

// clickState is shared between the model and the scene's click handler.
// The model is copied on every update, so the handler writes through a
// pointer.
type clickState struct {
	id     string
	clicks int
}

// NodeListModel is the bubbletea model behind the explore command. Enter
// dispatches a click on the node's glyph through the scene, exactly as a
// pointer click on the rendered SVG would.
type NodeListModel struct {
	Renderer *scene.Renderer
	Output   string

	Cursor int
	Height int
	Offset int
	Status string

	nodes []graph.Node
	click *clickState
}

// NewNodeListModel returns a model and the handler to register with
// scene.WithOnNodeClick. Call Attach once the renderer has drawn.
func NewNodeListModel(output string) (NodeListModel, func(id string)) {
	state := &clickState{}
	m := NodeListModel{Output: output, Height: 15, click: state}
	return m, func(id string) {
		state.id = id
		state.clicks++
	}
}

// Attach sets the renderer after it has drawn the graph.
func (m NodeListModel) Attach(r *scene.Renderer) NodeListModel {
	m.Renderer = r
	m.nodes = r.Nodes()
	return m
}

// Selected returns the id of the last clicked node.
func (m NodeListModel) Selected() string { return m.click.id }

func (m NodeListModel) Init() tea.Cmd {
	return nil
}

func (m NodeListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.nodes)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", " ":
			if len(m.nodes) == 0 {
				return m, nil
			}
			id := m.nodes[m.Cursor].ID
			if !m.Renderer.ClickNode(id) {
				m.Status = fmt.Sprintf("%s is not drawn", id)
				return m, nil
			}
			m.Renderer.SetSelected(m.click.id)
			m.Status = ""
		case "x":
			m.click.id = ""
			m.Renderer.SetSelected("")
		case "s":
			m.Status = m.save()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}
	return m, nil
}

// save writes the current drawing, selection included, as interactive SVG.
func (m NodeListModel) save() string {
	data := sink.RenderSVG(m.Renderer.Container(), sink.WithInteraction())
	if err := os.WriteFile(m.Output, data, 0o644); err != nil {
		return "save failed: " + err.Error()
	}
	return "saved " + m.Output
}

func (m NodeListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Explore Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ click  x clear  s save svg  q quit"))
	b.WriteString("\n\n")

	if len(m.nodes) == 0 {
		b.WriteString(listDimStyle.Render("No graph data to display."))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.nodes))
	positions := m.Renderer.Positions()
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		n := m.nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		p := positions[n.ID]
		rows = append(rows, []string{
			cursor,
			swatch(m.Renderer.Palette().ColorFor(n.Type)),
			n.ID,
			scene.TruncateLabel(n.DisplayLabel()),
			n.Type,
			fmt.Sprintf("%.0f,%.0f", p.X, p.Y),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "ID", "Label", "Type", "Position").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			base := lipgloss.NewStyle()
			if idx < len(m.nodes) && m.nodes[idx].ID == m.click.id {
				base = base.Foreground(colorYellow)
			}
			if idx == m.Cursor {
				return base.Bold(true).Foreground(colorCyan)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  clicks: %d", m.Cursor+1, len(m.nodes), m.click.clicks)))
	b.WriteString("\n\n")
	b.WriteString(m.details())
	if m.Status != "" {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Status))
	}
	return b.String()
}

// details describes the selected node and its relations.
func (m NodeListModel) details() string {
	id := m.click.id
	if id == "" {
		return listDimStyle.Render("No node selected.")
	}
	var node graph.Node
	for _, n := range m.nodes {
		if n.ID == id {
			node = n
			break
		}
	}

	var b strings.Builder
	line := func(k, v string) {
		b.WriteString(detailKeyStyle.Render(k) + " " + StyleValue.Render(v) + "\n")
	}
	line("Selected", node.DisplayLabel())
	line("ID", node.ID)
	if node.Type != "" {
		line("Type", swatch(m.Renderer.Palette().ColorFor(node.Type))+" "+node.Type)
	}
	if m.Renderer.CenterID() == id {
		line("Center", iconSuccess)
	}
	for _, e := range m.Renderer.Edges() {
		rel := e.RelationType
		if rel == "" {
			rel = "related"
		}
		switch id {
		case e.FromID:
			line("→ "+rel, e.ToID)
		case e.ToID:
			line("← "+rel, e.FromID)
		}
	}
	return b.String()
}
