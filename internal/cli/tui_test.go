package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/forcegraph/pkg/graph"
	"github.com/matzehuels/forcegraph/pkg/layout"
	"github.com/matzehuels/forcegraph/pkg/palette"
	"github.com/matzehuels/forcegraph/pkg/pipeline"
	"github.com/matzehuels/forcegraph/pkg/scene"
)

func newTestModel(t *testing.T) NodeListModel {
	t.Helper()
	g, err := graph.UnmarshalGraph([]byte(testGraph))
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(palette.New(), layout.DefaultParams(), nil)
	model, onClick := NewNodeListModel(filepath.Join(t.TempDir(), "explore.svg"))
	r := runner.Renderer(pipeline.Options{Width: 400, Height: 300, Seed: 1}, scene.WithOnNodeClick(onClick))
	r.RenderContext(context.Background(), g)
	return model.Attach(r)
}

func press(m NodeListModel, keys ...tea.KeyMsg) (NodeListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(k)
		m = next.(NodeListModel)
	}
	return m, cmd
}

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func TestNodeListClickSelects(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyEnter})

	if got := m.Selected(); got != "o1" {
		t.Fatalf("Selected() = %q, want o1", got)
	}
	if got := m.Renderer.Selected(); got != "o1" {
		t.Errorf("renderer selected = %q, want o1", got)
	}
	el, ok := m.Renderer.NodeElement("o1")
	if !ok || !el.HasClass(scene.ClassSelected) {
		t.Error("o1 glyph missing selected class")
	}

	view := m.View()
	for _, want := range []string{"Selected", "Analytical Society", "member_of", "located_in"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestNodeListCursorBounds(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 0 {
		t.Errorf("cursor = %d after up at top", m.Cursor)
	}
	m, _ = press(m, runeKey('j'), runeKey('j'), runeKey('j'), runeKey('j'))
	if m.Cursor != 2 {
		t.Errorf("cursor = %d, want 2", m.Cursor)
	}
}

func TestNodeListClearAndSave(t *testing.T) {
	m := newTestModel(t)
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter}, runeKey('s'))

	data, err := os.ReadFile(m.Output)
	if err != nil {
		t.Fatalf("save: %v (status %q)", err, m.Status)
	}
	svg := string(data)
	if !strings.Contains(svg, "forcegraph:nodeclick") || !strings.Contains(svg, "selected") {
		t.Error("saved svg missing click script or selection")
	}

	m, _ = press(m, runeKey('x'))
	if m.Selected() != "" || m.Renderer.Selected() != "" {
		t.Error("x did not clear the selection")
	}
}

func TestNodeListQuit(t *testing.T) {
	m := newTestModel(t)
	if _, cmd := press(m, runeKey('q')); cmd == nil {
		t.Error("q returned no command")
	}
}
