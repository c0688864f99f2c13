package graph

import (
	"fmt"
	"slices"
	"strings"
)

// CenterMarker prefixes the center entity in summaries.
const CenterMarker = "★ "

const edgeFormat = "%s — %s → %s"

// Summary is a textual digest of a graph: one chip per node and one line per
// valid edge.
type Summary struct {
	Nodes []string
	Edges []string
}

// Summarize lists node labels in input order and valid edges sorted by the
// source label (case-insensitive). Duplicate node ids are listed once.
func Summarize(g *Graph) Summary {
	if g == nil {
		return Summary{}
	}
	nodes, _ := g.UniqueNodes()
	labels := make(map[string]string, len(nodes))
	var s Summary
	for _, n := range nodes {
		label := n.DisplayLabel()
		labels[n.ID] = label
		if g.IsCenter(n.ID) {
			label = CenterMarker + label
		}
		s.Nodes = append(s.Nodes, label)
	}

	edges := FilterEdges(nodes, g.Edges)
	slices.SortStableFunc(edges, func(a, b Edge) int {
		return strings.Compare(strings.ToLower(labels[a.FromID]), strings.ToLower(labels[b.FromID]))
	})
	for _, e := range edges {
		rel := e.RelationType
		if rel == "" {
			rel = "related"
		}
		s.Edges = append(s.Edges, fmt.Sprintf(edgeFormat, labels[e.FromID], rel, labels[e.ToID]))
	}
	return s
}

// String renders the summary as two blocks separated by a blank line.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Nodes (%d): %s\n", len(s.Nodes), strings.Join(s.Nodes, ", "))
	fmt.Fprintf(&b, "\nEdges (%d):\n", len(s.Edges))
	for _, e := range s.Edges {
		fmt.Fprintf(&b, "  %s\n", e)
	}
	return b.String()
}
