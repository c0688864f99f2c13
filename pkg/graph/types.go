package graph

import (
	"fmt"

	"github.com/matzehuels/forcegraph/pkg/errors"
)

// =============================================================================
// Graph - Relationship Graph
// =============================================================================

// Graph is a set of typed nodes joined by typed relationship edges.
//
// CenterEntityID, when set, marks the node the view is focused on. It only
// changes how that node is drawn.
type Graph struct {
	Nodes          []Node `json:"nodes"`
	Edges          []Edge `json:"edges"`
	CenterEntityID string `json:"centerEntityId,omitempty"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a labeled graph vertex. An empty Type is the null type and is
// drawn in the neutral color.
type Node struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// DisplayLabel returns the name if set, otherwise the ID.
func (n Node) DisplayLabel() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// =============================================================================
// Edge - Directed Relationship
// =============================================================================

// Edge is a directed relationship between two nodes.
type Edge struct {
	FromID       string `json:"fromId"`
	ToID         string `json:"toId"`
	RelationType string `json:"relationType,omitempty"`
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.FromID == e.ToID }

// =============================================================================
// Queries
// =============================================================================

// Node returns the first node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	if g == nil {
		return Node{}, false
	}
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// IsCenter reports whether id is the graph's center entity.
func (g *Graph) IsCenter(id string) bool {
	return g != nil && g.CenterEntityID != "" && g.CenterEntityID == id
}

// ValidEdges returns the edges whose endpoints both resolve to nodes of g,
// in input order. Dangling edges are dropped without error.
func (g *Graph) ValidEdges() []Edge {
	if g == nil {
		return nil
	}
	return FilterEdges(g.Nodes, g.Edges)
}

// UniqueNodes returns nodes with later duplicates of an id removed, in input
// order, along with the ids that were dropped.
func (g *Graph) UniqueNodes() (nodes []Node, dropped []string) {
	if g == nil {
		return nil, nil
	}
	return DedupeNodes(g.Nodes)
}

// FilterEdges keeps edges whose endpoints both appear in nodes.
func FilterEdges(nodes []Node, edges []Edge) []Edge {
	ids := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = struct{}{}
	}
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		_, okFrom := ids[e.FromID]
		_, okTo := ids[e.ToID]
		if okFrom && okTo {
			out = append(out, e)
		}
	}
	return out
}

// DedupeNodes keeps the first node for each id.
func DedupeNodes(nodes []Node) (unique []Node, dropped []string) {
	seen := make(map[string]struct{}, len(nodes))
	unique = make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if _, ok := seen[n.ID]; ok {
			dropped = append(dropped, n.ID)
			continue
		}
		seen[n.ID] = struct{}{}
		unique = append(unique, n)
	}
	return unique, dropped
}

// =============================================================================
// Validation
// =============================================================================

// Validate checks that every node has a well-formed, unique id.
// Dangling edges and a missing center entity are not errors.
func (g *Graph) Validate() error {
	if g == nil {
		return errors.New(errors.ErrCodeInvalidGraph, "graph is nil")
	}
	seen := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d", i)
		}
		if prev, ok := seen[n.ID]; ok {
			return errors.New(errors.ErrCodeInvalidGraph,
				"duplicate node id %q at positions %d and %d", n.ID, prev, i)
		}
		seen[n.ID] = i
	}
	return nil
}

// String implements fmt.Stringer.
func (g *Graph) String() string {
	if g == nil {
		return "graph(nil)"
	}
	return fmt.Sprintf("graph(%d nodes, %d edges)", len(g.Nodes), len(g.Edges))
}
