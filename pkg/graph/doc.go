// Package graph provides the data model and wire format for relationship
// graphs rendered by forcegraph.
//
// A [Graph] is a flat list of [Node] values and [Edge] values plus an
// optional center entity. Nodes carry an opaque id, a display name and a
// type name; the type drives color assignment. Edges reference nodes by id
// and carry a relation type shown as the edge label.
//
// # Edge Validity
//
// An edge is valid only when both endpoints resolve to nodes of the same
// graph. Invalid edges are not an error: [Graph.ValidEdges] drops them, and
// every consumer (layout, renderer, sinks, summaries) works from that list.
//
// # Serialization
//
// Graphs use the node-link JSON format of the modeling application:
//
//	{
//	  "nodes": [{"id": "e1", "name": "Ada", "type": "Entity"}],
//	  "edges": [{"fromId": "e1", "toId": "p1", "relationType": "performs"}],
//	  "centerEntityId": "e1"
//	}
//
// Common operations:
//
//	g, _ := graph.ReadGraphFile("movement.json")
//	data, _ := graph.MarshalGraph(g)
//	parsed, _ := graph.UnmarshalGraph(data)
//
// [Layout] is an export-only format for computed positions, produced by the
// JSON sink. Layouts are never read back.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
