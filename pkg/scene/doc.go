// Package scene renders graphs as an interactive vector scene.
//
// A [Renderer] lays out a graph with package layout and builds an SVG-shaped
// visual tree of [Element] values inside a caller-owned [Container]:
//
//	svg.graph-canvas
//	  defs > marker#graph-arrow
//	  rect.graph-background
//	  g.graph-edges > g.graph-edge > line, text.graph-edge-label
//	  g.graph-nodes > g.graph-node > circle, text, text, title
//
// Coordinates are absolute canvas coordinates. Node fills come from a
// palette.Table keyed by node type; the center entity is drawn larger and
// carries the is-center class.
//
// # Interaction
//
// The container owns an event-listener registry. The renderer attaches one
// click listener per node group (and per edge and on the background when
// those callbacks are set). [Container.ClickAt] hit-tests a canvas point and
// dispatches a bubbling click, so clicking a node's circle invokes the node
// callback exactly once and clicking empty canvas invokes it never.
//
// Every render clears the container first, which detaches all listeners of
// the previous drawing. Dispatching on a stale element is a no-op.
//
// # Degradation
//
// Rendering never fails. A nil graph is ignored, duplicate node ids keep the
// first occurrence, dangling edges are dropped, the canvas is floored at
// [MinWidth] × [MinHeight], and an empty node list renders a hint paragraph.
//
// Sinks in package render/sink serialize the tree to SVG, PNG, PDF, JSON and
// DOT.
package scene
