// Package pkg provides the core libraries for forcegraph knowledge-graph
// visualization.
//
// # Overview
//
// forcegraph takes an entity/relation graph (people, organizations, places,
// concepts and the typed edges between them) and draws it as a force-directed
// node-link diagram. Node fill colors come from a per-type palette, the
// center entity is pinned to the middle of the canvas, and the drawing can be
// clicked: selecting a node highlights it and its neighbors.
//
// # Architecture
//
// The typical data flow:
//
//	graph JSON (nodes, edges, centerEntityId)
//	         ↓
//	    [graph] package (parse, validate, index)
//	         ↓
//	    [layout] package (force simulation → positions)
//	         ↓
//	    [scene] package (element tree, selection, click handling)
//	         ↓
//	    [render/sink] package (SVG, PNG, PDF, JSON, DOT)
//
// [pipeline] runs those steps for the CLI and the HTTP [server], consulting
// the artifact [cache] for seeded runs.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/forcegraph/pkg/graph"
//	    "github.com/matzehuels/forcegraph/pkg/layout"
//	    "github.com/matzehuels/forcegraph/pkg/palette"
//	    "github.com/matzehuels/forcegraph/pkg/pipeline"
//	)
//
//	g, _ := graph.ReadGraphFile("graph.json")
//	runner := pipeline.NewRunner(palette.New(), layout.DefaultParams(), nil)
//	result, _ := runner.Execute(ctx, g, pipeline.Options{Seed: 42, Formats: []string{"svg"}})
//	os.WriteFile("graph.svg", result.Artifacts["svg"], 0o644)
//
// # Main Packages
//
// [graph] - Input types (Node, Edge, Graph) with JSON parsing, validation and
// adjacency lookups, plus the serialized Layout.
//
// [layout] - Force-directed simulation: repulsion between all node pairs,
// spring attraction along edges, centering, velocity damping and a pinned
// center node. Deterministic for a given seed.
//
// [palette] - Type to color assignment with seeded defaults and memory, file
// and Redis stores for assignments that must survive restarts.
//
// [scene] - Retained element tree built from a layout. Handles selection
// state and node click callbacks.
//
// [render/sink] - Output formats. [render] converts SVG to PDF and PNG.
//
// [cache] - Artifact cache keyed by graph hash and render options, with null,
// memory (LRU), file and Redis implementations.
//
// [config] - TOML/YAML configuration with environment overrides and a file
// watcher for live reload.
//
// [observability] - Hooks for pipeline, palette and HTTP events, with a
// Prometheus implementation.
//
// [server] - HTTP API over the pipeline.
//
// [errors] - Coded errors shared by every package.
//
// [graph]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/layout
// [palette]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/palette
// [scene]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/scene
// [render]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render
// [render/sink]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/render/sink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/observability
// [server]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/forcegraph/pkg/errors
package pkg
