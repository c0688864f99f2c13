// Package layout computes force-directed node placements.
//
// [Compute] places every node uniformly at random inside the canvas and then
// runs a fixed number of iterations of a spring-electrical simulation:
//
//   - every pair of nodes repels with a force proportional to K/d²
//   - every valid edge acts as a spring with a preferred rest length
//   - every node is pulled gently toward the canvas center
//
// Velocities are damped, integrated with a fixed step, and positions are
// clamped to the canvas inset by a margin after every iteration. There is no
// convergence check; the iteration count is the only stopping rule.
//
// # Numerical Guards
//
// Squared distances are floored at [Params.Epsilon] before any division, so
// coincident nodes and self loops produce bounded forces. A zero displacement
// has no direction and contributes no force. Non-finite coordinates are
// replaced by the canvas center.
//
// # Determinism
//
// The only randomness is initial placement. [WithSeed] or [WithSource] makes
// the result reproducible:
//
//	pos := layout.Compute(nodes, edges, 800, 600, layout.WithSeed(42))
//
// # Complexity
//
// Each iteration is O(n²) in the node count because of the pairwise
// repulsion pass. Graphs of a few hundred nodes lay out interactively.
package layout
