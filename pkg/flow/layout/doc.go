// Package layout computes positioned geometry for layered flow graphs.
//
// # Overview
//
// [Compute] is a pure function from (graph, viewport) to a [Geometry]
// snapshot: proportionally sized, non-overlapping nodes and cubic-Bézier
// links with precomputed path lengths and anchor points. It has no internal
// state and no time dependency; animation is layered on top by
// pkg/flow/narrative and pkg/flow/transition, which only read layer counts
// and progress values.
//
// # Algorithm
//
// Nodes are grouped by layer and ordered by their vertical hint (evenly
// spaced when absent). Link thickness interpolates between density-adaptive
// bounds using value/maxValue, so dense diagrams get a narrower thickness
// band that still fits the viewport. Each node is made tall enough to host
// every flow band touching it, layers are uniformly scaled so the densest
// column fits the usable height, and links attaching to a node edge receive
// contiguous vertical bands in a deterministic stacking order.
//
// # Not-ready results
//
// Compute returns nil - a valid "not ready" result, not an error - when the
// graph has no nodes or the viewport has not been measured yet. Callers poll
// until geometry is available.
//
// # Determinism
//
// Identical input yields identical geometry, including band stacking order
// at every node edge. Stacking sorts by source vertical position, then
// target vertical position, then link ID; the final tiebreak makes ordering
// independent of input slice order so flows never visibly jump between
// recomputations.
package layout
