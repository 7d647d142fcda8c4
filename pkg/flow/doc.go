// Package flow defines the weighted, layered flow graph that every other
// package in viashift consumes.
//
// A flow graph is a set of [Node] values grouped into ordered layers
// (left-to-right columns) connected by weighted [Link] values. It is the
// input to the layout engine (pkg/flow/layout) and the unit of identity for
// the animation controllers (pkg/flow/narrative, pkg/flow/transition).
//
// # Identity
//
// Animation state must survive viewport resizes that rebuild the graph from
// the same content. [Graph.Fingerprint] derives a content hash from node and
// link identity, never from pointer equality, so two independently
// constructed but content-identical graphs share one fingerprint.
//
// # Degraded input
//
// Links whose endpoints are not both present in the node set are invalid but
// not fatal: [Graph.ResolvedLinks] drops them silently, and the diagram
// renders without them. Construction only fails for structural errors such
// as empty or duplicate node IDs.
package flow
