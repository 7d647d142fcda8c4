// Package sankey renders flow geometry to SVG, PNG and JSON.
//
// The renderers are pure sinks: they take a [layout.Geometry] plus an
// optional sampled animation state and emit one artifact. Animation is
// expressed per frame, not inside the artifact: render a sequence of
// frames by sampling the narrative controller at successive times and
// rendering each state. Partial link draw uses the geometry's measured
// path lengths (stroke-dash reveal in SVG, truncated curve sampling in
// PNG), so a frame rendered at draw progress p shows exactly the first
// p of each visible link.
package sankey
