// Package transition sequences the forge swap between two fully laid-out
// diagrams.
//
// Where package narrative animates one diagram into view, this package
// orchestrates replacing the whole displayed diagram with its alternate
// variant: a short anticipation beat on the outgoing diagram, a shift during
// which the displayed variant flips, and a layer-by-layer forge of the
// incoming diagram. The outgoing diagram runs an independent exit
// sub-sequence (freeze, desaturate, gone) alongside.
//
// # Discrete versus continuous reveal
//
// The forge deliberately does not reuse the narrative controller's layer
// windows. Narrative draw progress is a continuous, overlapping wave;
// forge progress advances one discrete layer at a time on a fixed
// per-layer cadence, with a partial 0→1 reveal only inside the current
// layer's window. The two are separate functions because they have
// different semantics, not because one forgot about the other.
//
// # Re-entrancy
//
// Triggering while a sequence is in flight supersedes it: the previous
// run's scheduled notifications are invalidated through the same
// generation-token scheduler the narrative controller uses, so there is
// exactly one active forge sequence at any time. Like [Controller.Sample]
// in package narrative, sampled state is a pure function of elapsed
// wall-clock time and never depends on timer delivery.
package transition
