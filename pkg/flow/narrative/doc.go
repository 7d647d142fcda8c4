// Package narrative drives the timed visual story told over one flow
// diagram: layers draw in as a staggered wave, loss elements pulse for
// emphasis, and a call-to-action unlocks once the viewer has seen the
// problem.
//
// # Model
//
// The [Controller] is a frame-driven state machine. Hosts arm it once per
// diagram and then call [Controller.Sample] with the current wall-clock time
// on every frame; the returned [State] is a pure function of elapsed time,
// so frame-rate variance never changes animation duration. Phases advance in
// strict order:
//
//	idle → setup → bleed → ready → complete
//
// During setup each layer owns a window of the total draw duration; windows
// overlap so consecutive layers read as one continuous wave rather than
// discrete steps. During bleed, loss-typed elements pulse for a configured
// number of cycles before ready unlocks the call-to-action.
//
// # Identity and re-arming
//
// Arming is keyed by a content-derived graph fingerprint, never by object
// identity: a resize that rebuilds an identical graph does not restart the
// story. Arming with a new identity (or deactivating) invalidates the run's
// generation, so no callback scheduled by a superseded run can fire.
package narrative
