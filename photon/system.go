package photon

import "github.com/relgr/raytrace/rterr"

// System is the capability set a geodesic integrator consumes: the metric's
// RHS and coordinate kind, plus a cooperative step-size governor and
// terminal-event predicate. A concrete System is assembled by the caller
// (typically wrapping a metric.Metric and, when present, an astrobj.Emitter)
// so that this package never imports either — avoiding the import cycle
// that a direct Metric/Emitter dependency here would create, and matching
// the capability-record design note of spec.md §9.
type System interface {
	// CoordKind reports the coordinate chart the RHS expects.
	CoordKind() CoordKind
	// RHS evaluates the geodesic right-hand side: dstate/dλ for the 8-state.
	RHS(s State) State
	// DeltaMax returns the maximum integrator step permitted at this state,
	// or math.Inf(1) if nothing constrains it. Consulted on every proposed
	// step (spec.md §4.4 "deltaMax").
	DeltaMax(s State) float64
	// Terminal reports a terminal integrator event (horizon crossing, chart
	// exit) at this state, if any.
	Terminal(s State) (rterr.Kind, bool)
}
