// Package astrobj implements the Emitter capability record of spec.md §4.4:
// a geometric/physical predicate or a tabulated grid (concrete emitters
// pick one), the Impact radiative-transfer algorithm, and the quantity
// accumulation spec.md §4.5 describes. Grounded on the teacher's Station
// (station.go) — a concrete "does this state satisfy a test, and what falls
// out" object — generalized from a single ground-station visibility
// predicate to the fuller capability set a ray-traced emitter needs.
package astrobj

import (
	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/photon"
)

// Emitter is the capability set every concrete emitter body implements.
// FixedStar exercises the geometric-predicate half; Disk exercises the
// tabulated-grid half; both implement every method so Impact and the
// integrator's step governor never need a type switch (the "capability
// record, not a class hierarchy" design note of spec.md §9).
type Emitter interface {
	// Name identifies the emitter for logging/diagnostics.
	Name() string
	// CoordKind reports the coordinate chart this emitter's geometry tests
	// expect.
	CoordKind() photon.CoordKind
	// DSquared returns the signed-squared distance of pos from the
	// emitter's defining surface (negative or small near/inside the body).
	DSquared(pos [4]float64) float64
	// CriticalValue is the DSquared threshold below which pos is inside the
	// emitter body.
	CriticalValue() float64
	// SafetyValue is the DSquared threshold below which the integrator must
	// bound its step via DeltaMax (the buffer shell of spec.md §4.4).
	SafetyValue() float64
	// DeltaMax returns the maximum integrator step permitted at pos,
	// consulted by the integrator's step governor on every proposed step.
	DeltaMax(pos [4]float64) float64
	// Bounds returns the cylindrical bounding box (r_out, z_min, z_max)
	// used by Impact's cheap-reject and entry search.
	Bounds() (rOut, zMin, zMax float64)
	// OpticallyThin forces α_ν=0 in the radiative-transfer accumulation
	// regardless of any tabulated opacity.
	OpticallyThin() bool
	// LocalVelocity returns the matter's timelike 4-velocity at pos, either
	// reconstructed from a tabulated field or computed analytically
	// (spec.md §4.4 "the sum is always a timelike 4-velocity").
	LocalVelocity(m metric.Metric, pos [4]float64) [4]float64
	// EmissivityOpacity returns the emission coefficient j_ν and absorption
	// coefficient α_ν at pos and frequency nu.
	EmissivityOpacity(pos [4]float64, nu float64) (j, alpha float64)
}
