// Package metric implements the Metric capability record of spec.md §4.2:
// coordinate kind, geodesic right-hand side, circular-orbit velocity, and
// the timelike/null normalization used to promote a spatial velocity to a
// full 4-velocity. Concrete metrics are plain structs implementing this
// capability set, generalizing the teacher's switch-on-kind
// Perturbations.Perturb (perturbations.go) and Mission.Func (mission.go)
// RHS-assembly pattern, per the "capability record, not a class hierarchy"
// design note of spec.md §9.
package metric

import (
	"gonum.org/v1/gonum/mat"

	"github.com/relgr/raytrace/photon"
	"github.com/relgr/raytrace/rterr"
)

// Metric is the capability set every concrete spacetime must implement.
type Metric interface {
	// Name identifies the metric for logging/diagnostics.
	Name() string
	// CoordKind reports the coordinate chart this metric's RHS expects.
	CoordKind() photon.CoordKind
	// RHS evaluates the geodesic right-hand side: dstate/dλ.
	RHS(s photon.State) photon.State
	// CircularVelocity returns the 4-velocity of a circular geodesic orbit
	// at pos, used by emitter velocity fields that assume Keplerian
	// rotation.
	CircularVelocity(pos [4]float64) [4]float64
	// SysPrimeToTdot solves for the time component of a 4-vector given its
	// spatial components, normalized to either a timelike 4-velocity
	// (null=false, sPrime holds contravariant dx^i/dτ — the case the
	// emitter's velocity field uses) or a null 4-momentum (null=true,
	// sPrime holds covariant p_i — the case the screen uses to seed a
	// photon), per spec.md §4.2's "(null or timelike, depending on emitter
	// choice)".
	SysPrimeToTdot(pos [4]float64, sPrime [3]float64, null bool) float64
	// Contract evaluates g(a,b) at pos; used for the null-norm invariant
	// check (spec.md §8).
	Contract(pos [4]float64, a, b [4]float64) float64
	// Terminal reports a metric-declared terminal event (horizon
	// crossing, chart exit) at state s, if any.
	Terminal(s photon.State) (rterr.Kind, bool)
	// ThreadSafe reports whether this metric's internal state (if any) may
	// be shared, read-only, across concurrently-tracing pixel workers. A
	// metric declaring false forces the dispatcher to a single-threaded
	// fallback (spec.md §5).
	ThreadSafe() bool
}

// contravariant4 is a symmetric 4x4 contravariant metric g^{μν}.
type contravariant4 [4][4]float64

// invertBlock inverts a metric whose only off-diagonal coupling is between
// indices 0 (t) and 3 (φ), with indices 1 (r/x) and 2 (θ/y) diagonal — the
// structure of every stationary, axisymmetric metric this package ships.
// Avoids a general 4x4 inversion (and its attendant bug surface) in favor
// of the closed-form 2x2 block inverse plus two scalar inverses, the block
// itself inverted via gonum.org/v1/gonum/mat the way estimate.go's
// `Φinv.Inverse(e.Φ)` inverts its state-transition matrix — panicking on
// failure, since a singular t-φ block here means a degenerate metric, not
// a recoverable runtime condition.
func invertBlock(gtt, gtp, gpp, g11, g22 float64) contravariant4 {
	block := mat.NewDense(2, 2, []float64{gtt, gtp, gtp, gpp})
	var blockInv mat.Dense
	if err := blockInv.Inverse(block); err != nil {
		panic("metric: could not invert t-phi block")
	}
	var inv contravariant4
	inv[0][0] = blockInv.At(0, 0)
	inv[0][3] = blockInv.At(0, 1)
	inv[3][0] = blockInv.At(1, 0)
	inv[3][3] = blockInv.At(1, 1)
	inv[1][1] = 1 / g11
	inv[2][2] = 1 / g22
	return inv
}

// hamiltonianRHS evaluates the geodesic equation from a contravariant
// metric alone, using central-difference derivatives of g^{μν} with
// respect to the spatial coordinates (the metric never depends on t for
// the stationary metrics this package ships). This is the standard
// numerical-Hamiltonian technique used by ray-tracing codes whose
// Christoffel symbols are too unwieldy to hand-derive reliably (the
// teacher's own RHS assembly in mission.go is likewise a direct evaluation
// of a closed-form force law, not a re-derivation from first principles
// each call — this is the generalization of that idiom to an arbitrary
// contravariant metric).
func hamiltonianRHS(ginv func(pos [4]float64) contravariant4, s photon.State) photon.State {
	const h = 1e-6
	pos := s.Pos()
	mom := s.Mom()
	g := ginv(pos)

	var dxdλ [4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			dxdλ[i] += g[i][j] * mom[j]
		}
	}

	var dpdλ [4]float64
	for i := 1; i < 4; i++ {
		posP, posM := pos, pos
		posP[i] += h
		posM[i] -= h
		gp := ginv(posP)
		gm := ginv(posM)
		sum := 0.0
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				sum += (gp[j][k] - gm[j][k]) / (2 * h) * mom[j] * mom[k]
			}
		}
		dpdλ[i] = -0.5 * sum
	}

	return photon.State{dxdλ[0], dxdλ[1], dxdλ[2], dxdλ[3], dpdλ[0], dpdλ[1], dpdλ[2], dpdλ[3]}
}

// contractWith evaluates a^T g b given a contravariant metric's covariant
// dual is not directly at hand; callers needing g(a,b) on *momenta*
// contract with the contravariant metric directly (g^{μν} a_μ b_ν), which
// is what Contract uses throughout this package since the integrator's
// State always carries momenta, never raw velocity covectors. Built on
// gonum.org/v1/gonum/mat's Dense/VecDense, the same matrix type
// screen/screen.go composes its camera rotations from.
func contractWith(g contravariant4, a, b [4]float64) float64 {
	gm := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			gm.Set(i, j, g[i][j])
		}
	}
	var gb mat.VecDense
	gb.MulVec(gm, mat.NewVecDense(4, b[:]))
	return mat.Dot(mat.NewVecDense(4, a[:]), &gb)
}
