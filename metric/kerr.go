package metric

import (
	"math"

	"github.com/relgr/raytrace/photon"
	"github.com/relgr/raytrace/rterr"
)

// Kerr is the Boyer-Lindquist rotating black hole spacetime (geometrized
// units, G=c=1), parameterized by mass M and spin parameter A = J/M.
// Stateless past construction (M, A are immutable fields), so it is
// declared thread-safe. Used by spec.md §8 scenario 2 (horizon escape).
type Kerr struct {
	M float64
	A float64
}

var _ Metric = Kerr{}

// Name implements Metric.
func (k Kerr) Name() string { return "Kerr" }

// CoordKind implements Metric.
func (Kerr) CoordKind() photon.CoordKind { return photon.Spherical }

// ThreadSafe implements Metric.
func (Kerr) ThreadSafe() bool { return true }

// horizonRadius returns the outer event horizon radius r+ = M + sqrt(M²-A²).
func (k Kerr) horizonRadius() float64 {
	disc := k.M*k.M - k.A*k.A
	if disc < 0 {
		disc = 0
	}
	return k.M + math.Sqrt(disc)
}

// Terminal implements Metric: a photon whose radial coordinate has fallen
// to (or inside, from roundoff) the outer horizon is lost; one that has
// drifted far beyond the region of interest has escaped to infinity.
func (k Kerr) Terminal(s photon.State) (rterr.Kind, bool) {
	r := s[1]
	if r <= k.horizonRadius()*1.0001 {
		return rterr.HorizonReached, true
	}
	if r > 1e6 {
		return rterr.EscapeReached, true
	}
	return 0, false
}

// covariant returns the nonzero Boyer-Lindquist metric components at pos.
func (k Kerr) covariant(pos [4]float64) (gtt, gtp, gpp, grr, gthth float64) {
	r, θ := pos[1], pos[2]
	sinθ := math.Sin(θ)
	sin2 := sinθ * sinθ
	cos2 := math.Cos(θ) * math.Cos(θ)
	Σ := r*r + k.A*k.A*cos2
	Δ := r*r - 2*k.M*r + k.A*k.A
	if Δ == 0 {
		Δ = 1e-9
	}
	gtt = -(1 - 2*k.M*r/Σ)
	gtp = -2 * k.M * k.A * r * sin2 / Σ
	gpp = (r*r + k.A*k.A + 2*k.M*k.A*k.A*r*sin2/Σ) * sin2
	grr = Σ / Δ
	gthth = Σ
	return
}

func (k Kerr) ginv(pos [4]float64) contravariant4 {
	gtt, gtp, gpp, grr, gthth := k.covariant(pos)
	return invertBlock(gtt, gtp, gpp, grr, gthth)
}

// RHS implements Metric via the generic numerical-Hamiltonian geodesic
// equation (see hamiltonianRHS): Kerr's Christoffel symbols are unwieldy
// enough that ray-tracing codes conventionally differentiate the
// contravariant metric numerically rather than hand-deriving them.
func (k Kerr) RHS(s photon.State) photon.State {
	return hamiltonianRHS(k.ginv, s)
}

// Contract implements Metric.
func (k Kerr) Contract(pos [4]float64, a, b [4]float64) float64 {
	return contractWith(k.ginv(pos), a, b)
}

// SysPrimeToTdot implements Metric, accounting for the t-φ cross term
// present in Kerr but not in MinkowskiSpherical.
//
// null=false: solves g_μν u^μ u^ν = -1 for u^t given contravariant
// (u^r, u^θ, u^φ) using the covariant metric (emitter velocity-field
// promotion case): g_tt (u^t)² + 2 g_tφ u^t u^φ + spatial = -1.
//
// null=true: solves g^{μν} p_μ p_ν = 0 for p_t given covariant
// (p_r, p_θ, p_φ) using the contravariant metric (photon-seeding case):
// g^tt (p_t)² + 2 g^tφ p_t p_φ + spatial = 0.
func (k Kerr) SysPrimeToTdot(pos [4]float64, sPrime [3]float64, null bool) float64 {
	x, y, z := sPrime[0], sPrime[1], sPrime[2]
	var A, B, C float64
	if null {
		g := k.ginv(pos)
		spatial := g[1][1]*x*x + g[2][2]*y*y + g[3][3]*z*z
		A, B, C = g[0][0], 2*g[0][3]*z, spatial
	} else {
		gtt, gtp, gpp, grr, gthth := k.covariant(pos)
		spatial := grr*x*x + gthth*y*y + gpp*z*z
		A, B, C = gtt, 2*gtp*z, spatial+1
	}
	disc := B*B - 4*A*C
	if disc < 0 {
		disc = 0
	}
	x1 := (-B + math.Sqrt(disc)) / (2 * A)
	x2 := (-B - math.Sqrt(disc)) / (2 * A)
	if null {
		// p_t is the covariant energy component, negative for a
		// future-directed photon: take the more negative root.
		if x1 < x2 {
			return x1
		}
		return x2
	}
	// u^t must be positive (future-directed observer): take the positive
	// root.
	if x1 > x2 {
		return x1
	}
	return x2
}

// CircularVelocity implements Metric: the 4-velocity of a prograde
// equatorial circular geodesic orbit at pos, per the standard Kerr
// Keplerian-orbit formula Ω = ±M^(1/2) / (r^(3/2) ± a M^(1/2)).
func (k Kerr) CircularVelocity(pos [4]float64) [4]float64 {
	r := pos[1]
	sqrtM := math.Sqrt(k.M)
	Ω := sqrtM / (math.Pow(r, 1.5) + k.A*sqrtM)
	gtt, gtp, gpp, _, _ := k.covariant(pos)
	denom := -(gtt + 2*gtp*Ω + gpp*Ω*Ω)
	if denom <= 0 {
		denom = 1e-12
	}
	ut := 1 / math.Sqrt(denom)
	return [4]float64{ut, 0, 0, ut * Ω}
}
