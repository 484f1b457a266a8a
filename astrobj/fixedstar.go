package astrobj

import (
	"math"

	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/photon"
)

// FixedStar is a static, spherically-symmetric emitter body at the
// coordinate origin — the geometric-predicate half of the Emitter
// capability set (spec.md §4.4 scenario 1). Unlike Disk it does not
// rotate: its matter is the local static observer, analogous to
// MinkowskiSpherical.CircularVelocity's static-observer fallback but
// derived here via the metric's own null/timelike solve so it works
// unchanged under Kerr as well.
type FixedStar struct {
	Radius float64

	SpectrumConst, SpectrumExp float64
	OpacityConst, OpacityExp   float64
	Thin                       bool
}

var _ Emitter = FixedStar{}

// Name implements Emitter.
func (FixedStar) Name() string { return "FixedStar" }

// CoordKind implements Emitter.
func (FixedStar) CoordKind() photon.CoordKind { return photon.Spherical }

// DSquared implements Emitter: r² − Radius², zero on the spherical surface
// and negative inside the body.
func (f FixedStar) DSquared(pos [4]float64) float64 {
	r := pos[1]
	return r*r - f.Radius*f.Radius
}

// CriticalValue implements Emitter.
func (FixedStar) CriticalValue() float64 { return 0 }

// SafetyValue implements Emitter: a buffer shell of one stellar radius
// beyond the surface.
func (f FixedStar) SafetyValue() float64 {
	shell := 2 * f.Radius
	return shell*shell - f.Radius*f.Radius
}

// DeltaMax implements Emitter, per spec.md §4.4's "typically
// 0.1·√d² clamped to the safety shell".
func (f FixedStar) DeltaMax(pos [4]float64) float64 {
	d2 := f.DSquared(pos)
	if d2 >= f.SafetyValue() {
		return math.Inf(1)
	}
	d := math.Sqrt(math.Abs(d2))
	step := 0.1 * d
	if step < 1e-6 {
		step = 1e-6
	}
	return step
}

// Bounds implements Emitter: a sphere's cylindrical bounding box.
func (f FixedStar) Bounds() (rOut, zMin, zMax float64) {
	return f.Radius, -f.Radius, f.Radius
}

// OpticallyThin implements Emitter.
func (f FixedStar) OpticallyThin() bool { return f.Thin }

// LocalVelocity implements Emitter: the static observer at pos (zero
// spatial velocity), promoted to a full 4-velocity by the metric's own
// timelike normalization so the result is correct under any metric,
// stationary or not.
func (FixedStar) LocalVelocity(m metric.Metric, pos [4]float64) [4]float64 {
	ut := m.SysPrimeToTdot(pos, [3]float64{0, 0, 0}, false)
	return [4]float64{ut, 0, 0, 0}
}

// EmissivityOpacity implements Emitter with the power-law profiles of
// spec.md §8 scenario 1: j_ν = C·ν^a, α_ν = C'·ν^a'.
func (f FixedStar) EmissivityOpacity(pos [4]float64, nu float64) (j, alpha float64) {
	j = f.SpectrumConst * math.Pow(nu, f.SpectrumExp)
	if f.Thin {
		return j, 0
	}
	alpha = f.OpacityConst * math.Pow(nu, f.OpacityExp)
	return j, alpha
}
