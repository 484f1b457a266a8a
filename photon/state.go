// Package photon implements the geodesic integrator: it drives a photon's
// 8-state (position + conjugate momentum) backward through coordinate time
// over a pluggable System (the RHS and step governor supplied by a metric
// and, optionally, an emitter), and records a WorldLine supporting
// interpolated lookup.
package photon

import "math"

// CoordKind selects the interpretation of the three spatial coordinates of
// a State.
type CoordKind uint8

const (
	// Spherical coordinates: x1=r, x2=θ, x3=φ.
	Spherical CoordKind = iota + 1
	// Cartesian coordinates: x1=x, x2=y, x3=z.
	Cartesian
)

// String implements fmt.Stringer.
func (k CoordKind) String() string {
	switch k {
	case Spherical:
		return "Spherical"
	case Cartesian:
		return "Cartesian"
	default:
		return "UnknownCoordKind"
	}
}

// State is a photon 8-state: (t, x1, x2, x3, p_t, p1, p2, p3), position and
// conjugate momentum.
type State [8]float64

// T is the coordinate time component.
func (s State) T() float64 { return s[0] }

// Pos returns the spatial 4-position (t, x1, x2, x3).
func (s State) Pos() [4]float64 { return [4]float64{s[0], s[1], s[2], s[3]} }

// Mom returns the 4-momentum (p_t, p1, p2, p3).
func (s State) Mom() [4]float64 { return [4]float64{s[4], s[5], s[6], s[7]} }

// Add returns s + o.
func (s State) Add(o State) State {
	var r State
	for i := range s {
		r[i] = s[i] + o[i]
	}
	return r
}

// Scale returns s * f.
func (s State) Scale(f float64) State {
	var r State
	for i := range s {
		r[i] = s[i] * f
	}
	return r
}

// InfNorm returns the infinity norm (max absolute component), used by the
// adaptive step-acceptance test.
func (s State) InfNorm() float64 {
	m := 0.0
	for _, v := range s {
		if a := math.Abs(v); a > m {
			m = a
		}
	}
	return m
}
