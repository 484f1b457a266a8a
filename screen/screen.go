// Package screen implements the virtual camera of spec.md §4.1: a pixel
// grid mapping pixel indices to an initial photon 4-position and null
// 4-momentum, via the observer's field of view, inclination,
// position-angle of the line of nodes, azimuthal argument, distance, and
// resolution. Inclination and PositionAngle place the observer at
// (θ, φ); the pixel offset is built in the observer's local frame and
// rotated about the inward radial direction by Argument (r1). The rotation
// helpers generalize the teacher's R1/R3/R3R1R3 (rotation.go) and are
// built with gonum.org/v1/gonum/mat (the currently-maintained successor to the
// teacher's defunct github.com/gonum/matrix/mat64, already the import path
// used elsewhere in the retrieval pack).
package screen

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/photon"
	"github.com/relgr/raytrace/rterr"
)

// Screen is the observer's virtual camera.
type Screen struct {
	ResX, ResY int     // pixel resolution
	FOV        float64 // full field of view, radians
	Distance   float64 // observer distance from the coordinate origin
	Inclination float64 // θ of the observer, radians
	PositionAngle float64 // φ of the observer (line-of-nodes position angle), radians
	Argument      float64 // in-plane rotation of the field of view, radians
	Time          float64 // coordinate time "now" at which the screen observes

	Metric metric.Metric
}

// checkRange returns a Configuration error when (i,j) lies outside
// [0,ResX)x[0,ResY).
func (s *Screen) checkRange(i, j int) error {
	if i < 0 || i >= s.ResX || j < 0 || j >= s.ResY {
		return rterr.New(rterr.Configuration, "screen", "pixel (%d,%d) out of range [0,%d)x[0,%d)", i, j, s.ResX, s.ResY)
	}
	return nil
}

// r1 and r3 are 3x3 rotation matrices about the first and third axes,
// generalized from the teacher's rotation.go R1/R3 (which built
// *mat64.Dense against orbital PQW/ECI frames).
func r1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

func r3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// r3r1r3 performs a 3-1-3 Euler rotation, generalizing rotation.go's
// R3R1R3 from the orbital-elements frame triple (Ω,i,ω) to the camera
// frame triple (PositionAngle, Inclination, Argument).
func r3r1r3(theta1, theta2, theta3 float64) *mat.Dense {
	var r1r3, out mat.Dense
	r1r3.Mul(r1(theta2), r3(theta3))
	out.Mul(r3(theta1), &r1r3)
	return &out
}

func mxv33(m *mat.Dense, v [3]float64) [3]float64 {
	var rv mat.VecDense
	rv.MulVec(m, mat.NewVecDense(3, v[:]))
	return [3]float64{rv.AtVec(0), rv.AtVec(1), rv.AtVec(2)}
}

// PixelRay returns the initial photon 4-position and null 4-momentum for
// pixel (i,j), per spec.md §4.1.
func (s *Screen) PixelRay(i, j int) (photon.State, error) {
	if err := s.checkRange(i, j); err != nil {
		return photon.State{}, err
	}

	// Small-angle offsets within the field of view, observer frame-local.
	alpha := (float64(i) - float64(s.ResX-1)/2) * s.FOV / float64(s.ResX)
	beta := (float64(j) - float64(s.ResY-1)/2) * s.FOV / float64(s.ResY)

	// Local direction toward the center, perturbed by (alpha,beta) in the
	// observer's tangent plane, then rotated by Argument within that plane.
	rot := r1(s.Argument)
	dirLocal := [3]float64{-1, alpha, beta}
	n := math.Sqrt(dirLocal[0]*dirLocal[0] + dirLocal[1]*dirLocal[1] + dirLocal[2]*dirLocal[2])
	dirLocal[0] /= n
	dirLocal[1] /= n
	dirLocal[2] /= n
	dirGlobal := mxv33(rot, dirLocal)

	switch s.Metric.CoordKind() {
	case photon.Spherical:
		return s.pixelRaySpherical(dirGlobal)
	default:
		return photon.State{}, rterr.New(rterr.CoordinateKindUnsupported, "screen", "screen only implements Spherical coordinate seeding")
	}
}

// pixelRaySpherical builds the seed state for a spherically-charted
// metric. The observer sits at (r=Distance, θ=Inclination, φ=PositionAngle);
// dirGlobal's components are interpreted directly as (dr,dθ,dφ)-like
// covariant momentum directions in the observer's local orthonormal frame,
// rescaled to coordinate-basis covariant momenta (p_θ scales by r, p_φ by
// r sinθ, the standard orthonormal-to-coordinate-basis factors for a
// spherical chart), then the metric's null normalization solves for p_t.
func (s *Screen) pixelRaySpherical(dirGlobal [3]float64) (photon.State, error) {
	r, theta, phi := s.Distance, s.Inclination, s.PositionAngle
	sinTheta := math.Sin(theta)

	pr := dirGlobal[0]
	ptheta := dirGlobal[1] * r
	pphi := dirGlobal[2] * r * sinTheta

	pt := s.Metric.SysPrimeToTdot([4]float64{s.Time, r, theta, phi}, [3]float64{pr, ptheta, pphi}, true)

	return photon.State{s.Time, r, theta, phi, pt, pr, ptheta, pphi}, nil
}
