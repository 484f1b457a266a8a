package astrobj

import (
	"math"

	"github.com/relgr/raytrace/astrobj/gridio"
	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/photon"
	"github.com/relgr/raytrace/rterr"
)

// Disk is a tabulated, grid-mode emitter (spec.md §4.4 scenarios 4-5):
// emission, opacity, and matter velocity are looked up in a
// (ν, φ, z, r)-tabulated Grid rather than computed from a closed form.
type Disk struct {
	Grid *gridio.Grid
	Thin bool

	// OpacityConst/OpacityExp give the power-law absorption coefficient
	// α_ν = OpacityConst·ν^OpacityExp, since spec.md §6 mandates only the
	// emissquant and velocity extensions — no tabulated opacity — so an
	// optically-thick Disk needs an analytic opacity law the same way
	// FixedStar does.
	OpacityConst, OpacityExp float64
}

var _ Emitter = (*Disk)(nil)

// Name implements Emitter.
func (*Disk) Name() string { return "Disk" }

// CoordKind implements Emitter.
func (*Disk) CoordKind() photon.CoordKind { return photon.Spherical }

// toCylindrical converts a spherical (t,r,θ,φ) position to cylindrical
// (r_cyl, z, φ), per spec.md §4.4 "convert position to cylindrical using
// the metric's coordinate kind".
func toCylindrical(pos [4]float64) (rCyl, z, phi float64) {
	r, theta, phi := pos[1], pos[2], pos[3]
	sinT, cosT := math.Sincos(theta)
	return r * sinT, r * cosT, phi
}

// clampIndex applies spec.md §4.4's "clamped from n to n−1; values
// strictly above n are a fatal GridIndexOutOfRange" rule, symmetrically at
// the low end.
func clampIndex(i, n int) (int, error) {
	if i == n {
		return n - 1, nil
	}
	if i == -1 {
		return 0, nil
	}
	if i < -1 || i > n {
		return 0, rterr.New(rterr.GridIndexOutOfRange, "astrobj", "grid index %d out of range [0,%d)", i, n)
	}
	return i, nil
}

// GetIndices implements spec.md §4.4's grid-mode indexing, reproduced
// bit-exact for test reproducibility: ν clamp, cylindrical conversion, φ
// wrap, z symmetry about z=0 when Zmin≥0, and tolerant one-cell clamping on
// z and r.
func (d *Disk) GetIndices(pos [4]float64, nu float64) (iNu, iPhi, iZ, iR int, err error) {
	g := d.Grid

	if nu <= g.Nu0 {
		iNu = 0
	} else {
		iNu = int(math.Floor((nu - g.Nu0) / g.DNu))
		if iNu > g.NNu-1 {
			iNu = g.NNu - 1
		}
	}

	rCyl, z, phi := toCylindrical(pos)

	// Δφ=2π/(n_φ·repeat_φ): the table spans only 1/repeat_φ of the full
	// circle, so the raw cell index (which can run over the full
	// n_φ·repeat_φ range) is folded back onto the table's n_φ cells by
	// indexing modulo n_φ (spec.md §3 "azimuthal periodicity uses modular
	// indexing by repeat_φ").
	dPhi := 2 * math.Pi / (float64(g.NPhi) * float64(g.RepeatPhi))
	for phi < 0 {
		phi += 2 * math.Pi
	}
	iPhi = int(math.Floor(phi/dPhi)) % g.NPhi
	if iPhi < 0 {
		iPhi += g.NPhi
	}

	if z < 0 && g.Zmin >= 0 {
		z = -z
	}
	dZ := (g.Zmax - g.Zmin) / float64(g.NZ)
	iZraw := int(math.Floor((z - g.Zmin) / dZ))
	iZ, err = clampIndex(iZraw, g.NZ)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	dR := (g.Rout - g.Rin) / float64(g.NR)
	iRraw := int(math.Floor((rCyl - g.Rin) / dR))
	iR, err = clampIndex(iRraw, g.NR)
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return iNu, iPhi, iZ, iR, nil
}

// DSquared implements Emitter: squared distance outside the cylindrical
// grid box, zero inside it.
func (d *Disk) DSquared(pos [4]float64) float64 {
	rCyl, z, _ := toCylindrical(pos)
	g := d.Grid
	var dr, dz float64
	switch {
	case rCyl < g.Rin:
		dr = g.Rin - rCyl
	case rCyl > g.Rout:
		dr = rCyl - g.Rout
	}
	switch {
	case z < g.Zmin:
		dz = g.Zmin - z
	case z > g.Zmax:
		dz = z - g.Zmax
	}
	return dr*dr + dz*dz
}

// CriticalValue implements Emitter.
func (*Disk) CriticalValue() float64 { return 1e-9 }

// SafetyValue implements Emitter: a buffer shell one radial cell wide.
func (d *Disk) SafetyValue() float64 {
	cell := (d.Grid.Rout - d.Grid.Rin) / float64(d.Grid.NR)
	return cell * cell
}

// DeltaMax implements Emitter.
func (d *Disk) DeltaMax(pos [4]float64) float64 {
	d2 := d.DSquared(pos)
	if d2 >= d.SafetyValue() {
		return math.Inf(1)
	}
	step := 0.1 * math.Sqrt(d2)
	if step < 1e-6 {
		step = 1e-6
	}
	return step
}

// Bounds implements Emitter.
func (d *Disk) Bounds() (rOut, zMin, zMax float64) {
	return d.Grid.Rout, d.Grid.Zmin, d.Grid.Zmax
}

// OpticallyThin implements Emitter.
func (d *Disk) OpticallyThin() bool { return d.Thin }

// LocalVelocity implements Emitter: reconstructs the tabulated (φ', z',
// r') at pos's grid cell, then promotes it to a full 4-velocity via the
// metric's timelike normalization (spec.md §4.4 "either reconstructed from
// tabulated (φ′, z′, r′) then promoted ... or computed analytically").
func (d *Disk) LocalVelocity(m metric.Metric, pos [4]float64) [4]float64 {
	_, iPhi, iZ, iR, err := d.GetIndices(pos, d.Grid.Nu0)
	if err != nil {
		return [4]float64{1, 0, 0, 0}
	}
	phiPrime, zPrime, rPrime := d.Grid.VelocityAt(iPhi, iZ, iR)
	ut := m.SysPrimeToTdot(pos, [3]float64{rPrime, zPrime, phiPrime}, false)
	return [4]float64{ut, rPrime, zPrime, phiPrime}
}

// EmissivityOpacity implements Emitter: tabulated emission coefficient at
// pos and nu, and the power-law opacity OpacityConst·ν^OpacityExp, which is
// zero whenever Thin forces the optically-thin approximation (spec.md §4.4).
func (d *Disk) EmissivityOpacity(pos [4]float64, nu float64) (j, alpha float64) {
	iNu, iPhi, iZ, iR, err := d.GetIndices(pos, nu)
	if err != nil {
		return 0, 0
	}
	j = d.Grid.EmissquantAt(iNu, iPhi, iZ, iR)
	if d.Thin {
		return j, 0
	}
	alpha = d.OpacityConst * math.Pow(nu, d.OpacityExp)
	return j, alpha
}
