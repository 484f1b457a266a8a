// Package gridio persists the tabulated emitter grid of spec.md §6: the
// mandatory scalar metadata (RepeatPhi, Rin, Rout, Zmin, Zmax) and the
// emissquant/velocity extensions, including the CRPIX1 axis-1 rebasing
// convention. No FITS (or other tabular-extension) library appears
// anywhere in the retrieval pack, so this package owns the interface's
// semantics directly over encoding/gob — consistent with the teacher's own
// preference for plain stdlib codecs at its narrow I/O boundaries
// (export.go's encoding/json and encoding/csv use).
package gridio

import (
	"encoding/gob"
	"io"

	"github.com/relgr/raytrace/rterr"
)

// Grid is the in-memory tabulated emitter grid, dimensioned
// (NNu, NPhi, NZ, NR) for Emissquant and (3, NPhi, NZ, NR) for Velocity,
// both stored flattened in row-major order.
type Grid struct {
	// RepeatPhi is spec.md §3's repeat_φ: the table's n_φ cells span only
	// 2π/repeat_φ of physical azimuth and are periodically replicated
	// repeat_φ times to cover the full circle (Δφ=2π/(n_φ·repeat_φ),
	// "azimuthal periodicity uses modular indexing by repeat_φ").
	RepeatPhi              int
	Rin, Rout, Zmin, Zmax  float64
	NNu, NPhi, NZ, NR      int
	Nu0, DNu               float64 // already rebased: Nu0 = CRVAL1 - DNu*(CRPIX1-1)

	Emissquant []float64 // len = NNu*NPhi*NZ*NR
	Velocity   []float64 // len = 3*NPhi*NZ*NR, (φ', z', r') per cell
}

// NewGrid builds a Grid from raw FITS-header-style fields, performing the
// CRPIX1 rebasing spec.md §6/§9 describes: "when CRPIX1≠1, ν₀ is rebased as
// ν₀ − Δν·(CRPIX1−1)".
func NewGrid(repeatPhi int, rin, rout, zmin, zmax float64, nNu, nPhi, nZ, nR int, crval1, cdelt1, crpix1 float64, emissquant, velocity []float64) (*Grid, error) {
	if len(emissquant) != nNu*nPhi*nZ*nR {
		return nil, rterr.New(rterr.Invariant, "gridio", "emissquant length %d does not match dims %dx%dx%dx%d", len(emissquant), nNu, nPhi, nZ, nR)
	}
	if len(velocity) != 3*nPhi*nZ*nR {
		return nil, rterr.New(rterr.Invariant, "gridio", "velocity length %d does not match dims 3x%dx%dx%d", len(velocity), nPhi, nZ, nR)
	}
	if repeatPhi < 1 {
		return nil, rterr.New(rterr.Invariant, "gridio", "repeatPhi must be >= 1, got %d", repeatPhi)
	}
	nu0 := crval1
	if crpix1 != 1 {
		nu0 = crval1 - cdelt1*(crpix1-1)
	}
	return &Grid{
		RepeatPhi: repeatPhi, Rin: rin, Rout: rout, Zmin: zmin, Zmax: zmax,
		NNu: nNu, NPhi: nPhi, NZ: nZ, NR: nR,
		Nu0: nu0, DNu: cdelt1,
		Emissquant: emissquant, Velocity: velocity,
	}, nil
}

// gobGrid is an alias of Grid for encoding/gob purposes (gob encodes Grid
// directly since all fields are exported), so the wire format is Grid's
// exported fields as they stand.
type gobGrid = Grid

// Write serializes the grid.
func Write(w io.Writer, g *Grid) error {
	return gob.NewEncoder(w).Encode((*gobGrid)(g))
}

// Read deserializes a grid previously written by Write.
func Read(r io.Reader) (*Grid, error) {
	var g gobGrid
	if err := gob.NewDecoder(r).Decode(&g); err != nil {
		return nil, rterr.New(rterr.DataIO, "gridio", "decode grid: %v", err)
	}
	return (*Grid)(&g), nil
}

// EmissquantAt returns the tabulated emissivity at flattened grid indices
// (iNu, iPhi, iZ, iR).
func (g *Grid) EmissquantAt(iNu, iPhi, iZ, iR int) float64 {
	idx := ((iNu*g.NPhi+iPhi)*g.NZ+iZ)*g.NR + iR
	return g.Emissquant[idx]
}

// VelocityAt returns the tabulated (φ', z', r') at grid indices
// (iPhi, iZ, iR).
func (g *Grid) VelocityAt(iPhi, iZ, iR int) (phiPrime, zPrime, rPrime float64) {
	base := (iPhi*g.NZ+iZ)*g.NR + iR
	stride := g.NPhi * g.NZ * g.NR
	return g.Velocity[base], g.Velocity[stride+base], g.Velocity[2*stride+base]
}
