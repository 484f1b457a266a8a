package astrobj

import (
	"math"
	"testing"

	"github.com/relgr/raytrace/astrobj/gridio"
)

func testGrid(t *testing.T) *gridio.Grid {
	t.Helper()
	nNu, nPhi, nZ, nR := 1, 4, 3, 5
	emiss := make([]float64, nNu*nPhi*nZ*nR)
	for i := range emiss {
		emiss[i] = float64(i)
	}
	vel := make([]float64, 3*nPhi*nZ*nR)
	g, err := gridio.NewGrid(1, 1, 10, 0, 2, nNu, nPhi, nZ, nR, 1.0, 0.5, 1, emiss, vel)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func testGridWithRepeatPhi(t *testing.T, repeatPhi int) *gridio.Grid {
	t.Helper()
	nNu, nPhi, nZ, nR := 1, 4, 3, 5
	emiss := make([]float64, nNu*nPhi*nZ*nR)
	for i := range emiss {
		emiss[i] = float64(i)
	}
	vel := make([]float64, 3*nPhi*nZ*nR)
	g, err := gridio.NewGrid(repeatPhi, 1, 10, 0, 2, nNu, nPhi, nZ, nR, 1.0, 0.5, 1, emiss, vel)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	return g
}

func TestDiskGetIndicesNuClamp(t *testing.T) {
	d := &Disk{Grid: testGrid(t)}
	pos := [4]float64{0, 5, math.Pi / 2, 0.1}
	iNu, _, _, _, err := d.GetIndices(pos, 0.5)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	if iNu != 0 {
		t.Errorf("iNu = %d, want 0 for nu <= nu0", iNu)
	}
}

func TestDiskGetIndicesPhiWrap(t *testing.T) {
	d := &Disk{Grid: testGrid(t)}
	// phi = -pi/4 should wrap to 7pi/4, landing in the last quadrant bin.
	pos := [4]float64{0, 5, math.Pi / 2, -math.Pi / 4}
	_, iPhi, _, _, err := d.GetIndices(pos, 2.0)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	if iPhi != 3 {
		t.Errorf("iPhi = %d, want 3", iPhi)
	}
}

func TestDiskGetIndicesZSymmetry(t *testing.T) {
	d := &Disk{Grid: testGrid(t)}
	posPos := [4]float64{0, 5, math.Pi/2 - 0.1, 0}
	posNeg := [4]float64{0, 5, math.Pi/2 + 0.1, 0}
	_, _, izPos, _, err := d.GetIndices(posPos, 2.0)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	_, _, izNeg, _, err := d.GetIndices(posNeg, 2.0)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	if izPos != izNeg {
		t.Errorf("z-symmetric positions gave different iZ: %d vs %d", izPos, izNeg)
	}
}

func TestDiskGetIndicesOutOfRangeFatal(t *testing.T) {
	d := &Disk{Grid: testGrid(t)}
	// r well beyond r_out + one cell.
	pos := [4]float64{0, 1000, math.Pi / 2, 0}
	_, _, _, _, err := d.GetIndices(pos, 2.0)
	if err == nil {
		t.Fatal("expected GridIndexOutOfRange error")
	}
}

func TestDiskGetIndicesRepeatPhiFoldsPeriodicReplicas(t *testing.T) {
	// repeat_phi=2 over n_phi=4 cells means the table spans only half the
	// circle (pi radians); a point one physical-table-width (pi) further
	// around the full circle must fold onto the same cell.
	d := &Disk{Grid: testGridWithRepeatPhi(t, 2)}
	pos1 := [4]float64{0, 5, math.Pi / 2, 0.1}
	pos2 := [4]float64{0, 5, math.Pi / 2, math.Pi + 0.1}
	_, iPhi1, _, _, err := d.GetIndices(pos1, 2.0)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	_, iPhi2, _, _, err := d.GetIndices(pos2, 2.0)
	if err != nil {
		t.Fatalf("GetIndices: %v", err)
	}
	if iPhi1 != iPhi2 {
		t.Errorf("periodic replicas at phi=%g and phi=%g gave different iPhi: %d vs %d", 0.1, math.Pi+0.1, iPhi1, iPhi2)
	}
}

func TestDiskGetIndicesOneCellTolerance(t *testing.T) {
	g := testGrid(t)
	d := &Disk{Grid: g}
	// r exactly at Rout: i_r raw == NR, must clamp to NR-1, not error.
	pos := [4]float64{0, g.Rout, math.Pi / 2, 0}
	_, _, _, iR, err := d.GetIndices(pos, 2.0)
	if err != nil {
		t.Fatalf("GetIndices at Rout: %v", err)
	}
	if iR != g.NR-1 {
		t.Errorf("iR = %d, want %d", iR, g.NR-1)
	}
}
