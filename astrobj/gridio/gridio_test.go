package gridio

import (
	"bytes"
	"testing"
)

func TestNewGridCRPIX1Rebase(t *testing.T) {
	emiss := make([]float64, 1*2*2*2)
	vel := make([]float64, 3*2*2*2)
	g, err := NewGrid(1, 1, 5, 0, 1, 1, 2, 2, 2, 10.0, 2.0, 3.0, emiss, vel)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}
	want := 10.0 - 2.0*(3.0-1)
	if g.Nu0 != want {
		t.Errorf("Nu0 = %g, want %g", g.Nu0, want)
	}
}

func TestNewGridRejectsRepeatPhiBelowOne(t *testing.T) {
	emiss := make([]float64, 1*2*2*2)
	vel := make([]float64, 3*2*2*2)
	if _, err := NewGrid(0, 1, 5, 0, 1, 1, 2, 2, 2, 10.0, 2.0, 1.0, emiss, vel); err == nil {
		t.Fatal("expected an error for repeatPhi < 1")
	}
}

func TestNewGridDimensionMismatchIsInvariantError(t *testing.T) {
	_, err := NewGrid(1, 1, 5, 0, 1, 1, 2, 2, 2, 10.0, 2.0, 1.0, []float64{1, 2, 3}, make([]float64, 3*2*2*2))
	if err == nil {
		t.Fatal("expected an error for a mis-sized emissquant slice")
	}
}

func TestGridRoundTrip(t *testing.T) {
	emiss := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	vel := make([]float64, 3*2*2*2)
	for i := range vel {
		vel[i] = float64(i) * 0.5
	}
	g, err := NewGrid(1, 2, 8, -3, 3, 1, 2, 2, 2, 1.0, 0.5, 1, emiss, vel)
	if err != nil {
		t.Fatalf("NewGrid: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if got.Rin != g.Rin || got.Rout != g.Rout || got.Zmin != g.Zmin || got.Zmax != g.Zmax {
		t.Errorf("bounds mismatch after round-trip: got %+v, want %+v", got, g)
	}
	for i := range emiss {
		if got.Emissquant[i] != emiss[i] {
			t.Errorf("Emissquant[%d] = %g, want %g", i, got.Emissquant[i], emiss[i])
		}
	}
}
