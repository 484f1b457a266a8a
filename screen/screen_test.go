package screen

import (
	"math"
	"testing"

	"github.com/relgr/raytrace/metric"
)

func TestPixelRayNullNorm(t *testing.T) {
	m := metric.MinkowskiSpherical{}
	s := &Screen{
		ResX: 5, ResY: 5,
		FOV:           0.1,
		Distance:      100,
		Inclination:   1.2,
		PositionAngle: 0.3,
		Argument:      0,
		Metric:        m,
	}

	for i := 0; i < s.ResX; i++ {
		for j := 0; j < s.ResY; j++ {
			st, err := s.PixelRay(i, j)
			if err != nil {
				t.Fatalf("PixelRay(%d,%d): %v", i, j, err)
			}
			norm := m.Contract(st.Pos(), st.Mom(), st.Mom())
			if math.Abs(norm) > 1e-6 {
				t.Errorf("pixel (%d,%d): null norm = %g, want ~0", i, j, norm)
			}
			if st.Mom()[0] >= 0 {
				t.Errorf("pixel (%d,%d): p_t = %g, want negative (future-directed photon)", i, j, st.Mom()[0])
			}
		}
	}
}

func TestPixelRayOutOfRange(t *testing.T) {
	s := &Screen{ResX: 4, ResY: 4, FOV: 0.1, Distance: 10, Metric: metric.MinkowskiSpherical{}}
	if _, err := s.PixelRay(-1, 0); err == nil {
		t.Error("expected error for i=-1")
	}
	if _, err := s.PixelRay(0, 4); err == nil {
		t.Error("expected error for j=4")
	}
}

func TestPixelRayCentered(t *testing.T) {
	s := &Screen{
		ResX: 3, ResY: 3,
		FOV:         0.01,
		Distance:    50,
		Inclination: math.Pi / 2,
		Metric:      metric.MinkowskiSpherical{},
	}
	st, err := s.PixelRay(1, 1)
	if err != nil {
		t.Fatalf("PixelRay: %v", err)
	}
	if st[1] != 50 {
		t.Errorf("r = %g, want 50", st[1])
	}
}
