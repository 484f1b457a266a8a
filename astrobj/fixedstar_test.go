package astrobj

import (
	"math"
	"testing"

	"github.com/relgr/raytrace/metric"
)

func TestFixedStarDSquaredSign(t *testing.T) {
	f := FixedStar{Radius: 12}
	if d2 := f.DSquared([4]float64{0, 6, math.Pi / 2, 0}); d2 >= 0 {
		t.Errorf("inside the star: d2 = %g, want negative", d2)
	}
	if d2 := f.DSquared([4]float64{0, 20, math.Pi / 2, 0}); d2 <= 0 {
		t.Errorf("outside the star: d2 = %g, want positive", d2)
	}
}

func TestFixedStarLocalVelocityStaticObserver(t *testing.T) {
	f := FixedStar{Radius: 12}
	m := metric.MinkowskiSpherical{}
	u := f.LocalVelocity(m, [4]float64{0, 20, math.Pi / 2, 0})
	if u[1] != 0 || u[2] != 0 || u[3] != 0 {
		t.Errorf("expected zero spatial velocity, got %v", u)
	}
	if math.Abs(u[0]-1) > 1e-9 {
		t.Errorf("u^t = %g, want 1 for a static Minkowski observer", u[0])
	}
}

func TestFixedStarOpticallyThinForcesZeroOpacity(t *testing.T) {
	f := FixedStar{Radius: 12, SpectrumConst: 1e-3, OpacityConst: 1e-2, Thin: true}
	j, alpha := f.EmissivityOpacity([4]float64{0, 6, math.Pi / 2, 0}, 1.0)
	if alpha != 0 {
		t.Errorf("alpha = %g, want 0 for an optically-thin emitter", alpha)
	}
	if j != 1e-3 {
		t.Errorf("j = %g, want 1e-3", j)
	}
}
