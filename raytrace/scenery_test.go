package raytrace

import (
	"context"
	"math"
	"testing"

	"github.com/relgr/raytrace/astrobj"
	"github.com/relgr/raytrace/astrobj/gridio"
	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/output"
	"github.com/relgr/raytrace/photon"
	"github.com/relgr/raytrace/rterr"
	"github.com/relgr/raytrace/screen"
)

func flatBlobScenery() *Scenery {
	sc := &screen.Screen{
		ResX: 8, ResY: 8,
		FOV:           0.05,
		Distance:      100,
		Inclination:   math.Pi / 2,
		PositionAngle: 0,
		Metric:        metric.MinkowskiSpherical{},
	}
	tuning := photon.DefaultTuning()
	tuning.Delta = 0.1
	tuning.Maxiter = 2000
	tuning.MinimumTime = 200
	return &Scenery{
		Metric:     metric.MinkowskiSpherical{},
		Screen:     sc,
		Emitter:    &astrobj.FixedStar{Radius: 12, SpectrumConst: 1e-3, OpacityConst: 1e-2, Thin: true},
		Tuning:     tuning,
		Quantities: output.Intensity | output.MinDistance,
		NThreads:   2,
	}
}

func TestSceneryValidateRequiresQuantities(t *testing.T) {
	sc := flatBlobScenery()
	sc.Quantities = 0
	if err := sc.validate(); err == nil {
		t.Fatal("expected Configuration error for zero Quantities")
	}
}

func TestSceneryThreadSafeWithStatelessMetricAndEmitter(t *testing.T) {
	sc := flatBlobScenery()
	if !sc.ThreadSafe() {
		t.Error("expected a stateless MinkowskiSpherical+FixedStar scenery to report thread-safe")
	}
}

func TestRayTraceFlatBlob(t *testing.T) {
	sc := flatBlobScenery()
	buf, err := RayTrace(context.Background(), sc, 0, 7, 0, 7)
	if err != nil {
		t.Fatalf("RayTrace: %v", err)
	}
	hit := false
	for _, v := range buf.Intensity {
		if !math.IsNaN(v) {
			hit = true
			if v <= 0 {
				t.Errorf("a hit pixel has non-positive intensity: %g", v)
			}
		}
	}
	if !hit {
		t.Error("expected at least one pixel to hit the emitter")
	}
}

func TestRayTraceThreadParity(t *testing.T) {
	sc1 := flatBlobScenery()
	sc1.NThreads = 1
	buf1, err := RayTrace(context.Background(), sc1, 0, 7, 0, 7)
	if err != nil {
		t.Fatalf("RayTrace NThreads=1: %v", err)
	}

	sc4 := flatBlobScenery()
	sc4.NThreads = 4
	buf4, err := RayTrace(context.Background(), sc4, 0, 7, 0, 7)
	if err != nil {
		t.Fatalf("RayTrace NThreads=4: %v", err)
	}

	for i := range buf1.Intensity {
		a, b := buf1.Intensity[i], buf4.Intensity[i]
		if math.IsNaN(a) != math.IsNaN(b) {
			t.Fatalf("pixel %d: NaN mismatch between thread counts", i)
			continue
		}
		if !math.IsNaN(a) && a != b {
			t.Errorf("pixel %d: Intensity differs between NThreads=1 (%g) and NThreads=4 (%g)", i, a, b)
		}
	}
}

// kerrScenery aims a narrow screen straight at a rotating hole from
// distance 50, mirroring flatBlobScenery's center-pixel-at-origin geometry
// (spec.md §8 scenario 2).
func kerrScenery() *Scenery {
	k := metric.Kerr{M: 1, A: 0.5}
	sc := &screen.Screen{
		ResX: 4, ResY: 4,
		FOV:           0.02,
		Distance:      50,
		Inclination:   math.Pi / 2,
		PositionAngle: 0,
		Metric:        k,
	}
	tuning := photon.DefaultTuning()
	tuning.Delta = 0.02
	tuning.Maxiter = 5000
	tuning.MinimumTime = 1e6
	return &Scenery{
		Metric:     k,
		Screen:     sc,
		Tuning:     tuning,
		Quantities: output.Intensity,
		NThreads:   1,
	}
}

// TestKerrHorizonEscapeTerminatesOnHorizon drives the pixel at
// (ResX/2, ResY/2) — half a pixel off the optical axis at this even
// resolution, so its angular momentum is small but nonzero — into a Kerr
// hole and checks it is declared Terminated-horizon, not merely stopped by
// Maxiter/MinimumTime.
func TestKerrHorizonEscapeTerminatesOnHorizon(t *testing.T) {
	sc := kerrScenery()
	s0, err := sc.Screen.PixelRay(sc.Screen.ResX/2, sc.Screen.ResY/2)
	if err != nil {
		t.Fatalf("PixelRay: %v", err)
	}
	ph := sc.template()
	ph.Seed(s0)
	if err := ph.Integrate(); err != nil {
		if rerr, ok := err.(*rterr.Error); !ok || rerr.Kind.Fatal() {
			t.Fatalf("Integrate: %v", err)
		}
	}
	if ph.Status() != photon.TerminatedHorizon {
		t.Fatalf("Status() = %s, want Terminated-horizon for a nearly radial ingoing Kerr photon", ph.Status())
	}
}

// TestKerrEscapeToInfinityTerminatesCheaply seeds a photon already beyond
// Kerr's r>1e6 escape threshold and checks Terminal's cheap O(1) radial
// check fires within a handful of steps rather than burning the Maxiter
// budget (spec.md §8 scenario 3).
func TestKerrEscapeToInfinityTerminatesCheaply(t *testing.T) {
	k := metric.Kerr{M: 1, A: 0.5}
	pos := [4]float64{0, 2e6, math.Pi / 2, 0}
	pt := k.SysPrimeToTdot(pos, [3]float64{-1, 0, 0}, true)
	s0 := photon.State{pos[0], pos[1], pos[2], pos[3], pt, -1, 0, 0}

	tuning := photon.DefaultTuning()
	tuning.Delta = 1.0
	tuning.Maxiter = 5000
	tuning.MinimumTime = 1e9

	sc := &Scenery{Metric: k, Screen: &screen.Screen{ResX: 1, ResY: 1, FOV: 0.01, Distance: 2e6, Metric: k}, Tuning: tuning, Quantities: output.Intensity, NThreads: 1}
	ph := sc.template()
	ph.Seed(s0)
	if err := ph.Integrate(); err != nil {
		if rerr, ok := err.(*rterr.Error); !ok || rerr.Kind.Fatal() {
			t.Fatalf("Integrate: %v", err)
		}
	}
	if ph.Status() != photon.TerminatedEscape {
		t.Fatalf("Status() = %s, want Terminated-escape for a photon already beyond r=1e6", ph.Status())
	}
	if ph.Iterations() > 5 {
		t.Errorf("expected a cheap reject (few iterations), got %d", ph.Iterations())
	}
}

// TestRayTraceWithImpactCoordsReRendersAtStoredGeometry drives a full
// RayTrace to capture ImpactCoords, then re-renders with a brighter emitter
// through RayTraceWithImpactCoords (spec.md §8 scenario 4), checking every
// previously-hit pixel tracks the emissivity change without re-integrating.
func TestRayTraceWithImpactCoordsReRendersAtStoredGeometry(t *testing.T) {
	sc := flatBlobScenery()
	sc.Quantities = output.Intensity | output.ImpactCoords
	buf, err := RayTrace(context.Background(), sc, 0, 7, 0, 7)
	if err != nil {
		t.Fatalf("RayTrace: %v", err)
	}

	hits := 0
	for _, ph8 := range buf.ImpactCoordsPh {
		if ph8 != ([8]float64{}) {
			hits++
		}
	}
	if hits == 0 {
		t.Fatal("expected at least one hit pixel to compare against")
	}

	sc2 := flatBlobScenery()
	sc2.Quantities = output.Intensity
	sc2.Emitter = &astrobj.FixedStar{Radius: 12, SpectrumConst: 5e-3, Thin: true}

	reBuf, err := RayTraceWithImpactCoords(sc2, 0, 7, 0, 7, buf.ImpactCoordsPh, buf.ImpactCoordsObj)
	if err != nil {
		t.Fatalf("RayTraceWithImpactCoords: %v", err)
	}

	for i := range buf.Intensity {
		orig, re := buf.Intensity[i], reBuf.Intensity[i]
		if math.IsNaN(orig) != math.IsNaN(re) {
			t.Fatalf("pixel %d: hit/no-hit mismatch between original and re-render", i)
		}
		if !math.IsNaN(orig) && re <= orig {
			t.Errorf("pixel %d: re-rendered Intensity %g should exceed original %g (SpectrumConst raised 5x)", i, re, orig)
		}
	}
}

// diskScenery builds a flat-metric scenery whose Disk grid spans only half
// the azimuthal circle (RepeatPhi=2 over NPhi=4 cells) and replicates
// periodically, observed from the given PositionAngle.
func diskScenery(positionAngle float64) *Scenery {
	emiss := []float64{1, 2, 3, 4}
	vel := make([]float64, 3*4*1*1)
	grid, err := gridio.NewGrid(2, 5, 15, -1, 1, 1, 4, 1, 1, 1.0, 1.0, 1, emiss, vel)
	if err != nil {
		panic(err)
	}
	sc := &screen.Screen{
		ResX: 6, ResY: 6,
		FOV:           0.3,
		Distance:      100,
		Inclination:   math.Pi / 3,
		PositionAngle: positionAngle,
		Metric:        metric.MinkowskiSpherical{},
	}
	tuning := photon.DefaultTuning()
	tuning.Delta = 0.1
	tuning.Maxiter = 4000
	tuning.MinimumTime = 300
	return &Scenery{
		Metric:     metric.MinkowskiSpherical{},
		Screen:     sc,
		Emitter:    &astrobj.Disk{Grid: grid, Thin: true},
		Tuning:     tuning,
		Quantities: output.Intensity,
		NThreads:   2,
	}
}

// TestRayTraceDiskRepeatPhiImageSymmetry checks that RepeatPhi's periodic
// replication is honored end to end through the dispatcher and Impact, not
// just at GetIndices in isolation (spec.md §8 scenario 5): rotating the
// observer's PositionAngle by pi views the same physical configuration,
// since the grid's azimuthal period is pi when RepeatPhi=2.
func TestRayTraceDiskRepeatPhiImageSymmetry(t *testing.T) {
	bufA, err := RayTrace(context.Background(), diskScenery(0), 0, 5, 0, 5)
	if err != nil {
		t.Fatalf("RayTrace PositionAngle=0: %v", err)
	}
	bufB, err := RayTrace(context.Background(), diskScenery(math.Pi), 0, 5, 0, 5)
	if err != nil {
		t.Fatalf("RayTrace PositionAngle=pi: %v", err)
	}

	hit := false
	for i := range bufA.Intensity {
		a, b := bufA.Intensity[i], bufB.Intensity[i]
		if math.IsNaN(a) != math.IsNaN(b) {
			t.Fatalf("pixel %d: hit/no-hit mismatch between PositionAngle=0 and PositionAngle=pi", i)
		}
		if !math.IsNaN(a) {
			hit = true
			if math.Abs(a-b) > 1e-6*math.Max(1, math.Abs(a)) {
				t.Errorf("pixel %d: Intensity %g (angle 0) vs %g (angle pi) should match, RepeatPhi=2 makes the grid periodic every pi", i, a, b)
			}
		}
	}
	if !hit {
		t.Error("expected at least one pixel to hit the disk grid")
	}
}
