package photon_test

import (
	"math"
	"testing"

	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/photon"
	"github.com/relgr/raytrace/rterr"
)

// noEmitterSystem wraps a bare metric.Metric into a photon.System with no
// emitter-supplied step governor, mirroring raytrace's unexported `system`
// adapter (raytrace/scenery.go) for the emitter==nil case.
type noEmitterSystem struct {
	m metric.Metric
}

func (s noEmitterSystem) CoordKind() photon.CoordKind   { return s.m.CoordKind() }
func (s noEmitterSystem) RHS(st photon.State) photon.State { return s.m.RHS(st) }
func (noEmitterSystem) DeltaMax(photon.State) float64   { return math.Inf(1) }
func (s noEmitterSystem) Terminal(st photon.State) (rterr.Kind, bool) {
	return s.m.Terminal(st)
}

// curvingSeed returns a flat-space seed with nonzero angular momentum, so
// the worldline actually curves (a purely radial photon integrates exactly
// under any order RK step, hiding truncation error).
func curvingSeed(m metric.Metric) photon.State {
	pos := [4]float64{0, 50, math.Pi / 2, 0}
	pr, ptheta, pphi := -1.0, 0.0, 5.0
	pt := m.SysPrimeToTdot(pos, [3]float64{pr, ptheta, pphi}, true)
	return photon.State{pos[0], pos[1], pos[2], pos[3], pt, pr, ptheta, pphi}
}

// nullNormWithin reports whether |g(k,k)| <= absTol + relTol*|k|^2 at st,
// per spec.md §8's per-accepted-step invariant.
func nullNormWithin(m metric.Metric, st photon.State, absTol, relTol float64) (float64, bool) {
	mom := st.Mom()
	g := m.Contract(st.Pos(), mom, mom)
	k2 := mom[0]*mom[0] + mom[1]*mom[1] + mom[2]*mom[2] + mom[3]*mom[3]
	return g, math.Abs(g) <= absTol+relTol*k2
}

func TestLegacyIntegrateHoldsNullNormInvariant(t *testing.T) {
	m := metric.MinkowskiSpherical{}
	tuning := photon.DefaultTuning()
	tuning.Kind = photon.Legacy
	tuning.Delta = 0.05
	tuning.Maxiter = 200
	tuning.MinimumTime = 5

	p := photon.New(noEmitterSystem{m: m}, tuning)
	p.Seed(curvingSeed(m))
	if err := p.Integrate(); err != nil {
		if rerr, ok := err.(*rterr.Error); !ok || rerr.Kind.Fatal() {
			t.Fatalf("Integrate: %v", err)
		}
	}
	if p.Iterations() == 0 {
		t.Fatal("expected at least one accepted Legacy step")
	}

	wl := p.WorldLine()
	for i := 0; i < wl.Len(); i++ {
		st := wl.At(i)
		g, ok := nullNormWithin(m, st, tuning.AbsTol, tuning.RelTol)
		if !ok {
			t.Errorf("step %d: |g(k,k)|=%g exceeds AbsTol+RelTol*|k|^2", i, g)
		}
	}
}

func TestCashKarp54IntegrateHoldsNullNormInvariant(t *testing.T) {
	m := metric.MinkowskiSpherical{}
	tuning := photon.DefaultTuning()
	tuning.Kind = photon.CashKarp54
	tuning.Delta = 0.05
	tuning.AbsTol = 1e-6
	tuning.RelTol = 1e-6
	tuning.DeltaMin = 1e-8
	tuning.Maxiter = 200
	tuning.MinimumTime = 5

	p := photon.New(noEmitterSystem{m: m}, tuning)
	p.Seed(curvingSeed(m))
	if err := p.Integrate(); err != nil {
		if rerr, ok := err.(*rterr.Error); !ok || rerr.Kind.Fatal() {
			t.Fatalf("Integrate: %v", err)
		}
	}
	if p.Iterations() == 0 {
		t.Fatal("expected at least one accepted CashKarp54 step")
	}

	wl := p.WorldLine()
	for i := 0; i < wl.Len(); i++ {
		st := wl.At(i)
		g, ok := nullNormWithin(m, st, tuning.AbsTol, tuning.RelTol)
		if !ok {
			t.Errorf("step %d: |g(k,k)|=%g exceeds AbsTol+RelTol*|k|^2", i, g)
		}
	}
}

func TestAdaptiveIntegrateReportsStalledWhenStepCollapses(t *testing.T) {
	m := metric.MinkowskiSpherical{}
	tuning := photon.DefaultTuning()
	tuning.Kind = photon.CashKarp54
	tuning.Delta = 2.0
	// Zero tolerances mean no nonzero local error estimate ever passes
	// acceptance, forcing repeated shrinks down through DeltaMin.
	tuning.AbsTol = 0
	tuning.RelTol = 0
	tuning.DeltaMin = 1e-3
	tuning.Maxiter = 10000
	tuning.MinimumTime = 1e9

	p := photon.New(noEmitterSystem{m: m}, tuning)
	p.Seed(curvingSeed(m))
	err := p.Integrate()
	if err == nil {
		t.Fatal("expected an IntegratorStalled error")
	}
	rerr, ok := err.(*rterr.Error)
	if !ok || rerr.Kind != rterr.IntegratorStalled {
		t.Fatalf("Integrate error = %v, want rterr.IntegratorStalled", err)
	}
	if p.Status() != photon.TerminatedStalled {
		t.Errorf("Status() = %s, want Terminated-stalled", p.Status())
	}
}

func TestRKF78AndCashKarp54ClassicProduceDistinctWorldlines(t *testing.T) {
	m := metric.MinkowskiSpherical{}
	kinds := []photon.Kind{photon.DOPRI5, photon.RKF78, photon.CashKarp54Classic}
	lastT := make([]float64, len(kinds))
	for i, k := range kinds {
		tuning := photon.DefaultTuning()
		tuning.Kind = k
		tuning.Delta = 0.05
		tuning.AbsTol = 1e-6
		tuning.RelTol = 1e-6
		tuning.DeltaMin = 1e-8
		tuning.Maxiter = 50
		tuning.MinimumTime = 2

		p := photon.New(noEmitterSystem{m: m}, tuning)
		p.Seed(curvingSeed(m))
		if err := p.Integrate(); err != nil {
			if rerr, ok := err.(*rterr.Error); !ok || rerr.Kind.Fatal() {
				t.Fatalf("%s Integrate: %v", k, err)
			}
		}
		if p.Iterations() == 0 {
			t.Fatalf("%s: expected at least one accepted step", k)
		}
		lastT[i] = p.WorldLine().Last().T()
	}
	if lastT[1] == lastT[2] {
		t.Errorf("RKF78 and CashKarp54Classic produced identical final t=%g; expected distinct tableaus to diverge", lastT[1])
	}
}
