package photon

import (
	"math"

	"github.com/relgr/raytrace/rterr"
)

// tableau is a Butcher tableau for an embedded Runge-Kutta pair: a
// higher-order solution (weights b) and a lower-order embedded solution
// (weights bstar) sharing the same stage derivatives, used for local error
// estimation and adaptive step control. Generalizes the fixed k1..k4
// accumulation loop of the teacher's src/integrator/rk4.go to an arbitrary
// number of stages.
type tableau struct {
	name    string
	c       []float64
	a       [][]float64
	b       []float64
	bstar   []float64
	order   int
}

// shrinkFactor is the standard step-shrink factor applied on a rejected
// adaptive step (spec.md §4.3).
const shrinkFactor = 0.5

// growFactor caps how much an accepted step may grow.
const growFactor = 2.0

func tableauFor(kind Kind) *tableau {
	switch kind {
	case RKF78:
		return rkf78Tableau
	case CashKarp54:
		return cashKarp54Tableau
	case DOPRI5:
		return dopri5Tableau
	case CashKarp54Classic:
		return cashKarp54ClassicTableau
	default:
		return nil
	}
}

// integrateAdaptive drives the geodesic with an embedded Runge-Kutta pair,
// shrinking the step on rejection and reporting IntegratorStalled if the
// step collapses to DeltaMin without meeting tolerance (spec.md §4.3).
func (p *Photon) integrateAdaptive() error {
	tab := tableauFor(p.tuning.Kind)
	if tab == nil {
		p.status = TerminatedNormal
		p.err = rterr.New(rterr.Invariant, "photon", "unknown adaptive integrator kind %s", p.tuning.Kind)
		return p.err
	}

	s := p.wl.Last()
	step := p.tuning.Delta
	if step == 0 {
		step = 0.01
	}
	// direction: backward tracing decreases coordinate time, so the
	// affine-parameter step itself may carry a sign matching dt/dλ's sign
	// at the seed; callers seed RHS so that stepping with a positive
	// λ-step already integrates t backward. We keep step's sign as given.

	for {
		if status, reason, stop := p.stopCheck(s); stop {
			p.status = status
			p.err = reason
			return nil
		}

		bounded := p.governedDelta(s, step)
		next, errEst, ok := stepOnce(p.sys, tab, s, bounded)
		if !ok {
			p.status = TerminatedNormal
			return nil
		}

		tol := math.Max(p.tuning.AbsTol, p.tuning.RelTol*next.InfNorm())
		if tol <= 0 {
			tol = p.tuning.AbsTol
		}
		if errEst <= tol || math.Abs(bounded) <= p.tuning.DeltaMin {
			p.wl.Append(next)
			p.iters++
			s = next
			if errEst > 0 && errEst < tol/4 {
				step = bounded * growFactor
			} else {
				step = bounded
			}
			continue
		}

		shrunk := bounded * shrinkFactor
		if math.Abs(shrunk) < p.tuning.DeltaMin {
			p.status = TerminatedStalled
			p.err = rterr.New(rterr.IntegratorStalled, "photon",
				"step shrank below DeltaMin (%.3e) without meeting tolerance at t=%g", p.tuning.DeltaMin, s.T())
			return p.err
		}
		step = shrunk
	}
}

// stepOnce computes one embedded-pair trial step from s with the given
// step size, returning the higher-order candidate state, the infinity-norm
// difference between the high- and low-order solutions (the local error
// estimate), and whether the step could be formed at all.
func stepOnce(sys System, tab *tableau, s State, h float64) (State, float64, bool) {
	n := len(tab.c)
	ks := make([]State, n)
	for i := 0; i < n; i++ {
		acc := s
		for j := 0; j < i; j++ {
			if tab.a[i][j] == 0 {
				continue
			}
			acc = acc.Add(ks[j].Scale(tab.a[i][j] * h))
		}
		ks[i] = sys.RHS(acc)
	}

	var high, low State
	for i := 0; i < n; i++ {
		if tab.b[i] != 0 {
			high = high.Add(ks[i].Scale(tab.b[i] * h))
		}
		if tab.bstar[i] != 0 {
			low = low.Add(ks[i].Scale(tab.bstar[i] * h))
		}
	}
	highState := s.Add(high)
	lowState := s.Add(low)
	diff := highState.Add(lowState.Scale(-1))
	return highState, diff.InfNorm(), true
}
