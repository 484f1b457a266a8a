package photon

import (
	"math"

	"github.com/relgr/raytrace/rterr"
)

// Status is the photon integration state machine of spec.md §4.3:
// Uninitialized -> Seeded -> Integrating -> {Terminated-normal,
// Terminated-stalled, Terminated-escape, Terminated-horizon}.
type Status uint8

const (
	Uninitialized Status = iota
	Seeded
	Integrating
	TerminatedNormal
	TerminatedStalled
	TerminatedEscape
	TerminatedHorizon
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Seeded:
		return "Seeded"
	case Integrating:
		return "Integrating"
	case TerminatedNormal:
		return "Terminated-normal"
	case TerminatedStalled:
		return "Terminated-stalled"
	case TerminatedEscape:
		return "Terminated-escape"
	case TerminatedHorizon:
		return "Terminated-horizon"
	default:
		return "UnknownStatus"
	}
}

// Photon owns one geodesic worldline. It is cloned from the scenery's
// template for every pixel and thereafter exclusively owned by the worker
// tracing that pixel (spec.md §3 ownership rules).
type Photon struct {
	sys    System
	tuning Tuning
	status Status
	wl     WorldLine
	tNow   float64
	iters  int
	err    *rterr.Error
}

// New builds a photon bound to sys (shared, read-only across clones) with
// the given tuning.
func New(sys System, tuning Tuning) *Photon {
	return &Photon{sys: sys, tuning: tuning, status: Uninitialized}
}

// Clone returns a new Photon sharing this one's System and Tuning but
// owning a fresh, empty worldline — one clone per pixel, per spec.md §3.
func (p *Photon) Clone() *Photon {
	return &Photon{sys: p.sys, tuning: p.tuning, status: Uninitialized}
}

// Seed sets the initial 4-position and null 4-momentum returned by the
// screen's pixelRay, transitioning Uninitialized -> Seeded.
func (p *Photon) Seed(s0 State) {
	p.wl = WorldLine{}
	p.wl.Append(s0)
	p.tNow = s0.T()
	p.status = Seeded
	p.err = nil
	p.iters = 0
}

// Status reports the current state-machine status.
func (p *Photon) Status() Status { return p.status }

// Err returns the terminal diagnostic, if any.
func (p *Photon) Err() *rterr.Error { return p.err }

// WorldLine returns the recorded worldline. Valid once Seeded.
func (p *Photon) WorldLine() *WorldLine { return &p.wl }

// Iterations returns the number of accepted integration steps taken.
func (p *Photon) Iterations() int { return p.iters }

// Integrate drives the geodesic backward from the seeded state until a
// terminal condition is reached: |t - tNow| > MinimumTime, Maxiter
// iterations, a metric-declared terminal event, or (adaptive integrators
// only) a stalled step. Transitions Seeded -> Integrating -> Terminated-*.
func (p *Photon) Integrate() error {
	if p.status != Seeded {
		return rterr.New(rterr.Invariant, "photon", "Integrate called from status %s, want Seeded", p.status)
	}
	p.status = Integrating

	if p.tuning.Kind == Legacy {
		return p.integrateLegacy()
	}
	return p.integrateAdaptive()
}

// stopCheck evaluates the maxiter/tMin/terminal-event stop conditions
// shared by every integrator kind. Returns (status, reason, stop).
func (p *Photon) stopCheck(s State) (Status, *rterr.Error, bool) {
	if kind, ok := p.sys.Terminal(s); ok {
		switch kind {
		case rterr.HorizonReached:
			return TerminatedHorizon, rterr.New(kind, "photon", "metric-declared horizon crossing at t=%g", s.T()), true
		case rterr.EscapeReached:
			return TerminatedEscape, rterr.New(kind, "photon", "metric-declared escape at t=%g", s.T()), true
		default:
			return TerminatedNormal, rterr.New(kind, "photon", "metric-declared terminal event at t=%g", s.T()), true
		}
	}
	if math.Abs(s.T()-p.tNow) > p.tuning.MinimumTime {
		return TerminatedNormal, nil, true
	}
	if p.tuning.Maxiter > 0 && p.iters >= p.tuning.Maxiter {
		return TerminatedNormal, nil, true
	}
	return Integrating, nil, false
}

// governedDelta clamps a proposed step by the tuning's DeltaMax/DeltaMin
// bounds, the emitter-supplied cooperative governor (sys.DeltaMax), and
// DeltaMaxOverR (a fraction of the current radial coordinate).
func (p *Photon) governedDelta(s State, proposed float64) float64 {
	max := p.tuning.DeltaMax
	if max <= 0 {
		max = math.Inf(1)
	}
	if g := p.sys.DeltaMax(s); g < max {
		max = g
	}
	if p.tuning.DeltaMaxOverR > 0 {
		r := radialCoord(p.sys.CoordKind(), s)
		if byR := p.tuning.DeltaMaxOverR * r; byR < max {
			max = byR
		}
	}
	d := proposed
	if math.Abs(d) > max {
		d = math.Copysign(max, d)
	}
	if p.tuning.DeltaMin > 0 && math.Abs(d) < p.tuning.DeltaMin {
		d = math.Copysign(p.tuning.DeltaMin, d)
	}
	return d
}

func radialCoord(kind CoordKind, s State) float64 {
	switch kind {
	case Spherical:
		return math.Abs(s[1])
	default:
		return math.Sqrt(s[1]*s[1] + s[2]*s[2] + s[3]*s[3])
	}
}
