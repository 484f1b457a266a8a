package photon

import (
	"github.com/ChristopherRabotin/ode"
	"github.com/relgr/raytrace/rterr"
)

// odeIntegrable adapts a Photon to the Integrable contract
// github.com/ChristopherRabotin/ode expects: GetState/SetState/Stop/Func
// operating on a flat []float64, the same shape as the teacher's in-tree
// src/integrator.Integrable — generalized here from a 7-vector orbital
// state to the 8-state geodesic vector.
type odeIntegrable struct {
	p       *Photon
	current State
	stopped Status
	reason  *rterr.Error
}

func (o *odeIntegrable) GetState() []float64 {
	return o.current[:]
}

func (o *odeIntegrable) SetState(i uint64, s []float64) {
	var st State
	copy(st[:], s)
	o.current = st
	o.p.wl.Append(st)
	o.p.iters++
}

func (o *odeIntegrable) Stop(i uint64) bool {
	status, reason, stop := o.p.stopCheck(o.current)
	if stop {
		o.stopped = status
		o.reason = reason
	}
	return stop
}

func (o *odeIntegrable) Func(t float64, s []float64) []float64 {
	var st State
	copy(st[:], s)
	d := o.p.sys.RHS(st)
	return d[:]
}

// integrateLegacy drives the geodesic via github.com/ChristopherRabotin/ode's
// fixed-step RK4, consulting the emitter's DeltaMax governor by capping the
// configured step size before the solver is constructed (a fixed-step
// solver cannot re-derive its step mid-run, so Legacy bounds itself once
// up front by the governor evaluated at the seed state — adaptive
// integrators re-evaluate the governor every step, see adaptive.go).
func (p *Photon) integrateLegacy() error {
	seed := p.wl.Last()
	step := p.governedDelta(seed, p.tuning.Delta)
	if step == 0 {
		step = p.tuning.Delta
	}
	inte := &odeIntegrable{p: p, current: seed}
	solver := ode.NewRK4(0, step, inte)
	if _, _, err := solver.Solve(); err != nil {
		p.status = TerminatedStalled
		p.err = rterr.New(rterr.IntegratorStalled, "photon", "legacy RK4 solve failed: %v", err)
		return p.err
	}
	if inte.stopped != 0 {
		p.status = inte.stopped
		p.err = inte.reason
	} else {
		p.status = TerminatedNormal
	}
	return nil
}
