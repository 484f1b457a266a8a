package photon

// WorldLine is the ordered sequence of integrated 8-states produced for one
// traced photon, monotonic in coordinate time (strictly decreasing for
// backward tracing). It is exclusively owned by the Photon that produced
// it.
type WorldLine struct {
	states []State
}

// Append records a newly-accepted state.
func (w *WorldLine) Append(s State) {
	w.states = append(w.states, s)
}

// Len returns the number of recorded states.
func (w *WorldLine) Len() int { return len(w.states) }

// At returns the k-th recorded state (getCoord(index, out) in spec.md §4.3).
func (w *WorldLine) At(i int) State { return w.states[i] }

// First returns the first recorded state (pixel entry).
func (w *WorldLine) First() State { return w.states[0] }

// Last returns the most recently recorded state.
func (w *WorldLine) Last() State { return w.states[len(w.states)-1] }

// Backward reports whether coordinate time decreases along the worldline,
// i.e. this is a backward-traced photon.
func (w *WorldLine) Backward() bool {
	return len(w.states) >= 2 && w.states[1].T() < w.states[0].T()
}

// GetCoord returns the interpolated full 8-state at coordinate time t,
// within the traced span. Uses linear interpolation between the two
// bracketing recorded samples (getCoord(t, out) in spec.md §4.3; dense
// output polynomials of the adaptive integrators degrade gracefully to
// this same linear scheme between accepted steps, which is how the
// teacher's own fixed-step integrator always behaved).
func (w *WorldLine) GetCoord(t float64) (State, bool) {
	n := len(w.states)
	if n == 0 {
		return State{}, false
	}
	if n == 1 {
		return w.states[0], w.states[0].T() == t
	}
	backward := w.Backward()
	for i := 0; i < n-1; i++ {
		a, b := w.states[i], w.states[i+1]
		lo, hi := a.T(), b.T()
		if backward {
			lo, hi = hi, lo
		}
		if t < lo || t > hi {
			continue
		}
		span := b.T() - a.T()
		if span == 0 {
			return a, true
		}
		frac := (t - a.T()) / span
		return lerp(a, b, frac), true
	}
	return State{}, false
}

func lerp(a, b State, frac float64) State {
	var r State
	for i := range a {
		r[i] = a[i] + frac*(b[i]-a[i])
	}
	return r
}

// Segment returns the pair of adjacent samples bracketing index i and i+1,
// used by the Impact algorithm (spec.md §4.4) which walks the worldline
// segment-by-segment.
func (w *WorldLine) Segment(i int) (State, State, bool) {
	if i < 0 || i+1 >= len(w.states) {
		return State{}, State{}, false
	}
	return w.states[i], w.states[i+1], true
}
