// Package raytrace is the aggregate root of spec.md §3: Scenery ties
// together a metric, a screen, an emitter, integrator tuning, and the
// requested output quantities, and owns the photon template every pixel
// clones from. Grounded on the teacher's Mission (mission.go), the single
// object that owns a Spacecraft/Orbit/Perturbations/propagator and drives
// them to completion — generalized here from one propagated trajectory to
// an (iMin..iMax, jMin..jMax) grid of independently traced photons.
package raytrace

import (
	kitlog "github.com/go-kit/kit/log"

	"github.com/relgr/raytrace/astrobj"
	"github.com/relgr/raytrace/logging"
	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/output"
	"github.com/relgr/raytrace/photon"
	"github.com/relgr/raytrace/rterr"
	"github.com/relgr/raytrace/screen"
)

// Scenery is the read-only-after-construction aggregate root (spec.md §3
// "built once from external input, then read-only during ray-tracing").
type Scenery struct {
	Metric  metric.Metric
	Screen  *screen.Screen
	Emitter astrobj.Emitter
	Tuning  photon.Tuning

	Quantities output.Quantities
	NThreads   int
	NSpectral  int
	NuObs      float64 // observation frequency used by Impact's redshift lookup

	// SpectralNuMin/SpectralNuMax bound the NSpectral evenly-spaced
	// observation-frame channel frequencies the Spectrum/BinSpectrum
	// combinators (spec.md §4.5) sample, independent of the scalar NuObs
	// used by Redshift/Intensity.
	SpectralNuMin, SpectralNuMax float64

	logger kitlog.Logger
}

// log lazily initializes and returns this Scenery's logger, the way the
// teacher's SCLogInit (spacecraft.go) initializes a Spacecraft's logger on
// first use rather than requiring every construction site to wire one in.
func (s *Scenery) log() kitlog.Logger {
	if s.logger == nil {
		s.logger = logging.New("raytrace")
	}
	return s.logger
}

// ChannelNu returns the NSpectral channel observation frequencies the
// Spectrum/BinSpectrum combinators sample, evenly spaced over
// [SpectralNuMin, SpectralNuMax] inclusive. Returns nil when NSpectral<=0.
func (s *Scenery) ChannelNu() []float64 {
	if s.NSpectral <= 0 {
		return nil
	}
	nu := make([]float64, s.NSpectral)
	if s.NSpectral == 1 {
		nu[0] = s.SpectralNuMin
		return nu
	}
	step := (s.SpectralNuMax - s.SpectralNuMin) / float64(s.NSpectral-1)
	for k := range nu {
		nu[k] = s.SpectralNuMin + float64(k)*step
	}
	return nu
}

// system composes a metric.Metric and an astrobj.Emitter into the
// photon.System capability set photon.Photon consumes, keeping the photon
// package free of any metric/astrobj import (spec.md §9's "single
// authoritative owner... no cycles are needed").
type system struct {
	m metric.Metric
	e astrobj.Emitter
}

var _ photon.System = system{}

func (s system) CoordKind() photon.CoordKind { return s.m.CoordKind() }
func (s system) RHS(st photon.State) photon.State { return s.m.RHS(st) }

func (s system) DeltaMax(st photon.State) float64 {
	if s.e == nil {
		return 1e300
	}
	return s.e.DeltaMax(st.Pos())
}

func (s system) Terminal(st photon.State) (rterr.Kind, bool) {
	return s.m.Terminal(st)
}

// validate checks the Configuration-class invariants spec.md §7 raises at
// scenery construction.
func (s *Scenery) validate() error {
	if s.Metric == nil {
		return rterr.New(rterr.Configuration, "raytrace", "Scenery requires a Metric")
	}
	if s.Screen == nil {
		return rterr.New(rterr.Configuration, "raytrace", "Scenery requires a Screen")
	}
	if s.Quantities == 0 {
		return rterr.New(rterr.Configuration, "raytrace", "Scenery requires at least one requested Quantity")
	}
	if s.Quantities.Spectral() && s.NSpectral <= 0 {
		return rterr.New(rterr.Configuration, "raytrace", "Spectrum/BinSpectrum requested but NSpectral <= 0")
	}
	if s.Quantities.Spectral() && s.SpectralNuMax <= s.SpectralNuMin {
		return rterr.New(rterr.Configuration, "raytrace", "Spectrum/BinSpectrum requested but SpectralNuMax <= SpectralNuMin")
	}
	if s.NThreads <= 0 {
		s.NThreads = 1
	}
	s.log().Log("level", "info", "subsys", "scenery", "msg", "validated", "metric", s.Metric.Name(), "quantities", s.Quantities, "nthreads", s.NThreads)
	return nil
}

// template returns a fresh, unseeded Photon sharing this Scenery's
// composed system and tuning — the prototype every pixel clones (spec.md
// glossary: "Photon template").
func (s *Scenery) template() *photon.Photon {
	return photon.New(system{m: s.Metric, e: s.Emitter}, s.Tuning)
}

// ThreadSafe reports whether both the metric and emitter (when present)
// declare themselves safe for concurrent read-only use, per spec.md §5
// ("Thread-unsafety of a concrete metric must be declared; the dispatcher
// then falls back to single-threaded execution").
func (s *Scenery) ThreadSafe() bool {
	if !s.Metric.ThreadSafe() {
		return false
	}
	if ts, ok := s.Emitter.(interface{ ThreadSafe() bool }); ok {
		return ts.ThreadSafe()
	}
	return true
}
