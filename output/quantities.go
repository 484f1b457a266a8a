// Package output implements the Quantities selector and the per-pixel
// Output Properties accumulator of spec.md §3/§4.5: an explicitly passed
// struct, not global state, generalizing the teacher's MissionState
// value-per-timestep pattern (mission.go) to one-struct-per-pixel.
package output

import (
	"math"
	"strings"

	"github.com/relgr/raytrace/rterr"
)

// Quantities is a bitmask selector over the closed vocabulary of
// requestable outputs.
type Quantities uint16

const (
	Intensity Quantities = 1 << iota
	EmissionTime
	MinDistance
	FirstDistMin
	Redshift
	ImpactCoords
	Spectrum
	BinSpectrum
	Opacity
	NbCrossEqPlane
)

var names = map[string]Quantities{
	"Intensity":      Intensity,
	"EmissionTime":   EmissionTime,
	"MinDistance":    MinDistance,
	"FirstDistMin":   FirstDistMin,
	"Redshift":       Redshift,
	"ImpactCoords":   ImpactCoords,
	"Spectrum":       Spectrum,
	"BinSpectrum":    BinSpectrum,
	"Opacity":        Opacity,
	"NbCrossEqPlane": NbCrossEqPlane,
}

// Has reports whether q requests f.
func (q Quantities) Has(f Quantities) bool { return q&f != 0 }

// Spectral reports whether q requests a channel-strided quantity.
func (q Quantities) Spectral() bool { return q.Has(Spectrum) || q.Has(BinSpectrum) }

// String implements fmt.Stringer, listing the requested names.
func (q Quantities) String() string {
	var parts []string
	for n, f := range names {
		if q.Has(f) {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, " ")
}

// Parse parses the space-separated "Quantities" scenery directive of
// spec.md §6, e.g. `"Intensity Redshift[microas]"` — an optional bracketed
// unit suffix is accepted and ignored here (units are resolved by the
// sceneryio/units layer, not this package).
func Parse(spec string) (Quantities, error) {
	var q Quantities
	for _, tok := range strings.Fields(spec) {
		name := tok
		if idx := strings.IndexByte(tok, '['); idx >= 0 {
			name = tok[:idx]
		}
		f, ok := names[name]
		if !ok {
			return 0, rterr.New(rterr.Configuration, "output", "unknown quantity %q", name)
		}
		q |= f
	}
	if q == 0 {
		return 0, rterr.New(rterr.Configuration, "output", "Quantities directive named no recognized quantity")
	}
	return q, nil
}

// NoHit is the sentinel value written to a scalar Intensity-family output
// for a pixel whose ray never intersects the emitter (spec.md §8).
var NoHit = math.NaN()
