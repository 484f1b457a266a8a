// Package units implements the narrow unit-conversion collaborator spec.md
// §6 delegates to: scenery XML attributes may carry a unit name, and a
// Converter turns the tagged value into the system's internal geometrized
// units. No third-party unit-conversion library appears in the retrieval
// pack, so this package is a small built-in table rather than a binding to
// an external catalog — justified in DESIGN.md as narrow enough (six named
// units, spec.md §6) that the conversion is the whole of this package's
// job, not ambient plumbing a library would better own.
package units

import "github.com/relgr/raytrace/rterr"

// Converter converts a raw attribute value tagged with a unit name into
// the system's internal geometrized units.
type Converter interface {
	Convert(value float64, unit string) (float64, error)
}

const (
	kpcInGeometrical       = 3.0856775814913673e19 // 1 kpc in meters, informational scale factor
	yearInGeometrical      = 3.15576e7 * 299792458.0
	microasInRadian        = 4.84813681109536e-12
	degreeInRadian         = 0.017453292519943295
	sunMassInGeometrical   = 1.48e3 // GM_sun/c^2, meters
)

// table is the built-in Converter, covering every unit name spec.md §6
// lists: "geometrical", "yr", "kpc", "microas"/"µas", "degree"/"°",
// "sunmass".
type table struct{}

// Default is the built-in Converter.
var Default Converter = table{}

// Convert implements Converter.
func (table) Convert(value float64, unit string) (float64, error) {
	switch unit {
	case "", "geometrical":
		return value, nil
	case "yr":
		return value * yearInGeometrical, nil
	case "kpc":
		return value * kpcInGeometrical, nil
	case "microas", "µas":
		return value * microasInRadian, nil
	case "degree", "°":
		return value * degreeInRadian, nil
	case "sunmass":
		return value * sunMassInGeometrical, nil
	default:
		return 0, rterr.New(rterr.Configuration, "units", "unknown unit %q", unit)
	}
}
