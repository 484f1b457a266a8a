// Package sceneryio deserializes the scenery XML input of spec.md §6 into
// a raytrace.Scenery, using stdlib encoding/xml — consistent with the
// teacher's own preference for plain stdlib codecs at its I/O boundaries
// (export.go's encoding/json and encoding/csv), since no XML library
// appears anywhere in the retrieval pack.
package sceneryio

import (
	"encoding/xml"
	"io"

	"github.com/relgr/raytrace/astrobj"
	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/output"
	"github.com/relgr/raytrace/photon"
	"github.com/relgr/raytrace/raytrace"
	"github.com/relgr/raytrace/rterr"
	"github.com/relgr/raytrace/screen"
	"github.com/relgr/raytrace/units"
)

// document mirrors the recognized Scenery XML options of spec.md §6.
type document struct {
	XMLName xml.Name `xml:"Scenery"`

	Metric struct {
		Kind string  `xml:"kind,attr"`
		M    float64 `xml:"M"`
		A    float64 `xml:"A"`
	} `xml:"Metric"`

	Screen struct {
		ResX          int          `xml:"ResX"`
		ResY          int          `xml:"ResY"`
		FOV           angleField   `xml:"FOV"`
		Distance      float64      `xml:"Distance"`
		Inclination   angleField   `xml:"Inclination"`
		PositionAngle angleField   `xml:"PositionAngle"`
		Argument      angleField   `xml:"Argument"`
		Time          float64      `xml:"Time"`
	} `xml:"Screen"`

	Astrobj struct {
		Kind          string  `xml:"kind,attr"`
		Radius        float64 `xml:"Radius"`
		SpectrumConst float64 `xml:"SpectrumConst"`
		SpectrumExp   float64 `xml:"SpectrumExp"`
		OpacityConst  float64 `xml:"OpacityConst"`
		OpacityExp    float64 `xml:"OpacityExp"`
		OpticallyThin bool    `xml:"OpticallyThin"`
	} `xml:"Astrobj"`

	Quantities string `xml:"Quantities"`
	NThreads   int    `xml:"NThreads"`

	NSpectral     int     `xml:"NSpectral"`
	SpectralNuMin float64 `xml:"SpectralNuMin"`
	SpectralNuMax float64 `xml:"SpectralNuMax"`

	Delta         float64 `xml:"Delta"`
	Adaptive      *bool   `xml:"Adaptive"`
	Integrator    string  `xml:"Integrator"`
	AbsTol        float64 `xml:"AbsTol"`
	RelTol        float64 `xml:"RelTol"`
	DeltaMax      float64 `xml:"DeltaMax"`
	DeltaMaxOverR float64 `xml:"DeltaMaxOverR"`
	DeltaMin      float64 `xml:"DeltaMin"`
	Maxiter       int     `xml:"Maxiter"`
	MinimumTime   float64 `xml:"MinimumTime"`
	PrimaryOnly   bool    `xml:"PrimaryOnly"`
}

// angleField carries a value plus an optional unit attribute (spec.md §6:
// "Units may be supplied as attributes").
type angleField struct {
	Value float64 `xml:",chardata"`
	Unit  string  `xml:"unit,attr"`
}

func (a angleField) resolve(conv units.Converter) (float64, error) {
	return conv.Convert(a.Value, a.Unit)
}

// Load parses scenery XML from r into a *raytrace.Scenery, using conv to
// resolve unit-tagged fields.
func Load(r io.Reader, conv units.Converter) (*raytrace.Scenery, error) {
	var doc document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, rterr.New(rterr.DataIO, "sceneryio", "decode scenery XML: %v", err)
	}
	return build(&doc, conv)
}

func build(doc *document, conv units.Converter) (*raytrace.Scenery, error) {
	m, err := buildMetric(doc)
	if err != nil {
		return nil, err
	}

	fov, err := doc.Screen.FOV.resolve(conv)
	if err != nil {
		return nil, err
	}
	incl, err := doc.Screen.Inclination.resolve(conv)
	if err != nil {
		return nil, err
	}
	posAngle, err := doc.Screen.PositionAngle.resolve(conv)
	if err != nil {
		return nil, err
	}
	arg, err := doc.Screen.Argument.resolve(conv)
	if err != nil {
		return nil, err
	}

	scr := &screen.Screen{
		ResX: doc.Screen.ResX, ResY: doc.Screen.ResY,
		FOV: fov, Distance: doc.Screen.Distance,
		Inclination: incl, PositionAngle: posAngle, Argument: arg,
		Time: doc.Screen.Time, Metric: m,
	}

	em, err := buildEmitter(doc)
	if err != nil {
		return nil, err
	}

	q, err := output.Parse(doc.Quantities)
	if err != nil {
		return nil, err
	}

	tuning := photon.DefaultTuning()
	if doc.Integrator != "" {
		kind, ok := photon.ParseKind(doc.Integrator)
		if !ok {
			return nil, rterr.New(rterr.Configuration, "sceneryio", "unknown Integrator %q", doc.Integrator)
		}
		tuning.Kind = kind
	}
	if doc.Adaptive != nil {
		tuning.Adaptive = *doc.Adaptive
	}
	if doc.Delta != 0 {
		tuning.Delta = doc.Delta
	}
	if doc.AbsTol != 0 {
		tuning.AbsTol = doc.AbsTol
	}
	if doc.RelTol != 0 {
		tuning.RelTol = doc.RelTol
	}
	if doc.DeltaMax != 0 {
		tuning.DeltaMax = doc.DeltaMax
	}
	tuning.DeltaMaxOverR = doc.DeltaMaxOverR
	if doc.DeltaMin != 0 {
		tuning.DeltaMin = doc.DeltaMin
	}
	if doc.Maxiter != 0 {
		tuning.Maxiter = doc.Maxiter
	}
	if doc.MinimumTime != 0 {
		tuning.MinimumTime = doc.MinimumTime
	}
	tuning.PrimaryOnly = doc.PrimaryOnly

	nThreads := doc.NThreads
	if nThreads <= 0 {
		nThreads = 1
	}

	return &raytrace.Scenery{
		Metric: m, Screen: scr, Emitter: em, Tuning: tuning,
		Quantities: q, NThreads: nThreads, NuObs: 1.0,
		NSpectral:     doc.NSpectral,
		SpectralNuMin: doc.SpectralNuMin,
		SpectralNuMax: doc.SpectralNuMax,
	}, nil
}

func buildMetric(doc *document) (metric.Metric, error) {
	switch doc.Metric.Kind {
	case "", "Minkowski", "MinkowskiSpherical":
		return metric.MinkowskiSpherical{}, nil
	case "Kerr":
		return metric.Kerr{M: doc.Metric.M, A: doc.Metric.A}, nil
	default:
		return nil, rterr.New(rterr.Configuration, "sceneryio", "unknown Metric kind %q", doc.Metric.Kind)
	}
}

func buildEmitter(doc *document) (astrobj.Emitter, error) {
	switch doc.Astrobj.Kind {
	case "", "FixedStar":
		return &astrobj.FixedStar{
			Radius: doc.Astrobj.Radius,
			SpectrumConst: doc.Astrobj.SpectrumConst, SpectrumExp: doc.Astrobj.SpectrumExp,
			OpacityConst: doc.Astrobj.OpacityConst, OpacityExp: doc.Astrobj.OpacityExp,
			Thin: doc.Astrobj.OpticallyThin,
		}, nil
	case "Disk":
		return nil, rterr.New(rterr.Configuration, "sceneryio", "Disk astrobj requires a tabulated grid file; use gridio.Read and construct astrobj.Disk directly")
	default:
		return nil, rterr.New(rterr.Configuration, "sceneryio", "unknown Astrobj kind %q", doc.Astrobj.Kind)
	}
}
