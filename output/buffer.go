package output

// Properties is the per-pixel accumulator explicitly passed to Impact and
// its writeHitQuantities helper (spec.md §4.5 "explicitly passed accumulator per
// pixel", spec.md §9 design note replacing the source's global "properties"
// structures). Every pointer is nil unless the corresponding Quantities
// flag was requested, so writers must check before dereferencing.
type Properties struct {
	Requested Quantities

	Intensity    *float64
	EmissionTime *float64
	MinDistance  *float64
	FirstDistMin *float64
	Redshift     *float64

	// ImpactCoordsPh/Obj are the photon and object 8-states at first
	// impact (spec.md §4.5 "photon+object 8+8 coordinates").
	ImpactCoordsPh  *[8]float64
	ImpactCoordsObj *[8]float64

	// Spectrum/BinSpectrum point at the first channel of an n_spectral
	// channel-strided slice.
	Spectrum    []float64
	BinSpectrum []float64

	Opacity        *float64
	NbCrossEqPlane *int
}

// Buffer is the caller-owned output buffer of spec.md §6: one slot per
// requested scalar quantity per pixel, column-major in (i,j) over the
// requested pixel rectangle, spectral quantities stride n_spectral.
type Buffer struct {
	IMin, IMax, JMin, JMax int
	NSpectral              int
	Requested              Quantities

	Intensity    []float64
	EmissionTime []float64
	MinDistance  []float64
	FirstDistMin []float64
	Redshift     []float64

	ImpactCoordsPh  [][8]float64
	ImpactCoordsObj [][8]float64

	Spectrum    []float64 // len = npix * NSpectral
	BinSpectrum []float64 // len = npix * NSpectral

	Opacity        []float64
	NbCrossEqPlane []int
}

// NewBuffer allocates a Buffer sized for the pixel rectangle
// [iMin,iMax]x[jMin,jMax], pre-filling Intensity-family scalar slots with
// the NoHit sentinel (spec.md §8: "all Intensity-family outputs equal the
// configured no-hit sentinel" for a non-intersecting ray).
func NewBuffer(iMin, iMax, jMin, jMax, nSpectral int, req Quantities) *Buffer {
	npix := (iMax - iMin + 1) * (jMax - jMin + 1)
	b := &Buffer{IMin: iMin, IMax: iMax, JMin: jMin, JMax: jMax, NSpectral: nSpectral, Requested: req}

	fill := func(want Quantities) []float64 {
		if !req.Has(want) {
			return nil
		}
		s := make([]float64, npix)
		for i := range s {
			s[i] = NoHit
		}
		return s
	}

	b.Intensity = fill(Intensity)
	b.EmissionTime = fill(EmissionTime)
	b.MinDistance = fill(MinDistance)
	b.FirstDistMin = fill(FirstDistMin)
	b.Redshift = fill(Redshift)
	b.Opacity = fill(Opacity)

	if req.Has(ImpactCoords) {
		b.ImpactCoordsPh = make([][8]float64, npix)
		b.ImpactCoordsObj = make([][8]float64, npix)
	}
	if req.Has(NbCrossEqPlane) {
		b.NbCrossEqPlane = make([]int, npix)
	}
	fillSpectral := func(want Quantities) []float64 {
		if !req.Has(want) {
			return nil
		}
		s := make([]float64, npix*nSpectral)
		for i := range s {
			s[i] = NoHit
		}
		return s
	}
	b.Spectrum = fillSpectral(Spectrum)
	b.BinSpectrum = fillSpectral(BinSpectrum)
	return b
}

// index returns the column-major slot for pixel (i,j).
func (b *Buffer) index(i, j int) int {
	height := b.JMax - b.JMin + 1
	return (i-b.IMin)*height + (j - b.JMin)
}

// PropertiesFor returns a Properties whose pointers/sub-slices alias this
// Buffer's storage for pixel (i,j) — exactly one worker ever writes
// through the returned value (spec.md §3 ownership rule: "output-buffer
// slots are written exactly once by the worker assigned to the
// corresponding pixel").
func (b *Buffer) PropertiesFor(i, j int) *Properties {
	idx := b.index(i, j)
	p := &Properties{Requested: b.Requested}
	if b.Intensity != nil {
		p.Intensity = &b.Intensity[idx]
	}
	if b.EmissionTime != nil {
		p.EmissionTime = &b.EmissionTime[idx]
	}
	if b.MinDistance != nil {
		p.MinDistance = &b.MinDistance[idx]
	}
	if b.FirstDistMin != nil {
		p.FirstDistMin = &b.FirstDistMin[idx]
	}
	if b.Redshift != nil {
		p.Redshift = &b.Redshift[idx]
	}
	if b.Opacity != nil {
		p.Opacity = &b.Opacity[idx]
	}
	if b.ImpactCoordsPh != nil {
		p.ImpactCoordsPh = &b.ImpactCoordsPh[idx]
		p.ImpactCoordsObj = &b.ImpactCoordsObj[idx]
	}
	if b.NbCrossEqPlane != nil {
		p.NbCrossEqPlane = &b.NbCrossEqPlane[idx]
	}
	if b.Spectrum != nil {
		p.Spectrum = b.Spectrum[idx*b.NSpectral : (idx+1)*b.NSpectral]
	}
	if b.BinSpectrum != nil {
		p.BinSpectrum = b.BinSpectrum[idx*b.NSpectral : (idx+1)*b.NSpectral]
	}
	return p
}
