package astrobj

import (
	"math"

	"github.com/relgr/raytrace/metric"
	"github.com/relgr/raytrace/output"
	"github.com/relgr/raytrace/photon"
)

// epsTransmission is the optical-depth saturation threshold of spec.md
// §4.4 step 4 ("Stop on ... optical depth saturation (transmission < ε)").
const epsTransmission = 1e-6

// entryStepFraction bounds the backward entry-search/accumulation
// increment to spec.md §4.4's "Δt = min(0.1, 0.1·(t₂−t₁))".
const entryStepFraction = 0.1

func insideBox(s photon.State, rOut, zMin, zMax float64) bool {
	rCyl, z, _ := toCylindrical(s.Pos())
	return rCyl <= rOut && z >= zMin && z <= zMax
}

func cheapReject(sA, sB photon.State, rOut float64) bool {
	rA, zA, _ := toCylindrical(sA.Pos())
	rB, zB, _ := toCylindrical(sB.Pos())
	if rA <= 2*rOut || rB <= 2*rOut {
		return false
	}
	return (zA >= 0) == (zB >= 0)
}

// pointwiseDot evaluates the metric-free pairing p_μ u^μ of a covariant
// 4-momentum with a contravariant 4-velocity — the Lorentz-invariant
// photon energy in the frame comoving with u, needed no metric contraction
// since a covector paired with a vector is already a scalar.
func pointwiseDot(mom, u [4]float64) float64 {
	return mom[0]*u[0] + mom[1]*u[1] + mom[2]*u[2] + mom[3]*u[3]
}

// Impact drives radiative-transfer accumulation over a photon's full
// worldline starting at segment startSeg, per spec.md §4.4's steps 1-5,
// called once per traced photon by the dispatcher (rather than once per
// segment by an external driver) so the running intensity/optical-depth
// and first-impact bookkeeping stay local to a single call. channelNu
// carries the Scenery's NSpectral observation-frame channel frequencies
// when Spectrum/BinSpectrum is requested (nil otherwise): Spectrum mirrors
// Intensity's formal-solution accumulation per channel, BinSpectrum
// mirrors the optically-thin j·Δt binned integral per channel, per
// spec.md §4.5's "Spectrum/BinSpectrum (per-channel Intensity/binned
// integral)".
func Impact(wl *photon.WorldLine, m metric.Metric, em Emitter, nuObs float64, channelNu []float64, out *output.Properties) (int, error) {
	rOut, zMin, zMax := em.Bounds()
	n := wl.Len()
	if n < 2 {
		return 0, nil
	}

	pObs := wl.At(0).Mom()[0]

	hits := 0
	intensity := 0.0
	transmission := 1.0
	firstLegOver := false

	spectrum := make([]float64, len(channelNu))
	chanTransmission := make([]float64, len(channelNu))
	for k := range chanTransmission {
		chanTransmission[k] = 1.0
	}
	binSpectrum := make([]float64, len(channelNu))

	minDistSq := math.Inf(1)
	firstDistMin := math.Inf(1)
	haveEmissionT := false
	var emissionT float64
	haveImpactCoords := false
	var impactPh, impactObj [8]float64
	var lastRedshift float64

	for seg := 0; seg < n-1; seg++ {
		sA, sB, ok := wl.Segment(seg)
		if !ok {
			break
		}
		t1, t2 := sA.T(), sB.T()
		if t1 > t2 {
			sA, sB = sB, sA
			t1, t2 = t2, t1
		}
		if cheapReject(sA, sB, rOut) {
			continue
		}

		dt := entryStepFraction
		if span := entryStepFraction * (t2 - t1); span < dt {
			dt = span
		}
		if dt <= 0 {
			continue
		}

		tCur := t2
		found := false
		for tCur >= t1 {
			st, ok := wl.GetCoord(tCur)
			if !ok {
				break
			}
			if insideBox(st, rOut, zMin, zMax) {
				found = true
				break
			}
			tCur -= dt
		}
		if !found {
			continue
		}

		for tAcc := tCur; tAcc >= t1; tAcc -= dt {
			st, ok := wl.GetCoord(tAcc)
			if !ok {
				break
			}
			if !insideBox(st, rOut, zMin, zMax) {
				firstLegOver = true
				break
			}

			pos := st.Pos()
			d2 := em.DSquared(pos)
			if d2 < minDistSq {
				minDistSq = d2
			}
			if !firstLegOver && d2 < firstDistMin {
				firstDistMin = d2
			}

			uMat := em.LocalVelocity(m, pos)
			g := pointwiseDot(st.Mom(), uMat) / pObs
			nuEmit := nuObs * g
			j, alpha := em.EmissivityOpacity(pos, nuEmit)

			if alpha > 0 {
				atten := math.Exp(-alpha * dt)
				intensity = intensity*atten + (j/alpha)*(1-atten)
				transmission *= atten
			} else {
				intensity += j * dt
			}

			for k, nu0 := range channelNu {
				jk, alphak := em.EmissivityOpacity(pos, nu0*g)
				if alphak > 0 {
					attenk := math.Exp(-alphak * dt)
					spectrum[k] = spectrum[k]*attenk + (jk/alphak)*(1-attenk)
					chanTransmission[k] *= attenk
				} else {
					spectrum[k] += jk * dt
				}
				binSpectrum[k] += jk * dt
			}

			if !haveEmissionT {
				emissionT = st.T()
				haveEmissionT = true
			}
			if !haveImpactCoords {
				impactPh = [8]float64(st)
				impactObj = [8]float64{st[0], pos[1], pos[2], pos[3], uMat[0], uMat[1], uMat[2], uMat[3]}
				haveImpactCoords = true
			}
			lastRedshift = g
			hits++

			if transmission < epsTransmission {
				break
			}
		}
		if transmission < epsTransmission {
			break
		}
	}

	if hits == 0 {
		return 0, nil
	}

	writeHitQuantities(out, intensity, emissionT, minDistSq, firstDistMin, lastRedshift, impactPh, impactObj, spectrum, binSpectrum)
	return 1, nil
}

// writeHitQuantities implements spec.md §4.5's processHitQuantities: folds
// the accumulated per-ray scalars into whichever output slots the caller
// requested, leaving unrequested slots (nil pointers) untouched.
func writeHitQuantities(out *output.Properties, intensity, emissionT, minDistSq, firstDistMin, redshift float64, impactPh, impactObj [8]float64, spectrum, binSpectrum []float64) {
	if out.Intensity != nil {
		*out.Intensity = intensity
	}
	if out.EmissionTime != nil {
		*out.EmissionTime = emissionT
	}
	if out.MinDistance != nil {
		*out.MinDistance = minDistSq
	}
	if out.FirstDistMin != nil {
		*out.FirstDistMin = firstDistMin
	}
	if out.Redshift != nil {
		*out.Redshift = redshift
	}
	if out.ImpactCoordsPh != nil {
		*out.ImpactCoordsPh = impactPh
		*out.ImpactCoordsObj = impactObj
	}
	if out.Spectrum != nil {
		copy(out.Spectrum, spectrum)
	}
	if out.BinSpectrum != nil {
		copy(out.BinSpectrum, binSpectrum)
	}
}
