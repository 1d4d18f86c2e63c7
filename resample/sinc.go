// SPDX-License-Identifier: EPL-2.0

package resample

import "math"

// sincTable holds a Kaiser-windowed sinc filter sampled at a fixed number
// of fractional phases. Row p holds the taps for fractional position
// p/phases; one guard row past the end lets interpolate blend rows without
// a wraparound branch.
type sincTable struct {
	taps   int
	phases int
	rows   []float32 // (phases+1) * taps, row-major
}

// tier parameters: phase count and Kaiser beta per quality level.
// Beta picks the stopband attenuation, roughly 65/90/100 dB.
func tierParams(q Quality) (phases int, beta float64) {
	switch q {
	case Balanced:
		return 64, 6.0
	case High:
		return 128, 8.6
	default:
		return 256, 10.0
	}
}

// newSincTable builds the filter bank for a tier. step is source frames
// per output frame; above 1 (downsampling) the cutoff drops below Nyquist
// to reject aliasing bands before decimation.
func newSincTable(q Quality, step float64) *sincTable {
	taps := q.taps()
	phases, beta := tierParams(q)
	half := float64(taps / 2)

	cutoff := 0.475 // fraction of the source rate, with rolloff margin
	if step > 1.0 {
		cutoff /= step
	}

	t := &sincTable{
		taps:   taps,
		phases: phases,
		rows:   make([]float32, (phases+1)*taps),
	}

	i0beta := besselI0(beta)

	for p := 0; p <= phases; p++ {
		frac := float64(p) / float64(phases)
		row := t.rows[p*taps : (p+1)*taps]

		sum := 0.0
		for j := range taps {
			// Tap j sits at offset frac+half-1-j from the filter center.
			x := frac + half - 1 - float64(j)
			v := 2 * cutoff * sinc(2*cutoff*x) * kaiser(x/half, beta, i0beta)
			row[j] = float32(v)
			sum += v
		}

		// Normalize each phase to unity DC gain; otherwise the gain
		// ripples with the fractional position and modulates the output.
		inv := float32(1.0 / sum)
		for j := range row {
			row[j] *= inv
		}
	}

	return t
}

// interpolate fills dst with the taps for fractional position frac in
// [0,1), blending the two bracketing phase rows linearly.
func (t *sincTable) interpolate(dst []float32, frac float64) {
	pf := frac * float64(t.phases)
	p := int(pf)
	w := float32(pf - float64(p))

	a := t.rows[p*t.taps : (p+1)*t.taps]
	b := t.rows[(p+1)*t.taps : (p+2)*t.taps]

	for j := range dst {
		dst[j] = a[j] + w*(b[j]-a[j])
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// kaiser evaluates the Kaiser window at normalized position x in [-1,1].
// i0beta caches besselI0(beta), shared across every tap.
func kaiser(x, beta, i0beta float64) float64 {
	a := 1 - x*x
	if a < 0 {
		return 0
	}
	return besselI0(beta*math.Sqrt(a)) / i0beta
}

// besselI0 is the zeroth-order modified Bessel function of the first kind,
// via its power series. Converges fast for the beta range used here.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	half := x / 2

	for k := 1; k < 50; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < sum*1e-12 {
			break
		}
	}
	return sum
}
