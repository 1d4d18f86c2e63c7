// SPDX-License-Identifier: EPL-2.0

package loudness

import "math"

// K-weighting pre-filter per ITU-R BS.1770: a high shelf modelling the
// acoustic effect of the head, followed by a high-pass that removes the
// inaudible low end. The constants below are the continuous-time design
// parameters; coefficients are rederived for the stream's sample rate,
// which reproduces the published 48 kHz table.
const (
	shelfFreq = 1681.974450955533
	shelfGain = 3.999843853973347
	shelfQ    = 0.7071752369554196

	highpassFreq = 38.13547087602444
	highpassQ    = 0.5003270373238773
)

// kBiquad is a fixed-coefficient direct form I section in float64.
type kBiquad struct {
	b0, b1, b2 float64
	a1, a2     float64

	x1, x2 float64
	y1, y2 float64
}

func (f *kBiquad) process(x float64) float64 {
	y := f.b0*x + f.b1*f.x1 + f.b2*f.x2 - f.a1*f.y1 - f.a2*f.y2
	f.x2, f.x1 = f.x1, x
	f.y2, f.y1 = f.y1, y
	return y
}

func (f *kBiquad) reset() {
	f.x1, f.x2 = 0, 0
	f.y1, f.y2 = 0, 0
}

// shelfCoefs derives the stage-one high shelf for the given rate.
func shelfCoefs(rate int) kBiquad {
	k := math.Tan(math.Pi * shelfFreq / float64(rate))
	vh := math.Pow(10, shelfGain/20)
	vb := math.Pow(vh, 0.4996667741545416)

	a0 := 1 + k/shelfQ + k*k
	return kBiquad{
		b0: (vh + vb*k/shelfQ + k*k) / a0,
		b1: 2 * (k*k - vh) / a0,
		b2: (vh - vb*k/shelfQ + k*k) / a0,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/shelfQ + k*k) / a0,
	}
}

// highpassCoefs derives the stage-two RLB high-pass for the given rate.
func highpassCoefs(rate int) kBiquad {
	k := math.Tan(math.Pi * highpassFreq / float64(rate))

	a0 := 1 + k/highpassQ + k*k
	return kBiquad{
		b0: 1,
		b1: -2,
		b2: 1,
		a1: 2 * (k*k - 1) / a0,
		a2: (1 - k/highpassQ + k*k) / a0,
	}
}

// channelWeights returns the BS.1770 per-channel gains. The 5.1 layout
// discounts the LFE entirely and raises the surrounds; everything else
// weighs each channel equally.
func channelWeights(channels int) []float64 {
	w := make([]float64, channels)
	for i := range w {
		w[i] = 1
	}
	if channels == 6 {
		w[3] = 0    // LFE
		w[4] = 1.41 // Ls
		w[5] = 1.41 // Rs
	}
	return w
}
