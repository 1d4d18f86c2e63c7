// SPDX-License-Identifier: EPL-2.0

package player

import "math"

// volumeRangeDB is the span of the perceptual volume curve: step 100
// is unity and step 1 sits 49.5 dB below it.
const volumeRangeDB = 50.0

// volumeGain maps the 0-100 volume scale to a linear gain through a
// logarithmic curve, so equal steps sound like equal loudness steps.
// Zero is exactly silent rather than -50 dB.
func volumeGain(v int) float64 {
	if v <= 0 {
		return 0
	}
	if v >= 100 {
		return 1
	}
	return math.Pow(10, (float64(v)-100)*volumeRangeDB/100/20)
}
