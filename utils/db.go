// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// DbToLinear converts decibels to a linear amplitude multiplier.
// 0 dB is unity gain, -6.02 dB is half amplitude.
func DbToLinear(db float64) float64 {
	return math.Pow(10, db/20)
}

// LinearToDb converts a linear amplitude multiplier to decibels.
// A zero or negative input returns -Inf.
func LinearToDb(linear float64) float64 {
	if linear <= 0 {
		return math.Inf(-1)
	}

	return 20 * math.Log10(linear)
}
