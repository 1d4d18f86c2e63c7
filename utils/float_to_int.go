// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 converts a [-1,1] sample to 16-bit PCM using the same
// 32768 scale factor the decode side uses, so a decode/encode round trip
// is symmetric. +1.0 exceeds the int16 range by one step and is clamped.
func Float32ToInt16(x float32) int16 {
	v := x * 32768.0
	if v > 32767.0 {
		return math.MaxInt16
	}
	if v < -32768.0 {
		return math.MinInt16
	}

	return int16(v)
}
