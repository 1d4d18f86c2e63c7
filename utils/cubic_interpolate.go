// SPDX-License-Identifier: EPL-2.0

package utils

// CubicInterpolate evaluates a Catmull-Rom spline through four
// consecutive samples at fractional position t in [0,1]. The curve
// passes through y1 at t=0 and y2 at t=1; y0 and y3 shape the tangents.
func CubicInterpolate(y0, y1, y2, y3, t float32) float32 {
	c3 := 0.5 * (y3 - y0 + 3*(y1-y2))
	c2 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	c1 := 0.5 * (y2 - y0)
	return ((c3*t+c2)*t+c1)*t + y1
}
