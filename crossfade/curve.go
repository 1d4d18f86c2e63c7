// SPDX-License-Identifier: EPL-2.0

package crossfade

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnknownCurve is returned when a configuration names a curve this
// package does not implement.
var ErrUnknownCurve = errors.New("crossfade: unknown curve")

// Curve selects the gain law applied across a fade.
type Curve int

const (
	// CurveLinear trades amplitude linearly. Correlated material keeps
	// a constant sum; unrelated material dips about 3 dB mid-fade.
	CurveLinear Curve = iota
	// CurveEqualPower holds the summed power constant, the usual
	// choice when the two tracks are unrelated.
	CurveEqualPower
	// CurveSmoothstep eases in and out with zero slope at both ends.
	CurveSmoothstep
)

func (c Curve) String() string {
	switch c {
	case CurveLinear:
		return "linear"
	case CurveEqualPower:
		return "equal-power"
	case CurveSmoothstep:
		return "smoothstep"
	default:
		return "unknown"
	}
}

// ParseCurve maps a configuration name to a curve.
func ParseCurve(name string) (Curve, error) {
	switch name {
	case "linear":
		return CurveLinear, nil
	case "equal-power", "equalpower":
		return CurveEqualPower, nil
	case "smoothstep":
		return CurveSmoothstep, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCurve, name)
}

// gains returns the outgoing and incoming gain factors at progress t,
// with t in [0, 1].
func (c Curve) gains(t float64) (out, in float64) {
	switch c {
	case CurveLinear:
		return 1 - t, t
	case CurveSmoothstep:
		s := t * t * (3 - 2*t)
		return 1 - s, s
	default:
		return math.Cos(t * math.Pi / 2), math.Sin(t * math.Pi / 2)
	}
}
