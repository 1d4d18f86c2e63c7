// SPDX-License-Identifier: EPL-2.0

package dsp

// smoother ramps a scalar linearly toward a target over a fixed number of
// frames. Every parameter that multiplies audio goes through one of these;
// snapping a live gain is an audible click.
type smoother struct {
	current   float64
	target    float64
	step      float64
	remaining int
}

// snap jumps to v immediately. For construction and Prepare, not for
// live parameter changes.
func (s *smoother) snap(v float64) {
	s.current = v
	s.target = v
	s.remaining = 0
}

// ramp begins a linear glide to target over frames.
func (s *smoother) ramp(target float64, frames int) {
	if frames <= 0 || target == s.current {
		s.snap(target)
		return
	}
	s.target = target
	s.step = (target - s.current) / float64(frames)
	s.remaining = frames
}

// next advances one frame and returns the new value. Lands exactly on
// the target at the end of the ramp.
func (s *smoother) next() float64 {
	if s.remaining > 0 {
		s.current += s.step
		s.remaining--
		if s.remaining == 0 {
			s.current = s.target
		}
	}
	return s.current
}

func (s *smoother) value() float64 { return s.current }
