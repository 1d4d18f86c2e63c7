// SPDX-License-Identifier: EPL-2.0

// Package headroom computes the protective gain that keeps the pipeline
// from clipping while honoring loudness metadata.
package headroom

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/soulaudio/legato/dsp"
)

// Mode selects how the attenuation is derived.
type Mode int

const (
	// Disabled applies unity gain.
	Disabled Mode = iota
	// Manual applies a fixed attenuation set by the caller.
	Manual
	// Auto reserves headroom for the worst case: the negative sum of
	// every gain that could push the signal above full scale downstream.
	Auto
)

func (m Mode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case Manual:
		return "manual"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode maps a configuration name to a mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "disabled", "":
		return Disabled, nil
	case "manual":
		return Manual, nil
	case "auto":
		return Auto, nil
	}
	return 0, fmt.Errorf("headroom: unknown mode %q", name)
}

// AutoParams are the potential gain contributions Auto mode reserves
// room for, all in dB. ReplayGain is the stored track gain, Preamp the
// user preamp, EQMaxBoost the largest possible equalizer boost, and
// Additional any further DSP gain.
type AutoParams struct {
	ReplayGain float64
	Preamp     float64
	EQMaxBoost float64
	Additional float64
}

// config is the staged snapshot handed from the control side to the
// audio side.
type config struct {
	targetDB float64
}

// Manager applies the headroom gain per block. It implements
// dsp.Component so it can sit in an effect chain; the player holds it as
// the dedicated stage between the chain and the volume scalar.
//
// Gain is stored and smoothed in dB and converted to linear only at the
// multiply, so repeated mode changes cannot compound rounding error.
// Mode changes glide over about 50 ms.
type Manager struct {
	mu     sync.Mutex // control-side fields below
	mode   Mode
	manual float64
	auto   AutoParams

	enabled atomic.Bool
	pending atomic.Pointer[config]

	rampFrames int
	channels   int
	db         smoothedDB
}

// New creates a disabled (unity gain) manager for the channel count.
func New(channels int) *Manager {
	m := &Manager{channels: channels}
	m.enabled.Store(true)
	m.Prepare(0, 44100)
	return m
}

func (m *Manager) ID() string { return "headroom" }

// Prepare derives the smoothing window, about 50 ms at the output rate.
func (m *Manager) Prepare(maxBlock, sampleRate int) {
	m.rampFrames = sampleRate / 20
}

func (m *Manager) SetEnabled(enabled bool) { m.enabled.Store(enabled) }
func (m *Manager) Enabled() bool           { return m.enabled.Load() }

// SetMode switches the derivation mode, keeping the stored manual and
// auto settings.
func (m *Manager) SetMode(mode Mode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = mode
	m.stageLocked()
}

// SetManualDB stores the fixed attenuation and switches to Manual mode.
// Positive values are clamped to zero; this stage only protects, it
// never amplifies.
func (m *Manager) SetManualDB(db float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = Manual
	m.manual = math.Min(db, 0)
	m.stageLocked()
}

// SetAuto stores the gain contributions and switches to Auto mode.
func (m *Manager) SetAuto(p AutoParams) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mode = Auto
	m.auto = p
	m.stageLocked()
}

// Mode reports the current derivation mode.
func (m *Manager) Mode() Mode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// EffectiveDB reports the attenuation the current configuration aims
// for. The audio side may still be gliding toward it.
func (m *Manager) EffectiveDB() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effectiveLocked()
}

func (m *Manager) effectiveLocked() float64 {
	switch m.mode {
	case Manual:
		return m.manual
	case Auto:
		sum := m.auto.ReplayGain + m.auto.Preamp + m.auto.EQMaxBoost + m.auto.Additional
		return math.Min(-sum, 0)
	default:
		return 0
	}
}

func (m *Manager) stageLocked() {
	m.pending.Store(&config{targetDB: m.effectiveLocked()})
}

// Update accepts a dsp.GainParams bundle as a Manual-mode attenuation,
// so chains can drive the manager through the generic surface.
func (m *Manager) Update(p dsp.Params) error {
	g, ok := p.(dsp.GainParams)
	if !ok {
		return fmt.Errorf("%w: headroom cannot apply %T", dsp.ErrParamType, p)
	}
	m.SetManualDB(g.DB)
	return nil
}

// Process applies the gain in place. Once the glide has landed on unity
// the block passes through untouched, bit for bit.
func (m *Manager) Process(buf []float32) {
	if c := m.pending.Swap(nil); c != nil {
		m.db.ramp(c.targetDB, m.rampFrames)
	}
	if !m.enabled.Load() {
		return
	}
	if m.db.settledAtUnity() {
		return
	}

	ch := m.channels
	for f := 0; f+ch <= len(buf); f += ch {
		g := float32(math.Pow(10, m.db.next()/20))
		for i := range ch {
			buf[f+i] *= g
		}
	}
}

// Reset is a no-op: the gain glide must survive seeks, and there is no
// filter state to clear.
func (m *Manager) Reset() {}

// smoothedDB is a dB-domain linear glide.
type smoothedDB struct {
	current   float64
	target    float64
	delta     float64
	remaining int
}

func (s *smoothedDB) ramp(target float64, frames int) {
	if frames <= 0 || target == s.current {
		s.current = target
		s.target = target
		s.remaining = 0
		return
	}
	s.target = target
	s.delta = (target - s.current) / float64(frames)
	s.remaining = frames
}

func (s *smoothedDB) next() float64 {
	if s.remaining > 0 {
		s.current += s.delta
		s.remaining--
		if s.remaining == 0 {
			s.current = s.target
		}
	}
	return s.current
}

func (s *smoothedDB) settledAtUnity() bool {
	return s.remaining == 0 && s.current == 0
}
