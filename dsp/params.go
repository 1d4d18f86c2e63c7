// SPDX-License-Identifier: EPL-2.0

package dsp

import "fmt"

// Params is the sealed marker for typed parameter bundles. Each effect
// family has exactly one bundle type below; components reject foreign
// bundles with ErrParamType instead of downcasting through reflection.
type Params interface {
	isParams()
}

// BandType selects the filter shape of one equalizer band.
type BandType int

const (
	Peak BandType = iota
	LowShelf
	HighShelf
)

func (t BandType) String() string {
	switch t {
	case Peak:
		return "peak"
	case LowShelf:
		return "lowshelf"
	case HighShelf:
		return "highshelf"
	default:
		return "unknown"
	}
}

// ParseBandType maps a configuration name to a band type.
func ParseBandType(name string) (BandType, error) {
	switch name {
	case "peak", "":
		return Peak, nil
	case "lowshelf":
		return LowShelf, nil
	case "highshelf":
		return HighShelf, nil
	}
	return 0, fmt.Errorf("dsp: unknown band type %q", name)
}

// Band describes one equalizer band. Freq in Hz, Gain in dB, Q unitless.
type Band struct {
	Type BandType
	Freq float64
	Gain float64
	Q    float64
}

// EQParams replaces the full band set of an Equalizer. Bands beyond
// MaxBands are ignored; omitted slots flatten to unity.
type EQParams struct {
	Bands []Band
}

// CompressorParams configures the downward compressor.
type CompressorParams struct {
	ThresholdDB float64
	Ratio       float64
	AttackMs    float64
	ReleaseMs   float64
	KneeDB      float64
	MakeupDB    float64
}

// LimiterParams configures the output limiter.
type LimiterParams struct {
	CeilingDB float64
	ReleaseMs float64
}

// CrossfeedParams configures headphone crossfeed: the level of the
// opposite-channel bleed and the lowpass applied to it.
type CrossfeedParams struct {
	FeedDB   float64
	CutoffHz float64
}

// WidthParams sets the stereo width. 0 collapses to mono, 1 is
// unchanged, 2 doubles the side signal.
type WidthParams struct {
	Width float64
}

// ConvolverParams replaces the convolver's impulse response. Impulse is
// copied on apply; WetDry blends convolved (1) against dry (0) signal.
type ConvolverParams struct {
	Impulse []float32
	WetDry  float64
}

// GainParams sets a plain gain in dB. Used by the headroom manager's
// manual mode when it is driven through the Component interface.
type GainParams struct {
	DB float64
}

func (EQParams) isParams()         {}
func (CompressorParams) isParams() {}
func (LimiterParams) isParams()    {}
func (CrossfeedParams) isParams()  {}
func (WidthParams) isParams()      {}
func (ConvolverParams) isParams()  {}
func (GainParams) isParams()       {}
