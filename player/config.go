// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/soulaudio/legato/audio"
	"github.com/soulaudio/legato/crossfade"
	"github.com/soulaudio/legato/resample"
)

// Config carries the output format and the playback policy for a
// Manager. Zero numeric fields fall back to the DefaultConfig values;
// boolean fields are taken as given.
type Config struct {
	// SampleRate is the output device rate every source is converted to.
	SampleRate int
	// Channels is the output channel count.
	Channels int
	// MaxBlock is the largest block, in frames, the output backend will
	// request per callback.
	MaxBlock int

	// HistorySize bounds the recently-played list.
	HistorySize int
	// Volume is the initial control-curve volume, 1 to 100. Values
	// outside that range fall back to 100.
	Volume int

	Shuffle ShuffleMode
	Repeat  RepeatMode

	// Gapless preloads the upcoming track so the callback can switch to
	// it mid-block, without an audible gap.
	Gapless bool
	// CrossfadeSec blends track transitions over this many seconds.
	// Zero (or a zero-duration fade) degenerates to a gapless switch.
	CrossfadeSec float64
	// Curve shapes the crossfade gains.
	Curve crossfade.Curve

	// Quality selects the sample rate conversion tier.
	Quality resample.Quality
	// PreampDB feeds the automatic headroom calculation.
	PreampDB float64

	// OpenTrack opens a source for a track when playback advances. Nil
	// disables automatic advancing; sources then arrive via Load only.
	OpenTrack func(Track) (audio.Source, error)

	// Logger receives playback events. Nil means no logging.
	Logger *zap.Logger
	// Rand drives shuffle selection. Nil seeds a fresh generator.
	Rand *rand.Rand
}

// DefaultConfig returns the stock configuration: CD-quality stereo
// output, gapless on, crossfade off.
func DefaultConfig() Config {
	return Config{
		SampleRate:  44100,
		Channels:    2,
		MaxBlock:    4096,
		HistorySize: 100,
		Volume:      100,
		Gapless:     true,
		Curve:       crossfade.CurveEqualPower,
		Quality:     resample.Balanced,
	}
}

func (c *Config) fillDefaults() {
	def := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.Channels <= 0 {
		c.Channels = def.Channels
	}
	if c.MaxBlock <= 0 {
		c.MaxBlock = def.MaxBlock
	}
	if c.HistorySize <= 0 {
		c.HistorySize = def.HistorySize
	}
	if c.Volume <= 0 || c.Volume > 100 {
		c.Volume = def.Volume
	}
	if c.CrossfadeSec < 0 {
		c.CrossfadeSec = 0
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
}
