// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"fmt"
	"io"

	gaudio "github.com/go-audio/audio"
	gwav "github.com/go-audio/wav"
	"go.uber.org/zap"

	"github.com/soulaudio/legato/utils"
)

// ErrUnsupportedBitDepth reports a render depth other than 16 or 24.
var ErrUnsupportedBitDepth = errors.New("output: unsupported render bit depth")

// RenderConfig tunes the offline backend.
type RenderConfig struct {
	// BitDepth of the written WAV, 16 or 24. Zero means 16.
	BitDepth int
	Logger   *zap.Logger
}

// Renderer runs the engine faster than real time and writes the result
// as PCM WAV through the go-audio encoder.
type Renderer struct {
	engine OfflineEngine
	log    *zap.Logger
	bits   int
	conv   func(float32) int
}

func NewRenderer(engine OfflineEngine, cfg RenderConfig) (*Renderer, error) {
	if cfg.BitDepth == 0 {
		cfg.BitDepth = 16
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	var conv func(float32) int
	switch cfg.BitDepth {
	case 16:
		conv = func(x float32) int { return int(utils.Float32ToInt16(x)) }
	case 24:
		conv = func(x float32) int {
			v := float64(x) * 8388608.0
			if v > 8388607.0 {
				return 8388607
			}
			if v < -8388608.0 {
				return -8388608
			}
			return int(v)
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, cfg.BitDepth)
	}

	return &Renderer{
		engine: engine,
		log:    cfg.Logger,
		bits:   cfg.BitDepth,
		conv:   conv,
	}, nil
}

// Render pulls blocks from the engine until done reports true, writing
// them to w. Between blocks it runs the engine's control pass so
// preloads and transitions track audio time; without that a render
// running at hundreds of times real time would sail past every
// crossfade window. Returns the number of frames written.
func (r *Renderer) Render(w io.WriteSeeker, done func() bool) (int64, error) {
	var (
		rate  = r.engine.SampleRate()
		ch    = r.engine.Channels()
		block = r.engine.MaxBlock()
	)
	enc := gwav.NewEncoder(w, rate, r.bits, ch, 1)

	buf := make([]float32, block*ch)
	intBuf := &gaudio.IntBuffer{
		Format:         &gaudio.Format{NumChannels: ch, SampleRate: rate},
		Data:           make([]int, block*ch),
		SourceBitDepth: r.bits,
	}

	var frames int64
	for !done() {
		r.engine.Poll()

		n, err := r.engine.ProcessAudio(buf)
		if err != nil {
			return frames, fmt.Errorf("output: render block: %w", err)
		}
		for i := range n {
			intBuf.Data[i] = r.conv(buf[i])
		}
		intBuf.Data = intBuf.Data[:n]
		if err := enc.Write(intBuf); err != nil {
			return frames, fmt.Errorf("output: write wav: %w", err)
		}
		intBuf.Data = intBuf.Data[:cap(intBuf.Data)]
		frames += int64(n / ch)
	}

	if err := enc.Close(); err != nil {
		return frames, fmt.Errorf("output: finalize wav: %w", err)
	}
	r.log.Info("render finished",
		zap.Int64("frames", frames),
		zap.Int("sample_rate", rate),
		zap.Int("bit_depth", r.bits))
	return frames, nil
}
