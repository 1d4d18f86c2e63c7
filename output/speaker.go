// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"
)

// Engine is the slice of the player a backend drives. Exactly one
// goroutine calls ProcessAudio, once per block.
type Engine interface {
	ProcessAudio(buf []float32) (int, error)
	SampleRate() int
	Channels() int
	MaxBlock() int
}

// OfflineEngine additionally exposes the control maintenance pass,
// which backends running faster than real time must drive themselves.
type OfflineEngine interface {
	Engine
	Poll()
}

// SpeakerConfig tunes the device backend.
type SpeakerConfig struct {
	// Latency sets the device buffer length. Bigger buffers survive
	// scheduling hiccups, smaller ones react faster. Zero means 100ms.
	Latency time.Duration
	Logger  *zap.Logger
}

// Speaker plays the engine through the default audio device. It
// implements beep.Streamer; beep's mixer goroutine becomes the audio
// callback goroutine of the engine's threading model.
type Speaker struct {
	engine  Engine
	log     *zap.Logger
	latency time.Duration

	block int
	buf   []float32

	dropouts atomic.Uint64

	mu      sync.Mutex
	started bool
	closed  bool
}

func NewSpeaker(engine Engine, cfg SpeakerConfig) *Speaker {
	if cfg.Latency <= 0 {
		cfg.Latency = 100 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Speaker{
		engine:  engine,
		log:     cfg.Logger,
		latency: cfg.Latency,
		block:   engine.MaxBlock(),
		buf:     make([]float32, engine.MaxBlock()*engine.Channels()),
	}
}

// Start opens the device at the engine's sample rate and begins
// pulling blocks. The engine decides what is audible; a stopped player
// streams silence.
func (s *Speaker) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("output: speaker is closed")
	}
	if s.started {
		return fmt.Errorf("output: speaker already started")
	}

	sr := beep.SampleRate(s.engine.SampleRate())
	if err := speaker.Init(sr, sr.N(s.latency)); err != nil {
		return fmt.Errorf("output: open device: %w", err)
	}
	speaker.Play(s)
	s.started = true
	s.log.Info("speaker started",
		zap.Int("sample_rate", s.engine.SampleRate()),
		zap.Int("channels", s.engine.Channels()),
		zap.Duration("latency", s.latency))
	return nil
}

// Stream fills beep's stereo frames from the engine, chunked at the
// engine's block size. It runs on the device goroutine, so no locks
// and no logging here; trouble is counted and reported from Close.
func (s *Speaker) Stream(out [][2]float64) (int, bool) {
	ch := s.engine.Channels()
	total := 0
	for total < len(out) {
		frames := len(out) - total
		if frames > s.block {
			frames = s.block
		}
		buf := s.buf[:frames*ch]
		if _, err := s.engine.ProcessAudio(buf); err != nil {
			// The engine zeroed the block already; keep the stream
			// alive with that silence.
			s.dropouts.Add(1)
		}
		for i := range frames {
			l := float64(buf[i*ch])
			r := l
			if ch > 1 {
				r = float64(buf[i*ch+1])
			}
			out[total+i] = [2]float64{l, r}
		}
		total += frames
	}
	return len(out), true
}

// Err implements beep.Streamer. The speaker never removes itself from
// the mixer; failed blocks degrade to silence instead.
func (s *Speaker) Err() error { return nil }

// Dropouts reports how many blocks were replaced with silence because
// the engine returned an error.
func (s *Speaker) Dropouts() uint64 { return s.dropouts.Load() }

// Close tears the device down. Close the speaker before the engine so
// no callback runs into a closed player.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.started {
		speaker.Close()
		s.started = false
	}
	if n := s.dropouts.Load(); n > 0 {
		s.log.Warn("speaker closed with dropouts", zap.Uint64("blocks", n))
	}
	return nil
}
