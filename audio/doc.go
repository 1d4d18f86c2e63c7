// SPDX-License-Identifier: EPL-2.0

// Package audio defines the source boundary of the playback pipeline.
//
// This package contains the contracts the rest of the engine is built on:
//   - Source interface for decoded audio input
//   - Decoder and Registry for format adapters
//   - ChannelMixer for channel-layout adaptation
//
// # Source Interface
//
// The Source interface is the decode boundary of the player:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Seek(pos time.Duration) error
//	    Duration() time.Duration
//	    Position() time.Duration
//	    IsFinished() bool
//	    BufSize() int
//	    Close() error
//	}
//
// Format adapters (see the formats subpackages) implement Source; the
// playback manager treats every implementation uniformly. Position and
// Duration are what make sample-accurate crossfade entry possible, so
// adapters must account for them precisely, not estimate from wall time.
//
// # Channel Layout
//
// The ChannelMixer adapts a source's channel count to the layout the
// pipeline runs at, usually stereo:
//
//	stereoSrc := audio.NewChannelMixer(monoSrc, 2)
//
// Mono input is duplicated across the pair, wider layouts are averaged
// down, and matching layouts pass through untouched.
//
// # Format Registry
//
// The registry allows dynamic decoder registration:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, _ := registry.Get("wav")
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0]:
//   - 0.0 represents silence
//   - 1.0 represents maximum positive amplitude
//   - -1.0 represents maximum negative amplitude
//
// This normalized format makes it easy to process audio without worrying
// about bit depths and ensures no clipping during intermediate processing.
//
// # Error Handling
//
// ReadSamples returns io.EOF when no more data is available. Other errors
// indicate problems with the source:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break // Normal end of stream
//	    }
//	    if err != nil {
//	        return err // Decode error
//	    }
//	    // Process n samples from buf
//	}
package audio
