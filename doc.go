// SPDX-License-Identifier: EPL-2.0

// Package legato is a real-time audio playback pipeline: a play queue,
// per-track decoding and sample rate conversion, an effect chain, and
// gapless or crossfaded transitions, all driven from a single
// hard-deadline output callback.
//
// # Layout
//
// The root package ties the pieces together; each concern lives in its
// own package:
//
//   - audio: the Source and Decoder contracts and the format registry
//   - formats/wav, formats/mp3, formats/vorbis, formats/aiff: decoders
//   - resample: sample rate conversion between source and device rates
//   - dsp: the effect chain (equalizer, compressor, limiter, ...)
//   - headroom: automatic pre-effect attenuation
//   - crossfade: the transition engine the callback mixes through
//   - loudness: ITU-R BS.1770 loudness and sample peak scanning
//   - player: the Manager owning queue, transport, and the callback
//   - output: speaker playback and offline rendering backends
//   - state: persisted player state across restarts
//
// # Quick start
//
//	m, err := legato.NewPlayer(player.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer m.Close()
//
//	_, track, err := legato.Open("song.ogg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	m.EnqueueEnd(track)
//	m.Play()
//
// The manager never touches an output device itself; it exposes
// ProcessAudio and a backend (package output, or one of your own)
// calls it once per device period. Control methods are safe from any
// goroutine and never block the callback.
package legato
