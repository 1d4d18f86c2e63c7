// SPDX-License-Identifier: EPL-2.0

// Package dsp provides the in-place effect contract and the effects that
// implement it: parametric equalizer, compressor, limiter, headphone
// crossfeed, stereo width, and a short FIR convolver. Effects compose into
// a Chain that runs them in a fixed, significant order.
//
// # Real-Time Contract
//
// Process is called from the audio callback and must finish inside the
// device period. Every component obeys three rules:
//
//   - No heap allocation in Process. Working storage is sized by Prepare,
//     which runs off the audio path.
//   - A disabled component is bit-exact passthrough: Process returns
//     before touching the buffer, so input and output bit patterns are
//     identical.
//   - Reset clears filter and envelope state. It is for discontinuous
//     events (seek, source change) only, never for parameter changes.
//
// # Parameter Updates
//
// Update may be called from any goroutine while audio flows. Each
// component holds a single-slot pending cell: Update validates the typed
// bundle, stages it, and returns; the next Process call picks it up at
// the block boundary. Two updates between blocks keep the later one.
//
// Accepted values never snap. Gains, coefficients, and mix weights ramp
// over roughly ten milliseconds, because a step change in a live signal
// path is an audible click. The Params interface is sealed: each effect
// family has exactly one bundle type and rejects the others with
// ErrParamType.
//
// # Channel Layout
//
// Buffers are interleaved float32 frames. Components that are inherently
// two-channel (Crossfeed, Width) pass other layouts through untouched.
package dsp
