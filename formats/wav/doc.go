// SPDX-License-Identifier: EPL-2.0

// Package wav decodes RIFF/WAVE containers with 16-bit PCM payloads.
//
// The parser walks the chunk list rather than assuming the canonical
// 44-byte header, so files that carry LIST, fact or cue chunks before
// the audio data decode the same as plain ones. Non-PCM sample formats
// and bit depths other than 16 are rejected with
// ErrOnlyPCM16bitSupported.
//
// Decode promotes its reader to an io.ReadSeeker, buffering the whole
// input when it has to, which makes every returned Source seekable.
// Samples are served as interleaved float32 in [-1, 1] using the 32768
// scale factor shared by all decoders in formats.
//
// WriteWAV16 is the inverse for mono fixtures and simple captures; the
// output package handles multi-channel encoding.
package wav
