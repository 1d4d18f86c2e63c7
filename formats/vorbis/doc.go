// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams.
//
// Decoding is done by github.com/jfreymuth/oggvorbis, which hands back
// interleaved float32 directly; no integer rescaling happens here. Its
// Read counts individual values rather than frames, which matches the
// audio.Source contract one to one.
//
// Decode buffers non-seekable inputs in memory. A seekable input lets
// the library report the stream length, backing Duration, and lets
// Seek use granule positions instead of re-decoding from the start.
package vorbis
