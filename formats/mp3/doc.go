// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1 layer 3 streams.
//
// Decoding is done by github.com/hajimehoshi/go-mp3, which always emits
// 16-bit stereo PCM at the stream's sample rate; mono files come out
// duplicated onto both channels, so Channels is fixed at 2.
//
// Decode buffers non-seekable inputs in memory. With a seekable input
// the library can report the decoded length up front, which is where
// Duration comes from, and Seek maps a position to a byte offset in the
// decoded stream rather than re-decoding from the start.
//
// Samples are served as interleaved float32 in [-1, 1] using the 32768
// scale factor shared by all decoders in formats.
package mp3
