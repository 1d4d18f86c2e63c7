// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format)
// containers.
//
// Decoding is done by github.com/go-audio/aiff. Sample words of 8, 16,
// 24 and 32 bits are normalized to float32 by the symmetric power of
// two for their depth, so a 16-bit file comes out scaled by 32768
// exactly like its WAV counterpart.
//
// Decode buffers non-seekable inputs in memory. AIFF has no seek
// table, so Seek rewinds the container and decodes forward to the
// target frame; callers on a playback deadline seek through the player
// rather than on the audio path, which keeps the cost off the
// callback.
package aiff
