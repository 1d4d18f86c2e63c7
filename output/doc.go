// SPDX-License-Identifier: EPL-2.0

// Package output connects the playback engine to destinations.
//
// Two backends ship: Speaker plays through the default audio device
// via gopxl/beep, Renderer writes WAV files offline via go-audio. Both
// drive the engine the same way, one ProcessAudio call per block; the
// engine neither knows nor cares which one is attached.
//
// The renderer runs as fast as the disk allows, so it calls the
// engine's Poll between blocks to keep control-side work, such as
// preloading the next track, in step with audio time instead of wall
// time.
package output
