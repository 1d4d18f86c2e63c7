// SPDX-License-Identifier: EPL-2.0

// Package state persists player sessions as YAML through viper.
//
// A snapshot covers the queue, the position in it, volume, playback
// modes and the sound setup (EQ, headroom, preamp, crossfade). Load
// runs at startup and treats a missing file as a fresh install; Save
// runs at explicit save points, there is no background writer.
//
// The snapshot types mirror the player's configuration but stay plain
// data: enums are stored as their string forms so the file stays
// editable by hand, and translation to live player types happens in
// the caller.
package state
