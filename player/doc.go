// SPDX-License-Identifier: EPL-2.0

// Package player owns playback: the queue, listening history, shuffle
// policy, gapless and crossfaded track transitions, and the sample
// pipeline the output backend pulls from.
//
// # Threading Model
//
// A Manager is split along one hard line. The control side is every
// exported method; it is safe from any goroutine, guarded by a mutex,
// and returns without waiting on audio. The audio side is ProcessAudio
// alone, called by exactly one goroutine, the output backend's
// callback. It never allocates, never takes the control mutex, and
// never does I/O.
//
// The two sides meet only at lock-free points: a command ring the
// control side fills and the callback drains at each block boundary, an
// event ring flowing the other way, a retire ring carrying spent
// sources back for closing, and single atomic cells for the volume
// target, the playback position, and the preloaded next source. A
// background control loop drains the return rings and reconciles what
// the callback did, the queue index, the history, and the headroom sum,
// back into control state.
//
// Sources decode from memory, so even the seek command, which the
// callback executes between blocks, never touches a file.
//
// # Transitions
//
// Near the end of a track the control loop opens the next one, primes
// its conversion pipeline, and parks it in the preload cell. With
// crossfade off, the callback claims it the moment the active source
// drains and keeps filling the same block from the new one; nothing is
// padded, so the seam is sample-exact. With crossfade on, the handoff
// happens early instead and the tails are blended by a crossfade.Engine
// under the configured curve. If the outgoing track runs out before the
// blend does, the fade truncates and the incoming track continues at
// full level.
package player
