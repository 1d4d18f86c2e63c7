// SPDX-License-Identifier: EPL-2.0

package player

import (
	"io"
	"math"

	"github.com/soulaudio/legato/crossfade"
)

// ProcessAudio fills buf with the next block of interleaved samples and
// returns how many values are valid; the rest is zeroed. This is the
// real-time hot path: exactly one goroutine, the output backend's
// callback, may call it. It never allocates, never locks, and never
// blocks on control-side work. len(buf) must be a multiple of the
// channel count and at most MaxBlock frames.
func (m *Manager) ProcessAudio(buf []float32) (int, error) {
	if len(buf) > len(m.scratch) || len(buf)%m.channels != 0 {
		zero(buf)
		return 0, ErrInvalidOperation
	}
	m.drainCommands()

	if !m.playing.Load() || m.active == nil {
		zero(buf)
		return len(buf), nil
	}

	n, err := m.produce(buf)
	if n < len(buf) {
		zero(buf[n:])
	}

	m.chain.Process(buf)
	m.hroom.Process(buf)
	m.applyVolume(buf)

	pub := m.active
	if m.incoming != nil {
		pub = m.incoming
	}
	if pub != nil {
		m.posFrames.Store(int64(pub.served))
	}
	return len(buf), err
}

// drainCommands applies every control command staged since the last
// block. Runs before any sample is produced, so a block never observes
// half-applied state.
func (m *Manager) drainCommands() {
	for {
		cmd, ok := m.cmds.pop()
		if !ok {
			return
		}
		switch cmd.kind {
		case cmdSwap:
			m.retireIncoming()
			m.engine.Abort()
			m.retireActive()
			m.active = cmd.src
			m.chain.Reset()
			m.postEvent(Event{Kind: EventTrackStarted, Track: cmd.src.track})

		case cmdFade:
			if m.active == nil {
				m.active = cmd.src
				m.postEvent(Event{Kind: EventTrackStarted, Track: cmd.src.track})
				continue
			}
			m.retireIncoming()
			m.incoming = cmd.src
			m.engine.Begin(cmd.curve, cmd.frames)
			m.postEvent(Event{Kind: EventTrackStarted, Track: cmd.src.track})

		case cmdPause:
			m.playing.Store(false)

		case cmdResume:
			m.playing.Store(true)

		case cmdStop:
			m.retireIncoming()
			m.retireActive()
			m.engine.Abort()
			m.playing.Store(false)
			m.chain.Reset()

		case cmdSeek:
			tgt := m.active
			if m.incoming != nil {
				// A mid-fade seek lands on the track the listener now
				// controls, the incoming one; the fade is cut short.
				m.retireActive()
				m.active = m.incoming
				m.incoming = nil
				m.engine.Abort()
				tgt = m.active
			}
			if tgt != nil && tgt.seekTo(cmd.seek, m.sampleRate) == nil {
				m.chain.Reset()
			}
		}
	}
}

// produce reads the next block of converted samples, handling track
// handoff at stream end.
func (m *Manager) produce(buf []float32) (int, error) {
	if m.incoming != nil {
		return m.produceFade(buf)
	}
	n, err := m.active.readInto(buf)
	switch {
	case err == nil:
		return n, nil
	case err == io.EOF:
		return m.handleActiveEOF(buf, n)
	default:
		return n, m.failActive(err)
	}
}

// handleActiveEOF finishes the drained source and, when the control
// side parked the next track, swaps to it inside the same block so no
// silent gap is emitted.
func (m *Manager) handleActiveEOF(buf []float32, n int) (int, error) {
	as := m.preload.Swap(nil)
	if as == nil {
		m.announceEnd(m.active)
		return n, nil
	}
	m.announceEnd(m.active)
	m.retireActive()
	m.active = as
	m.postEvent(Event{Kind: EventTrackStarted, Track: as.track})

	n2, err := m.active.readInto(buf[n:])
	n += n2
	switch {
	case err == nil:
	case err == io.EOF:
		m.announceEnd(m.active)
	default:
		return n, m.failActive(err)
	}
	return n, nil
}

// produceFade blends the tail of the outgoing track into the incoming
// one. The incoming samples land in scratch so the engine can weigh the
// two streams against each other in place.
func (m *Manager) produceFade(buf []float32) (int, error) {
	if m.engine.State() != crossfade.Fading {
		m.completeFade()
		return m.produce(buf)
	}

	nOut, errOut := m.active.readInto(buf)
	scr := m.scratch[:len(buf)]
	nIn, _ := m.incoming.readInto(scr)
	for i := nIn; i < len(scr); i++ {
		scr[i] = 0
	}

	if errOut != nil || nOut < len(buf) {
		// The outgoing track ran dry mid-fade. Blend what it produced,
		// keep the incoming remainder, and cut the fade short.
		m.engine.Mix(buf[:nOut], scr[:nOut])
		m.engine.Truncate()
		copy(buf[nOut:], scr[nOut:])
		n := max(nOut, nIn)
		m.completeFade()
		return n, nil
	}

	m.engine.Mix(buf, scr)
	if m.engine.State() == crossfade.Complete {
		m.completeFade()
	}
	return len(buf), nil
}

// completeFade retires the outgoing source and promotes the incoming
// one. The start event for the incoming track fired when the fade
// began.
func (m *Manager) completeFade() {
	m.announceEnd(m.active)
	m.retireActive()
	m.active = m.incoming
	m.incoming = nil
	m.engine.Abort()
}

func (m *Manager) retireActive() {
	if m.active == nil {
		return
	}
	// On ring overflow the source stays open; its memory is reclaimed
	// by the collector once the reference drops.
	m.retired.push(m.active)
	m.active = nil
}

func (m *Manager) retireIncoming() {
	if m.incoming == nil {
		return
	}
	m.retired.push(m.incoming)
	m.incoming = nil
}

func (m *Manager) announceEnd(a *activeSource) {
	if a == nil || a.announced {
		return
	}
	a.announced = true
	m.postEvent(Event{Kind: EventTrackFinished, Track: a.track})
}

// failActive reports a sticky source failure once and keeps the block
// silent until the control side advances past the track.
func (m *Manager) failActive(err error) error {
	a := m.active
	werr := a.wrapErr(err)
	if !a.announced {
		a.announced = true
		m.postEvent(Event{Kind: EventTrackSkipped, Track: a.track, Err: werr})
	}
	return werr
}

func (m *Manager) postEvent(ev Event) {
	// Dropped on overflow; the ring is drained every poll tick.
	m.events.push(ev)
}

// applyVolume scales the block by the target gain, ramping linearly
// across the block whenever the target moved so volume changes never
// click.
func (m *Manager) applyVolume(buf []float32) {
	target := math.Float64frombits(m.volume.Load())
	if target == m.lastGain {
		if target == 1 {
			return
		}
		g := float32(target)
		for i := range buf {
			buf[i] *= g
		}
		return
	}

	start := m.lastGain
	frames := len(buf) / m.channels
	step := (target - start) / float64(frames)
	g := start
	for f := 0; f < frames; f++ {
		g += step
		fg := float32(g)
		base := f * m.channels
		for i := range m.channels {
			buf[base+i] *= fg
		}
	}
	m.lastGain = target
}

func zero(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
}
