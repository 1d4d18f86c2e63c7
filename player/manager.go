// SPDX-License-Identifier: EPL-2.0

package player

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/soulaudio/legato/audio"
	"github.com/soulaudio/legato/crossfade"
	"github.com/soulaudio/legato/dsp"
	"github.com/soulaudio/legato/headroom"
	"github.com/soulaudio/legato/resample"
)

const (
	// previousThreshold is how far into a track Previous restarts it
	// instead of stepping back through history.
	previousThreshold = 3 * time.Second

	// maxSourceFailures stops playback after this many consecutive
	// tracks fail to open or decode.
	maxSourceFailures = 3

	// pollInterval paces the control loop that drains callback events
	// and arms preloads.
	pollInterval = 25 * time.Millisecond

	cmdRingSize    = 64
	eventRingSize  = 64
	retireRingSize = 16
)

type cmdKind int

const (
	cmdSwap cmdKind = iota // install src as the active source
	cmdFade                // begin blending into src over frames
	cmdPause
	cmdResume
	cmdStop
	cmdSeek
)

type command struct {
	kind   cmdKind
	src    *activeSource
	frames int
	curve  crossfade.Curve
	seek   time.Duration
}

// Manager owns the playback pipeline: the play queue, the active
// source, the effect chain, and the transition engine. Control methods
// are safe from any goroutine and never block on the audio thread; the
// audio thread runs ProcessAudio and nothing else.
type Manager struct {
	log *zap.Logger

	sampleRate int
	channels   int
	maxBlock   int
	quality    resample.Quality
	openTrack  func(Track) (audio.Source, error)

	// control state, guarded by mu
	mu          sync.Mutex
	queue       *Queue
	history     *History
	state       PlaybackState
	shuffle     ShuffleMode
	repeat      RepeatMode
	current     Track
	vol         int
	rng         *rand.Rand
	gapless     bool
	fadeSec     float64
	curve       crossfade.Curve
	preampDB    float64
	pendingNext Track // committed upcoming track, zero when none
	fadeArmed   bool
	fails       int
	closed      bool

	// processing components, shared through their own internal atomics
	chain  *dsp.Chain
	eq     *dsp.Equalizer
	hroom  *headroom.Manager
	engine *crossfade.Engine

	// cross-thread cells
	volume    atomic.Uint64 // float64 bits of the target gain
	playing   atomic.Bool
	posFrames atomic.Int64
	preload   atomic.Pointer[activeSource]

	cmds    *ring[command]
	events  *ring[Event]
	retired *ring[*activeSource]

	// callback-owned, never touched by the control side while the
	// output backend is running
	active   *activeSource
	incoming *activeSource
	lastGain float64
	scratch  []float32

	subsMu sync.Mutex
	subs   []chan Event

	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a Manager for the given configuration and starts its
// control loop. Call Close when done.
func New(cfg Config) (*Manager, error) {
	cfg.fillDefaults()

	eq := dsp.NewEqualizer(cfg.Channels)
	comps := []dsp.Component{
		eq,
		dsp.NewCrossfeed(cfg.Channels),
		dsp.NewWidth(cfg.Channels),
		dsp.NewCompressor(cfg.Channels),
		dsp.NewConvolver(cfg.Channels),
		dsp.NewLimiter(cfg.Channels),
	}
	for _, c := range comps {
		c.SetEnabled(false)
		c.Prepare(cfg.MaxBlock, cfg.SampleRate)
	}
	hroom := headroom.New(cfg.Channels)
	hroom.Prepare(cfg.MaxBlock, cfg.SampleRate)

	m := &Manager{
		log:        cfg.Logger,
		sampleRate: cfg.SampleRate,
		channels:   cfg.Channels,
		maxBlock:   cfg.MaxBlock,
		quality:    cfg.Quality,
		openTrack:  cfg.OpenTrack,
		queue:      NewQueue(),
		history:    NewHistory(cfg.HistorySize),
		state:      Stopped,
		shuffle:    cfg.Shuffle,
		repeat:     cfg.Repeat,
		vol:        cfg.Volume,
		rng:        cfg.Rand,
		gapless:    cfg.Gapless,
		fadeSec:    cfg.CrossfadeSec,
		curve:      cfg.Curve,
		preampDB:   cfg.PreampDB,
		chain:      dsp.NewChain(comps...),
		eq:         eq,
		hroom:      hroom,
		engine:     crossfade.NewEngine(cfg.Channels),
		cmds:       newRing[command](cmdRingSize),
		events:     newRing[Event](eventRingSize),
		retired:    newRing[*activeSource](retireRingSize),
		scratch:    make([]float32, cfg.MaxBlock*cfg.Channels),
		done:       make(chan struct{}),
	}

	gain := volumeGain(cfg.Volume)
	m.volume.Store(math.Float64bits(gain))
	m.lastGain = gain

	m.wg.Add(1)
	go m.run()
	return m, nil
}

// run is the control loop: it reconciles callback events back into the
// queue and history, closes retired sources, and arms the upcoming
// track for gapless or crossfaded handoff.
func (m *Manager) run() {
	defer m.wg.Done()
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-tick.C:
			m.Poll()
		}
	}
}

// Poll runs one control maintenance pass: callback events are applied,
// retired sources closed, and the next track preloaded when its window
// has opened. The internal ticker calls it continuously, which is all a
// real-time backend needs. Offline backends rendering faster than real
// time call it between blocks themselves, otherwise track endings
// outrun the ticker and transitions land late.
func (m *Manager) Poll() {
	m.drainCallbackEvents()
	m.drainRetired()
	m.maybePreload()
}

func (m *Manager) drainCallbackEvents() {
	for {
		ev, ok := m.events.pop()
		if !ok {
			return
		}
		m.handleEvent(ev)
		m.emit(ev)
	}
}

func (m *Manager) handleEvent(ev Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	switch ev.Kind {
	case EventTrackStarted:
		if m.current.ID != ev.Track.ID {
			if !m.current.IsZero() {
				m.history.Push(m.current)
			}
			m.current = ev.Track
			if i := m.queue.IndexOf(ev.Track.ID); i >= 0 {
				m.queue.SetIndex(i)
			}
		}
		m.pendingNext = Track{}
		m.fadeArmed = false
		m.refreshHeadroomLocked()

	case EventTrackFinished:
		// A clean end resets the consecutive failure budget.
		m.fails = 0
		// When a preload was parked the callback already swapped to it;
		// only advance here if the track ran out with nothing staged.
		if ev.Track.ID == m.current.ID && m.pendingNext.IsZero() && m.preload.Load() == nil {
			m.advanceLocked(true)
		}

	case EventTrackSkipped:
		m.fails++
		if m.fails >= maxSourceFailures {
			m.log.Error("stopping after repeated source failures",
				zap.Int("failures", m.fails))
			m.stopLocked()
			return
		}
		if ev.Track.ID == m.current.ID {
			m.advanceLocked(true)
		}
	}
}

// pushCmd hands a command to the callback. The ring is drained every
// block, so overflow means the backend stalled; the command is dropped
// and any source it carried is closed rather than leaked.
func (m *Manager) pushCmd(cmd command) bool {
	if m.cmds.push(cmd) {
		return true
	}
	m.log.Error("command ring full, dropping command")
	if cmd.src != nil {
		cmd.src.close()
	}
	return false
}

func (m *Manager) drainRetired() {
	for {
		as, ok := m.retired.pop()
		if !ok {
			return
		}
		if err := as.close(); err != nil {
			m.log.Warn("closing retired source",
				zap.String("path", as.track.Path), zap.Error(err))
		}
	}
}

// maybePreload opens the upcoming track ahead of time and, when a
// crossfade is configured, hands it to the callback early enough to
// blend the tail of the current track into it.
func (m *Manager) maybePreload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed || m.state != Playing || m.openTrack == nil {
		return
	}
	if !m.gapless && m.fadeSec <= 0 {
		return
	}
	if m.current.IsZero() || m.current.Duration <= 0 {
		return
	}

	pos := m.Position()
	rem := m.current.Duration - pos
	if rem <= 0 {
		return
	}

	fadeWindow := time.Duration(m.fadeSec * float64(time.Second))
	preloadWindow := fadeWindow + 2*time.Second

	if m.pendingNext.IsZero() && m.preload.Load() == nil && rem <= preloadWindow {
		for range maxSourceFailures {
			next, ok := m.nextTrackLocked(true)
			if !ok {
				break
			}
			as, err := m.openSourceLocked(next)
			if err != nil {
				m.emit(Event{Kind: EventTrackSkipped, Track: next, Err: err})
				continue
			}
			m.pendingNext = next
			m.preload.Store(as)
			break
		}
	}

	if fadeWindow > 0 && !m.fadeArmed && !m.pendingNext.IsZero() && rem <= fadeWindow {
		if as := m.preload.Swap(nil); as != nil {
			frames := int(min(rem, fadeWindow).Seconds() * float64(m.sampleRate))
			if frames <= 0 {
				m.preload.Store(as)
				return
			}
			if m.pushCmd(command{kind: cmdFade, src: as, frames: frames, curve: m.curve}) {
				m.fadeArmed = true
			} else {
				m.pendingNext = Track{}
			}
		}
	}
}

// nextTrackLocked picks the track playback moves to and commits the
// queue position. auto marks an end-of-track advance, which is the only
// path that honors repeat-one.
func (m *Manager) nextTrackLocked(auto bool) (Track, bool) {
	if auto && m.repeat == RepeatOne && !m.current.IsZero() {
		return m.current, true
	}
	if t, ok := m.queue.PopExplicit(); ok {
		return t, true
	}
	n := m.queue.Len()
	if n == 0 {
		return Track{}, false
	}
	if m.shuffle != ShuffleOff {
		i := pickShuffled(m.shuffle, m.queue.Tracks(), m.history, m.current.ID, m.rng)
		if i < 0 {
			return Track{}, false
		}
		m.queue.SetIndex(i)
		t, _ := m.queue.Current()
		return t, true
	}
	i := m.queue.Index() + 1
	if i >= n {
		if m.repeat != RepeatAll {
			return Track{}, false
		}
		i = 0
	}
	m.queue.SetIndex(i)
	t, _ := m.queue.Current()
	return t, true
}

func (m *Manager) openSourceLocked(t Track) (*activeSource, error) {
	src, err := m.openTrack(t)
	if err != nil {
		return nil, &SourceError{Track: t, Err: err}
	}
	as, err := newActiveSource(t, src, m.sampleRate, m.channels, m.quality)
	if err != nil {
		src.Close()
		return nil, &SourceError{Track: t, Err: err}
	}
	return as, nil
}

// advanceLocked moves playback to the next track per policy, or stops
// when the queue is exhausted.
func (m *Manager) advanceLocked(auto bool) error {
	next, ok := m.nextTrackLocked(auto)
	if !ok {
		prev := m.current
		m.stopLocked()
		m.queue.SetIndex(-1)
		if !prev.IsZero() {
			m.history.Push(prev)
		}
		m.emit(Event{Kind: EventQueueEnded})
		return nil
	}
	if !m.current.IsZero() && m.current.ID != next.ID {
		m.history.Push(m.current)
	}
	return m.startTrackLocked(next)
}

// startTrackLocked opens t and swaps it in, skipping forward past
// tracks that fail to open, up to the failure budget.
func (m *Manager) startTrackLocked(t Track) error {
	if m.openTrack == nil {
		return ErrNoTrackLoaded
	}
	var lastErr error
	for range maxSourceFailures {
		as, err := m.openSourceLocked(t)
		if err == nil {
			m.installLocked(t, as)
			return nil
		}
		lastErr = err
		m.emit(Event{Kind: EventTrackSkipped, Track: t, Err: err})
		m.log.Warn("skipping unplayable track",
			zap.String("path", t.Path), zap.Error(err))
		next, ok := m.nextTrackLocked(false)
		if !ok {
			break
		}
		t = next
	}
	return lastErr
}

// installLocked stages as for the callback and resets per-track state.
func (m *Manager) installLocked(t Track, as *activeSource) {
	m.discardPreloadLocked()
	m.pendingNext = Track{}
	m.fadeArmed = false
	m.current = t
	m.posFrames.Store(0)
	m.pushCmd(command{kind: cmdSwap, src: as})
	m.refreshHeadroomLocked()
}

func (m *Manager) discardPreloadLocked() {
	if as := m.preload.Swap(nil); as != nil {
		if err := as.close(); err != nil {
			m.log.Warn("closing discarded preload",
				zap.String("path", as.track.Path), zap.Error(err))
		}
	}
	m.pendingNext = Track{}
	m.fadeArmed = false
}

func (m *Manager) stopLocked() {
	if m.state != Stopped {
		m.setStateLocked(Stopped)
	}
	m.pushCmd(command{kind: cmdStop})
	m.discardPreloadLocked()
	m.current = Track{}
	m.posFrames.Store(0)
	m.fails = 0
}

func (m *Manager) setStateLocked(s PlaybackState) bool {
	if !transitionAllowed(m.state, s) {
		return false
	}
	m.state = s
	m.emit(Event{Kind: EventStateChanged, State: s})
	return true
}

func (m *Manager) refreshHeadroomLocked() {
	if m.hroom.Mode() != headroom.Auto {
		return
	}
	m.hroom.SetAuto(headroom.AutoParams{
		ReplayGain: m.current.Gain,
		Preamp:     m.preampDB,
		EQMaxBoost: m.eq.MaxBoostDB(),
	})
}

// Play starts or resumes playback. From Stopped it plays the queue's
// current selection, or the first track the policy picks.
func (m *Manager) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	switch m.state {
	case Playing:
		return nil
	case Paused, Loading:
		m.setStateLocked(Playing)
		m.pushCmd(command{kind: cmdResume})
		return nil
	}

	t, ok := m.queue.Current()
	if !ok {
		if t, ok = m.nextTrackLocked(false); !ok {
			return ErrQueueEmpty
		}
	}
	if err := m.startTrackLocked(t); err != nil {
		return err
	}
	m.setStateLocked(Playing)
	m.pushCmd(command{kind: cmdResume})
	return nil
}

// Pause suspends playback, keeping the position.
func (m *Manager) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	switch m.state {
	case Paused:
		return nil
	case Playing:
		m.setStateLocked(Paused)
		m.pushCmd(command{kind: cmdPause})
		return nil
	default:
		return ErrInvalidOperation
	}
}

// Stop halts playback and releases the active source. The queue and its
// position survive, so Play starts the same track over.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.state == Stopped {
		return nil
	}
	m.stopLocked()
	return nil
}

// Next skips to the following track per the shuffle and repeat policy.
// A user skip never honors repeat-one.
func (m *Manager) Next() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.state == Stopped {
		return ErrInvalidOperation
	}
	m.discardPreloadLocked()
	return m.advanceLocked(false)
}

// Previous steps back through the listening history, or restarts the
// current track when it is more than a few seconds in.
func (m *Manager) Previous() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.current.IsZero() {
		return ErrNoTrackLoaded
	}
	if m.Position() > previousThreshold || m.history.Len() == 0 {
		m.pushCmd(command{kind: cmdSeek, seek: 0})
		m.posFrames.Store(0)
		return nil
	}
	prev, _ := m.history.Pop()
	m.discardPreloadLocked()
	if i := m.queue.IndexOf(prev.ID); i >= 0 {
		m.queue.SetIndex(i)
	}
	return m.startTrackLocked(prev)
}

// SelectTrack jumps the queue position to i. While playing or paused
// the selected track starts immediately, as a manual advance; stopped,
// it marks where the next Play begins.
func (m *Manager) SelectTrack(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if err := m.queue.SetIndex(i); err != nil {
		return err
	}
	m.discardPreloadLocked()
	if m.state == Stopped {
		return nil
	}
	t, ok := m.queue.Current()
	if !ok {
		return nil
	}
	if !m.current.IsZero() && m.current.ID != t.ID {
		m.history.Push(m.current)
	}
	return m.startTrackLocked(t)
}

// Seek repositions the current track. The seek itself runs on the audio
// thread between blocks; sources decode from memory, so it never stalls
// the callback on I/O.
func (m *Manager) Seek(pos time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if m.current.IsZero() {
		return ErrNoTrackLoaded
	}
	if pos < 0 || (m.current.Duration > 0 && pos > m.current.Duration) {
		return ErrInvalidSeekPosition
	}
	m.pushCmd(command{kind: cmdSeek, seek: pos})
	m.posFrames.Store(int64(pos.Seconds() * float64(m.sampleRate)))
	return nil
}

// Load hands a caller-opened source to the player and makes it the
// current track. On success the Manager owns src; on error the caller
// keeps it.
func (m *Manager) Load(t Track, src audio.Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	as, err := newActiveSource(t, src, m.sampleRate, m.channels, m.quality)
	if err != nil {
		return &SourceError{Track: t, Err: err}
	}
	m.installLocked(t, as)
	if m.state == Stopped {
		m.setStateLocked(Loading)
	}
	return nil
}

// SetVolume sets the control-curve volume, clamped to 0 through 100.
func (m *Manager) SetVolume(v int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	v = max(0, min(100, v))
	m.vol = v
	m.volume.Store(math.Float64bits(volumeGain(v)))
	return nil
}

// Volume returns the current control-curve volume.
func (m *Manager) Volume() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vol
}

// SetShuffle switches the shuffle mode. Takes effect at the next
// advance; the queue order itself never changes.
func (m *Manager) SetShuffle(mode ShuffleMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	switch mode {
	case ShuffleOff, ShuffleRandom, ShuffleSmart:
		m.shuffle = mode
		return nil
	default:
		return ErrUnknownMode
	}
}

// Shuffle returns the current shuffle mode.
func (m *Manager) Shuffle() ShuffleMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.shuffle
}

// SetRepeat switches the repeat mode.
func (m *Manager) SetRepeat(mode RepeatMode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	switch mode {
	case RepeatOff, RepeatAll, RepeatOne:
		m.repeat = mode
		return nil
	default:
		return ErrUnknownMode
	}
}

// Repeat returns the current repeat mode.
func (m *Manager) Repeat() RepeatMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.repeat
}

// SetCrossfade sets the transition blend length and curve. Zero seconds
// switches transitions back to plain gapless handoff.
func (m *Manager) SetCrossfade(seconds float64, curve crossfade.Curve) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if seconds < 0 {
		seconds = 0
	}
	m.fadeSec = seconds
	m.curve = curve
	return nil
}

// Crossfade returns the configured blend length and curve.
func (m *Manager) Crossfade() (float64, crossfade.Curve) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fadeSec, m.curve
}

// SetGapless toggles preloading of the upcoming track.
func (m *Manager) SetGapless(on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.gapless = on
	return nil
}

// SetPreamp sets the replay-gain preamp in dB and refreshes the
// automatic headroom sum.
func (m *Manager) SetPreamp(db float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.preampDB = db
	m.refreshHeadroomLocked()
	return nil
}

// UpdateEffect stages new parameters for the effect carrying id. The
// values apply at the next block boundary.
func (m *Manager) UpdateEffect(id string, p dsp.Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if id == m.hroom.ID() {
		return m.hroom.Update(p)
	}
	if err := m.chain.Update(id, p); err != nil {
		return err
	}
	if id == m.eq.ID() {
		m.refreshHeadroomLocked()
	}
	return nil
}

// SetEffectEnabled toggles one effect without dropping its settings.
func (m *Manager) SetEffectEnabled(id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if id == m.hroom.ID() {
		m.hroom.SetEnabled(enabled)
		return nil
	}
	comp, ok := m.chain.Component(id)
	if !ok {
		return fmt.Errorf("%w: %q", dsp.ErrUnknownComponent, id)
	}
	comp.SetEnabled(enabled)
	if id == m.eq.ID() {
		m.refreshHeadroomLocked()
	}
	return nil
}

// Headroom exposes the headroom stage for mode control.
func (m *Manager) Headroom() *headroom.Manager { return m.hroom }

// Effects returns the ids of the chain's effects in processing order,
// with the headroom stage appended.
func (m *Manager) Effects() []string {
	comps := m.chain.Components()
	ids := make([]string, 0, len(comps)+1)
	for _, c := range comps {
		ids = append(ids, c.ID())
	}
	return append(ids, m.hroom.ID())
}

// EnqueueEnd appends t to the play queue.
func (m *Manager) EnqueueEnd(t Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.queue.Append(t)
	return nil
}

// EnqueueNext schedules t to play once, right after the current track,
// without disturbing the queue order.
func (m *Manager) EnqueueNext(t Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.queue.PushNext(t)
	m.discardPreloadLocked()
	return nil
}

// InsertTrack places t at position i in the queue.
func (m *Manager) InsertTrack(i int, t Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return m.queue.Insert(i, t)
}

// RemoveTrack removes the queue entry at i.
func (m *Manager) RemoveTrack(i int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	_, err := m.queue.RemoveAt(i)
	if err == nil {
		m.discardPreloadLocked()
	}
	return err
}

// MoveTrack moves the queue entry at from to position to.
func (m *Manager) MoveTrack(from, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	err := m.queue.Move(from, to)
	if err == nil {
		m.discardPreloadLocked()
	}
	return err
}

// ClearQueue empties both queue tiers. The current track keeps playing.
func (m *Manager) ClearQueue() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.queue.Clear()
	m.discardPreloadLocked()
	return nil
}

// QueueTracks returns a snapshot of the queue's source tier.
func (m *Manager) QueueTracks() []Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Tracks()
}

// QueueIndex returns the queue position of the playing track, -1 when
// nothing from the source tier is selected.
func (m *Manager) QueueIndex() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.Index()
}

// RecentTracks returns up to n recently played tracks, newest first.
func (m *Manager) RecentTracks(n int) []Track {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.Recent(n)
}

// State returns the transport state.
func (m *Manager) State() PlaybackState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns the playing track, if any.
func (m *Manager) Current() (Track, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, !m.current.IsZero()
}

// Position returns the playback position of the current track. Safe
// from any goroutine without locking.
func (m *Manager) Position() time.Duration {
	frames := m.posFrames.Load()
	return time.Duration(frames) * time.Second / time.Duration(m.sampleRate)
}

// SampleRate returns the output rate sources are converted to.
func (m *Manager) SampleRate() int { return m.sampleRate }

// Channels returns the output channel count.
func (m *Manager) Channels() int { return m.channels }

// MaxBlock returns the largest block ProcessAudio accepts, in frames.
func (m *Manager) MaxBlock() int { return m.maxBlock }

// Subscribe returns a channel of playback events. Events are dropped,
// not queued, when the subscriber falls behind. The channel closes with
// the Manager.
func (m *Manager) Subscribe() <-chan Event {
	ch := make(chan Event, eventRingSize)
	m.subsMu.Lock()
	m.subs = append(m.subs, ch)
	m.subsMu.Unlock()
	return ch
}

func (m *Manager) emit(ev Event) {
	m.logEvent(ev)
	m.subsMu.Lock()
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	m.subsMu.Unlock()
}

func (m *Manager) logEvent(ev Event) {
	switch ev.Kind {
	case EventTrackStarted:
		m.log.Info("track started",
			zap.String("title", ev.Track.Title),
			zap.String("artist", ev.Track.Artist))
	case EventTrackFinished:
		m.log.Debug("track finished", zap.String("title", ev.Track.Title))
	case EventTrackSkipped:
		m.log.Warn("track skipped",
			zap.String("path", ev.Track.Path), zap.Error(ev.Err))
	case EventStateChanged:
		m.log.Debug("state changed", zap.Stringer("state", ev.State))
	case EventQueueEnded:
		m.log.Info("queue ended")
	}
}

// Close stops the control loop and releases every source. Stop the
// output backend first; Close assumes ProcessAudio is no longer being
// called.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.state = Stopped
	m.mu.Unlock()

	close(m.done)
	m.wg.Wait()

	m.playing.Store(false)
	m.drainRetired()
	for {
		cmd, ok := m.cmds.pop()
		if !ok {
			break
		}
		if cmd.src != nil {
			cmd.src.close()
		}
	}
	if m.active != nil {
		if err := m.active.close(); err != nil {
			m.log.Warn("closing active source", zap.Error(err))
		}
		m.active = nil
	}
	if m.incoming != nil {
		if err := m.incoming.close(); err != nil {
			m.log.Warn("closing incoming source", zap.Error(err))
		}
		m.incoming = nil
	}
	if as := m.preload.Swap(nil); as != nil {
		as.close()
	}

	m.subsMu.Lock()
	for _, ch := range m.subs {
		close(ch)
	}
	m.subs = nil
	m.subsMu.Unlock()
	return nil
}
