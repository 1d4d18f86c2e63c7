// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/soulaudio/legato"
	"github.com/soulaudio/legato/crossfade"
	"github.com/soulaudio/legato/dsp"
	"github.com/soulaudio/legato/headroom"
	"github.com/soulaudio/legato/output"
	"github.com/soulaudio/legato/player"
	"github.com/soulaudio/legato/resample"
	"github.com/soulaudio/legato/state"
)

var playFlags struct {
	volume    int
	crossfade float64
	curve     string
	shuffle   string
	repeat    string
	quality   string
	gapless   bool
	statePath string
	latency   time.Duration
	rate      int
}

func init() {
	rootCmd.AddCommand(playCmd)
	f := playCmd.Flags()
	f.IntVar(&playFlags.volume, "volume", 100, "playback volume, 1 to 100")
	f.Float64Var(&playFlags.crossfade, "crossfade", 0, "crossfade length in seconds, 0 switches gapless")
	f.StringVar(&playFlags.curve, "curve", "equal-power", "crossfade curve (linear, equal-power)")
	f.StringVar(&playFlags.shuffle, "shuffle", "off", "shuffle mode (off, random, smart)")
	f.StringVar(&playFlags.repeat, "repeat", "off", "repeat mode (off, all, one)")
	f.StringVar(&playFlags.quality, "quality", "balanced", "resampling quality (fast, balanced, high, maximum)")
	f.BoolVar(&playFlags.gapless, "gapless", true, "preload upcoming tracks for gapless transitions")
	f.StringVar(&playFlags.statePath, "state", "", "state file restored on start and saved on exit")
	f.DurationVar(&playFlags.latency, "latency", 100*time.Millisecond, "output buffer length")
	f.IntVar(&playFlags.rate, "rate", 44100, "output sample rate in Hz")
}

var playCmd = &cobra.Command{
	Use:   "play [files...]",
	Short: "Play audio files through the default output device",
	Long: `Queue the given files and play them through the default output
device. With --state, playback picks up the saved queue and settings and
files named on the command line are appended; flags given explicitly
override the saved settings.`,
	RunE: runPlay,
}

func runPlay(cmd *cobra.Command, args []string) error {
	snap := state.Default()
	if playFlags.statePath != "" {
		var err error
		if snap, err = state.Load(playFlags.statePath); err != nil {
			return err
		}
	}
	flagWins := func(name string) bool {
		return playFlags.statePath == "" || cmd.Flags().Changed(name)
	}
	if flagWins("volume") {
		snap.Volume = playFlags.volume
	}
	if flagWins("crossfade") {
		snap.CrossfadeSec = playFlags.crossfade
	}
	if flagWins("shuffle") {
		snap.Shuffle = playFlags.shuffle
	}
	if flagWins("repeat") {
		snap.Repeat = playFlags.repeat
	}
	if flagWins("gapless") {
		snap.Gapless = playFlags.gapless
	}

	shuffle, err := player.ParseShuffleMode(snap.Shuffle)
	if err != nil {
		return err
	}
	repeat, err := player.ParseRepeatMode(snap.Repeat)
	if err != nil {
		return err
	}
	quality, err := resample.ParseQuality(playFlags.quality)
	if err != nil {
		return err
	}
	curve, err := crossfade.ParseCurve(playFlags.curve)
	if err != nil {
		return err
	}

	tracks := append(restoreTracks(snap.Queue), queueFiles(args)...)
	if len(tracks) == 0 {
		return errors.New("nothing to play: no files given and no saved queue")
	}

	m, err := legato.NewPlayer(player.Config{
		SampleRate:   playFlags.rate,
		Channels:     2,
		MaxBlock:     4096,
		Volume:       snap.Volume,
		Shuffle:      shuffle,
		Repeat:       repeat,
		Gapless:      snap.Gapless,
		CrossfadeSec: snap.CrossfadeSec,
		Curve:        curve,
		Quality:      quality,
		PreampDB:     snap.PreampDB,
		Logger:       log,
	})
	if err != nil {
		return err
	}
	defer m.Close()

	if err := applyEffectState(m, snap); err != nil {
		return err
	}
	for _, tr := range tracks {
		if err := m.EnqueueEnd(tr); err != nil {
			return err
		}
	}
	if snap.Index >= 0 && snap.Index < len(snap.Queue) {
		if err := m.SelectTrack(snap.Index); err != nil {
			return err
		}
	}

	events := m.Subscribe()

	spk := output.NewSpeaker(m, output.SpeakerConfig{
		Latency: playFlags.latency,
		Logger:  log,
	})
	if err := spk.Start(); err != nil {
		return err
	}
	defer spk.Close()

	if err := m.Play(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return saveState(m, snap)
		case ev, ok := <-events:
			if !ok {
				return saveState(m, snap)
			}
			switch ev.Kind {
			case player.EventTrackStarted:
				fmt.Printf("playing  %s\n", describe(ev.Track))
			case player.EventTrackSkipped:
				fmt.Fprintf(os.Stderr, "skipping %s: %v\n", describe(ev.Track), ev.Err)
			case player.EventQueueEnded:
				return saveState(m, snap)
			}
		}
	}
}

// queueFiles builds queue entries for the given paths, dropping files
// no decoder is registered for.
func queueFiles(paths []string) []player.Track {
	formats := legato.DefaultRegistry()
	var tracks []player.Track
	for _, p := range paths {
		format := strings.ToLower(strings.TrimPrefix(filepath.Ext(p), "."))
		if _, ok := formats.Get(format); !ok {
			fmt.Fprintf(os.Stderr, "skipping %s: unsupported format %q\n", p, format)
			continue
		}
		tracks = append(tracks, player.NewTrack(p))
	}
	return tracks
}

// restoreTracks rebuilds queue entries from a saved snapshot. Identity
// is regenerated; the path is what persists across runs.
func restoreTracks(st []state.Track) []player.Track {
	return lo.Map(st, func(t state.Track, _ int) player.Track {
		pt := player.NewTrack(t.Path)
		if t.Title != "" {
			pt.Title = t.Title
		}
		pt.Artist = t.Artist
		pt.Album = t.Album
		pt.TrackNum = t.TrackNum
		pt.Duration = t.Duration
		pt.Gain = t.Gain
		return pt
	})
}

func storeTracks(ts []player.Track) []state.Track {
	return lo.Map(ts, func(t player.Track, _ int) state.Track {
		return state.Track{
			Path:     t.Path,
			Title:    t.Title,
			Artist:   t.Artist,
			Album:    t.Album,
			TrackNum: t.TrackNum,
			Duration: t.Duration,
			Gain:     t.Gain,
		}
	})
}

func applyEffectState(m *player.Manager, snap state.Player) error {
	if len(snap.EQ.Bands) > 0 {
		bands := make([]dsp.Band, 0, len(snap.EQ.Bands))
		for _, b := range snap.EQ.Bands {
			bt, err := dsp.ParseBandType(b.Type)
			if err != nil {
				return err
			}
			bands = append(bands, dsp.Band{Type: bt, Freq: b.Freq, Gain: b.Gain, Q: b.Q})
		}
		if err := m.UpdateEffect("equalizer", dsp.EQParams{Bands: bands}); err != nil {
			return err
		}
		if err := m.SetEffectEnabled("equalizer", snap.EQ.Enabled); err != nil {
			return err
		}
	}

	mode, err := headroom.ParseMode(snap.Headroom.Mode)
	if err != nil {
		return err
	}
	hr := m.Headroom()
	hr.SetManualDB(snap.Headroom.ManualDB)
	hr.SetMode(mode)
	return nil
}

// saveState writes the live queue and settings back to the state file,
// when one is in use.
func saveState(m *player.Manager, snap state.Player) error {
	if playFlags.statePath == "" {
		return nil
	}
	snap.Queue = storeTracks(m.QueueTracks())
	snap.Index = m.QueueIndex()
	snap.Volume = m.Volume()
	snap.Shuffle = m.Shuffle().String()
	snap.Repeat = m.Repeat().String()
	sec, _ := m.Crossfade()
	snap.CrossfadeSec = sec
	return state.Save(playFlags.statePath, snap)
}

func describe(t player.Track) string {
	name := t.Title
	if t.Artist != "" {
		name = t.Artist + " - " + name
	}
	if t.Duration > 0 {
		return fmt.Sprintf("%s [%s]", name, t.Duration.Round(time.Second))
	}
	return name
}
