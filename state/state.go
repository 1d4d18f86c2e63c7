// SPDX-License-Identifier: EPL-2.0

package state

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Track is the persisted shape of one queue entry. Identity is the
// path; runtime track IDs are minted fresh on load.
type Track struct {
	Path     string        `mapstructure:"path"`
	Title    string        `mapstructure:"title"`
	Artist   string        `mapstructure:"artist"`
	Album    string        `mapstructure:"album"`
	TrackNum int           `mapstructure:"track_num"`
	Duration time.Duration `mapstructure:"duration"`
	Gain     float64       `mapstructure:"gain"`
}

// EQBand mirrors one equalizer band. Type is "peak", "lowshelf" or
// "highshelf".
type EQBand struct {
	Type string  `mapstructure:"type"`
	Freq float64 `mapstructure:"freq"`
	Gain float64 `mapstructure:"gain"`
	Q    float64 `mapstructure:"q"`
}

// EQ is the persisted equalizer setup.
type EQ struct {
	Enabled bool     `mapstructure:"enabled"`
	Bands   []EQBand `mapstructure:"bands"`
}

// Headroom is the persisted headroom setup. Mode is "disabled",
// "manual" or "auto".
type Headroom struct {
	Mode     string  `mapstructure:"mode"`
	ManualDB float64 `mapstructure:"manual_db"`
}

// Player is a session snapshot: everything needed to restore the
// queue and sound of a previous run.
type Player struct {
	Queue        []Track  `mapstructure:"queue"`
	Index        int      `mapstructure:"index"`
	Volume       int      `mapstructure:"volume"`
	Shuffle      string   `mapstructure:"shuffle"`
	Repeat       string   `mapstructure:"repeat"`
	Gapless      bool     `mapstructure:"gapless"`
	CrossfadeSec float64  `mapstructure:"crossfade_sec"`
	PreampDB     float64  `mapstructure:"preamp_db"`
	Headroom     Headroom `mapstructure:"headroom"`
	EQ           EQ       `mapstructure:"eq"`
}

// Default is the snapshot of a fresh install.
func Default() Player {
	return Player{
		Index:    -1,
		Volume:   100,
		Shuffle:  "off",
		Repeat:   "off",
		Gapless:  true,
		Headroom: Headroom{Mode: "disabled", ManualDB: -3},
	}
}

// Load reads a snapshot from path. A missing file is a first run and
// yields Default with no error; a file that exists but does not parse
// is an error.
func Load(path string) (Player, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Player{}, fmt.Errorf("state: read %s: %w", path, err)
	}
	var p Player
	if err := v.Unmarshal(&p); err != nil {
		return Player{}, fmt.Errorf("state: parse %s: %w", path, err)
	}
	return p, nil
}

// Save writes the snapshot as YAML, creating parent directories as
// needed. path must carry a .yaml or .yml extension for viper to pick
// the encoder.
func Save(path string, p Player) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("state: create %s: %w", dir, err)
		}
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("queue", lo.Map(p.Queue, func(t Track, _ int) map[string]any {
		return map[string]any{
			"path":      t.Path,
			"title":     t.Title,
			"artist":    t.Artist,
			"album":     t.Album,
			"track_num": t.TrackNum,
			"duration":  t.Duration.String(),
			"gain":      t.Gain,
		}
	}))
	v.Set("index", p.Index)
	v.Set("volume", p.Volume)
	v.Set("shuffle", p.Shuffle)
	v.Set("repeat", p.Repeat)
	v.Set("gapless", p.Gapless)
	v.Set("crossfade_sec", p.CrossfadeSec)
	v.Set("preamp_db", p.PreampDB)
	v.Set("headroom", map[string]any{
		"mode":      p.Headroom.Mode,
		"manual_db": p.Headroom.ManualDB,
	})
	v.Set("eq", map[string]any{
		"enabled": p.EQ.Enabled,
		"bands": lo.Map(p.EQ.Bands, func(b EQBand, _ int) map[string]any {
			return map[string]any{
				"type": b.Type,
				"freq": b.Freq,
				"gain": b.Gain,
				"q":    b.Q,
			}
		}),
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("state: write %s: %w", path, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("index", d.Index)
	v.SetDefault("volume", d.Volume)
	v.SetDefault("shuffle", d.Shuffle)
	v.SetDefault("repeat", d.Repeat)
	v.SetDefault("gapless", d.Gapless)
	v.SetDefault("crossfade_sec", d.CrossfadeSec)
	v.SetDefault("preamp_db", d.PreampDB)
	v.SetDefault("headroom.mode", d.Headroom.Mode)
	v.SetDefault("headroom.manual_db", d.Headroom.ManualDB)
}
