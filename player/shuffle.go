// SPDX-License-Identifier: EPL-2.0

package player

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const (
	// shuffleExclusion is how many recently played tracks smart shuffle
	// refuses to repeat. Capped below the pool size so the candidate
	// set can never go empty.
	shuffleExclusion = 8
	// artistWindow is how many recently heard artists smart shuffle
	// tries to avoid before giving up on the constraint.
	artistWindow = 5
)

// pickShuffled chooses the next source-tier index under a shuffle
// policy. ShuffleRandom draws uniformly from every track but the
// current one. ShuffleSmart additionally excludes the recently played
// window and deprioritizes recently heard artists, relaxing the artist
// constraint first and the track constraint never. The windows are
// sized so the pool cannot empty, so selection never deadlocks on a
// small library.
func pickShuffled(mode ShuffleMode, tracks []Track, hist *History, currentID uuid.UUID, rng *rand.Rand) int {
	if len(tracks) == 0 {
		return -1
	}
	if len(tracks) == 1 {
		return 0
	}

	pool := lo.Filter(lo.Range(len(tracks)), func(i, _ int) bool {
		return tracks[i].ID != currentID
	})

	if mode == ShuffleSmart {
		// The current track is excluded on top of the window, so the
		// window stops two short of the pool size.
		window := max(min(shuffleExclusion, len(tracks)-2), 0)
		recent := hist.Recent(window)
		recentIDs := make(map[uuid.UUID]struct{}, len(recent))
		for _, t := range recent {
			recentIDs[t.ID] = struct{}{}
		}
		recentArtists := make(map[string]struct{}, artistWindow)
		for _, t := range hist.Recent(artistWindow) {
			if t.Artist != "" {
				recentArtists[t.Artist] = struct{}{}
			}
		}

		fresh := lo.Filter(pool, func(i, _ int) bool {
			if _, played := recentIDs[tracks[i].ID]; played {
				return false
			}
			_, heard := recentArtists[tracks[i].Artist]
			return !heard
		})
		if len(fresh) == 0 {
			fresh = lo.Filter(pool, func(i, _ int) bool {
				_, played := recentIDs[tracks[i].ID]
				return !played
			})
		}
		if len(fresh) > 0 {
			pool = fresh
		}
	}

	if len(pool) == 0 {
		return rng.IntN(len(tracks))
	}
	return pool[rng.IntN(len(pool))]
}
