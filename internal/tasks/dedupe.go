// Duplicate grouping and keep/delete planning
package tasks

import (
	"math"
	"sort"
	"strings"

	"github.com/avelara/sptools/internal/models"
)

// DefaultToleranceSecs is how far apart two durations may be while still
// counting as the same recording.
const DefaultToleranceSecs = 5

// TrackKey is the canonical identity of a recording: normalized title, sorted
// normalized artist set, and duration rounded to seconds.
type TrackKey struct {
	Title   string
	Artists string
	Seconds int
}

// DuplicateGroup is one set of playlist entries that resolve to the same key.
// Tracks are ordered oldest added first; the first entry is the keeper.
type DuplicateGroup struct {
	Key    TrackKey       `json:"key"`
	Tracks []models.Track `json:"tracks"`
}

// Keeper returns the earliest-added track of the group.
func (g DuplicateGroup) Keeper() models.Track {
	return g.Tracks[0]
}

// MakeKey computes the canonical key for a track.
func MakeKey(t models.Track, strict bool) TrackKey {
	return TrackKey{
		Title:   NormalizeTitle(t.Name, strict),
		Artists: strings.Join(NormalizeArtists(t.Artists), "\x1f"),
		Seconds: roundSeconds(t.DurationMS),
	}
}

func roundSeconds(ms int) int {
	return int(math.Round(float64(ms) / 1000.0))
}

// withinTolerance reports whether two rounded durations are close enough to
// count as the same recording.
func withinTolerance(a, b, tol int) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff <= tol
}

// GroupDuplicates buckets tracks by canonical key, merging keys whose
// durations fall within tolSecs of an earlier key. Only keys with more than
// one entry are returned. Within each group tracks are sorted by added-at,
// playlist position breaking ties.
func GroupDuplicates(tracks []models.Track, strict bool, tolSecs int) []DuplicateGroup {
	if tolSecs < 0 {
		tolSecs = DefaultToleranceSecs
	}

	var keys []TrackKey
	var buckets [][]models.Track

	for _, track := range tracks {
		key := MakeKey(track, strict)

		idx := -1
		for i, existing := range keys {
			if existing.Title == key.Title && existing.Artists == key.Artists &&
				withinTolerance(existing.Seconds, key.Seconds, tolSecs) {
				idx = i
				break
			}
		}

		if idx == -1 {
			keys = append(keys, key)
			buckets = append(buckets, []models.Track{track})
		} else {
			buckets[idx] = append(buckets[idx], track)
		}
	}

	var groups []DuplicateGroup
	for i, bucket := range buckets {
		if len(bucket) <= 1 {
			continue
		}
		sort.SliceStable(bucket, func(a, b int) bool {
			if bucket[a].AddedAt != bucket[b].AddedAt {
				return bucket[a].AddedAt < bucket[b].AddedAt
			}
			return bucket[a].Position < bucket[b].Position
		})
		groups = append(groups, DuplicateGroup{Key: keys[i], Tracks: bucket})
	}

	return groups
}

// ComputeKeepAndDelete derives the mutation plan from duplicate groups.
//
// The Spotify removal endpoint deletes every playlist entry matching a URI, so
// a keeper sharing its URI with a duplicate would be wiped too. The plan
// therefore deletes ALL URIs of each duplicated key and re-adds one keeper URI
// per group afterwards.
func ComputeKeepAndDelete(groups []DuplicateGroup) (keepURIs, deleteURIs []string) {
	seen := make(map[string]bool)

	for _, group := range groups {
		keepURIs = append(keepURIs, group.Keeper().URI)
		for _, track := range group.Tracks {
			if track.URI == "" || seen[track.URI] {
				continue
			}
			seen[track.URI] = true
			deleteURIs = append(deleteURIs, track.URI)
		}
	}

	return keepURIs, deleteURIs
}

// RemovedEntryCount is the number of playlist entries a clean pass drops: every
// group member beyond its keeper.
func RemovedEntryCount(groups []DuplicateGroup) int {
	count := 0
	for _, group := range groups {
		count += len(group.Tracks) - 1
	}
	return count
}
