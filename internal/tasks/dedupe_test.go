package tasks

import (
	"fmt"
	"testing"
	"time"

	"github.com/avelara/sptools/internal/models"
)

func mkTrack(name string, artists []string, durMS int, uri string, addedAt time.Time, pos int) models.Track {
	return models.Track{
		ID:         uri,
		URI:        uri,
		Name:       name,
		Artists:    artists,
		Album:      "Album",
		DurationMS: durMS,
		AddedAt:    addedAt.UTC().Format(time.RFC3339),
		Position:   pos,
	}
}

func TestGroupDuplicates(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("relaxed mode groups feat and remaster variants", func(t *testing.T) {
		tracks := []models.Track{
			mkTrack("Song (feat. Drake) - Remastered 2012", []string{"Artist A"}, 215000, "spotify:track:111", t0, 0),
			mkTrack("Song", []string{"Artist A"}, 215000, "spotify:track:111", t0.AddDate(0, 0, 1), 1),
		}

		groups := GroupDuplicates(tracks, false, 2)
		if len(groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(groups))
		}
		if len(groups[0].Tracks) != 2 {
			t.Fatalf("expected 2 tracks in group, got %d", len(groups[0].Tracks))
		}
		if groups[0].Tracks[0].AddedAt >= groups[0].Tracks[1].AddedAt {
			t.Error("expected oldest track first")
		}
	})

	t.Run("strict mode does not group marker variants", func(t *testing.T) {
		tracks := []models.Track{
			mkTrack("Song (feat. Drake) - Remastered 2012", []string{"Artist A"}, 215000, "spotify:track:111", t0, 0),
			mkTrack("Song", []string{"Artist A"}, 215000, "spotify:track:111", t0.AddDate(0, 0, 1), 1),
		}

		if groups := GroupDuplicates(tracks, true, 2); len(groups) != 0 {
			t.Errorf("expected no groups in strict mode, got %d", len(groups))
		}
	})

	t.Run("artist order is insensitive", func(t *testing.T) {
		tracks := []models.Track{
			mkTrack("Collab", []string{"A", "B"}, 200000, "spotify:track:abc", t0, 0),
			mkTrack("Collab", []string{"B", "A"}, 200000, "spotify:track:abc", t0.Add(time.Hour), 1),
		}

		groups := GroupDuplicates(tracks, false, 0)
		if len(groups) != 1 || len(groups[0].Tracks) != 2 {
			t.Errorf("expected 1 group of 2, got %v", groups)
		}
	})

	t.Run("duration tolerance merges close lengths but not far", func(t *testing.T) {
		near := []models.Track{
			mkTrack("Track X", []string{"Artist"}, 214000, "spotify:track:x", t0, 0),
			mkTrack("Track X", []string{"Artist"}, 215000, "spotify:track:x", t0.Add(10*time.Second), 1),
		}

		if groups := GroupDuplicates(near, false, 0); len(groups) != 0 {
			t.Errorf("expected no groups with zero tolerance, got %d", len(groups))
		}
		if groups := GroupDuplicates(near, false, 1); len(groups) != 1 {
			t.Errorf("expected 1 group with tolerance 1, got %d", len(groups))
		}

		far := []models.Track{
			mkTrack("Track Y", []string{"Artist"}, 214000, "spotify:track:y", t0, 0),
			mkTrack("Track Y", []string{"Artist"}, 219000, "spotify:track:y", t0.Add(10*time.Second), 1),
		}
		if groups := GroupDuplicates(far, false, 2); len(groups) != 0 {
			t.Errorf("expected no groups for far durations, got %d", len(groups))
		}
	})

	t.Run("cjk titles group without cross-grouping", func(t *testing.T) {
		tracks := []models.Track{
			mkTrack("もしも命が描けたら", []string{"YOASOBI"}, 250000, "spotify:track:j1", t0, 0),
			mkTrack("もしも命が描けたら", []string{"YOASOBI"}, 250000, "spotify:track:j1", t0.AddDate(0, 0, 1), 1),
			mkTrack("あの夏に咲け", []string{"美波"}, 250000, "spotify:track:j2", t0.AddDate(0, 0, 2), 2),
		}

		groups := GroupDuplicates(tracks, false, 0)
		if len(groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(groups))
		}
		if len(groups[0].Tracks) != 2 {
			t.Errorf("expected 2 tracks, got %d", len(groups[0].Tracks))
		}
	})

	t.Run("negative tolerance selects the default", func(t *testing.T) {
		tracks := []models.Track{
			mkTrack("Track Z", []string{"Artist"}, 214000, "spotify:track:z1", t0, 0),
			mkTrack("Track Z", []string{"Artist"}, 218000, "spotify:track:z2", t0.Add(time.Minute), 1),
		}

		if groups := GroupDuplicates(tracks, false, -1); len(groups) != 1 {
			t.Errorf("expected default tolerance to merge 4s apart, got %d groups", len(groups))
		}
	})

	t.Run("no duplicates yields no groups", func(t *testing.T) {
		tracks := []models.Track{
			mkTrack("One", []string{"A"}, 180000, "spotify:track:1", t0, 0),
			mkTrack("Two", []string{"A"}, 180000, "spotify:track:2", t0, 1),
		}
		if groups := GroupDuplicates(tracks, false, 5); groups != nil {
			t.Errorf("expected nil groups, got %v", groups)
		}
	})
}

func TestComputeKeepAndDelete(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("same URI duplicates delete all copies and re-add keeper", func(t *testing.T) {
		// [A, B, A, C] with both A entries sharing a URI
		tracks := []models.Track{
			mkTrack("A", []string{"X"}, 200000, "spotify:track:a", t0, 0),
			mkTrack("B", []string{"X"}, 200000, "spotify:track:b", t0.Add(time.Minute), 1),
			mkTrack("A", []string{"X"}, 200000, "spotify:track:a", t0.Add(2*time.Minute), 2),
			mkTrack("C", []string{"X"}, 200000, "spotify:track:c", t0.Add(3*time.Minute), 3),
		}

		groups := GroupDuplicates(tracks, false, 0)
		if len(groups) != 1 {
			t.Fatalf("expected 1 group, got %d", len(groups))
		}

		keep, del := ComputeKeepAndDelete(groups)
		if len(keep) != 1 || keep[0] != "spotify:track:a" {
			t.Errorf("expected keeper a, got %v", keep)
		}
		if len(del) != 1 || del[0] != "spotify:track:a" {
			t.Errorf("expected delete list [a], got %v", del)
		}
		if RemovedEntryCount(groups) != 1 {
			t.Errorf("expected 1 entry removed, got %d", RemovedEntryCount(groups))
		}
	})

	t.Run("distinct URI duplicates all deleted", func(t *testing.T) {
		tracks := []models.Track{
			mkTrack("Song", []string{"X"}, 200000, "spotify:track:v1", t0, 0),
			mkTrack("Song - Remastered", []string{"X"}, 200000, "spotify:track:v2", t0.Add(time.Minute), 1),
		}

		groups := GroupDuplicates(tracks, false, 0)
		keep, del := ComputeKeepAndDelete(groups)
		if len(keep) != 1 || keep[0] != "spotify:track:v1" {
			t.Errorf("expected earliest-added keeper v1, got %v", keep)
		}
		if len(del) != 2 {
			t.Errorf("expected both URIs deleted, got %v", del)
		}
	})

	t.Run("empty groups", func(t *testing.T) {
		keep, del := ComputeKeepAndDelete(nil)
		if keep != nil || del != nil {
			t.Errorf("expected empty plan, got %v %v", keep, del)
		}
	})
}

func TestMakeKey(t *testing.T) {
	track := models.Track{
		Name:       "Song (feat. Drake)",
		Artists:    []string{"B Artist", "A Artist"},
		DurationMS: 214600,
	}

	relaxed := MakeKey(track, false)
	if relaxed.Title != "song" {
		t.Errorf("expected relaxed title 'song', got %q", relaxed.Title)
	}
	if relaxed.Seconds != 215 {
		t.Errorf("expected rounded 215s, got %d", relaxed.Seconds)
	}
	if relaxed.Artists != fmt.Sprintf("a artist%sb artist", "\x1f") {
		t.Errorf("expected sorted artist key, got %q", relaxed.Artists)
	}

	strict := MakeKey(track, true)
	if strict.Title == relaxed.Title {
		t.Error("expected strict title to keep the feature credit")
	}
}
