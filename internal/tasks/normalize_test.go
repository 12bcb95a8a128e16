package tasks

import (
	"reflect"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	t.Run("relaxed strips markers", func(t *testing.T) {
		if got := NormalizeTitle("Song (feat. Drake) - Remastered 2012", false); got != "song" {
			t.Errorf("expected 'song', got %q", got)
		}
	})

	t.Run("feat inside words is not a marker", func(t *testing.T) {
		if got := NormalizeTitle("Birds of a feather", false); got != "birds of a feather" {
			t.Errorf("expected title unchanged, got %q", got)
		}
	})

	t.Run("strict keeps markers", func(t *testing.T) {
		if got := NormalizeTitle("Song - Remastered 2012", true); got != "song remastered 2012" {
			t.Errorf("expected markers kept in strict mode, got %q", got)
		}
	})

	t.Run("accents stripped", func(t *testing.T) {
		if got := NormalizeTitle("Beyoncé", false); got != "beyonce" {
			t.Errorf("expected 'beyonce', got %q", got)
		}
	})

	t.Run("ampersand becomes and", func(t *testing.T) {
		if got := NormalizeTitle("Me & You", false); got != "me and you" {
			t.Errorf("expected 'me and you', got %q", got)
		}
	})

	t.Run("punctuation collapses to spaces", func(t *testing.T) {
		if got := NormalizeTitle("Hello, World!", false); got != "hello world" {
			t.Errorf("expected 'hello world', got %q", got)
		}
	})

	t.Run("cjk preserved", func(t *testing.T) {
		if got := NormalizeTitle("もしも命が描けたら", false); got != "もしも命が描けたら" {
			t.Errorf("expected CJK title preserved, got %q", got)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := NormalizeTitle("   ", false); got != "" {
			t.Errorf("expected empty, got %q", got)
		}
	})
}

func TestHasCJK(t *testing.T) {
	if !hasCJK("スーパー") {
		t.Error("expected katakana to be detected as CJK")
	}
	if hasCJK("Kendrick") {
		t.Error("expected latin text not to be detected as CJK")
	}
}

func TestNormalizeArtists(t *testing.T) {
	t.Run("sorted lowercase", func(t *testing.T) {
		got := NormalizeArtists([]string{"Drake", "21 Savage"})
		want := []string{"21 savage", "drake"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("deduplicates", func(t *testing.T) {
		got := NormalizeArtists([]string{"Drake", "drake", "DRAKE"})
		if len(got) != 1 || got[0] != "drake" {
			t.Errorf("expected single entry, got %v", got)
		}
	})

	t.Run("drops empty entries", func(t *testing.T) {
		got := NormalizeArtists([]string{"", "  ", "A"})
		if len(got) != 1 || got[0] != "a" {
			t.Errorf("expected only 'a', got %v", got)
		}
	})
}
