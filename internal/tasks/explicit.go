// Explicit content reporting and clean actions
package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/services"
	"github.com/avelara/sptools/internal/shared"
)

// ReasonMetadataFlag marks a hit from Spotify's own explicit flag.
const ReasonMetadataFlag = "spotify_metadata_explicit_flag"

// reasonLyricsPrefix prefixes hits from the lyrics scan, followed by the
// matched words.
const reasonLyricsPrefix = "lyrics_banned_words:"

// ExplicitHit is one track flagged by the scan, with the reason it was flagged.
type ExplicitHit struct {
	Track  models.Track `json:"track"`
	Reason string       `json:"reason"`
}

// ExplicitReport is the outcome of scanning a playlist for explicit content.
type ExplicitReport struct {
	Playlist    models.Playlist `json:"playlist"`
	TotalTracks int             `json:"total_tracks"`
	Hits        []ExplicitHit   `json:"hits"`
	// MissingLyrics lists tracks the lyrics scan could not check.
	MissingLyrics []models.Track `json:"missing_lyrics,omitempty"`
}

// ExplicitURIs returns the unique URIs of all flagged tracks, in report order.
func (r *ExplicitReport) ExplicitURIs() []string {
	seen := make(map[string]bool)
	var uris []string
	for _, hit := range r.Hits {
		if hit.Track.URI == "" || seen[hit.Track.URI] {
			continue
		}
		seen[hit.Track.URI] = true
		uris = append(uris, hit.Track.URI)
	}
	return uris
}

// LyricsProvider is the slice of the lyrics service the scan depends on.
type LyricsProvider interface {
	Lyrics(ctx context.Context, track models.Track) (string, error)
	ProfanityList(ctx context.Context) ([]string, error)
}

// scanExplicit builds the hit list for a track listing.
//
// In metadata mode only Spotify's explicit flag is consulted. In lyrics mode
// flagged tracks are reported immediately and the remainder are checked
// against the banned word list; tracks without lyrics land in MissingLyrics.
func scanExplicit(ctx context.Context, lyrics LyricsProvider, tracks []models.Track, useLyrics bool, extraWords []string, report func(step int)) (hits []ExplicitHit, missing []models.Track, err error) {
	var banned []string
	if useLyrics {
		if lyrics == nil {
			return nil, nil, fmt.Errorf("lyrics scan requested: %w", shared.ErrServiceUnavailable)
		}
		banned, err = lyrics.ProfanityList(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load banned words: %w", err)
		}
		for _, word := range extraWords {
			if word = strings.ToLower(strings.TrimSpace(word)); word != "" {
				banned = append(banned, word)
			}
		}
	}

	for i, track := range tracks {
		if report != nil {
			report(i + 1)
		}

		if track.Explicit {
			hits = append(hits, ExplicitHit{Track: track, Reason: ReasonMetadataFlag})
			continue
		}
		if !useLyrics {
			continue
		}

		text, lyricsErr := lyrics.Lyrics(ctx, track)
		if lyricsErr != nil {
			if errors.Is(lyricsErr, shared.ErrLyricsNotFound) || errors.Is(lyricsErr, shared.ErrInvalidInput) {
				missing = append(missing, track)
				continue
			}
			return nil, nil, lyricsErr
		}

		if words := services.BannedWordHits(text, banned); len(words) > 0 {
			hits = append(hits, ExplicitHit{
				Track:  track,
				Reason: reasonLyricsPrefix + strings.Join(words, ","),
			})
		}
	}

	return hits, missing, nil
}

// cleanURIs returns the URIs of tracks NOT flagged, preserving playlist order.
func cleanURIs(tracks []models.Track, report *ExplicitReport) []string {
	flagged := make(map[string]bool)
	for _, uri := range report.ExplicitURIs() {
		flagged[uri] = true
	}

	var uris []string
	for _, track := range tracks {
		if track.URI == "" || flagged[track.URI] {
			continue
		}
		uris = append(uris, track.URI)
	}
	return uris
}
