// package formatter renders maintenance reports to CSV, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/shared"
	"github.com/avelara/sptools/internal/tasks"
)

// DuplicatesToCSV converts a duplicate report to CSV with one row per group
// member. The group column ties members of the same group together.
func DuplicatesToCSV(report *tasks.DuplicateReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"group", "name", "artists", "album", "uri", "added_at", "duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, group := range report.Groups {
		for _, track := range group.Tracks {
			record := []string{
				strconv.Itoa(i + 1),
				track.Name,
				track.ArtistLine(),
				track.Album,
				track.URI,
				track.AddedAt,
				shared.FormatDuration(track.DurationMS),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExplicitToCSV converts an explicit report to CSV with one row per hit.
func ExplicitToCSV(report *tasks.ExplicitReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"name", "artists", "album", "uri", "reason"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, hit := range report.Hits {
		record := []string{
			hit.Track.Name,
			hit.Track.ArtistLine(),
			hit.Track.Album,
			hit.Track.URI,
			hit.Reason,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// DuplicatesToText renders a duplicate report as plain text. The keeper of
// each group is marked; the remaining members are the entries a clean pass
// would remove.
func DuplicatesToText(report *tasks.DuplicateReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s (%d tracks)\n", report.Playlist.Name, report.TotalTracks))
	mode := "relaxed"
	if report.Strict {
		mode = "strict"
	}
	buf.WriteString(fmt.Sprintf("Mode: %s, tolerance %ds\n\n", mode, report.Tolerance))

	if len(report.Groups) == 0 {
		buf.WriteString("No duplicates found.\n")
		return buf.Bytes()
	}

	buf.WriteString(fmt.Sprintf("Found %d duplicate groups:\n\n", len(report.Groups)))
	for i, group := range report.Groups {
		buf.WriteString(fmt.Sprintf("[%d] %s (%s)\n", i+1, group.Key.Title, shared.FormatDuration(group.Key.Seconds*1000)))
		for j, track := range group.Tracks {
			marker := "  "
			if j == 0 {
				marker = "* "
			}
			buf.WriteString(fmt.Sprintf("  %s%s - %s (added %s)\n", marker, track.Name, track.ArtistLine(), track.AddedAt))
		}
		buf.WriteString("\n")
	}
	buf.WriteString("* = kept entry\n")

	return buf.Bytes()
}

// ExplicitToText renders an explicit report as plain text.
func ExplicitToText(report *tasks.ExplicitReport) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s (%d tracks)\n\n", report.Playlist.Name, report.TotalTracks))

	if len(report.Hits) == 0 {
		buf.WriteString("No explicit songs found given selected mode/wordlist.\n")
	} else {
		buf.WriteString(fmt.Sprintf("Found %d potentially explicit songs:\n\n", len(report.Hits)))
		for i, hit := range report.Hits {
			buf.WriteString(fmt.Sprintf("[%d] %s - %s  (%s)\n", i+1, hit.Track.Name, hit.Track.ArtistLine(), hit.Reason))
		}
	}

	if len(report.MissingLyrics) > 0 {
		buf.WriteString(fmt.Sprintf("\nLyrics could not be found for %d songs:\n", len(report.MissingLyrics)))
		for _, track := range report.MissingLyrics {
			buf.WriteString(fmt.Sprintf("  %s - %s\n", track.Name, track.ArtistLine()))
		}
	}

	return buf.Bytes()
}

// TopArtistsToText renders a top-artists ranking as a numbered list.
func TopArtistsToText(artists []models.TopArtist, timeRange string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Top artists (%s):\n\n", timeRange))
	if len(artists) == 0 {
		buf.WriteString("No listening data available.\n")
		return buf.Bytes()
	}

	for i, artist := range artists {
		line := fmt.Sprintf("%2d. %s", i+1, artist.Name)
		if len(artist.Genres) > 0 {
			line += fmt.Sprintf(" (%s)", strings.Join(artist.Genres, ", "))
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes()
}

// TopTracksToText renders a top-tracks ranking as a numbered list.
func TopTracksToText(tracks []models.TopTrack, timeRange string) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Top tracks (%s):\n\n", timeRange))
	if len(tracks) == 0 {
		buf.WriteString("No listening data available.\n")
		return buf.Bytes()
	}

	for i, track := range tracks {
		buf.WriteString(fmt.Sprintf("%2d. %s - %s\n", i+1, strings.Join(track.Artists, ", "), track.Name))
	}

	return buf.Bytes()
}

// HistoryToText renders scan history rows as plain text, newest first.
func HistoryToText(records []*models.ScanRecord) []byte {
	var buf bytes.Buffer

	if len(records) == 0 {
		buf.WriteString("No operations recorded yet.\n")
		return buf.Bytes()
	}

	for _, record := range records {
		buf.WriteString(fmt.Sprintf("%s  %-14s %s (%d tracks, %d flagged, %d removed)\n",
			record.Created.Format("2006-01-02 15:04"),
			record.Kind,
			record.PlaylistName,
			record.TotalTracks,
			record.Flagged,
			record.Removed,
		))
	}

	return buf.Bytes()
}

// ReportJSON generates an indented JSON representation of any report type.
func ReportJSON(report any) ([]byte, error) {
	return shared.MarshalJSON(report, true)
}
