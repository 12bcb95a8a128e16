// package tasks implements playlist maintenance operations.
//
// The core abstraction is Engine, which orchestrates duplicate cleanup and
// explicit-content filtering against the Spotify API. Operations emit progress
// updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/services"
	"github.com/avelara/sptools/internal/shared"
)

// DedupeOptions controls duplicate detection.
type DedupeOptions struct {
	Strict        bool // keep release markers significant
	ToleranceSecs int  // duration tolerance; negative selects the default
}

// ExplicitOptions controls explicit-content scanning.
type ExplicitOptions struct {
	UseLyrics  bool     // scan lyrics for unflagged tracks
	ExtraWords []string // additional banned words for the lyrics scan
}

// CleanMode selects what to do with flagged tracks.
type CleanMode string

const (
	// CleanRemove deletes flagged tracks from the playlist in place.
	CleanRemove CleanMode = "remove"
	// CleanCopy leaves the playlist untouched and creates a clean copy.
	CleanCopy CleanMode = "copy"
)

// ExplicitCleanOptions controls the explicit clean action.
type ExplicitCleanOptions struct {
	ExplicitOptions
	Mode CleanMode
}

// DuplicateReport is the outcome of a duplicate check.
type DuplicateReport struct {
	Playlist    models.Playlist  `json:"playlist"`
	TotalTracks int              `json:"total_tracks"`
	Strict      bool             `json:"strict"`
	Tolerance   int              `json:"tolerance_secs"`
	Groups      []DuplicateGroup `json:"groups"`
}

// DedupeResult is the outcome of a duplicate clean.
type DedupeResult struct {
	Report       *DuplicateReport `json:"report"`
	KeptURIs     []string         `json:"kept_uris"`
	DeletedURIs  []string         `json:"deleted_uris"`
	RemovedCount int              `json:"removed_count"`
}

// ExplicitCleanResult is the outcome of an explicit clean.
type ExplicitCleanResult struct {
	Report       *ExplicitReport  `json:"report"`
	Mode         CleanMode        `json:"mode"`
	RemovedCount int              `json:"removed_count"`
	NewPlaylist  *models.Playlist `json:"new_playlist,omitempty"`
	CleanCount   int              `json:"clean_count"`
}

// Engine defines the playlist maintenance operations.
type Engine interface {
	// CheckDuplicates reports duplicate groups without mutating the playlist.
	CheckDuplicates(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string, opts DedupeOptions) (*DuplicateReport, error)

	// CleanDuplicates removes duplicate entries, keeping the earliest-added
	// occurrence of each recording.
	CleanDuplicates(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string, opts DedupeOptions) (*DedupeResult, error)

	// ScanExplicit reports explicit tracks without mutating the playlist.
	ScanExplicit(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string, opts ExplicitOptions) (*ExplicitReport, error)

	// CleanExplicit removes flagged tracks in place or builds a clean copy,
	// depending on the mode.
	CleanExplicit(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string, opts ExplicitCleanOptions) (*ExplicitCleanResult, error)
}

// PlaylistEngine implements Engine against the Spotify service.
type PlaylistEngine struct {
	spotify services.Service
	lyrics  LyricsProvider
}

// NewPlaylistEngine creates a PlaylistEngine. The lyrics provider may be nil
// if lyrics scanning is never requested.
func NewPlaylistEngine(spotify services.Service, lyrics LyricsProvider) *PlaylistEngine {
	return &PlaylistEngine{spotify: spotify, lyrics: lyrics}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// loadPlaylist resolves the playlist reference and fetches metadata plus the
// full track listing.
func (e *PlaylistEngine) loadPlaylist(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string) (*models.Playlist, []models.Track, error) {
	if e.spotify == nil {
		return nil, nil, fmt.Errorf("%w: Spotify service not initialized", shared.ErrServiceUnavailable)
	}

	playlistID, err := services.PlaylistIDFromInput(playlistRef)
	if err != nil {
		return nil, nil, err
	}

	e.sendProgress(progress, fetchPlaylistUpdate(playlistID))
	playlist, err := e.spotify.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, nil, err
	}

	tracks, err := e.spotify.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, nil, err
	}
	e.sendProgress(progress, fetchTracksUpdate(len(tracks)))

	return playlist, tracks, nil
}

// CheckDuplicates reports duplicate groups without mutating the playlist.
func (e *PlaylistEngine) CheckDuplicates(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string, opts DedupeOptions) (*DuplicateReport, error) {
	playlist, tracks, err := e.loadPlaylist(ctx, progress, playlistRef)
	if err != nil {
		return nil, err
	}

	if opts.ToleranceSecs < 0 {
		opts.ToleranceSecs = DefaultToleranceSecs
	}

	e.sendProgress(progress, analyzeUpdate(1, 1))
	groups := GroupDuplicates(tracks, opts.Strict, opts.ToleranceSecs)

	report := &DuplicateReport{
		Playlist:    *playlist,
		TotalTracks: len(tracks),
		Strict:      opts.Strict,
		Tolerance:   opts.ToleranceSecs,
		Groups:      groups,
	}
	e.sendProgress(progress, doneUpdate(fmt.Sprintf("Found %d duplicate groups", len(groups))))
	return report, nil
}

// CleanDuplicates removes duplicate entries, keeping the earliest-added
// occurrence of each recording.
//
// Removal deletes every URI of a duplicated key, then re-adds the keepers, so
// duplicates sharing a URI with their keeper are handled correctly. Running
// the clean twice is a no-op the second time.
func (e *PlaylistEngine) CleanDuplicates(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string, opts DedupeOptions) (*DedupeResult, error) {
	report, err := e.CheckDuplicates(ctx, progress, playlistRef, opts)
	if err != nil {
		return nil, err
	}

	result := &DedupeResult{Report: report}
	if len(report.Groups) == 0 {
		return result, nil
	}

	keepURIs, deleteURIs := ComputeKeepAndDelete(report.Groups)

	e.sendProgress(progress, removeTracksUpdate(len(deleteURIs)))
	if err := e.spotify.RemoveTracksByURI(ctx, report.Playlist.ID, deleteURIs); err != nil {
		return nil, err
	}

	e.sendProgress(progress, restoreTracksUpdate(len(keepURIs)))
	if err := e.spotify.AddTracks(ctx, report.Playlist.ID, keepURIs); err != nil {
		return nil, fmt.Errorf("removed duplicates but failed to re-add keepers: %w", err)
	}

	result.KeptURIs = keepURIs
	result.DeletedURIs = deleteURIs
	result.RemovedCount = RemovedEntryCount(report.Groups)

	e.sendProgress(progress, doneUpdate(fmt.Sprintf("Removed %d duplicate entries", result.RemovedCount)))
	return result, nil
}

// ScanExplicit reports explicit tracks without mutating the playlist.
func (e *PlaylistEngine) ScanExplicit(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string, opts ExplicitOptions) (*ExplicitReport, error) {
	playlist, tracks, err := e.loadPlaylist(ctx, progress, playlistRef)
	if err != nil {
		return nil, err
	}

	phase := Analyze
	if opts.UseLyrics {
		phase = ScanLyrics
	}

	hits, missing, err := scanExplicit(ctx, e.lyrics, tracks, opts.UseLyrics, opts.ExtraWords, func(step int) {
		update := analyzeUpdate(step, len(tracks))
		update.Phase = phase
		e.sendProgress(progress, update)
	})
	if err != nil {
		return nil, err
	}

	report := &ExplicitReport{
		Playlist:      *playlist,
		TotalTracks:   len(tracks),
		Hits:          hits,
		MissingLyrics: missing,
	}
	e.sendProgress(progress, doneUpdate(fmt.Sprintf("Flagged %d of %d tracks", len(hits), len(tracks))))
	return report, nil
}

// CleanExplicit removes flagged tracks in place or builds a clean copy.
func (e *PlaylistEngine) CleanExplicit(ctx context.Context, progress chan<- ProgressUpdate, playlistRef string, opts ExplicitCleanOptions) (*ExplicitCleanResult, error) {
	playlist, tracks, err := e.loadPlaylist(ctx, progress, playlistRef)
	if err != nil {
		return nil, err
	}

	phase := Analyze
	if opts.UseLyrics {
		phase = ScanLyrics
	}

	hits, missing, err := scanExplicit(ctx, e.lyrics, tracks, opts.UseLyrics, opts.ExtraWords, func(step int) {
		update := analyzeUpdate(step, len(tracks))
		update.Phase = phase
		e.sendProgress(progress, update)
	})
	if err != nil {
		return nil, err
	}

	report := &ExplicitReport{
		Playlist:      *playlist,
		TotalTracks:   len(tracks),
		Hits:          hits,
		MissingLyrics: missing,
	}

	result := &ExplicitCleanResult{Report: report, Mode: opts.Mode}
	if len(hits) == 0 {
		e.sendProgress(progress, doneUpdate("No explicit tracks found"))
		return result, nil
	}

	switch opts.Mode {
	case CleanRemove:
		uris := report.ExplicitURIs()
		e.sendProgress(progress, removeTracksUpdate(len(uris)))
		if err := e.spotify.RemoveTracksByURI(ctx, playlist.ID, uris); err != nil {
			return nil, err
		}
		result.RemovedCount = len(uris)
		e.sendProgress(progress, doneUpdate(fmt.Sprintf("Removed %d explicit tracks", len(uris))))

	case CleanCopy:
		name := "Clean Version"
		if playlist.Name != "" {
			name = fmt.Sprintf("Clean version of %s", playlist.Name)
		}

		e.sendProgress(progress, createPlaylistUpdate(name))
		description := fmt.Sprintf("Filtered copy of %s", playlist.ID)
		created, err := e.spotify.CreatePlaylist(ctx, name, description, false)
		if err != nil {
			return nil, err
		}

		clean := cleanURIs(tracks, report)
		if err := e.spotify.AddTracks(ctx, created.ID, clean); err != nil {
			return nil, fmt.Errorf("created %s but failed to fill it: %w", created.ID, err)
		}

		result.NewPlaylist = created
		result.CleanCount = len(clean)
		e.sendProgress(progress, doneUpdate(fmt.Sprintf("Created %s with %d clean tracks", created.Name, len(clean))))

	default:
		return nil, fmt.Errorf("clean mode %q: %w", opts.Mode, shared.ErrInvalidArgument)
	}

	return result, nil
}
