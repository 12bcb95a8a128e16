package tasks

import "fmt"

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	FetchTracks
	Analyze
	ScanLyrics
	RemoveTracks
	RestoreTracks
	CreatePlaylist
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case FetchTracks:
		return "fetch_tracks"
	case Analyze:
		return "analyze"
	case ScanLyrics:
		return "scan_lyrics"
	case RemoveTracks:
		return "remove_tracks"
	case RestoreTracks:
		return "restore_tracks"
	case CreatePlaylist:
		return "create_playlist"
	case Done:
		return "done"
	default:
		return ""
	}
}

func fetchPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching playlist (%s)...", name),
	}
}

func fetchTracksUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetched %d tracks", total),
	}
}

func analyzeUpdate(step, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Analyze,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Scanning track %d/%d...", step, total),
	}
}

func removeTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RemoveTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Removing %d playlist entries...", count),
	}
}

func restoreTracksUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RestoreTracks,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Re-adding %d kept tracks...", count),
	}
}

func createPlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Creating playlist %q...", name),
	}
}

func doneUpdate(message string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: message,
	}
}
