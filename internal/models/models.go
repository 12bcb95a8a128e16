// package models defines the data model for the playlist maintenance tool
package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error            // Create inserts a new model into the database
	Get(id string) (T, error)        // Get retrieves a model by its ID
	List(limit int) ([]T, error)     // List retrieves the most recent models, newest first
	Delete(id string) error          // Delete removes a model from the database by its ID
}

// UserProfile represents the authenticated user's account.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"`
}

// Playlist represents playlist metadata fetched from the Spotify API.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
}

// Track represents a playlist entry.
//
// Position is the zero-based index within the playlist at fetch time; it is
// what keeps order-preservation checks honest after a mutation.
type Track struct {
	ID         string   `json:"id"`
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Explicit   bool     `json:"explicit"`
	AddedAt    string   `json:"added_at"`
	Position   int      `json:"position"`
}

// ArtistLine joins the track's artists for display.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// PlaylistExport represents a playlist with its full ordered track listing.
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// TopArtist represents one entry of the user's top-artists ranking.
type TopArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

// TopTrack represents one entry of the user's top-tracks ranking.
type TopTrack struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	Album   string   `json:"album"`
}

// ScanKind enumerates recorded operation types.
type ScanKind string

const (
	ScanDupesCheck    ScanKind = "dupes_check"
	ScanDupesClean    ScanKind = "dupes_clean"
	ScanExplicitScan  ScanKind = "explicit_scan"
	ScanExplicitClean ScanKind = "explicit_clean"
)

// ScanRecord is one row of operation history: what ran, against which
// playlist, and with what counts. It is an audit log, not a cache.
type ScanRecord struct {
	RecordID     string
	Kind         ScanKind
	PlaylistID   string
	PlaylistName string
	TotalTracks  int
	Flagged      int
	Removed      int
	Created      time.Time
}

func (s ScanRecord) ID() string           { return s.RecordID }
func (s ScanRecord) CreatedAt() time.Time { return s.Created }

func (s ScanRecord) Validate() error {
	if s.RecordID == "" {
		return fmt.Errorf("scan record ID is required")
	}
	if s.Kind == "" {
		return fmt.Errorf("scan record kind is required")
	}
	if s.PlaylistID == "" {
		return fmt.Errorf("scan record playlist ID is required")
	}
	if s.TotalTracks < 0 || s.Flagged < 0 || s.Removed < 0 {
		return fmt.Errorf("scan record counts cannot be negative")
	}
	return nil
}
