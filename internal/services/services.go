// package services defines interface Service for interacting with HTTP APIs
//
// Spotify Web API, LRCLIB lyrics
package services

import (
	"context"

	"github.com/avelara/sptools/internal/models"
	"golang.org/x/oauth2"
)

// Service defines the interface for a music provider that the maintenance
// tasks operate against.
type Service interface {
	// Authenticate performs OAuth or API key authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// CurrentUser retrieves the authenticated user's profile.
	CurrentUser(ctx context.Context) (*models.UserProfile, error)

	// GetPlaylist retrieves playlist metadata by ID.
	GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error)

	// PlaylistTracks retrieves the full ordered track listing of a playlist,
	// following pagination until exhausted.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error)

	// AddTracks appends track URIs to a playlist in API-sized batches.
	AddTracks(ctx context.Context, playlistID string, uris []string) error

	// RemoveTracksByURI removes every playlist entry matching the given URIs.
	RemoveTracksByURI(ctx context.Context, playlistID string, uris []string) error

	// CreatePlaylist creates a playlist owned by the authenticated user.
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error)

	// TopArtists retrieves the user's top artists for a time range.
	TopArtists(ctx context.Context, timeRange string, limit int) ([]models.TopArtist, error)

	// TopTracks retrieves the user's top tracks for a time range.
	TopTracks(ctx context.Context, timeRange string, limit int) ([]models.TopTrack, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// OAuthService extends Service for providers using the OAuth2
// authorization-code flow.
type OAuthService interface {
	Service

	// GetAuthURL returns the authorization URL the user must visit.
	GetAuthURL(state string) string

	// GetOAuthConfig exposes the OAuth2 config for the callback listener.
	GetOAuthConfig() *oauth2.Config

	// AuthenticateToken installs a previously persisted token.
	AuthenticateToken(ctx context.Context, token *oauth2.Token) error

	// SetTokenRefreshCallback registers a callback invoked whenever the
	// underlying token source produces a new token.
	SetTokenRefreshCallback(callback func(*oauth2.Token))
}
