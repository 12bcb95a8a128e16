// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// pageLimit is the maximum page size the playlist tracks endpoint accepts.
	pageLimit = 100
	// mutationChunkSize is the maximum number of URIs a single add or remove
	// request accepts.
	mutationChunkSize = 100
	// topLimitMax is the maximum entry count for the top artists/tracks endpoints.
	topLimitMax = 50
	// maxRateLimitRetries bounds how many times a request is retried after 429.
	maxRateLimitRetries = 3
	// maxRetryAfter caps how long a Retry-After header is honored.
	maxRetryAfter = 30 * time.Second
)

// defaultScopes covers playlist reads, playlist writes and top-item reads.
var defaultScopes = []string{
	"playlist-read-private",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-top-read",
}

// validTimeRanges are the values accepted by the top artists/tracks endpoints.
var validTimeRanges = map[string]bool{
	"short_term":  true,
	"medium_term": true,
	"long_term":   true,
}

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"` // track, episode
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Genres []string       `json:"genres"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	ReleaseDate string          `json:"release_date"`
	TotalTracks int             `json:"total_tracks"`
	Images      []SpotifyImage  `json:"images"`
	URI         string          `json:"uri"`
}

type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Owner       Owner             `json:"owner"`
	Public      bool              `json:"public"`
	Tracks      playlistTracksRef `json:"tracks"`
	Images      []SpotifyImage    `json:"images"`
	URI         string            `json:"uri"`
}

// SpotifyPlaylistTrack represents a track within a playlist context.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	IsLocal bool          `json:"is_local"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedPlaylistTracks represents one page of a playlist's tracks.
type SpotifyPaginatedPlaylistTracks struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifyTopArtists represents the /me/top/artists response.
type SpotifyTopArtists struct {
	Items []SpotifyArtist `json:"items"`
	Total int             `json:"total"`
	Next  *string         `json:"next"`
}

// SpotifyTopTracks represents the /me/top/tracks response.
type SpotifyTopTracks struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
	Next  *string        `json:"next"`
}

// refreshableTokenSource wraps an [oauth2.TokenSource] and invokes a callback
// whenever the wrapped source produces a token different from the last one it
// saw. The callback is how refreshed tokens reach the credential store.
type refreshableTokenSource struct {
	mu       sync.Mutex
	source   oauth2.TokenSource
	last     *oauth2.Token
	callback func(*oauth2.Token)
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	if r.last == nil || r.last.AccessToken != token.AccessToken {
		r.last = token
		if r.callback != nil {
			func() {
				defer func() { _ = recover() }()
				r.callback(token)
			}()
		}
	}

	return token, nil
}

// SpotifyService implements the [OAuthService] interface for Spotify API interactions.
// Uses [oauth2] for authentication and [rate.Limiter] to pace outgoing requests.
type SpotifyService struct {
	config         *oauth2.Config
	token          *oauth2.Token
	httpClient     *http.Client
	credentials    map[string]string
	limiter        *rate.Limiter
	baseURL        string
	onTokenRefresh func(*oauth2.Token)
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("missing client_id in credentials: %w", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("missing client_secret in credentials: %w", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "https://localhost:8080/callback"
	}

	scopes := defaultScopes
	if raw, ok := credentials["scopes"]; ok && raw != "" {
		scopes = strings.Fields(raw)
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:      config,
		httpClient:  http.DefaultClient,
		credentials: credentials,
		limiter:     rate.NewLimiter(rate.Every(time.Second/10), 10),
		baseURL:     spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 config for the callback listener.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// SetTokenRefreshCallback registers a callback invoked with every new token the
// token source produces. Pass nil to clear it.
func (s *SpotifyService) SetTokenRefreshCallback(callback func(*oauth2.Token)) {
	s.onTokenRefresh = callback
}

// Authenticate performs OAuth2 authentication with Spotify. Expects either an
// "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		return s.AuthenticateToken(ctx, &oauth2.Token{AccessToken: accessToken})
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		return s.AuthenticateToken(ctx, token)
	}

	return fmt.Errorf("missing access_token or auth_code in credentials: %w", shared.ErrMissingCredentials)
}

// AuthenticateToken installs a token, typically loaded from the credential
// store, and builds an HTTP client that refreshes it transparently.
func (s *SpotifyService) AuthenticateToken(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("token has no access token: %w", shared.ErrInvalidCredentials)
	}

	s.token = token
	source := &refreshableTokenSource{
		source:   s.config.TokenSource(ctx, token),
		last:     token,
		callback: s.notifyTokenRefresh,
	}
	s.httpClient = oauth2.NewClient(ctx, source)
	return nil
}

func (s *SpotifyService) notifyTokenRefresh(token *oauth2.Token) {
	s.token = token
	if s.onTokenRefresh != nil {
		s.onTokenRefresh(token)
	}
}

// forceRefresh discards the current access token and asks the token endpoint
// for a new one using the refresh token.
func (s *SpotifyService) forceRefresh(ctx context.Context) error {
	if s.token == nil {
		return shared.ErrNotAuthenticated
	}
	if s.token.RefreshToken == "" {
		return shared.ErrNoRefreshToken
	}

	stale := &oauth2.Token{
		RefreshToken: s.token.RefreshToken,
		Expiry:       time.Now().Add(-time.Minute),
	}

	token, err := s.config.TokenSource(ctx, stale).Token()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRefreshFailed, err)
	}

	if token.RefreshToken == "" {
		token.RefreshToken = s.token.RefreshToken
	}

	s.notifyTokenRefresh(token)
	return s.AuthenticateToken(ctx, token)
}

// doRequest performs an authenticated HTTP request to the Spotify API.
//
// It waits on the rate limiter, retries once after a 401 with a forced token
// refresh, and honors Retry-After for a bounded number of 429 responses.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return fmt.Errorf("call Authenticate first: %w", shared.ErrNotAuthenticated)
	}

	refreshed := false
	rateRetries := 0

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter wait: %w", err)
		}

		status, retryAfter, err := s.send(ctx, method, endpoint, body, result)
		if err != nil {
			return err
		}

		switch {
		case status >= 200 && status < 300:
			return nil
		case status == http.StatusUnauthorized:
			if refreshed {
				return fmt.Errorf("request unauthorized after refresh: %w", shared.ErrTokenExpired)
			}
			refreshed = true
			if err := s.forceRefresh(ctx); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrTokenExpired, err)
			}
		case status == http.StatusTooManyRequests:
			if rateRetries >= maxRateLimitRetries {
				return fmt.Errorf("%s %s: %w", method, endpoint, shared.ErrRateLimited)
			}
			rateRetries++
			select {
			case <-time.After(retryAfter):
			case <-ctx.Done():
				return ctx.Err()
			}
		case status == http.StatusNotFound:
			return fmt.Errorf("%s %s: status 404: %w", method, endpoint, shared.ErrAPIRequest)
		default:
			return fmt.Errorf("%s %s: status %d: %w", method, endpoint, status, shared.ErrAPIRequest)
		}
	}
}

// send issues a single request attempt and decodes the response on success.
func (s *SpotifyService) send(ctx context.Context, method, endpoint string, body any, result any) (int, time.Duration, error) {
	apiURL := endpoint
	if !strings.HasPrefix(endpoint, "http") {
		apiURL = s.baseURL + endpoint
	}

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	var req *http.Request
	var err error
	if reader != nil {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, reader)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, nil)
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 && result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, 0, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
}

// parseRetryAfter converts a Retry-After header into a bounded wait duration.
func parseRetryAfter(header string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(header))
	if err != nil || seconds <= 0 {
		return time.Second
	}
	wait := time.Duration(seconds) * time.Second
	if wait > maxRetryAfter {
		return maxRetryAfter
	}
	return wait
}

// CurrentUser retrieves the current authenticated user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &models.UserProfile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
	}, nil
}

// GetPlaylist retrieves playlist metadata by ID.
func (s *SpotifyService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &sp); err != nil {
		if strings.Contains(err.Error(), "status 404") {
			return nil, fmt.Errorf("playlist %s: %w", playlistID, shared.ErrPlaylistNotFound)
		}
		return nil, err
	}

	return &models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       sp.Owner.ID,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}, nil
}

// PlaylistTracks retrieves the full ordered track listing of a playlist.
// Local files and episodes are skipped; positions reflect the kept entries.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d", url.PathEscape(playlistID), pageLimit)

	var tracks []models.Track
	for {
		var page SpotifyPaginatedPlaylistTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.IsLocal || item.Track == nil || item.Track.ID == "" {
				continue
			}
			if item.Track.Type != "" && item.Track.Type != "track" {
				continue
			}

			track := models.Track{
				ID:         item.Track.ID,
				URI:        item.Track.URI,
				Name:       item.Track.Name,
				Album:      item.Track.Album.Name,
				DurationMS: item.Track.DurationMS,
				Explicit:   item.Track.Explicit,
				AddedAt:    item.AddedAt,
				Position:   len(tracks),
			}
			for _, artist := range item.Track.Artists {
				track.Artists = append(track.Artists, artist.Name)
			}
			tracks = append(tracks, track)
		}

		if page.Next == nil || *page.Next == "" {
			break
		}
		endpoint = *page.Next
	}

	return tracks, nil
}

// AddTracks appends track URIs to a playlist in batches of up to 100.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for _, chunk := range chunkStrings(uris, mutationChunkSize) {
		body := map[string]any{"uris": chunk}
		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			return fmt.Errorf("failed to add tracks: %w", err)
		}
	}
	return nil
}

// RemoveTracksByURI removes every playlist entry matching the given URIs, in
// batches of up to 100.
func (s *SpotifyService) RemoveTracksByURI(ctx context.Context, playlistID string, uris []string) error {
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))

	for _, chunk := range chunkStrings(uris, mutationChunkSize) {
		entries := make([]map[string]string, 0, len(chunk))
		for _, uri := range chunk {
			entries = append(entries, map[string]string{"uri": uri})
		}
		body := map[string]any{"tracks": entries}
		if err := s.doRequest(ctx, http.MethodDelete, endpoint, body, nil); err != nil {
			return fmt.Errorf("failed to remove tracks: %w", err)
		}
	}
	return nil
}

// CreatePlaylist creates a playlist owned by the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error) {
	if name == "" {
		return nil, fmt.Errorf("playlist name is required: %w", shared.ErrInvalidInput)
	}

	user, err := s.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(user.ID))
	body := map[string]any{
		"name":        name,
		"description": description,
		"public":      public,
	}

	var sp SpotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &sp); err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	return &models.Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       sp.Owner.ID,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}, nil
}

// TopArtists retrieves the user's top artists for a time range.
func (s *SpotifyService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.TopArtist, error) {
	endpoint, err := topEndpoint("artists", timeRange, limit)
	if err != nil {
		return nil, err
	}

	var response SpotifyTopArtists
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	artists := make([]models.TopArtist, 0, len(response.Items))
	for _, item := range response.Items {
		artists = append(artists, models.TopArtist{
			ID:     item.ID,
			Name:   item.Name,
			Genres: item.Genres,
		})
	}
	return artists, nil
}

// TopTracks retrieves the user's top tracks for a time range.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.TopTrack, error) {
	endpoint, err := topEndpoint("tracks", timeRange, limit)
	if err != nil {
		return nil, err
	}

	var response SpotifyTopTracks
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.TopTrack, 0, len(response.Items))
	for _, item := range response.Items {
		track := models.TopTrack{
			ID:    item.ID,
			Name:  item.Name,
			Album: item.Album.Name,
		}
		for _, artist := range item.Artists {
			track.Artists = append(track.Artists, artist.Name)
		}
		tracks = append(tracks, track)
	}
	return tracks, nil
}

func topEndpoint(kind, timeRange string, limit int) (string, error) {
	if timeRange == "" {
		timeRange = "medium_term"
	}
	if !validTimeRanges[timeRange] {
		return "", fmt.Errorf("time range %q: %w", timeRange, shared.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > topLimitMax {
		limit = topLimitMax
	}
	return fmt.Sprintf("/me/top/%s?time_range=%s&limit=%d", kind, timeRange, limit), nil
}

// chunkStrings splits values into slices of at most size elements.
func chunkStrings(values []string, size int) [][]string {
	var chunks [][]string
	for len(values) > size {
		chunks = append(chunks, values[:size])
		values = values[size:]
	}
	if len(values) > 0 {
		chunks = append(chunks, values)
	}
	return chunks
}

// PlaylistIDFromInput extracts a playlist ID from a raw ID, a spotify: URI, or
// an open.spotify.com URL.
func PlaylistIDFromInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("playlist reference is empty: %w", shared.ErrInvalidInput)
	}

	if strings.HasPrefix(input, "spotify:playlist:") {
		id := strings.TrimPrefix(input, "spotify:playlist:")
		if id == "" {
			return "", fmt.Errorf("playlist URI has no ID: %w", shared.ErrInvalidInput)
		}
		return id, nil
	}

	if strings.Contains(input, "open.spotify.com") {
		parsed, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("failed to parse playlist URL: %w", err)
		}
		parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
		for i, part := range parts {
			if part == "playlist" && i+1 < len(parts) && parts[i+1] != "" {
				return parts[i+1], nil
			}
		}
		return "", fmt.Errorf("URL does not reference a playlist: %w", shared.ErrInvalidInput)
	}

	return input, nil
}
