// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/avelara/sptools/internal/models"
)

// MockService is a configurable test double for services.Service.
// Unset function fields return zero values.
type MockService struct {
	AuthenticateFunc   func(ctx context.Context, credentials map[string]string) error
	CurrentUserFunc    func(ctx context.Context) (*models.UserProfile, error)
	GetPlaylistFunc    func(ctx context.Context, playlistID string) (*models.Playlist, error)
	PlaylistTracksFunc func(ctx context.Context, playlistID string) ([]models.Track, error)
	AddTracksFunc      func(ctx context.Context, playlistID string, uris []string) error
	RemoveTracksFunc   func(ctx context.Context, playlistID string, uris []string) error
	CreatePlaylistFunc func(ctx context.Context, name, description string, public bool) (*models.Playlist, error)
	TopArtistsFunc     func(ctx context.Context, timeRange string, limit int) ([]models.TopArtist, error)
	TopTracksFunc      func(ctx context.Context, timeRange string, limit int) ([]models.TopTrack, error)
}

func (m *MockService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, credentials)
	}
	return nil
}

func (m *MockService) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return &models.UserProfile{ID: "mock_user"}, nil
}

func (m *MockService) GetPlaylist(ctx context.Context, playlistID string) (*models.Playlist, error) {
	if m.GetPlaylistFunc != nil {
		return m.GetPlaylistFunc(ctx, playlistID)
	}
	return &models.Playlist{ID: playlistID, Name: "Mock Playlist"}, nil
}

func (m *MockService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.Track, error) {
	if m.PlaylistTracksFunc != nil {
		return m.PlaylistTracksFunc(ctx, playlistID)
	}
	return nil, nil
}

func (m *MockService) AddTracks(ctx context.Context, playlistID string, uris []string) error {
	if m.AddTracksFunc != nil {
		return m.AddTracksFunc(ctx, playlistID, uris)
	}
	return nil
}

func (m *MockService) RemoveTracksByURI(ctx context.Context, playlistID string, uris []string) error {
	if m.RemoveTracksFunc != nil {
		return m.RemoveTracksFunc(ctx, playlistID, uris)
	}
	return nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*models.Playlist, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, name, description, public)
	}
	return &models.Playlist{ID: "mock_created", Name: name, Description: description, Public: public}, nil
}

func (m *MockService) TopArtists(ctx context.Context, timeRange string, limit int) ([]models.TopArtist, error) {
	if m.TopArtistsFunc != nil {
		return m.TopArtistsFunc(ctx, timeRange, limit)
	}
	return nil, nil
}

func (m *MockService) TopTracks(ctx context.Context, timeRange string, limit int) ([]models.TopTrack, error) {
	if m.TopTracksFunc != nil {
		return m.TopTracksFunc(ctx, timeRange, limit)
	}
	return nil, nil
}

func (m *MockService) Name() string { return "mock" }

// MockLyrics is a test double for the lyrics provider.
type MockLyrics struct {
	LyricsFunc        func(ctx context.Context, track models.Track) (string, error)
	ProfanityListFunc func(ctx context.Context) ([]string, error)
}

func (m *MockLyrics) Lyrics(ctx context.Context, track models.Track) (string, error) {
	if m.LyricsFunc != nil {
		return m.LyricsFunc(ctx, track)
	}
	return "", nil
}

func (m *MockLyrics) ProfanityList(ctx context.Context) ([]string, error) {
	if m.ProfanityListFunc != nil {
		return m.ProfanityListFunc(ctx)
	}
	return []string{"badword"}, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
