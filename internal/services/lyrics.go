// Lyrics lookup via the LRCLIB API and profanity word list retrieval
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/shared"
)

const (
	lrclibBaseURL    = "https://lrclib.net"
	profanityListURL = "https://www.purgomalum.com/profanitylist.html"
)

// syncedTimestampRe matches the [mm:ss.xx] prefixes of synced lyric lines.
var syncedTimestampRe = regexp.MustCompile(`\[\d{1,2}:\d{2}(?:\.\d{1,3})?\]`)

// listItemRe extracts entries from the profanity list HTML.
var listItemRe = regexp.MustCompile(`<li>\s*([^<>\r\n]+?)\s*</li>`)

// wordlikeRe keeps plain word-ish list entries and drops markup artifacts.
var wordlikeRe = regexp.MustCompile(`^[a-z][a-z0-9' -]*$`)

// wordRe splits lyrics into lowercase word tokens.
var wordRe = regexp.MustCompile(`[a-z0-9']+`)

// lrclibResult is the response shape of LRCLIB's /api/get endpoint.
type lrclibResult struct {
	ID           int     `json:"id"`
	TrackName    string  `json:"trackName"`
	ArtistName   string  `json:"artistName"`
	Duration     float64 `json:"duration"`
	Instrumental bool    `json:"instrumental"`
	PlainLyrics  string  `json:"plainLyrics"`
	SyncedLyrics string  `json:"syncedLyrics"`
}

// LyricsService fetches lyrics from LRCLIB and profanity word lists from
// PurgoMalum. Both endpoints are unauthenticated.
type LyricsService struct {
	baseURL    string
	listURL    string
	httpClient *http.Client
}

// NewLyricsService creates a lyrics service. Empty arguments select the public
// endpoints and http.DefaultClient.
func NewLyricsService(baseURL, listURL string, client *http.Client) *LyricsService {
	if baseURL == "" {
		baseURL = lrclibBaseURL
	}
	if listURL == "" {
		listURL = profanityListURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &LyricsService{
		baseURL:    baseURL,
		listURL:    listURL,
		httpClient: client,
	}
}

// Lyrics retrieves lyrics for a track, keyed by name, first artist and
// duration in seconds. Returns [shared.ErrLyricsNotFound] when LRCLIB has no
// match or only an instrumental entry.
func (l *LyricsService) Lyrics(ctx context.Context, track models.Track) (string, error) {
	if len(track.Artists) == 0 {
		return "", fmt.Errorf("track %q has no artist: %w", track.Name, shared.ErrInvalidInput)
	}

	query := url.Values{}
	query.Set("track_name", track.Name)
	query.Set("artist_name", track.Artists[0])
	query.Set("duration", fmt.Sprintf("%d", track.DurationMS/1000))

	endpoint := fmt.Sprintf("%s/api/get?%s", l.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lyrics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s by %s: %w", track.Name, track.Artists[0], shared.ErrLyricsNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("lyrics lookup: status %d: %w", resp.StatusCode, shared.ErrAPIRequest)
	}

	var result lrclibResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode lyrics response: %w", err)
	}

	if result.Instrumental {
		return "", fmt.Errorf("%s is instrumental: %w", track.Name, shared.ErrLyricsNotFound)
	}

	if result.PlainLyrics != "" {
		return result.PlainLyrics, nil
	}
	if result.SyncedLyrics != "" {
		return StripSyncedTimestamps(result.SyncedLyrics), nil
	}

	return "", fmt.Errorf("%s by %s: %w", track.Name, track.Artists[0], shared.ErrLyricsNotFound)
}

// ProfanityList fetches and parses the PurgoMalum word list.
func (l *LyricsService) ProfanityList(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.listURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profanity list request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("profanity list: status %d: %w", resp.StatusCode, shared.ErrAPIRequest)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read profanity list: %w", err)
	}

	words := ParseProfanityList(string(body))
	if len(words) == 0 {
		return nil, fmt.Errorf("profanity list is empty: %w", shared.ErrAPIRequest)
	}
	return words, nil
}

// StripSyncedTimestamps removes [mm:ss.xx] markers from synced lyrics.
func StripSyncedTimestamps(lyrics string) string {
	lines := strings.Split(lyrics, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(syncedTimestampRe.ReplaceAllString(line, ""))
	}
	return strings.Join(lines, "\n")
}

// ParseProfanityList extracts lowercase word-like entries from the list HTML.
func ParseProfanityList(text string) []string {
	matches := listItemRe.FindAllStringSubmatch(html.UnescapeString(text), -1)
	seen := make(map[string]bool)
	var words []string
	for _, match := range matches {
		word := strings.ToLower(strings.TrimSpace(match[1]))
		if word == "" || !wordlikeRe.MatchString(word) || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	return words
}

// BannedWordHits returns the sorted set of word list entries that appear as
// whole tokens in the lyrics. Matching is case-insensitive.
func BannedWordHits(lyrics string, words []string) []string {
	if lyrics == "" || len(words) == 0 {
		return nil
	}

	wordSet := make(map[string]bool, len(words))
	for _, word := range words {
		wordSet[strings.ToLower(word)] = true
	}

	seen := make(map[string]bool)
	var hits []string
	for _, token := range wordRe.FindAllString(strings.ToLower(lyrics), -1) {
		if wordSet[token] && !seen[token] {
			seen[token] = true
			hits = append(hits, token)
		}
	}
	sort.Strings(hits)
	return hits
}

// ContainsProfanity reports whether any token of the lyrics matches the word list.
func ContainsProfanity(lyrics string, words []string) bool {
	return len(BannedWordHits(lyrics, words)) > 0
}
