// Package services defines the [Service] interface for the music provider and implements it for Spotify, plus a lyrics lookup client.
//
// # Service Interface
//
// Playlist maintenance tasks depend on the interface rather than the Spotify client directly, so tests can substitute doubles.
//
// # Spotify Implementation
//
// [SpotifyService] uses OAuth2 for authentication with automatic token refresh.
//
// Every outgoing request passes through a [rate.Limiter]. A 401 response
// triggers one forced refresh followed by a single retry; a second 401 surfaces
// as [shared.ErrTokenExpired]. 429 responses are retried a bounded number of
// times, honoring the Retry-After header.
//
// # OAuth Service Extension
//
// The [OAuthService] interface extends Service for OAuth providers.
//
// [SpotifyService] implements this for the authorization-code flow driven by
// the CLI: the auth command opens the browser, a local HTTPS listener catches
// the redirect, and the refreshed tokens flow back to the credential store
// through SetTokenRefreshCallback.
//
// # Lyrics Implementation
//
// [LyricsService] fetches lyrics from LRCLIB and the PurgoMalum profanity word
// list. Both endpoints are unauthenticated, so the client is a plain HTTP
// wrapper with injectable base URLs for testing.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrNotAuthenticated] : Authenticate() not called
//   - [shared.ErrTokenExpired] : OAuth token expired, reauthorization needed
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrRateLimited] : 429 retries exhausted
//   - [shared.ErrPlaylistNotFound] : Playlist ID not found
//   - [shared.ErrLyricsNotFound] : LRCLIB has no usable lyrics
package services
