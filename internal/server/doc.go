// Package server provides the local HTTPS listener that completes the OAuth login flow.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// OAuthHandler implements the OAuth2 authorization code callback flow.
//
// The handler validates the state parameter (CSRF protection), exchanges the authorization code for tokens,
// and sends the result through a channel.
//
// It only processes one callback to prevent replay attacks.
//
// # Usage
//
// When the user runs the auth login command, a temporary server starts on the
// configured host and port, serves TLS with the locally generated development
// certificate, handles the callback, and shuts down after receiving the OAuth
// token. Spotify requires an HTTPS redirect URI for loopback addresses, which
// is why the listener carries a certificate at all.
package server
