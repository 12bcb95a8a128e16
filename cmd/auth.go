package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/avelara/sptools/internal/server"
	"github.com/avelara/sptools/internal/services"
	"github.com/avelara/sptools/internal/shared"
)

// AuthLogin performs the OAuth2 authorization-code flow for Spotify.
//
// Starts a local redirect listener, opens the browser for user authorization,
// and persists the exchanged token pair to the token store.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}

	if r.config.Credentials.Spotify.ClientID == "" || r.config.Credentials.Spotify.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml or environment", shared.ErrMissingCredentials)
	}

	spotifyService, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
	if err != nil {
		return fmt.Errorf("failed to create Spotify service: %w", err)
	}
	spotifyService.SetTokenRefreshCallback(func(token *oauth2.Token) {
		if err := r.saveTokens(token); err != nil {
			r.logger.Warnf("failed to persist refreshed tokens %v", err)
		}
	})

	token, err := r.doOAuth(spotifyService, "authorization")
	if err != nil {
		return err
	}

	if err := spotifyService.AuthenticateToken(ctx, token); err != nil {
		return fmt.Errorf("failed to authenticate with new tokens: %w", err)
	}
	r.spotify = spotifyService

	if err := r.saveTokens(token); err != nil {
		return err
	}

	r.writePlainln("✓ Authorization successful")
	r.writePlain("✓ Tokens saved to %s\n\n", r.store.Path())
	r.writePlain("You can now use: sptools dupes check --playlist <url>\n")

	return nil
}

// AuthStatus reports whether stored tokens exist and still work.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}

	if !r.store.Exists() {
		r.writePlain("✗ Not authenticated (no token file at %s)\n", r.store.Path())
		r.writePlain("Run 'sptools auth login' to authenticate.\n")
		return nil
	}

	token, err := r.store.Load()
	if err != nil {
		return err
	}

	if err := r.ensureService(ctx); err != nil {
		return err
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		r.writePlain("✗ Stored tokens are no longer valid: %v\n", err)
		r.writePlain("Run 'sptools auth login' to reauthenticate.\n")
		return nil
	}

	r.writePlain("✓ Authenticated as %s (%s)\n", user.DisplayName, user.ID)
	if !token.Expiry.IsZero() {
		r.writePlain("Access token expires: %s\n", token.Expiry.Local().Format(time.RFC1123))
	}
	r.writePlain("Token file: %s\n", r.store.Path())

	return nil
}

// AuthLogout deletes the local token file.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	if !r.store.Exists() {
		r.writePlain("No stored tokens at %s\n", r.store.Path())
		return nil
	}

	if err := r.store.Clear(); err != nil {
		return err
	}

	r.writePlain("✓ Tokens removed from %s\n", r.store.Path())
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local redirect listener.
//
// Spotify requires an https redirect URI even for loopback addresses, so the
// listener serves TLS with the dev certificate when the configured redirect
// uses https, generating one on first use.
func (r *Runner) doOAuth(oauthSrv services.OAuthService, prefix string) (*oauth2.Token, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSrv.GetAuthURL(state)
	oauthHandler := server.NewOAuthHandler(oauthSrv.GetOAuthConfig(), state)
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger))
	router.Handler(oauthHandler)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	useTLS := strings.HasPrefix(oauthSrv.GetOAuthConfig().RedirectURL, "https://")
	certFile := r.config.Auth.CertFile
	keyFile := r.config.Auth.KeyFile

	if useTLS {
		if err := r.ensureDevCert(certFile, keyFile); err != nil {
			return nil, err
		}
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth listener for %s at %v", prefix, serverAddr)
		var serveErr error
		if useTLS {
			serveErr = httpServer.ListenAndServeTLS(certFile, keyFile)
		} else {
			serveErr = httpServer.ListenAndServe()
		}
		if serveErr != nil && serveErr != http.ErrServerClosed {
			serverErrors <- serveErr
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify %s...\n", prefix)
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}

// ensureDevCert generates the self-signed certificate pair when either file is missing.
func (r *Runner) ensureDevCert(certFile, keyFile string) error {
	_, certErr := os.Stat(certFile)
	_, keyErr := os.Stat(keyFile)
	if certErr == nil && keyErr == nil {
		return nil
	}

	r.logger.Info("generating self-signed certificate for redirect listener", "cert", certFile, "key", keyFile)
	if err := shared.GenerateDevCert(shared.DevCertOptions{CertFile: certFile, KeyFile: keyFile}); err != nil {
		return fmt.Errorf("failed to generate dev certificate: %w", err)
	}
	return nil
}

// loadConfigFromFlag reloads configuration from the --config flag when the
// runner was not constructed with one.
func (r *Runner) loadConfigFromFlag(cmd *cli.Command) error {
	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}
	r.configPath = configPath

	if r.config != nil {
		return nil
	}

	if _, err := os.Stat(configPath); err == nil {
		config, err := shared.LoadConfig(configPath)
		if err != nil {
			r.logger.Warnf("failed to load config, using defaults %v", err)
			config = shared.DefaultConfig()
		}
		r.config = config
	} else {
		r.config = shared.DefaultConfig()
	}

	return nil
}
