package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/avelara/sptools/internal/creds"
	"github.com/avelara/sptools/internal/services"
	"github.com/avelara/sptools/internal/shared"
	"github.com/avelara/sptools/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	spotify    services.Service
	lyrics     tasks.LyricsProvider
	engine     tasks.Engine
	store      *creds.Store
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Spotify    services.Service
	Lyrics     tasks.LyricsProvider
	Engine     tasks.Engine
	Store      *creds.Store
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Store == nil {
		opts.Store = creds.NewStore(opts.Config.Auth.TokenPath)
	}
	if opts.Engine == nil && opts.Spotify != nil {
		opts.Engine = tasks.NewPlaylistEngine(opts.Spotify, opts.Lyrics)
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		spotify:    opts.Spotify,
		lyrics:     opts.Lyrics,
		engine:     opts.Engine,
		store:      opts.Store,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, dupesCommand, explicitCommand, topCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// ensureService authenticates the Spotify client with the persisted token,
// constructing it from config credentials when not injected.
func (r *Runner) ensureService(ctx context.Context) error {
	if r.spotify == nil {
		svc, err := services.NewSpotifyService(r.config.Credentials.Spotify.Map())
		if err != nil {
			return fmt.Errorf("failed to create Spotify service: %w", err)
		}
		svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
			if err := r.saveTokens(token); err != nil {
				r.logger.Warnf("failed to persist refreshed tokens %v", err)
			}
		})
		r.spotify = svc
	}

	if r.engine == nil {
		r.engine = tasks.NewPlaylistEngine(r.spotify, r.lyrics)
	}

	oauthSvc, ok := r.spotify.(services.OAuthService)
	if !ok {
		return nil
	}

	token, err := r.store.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: run 'sptools auth login' first", shared.ErrNotAuthenticated)
		}
		return err
	}

	return oauthSvc.AuthenticateToken(ctx, token)
}

// saveTokens persists the token pair to the local token store.
func (r *Runner) saveTokens(token *oauth2.Token) error {
	if r.store == nil {
		return fmt.Errorf("token store is nil")
	}
	if err := r.store.Save(token); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}
	r.logger.Debugf("tokens saved to %v", r.store.Path())
	return nil
}

// handleAuthError triggers a one-shot reauthorization when err is a token
// expiry. Returns true when the caller should retry the operation.
func (r *Runner) handleAuthError(ctx context.Context, err error) (bool, error) {
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, shared.ErrTokenExpired) {
		return false, err
	}

	r.writePlainln("⚠ Authentication token expired. Starting reauthorization...")

	oauthSvc, ok := r.spotify.(services.OAuthService)
	if !ok {
		return true, fmt.Errorf("spotify service does not support reauthorization")
	}

	token, reauthErr := r.doOAuth(oauthSvc, "reauthorization")
	if reauthErr != nil {
		return true, fmt.Errorf("reauthorization failed: %w", reauthErr)
	}

	if authErr := oauthSvc.AuthenticateToken(ctx, token); authErr != nil {
		return true, fmt.Errorf("failed to authenticate with new tokens: %w", authErr)
	}

	if saveErr := r.saveTokens(token); saveErr != nil {
		r.logger.Warnf("failed to persist tokens %v", saveErr)
	}

	r.writePlainln("✓ Successfully reauthenticated. Retrying operation...")
	return true, nil
}

// confirm prompts for a yes/no answer on the runner's input stream.
func (r *Runner) confirm(prompt string) bool {
	r.writePlain("%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(r.input)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// drainProgress consumes engine progress updates in the background, logging
// each step. The returned func closes the channel and waits for the drain.
func (r *Runner) drainProgress() (chan tasks.ProgressUpdate, func()) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		for update := range progress {
			if update.Total > 0 {
				r.logger.Debugf("%s (%d/%d) %s", update.Phase, update.Step, update.Total, update.Message)
			} else {
				r.logger.Debugf("%s %s", update.Phase, update.Message)
			}
		}
		close(done)
	}()

	return progress, func() {
		close(progress)
		<-done
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
