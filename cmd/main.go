package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"github.com/avelara/sptools/internal/creds"
	"github.com/avelara/sptools/internal/services"
	"github.com/avelara/sptools/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadDotenv(); err != nil {
		logger.Warnf("dotenv: %v", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	store := creds.NewStore(config.Auth.TokenPath)

	var spotifyService services.Service
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify.Map()); err == nil {
			svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
				if err := store.Save(token); err != nil {
					logger.Warnf("failed to persist refreshed tokens %v", err)
				}
			})
			spotifyService = svc
		}
	}

	lyricsService := services.NewLyricsService("", "", nil)

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Spotify:    spotifyService,
		Lyrics:     lyricsService,
		Store:      store,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "sptools",
		Usage:    "Spotify playlist maintenance toolkit",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
