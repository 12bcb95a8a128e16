package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/avelara/sptools/internal/formatter"
	"github.com/avelara/sptools/internal/shared"
)

// Top lists the user's most played artists or tracks for a time range.
func (r *Runner) Top(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}
	if err := r.ensureService(ctx); err != nil {
		return err
	}

	kind := cmd.String("kind")
	timeRange := cmd.String("range")
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")

	switch kind {
	case "artists":
		artists, err := r.spotify.TopArtists(ctx, timeRange, limit)
		if err != nil {
			if retried, authErr := r.handleAuthError(ctx, err); retried {
				if authErr != nil {
					return authErr
				}
				if artists, err = r.spotify.TopArtists(ctx, timeRange, limit); err != nil {
					return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
				}
			} else {
				return err
			}
		}
		if useJSON {
			return r.writeJSON(artists, true)
		}
		return r.writePlain("%s", formatter.TopArtistsToText(artists, timeRange))

	case "tracks":
		tracks, err := r.spotify.TopTracks(ctx, timeRange, limit)
		if err != nil {
			if retried, authErr := r.handleAuthError(ctx, err); retried {
				if authErr != nil {
					return authErr
				}
				if tracks, err = r.spotify.TopTracks(ctx, timeRange, limit); err != nil {
					return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
				}
			} else {
				return err
			}
		}
		if useJSON {
			return r.writeJSON(tracks, true)
		}
		return r.writePlain("%s", formatter.TopTracksToText(tracks, timeRange))

	default:
		return fmt.Errorf("%w: --kind must be artists or tracks", shared.ErrInvalidFlag)
	}
}
