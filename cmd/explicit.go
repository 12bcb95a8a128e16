package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/avelara/sptools/internal/formatter"
	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/shared"
	"github.com/avelara/sptools/internal/tasks"
)

// ExplicitScan reports explicit tracks in a playlist without modifying it.
func (r *Runner) ExplicitScan(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}
	if err := r.ensureService(ctx); err != nil {
		return err
	}

	opts := tasks.ExplicitOptions{
		UseLyrics:  cmd.Bool("lyrics"),
		ExtraWords: cmd.StringSlice("words"),
	}
	playlistRef := cmd.String("playlist")

	r.logger.Infof("scanning playlist %v for explicit content", playlistRef)

	report, err := r.runExplicitScan(ctx, playlistRef, opts)
	if err != nil {
		if retried, authErr := r.handleAuthError(ctx, err); retried {
			if authErr != nil {
				return authErr
			}
			if report, err = r.runExplicitScan(ctx, playlistRef, opts); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return err
		}
	}

	r.recordScan(models.ScanExplicitScan, report.Playlist, report.TotalTracks, len(report.Hits), 0)

	if csvPath := cmd.String("csv"); csvPath != "" {
		data, err := formatter.ExplicitToCSV(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(csvPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write CSV file: %w", err)
		}
		r.writePlain("✓ Report written to %s\n", csvPath)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	return r.writePlain("%s", formatter.ExplicitToText(report))
}

// ExplicitClean removes explicit tracks in place or builds a clean copy of the playlist.
func (r *Runner) ExplicitClean(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}
	if err := r.ensureService(ctx); err != nil {
		return err
	}

	mode := tasks.CleanMode(cmd.String("mode"))
	if mode != tasks.CleanRemove && mode != tasks.CleanCopy {
		return fmt.Errorf("%w: --mode must be remove or copy", shared.ErrInvalidFlag)
	}

	opts := tasks.ExplicitOptions{
		UseLyrics:  cmd.Bool("lyrics"),
		ExtraWords: cmd.StringSlice("words"),
	}
	playlistRef := cmd.String("playlist")

	report, err := r.runExplicitScan(ctx, playlistRef, opts)
	if err != nil {
		if retried, authErr := r.handleAuthError(ctx, err); retried {
			if authErr != nil {
				return authErr
			}
			if report, err = r.runExplicitScan(ctx, playlistRef, opts); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return err
		}
	}

	if len(report.Hits) == 0 {
		return r.writePlain("No explicit songs found in '%s'. Nothing to do.\n", report.Playlist.Name)
	}

	r.writePlain("%s", formatter.ExplicitToText(report))

	if !cmd.Bool("force") {
		var prompt string
		if mode == tasks.CleanCopy {
			prompt = fmt.Sprintf("Create a clean copy of '%s' without %d explicit songs?", report.Playlist.Name, len(report.Hits))
		} else {
			prompt = fmt.Sprintf("Remove %d explicit songs from '%s'?", len(report.Hits), report.Playlist.Name)
		}
		if !r.confirm(prompt) {
			return r.writePlain("Aborted.\n")
		}
	}

	progress, wait := r.drainProgress()
	result, err := r.engine.CleanExplicit(ctx, progress, playlistRef, tasks.ExplicitCleanOptions{
		ExplicitOptions: opts,
		Mode:            mode,
	})
	wait()
	if err != nil {
		return err
	}

	r.recordScan(models.ScanExplicitClean, result.Report.Playlist, result.Report.TotalTracks, len(result.Report.Hits), result.RemovedCount)

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	if result.NewPlaylist != nil {
		r.writePlainln("✓ Created clean playlist '%s' with %d tracks", result.NewPlaylist.Name, result.CleanCount)
		r.writePlain("  ID: %s\n", result.NewPlaylist.ID)
	} else {
		r.writePlainln("✓ Removed %d explicit songs from '%s'", result.RemovedCount, result.Report.Playlist.Name)
	}
	return nil
}

func (r *Runner) runExplicitScan(ctx context.Context, playlistRef string, opts tasks.ExplicitOptions) (*tasks.ExplicitReport, error) {
	progress, wait := r.drainProgress()
	defer wait()
	return r.engine.ScanExplicit(ctx, progress, playlistRef, opts)
}
