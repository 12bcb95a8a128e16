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

// DupesCheck reports duplicate entries in a playlist without modifying it.
func (r *Runner) DupesCheck(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}
	if err := r.ensureService(ctx); err != nil {
		return err
	}

	opts := tasks.DedupeOptions{
		Strict:        cmd.Bool("strict"),
		ToleranceSecs: cmd.Int("tolerance"),
	}
	playlistRef := cmd.String("playlist")

	r.logger.Infof("checking playlist %v for duplicates", playlistRef)

	report, err := r.runDupesCheck(ctx, playlistRef, opts)
	if err != nil {
		if retried, authErr := r.handleAuthError(ctx, err); retried {
			if authErr != nil {
				return authErr
			}
			if report, err = r.runDupesCheck(ctx, playlistRef, opts); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return err
		}
	}

	r.recordScan(models.ScanDupesCheck, report.Playlist, report.TotalTracks, tasks.RemovedEntryCount(report.Groups), 0)

	if csvPath := cmd.String("csv"); csvPath != "" {
		data, err := formatter.DuplicatesToCSV(report)
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

	return r.writePlain("%s", formatter.DuplicatesToText(report))
}

// DupesClean removes duplicate entries, keeping the earliest-added copy of each song.
func (r *Runner) DupesClean(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}
	if err := r.ensureService(ctx); err != nil {
		return err
	}

	opts := tasks.DedupeOptions{
		Strict:        cmd.Bool("strict"),
		ToleranceSecs: cmd.Int("tolerance"),
	}
	playlistRef := cmd.String("playlist")

	report, err := r.runDupesCheck(ctx, playlistRef, opts)
	if err != nil {
		if retried, authErr := r.handleAuthError(ctx, err); retried {
			if authErr != nil {
				return authErr
			}
			if report, err = r.runDupesCheck(ctx, playlistRef, opts); err != nil {
				return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
			}
		} else {
			return err
		}
	}

	if len(report.Groups) == 0 {
		return r.writePlain("No duplicates found in '%s'. Nothing to do.\n", report.Playlist.Name)
	}

	removable := tasks.RemovedEntryCount(report.Groups)
	r.writePlain("%s", formatter.DuplicatesToText(report))

	if !cmd.Bool("force") {
		prompt := fmt.Sprintf("Remove %d duplicate entries from '%s'?", removable, report.Playlist.Name)
		if !r.confirm(prompt) {
			return r.writePlain("Aborted.\n")
		}
	}

	progress, wait := r.drainProgress()
	result, err := r.engine.CleanDuplicates(ctx, progress, playlistRef, opts)
	wait()
	if err != nil {
		return err
	}

	r.recordScan(models.ScanDupesClean, result.Report.Playlist, result.Report.TotalTracks, removable, result.RemovedCount)

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	r.writePlainln("✓ Removed %d duplicate entries from '%s'", result.RemovedCount, result.Report.Playlist.Name)
	return nil
}

func (r *Runner) runDupesCheck(ctx context.Context, playlistRef string, opts tasks.DedupeOptions) (*tasks.DuplicateReport, error) {
	progress, wait := r.drainProgress()
	defer wait()
	return r.engine.CheckDuplicates(ctx, progress, playlistRef, opts)
}
