package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/avelara/sptools/internal/formatter"
	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/repositories"
	"github.com/avelara/sptools/internal/shared"
)

// History lists past maintenance operations recorded in the local database.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}

	limit := cmd.Int("limit")
	playlistID := cmd.String("playlist")
	useJSON := cmd.Bool("json")

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	scans := repositories.NewScanRepository(db)

	var records []*models.ScanRecord
	if playlistID != "" {
		records, err = scans.ListByPlaylist(playlistID, limit)
	} else {
		records, err = scans.List(limit)
	}
	if err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(records, true)
	}

	return r.writePlain("%s", formatter.HistoryToText(records))
}

// recordScan stores an audit entry for a completed operation. Failures are
// logged but never abort the operation that produced the record.
func (r *Runner) recordScan(kind models.ScanKind, playlist models.Playlist, total, flagged, removed int) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		r.logger.Warnf("failed to open database for history %v", err)
		return
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		r.logger.Warnf("failed to run migrations %v", err)
		return
	}

	record := &models.ScanRecord{
		Kind:         kind,
		PlaylistID:   playlist.ID,
		PlaylistName: playlist.Name,
		TotalTracks:  total,
		Flagged:      flagged,
		Removed:      removed,
	}

	if err := repositories.NewScanRepository(db).Create(record); err != nil {
		r.logger.Warnf("failed to record operation %v", err)
		return
	}

	r.logger.Debugf("recorded %v operation %v", kind, record.RecordID)
}
