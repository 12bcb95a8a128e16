package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/shared"
)

// ScanRepository persists [models.ScanRecord] audit rows.
type ScanRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.ScanRecord] = (*ScanRepository)(nil)

// NewScanRepository creates a new [ScanRepository] with the given database connection
func NewScanRepository(db *sql.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// Create inserts a new scan record with a generated ID and timestamp.
func (r *ScanRepository) Create(record *models.ScanRecord) error {
	record.RecordID = shared.GenerateID()
	if record.Created.IsZero() {
		record.Created = time.Now().UTC()
	}

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO scans (id, kind, playlist_id, playlist_name, total_tracks, flagged, removed, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.RecordID, string(record.Kind), record.PlaylistID, record.PlaylistName,
		record.TotalTracks, record.Flagged, record.Removed, record.Created,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scan record: %w", err)
	}

	return nil
}

// Get retrieves a scan record by ID.
func (r *ScanRepository) Get(id string) (*models.ScanRecord, error) {
	query := `
		SELECT id, kind, playlist_id, playlist_name, total_tracks, flagged, removed, created_at
		FROM scans
		WHERE id = ?
	`

	record, err := scanRow(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("scan record not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scan record: %w", err)
	}

	return record, nil
}

// List retrieves the most recent scan records, newest first. A non-positive
// limit returns up to 50 rows.
func (r *ScanRepository) List(limit int) ([]*models.ScanRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, kind, playlist_id, playlist_name, total_tracks, flagged, removed, created_at
		FROM scans
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan records: %w", err)
	}
	defer rows.Close()

	var records []*models.ScanRecord
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan records: %w", err)
	}

	return records, nil
}

// ListByPlaylist retrieves records for one playlist, newest first.
func (r *ScanRepository) ListByPlaylist(playlistID string, limit int) ([]*models.ScanRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, kind, playlist_id, playlist_name, total_tracks, flagged, removed, created_at
		FROM scans
		WHERE playlist_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, playlistID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan records: %w", err)
	}
	defer rows.Close()

	var records []*models.ScanRecord
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate scan records: %w", err)
	}

	return records, nil
}

// Delete removes a scan record by ID.
func (r *ScanRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM scans WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete scan record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("scan record not found: %s", id)
	}

	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRow(row rowScanner) (*models.ScanRecord, error) {
	var (
		record models.ScanRecord
		kind   string
	)

	err := row.Scan(
		&record.RecordID, &kind, &record.PlaylistID, &record.PlaylistName,
		&record.TotalTracks, &record.Flagged, &record.Removed, &record.Created,
	)
	if err != nil {
		return nil, err
	}

	record.Kind = models.ScanKind(kind)
	return &record, nil
}
