package repositories

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/avelara/sptools/internal/models"
	"github.com/avelara/sptools/internal/shared"
	_ "github.com/mattn/go-sqlite3"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func newRecord(kind models.ScanKind, playlistID string, created time.Time) *models.ScanRecord {
	return &models.ScanRecord{
		Kind:         kind,
		PlaylistID:   playlistID,
		PlaylistName: "Test Playlist",
		TotalTracks:  40,
		Flagged:      3,
		Removed:      2,
		Created:      created,
	}
}

func TestScanRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("assigns ID and timestamp", func(t *testing.T) {
			repo := NewScanRepository(newTestDB(t))

			record := newRecord(models.ScanDupesClean, "p1", time.Time{})
			if err := repo.Create(record); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if record.RecordID == "" {
				t.Error("expected generated ID")
			}
			if record.Created.IsZero() {
				t.Error("expected timestamp set")
			}
		})

		t.Run("rejects invalid records", func(t *testing.T) {
			repo := NewScanRepository(newTestDB(t))

			err := repo.Create(&models.ScanRecord{Kind: models.ScanDupesCheck})
			if err == nil || !strings.Contains(err.Error(), "validation failed") {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewScanRepository(newTestDB(t))

		record := newRecord(models.ScanExplicitScan, "p1", time.Now().UTC())
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		got, err := repo.Get(record.RecordID)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got.Kind != models.ScanExplicitScan || got.PlaylistID != "p1" {
			t.Errorf("unexpected record %+v", got)
		}
		if got.TotalTracks != 40 || got.Flagged != 3 || got.Removed != 2 {
			t.Errorf("unexpected counts %+v", got)
		}

		t.Run("missing ID", func(t *testing.T) {
			if _, err := repo.Get("nope"); err == nil {
				t.Error("expected error for unknown ID")
			}
		})
	})

	t.Run("List", func(t *testing.T) {
		repo := NewScanRepository(newTestDB(t))

		base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		for i := 0; i < 3; i++ {
			record := newRecord(models.ScanDupesCheck, "p1", base.Add(time.Duration(i)*time.Hour))
			if err := repo.Create(record); err != nil {
				t.Fatalf("failed to create record: %v", err)
			}
		}

		t.Run("newest first", func(t *testing.T) {
			records, err := repo.List(10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(records) != 3 {
				t.Fatalf("expected 3 records, got %d", len(records))
			}
			for i := 1; i < len(records); i++ {
				if records[i].Created.After(records[i-1].Created) {
					t.Error("expected newest first ordering")
				}
			}
		})

		t.Run("respects limit", func(t *testing.T) {
			records, err := repo.List(2)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(records) != 2 {
				t.Errorf("expected 2 records, got %d", len(records))
			}
		})

		t.Run("default limit for non-positive input", func(t *testing.T) {
			records, err := repo.List(0)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(records) != 3 {
				t.Errorf("expected all records, got %d", len(records))
			}
		})
	})

	t.Run("ListByPlaylist", func(t *testing.T) {
		repo := NewScanRepository(newTestDB(t))

		now := time.Now().UTC()
		for _, playlistID := range []string{"p1", "p2", "p1"} {
			if err := repo.Create(newRecord(models.ScanDupesCheck, playlistID, now)); err != nil {
				t.Fatalf("failed to create record: %v", err)
			}
		}

		records, err := repo.ListByPlaylist("p1", 10)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records for p1, got %d", len(records))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewScanRepository(newTestDB(t))

		record := newRecord(models.ScanDupesClean, "p1", time.Now().UTC())
		if err := repo.Create(record); err != nil {
			t.Fatalf("failed to create record: %v", err)
		}

		if err := repo.Delete(record.RecordID); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := repo.Get(record.RecordID); err == nil {
			t.Error("expected record to be gone")
		}

		t.Run("missing ID", func(t *testing.T) {
			if err := repo.Delete(record.RecordID); err == nil {
				t.Error("expected error deleting twice")
			}
		})
	})
}

func TestCountRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewScanRepository(db)

	count, err := CountRows(db, "scans")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty table, got %d", count)
	}

	if err := repo.Create(newRecord(models.ScanDupesCheck, "p1", time.Now().UTC())); err != nil {
		t.Fatalf("failed to create record: %v", err)
	}

	count, err = CountRows(db, "scans")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}
}
