package creds

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestStore(t *testing.T) {
	t.Run("NewStore", func(t *testing.T) {
		t.Run("default path", func(t *testing.T) {
			store := NewStore("")
			if store.Path() != "spotify_tokens.json" {
				t.Errorf("expected default path spotify_tokens.json, got %s", store.Path())
			}
		})

		t.Run("custom path", func(t *testing.T) {
			store := NewStore("/tmp/tokens.json")
			if store.Path() != "/tmp/tokens.json" {
				t.Errorf("expected custom path, got %s", store.Path())
			}
		})
	})

	t.Run("Save and Load roundtrip", func(t *testing.T) {
		tmpDir := t.TempDir()
		store := NewStore(filepath.Join(tmpDir, "spotify_tokens.json"))

		expiry := time.Now().Add(time.Hour).Truncate(time.Second)
		token := &oauth2.Token{
			AccessToken:  "access_123",
			RefreshToken: "refresh_456",
			TokenType:    "Bearer",
			Expiry:       expiry,
		}

		if err := store.Save(token); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		loaded, err := store.Load()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if loaded.AccessToken != "access_123" {
			t.Errorf("expected access token access_123, got %s", loaded.AccessToken)
		}
		if loaded.RefreshToken != "refresh_456" {
			t.Errorf("expected refresh token refresh_456, got %s", loaded.RefreshToken)
		}
		if !loaded.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, loaded.Expiry)
		}
	})

	t.Run("Save rejects nil token", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "tokens.json"))
		if err := store.Save(nil); err == nil {
			t.Fatal("expected error for nil token")
		}
	})

	t.Run("Save creates parent directories", func(t *testing.T) {
		tmpDir := t.TempDir()
		path := filepath.Join(tmpDir, "nested", "dir", "tokens.json")
		store := NewStore(path)

		if err := store.Save(&oauth2.Token{AccessToken: "a"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("token file should exist: %v", err)
		}
	})

	t.Run("Save uses restrictive permissions", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "tokens.json"))
		if err := store.Save(&oauth2.Token{AccessToken: "a"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		info, err := os.Stat(store.Path())
		if err != nil {
			t.Fatalf("failed to stat token file: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}
	})

	t.Run("Load missing file", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "missing.json"))
		if _, err := store.Load(); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("Load corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		if err := os.WriteFile(path, []byte("not json"), 0600); err != nil {
			t.Fatalf("failed to write corrupt file: %v", err)
		}

		store := NewStore(path)
		if _, err := store.Load(); err == nil {
			t.Fatal("expected error for corrupt file")
		}
	})

	t.Run("Exists", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "tokens.json"))
		if store.Exists() {
			t.Error("expected Exists to be false before save")
		}

		if err := store.Save(&oauth2.Token{AccessToken: "a"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !store.Exists() {
			t.Error("expected Exists to be true after save")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "tokens.json"))
		if err := store.Save(&oauth2.Token{AccessToken: "a"}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if err := store.Clear(); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if store.Exists() {
			t.Error("expected token file to be removed")
		}

		// clearing again is a no-op
		if err := store.Clear(); err != nil {
			t.Fatalf("expected no error clearing missing file, got %v", err)
		}
	})
}
