package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avelara/sptools/internal/creds"
	"github.com/avelara/sptools/internal/shared"
	tu "github.com/avelara/sptools/internal/testing"
	"golang.org/x/oauth2"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			spotify := &tu.MockService{}
			store := creds.NewStore(filepath.Join(t.TempDir(), "tokens.json"))

			runner := NewRunner(RunnerOpts{
				Config:  config,
				Logger:  logger,
				Output:  output,
				Spotify: spotify,
				Store:   store,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.spotify != spotify {
				t.Error("expected spotify to be set")
			}
			if runner.store != store {
				t.Error("expected store to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config: nil,
			})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Logger: nil,
			})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil store derives path from config", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config})

			if runner.store == nil {
				t.Fatal("expected store to be set")
			}
			if runner.store.Path() != config.Auth.TokenPath {
				t.Errorf("expected store path %q, got %q", config.Auth.TokenPath, runner.store.Path())
			}
		})

		t.Run("with spotify builds engine", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Spotify: &tu.MockService{}})

			if runner.engine == nil {
				t.Error("expected engine to be constructed")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				ConfigPath: "/test/path/config.toml",
			})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens successfully", func(t *testing.T) {
			tokenPath := filepath.Join(t.TempDir(), "tokens.json")
			store := creds.NewStore(tokenPath)

			runner := NewRunner(RunnerOpts{Store: store})

			token := &oauth2.Token{
				AccessToken:  "new_access_token",
				RefreshToken: "new_refresh_token",
			}

			if err := runner.saveTokens(token); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loaded, err := store.Load()
			if err != nil {
				t.Fatalf("failed to reload tokens: %v", err)
			}

			if loaded.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be persisted, got %s", loaded.AccessToken)
			}
			if loaded.RefreshToken != "new_refresh_token" {
				t.Errorf("expected refresh token to be persisted, got %s", loaded.RefreshToken)
			}
		})

		t.Run("handles nil token error", func(t *testing.T) {
			store := creds.NewStore(filepath.Join(t.TempDir(), "tokens.json"))
			runner := NewRunner(RunnerOpts{Store: store})

			err := runner.saveTokens(nil)
			if err == nil {
				t.Fatal("expected error with nil token")
			}
			if !strings.Contains(err.Error(), "token cannot be nil") {
				t.Errorf("expected nil token error in chain, got %v", err)
			}
		})

		t.Run("handles nil store error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			runner.store = nil

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil {
				t.Fatal("expected error with nil store")
			}
			if !strings.Contains(err.Error(), "token store is nil") {
				t.Errorf("expected nil store error, got %v", err)
			}
		})
	})

	t.Run("confirm", func(t *testing.T) {
		cases := []struct {
			name  string
			input string
			want  bool
		}{
			{"accepts y", "y\n", true},
			{"accepts yes", "yes\n", true},
			{"accepts uppercase", "Y\n", true},
			{"rejects n", "n\n", false},
			{"rejects empty line", "\n", false},
			{"rejects closed input", "", false},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				output := &bytes.Buffer{}
				runner := NewRunner(RunnerOpts{
					Output: output,
					Input:  strings.NewReader(tc.input),
				})

				got := runner.confirm("Continue?")
				if got != tc.want {
					t.Errorf("expected %v, got %v", tc.want, got)
				}
				if !strings.Contains(output.String(), "Continue? [y/N]") {
					t.Errorf("expected prompt in output, got %q", output.String())
				}
			})
		}
	})
}
