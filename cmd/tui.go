package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/avelara/sptools/internal/shared"
	"github.com/avelara/sptools/internal/ui"
)

// TUI launches the interactive terminal shell for playlist maintenance.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.loadConfigFromFlag(cmd); err != nil {
		return err
	}
	if err := r.ensureService(ctx); err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: maintenance engine not initialized", shared.ErrServiceUnavailable)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := filepath.Join("tmp", "sptools-tui.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		if f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err == nil {
			defer f.Close()
			r.logger = shared.NewLogger(f)
		}
	}

	model := ui.NewModel(ctx, r.spotify, r.engine, ui.Options{})
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
