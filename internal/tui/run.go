package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// RunBudget opens the interactive budget browser on the given period and
// blocks until the user quits or ctx is cancelled.
func RunBudget(ctx context.Context, load Loader, month, year int, opts ...Option) error {
	if load == nil {
		return fmt.Errorf("loader is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	p := tea.NewProgram(newModel(load, month, year, cfg), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("budget browser failed: %w", err)
	}
	return nil
}
