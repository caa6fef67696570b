package tui

import (
	"github.com/Veraticus/cashflow/internal/model"
	"github.com/Veraticus/cashflow/internal/tui/themes"
)

// Loader produces the budget bars of a period. Month 0 is the whole year.
type Loader func(month, year int) ([]model.BudgetBar, error)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Width    int
	Height   int
	ShowHelp bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:  themes.Default,
		Width:  80,
		Height: 24,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal dimensions.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithFullHelp starts with the full key reference expanded.
func WithFullHelp() Option {
	return func(c *Config) {
		c.ShowHelp = true
	}
}
