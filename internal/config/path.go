// Package config resolves application settings from viper, .env files and
// the environment.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath expands a leading ~ and $VAR references in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return os.ExpandEnv(path)
}

// Dir returns the configuration directory, $HOME/.config/cashflow.
func Dir() string {
	return ExpandPath("~/.config/cashflow")
}

// DefaultDatabasePath is where the ledger lives unless configured.
func DefaultDatabasePath() string {
	return ExpandPath("~/.local/share/cashflow/cashflow.db")
}
