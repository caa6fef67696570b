// Package sheets exports budget and balance reports to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by Config.Validate.
var (
	ErrNoCredentials       = errors.New("no authentication method configured")
	ErrAmbiguousCredential = errors.New("both OAuth2 and service account configured; use one")
)

// Config describes where reports go and how the writer authenticates.
// Exactly one of the OAuth2 triple or ServiceAccountPath must be set.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string

	// SpreadsheetID selects an existing spreadsheet; empty creates one
	// named SpreadsheetName on every export.
	SpreadsheetID   string
	SpreadsheetName string
	TimeZone        string

	// BatchSize caps the rows sent per values.update call.
	BatchSize        int
	RetryAttempts    int
	RetryDelay       time.Duration
	EnableFormatting bool
}

// DefaultConfig returns the writer defaults.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Cash Flow",
		TimeZone:         "UTC",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

func (c *Config) usesOAuth() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
}

// Validate checks credentials and batching limits.
func (c *Config) Validate() error {
	switch {
	case !c.usesOAuth() && c.ServiceAccountPath == "":
		return ErrNoCredentials
	case c.usesOAuth() && c.ServiceAccountPath != "":
		return ErrAmbiguousCredential
	case c.BatchSize <= 0:
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	case c.RetryAttempts < 0 || c.RetryDelay < 0:
		return fmt.Errorf("retry settings cannot be negative")
	}
	return nil
}
