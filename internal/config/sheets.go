package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/Veraticus/cashflow/internal/sheets"
	"github.com/spf13/viper"
)

// tokenFileName is where `auth sheets` stores the OAuth token, under Dir().
const tokenFileName = "sheets-token.json"

func sheetsPicker(v *viper.Viper) func(key, env string) string {
	return func(key, env string) string {
		if val := v.GetString(key); val != "" {
			return val
		}
		return os.Getenv(env)
	}
}

// SheetsTokenFile returns the configured OAuth token location.
func SheetsTokenFile(v *viper.Viper) string {
	if path := v.GetString("sheets.token_file"); path != "" {
		return ExpandPath(path)
	}
	return filepath.Join(Dir(), tokenFileName)
}

// LoadSheetsConfig resolves Google Sheets settings. Viper keys (config file
// or CASHFLOW_SHEETS_* variables) win over GOOGLE_SHEETS_* variables. Without
// a configured refresh token, the one saved by `auth sheets` is used.
func LoadSheetsConfig(v *viper.Viper) (*sheets.Config, error) {
	cfg := sheets.DefaultConfig()
	pick := sheetsPicker(v)

	cfg.ServiceAccountPath = ExpandPath(pick("sheets.service_account_path", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"))
	cfg.ClientID = pick("sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	cfg.ClientSecret = pick("sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	cfg.RefreshToken = pick("sheets.refresh_token", "GOOGLE_SHEETS_REFRESH_TOKEN")
	cfg.SpreadsheetID = pick("sheets.spreadsheet_id", "GOOGLE_SHEETS_SPREADSHEET_ID")
	if name := pick("sheets.spreadsheet_name", "GOOGLE_SHEETS_SPREADSHEET_NAME"); name != "" {
		cfg.SpreadsheetName = name
	}
	if tz := v.GetString("sheets.time_zone"); tz != "" {
		cfg.TimeZone = tz
	}

	if cfg.RefreshToken == "" && cfg.ServiceAccountPath == "" && cfg.ClientID != "" {
		if token, err := sheets.LoadToken(SheetsTokenFile(v)); err == nil {
			cfg.RefreshToken = token.RefreshToken
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadSheetsOAuth resolves the OAuth client used by the browser consent flow.
func LoadSheetsOAuth(v *viper.Viper) (*sheets.OAuth2Config, error) {
	pick := sheetsPicker(v)
	cfg := &sheets.OAuth2Config{
		ClientID:     pick("sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID"),
		ClientSecret: pick("sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET"),
		TokenFile:    SheetsTokenFile(v),
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: sheets.client_id and sheets.client_secret are required", common.ErrMissingConfig)
	}
	return cfg, nil
}
