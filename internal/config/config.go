package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/Veraticus/cashflow/internal/common"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CASHFLOW_DATABASE_PATH.
const EnvPrefix = "CASHFLOW"

// Config holds the settings shared by every command.
type Config struct {
	Database  string
	LogLevel  string
	LogFormat string
}

// SetDefaults registers defaults and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ReadFile loads cfgFile, or config.yaml from the config directory. A
// missing default file is not an error.
func ReadFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(Dir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return nil
}

// LoadEnvFiles loads .env files into the process environment without
// overriding variables already set. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env", filepath.Join(Dir(), ".env")}
	}
	for _, p := range paths {
		err := godotenv.Load(ExpandPath(p))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the shared settings from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Database:  ExpandPath(v.GetString("database.path")),
		LogLevel:  v.GetString("logging.level"),
		LogFormat: v.GetString("logging.format"),
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("%w: database path is empty", common.ErrMissingConfig)
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return nil, fmt.Errorf("%w: logging.format must be console or json, got %q", common.ErrInvalidConfig, cfg.LogFormat)
	}
	return cfg, nil
}
