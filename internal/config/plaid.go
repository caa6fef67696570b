package config

import (
	"os"

	"github.com/Veraticus/cashflow/internal/plaid"
	"github.com/spf13/viper"
)

// LoadPlaidConfig resolves Plaid credentials from viper, falling back to
// PLAID_* variables. The environment defaults to sandbox.
func LoadPlaidConfig(v *viper.Viper) (*plaid.Config, error) {
	pick := func(key, env string) string {
		if val := v.GetString(key); val != "" {
			return val
		}
		return os.Getenv(env)
	}

	cfg := plaid.Config{
		ClientID:    pick("plaid.client_id", "PLAID_CLIENT_ID"),
		Secret:      pick("plaid.secret", "PLAID_SECRET"),
		Environment: pick("plaid.environment", "PLAID_ENV"),
		AccessToken: pick("plaid.access_token", "PLAID_ACCESS_TOKEN"),
	}
	if cfg.Environment == "" {
		cfg.Environment = "sandbox"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
