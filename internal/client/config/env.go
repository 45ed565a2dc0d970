package config

import "os"

const (
	EnvBaseURL     = "VAULT_URL"
	EnvTokenSecret = "VAULT_TOKEN_SECRET"
	EnvAdminSecret = "VAULT_ADMIN_SECRET"
)

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

func parseEnv(cfg *Config) {
	for name, dst := range map[string]*string{
		EnvBaseURL:     &cfg.BaseURL,
		EnvTokenSecret: &cfg.TokenSecret,
		EnvAdminSecret: &cfg.AdminSecret,
	} {
		if v, ok := lookupEnv(name); ok && v != "" {
			*dst = v
		}
	}
}
