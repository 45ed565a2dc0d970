package config

import "time"

// Config holds runtime settings for vaultctl.
type Config struct {
	BaseURL     string
	TokenSecret string
	AdminSecret string
	UploadTTL   time.Duration
	ViewTTL     time.Duration
	Timeout     time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "http://127.0.0.1:8080"
	c.UploadTTL = 5 * time.Minute
	c.ViewTTL = 2 * time.Minute
	c.Timeout = time.Minute
}

// LoadConfig builds a Config from defaults, then JSON, then the environment,
// then flags found in args (without the program name).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
