package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/flagx"
	"github.com/dmitrijs2005/cuivault/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// accept "3s" style strings or integer nanoseconds.
type JsonConfig struct {
	BaseURL     string         `json:"vault_url"`
	TokenSecret string         `json:"token_secret"`
	AdminSecret string         `json:"admin_secret"`
	UploadTTL   timex.Duration `json:"upload_ttl"`
	ViewTTL     timex.Duration `json:"view_ttl"`
	Timeout     timex.Duration `json:"timeout"`
}

// parseJson overlays cfg with the file named by -c/-config, if any. Empty
// fields keep their current value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.BaseURL != "" {
		cfg.BaseURL = jc.BaseURL
	}
	if jc.TokenSecret != "" {
		cfg.TokenSecret = jc.TokenSecret
	}
	if jc.AdminSecret != "" {
		cfg.AdminSecret = jc.AdminSecret
	}
	for _, d := range []struct {
		dst *time.Duration
		v   timex.Duration
	}{
		{&cfg.UploadTTL, jc.UploadTTL},
		{&cfg.ViewTTL, jc.ViewTTL},
		{&cfg.Timeout, jc.Timeout},
	} {
		if d.v.Duration != 0 {
			*d.dst = time.Duration(d.v.Duration)
		}
	}
	return nil
}
