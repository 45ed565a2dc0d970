package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/flagx"
	"github.com/dmitrijs2005/cuivault/internal/timex"
)

// JsonConfig is the on-disk layout. Durations accept "30s" style strings or
// integer nanoseconds. Zero values leave the current setting untouched.
type JsonConfig struct {
	Host              string         `json:"host"`
	Port              int            `json:"port"`
	TLSCertFile       string         `json:"tls_cert_file"`
	TLSKeyFile        string         `json:"tls_key_file"`
	DatabaseDriver    string         `json:"database_driver"`
	DatabaseDSN       string         `json:"database_dsn"`
	MaxOpenConns      int            `json:"max_open_conns"`
	MaxIdleConns      int            `json:"max_idle_conns"`
	ConnMaxLifetime   timex.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime   timex.Duration `json:"conn_max_idle_time"`
	MasterKey         string         `json:"master_key"`
	Cipher            string         `json:"cipher"`
	TokenSecret       string         `json:"token_secret"`
	AdminSecret       string         `json:"admin_secret"`
	MaxUploadBytes    int64          `json:"max_upload_bytes"`
	AllowedOrigins    []string       `json:"allowed_origins"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	ReadHeaderTimeout timex.Duration `json:"read_header_timeout"`
	ReadTimeout       timex.Duration `json:"read_timeout"`
	WriteTimeout      timex.Duration `json:"write_timeout"`
	IdleTimeout       timex.Duration `json:"idle_timeout"`
	ShutdownTimeout   timex.Duration `json:"shutdown_timeout"`
	RateLimitRPS      *float64       `json:"rate_limit_rps"`
	RateLimitBurst    int            `json:"rate_limit_burst"`
	SingleUseTokens   *bool          `json:"single_use_tokens"`
	TrustedProxy      *bool          `json:"trusted_proxy"`
	GRPCHealthAddr    string         `json:"grpc_health_addr"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	S3UsePathStyle    *bool          `json:"s3_use_path_style"`
	LogLevel          string         `json:"log_level"`
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt[T int | int64](dst *T, v T) {
	if v != 0 {
		*dst = v
	}
}

// parseJSON overlays the file named by -c/-config, if any.
func parseJSON(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.Host, c.Host)
	setInt(&config.Port, c.Port)
	setString(&config.TLSCertFile, c.TLSCertFile)
	setString(&config.TLSKeyFile, c.TLSKeyFile)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setInt(&config.MaxOpenConns, c.MaxOpenConns)
	setInt(&config.MaxIdleConns, c.MaxIdleConns)
	setString(&config.MasterKey, c.MasterKey)
	setString(&config.Cipher, c.Cipher)
	setString(&config.TokenSecret, c.TokenSecret)
	setString(&config.AdminSecret, c.AdminSecret)
	setInt(&config.MaxUploadBytes, c.MaxUploadBytes)
	if len(c.AllowedOrigins) > 0 {
		config.AllowedOrigins = c.AllowedOrigins
	}
	setInt(&config.RateLimitBurst, c.RateLimitBurst)
	if c.RateLimitRPS != nil {
		config.RateLimitRPS = *c.RateLimitRPS
	}
	if c.SingleUseTokens != nil {
		config.SingleUseTokens = *c.SingleUseTokens
	}
	if c.TrustedProxy != nil {
		config.TrustProxyHeaders = *c.TrustedProxy
	}
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	if c.S3UsePathStyle != nil {
		config.S3UsePathStyle = *c.S3UsePathStyle
	}
	setString(&config.LogLevel, c.LogLevel)

	for dst, v := range map[*time.Duration]timex.Duration{
		&config.ConnMaxLifetime:   c.ConnMaxLifetime,
		&config.ConnMaxIdleTime:   c.ConnMaxIdleTime,
		&config.RequestTimeout:    c.RequestTimeout,
		&config.ReadHeaderTimeout: c.ReadHeaderTimeout,
		&config.ReadTimeout:       c.ReadTimeout,
		&config.WriteTimeout:      c.WriteTimeout,
		&config.IdleTimeout:       c.IdleTimeout,
		&config.ShutdownTimeout:   c.ShutdownTimeout,
	} {
		if v.Duration != 0 {
			*dst = v.Duration
		}
	}

	return nil
}
