package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/flagx"
)

// Environment variable names.
const (
	EnvHost            = "VAULT_HOST"
	EnvPort            = "VAULT_PORT"
	EnvTLSCertFile     = "VAULT_TLS_CERT_FILE"
	EnvTLSKeyFile      = "VAULT_TLS_KEY_FILE"
	EnvDatabaseDriver  = "VAULT_DATABASE_DRIVER"
	EnvDatabaseDSN     = "VAULT_DATABASE_DSN"
	EnvMasterKey       = "VAULT_MASTER_KEY"
	EnvCipher          = "VAULT_CIPHER"
	EnvTokenSecret     = "VAULT_TOKEN_SECRET"
	EnvAdminSecret     = "VAULT_ADMIN_SECRET"
	EnvMaxUploadBytes  = "VAULT_MAX_UPLOAD_BYTES"
	EnvAllowedOrigins  = "VAULT_ALLOWED_ORIGINS"
	EnvRequestTimeout  = "VAULT_REQUEST_TIMEOUT"
	EnvRateLimitRPS    = "VAULT_RATE_LIMIT_RPS"
	EnvRateLimitBurst  = "VAULT_RATE_LIMIT_BURST"
	EnvSingleUseTokens = "VAULT_SINGLE_USE_TOKENS"
	EnvTrustedProxy    = "VAULT_TRUSTED_PROXY"
	EnvGRPCHealthAddr  = "VAULT_GRPC_HEALTH_ADDR"
	EnvS3Bucket        = "VAULT_S3_BUCKET"
	EnvS3Region        = "VAULT_S3_REGION"
	EnvS3BaseEndpoint  = "VAULT_S3_ENDPOINT"
	EnvS3AccessKey     = "VAULT_S3_ACCESS_KEY"
	EnvS3SecretKey     = "VAULT_S3_SECRET_KEY"
	EnvLogLevel        = "VAULT_LOG_LEVEL"
)

// lookupEnv is a seam for tests.
var lookupEnv = os.LookupEnv

func parseEnv(config *Config) error {
	strs := map[string]*string{
		EnvHost:           &config.Host,
		EnvTLSCertFile:    &config.TLSCertFile,
		EnvTLSKeyFile:     &config.TLSKeyFile,
		EnvDatabaseDriver: &config.DatabaseDriver,
		EnvDatabaseDSN:    &config.DatabaseDSN,
		EnvMasterKey:      &config.MasterKey,
		EnvCipher:         &config.Cipher,
		EnvTokenSecret:    &config.TokenSecret,
		EnvAdminSecret:    &config.AdminSecret,
		EnvGRPCHealthAddr: &config.GRPCHealthAddr,
		EnvS3Bucket:       &config.S3Bucket,
		EnvS3Region:       &config.S3Region,
		EnvS3BaseEndpoint: &config.S3BaseEndpoint,
		EnvS3AccessKey:    &config.S3AccessKey,
		EnvS3SecretKey:    &config.S3SecretKey,
		EnvLogLevel:       &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookupEnv(EnvAllowedOrigins); ok && v != "" {
		config.AllowedOrigins = flagx.SplitList(v)
	}

	var err error
	parse := func(name string, apply func(string) error) {
		if err != nil {
			return
		}
		if v, ok := lookupEnv(name); ok && v != "" {
			if perr := apply(v); perr != nil {
				err = fmt.Errorf("env %s: %w", name, perr)
			}
		}
	}

	parse(EnvPort, func(v string) (e error) { config.Port, e = strconv.Atoi(v); return })
	parse(EnvMaxUploadBytes, func(v string) (e error) { config.MaxUploadBytes, e = strconv.ParseInt(v, 10, 64); return })
	parse(EnvRequestTimeout, func(v string) (e error) { config.RequestTimeout, e = time.ParseDuration(v); return })
	parse(EnvRateLimitRPS, func(v string) (e error) { config.RateLimitRPS, e = strconv.ParseFloat(v, 64); return })
	parse(EnvRateLimitBurst, func(v string) (e error) { config.RateLimitBurst, e = strconv.Atoi(v); return })
	parse(EnvSingleUseTokens, func(v string) (e error) { config.SingleUseTokens, e = strconv.ParseBool(v); return })
	parse(EnvTrustedProxy, func(v string) (e error) { config.TrustProxyHeaders, e = strconv.ParseBool(v); return })

	return err
}
