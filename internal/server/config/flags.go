package config

import (
	"flag"
	"io"
	"strings"

	"github.com/dmitrijs2005/cuivault/internal/flagx"
)

// parseFlags overlays command-line flags. Only the flags defined here are
// picked out of args, so the -c/-config flag handled by parseJSON does not
// collide.
//
//	-a              bind host
//	-p              listen port
//	-d              database DSN
//	-driver         database driver: pgx or sqlite
//	-tls-cert       TLS certificate file
//	-tls-key        TLS key file
//	-max-upload     maximum plaintext upload size, bytes
//	-origins        comma-separated allowed CORS origins
//	-cipher         aes-256-gcm or chacha20-poly1305
//	-rps            per-client request rate, 0 disables limiting
//	-burst          per-client burst
//	-single-use     reject a token presented twice
//	-trusted-proxy  take the client address from proxy headers
//	-grpc-health    gRPC health service address
//	-log-level      debug, info, warn or error
//
// Secrets are not accepted as flags; they would be visible in the process
// list.
func parseFlags(config *Config, args []string) error {
	names := []string{"a", "p", "d", "driver", "tls-cert", "tls-key", "max-upload", "origins", "cipher",
		"rps", "burst", "single-use", "trusted-proxy", "grpc-health", "log-level", "request-timeout"}

	allowed := make([]string, 0, len(names)*2)
	for _, n := range names {
		allowed = append(allowed, "-"+n, "--"+n)
	}
	filtered := flagx.FilterArgs(args, allowed)

	fs := flag.NewFlagSet("vaultd", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Host, "a", config.Host, "bind host")
	fs.IntVar(&config.Port, "p", config.Port, "listen port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver")
	fs.StringVar(&config.TLSCertFile, "tls-cert", config.TLSCertFile, "TLS certificate file")
	fs.StringVar(&config.TLSKeyFile, "tls-key", config.TLSKeyFile, "TLS key file")
	fs.Int64Var(&config.MaxUploadBytes, "max-upload", config.MaxUploadBytes, "maximum upload size in bytes")
	origins := fs.String("origins", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins")
	fs.StringVar(&config.Cipher, "cipher", config.Cipher, "cipher for new records")
	fs.Float64Var(&config.RateLimitRPS, "rps", config.RateLimitRPS, "per-client requests per second")
	fs.IntVar(&config.RateLimitBurst, "burst", config.RateLimitBurst, "per-client burst")
	fs.BoolVar(&config.SingleUseTokens, "single-use", config.SingleUseTokens, "single-use tokens")
	fs.BoolVar(&config.TrustProxyHeaders, "trusted-proxy", config.TrustProxyHeaders, "take the client address from proxy headers")
	fs.StringVar(&config.GRPCHealthAddr, "grpc-health", config.GRPCHealthAddr, "gRPC health address")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.DurationVar(&config.RequestTimeout, "request-timeout", config.RequestTimeout, "per-request deadline")

	if err := fs.Parse(filtered); err != nil {
		return err
	}

	config.AllowedOrigins = flagx.SplitList(*origins)
	return nil
}
