package config

import (
	"flag"
	"io"
	"strings"

	"github.com/dmitrijs2005/cuivault/internal/flagx"
)

var knownFlags = []string{"-u", "-upload-ttl", "-view-ttl", "-timeout"}

// parseFlags applies the flags it knows about from args. Other arguments,
// such as the command name and its operands, are left to the caller.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("vaultctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.BaseURL, "u", cfg.BaseURL, "vault base URL")
	fs.DurationVar(&cfg.UploadTTL, "upload-ttl", cfg.UploadTTL, "upload token lifetime")
	fs.DurationVar(&cfg.ViewTTL, "view-ttl", cfg.ViewTTL, "view token lifetime")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP client timeout")

	return fs.Parse(flagx.FilterArgs(args, knownFlags))
}

// Operands returns args with every configuration flag and its value removed.
func Operands(args []string) []string {
	skip := make(map[string]struct{})
	for _, f := range append(knownFlags, "-c", "-config", "--config") {
		skip[f] = struct{}{}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		if _, ok := skip[a]; ok {
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++
			}
			continue
		}
		if name, _, found := strings.Cut(a, "="); found && strings.HasPrefix(a, "-") {
			if _, ok := skip[name]; ok {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}
