package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/cuivault/internal/client/config"
	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/pkg/vaultclient"
)

// ErrUsage is returned for an unknown command or wrong operands.
var ErrUsage = errors.New("usage")

const usage = `usage: vaultctl [flags] <command> [args]

commands:
  keygen                 print a random 256-bit key as hex
  mint-upload            print an upload token and its URL
  mint-view <id>         print a view URL for a record
  upload <file> [mime]   store a file
  view <id> [out]        fetch a record to out or stdout
  delete <id>            delete a record
  health                 check the vault`

type App struct {
	config *config.Config
	reader *bufio.Reader
	out    io.Writer
	hc     *http.Client
}

// NewApp returns an App reading answers from in and writing to out.
func NewApp(c *config.Config, in io.Reader, out io.Writer) *App {
	return &App{
		config: c,
		reader: bufio.NewReader(in),
		out:    out,
		hc:     &http.Client{Timeout: c.Timeout},
	}
}

// Run executes one command. args are the operands left after configuration
// flags were removed.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.usageError("missing command")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "keygen":
		return a.keygen(rest)
	case "mint-upload":
		return a.mintUpload(rest)
	case "mint-view":
		return a.mintView(rest)
	case "upload":
		return a.upload(ctx, rest)
	case "view":
		return a.view(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "health":
		return a.health(ctx, rest)
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		return a.usageError("unknown command " + cmd)
	}
}

func (a *App) usageError(msg string) error {
	fmt.Fprintln(a.out, usage)
	return fmt.Errorf("%w: %s", ErrUsage, msg)
}

// secret returns the configured value or prompts for it.
func (a *App) secret(configured, prompt string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	s, err := GetSecret(a.out, prompt)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty %s", common.ErrConfiguration, strings.ToLower(prompt))
	}
	return s, nil
}

func (a *App) issuer() (*vaultclient.Issuer, error) {
	secret, err := a.secret(a.config.TokenSecret, "Token secret")
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(secret)
	return vaultclient.NewIssuer(a.config.BaseURL, secret, a.config.UploadTTL, a.config.ViewTTL)
}

func (a *App) client() (*vaultclient.Client, error) {
	return vaultclient.NewClient(a.config.BaseURL, a.hc)
}
