// Command vaultctl is the operator CLI for the CUI vault.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"

	"github.com/dmitrijs2005/cuivault/internal/client/cli"
	"github.com/dmitrijs2005/cuivault/internal/client/config"
	"github.com/dmitrijs2005/cuivault/pkg/vaultclient"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	args := os.Args[1:]

	cfg, err := config.LoadConfig(args)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app := cli.NewApp(cfg, os.Stdin, os.Stdout)
	if err := app.Run(ctx, config.Operands(args)); err != nil {
		switch {
		case errors.Is(err, cli.ErrUsage):
			os.Exit(2)
		case vaultclient.IsNotFound(err):
			log.Printf("%v", err)
			os.Exit(3)
		}
		log.Fatalf("%v", err)
	}
}
