package main

import (
	"os"

	logging "github.com/ipfs/go-log/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/config"
)

var log = logging.Logger("tokenmint")

var loggers = []string{"tokenmint", "solana", "storage", "receipt"}

func before(cctx *cli.Context) error {
	level := "INFO"
	if IsVeryVerbose {
		level = "DEBUG"
	}
	for _, name := range loggers {
		_ = logging.SetLogLevel(name, level)
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:                 "tokenmint",
		Usage:                "create an SPL token with Metaplex metadata and mint it to the payer",
		EnableBashCompletion: true,
		Before:               before,
		Flags: []cli.Flag{
			FlagConfig,
			FlagVeryVerbose,
		},
		Commands: []*cli.Command{
			mintCmd,
			keygenCmd,
			airdropCmd,
			inspectCmd,
			receiptCmd,
		},
	}
}

func main() {
	app := newApp()
	app.Setup()

	if err := app.Run(os.Args); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// loadConfig reads --config (or TOKENMINT_CONFIG) and applies env overrides.
func loadConfig(cctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ConfigPath)
	if err != nil {
		return nil, xerrors.Errorf("load config: %w", err)
	}
	return cfg, nil
}
