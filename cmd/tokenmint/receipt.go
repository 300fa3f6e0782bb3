package main

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/solana"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/platform/di"
)

var receiptCmd = &cli.Command{
	Name:  "receipt",
	Usage: "read receipts saved by the mint command",
	Subcommands: []*cli.Command{
		receiptShowCmd,
	},
}

var receiptShowCmd = &cli.Command{
	Name:      "show",
	Usage:     "print the receipt of a mint from the configured receipt driver",
	ArgsUsage: "<mint>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "driver",
			Usage: "receipt driver to read from (file / firestore)",
		},
		&cli.StringFlag{
			Name:  "dir",
			Usage: "receipt directory for the file driver",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		if cctx.NArg() != 1 {
			return xerrors.New("expected exactly one argument: <mint>")
		}
		mint := cctx.Args().First()
		if !tokendom.IsValidBase58Pubkey(mint) {
			return xerrors.Errorf("%w: %q", tokendom.ErrInvalidMintAddress, mint)
		}

		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if cctx.IsSet("driver") {
			cfg.Receipt.Driver = cctx.String("driver")
		}
		if cctx.IsSet("dir") {
			dir, err := homedir.Expand(cctx.String("dir"))
			if err != nil {
				return xerrors.Errorf("expand receipt dir: %w", err)
			}
			cfg.Receipt.Dir = dir
		}

		store, closeFn, err := di.OpenReceiptStore(ctx, cfg.Receipt)
		if err != nil {
			return err
		}
		if closeFn != nil {
			defer func() {
				if err := closeFn(); err != nil {
					log.Warnf("close receipt store: %v", err)
				}
			}()
		}

		r, err := store.Get(ctx, mint)
		if err != nil {
			return err
		}

		b, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		w := cctx.App.Writer
		fmt.Fprintln(w, string(b))

		// custom クラスタの receipt は rpc_url が無いとリンクを作れない
		if cluster, err := solana.NewCluster(r.Cluster, cfg.RPCURL); err == nil {
			fmt.Fprintf(w, "Mint: %s\n", cluster.AddressURL(r.Mint))
			fmt.Fprintf(w, "Mint to: %s\n", cluster.TxURL(r.MintToSignature))
		}
		return nil
	},
}
