package main

import (
	"encoding/json"
	"fmt"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/platform/di"
)

var inspectCmd = &cli.Command{
	Name:      "inspect",
	Usage:     "show the mint account, supply and Metaplex metadata of a token",
	ArgsUsage: "<mint>",
	Flags: []cli.Flag{
		FlagCluster,
		FlagRPCURL,
		&cli.BoolFlag{
			Name:  "offchain",
			Usage: "also fetch the off-chain metadata JSON",
			Value: true,
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
		if err := applyChainFlags(cctx, cfg); err != nil {
			return err
		}

		chain, err := di.NewChainClient(cfg)
		if err != nil {
			return err
		}

		info, err := chain.InspectMint(ctx, common.PublicKeyFromString(mint), cctx.Bool("offchain"))
		if err != nil {
			return err
		}

		b, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cctx.App.Writer, string(b))
		fmt.Fprintf(cctx.App.Writer, "Explorer: %s\n", chain.Cluster.AddressURL(mint))
		return nil
	},
}
