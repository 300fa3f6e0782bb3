package main

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	usecase "github.com/freddyal0x01/metaplex-sol-token-minter/internal/application/usecase"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/config"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/platform/di"
)

var mintCmd = &cli.Command{
	Name:  "mint",
	Usage: "create the mint, upload image + metadata, create the metadata account and mint to the payer",
	Flags: []cli.Flag{
		FlagCluster,
		FlagRPCURL,
		FlagKeypair,
		&cli.StringFlag{Name: "name", Usage: "token name (<= 32 bytes)"},
		&cli.StringFlag{Name: "symbol", Usage: "token symbol (<= 10 bytes)"},
		&cli.StringFlag{Name: "description"},
		&cli.StringFlag{Name: "image", Usage: "path to the token image"},
		&cli.UintFlag{Name: "decimals"},
		&cli.Uint64Flag{Name: "amount", Usage: "amount in base units (before decimals)"},
		&cli.UintFlag{Name: "seller-fee", Usage: "seller fee basis points"},
		&cli.BoolFlag{Name: "immutable", Usage: "create the metadata account as immutable"},
		&cli.StringFlag{Name: "storage", Usage: "irys | gcs | s3"},
		&cli.StringFlag{Name: "receipt", Usage: "file | firestore | nop"},
		&cli.BoolFlag{Name: "skip-airdrop", Usage: "never request a faucet airdrop"},
		&cli.BoolFlag{Name: "dry-run", Usage: "validate the configuration and print the token definition without sending transactions"},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if err := applyMintFlags(cctx, cfg); err != nil {
			return err
		}

		def := di.TokenDefinition(cfg.Token).Normalize()

		if cctx.Bool("dry-run") {
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := def.Validate(); err != nil {
				return xerrors.Errorf("validate token definition: %w", err)
			}
			b, err := json.MarshalIndent(struct {
				Cluster  string `json:"cluster"`
				Storage  string `json:"storage"`
				Receipt  string `json:"receipt"`
				Token    any    `json:"token"`
				UIAmount string `json:"uiAmount"`
			}{cfg.Cluster, cfg.Storage.Driver, cfg.Receipt.Driver, def, usecase.UIAmount(def.Amount, def.Decimals)}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cctx.App.Writer, string(b))
			return nil
		}

		c, err := di.NewContainer(ctx, cfg)
		if err != nil {
			return err
		}
		defer c.Close()

		if c.PayerCreated {
			fmt.Fprintf(cctx.App.Writer, "Generated new keypair: %s\n", cfg.Payer.KeypairPath)
		}

		c.MintUsecase.SetOutput(cctx.App.Writer)
		res, err := c.MintUsecase.Run(ctx, def)
		if err != nil {
			if res != nil {
				log.Warnf("mint %s completed on-chain but post-processing failed", res.Mint)
			}
			return err
		}

		log.Infof("mint=%s tokenAccount=%s amount=%s", res.Mint, res.TokenAccount, usecase.UIAmount(res.Amount, res.Decimals))
		fmt.Fprintln(cctx.App.Writer, "Finished successfully")
		return nil
	},
}

func applyMintFlags(cctx *cli.Context, cfg *config.Config) error {
	if err := applyChainFlags(cctx, cfg); err != nil {
		return err
	}

	if cctx.IsSet("name") {
		cfg.Token.Name = cctx.String("name")
	}
	if cctx.IsSet("symbol") {
		cfg.Token.Symbol = cctx.String("symbol")
	}
	if cctx.IsSet("description") {
		cfg.Token.Description = cctx.String("description")
	}
	if cctx.IsSet("image") {
		p, err := homedir.Expand(cctx.String("image"))
		if err != nil {
			return err
		}
		cfg.Token.ImagePath = p
	}
	if cctx.IsSet("decimals") {
		d := cctx.Uint("decimals")
		if d > 255 {
			return xerrors.Errorf("decimals out of range: %d", d)
		}
		cfg.Token.Decimals = uint8(d)
	}
	if cctx.IsSet("amount") {
		cfg.Token.Amount = cctx.Uint64("amount")
	}
	if cctx.IsSet("seller-fee") {
		fee := cctx.Uint("seller-fee")
		if fee > 65535 {
			return xerrors.Errorf("seller-fee out of range: %d", fee)
		}
		cfg.Token.SellerFeeBasisPoints = uint16(fee)
	}
	if cctx.IsSet("immutable") {
		cfg.Token.IsMutable = !cctx.Bool("immutable")
	}
	if cctx.IsSet("storage") {
		cfg.Storage.Driver = cctx.String("storage")
	}
	if cctx.IsSet("receipt") {
		cfg.Receipt.Driver = cctx.String("receipt")
	}
	if cctx.IsSet("skip-airdrop") {
		cfg.Payer.SkipAirdrop = cctx.Bool("skip-airdrop")
	}
	return nil
}
