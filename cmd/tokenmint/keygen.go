package main

import (
	"fmt"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"

	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/solana"
)

// keygen は solana-keygen 互換の keypair を生成します。
// 秘密鍵ファイルは Git にコミットしないこと。
var keygenCmd = &cli.Command{
	Name:  "keygen",
	Usage: "generate a payer keypair (solana-keygen compatible JSON)",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "outfile",
			Aliases: []string{"o"},
			Value:   "~/.config/solana/id.json",
		},
		&cli.BoolFlag{
			Name:  "force",
			Usage: "overwrite an existing keypair file",
		},
		&cli.BoolFlag{
			Name:  "print-secret",
			Usage: "also print the secret key as base58 (for PRIVATE_KEY)",
		},
	},
	Action: func(cctx *cli.Context) error {
		path, err := homedir.Expand(cctx.String("outfile"))
		if err != nil {
			return err
		}

		acc := types.NewAccount()
		if err := solana.WriteKeypairFile(path, acc, cctx.Bool("force")); err != nil {
			return err
		}

		w := cctx.App.Writer
		fmt.Fprintf(w, "Public Key: %s\n", acc.PublicKey.ToBase58())
		fmt.Fprintf(w, "Keypair file: %s\n", path)
		if cctx.Bool("print-secret") {
			fmt.Fprintf(w, "Secret Key (base58): %s\n", solana.EncodeKeypairBase58(acc))
		}
		return nil
	},
}
