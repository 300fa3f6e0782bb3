package main

import (
	"fmt"
	"math"
	"math/big"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"golang.org/x/xerrors"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/solana"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/platform/di"
)

var airdropCmd = &cli.Command{
	Name:      "airdrop",
	Usage:     "request SOL from the cluster faucet (not available on mainnet-beta)",
	ArgsUsage: "[address]",
	Flags: []cli.Flag{
		FlagCluster,
		FlagRPCURL,
		FlagKeypair,
		&cli.StringFlag{
			Name:  "sol",
			Usage: "amount of SOL to request",
			Value: "1",
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := cctx.Context

		cfg, err := loadConfig(cctx)
		if err != nil {
			return err
		}
		if err := applyChainFlags(cctx, cfg); err != nil {
			return err
		}

		lamports, err := solToLamports(cctx.String("sol"))
		if err != nil {
			return err
		}

		chain, err := di.NewChainClient(cfg)
		if err != nil {
			return err
		}

		var to common.PublicKey
		if addr := cctx.Args().First(); addr != "" {
			if !tokendom.IsValidBase58Pubkey(addr) {
				return xerrors.Errorf("invalid address %q", addr)
			}
			to = common.PublicKeyFromString(addr)
		} else {
			payer, _, err := di.ResolvePayer(ctx, cfg, false)
			if err != nil {
				return err
			}
			to = payer.PublicKey
		}

		sig, err := chain.Airdrop(ctx, to, lamports)
		if err != nil {
			return err
		}
		bal, err := chain.Balance(ctx, to)
		if err != nil {
			return err
		}

		w := cctx.App.Writer
		fmt.Fprintf(w, "Transaction: %s\n", chain.Cluster.TxURL(sig))
		fmt.Fprintf(w, "Balance: %s SOL\n", lamportsToSOL(bal))
		return nil
	},
}

func solToLamports(s string) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, xerrors.Errorf("invalid SOL amount %q: %w", s, err)
	}
	lamports := d.Mul(decimal.NewFromInt(int64(solana.LamportsPerSOL)))
	if !lamports.IsPositive() || !lamports.Equal(lamports.Truncate(0)) {
		return 0, xerrors.Errorf("invalid SOL amount %q: must be > 0 with at most 9 decimals", s)
	}
	n := lamports.BigInt()
	if !n.IsUint64() {
		return 0, xerrors.Errorf("invalid SOL amount %q: exceeds %s SOL", s, lamportsToSOL(math.MaxUint64))
	}
	return n.Uint64(), nil
}

func lamportsToSOL(lamports uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -9).String()
}
