package main

import (
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"

	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/config"
)

var ConfigPath string
var FlagConfig = &cli.StringFlag{
	Name:        "config",
	Aliases:     []string{"c"},
	Usage:       "path to a TOML config file",
	EnvVars:     []string{"TOKENMINT_CONFIG"},
	Destination: &ConfigPath,
}

// IsVeryVerbose is a global var signalling if the CLI is running in very
// verbose mode or not (default: false).
var IsVeryVerbose bool

// FlagVeryVerbose enables debug logging for every subsystem.
var FlagVeryVerbose = &cli.BoolFlag{
	Name:        "vv",
	Usage:       "enables very verbose mode, useful for debugging the CLI",
	Destination: &IsVeryVerbose,
}

var FlagCluster = &cli.StringFlag{
	Name:  "cluster",
	Usage: "devnet | testnet | mainnet-beta | localnet | custom",
}

var FlagRPCURL = &cli.StringFlag{
	Name:  "rpc-url",
	Usage: "override the RPC endpoint of the cluster",
}

var FlagKeypair = &cli.StringFlag{
	Name:  "keypair",
	Usage: "payer keypair file (solana-keygen JSON)",
}

// applyChainFlags は共通のクラスタ系フラグを cfg に反映します。
func applyChainFlags(cctx *cli.Context, cfg *config.Config) error {
	if cctx.IsSet(FlagCluster.Name) {
		cfg.Cluster = cctx.String(FlagCluster.Name)
	}
	if cctx.IsSet(FlagRPCURL.Name) {
		cfg.RPCURL = cctx.String(FlagRPCURL.Name)
	}
	if cctx.IsSet(FlagKeypair.Name) {
		p, err := homedir.Expand(cctx.String(FlagKeypair.Name))
		if err != nil {
			return err
		}
		cfg.Payer.KeypairPath = p
	}
	return nil
}
