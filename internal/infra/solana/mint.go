// internal/infra/solana/mint.go
package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/system"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"golang.org/x/xerrors"
)

// CreateMint は mint アカウントを作成し InitializeMint まで 1 tx で行います。
// mint は新規生成した keypair で、payer と一緒に署名します。
func (c *Client) CreateMint(
	ctx context.Context,
	payer types.Account,
	mintAuthority common.PublicKey,
	freezeAuthority *common.PublicKey,
	decimals uint8,
	mint types.Account,
) (string, error) {
	if c == nil || c.RPC == nil {
		return "", ErrNotConfigured
	}

	rent, err := c.RPC.GetMinimumBalanceForRentExemption(ctx, token.MintAccountSize)
	if err != nil {
		return "", xerrors.Errorf("GetMinimumBalanceForRentExemption: %w", err)
	}

	ins := buildCreateMintInstructions(payer.PublicKey, mint.PublicKey, mintAuthority, freezeAuthority, decimals, rent)

	sig, err := c.sendAndConfirm(ctx, payer.PublicKey, []types.Account{payer, mint}, ins)
	if err != nil {
		return sig, err
	}

	log.Infof("created mint=%s decimals=%d tx=%s", mint.PublicKey.ToBase58(), decimals, maskShort(sig))
	return sig, nil
}

func buildCreateMintInstructions(
	payer, mint, mintAuthority common.PublicKey,
	freezeAuthority *common.PublicKey,
	decimals uint8,
	rentLamports uint64,
) []types.Instruction {
	return []types.Instruction{
		// 1) Mint アカウント作成 (owner = Token Program)
		system.CreateAccount(system.CreateAccountParam{
			From:     payer,
			New:      mint,
			Owner:    common.TokenProgramID,
			Lamports: rentLamports,
			Space:    token.MintAccountSize,
		}),
		// 2) Mint 初期化
		token.InitializeMint(token.InitializeMintParam{
			Decimals:   decimals,
			Mint:       mint,
			MintAuth:   mintAuthority,
			FreezeAuth: freezeAuthority,
		}),
	}
}
