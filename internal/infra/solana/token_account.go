// internal/infra/solana/token_account.go
package solana

import (
	"context"
	"errors"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/associated_token_account"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/blocto/solana-go-sdk/types"
	"golang.org/x/xerrors"

	usecase "github.com/freddyal0x01/metaplex-sol-token-minter/internal/application/usecase"
)

var (
	ErrTokenAccountNotFound     = xerrors.New("token_account: account not found")
	ErrTokenInvalidAccountOwner = xerrors.New("token_account: account not owned by token program")
	ErrTokenInvalidMint         = xerrors.New("token_account: mint mismatch")
	ErrTokenInvalidOwner        = xerrors.New("token_account: owner mismatch")
)

// GetOrCreateAssociatedTokenAccount は owner の ATA を返します。
// 存在しなければ payer 負担で作成し Created=true を返します。
func (c *Client) GetOrCreateAssociatedTokenAccount(
	ctx context.Context,
	payer types.Account,
	mint, owner common.PublicKey,
) (usecase.TokenAccountResult, error) {
	if c == nil || c.RPC == nil {
		return usecase.TokenAccountResult{}, ErrNotConfigured
	}

	ata, _, err := common.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return usecase.TokenAccountResult{}, xerrors.Errorf("FindAssociatedTokenAddress: %w", err)
	}

	err = c.verifyTokenAccount(ctx, ata, mint, owner)
	if err == nil {
		log.Debugf("ATA exists owner=%s mint=%s ata=%s", maskShort(owner.ToBase58()), maskShort(mint.ToBase58()), maskShort(ata.ToBase58()))
		return usecase.TokenAccountResult{Address: ata}, nil
	}
	if !errors.Is(err, ErrTokenAccountNotFound) {
		return usecase.TokenAccountResult{}, err
	}

	ix := buildCreateAssociatedTokenAccountInstruction(payer.PublicKey, owner, mint, ata)
	sig, sendErr := c.sendAndConfirm(ctx, payer.PublicKey, []types.Account{payer}, []types.Instruction{ix})
	if sendErr != nil {
		// 同時に別の tx が作成した可能性があるので、もう一度確認する
		if verr := c.verifyTokenAccount(ctx, ata, mint, owner); verr == nil {
			log.Warnf("ATA create failed but account now exists ata=%s err=%v", maskShort(ata.ToBase58()), sendErr)
			return usecase.TokenAccountResult{Address: ata}, nil
		}
		return usecase.TokenAccountResult{}, xerrors.Errorf("create ATA: %w", sendErr)
	}

	log.Infof("created ATA owner=%s mint=%s ata=%s tx=%s",
		maskShort(owner.ToBase58()),
		maskShort(mint.ToBase58()),
		ata.ToBase58(),
		maskShort(sig),
	)
	return usecase.TokenAccountResult{Address: ata, Created: true, Signature: sig}, nil
}

func (c *Client) verifyTokenAccount(ctx context.Context, ata, mint, owner common.PublicKey) error {
	info, err := c.RPC.GetAccountInfo(ctx, ata.ToBase58())
	if err != nil {
		if isAccountNotFound(err) {
			return ErrTokenAccountNotFound
		}
		return xerrors.Errorf("GetAccountInfo: %w", err)
	}
	return checkTokenAccount(info, mint, owner)
}

// checkTokenAccount は取得済みのアカウントが mint / owner の token account か確認します。
func checkTokenAccount(info client.AccountInfo, mint, owner common.PublicKey) error {
	if !accountExists(info) {
		return ErrTokenAccountNotFound
	}
	if info.Owner != common.TokenProgramID {
		return xerrors.Errorf("%w: owner program=%s", ErrTokenInvalidAccountOwner, info.Owner.ToBase58())
	}

	acc, err := token.TokenAccountFromData(info.Data)
	if err != nil {
		return xerrors.Errorf("%w: %v", ErrTokenInvalidAccountOwner, err)
	}
	if acc.Mint != mint {
		return xerrors.Errorf("%w: got=%s want=%s", ErrTokenInvalidMint, acc.Mint.ToBase58(), mint.ToBase58())
	}
	if acc.Owner != owner {
		return xerrors.Errorf("%w: got=%s want=%s", ErrTokenInvalidOwner, acc.Owner.ToBase58(), owner.ToBase58())
	}
	return nil
}

func buildCreateAssociatedTokenAccountInstruction(payer, owner, mint, ata common.PublicKey) types.Instruction {
	return associated_token_account.CreateAssociatedTokenAccount(
		associated_token_account.CreateAssociatedTokenAccountParam{
			Funder:                 payer,
			Owner:                  owner,
			Mint:                   mint,
			AssociatedTokenAccount: ata,
		},
	)
}

// MintToChecked は destination に amount (最小単位) を発行します。
// decimals が mint と一致しない場合はプログラム側で失敗します。
func (c *Client) MintToChecked(
	ctx context.Context,
	payer types.Account,
	mint, destination common.PublicKey,
	authority types.Account,
	amount uint64,
	decimals uint8,
) (string, error) {
	signers := []types.Account{payer}
	if authority.PublicKey != payer.PublicKey {
		signers = append(signers, authority)
	}

	ix := buildMintToCheckedInstruction(mint, destination, authority.PublicKey, amount, decimals)

	sig, err := c.sendAndConfirm(ctx, payer.PublicKey, signers, []types.Instruction{ix})
	if err != nil {
		return sig, err
	}

	log.Infof("minted amount=%d decimals=%d mint=%s to=%s tx=%s",
		amount, decimals, maskShort(mint.ToBase58()), maskShort(destination.ToBase58()), maskShort(sig))
	return sig, nil
}

func buildMintToCheckedInstruction(mint, destination, authority common.PublicKey, amount uint64, decimals uint8) types.Instruction {
	return token.MintToChecked(token.MintToCheckedParam{
		Mint:     mint,
		Auth:     authority,
		Signers:  []common.PublicKey{},
		To:       destination,
		Amount:   amount,
		Decimals: decimals,
	})
}
