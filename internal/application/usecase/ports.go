// internal/application/usecase/ports.go
package usecase

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

// TokenAccountResult は getOrCreate の結果です。
// Created=false の場合 Signature は空です。
type TokenAccountResult struct {
	Address   common.PublicKey
	Created   bool
	Signature string
}

// ChainPort は MintUsecase から見たチェーン操作です。
// すべて tx の confirm まで待ってから返ります。
type ChainPort interface {
	EnsureFunded(ctx context.Context, owner common.PublicKey) error

	CreateMint(
		ctx context.Context,
		payer types.Account,
		mintAuthority common.PublicKey,
		freezeAuthority *common.PublicKey,
		decimals uint8,
		mint types.Account,
	) (signature string, err error)

	CreateMetadataAccount(
		ctx context.Context,
		payer types.Account,
		mint common.PublicKey,
		data token_metadata.DataV2,
		isMutable bool,
	) (metadata common.PublicKey, signature string, err error)

	GetOrCreateAssociatedTokenAccount(
		ctx context.Context,
		payer types.Account,
		mint common.PublicKey,
		owner common.PublicKey,
	) (TokenAccountResult, error)

	MintToChecked(
		ctx context.Context,
		payer types.Account,
		mint common.PublicKey,
		destination common.PublicKey,
		authority types.Account,
		amount uint64,
		decimals uint8,
	) (signature string, err error)
}

// StoragePort uploads the image and the off-chain metadata and returns
// publicly reachable URIs.
type StoragePort interface {
	UploadFile(ctx context.Context, f tokendom.File) (string, error)
	UploadMetadata(ctx context.Context, data []byte) (string, error)
}

// ReceiptStore は実行結果の保存先です。
type ReceiptStore interface {
	Save(ctx context.Context, r tokendom.MintResult) error
}

// Explorer builds block explorer links for log output.
type Explorer interface {
	Name() string
	AddressURL(address string) string
	TxURL(signature string) string
}
