// internal/domain/token/entity.go
package token

import (
	"strings"
	"time"

	"golang.org/x/xerrors"
)

// Definition は 1 回のミント実行で作成する fungible token の定義です。
type Definition struct {
	Name                 string
	Symbol               string
	Description          string
	ImagePath            string // ローカルの画像ファイル
	Decimals             uint8
	Amount               uint64 // 最小単位 (decimals 適用前)
	SellerFeeBasisPoints uint16 // 例: 500 = 5%
	IsMutable            bool
}

// Errors
var (
	ErrInvalidName        = xerrors.New("token: invalid name")
	ErrInvalidSymbol      = xerrors.New("token: invalid symbol")
	ErrInvalidURI         = xerrors.New("token: invalid uri")
	ErrInvalidDecimals    = xerrors.New("token: invalid decimals")
	ErrInvalidAmount      = xerrors.New("token: invalid amount")
	ErrInvalidSellerFee   = xerrors.New("token: invalid seller fee basis points")
	ErrInvalidImagePath   = xerrors.New("token: invalid image path")
	ErrInvalidMintAddress = xerrors.New("token: invalid mint address")
)

// Policy (Token Metadata program の上限に合わせる)
const (
	MaxNameLen           = 32
	MaxSymbolLen         = 10
	MaxURILen            = 200
	MaxSellerFeeBasisPts = 10000
	MaxDecimals          = 9

	Base58MinLen   = 32
	Base58MaxLen   = 44
	base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
)

// Normalize は前後の空白を落としたコピーを返します。
func (s Definition) Normalize() Definition {
	s.Name = strings.TrimSpace(s.Name)
	s.Symbol = strings.TrimSpace(s.Symbol)
	s.Description = strings.TrimSpace(s.Description)
	s.ImagePath = strings.TrimSpace(s.ImagePath)
	return s
}

// Validate checks the definition against the on-chain limits.
func (s Definition) Validate() error {
	s = s.Normalize()
	if s.Name == "" || len(s.Name) > MaxNameLen {
		return ErrInvalidName
	}
	if s.Symbol == "" || len(s.Symbol) > MaxSymbolLen {
		return ErrInvalidSymbol
	}
	if s.Decimals > MaxDecimals {
		return ErrInvalidDecimals
	}
	if s.Amount == 0 {
		return ErrInvalidAmount
	}
	if s.SellerFeeBasisPoints > MaxSellerFeeBasisPts {
		return ErrInvalidSellerFee
	}
	if s.ImagePath == "" {
		return ErrInvalidImagePath
	}
	return nil
}

// ValidateURI は metadata account に書き込む URI の長さを検証します。
func ValidateURI(uri string) error {
	uri = strings.TrimSpace(uri)
	if uri == "" || len(uri) > MaxURILen {
		return ErrInvalidURI
	}
	return nil
}

// MintResult は 1 回のミント実行で得られたオンチェーン/オフチェーンの成果物です。
type MintResult struct {
	Cluster string `json:"cluster"`

	Payer string `json:"payer"`

	Mint          string `json:"mint"`
	MintSignature string `json:"mintSignature"`

	ImageURI    string `json:"imageUri"`
	MetadataURI string `json:"metadataUri"`

	MetadataAccount   string `json:"metadataAccount"`
	MetadataSignature string `json:"metadataSignature"`

	TokenAccount          string `json:"tokenAccount"`
	TokenAccountCreated   bool   `json:"tokenAccountCreated"`
	TokenAccountSignature string `json:"tokenAccountSignature,omitempty"`

	MintToSignature string `json:"mintToSignature"`
	Amount          uint64 `json:"amount"`
	Decimals        uint8  `json:"decimals"`

	Name   string `json:"name"`
	Symbol string `json:"symbol"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate は保存前の最低限のチェックです。
func (r MintResult) Validate() error {
	if !IsValidBase58Pubkey(r.Mint) {
		return ErrInvalidMintAddress
	}
	return nil
}

// IsValidBase58Pubkey は Solana の公開鍵文字列としての妥当性を簡易チェックします。
func IsValidBase58Pubkey(s string) bool {
	if s = strings.TrimSpace(s); s == "" {
		return false
	}
	if len(s) < Base58MinLen || len(s) > Base58MaxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !strings.ContainsRune(base58Alphabet, rune(s[i])) {
			return false
		}
	}
	return true
}
