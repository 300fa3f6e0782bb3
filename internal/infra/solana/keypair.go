// internal/infra/solana/keypair.go
package solana

import (
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/mr-tron/base58"
	"golang.org/x/xerrors"
)

var (
	ErrKeypairEmpty   = xerrors.New("keypair: empty")
	ErrKeypairInvalid = xerrors.New("keypair: invalid")
	ErrKeypairExists  = xerrors.New("keypair: file already exists")
)

// DecodeKeypair は以下のいずれかの形式から types.Account を復元します。
//   - solana-keygen の keypair JSON ([u8;64])
//   - 互換: [int,...] (Secret Manager に保存している形式)
//   - base58 エンコードされた 64 バイトの秘密鍵 (Phantom の export 形式)
func DecodeKeypair(data []byte) (types.Account, error) {
	s := strings.TrimSpace(string(data))
	if s == "" {
		return types.Account{}, ErrKeypairEmpty
	}

	var keyBytes []byte
	if strings.HasPrefix(s, "[") {
		b, err := decodeKeypairJSON([]byte(s))
		if err != nil {
			return types.Account{}, err
		}
		keyBytes = b
	} else {
		b, err := base58.Decode(s)
		if err != nil {
			return types.Account{}, xerrors.Errorf("%w: not json array nor base58: %v", ErrKeypairInvalid, err)
		}
		keyBytes = b
	}

	if len(keyBytes) != ed25519.PrivateKeySize {
		return types.Account{}, xerrors.Errorf("%w: unexpected secret key length: got %d, want %d", ErrKeypairInvalid, len(keyBytes), ed25519.PrivateKeySize)
	}

	// 後半 32 バイトは公開鍵。seed から導出したものと一致しなければ壊れている。
	derived := ed25519.NewKeyFromSeed(keyBytes[:ed25519.SeedSize])
	if !derived.Public().(ed25519.PublicKey).Equal(ed25519.PublicKey(keyBytes[ed25519.SeedSize:])) {
		return types.Account{}, xerrors.Errorf("%w: public key half does not match seed", ErrKeypairInvalid)
	}

	acc, err := types.AccountFromBytes(keyBytes)
	if err != nil {
		return types.Account{}, xerrors.Errorf("%w: AccountFromBytes: %v", ErrKeypairInvalid, err)
	}
	return acc, nil
}

// decodeKeypairJSON は [int,int,...] の配列を 64 バイトに戻します。
func decodeKeypairJSON(data []byte) ([]byte, error) {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, xerrors.Errorf("%w: unmarshal keypair json: %v", ErrKeypairInvalid, err)
	}

	b := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, xerrors.Errorf("%w: byte out of range at %d: %d", ErrKeypairInvalid, i, v)
		}
		b[i] = byte(v)
	}
	return b, nil
}

// EncodeKeypairJSON は solana-keygen 互換の JSON 配列にします。
func EncodeKeypairJSON(acc types.Account) ([]byte, error) {
	priv := acc.PrivateKey
	if len(priv) != ed25519.PrivateKeySize {
		return nil, xerrors.Errorf("%w: private key length %d", ErrKeypairInvalid, len(priv))
	}
	ints := make([]int, len(priv))
	for i, v := range priv {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

// EncodeKeypairBase58 returns the 64-byte secret key in base58.
func EncodeKeypairBase58(acc types.Account) string {
	return base58.Encode(acc.PrivateKey)
}

// LoadKeypairFile は keypair ファイルを読み込みます。
func LoadKeypairFile(path string) (types.Account, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Account{}, err
	}
	acc, err := DecodeKeypair(b)
	if err != nil {
		return types.Account{}, xerrors.Errorf("%s: %w", path, err)
	}
	return acc, nil
}

// WriteKeypairFile は acc を 0600 で書き出します。
// overwrite=false の場合、既存ファイルは上書きしません。
func WriteKeypairFile(path string, acc types.Account, overwrite bool) error {
	data, err := EncodeKeypairJSON(acc)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return xerrors.Errorf("create keypair dir: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return xerrors.Errorf("%w: %s", ErrKeypairExists, path)
		}
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
