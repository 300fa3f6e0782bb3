// internal/adapters/out/receipt/file_store.go
package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

// FileStore は <dir>/<mint>.json に実行結果を書き出します。
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = "receipts"
	}
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(mint string) string {
	return filepath.Join(s.Dir, mint+".json")
}

func (s *FileStore) Save(ctx context.Context, r tokendom.MintResult) error {
	if err := r.Validate(); err != nil {
		return xerrors.Errorf("receipt: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return xerrors.Errorf("receipt: marshal: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return xerrors.Errorf("receipt: create dir %s: %w", s.Dir, err)
	}

	// 途中で落ちても壊れたファイルを残さないよう tmp -> rename
	p := s.path(r.Mint)
	tmp, err := os.CreateTemp(s.Dir, "."+r.Mint+".*.tmp")
	if err != nil {
		return xerrors.Errorf("receipt: create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return xerrors.Errorf("receipt: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return xerrors.Errorf("receipt: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		_ = os.Remove(tmp.Name())
		return xerrors.Errorf("receipt: rename: %w", err)
	}

	log.Infof("saved receipt %s", p)
	return nil
}

// Get reads a receipt previously written by Save.
func (s *FileStore) Get(ctx context.Context, mint string) (tokendom.MintResult, error) {
	mint = strings.TrimSpace(mint)
	if !tokendom.IsValidBase58Pubkey(mint) {
		return tokendom.MintResult{}, tokendom.ErrInvalidMintAddress
	}
	if err := ctx.Err(); err != nil {
		return tokendom.MintResult{}, err
	}
	b, err := os.ReadFile(s.path(mint))
	if errors.Is(err, os.ErrNotExist) {
		return tokendom.MintResult{}, xerrors.Errorf("%w: %s", ErrNotFound, mint)
	}
	if err != nil {
		return tokendom.MintResult{}, err
	}

	var r tokendom.MintResult
	if err := json.Unmarshal(b, &r); err != nil {
		return tokendom.MintResult{}, xerrors.Errorf("receipt: decode %s: %w", mint, err)
	}
	return r, nil
}
