// internal/adapters/out/receipt/store.go
package receipt

import (
	"context"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	usecase "github.com/freddyal0x01/metaplex-sol-token-minter/internal/application/usecase"
	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

var log = logging.Logger("receipt")

const (
	DriverFile      = "file"
	DriverFirestore = "firestore"
	DriverNop       = "nop"
)

var (
	ErrNotFound      = xerrors.New("receipt: not found")
	ErrUnknownDriver = xerrors.New("receipt: unknown driver")
)

// Store は receipt の保存と mint アドレスでの読み出しを行います。
type Store interface {
	usecase.ReceiptStore
	Get(ctx context.Context, mint string) (tokendom.MintResult, error)
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*FirestoreStore)(nil)
	_ Store = NopStore{}
)

// NopStore discards receipts.
type NopStore struct{}

func (NopStore) Save(ctx context.Context, r tokendom.MintResult) error {
	log.Debugf("receipt disabled, skip mint=%s", r.Mint)
	return nil
}

func (NopStore) Get(ctx context.Context, mint string) (tokendom.MintResult, error) {
	return tokendom.MintResult{}, xerrors.Errorf("%w: receipts are disabled (driver=nop)", ErrNotFound)
}

// ValidateDriver は driver 名を正規化して返します。
func ValidateDriver(driver string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(driver))
	switch d {
	case "":
		return DriverNop, nil
	case DriverFile, DriverFirestore, DriverNop:
		return d, nil
	default:
		return "", xerrors.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
