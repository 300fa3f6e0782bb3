// internal/adapters/out/receipt/firestore_store.go
package receipt

import (
	"context"
	"math"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/xerrors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

const DefaultCollection = "token_mints"

// FirestoreStore は <collection>/<mint> に実行結果を保存します。
type FirestoreStore struct {
	Client     *firestore.Client
	Collection string
}

func NewFirestoreStore(client *firestore.Client, collection string) *FirestoreStore {
	collection = strings.TrimSpace(collection)
	if collection == "" {
		collection = DefaultCollection
	}
	return &FirestoreStore{Client: client, Collection: collection}
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.Client.Collection(s.Collection)
}

func (s *FirestoreStore) Save(ctx context.Context, r tokendom.MintResult) error {
	if s.Client == nil {
		return xerrors.New("firestore client is nil")
	}
	if err := r.Validate(); err != nil {
		return xerrors.Errorf("receipt: %w", err)
	}

	doc, err := receiptToDoc(r)
	if err != nil {
		return err
	}
	if _, err := s.col().Doc(r.Mint).Set(ctx, doc); err != nil {
		return xerrors.Errorf("receipt: firestore set %s/%s: %w", s.Collection, r.Mint, err)
	}

	log.Infof("saved receipt firestore %s/%s", s.Collection, r.Mint)
	return nil
}

func (s *FirestoreStore) Get(ctx context.Context, mint string) (tokendom.MintResult, error) {
	if s.Client == nil {
		return tokendom.MintResult{}, xerrors.New("firestore client is nil")
	}
	mint = strings.TrimSpace(mint)
	if mint == "" {
		return tokendom.MintResult{}, ErrNotFound
	}

	snap, err := s.col().Doc(mint).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return tokendom.MintResult{}, xerrors.Errorf("%w: %s", ErrNotFound, mint)
	}
	if err != nil {
		return tokendom.MintResult{}, xerrors.Errorf("receipt: firestore get %s/%s: %w", s.Collection, mint, err)
	}
	return docToReceipt(snap.Data())
}

// ErrAmountOutOfRange は Firestore の int64 に収まらない amount です。
var ErrAmountOutOfRange = xerrors.New("receipt: amount out of range")

func receiptToDoc(r tokendom.MintResult) (map[string]any, error) {
	if r.Amount > math.MaxInt64 {
		return nil, xerrors.Errorf("%w: %d exceeds int64", ErrAmountOutOfRange, r.Amount)
	}
	doc := map[string]any{
		"cluster":             r.Cluster,
		"payer":               r.Payer,
		"mint":                r.Mint,
		"mintSignature":       r.MintSignature,
		"imageUri":            r.ImageURI,
		"metadataUri":         r.MetadataURI,
		"metadataAccount":     r.MetadataAccount,
		"metadataSignature":   r.MetadataSignature,
		"tokenAccount":        r.TokenAccount,
		"tokenAccountCreated": r.TokenAccountCreated,
		"mintToSignature":     r.MintToSignature,
		// Firestore の整数は int64
		"amount":    int64(r.Amount),
		"decimals":  int64(r.Decimals),
		"name":      r.Name,
		"symbol":    r.Symbol,
		"createdAt": r.CreatedAt.UTC(),
	}
	if r.TokenAccountSignature != "" {
		doc["tokenAccountSignature"] = r.TokenAccountSignature
	}
	return doc, nil
}

func docToReceipt(m map[string]any) (tokendom.MintResult, error) {
	getS := func(k string) string {
		if v, ok := m[k].(string); ok {
			return strings.TrimSpace(v)
		}
		return ""
	}
	getI := func(k string) int64 {
		switch v := m[k].(type) {
		case int64:
			return v
		case int:
			return int64(v)
		}
		return 0
	}

	amount, decimals := getI("amount"), getI("decimals")
	if amount < 0 {
		return tokendom.MintResult{}, xerrors.Errorf("%w: %d", ErrAmountOutOfRange, amount)
	}
	if decimals < 0 || decimals > math.MaxUint8 {
		return tokendom.MintResult{}, xerrors.Errorf("receipt: decimals out of range: %d", decimals)
	}

	r := tokendom.MintResult{
		Cluster:               getS("cluster"),
		Payer:                 getS("payer"),
		Mint:                  getS("mint"),
		MintSignature:         getS("mintSignature"),
		ImageURI:              getS("imageUri"),
		MetadataURI:           getS("metadataUri"),
		MetadataAccount:       getS("metadataAccount"),
		MetadataSignature:     getS("metadataSignature"),
		TokenAccount:          getS("tokenAccount"),
		TokenAccountSignature: getS("tokenAccountSignature"),
		MintToSignature:       getS("mintToSignature"),
		Amount:                uint64(amount),
		Decimals:              uint8(decimals),
		Name:                  getS("name"),
		Symbol:                getS("symbol"),
	}
	if v, ok := m["tokenAccountCreated"].(bool); ok {
		r.TokenAccountCreated = v
	}
	if v, ok := m["createdAt"].(time.Time); ok {
		r.CreatedAt = v.UTC()
	}
	return r, nil
}
