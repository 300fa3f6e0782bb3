// internal/platform/di/container.go
package di

import (
	"context"

	"github.com/blocto/solana-go-sdk/types"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	gcsadapter "github.com/freddyal0x01/metaplex-sol-token-minter/internal/adapters/out/gcs"
	receiptadapter "github.com/freddyal0x01/metaplex-sol-token-minter/internal/adapters/out/receipt"
	s3adapter "github.com/freddyal0x01/metaplex-sol-token-minter/internal/adapters/out/s3"
	usecase "github.com/freddyal0x01/metaplex-sol-token-minter/internal/application/usecase"
	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/arweave"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/config"
	firestoreinfra "github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/firestore"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/solana"
)

var log = logging.Logger("tokenmint")

// Container は main.go から使う依存オブジェクトの束です。
type Container struct {
	Config *config.Config

	Chain        *solana.Client
	Payer        types.Account
	PayerCreated bool

	Storage  usecase.StoragePort
	Receipts usecase.ReceiptStore

	MintUsecase *usecase.MintUsecase

	cleanupFn []func() error
}

// Close はクラウドクライアントなどを閉じます。
func (c *Container) Close() {
	if c == nil {
		return
	}
	for i := len(c.cleanupFn) - 1; i >= 0; i-- {
		if err := c.cleanupFn[i](); err != nil {
			log.Warnf("cleanup: %v", err)
		}
	}
	c.cleanupFn = nil
}

// NewContainer は cfg を検証し、ミントに必要なものを全部つなぎます。
//  1. Solana client / payer
//  2. storage driver (irys / gcs / s3)
//  3. receipt driver (file / firestore / nop)
//  4. MintUsecase
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, xerrors.New("di: config is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Config: cfg}

	chain, err := NewChainClient(cfg)
	if err != nil {
		return nil, err
	}
	c.Chain = chain

	payer, created, err := ResolvePayer(ctx, cfg, true)
	if err != nil {
		return nil, err
	}
	c.Payer = payer
	c.PayerCreated = created

	storage, closeStorage, err := newStorage(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	c.Storage = storage
	if closeStorage != nil {
		c.cleanupFn = append(c.cleanupFn, closeStorage)
	}

	receipts, closeReceipts, err := OpenReceiptStore(ctx, cfg.Receipt)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Receipts = receipts
	if closeReceipts != nil {
		c.cleanupFn = append(c.cleanupFn, closeReceipts)
	}

	uc := usecase.NewMintUsecase(c.Chain, c.Storage, c.Receipts, c.Chain.Cluster, c.Payer)
	uc.UploadTimeout = cfg.Storage.Timeout
	c.MintUsecase = uc

	return c, nil
}

// NewChainClient はクラスタ / commitment / airdrop 設定から solana.Client を作ります。
func NewChainClient(cfg *config.Config) (*solana.Client, error) {
	cluster, err := solana.NewCluster(cfg.Cluster, cfg.RPCURL)
	if err != nil {
		return nil, xerrors.Errorf("cluster: %w", err)
	}
	commitment, err := solana.ParseCommitment(cfg.Commitment)
	if err != nil {
		return nil, xerrors.Errorf("commitment: %w", err)
	}

	chain := solana.NewClient(cluster, commitment, cfg.ConfirmTimeout)
	chain.SkipAirdrop = cfg.Payer.SkipAirdrop
	chain.MinBalanceLamports = cfg.Payer.MinBalanceLamports
	chain.AirdropLamports = cfg.Payer.AirdropLamports

	log.Debugf("cluster=%s endpoint=%s commitment=%s", cluster.Name(), cluster.Endpoint(), commitment)
	return chain, nil
}

// ResolvePayer は設定から fee payer を決めます。
func ResolvePayer(ctx context.Context, cfg *config.Config, generateIfMissing bool) (types.Account, bool, error) {
	acc, created, err := solana.ResolvePayer(ctx, solana.PayerSource{
		SecretName:        cfg.Payer.SecretName,
		PrivateKey:        cfg.Payer.PrivateKey,
		KeypairPath:       cfg.Payer.KeypairPath,
		GenerateIfMissing: generateIfMissing,
	})
	if err != nil {
		return types.Account{}, false, xerrors.Errorf("resolve payer: %w", err)
	}
	return acc, created, nil
}

// TokenDefinition converts the [token] section into the domain token definition.
func TokenDefinition(t config.TokenConfig) tokendom.Definition {
	return tokendom.Definition{
		Name:                 t.Name,
		Symbol:               t.Symbol,
		Description:          t.Description,
		ImagePath:            t.ImagePath,
		Decimals:             t.Decimals,
		Amount:               t.Amount,
		SellerFeeBasisPoints: t.SellerFeeBasisPoints,
		IsMutable:            t.IsMutable,
	}
}

func newStorage(ctx context.Context, cfg config.StorageConfig) (usecase.StoragePort, func() error, error) {
	switch config.DriverName(cfg.Driver) {
	case "irys":
		return arweave.NewHTTPUploader(cfg.Irys.BaseURL, cfg.Irys.APIKey, cfg.Irys.GatewayURL, cfg.Timeout), nil, nil

	case "gcs":
		u, err := gcsadapter.Open(ctx, cfg.GCS.Bucket, cfg.GCS.Prefix, cfg.GCS.CredentialsFile, cfg.GCS.PublicBaseURL)
		if err != nil {
			return nil, nil, xerrors.Errorf("storage gcs: %w", err)
		}
		return u, u.Close, nil

	case "s3":
		u, err := s3adapter.NewUploader(ctx, s3adapter.Options{
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			Bucket:        cfg.S3.Bucket,
			Prefix:        cfg.S3.Prefix,
			PublicBaseURL: cfg.S3.PublicBaseURL,
		})
		if err != nil {
			return nil, nil, xerrors.Errorf("storage s3: %w", err)
		}
		return u, nil, nil
	}
	return nil, nil, xerrors.Errorf("%w: unknown storage driver %q", config.ErrInvalidConfig, cfg.Driver)
}

// OpenReceiptStore は receipt driver を開きます。close が nil でなければ呼び出し側で閉じてください。
func OpenReceiptStore(ctx context.Context, cfg config.ReceiptConfig) (receiptadapter.Store, func() error, error) {
	driver, err := receiptadapter.ValidateDriver(cfg.Driver)
	if err != nil {
		return nil, nil, err
	}

	switch driver {
	case receiptadapter.DriverFile:
		return receiptadapter.NewFileStore(cfg.Dir), nil, nil

	case receiptadapter.DriverFirestore:
		cw, err := firestoreinfra.NewClient(ctx, cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile)
		if err != nil {
			return nil, nil, xerrors.Errorf("receipt firestore: %w", err)
		}
		return receiptadapter.NewFirestoreStore(cw.Client, cfg.FirestoreCollection), cw.Close, nil
	}
	return receiptadapter.NopStore{}, nil, nil
}
