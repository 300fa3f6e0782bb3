// internal/infra/config/config.go
package config

import (
	"bytes"
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"golang.org/x/xerrors"
)

// EnvPrefix は envconfig が参照する環境変数のプレフィックスです。
// 例: TOKENMINT_CLUSTER, TOKENMINT_TOKEN_NAME
// envconfig タグを持つフィールドはプレフィックス無しの名前 (SOLANA_RPC_URL など) も読みます。
const EnvPrefix = "TOKENMINT"

var ErrInvalidConfig = xerrors.New("config: invalid")

// Config はミントツール全体の設定を保持します。
type Config struct {
	Cluster    string `toml:"cluster"`
	RPCURL     string `toml:"rpc_url" envconfig:"SOLANA_RPC_URL"`
	Commitment string `toml:"commitment"`

	// 送信した tx が Commitment に到達するまで待つ上限
	ConfirmTimeout time.Duration `toml:"confirm_timeout" split_words:"true"`

	Payer   PayerConfig   `toml:"payer"`
	Token   TokenConfig   `toml:"token"`
	Storage StorageConfig `toml:"storage"`
	Receipt ReceiptConfig `toml:"receipt"`
}

type PayerConfig struct {
	// solana-keygen 互換の keypair ファイル。無ければ生成して保存する。
	KeypairPath string `toml:"keypair_path" split_words:"true"`
	// Secret Manager の Secret Version フルパス
	// "projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
	SecretName string `toml:"secret_name" envconfig:"SOLANA_MINT_KEY_SECRET"`
	// JSON 配列 or base58 の秘密鍵。ファイルには書かない。
	PrivateKey string `toml:"-" envconfig:"PRIVATE_KEY"`

	SkipAirdrop bool `toml:"skip_airdrop" split_words:"true"`
	// 残高がこの値 (lamports) 未満なら AirdropLamports を要求する
	MinBalanceLamports uint64 `toml:"min_balance_lamports" split_words:"true"`
	AirdropLamports    uint64 `toml:"airdrop_lamports" split_words:"true"`
}

type TokenConfig struct {
	Name                 string `toml:"name"`
	Symbol               string `toml:"symbol"`
	Description          string `toml:"description"`
	ImagePath            string `toml:"image_path" split_words:"true"`
	Decimals             uint8  `toml:"decimals"`
	Amount               uint64 `toml:"amount"`
	SellerFeeBasisPoints uint16 `toml:"seller_fee_basis_points" split_words:"true"`
	IsMutable            bool   `toml:"is_mutable" split_words:"true"`
}

type StorageConfig struct {
	Driver  string        `toml:"driver"`
	Timeout time.Duration `toml:"timeout"`

	Irys IrysConfig `toml:"irys"`
	GCS  GCSConfig  `toml:"gcs"`
	S3   S3Config   `toml:"s3"`
}

// IrysConfig は Irys Uploader (Cloud Run ラッパ API など) の設定です。
type IrysConfig struct {
	BaseURL    string `toml:"base_url" envconfig:"ARWEAVE_BASE_URL"`
	APIKey     string `toml:"-" envconfig:"ARWEAVE_API_KEY"`
	GatewayURL string `toml:"gateway_url" split_words:"true"`
}

type GCSConfig struct {
	Bucket          string `toml:"bucket" envconfig:"GCS_BUCKET"`
	Prefix          string `toml:"prefix"`
	CredentialsFile string `toml:"credentials_file" envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
	PublicBaseURL   string `toml:"public_base_url" split_words:"true"`
}

type S3Config struct {
	Region        string `toml:"region" envconfig:"AWS_REGION"`
	Endpoint      string `toml:"endpoint"`
	AccessKey     string `toml:"-" envconfig:"AWS_ACCESS_KEY_ID"`
	SecretKey     string `toml:"-" envconfig:"AWS_SECRET_ACCESS_KEY"`
	Bucket        string `toml:"bucket"`
	Prefix        string `toml:"prefix"`
	PublicBaseURL string `toml:"public_base_url" split_words:"true"`
}

type ReceiptConfig struct {
	Driver string `toml:"driver"`
	Dir    string `toml:"dir"`

	FirestoreProjectID       string `toml:"firestore_project_id" envconfig:"FIRESTORE_PROJECT_ID"`
	FirestoreCredentialsFile string `toml:"firestore_credentials_file" envconfig:"FIRESTORE_CREDENTIALS_FILE"`
	FirestoreCollection      string `toml:"firestore_collection" split_words:"true"`
}

// Default は元のスクリプトと同じ値 (devnet / Pirate / 2 decimals / 100 units) を返します。
func Default() *Config {
	return &Config{
		Cluster:        "devnet",
		Commitment:     "confirmed",
		ConfirmTimeout: 90 * time.Second,
		Payer: PayerConfig{
			KeypairPath:        "~/.config/solana/id.json",
			MinBalanceLamports: 1_000_000_000,
			AirdropLamports:    1_000_000_000,
		},
		Token: TokenConfig{
			Name:        "Pirate",
			Symbol:      "PIR",
			Description: "Arghh matey, pirates aboard",
			ImagePath:   "assets/pirate.webp",
			Decimals:    2,
			Amount:      100,
			IsMutable:   true,
		},
		Storage: StorageConfig{
			Driver:  "irys",
			Timeout: 60 * time.Second,
			Irys: IrysConfig{
				GatewayURL: "https://gateway.irys.xyz",
			},
			GCS: GCSConfig{
				Prefix:        "tokens",
				PublicBaseURL: "https://storage.googleapis.com",
			},
			S3: S3Config{
				Region: "us-east-1",
				Prefix: "tokens",
			},
		},
		Receipt: ReceiptConfig{
			Driver:              "file",
			Dir:                 "receipts",
			FirestoreCollection: "token_mints",
		},
	}
}

// Load は Default → TOML ファイル (path が空ならスキップ) → 環境変数 の順で設定を重ねます。
func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return FromReader(nil)
	}

	p, err := homedir.Expand(path)
	if err != nil {
		return nil, xerrors.Errorf("expand config path %s: %w", path, err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, xerrors.Errorf("read config %s: %w", p, err)
	}
	return FromReader(bytes.NewReader(b))
}

// FromReader loads TOML from reader (nil skips it) on top of Default and
// applies environment overrides.
func FromReader(reader io.Reader) (*Config, error) {
	cfg := Default()
	if reader != nil {
		if _, err := toml.NewDecoder(reader).Decode(cfg); err != nil {
			return nil, xerrors.Errorf("decode toml: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, xerrors.Errorf("processing env vars overrides: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{
		&c.Payer.KeypairPath,
		&c.Token.ImagePath,
		&c.Receipt.Dir,
		&c.Storage.GCS.CredentialsFile,
		&c.Receipt.FirestoreCredentialsFile,
	} {
		v := strings.TrimSpace(*p)
		if v == "" {
			continue
		}
		expanded, err := homedir.Expand(v)
		if err != nil {
			return xerrors.Errorf("expand %s: %w", v, err)
		}
		*p = expanded
	}
	return nil
}

// Validate は組み合わせとして不正な設定を弾きます。
func (c *Config) Validate() error {
	switch strings.TrimSpace(c.Cluster) {
	case "devnet", "testnet", "mainnet-beta", "localnet":
	case "custom":
		if strings.TrimSpace(c.RPCURL) == "" {
			return xerrors.Errorf("%w: cluster=custom requires rpc_url", ErrInvalidConfig)
		}
	default:
		return xerrors.Errorf("%w: unknown cluster %q", ErrInvalidConfig, c.Cluster)
	}

	switch strings.TrimSpace(c.Commitment) {
	case "processed", "confirmed", "finalized":
	default:
		return xerrors.Errorf("%w: unknown commitment %q", ErrInvalidConfig, c.Commitment)
	}

	if c.ConfirmTimeout <= 0 {
		return xerrors.Errorf("%w: confirm_timeout must be > 0", ErrInvalidConfig)
	}
	if c.Token.Decimals > 9 {
		return xerrors.Errorf("%w: decimals must be <= 9", ErrInvalidConfig)
	}

	switch DriverName(c.Storage.Driver) {
	case "irys":
		if strings.TrimSpace(c.Storage.Irys.BaseURL) == "" {
			return xerrors.Errorf("%w: storage.irys.base_url (ARWEAVE_BASE_URL) is empty", ErrInvalidConfig)
		}
	case "gcs":
		if strings.TrimSpace(c.Storage.GCS.Bucket) == "" {
			return xerrors.Errorf("%w: storage.gcs.bucket (GCS_BUCKET) is empty", ErrInvalidConfig)
		}
	case "s3":
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return xerrors.Errorf("%w: storage.s3.bucket is empty", ErrInvalidConfig)
		}
	default:
		return xerrors.Errorf("%w: unknown storage driver %q", ErrInvalidConfig, c.Storage.Driver)
	}

	switch DriverName(c.Receipt.Driver) {
	case "", "nop":
	case "file":
		if strings.TrimSpace(c.Receipt.Dir) == "" {
			return xerrors.Errorf("%w: receipt.dir is empty", ErrInvalidConfig)
		}
	case "firestore":
		if strings.TrimSpace(c.Receipt.FirestoreProjectID) == "" {
			return xerrors.Errorf("%w: receipt.firestore_project_id (FIRESTORE_PROJECT_ID) is empty", ErrInvalidConfig)
		}
	default:
		return xerrors.Errorf("%w: unknown receipt driver %q", ErrInvalidConfig, c.Receipt.Driver)
	}

	return nil
}

// DriverName は storage / receipt の driver 名を比較用に正規化します。
func DriverName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
