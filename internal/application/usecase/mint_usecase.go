// internal/application/usecase/mint_usecase.go
package usecase

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	logging "github.com/ipfs/go-log/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

var log = logging.Logger("tokenmint")

// MintUsecase は fungible token を 1 つ作るための一連の処理をまとめたものです。
//
//  1. Mint アカウント作成
//  2. 画像 / metadata.json のアップロードと Metadata アカウント作成
//  3. payer の ATA を取得 or 作成
//  4. mintToChecked
//
// 各ステップは前のステップの confirm を待ってから実行します。
type MintUsecase struct {
	chain    ChainPort
	storage  StoragePort
	receipts ReceiptStore
	explorer Explorer
	payer    types.Account

	// UploadTimeout はアップロード 1 件あたりの上限 (0 なら無制限)
	UploadTimeout time.Duration

	out      io.Writer
	now      func() time.Time
	newMint  func() types.Account
	readFile func(string) ([]byte, error)
}

// NewMintUsecase は MintUsecase のコンストラクタです。
// receipts が nil の場合は結果を保存しません。
func NewMintUsecase(
	chain ChainPort,
	storage StoragePort,
	receipts ReceiptStore,
	explorer Explorer,
	payer types.Account,
) *MintUsecase {
	return &MintUsecase{
		chain:    chain,
		storage:  storage,
		receipts: receipts,
		explorer: explorer,
		payer:    payer,
		out:      os.Stdout,
		now:      func() time.Time { return time.Now().UTC() },
		newMint:  types.NewAccount,
		readFile: os.ReadFile,
	}
}

// SetOutput は explorer URL などの出力先を差し替えます。
func (u *MintUsecase) SetOutput(w io.Writer) {
	if w != nil {
		u.out = w
	}
}

// Payer returns the fee payer / authority public key.
func (u *MintUsecase) Payer() common.PublicKey {
	return u.payer.PublicKey
}

// Run は全ステップを順に実行します。
// 途中で失敗した場合、それまでに確定したオンチェーンの状態は戻しません。
func (u *MintUsecase) Run(ctx context.Context, def tokendom.Definition) (*tokendom.MintResult, error) {
	if u == nil || u.chain == nil || u.storage == nil || u.explorer == nil {
		return nil, xerrors.New("mint usecase is not properly initialized")
	}
	def = def.Normalize()
	if err := def.Validate(); err != nil {
		return nil, xerrors.Errorf("validate token definition: %w", err)
	}

	payer := u.payer
	u.printf("Public Key: %s\n", payer.PublicKey.ToBase58())

	if err := u.chain.EnsureFunded(ctx, payer.PublicKey); err != nil {
		return nil, xerrors.Errorf("fund payer: %w", err)
	}

	res := &tokendom.MintResult{
		Cluster:  u.explorer.Name(),
		Payer:    payer.PublicKey.ToBase58(),
		Amount:   def.Amount,
		Decimals: def.Decimals,
		Name:     def.Name,
		Symbol:   def.Symbol,
	}

	// 1) Mint (mint authority / freeze authority = payer)
	mintAccount := u.newMint()
	mintSig, err := u.CreateNewMint(ctx, payer, payer.PublicKey, &payer.PublicKey, def.Decimals, mintAccount)
	if err != nil {
		return nil, err
	}
	res.Mint = mintAccount.PublicKey.ToBase58()
	res.MintSignature = mintSig

	// 2) 画像 + metadata.json + Metadata アカウント
	if err := u.CreateTokenMetadata(ctx, mintAccount.PublicKey, payer, def, res); err != nil {
		return nil, err
	}

	// 3) ATA
	ata, err := u.chain.GetOrCreateAssociatedTokenAccount(ctx, payer, mintAccount.PublicKey, payer.PublicKey)
	if err != nil {
		return nil, xerrors.Errorf("get or create associated token account: %w", err)
	}
	res.TokenAccount = ata.Address.ToBase58()
	res.TokenAccountCreated = ata.Created
	res.TokenAccountSignature = ata.Signature
	log.Infof("token account=%s created=%t", res.TokenAccount, ata.Created)

	// 4) mintToChecked
	sig, err := u.chain.MintToChecked(ctx, payer, mintAccount.PublicKey, ata.Address, payer, def.Amount, def.Decimals)
	if err != nil {
		return nil, xerrors.Errorf("mint to checked: %w", err)
	}
	res.MintToSignature = sig
	log.Infof("minted %s %s to %s", UIAmount(def.Amount, def.Decimals), def.Symbol, res.TokenAccount)
	u.printf("Transaction: %s\n", u.explorer.TxURL(sig))

	res.CreatedAt = u.now()

	if u.receipts != nil {
		if err := u.receipts.Save(ctx, *res); err != nil {
			// チェーン上は完了しているので結果は返す
			return res, xerrors.Errorf("save receipt for mint %s: %w", res.Mint, err)
		}
	}

	return res, nil
}

// CreateNewMint は Mint アカウントを作成し explorer の URL を出力します。
func (u *MintUsecase) CreateNewMint(
	ctx context.Context,
	payer types.Account,
	mintAuthority common.PublicKey,
	freezeAuthority *common.PublicKey,
	decimals uint8,
	mint types.Account,
) (string, error) {
	sig, err := u.chain.CreateMint(ctx, payer, mintAuthority, freezeAuthority, decimals, mint)
	if err != nil {
		return "", xerrors.Errorf("create mint: %w", err)
	}
	u.printf("Token Mint: %s\n", u.explorer.AddressURL(mint.PublicKey.ToBase58()))
	return sig, nil
}

// CreateTokenMetadata は画像と metadata.json をアップロードし、
// その URI を持つ Metadata アカウントを作成します。結果は res に書き込みます。
func (u *MintUsecase) CreateTokenMetadata(
	ctx context.Context,
	mint common.PublicKey,
	user types.Account,
	def tokendom.Definition,
	res *tokendom.MintResult,
) error {
	// file to buffer
	buf, err := u.readFile(def.ImagePath)
	if err != nil {
		return xerrors.Errorf("read image %s: %w", def.ImagePath, err)
	}
	file := tokendom.NewFile(def.ImagePath, buf)

	imageURI, err := u.uploadFile(ctx, file)
	if err != nil {
		return xerrors.Errorf("upload image: %w", err)
	}
	u.printf("Image URI: %s\n", imageURI)

	doc, err := tokendom.NewOffchainMetadata(def, imageURI, file.ContentType)
	if err != nil {
		return xerrors.Errorf("build metadata: %w", err)
	}
	docJSON, err := doc.JSON()
	if err != nil {
		return xerrors.Errorf("encode metadata: %w", err)
	}

	uri, err := u.uploadMetadata(ctx, docJSON)
	if err != nil {
		return xerrors.Errorf("upload metadata: %w", err)
	}
	uri = strings.TrimSpace(uri)
	u.printf("Metadata URI: %s\n", uri)

	if err := tokendom.ValidateURI(uri); err != nil {
		return xerrors.Errorf("metadata uri %q: %w", uri, err)
	}

	// onchain metadata format
	data := token_metadata.DataV2{
		Name:                 def.Name,
		Symbol:               def.Symbol,
		Uri:                  uri,
		SellerFeeBasisPoints: def.SellerFeeBasisPoints,
		Creators:             nil,
		Collection:           nil,
		Uses:                 nil,
	}

	metadataPDA, sig, err := u.chain.CreateMetadataAccount(ctx, user, mint, data, def.IsMutable)
	if err != nil {
		return xerrors.Errorf("create metadata account: %w", err)
	}
	u.printf("Metadata Account: %s\n", u.explorer.TxURL(sig))

	res.ImageURI = imageURI
	res.MetadataURI = uri
	res.MetadataAccount = metadataPDA.ToBase58()
	res.MetadataSignature = sig
	return nil
}

func (u *MintUsecase) uploadFile(ctx context.Context, f tokendom.File) (string, error) {
	ctx, cancel := u.withUploadTimeout(ctx)
	defer cancel()
	return u.storage.UploadFile(ctx, f)
}

func (u *MintUsecase) uploadMetadata(ctx context.Context, data []byte) (string, error) {
	ctx, cancel := u.withUploadTimeout(ctx)
	defer cancel()
	return u.storage.UploadMetadata(ctx, data)
}

func (u *MintUsecase) withUploadTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if u.UploadTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, u.UploadTimeout)
}

func (u *MintUsecase) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(u.out, format, args...)
}

// UIAmount は最小単位の amount を decimals で割った表示用の文字列を返します。
// 例: UIAmount(100, 2) == "1.00"
func UIAmount(amount uint64, decimals uint8) string {
	d := decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals))
	return d.StringFixed(int32(decimals))
}
