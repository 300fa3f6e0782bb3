// internal/infra/solana/mint_authority.go
package solana

import (
	"context"
	"errors"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/blocto/solana-go-sdk/types"
	"golang.org/x/xerrors"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var ErrSecretNotFound = xerrors.New("mint_authority: secret not found")

// SecretAccessor is the subset of the Secret Manager client used here.
type SecretAccessor interface {
	AccessSecretVersion(ctx context.Context, name string) ([]byte, error)
}

// secretManagerAccessor adapts *secretmanager.Client.
type secretManagerAccessor struct {
	client *secretmanager.Client
}

func (a secretManagerAccessor) AccessSecretVersion(ctx context.Context, name string) ([]byte, error) {
	resp, err := a.client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, xerrors.Errorf("%w: %s", ErrSecretNotFound, name)
		}
		return nil, xerrors.Errorf("AccessSecretVersion: %w", err)
	}
	return resp.GetPayload().GetData(), nil
}

// LoadKeypairFromSecret は secretName に指定した Secret Version から
// solana-keygen の keypair(JSON配列 [u8;64]) を復元します。
//
// secretName には
//
//	"projects/<PROJECT_ID>/secrets/<SECRET_ID>/versions/latest"
//
// のような Secret Version のフルパスを設定してください。
func LoadKeypairFromSecret(ctx context.Context, secretName string) (types.Account, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return types.Account{}, xerrors.Errorf("secretmanager.NewClient: %w", err)
	}
	defer client.Close()

	return loadKeypairFromAccessor(ctx, secretManagerAccessor{client: client}, secretName)
}

func loadKeypairFromAccessor(ctx context.Context, a SecretAccessor, secretName string) (types.Account, error) {
	secretName = strings.TrimSpace(secretName)
	if secretName == "" {
		return types.Account{}, xerrors.Errorf("mint_authority: secret name is empty")
	}

	data, err := a.AccessSecretVersion(ctx, secretName)
	if err != nil {
		return types.Account{}, err
	}

	acc, err := DecodeKeypair(data)
	if err != nil {
		return types.Account{}, xerrors.Errorf("decode secret %s: %w", secretName, err)
	}

	log.Infof("loaded payer from Secret Manager: secret=%s pubkey=%s", secretName, acc.PublicKey.ToBase58())
	return acc, nil
}

// PayerSource はどこから payer を読むかを表します。優先順位は
// Secret Manager > PRIVATE_KEY > keypair ファイル > 新規生成 です。
type PayerSource struct {
	SecretName  string
	PrivateKey  string
	KeypairPath string
	// ファイルが無い場合に生成して保存するか
	GenerateIfMissing bool
}

// ResolvePayer は PayerSource から fee payer / mint authority を決めます。
// 新しく生成した場合 created=true を返します。
func ResolvePayer(ctx context.Context, src PayerSource) (acc types.Account, created bool, err error) {
	return resolvePayer(ctx, src, nil)
}

func resolvePayer(ctx context.Context, src PayerSource, secrets SecretAccessor) (types.Account, bool, error) {
	if name := strings.TrimSpace(src.SecretName); name != "" {
		var (
			acc types.Account
			err error
		)
		if secrets != nil {
			acc, err = loadKeypairFromAccessor(ctx, secrets, name)
		} else {
			acc, err = LoadKeypairFromSecret(ctx, name)
		}
		if err != nil {
			return types.Account{}, false, err
		}
		return acc, false, nil
	}

	if pk := strings.TrimSpace(src.PrivateKey); pk != "" {
		acc, err := DecodeKeypair([]byte(pk))
		if err != nil {
			return types.Account{}, false, xerrors.Errorf("PRIVATE_KEY: %w", err)
		}
		log.Infof("loaded payer from PRIVATE_KEY pubkey=%s", acc.PublicKey.ToBase58())
		return acc, false, nil
	}

	path := strings.TrimSpace(src.KeypairPath)
	if path == "" {
		return types.Account{}, false, xerrors.Errorf("mint_authority: no payer source configured")
	}

	acc, err := LoadKeypairFile(path)
	if err == nil {
		log.Infof("loaded payer from %s pubkey=%s", path, acc.PublicKey.ToBase58())
		return acc, false, nil
	}
	if !errors.Is(err, os.ErrNotExist) || !src.GenerateIfMissing {
		return types.Account{}, false, xerrors.Errorf("load keypair: %w", err)
	}

	acc = types.NewAccount()
	if err := WriteKeypairFile(path, acc, false); err != nil {
		return types.Account{}, false, xerrors.Errorf("save new keypair: %w", err)
	}
	log.Infof("generated new payer keypair path=%s pubkey=%s", path, acc.PublicKey.ToBase58())
	return acc, true, nil
}
