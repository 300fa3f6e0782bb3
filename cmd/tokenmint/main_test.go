package main

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/adapters/out/receipt"
	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
	"github.com/freddyal0x01/metaplex-sol-token-minter/internal/infra/solana"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	ConfigPath = ""
	IsVeryVerbose = false

	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"tokenmint"}, args...))
	return out.String(), err
}

func TestKeygen(t *testing.T) {
	p := filepath.Join(t.TempDir(), "id.json")

	out, err := runApp(t, "keygen", "--outfile", p, "--print-secret")
	require.NoError(t, err)
	assert.Contains(t, out, "Public Key: ")
	assert.Contains(t, out, "Secret Key (base58): ")

	acc, err := solana.LoadKeypairFile(p)
	require.NoError(t, err)
	assert.Contains(t, out, acc.PublicKey.ToBase58())

	_, err = runApp(t, "keygen", "--outfile", p)
	assert.ErrorIs(t, err, solana.ErrKeypairExists)

	_, err = runApp(t, "keygen", "--outfile", p, "--force")
	assert.NoError(t, err)
}

func TestMintDryRun(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "tokenmint.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
cluster = "devnet"

[storage]
driver = "irys"

[storage.irys]
base_url = "http://127.0.0.1:8080"
`), 0o600))

	out, err := runApp(t, "--config", cfgPath, "mint", "--dry-run",
		"--name", " Kraken ", "--symbol", "KRK", "--decimals", "6", "--amount", "2500000", "--immutable")
	require.NoError(t, err)

	var got struct {
		Cluster  string `json:"cluster"`
		Storage  string `json:"storage"`
		UIAmount string `json:"uiAmount"`
		Token    struct {
			Name      string
			Symbol    string
			Decimals  uint8
			Amount    uint64
			IsMutable bool
		} `json:"token"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "devnet", got.Cluster)
	assert.Equal(t, "irys", got.Storage)
	assert.Equal(t, "Kraken", got.Token.Name)
	assert.Equal(t, "KRK", got.Token.Symbol)
	assert.Equal(t, uint8(6), got.Token.Decimals)
	assert.Equal(t, uint64(2_500_000), got.Token.Amount)
	assert.False(t, got.Token.IsMutable)
	assert.Equal(t, "2.500000", got.UIAmount)
}

func TestMintDryRunRejectsInvalid(t *testing.T) {
	t.Setenv("ARWEAVE_BASE_URL", "http://127.0.0.1:8080")

	_, err := runApp(t, "mint", "--dry-run", "--symbol", strings.Repeat("X", 11))
	assert.Error(t, err)

	_, err = runApp(t, "mint", "--dry-run", "--decimals", "10")
	assert.Error(t, err)

	_, err = runApp(t, "mint", "--dry-run", "--cluster", "moonnet")
	assert.Error(t, err)
}

func TestInspectArgs(t *testing.T) {
	_, err := runApp(t, "inspect")
	assert.Error(t, err)

	_, err = runApp(t, "inspect", "not-a-mint")
	assert.Error(t, err)
}

func TestSolToLamports(t *testing.T) {
	l, err := solToLamports("1")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), l)

	l, err = solToLamports("0.5")
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000_000), l)

	_, err = solToLamports("0")
	assert.Error(t, err)
	_, err = solToLamports("0.0000000001")
	assert.Error(t, err)
	_, err = solToLamports("abc")
	assert.Error(t, err)

	assert.Equal(t, "1.5", lamportsToSOL(1_500_000_000))
}

func TestSolToLamportsRange(t *testing.T) {
	l, err := solToLamports("18446744073.709551615")
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), l)

	// MaxInt64 を超えても uint64 に収まれば通る
	l, err = solToLamports("10000000000")
	require.NoError(t, err)
	assert.Equal(t, uint64(10_000_000_000_000_000_000), l)

	_, err = solToLamports("18446744073.709551616")
	assert.Error(t, err)
	_, err = solToLamports("1e30")
	assert.Error(t, err)

	assert.Equal(t, "18446744073.709551615", lamportsToSOL(math.MaxUint64))
}

func TestReceiptShow(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "receipts")
	r := tokendom.MintResult{
		Cluster:         "devnet",
		Mint:            types.NewAccount().PublicKey.ToBase58(),
		MintToSignature: "sig-mintto",
		Amount:          100,
		Decimals:        2,
		Name:            "Pirate",
		Symbol:          "PIR",
	}
	require.NoError(t, receipt.NewFileStore(dir).Save(context.Background(), r))

	out, err := runApp(t, "receipt", "show", "--driver", "File", "--dir", dir, r.Mint)
	require.NoError(t, err)
	assert.Contains(t, out, `"symbol": "PIR"`)
	assert.Contains(t, out, "https://explorer.solana.com/address/"+r.Mint+"?cluster=devnet")
	assert.Contains(t, out, "https://explorer.solana.com/tx/sig-mintto?cluster=devnet")

	_, err = runApp(t, "receipt", "show", "--driver", "file", "--dir", dir, types.NewAccount().PublicKey.ToBase58())
	assert.ErrorIs(t, err, receipt.ErrNotFound)

	_, err = runApp(t, "receipt", "show", "--driver", "nop", r.Mint)
	assert.ErrorIs(t, err, receipt.ErrNotFound)

	_, err = runApp(t, "receipt", "show", "not-a-mint")
	assert.ErrorIs(t, err, tokendom.ErrInvalidMintAddress)
}
