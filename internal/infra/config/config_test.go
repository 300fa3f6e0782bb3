package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesPirateToken(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "devnet", cfg.Cluster)
	assert.Equal(t, "confirmed", cfg.Commitment)
	assert.Equal(t, "Pirate", cfg.Token.Name)
	assert.Equal(t, "PIR", cfg.Token.Symbol)
	assert.Equal(t, uint8(2), cfg.Token.Decimals)
	assert.Equal(t, uint64(100), cfg.Token.Amount)
	assert.Equal(t, uint16(0), cfg.Token.SellerFeeBasisPoints)
	assert.True(t, cfg.Token.IsMutable)
	assert.Equal(t, 60*time.Second, cfg.Storage.Timeout)
}

const sampleTOML = `
cluster = "testnet"
commitment = "finalized"

[token]
name = "Parrot"
symbol = "PRT"
decimals = 6
amount = 5000000

[storage]
driver = "gcs"

[storage.gcs]
bucket = "my-bucket"
`

func TestFromReaderAppliesTOML(t *testing.T) {
	cfg, err := FromReader(strings.NewReader(sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "testnet", cfg.Cluster)
	assert.Equal(t, "finalized", cfg.Commitment)
	assert.Equal(t, "Parrot", cfg.Token.Name)
	assert.Equal(t, uint8(6), cfg.Token.Decimals)
	assert.Equal(t, uint64(5000000), cfg.Token.Amount)
	assert.Equal(t, "gcs", cfg.Storage.Driver)
	assert.Equal(t, "my-bucket", cfg.Storage.GCS.Bucket)
	// untouched defaults survive
	assert.Equal(t, "Arghh matey, pirates aboard", cfg.Token.Description)
	assert.Equal(t, "https://storage.googleapis.com", cfg.Storage.GCS.PublicBaseURL)
	require.NoError(t, cfg.Validate())
}

func TestFromReaderEnvOverrides(t *testing.T) {
	t.Setenv("TOKENMINT_CLUSTER", "localnet")
	t.Setenv("TOKENMINT_TOKEN_NAME", "Kraken")
	t.Setenv("TOKENMINT_STORAGE_TIMEOUT", "5s")
	t.Setenv("SOLANA_RPC_URL", "http://127.0.0.1:8899")
	t.Setenv("ARWEAVE_BASE_URL", "https://uploader.example.com")

	cfg, err := FromReader(strings.NewReader(sampleTOML))
	require.NoError(t, err)

	assert.Equal(t, "localnet", cfg.Cluster)
	assert.Equal(t, "Kraken", cfg.Token.Name)
	assert.Equal(t, 5*time.Second, cfg.Storage.Timeout)
	assert.Equal(t, "http://127.0.0.1:8899", cfg.RPCURL)
	assert.Equal(t, "https://uploader.example.com", cfg.Storage.Irys.BaseURL)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tokenmint.toml")
	require.NoError(t, os.WriteFile(p, []byte(sampleTOML), 0o600))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "Parrot", cfg.Token.Name)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := Default()
		c.Storage.Irys.BaseURL = "https://uploader.example.com"
		return c
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"cluster", func(c *Config) { c.Cluster = "moonnet" }},
		{"custom without rpc", func(c *Config) { c.Cluster = "custom" }},
		{"commitment", func(c *Config) { c.Commitment = "max" }},
		{"confirm timeout", func(c *Config) { c.ConfirmTimeout = 0 }},
		{"decimals", func(c *Config) { c.Token.Decimals = 12 }},
		{"irys base url", func(c *Config) { c.Storage.Irys.BaseURL = "" }},
		{"gcs bucket", func(c *Config) { c.Storage.Driver = "gcs" }},
		{"s3 bucket", func(c *Config) { c.Storage.Driver = "s3" }},
		{"storage driver", func(c *Config) { c.Storage.Driver = "ipfs" }},
		{"receipt dir", func(c *Config) { c.Receipt.Dir = "" }},
		{"firestore project", func(c *Config) { c.Receipt.Driver = "firestore" }},
		{"receipt driver", func(c *Config) { c.Receipt.Driver = "postgres" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
		})
	}
}

func TestValidateCustomClusterWithRPC(t *testing.T) {
	c := Default()
	c.Storage.Irys.BaseURL = "https://uploader.example.com"
	c.Cluster = "custom"
	c.RPCURL = "http://10.0.0.1:8899"
	assert.NoError(t, c.Validate())
}

func TestValidateDriverNamesIgnoreCase(t *testing.T) {
	c := Default()
	c.Storage.Irys.BaseURL = "https://uploader.example.com"
	c.Storage.Driver = " IRYS "
	c.Receipt.Driver = "File"
	assert.NoError(t, c.Validate())
	assert.Equal(t, "file", DriverName(c.Receipt.Driver))

	c.Receipt.Driver = "FireStore"
	assert.ErrorIs(t, c.Validate(), ErrInvalidConfig)
}
