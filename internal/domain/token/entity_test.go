package token

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pirateDefinition() Definition {
	return Definition{
		Name:        "Pirate",
		Symbol:      "PIR",
		Description: "Arghh matey, pirates aboard",
		ImagePath:   "assets/pirate.webp",
		Decimals:    2,
		Amount:      100,
		IsMutable:   true,
	}
}

func TestDefinitionValidate(t *testing.T) {
	require.NoError(t, pirateDefinition().Validate())

	tests := []struct {
		name   string
		mutate func(*Definition)
		want   error
	}{
		{"empty name", func(s *Definition) { s.Name = "   " }, ErrInvalidName},
		{"long name", func(s *Definition) { s.Name = strings.Repeat("a", MaxNameLen+1) }, ErrInvalidName},
		{"empty symbol", func(s *Definition) { s.Symbol = "" }, ErrInvalidSymbol},
		{"long symbol", func(s *Definition) { s.Symbol = "ABCDEFGHIJK" }, ErrInvalidSymbol},
		{"decimals", func(s *Definition) { s.Decimals = 10 }, ErrInvalidDecimals},
		{"zero amount", func(s *Definition) { s.Amount = 0 }, ErrInvalidAmount},
		{"fee", func(s *Definition) { s.SellerFeeBasisPoints = 10001 }, ErrInvalidSellerFee},
		{"image", func(s *Definition) { s.ImagePath = "" }, ErrInvalidImagePath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := pirateDefinition()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), tt.want)
		})
	}
}

func TestDefinitionValidateTrimsBeforeLengthCheck(t *testing.T) {
	s := pirateDefinition()
	s.Name = "  " + strings.Repeat("a", MaxNameLen) + "  "
	assert.NoError(t, s.Validate())
}

func TestValidateURI(t *testing.T) {
	assert.NoError(t, ValidateURI("https://gateway.irys.xyz/abc"))
	assert.ErrorIs(t, ValidateURI(""), ErrInvalidURI)
	assert.ErrorIs(t, ValidateURI("https://x/"+strings.Repeat("a", MaxURILen)), ErrInvalidURI)
}

func TestIsValidBase58Pubkey(t *testing.T) {
	assert.True(t, IsValidBase58Pubkey("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"))
	assert.False(t, IsValidBase58Pubkey("short"))
	assert.False(t, IsValidBase58Pubkey("0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl"))
}

func TestNewOffchainMetadata(t *testing.T) {
	m, err := NewOffchainMetadata(pirateDefinition(), "https://gateway.irys.xyz/img", "image/webp")
	require.NoError(t, err)

	b, err := m.JSON()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "Pirate", got["name"])
	assert.Equal(t, "PIR", got["symbol"])
	assert.Equal(t, "Arghh matey, pirates aboard", got["description"])
	assert.Equal(t, "https://gateway.irys.xyz/img", got["image"])

	props := got["properties"].(map[string]any)
	assert.Equal(t, "image", props["category"])
	files := props["files"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "image/webp", files[0].(map[string]any)["type"])
}

func TestNewOffchainMetadataRequiresImage(t *testing.T) {
	_, err := NewOffchainMetadata(pirateDefinition(), " ", "image/webp")
	assert.ErrorIs(t, err, ErrInvalidURI)
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/webp", ContentTypeFor("pirate.webp"))
	assert.Equal(t, "image/png", ContentTypeFor("PIRATE.PNG"))
	assert.Equal(t, "application/json", ContentTypeFor("metadata.json"))
	assert.Equal(t, "application/octet-stream", ContentTypeFor("blob"))
}

func TestNewFileUsesBaseName(t *testing.T) {
	f := NewFile("assets/pirate.webp", []byte{1})
	assert.Equal(t, "pirate.webp", f.Name)
	assert.Equal(t, "image/webp", f.ContentType)
}
