package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

func TestObjectKey(t *testing.T) {
	f := tokendom.File{Name: "assets/pirate.webp", Data: []byte("abc")}

	// sha256("abc") = ba7816bf8f01cfea...
	assert.Equal(t, "tokens/ba7816bf8f01cfea-pirate.webp", ObjectKey("/tokens/", f))
	assert.Equal(t, "ba7816bf8f01cfea-pirate.webp", ObjectKey("", f))

	win := tokendom.File{Name: `C:\img\pirate.webp`, Data: []byte("abc")}
	assert.Equal(t, "ba7816bf8f01cfea-pirate.webp", ObjectKey("", win))

	noName := ObjectKey("p", tokendom.File{Data: []byte("abc")})
	assert.True(t, strings.HasSuffix(noName, "-file"))

	other := ObjectKey("tokens", tokendom.File{Name: "pirate.webp", Data: []byte("abd")})
	assert.NotEqual(t, ObjectKey("tokens", f), other)
}

func TestEscapeAndJoin(t *testing.T) {
	assert.Equal(t, "tokens/a%20b.png", EscapePath("/tokens/a b.png"))
	assert.Equal(t, "https://storage.googleapis.com/bucket/tokens/x.png",
		JoinURL("https://storage.googleapis.com/", "bucket", "tokens/x.png"))
	assert.Equal(t, "https://cdn.example.com/x.png", JoinURL("https://cdn.example.com", "", "/x.png"))
}

func TestMetadataFile(t *testing.T) {
	f := MetadataFile([]byte(`{}`))
	assert.Equal(t, MetadataFileName, f.Name)
	assert.Equal(t, "application/json", f.ContentType)
}
