// internal/adapters/out/common/object_key.go
package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"path"
	"strings"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

// MetadataFileName is the object name used for the off-chain JSON.
const MetadataFileName = "metadata.json"

// ObjectKey は "<prefix>/<sha256 先頭 16 桁>-<name>" を返します。
// 同じ内容は同じキーになるので再実行しても重複しません。
func ObjectKey(prefix string, f tokendom.File) string {
	sum := sha256.Sum256(f.Data)
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(f.Name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		name = "file"
	}
	key := hex.EncodeToString(sum[:])[:16] + "-" + name

	p := strings.Trim(strings.TrimSpace(prefix), "/")
	if p == "" {
		return key
	}
	return p + "/" + key
}

// EscapePath encodes each segment but keeps "/" separators.
func EscapePath(objectPath string) string {
	parts := strings.Split(strings.TrimLeft(objectPath, "/"), "/")
	for i := range parts {
		parts[i] = url.PathEscape(parts[i])
	}
	return strings.Join(parts, "/")
}

// JoinURL は base と escape 済みの path を結合します。
func JoinURL(base string, segments ...string) string {
	out := strings.TrimRight(strings.TrimSpace(base), "/")
	for _, s := range segments {
		s = strings.Trim(s, "/")
		if s == "" {
			continue
		}
		out = fmt.Sprintf("%s/%s", out, s)
	}
	return out
}

// MetadataFile wraps the off-chain JSON as an uploadable file.
func MetadataFile(data []byte) tokendom.File {
	return tokendom.File{
		Name:        MetadataFileName,
		ContentType: "application/json",
		Data:        data,
	}
}
