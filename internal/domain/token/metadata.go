// internal/domain/token/metadata.go
package token

import (
	"encoding/json"
	"mime"
	"path/filepath"
	"strings"

	"golang.org/x/xerrors"
)

// File はストレージにアップロードするファイル 1 件です。
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// NewFile は拡張子から Content-Type を補完して File を作ります。
func NewFile(name string, data []byte) File {
	name = filepath.Base(strings.TrimSpace(name))
	return File{
		Name:        name,
		ContentType: ContentTypeFor(name),
		Data:        data,
	}
}

// ContentTypeFor returns the MIME type for a file name, falling back to
// application/octet-stream.
func ContentTypeFor(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".webp":
		// 一部の環境の mime テーブルには無い
		return "image/webp"
	case ".json":
		return "application/json"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		// "; charset=utf-8" などは落とす
		if i := strings.Index(ct, ";"); i >= 0 {
			ct = ct[:i]
		}
		return ct
	}
	return "application/octet-stream"
}

// OffchainMetadata は URI の先に置く JSON ドキュメントです。
// Metaplex の fungible token 標準に沿ったフィールドだけを持ちます。
type OffchainMetadata struct {
	Name        string              `json:"name"`
	Symbol      string              `json:"symbol,omitempty"`
	Description string              `json:"description,omitempty"`
	Image       string              `json:"image"`
	Properties  *MetadataProperties `json:"properties,omitempty"`
}

type MetadataProperties struct {
	Files    []MetadataFile `json:"files,omitempty"`
	Category string         `json:"category,omitempty"`
}

type MetadataFile struct {
	URI  string `json:"uri"`
	Type string `json:"type"`
}

// NewOffchainMetadata builds the document uploaded next to the image.
func NewOffchainMetadata(def Definition, imageURI, contentType string) (OffchainMetadata, error) {
	def = def.Normalize()
	imageURI = strings.TrimSpace(imageURI)

	if def.Name == "" {
		return OffchainMetadata{}, ErrInvalidName
	}
	if imageURI == "" {
		return OffchainMetadata{}, xerrors.Errorf("%w: image uri is empty", ErrInvalidURI)
	}

	m := OffchainMetadata{
		Name:        def.Name,
		Symbol:      def.Symbol,
		Description: def.Description,
		Image:       imageURI,
	}

	if ct := strings.TrimSpace(contentType); ct != "" {
		m.Properties = &MetadataProperties{
			Files:    []MetadataFile{{URI: imageURI, Type: ct}},
			Category: "image",
		}
	}
	return m, nil
}

// JSON encodes the document.
func (m OffchainMetadata) JSON() ([]byte, error) {
	return json.Marshal(m)
}
