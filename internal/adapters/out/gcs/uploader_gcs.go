// internal/adapters/out/gcs/uploader_gcs.go
package gcs

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"
	"google.golang.org/api/option"

	outcommon "github.com/freddyal0x01/metaplex-sol-token-minter/internal/adapters/out/common"
	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

var log = logging.Logger("storage")

const DefaultPublicBaseURL = "https://storage.googleapis.com"

// Uploader はトークン画像と metadata JSON を GCS に置きます。
//
// 公開アクセスは bucket 側の IAM (allUsers: Storage Object Viewer) 前提です。
// オブジェクト単位の ACL は変更しません。
type Uploader struct {
	Client *storage.Client
	Bucket string
	Prefix string
	// Optional: if empty, uses https://storage.googleapis.com
	PublicBaseURL string

	owned bool
}

// NewUploader wraps an existing client.
func NewUploader(client *storage.Client, bucket, prefix string) *Uploader {
	return &Uploader{
		Client:        client,
		Bucket:        strings.TrimSpace(bucket),
		Prefix:        strings.TrimSpace(prefix),
		PublicBaseURL: DefaultPublicBaseURL,
	}
}

// Open は storage.Client を作成して Uploader を返します。
// credentialsFile が空なら ADC を使います。
func Open(ctx context.Context, bucket, prefix, credentialsFile, publicBaseURL string) (*Uploader, error) {
	var opts []option.ClientOption
	if cf := strings.TrimSpace(credentialsFile); cf != "" {
		opts = append(opts, option.WithCredentialsFile(cf))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, xerrors.Errorf("storage.NewClient: %w", err)
	}

	u := NewUploader(client, bucket, prefix)
	if b := strings.TrimSpace(publicBaseURL); b != "" {
		u.PublicBaseURL = b
	}
	u.owned = true
	return u, nil
}

// Close closes the client when it was created by Open.
func (u *Uploader) Close() error {
	if u == nil || u.Client == nil || !u.owned {
		return nil
	}
	return u.Client.Close()
}

func (u *Uploader) UploadFile(ctx context.Context, f tokendom.File) (string, error) {
	if len(f.Data) == 0 {
		return "", xerrors.New("uploader_gcs: file is empty")
	}
	obj := outcommon.ObjectKey(u.Prefix, f)

	ct := f.ContentType
	if ct == "" {
		ct = tokendom.ContentTypeFor(f.Name)
	}
	if err := u.Put(ctx, obj, ct, f.Data); err != nil {
		return "", xerrors.Errorf("uploader_gcs: put %s: %w", obj, err)
	}

	uri := u.PublicURL(obj)
	log.Infof("uploaded gs://%s/%s uri=%s", u.Bucket, obj, uri)
	return uri, nil
}

func (u *Uploader) UploadMetadata(ctx context.Context, data []byte) (string, error) {
	return u.UploadFile(ctx, outcommon.MetadataFile(data))
}

// Put uploads bytes to "bucket/objectPath" directly (non-signed upload).
func (u *Uploader) Put(ctx context.Context, objectPath, contentType string, data []byte) error {
	if u == nil || u.Client == nil {
		return xerrors.New("uploader_gcs: storage client is nil")
	}
	if u.Bucket == "" {
		return xerrors.New("uploader_gcs: bucket is empty")
	}
	obj := strings.TrimSpace(objectPath)
	if obj == "" {
		return xerrors.New("uploader_gcs: objectPath is empty")
	}

	w := u.Client.Bucket(u.Bucket).Object(obj).NewWriter(ctx)
	if ct := strings.TrimSpace(contentType); ct != "" {
		w.ContentType = ct
	}
	w.ChunkSize = 0
	w.Metadata = map[string]string{
		"uploadedAt": time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// PublicURL returns a public URL for the object.
func (u *Uploader) PublicURL(objectPath string) string {
	base := strings.TrimSpace(u.PublicBaseURL)
	if base == "" {
		base = DefaultPublicBaseURL
	}
	return outcommon.JoinURL(base, u.Bucket, outcommon.EscapePath(objectPath))
}
