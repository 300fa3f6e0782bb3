// internal/adapters/out/s3/uploader_s3.go
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	outcommon "github.com/freddyal0x01/metaplex-sol-token-minter/internal/adapters/out/common"
	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

var log = logging.Logger("storage")

var ErrInvalid = xerrors.New("uploader_s3: bucket is empty")

// PutObjectAPI is the part of *s3.Client used by Uploader.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Options は S3 / MinIO 互換ストレージの接続設定です。
type Options struct {
	Region    string
	Endpoint  string // MinIO など。空なら AWS S3
	AccessKey string // 空なら default credential chain
	SecretKey string
	Bucket    string
	Prefix    string
	// 空の場合は endpoint / virtual-host 形式の URL を組み立てる
	PublicBaseURL string
}

// Uploader AWS S3 compatible storage (supports AWS S3 and MinIO)
type Uploader struct {
	client PutObjectAPI
	opts   Options
}

// NewUploader creates an uploader backed by the aws-sdk-go-v2 S3 client.
func NewUploader(ctx context.Context, opts Options) (*Uploader, error) {
	opts.Bucket = strings.TrimSpace(opts.Bucket)
	if opts.Bucket == "" {
		return nil, ErrInvalid
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		creds := credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")
		loadOpts = append(loadOpts, config.WithCredentialsProvider(creds))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to load AWS config: %w", err)
	}

	var client *s3.Client
	if opts.Endpoint != "" {
		// Custom endpoint (for MinIO or S3-compatible services)
		client = s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(cfg)
	}

	return newUploader(client, opts), nil
}

func newUploader(client PutObjectAPI, opts Options) *Uploader {
	return &Uploader{client: client, opts: opts}
}

func (u *Uploader) UploadFile(ctx context.Context, f tokendom.File) (string, error) {
	if len(f.Data) == 0 {
		return "", xerrors.New("uploader_s3: file is empty")
	}
	key := outcommon.ObjectKey(u.opts.Prefix, f)

	ct := f.ContentType
	if ct == "" {
		ct = tokendom.ContentTypeFor(f.Name)
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(f.Data),
		ContentType: aws.String(ct),
	})
	if err != nil {
		return "", xerrors.Errorf("failed to upload to s3: %w", err)
	}

	uri := u.PublicURL(key)
	log.Infof("uploaded s3://%s/%s uri=%s", u.opts.Bucket, key, uri)
	return uri, nil
}

func (u *Uploader) UploadMetadata(ctx context.Context, data []byte) (string, error) {
	return u.UploadFile(ctx, outcommon.MetadataFile(data))
}

// PublicURL は object の公開 URL を返します。
//   - PublicBaseURL があれば <base>/<key>
//   - Endpoint (path style) があれば <endpoint>/<bucket>/<key>
//   - それ以外は https://<bucket>.s3.<region>.amazonaws.com/<key>
func (u *Uploader) PublicURL(key string) string {
	escaped := outcommon.EscapePath(key)
	switch {
	case strings.TrimSpace(u.opts.PublicBaseURL) != "":
		return outcommon.JoinURL(u.opts.PublicBaseURL, escaped)
	case strings.TrimSpace(u.opts.Endpoint) != "":
		return outcommon.JoinURL(u.opts.Endpoint, u.opts.Bucket, escaped)
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.opts.Bucket, u.opts.Region, escaped)
	}
}
