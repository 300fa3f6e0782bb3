// internal/infra/arweave/uploader.go
package arweave

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/xerrors"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

var log = logging.Logger("storage")

var (
	ErrNotConfigured = xerrors.New("arweave: baseURL is empty; uploader endpoint not configured")
	ErrEmptyPayload  = xerrors.New("arweave: payload is empty")
	ErrEmptyURI      = xerrors.New("arweave: upload response has neither uri nor id")
)

const DefaultGatewayURL = "https://gateway.irys.xyz"

// HTTPUploader は Irys uploader サービスの HTTP API を叩く実装です。
// サービス側が Bundlr/Irys への署名と支払いを行います。
type HTTPUploader struct {
	client     *http.Client
	baseURL    string // 例: "https://irys-uploader-xxxx.a.run.app"
	apiKey     string // 認証が必要な場合のみ
	gatewayURL string // {"id"} だけ返ってきた場合の組み立て先
}

// NewHTTPUploader は Arweave/Irys 用の HTTP uploader を生成します。
// timeout <= 0 の場合は 30 秒です。
func NewHTTPUploader(baseURL, apiKey, gatewayURL string, timeout time.Duration) *HTTPUploader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	gatewayURL = strings.TrimRight(strings.TrimSpace(gatewayURL), "/")
	if gatewayURL == "" {
		gatewayURL = DefaultGatewayURL
	}
	return &HTTPUploader{
		client:     &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		gatewayURL: gatewayURL,
	}
}

// UploadMetadata は off-chain metadata JSON をアップロードします。
func (u *HTTPUploader) UploadMetadata(ctx context.Context, data []byte) (string, error) {
	log.Debugf("UploadMetadata called (len=%d)", len(data))
	return u.UploadJSON(ctx, data)
}

// UploadJSON は JSON を /upload/json に POST し、その URI を返します。
func (u *HTTPUploader) UploadJSON(ctx context.Context, data []byte) (string, error) {
	return u.post(ctx, "/upload/json", "application/json", "", data)
}

// UploadFile は画像などのバイナリを /upload/file に POST します。
func (u *HTTPUploader) UploadFile(ctx context.Context, f tokendom.File) (string, error) {
	ct := f.ContentType
	if ct == "" {
		ct = tokendom.ContentTypeFor(f.Name)
	}
	return u.post(ctx, "/upload/file", ct, f.Name, f.Data)
}

func (u *HTTPUploader) post(ctx context.Context, path, contentType, fileName string, body []byte) (string, error) {
	if len(body) == 0 {
		return "", ErrEmptyPayload
	}
	if u.baseURL == "" {
		return "", ErrNotConfigured
	}

	log.Debugf("POST %s%s len=%d content-type=%s", u.baseURL, path, len(body), contentType)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", xerrors.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	if fileName != "" {
		req.Header.Set("X-File-Name", fileName)
	}
	if u.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+u.apiKey)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return "", xerrors.Errorf("upload to %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warnf("upload FAILED path=%s status=%d body=%s", path, resp.StatusCode, string(respBody))
		return "", xerrors.Errorf("upload failed: status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	uri, err := u.uriFromResponse(respBody)
	if err != nil {
		return "", err
	}

	log.Infof("uploaded %s uri=%s", path, uri)
	return uri, nil
}

// uriFromResponse は {"uri": "..."} を優先し、無ければ Irys の receipt
// {"id": "..."} から gateway URL を組み立てます。
func (u *HTTPUploader) uriFromResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", xerrors.Errorf("decode upload response: invalid json: %s", string(body))
	}
	res := gjson.ParseBytes(body)

	if uri := strings.TrimSpace(res.Get("uri").String()); uri != "" {
		return uri, nil
	}
	if id := strings.TrimSpace(res.Get("id").String()); id != "" {
		return u.gatewayURL + "/" + id, nil
	}
	return "", xerrors.Errorf("%w: %s", ErrEmptyURI, string(body))
}
