// internal/infra/solana/inspect.go
package solana

import (
	"context"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/program/token"
	"github.com/shopspring/decimal"
	"golang.org/x/xerrors"

	tokendom "github.com/freddyal0x01/metaplex-sol-token-minter/internal/domain/token"
)

var ErrNotMintAccount = xerrors.New("solana: not an spl token mint")

// MintInfo は mint と Metaplex metadata の読み取り結果です。
type MintInfo struct {
	Mint            string `json:"mint"`
	Decimals        uint8  `json:"decimals"`
	Supply          uint64 `json:"supply"`
	UISupply        string `json:"uiSupply"`
	MintAuthority   string `json:"mintAuthority,omitempty"`
	FreezeAuthority string `json:"freezeAuthority,omitempty"`

	MetadataAccount string `json:"metadataAccount,omitempty"`
	Name            string `json:"name,omitempty"`
	Symbol          string `json:"symbol,omitempty"`
	URI             string `json:"uri,omitempty"`
	UpdateAuthority string `json:"updateAuthority,omitempty"`
	IsMutable       bool   `json:"isMutable"`

	OffChain *tokendom.OffchainMetadata `json:"offChain,omitempty"`
}

// InspectMint は mint アカウントと metadata PDA を読み取ります。
// fetchOffChain=true の場合は metadata URI の JSON も取得します (失敗は無視)。
func (c *Client) InspectMint(ctx context.Context, mint common.PublicKey, fetchOffChain bool) (*MintInfo, error) {
	if c == nil || c.RPC == nil {
		return nil, ErrNotConfigured
	}

	resp, err := c.RPC.GetAccountInfoWithConfig(ctx, mint.ToBase58(), client.GetAccountInfoConfig{
		Commitment: c.Commitment,
	})
	if err != nil {
		return nil, xerrors.Errorf("GetAccountInfoWithConfig mint=%s: %w", mint.ToBase58(), err)
	}

	info, err := decodeMintInfo(mint, resp)
	if err != nil {
		return nil, err
	}

	metaPDA, err := MetadataAddress(mint)
	if err != nil {
		return nil, err
	}
	info.MetadataAccount = metaPDA.ToBase58()

	metaResp, err := c.RPC.GetAccountInfoWithConfig(ctx, metaPDA.ToBase58(), client.GetAccountInfoConfig{
		Commitment: c.Commitment,
	})
	if err != nil {
		return nil, xerrors.Errorf("GetAccountInfoWithConfig metadata=%s: %w", metaPDA.ToBase58(), err)
	}
	if len(metaResp.Data) == 0 {
		// metadata 未作成
		info.MetadataAccount = ""
		return info, nil
	}

	if err := applyMetadata(info, metaResp.Data); err != nil {
		return nil, err
	}

	if fetchOffChain && info.URI != "" {
		off, err := fetchOffchainMetadata(ctx, info.URI)
		if err != nil {
			log.Warnf("fetch off-chain metadata uri=%s: %v", info.URI, err)
		} else {
			info.OffChain = off
		}
	}
	return info, nil
}

func decodeMintInfo(mint common.PublicKey, resp client.AccountInfo) (*MintInfo, error) {
	if len(resp.Data) == 0 {
		return nil, xerrors.Errorf("%w: %s has no data", ErrNotMintAccount, mint.ToBase58())
	}
	if resp.Owner != common.TokenProgramID {
		return nil, xerrors.Errorf("%w: %s owned by %s", ErrNotMintAccount, mint.ToBase58(), resp.Owner.ToBase58())
	}
	if len(resp.Data) < int(token.MintAccountSize) {
		return nil, xerrors.Errorf("%w: %s data length %d", ErrNotMintAccount, mint.ToBase58(), len(resp.Data))
	}

	m, err := token.MintAccountFromData(resp.Data[:token.MintAccountSize])
	if err != nil {
		return nil, xerrors.Errorf("MintAccountFromData: %w", err)
	}

	info := &MintInfo{
		Mint:     mint.ToBase58(),
		Decimals: m.Decimals,
		Supply:   m.Supply,
		UISupply: decimal.NewFromBigInt(new(big.Int).SetUint64(m.Supply), -int32(m.Decimals)).StringFixed(int32(m.Decimals)),
	}
	if m.MintAuthority != nil {
		info.MintAuthority = m.MintAuthority.ToBase58()
	}
	if m.FreezeAuthority != nil {
		info.FreezeAuthority = m.FreezeAuthority.ToBase58()
	}
	return info, nil
}

func applyMetadata(info *MintInfo, data []byte) error {
	md, err := token_metadata.MetadataDeserialize(data)
	if err != nil {
		return xerrors.Errorf("MetadataDeserialize: %w", err)
	}
	// on-chain の文字列は固定長で \x00 埋めされている
	info.Name = trimPadding(md.Data.Name)
	info.Symbol = trimPadding(md.Data.Symbol)
	info.URI = trimPadding(md.Data.Uri)
	info.UpdateAuthority = md.UpdateAuthority.ToBase58()
	info.IsMutable = md.IsMutable
	return nil
}

func trimPadding(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

var offchainHTTPClient = &http.Client{Timeout: 10 * time.Second}

func fetchOffchainMetadata(ctx context.Context, uri string) (*tokendom.OffchainMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := offchainHTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, xerrors.Errorf("status=%d", resp.StatusCode)
	}

	var off tokendom.OffchainMetadata
	if err := json.Unmarshal(body, &off); err != nil {
		return nil, xerrors.Errorf("decode json: %w", err)
	}
	return &off, nil
}
