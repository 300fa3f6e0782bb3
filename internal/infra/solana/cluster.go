// internal/infra/solana/cluster.go
package solana

import (
	"net/url"
	"strings"

	"github.com/blocto/solana-go-sdk/rpc"
	"golang.org/x/xerrors"
)

const explorerBaseURL = "https://explorer.solana.com"

// Cluster は接続先ネットワークと explorer のリンク生成を担います。
type Cluster struct {
	name     string
	endpoint string
}

// NewCluster resolves the RPC endpoint for a cluster name.
// rpcURL が空でなければ既定のエンドポイントより優先します。
func NewCluster(name, rpcURL string) (Cluster, error) {
	name = strings.TrimSpace(name)
	rpcURL = strings.TrimSpace(rpcURL)

	var def string
	switch name {
	case "devnet":
		def = rpc.DevnetRPCEndpoint
	case "testnet":
		def = rpc.TestnetRPCEndpoint
	case "mainnet-beta":
		def = rpc.MainnetRPCEndpoint
	case "localnet":
		def = rpc.LocalnetRPCEndpoint
	case "custom":
		if rpcURL == "" {
			return Cluster{}, xerrors.Errorf("solana: cluster=custom requires an rpc url")
		}
	default:
		return Cluster{}, xerrors.Errorf("solana: unknown cluster %q", name)
	}

	ep := rpcURL
	if ep == "" {
		ep = def
	}
	return Cluster{name: name, endpoint: ep}, nil
}

func (c Cluster) Name() string     { return c.name }
func (c Cluster) Endpoint() string { return c.endpoint }

// IsMainnet は airdrop できないクラスタかどうか。
func (c Cluster) IsMainnet() bool { return c.name == "mainnet-beta" }

// AddressURL returns the explorer page of an account.
func (c Cluster) AddressURL(address string) string {
	return explorerBaseURL + "/address/" + strings.TrimSpace(address) + c.query()
}

// TxURL returns the explorer page of a transaction.
func (c Cluster) TxURL(signature string) string {
	return explorerBaseURL + "/tx/" + strings.TrimSpace(signature) + c.query()
}

func (c Cluster) query() string {
	switch c.name {
	case "mainnet-beta":
		return ""
	case "devnet", "testnet":
		return "?cluster=" + c.name
	default:
		// localnet / custom は explorer 側に RPC を教える
		return "?cluster=custom&customUrl=" + url.QueryEscape(c.endpoint)
	}
}

// ParseCommitment は設定文字列を rpc.Commitment に変換します。
func ParseCommitment(s string) (rpc.Commitment, error) {
	switch strings.TrimSpace(s) {
	case "processed":
		return rpc.CommitmentProcessed, nil
	case "", "confirmed":
		return rpc.CommitmentConfirmed, nil
	case "finalized":
		return rpc.CommitmentFinalized, nil
	default:
		return "", xerrors.Errorf("solana: unknown commitment %q", s)
	}
}

func commitmentRank(c rpc.Commitment) int {
	switch c {
	case rpc.CommitmentProcessed:
		return 1
	case rpc.CommitmentConfirmed:
		return 2
	case rpc.CommitmentFinalized:
		return 3
	}
	return 0
}
