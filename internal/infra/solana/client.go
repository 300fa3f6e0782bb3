// internal/infra/solana/client.go
package solana

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	usecase "github.com/freddyal0x01/metaplex-sol-token-minter/internal/application/usecase"
)

var log = logging.Logger("solana")

var (
	ErrNotConfigured     = xerrors.New("solana: client not configured")
	ErrTransactionFailed = xerrors.New("solana: transaction failed")
	ErrConfirmTimeout    = xerrors.New("solana: transaction not confirmed before timeout")
)

const defaultPollInterval = 500 * time.Millisecond

// Client はチェーン操作 (tx の組み立て / 送信 / confirm 待ち) をまとめたものです。
// usecase.MintUsecase からは usecase.ChainPort として利用されます。
type Client struct {
	RPC     *client.Client
	Cluster Cluster

	Commitment     rpc.Commitment
	ConfirmTimeout time.Duration
	PollInterval   time.Duration

	// EnsureFunded 用
	SkipAirdrop        bool
	MinBalanceLamports uint64
	AirdropLamports    uint64
}

var _ usecase.ChainPort = (*Client)(nil)

// NewClient は cluster のエンドポイントに接続する Client を作ります。
func NewClient(cluster Cluster, commitment rpc.Commitment, confirmTimeout time.Duration) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	if confirmTimeout <= 0 {
		confirmTimeout = 90 * time.Second
	}
	return &Client{
		RPC:            client.NewClient(cluster.Endpoint()),
		Cluster:        cluster,
		Commitment:     commitment,
		ConfirmTimeout: confirmTimeout,
		PollInterval:   defaultPollInterval,
	}
}

// sendAndConfirm は最新の blockhash で tx を組み立て、署名・送信し、
// Commitment に到達するまで待ちます。
func (c *Client) sendAndConfirm(
	ctx context.Context,
	feePayer common.PublicKey,
	signers []types.Account,
	instructions []types.Instruction,
) (string, error) {
	if c == nil || c.RPC == nil {
		return "", ErrNotConfigured
	}

	recent, err := c.RPC.GetLatestBlockhash(ctx)
	if err != nil {
		return "", xerrors.Errorf("GetLatestBlockhash: %w", err)
	}

	tx, err := buildTransaction(feePayer, recent.Blockhash, signers, instructions)
	if err != nil {
		return "", err
	}

	sig, err := c.RPC.SendTransaction(ctx, tx)
	if err != nil {
		return "", xerrors.Errorf("SendTransaction: %w", err)
	}
	log.Debugf("submitted tx=%s instructions=%d", maskShort(sig), len(instructions))

	if err := c.waitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

func buildTransaction(
	feePayer common.PublicKey,
	recentBlockhash string,
	signers []types.Account,
	instructions []types.Instruction,
) (types.Transaction, error) {
	tx, err := types.NewTransaction(types.NewTransactionParam{
		Signers: signers,
		Message: types.NewMessage(types.NewMessageParam{
			FeePayer:        feePayer,
			RecentBlockhash: recentBlockhash,
			Instructions:    instructions,
		}),
	})
	if err != nil {
		return types.Transaction{}, xerrors.Errorf("NewTransaction: %w", err)
	}
	return tx, nil
}

// waitForConfirmation polls the signature status until the configured
// commitment is reached.
func (c *Client) waitForConfirmation(ctx context.Context, sig string) error {
	timeout := c.ConfirmTimeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		st, err := c.RPC.GetSignatureStatus(ctx, sig)
		if err != nil {
			// RPC の一時的なエラーは次の poll で再確認する
			log.Debugf("GetSignatureStatus tx=%s err=%v", maskShort(sig), err)
		} else {
			done, serr := statusReached(st, c.Commitment)
			if serr != nil {
				return xerrors.Errorf("%w: tx=%s: %v", ErrTransactionFailed, sig, serr)
			}
			if done {
				log.Debugf("confirmed tx=%s commitment=%s", maskShort(sig), c.Commitment)
				return nil
			}
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return xerrors.Errorf("%w: tx=%s after %s", ErrConfirmTimeout, sig, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// statusReached reports whether st satisfies want. A non-nil Err in the
// status means the transaction landed but failed.
func statusReached(st *rpc.SignatureStatus, want rpc.Commitment) (bool, error) {
	if st == nil {
		return false, nil
	}
	if st.Err != nil {
		return false, xerrors.Errorf("%v", st.Err)
	}
	if st.ConfirmationStatus == nil {
		return false, nil
	}
	return commitmentRank(*st.ConfirmationStatus) >= commitmentRank(want), nil
}

// accountExists は GetAccountInfo の結果からアカウントの有無を判定します。
func accountExists(info client.AccountInfo) bool {
	return info.Lamports > 0 || len(info.Data) > 0
}

// isAccountNotFound は RPC エラーメッセージから「存在しない」系を判定します。
func isAccountNotFound(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") ||
		strings.Contains(msg, "could not find account") ||
		strings.Contains(msg, "account does not exist")
}

func maskShort(s string) string {
	t := strings.TrimSpace(s)
	if t == "" {
		return ""
	}
	if len(t) <= 10 {
		return t
	}
	return t[:4] + "***" + t[len(t)-4:]
}
