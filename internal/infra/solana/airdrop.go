// internal/infra/solana/airdrop.go
package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"golang.org/x/xerrors"
)

const LamportsPerSOL uint64 = 1_000_000_000

var ErrAirdropOnMainnet = xerrors.New("solana: airdrop is not available on mainnet-beta")

// Balance returns the lamport balance of addr.
func (c *Client) Balance(ctx context.Context, addr common.PublicKey) (uint64, error) {
	if c == nil || c.RPC == nil {
		return 0, ErrNotConfigured
	}
	bal, err := c.RPC.GetBalance(ctx, addr.ToBase58())
	if err != nil {
		return 0, xerrors.Errorf("GetBalance: %w", err)
	}
	return bal, nil
}

// Airdrop は devnet / testnet / localnet の faucet から lamports を要求し、
// confirm まで待ちます。
func (c *Client) Airdrop(ctx context.Context, to common.PublicKey, lamports uint64) (string, error) {
	if c == nil || c.RPC == nil {
		return "", ErrNotConfigured
	}
	if c.Cluster.IsMainnet() {
		return "", ErrAirdropOnMainnet
	}

	sig, err := c.RPC.RequestAirdrop(ctx, to.ToBase58(), lamports)
	if err != nil {
		return "", xerrors.Errorf("RequestAirdrop: %w", err)
	}
	if err := c.waitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}

	log.Infof("airdropped lamports=%d to=%s tx=%s", lamports, to.ToBase58(), maskShort(sig))
	return sig, nil
}

// EnsureFunded は残高が MinBalanceLamports を下回っていれば airdrop します。
// mainnet-beta と SkipAirdrop=true の場合は何もしません。
func (c *Client) EnsureFunded(ctx context.Context, owner common.PublicKey) error {
	if c == nil || c.RPC == nil {
		return ErrNotConfigured
	}
	if !needsAirdrop(c.SkipAirdrop, c.Cluster.IsMainnet(), c.MinBalanceLamports) {
		return nil
	}

	bal, err := c.Balance(ctx, owner)
	if err != nil {
		return err
	}
	if bal >= c.MinBalanceLamports {
		log.Debugf("balance ok owner=%s lamports=%d", maskShort(owner.ToBase58()), bal)
		return nil
	}

	amount := c.AirdropLamports
	if amount == 0 {
		amount = LamportsPerSOL
	}
	log.Infof("balance %d < %d, requesting airdrop of %d lamports", bal, c.MinBalanceLamports, amount)

	if _, err := c.Airdrop(ctx, owner, amount); err != nil {
		return xerrors.Errorf("airdrop: %w", err)
	}
	return nil
}

func needsAirdrop(skip, mainnet bool, minBalance uint64) bool {
	return !skip && !mainnet && minBalance > 0
}
