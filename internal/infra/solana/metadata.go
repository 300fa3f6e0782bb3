// internal/infra/solana/metadata.go
package solana

import (
	"context"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/types"
	"golang.org/x/xerrors"
)

// MetadataAddress は mint に対応する Metaplex metadata PDA を返します。
func MetadataAddress(mint common.PublicKey) (common.PublicKey, error) {
	pda, err := token_metadata.GetTokenMetaPubkey(mint)
	if err != nil {
		return common.PublicKey{}, xerrors.Errorf("GetTokenMetaPubkey: %w", err)
	}
	return pda, nil
}

// CreateMetadataAccount は CreateMetadataAccountV3 を送信します。
// payer が mint authority / update authority を兼ねます。
func (c *Client) CreateMetadataAccount(
	ctx context.Context,
	payer types.Account,
	mint common.PublicKey,
	data token_metadata.DataV2,
	isMutable bool,
) (common.PublicKey, string, error) {
	metadata, err := MetadataAddress(mint)
	if err != nil {
		return common.PublicKey{}, "", err
	}

	ix := buildCreateMetadataInstruction(metadata, mint, payer.PublicKey, data, isMutable)

	sig, err := c.sendAndConfirm(ctx, payer.PublicKey, []types.Account{payer}, []types.Instruction{ix})
	if err != nil {
		return metadata, sig, err
	}

	log.Infof("created metadata=%s mint=%s tx=%s", metadata.ToBase58(), mint.ToBase58(), maskShort(sig))
	return metadata, sig, nil
}

func buildCreateMetadataInstruction(
	metadata, mint, authority common.PublicKey,
	data token_metadata.DataV2,
	isMutable bool,
) types.Instruction {
	return token_metadata.CreateMetadataAccountV3(token_metadata.CreateMetadataAccountV3Param{
		Metadata:                metadata,
		Mint:                    mint,
		MintAuthority:           authority,
		UpdateAuthority:         authority,
		Payer:                   authority,
		UpdateAuthorityIsSigner: true,
		IsMutable:               isMutable,
		Data:                    data,
		CollectionDetails:       nil,
	})
}
