package solana

import (
	"encoding/binary"
	"testing"

	"github.com/blocto/solana-go-sdk/client"
	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/program/metaplex/token_metadata"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCreateMintInstructions(t *testing.T) {
	payer := types.NewAccount()
	mint := types.NewAccount()

	ins := buildCreateMintInstructions(payer.PublicKey, mint.PublicKey, payer.PublicKey, &payer.PublicKey, 2, 1_461_600)
	require.Len(t, ins, 2)

	assert.Equal(t, common.SystemProgramID, ins[0].ProgramID)
	assert.Equal(t, payer.PublicKey, ins[0].Accounts[0].PubKey)
	assert.Equal(t, mint.PublicKey, ins[0].Accounts[1].PubKey)
	assert.True(t, ins[0].Accounts[1].IsSigner)

	assert.Equal(t, common.TokenProgramID, ins[1].ProgramID)
	assert.Equal(t, mint.PublicKey, ins[1].Accounts[0].PubKey)
}

func TestBuildCreateMetadataInstruction(t *testing.T) {
	payer := types.NewAccount()
	mint := types.NewAccount()

	pda, err := MetadataAddress(mint.PublicKey)
	require.NoError(t, err)

	again, err := MetadataAddress(mint.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, pda, again)

	ix := buildCreateMetadataInstruction(pda, mint.PublicKey, payer.PublicKey, token_metadata.DataV2{
		Name:   "Pirate",
		Symbol: "PIR",
		Uri:    "https://gateway.irys.xyz/abc",
	}, true)

	assert.Equal(t, common.MetaplexTokenMetaProgramID, ix.ProgramID)
	require.GreaterOrEqual(t, len(ix.Accounts), 5)
	assert.Equal(t, pda, ix.Accounts[0].PubKey)
	assert.Equal(t, mint.PublicKey, ix.Accounts[1].PubKey)
	assert.NotEmpty(t, ix.Data)
}

func TestBuildCreateAssociatedTokenAccountInstruction(t *testing.T) {
	payer := types.NewAccount()
	owner := types.NewAccount()
	mint := types.NewAccount()

	ata, _, err := common.FindAssociatedTokenAddress(owner.PublicKey, mint.PublicKey)
	require.NoError(t, err)

	ix := buildCreateAssociatedTokenAccountInstruction(payer.PublicKey, owner.PublicKey, mint.PublicKey, ata)
	assert.Equal(t, common.SPLAssociatedTokenAccountProgramID, ix.ProgramID)
	assert.Equal(t, payer.PublicKey, ix.Accounts[0].PubKey)
	assert.True(t, ix.Accounts[0].IsSigner)
	assert.Equal(t, ata, ix.Accounts[1].PubKey)
	assert.Equal(t, owner.PublicKey, ix.Accounts[2].PubKey)
	assert.Equal(t, mint.PublicKey, ix.Accounts[3].PubKey)
}

func TestBuildMintToCheckedInstruction(t *testing.T) {
	mint := types.NewAccount().PublicKey
	dest := types.NewAccount().PublicKey
	auth := types.NewAccount().PublicKey

	ix := buildMintToCheckedInstruction(mint, dest, auth, 10_000, 2)
	assert.Equal(t, common.TokenProgramID, ix.ProgramID)
	require.Len(t, ix.Accounts, 3)
	assert.Equal(t, mint, ix.Accounts[0].PubKey)
	assert.Equal(t, dest, ix.Accounts[1].PubKey)
	assert.Equal(t, auth, ix.Accounts[2].PubKey)

	// [instruction=14][amount u64 LE][decimals u8]
	require.Len(t, ix.Data, 10)
	assert.Equal(t, byte(14), ix.Data[0])
	assert.Equal(t, uint64(10_000), binary.LittleEndian.Uint64(ix.Data[1:9]))
	assert.Equal(t, byte(2), ix.Data[9])
}

func tokenAccountData(mint, owner common.PublicKey) []byte {
	data := make([]byte, 165)
	copy(data[0:32], mint.Bytes())
	copy(data[32:64], owner.Bytes())
	binary.LittleEndian.PutUint64(data[64:72], 100)
	data[108] = 1 // initialized
	return data
}

func TestCheckTokenAccount(t *testing.T) {
	mint := types.NewAccount().PublicKey
	owner := types.NewAccount().PublicKey

	assert.ErrorIs(t, checkTokenAccount(client.AccountInfo{}, mint, owner), ErrTokenAccountNotFound)

	ok := client.AccountInfo{Lamports: 2_039_280, Owner: common.TokenProgramID, Data: tokenAccountData(mint, owner)}
	assert.NoError(t, checkTokenAccount(ok, mint, owner))

	wrongProgram := ok
	wrongProgram.Owner = common.SystemProgramID
	assert.ErrorIs(t, checkTokenAccount(wrongProgram, mint, owner), ErrTokenInvalidAccountOwner)

	other := types.NewAccount().PublicKey
	assert.ErrorIs(t, checkTokenAccount(ok, other, owner), ErrTokenInvalidMint)
	assert.ErrorIs(t, checkTokenAccount(ok, mint, other), ErrTokenInvalidOwner)
}

func mintAccountData(authority common.PublicKey, supply uint64, decimals uint8) []byte {
	data := make([]byte, 82)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	copy(data[4:36], authority.Bytes())
	binary.LittleEndian.PutUint64(data[36:44], supply)
	data[44] = decimals
	data[45] = 1
	return data
}

func TestDecodeMintInfo(t *testing.T) {
	mint := types.NewAccount().PublicKey
	auth := types.NewAccount().PublicKey

	info, err := decodeMintInfo(mint, client.AccountInfo{
		Lamports: 1_461_600,
		Owner:    common.TokenProgramID,
		Data:     mintAccountData(auth, 10_000, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, mint.ToBase58(), info.Mint)
	assert.Equal(t, uint8(2), info.Decimals)
	assert.Equal(t, uint64(10_000), info.Supply)
	assert.Equal(t, "100.00", info.UISupply)
	assert.Equal(t, auth.ToBase58(), info.MintAuthority)
	assert.Empty(t, info.FreezeAuthority)

	_, err = decodeMintInfo(mint, client.AccountInfo{})
	assert.ErrorIs(t, err, ErrNotMintAccount)

	_, err = decodeMintInfo(mint, client.AccountInfo{Owner: common.SystemProgramID, Data: []byte{1}})
	assert.ErrorIs(t, err, ErrNotMintAccount)
}

func TestStatusReached(t *testing.T) {
	confirmed := rpc.CommitmentConfirmed
	processed := rpc.CommitmentProcessed

	done, err := statusReached(nil, rpc.CommitmentConfirmed)
	assert.NoError(t, err)
	assert.False(t, done)

	done, err = statusReached(&rpc.SignatureStatus{ConfirmationStatus: &processed}, rpc.CommitmentConfirmed)
	assert.NoError(t, err)
	assert.False(t, done)

	done, err = statusReached(&rpc.SignatureStatus{ConfirmationStatus: &confirmed}, rpc.CommitmentConfirmed)
	assert.NoError(t, err)
	assert.True(t, done)

	done, err = statusReached(&rpc.SignatureStatus{ConfirmationStatus: &confirmed}, rpc.CommitmentFinalized)
	assert.NoError(t, err)
	assert.False(t, done)

	_, err = statusReached(&rpc.SignatureStatus{Err: map[string]any{"InstructionError": []any{0, "Custom"}}}, rpc.CommitmentConfirmed)
	assert.Error(t, err)
}

func TestNeedsAirdrop(t *testing.T) {
	assert.True(t, needsAirdrop(false, false, LamportsPerSOL))
	assert.False(t, needsAirdrop(true, false, LamportsPerSOL))
	assert.False(t, needsAirdrop(false, true, LamportsPerSOL))
	assert.False(t, needsAirdrop(false, false, 0))
}

func TestTrimPaddingAndMask(t *testing.T) {
	assert.Equal(t, "Pirate", trimPadding("Pirate\x00\x00\x00"))
	assert.Equal(t, "5Hue***Gx9s", maskShort("5HueCGU8rMjxEXxiPuD5BDku4MkFqeZyd4dZ1jvhTGx9s"))
	assert.Equal(t, "short", maskShort("short"))
}
