package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/whooooop/agent007/internal/solana"
)

const (
	testSigner = "SignerWallet1111111111111111111111111111111"
	testPool   = "PoolAuthority111111111111111111111111111111"
	tokenA     = "TokenAMint111111111111111111111111111111111"
	tokenB     = "TokenBMint111111111111111111111111111111111"
)

// buyTransaction models a signer buying tokenA with SOL through a
// pool: the signer's token account gains tokenA, the pool's tokenA
// account shrinks and its wrapped SOL account grows. A tokenB pool
// account is touched but nets to zero.
func buyTransaction() *solana.ParsedTransaction {
	return &solana.ParsedTransaction{
		Signature: "BuySig",
		BlockTime: 1700000000,
		AccountKeys: []solana.AccountKey{
			{Pubkey: testSigner, Signer: true, Writable: true},
			{Pubkey: "SignerTokenAAccount", Writable: true},
			{Pubkey: "PoolTokenAAccount", Writable: true},
			{Pubkey: "PoolSOLAccount", Writable: true},
			{Pubkey: "PoolTokenBAccount", Writable: true},
		},
		PreTokenBalances: []solana.TokenBalance{
			{AccountIndex: 1, Mint: tokenA, Owner: testSigner, Amount: "0"},
			{AccountIndex: 2, Mint: tokenA, Owner: testPool, Amount: "9000000000000"},
			{AccountIndex: 3, Mint: solana.WrappedSOLMint, Owner: testPool, Amount: "5000000000"},
			{AccountIndex: 4, Mint: tokenB, Owner: testPool, Amount: "777"},
		},
		PostTokenBalances: []solana.TokenBalance{
			{AccountIndex: 1, Mint: tokenA, Owner: testSigner, Amount: "2773565633162"},
			{AccountIndex: 2, Mint: tokenA, Owner: testPool, Amount: "6226434366838"},
			{AccountIndex: 3, Mint: solana.WrappedSOLMint, Owner: testPool, Amount: "5260000000"},
			{AccountIndex: 4, Mint: tokenB, Owner: testPool, Amount: "777"},
		},
	}
}

func TestDetect_Buy(t *testing.T) {
	info := Detect(buyTransaction(), testSigner)
	require.NotNil(t, info)

	assert.Equal(t, tokenA, info.TokenIn.Mint)
	assert.Equal(t, "2773565633162", info.TokenIn.Amount)
	assert.Equal(t, solana.WrappedSOLMint, info.TokenOut.Mint)
	assert.Equal(t, "260000000", info.TokenOut.Amount)
}

func TestDetect_Sell(t *testing.T) {
	tx := buyTransaction()
	// Reverse the flow: signer gives up tokenA, the pool pays SOL.
	tx.PreTokenBalances, tx.PostTokenBalances = tx.PostTokenBalances, tx.PreTokenBalances

	info := Detect(tx, testSigner)
	require.NotNil(t, info)

	assert.Equal(t, solana.WrappedSOLMint, info.TokenIn.Mint)
	assert.Equal(t, "260000000", info.TokenIn.Amount)
	assert.Equal(t, tokenA, info.TokenOut.Mint)
	assert.Equal(t, "2773565633162", info.TokenOut.Amount)
}

func TestDetect_MissingPreBalanceCountsAsZero(t *testing.T) {
	tx := buyTransaction()
	// A freshly created token account has no pre entry.
	tx.PreTokenBalances = tx.PreTokenBalances[1:]

	info := Detect(tx, testSigner)
	require.NotNil(t, info)
	assert.Equal(t, "2773565633162", info.TokenIn.Amount)
}

func TestDetect_PureTransferIsNotASwap(t *testing.T) {
	tx := &solana.ParsedTransaction{
		AccountKeys: []solana.AccountKey{
			{Pubkey: testSigner, Signer: true},
			{Pubkey: "SignerTokenAAccount"},
			{Pubkey: "RecipientTokenAAccount"},
		},
		PreTokenBalances: []solana.TokenBalance{
			{AccountIndex: 1, Mint: tokenA, Owner: testSigner, Amount: "500"},
			{AccountIndex: 2, Mint: tokenA, Owner: "Recipient", Amount: "0"},
		},
		PostTokenBalances: []solana.TokenBalance{
			{AccountIndex: 1, Mint: tokenA, Owner: testSigner, Amount: "0"},
			{AccountIndex: 2, Mint: tokenA, Owner: "Recipient", Amount: "500"},
		},
	}

	assert.Nil(t, Detect(tx, testSigner))
}

func TestDetect_SingleOtherMintIsNotASwap(t *testing.T) {
	tx := &solana.ParsedTransaction{
		AccountKeys: []solana.AccountKey{
			{Pubkey: testSigner, Signer: true},
			{Pubkey: "SignerTokenAAccount"},
			{Pubkey: "PoolSOLAccount"},
		},
		PreTokenBalances: []solana.TokenBalance{
			{AccountIndex: 1, Mint: tokenA, Owner: testSigner, Amount: "1000"},
			{AccountIndex: 2, Mint: solana.WrappedSOLMint, Owner: testPool, Amount: "0"},
		},
		PostTokenBalances: []solana.TokenBalance{
			{AccountIndex: 1, Mint: tokenA, Owner: testSigner, Amount: "0"},
			{AccountIndex: 2, Mint: solana.WrappedSOLMint, Owner: testPool, Amount: "9"},
		},
	}

	assert.Nil(t, Detect(tx, testSigner))
}

func TestDetect_BurnedMintExcluded(t *testing.T) {
	tx := buyTransaction()
	// A third pool mint changes, which would break the swap shape,
	// but it is consumed by a burn and therefore ignored.
	burnMint := "BurnedLPMint1111111111111111111111111111111"
	tx.AccountKeys = append(tx.AccountKeys, solana.AccountKey{Pubkey: "PoolLPAccount"})
	tx.PreTokenBalances = append(tx.PreTokenBalances,
		solana.TokenBalance{AccountIndex: 5, Mint: burnMint, Owner: testPool, Amount: "100"})
	tx.PostTokenBalances = append(tx.PostTokenBalances,
		solana.TokenBalance{AccountIndex: 5, Mint: burnMint, Owner: testPool, Amount: "0"})
	tx.InnerInstructions = []solana.ParsedInstruction{
		{Program: "spl-token", Type: "burn", Info: solana.InstructionInfo{Mint: burnMint, Account: "PoolLPAccount"}},
	}

	info := Detect(tx, testSigner)
	require.NotNil(t, info)
	assert.Equal(t, solana.WrappedSOLMint, info.TokenOut.Mint)
}

func TestDetect_MintToForeignAccountExcluded(t *testing.T) {
	tx := buyTransaction()
	lpMint := "LPMint1111111111111111111111111111111111111"
	tx.AccountKeys = append(tx.AccountKeys, solana.AccountKey{Pubkey: "FeeCollectorLPAccount"})
	tx.PreTokenBalances = append(tx.PreTokenBalances,
		solana.TokenBalance{AccountIndex: 5, Mint: lpMint, Owner: "FeeCollector", Amount: "0"})
	tx.PostTokenBalances = append(tx.PostTokenBalances,
		solana.TokenBalance{AccountIndex: 5, Mint: lpMint, Owner: "FeeCollector", Amount: "10"})
	tx.InnerInstructions = []solana.ParsedInstruction{
		{Program: "spl-token", Type: "mintTo", Info: solana.InstructionInfo{Mint: lpMint, Account: "FeeCollectorLPAccount"}},
	}

	info := Detect(tx, testSigner)
	require.NotNil(t, info)
	assert.Equal(t, solana.WrappedSOLMint, info.TokenOut.Mint)
}

func TestDetect_MintToSignerAccountNotExcluded(t *testing.T) {
	tx := buyTransaction()
	// Minting to an account the signer owns keeps the mint in play and
	// breaks the two-mint shape.
	lpMint := "LPMint1111111111111111111111111111111111111"
	tx.AccountKeys = append(tx.AccountKeys, solana.AccountKey{Pubkey: "SignerLPAccount"})
	tx.PreTokenBalances = append(tx.PreTokenBalances,
		solana.TokenBalance{AccountIndex: 5, Mint: lpMint, Owner: "OtherOwner", Amount: "0"})
	tx.PostTokenBalances = append(tx.PostTokenBalances,
		solana.TokenBalance{AccountIndex: 5, Mint: lpMint, Owner: "OtherOwner", Amount: "10"})

	// SignerLPAccount appears as a signer-owned account via another
	// balance entry.
	tx.AccountKeys = append(tx.AccountKeys, solana.AccountKey{Pubkey: "SignerLPAccount2"})
	tx.InnerInstructions = []solana.ParsedInstruction{
		{Program: "spl-token", Type: "mintTo", Info: solana.InstructionInfo{Mint: lpMint, Account: "SignerTokenAAccount"}},
	}

	assert.Nil(t, Detect(tx, testSigner))
}

func TestDetect_NilAndEmptyInputs(t *testing.T) {
	assert.Nil(t, Detect(nil, testSigner))
	assert.Nil(t, Detect(buyTransaction(), ""))
	assert.Nil(t, Detect(&solana.ParsedTransaction{}, testSigner))
}
