package solana

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}

// ParsedTransaction carries the parts of a jsonParsed transaction that
// swap reconstruction needs.
type ParsedTransaction struct {
	Signature         string
	Slot              int64
	BlockTime         int64 // Unix timestamp (seconds)
	AccountKeys       []AccountKey
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
	InnerInstructions []ParsedInstruction
	Err               interface{}
}

// Signer returns the transaction's fee payer, or "" when the account
// list carries no signer.
func (t *ParsedTransaction) Signer() string {
	for _, k := range t.AccountKeys {
		if k.Signer {
			return k.Pubkey
		}
	}
	return ""
}

// AccountKey is one entry of the transaction's account list.
type AccountKey struct {
	Pubkey   string
	Signer   bool
	Writable bool
}

// TokenBalance is one entry of a pre/post token balance snapshot.
// Amount is an unsigned base-unit decimal string.
type TokenBalance struct {
	AccountIndex int
	Mint         string
	Owner        string
	Amount       string
	Decimals     int
}

// ParsedInstruction is one parsed inner instruction, flattened across
// instruction groups.
type ParsedInstruction struct {
	Program string
	Type    string
	Info    InstructionInfo
}

// InstructionInfo carries the parsed fields shared by the instruction
// kinds the detector inspects (burn, mintTo).
type InstructionInfo struct {
	Mint    string
	Account string
	Amount  string
}

// TokenSupply from getTokenSupply.
type TokenSupply struct {
	Amount   string
	Decimals int
}

// AccountInfo represents Solana account information. Data is base64
// encoded.
type AccountInfo struct {
	Lamports   uint64
	Owner      string
	Data       string
	Executable bool
	RentEpoch  uint64
}
