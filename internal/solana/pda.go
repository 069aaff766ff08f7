package solana

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Well-known program and mint addresses.
const (
	TokenProgram           = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	AssociatedTokenProgram = "ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL"
	MetadataProgram        = "metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s"
	WrappedSOLMint         = "So11111111111111111111111111111111111111112"
)

var errNoViableBump = errors.New("unable to find a viable program address bump")

// FindProgramAddress derives the canonical program-derived address for
// the given seeds, scanning bump seeds from 255 downward until the
// candidate hash falls off the ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID string) (string, error) {
	program, err := base58.Decode(programID)
	if err != nil {
		return "", fmt.Errorf("decode program id: %w", err)
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		for _, seed := range seeds {
			h.Write(seed)
		}
		h.Write([]byte{byte(bump)})
		h.Write(program)
		h.Write([]byte("ProgramDerivedAddress"))
		candidate := h.Sum(nil)

		if !isOnCurve(candidate) {
			return base58.Encode(candidate), nil
		}
	}

	return "", errNoViableBump
}

// isOnCurve reports whether the 32 bytes decode to a valid ed25519
// curve point. Program-derived addresses must not.
func isOnCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

// AssociatedTokenAddress derives the associated token account of
// (owner, mint) under the SPL associated token program.
func AssociatedTokenAddress(owner, mint string) (string, error) {
	ownerKey, err := base58.Decode(owner)
	if err != nil {
		return "", fmt.Errorf("decode owner: %w", err)
	}
	tokenProgram, err := base58.Decode(TokenProgram)
	if err != nil {
		return "", fmt.Errorf("decode token program: %w", err)
	}
	mintKey, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}

	return FindProgramAddress([][]byte{ownerKey, tokenProgram, mintKey}, AssociatedTokenProgram)
}

// MetadataAddress derives the Metaplex metadata account of a mint.
func MetadataAddress(mint string) (string, error) {
	program, err := base58.Decode(MetadataProgram)
	if err != nil {
		return "", fmt.Errorf("decode metadata program: %w", err)
	}
	mintKey, err := base58.Decode(mint)
	if err != nil {
		return "", fmt.Errorf("decode mint: %w", err)
	}

	return FindProgramAddress([][]byte{[]byte("metadata"), program, mintKey}, MetadataProgram)
}
