package router

import (
	"fmt"

	"github.com/boundless-xyz/risc0-solana/internal/ownable"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/gagliardetto/solana-go"
)

const (
	routerSeed   = "router"
	verifierSeed = "verifier"
)

type VerifierRouter struct {
	Address   solana.PublicKey
	Ownership ownable.Ownership
}

type VerifierEntry struct {
	Address  solana.PublicKey
	Selector seal.Selector
	Verifier solana.PublicKey
	// Estopped never goes back to false.
	Estopped bool
}

// RouterAddress derives the singleton router account from the program ID.
func RouterAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(routerSeed)}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive router address: %w", err)
	}
	return addr, nil
}

// EntryAddress derives the account of the entry stored under selector.
func EntryAddress(programID solana.PublicKey, selector seal.Selector) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(verifierSeed), selector[:]}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive entry address for %s: %w", selector, err)
	}
	return addr, nil
}
