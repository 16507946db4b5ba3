package chain

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// DefaultInitialOwner is the system program address. It is a placeholder
// no one can sign for and must be overridden in real deployments.
const DefaultInitialOwner = "11111111111111111111111111111111"

type Keys struct {
	ProgramID    solana.PublicKey
	InitialOwner solana.PublicKey
	// Owner signs owner-only requests issued by the CLI; it may be empty.
	Owner solana.PrivateKey
}

type SharedKeys struct {
	Mu   sync.Mutex
	Keys *Keys
}

// LoadKeys resolves the router keys. programID and initialOwner are base58
// keys; ownerKeypairPath points at a solana-keygen file and may be empty.
func LoadKeys(programID, initialOwner, ownerKeypairPath string) (*SharedKeys, error) {
	if programID == "" {
		return nil, errors.New("router program id is required")
	}
	program, err := solana.PublicKeyFromBase58(programID)
	if err != nil {
		return nil, fmt.Errorf("router program id: %w", err)
	}

	if initialOwner == "" {
		initialOwner = DefaultInitialOwner
	}
	owner, err := solana.PublicKeyFromBase58(initialOwner)
	if err != nil {
		return nil, fmt.Errorf("initial owner: %w", err)
	}

	keys := &Keys{ProgramID: program, InitialOwner: owner}
	if ownerKeypairPath != "" {
		keys.Owner, err = solana.PrivateKeyFromSolanaKeygenFile(ownerKeypairPath)
		if err != nil {
			return nil, fmt.Errorf("owner keypair: %w", err)
		}
	}

	return &SharedKeys{Keys: keys}, nil
}

func (k *Keys) UsesDefaultOwner() bool {
	return k.InitialOwner.String() == DefaultInitialOwner
}
