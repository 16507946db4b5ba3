package router

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/gagliardetto/solana-go"
)

// VerifierModule checks a proof against an image ID and journal digest.
// Errors are returned to the caller of Dispatch unchanged.
type VerifierModule interface {
	Verify(ctx context.Context, proof seal.Proof, imageID, journalDigest [32]byte) error
}

// AuthorityResolver reports who may upgrade a deployed program.
// A nil key means the program is immutable.
type AuthorityResolver interface {
	UpgradeAuthority(ctx context.Context, program solana.PublicKey) (*solana.PublicKey, error)
}

type deployment struct {
	module    VerifierModule
	authority *solana.PublicKey
}

// ProgramTable maps deployed verifier program IDs to their modules.
type ProgramTable struct {
	mu       sync.RWMutex
	programs map[solana.PublicKey]deployment
}

func NewProgramTable() *ProgramTable {
	return &ProgramTable{programs: make(map[solana.PublicKey]deployment)}
}

// Deploy binds module to id. upgradeAuthority may be nil for an immutable program.
func (t *ProgramTable) Deploy(id solana.PublicKey, module VerifierModule, upgradeAuthority *solana.PublicKey) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var authority *solana.PublicKey
	if upgradeAuthority != nil {
		a := *upgradeAuthority
		authority = &a
	}
	t.programs[id] = deployment{module: module, authority: authority}
}

func (t *ProgramTable) Module(id solana.PublicKey) (VerifierModule, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.programs[id]
	return d.module, ok
}

// Programs lists the deployed program IDs in byte order.
func (t *ProgramTable) Programs() []solana.PublicKey {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]solana.PublicKey, 0, len(t.programs))
	for id := range t.programs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

// UpgradeAuthority answers from the upgrade authorities given to Deploy.
func (t *ProgramTable) UpgradeAuthority(_ context.Context, program solana.PublicKey) (*solana.PublicKey, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	d, ok := t.programs[program]
	if !ok {
		return nil, ErrInvalidVerifier
	}
	return d.authority, nil
}
