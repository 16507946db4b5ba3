package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/gagliardetto/solana-go"
)

// AddVerifier registers verifier under selector. The router must be the
// verifier program's upgrade authority, so that it alone controls the code
// an entry dispatches to.
func (r *Router) AddVerifier(ctx context.Context, caller solana.PublicKey, selector seal.Selector, verifier solana.PublicKey) (VerifierEntry, error) {
	unlock := r.locks.lockEntry(selector)
	defer unlock()

	address, err := EntryAddress(r.programID, selector)
	if err != nil {
		return VerifierEntry{}, err
	}
	entry := VerifierEntry{Address: address, Selector: selector, Verifier: verifier}

	// Resolved outside the transaction; checked only after the owner check.
	_, known := r.programs.Module(verifier)
	var authority *solana.PublicKey
	var resolveErr error
	if known {
		authority, resolveErr = r.authorities.UpgradeAuthority(ctx, verifier)
	}

	err = r.store.Transaction(ctx, func(tx Tx) error {
		state, err := loadRouter(ctx, tx)
		if err != nil {
			return err
		}
		if err := state.Ownership.AssertOwner(caller); err != nil {
			return err
		}

		if !known {
			return ErrInvalidVerifier
		}
		if resolveErr != nil {
			return fmt.Errorf("resolve upgrade authority of %s: %w", verifier, resolveErr)
		}
		if authority == nil || !authority.Equals(r.address) {
			return ErrVerifierInvalidAuthority
		}

		retired, err := tx.IsRetired(ctx, selector)
		if err != nil {
			return err
		}
		if retired {
			return ErrSelectorDeactivated
		}

		existing, err := tx.Entry(ctx, selector)
		switch {
		case err == nil && existing.Estopped:
			return ErrSelectorDeactivated
		case err == nil:
			return ErrDuplicateActiveSelector
		case !errors.Is(err, ErrNotFound):
			return err
		}

		return tx.CreateEntry(ctx, entry)
	})
	if err != nil {
		r.logger.Warnf("registering verifier %s under selector %s failed: %v", verifier, selector, err)
		return VerifierEntry{}, err
	}

	r.logger.Infof("verifier %s registered under selector %s", verifier, selector)
	return entry, nil
}

// RemoveVerifier deletes an estopped entry. The selector stays retired and
// can never be registered again.
func (r *Router) RemoveVerifier(ctx context.Context, caller solana.PublicKey, selector seal.Selector) error {
	unlock := r.locks.lockEntry(selector)
	defer unlock()

	err := r.store.Transaction(ctx, func(tx Tx) error {
		state, err := loadRouter(ctx, tx)
		if err != nil {
			return err
		}
		if err := state.Ownership.AssertOwner(caller); err != nil {
			return err
		}

		entry, err := tx.Entry(ctx, selector)
		if errors.Is(err, ErrNotFound) {
			return ErrEntryNotFound
		}
		if err != nil {
			return err
		}
		if !entry.Estopped {
			return ErrSelectorActive
		}

		if err := tx.DeleteEntry(ctx, selector); err != nil {
			return err
		}
		return tx.RetireSelector(ctx, selector)
	})
	if err != nil {
		r.logger.Warnf("removing selector %s failed: %v", selector, err)
		return err
	}

	r.logger.Infof("estopped verifier under selector %s removed", selector)
	return nil
}

func (r *Router) Entry(ctx context.Context, selector seal.Selector) (VerifierEntry, error) {
	entry, err := r.store.Entry(ctx, selector)
	if errors.Is(err, ErrNotFound) {
		return entry, ErrEntryNotFound
	}
	return entry, err
}

func (r *Router) Entries(ctx context.Context) ([]VerifierEntry, error) {
	return r.store.Entries(ctx)
}

func (r *Router) Events(ctx context.Context) ([]EmergencyStopEvent, error) {
	return r.store.Events(ctx)
}

// Dispatch verifies proof with the module registered under selector. The
// module's result is returned unmodified.
func (r *Router) Dispatch(ctx context.Context, selector seal.Selector, proof seal.Proof, imageID, journalDigest [32]byte) error {
	entry, err := r.store.Entry(ctx, selector)
	if errors.Is(err, ErrNotFound) {
		return ErrSelectorDeactivated
	}
	if err != nil {
		return err
	}
	if entry.Estopped {
		return ErrSelectorDeactivated
	}

	module, ok := r.programs.Module(entry.Verifier)
	if !ok {
		return ErrInvalidVerifier
	}
	return module.Verify(ctx, proof, imageID, journalDigest)
}

// Verify dispatches a full seal using its leading selector.
func (r *Router) Verify(ctx context.Context, s seal.Seal, imageID, journalDigest [32]byte) error {
	return r.Dispatch(ctx, s.Selector, s.Proof, imageID, journalDigest)
}
