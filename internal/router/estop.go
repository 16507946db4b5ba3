package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/gagliardetto/solana-go"
)

type estopOptions struct {
	verifier *solana.PublicKey
}

type EstopOption func(*estopOptions)

// ExpectVerifier makes the stop fail with ErrInvalidVerifier unless the
// entry still points at verifier.
func ExpectVerifier(verifier solana.PublicKey) EstopOption {
	return func(o *estopOptions) {
		o.verifier = &verifier
	}
}

// EmergencyStopByOwner permanently disables the entry under selector.
func (r *Router) EmergencyStopByOwner(ctx context.Context, caller solana.PublicKey, selector seal.Selector, opts ...EstopOption) (EmergencyStopEvent, error) {
	return r.emergencyStop(ctx, caller, selector, opts, func(state VerifierRouter, _ VerifierEntry) (string, error) {
		if err := state.Ownership.AssertOwner(caller); err != nil {
			return "", err
		}
		return ReasonOwnerRevoked, nil
	})
}

// EmergencyStopWithProof lets anyone disable an entry by showing that its
// verifier accepts proof for the null image ID and null journal digest,
// which no honest verifier ever does.
func (r *Router) EmergencyStopWithProof(ctx context.Context, caller solana.PublicKey, selector seal.Selector, proof seal.Proof, opts ...EstopOption) (EmergencyStopEvent, error) {
	return r.emergencyStop(ctx, caller, selector, opts, func(_ VerifierRouter, entry VerifierEntry) (string, error) {
		module, ok := r.programs.Module(entry.Verifier)
		if !ok {
			return "", ErrInvalidVerifier
		}

		var zero [32]byte
		if err := module.Verify(ctx, proof, zero, zero); err != nil {
			return "", fmt.Errorf("proof of exploit rejected: %w", err)
		}
		return ReasonProofOfExploit, nil
	})
}

// estopAuthorizer decides whether caller may stop entry and returns the reason.
type estopAuthorizer func(state VerifierRouter, entry VerifierEntry) (string, error)

func (r *Router) emergencyStop(ctx context.Context, caller solana.PublicKey, selector seal.Selector, opts []EstopOption, authorize estopAuthorizer) (EmergencyStopEvent, error) {
	var o estopOptions
	for _, opt := range opts {
		opt(&o)
	}

	unlock := r.locks.lockEntry(selector)
	defer unlock()

	var event EmergencyStopEvent
	err := r.store.Transaction(ctx, func(tx Tx) error {
		state, err := loadRouter(ctx, tx)
		if err != nil {
			return err
		}

		entry, err := tx.Entry(ctx, selector)
		if errors.Is(err, ErrNotFound) {
			return ErrSelectorDeactivated
		}
		if err != nil {
			return err
		}
		if entry.Estopped {
			return ErrSelectorDeactivated
		}
		if o.verifier != nil && !o.verifier.Equals(entry.Verifier) {
			return ErrInvalidVerifier
		}

		reason, err := authorize(state, entry)
		if err != nil {
			return err
		}

		entry.Estopped = true
		if err := tx.UpdateEntry(ctx, entry); err != nil {
			return err
		}

		event = EmergencyStopEvent{
			Router:      state.Address,
			Selector:    selector,
			Verifier:    entry.Verifier,
			TriggeredBy: caller,
			Reason:      reason,
		}
		return tx.AppendEvent(ctx, event)
	})
	if err != nil {
		r.logger.Warnf("estop of selector %s by %s rejected: %v", selector, caller, err)
		return EmergencyStopEvent{}, err
	}

	r.logger.Warnf("verifier %s under selector %s estopped by %s: %s", event.Verifier, selector, caller, event.Reason)
	return event, nil
}
