// Package ownable implements two-step ownership transfer.
package ownable

import (
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	ErrNotOwner          = errors.New("caller is not the owner")
	ErrNotPendingOwner   = errors.New("caller is not the pending owner")
	ErrNoPendingTransfer = errors.New("no ownership transfer is pending")
)

// Ownership is a value type; callers persist it after a successful mutation.
type Ownership struct {
	Owner        solana.PublicKey
	PendingOwner *solana.PublicKey
}

func New(owner solana.PublicKey) Ownership {
	return Ownership{Owner: owner}
}

func (o Ownership) AssertOwner(candidate solana.PublicKey) error {
	if !candidate.Equals(o.Owner) {
		return ErrNotOwner
	}
	return nil
}

func (o Ownership) HasPendingTransfer() bool {
	return o.PendingOwner != nil
}

// TransferOwnership proposes newOwner, replacing any earlier proposal.
func (o *Ownership) TransferOwnership(caller, newOwner solana.PublicKey) error {
	if err := o.AssertOwner(caller); err != nil {
		return err
	}

	pending := newOwner
	o.PendingOwner = &pending
	return nil
}

func (o *Ownership) AcceptOwnership(caller solana.PublicKey) error {
	if !o.HasPendingTransfer() {
		return ErrNoPendingTransfer
	}
	if !caller.Equals(*o.PendingOwner) {
		return ErrNotPendingOwner
	}

	o.Owner = *o.PendingOwner
	o.PendingOwner = nil
	return nil
}

func (o *Ownership) CancelTransfer(caller solana.PublicKey) error {
	if err := o.AssertOwner(caller); err != nil {
		return err
	}
	if !o.HasPendingTransfer() {
		return ErrNoPendingTransfer
	}

	o.PendingOwner = nil
	return nil
}
