package router

import (
	"context"

	"github.com/boundless-xyz/risc0-solana/internal/seal"
)

// Reader exposes committed router state. Lookups of missing records
// return ErrNotFound.
type Reader interface {
	Router(ctx context.Context) (VerifierRouter, error)
	Entry(ctx context.Context, selector seal.Selector) (VerifierEntry, error)
	Entries(ctx context.Context) ([]VerifierEntry, error)
	Events(ctx context.Context) ([]EmergencyStopEvent, error)
}

// Tx is a unit of work. Reads observe the transaction's own writes.
type Tx interface {
	Reader
	PutRouter(ctx context.Context, router VerifierRouter) error
	CreateEntry(ctx context.Context, entry VerifierEntry) error
	UpdateEntry(ctx context.Context, entry VerifierEntry) error
	DeleteEntry(ctx context.Context, selector seal.Selector) error
	IsRetired(ctx context.Context, selector seal.Selector) (bool, error)
	RetireSelector(ctx context.Context, selector seal.Selector) error
	AppendEvent(ctx context.Context, event EmergencyStopEvent) error
}

// Store persists router state. Transaction commits every write made by fn
// when fn returns nil and discards all of them otherwise.
type Store interface {
	Reader
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}
