// Package router keeps the registry of verifier programs keyed by selector,
// dispatches proofs to them and lets them be permanently disabled.
package router

import (
	"context"
	"errors"
	"fmt"

	"github.com/boundless-xyz/risc0-solana/internal/ownable"
	"github.com/boundless-xyz/risc0-solana/pkg/logger"
	"github.com/gagliardetto/solana-go"
)

type Config struct {
	ProgramID solana.PublicKey
	// InitialOwner is the only authority allowed to initialize the router.
	InitialOwner solana.PublicKey
	Store        Store
	Programs     *ProgramTable
	// Authorities defaults to Programs.
	Authorities AuthorityResolver
	Logger      *logger.Logger
}

type Router struct {
	programID    solana.PublicKey
	address      solana.PublicKey
	initialOwner solana.PublicKey
	store        Store
	programs     *ProgramTable
	authorities  AuthorityResolver
	locks        *lockTable
	logger       *logger.Logger
}

func New(cfg Config) (*Router, error) {
	if cfg.Store == nil {
		return nil, errors.New("router store is required")
	}
	if cfg.Programs == nil {
		cfg.Programs = NewProgramTable()
	}
	if cfg.Authorities == nil {
		cfg.Authorities = cfg.Programs
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.New()
	}

	address, err := RouterAddress(cfg.ProgramID)
	if err != nil {
		return nil, err
	}

	return &Router{
		programID:    cfg.ProgramID,
		address:      address,
		initialOwner: cfg.InitialOwner,
		store:        cfg.Store,
		programs:     cfg.Programs,
		authorities:  cfg.Authorities,
		locks:        newLockTable(),
		logger:       cfg.Logger.WithField("router", address.String()),
	}, nil
}

func (r *Router) ProgramID() solana.PublicKey { return r.programID }

// Address is the router account; it must be the upgrade authority of
// every registered verifier program.
func (r *Router) Address() solana.PublicKey { return r.address }

func (r *Router) Programs() *ProgramTable { return r.programs }

// Initialize creates the router record owned by the configured initial owner.
func (r *Router) Initialize(ctx context.Context, caller solana.PublicKey) error {
	unlock := r.locks.lockRouter()
	defer unlock()

	if !caller.Equals(r.initialOwner) {
		r.logger.Warnf("initialize attempted by %s", caller)
		return ErrInvalidInitializationAuthority
	}

	err := r.store.Transaction(ctx, func(tx Tx) error {
		_, err := tx.Router(ctx)
		switch {
		case err == nil:
			return ErrAlreadyInitialized
		case !errors.Is(err, ErrNotFound):
			return err
		}

		return tx.PutRouter(ctx, VerifierRouter{
			Address:   r.address,
			Ownership: ownable.New(caller),
		})
	})
	if err != nil {
		return err
	}

	r.logger.Infof("router initialized with owner %s", caller)
	return nil
}

func (r *Router) State(ctx context.Context) (VerifierRouter, error) {
	state, err := r.store.Router(ctx)
	if errors.Is(err, ErrNotFound) {
		return state, ErrNotInitialized
	}
	return state, err
}

func (r *Router) TransferOwnership(ctx context.Context, caller, newOwner solana.PublicKey) error {
	err := r.updateOwnership(ctx, func(o *ownable.Ownership) error {
		return o.TransferOwnership(caller, newOwner)
	})
	if err != nil {
		r.logger.Warnf("ownership transfer by %s rejected: %v", caller, err)
		return err
	}

	r.logger.Infof("ownership transfer to %s proposed by %s", newOwner, caller)
	return nil
}

func (r *Router) AcceptOwnership(ctx context.Context, caller solana.PublicKey) error {
	err := r.updateOwnership(ctx, func(o *ownable.Ownership) error {
		return o.AcceptOwnership(caller)
	})
	if err != nil {
		r.logger.Warnf("ownership acceptance by %s rejected: %v", caller, err)
		return err
	}

	r.logger.Infof("ownership accepted by %s", caller)
	return nil
}

func (r *Router) CancelTransfer(ctx context.Context, caller solana.PublicKey) error {
	err := r.updateOwnership(ctx, func(o *ownable.Ownership) error {
		return o.CancelTransfer(caller)
	})
	if err != nil {
		r.logger.Warnf("transfer cancellation by %s rejected: %v", caller, err)
		return err
	}

	r.logger.Infof("pending ownership transfer cancelled by %s", caller)
	return nil
}

func (r *Router) updateOwnership(ctx context.Context, mutate func(o *ownable.Ownership) error) error {
	unlock := r.locks.lockRouter()
	defer unlock()

	return r.store.Transaction(ctx, func(tx Tx) error {
		state, err := loadRouter(ctx, tx)
		if err != nil {
			return err
		}
		if err := mutate(&state.Ownership); err != nil {
			return err
		}
		return tx.PutRouter(ctx, state)
	})
}

func loadRouter(ctx context.Context, tx Tx) (VerifierRouter, error) {
	state, err := tx.Router(ctx)
	if errors.Is(err, ErrNotFound) {
		return state, ErrNotInitialized
	}
	if err != nil {
		return state, fmt.Errorf("load router: %w", err)
	}
	return state, nil
}
