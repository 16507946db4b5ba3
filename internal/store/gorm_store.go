package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boundless-xyz/risc0-solana/internal/ownable"
	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore persists router state in sqlite or postgres. Emergency stop
// events land in the outbox table in the same transaction as the entry
// update.
type GormStore struct {
	gormReader
}

type gormReader struct {
	db            *gorm.DB
	programID     solana.PublicKey
	routerAddress solana.PublicKey
}

type gormTx struct {
	gormReader
}

func NewGormStore(db *gorm.DB, programID solana.PublicKey) (*GormStore, error) {
	address, err := router.RouterAddress(programID)
	if err != nil {
		return nil, err
	}
	return &GormStore{gormReader{db: db, programID: programID, routerAddress: address}}, nil
}

func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx router.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{gormReader{db: tx, programID: s.programID, routerAddress: s.routerAddress}})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return router.ErrNotFound
	}
	return err
}

func (r gormReader) Router(ctx context.Context) (router.VerifierRouter, error) {
	var rec RouterRecord
	if err := r.db.WithContext(ctx).First(&rec, "address = ?", r.routerAddress.String()).Error; err != nil {
		return router.VerifierRouter{}, notFound(err)
	}
	return routerFromRecord(rec)
}

func (r gormReader) Entry(ctx context.Context, selector seal.Selector) (router.VerifierEntry, error) {
	address, err := router.EntryAddress(r.programID, selector)
	if err != nil {
		return router.VerifierEntry{}, err
	}

	var rec EntryRecord
	if err := r.db.WithContext(ctx).First(&rec, "address = ?", address.String()).Error; err != nil {
		return router.VerifierEntry{}, notFound(err)
	}
	return entryFromRecord(rec)
}

func (r gormReader) Entries(ctx context.Context) ([]router.VerifierEntry, error) {
	var records []EntryRecord
	if err := r.db.WithContext(ctx).Order("selector").Find(&records).Error; err != nil {
		return nil, err
	}

	entries := make([]router.VerifierEntry, 0, len(records))
	for _, rec := range records {
		entry, err := entryFromRecord(rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r gormReader) Events(ctx context.Context) ([]router.EmergencyStopEvent, error) {
	var records []OutboxEvent
	if err := r.db.WithContext(ctx).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}

	events := make([]router.EmergencyStopEvent, 0, len(records))
	for _, rec := range records {
		event, err := router.UnmarshalAnchorEvent(rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("outbox event %s: %w", rec.EventId, err)
		}
		events = append(events, event)
	}
	return events, nil
}

func (t *gormTx) PutRouter(ctx context.Context, state router.VerifierRouter) error {
	rec := RouterRecord{
		Address: state.Address.String(),
		Owner:   state.Ownership.Owner.String(),
	}
	if state.Ownership.PendingOwner != nil {
		pending := state.Ownership.PendingOwner.String()
		rec.PendingOwner = &pending
	}
	return t.db.WithContext(ctx).Save(&rec).Error
}

func (t *gormTx) CreateEntry(ctx context.Context, entry router.VerifierEntry) error {
	return t.db.WithContext(ctx).Create(&EntryRecord{
		Address:  entry.Address.String(),
		Selector: entry.Selector.String(),
		Verifier: entry.Verifier.String(),
		Estopped: entry.Estopped,
	}).Error
}

// UpdateEntry only writes the estop flag; the other fields are immutable.
func (t *gormTx) UpdateEntry(ctx context.Context, entry router.VerifierEntry) error {
	result := t.db.WithContext(ctx).
		Model(&EntryRecord{}).
		Where("selector = ?", entry.Selector.String()).
		Update("estopped", entry.Estopped)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return router.ErrNotFound
	}
	return nil
}

func (t *gormTx) DeleteEntry(ctx context.Context, selector seal.Selector) error {
	return t.db.WithContext(ctx).Where("selector = ?", selector.String()).Delete(&EntryRecord{}).Error
}

func (t *gormTx) IsRetired(ctx context.Context, selector seal.Selector) (bool, error) {
	var count int64
	err := t.db.WithContext(ctx).Model(&RetiredSelector{}).Where("selector = ?", selector.String()).Count(&count).Error
	return count > 0, err
}

func (t *gormTx) RetireSelector(ctx context.Context, selector seal.Selector) error {
	return t.db.WithContext(ctx).Create(&RetiredSelector{
		Selector:  selector.String(),
		RetiredAt: time.Now().UTC(),
	}).Error
}

func (t *gormTx) AppendEvent(ctx context.Context, event router.EmergencyStopEvent) error {
	payload, err := event.MarshalAnchor()
	if err != nil {
		return err
	}
	eventId, err := uuid.NewRandom()
	if err != nil {
		return err
	}

	return t.db.WithContext(ctx).Create(&OutboxEvent{
		EventId:     eventId.String(),
		Router:      event.Router.String(),
		Selector:    event.Selector.String(),
		Verifier:    event.Verifier.String(),
		TriggeredBy: event.TriggeredBy.String(),
		Reason:      event.Reason,
		Payload:     payload,
		ToProcess:   true,
		CreatedAt:   time.Now().UTC(),
	}).Error
}

func routerFromRecord(rec RouterRecord) (router.VerifierRouter, error) {
	address, err := solana.PublicKeyFromBase58(rec.Address)
	if err != nil {
		return router.VerifierRouter{}, fmt.Errorf("router address: %w", err)
	}
	owner, err := solana.PublicKeyFromBase58(rec.Owner)
	if err != nil {
		return router.VerifierRouter{}, fmt.Errorf("router owner: %w", err)
	}

	state := router.VerifierRouter{Address: address, Ownership: ownable.New(owner)}
	if rec.PendingOwner != nil {
		pending, err := solana.PublicKeyFromBase58(*rec.PendingOwner)
		if err != nil {
			return router.VerifierRouter{}, fmt.Errorf("pending owner: %w", err)
		}
		state.Ownership.PendingOwner = &pending
	}
	return state, nil
}

func entryFromRecord(rec EntryRecord) (router.VerifierEntry, error) {
	address, err := solana.PublicKeyFromBase58(rec.Address)
	if err != nil {
		return router.VerifierEntry{}, fmt.Errorf("entry address: %w", err)
	}
	selector, err := seal.ParseSelector(rec.Selector)
	if err != nil {
		return router.VerifierEntry{}, err
	}
	verifier, err := solana.PublicKeyFromBase58(rec.Verifier)
	if err != nil {
		return router.VerifierEntry{}, fmt.Errorf("entry verifier: %w", err)
	}
	return router.VerifierEntry{
		Address:  address,
		Selector: selector,
		Verifier: verifier,
		Estopped: rec.Estopped,
	}, nil
}
