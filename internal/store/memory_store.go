package store

import (
	"context"
	"sort"
	"sync"

	"github.com/boundless-xyz/risc0-solana/internal/router"
	"github.com/boundless-xyz/risc0-solana/internal/seal"
)

// MemoryStore keeps router state in process. Transactions buffer their
// writes and apply them in one step on commit.
type MemoryStore struct {
	mu      sync.RWMutex
	router  *router.VerifierRouter
	entries map[seal.Selector]router.VerifierEntry
	retired map[seal.Selector]bool
	events  []router.EmergencyStopEvent
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[seal.Selector]router.VerifierEntry),
		retired: make(map[seal.Selector]bool),
	}
}

func (s *MemoryStore) Router(_ context.Context) (router.VerifierRouter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.router == nil {
		return router.VerifierRouter{}, router.ErrNotFound
	}
	return *s.router, nil
}

func (s *MemoryStore) Entry(_ context.Context, selector seal.Selector) (router.VerifierEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[selector]
	if !ok {
		return router.VerifierEntry{}, router.ErrNotFound
	}
	return entry, nil
}

func (s *MemoryStore) Entries(_ context.Context) ([]router.VerifierEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]router.VerifierEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (s *MemoryStore) Events(_ context.Context) ([]router.EmergencyStopEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]router.EmergencyStopEvent{}, s.events...), nil
}

func (s *MemoryStore) isRetired(selector seal.Selector) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.retired[selector]
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx router.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memoryTx{
		store:   s,
		entries: make(map[seal.Selector]*router.VerifierEntry),
		retired: make(map[seal.Selector]bool),
	}
	if err := fn(tx); err != nil {
		return err
	}

	tx.commit()
	return nil
}

type memoryTx struct {
	store   *MemoryStore
	router  *router.VerifierRouter
	entries map[seal.Selector]*router.VerifierEntry // nil marks a deletion
	retired map[seal.Selector]bool
	events  []router.EmergencyStopEvent
}

func (t *memoryTx) commit() {
	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.router != nil {
		r := *t.router
		s.router = &r
	}
	for sel, entry := range t.entries {
		if entry == nil {
			delete(s.entries, sel)
			continue
		}
		s.entries[sel] = *entry
	}
	for sel := range t.retired {
		s.retired[sel] = true
	}
	s.events = append(s.events, t.events...)
}

func (t *memoryTx) Router(ctx context.Context) (router.VerifierRouter, error) {
	if t.router != nil {
		return *t.router, nil
	}
	return t.store.Router(ctx)
}

func (t *memoryTx) Entry(ctx context.Context, selector seal.Selector) (router.VerifierEntry, error) {
	if entry, ok := t.entries[selector]; ok {
		if entry == nil {
			return router.VerifierEntry{}, router.ErrNotFound
		}
		return *entry, nil
	}
	return t.store.Entry(ctx, selector)
}

func (t *memoryTx) Entries(ctx context.Context) ([]router.VerifierEntry, error) {
	committed, err := t.store.Entries(ctx)
	if err != nil {
		return nil, err
	}

	merged := make(map[seal.Selector]router.VerifierEntry, len(committed))
	for _, e := range committed {
		merged[e.Selector] = e
	}
	for sel, entry := range t.entries {
		if entry == nil {
			delete(merged, sel)
			continue
		}
		merged[sel] = *entry
	}

	entries := make([]router.VerifierEntry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	sortEntries(entries)
	return entries, nil
}

func (t *memoryTx) Events(ctx context.Context) ([]router.EmergencyStopEvent, error) {
	events, err := t.store.Events(ctx)
	if err != nil {
		return nil, err
	}
	return append(events, t.events...), nil
}

func (t *memoryTx) PutRouter(_ context.Context, state router.VerifierRouter) error {
	t.router = &state
	return nil
}

func (t *memoryTx) CreateEntry(ctx context.Context, entry router.VerifierEntry) error {
	if _, err := t.Entry(ctx, entry.Selector); err == nil {
		return errEntryExists
	}
	t.entries[entry.Selector] = &entry
	return nil
}

func (t *memoryTx) UpdateEntry(ctx context.Context, entry router.VerifierEntry) error {
	if _, err := t.Entry(ctx, entry.Selector); err != nil {
		return err
	}
	t.entries[entry.Selector] = &entry
	return nil
}

func (t *memoryTx) DeleteEntry(_ context.Context, selector seal.Selector) error {
	t.entries[selector] = nil
	return nil
}

func (t *memoryTx) IsRetired(_ context.Context, selector seal.Selector) (bool, error) {
	return t.retired[selector] || t.store.isRetired(selector), nil
}

func (t *memoryTx) RetireSelector(_ context.Context, selector seal.Selector) error {
	t.retired[selector] = true
	return nil
}

func (t *memoryTx) AppendEvent(_ context.Context, event router.EmergencyStopEvent) error {
	t.events = append(t.events, event)
	return nil
}

func sortEntries(entries []router.VerifierEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Selector.String() < entries[j].Selector.String()
	})
}
