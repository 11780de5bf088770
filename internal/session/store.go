// Package session holds the per-visitor transaction list.
//
// Nothing here is persisted: a Store lives as long as its session entry in
// the Manager and is dropped when the entry expires or is evicted.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"gastos/internal/core"
	"gastos/internal/readers"
)

var ErrNotFound = errors.New("transaction not found")

// ImportSummary describes the last successful import of a Store.
type ImportSummary struct {
	Bank       readers.Bank
	FileName   string
	Rows       int
	Accepted   int
	Skipped    []readers.SkippedRow
	ImportedAt time.Time
}

// Store is the transaction list of one session. It is safe for concurrent use.
type Store struct {
	id string

	mu         sync.RWMutex
	txs        []core.Transaction
	lastImport *ImportSummary
	now        func() time.Time
}

// NewStore returns an empty store.
func NewStore(id string) *Store {
	return &Store{id: id, now: time.Now}
}

func (s *Store) ID() string {
	return s.id
}

// Expenses returns a copy of the current list.
func (s *Store) Expenses() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Transaction, len(s.txs))
	copy(out, s.txs)
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.txs)
}

// Replace swaps the whole list for txs.
func (s *Store) Replace(txs []core.Transaction) {
	cp := make([]core.Transaction, len(txs))
	copy(cp, txs)

	s.mu.Lock()
	s.txs = cp
	s.mu.Unlock()
}

// Import reads src with the reader bound to bank and, on success, replaces
// the list with the result. On failure the list is left untouched.
func (s *Store) Import(ctx context.Context, bank readers.Bank, src readers.Source) (readers.Result, error) {
	reader, err := readers.For(bank)
	if err != nil {
		return readers.Result{}, err
	}
	res, err := reader.Read(ctx, src)
	if err != nil {
		return readers.Result{}, err
	}

	summary := &ImportSummary{
		Bank:       bank,
		FileName:   src.Name,
		Rows:       res.Rows,
		Accepted:   len(res.Transactions),
		Skipped:    append([]readers.SkippedRow(nil), res.Skipped...),
		ImportedAt: s.now(),
	}
	cp := make([]core.Transaction, len(res.Transactions))
	copy(cp, res.Transactions)

	s.mu.Lock()
	s.txs = cp
	s.lastImport = summary
	s.mu.Unlock()
	return res, nil
}

// LastImport returns the summary of the last import, if any.
func (s *Store) LastImport() (ImportSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastImport == nil {
		return ImportSummary{}, false
	}
	return *s.lastImport, true
}

func (s *Store) Get(id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.txs {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Transaction{}, ErrNotFound
}

// SetCategory tags a transaction; an empty categoryID clears the tag.
func (s *Store) SetCategory(id, categoryID string) (core.Transaction, error) {
	return s.update(id, func(t *core.Transaction) { t.CategoryID = categoryID })
}

// SetIdentifier sets the free-text identifier; empty clears it.
func (s *Store) SetIdentifier(id, identifier string) (core.Transaction, error) {
	return s.update(id, func(t *core.Transaction) { t.Identifier = identifier })
}

// ToggleRecurring flips the monthly recurring flag.
func (s *Store) ToggleRecurring(id string) (core.Transaction, error) {
	return s.update(id, func(t *core.Transaction) { t.MonthlyRecurring = !t.MonthlyRecurring })
}

func (s *Store) update(id string, fn func(*core.Transaction)) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			fn(&s.txs[i])
			return s.txs[i], nil
		}
	}
	return core.Transaction{}, ErrNotFound
}
