// Package memory is an in-process MirrorWriter used in tests and local
// development, where no spreadsheet credentials are available.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tally/internal/core"
	"tally/internal/sheets"
)

type Store struct {
	mu        sync.Mutex
	incomes   []core.IncomeEntry
	expenses  []core.ExpenseEntry
	deletions []Deletion
}

type Deletion struct {
	Kind string
	ID   int64
}

var _ sheets.MirrorWriter = (*Store)(nil)

func New() *Store {
	return &Store{}
}

func (s *Store) AppendIncome(_ context.Context, e core.IncomeEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incomes = append(s.incomes, e)
	return fmt.Sprintf("mem:income:%d", len(s.incomes)), nil
}

func (s *Store) AppendExpense(_ context.Context, e core.ExpenseEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expenses = append(s.expenses, e)
	return fmt.Sprintf("mem:expense:%d", len(s.expenses)), nil
}

func (s *Store) RecordDeletion(_ context.Context, kind string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletions = append(s.deletions, Deletion{Kind: kind, ID: id})
	return nil
}

// Incomes returns a copy of the mirrored income rows.
func (s *Store) Incomes() []core.IncomeEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.IncomeEntry(nil), s.incomes...)
}

// Expenses returns a copy of the mirrored expense rows.
func (s *Store) Expenses() []core.ExpenseEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExpenseEntry(nil), s.expenses...)
}

// Deletions returns a copy of the recorded deletions.
func (s *Store) Deletions() []Deletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Deletion(nil), s.deletions...)
}
