package core

import (
	"errors"
	"testing"
)

type seqIDs struct{ next int64 }

func (s *seqIDs) NextID() int64 {
	s.next++
	return s.next
}

func TestCreateIncome(t *testing.T) {
	f := NewFactory(&seqIDs{})

	e, err := f.CreateIncome("  plumber ", Money{Cents: 200_00}, NewDate(2024, 1, 6), Wages)
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if e.Occupation != "plumber" {
		t.Fatalf("expected trimmed occupation, got %q", e.Occupation)
	}

	_, err = f.CreateIncome("plumber", Money{Cents: 0}, NewDate(2024, 1, 6), Wages)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	_, err = f.CreateIncome("plumber", Money{Cents: 100}, Date{}, Wages)
	if !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	_, err = f.CreateIncome("", Money{Cents: 100}, NewDate(2024, 1, 6), Salary)
	if !errors.Is(err, ErrEmptyOccupation) {
		t.Fatalf("expected ErrEmptyOccupation, got %v", err)
	}
}

func TestCreateExpense(t *testing.T) {
	f := NewFactory(&seqIDs{})

	e, err := f.CreateExpense("coffee", Money{Cents: 999}, 3, NewDate(2024, 2, 1))
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if e.Total.Cents != 2997 {
		t.Fatalf("expected derived total 2997, got %d", e.Total.Cents)
	}

	_, err = f.CreateExpense("coffee", Money{Cents: 999}, 0, NewDate(2024, 2, 1))
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	_, err = f.CreateExpense("", Money{Cents: 999}, 1, NewDate(2024, 2, 1))
	if !errors.Is(err, ErrEmptyItem) {
		t.Fatalf("expected ErrEmptyItem, got %v", err)
	}
}

func TestFactoryAssignsDistinctIDs(t *testing.T) {
	f := NewFactory(&seqIDs{})
	seen := map[int64]bool{}
	for i := 0; i < 10; i++ {
		e, err := f.CreateExpense("item", Money{Cents: 100}, 1, NewDate(2024, 2, 1))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if seen[e.ID] {
			t.Fatalf("duplicate id %d", e.ID)
		}
		seen[e.ID] = true
	}
}
