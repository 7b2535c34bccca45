package services

import (
	"context"
	"testing"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/sheets/memory"
)

func TestMirrorProcessorAppendsRows(t *testing.T) {
	store := memory.New()
	p := NewMirrorProcessor(store, testLogger())
	ctx := context.Background()

	income := core.IncomeEntry{
		ID:         1,
		Occupation: "plumber",
		Amount:     core.Money{Cents: 100_00},
		Date:       core.NewDate(2024, 3, 10),
		Type:       core.Wages,
	}
	ev, err := amqp.NewEntryEvent(amqp.KindIncome, amqp.ActionCreated, income.ID, income)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Handle(ctx, ev); err != nil {
		t.Fatalf("handle income: %v", err)
	}

	expense := core.ExpenseEntry{
		ID:       2,
		Item:     "coffee",
		Price:    core.Money{Cents: 250},
		Quantity: 2,
		Total:    core.Money{Cents: 500},
		Date:     core.NewDate(2024, 3, 10),
	}
	ev, err = amqp.NewEntryEvent(amqp.KindExpense, amqp.ActionUpdated, expense.ID, expense)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Handle(ctx, ev); err != nil {
		t.Fatalf("handle expense: %v", err)
	}

	if got := store.Incomes(); len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("income not mirrored: %+v", got)
	}
	if got := store.Expenses(); len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expense not mirrored: %+v", got)
	}
}

func TestMirrorProcessorRecordsDeletions(t *testing.T) {
	store := memory.New()
	p := NewMirrorProcessor(store, testLogger())

	ev, err := amqp.NewEntryEvent(amqp.KindExpense, amqp.ActionDeleted, 42, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle deletion: %v", err)
	}

	dels := store.Deletions()
	if len(dels) != 1 || dels[0].ID != 42 || dels[0].Kind != amqp.KindExpense {
		t.Fatalf("deletion not recorded: %+v", dels)
	}
}

func TestMirrorProcessorRejectsUnknownKind(t *testing.T) {
	p := NewMirrorProcessor(memory.New(), testLogger())

	ev := &amqp.EntryEvent{Kind: "transfer", Action: amqp.ActionCreated, ID: 1}
	if err := p.Handle(context.Background(), ev); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
