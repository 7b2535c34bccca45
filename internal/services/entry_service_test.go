package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/geoip"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/storage"
)

type fakePublisher struct {
	events []*amqp.EntryEvent
	fail   bool
}

func (f *fakePublisher) PublishEntryEvent(_ context.Context, ev *amqp.EntryEvent) error {
	if f.fail {
		return errors.New("broker unavailable")
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func testLogger() *log.Logger {
	return log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
}

func newTestService(t *testing.T, pub EventPublisher) *EntryService {
	t.Helper()
	store := storage.NewMemoryStore()
	l := ledger.New(store, testLogger())
	return NewEntryService(l, store, pub, testLogger())
}

func TestCreateIncomeParsesAndPublishes(t *testing.T) {
	pub := &fakePublisher{}
	s := newTestService(t, pub)

	entry, err := s.CreateIncome(context.Background(), "plumber", "1500,50", "2024-03-10", "Wages")
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	if entry.Amount.Cents != 1500_50 {
		t.Fatalf("comma amount not parsed, got %d", entry.Amount.Cents)
	}
	if entry.Type != core.Wages {
		t.Fatalf("type not normalized, got %q", entry.Type)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected one event, got %d", len(pub.events))
	}
	ev := pub.events[0]
	if ev.Kind != amqp.KindIncome || ev.Action != amqp.ActionCreated || ev.ID != entry.ID {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestCreateExpenseRejectsBadQuantity(t *testing.T) {
	s := newTestService(t, nil)

	_, err := s.CreateExpense(context.Background(), "coffee", "2.50", "three", "2024-03-10")
	if !errors.Is(err, core.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	_, err = s.CreateExpense(context.Background(), "coffee", "2.50", "3", "not-a-date")
	if !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	s := newTestService(t, &fakePublisher{fail: true})

	entry, err := s.CreateIncome(context.Background(), "plumber", "100", "2024-03-10", "wages")
	if err != nil {
		t.Fatalf("mutation must survive publish failure: %v", err)
	}
	ov, err := s.Overview(core.NewDate(2024, 3, 10))
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(ov.Incomes) != 1 || ov.Incomes[0].ID != entry.ID {
		t.Fatalf("entry not recorded locally: %+v", ov.Incomes)
	}
}

func TestDeletePublishesOnlyWhenRemoved(t *testing.T) {
	pub := &fakePublisher{}
	s := newTestService(t, pub)

	entry, err := s.CreateExpense(context.Background(), "desk", "120", "1", "2024-03-10")
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	pub.events = nil

	removed, err := s.DeleteExpense(context.Background(), entry.ID)
	if err != nil || !removed {
		t.Fatalf("delete: removed=%v err=%v", removed, err)
	}
	removed, err = s.DeleteExpense(context.Background(), entry.ID)
	if err != nil || removed {
		t.Fatalf("second delete must be a no-op: removed=%v err=%v", removed, err)
	}

	if len(pub.events) != 1 {
		t.Fatalf("expected one deletion event, got %d", len(pub.events))
	}
	if pub.events[0].Action != amqp.ActionDeleted || pub.events[0].Payload != nil {
		t.Fatalf("unexpected deletion event: %+v", pub.events[0])
	}
}

func TestUpdateIncomePublishesUpdatedEvent(t *testing.T) {
	pub := &fakePublisher{}
	s := newTestService(t, pub)

	entry, err := s.CreateIncome(context.Background(), "plumber", "100", "2024-03-10", "wages")
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	pub.events = nil

	updated, found, err := s.UpdateIncome(context.Background(), entry.ID, "plumber", "250", "2024-03-11", "salary")
	if err != nil || !found {
		t.Fatalf("update: found=%v err=%v", found, err)
	}
	if updated.ID != entry.ID || updated.Amount.Cents != 250_00 {
		t.Fatalf("unexpected updated entry: %+v", updated)
	}
	if len(pub.events) != 1 || pub.events[0].Action != amqp.ActionUpdated {
		t.Fatalf("expected updated event, got %+v", pub.events)
	}
}

func TestOverviewAggregates(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	if _, err := s.CreateIncome(ctx, "writer", "1000", "2024-01-05", "salary"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateIncome(ctx, "gardener", "200", "2024-01-06", "wages"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateExpense(ctx, "groceries", "75,50", "2", "2024-01-06"); err != nil {
		t.Fatal(err)
	}

	ov, err := s.Overview(core.NewDate(2024, 1, 6))
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.Income.Total.Cents != 1200_00 {
		t.Fatalf("income total: %d", ov.Income.Total.Cents)
	}
	if ov.Income.WeeklyDailyApplicable {
		t.Fatal("salary presence must suppress weekly/daily display")
	}
	if ov.Expense.Total.Cents != 151_00 {
		t.Fatalf("expense total: %d", ov.Expense.Total.Cents)
	}
	if ov.Net.Cents != 1200_00-151_00 {
		t.Fatalf("net: %d", ov.Net.Cents)
	}
}

func TestApplyLocationStoresLocale(t *testing.T) {
	s := newTestService(t, nil)
	ctx := context.Background()

	err := s.ApplyLocation(ctx, geoip.Location{City: "Rome", Country: "Italy", Currency: "EUR"})
	if err != nil {
		t.Fatalf("apply location: %v", err)
	}
	ov, err := s.Overview(core.NewDate(2024, 1, 1))
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if ov.Currency != "EUR" || ov.Location != "Rome, Italy" {
		t.Fatalf("locale not stored: %q %q", ov.Currency, ov.Location)
	}
}
