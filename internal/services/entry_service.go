package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tally/internal/amqp"
	"tally/internal/core"
	"tally/internal/geoip"
	"tally/internal/ledger"
	"tally/internal/log"
	"tally/internal/storage"
	"tally/internal/summary"
)

// EventPublisher is the slice of the AMQP client the service needs.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, ev *amqp.EntryEvent) error
	Close() error
}

// EntryService orchestrates ledger mutations across the local store and
// AMQP. Writes land locally first; event publication is best-effort and
// never fails the request.
type EntryService struct {
	ledger    *ledger.Ledger
	store     storage.Store
	publisher EventPublisher
	logger    *log.Logger
}

// Overview is the read model for the main page: both collections, their
// rollups relative to a reference day, and the session locale.
type Overview struct {
	Incomes  []core.IncomeEntry
	Expenses []core.ExpenseEntry
	Income   summary.IncomeSummary
	Expense  summary.Summary
	Net      core.Money
	Currency string
	Location string
}

func NewEntryService(l *ledger.Ledger, store storage.Store, publisher EventPublisher, logger *log.Logger) *EntryService {
	return &EntryService{
		ledger:    l,
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentLedger),
	}
}

// CreateIncome parses raw form values and records an income entry.
func (s *EntryService) CreateIncome(ctx context.Context, occupation, amount, date, typ string) (core.IncomeEntry, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.IncomeEntry{}, err
	}
	day, err := core.ParseDate(date)
	if err != nil {
		return core.IncomeEntry{}, err
	}

	entry, err := s.ledger.AddIncome(ctx, occupation, core.Money{Cents: cents}, day, core.IncomeType(strings.ToLower(strings.TrimSpace(typ))))
	if err != nil {
		return core.IncomeEntry{}, err
	}
	s.publish(ctx, amqp.KindIncome, amqp.ActionCreated, entry.ID, entry)
	return entry, nil
}

// CreateExpense parses raw form values and records an expense entry.
func (s *EntryService) CreateExpense(ctx context.Context, item, price, quantity, date string) (core.ExpenseEntry, error) {
	cents, err := core.ParseDecimalToCents(price)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(quantity), 10, 64)
	if err != nil {
		return core.ExpenseEntry{}, fmt.Errorf("%w: %q", core.ErrInvalidQuantity, quantity)
	}
	day, err := core.ParseDate(date)
	if err != nil {
		return core.ExpenseEntry{}, err
	}

	entry, err := s.ledger.AddExpense(ctx, item, core.Money{Cents: cents}, qty, day)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	s.publish(ctx, amqp.KindExpense, amqp.ActionCreated, entry.ID, entry)
	return entry, nil
}

// UpdateIncome replaces an existing income entry's fields in place.
func (s *EntryService) UpdateIncome(ctx context.Context, id int64, occupation, amount, date, typ string) (core.IncomeEntry, bool, error) {
	cents, err := core.ParseDecimalToCents(amount)
	if err != nil {
		return core.IncomeEntry{}, false, err
	}
	day, err := core.ParseDate(date)
	if err != nil {
		return core.IncomeEntry{}, false, err
	}

	entry, found, err := s.ledger.UpdateIncome(ctx, id, strings.TrimSpace(occupation), core.Money{Cents: cents}, day, core.IncomeType(strings.ToLower(strings.TrimSpace(typ))))
	if err != nil || !found {
		return core.IncomeEntry{}, found, err
	}
	s.publish(ctx, amqp.KindIncome, amqp.ActionUpdated, id, entry)
	return entry, true, nil
}

// UpdateExpense replaces an existing expense entry's fields in place.
func (s *EntryService) UpdateExpense(ctx context.Context, id int64, item, price, quantity, date string) (core.ExpenseEntry, bool, error) {
	cents, err := core.ParseDecimalToCents(price)
	if err != nil {
		return core.ExpenseEntry{}, false, err
	}
	qty, err := strconv.ParseInt(strings.TrimSpace(quantity), 10, 64)
	if err != nil {
		return core.ExpenseEntry{}, false, fmt.Errorf("%w: %q", core.ErrInvalidQuantity, quantity)
	}
	day, err := core.ParseDate(date)
	if err != nil {
		return core.ExpenseEntry{}, false, err
	}

	entry, found, err := s.ledger.UpdateExpense(ctx, id, strings.TrimSpace(item), core.Money{Cents: cents}, qty, day)
	if err != nil || !found {
		return core.ExpenseEntry{}, found, err
	}
	s.publish(ctx, amqp.KindExpense, amqp.ActionUpdated, id, entry)
	return entry, true, nil
}

// DeleteIncome removes an income entry by id.
func (s *EntryService) DeleteIncome(ctx context.Context, id int64) (bool, error) {
	removed, err := s.ledger.RemoveIncome(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	s.publish(ctx, amqp.KindIncome, amqp.ActionDeleted, id, nil)
	return true, nil
}

// DeleteExpense removes an expense entry by id.
func (s *EntryService) DeleteExpense(ctx context.Context, id int64) (bool, error) {
	removed, err := s.ledger.RemoveExpense(ctx, id)
	if err != nil || !removed {
		return removed, err
	}
	s.publish(ctx, amqp.KindExpense, amqp.ActionDeleted, id, nil)
	return true, nil
}

// ApplyLocation stores the resolved location and currency as the session
// locale.
func (s *EntryService) ApplyLocation(ctx context.Context, loc geoip.Location) error {
	return s.ledger.SetLocale(ctx, loc.Currency, loc.Label())
}

// SessionCurrency returns the currency code amounts currently render in.
func (s *EntryService) SessionCurrency() string {
	return s.ledger.Currency()
}

// Overview assembles the read model for the given reference day.
func (s *EntryService) Overview(ref core.Date) (Overview, error) {
	incomes := s.ledger.Incomes()
	expenses := s.ledger.Expenses()

	incomeSummary, err := summary.SummarizeIncome(incomes, ref)
	if err != nil {
		return Overview{}, fmt.Errorf("summarize incomes: %w", err)
	}
	expenseSummary, err := summary.SummarizeExpenses(expenses, ref)
	if err != nil {
		return Overview{}, fmt.Errorf("summarize expenses: %w", err)
	}

	return Overview{
		Incomes:  incomes,
		Expenses: expenses,
		Income:   incomeSummary,
		Expense:  expenseSummary,
		Net:      summary.NetBalance(incomes, expenses),
		Currency: s.ledger.Currency(),
		Location: s.ledger.Location(),
	}, nil
}

func (s *EntryService) publish(ctx context.Context, kind, action string, id int64, entry any) {
	if s.publisher == nil {
		return
	}
	ev, err := amqp.NewEntryEvent(kind, action, id, entry)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build entry event",
			log.FieldError, err.Error(),
			log.FieldEntryKind, kind,
			log.FieldEntryID, id)
		return
	}
	// Mutation already landed locally, so a publish failure is logged
	// and absorbed.
	if err := s.publisher.PublishEntryEvent(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish entry event",
			log.FieldError, err.Error(),
			log.FieldEntryKind, kind,
			log.FieldEntryID, id)
	}
}

// Close closes the store and the AMQP connection.
func (s *EntryService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close entry service: %v", errs)
	}
	return nil
}
