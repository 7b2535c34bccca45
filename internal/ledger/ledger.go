// Package ledger holds the in-memory entry collections and keeps them in
// sync with the key-value store. Every mutation rewrites the full collection
// under its key, so the store always holds a consistent snapshot.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"tally/internal/core"
	"tally/internal/log"
	"tally/internal/storage"
)

// DefaultCurrency is assumed for the session until geolocation resolves
// a real locale or a stored one is loaded.
const DefaultCurrency = "USD"

// Ledger owns the income and expense collections plus the session locale.
// All methods are safe for concurrent use.
type Ledger struct {
	mu      sync.Mutex
	store   storage.Store
	logger  *log.Logger
	factory *core.Factory

	incomes  []core.IncomeEntry
	expenses []core.ExpenseEntry
	currency string
	location string

	lastID int64
	now    func() time.Time
}

// Option configures a Ledger at construction time.
type Option func(*Ledger)

// WithClock overrides the wall clock used for identifier derivation.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithDefaultCurrency overrides the currency assumed before a stored or
// resolved locale takes effect.
func WithDefaultCurrency(code string) Option {
	return func(l *Ledger) { l.currency = code }
}

func New(store storage.Store, logger *log.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		logger:   logger.WithComponent(log.ComponentLedger),
		currency: DefaultCurrency,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.factory = core.NewFactory(l)
	return l
}

// NextID derives an identifier from the current instant in milliseconds.
// On collision with an existing entry it advances until free, so ids stay
// unique even for entries created within the same millisecond. Callers
// must hold the ledger mutex.
func (l *Ledger) NextID() int64 {
	id := l.now().UnixMilli()
	if id <= l.lastID {
		id = l.lastID + 1
	}
	for l.idTaken(id) {
		id++
	}
	l.lastID = id
	return id
}

func (l *Ledger) idTaken(id int64) bool {
	for _, e := range l.incomes {
		if e.ID == id {
			return true
		}
	}
	for _, e := range l.expenses {
		if e.ID == id {
			return true
		}
	}
	return false
}

// Load reads both collections and the session locale from the store.
// A malformed collection is logged and replaced with an empty one rather
// than failing startup; store-level failures are returned.
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	incomes, err := loadCollection[core.IncomeEntry](ctx, l, storage.KeyIncomeLedger)
	if err != nil {
		return err
	}
	expenses, err := loadCollection[core.ExpenseEntry](ctx, l, storage.KeyExpenseLedger)
	if err != nil {
		return err
	}
	l.incomes = incomes
	l.expenses = expenses

	if v, ok, err := l.store.Get(ctx, storage.KeyCurrency); err != nil {
		return fmt.Errorf("load currency: %w", err)
	} else if ok {
		l.currency = v
	}
	if v, ok, err := l.store.Get(ctx, storage.KeyLocation); err != nil {
		return fmt.Errorf("load location: %w", err)
	} else if ok {
		l.location = v
	}

	l.logger.InfoContext(ctx, "ledger loaded",
		log.FieldOperation, log.OpLoad,
		"incomes", len(l.incomes),
		"expenses", len(l.expenses))
	return nil
}

func loadCollection[T any](ctx context.Context, l *Ledger, key string) ([]T, error) {
	raw, ok, err := l.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}
	var entries []T
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		l.logger.WarnContext(ctx, "discarding malformed collection",
			log.FieldStorageKey, key,
			log.FieldError, err.Error())
		return nil, nil
	}
	return entries, nil
}

// AddIncome validates, appends and persists a new income entry.
func (l *Ledger) AddIncome(ctx context.Context, occupation string, amount core.Money, date core.Date, typ core.IncomeType) (core.IncomeEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.factory.CreateIncome(occupation, amount, date, typ)
	if err != nil {
		return core.IncomeEntry{}, err
	}
	l.incomes = append(l.incomes, entry)
	if err := l.persistIncomes(ctx); err != nil {
		l.incomes = l.incomes[:len(l.incomes)-1]
		return core.IncomeEntry{}, err
	}

	l.logger.InfoContext(ctx, "income recorded",
		log.FieldOperation, log.OpCreate,
		log.FieldEntryID, entry.ID,
		log.FieldAmountCents, entry.Amount.Cents)
	return entry, nil
}

// AddExpense validates, appends and persists a new expense entry.
func (l *Ledger) AddExpense(ctx context.Context, item string, price core.Money, quantity int64, date core.Date) (core.ExpenseEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, err := l.factory.CreateExpense(item, price, quantity, date)
	if err != nil {
		return core.ExpenseEntry{}, err
	}
	l.expenses = append(l.expenses, entry)
	if err := l.persistExpenses(ctx); err != nil {
		l.expenses = l.expenses[:len(l.expenses)-1]
		return core.ExpenseEntry{}, err
	}

	l.logger.InfoContext(ctx, "expense recorded",
		log.FieldOperation, log.OpCreate,
		log.FieldEntryID, entry.ID,
		log.FieldAmountCents, entry.Total.Cents)
	return entry, nil
}

// RemoveIncome deletes the income entry with the given id. It reports
// whether an entry was removed; removal of an absent id is not an error.
func (l *Ledger) RemoveIncome(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, e := range l.incomes {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	removed := l.incomes[idx]
	l.incomes = append(l.incomes[:idx], l.incomes[idx+1:]...)
	if err := l.persistIncomes(ctx); err != nil {
		l.incomes = append(l.incomes[:idx], append([]core.IncomeEntry{removed}, l.incomes[idx:]...)...)
		return false, err
	}

	l.logger.InfoContext(ctx, "income removed",
		log.FieldOperation, log.OpDelete,
		log.FieldEntryID, id)
	return true, nil
}

// RemoveExpense deletes the expense entry with the given id.
func (l *Ledger) RemoveExpense(ctx context.Context, id int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, e := range l.expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}
	removed := l.expenses[idx]
	l.expenses = append(l.expenses[:idx], l.expenses[idx+1:]...)
	if err := l.persistExpenses(ctx); err != nil {
		l.expenses = append(l.expenses[:idx], append([]core.ExpenseEntry{removed}, l.expenses[idx:]...)...)
		return false, err
	}

	l.logger.InfoContext(ctx, "expense removed",
		log.FieldOperation, log.OpDelete,
		log.FieldEntryID, id)
	return true, nil
}

// UpdateIncome replaces the fields of an existing income entry in place,
// keeping its id and position. It reports whether the id was found.
func (l *Ledger) UpdateIncome(ctx context.Context, id int64, occupation string, amount core.Money, date core.Date, typ core.IncomeType) (core.IncomeEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, e := range l.incomes {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.IncomeEntry{}, false, nil
	}

	updated := core.IncomeEntry{
		ID:         id,
		Occupation: occupation,
		Amount:     amount,
		Date:       date,
		Type:       typ,
	}
	if err := updated.Validate(); err != nil {
		return core.IncomeEntry{}, true, err
	}
	previous := l.incomes[idx]
	l.incomes[idx] = updated
	if err := l.persistIncomes(ctx); err != nil {
		l.incomes[idx] = previous
		return core.IncomeEntry{}, true, err
	}

	l.logger.InfoContext(ctx, "income updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldEntryID, id)
	return updated, true, nil
}

// UpdateExpense replaces the fields of an existing expense entry in place,
// re-deriving its total and keeping its id and position.
func (l *Ledger) UpdateExpense(ctx context.Context, id int64, item string, price core.Money, quantity int64, date core.Date) (core.ExpenseEntry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := -1
	for i, e := range l.expenses {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return core.ExpenseEntry{}, false, nil
	}

	updated := core.ExpenseEntry{
		ID:       id,
		Item:     item,
		Price:    price,
		Quantity: quantity,
		Total:    price.MulQuantity(quantity),
		Date:     date,
	}
	if err := updated.Validate(); err != nil {
		return core.ExpenseEntry{}, true, err
	}
	previous := l.expenses[idx]
	l.expenses[idx] = updated
	if err := l.persistExpenses(ctx); err != nil {
		l.expenses[idx] = previous
		return core.ExpenseEntry{}, true, err
	}

	l.logger.InfoContext(ctx, "expense updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldEntryID, id)
	return updated, true, nil
}

// SetLocale persists the session currency code and location label.
func (l *Ledger) SetLocale(ctx context.Context, currency, location string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Put(ctx, storage.KeyCurrency, currency); err != nil {
		return fmt.Errorf("persist currency: %w", err)
	}
	if err := l.store.Put(ctx, storage.KeyLocation, location); err != nil {
		return fmt.Errorf("persist location: %w", err)
	}
	l.currency = currency
	l.location = location
	return nil
}

// Currency returns the session currency code; DefaultCurrency until a
// stored or resolved locale overrides it.
func (l *Ledger) Currency() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currency
}

// Location returns the session location label, empty when unresolved.
func (l *Ledger) Location() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.location
}

// Incomes returns a copy of the income collection in insertion order.
func (l *Ledger) Incomes() []core.IncomeEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.IncomeEntry, len(l.incomes))
	copy(out, l.incomes)
	return out
}

// Expenses returns a copy of the expense collection in insertion order.
func (l *Ledger) Expenses() []core.ExpenseEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]core.ExpenseEntry, len(l.expenses))
	copy(out, l.expenses)
	return out
}

func (l *Ledger) persistIncomes(ctx context.Context) error {
	raw, err := json.Marshal(l.incomes)
	if err != nil {
		return fmt.Errorf("marshal incomes: %w", err)
	}
	if err := l.store.Put(ctx, storage.KeyIncomeLedger, string(raw)); err != nil {
		return fmt.Errorf("persist incomes: %w", err)
	}
	return nil
}

func (l *Ledger) persistExpenses(ctx context.Context) error {
	raw, err := json.Marshal(l.expenses)
	if err != nil {
		return fmt.Errorf("marshal expenses: %w", err)
	}
	if err := l.store.Put(ctx, storage.KeyExpenseLedger, string(raw)); err != nil {
		return fmt.Errorf("persist expenses: %w", err)
	}
	return nil
}
