package core

import "strings"

// IDSource yields identifiers for new entries. Implementations must
// guarantee uniqueness among all entries currently held by the ledger;
// the ledger's source derives ids from the creation instant and re-derives
// on collision.
type IDSource interface {
	NextID() int64
}

// Factory validates raw field values and constructs entries. Construction is
// pure apart from drawing an identifier: the caller is responsible for
// appending the result to the ledger.
type Factory struct {
	ids IDSource
}

func NewFactory(ids IDSource) *Factory {
	return &Factory{ids: ids}
}

// CreateIncome builds a validated income entry with a fresh identifier.
func (f *Factory) CreateIncome(occupation string, amount Money, date Date, typ IncomeType) (IncomeEntry, error) {
	e := IncomeEntry{
		Occupation: strings.TrimSpace(occupation),
		Amount:     amount,
		Date:       date,
		Type:       typ,
	}
	if err := e.Validate(); err != nil {
		return IncomeEntry{}, err
	}
	e.ID = f.ids.NextID()
	return e, nil
}

// CreateExpense builds a validated expense entry with a fresh identifier.
// The total is derived as price times quantity in exact cent arithmetic.
func (f *Factory) CreateExpense(item string, price Money, quantity int64, date Date) (ExpenseEntry, error) {
	e := ExpenseEntry{
		Item:     strings.TrimSpace(item),
		Price:    price,
		Quantity: quantity,
		Total:    price.MulQuantity(quantity),
		Date:     date,
	}
	if err := e.Validate(); err != nil {
		return ExpenseEntry{}, err
	}
	e.ID = f.ids.NextID()
	return e, nil
}
