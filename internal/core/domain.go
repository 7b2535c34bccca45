package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Wages  IncomeType = "wages"
	Salary IncomeType = "salary"
)

type (
	// IncomeType distinguishes wage income (meaningful at daily/weekly
	// granularity) from salary income (fixed monthly, never pro-rated
	// below a month).
	IncomeType string

	// Date is a calendar date; the time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64 `json:"cents"`
	}

	// IncomeEntry is a single recorded income transaction.
	IncomeEntry struct {
		ID         int64      `json:"id"`
		Occupation string     `json:"occupation"`
		Amount     Money      `json:"amount"`
		Date       Date       `json:"date"`
		Type       IncomeType `json:"type"`
	}

	// ExpenseEntry is a single recorded purchase. Total is derived from
	// Price and Quantity at creation time and stored, not recomputed.
	ExpenseEntry struct {
		ID       int64  `json:"id"`
		Item     string `json:"item"`
		Price    Money  `json:"price"`
		Quantity int64  `json:"quantity"`
		Total    Money  `json:"total"`
		Date     Date   `json:"date"`
	}
)

var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInvalidDate       = errors.New("invalid date")
	ErrEmptyOccupation   = errors.New("empty occupation")
	ErrEmptyItem         = errors.New("empty item")
	ErrInvalidIncomeType = errors.New("invalid income type")
	ErrTotalMismatch     = errors.New("total does not match price times quantity")
)

func (t IncomeType) Validate() error {
	switch t {
	case Wages, Salary:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidIncomeType, string(t))
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date, time-of-day dropped.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses an ISO YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), time.UTC)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(o Date) bool {
	y1, m1, dd1 := d.Date()
	y2, m2, dd2 := o.Date()
	return y1 == y2 && m1 == m2 && dd1 == dd2
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the calendar month, 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// WeekStart returns the most recent Sunday on or before the date.
func (d Date) WeekStart() Date {
	return Date{Time: d.AddDate(0, 0, -int(d.Weekday()))}
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON encodes the date as a plain YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e IncomeEntry) Validate() error {
	if len(strings.TrimSpace(e.Occupation)) == 0 {
		return ErrEmptyOccupation
	}
	if len(e.Occupation) > 200 {
		return errors.New("occupation too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	return e.Type.Validate()
}

func (e ExpenseEntry) Validate() error {
	if len(strings.TrimSpace(e.Item)) == 0 {
		return ErrEmptyItem
	}
	if len(e.Item) > 200 {
		return errors.New("item too long (max 200 characters)")
	}
	if err := e.Price.Validate(); err != nil {
		return err
	}
	if e.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if e.Total.Cents != e.Price.Cents*e.Quantity {
		return ErrTotalMismatch
	}
	return nil
}
