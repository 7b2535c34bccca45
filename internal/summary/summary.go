// Package summary computes rollups over ledger entries relative to a
// reference date: the unconditional total plus yearly, monthly, weekly and
// daily windows, and the net balance across both ledgers.
//
// The weekly window runs from the most recent Sunday on or before the
// reference date through the reference date, both ends inclusive.
//
// Income rollups carry an extra rule: salary entries have no sub-monthly
// meaning, so weekly and daily figures are computed from wages entries only,
// and are marked not applicable whenever any salary entry is present.
package summary

import (
	"fmt"

	"tally/internal/core"
)

// Entry is the minimal shape the aggregator needs: a dated amount. Income
// entries contribute their amount, expense entries their derived total.
type Entry struct {
	Amount core.Money
	Date   core.Date
}

// Summary holds the rollups for one ledger relative to a reference date.
type Summary struct {
	Total   core.Money
	Yearly  core.Money
	Monthly core.Money
	Weekly  core.Money
	Daily   core.Money
}

// IncomeSummary augments Summary with the salary suppression flag: when
// WeeklyDailyApplicable is false the Weekly and Daily fields must not be
// displayed (they still hold the wages-only sums).
type IncomeSummary struct {
	Summary
	WeeklyDailyApplicable bool
}

// Summarize computes the rollups for a sequence of dated amounts. It never
// mutates its input. A zero reference date or an entry with an invalid date
// fails with a validation error instead of silently producing garbage.
func Summarize(entries []Entry, ref core.Date) (Summary, error) {
	if err := ref.Validate(); err != nil {
		return Summary{}, fmt.Errorf("reference date: %w", err)
	}
	weekStart := ref.WeekStart()

	var s Summary
	for i, e := range entries {
		if err := e.Date.Validate(); err != nil {
			return Summary{}, fmt.Errorf("entry %d: %w", i, err)
		}
		s.Total = s.Total.Add(e.Amount)
		if e.Date.Year() == ref.Year() {
			s.Yearly = s.Yearly.Add(e.Amount)
			if e.Date.Month() == ref.Month() {
				s.Monthly = s.Monthly.Add(e.Amount)
			}
		}
		if inWeek(e.Date, weekStart, ref) {
			s.Weekly = s.Weekly.Add(e.Amount)
		}
		if e.Date.SameDay(ref) {
			s.Daily = s.Daily.Add(e.Amount)
		}
	}
	return s, nil
}

// SummarizeIncome computes income rollups. Total, yearly and monthly cover
// every entry regardless of type; weekly and daily cover wages entries only,
// and are flagged not applicable when any salary entry exists.
func SummarizeIncome(entries []core.IncomeEntry, ref core.Date) (IncomeSummary, error) {
	if err := ref.Validate(); err != nil {
		return IncomeSummary{}, fmt.Errorf("reference date: %w", err)
	}
	weekStart := ref.WeekStart()

	out := IncomeSummary{WeeklyDailyApplicable: true}
	for i, e := range entries {
		if err := e.Date.Validate(); err != nil {
			return IncomeSummary{}, fmt.Errorf("entry %d: %w", i, err)
		}
		if err := e.Type.Validate(); err != nil {
			return IncomeSummary{}, fmt.Errorf("entry %d: %w", i, err)
		}
		out.Total = out.Total.Add(e.Amount)
		if e.Date.Year() == ref.Year() {
			out.Yearly = out.Yearly.Add(e.Amount)
			if e.Date.Month() == ref.Month() {
				out.Monthly = out.Monthly.Add(e.Amount)
			}
		}
		if e.Type == core.Salary {
			out.WeeklyDailyApplicable = false
			continue
		}
		if inWeek(e.Date, weekStart, ref) {
			out.Weekly = out.Weekly.Add(e.Amount)
		}
		if e.Date.SameDay(ref) {
			out.Daily = out.Daily.Add(e.Amount)
		}
	}
	return out, nil
}

// SummarizeExpenses computes expense rollups over the stored totals.
func SummarizeExpenses(entries []core.ExpenseEntry, ref core.Date) (Summary, error) {
	items := make([]Entry, len(entries))
	for i, e := range entries {
		items[i] = Entry{Amount: e.Total, Date: e.Date}
	}
	return Summarize(items, ref)
}

// NetBalance is total income minus total expenses across both ledgers. No
// currency conversion happens here: all entries share the session currency.
func NetBalance(incomes []core.IncomeEntry, expenses []core.ExpenseEntry) core.Money {
	var balance core.Money
	for _, e := range incomes {
		balance = balance.Add(e.Amount)
	}
	for _, e := range expenses {
		balance = balance.Sub(e.Total)
	}
	return balance
}

// inWeek reports whether d falls inside [weekStart, ref] at day granularity.
func inWeek(d, weekStart, ref core.Date) bool {
	if d.Before(weekStart.Time) {
		return false
	}
	return d.Before(ref.Time) || d.SameDay(ref)
}
