// Package currency renders Money values in a session currency. Codes are
// validated against the ISO 4217 tables shipped with golang.org/x/text;
// the fraction width follows the currency's cash rounding scale.
package currency

import (
	"errors"
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"tally/internal/core"
)

var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Known display symbols. Codes outside this map fall back to the ISO code
// itself, separated from the amount by a space.
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CNY": "¥",
	"INR": "₹",
	"KRW": "₩",
	"NGN": "₦",
	"RUB": "₽",
	"TRY": "₺",
	"BRL": "R$",
	"AUD": "A$",
	"CAD": "C$",
	"NZD": "NZ$",
	"MXN": "MX$",
	"HKD": "HK$",
	"ZAR": "R",
}

// Formatter renders amounts for a single fixed currency.
type Formatter struct {
	unit    currency.Unit
	symbol  string
	scale   int
	printer *message.Printer
}

// NewFormatter validates the ISO code and builds a formatter for it.
// Unknown codes yield ErrUnsupportedCurrency; callers are expected to
// fall back to FormatRaw.
func NewFormatter(code string) (*Formatter, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	scale, _ := currency.Cash.Rounding(unit)
	if scale < 0 {
		scale = 0
	}
	if scale > 3 {
		scale = 3
	}
	return &Formatter{
		unit:    unit,
		symbol:  symbols[unit.String()],
		scale:   scale,
		printer: message.NewPrinter(language.AmericanEnglish),
	}, nil
}

// Code returns the normalized ISO code.
func (f *Formatter) Code() string {
	return f.unit.String()
}

// Format renders the amount with thousands grouping, the currency's
// fraction width and its symbol. Negative amounts carry a leading sign.
func (f *Formatter) Format(m core.Money) string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	amount := f.render(cents)
	if f.symbol != "" {
		return sign + f.symbol + amount
	}
	return sign + f.unit.String() + " " + amount
}

func (f *Formatter) render(cents int64) string {
	major, frac := splitCents(cents, f.scale)
	grouped := f.printer.Sprintf("%d", major)
	if f.scale == 0 {
		return grouped
	}
	return fmt.Sprintf("%s.%0*d", grouped, f.scale, frac)
}

// FormatRaw renders the amount with grouping and two decimals but no
// currency marker. Used when no currency has been resolved or the
// resolved code is unsupported.
func FormatRaw(m core.Money) string {
	sign := ""
	cents := m.Cents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	grouped := message.NewPrinter(language.AmericanEnglish).Sprintf("%d", cents/100)
	return fmt.Sprintf("%s%s.%02d", sign, grouped, cents%100)
}

// splitCents rescales a hundredths amount to the given fraction width,
// rounding half-up when the width shrinks.
func splitCents(cents int64, scale int) (major, frac int64) {
	switch scale {
	case 0:
		return (cents + 50) / 100, 0
	case 1:
		tenths := (cents + 5) / 10
		return tenths / 10, tenths % 10
	case 3:
		return cents / 100, (cents % 100) * 10
	default:
		return cents / 100, cents % 100
	}
}
