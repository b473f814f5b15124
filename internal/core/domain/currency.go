package domain

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency represents a supported currency in the domain.
type Currency struct {
	CurrencyCode string `json:"currencyCode"` // ISO 4217 code (e.g., "USD")
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int    `json:"precision"` // Number of minor units shown to clients
	AuditFields
}

// NormalizeCurrencyCode upper-cases and trims an operator-entered code.
func NormalizeCurrencyCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CurrencyTable maps currency codes to a rate expressed in the organization's
// base currency: units of base currency per 1 unit of the keyed currency.
// The base currency always maps to 1.
type CurrencyTable struct {
	base  string
	rates map[string]decimal.Decimal
}

// NewCurrencyTable creates a table holding only the base currency.
func NewCurrencyTable(base string) CurrencyTable {
	base = NormalizeCurrencyCode(base)
	return CurrencyTable{
		base:  base,
		rates: map[string]decimal.Decimal{base: decimal.NewFromInt(1)},
	}
}

// Base returns the base currency code.
func (t CurrencyTable) Base() string {
	return t.base
}

// Rate returns the rate for code and whether the code is known.
// Unknown codes yield the identity rate so pricing never fails on a missing rate.
func (t CurrencyTable) Rate(code string) (decimal.Decimal, bool) {
	code = NormalizeCurrencyCode(code)
	if code == t.base {
		return decimal.NewFromInt(1), true
	}
	rate, ok := t.rates[code]
	if !ok || !rate.IsPositive() {
		return decimal.NewFromInt(1), false
	}
	return rate, true
}

// Has reports whether code has an explicit rate in the table.
func (t CurrencyTable) Has(code string) bool {
	_, ok := t.Rate(code)
	return ok
}

// WithRate returns a copy of the table with code set to rate.
// The base currency rate cannot be changed.
func (t CurrencyTable) WithRate(code string, rate decimal.Decimal) CurrencyTable {
	code = NormalizeCurrencyCode(code)
	out := t.Clone()
	if code == out.base {
		return out
	}
	out.rates[code] = rate
	return out
}

// Clone returns a deep copy of the table.
func (t CurrencyTable) Clone() CurrencyTable {
	rates := make(map[string]decimal.Decimal, len(t.rates))
	for code, rate := range t.rates {
		rates[code] = rate
	}
	return CurrencyTable{base: t.base, rates: rates}
}

// Codes returns the currency codes in the table, sorted.
func (t CurrencyTable) Codes() []string {
	codes := make([]string, 0, len(t.rates))
	for code := range t.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Rates returns a copy of the raw rate map, suitable for serialization.
func (t CurrencyTable) Rates() map[string]decimal.Decimal {
	return t.Clone().rates
}

// CurrencyTableFromRates rebuilds a table from a serialized rate map.
// Non-positive rates are dropped; the base entry is always forced to 1.
func CurrencyTableFromRates(base string, rates map[string]decimal.Decimal) CurrencyTable {
	table := NewCurrencyTable(base)
	for code, rate := range rates {
		if !rate.IsPositive() || !AmountInRange(rate) {
			continue
		}
		table = table.WithRate(code, rate)
	}
	return table
}
