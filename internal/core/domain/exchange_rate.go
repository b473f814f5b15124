package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is an operator-entered rate for one currency against the base
// currency. New quotes snapshot the latest rate of every currency.
type ExchangeRate struct {
	ExchangeRateID string          `json:"exchangeRateID"`
	CurrencyCode   string          `json:"currencyCode"`
	BaseCurrency   string          `json:"baseCurrency"`
	Rate           decimal.Decimal `json:"rate"` // Units of base currency per 1 unit of CurrencyCode
	DateEffective  time.Time       `json:"dateEffective"`
	AuditFields
}

// BuildCurrencyTable snapshots rates into a CurrencyTable. Rates quoted against a
// different base are ignored; later effective dates win.
func BuildCurrencyTable(base string, rates []ExchangeRate) CurrencyTable {
	base = NormalizeCurrencyCode(base)
	latest := make(map[string]ExchangeRate, len(rates))
	for _, r := range rates {
		if NormalizeCurrencyCode(r.BaseCurrency) != base {
			continue
		}
		code := NormalizeCurrencyCode(r.CurrencyCode)
		if prev, ok := latest[code]; ok && prev.DateEffective.After(r.DateEffective) {
			continue
		}
		latest[code] = r
	}
	table := NewCurrencyTable(base)
	for code, r := range latest {
		if r.Rate.IsPositive() && AmountInRange(r.Rate) {
			table = table.WithRate(code, r.Rate)
		}
	}
	return table
}
