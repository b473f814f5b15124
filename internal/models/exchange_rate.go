package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate stores the operator-entered rate of one currency against the base currency.
type ExchangeRate struct {
	ExchangeRateID string          `db:"exchange_rate_id"`
	CurrencyCode   string          `db:"currency_code"` // FK -> currencies.currency_code
	BaseCurrency   string          `db:"base_currency"`
	Rate           decimal.Decimal `db:"rate"` // NUMERIC(20,10)
	DateEffective  time.Time       `db:"date_effective"`
	AuditFields
}
