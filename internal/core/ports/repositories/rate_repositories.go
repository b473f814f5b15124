package repositories

import (
	"context"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
)

// CurrencyRepositoryFacade is the registry of currencies that lines, rates and
// target currencies may reference. Codes are stored upper-case.
type CurrencyRepositoryFacade interface {
	// FindCurrencyByCode returns apperrors.ErrNotFound for an unregistered code.
	FindCurrencyByCode(ctx context.Context, currencyCode string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context) ([]domain.Currency, error)
	// SaveCurrency inserts a currency; an existing code yields apperrors.ErrDuplicate.
	SaveCurrency(ctx context.Context, currency domain.Currency) error
}

// ExchangeRateRepositoryFacade stores the operator rate table that new quotes
// snapshot. Rates are kept per currency, base currency and effective day.
type ExchangeRateRepositoryFacade interface {
	// FindExchangeRate returns the latest effective rate of a currency against base.
	FindExchangeRate(ctx context.Context, currencyCode, baseCurrency string) (*domain.ExchangeRate, error)

	// ListLatestExchangeRates returns one rate per currency: the latest effective one.
	ListLatestExchangeRates(ctx context.Context, baseCurrency string) ([]domain.ExchangeRate, error)

	// SaveExchangeRate replaces any rate for the same currency, base and day.
	SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error
}
