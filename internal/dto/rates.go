package dto

import (
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCurrencyRequest registers a currency quotes may be priced in.
type CreateCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,currency_code"`
	Symbol       string `json:"symbol" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Precision    *int   `json:"precision" binding:"omitempty,min=0,max=8"` // 2 when omitted
}

// CreateExchangeRateRequest records the rate of a currency against the base currency.
type CreateExchangeRateRequest struct {
	CurrencyCode  string          `json:"currencyCode" binding:"required,currency_code"`
	Rate          decimal.Decimal `json:"rate" binding:"required"` // Units of base currency per 1 unit
	DateEffective *time.Time      `json:"dateEffective"`           // Today when omitted
}

// AuditResponse is flattened into every registry response.
type AuditResponse struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"`
}

type CurrencyResponse struct {
	CurrencyCode string `json:"currencyCode"`
	Symbol       string `json:"symbol"`
	Name         string `json:"name"`
	Precision    int    `json:"precision"`
	AuditResponse
}

// ExchangeRateResponse carries the rate as a string so no precision is lost in JSON numbers.
type ExchangeRateResponse struct {
	ExchangeRateID string    `json:"exchangeRateID"`
	CurrencyCode   string    `json:"currencyCode"`
	BaseCurrency   string    `json:"baseCurrency"`
	Rate           string    `json:"rate"`
	DateEffective  time.Time `json:"dateEffective"`
	AuditResponse
}

func toAuditResponse(a domain.AuditFields) AuditResponse {
	return AuditResponse{
		CreatedAt:     a.CreatedAt,
		CreatedBy:     a.CreatedBy,
		LastUpdatedAt: a.LastUpdatedAt,
		LastUpdatedBy: a.LastUpdatedBy,
	}
}

func ToCurrencyResponse(curr *domain.Currency) CurrencyResponse {
	return CurrencyResponse{
		CurrencyCode:  curr.CurrencyCode,
		Symbol:        curr.Symbol,
		Name:          curr.Name,
		Precision:     curr.Precision,
		AuditResponse: toAuditResponse(curr.AuditFields),
	}
}

func ToExchangeRateResponse(rate *domain.ExchangeRate) ExchangeRateResponse {
	return ExchangeRateResponse{
		ExchangeRateID: rate.ExchangeRateID,
		CurrencyCode:   rate.CurrencyCode,
		BaseCurrency:   rate.BaseCurrency,
		Rate:           rate.Rate.String(),
		DateEffective:  rate.DateEffective,
		AuditResponse:  toAuditResponse(rate.AuditFields),
	}
}

func toResponses[T, R any](items []T, convert func(*T) R) []R {
	out := make([]R, len(items))
	for i := range items {
		out[i] = convert(&items[i])
	}
	return out
}

func ToListCurrencyResponse(currencies []domain.Currency) []CurrencyResponse {
	return toResponses(currencies, ToCurrencyResponse)
}

func ToListExchangeRateResponse(rates []domain.ExchangeRate) []ExchangeRateResponse {
	return toResponses(rates, ToExchangeRateResponse)
}
