package mapping

import (
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/SscSPs/freight_quoting_app/internal/models"
)

func toModelAuditFields(d domain.AuditFields) models.AuditFields {
	return models.AuditFields(d)
}

func toDomainAuditFields(m models.AuditFields) domain.AuditFields {
	return domain.AuditFields(m)
}

func mapSlice[From, To any](in []From, convert func(From) To) []To {
	out := make([]To, len(in))
	for i, v := range in {
		out[i] = convert(v)
	}
	return out
}

// ToModelCurrency converts a registry entry for storage. Codes are normalized
// so CHAR(3) keys compare exactly.
func ToModelCurrency(d domain.Currency) models.Currency {
	return models.Currency{
		CurrencyCode: domain.NormalizeCurrencyCode(d.CurrencyCode),
		Symbol:       d.Symbol,
		Name:         d.Name,
		Precision:    d.Precision,
		AuditFields:  toModelAuditFields(d.AuditFields),
	}
}

func ToDomainCurrency(m models.Currency) domain.Currency {
	return domain.Currency{
		CurrencyCode: domain.NormalizeCurrencyCode(m.CurrencyCode),
		Symbol:       m.Symbol,
		Name:         m.Name,
		Precision:    m.Precision,
		AuditFields:  toDomainAuditFields(m.AuditFields),
	}
}

func ToDomainCurrencySlice(ms []models.Currency) []domain.Currency {
	return mapSlice(ms, ToDomainCurrency)
}

// ToModelExchangeRate converts an operator rate for storage.
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		ExchangeRateID: d.ExchangeRateID,
		CurrencyCode:   domain.NormalizeCurrencyCode(d.CurrencyCode),
		BaseCurrency:   domain.NormalizeCurrencyCode(d.BaseCurrency),
		Rate:           d.Rate,
		DateEffective:  d.DateEffective.UTC(),
		AuditFields:    toModelAuditFields(d.AuditFields),
	}
}

func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		ExchangeRateID: m.ExchangeRateID,
		CurrencyCode:   domain.NormalizeCurrencyCode(m.CurrencyCode),
		BaseCurrency:   domain.NormalizeCurrencyCode(m.BaseCurrency),
		Rate:           m.Rate,
		DateEffective:  m.DateEffective.UTC(),
		AuditFields:    toDomainAuditFields(m.AuditFields),
	}
}

func ToDomainExchangeRateSlice(ms []models.ExchangeRate) []domain.ExchangeRate {
	return mapSlice(ms, ToDomainExchangeRate)
}
