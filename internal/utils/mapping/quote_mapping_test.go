package mapping_test

import (
	"testing"
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/SscSPs/freight_quoting_app/internal/models"
	"github.com/SscSPs/freight_quoting_app/internal/utils/mapping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteMapping_PreservesRecord(t *testing.T) {
	requestedAt := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	rec := domain.QuoteRecord{
		QuoteID:        "Q-1",
		Reference:      "Q-20261015-ABC123",
		ClientName:     "Acme Shipping",
		Status:         domain.QuoteValidation,
		BaseCurrency:   "EUR",
		TargetCurrency: "USD",
		Rates:          map[string]decimal.Decimal{"EUR": decimal.NewFromInt(1), "USD": decimal.RequireFromString("0.92")},
		Lines: []domain.LineRecord{{
			ID: "L-1", Section: domain.SectionFreight, BuyPrice: decimal.RequireFromString("100.50"),
			BuyCurrency: "USD", MarkupKind: domain.MarkupFixedAmount, MarkupValue: decimal.RequireFromString("-5"),
			TaxRule: domain.TaxReducedTransport,
		}},
		Approval: domain.ApprovalState{RequiresApproval: true, Reason: "Margin 9.1% is below 15% threshold", RequestedBy: "alice", RequestedAt: &requestedAt},
		Version:  4,
	}

	row, err := mapping.ToModelQuote(rec)
	require.NoError(t, err)
	assert.Equal(t, "VALIDATION", row.Status)
	assert.JSONEq(t, `[{"id":"L-1","section":"FREIGHT","description":"","buyPrice":"100.5","buyCurrency":"USD","markupKind":"FIXED_AMOUNT","markupValue":"-5","taxRule":"REDUCED_TRANSPORT"}]`, string(row.Lines))

	back, err := mapping.ToDomainQuote(row)
	require.NoError(t, err)
	assert.Equal(t, rec.Status, back.Status)
	assert.Equal(t, rec.Version, back.Version)
	require.Len(t, back.Lines, 1)
	assert.True(t, rec.Lines[0].BuyPrice.Equal(back.Lines[0].BuyPrice))
	assert.True(t, rec.Lines[0].MarkupValue.Equal(back.Lines[0].MarkupValue))
	assert.Equal(t, domain.MarkupFixedAmount, back.Lines[0].MarkupKind)
	assert.True(t, back.Rates["USD"].Equal(decimal.RequireFromString("0.92")))
	require.NotNil(t, back.Approval.RequestedAt)
	assert.True(t, requestedAt.Equal(*back.Approval.RequestedAt))
}

func TestQuoteMapping_EmptyLinesEncodeAsArray(t *testing.T) {
	row, err := mapping.ToModelQuote(domain.QuoteRecord{QuoteID: "Q-2", Status: domain.QuoteDraft})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(row.Lines))
}

func TestToDomainQuote_RejectsCorruptJSON(t *testing.T) {
	_, err := mapping.ToDomainQuote(models.Quote{QuoteID: "Q-3", Lines: []byte(`{not json`)})
	assert.Error(t, err)
}
