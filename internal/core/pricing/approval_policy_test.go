package pricing_test

import (
	"testing"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/SscSPs/freight_quoting_app/internal/core/pricing"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateApproval_Threshold(t *testing.T) {
	tests := []struct {
		name       string
		sell       string
		margin     string
		wantApprov bool
		wantReason string
	}{
		{"exactly at threshold", "100", "15.00", false, ""},
		{"just below threshold", "100", "14.99", true, "Margin 14.9% is below 15% threshold"},
		{"rounds below threshold", "100", "14.94", true, "Margin 14.9% is below 15% threshold"},
		{"rounds half up", "100", "9.05", true, "Margin 9.1% is below 15% threshold"},
		{"comfortable margin", "100", "32.5", false, ""},
		{"negative margin", "100", "-4.25", true, "Margin -4.3% is below 15% threshold"},
		{"zero sell never needs approval", "0", "0", false, ""},
		{"negative sell never needs approval", "-10", "0", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := pricing.EvaluateApproval(domain.Totals{
				TotalSellBase: dec(tt.sell),
				MarginPercent: dec(tt.margin),
			})
			assert.Equal(t, tt.wantApprov, state.RequiresApproval)
			assert.Equal(t, tt.wantReason, state.Reason)
			assert.Empty(t, state.ApprovedBy)
			assert.Nil(t, state.RequestedAt)
		})
	}
}

func TestEvaluateApproval_ComputedBoundary(t *testing.T) {
	table := domain.NewCurrencyTable("EUR")

	atThreshold := pricing.Compute([]domain.LineItem{fixedLine("a", "85", "EUR", "15", domain.TaxStandard)}, table, "EUR")
	assertDecimal(t, "15", atThreshold.MarginPercent, "margin percent")
	assert.False(t, pricing.EvaluateApproval(atThreshold).RequiresApproval)

	below := pricing.Compute([]domain.LineItem{fixedLine("a", "85.01", "EUR", "14.99", domain.TaxStandard)}, table, "EUR")
	assertDecimal(t, "14.99", below.MarginPercent, "margin percent")
	approval := pricing.EvaluateApproval(below)
	assert.True(t, approval.RequiresApproval)
	assert.Equal(t, "Margin 14.9% is below 15% threshold", approval.Reason)
}
