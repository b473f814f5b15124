package pricing

import (
	"fmt"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// MinimumMarginPercent is the margin below which a quote needs manager sign-off.
const MinimumMarginPercent = 15

var minimumMargin = decimal.NewFromInt(MinimumMarginPercent)

// EvaluateApproval applies the margin gate to computed totals. An empty or
// zero-value quote never requires approval. Only the derived fields of the
// returned state are set.
func EvaluateApproval(totals domain.Totals) domain.ApprovalState {
	if !totals.TotalSellBase.IsPositive() {
		return domain.ApprovalState{}
	}
	if totals.MarginPercent.GreaterThanOrEqual(minimumMargin) {
		return domain.ApprovalState{}
	}
	return domain.ApprovalState{
		RequiresApproval: true,
		Reason: fmt.Sprintf("Margin %s%% is below %d%% threshold",
			formatMargin(totals.MarginPercent), MinimumMarginPercent),
	}
}

// formatMargin shows one decimal. A margin that would round up to the threshold
// is truncated instead, so 14.99 reads 14.9.
func formatMargin(margin decimal.Decimal) string {
	rounded := margin.Round(1)
	if rounded.GreaterThanOrEqual(minimumMargin) {
		rounded = margin.Truncate(1)
	}
	return rounded.StringFixed(1)
}
