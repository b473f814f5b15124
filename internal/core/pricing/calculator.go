// Package pricing turns buy-side charge lines into client-facing totals and
// decides whether the resulting margin needs manager sign-off.
//
// Everything in this package is a pure function of its inputs: no clock, no
// randomness, no package state that changes after init.
package pricing

import (
	"sort"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StoragePrecision is the number of decimal places kept on stored totals.
const StoragePrecision int32 = 2

const (
	usageLine   = "line"
	usageTarget = "target"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// LinePricing is the unrounded base-currency breakdown of a single line.
type LinePricing struct {
	CostBase  decimal.Decimal
	SellBase  decimal.Decimal
	TaxBase   decimal.Decimal
	RateKnown bool
}

// PriceLine computes cost, sell and tax of one line in base currency.
// A negative buy price is treated as zero and an unknown buy currency is
// converted at the identity rate (RateKnown reports which happened).
func PriceLine(item domain.LineItem, rates domain.CurrencyTable) LinePricing {
	rate, known := rates.Rate(item.BuyCurrency)

	buyPrice := item.BuyPrice
	if buyPrice.IsNegative() {
		buyPrice = decimal.Zero
	}
	costBase := buyPrice.Mul(rate)

	sellBase := costBase
	switch m := item.Markup.(type) {
	case domain.PercentMarkup:
		sellBase = costBase.Mul(one.Add(m.Value.Shift(-2)))
	case domain.FixedAmountMarkup:
		// The fixed amount is in the buy currency, so it converts at the cost's rate.
		sellBase = costBase.Add(m.Value.Mul(rate))
	}

	return LinePricing{
		CostBase:  costBase,
		SellBase:  sellBase,
		TaxBase:   sellBase.Mul(item.TaxRule.Rate()),
		RateKnown: known,
	}
}

// Compute prices every line and aggregates the quote totals in base currency and
// in targetCurrency. Sums are exact; rounding happens once, on the stored fields.
func Compute(items []domain.LineItem, rates domain.CurrencyTable, targetCurrency string) domain.Totals {
	targetCurrency = domain.NormalizeCurrencyCode(targetCurrency)
	warnings := make(map[domain.RateWarning]struct{})

	var cost, sell, tax decimal.Decimal
	for _, item := range items {
		p := PriceLine(item, rates)
		if !p.RateKnown {
			warnings[domain.RateWarning{CurrencyCode: domain.NormalizeCurrencyCode(item.BuyCurrency), Usage: usageLine}] = struct{}{}
		}
		cost = cost.Add(p.CostBase)
		sell = sell.Add(p.SellBase)
		tax = tax.Add(p.TaxBase)
	}

	margin := sell.Sub(cost)
	withTax := sell.Add(tax)

	targetRate, known := rates.Rate(targetCurrency)
	if !known {
		warnings[domain.RateWarning{CurrencyCode: targetCurrency, Usage: usageTarget}] = struct{}{}
	}

	marginPercent := decimal.Zero
	if sell.IsPositive() {
		marginPercent = margin.Div(sell).Mul(hundred)
	}

	return domain.Totals{
		TotalCostBase:      round(cost),
		TotalSellBase:      round(sell),
		TotalMarginBase:    round(margin),
		TotalTaxBase:       round(tax),
		TotalWithTaxBase:   round(withTax),
		TotalSellTarget:    round(toTarget(sell, targetRate)),
		TotalTaxTarget:     round(toTarget(tax, targetRate)),
		TotalWithTaxTarget: round(toTarget(withTax, targetRate)),
		MarginPercent:      round(marginPercent),
		TargetCurrency:     targetCurrency,
		Warnings:           sortedWarnings(warnings),
	}
}

func toTarget(amount, targetRate decimal.Decimal) decimal.Decimal {
	if targetRate.Equal(one) {
		return amount
	}
	return amount.Div(targetRate)
}

func round(d decimal.Decimal) decimal.Decimal {
	return d.Round(StoragePrecision)
}

func sortedWarnings(set map[domain.RateWarning]struct{}) []domain.RateWarning {
	if len(set) == 0 {
		return nil
	}
	out := make([]domain.RateWarning, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CurrencyCode != out[j].CurrencyCode {
			return out[i].CurrencyCode < out[j].CurrencyCode
		}
		return out[i].Usage < out[j].Usage
	})
	return out
}
