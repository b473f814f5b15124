package domain

import (
	"github.com/shopspring/decimal"
)

// Section classifies a charge line. It does not affect pricing.
type Section string

const (
	SectionOrigin      Section = "ORIGIN"
	SectionFreight     Section = "FREIGHT"
	SectionDestination Section = "DESTINATION"
)

// IsValid reports whether s is one of the known sections.
func (s Section) IsValid() bool {
	switch s {
	case SectionOrigin, SectionFreight, SectionDestination:
		return true
	}
	return false
}

// TaxRule names one of the fixed tax treatments a charge line can carry.
type TaxRule string

const (
	TaxStandard               TaxRule = "STANDARD"
	TaxReducedTransport       TaxRule = "REDUCED_TRANSPORT"
	TaxZeroRatedExport        TaxRule = "ZERO_RATED_EXPORT"
	TaxNonTaxableDisbursement TaxRule = "NON_TAXABLE_DISBURSEMENT"
)

var taxRates = map[TaxRule]decimal.Decimal{
	TaxStandard:               decimal.RequireFromString("0.20"),
	TaxReducedTransport:       decimal.RequireFromString("0.10"),
	TaxZeroRatedExport:        decimal.Zero,
	TaxNonTaxableDisbursement: decimal.Zero,
}

// IsValid reports whether r is one of the known tax rules.
func (r TaxRule) IsValid() bool {
	_, ok := taxRates[r]
	return ok
}

// Rate returns the tax rate as a fraction (0.20 for 20%). Unknown rules are untaxed.
func (r TaxRule) Rate() decimal.Decimal {
	return taxRates[r]
}

// MarkupKind is the wire tag of a Markup variant.
type MarkupKind string

const (
	MarkupPercent     MarkupKind = "PERCENT"
	MarkupFixedAmount MarkupKind = "FIXED_AMOUNT"
)

// Markup converts a buy cost into a sell price. It is a closed sum type:
// the only implementations are PercentMarkup and FixedAmountMarkup.
type Markup interface {
	Kind() MarkupKind
	Amount() decimal.Decimal
	sealedMarkup()
}

// PercentMarkup adds Value percent of the cost (20 means 20%).
type PercentMarkup struct {
	Value decimal.Decimal
}

func (PercentMarkup) Kind() MarkupKind          { return MarkupPercent }
func (m PercentMarkup) Amount() decimal.Decimal { return m.Value }
func (PercentMarkup) sealedMarkup()             {}

// FixedAmountMarkup adds Value, expressed in the line's buy currency.
// A negative value is a forced discount.
type FixedAmountMarkup struct {
	Value decimal.Decimal
}

func (FixedAmountMarkup) Kind() MarkupKind          { return MarkupFixedAmount }
func (m FixedAmountMarkup) Amount() decimal.Decimal { return m.Value }
func (FixedAmountMarkup) sealedMarkup()             {}

// NewMarkup builds the variant named by kind. ok is false for an unknown kind.
func NewMarkup(kind MarkupKind, value decimal.Decimal) (m Markup, ok bool) {
	switch kind {
	case MarkupPercent:
		return PercentMarkup{Value: value}, true
	case MarkupFixedAmount:
		return FixedAmountMarkup{Value: value}, true
	}
	return nil, false
}

// DefaultMarkup is applied to newly added lines.
func DefaultMarkup() Markup {
	return PercentMarkup{Value: decimal.NewFromInt(20)}
}

// LineItem is a single buy-side charge on a quote.
type LineItem struct {
	ID          string          `json:"id"`
	Section     Section         `json:"section"`
	Description string          `json:"description"`
	BuyPrice    decimal.Decimal `json:"buyPrice"`    // Non-negative, in BuyCurrency
	BuyCurrency string          `json:"buyCurrency"` // Expected to be present in the CurrencyTable
	Markup      Markup          `json:"-"`
	TaxRule     TaxRule         `json:"taxRule"`
}

// LineField names an individually updatable LineItem field.
type LineField string

const (
	FieldSection     LineField = "section"
	FieldDescription LineField = "description"
	FieldBuyPrice    LineField = "buyPrice"
	FieldBuyCurrency LineField = "buyCurrency"
	FieldMarkupKind  LineField = "markupKind"
	FieldMarkupValue LineField = "markupValue"
	FieldTaxRule     LineField = "taxRule"
)

// IsValid reports whether f is an updatable field.
func (f LineField) IsValid() bool {
	switch f {
	case FieldSection, FieldDescription, FieldBuyPrice, FieldBuyCurrency,
		FieldMarkupKind, FieldMarkupValue, FieldTaxRule:
		return true
	}
	return false
}
