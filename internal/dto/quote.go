package dto

import (
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/SscSPs/freight_quoting_app/internal/utils"
	"github.com/shopspring/decimal"
)

// amountPrecision is the number of decimals shown for every money amount.
const amountPrecision = 2

// CreateQuoteRequest opens a new draft quote.
type CreateQuoteRequest struct {
	ClientName     string `json:"clientName" binding:"required,max=200"`
	TargetCurrency string `json:"targetCurrency" binding:"omitempty,currency_code"` // Defaults to the configured display currency
}

// AddLineRequest adds a charge line. Omitted fields keep the line defaults
// (base currency, 20% markup, standard tax).
type AddLineRequest struct {
	Section     string  `json:"section" binding:"required,oneof=ORIGIN FREIGHT DESTINATION"`
	Description string  `json:"description" binding:"max=500"`
	BuyPrice    *string `json:"buyPrice"`
	BuyCurrency string  `json:"buyCurrency" binding:"omitempty,currency_code"`
	MarkupKind  string  `json:"markupKind" binding:"omitempty,oneof=PERCENT FIXED_AMOUNT"`
	MarkupValue *string `json:"markupValue"`
	TaxRule     string  `json:"taxRule" binding:"omitempty,oneof=STANDARD REDUCED_TRANSPORT ZERO_RATED_EXPORT NON_TAXABLE_DISBURSEMENT"`
}

// UpdateLineRequest replaces one field of a line. Value is the raw operator input.
type UpdateLineRequest struct {
	Field string `json:"field" binding:"required,oneof=section description buyPrice buyCurrency markupKind markupValue taxRule"`
	Value string `json:"value"`
}

// SetRateRequest sets a quote's rate for one currency.
type SetRateRequest struct {
	Rate decimal.Decimal `json:"rate" binding:"required"`
}

// SetTargetCurrencyRequest changes the display currency of a quote.
type SetTargetCurrencyRequest struct {
	CurrencyCode string `json:"currencyCode" binding:"required,currency_code"`
}

// RejectQuoteRequest carries the manager's reason for sending a quote back to draft.
type RejectQuoteRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// DeclineQuoteRequest records the client's optional reason for declining.
type DeclineQuoteRequest struct {
	Reason string `json:"reason" binding:"max=1000"`
}

// OverrideStatusRequest forces a status.
type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=DRAFT VALIDATION SENT ACCEPTED REJECTED"`
}

// ListQuotesParams defines the query parameters for listing quotes.
type ListQuotesParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// LineItemResponse is the read model of a charge line.
type LineItemResponse struct {
	ID          string `json:"id"`
	Section     string `json:"section"`
	Description string `json:"description"`
	BuyPrice    string `json:"buyPrice"`
	BuyCurrency string `json:"buyCurrency"`
	MarkupKind  string `json:"markupKind"`
	MarkupValue string `json:"markupValue"`
	TaxRule     string `json:"taxRule"`
}

// RateWarningResponse flags a currency priced at the identity rate.
type RateWarningResponse struct {
	CurrencyCode string `json:"currencyCode"`
	Usage        string `json:"usage"`
}

// TotalsResponse is the read model of the derived totals.
type TotalsResponse struct {
	TotalCostBase      string                `json:"totalCostBase"`
	TotalSellBase      string                `json:"totalSellBase"`
	TotalMarginBase    string                `json:"totalMarginBase"`
	TotalTaxBase       string                `json:"totalTaxBase"`
	TotalWithTaxBase   string                `json:"totalWithTaxBase"`
	TotalSellTarget    string                `json:"totalSellTarget"`
	TotalTaxTarget     string                `json:"totalTaxTarget"`
	TotalWithTaxTarget string                `json:"totalWithTaxTarget"`
	MarginPercent      string                `json:"marginPercent"`
	TargetCurrency     string                `json:"targetCurrency"`
	Warnings           []RateWarningResponse `json:"warnings"`
}

// ApprovalResponse is the read model of the approval gate and its audit trail.
type ApprovalResponse struct {
	RequiresApproval bool       `json:"requiresApproval"`
	Reason           string     `json:"reason,omitempty"`
	RequestedBy      string     `json:"requestedBy,omitempty"`
	RequestedAt      *time.Time `json:"requestedAt,omitempty"`
	ApprovedBy       string     `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	RejectionReason  string     `json:"rejectionReason,omitempty"`
}

// QuoteResponse is the full client-facing projection of a quote.
type QuoteResponse struct {
	QuoteID        string             `json:"quoteID"`
	Reference      string             `json:"reference"`
	ClientName     string             `json:"clientName"`
	Status         string             `json:"status"`
	BaseCurrency   string             `json:"baseCurrency"`
	TargetCurrency string             `json:"targetCurrency"`
	Rates          map[string]string  `json:"rates"`
	Lines          []LineItemResponse `json:"lines"`
	Totals         TotalsResponse     `json:"totals"`
	Approval       ApprovalResponse   `json:"approval"`
	Version        int                `json:"version"`
	CreatedAt      time.Time          `json:"createdAt"`
	CreatedBy      string             `json:"createdBy"`
	LastUpdatedAt  time.Time          `json:"lastUpdatedAt"`
	LastUpdatedBy  string             `json:"lastUpdatedBy"`
}

// QuoteSummaryResponse is the list-view projection of a quote.
type QuoteSummaryResponse struct {
	QuoteID            string    `json:"quoteID"`
	Reference          string    `json:"reference"`
	ClientName         string    `json:"clientName"`
	Status             string    `json:"status"`
	TargetCurrency     string    `json:"targetCurrency"`
	TotalWithTaxTarget string    `json:"totalWithTaxTarget"`
	MarginPercent      string    `json:"marginPercent"`
	RequiresApproval   bool      `json:"requiresApproval"`
	LastUpdatedAt      time.Time `json:"lastUpdatedAt"`
}

// ListQuotesResponse wraps a page of quotes.
type ListQuotesResponse struct {
	Quotes    []QuoteSummaryResponse `json:"quotes"`
	NextToken *string                `json:"nextToken,omitempty"`
}

// ActivityEntryResponse is one audit trail entry.
type ActivityEntryResponse struct {
	Text     string    `json:"text"`
	Category string    `json:"category"`
	Tone     string    `json:"tone"`
	Actor    string    `json:"actor,omitempty"`
	At       time.Time `json:"at"`
}

func formatAmount(d decimal.Decimal) string {
	return utils.FormatWithPrecision(d, amountPrecision)
}

// ToTotalsResponse converts derived totals for display.
func ToTotalsResponse(t domain.Totals) TotalsResponse {
	warnings := make([]RateWarningResponse, len(t.Warnings))
	for i, w := range t.Warnings {
		warnings[i] = RateWarningResponse{CurrencyCode: w.CurrencyCode, Usage: w.Usage}
	}
	return TotalsResponse{
		TotalCostBase:      formatAmount(t.TotalCostBase),
		TotalSellBase:      formatAmount(t.TotalSellBase),
		TotalMarginBase:    formatAmount(t.TotalMarginBase),
		TotalTaxBase:       formatAmount(t.TotalTaxBase),
		TotalWithTaxBase:   formatAmount(t.TotalWithTaxBase),
		TotalSellTarget:    formatAmount(t.TotalSellTarget),
		TotalTaxTarget:     formatAmount(t.TotalTaxTarget),
		TotalWithTaxTarget: formatAmount(t.TotalWithTaxTarget),
		MarginPercent:      formatAmount(t.MarginPercent),
		TargetCurrency:     t.TargetCurrency,
		Warnings:           warnings,
	}
}

// ToQuoteResponse converts a quote record to its API projection.
func ToQuoteResponse(q *domain.QuoteRecord) QuoteResponse {
	lines := make([]LineItemResponse, len(q.Lines))
	for i, l := range q.Lines {
		lines[i] = LineItemResponse{
			ID:          l.ID,
			Section:     string(l.Section),
			Description: l.Description,
			BuyPrice:    formatAmount(l.BuyPrice),
			BuyCurrency: l.BuyCurrency,
			MarkupKind:  string(l.MarkupKind),
			MarkupValue: l.MarkupValue.String(),
			TaxRule:     string(l.TaxRule),
		}
	}

	rates := make(map[string]string, len(q.Rates))
	for code, rate := range q.Rates {
		rates[code] = rate.String()
	}

	return QuoteResponse{
		QuoteID:        q.QuoteID,
		Reference:      q.Reference,
		ClientName:     q.ClientName,
		Status:         string(q.Status),
		BaseCurrency:   q.BaseCurrency,
		TargetCurrency: q.TargetCurrency,
		Rates:          rates,
		Lines:          lines,
		Totals:         ToTotalsResponse(q.Totals),
		Approval: ApprovalResponse{
			RequiresApproval: q.Approval.RequiresApproval,
			Reason:           q.Approval.Reason,
			RequestedBy:      q.Approval.RequestedBy,
			RequestedAt:      q.Approval.RequestedAt,
			ApprovedBy:       q.Approval.ApprovedBy,
			ApprovedAt:       q.Approval.ApprovedAt,
			RejectionReason:  q.Approval.RejectionReason,
		},
		Version:       q.Version,
		CreatedAt:     q.CreatedAt,
		CreatedBy:     q.CreatedBy,
		LastUpdatedAt: q.LastUpdatedAt,
		LastUpdatedBy: q.LastUpdatedBy,
	}
}

// ToListQuotesResponse converts a page of quote records.
func ToListQuotesResponse(quotes []domain.QuoteRecord, nextToken *string) ListQuotesResponse {
	summaries := make([]QuoteSummaryResponse, len(quotes))
	for i, q := range quotes {
		summaries[i] = QuoteSummaryResponse{
			QuoteID:            q.QuoteID,
			Reference:          q.Reference,
			ClientName:         q.ClientName,
			Status:             string(q.Status),
			TargetCurrency:     q.TargetCurrency,
			TotalWithTaxTarget: formatAmount(q.Totals.TotalWithTaxTarget),
			MarginPercent:      formatAmount(q.Totals.MarginPercent),
			RequiresApproval:   q.Approval.RequiresApproval,
			LastUpdatedAt:      q.LastUpdatedAt,
		}
	}
	return ListQuotesResponse{Quotes: summaries, NextToken: nextToken}
}

// ToActivityResponse converts an audit trail.
func ToActivityResponse(entries []domain.ActivityEntry) []ActivityEntryResponse {
	res := make([]ActivityEntryResponse, len(entries))
	for i, e := range entries {
		res[i] = ActivityEntryResponse{
			Text:     e.Text,
			Category: string(e.Category),
			Tone:     string(e.Tone),
			Actor:    e.Actor,
			At:       e.At,
		}
	}
	return res
}
