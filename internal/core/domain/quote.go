package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteStatus indicates where a quote sits in its lifecycle.
type QuoteStatus string

const (
	QuoteDraft      QuoteStatus = "DRAFT"
	QuoteValidation QuoteStatus = "VALIDATION"
	QuoteSent       QuoteStatus = "SENT"
	QuoteAccepted   QuoteStatus = "ACCEPTED"
	QuoteRejected   QuoteStatus = "REJECTED"
)

// IsValid reports whether s is a known status.
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteDraft, QuoteValidation, QuoteSent, QuoteAccepted, QuoteRejected:
		return true
	}
	return false
}

// IsEditable reports whether pricing inputs may still change in this status.
func (s QuoteStatus) IsEditable() bool {
	return s == QuoteDraft || s == QuoteValidation
}

// RateWarning flags a currency that had no rate and was priced at the identity rate.
type RateWarning struct {
	CurrencyCode string `json:"currencyCode"`
	Usage        string `json:"usage"` // "line" or "target"
}

// Totals is the fully derived pricing aggregate of a quote.
// Amounts are rounded to 2 decimal places.
type Totals struct {
	TotalCostBase      decimal.Decimal `json:"totalCostBase"`
	TotalSellBase      decimal.Decimal `json:"totalSellBase"`
	TotalMarginBase    decimal.Decimal `json:"totalMarginBase"`
	TotalTaxBase       decimal.Decimal `json:"totalTaxBase"`
	TotalWithTaxBase   decimal.Decimal `json:"totalWithTaxBase"`
	TotalSellTarget    decimal.Decimal `json:"totalSellTarget"`
	TotalTaxTarget     decimal.Decimal `json:"totalTaxTarget"`
	TotalWithTaxTarget decimal.Decimal `json:"totalWithTaxTarget"`
	MarginPercent      decimal.Decimal `json:"marginPercent"`
	TargetCurrency     string          `json:"targetCurrency"`
	Warnings           []RateWarning   `json:"warnings,omitempty"`
}

// HasWarnings reports whether any rate fell back to the identity rate.
func (t Totals) HasWarnings() bool {
	return len(t.Warnings) > 0
}

// ApprovalState carries the margin gate result and the workflow audit trail.
// RequiresApproval and Reason are derived from Totals; the remaining fields
// are written only by workflow transitions.
type ApprovalState struct {
	RequiresApproval bool       `json:"requiresApproval"`
	Reason           string     `json:"reason,omitempty"`
	RequestedBy      string     `json:"requestedBy,omitempty"`
	RequestedAt      *time.Time `json:"requestedAt,omitempty"`
	ApprovedBy       string     `json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time `json:"approvedAt,omitempty"`
	RejectionReason  string     `json:"rejectionReason,omitempty"`
}

// ActivityCategory groups activity log entries.
type ActivityCategory string

const (
	ActivityApproval ActivityCategory = "APPROVAL"
	ActivitySystem   ActivityCategory = "SYSTEM"
)

// ActivityTone hints how an entry should be rendered.
type ActivityTone string

const (
	ToneInfo    ActivityTone = "INFO"
	ToneSuccess ActivityTone = "SUCCESS"
	ToneWarning ActivityTone = "WARNING"
	ToneDanger  ActivityTone = "DANGER"
)

// ActivityEntry is one append-only audit record produced by a workflow transition.
type ActivityEntry struct {
	Text     string           `json:"text"`
	Category ActivityCategory `json:"category"`
	Tone     ActivityTone     `json:"tone"`
	Actor    string           `json:"actor,omitempty"`
	At       time.Time        `json:"at"`
}

// LineRecord is the plain, storage-friendly shape of a LineItem.
type LineRecord struct {
	ID          string          `json:"id"`
	Section     Section         `json:"section"`
	Description string          `json:"description"`
	BuyPrice    decimal.Decimal `json:"buyPrice"`
	BuyCurrency string          `json:"buyCurrency"`
	MarkupKind  MarkupKind      `json:"markupKind"`
	MarkupValue decimal.Decimal `json:"markupValue"`
	TaxRule     TaxRule         `json:"taxRule"`
}

// QuoteRecord is the plain structured record a quote serializes to for persistence.
// Totals and the derived half of ApprovalState are stored for read models only;
// loading a record always recomputes them.
type QuoteRecord struct {
	QuoteID        string                     `json:"quoteID"`
	Reference      string                     `json:"reference"`
	ClientName     string                     `json:"clientName"`
	Status         QuoteStatus                `json:"status"`
	BaseCurrency   string                     `json:"baseCurrency"`
	TargetCurrency string                     `json:"targetCurrency"`
	Rates          map[string]decimal.Decimal `json:"rates"`
	Lines          []LineRecord               `json:"lines"`
	Totals         Totals                     `json:"totals"`
	Approval       ApprovalState              `json:"approval"`
	Version        int                        `json:"version"`
	AuditFields
}
