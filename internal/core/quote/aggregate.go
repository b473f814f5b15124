// Package quote holds the quote aggregate: the line items, the rate snapshot,
// the display currency and the workflow status of one quote, kept consistent
// with its derived totals and approval state after every operation.
package quote

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/SscSPs/freight_quoting_app/internal/core/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate is the composition root of the pricing and approval engine.
// All methods are safe for concurrent use; each operation, including its
// recomputation, runs as a single critical section.
type Aggregate struct {
	mu sync.Mutex

	id         string
	reference  string
	clientName string
	version    int
	audit      domain.AuditFields

	lines  []domain.LineItem
	rates  domain.CurrencyTable
	target string
	status domain.QuoteStatus

	totals   domain.Totals
	approval domain.ApprovalState

	clock func() time.Time
	newID func() string
}

// Option customises an Aggregate.
type Option func(*Aggregate)

// WithClock sets the time source used for audit timestamps.
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregate) { a.clock = clock }
}

// WithIDGenerator sets the generator used for new line ids.
func WithIDGenerator(gen func() string) Option {
	return func(a *Aggregate) { a.newID = gen }
}

// NewParams describes a new, empty quote.
type NewParams struct {
	ID             string
	Reference      string
	ClientName     string
	TargetCurrency string // Defaults to the base currency
	CreatedBy      string
	Rates          domain.CurrencyTable
}

// New creates an empty DRAFT quote.
func New(p NewParams, opts ...Option) *Aggregate {
	a := &Aggregate{
		id:         p.ID,
		reference:  p.Reference,
		clientName: strings.TrimSpace(p.ClientName),
		rates:      p.Rates.Clone(),
		target:     domain.NormalizeCurrencyCode(p.TargetCurrency),
		status:     domain.QuoteDraft,
	}
	a.applyOptions(opts)
	if a.target == "" {
		a.target = a.rates.Base()
	}
	now := a.clock()
	a.audit = domain.AuditFields{CreatedAt: now, CreatedBy: p.CreatedBy, LastUpdatedAt: now, LastUpdatedBy: p.CreatedBy}
	a.recompute()
	return a
}

func (a *Aggregate) applyOptions(opts []Option) {
	a.clock = time.Now
	a.newID = uuid.NewString
	for _, opt := range opts {
		opt(a)
	}
}

// recompute rebuilds totals from scratch and, while pricing is still open,
// re-derives the approval gate. Callers must hold a.mu.
func (a *Aggregate) recompute() {
	a.totals = pricing.Compute(a.lines, a.rates, a.target)
	if a.status.IsEditable() {
		a.refreshApproval()
	}
}

// refreshApproval replaces the derived approval fields, keeping the audit trail.
func (a *Aggregate) refreshApproval() {
	derived := pricing.EvaluateApproval(a.totals)
	a.approval.RequiresApproval = derived.RequiresApproval
	a.approval.Reason = derived.Reason
}

func (a *Aggregate) ensureEditable() error {
	if !a.status.IsEditable() {
		return fmt.Errorf("%w: status is %s", ErrQuoteLocked, a.status)
	}
	return nil
}

func (a *Aggregate) lineIndex(id string) int {
	for i, line := range a.lines {
		if line.ID == id {
			return i
		}
	}
	return -1
}

// AddLine appends a line with default pricing (20% markup, standard tax, base currency).
func (a *Aggregate) AddLine(section domain.Section) (domain.LineItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureEditable(); err != nil {
		return domain.LineItem{}, err
	}
	if !section.IsValid() {
		return domain.LineItem{}, apperrors.NewValidationError(fmt.Sprintf("unknown section %q", section))
	}

	line := domain.LineItem{
		ID:          a.newID(),
		Section:     section,
		BuyPrice:    decimal.Zero,
		BuyCurrency: a.rates.Base(),
		Markup:      domain.DefaultMarkup(),
		TaxRule:     domain.TaxStandard,
	}
	a.lines = append(a.lines, line)
	a.recompute()
	return line, nil
}

// UpdateLine replaces one field of a line from operator input and recomputes.
// Non-numeric amounts are read as zero; a negative buy price is rejected.
func (a *Aggregate) UpdateLine(id string, field domain.LineField, raw string) (domain.LineItem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureEditable(); err != nil {
		return domain.LineItem{}, err
	}
	if !field.IsValid() {
		return domain.LineItem{}, apperrors.NewValidationError(fmt.Sprintf("unknown line field %q", field))
	}
	idx := a.lineIndex(id)
	if idx < 0 {
		return domain.LineItem{}, apperrors.NewNotFoundError(fmt.Sprintf("line item %s not found", id))
	}

	line, err := applyField(a.lines[idx], field, raw)
	if err != nil {
		return domain.LineItem{}, err
	}
	a.lines[idx] = line
	a.recompute()
	return line, nil
}

func applyField(line domain.LineItem, field domain.LineField, raw string) (domain.LineItem, error) {
	switch field {
	case domain.FieldSection:
		section := domain.Section(strings.ToUpper(strings.TrimSpace(raw)))
		if !section.IsValid() {
			return line, apperrors.NewValidationError(fmt.Sprintf("unknown section %q", raw))
		}
		line.Section = section
	case domain.FieldDescription:
		line.Description = strings.TrimSpace(raw)
	case domain.FieldBuyPrice:
		price := ParseAmount(raw)
		if price.IsNegative() {
			return line, apperrors.NewValidationError("buy price cannot be negative")
		}
		line.BuyPrice = price
	case domain.FieldBuyCurrency:
		code := domain.NormalizeCurrencyCode(raw)
		if code == "" {
			return line, apperrors.NewValidationError("buy currency is required")
		}
		line.BuyCurrency = code
	case domain.FieldMarkupKind:
		markup, ok := domain.NewMarkup(domain.MarkupKind(strings.ToUpper(strings.TrimSpace(raw))), markupAmount(line.Markup))
		if !ok {
			return line, apperrors.NewValidationError(fmt.Sprintf("unknown markup kind %q", raw))
		}
		line.Markup = markup
	case domain.FieldMarkupValue:
		kind := domain.MarkupPercent
		if line.Markup != nil {
			kind = line.Markup.Kind()
		}
		line.Markup, _ = domain.NewMarkup(kind, ParseAmount(raw))
	case domain.FieldTaxRule:
		rule := domain.TaxRule(strings.ToUpper(strings.TrimSpace(raw)))
		if !rule.IsValid() {
			return line, apperrors.NewValidationError(fmt.Sprintf("unknown tax rule %q", raw))
		}
		line.TaxRule = rule
	}
	return line, nil
}

func markupAmount(m domain.Markup) decimal.Decimal {
	if m == nil {
		return decimal.Zero
	}
	return m.Amount()
}

// ParseAmount reads an operator-typed number leniently: surrounding spaces are
// ignored and a decimal comma is accepted. Anything unparsable or outside
// domain.AmountInRange reads as zero.
func ParseAmount(raw string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if !strings.Contains(cleaned, ".") {
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || !domain.AmountInRange(d) {
		return decimal.Zero
	}
	return d
}

// RemoveLine deletes a line and recomputes.
func (a *Aggregate) RemoveLine(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureEditable(); err != nil {
		return err
	}
	idx := a.lineIndex(id)
	if idx < 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("line item %s not found", id))
	}
	a.lines = append(a.lines[:idx:idx], a.lines[idx+1:]...)
	a.recompute()
	return nil
}

// SetRate sets the rate of code against the base currency and recomputes.
func (a *Aggregate) SetRate(code string, rate decimal.Decimal) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureEditable(); err != nil {
		return err
	}
	code = domain.NormalizeCurrencyCode(code)
	if code == "" {
		return apperrors.NewValidationError("currency code is required")
	}
	if code == a.rates.Base() {
		return apperrors.NewValidationError("the base currency rate is fixed at 1")
	}
	if !rate.IsPositive() {
		return apperrors.NewValidationError("exchange rate must be positive")
	}
	if !domain.AmountInRange(rate) {
		return apperrors.NewValidationError("exchange rate is out of range")
	}
	a.rates = a.rates.WithRate(code, rate)
	a.recompute()
	return nil
}

// SetTargetCurrency changes the display currency and recomputes. A currency
// without a rate is accepted and reported through Totals.Warnings.
func (a *Aggregate) SetTargetCurrency(code string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureEditable(); err != nil {
		return err
	}
	code = domain.NormalizeCurrencyCode(code)
	if code == "" {
		return apperrors.NewValidationError("target currency is required")
	}
	a.target = code
	a.recompute()
	return nil
}

// SetClientName updates the quote header.
func (a *Aggregate) SetClientName(name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.ensureEditable(); err != nil {
		return err
	}
	a.clientName = strings.TrimSpace(name)
	return nil
}

// Apply runs a workflow command against the stored approval state. It never
// recomputes pricing. On error the aggregate is left unchanged.
func (a *Aggregate) Apply(cmd Command) (domain.ActivityEntry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next, entry, err := Transition(State{Status: a.status, Approval: a.approval}, cmd, a.clock())
	if err != nil {
		return domain.ActivityEntry{}, err
	}
	a.status = next.Status
	a.approval = next.Approval
	if (cmd.Event == EventOverrideStatus || cmd.Event == EventReopen) && a.status.IsEditable() {
		// Back in pricing: the margin gate applies again.
		a.refreshApproval()
	}
	return entry, nil
}

// SubmitForApproval moves a low-margin draft into manager validation.
func (a *Aggregate) SubmitForApproval(actor string) (domain.ActivityEntry, error) {
	return a.Apply(Command{Event: EventSubmitForApproval, Actor: actor})
}

// AttemptSubmission sends a draft that does not need approval.
func (a *Aggregate) AttemptSubmission(actor string) (domain.ActivityEntry, error) {
	return a.Apply(Command{Event: EventAttemptSubmission, Actor: actor})
}

// Approve signs off a quote in validation and sends it.
func (a *Aggregate) Approve(actor string) (domain.ActivityEntry, error) {
	return a.Apply(Command{Event: EventApprove, Actor: actor})
}

// Reject returns a quote in validation to draft.
func (a *Aggregate) Reject(actor, reason string) (domain.ActivityEntry, error) {
	return a.Apply(Command{Event: EventReject, Actor: actor, Reason: reason})
}

// MarkAccepted records the client's acceptance of a sent quote.
func (a *Aggregate) MarkAccepted(actor string) (domain.ActivityEntry, error) {
	return a.Apply(Command{Event: EventMarkAccepted, Actor: actor})
}

// MarkRejected records that the client declined a sent quote.
func (a *Aggregate) MarkRejected(actor, reason string) (domain.ActivityEntry, error) {
	return a.Apply(Command{Event: EventMarkRejected, Actor: actor, Reason: reason})
}

// Reopen returns a declined quote to draft for repricing.
func (a *Aggregate) Reopen(actor string) (domain.ActivityEntry, error) {
	return a.Apply(Command{Event: EventReopen, Actor: actor})
}

// OverrideStatus forces a status without guards.
func (a *Aggregate) OverrideStatus(actor string, status domain.QuoteStatus) (domain.ActivityEntry, error) {
	return a.Apply(Command{Event: EventOverrideStatus, Actor: actor, TargetStatus: status})
}

// Record serializes the aggregate into its persistence shape.
func (a *Aggregate) Record() domain.QuoteRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	lines := make([]domain.LineRecord, 0, len(a.lines))
	for _, line := range a.lines {
		rec := domain.LineRecord{
			ID:          line.ID,
			Section:     line.Section,
			Description: line.Description,
			BuyPrice:    line.BuyPrice,
			BuyCurrency: line.BuyCurrency,
			TaxRule:     line.TaxRule,
		}
		if line.Markup != nil {
			rec.MarkupKind = line.Markup.Kind()
			rec.MarkupValue = line.Markup.Amount()
		}
		lines = append(lines, rec)
	}

	return domain.QuoteRecord{
		QuoteID:        a.id,
		Reference:      a.reference,
		ClientName:     a.clientName,
		Status:         a.status,
		BaseCurrency:   a.rates.Base(),
		TargetCurrency: a.target,
		Rates:          a.rates.Rates(),
		Lines:          lines,
		Totals:         copyTotals(a.totals),
		Approval:       copyApproval(a.approval),
		Version:        a.version,
		AuditFields:    a.audit,
	}
}

// FromRecord rebuilds an aggregate from storage. Totals are always recomputed;
// the stored totals are ignored.
func FromRecord(rec domain.QuoteRecord, opts ...Option) (*Aggregate, error) {
	if !rec.Status.IsValid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("quote %s has unknown status %q", rec.QuoteID, rec.Status))
	}
	if domain.NormalizeCurrencyCode(rec.BaseCurrency) == "" {
		return nil, apperrors.NewValidationError(fmt.Sprintf("quote %s has no base currency", rec.QuoteID))
	}

	a := &Aggregate{
		id:         rec.QuoteID,
		reference:  rec.Reference,
		clientName: rec.ClientName,
		version:    rec.Version,
		audit:      rec.AuditFields,
		rates:      domain.CurrencyTableFromRates(rec.BaseCurrency, rec.Rates),
		target:     domain.NormalizeCurrencyCode(rec.TargetCurrency),
		status:     rec.Status,
		approval:   copyApproval(rec.Approval),
	}
	a.applyOptions(opts)
	if a.target == "" {
		a.target = a.rates.Base()
	}

	for _, lr := range rec.Lines {
		markup, ok := domain.NewMarkup(lr.MarkupKind, lr.MarkupValue)
		if !ok {
			return nil, apperrors.NewValidationError(fmt.Sprintf("line %s has unknown markup kind %q", lr.ID, lr.MarkupKind))
		}
		a.lines = append(a.lines, domain.LineItem{
			ID:          lr.ID,
			Section:     lr.Section,
			Description: lr.Description,
			BuyPrice:    lr.BuyPrice,
			BuyCurrency: domain.NormalizeCurrencyCode(lr.BuyCurrency),
			Markup:      markup,
			TaxRule:     lr.TaxRule,
		})
	}

	a.recompute()
	return a, nil
}

// Touch stamps the last-updated audit fields.
func (a *Aggregate) Touch(actor string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.audit.LastUpdatedAt = a.clock()
	a.audit.LastUpdatedBy = actor
}

// SetPersisted records the id and version assigned by the store.
func (a *Aggregate) SetPersisted(id string, version int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.id = id
	a.version = version
}

func (a *Aggregate) ID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.id
}

func (a *Aggregate) Reference() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reference
}

func (a *Aggregate) ClientName() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clientName
}

func (a *Aggregate) Status() domain.QuoteStatus {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Aggregate) TargetCurrency() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.target
}

// Totals returns a copy of the last computed totals.
func (a *Aggregate) Totals() domain.Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyTotals(a.totals)
}

// Approval returns a copy of the approval state.
func (a *Aggregate) Approval() domain.ApprovalState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return copyApproval(a.approval)
}

// Lines returns a copy of the line items in insertion order.
func (a *Aggregate) Lines() []domain.LineItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.LineItem(nil), a.lines...)
}

// Rates returns a copy of the rate snapshot.
func (a *Aggregate) Rates() domain.CurrencyTable {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rates.Clone()
}

func copyTotals(t domain.Totals) domain.Totals {
	out := t
	if t.Warnings != nil {
		out.Warnings = append([]domain.RateWarning(nil), t.Warnings...)
	}
	return out
}
