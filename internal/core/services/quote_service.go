package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	portsrepo "github.com/SscSPs/freight_quoting_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/freight_quoting_app/internal/core/ports/services"
	"github.com/SscSPs/freight_quoting_app/internal/core/quote"
	"github.com/SscSPs/freight_quoting_app/internal/dto"
	"github.com/google/uuid"
)

const defaultQuotePageSize = 20

// AnalyticsSink receives product analytics events. Implementations must not block.
type AnalyticsSink interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}

// QuoteServiceConfig carries the display defaults of new quotes.
type QuoteServiceConfig struct {
	DefaultTargetCurrency string
}

type quoteService struct {
	BaseService
	quoteRepo    portsrepo.QuoteRepositoryFacade
	activityRepo portsrepo.ActivityLogFacade
	rateService  portssvc.ExchangeRateReaderSvc
	analytics    AnalyticsSink
	cfg          QuoteServiceConfig
	clock        func() time.Time
}

// NewQuoteService creates the quote service. analytics may be nil.
func NewQuoteService(
	cfg QuoteServiceConfig,
	quoteRepo portsrepo.QuoteRepositoryFacade,
	activityRepo portsrepo.ActivityLogFacade,
	rateService portssvc.ExchangeRateReaderSvc,
	analytics AnalyticsSink,
) portssvc.QuoteSvcFacade {
	return &quoteService{
		quoteRepo:    quoteRepo,
		activityRepo: activityRepo,
		rateService:  rateService,
		analytics:    analytics,
		cfg:          cfg,
		clock:        time.Now,
	}
}

// newReference builds a human readable reference such as Q-20260115-4F2A9C.
func newReference(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("Q-%s-%s", now.UTC().Format("20060102"), suffix)
}

func (s *quoteService) CreateQuote(ctx context.Context, req dto.CreateQuoteRequest, userID string) (*domain.QuoteRecord, error) {
	clientName := strings.TrimSpace(req.ClientName)
	if clientName == "" {
		return nil, apperrors.NewValidationError("client name is required")
	}

	table, err := s.rateService.CurrentCurrencyTable(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load the rate table for a new quote")
		return nil, fmt.Errorf("failed to create quote in service: %w", err)
	}

	target := req.TargetCurrency
	if target == "" {
		target = s.cfg.DefaultTargetCurrency
	}

	now := s.clock()
	agg := quote.New(quote.NewParams{
		ID:             uuid.NewString(),
		Reference:      newReference(now),
		ClientName:     clientName,
		TargetCurrency: target,
		CreatedBy:      userID,
		Rates:          table,
	}, quote.WithClock(s.clock))

	rec, err := s.persist(ctx, agg)
	if err != nil {
		return nil, fmt.Errorf("failed to create quote in service: %w", err)
	}

	if !table.Has(rec.TargetCurrency) {
		s.GetLogger(ctx).Warn("No exchange rate for the quote target currency",
			slog.String("quote_id", rec.QuoteID),
			slog.String("target_currency", rec.TargetCurrency))
	}
	s.LogInfo(ctx, "Quote created",
		slog.String("quote_id", rec.QuoteID),
		slog.String("reference", rec.Reference),
		slog.String("target_currency", rec.TargetCurrency),
		slog.Any("rated_currencies", table.Codes()))
	s.track(userID, "quote_created", rec, nil)
	return rec, nil
}

func (s *quoteService) GetQuote(ctx context.Context, quoteID string) (*domain.QuoteRecord, error) {
	agg, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	rec := agg.Record()
	return &rec, nil
}

func (s *quoteService) ListQuotes(ctx context.Context, params dto.ListQuotesParams) ([]domain.QuoteRecord, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultQuotePageSize
	}
	quotes, nextToken, err := s.quoteRepo.ListQuotes(ctx, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list quotes")
		return nil, nil, fmt.Errorf("failed to list quotes in service: %w", err)
	}
	if quotes == nil {
		quotes = []domain.QuoteRecord{}
	}
	return quotes, nextToken, nil
}

func (s *quoteService) ListActivity(ctx context.Context, quoteID string) ([]domain.ActivityEntry, error) {
	if _, err := s.quoteRepo.FindQuoteByID(ctx, quoteID); err != nil {
		return nil, fmt.Errorf("failed to list quote activity in service: %w", err)
	}
	entries, err := s.activityRepo.ListActivity(ctx, quoteID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list quote activity", slog.String("quote_id", quoteID))
		return nil, fmt.Errorf("failed to list quote activity in service: %w", err)
	}
	if entries == nil {
		return []domain.ActivityEntry{}, nil
	}
	return entries, nil
}

func (s *quoteService) AddLine(ctx context.Context, quoteID string, req dto.AddLineRequest, userID string) (*domain.QuoteRecord, error) {
	return s.edit(ctx, quoteID, userID, func(agg *quote.Aggregate) error {
		line, err := agg.AddLine(domain.Section(req.Section))
		if err != nil {
			return err
		}
		for _, f := range addLineFields(req) {
			if _, err := agg.UpdateLine(line.ID, f.field, f.value); err != nil {
				return err
			}
		}
		return nil
	})
}

type lineFieldValue struct {
	field domain.LineField
	value string
}

// addLineFields lists the optional fields of req that override the line defaults.
// markupKind precedes markupValue so the value lands on the requested kind.
func addLineFields(req dto.AddLineRequest) []lineFieldValue {
	var fields []lineFieldValue
	if req.Description != "" {
		fields = append(fields, lineFieldValue{domain.FieldDescription, req.Description})
	}
	if req.BuyPrice != nil {
		fields = append(fields, lineFieldValue{domain.FieldBuyPrice, *req.BuyPrice})
	}
	if req.BuyCurrency != "" {
		fields = append(fields, lineFieldValue{domain.FieldBuyCurrency, req.BuyCurrency})
	}
	if req.MarkupKind != "" {
		fields = append(fields, lineFieldValue{domain.FieldMarkupKind, req.MarkupKind})
	}
	if req.MarkupValue != nil {
		fields = append(fields, lineFieldValue{domain.FieldMarkupValue, *req.MarkupValue})
	}
	if req.TaxRule != "" {
		fields = append(fields, lineFieldValue{domain.FieldTaxRule, req.TaxRule})
	}
	return fields
}

func (s *quoteService) UpdateLine(ctx context.Context, quoteID, lineID string, req dto.UpdateLineRequest, userID string) (*domain.QuoteRecord, error) {
	return s.edit(ctx, quoteID, userID, func(agg *quote.Aggregate) error {
		_, err := agg.UpdateLine(lineID, domain.LineField(req.Field), req.Value)
		return err
	})
}

func (s *quoteService) RemoveLine(ctx context.Context, quoteID, lineID, userID string) (*domain.QuoteRecord, error) {
	return s.edit(ctx, quoteID, userID, func(agg *quote.Aggregate) error {
		return agg.RemoveLine(lineID)
	})
}

func (s *quoteService) SetRate(ctx context.Context, quoteID, currencyCode string, req dto.SetRateRequest, userID string) (*domain.QuoteRecord, error) {
	return s.edit(ctx, quoteID, userID, func(agg *quote.Aggregate) error {
		return agg.SetRate(currencyCode, req.Rate)
	})
}

func (s *quoteService) SetTargetCurrency(ctx context.Context, quoteID string, req dto.SetTargetCurrencyRequest, userID string) (*domain.QuoteRecord, error) {
	return s.edit(ctx, quoteID, userID, func(agg *quote.Aggregate) error {
		return agg.SetTargetCurrency(req.CurrencyCode)
	})
}

// SubmitQuote sends a draft straight to the client. Low-margin drafts are refused
// with quote.ErrApprovalRequired.
func (s *quoteService) SubmitQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return s.transition(ctx, quoteID, userID, "quote_sent", true, func(agg *quote.Aggregate) (domain.ActivityEntry, error) {
		return agg.AttemptSubmission(userID)
	})
}

func (s *quoteService) RequestApproval(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return s.transition(ctx, quoteID, userID, "quote_approval_requested", true, func(agg *quote.Aggregate) (domain.ActivityEntry, error) {
		return agg.SubmitForApproval(userID)
	})
}

func (s *quoteService) ApproveQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return s.transition(ctx, quoteID, userID, "quote_approved", false, func(agg *quote.Aggregate) (domain.ActivityEntry, error) {
		return agg.Approve(userID)
	})
}

func (s *quoteService) RejectQuote(ctx context.Context, quoteID string, req dto.RejectQuoteRequest, userID string) (*domain.QuoteRecord, error) {
	return s.transition(ctx, quoteID, userID, "quote_approval_rejected", false, func(agg *quote.Aggregate) (domain.ActivityEntry, error) {
		return agg.Reject(userID, req.Reason)
	})
}

func (s *quoteService) MarkAccepted(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return s.transition(ctx, quoteID, userID, "quote_accepted", false, func(agg *quote.Aggregate) (domain.ActivityEntry, error) {
		return agg.MarkAccepted(userID)
	})
}

func (s *quoteService) MarkDeclined(ctx context.Context, quoteID string, req dto.DeclineQuoteRequest, userID string) (*domain.QuoteRecord, error) {
	return s.transition(ctx, quoteID, userID, "quote_declined", false, func(agg *quote.Aggregate) (domain.ActivityEntry, error) {
		return agg.MarkRejected(userID, req.Reason)
	})
}

func (s *quoteService) ReopenQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error) {
	return s.transition(ctx, quoteID, userID, "quote_reopened", false, func(agg *quote.Aggregate) (domain.ActivityEntry, error) {
		return agg.Reopen(userID)
	})
}

func (s *quoteService) OverrideStatus(ctx context.Context, quoteID string, req dto.OverrideStatusRequest, userID string) (*domain.QuoteRecord, error) {
	return s.transition(ctx, quoteID, userID, "quote_status_overridden", false, func(agg *quote.Aggregate) (domain.ActivityEntry, error) {
		return agg.OverrideStatus(userID, domain.QuoteStatus(req.Status))
	})
}

func (s *quoteService) load(ctx context.Context, quoteID string) (*quote.Aggregate, error) {
	rec, err := s.quoteRepo.FindQuoteByID(ctx, quoteID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load quote", slog.String("quote_id", quoteID))
		}
		return nil, fmt.Errorf("failed to load quote %s: %w", quoteID, err)
	}
	agg, err := quote.FromRecord(*rec, quote.WithClock(s.clock))
	if err != nil {
		s.LogError(ctx, err, "Stored quote is invalid", slog.String("quote_id", quoteID))
		return nil, fmt.Errorf("failed to load quote %s: %w", quoteID, err)
	}
	return agg, nil
}

func (s *quoteService) persist(ctx context.Context, agg *quote.Aggregate) (*domain.QuoteRecord, error) {
	rec := agg.Record()
	version, err := s.quoteRepo.SaveQuote(ctx, rec)
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to save quote", slog.String("quote_id", rec.QuoteID))
		}
		return nil, err
	}
	agg.SetPersisted(rec.QuoteID, version)
	saved := agg.Record()
	return &saved, nil
}

// edit runs one pricing mutation: load, mutate, recompute, persist.
func (s *quoteService) edit(ctx context.Context, quoteID, userID string, mutate func(*quote.Aggregate) error) (*domain.QuoteRecord, error) {
	agg, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if err := mutate(agg); err != nil {
		return nil, err
	}
	agg.Touch(userID)
	rec, err := s.persist(ctx, agg)
	if err != nil {
		return nil, fmt.Errorf("failed to update quote %s: %w", quoteID, err)
	}
	if rec.Totals.HasWarnings() {
		s.GetLogger(ctx).Warn("Quote priced with identity rates",
			slog.String("quote_id", quoteID),
			slog.Int("rate_warnings", len(rec.Totals.Warnings)))
	}
	s.LogDebug(ctx, "Quote repriced",
		slog.String("quote_id", quoteID),
		slog.String("total_sell_base", rec.Totals.TotalSellBase.StringFixed(2)),
		slog.String("margin_percent", rec.Totals.MarginPercent.StringFixed(2)))
	return rec, nil
}

// transition runs one workflow event and records its activity entry.
func (s *quoteService) transition(
	ctx context.Context,
	quoteID, userID, event string,
	checkSubmission bool,
	apply func(*quote.Aggregate) (domain.ActivityEntry, error),
) (*domain.QuoteRecord, error) {
	agg, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	from := agg.Status()
	// Submission events only leave DRAFT; from anywhere else the workflow
	// reports the invalid transition.
	if checkSubmission && from == domain.QuoteDraft {
		if err := validateForSubmission(agg); err != nil {
			return nil, err
		}
	}
	entry, err := apply(agg)
	if err != nil {
		return nil, err
	}
	agg.Touch(userID)
	rec, err := s.persist(ctx, agg)
	if err != nil {
		return nil, fmt.Errorf("failed to update quote %s: %w", quoteID, err)
	}

	if err := s.activityRepo.AppendActivity(ctx, rec.QuoteID, entry); err != nil {
		s.LogWarn(ctx, err, "Failed to append quote activity", slog.String("quote_id", rec.QuoteID))
	}
	s.LogInfo(ctx, "Quote status changed",
		slog.String("quote_id", rec.QuoteID),
		slog.String("from", string(from)),
		slog.String("to", string(rec.Status)))
	s.track(userID, event, rec, map[string]any{"from_status": string(from)})
	return rec, nil
}

// validateForSubmission checks what a quote needs before it can leave draft.
func validateForSubmission(agg *quote.Aggregate) error {
	if strings.TrimSpace(agg.ClientName()) == "" {
		return apperrors.NewValidationError("client name is required before submission")
	}
	if len(agg.Lines()) == 0 {
		return apperrors.NewValidationError("at least one line item is required before submission")
	}
	if !agg.Totals().TotalSellBase.IsPositive() {
		return apperrors.NewValidationError("total sell price must be greater than zero before submission")
	}
	return nil
}

func (s *quoteService) track(userID, event string, rec *domain.QuoteRecord, extra map[string]any) {
	if s.analytics == nil {
		return
	}
	props := map[string]any{
		"quote_id":          rec.QuoteID,
		"status":            string(rec.Status),
		"target_currency":   rec.TargetCurrency,
		"margin_percent":    rec.Totals.MarginPercent.StringFixed(2),
		"requires_approval": rec.Approval.RequiresApproval,
	}
	for k, v := range extra {
		props[k] = v
	}
	s.analytics.Enqueue(userID, event, props)
}
