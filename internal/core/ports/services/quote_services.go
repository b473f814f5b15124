package services

import (
	"context"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/SscSPs/freight_quoting_app/internal/dto"
)

// QuoteReaderSvc defines read operations for quotes.
type QuoteReaderSvc interface {
	GetQuote(ctx context.Context, quoteID string) (*domain.QuoteRecord, error)
	ListQuotes(ctx context.Context, params dto.ListQuotesParams) ([]domain.QuoteRecord, *string, error)
	ListActivity(ctx context.Context, quoteID string) ([]domain.ActivityEntry, error)
}

// QuotePricingSvc defines the pricing edits of a quote. Every call persists the
// recomputed quote and returns it.
type QuotePricingSvc interface {
	CreateQuote(ctx context.Context, req dto.CreateQuoteRequest, userID string) (*domain.QuoteRecord, error)
	AddLine(ctx context.Context, quoteID string, req dto.AddLineRequest, userID string) (*domain.QuoteRecord, error)
	UpdateLine(ctx context.Context, quoteID, lineID string, req dto.UpdateLineRequest, userID string) (*domain.QuoteRecord, error)
	RemoveLine(ctx context.Context, quoteID, lineID, userID string) (*domain.QuoteRecord, error)
	SetRate(ctx context.Context, quoteID, currencyCode string, req dto.SetRateRequest, userID string) (*domain.QuoteRecord, error)
	SetTargetCurrency(ctx context.Context, quoteID string, req dto.SetTargetCurrencyRequest, userID string) (*domain.QuoteRecord, error)
}

// QuoteWorkflowSvc defines the status transitions of a quote.
type QuoteWorkflowSvc interface {
	SubmitQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error)
	RequestApproval(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error)
	ApproveQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error)
	RejectQuote(ctx context.Context, quoteID string, req dto.RejectQuoteRequest, userID string) (*domain.QuoteRecord, error)
	MarkAccepted(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error)
	MarkDeclined(ctx context.Context, quoteID string, req dto.DeclineQuoteRequest, userID string) (*domain.QuoteRecord, error)
	ReopenQuote(ctx context.Context, quoteID, userID string) (*domain.QuoteRecord, error)
	OverrideStatus(ctx context.Context, quoteID string, req dto.OverrideStatusRequest, userID string) (*domain.QuoteRecord, error)
}

// QuoteSvcFacade combines all quote-related service interfaces.
type QuoteSvcFacade interface {
	QuoteReaderSvc
	QuotePricingSvc
	QuoteWorkflowSvc
}
