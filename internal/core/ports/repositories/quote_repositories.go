package repositories

import (
	"context"

	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
)

// QuoteReader defines read operations for quotes.
type QuoteReader interface {
	// FindQuoteByID loads the stored record of a quote.
	FindQuoteByID(ctx context.Context, quoteID string) (*domain.QuoteRecord, error)

	// ListQuotes returns quotes ordered by last update, newest first.
	// nextToken is the opaque cursor returned by the previous page.
	ListQuotes(ctx context.Context, limit int, nextToken *string) ([]domain.QuoteRecord, *string, error)
}

// QuoteWriter defines write operations for quotes.
type QuoteWriter interface {
	// SaveQuote inserts a quote with Version 0 or updates one whose stored version
	// still equals quote.Version. It returns the new version. A stale version
	// yields apperrors.ErrConflict.
	SaveQuote(ctx context.Context, quote domain.QuoteRecord) (int, error)
}

// QuoteRepositoryFacade is the persistence collaborator of the quote engine.
type QuoteRepositoryFacade interface {
	QuoteReader
	QuoteWriter
}

// ActivityLogSink receives the audit entries produced by workflow transitions.
type ActivityLogSink interface {
	AppendActivity(ctx context.Context, quoteID string, entry domain.ActivityEntry) error
}

// ActivityLogReader reads back the audit trail of a quote, oldest first.
type ActivityLogReader interface {
	ListActivity(ctx context.Context, quoteID string) ([]domain.ActivityEntry, error)
}

// ActivityLogFacade combines the activity sink and reader.
type ActivityLogFacade interface {
	ActivityLogSink
	ActivityLogReader
}
