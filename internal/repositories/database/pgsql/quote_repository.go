package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	portsrepo "github.com/SscSPs/freight_quoting_app/internal/core/ports/repositories"
	"github.com/SscSPs/freight_quoting_app/internal/models"
	"github.com/SscSPs/freight_quoting_app/internal/utils/mapping"
	"github.com/SscSPs/freight_quoting_app/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxQuoteRepository stores quotes as one row each, with lines, rates, totals
// and approval state in JSONB columns.
type PgxQuoteRepository struct {
	BaseRepository
}

func newPgxQuoteRepository(pool *pgxpool.Pool) *PgxQuoteRepository {
	return &PgxQuoteRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.QuoteRepositoryFacade = (*PgxQuoteRepository)(nil)

const quoteColumns = `quote_id, reference, client_name, status, base_currency, target_currency,
	rates, lines, totals, approval, version,
	created_at, created_by, last_updated_at, last_updated_by`

func scanQuote(row pgx.Row) (models.Quote, error) {
	var m models.Quote
	err := row.Scan(
		&m.QuoteID, &m.Reference, &m.ClientName, &m.Status, &m.BaseCurrency, &m.TargetCurrency,
		&m.Rates, &m.Lines, &m.Totals, &m.Approval, &m.Version,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// FindQuoteByID loads one quote.
func (r *PgxQuoteRepository) FindQuoteByID(ctx context.Context, quoteID string) (*domain.QuoteRecord, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE quote_id = $1;`
	m, err := scanQuote(r.Pool.QueryRow(ctx, query, quoteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("quote " + quoteID + " not found")
		}
		return nil, apperrors.NewAppError(500, "failed to find quote", err)
	}

	rec, err := mapping.ToDomainQuote(m)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to decode quote", err)
	}
	return &rec, nil
}

// SaveQuote inserts a new quote (Version 0) or updates an existing one under
// optimistic locking. It returns the stored version.
func (r *PgxQuoteRepository) SaveQuote(ctx context.Context, quote domain.QuoteRecord) (int, error) {
	m, err := mapping.ToModelQuote(quote)
	if err != nil {
		return 0, apperrors.NewAppError(500, "failed to encode quote", err)
	}
	if m.Version == 0 {
		return r.insertQuote(ctx, m)
	}
	return r.updateQuote(ctx, m)
}

func (r *PgxQuoteRepository) insertQuote(ctx context.Context, m models.Quote) (int, error) {
	query := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12, $13, $14);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.QuoteID, m.Reference, m.ClientName, m.Status, m.BaseCurrency, m.TargetCurrency,
		m.Rates, m.Lines, m.Totals, m.Approval,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: quote %s", apperrors.ErrDuplicate, m.QuoteID)
		}
		return 0, apperrors.NewAppError(500, "failed to insert quote", err)
	}
	return 1, nil
}

func (r *PgxQuoteRepository) updateQuote(ctx context.Context, m models.Quote) (int, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = r.Rollback(ctx, tx) }()

	query := `
		UPDATE quotes SET
			client_name = $2, status = $3, target_currency = $4,
			rates = $5, lines = $6, totals = $7, approval = $8,
			version = version + 1,
			last_updated_at = $9, last_updated_by = $10
		WHERE quote_id = $1 AND version = $11
		RETURNING version;
	`
	var version int
	err = tx.QueryRow(ctx, query,
		m.QuoteID, m.ClientName, m.Status, m.TargetCurrency,
		m.Rates, m.Lines, m.Totals, m.Approval,
		m.LastUpdatedAt, m.LastUpdatedBy, m.Version,
	).Scan(&version)
	if err == nil {
		if err := r.Commit(ctx, tx); err != nil {
			return 0, err
		}
		return version, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, apperrors.NewAppError(500, "failed to update quote", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quotes WHERE quote_id = $1);`, m.QuoteID).Scan(&exists); err != nil {
		return 0, apperrors.NewAppError(500, "failed to check quote", err)
	}
	if !exists {
		return 0, apperrors.NewNotFoundError("quote " + m.QuoteID + " not found")
	}
	return 0, fmt.Errorf("%w: quote %s was modified by another request, reload and retry", apperrors.ErrConflict, m.QuoteID)
}

// ListQuotes returns quotes ordered by last update, newest first, using
// keyset pagination on (last_updated_at, quote_id).
func (r *PgxQuoteRepository) ListQuotes(ctx context.Context, limit int, nextToken *string) ([]domain.QuoteRecord, *string, error) {
	if limit <= 0 {
		limit = 20
	}
	// One extra row tells whether another page exists.
	fetchLimit := limit + 1

	args := []any{}
	where := ""
	if nextToken != nil && *nextToken != "" {
		lastUpdatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		where = `WHERE (last_updated_at, quote_id) < ($1, $2)`
		args = append(args, lastUpdatedAt, lastID)
	}
	args = append(args, fetchLimit)

	query := `SELECT ` + quoteColumns + ` FROM quotes ` + where +
		` ORDER BY last_updated_at DESC, quote_id DESC LIMIT $` + strconv.Itoa(len(args)) + `;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query quotes", err)
	}
	defer rows.Close()

	modelQuotes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Quote, error) {
		return scanQuote(row)
	})
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to scan quotes", err)
	}

	var nextTokenVal *string
	if len(modelQuotes) > limit {
		last := modelQuotes[limit-1]
		token := pagination.EncodeToken(last.LastUpdatedAt, last.QuoteID)
		nextTokenVal = &token
		modelQuotes = modelQuotes[:limit]
	}

	quotes := make([]domain.QuoteRecord, 0, len(modelQuotes))
	for _, m := range modelQuotes {
		rec, err := mapping.ToDomainQuote(m)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to decode quote", err)
		}
		quotes = append(quotes, rec)
	}
	return quotes, nextTokenVal, nil
}
