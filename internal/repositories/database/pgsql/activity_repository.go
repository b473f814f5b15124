package pgsql

import (
	"context"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	portsrepo "github.com/SscSPs/freight_quoting_app/internal/core/ports/repositories"
	"github.com/SscSPs/freight_quoting_app/internal/models"
	"github.com/SscSPs/freight_quoting_app/internal/utils/mapping"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxActivityRepository is the append-only audit trail of quote workflow events.
type PgxActivityRepository struct {
	BaseRepository
}

func newPgxActivityRepository(pool *pgxpool.Pool) *PgxActivityRepository {
	return &PgxActivityRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ActivityLogFacade = (*PgxActivityRepository)(nil)

func (r *PgxActivityRepository) AppendActivity(ctx context.Context, quoteID string, entry domain.ActivityEntry) error {
	m := mapping.ToModelQuoteActivity(uuid.NewString(), quoteID, entry)
	query := `
		INSERT INTO quote_activity (activity_id, quote_id, text, category, tone, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	if _, err := r.Pool.Exec(ctx, query, m.ActivityID, m.QuoteID, m.Text, m.Category, m.Tone, m.Actor, m.CreatedAt); err != nil {
		return apperrors.NewAppError(500, "failed to append quote activity", err)
	}
	return nil
}

// ListActivity returns the trail of a quote, oldest first.
func (r *PgxActivityRepository) ListActivity(ctx context.Context, quoteID string) ([]domain.ActivityEntry, error) {
	query := `
		SELECT activity_id, quote_id, text, category, tone, actor, created_at
		FROM quote_activity
		WHERE quote_id = $1
		ORDER BY seq;
	`
	rows, err := r.Pool.Query(ctx, query, quoteID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query quote activity", err)
	}
	defer rows.Close()

	modelEntries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.QuoteActivity, error) {
		var m models.QuoteActivity
		err := row.Scan(&m.ActivityID, &m.QuoteID, &m.Text, &m.Category, &m.Tone, &m.Actor, &m.CreatedAt)
		return m, err
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan quote activity", err)
	}

	entries := make([]domain.ActivityEntry, len(modelEntries))
	for i, m := range modelEntries {
		entries[i] = mapping.ToDomainActivityEntry(m)
	}
	return entries, nil
}
