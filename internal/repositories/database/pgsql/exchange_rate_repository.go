package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	portsrepo "github.com/SscSPs/freight_quoting_app/internal/core/ports/repositories"
	"github.com/SscSPs/freight_quoting_app/internal/models"
	"github.com/SscSPs/freight_quoting_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxExchangeRateRepository stores the operator rate table.
type PgxExchangeRateRepository struct {
	BaseRepository
}

func newPgxExchangeRateRepository(pool *pgxpool.Pool) portsrepo.ExchangeRateRepositoryFacade {
	return &PgxExchangeRateRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ExchangeRateRepositoryFacade = (*PgxExchangeRateRepository)(nil)

const exchangeRateColumns = `exchange_rate_id, currency_code, base_currency, rate, date_effective,
	created_at, created_by, last_updated_at, last_updated_by`

func scanExchangeRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.ExchangeRateID, &m.CurrencyCode, &m.BaseCurrency, &m.Rate, &m.DateEffective,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	return m, err
}

// SaveExchangeRate inserts a rate, replacing the rate already recorded for the
// same currency, base and effective date.
func (r *PgxExchangeRateRepository) SaveExchangeRate(ctx context.Context, rate domain.ExchangeRate) error {
	m := mapping.ToModelExchangeRate(rate)

	query := `
		INSERT INTO exchange_rates (` + exchangeRateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (currency_code, base_currency, date_effective) DO UPDATE SET
			rate = EXCLUDED.rate,
			last_updated_at = EXCLUDED.last_updated_at,
			last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ExchangeRateID, m.CurrencyCode, m.BaseCurrency, m.Rate, m.DateEffective,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to save exchange rate", err)
	}
	return nil
}

// FindExchangeRate retrieves the most recent rate of a currency against base.
func (r *PgxExchangeRateRepository) FindExchangeRate(ctx context.Context, currencyCode, baseCurrency string) (*domain.ExchangeRate, error) {
	query := `
		SELECT ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE currency_code = $1 AND base_currency = $2
		ORDER BY date_effective DESC, last_updated_at DESC
		LIMIT 1;
	`
	m, err := scanExchangeRate(r.Pool.QueryRow(ctx, query, currencyCode, baseCurrency))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(fmt.Sprintf("no exchange rate found for %s against %s", currencyCode, baseCurrency))
		}
		return nil, apperrors.NewAppError(500, "failed to find exchange rate", err)
	}

	d := mapping.ToDomainExchangeRate(m)
	return &d, nil
}

// ListLatestExchangeRates retrieves the most recent rate of every currency against base.
func (r *PgxExchangeRateRepository) ListLatestExchangeRates(ctx context.Context, baseCurrency string) ([]domain.ExchangeRate, error) {
	query := `
		SELECT DISTINCT ON (currency_code) ` + exchangeRateColumns + `
		FROM exchange_rates
		WHERE base_currency = $1
		ORDER BY currency_code, date_effective DESC, last_updated_at DESC;
	`
	rows, err := r.Pool.Query(ctx, query, baseCurrency)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query exchange rates", err)
	}
	defer rows.Close()

	modelRates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRate, error) {
		return scanExchangeRate(row)
	})
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to scan exchange rates", err)
	}
	return mapping.ToDomainExchangeRateSlice(modelRates), nil
}
