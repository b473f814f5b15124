package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	portsrepo "github.com/SscSPs/freight_quoting_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/freight_quoting_app/internal/core/ports/services"
	"github.com/SscSPs/freight_quoting_app/internal/dto"
	"github.com/google/uuid"
)

type exchangeRateService struct {
	BaseService
	rateRepo        portsrepo.ExchangeRateRepositoryFacade
	currencyService portssvc.CurrencyReaderSvc
	baseCurrency    string
}

// NewExchangeRateService creates the operator rate table service. Every rate is
// quoted against baseCurrency.
func NewExchangeRateService(rateRepo portsrepo.ExchangeRateRepositoryFacade, currencyService portssvc.CurrencyReaderSvc, baseCurrency string) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:        rateRepo,
		currencyService: currencyService,
		baseCurrency:    domain.NormalizeCurrencyCode(baseCurrency),
	}
}

// CreateExchangeRate handles the creation of a new exchange rate.
func (s *exchangeRateService) CreateExchangeRate(ctx context.Context, req dto.CreateExchangeRateRequest, creatorUserID string) (*domain.ExchangeRate, error) {
	code := domain.NormalizeCurrencyCode(req.CurrencyCode)

	if !req.Rate.IsPositive() {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	if !domain.AmountInRange(req.Rate) {
		return nil, fmt.Errorf("%w: exchange rate is out of range", apperrors.ErrValidation)
	}
	if code == s.baseCurrency {
		return nil, fmt.Errorf("%w: the base currency %s always has rate 1", apperrors.ErrValidation, code)
	}

	if _, err := s.currencyService.GetCurrencyByCode(ctx, code); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency code '%s' not found", apperrors.ErrValidation, code)
		}
		return nil, fmt.Errorf("failed to validate currency '%s': %w", code, err)
	}

	now := time.Now()
	effective := now.UTC().Truncate(24 * time.Hour)
	if req.DateEffective != nil {
		effective = req.DateEffective.UTC().Truncate(24 * time.Hour)
	}

	rate := domain.ExchangeRate{
		ExchangeRateID: uuid.NewString(),
		CurrencyCode:   code,
		BaseCurrency:   s.baseCurrency,
		Rate:           req.Rate,
		DateEffective:  effective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		s.LogError(ctx, err, "Failed to save exchange rate", slog.String("currency_code", code))
		return nil, fmt.Errorf("failed to create exchange rate in service: %w", err)
	}

	s.LogInfo(ctx, "Exchange rate recorded",
		slog.String("currency_code", code),
		slog.String("rate", rate.Rate.String()),
		slog.Time("date_effective", effective))
	return &rate, nil
}

// GetExchangeRate retrieves the latest rate of a currency against the base currency.
func (s *exchangeRateService) GetExchangeRate(ctx context.Context, currencyCode string) (*domain.ExchangeRate, error) {
	code := domain.NormalizeCurrencyCode(currencyCode)
	if len(code) != 3 {
		return nil, fmt.Errorf("%w: currency codes must be 3 letters", apperrors.ErrValidation)
	}

	rate, err := s.rateRepo.FindExchangeRate(ctx, code, s.baseCurrency)
	if err != nil {
		return nil, fmt.Errorf("failed to get exchange rate in service: %w", err)
	}
	return rate, nil
}

func (s *exchangeRateService) ListExchangeRates(ctx context.Context) ([]domain.ExchangeRate, error) {
	rates, err := s.rateRepo.ListLatestExchangeRates(ctx, s.baseCurrency)
	if err != nil {
		s.LogError(ctx, err, "Failed to list exchange rates")
		return nil, fmt.Errorf("failed to list exchange rates in service: %w", err)
	}
	if rates == nil {
		return []domain.ExchangeRate{}, nil
	}
	return rates, nil
}

// CurrentCurrencyTable snapshots the latest rates for a new quote.
func (s *exchangeRateService) CurrentCurrencyTable(ctx context.Context) (domain.CurrencyTable, error) {
	rates, err := s.ListExchangeRates(ctx)
	if err != nil {
		return domain.CurrencyTable{}, err
	}
	return domain.BuildCurrencyTable(s.baseCurrency, rates), nil
}
