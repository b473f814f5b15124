package services

import (
	portsrepo "github.com/SscSPs/freight_quoting_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/freight_quoting_app/internal/core/ports/services"
	"github.com/SscSPs/freight_quoting_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, analytics AnalyticsSink) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	// Rates are validated against the currency registry.
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency, cfg.BaseCurrency)
	container.Quote = NewQuoteService(
		QuoteServiceConfig{DefaultTargetCurrency: cfg.DefaultTargetCurrency},
		repos.QuoteRepo,
		repos.ActivityRepo,
		container.ExchangeRate,
		analytics,
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CurrencySvcFacade     = (*currencyService)(nil)
	_ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)
	_ portssvc.QuoteSvcFacade        = (*quoteService)(nil)
)
