package handlers

import (
	"net/http"

	"github.com/SscSPs/freight_quoting_app/cmd/docs"
	portssvc "github.com/SscSPs/freight_quoting_app/internal/core/ports/services"
	"github.com/SscSPs/freight_quoting_app/internal/middleware"
	"github.com/SscSPs/freight_quoting_app/internal/platform/config"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const apiBasePath = "/api/v1"

// RegisterRoutes mounts the public health check, the JWT-protected quote API
// and, outside production, the swagger UI.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, services *portssvc.ServiceContainer) {
	r.GET("/health", health(cfg))

	v1 := r.Group(apiBasePath, middleware.AuthMiddleware(cfg.JWTSecret))
	RegisterCurrencyRoutes(v1, services.Currency)
	RegisterExchangeRateRoutes(v1, services.ExchangeRate)
	RegisterQuoteRoutes(v1, services.Quote)

	if !cfg.IsProduction {
		docs.SwaggerInfo.BasePath = apiBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}

// health is the unauthenticated liveness check. It echoes the configured
// pricing currencies.
func health(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":                "OK",
			"baseCurrency":          cfg.BaseCurrency,
			"defaultTargetCurrency": cfg.DefaultTargetCurrency,
		})
	}
}
