// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vtcquote/internal/http/handlers"
	"vtcquote/internal/http/middleware"
	"vtcquote/internal/infra"
	"vtcquote/internal/metrics"
	"vtcquote/internal/modules/pricing"
	"vtcquote/internal/modules/quote"
)

type RouterDeps struct {
	Pricing *pricing.Service
	Quotes  *quote.Service
	// Verifier nil switches /api to the development org header.
	Verifier infra.TokenVerifier
	Logger   *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	auth := middleware.DevAuth()
	if deps.Verifier != nil {
		auth = middleware.Auth(deps.Verifier)
	}
	api := r.Group("/api", auth, middleware.Logging(logger))

	quoteHandler := handlers.NewQuoteHandler(deps.Pricing, deps.Quotes)
	api.POST("/quotes/price", quoteHandler.Price)
	api.POST("/quotes", quoteHandler.Create)
	api.GET("/quotes/:id", quoteHandler.Get)
	api.POST("/quotes/:id/cost-overrides", quoteHandler.ApplyCostOverride)
	api.POST("/quotes/:id/status", quoteHandler.Transition)

	pricingHandler := handlers.NewPricingHandler(deps.Pricing)
	api.PUT("/pricing/settings", pricingHandler.UpdateSettings)
	api.PUT("/zones/:id", pricingHandler.UpsertZone)
	api.GET("/zones/validation", pricingHandler.ValidateZones)
	api.POST("/pricing/cache/invalidate", pricingHandler.InvalidateCache)

	return r
}
