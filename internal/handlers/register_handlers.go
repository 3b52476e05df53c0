package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
)

// Services bundles the service facades the HTTP layer dispatches to.
type Services struct {
	Rates  ports.RatesSvcFacade
	Sync   ports.SyncSvcFacade
	Health ports.HealthSvcFacade
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	version string,
	services Services,
	limiterInstance *limiter.Limiter,
) {
	registerValidations()

	registerHomeRoutes(r, version)
	registerHealthRoutes(r, version, services.Health)

	// Prometheus exposition; intentionally outside the rate-limited group
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public query surface, per-IP rate limited
	public := r.Group("", middleware.RateLimit(limiterInstance))
	registerRatesRoutes(public, services.Rates)
	registerCurrencyRoutes(public, services.Rates)
	registerSyncRoutes(public, services.Sync)
}

// registerValidations installs the custom binding rules used by query DTOs.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	// "currency": a 3-letter code, case-insensitive.
	_ = v.RegisterValidation("currency", func(fl validator.FieldLevel) bool {
		code := fl.Field().String()
		if len(code) != 3 {
			return false
		}
		for _, r := range code {
			if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
				return false
			}
		}
		return true
	})
}
