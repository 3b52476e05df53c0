package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/dto"
)

// healthHandler reports service and per-provider sync state.
type healthHandler struct {
	healthService ports.HealthSvcFacade
	version       string
}

// registerHealthRoutes registers the health route.
func registerHealthRoutes(r *gin.Engine, version string, healthService ports.HealthSvcFacade) {
	h := &healthHandler{healthService: healthService, version: version}

	r.GET("/health", h.getHealth)
}

func (h *healthHandler) getHealth(c *gin.Context) {
	report, err := h.healthService.Health(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.HealthResponse{
		Status:            "ok",
		Version:           h.version,
		ReferenceCurrency: report.ReferenceCurrency,
	}
	for _, provider := range report.Providers {
		entry := dto.ProviderHealth{
			Name:         provider.Name,
			BaseCurrency: provider.BaseCurrency,
			RatesCount:   provider.RatesCount,
			UpToDate:     provider.UpToDate,
		}
		if !provider.LastRateDate.IsZero() {
			entry.LastRateDate = domain.DayString(provider.LastRateDate)
		}
		if !provider.LastSyncedAt.IsZero() {
			entry.LastSyncedAt = provider.LastSyncedAt.Format(time.RFC3339)
		}
		resp.Providers = append(resp.Providers, entry)
	}

	c.JSON(http.StatusOK, resp)
}
