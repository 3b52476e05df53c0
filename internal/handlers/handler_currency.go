package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/dto"
)

// currencyHandler handles HTTP requests for currency metadata.
type currencyHandler struct {
	ratesService ports.RatesSvcFacade
}

func newCurrencyHandler(rs ports.RatesSvcFacade) *currencyHandler {
	return &currencyHandler{ratesService: rs}
}

// registerCurrencyRoutes registers the currency metadata route.
func registerCurrencyRoutes(rg *gin.RouterGroup, ratesService ports.RatesSvcFacade) {
	h := newCurrencyHandler(ratesService)

	rg.GET("/currencies", h.listCurrencies)
}

func (h *currencyHandler) listCurrencies(c *gin.Context) {
	infos, err := h.ratesService.Currencies(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCurrenciesResponse(infos))
}
