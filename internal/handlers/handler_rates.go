package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/dto"
	"github.com/letehaha/currency-rates/internal/middleware"
)

// ratesHandler handles HTTP requests for rate queries.
type ratesHandler struct {
	ratesService ports.RatesSvcFacade
}

func newRatesHandler(rs ports.RatesSvcFacade) *ratesHandler {
	return &ratesHandler{ratesService: rs}
}

// registerRatesRoutes registers the latest and date/range query routes.
func registerRatesRoutes(rg *gin.RouterGroup, ratesService ports.RatesSvcFacade) {
	h := newRatesHandler(ratesService)

	rg.GET("/latest", h.getLatest)
	rg.GET("/:date", h.getByDateOrRange)
}

// bindQuery parses the shared rate query parameters into domain form.
func (h *ratesHandler) bindQuery(c *gin.Context) (domain.RateQuery, error) {
	var req dto.RatesQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		return domain.RateQuery{}, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	q := domain.RateQuery{
		Base:   strings.ToUpper(req.From),
		Amount: req.Amount,
	}

	// "to" and "symbols" are aliases for the comma-separated target filter.
	symbols := req.To
	if symbols == "" {
		symbols = req.Symbols
	}
	if symbols != "" {
		for _, symbol := range strings.Split(symbols, ",") {
			if symbol = strings.ToUpper(strings.TrimSpace(symbol)); symbol != "" {
				q.Symbols = append(q.Symbols, symbol)
			}
		}
	}
	return q, nil
}

func (h *ratesHandler) getLatest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	q, err := h.bindQuery(c)
	if err != nil {
		logger.Warn("Invalid rate query", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	set, err := h.ratesService.Latest(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRatesResponse(set))
}

func (h *ratesHandler) getByDateOrRange(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	segment, ok := parseDateSegment(c.Param("date"))
	if !ok {
		logger.Warn("Invalid date segment", slog.String("segment", c.Param("date")))
		respondError(c, fmt.Errorf("%w: invalid date %q, expected YYYY-MM-DD, YYYYMMDD, or start..end",
			apperrors.ErrValidation, c.Param("date")))
		return
	}

	q, err := h.bindQuery(c)
	if err != nil {
		logger.Warn("Invalid rate query", slog.String("error", err.Error()))
		respondError(c, err)
		return
	}

	if segment.isRange {
		series, err := h.ratesService.Range(c.Request.Context(), segment.start, segment.end, q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToTimeSeriesResponse(series))
		return
	}

	set, err := h.ratesService.AtDate(c.Request.Context(), segment.date, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToRatesResponse(set))
}
