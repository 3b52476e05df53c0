package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/letehaha/currency-rates/internal/apperrors"
	"github.com/letehaha/currency-rates/internal/core/domain"
	"github.com/letehaha/currency-rates/internal/middleware"
)

// errorResponse is the uniform error payload: a stable taxonomy name plus a
// human-readable detail.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// respondError maps a service error onto the HTTP status taxonomy. "No data
// yet", "malformed request", and "internal failure" must stay distinguishable
// for callers.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	switch {
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, errorResponse{Error: "validation_error", Message: err.Error()})
	case errors.Is(err, apperrors.ErrNoData):
		c.JSON(http.StatusNotFound, errorResponse{Error: "no_data", Message: err.Error()})
	case errors.Is(err, apperrors.ErrUnknownCurrency):
		c.JSON(http.StatusNotFound, errorResponse{Error: "unknown_currency", Message: err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, apperrors.ErrSyncInProgress):
		c.JSON(http.StatusConflict, errorResponse{Error: "sync_in_progress", Message: err.Error()})
	case errors.Is(err, apperrors.ErrFetch), errors.Is(err, apperrors.ErrParse):
		logger.Error("Provider failure", slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, errorResponse{Error: "provider_error", Message: err.Error()})
	default:
		logger.Error("Internal failure", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: "internal server error"})
	}
}

// parseDay accepts the two supported single-date forms, YYYY-MM-DD and
// YYYYMMDD.
func parseDay(s string) (time.Time, bool) {
	for _, layout := range []string{time.DateOnly, "20060102"} {
		if d, err := time.Parse(layout, s); err == nil {
			return domain.Day(d), true
		}
	}
	return time.Time{}, false
}

// dateSegment is a parsed /:date path segment: either a single day or a
// start..end range with optional bounds.
type dateSegment struct {
	isRange bool
	date    time.Time
	start   time.Time // zero = from earliest stored date
	end     time.Time // zero = to latest stored date
}

// parseDateSegment parses the date path grammar:
// YYYY-MM-DD | YYYYMMDD | start..end (either bound optional).
func parseDateSegment(s string) (dateSegment, bool) {
	if strings.Contains(s, "..") {
		parts := strings.SplitN(s, "..", 2)
		seg := dateSegment{isRange: true}
		if parts[0] != "" {
			start, ok := parseDay(parts[0])
			if !ok {
				return dateSegment{}, false
			}
			seg.start = start
		}
		if parts[1] != "" {
			end, ok := parseDay(parts[1])
			if !ok {
				return dateSegment{}, false
			}
			seg.end = end
		}
		return seg, true
	}

	date, ok := parseDay(s)
	if !ok {
		return dateSegment{}, false
	}
	return dateSegment{date: date}, true
}
