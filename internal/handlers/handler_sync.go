package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/dto"
	"github.com/letehaha/currency-rates/internal/middleware"
)

// syncHandler handles on-demand sync triggers.
type syncHandler struct {
	syncService ports.SyncSvcFacade
}

func newSyncHandler(ss ports.SyncSvcFacade) *syncHandler {
	return &syncHandler{syncService: ss}
}

// registerSyncRoutes registers the manual sync routes.
func registerSyncRoutes(rg *gin.RouterGroup, syncService ports.SyncSvcFacade) {
	h := newSyncHandler(syncService)

	sync := rg.Group("/sync")
	{
		sync.POST("", h.syncAll)
		sync.POST("/:provider", h.syncProvider)
	}
}

func (h *syncHandler) syncAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Manual sync requested for all providers")

	runs := h.syncService.SyncAll(c.Request.Context())

	c.JSON(http.StatusOK, dto.ToSyncResponse(runs))
}

func (h *syncHandler) syncProvider(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	name := c.Param("provider")
	logger.Info("Manual sync requested", slog.String("provider", name))

	run, err := h.syncService.SyncProvider(c.Request.Context(), name)
	if err != nil {
		// Lock contention surfaces to the on-demand caller as a conflict;
		// the scheduled path logs and skips instead.
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSyncResultResponse(run))
}
