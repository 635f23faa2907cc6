package handlers

import (
	"net/http"

	"woosync/internal/common"
	"woosync/internal/models"
	"woosync/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// SyncHandlers exposes the on-demand store sync trigger
type SyncHandlers struct {
	syncService services.SyncService
	log         zerolog.Logger
}

func NewSyncHandlers(syncService services.SyncService, log zerolog.Logger) *SyncHandlers {
	return &SyncHandlers{
		syncService: syncService,
		log:         log.With().Str("component", "sync_handlers").Logger(),
	}
}

type SyncRequest struct {
	StoreID string `json:"store_id"`
}

type SyncResponse struct {
	Success bool               `json:"success"`
	Message string             `json:"message"`
	Result  *models.SyncResult `json:"result"`
}

// SyncStore handles POST /v1/sync
// @Summary Sync a store catalog
// @Description Mirrors the store's WooCommerce products, variations and images into the local tables.
// @Tags sync
// @Accept json
// @Produce json
// @Param request body SyncRequest true "Store to sync"
// @Success 200 {object} SyncResponse
// @Failure 400 {object} common.ErrorResponse
// @Failure 404 {object} common.ErrorResponse
// @Failure 409 {object} common.ErrorResponse
// @Failure 500 {object} common.ErrorResponse
// @Router /v1/sync [post]
func (h *SyncHandlers) SyncStore(c echo.Context) error {
	var req SyncRequest
	if err := c.Bind(&req); err != nil {
		return common.SendError(c, http.StatusBadRequest, "Invalid request body")
	}

	storeID, err := common.ValidateUUID(req.StoreID, "store_id")
	if err != nil {
		return common.SendError(c, http.StatusBadRequest, err.Error())
	}

	result, err := h.syncService.SyncStore(c.Request().Context(), storeID)
	if err != nil {
		status := services.HTTPStatus(err)
		if status >= http.StatusInternalServerError {
			h.log.Error().Err(err).Str("store_id", storeID.String()).Msg("sync failed")
		}
		return common.SendError(c, status, err.Error())
	}

	return c.JSON(http.StatusOK, SyncResponse{
		Success: true,
		Message: "Products synchronized successfully",
		Result:  result,
	})
}
