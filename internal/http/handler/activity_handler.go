package handler

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/service"
)

// ActivityHandler exposes the activity log of any record
type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler instance
func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// List godoc
// @Summary List activities of a record
// @Description Newest first, at most 100 entries
// @Tags Activities
// @Produce json
// @Param targetType query string true "Record type" Enums(quote, order, client, product, provider, purchase, category)
// @Param targetId query string true "Record ID" format(uuid)
// @Success 200 {array} domain.ActivityDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	targetType := domain.ActivityTargetType(r.URL.Query().Get("targetType"))
	if !targetType.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid targetType. Valid values: quote, order, client, product, provider, purchase, category")
		return
	}

	targetID, err := uuid.Parse(r.URL.Query().Get("targetId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid targetId: must be a valid UUID")
		return
	}

	activities, err := h.activityService.List(r.Context(), targetType, targetID)
	if err != nil {
		handleError(w, h.logger, err, "list activities")
		return
	}
	respondJSON(w, http.StatusOK, activities)
}
