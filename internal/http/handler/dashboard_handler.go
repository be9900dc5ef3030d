package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// @Summary Get dashboard summary
// @Description Counts of quotes and orders per status, open balance, overdue orders, products under the low stock threshold and the five latest quotes.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} domain.DashboardSummaryDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /dashboard [get]
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboardService.GetSummary(r.Context())
	if err != nil {
		handleError(w, h.logger, err, "get dashboard summary")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}
