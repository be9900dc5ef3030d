package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
)

type PurchaseHandler struct {
	purchaseService *service.PurchaseService
	logger          *zap.Logger
}

func NewPurchaseHandler(purchaseService *service.PurchaseService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchaseService: purchaseService,
		logger:          logger,
	}
}

// List godoc
// @Summary List purchases
// @Tags Purchases
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by provider name or invoice number"
// @Param status query string false "Filter by status" Enums(pending, received, cancelled)
// @Param providerId query string false "Filter by provider" format(uuid)
// @Param sortBy query string false "Sort field" Enums(purchaseDate, total, createdAt, updatedAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.PurchaseDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchases [get]
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	if opts.Status != "" && !domain.PurchaseStatus(opts.Status).IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status. Valid values: pending, received, cancelled")
		return
	}

	providerID, ok := parseOptionalUUID(w, r, "providerId")
	if !ok {
		return
	}

	result, err := h.purchaseService.List(r.Context(), opts, repository.PurchaseFilters{ProviderID: providerID})
	if err != nil {
		handleError(w, h.logger, err, "list purchases")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Register purchase
// @Tags Purchases
// @Accept json
// @Produce json
// @Param request body domain.PurchaseRequest true "Purchase data"
// @Success 201 {object} domain.PurchaseDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Unknown provider"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchases [post]
func (h *PurchaseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	purchase, err := h.purchaseService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err, "create purchase")
		return
	}

	w.Header().Set("Location", "/api/v1/purchases/"+purchase.ID.String())
	respondJSON(w, http.StatusCreated, purchase)
}

// GetByID godoc
// @Summary Get purchase
// @Tags Purchases
// @Produce json
// @Param id path string true "Purchase ID" format(uuid)
// @Success 200 {object} domain.PurchaseDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchases/{id} [get]
func (h *PurchaseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "purchase")
	if !ok {
		return
	}

	purchase, err := h.purchaseService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get purchase")
		return
	}
	respondJSON(w, http.StatusOK, purchase)
}

// Update godoc
// @Summary Update purchase
// @Tags Purchases
// @Accept json
// @Produce json
// @Param id path string true "Purchase ID" format(uuid)
// @Param request body domain.PurchaseRequest true "Purchase data"
// @Success 200 {object} domain.PurchaseDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchases/{id} [put]
func (h *PurchaseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "purchase")
	if !ok {
		return
	}

	var req domain.PurchaseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	purchase, err := h.purchaseService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "update purchase")
		return
	}
	respondJSON(w, http.StatusOK, purchase)
}

// Delete godoc
// @Summary Delete purchase
// @Tags Purchases
// @Param id path string true "Purchase ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /purchases/{id} [delete]
func (h *PurchaseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "purchase")
	if !ok {
		return
	}

	if err := h.purchaseService.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, err, "delete purchase")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
