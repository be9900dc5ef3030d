package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
)

type ProviderHandler struct {
	providerService *service.ProviderService
	logger          *zap.Logger
}

func NewProviderHandler(providerService *service.ProviderService, logger *zap.Logger) *ProviderHandler {
	return &ProviderHandler{
		providerService: providerService,
		logger:          logger,
	}
}

// List godoc
// @Summary List providers
// @Tags Providers
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, contact or tax ID"
// @Param status query string false "Filter by status" Enums(active, inactive)
// @Param category query string false "Filter by supply category"
// @Param sortBy query string false "Sort field" Enums(name, category, createdAt, updatedAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProviderDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /providers [get]
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	if opts.Status != "" && !domain.RecordStatus(opts.Status).IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status. Valid values: active, inactive")
		return
	}

	filters := repository.ProviderFilters{Category: r.URL.Query().Get("category")}
	result, err := h.providerService.List(r.Context(), opts, filters)
	if err != nil {
		handleError(w, h.logger, err, "list providers")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create provider
// @Tags Providers
// @Accept json
// @Produce json
// @Param request body domain.ProviderRequest true "Provider data"
// @Success 201 {object} domain.ProviderDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /providers [post]
func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProviderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	provider, err := h.providerService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err, "create provider")
		return
	}

	w.Header().Set("Location", "/api/v1/providers/"+provider.ID.String())
	respondJSON(w, http.StatusCreated, provider)
}

// GetByID godoc
// @Summary Get provider
// @Tags Providers
// @Produce json
// @Param id path string true "Provider ID" format(uuid)
// @Success 200 {object} domain.ProviderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /providers/{id} [get]
func (h *ProviderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "provider")
	if !ok {
		return
	}

	provider, err := h.providerService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get provider")
		return
	}
	respondJSON(w, http.StatusOK, provider)
}

// Update godoc
// @Summary Update provider
// @Tags Providers
// @Accept json
// @Produce json
// @Param id path string true "Provider ID" format(uuid)
// @Param request body domain.ProviderRequest true "Provider data"
// @Success 200 {object} domain.ProviderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /providers/{id} [put]
func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "provider")
	if !ok {
		return
	}

	var req domain.ProviderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	provider, err := h.providerService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "update provider")
		return
	}
	respondJSON(w, http.StatusOK, provider)
}

// Delete godoc
// @Summary Delete provider
// @Tags Providers
// @Param id path string true "Provider ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /providers/{id} [delete]
func (h *ProviderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "provider")
	if !ok {
		return
	}

	if err := h.providerService.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, err, "delete provider")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
