package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/service"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *zap.Logger
}

func NewCategoryHandler(categoryService *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// List godoc
// @Summary List categories
// @Tags Categories
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name"
// @Param sortBy query string false "Sort field" Enums(name, createdAt, updatedAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CategoryDTO}
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categories [get]
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.categoryService.List(r.Context(), parseListOptions(r))
	if err != nil {
		handleError(w, h.logger, err, "list categories")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Param request body domain.CreateCategoryRequest true "Category data"
// @Success 201 {object} domain.CategoryDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categoryService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err, "create category")
		return
	}

	w.Header().Set("Location", "/api/v1/categories/"+category.ID.String())
	respondJSON(w, http.StatusCreated, category)
}

// GetByID godoc
// @Summary Get category
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID" format(uuid)
// @Success 200 {object} domain.CategoryDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categories/{id} [get]
func (h *CategoryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "category")
	if !ok {
		return
	}

	category, err := h.categoryService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get category")
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// Update godoc
// @Summary Update category
// @Tags Categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID" format(uuid)
// @Param request body domain.UpdateCategoryRequest true "Category data"
// @Success 200 {object} domain.CategoryDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categories/{id} [put]
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "category")
	if !ok {
		return
	}

	var req domain.UpdateCategoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	category, err := h.categoryService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "update category")
		return
	}
	respondJSON(w, http.StatusOK, category)
}

// Delete godoc
// @Summary Delete category
// @Tags Categories
// @Param id path string true "Category ID" format(uuid)
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "category")
	if !ok {
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, err, "delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
