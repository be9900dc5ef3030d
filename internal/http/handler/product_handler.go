package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
)

type ProductHandler struct {
	productService    *service.ProductService
	lowStockThreshold int
	logger            *zap.Logger
}

func NewProductHandler(productService *service.ProductService, lowStockThreshold int, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService:    productService,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// List godoc
// @Summary List products
// @Description Paginated catalogue. Search matches name, description and tags.
// @Tags Products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search text"
// @Param categoryId query string false "Filter by category" format(uuid)
// @Param active query bool false "Only active products"
// @Param sortBy query string false "Sort field" Enums(name, price, stock, createdAt, updatedAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ProductDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseOptionalUUID(w, r, "categoryId")
	if !ok {
		return
	}

	filters := repository.ProductFilters{
		CategoryID: categoryID,
		ActiveOnly: r.URL.Query().Get("active") == "true",
	}

	result, err := h.productService.List(r.Context(), parseListOptions(r), filters)
	if err != nil {
		handleError(w, h.logger, err, "list products")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// LowStock godoc
// @Summary List products running out of stock
// @Tags Products
// @Produce json
// @Success 200 {array} domain.ProductDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/low-stock [get]
func (h *ProductHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.LowStock(r.Context(), h.lowStockThreshold)
	if err != nil {
		handleError(w, h.logger, err, "list low stock products")
		return
	}

	dtos := make([]domain.ProductDTO, len(products))
	for i := range products {
		dtos[i] = mapper.ToProductDTO(&products[i])
	}
	respondJSON(w, http.StatusOK, dtos)
}

// Create godoc
// @Summary Create product
// @Tags Products
// @Accept json
// @Produce json
// @Param request body domain.ProductRequest true "Product data"
// @Success 201 {object} domain.ProductDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Unknown category"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products [post]
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err, "create product")
		return
	}

	w.Header().Set("Location", "/api/v1/products/"+product.ID.String())
	respondJSON(w, http.StatusCreated, product)
}

// GetByID godoc
// @Summary Get product
// @Tags Products
// @Produce json
// @Param id path string true "Product ID" format(uuid)
// @Success 200 {object} domain.ProductDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Update godoc
// @Summary Update product
// @Tags Products
// @Accept json
// @Produce json
// @Param id path string true "Product ID" format(uuid)
// @Param request body domain.ProductRequest true "Product data"
// @Success 200 {object} domain.ProductDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [put]
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "product")
	if !ok {
		return
	}

	var req domain.ProductRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "update product")
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// Delete godoc
// @Summary Delete product
// @Tags Products
// @Param id path string true "Product ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /products/{id} [delete]
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		handleError(w, h.logger, err, "delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
