package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
)

type ClientHandler struct {
	clientService *service.ClientService
	quoteService  *service.QuoteService
	orderService  *service.OrderService
	logger        *zap.Logger
}

func NewClientHandler(clientService *service.ClientService, quoteService *service.QuoteService, orderService *service.OrderService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		quoteService:  quoteService,
		orderService:  orderService,
		logger:        logger,
	}
}

// List godoc
// @Summary List clients
// @Tags Clients
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by name, email, phone or tax ID"
// @Param status query string false "Filter by status" Enums(active, inactive)
// @Param type query string false "Filter by type" Enums(individual, company)
// @Param sortBy query string false "Sort field" Enums(name, city, createdAt, updatedAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ClientDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [get]
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := parseListOptions(r)
	if opts.Status != "" && !domain.RecordStatus(opts.Status).IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid status. Valid values: active, inactive")
		return
	}

	filters := repository.ClientFilters{Type: domain.ClientType(r.URL.Query().Get("type"))}
	if filters.Type != "" && !filters.Type.IsValid() {
		respondWithError(w, http.StatusBadRequest, "Invalid type. Valid values: individual, company")
		return
	}

	result, err := h.clientService.List(r.Context(), opts, filters)
	if err != nil {
		handleError(w, h.logger, err, "list clients")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create client
// @Tags Clients
// @Accept json
// @Produce json
// @Param request body domain.ClientRequest true "Client data"
// @Success 201 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients [post]
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.ClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err, "create client")
		return
	}

	w.Header().Set("Location", "/api/v1/clients/"+client.ID.String())
	respondJSON(w, http.StatusCreated, client)
}

// GetByID godoc
// @Summary Get client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Success 200 {object} domain.ClientDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [get]
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "client")
	if !ok {
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// Update godoc
// @Summary Update client
// @Description Replaces the client details and contact list. An empty status keeps the current one.
// @Tags Clients
// @Accept json
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Param request body domain.ClientRequest true "Client data"
// @Success 200 {object} domain.ClientDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id} [put]
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "client")
	if !ok {
		return
	}

	var req domain.ClientRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	client, err := h.clientService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "update client")
		return
	}
	respondJSON(w, http.StatusOK, client)
}

// ListQuotes godoc
// @Summary List quotes of a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuoteDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id}/quotes [get]
func (h *ClientHandler) ListQuotes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "client")
	if !ok {
		return
	}
	if _, err := h.clientService.GetByID(r.Context(), id); err != nil {
		handleError(w, h.logger, err, "get client")
		return
	}

	result, err := h.quoteService.List(r.Context(), parseListOptions(r), repository.QuoteFilters{ClientID: &id})
	if err != nil {
		handleError(w, h.logger, err, "list client quotes")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListOrders godoc
// @Summary List orders of a client
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.OrderDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id}/orders [get]
func (h *ClientHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "client")
	if !ok {
		return
	}
	if _, err := h.clientService.GetByID(r.Context(), id); err != nil {
		handleError(w, h.logger, err, "get client")
		return
	}

	result, err := h.orderService.List(r.Context(), parseListOptions(r), repository.OrderFilters{ClientID: &id})
	if err != nil {
		handleError(w, h.logger, err, "list client orders")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Activities godoc
// @Summary Client activity log
// @Tags Clients
// @Produce json
// @Param id path string true "Client ID" format(uuid)
// @Success 200 {array} domain.ActivityDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /clients/{id}/activities [get]
func (h *ClientHandler) Activities(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "client")
	if !ok {
		return
	}

	activities, err := h.clientService.Activities(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "list client activities")
		return
	}
	respondJSON(w, http.StatusOK, activities)
}
