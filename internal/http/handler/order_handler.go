package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
)

type OrderHandler struct {
	orderService *service.OrderService
	logger       *zap.Logger
}

func NewOrderHandler(orderService *service.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// List godoc
// @Summary List orders
// @Tags Orders
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by number or client name"
// @Param status query string false "Filter by status" Enums(in_process, completed, cancelled)
// @Param clientId query string false "Filter by client" format(uuid)
// @Param overdue query bool false "Only open orders past their delivery date"
// @Param sortBy query string false "Sort field" Enums(number, clientName, total, balance, estimatedDeliveryDate, createdAt, updatedAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.OrderDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders [get]
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseOptionalUUID(w, r, "clientId")
	if !ok {
		return
	}

	filters := repository.OrderFilters{
		ClientID:    clientID,
		OverdueOnly: r.URL.Query().Get("overdue") == "true",
	}

	result, err := h.orderService.List(r.Context(), parseListOptions(r), filters)
	if err != nil {
		handleError(w, h.logger, err, "list orders")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get order
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {object} domain.OrderDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "order")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Update godoc
// @Summary Update order details
// @Description Changes delivery date, payment method, down payment and invoice data of an order in process
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.UpdateOrderRequest true "Changes"
// @Success 200 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Order is closed"
// @Failure 422 {object} domain.APIError "Down payment exceeds balance"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id} [put]
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "order")
	if !ok {
		return
	}

	var req domain.UpdateOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.UpdateDetails(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "update order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// RecordPayment godoc
// @Summary Record payment
// @Description Appends a payment to the history and reduces the balance. A zero balance does not complete the order.
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.RecordPaymentRequest true "Payment"
// @Success 201 {object} domain.OrderDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Order is closed"
// @Failure 422 {object} domain.APIError "Payment exceeds balance"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id}/payments [post]
func (h *OrderHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "order")
	if !ok {
		return
	}

	var req domain.RecordPaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.RecordPayment(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "record payment")
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// Complete godoc
// @Summary Complete order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.CompleteOrderRequest false "Delivery date, defaults to now"
// @Success 200 {object} domain.OrderDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Invalid transition"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id}/complete [post]
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "order")
	if !ok {
		return
	}

	var req domain.CompleteOrderRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.Complete(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "complete order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Cancel godoc
// @Summary Cancel order
// @Tags Orders
// @Accept json
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Param request body domain.CancelOrderRequest false "Cancellation reason"
// @Success 200 {object} domain.OrderDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Invalid transition"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "order")
	if !ok {
		return
	}

	var req domain.CancelOrderRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	order, err := h.orderService.Cancel(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "cancel order")
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// Activities godoc
// @Summary Order activity log
// @Tags Orders
// @Produce json
// @Param id path string true "Order ID" format(uuid)
// @Success 200 {array} domain.ActivityDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /orders/{id}/activities [get]
func (h *OrderHandler) Activities(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "order")
	if !ok {
		return
	}

	activities, err := h.orderService.Activities(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "list order activities")
		return
	}
	respondJSON(w, http.StatusOK, activities)
}
