package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
)

type QuoteHandler struct {
	quoteService *service.QuoteService
	logger       *zap.Logger
}

func NewQuoteHandler(quoteService *service.QuoteService, logger *zap.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		logger:       logger,
	}
}

// List godoc
// @Summary List quotes
// @Tags Quotes
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param search query string false "Search by number or client name"
// @Param status query string false "Filter by status" Enums(draft, sent, confirmed, rejected)
// @Param clientId query string false "Filter by client" format(uuid)
// @Param sortBy query string false "Sort field" Enums(number, clientName, total, validUntil, createdAt, updatedAt)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuoteDTO}
// @Failure 400 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [get]
func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	clientID, ok := parseOptionalUUID(w, r, "clientId")
	if !ok {
		return
	}

	result, err := h.quoteService.List(r.Context(), parseListOptions(r), repository.QuoteFilters{ClientID: clientID})
	if err != nil {
		handleError(w, h.logger, err, "list quotes")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Create godoc
// @Summary Create quote
// @Description Creates a draft quote with the next PRE number. Items referencing a product take its price and name unless given.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param request body domain.CreateQuoteRequest true "Quote data"
// @Success 201 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError "Unknown client or product"
// @Failure 422 {object} domain.APIError "Discount exceeds amount"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes [post]
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quote, err := h.quoteService.Create(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err, "create quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

// GetByID godoc
// @Summary Get quote
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [get]
func (h *QuoteHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.GetByID(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "get quote")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// Update godoc
// @Summary Update draft quote
// @Description Only drafts can be edited. Omitted fields keep their value.
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.UpdateQuoteRequest true "Changes"
// @Success 200 {object} domain.QuoteDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Quote is not a draft"
// @Failure 422 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id} [put]
func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "quote")
	if !ok {
		return
	}

	var req domain.UpdateQuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	quote, err := h.quoteService.Update(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "update quote")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// Send godoc
// @Summary Send quote
// @Description Moves a draft to sent and emails it to the client when mail is configured
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Invalid transition"
// @Failure 422 {object} domain.APIError "Quote has no items"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/send [post]
func (h *QuoteHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.Send(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "send quote")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// Confirm godoc
// @Summary Confirm quote
// @Description Accepts a sent quote and creates its order with the next ORD number
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {object} domain.ConfirmQuoteResponse
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Invalid transition"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/confirm [post]
func (h *QuoteHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "quote")
	if !ok {
		return
	}

	result, err := h.quoteService.Confirm(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "confirm quote")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Reject godoc
// @Summary Reject quote
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.RejectQuoteRequest false "Rejection reason"
// @Success 200 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Invalid transition"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/reject [post]
func (h *QuoteHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "quote")
	if !ok {
		return
	}

	var req domain.RejectQuoteRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	quote, err := h.quoteService.Reject(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "reject quote")
		return
	}
	respondJSON(w, http.StatusOK, quote)
}

// AddComment godoc
// @Summary Comment on quote
// @Description Internal comments are never included in what the client receives
// @Tags Quotes
// @Accept json
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Param request body domain.AddQuoteCommentRequest true "Comment"
// @Success 201 {object} domain.QuoteCommentDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/comments [post]
func (h *QuoteHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "quote")
	if !ok {
		return
	}

	var req domain.AddQuoteCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.quoteService.AddComment(r.Context(), id, &req)
	if err != nil {
		handleError(w, h.logger, err, "add quote comment")
		return
	}
	respondJSON(w, http.StatusCreated, comment)
}

// Duplicate godoc
// @Summary Duplicate quote
// @Description Copies client, items and pricing into a new draft
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 201 {object} domain.QuoteDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/duplicate [post]
func (h *QuoteHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "quote")
	if !ok {
		return
	}

	quote, err := h.quoteService.Duplicate(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "duplicate quote")
		return
	}

	w.Header().Set("Location", "/api/v1/quotes/"+quote.ID.String())
	respondJSON(w, http.StatusCreated, quote)
}

// Activities godoc
// @Summary Quote activity log
// @Tags Quotes
// @Produce json
// @Param id path string true "Quote ID" format(uuid)
// @Success 200 {array} domain.ActivityDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotes/{id}/activities [get]
func (h *QuoteHandler) Activities(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "quote")
	if !ok {
		return
	}

	activities, err := h.quoteService.Activities(r.Context(), id)
	if err != nil {
		handleError(w, h.logger, err, "list quote activities")
		return
	}
	respondJSON(w, http.StatusOK, activities)
}
