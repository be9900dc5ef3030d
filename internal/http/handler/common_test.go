package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/repository"
	"github.com/bandera-print/backoffice-api/internal/service"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"field validation", domain.NewValidationError("name", "is required"), http.StatusBadRequest, domain.ErrorTypeValidation},
		{"not found", service.ErrQuoteNotFound, http.StatusNotFound, domain.ErrorTypeNotFound},
		{"wrapped not found", fmt.Errorf("load: %w", service.ErrClientNotFound), http.StatusNotFound, domain.ErrorTypeNotFound},
		{"transition", &domain.TransitionError{Entity: "quote", From: "draft", To: "confirmed"}, http.StatusConflict, domain.ErrorTypeConflict},
		{"locked", domain.ErrQuoteLocked, http.StatusConflict, domain.ErrorTypeConflict},
		{"closed order", domain.ErrOrderClosed, http.StatusConflict, domain.ErrorTypeConflict},
		{"discount", domain.ErrInvalidDiscount, http.StatusUnprocessableEntity, domain.ErrorTypeUnprocessable},
		{"empty quote", domain.ErrEmptyQuote, http.StatusUnprocessableEntity, domain.ErrorTypeUnprocessable},
		{"overpayment", domain.ErrPaymentExceedsBalance, http.StatusUnprocessableEntity, domain.ErrorTypeUnprocessable},
		{"too large", service.ErrFileTooLarge, http.StatusRequestEntityTooLarge, domain.ErrorTypeBadRequest},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, domain.ErrorTypeUnauthorized},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError, domain.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			handleError(w, zap.NewNop(), tt.err, "do thing")

			assert.Equal(t, tt.wantStatus, w.Code)
			var body domain.APIError
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Type)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestHandleError_HidesInternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	handleError(w, zap.NewNop(), errors.New("pq: password authentication failed"), "list quotes")

	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), "Failed to list quotes")
}

func TestHandleError_FieldErrors(t *testing.T) {
	w := httptest.NewRecorder()
	handleError(w, zap.NewNop(), domain.NewValidationError("items.unitPrice", "is required"), "create quote")

	var body domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "is required", body.Errors["items.unitPrice"])
}

func TestDecodeJSON(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		var req domain.AddQuoteCommentRequest
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))

		assert.False(t, decodeJSON(w, r, &req))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("validation tags", func(t *testing.T) {
		var req domain.RecordPaymentRequest
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount":"10","method":"barter"}`))

		assert.False(t, decodeJSON(w, r, &req))
		var body domain.APIError
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, domain.ErrorTypeValidation, body.Type)
		assert.Contains(t, body.Errors, "method")
	})

	t.Run("empty optional body", func(t *testing.T) {
		var req domain.RejectQuoteRequest
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", nil)

		assert.True(t, decodeOptionalJSON(w, r, &req))
		assert.Empty(t, req.Reason)
	})
}

func TestParseListOptions(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/quotes?page=3&pageSize=1000&search=%20club%20&status=sent&sortBy=total&sortOrder=asc", nil)

	opts := parseListOptions(r)
	assert.Equal(t, 3, opts.Page)
	assert.Equal(t, repository.MaxPageSize, opts.PageSize)
	assert.Equal(t, "club", opts.Search)
	assert.Equal(t, "sent", opts.Status)
	assert.Equal(t, "total", opts.Sort.Field)
	assert.Equal(t, repository.SortOrderAsc, opts.Sort.Order)

	defaults := parseListOptions(httptest.NewRequest(http.MethodGet, "/quotes?page=abc", nil))
	assert.Equal(t, 1, defaults.Page)
	assert.Equal(t, repository.DefaultPageSize, defaults.PageSize)
}
