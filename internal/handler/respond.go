package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/smartcycle/discounts/internal/domain/validation"
)

// Prices serialize as JSON numbers, not quoted strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type fieldErrorResponse struct {
	Code    int                     `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.lg.Warn("writing response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, errorResponse{Code: status, Message: message})
}

// respondValidationError renders a 422 with per-field messages when err is a
// validation error, and a 500 otherwise.
func (h *Handler) respondValidationError(w http.ResponseWriter, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		h.respondJSON(w, http.StatusUnprocessableEntity, fieldErrorResponse{
			Code:    http.StatusUnprocessableEntity,
			Message: "validation failed",
			Fields:  vErr.Fields,
		})
		return
	}
	h.respondInternal(w, err)
}

func (h *Handler) respondInternal(w http.ResponseWriter, err error) {
	h.lg.Error("internal error", zap.Error(err))
	h.respondError(w, http.StatusInternalServerError, "internal server error")
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
