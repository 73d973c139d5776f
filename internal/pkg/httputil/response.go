// Package httputil provides HTTP response helpers and request middleware.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// JSON writes a raw JSON response without envelope.
// Use Success for {"data": ...} wrapped responses.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Success writes a JSON response with {"data": ...} envelope.
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, map[string]interface{}{"data": data})
}

// Error writes a JSON response with {"error": {"message": ...}} envelope.
func Error(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{"message": message},
	}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// ValidationError writes a 400 response carrying the first violated
// constraint's message. The messages map overrides the generic wording per
// "Field.tag" key, e.g. "Password.min".
func ValidationError(w http.ResponseWriter, err error, messages map[string]string) {
	msg := "validation error"

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		e := validationErrors[0]
		if override, ok := messages[e.Field()+"."+e.Tag()]; ok {
			msg = override
		} else {
			switch e.Tag() {
			case "required":
				msg = fmt.Sprintf("%s is required.", e.Field())
			case "email":
				msg = fmt.Sprintf("%s must be a valid email address.", e.Field())
			default:
				msg = fmt.Sprintf("%s is invalid.", e.Field())
			}
		}
	}

	Error(w, http.StatusBadRequest, msg)
}

// Pagination describes a page of a list response.
type Pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	Limit       int `json:"limit"`
	Offset      int `json:"offset"`
}

// NewPagination computes page metadata for a list of total rows.
func NewPagination(total, limit, offset int) Pagination {
	p := Pagination{Total: total, Limit: limit, Offset: offset}
	if limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(limit)))
		p.CurrentPage = offset/limit + 1
	}
	return p
}
