// Package respond writes JSON bodies and the API's uniform error payload.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
)

// Error codes shared by every handler.
const (
	CodeBadRequest          = "bad_request"
	CodeUnauthorized        = "unauthorized"
	CodeNotFound            = "not_found"
	CodeMethodNotAllowed    = "method_not_allowed"
	CodeDatabaseUnavailable = "database_unavailable"
	CodeInternal            = "internal_error"
)

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func Error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	ErrorWithDetails(w, r, status, code, message, nil)
}

func ErrorWithDetails(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	JSON(w, status, errorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// Internal logs err and answers with an opaque 500.
func Internal(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)

	Error(w, r, http.StatusInternalServerError, CodeInternal, "internal server error")
}

func Unavailable(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("store unavailable", "path", r.URL.Path, "error", err)

	Error(w, r, http.StatusServiceUnavailable, CodeDatabaseUnavailable, "database unavailable")
}

// Money renders an amount as a JSON number with exactly two decimals.
type Money decimal.Decimal

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.Decimal(m).StringFixed(2)), nil
}

// RequestIDHeader echoes the request id assigned by middleware.RequestID.
func RequestIDHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			w.Header().Set(middleware.RequestIDHeader, id)
		}

		next.ServeHTTP(w, r)
	})
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusNotFound, CodeNotFound, "resource not found")
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	Error(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "method not allowed")
}
