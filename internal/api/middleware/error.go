// Package middleware provides HTTP middleware for the gateway API.
package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"runtime/debug"

	"github.com/rentease/gateway/internal/rentease"
	"github.com/rentease/gateway/internal/view"
)

// ErrorResponse represents a standardized API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Common error codes
const (
	ErrNotFound        = "not_found"
	ErrBadRequest      = "bad_request"
	ErrConflict        = "conflict"
	ErrInternalError   = "internal_error"
	ErrValidation      = "validation_error"
	ErrUnauthorized    = "unauthorized"
	ErrForbidden       = "forbidden"
	ErrNetwork         = "network_error"
	ErrBackend         = "backend_error"
	ErrMutationPending = "mutation_pending"
)

// WriteError writes a JSON error response with the given status code.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// WriteErrorWithDetails writes a JSON error response with additional details.
func WriteErrorWithDetails(w http.ResponseWriter, status int, errCode, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   errCode,
		Message: message,
		Details: details,
	})
}

// WriteDomainError maps the client and view error taxonomy onto HTTP
// responses: backend statuses pass through, network failures become 502,
// conflicts and pending mutations get their own codes.
func WriteDomainError(w http.ResponseWriter, err error) {
	var (
		httpErr     *rentease.HTTPError
		netErr      *rentease.NetworkError
		schemaErr   *rentease.SchemaError
		conflictErr *view.StateConflictError
	)

	switch {
	case errors.As(err, &conflictErr):
		WriteError(w, http.StatusConflict, ErrConflict, conflictErr.Error())
	case errors.Is(err, view.ErrMutationPending):
		WriteError(w, http.StatusConflict, ErrMutationPending, err.Error())
	case errors.Is(err, view.ErrUnknownProperty), errors.Is(err, view.ErrUnknownBooking):
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
	case errors.As(err, &httpErr):
		WriteErrorWithDetails(w, httpErr.Status, ErrBackend, "Backend rejected the request",
			map[string]any{"status": httpErr.Status, "body": httpErr.Body})
	case errors.As(err, &netErr):
		WriteError(w, http.StatusBadGateway, ErrNetwork, "Backend is unreachable")
	case errors.As(err, &schemaErr):
		WriteError(w, http.StatusBadGateway, ErrBackend, "Backend returned an unexpected response shape")
	default:
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
	}
}

// ErrorRecovery is middleware that recovers from panics and returns a 500 error.
func ErrorRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("Panic recovered: %v\n%s", err, debug.Stack())
				WriteError(w, http.StatusInternalServerError, ErrInternalError, "An unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
