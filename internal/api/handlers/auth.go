package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rentease/gateway/internal/api/middleware"
	"github.com/rentease/gateway/internal/rentease"
	"github.com/rentease/gateway/internal/session"
	"github.com/rentease/gateway/internal/validate"
	"github.com/rentease/gateway/internal/view"
)

// LoginResponse carries the backend's auth result back to the UI.
type LoginResponse struct {
	User  rentease.User `json:"user"`
	Token string        `json:"token"`
}

// Signup validates the form and forwards account creation to the backend.
func Signup(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validate.SignupForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if err := validate.Struct(form); err != nil {
			middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation,
				"Form validation failed", err)
			return
		}

		result, err := client.Signup(r.Context(), rentease.SignupRequest{
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
			Phone:     form.Phone,
			Password:  form.Password,
			Role:      rentease.Role(form.Role),
		})
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(LoginResponse{User: result.User, Token: result.Token})
	}
}

// Login authenticates against the backend and records the session.
func Login(client *rentease.Client, manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var form validate.LoginForm
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if err := validate.Struct(form); err != nil {
			middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation,
				"Form validation failed", err)
			return
		}

		result, err := client.Login(r.Context(), rentease.LoginRequest{
			Email:    form.Email,
			Password: form.Password,
			Role:     rentease.Role(form.Role),
		})
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		if _, err := manager.Save(r.Context(), result.User, result.Token); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError,
				"Failed to record session")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(LoginResponse{User: result.User, Token: result.Token})
	}
}

// Logout clears the session and drops the user's view store.
func Logout(manager *session.Manager, registry *view.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok {
			middleware.WriteError(w, http.StatusUnauthorized, middleware.ErrUnauthorized, "Not signed in")
			return
		}

		if err := manager.Clear(r.Context(), s.User.ID); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError,
				"Failed to clear session")
			return
		}
		registry.Drop(s.User.ID)

		w.WriteHeader(http.StatusNoContent)
	}
}

// ForgotPassword forwards a password-reset request to the backend.
func ForgotPassword(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email" validate:"required,email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if err := validate.Struct(req); err != nil {
			middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation,
				"Form validation failed", err)
			return
		}

		if err := client.ForgotPassword(r.Context(), req.Email); err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}
