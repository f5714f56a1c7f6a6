package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rentease/gateway/internal/api/middleware"
	"github.com/rentease/gateway/internal/rentease"
	"github.com/rentease/gateway/internal/validate"
	"github.com/rentease/gateway/internal/view"
	"github.com/rentease/gateway/internal/websocket"
)

// maxUploadBytes bounds the multipart payload for property writes.
const maxUploadBytes = 32 << 20

// ListAvailableProperties returns listings open for booking, straight from
// the backend with no per-tenant annotations.
func ListAvailableProperties(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := client.ListAvailableProperties(r.Context())
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}
		if properties == nil {
			properties = []rentease.Property{}
		}
		writeJSON(w, properties)
	}
}

// GetProperty returns a single property straight from the backend.
func GetProperty(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID, err := pathID(r, "id")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid property ID")
			return
		}

		property, err := client.GetProperty(r.Context(), propertyID)
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		writeJSON(w, property)
	}
}

// CreateProperty accepts the landlord's multipart submission, validates the
// listing fields, and forwards it to the backend.
func CreateProperty(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok || s.User.Role != rentease.RoleLandlord {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Only landlords can create listings")
			return
		}

		draft, images, ok := parsePropertyUpload(w, r)
		if !ok {
			return
		}

		created, err := client.CreateProperty(r.Context(), draft, images, s.User.ID)
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(created)
	}
}

// UpdateProperty forwards a listing edit with the same multipart shape as
// CreateProperty.
func UpdateProperty(client *rentease.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok || s.User.Role != rentease.RoleLandlord {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Only landlords can edit listings")
			return
		}

		propertyID, err := pathID(r, "id")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid property ID")
			return
		}

		draft, images, ok := parsePropertyUpload(w, r)
		if !ok {
			return
		}

		updated, err := client.UpdateProperty(r.Context(), propertyID, draft, images, s.User.ID)
		if err != nil {
			middleware.WriteDomainError(w, err)
			return
		}

		writeJSON(w, updated)
	}
}

// DeleteProperty optimistically removes a listing from the landlord's view.
func DeleteProperty(registry *view.Registry, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := middleware.SessionFrom(r)
		if !ok || s.User.Role != rentease.RoleLandlord {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrForbidden, "Only landlords can delete listings")
			return
		}

		propertyID, err := pathID(r, "id")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid property ID")
			return
		}

		store := registry.ForUser(s.User)
		if _, fetchedAt, _ := store.Records(); fetchedAt.IsZero() {
			if err := store.Refresh(r.Context()); err != nil {
				middleware.WriteDomainError(w, err)
				return
			}
		}

		if err := store.DeleteListing(r.Context(), propertyID); err != nil {
			if rolledBack(err) && broadcaster != nil {
				broadcaster.MutationRolledBack(s.User.ID, propertyID, "delete_listing", err)
			}
			middleware.WriteDomainError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// parsePropertyUpload reads the multipart property submission: a JSON part
// named "property" holding the listing fields plus optional "images" file
// parts. Writes the error response itself and returns ok=false on failure.
func parsePropertyUpload(w http.ResponseWriter, r *http.Request) (rentease.PropertyDraft, []rentease.ImageFile, bool) {
	var draft rentease.PropertyDraft

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid multipart body")
		return draft, nil, false
	}

	propertyJSON := r.FormValue("property")
	if propertyJSON == "" {
		// Some clients send the JSON as a file part instead of a value.
		file, _, err := r.FormFile("property")
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Missing property part")
			return draft, nil, false
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Unreadable property part")
			return draft, nil, false
		}
		propertyJSON = string(data)
	}

	if err := json.Unmarshal([]byte(propertyJSON), &draft); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid property JSON")
		return draft, nil, false
	}

	form := validate.PropertyForm{
		Title:          draft.Title,
		Description:    draft.Description,
		Address:        draft.Address,
		City:           draft.City,
		Bedrooms:       draft.Bedrooms,
		Bathrooms:      draft.Bathrooms,
		Area:           draft.Area,
		Price:          draft.Price,
		Deposit:        draft.Deposit,
		MinLeaseMonths: draft.MinLeaseMonths,
		MaxOccupants:   draft.MaxOccupants,
	}
	if err := validate.Struct(form); err != nil {
		var fields validate.FieldErrors
		if errors.As(err, &fields) {
			middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation,
				"Listing validation failed", fields)
		} else {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
		}
		return draft, nil, false
	}

	var images []rentease.ImageFile
	for _, header := range r.MultipartForm.File["images"] {
		file, err := header.Open()
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Unreadable image part")
			return draft, nil, false
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Unreadable image part")
			return draft, nil, false
		}
		images = append(images, rentease.ImageFile{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	return draft, images, true
}
