package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nimbuslabs/profile-gateway/internal/application"
)

func (h *Handler) verifyIdentity(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"id":             identity.Subject,
		"email":          identity.Email,
		"username":       identity.Username,
		"email_verified": identity.EmailVerified,
	})
}

func (h *Handler) getSelf(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	resp, err := h.service.GetSelf(r.Context(), identity)
	if err != nil {
		status, code, msg := mapDomainError(err)
		logOperationError(r.Context(), "get_self", status, code, err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) createProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	var req application.CreateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	resp, err := h.service.CreateProfile(r.Context(), identity, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		status, code, msg := mapDomainError(err)
		logOperationError(r.Context(), "create_profile", status, code, err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusCreated, resp)
}

func (h *Handler) getMyProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "user profile not found")
		return
	}
	writeSuccess(w, http.StatusOK, application.ToProfileView(profile))
}

func (h *Handler) updateMyProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		return
	}
	var req application.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json body")
		return
	}
	resp, err := h.service.UpdateProfile(r.Context(), identity.Subject, req, r.Header.Get("Idempotency-Key"))
	if err != nil {
		status, code, msg := mapDomainError(err)
		logOperationError(r.Context(), "update_profile", status, code, err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}

func (h *Handler) deleteMyProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := profileFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "PROFILE_NOT_FOUND", "user profile not found")
		return
	}
	if err := h.service.DeleteProfile(r.Context(), profile); err != nil {
		status, code, msg := mapDomainError(err)
		logOperationError(r.Context(), "delete_profile", status, code, err)
		writeError(w, status, code, msg)
		return
	}
	writeMessage(w, http.StatusOK, "Profile deleted successfully")
}

func (h *Handler) getPublicProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := uuid.Parse(chi.URLParam(r, "profile_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid profile id")
		return
	}
	resp, err := h.service.GetPublicProfile(r.Context(), profileID)
	if err != nil {
		status, code, msg := mapDomainError(err)
		logOperationError(r.Context(), "get_public_profile", status, code, err)
		writeError(w, status, code, msg)
		return
	}
	writeSuccess(w, http.StatusOK, resp)
}
