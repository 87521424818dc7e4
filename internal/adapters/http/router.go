package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nimbuslabs/profile-gateway/internal/application"
)

type Handler struct {
	service *application.Service
}

func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ok") })
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) { writeMessage(w, http.StatusOK, "ready") })

	authenticated := []guard{handler.authenticated}
	contactVerified := []guard{handler.authenticated, handler.contactVerified}
	withProfile := []guard{handler.authenticated, handler.profileExists}
	fullChain := []guard{handler.authenticated, handler.contactVerified, handler.profileExists}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Get("/verify", handler.guarded(authenticated, handler.verifyIdentity))
			r.Get("/me", handler.guarded(authenticated, handler.getSelf))
		})

		r.Route("/profiles", func(r chi.Router) {
			r.Post("/", handler.guarded(contactVerified, handler.createProfile))
			r.Get("/me", handler.guarded(withProfile, handler.getMyProfile))
			r.Put("/me", handler.guarded(fullChain, handler.updateMyProfile))
			r.Delete("/me", handler.guarded(fullChain, handler.deleteMyProfile))
			r.Get("/{profile_id}", handler.getPublicProfile)
		})
	})
	return r
}
