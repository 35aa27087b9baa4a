package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Get("/health", s.handleHealth)

	// OAuth endpoints the platform links accounts through.
	r.Get("/auth/", s.handleAuthorizeForm)
	r.Post("/auth/", s.handleAuthorizeSubmit)
	r.Post("/token/", s.handleToken)

	// Smart-home endpoints.
	r.Route("/v1.0", func(r chi.Router) {
		// Availability probe: the platform checks the root with HEAD.
		r.Head("/", s.handleProbe)
		r.Get("/", s.handleProbe)

		r.Group(func(r chi.Router) {
			r.Use(s.bearerAuthMiddleware)

			r.Post("/user/unlink", s.handleUnlink)
			r.Get("/user/devices", s.handleListDevices)
			r.Post("/user/devices/query", s.handleQueryDevices)
			r.Post("/user/devices/action", s.handleActionDevices)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleProbe answers the platform availability check.
func (s *Server) handleProbe(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
