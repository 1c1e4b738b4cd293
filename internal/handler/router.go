package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/threaddate/backend/internal/middleware"
	"github.com/threaddate/backend/spec"
)

// Routes builds the API routing table.
//
// Authentication is optional on read endpoints (anonymous browsing is the
// common case) and required on every mutation. The vote rate limiter wraps
// only the vote endpoints; pass a pass-through when Redis is not configured.
func Routes(s *Server, verifier *middleware.TokenVerifier, voteLimiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(spec.OpenAPI)
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Authenticate(verifier))

		api.Get("/brands", s.ListBrands)
		api.Get("/brands/{slug}", s.GetBrand)
		api.Get("/identifiers", s.ListIdentifiers)
		api.Get("/identifiers/{id}", s.GetIdentifier)

		api.Group(func(auth chi.Router) {
			auth.Use(middleware.RequireUser)

			auth.Post("/identifiers", s.SubmitIdentifier)
			auth.Post("/identifiers/{id}/reconcile", s.ReconcileIdentifier)

			auth.Group(func(vote chi.Router) {
				vote.Use(voteLimiter)
				vote.Put("/identifiers/{id}/vote", s.CastVote)
				vote.Delete("/identifiers/{id}/vote", s.RemoveVote)
			})
		})
	})

	return r
}
