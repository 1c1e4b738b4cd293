package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListBrands handles GET /api/brands.
func (s *Server) ListBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := s.brands.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

// GetBrand handles GET /api/brands/{slug}.
func (s *Server) GetBrand(w http.ResponseWriter, r *http.Request) {
	brand, err := s.brands.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, brand)
}
