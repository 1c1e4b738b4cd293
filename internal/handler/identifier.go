package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/threaddate/backend/internal/domain"
	"github.com/threaddate/backend/internal/middleware"
)

// submitIdentifierRequest is the body of POST /api/identifiers.
type submitIdentifierRequest struct {
	BrandID     int64           `json:"brand_id"`
	Category    domain.Category `json:"category"`
	Era         domain.Era      `json:"era"`
	YearStart   *int            `json:"year_start,omitempty"`
	YearEnd     *int            `json:"year_end,omitempty"`
	ImageURL    string          `json:"image_url"`
	Description string          `json:"description,omitempty"`
}

// identifierResponse is an identifier plus the viewer's own vote, when known.
type identifierResponse struct {
	domain.Identifier
	ViewerVote *domain.VoteValue `json:"viewer_vote,omitempty"`
}

// paginationMeta is the pagination block of list responses.
type paginationMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// identifierListResponse is the body of GET /api/identifiers.
type identifierListResponse struct {
	Data       []domain.Identifier `json:"data"`
	Pagination paginationMeta      `json:"pagination"`
}

// SubmitIdentifier handles POST /api/identifiers.
// The submitter is always the authenticated caller; the record starts pending
// with score 0 regardless of what the client sends.
func (s *Server) SubmitIdentifier(w http.ResponseWriter, r *http.Request) {
	var req submitIdentifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "malformed request body")
		return
	}
	voterID, _ := middleware.UserID(r.Context())

	ident, err := s.identifiers.Submit(r.Context(), domain.Identifier{
		BrandID:     req.BrandID,
		Category:    req.Category,
		Era:         req.Era,
		YearStart:   req.YearStart,
		YearEnd:     req.YearEnd,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		SubmittedBy: voterID,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, identifierResponse{Identifier: ident})
}

// GetIdentifier handles GET /api/identifiers/{id}.
// Authenticated callers also get their own current vote on the identifier,
// which the UI needs to render vote-button state.
func (s *Server) GetIdentifier(w http.ResponseWriter, r *http.Request) {
	id, ok := identifierID(w, r)
	if !ok {
		return
	}

	ident, viewerVote, err := s.identifiers.GetByID(r.Context(), id, voterOrNil(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identifierResponse{Identifier: ident, ViewerVote: viewerVote})
}

// ListIdentifiers handles GET /api/identifiers.
// Optional query parameters: brand (slug), category, era, status, page, limit.
func (s *Server) ListIdentifiers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.IdentifierFilter{
		BrandSlug: q.Get("brand"),
		Category:  domain.Category(q.Get("category")),
		Era:       domain.Era(q.Get("era")),
		Status:    domain.Status(q.Get("status")),
	}
	params := domain.NewPaginationParams(queryInt(q.Get("page")), queryInt(q.Get("limit")))

	idents, total, err := s.identifiers.List(r.Context(), filter, params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identifierListResponse{
		Data:       idents,
		Pagination: paginationMeta{Page: params.Page, Limit: params.Limit, Total: total},
	})
}

// queryInt parses an optional numeric query parameter. Unset or unparsable
// values yield nil, which NewPaginationParams turns into its defaults.
func queryInt(s string) *int {
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}
