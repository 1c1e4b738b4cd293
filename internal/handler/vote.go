package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/threaddate/backend/internal/domain"
	"github.com/threaddate/backend/internal/middleware"
)

// castVoteRequest is the body of PUT /api/identifiers/{id}/vote.
type castVoteRequest struct {
	Value domain.VoteValue `json:"value"`
}

// voteResponse is the server truth returned by every vote action, which the
// optimistic UI reconciles against.
type voteResponse struct {
	Score  int               `json:"score"`
	Status domain.Status     `json:"status"`
	Vote   *domain.VoteValue `json:"vote,omitempty"`
}

// CastVote handles PUT /api/identifiers/{id}/vote.
// PUT because casting is idempotent: re-sending the same vote is a no-op and
// sending the opposite vote replaces the prior one.
func (s *Server) CastVote(w http.ResponseWriter, r *http.Request) {
	tagID, ok := identifierID(w, r)
	if !ok {
		return
	}
	voterID, _ := middleware.UserID(r.Context())

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		requestError(w, "request body must be JSON with a \"value\" field")
		return
	}

	result, err := s.votes.Cast(r.Context(), tagID, voterID, req.Value)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{Score: result.Score, Status: result.Status, Vote: result.Vote})
}

// RemoveVote handles DELETE /api/identifiers/{id}/vote.
// Removing a vote that does not exist succeeds with the current score.
func (s *Server) RemoveVote(w http.ResponseWriter, r *http.Request) {
	tagID, ok := identifierID(w, r)
	if !ok {
		return
	}
	voterID, _ := middleware.UserID(r.Context())

	result, err := s.votes.Remove(r.Context(), tagID, voterID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{Score: result.Score, Status: result.Status})
}

// ReconcileIdentifier handles POST /api/identifiers/{id}/reconcile.
// Ops repair endpoint: re-sums the vote ledger and re-evaluates the status.
func (s *Server) ReconcileIdentifier(w http.ResponseWriter, r *http.Request) {
	tagID, ok := identifierID(w, r)
	if !ok {
		return
	}

	result, err := s.votes.Reconcile(r.Context(), tagID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, voteResponse{Score: result.Score, Status: result.Status})
}

// identifierID parses the {id} path parameter, writing a 400 on failure.
func identifierID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		requestError(w, "identifier id must be a positive integer")
		return 0, false
	}
	return id, true
}

// voterOrNil returns the authenticated caller's ID, or uuid.Nil for anonymous
// requests. Read endpoints use it to include the viewer's own vote when known.
func voterOrNil(r *http.Request) uuid.UUID {
	id, ok := middleware.UserID(r.Context())
	if !ok {
		return uuid.Nil
	}
	return id
}
