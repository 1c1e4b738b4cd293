// Package service contains the business logic for the ThreadDate API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here — services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/threaddate/backend/internal/domain"
	"github.com/threaddate/backend/internal/repo"
	"github.com/threaddate/backend/internal/verify"
)

// VoteMetrics is the subset of application metrics the vote service records.
// Defined here (in the consumer package) so unit tests can pass a stub
// instead of touching the global Prometheus registry.
type VoteMetrics interface {
	RecordVoteCast(value domain.VoteValue)
	RecordVoteRemoved()
	RecordStatusTransition(status domain.Status)
}

// VoteResult is the server truth a vote action returns, which the optimistic
// UI reconciles its local state against.
type VoteResult struct {
	// Score is the identifier's verification score after the operation.
	Score int
	// Status is the identifier's status after re-evaluation.
	Status domain.Status
	// Delta is the net score change this operation caused (0, ±1, ±2).
	Delta int
	// Vote is the caller's vote after the operation; nil after a removal.
	Vote *domain.VoteValue
}

// VoteService implements the vote action: ledger mutation, score delta, and
// status re-evaluation as one transaction. A vote that is recorded but never
// reflected in the identifier's score or status is a correctness bug, so the
// three steps share a single commit.
type VoteService struct {
	tx         repo.TxRunner
	thresholds verify.Thresholds
	metrics    VoteMetrics
	log        *slog.Logger
}

// NewVoteService constructs a VoteService.
func NewVoteService(tx repo.TxRunner, thresholds verify.Thresholds, m VoteMetrics, log *slog.Logger) *VoteService {
	return &VoteService{tx: tx, thresholds: thresholds, metrics: m, log: log}
}

// Cast records voterID's vote of value on the identifier and returns the
// resulting score and status.
// Returns domain.ErrUnauthenticated when voterID is absent,
// domain.ErrInvalidVoteValue for values other than ±1,
// domain.ErrNotFound when the identifier does not exist, and
// domain.ErrValidation when the submitter votes on their own identifier.
func (s *VoteService) Cast(ctx context.Context, tagID int64, voterID uuid.UUID, value domain.VoteValue) (VoteResult, error) {
	if voterID == uuid.Nil {
		return VoteResult{}, fmt.Errorf("service.VoteService.Cast: %w", domain.ErrUnauthenticated)
	}
	if !value.Valid() {
		return VoteResult{}, fmt.Errorf("service.VoteService.Cast: %w: %d", domain.ErrInvalidVoteValue, value)
	}

	var (
		res          VoteResult
		transitioned bool
	)
	err := s.tx.InTx(ctx, func(st repo.VoteStores) error {
		// Row-lock the identifier first: concurrent vote operations on it
		// serialize here, so the ledger delta below reflects committed state.
		ident, err := st.Identifiers.GetForUpdate(ctx, tagID)
		if err != nil {
			return fmt.Errorf("service.VoteService.Cast: %w", err)
		}
		if ident.SubmittedBy == voterID {
			return fmt.Errorf("service.VoteService.Cast: %w: cannot vote on your own submission", domain.ErrValidation)
		}

		delta, err := st.Votes.Cast(ctx, tagID, voterID, value)
		if err != nil {
			return fmt.Errorf("service.VoteService.Cast: %w", err)
		}

		score := ident.Score
		if delta != 0 {
			score, err = st.Identifiers.ApplyScoreDelta(ctx, tagID, delta)
			if err != nil {
				return fmt.Errorf("service.VoteService.Cast: %w", err)
			}
		}

		status := s.thresholds.Evaluate(score)
		transitioned, err = st.Identifiers.SetStatus(ctx, tagID, status)
		if err != nil {
			return fmt.Errorf("service.VoteService.Cast: %w", err)
		}

		v := value
		res = VoteResult{Score: score, Status: status, Delta: delta, Vote: &v}
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}

	if res.Delta != 0 {
		s.metrics.RecordVoteCast(value)
	}
	if transitioned {
		s.metrics.RecordStatusTransition(res.Status)
		s.log.InfoContext(ctx, "identifier status transition",
			"tag_id", tagID, "score", res.Score, "status", res.Status)
	}
	return res, nil
}

// Remove deletes voterID's vote on the identifier, if any, and returns the
// resulting score and status. Removing a nonexistent vote is a no-op with
// delta 0, not an error.
func (s *VoteService) Remove(ctx context.Context, tagID int64, voterID uuid.UUID) (VoteResult, error) {
	if voterID == uuid.Nil {
		return VoteResult{}, fmt.Errorf("service.VoteService.Remove: %w", domain.ErrUnauthenticated)
	}

	var (
		res          VoteResult
		transitioned bool
	)
	err := s.tx.InTx(ctx, func(st repo.VoteStores) error {
		ident, err := st.Identifiers.GetForUpdate(ctx, tagID)
		if err != nil {
			return fmt.Errorf("service.VoteService.Remove: %w", err)
		}

		delta, err := st.Votes.Remove(ctx, tagID, voterID)
		if err != nil {
			return fmt.Errorf("service.VoteService.Remove: %w", err)
		}

		score := ident.Score
		if delta != 0 {
			score, err = st.Identifiers.ApplyScoreDelta(ctx, tagID, delta)
			if err != nil {
				return fmt.Errorf("service.VoteService.Remove: %w", err)
			}
		}

		status := s.thresholds.Evaluate(score)
		transitioned, err = st.Identifiers.SetStatus(ctx, tagID, status)
		if err != nil {
			return fmt.Errorf("service.VoteService.Remove: %w", err)
		}

		res = VoteResult{Score: score, Status: status, Delta: delta}
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}

	if res.Delta != 0 {
		s.metrics.RecordVoteRemoved()
	}
	if transitioned {
		s.metrics.RecordStatusTransition(res.Status)
		s.log.InfoContext(ctx, "identifier status transition",
			"tag_id", tagID, "score", res.Score, "status", res.Status)
	}
	return res, nil
}

// Reconcile is the repair path: it overwrites the stored score with the
// literal sum of the identifier's vote rows and re-evaluates the status.
// The steady state never needs this — deltas keep score and ledger in sync —
// but it makes drift diagnosable and fixable in one call.
func (s *VoteService) Reconcile(ctx context.Context, tagID int64) (VoteResult, error) {
	var (
		res          VoteResult
		transitioned bool
	)
	err := s.tx.InTx(ctx, func(st repo.VoteStores) error {
		if _, err := st.Identifiers.GetForUpdate(ctx, tagID); err != nil {
			return fmt.Errorf("service.VoteService.Reconcile: %w", err)
		}

		score, err := st.Identifiers.RecomputeScore(ctx, tagID)
		if err != nil {
			return fmt.Errorf("service.VoteService.Reconcile: %w", err)
		}

		status := s.thresholds.Evaluate(score)
		transitioned, err = st.Identifiers.SetStatus(ctx, tagID, status)
		if err != nil {
			return fmt.Errorf("service.VoteService.Reconcile: %w", err)
		}

		res = VoteResult{Score: score, Status: status}
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}

	if transitioned {
		s.metrics.RecordStatusTransition(res.Status)
		s.log.InfoContext(ctx, "identifier status transition",
			"tag_id", tagID, "score", res.Score, "status", res.Status, "via", "reconcile")
	}
	return res, nil
}
