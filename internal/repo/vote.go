package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/threaddate/backend/internal/domain"
)

// VoteRepo is the vote ledger: the durable record of who voted what on which
// identifier, enforcing one vote per (user, identifier) pair via the DB
// unique constraint on (tag_id, user_id).
//
// Cast and Remove return the net score delta the operation caused so the
// caller can apply it to the identifier's stored score without re-summing
// the ledger. Both must be called inside the vote transaction (see TxRunner),
// while holding the identifier's row lock, so the ledger write and the score
// update commit or roll back as a unit and deltas are computed against the
// committed ledger.
type VoteRepo interface {
	// Cast records a vote. Semantics by prior state:
	//   no prior vote            → insert, delta = value
	//   prior vote, same value   → no-op, delta = 0
	//   prior vote, other value  → update in place, delta = value - prior (±2)
	Cast(ctx context.Context, tagID int64, userID uuid.UUID, value domain.VoteValue) (int, error)

	// Remove deletes the voter's vote on the identifier if one exists.
	// Delta is the negation of the removed value, or 0 when nothing existed.
	Remove(ctx context.Context, tagID int64, userID uuid.UUID) (int, error)

	// ScoreOf returns the literal sum of all current vote rows for the
	// identifier. Reconciliation and audit path, not the hot path.
	ScoreOf(ctx context.Context, tagID int64) (int, error)

	// GetByVoter returns the voter's current vote on the identifier.
	// Returns domain.ErrNotFound when the voter has no vote.
	GetByVoter(ctx context.Context, tagID int64, userID uuid.UUID) (domain.Vote, error)
}

// pgVoteRepo is the Postgres implementation of VoteRepo.
type pgVoteRepo struct {
	db db
}

// NewVoteRepo constructs a VoteRepo backed by the provided db connection.
func NewVoteRepo(db db) VoteRepo {
	return &pgVoteRepo{db: db}
}

// Cast reads the voter's existing vote, then inserts, updates, or no-ops.
// Callers must hold the identifier's row lock (IdentifierRepo.GetForUpdate)
// when calling: under READ COMMITTED two unserialized casts by the same voter
// could both read "no existing vote" and both report a full delta for the one
// row the unique constraint lets survive. The lock makes the second cast wait
// and recompute its delta against the committed ledger.
func (r *pgVoteRepo) Cast(ctx context.Context, tagID int64, userID uuid.UUID, value domain.VoteValue) (int, error) {
	if !value.Valid() {
		return 0, fmt.Errorf("repo.VoteRepo.Cast: %w: %d", domain.ErrInvalidVoteValue, value)
	}

	existing, err := r.GetByVoter(ctx, tagID, userID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		const q = `
			INSERT INTO votes (tag_id, user_id, vote_value)
			VALUES (@tag_id, @user_id, @vote_value)
			ON CONFLICT (tag_id, user_id) DO UPDATE SET vote_value = EXCLUDED.vote_value`

		args := pgx.NamedArgs{"tag_id": tagID, "user_id": userID, "vote_value": value}
		if _, err := r.db.Exec(ctx, q, args); err != nil {
			return 0, fmt.Errorf("repo.VoteRepo.Cast: insert: %w", err)
		}
		return int(value), nil

	case err != nil:
		return 0, fmt.Errorf("repo.VoteRepo.Cast: %w", err)

	case existing.Value == value:
		// Idempotent re-vote: the ledger already says this.
		return 0, nil

	default:
		const q = `
			UPDATE votes
			SET vote_value = @vote_value
			WHERE tag_id = @tag_id AND user_id = @user_id`

		args := pgx.NamedArgs{"tag_id": tagID, "user_id": userID, "vote_value": value}
		if _, err := r.db.Exec(ctx, q, args); err != nil {
			return 0, fmt.Errorf("repo.VoteRepo.Cast: update: %w", err)
		}
		return int(value) - int(existing.Value), nil
	}
}

// Remove deletes the voter's vote and returns the resulting delta.
// A missing vote is not an error — the delta is simply 0.
func (r *pgVoteRepo) Remove(ctx context.Context, tagID int64, userID uuid.UUID) (int, error) {
	const q = `
		DELETE FROM votes
		WHERE tag_id = @tag_id AND user_id = @user_id
		RETURNING vote_value`

	var removed int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"tag_id": tagID, "user_id": userID}).Scan(&removed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("repo.VoteRepo.Remove: %w", err)
	}
	return -removed, nil
}

// ScoreOf sums the identifier's current vote rows.
func (r *pgVoteRepo) ScoreOf(ctx context.Context, tagID int64) (int, error) {
	const q = `SELECT COALESCE(SUM(vote_value), 0) FROM votes WHERE tag_id = @tag_id`

	var score int
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"tag_id": tagID}).Scan(&score); err != nil {
		return 0, fmt.Errorf("repo.VoteRepo.ScoreOf: %w", err)
	}
	return score, nil
}

// GetByVoter returns the voter's current vote on the identifier.
func (r *pgVoteRepo) GetByVoter(ctx context.Context, tagID int64, userID uuid.UUID) (domain.Vote, error) {
	const q = `
		SELECT id, tag_id, user_id, vote_value, created_at
		FROM votes
		WHERE tag_id = @tag_id AND user_id = @user_id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"tag_id": tagID, "user_id": userID})
	vote, err := scanVote(row)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Vote{}, domain.ErrNotFound
		}
		return domain.Vote{}, fmt.Errorf("repo.VoteRepo.GetByVoter: %w", err)
	}
	return vote, nil
}

// scanVote maps a single database row into a domain.Vote.
func scanVote(s scanner) (domain.Vote, error) {
	var (
		v      domain.Vote
		userID pgtype.UUID
		value  int16
	)
	err := s.Scan(&v.ID, &v.TagID, &userID, &value, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Vote{}, domain.ErrNotFound
		}
		return domain.Vote{}, err
	}
	v.UserID = uuid.UUID(userID.Bytes)
	v.Value = domain.VoteValue(value)
	return v, nil
}
