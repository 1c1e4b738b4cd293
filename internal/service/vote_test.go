package service_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/threaddate/backend/internal/domain"
	"github.com/threaddate/backend/internal/repo"
	"github.com/threaddate/backend/internal/service"
	"github.com/threaddate/backend/internal/verify"
)

// testThresholds match the production defaults.
var testThresholds = verify.Thresholds{Verified: 5, Rejected: -3}

// ---- mock repos ------------------------------------------------------------

type mockVoteRepo struct {
	cast       func(ctx context.Context, tagID int64, userID uuid.UUID, value domain.VoteValue) (int, error)
	remove     func(ctx context.Context, tagID int64, userID uuid.UUID) (int, error)
	scoreOf    func(ctx context.Context, tagID int64) (int, error)
	getByVoter func(ctx context.Context, tagID int64, userID uuid.UUID) (domain.Vote, error)
}

func (m *mockVoteRepo) Cast(ctx context.Context, tagID int64, userID uuid.UUID, value domain.VoteValue) (int, error) {
	return m.cast(ctx, tagID, userID, value)
}
func (m *mockVoteRepo) Remove(ctx context.Context, tagID int64, userID uuid.UUID) (int, error) {
	return m.remove(ctx, tagID, userID)
}
func (m *mockVoteRepo) ScoreOf(ctx context.Context, tagID int64) (int, error) {
	return m.scoreOf(ctx, tagID)
}
func (m *mockVoteRepo) GetByVoter(ctx context.Context, tagID int64, userID uuid.UUID) (domain.Vote, error) {
	return m.getByVoter(ctx, tagID, userID)
}

var _ repo.VoteRepo = (*mockVoteRepo)(nil)

type mockIdentifierRepo struct {
	create          func(ctx context.Context, ident domain.Identifier) (domain.Identifier, error)
	getByID         func(ctx context.Context, id int64) (domain.Identifier, error)
	getForUpdate    func(ctx context.Context, id int64) (domain.Identifier, error)
	list            func(ctx context.Context, f domain.IdentifierFilter, p domain.PaginationParams) ([]domain.Identifier, int64, error)
	applyScoreDelta func(ctx context.Context, id int64, delta int) (int, error)
	setStatus       func(ctx context.Context, id int64, status domain.Status) (bool, error)
	recomputeScore  func(ctx context.Context, id int64) (int, error)
}

func (m *mockIdentifierRepo) Create(ctx context.Context, ident domain.Identifier) (domain.Identifier, error) {
	return m.create(ctx, ident)
}
func (m *mockIdentifierRepo) GetByID(ctx context.Context, id int64) (domain.Identifier, error) {
	return m.getByID(ctx, id)
}
func (m *mockIdentifierRepo) GetForUpdate(ctx context.Context, id int64) (domain.Identifier, error) {
	return m.getForUpdate(ctx, id)
}
func (m *mockIdentifierRepo) List(ctx context.Context, f domain.IdentifierFilter, p domain.PaginationParams) ([]domain.Identifier, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockIdentifierRepo) ApplyScoreDelta(ctx context.Context, id int64, delta int) (int, error) {
	return m.applyScoreDelta(ctx, id, delta)
}
func (m *mockIdentifierRepo) SetStatus(ctx context.Context, id int64, status domain.Status) (bool, error) {
	return m.setStatus(ctx, id, status)
}
func (m *mockIdentifierRepo) RecomputeScore(ctx context.Context, id int64) (int, error) {
	return m.recomputeScore(ctx, id)
}

var _ repo.IdentifierRepo = (*mockIdentifierRepo)(nil)

// fakeTxRunner runs the callback immediately against fixed stores — the unit
// tests assert orchestration, not transactionality (tx_test.go covers that).
type fakeTxRunner struct {
	stores repo.VoteStores
}

func (f *fakeTxRunner) InTx(_ context.Context, fn func(s repo.VoteStores) error) error {
	return fn(f.stores)
}

// stubMetrics counts recorder calls.
type stubMetrics struct {
	casts       int
	removals    int
	transitions []domain.Status
}

func (s *stubMetrics) RecordVoteCast(domain.VoteValue) { s.casts++ }
func (s *stubMetrics) RecordVoteRemoved()              { s.removals++ }
func (s *stubMetrics) RecordStatusTransition(st domain.Status) {
	s.transitions = append(s.transitions, st)
}
func (s *stubMetrics) RecordIdentifierSubmitted() {}

// newVoteService wires a VoteService over the given mocks.
func newVoteService(votes repo.VoteRepo, idents repo.IdentifierRepo, m *stubMetrics) *service.VoteService {
	tx := &fakeTxRunner{stores: repo.VoteStores{Votes: votes, Identifiers: idents}}
	return service.NewVoteService(tx, testThresholds, m, slog.Default())
}

// identFixture returns a pending identifier owned by a random submitter.
func identFixture(id int64, score int) domain.Identifier {
	return domain.Identifier{
		ID:          id,
		BrandID:     1,
		Category:    domain.CategoryNeckTag,
		Era:         "1970s",
		Score:       score,
		Status:      domain.StatusPending,
		SubmittedBy: uuid.New(),
	}
}

// ---- Cast ------------------------------------------------------------------

func TestVoteService_Cast_OK(t *testing.T) {
	ident := identFixture(7, 0)
	var appliedDelta int
	var setStatusTo domain.Status

	votes := &mockVoteRepo{
		cast: func(_ context.Context, tagID int64, _ uuid.UUID, value domain.VoteValue) (int, error) {
			assert.EqualValues(t, 7, tagID)
			return int(value), nil
		},
	}
	idents := &mockIdentifierRepo{
		getForUpdate: func(_ context.Context, id int64) (domain.Identifier, error) { return ident, nil },
		applyScoreDelta: func(_ context.Context, _ int64, delta int) (int, error) {
			appliedDelta = delta
			return ident.Score + delta, nil
		},
		setStatus: func(_ context.Context, _ int64, status domain.Status) (bool, error) {
			setStatusTo = status
			return false, nil
		},
	}
	m := &stubMetrics{}

	got, err := newVoteService(votes, idents, m).Cast(context.Background(), 7, uuid.New(), domain.VoteUp)

	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, 1, got.Delta)
	require.NotNil(t, got.Vote)
	assert.Equal(t, domain.VoteUp, *got.Vote)
	assert.Equal(t, 1, appliedDelta)
	assert.Equal(t, domain.StatusPending, setStatusTo)
	assert.Equal(t, 1, m.casts)
	assert.Empty(t, m.transitions, "no transition happened")
}

func TestVoteService_Cast_Unauthenticated(t *testing.T) {
	svc := newVoteService(&mockVoteRepo{}, &mockIdentifierRepo{}, &stubMetrics{})

	_, err := svc.Cast(context.Background(), 7, uuid.Nil, domain.VoteUp)

	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVoteService_Cast_InvalidValue(t *testing.T) {
	svc := newVoteService(&mockVoteRepo{}, &mockIdentifierRepo{}, &stubMetrics{})

	for _, bad := range []domain.VoteValue{0, 2, -2, 100} {
		_, err := svc.Cast(context.Background(), 7, uuid.New(), bad)
		require.ErrorIs(t, err, domain.ErrInvalidVoteValue, "value %d", bad)
	}
}

func TestVoteService_Cast_IdentifierNotFound(t *testing.T) {
	idents := &mockIdentifierRepo{
		getForUpdate: func(_ context.Context, _ int64) (domain.Identifier, error) {
			return domain.Identifier{}, domain.ErrNotFound
		},
	}
	svc := newVoteService(&mockVoteRepo{}, idents, &stubMetrics{})

	_, err := svc.Cast(context.Background(), 404, uuid.New(), domain.VoteUp)

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVoteService_Cast_SelfVoteRejected(t *testing.T) {
	ident := identFixture(7, 0)
	idents := &mockIdentifierRepo{
		getForUpdate: func(_ context.Context, _ int64) (domain.Identifier, error) { return ident, nil },
	}
	svc := newVoteService(&mockVoteRepo{}, idents, &stubMetrics{})

	_, err := svc.Cast(context.Background(), 7, ident.SubmittedBy, domain.VoteUp)

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "own submission")
}

func TestVoteService_Cast_IdempotentSkipsDelta(t *testing.T) {
	ident := identFixture(7, 3)
	deltaApplied := false

	votes := &mockVoteRepo{
		cast: func(_ context.Context, _ int64, _ uuid.UUID, _ domain.VoteValue) (int, error) {
			return 0, nil // ledger says: same vote already recorded
		},
	}
	idents := &mockIdentifierRepo{
		getForUpdate: func(_ context.Context, _ int64) (domain.Identifier, error) { return ident, nil },
		applyScoreDelta: func(_ context.Context, _ int64, _ int) (int, error) {
			deltaApplied = true
			return 0, errors.New("must not be called")
		},
		setStatus: func(_ context.Context, _ int64, _ domain.Status) (bool, error) { return false, nil },
	}

	m := &stubMetrics{}
	got, err := newVoteService(votes, idents, m).Cast(context.Background(), 7, uuid.New(), domain.VoteUp)

	require.NoError(t, err)
	assert.False(t, deltaApplied, "a zero delta must not touch the score")
	assert.Equal(t, 3, got.Score, "score is unchanged on idempotent re-vote")
	assert.Equal(t, 0, got.Delta)
	assert.Zero(t, m.casts, "an idempotent re-vote is not a new cast")
}

func TestVoteService_Cast_TransitionToVerified(t *testing.T) {
	ident := identFixture(7, 4)
	votes := &mockVoteRepo{
		cast: func(_ context.Context, _ int64, _ uuid.UUID, value domain.VoteValue) (int, error) {
			return int(value), nil
		},
	}
	idents := &mockIdentifierRepo{
		getForUpdate:    func(_ context.Context, _ int64) (domain.Identifier, error) { return ident, nil },
		applyScoreDelta: func(_ context.Context, _ int64, delta int) (int, error) { return ident.Score + delta, nil },
		setStatus: func(_ context.Context, _ int64, status domain.Status) (bool, error) {
			return status != domain.StatusPending, nil
		},
	}
	m := &stubMetrics{}

	got, err := newVoteService(votes, idents, m).Cast(context.Background(), 7, uuid.New(), domain.VoteUp)

	require.NoError(t, err)
	assert.Equal(t, 5, got.Score)
	assert.Equal(t, domain.StatusVerified, got.Status)
	assert.Equal(t, []domain.Status{domain.StatusVerified}, m.transitions)
}

func TestVoteService_Cast_StoreFailureReturnsError(t *testing.T) {
	ident := identFixture(7, 0)
	votes := &mockVoteRepo{
		cast: func(_ context.Context, _ int64, _ uuid.UUID, _ domain.VoteValue) (int, error) {
			return 0, errors.New("connection reset")
		},
	}
	idents := &mockIdentifierRepo{
		getForUpdate: func(_ context.Context, _ int64) (domain.Identifier, error) { return ident, nil },
	}
	m := &stubMetrics{}

	_, err := newVoteService(votes, idents, m).Cast(context.Background(), 7, uuid.New(), domain.VoteUp)

	require.Error(t, err)
	assert.Zero(t, m.casts, "failed casts must not be counted")
}

// ---- Remove ----------------------------------------------------------------

func TestVoteService_Remove_OK(t *testing.T) {
	ident := identFixture(7, 5)
	ident.Status = domain.StatusVerified

	votes := &mockVoteRepo{
		remove: func(_ context.Context, _ int64, _ uuid.UUID) (int, error) { return -1, nil },
	}
	idents := &mockIdentifierRepo{
		getForUpdate:    func(_ context.Context, _ int64) (domain.Identifier, error) { return ident, nil },
		applyScoreDelta: func(_ context.Context, _ int64, delta int) (int, error) { return ident.Score + delta, nil },
		setStatus: func(_ context.Context, _ int64, status domain.Status) (bool, error) {
			return status != ident.Status, nil
		},
	}
	m := &stubMetrics{}

	got, err := newVoteService(votes, idents, m).Remove(context.Background(), 7, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 4, got.Score)
	assert.Equal(t, domain.StatusPending, got.Status, "falling below the threshold demotes a verified identifier")
	assert.Nil(t, got.Vote, "after removal the caller has no vote")
	assert.Equal(t, 1, m.removals)
	assert.Equal(t, []domain.Status{domain.StatusPending}, m.transitions)
}

func TestVoteService_Remove_Unauthenticated(t *testing.T) {
	svc := newVoteService(&mockVoteRepo{}, &mockIdentifierRepo{}, &stubMetrics{})

	_, err := svc.Remove(context.Background(), 7, uuid.Nil)

	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVoteService_Remove_NoExistingVote(t *testing.T) {
	ident := identFixture(7, 2)
	votes := &mockVoteRepo{
		remove: func(_ context.Context, _ int64, _ uuid.UUID) (int, error) { return 0, nil },
	}
	idents := &mockIdentifierRepo{
		getForUpdate: func(_ context.Context, _ int64) (domain.Identifier, error) { return ident, nil },
		applyScoreDelta: func(_ context.Context, _ int64, _ int) (int, error) {
			return 0, errors.New("must not be called")
		},
		setStatus: func(_ context.Context, _ int64, _ domain.Status) (bool, error) { return false, nil },
	}
	m := &stubMetrics{}

	got, err := newVoteService(votes, idents, m).Remove(context.Background(), 7, uuid.New())

	require.NoError(t, err)
	assert.Equal(t, 2, got.Score)
	assert.Equal(t, 0, got.Delta)
	assert.Zero(t, m.removals, "a no-op removal is not counted")
}

// ---- Reconcile -------------------------------------------------------------

func TestVoteService_Reconcile(t *testing.T) {
	idents := &mockIdentifierRepo{
		getForUpdate: func(_ context.Context, id int64) (domain.Identifier, error) {
			return identFixture(id, 2), nil
		},
		recomputeScore: func(_ context.Context, id int64) (int, error) {
			assert.EqualValues(t, 7, id)
			return 6, nil
		},
		setStatus: func(_ context.Context, _ int64, status domain.Status) (bool, error) {
			assert.Equal(t, domain.StatusVerified, status)
			return true, nil
		},
	}
	m := &stubMetrics{}

	got, err := newVoteService(&mockVoteRepo{}, idents, m).Reconcile(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, 6, got.Score)
	assert.Equal(t, domain.StatusVerified, got.Status)
	assert.Equal(t, []domain.Status{domain.StatusVerified}, m.transitions)
}

func TestVoteService_Reconcile_NotFound(t *testing.T) {
	idents := &mockIdentifierRepo{
		getForUpdate: func(_ context.Context, _ int64) (domain.Identifier, error) {
			return domain.Identifier{}, domain.ErrNotFound
		},
	}

	_, err := newVoteService(&mockVoteRepo{}, idents, &stubMetrics{}).Reconcile(context.Background(), 404)

	require.ErrorIs(t, err, domain.ErrNotFound)
}
