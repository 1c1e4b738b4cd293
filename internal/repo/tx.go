package repo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// VoteStores bundles the repos a vote transaction operates on, all backed by
// the same pgx.Tx so ledger write, score delta, and status update commit or
// roll back as one unit. Partial application — a vote recorded but never
// reflected in the score or status — must be impossible.
type VoteStores struct {
	Votes       VoteRepo
	Identifiers IdentifierRepo
}

// TxRunner provides the transactional boundary for vote mutations.
// The service layer depends on this interface; tests implement it with
// in-memory stores and a fn that just runs.
type TxRunner interface {
	// InTx begins a transaction, runs fn with stores bound to it, and commits
	// if fn returns nil. Any error from fn or from commit rolls everything back.
	InTx(ctx context.Context, fn func(s VoteStores) error) error
}

// pgTxRunner is the Postgres implementation of TxRunner.
type pgTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner constructs a TxRunner over the given connection pool.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgTxRunner{pool: pool}
}

// InTx runs fn inside a single Postgres transaction.
func (r *pgTxRunner) InTx(ctx context.Context, fn func(s VoteStores) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.TxRunner.InTx: begin: %w", err)
	}
	// Rollback after commit is a harmless no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	stores := VoteStores{
		Votes:       NewVoteRepo(tx),
		Identifiers: NewIdentifierRepo(tx),
	}
	if err := fn(stores); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TxRunner.InTx: commit: %w", err)
	}
	return nil
}
