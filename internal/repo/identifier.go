// Package repo contains all database access logic for the ThreadDate API.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/threaddate/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. It also lets the vote
// transaction runner build repos over a single pgx.Tx.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// IdentifierRepo defines the persistence operations for identifiers (the
// `tags` table). The service layer depends on this interface, not the
// concrete Postgres implementation, so it can be unit-tested with a mock.
type IdentifierRepo interface {
	// Create inserts a new identifier and returns the persisted record with
	// DB-generated id, score 0, pending status, and created_at populated.
	Create(ctx context.Context, ident domain.Identifier) (domain.Identifier, error)

	// GetByID retrieves a single identifier by primary key.
	// Returns domain.ErrNotFound if no identifier with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Identifier, error)

	// GetForUpdate retrieves an identifier and row-locks it until the
	// surrounding transaction ends. Vote operations take this lock first so
	// concurrent casts and removals on the same identifier serialize and
	// every delta is computed against the committed ledger.
	GetForUpdate(ctx context.Context, id int64) (domain.Identifier, error)

	// List returns one page of identifiers matching the filter, newest first,
	// plus the total match count for pagination metadata.
	List(ctx context.Context, f domain.IdentifierFilter, p domain.PaginationParams) ([]domain.Identifier, int64, error)

	// ApplyScoreDelta atomically adds delta to the stored verification score
	// and returns the new score. The increment happens inside Postgres, never
	// as a read-modify-write in Go, so concurrent callers cannot lose updates.
	// Returns domain.ErrNotFound if the identifier does not exist.
	ApplyScoreDelta(ctx context.Context, id int64, delta int) (int, error)

	// SetStatus persists status only when it differs from the stored value.
	// Returns true when a transition was written, false when the status was
	// already current.
	SetStatus(ctx context.Context, id int64, status domain.Status) (bool, error)

	// RecomputeScore overwrites the stored score with the literal sum of the
	// identifier's vote rows and returns it. This is the repair path — the
	// hot path applies deltas via ApplyScoreDelta.
	RecomputeScore(ctx context.Context, id int64) (int, error)
}

// pgIdentifierRepo is the Postgres implementation of IdentifierRepo.
type pgIdentifierRepo struct {
	db db
}

// NewIdentifierRepo constructs an IdentifierRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewIdentifierRepo(db db) IdentifierRepo {
	return &pgIdentifierRepo{db: db}
}

const identifierColumns = `id, brand_id, category, era, year_start, year_end,
	image_url, description, verification_score, status, submitted_by, created_at`

// Create inserts a new identifier row and returns the full persisted record.
// Score and status come back from the DB defaults (0, pending).
func (r *pgIdentifierRepo) Create(ctx context.Context, ident domain.Identifier) (domain.Identifier, error) {
	const q = `
		INSERT INTO tags (brand_id, category, era, year_start, year_end, image_url, description, submitted_by)
		VALUES (@brand_id, @category, @era, @year_start, @year_end, @image_url, @description, @submitted_by)
		RETURNING ` + identifierColumns

	args := pgx.NamedArgs{
		"brand_id":     ident.BrandID,
		"category":     ident.Category,
		"era":          ident.Era,
		"year_start":   ident.YearStart, // nil becomes NULL
		"year_end":     ident.YearEnd,
		"image_url":    ident.ImageURL,
		"description":  ident.Description,
		"submitted_by": ident.SubmittedBy,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanIdentifier(row)
	if err != nil {
		return domain.Identifier{}, fmt.Errorf("repo.IdentifierRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves an identifier by primary key.
func (r *pgIdentifierRepo) GetByID(ctx context.Context, id int64) (domain.Identifier, error) {
	const q = `SELECT ` + identifierColumns + ` FROM tags WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanIdentifier(row)
	if err != nil {
		return domain.Identifier{}, fmt.Errorf("repo.IdentifierRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetForUpdate is GetByID plus a row lock held for the rest of the transaction.
func (r *pgIdentifierRepo) GetForUpdate(ctx context.Context, id int64) (domain.Identifier, error) {
	const q = `SELECT ` + identifierColumns + ` FROM tags WHERE id = @id FOR UPDATE`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanIdentifier(row)
	if err != nil {
		return domain.Identifier{}, fmt.Errorf("repo.IdentifierRepo.GetForUpdate: %w", err)
	}
	return result, nil
}

// List returns one page of identifiers matching the filter, newest first.
// Empty filter fields are no-ops, expressed in SQL so a single statement
// covers every filter combination.
func (r *pgIdentifierRepo) List(ctx context.Context, f domain.IdentifierFilter, p domain.PaginationParams) ([]domain.Identifier, int64, error) {
	const where = `
		FROM tags t
		JOIN brands b ON b.id = t.brand_id
		WHERE (@brand_slug = '' OR b.slug = @brand_slug)
		  AND (@category = '' OR t.category = @category)
		  AND (@era = '' OR t.era = @era)
		  AND (@status = '' OR t.status = @status)`

	args := pgx.NamedArgs{
		"brand_slug": f.BrandSlug,
		"category":   string(f.Category),
		"era":        string(f.Era),
		"status":     string(f.Status),
		"limit":      p.Limit,
		"offset":     p.Offset(),
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*)`+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.IdentifierRepo.List: count: %w", err)
	}

	q := `
		SELECT t.id, t.brand_id, t.category, t.era, t.year_start, t.year_end,
		       t.image_url, t.description, t.verification_score, t.status, t.submitted_by, t.created_at` +
		where + `
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.IdentifierRepo.List: %w", err)
	}
	defer rows.Close()

	idents := []domain.Identifier{}
	for rows.Next() {
		ident, err := scanIdentifier(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.IdentifierRepo.List: scan: %w", err)
		}
		idents = append(idents, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.IdentifierRepo.List: rows: %w", err)
	}
	return idents, total, nil
}

// ApplyScoreDelta increments the stored score in a single UPDATE so the
// addition is atomic inside Postgres. Order across concurrent voters does not
// matter — integer addition commutes — but a lost update would.
func (r *pgIdentifierRepo) ApplyScoreDelta(ctx context.Context, id int64, delta int) (int, error) {
	const q = `
		UPDATE tags
		SET verification_score = verification_score + @delta
		WHERE id = @id
		RETURNING verification_score`

	var score int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "delta": delta}).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("repo.IdentifierRepo.ApplyScoreDelta: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("repo.IdentifierRepo.ApplyScoreDelta: %w", err)
	}
	return score, nil
}

// SetStatus writes the status only when it differs from the stored value,
// avoiding redundant row churn on the common no-transition case.
func (r *pgIdentifierRepo) SetStatus(ctx context.Context, id int64, status domain.Status) (bool, error) {
	const q = `
		UPDATE tags
		SET status = @status
		WHERE id = @id AND status <> @status`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "status": status})
	if err != nil {
		return false, fmt.Errorf("repo.IdentifierRepo.SetStatus: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RecomputeScore replaces the stored score with the sum of the identifier's
// current vote rows in one statement.
func (r *pgIdentifierRepo) RecomputeScore(ctx context.Context, id int64) (int, error) {
	const q = `
		UPDATE tags
		SET verification_score = COALESCE((SELECT SUM(vote_value) FROM votes WHERE tag_id = @id), 0)
		WHERE id = @id
		RETURNING verification_score`

	var score int
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(&score)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("repo.IdentifierRepo.RecomputeScore: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("repo.IdentifierRepo.RecomputeScore: %w", err)
	}
	return score, nil
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the scan
// helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// scanIdentifier maps a single database row into a domain.Identifier.
// It handles the UUID and nullable year-range conversions.
func scanIdentifier(s scanner) (domain.Identifier, error) {
	var (
		ident       domain.Identifier
		submittedBy pgtype.UUID
		yearStart   pgtype.Int4
		yearEnd     pgtype.Int4
	)

	err := s.Scan(&ident.ID, &ident.BrandID, &ident.Category, &ident.Era,
		&yearStart, &yearEnd, &ident.ImageURL, &ident.Description,
		&ident.Score, &ident.Status, &submittedBy, &ident.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Identifier{}, domain.ErrNotFound
		}
		return domain.Identifier{}, err
	}

	ident.SubmittedBy = uuid.UUID(submittedBy.Bytes)
	if yearStart.Valid {
		ys := int(yearStart.Int32)
		ident.YearStart = &ys
	}
	if yearEnd.Valid {
		ye := int(yearEnd.Int32)
		ident.YearEnd = &ye
	}

	return ident, nil
}
