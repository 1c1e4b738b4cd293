package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/threaddate/backend/internal/domain"
)

// BrandRepo defines the persistence operations for brands.
// The verification core only reads brands — creation happens through seeding
// outside the request path — but Upsert is exposed for seed tooling and tests.
type BrandRepo interface {
	// Upsert inserts a brand by slug, or returns the existing brand if the
	// slug already exists. The name of the first creator is preserved.
	Upsert(ctx context.Context, name, slug string, foundedYear *int) (domain.Brand, error)

	// GetByID retrieves a brand by primary key.
	// Returns domain.ErrNotFound if no brand with that ID exists.
	GetByID(ctx context.Context, id int64) (domain.Brand, error)

	// GetBySlug retrieves a brand by its unique slug.
	// Returns domain.ErrNotFound if no brand with that slug exists.
	GetBySlug(ctx context.Context, slug string) (domain.Brand, error)

	// List returns all brands ordered by slug.
	List(ctx context.Context) ([]domain.Brand, error)
}

// pgBrandRepo is the Postgres implementation of BrandRepo.
type pgBrandRepo struct {
	db db
}

// NewBrandRepo constructs a BrandRepo backed by the provided db connection.
func NewBrandRepo(db db) BrandRepo {
	return &pgBrandRepo{db: db}
}

// Upsert inserts a brand or returns the existing row on slug conflict.
// The DO UPDATE SET trick forces the RETURNING clause to fire even when
// the conflict handler skips the insert — without it, RETURNING returns
// nothing on DO NOTHING conflicts.
func (r *pgBrandRepo) Upsert(ctx context.Context, name, slug string, foundedYear *int) (domain.Brand, error) {
	const q = `
		INSERT INTO brands (name, slug, founded_year)
		VALUES (@name, @slug, @founded_year)
		ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug
		RETURNING id, name, slug, founded_year, created_at`

	args := pgx.NamedArgs{"name": name, "slug": slug, "founded_year": foundedYear}
	brand, err := scanBrand(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Brand{}, fmt.Errorf("repo.BrandRepo.Upsert: %w", err)
	}
	return brand, nil
}

// GetByID retrieves a brand by primary key.
func (r *pgBrandRepo) GetByID(ctx context.Context, id int64) (domain.Brand, error) {
	const q = `SELECT id, name, slug, founded_year, created_at FROM brands WHERE id = @id`

	brand, err := scanBrand(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Brand{}, fmt.Errorf("repo.BrandRepo.GetByID: %w", err)
	}
	return brand, nil
}

// GetBySlug retrieves a brand by its unique slug.
func (r *pgBrandRepo) GetBySlug(ctx context.Context, slug string) (domain.Brand, error) {
	const q = `SELECT id, name, slug, founded_year, created_at FROM brands WHERE slug = @slug`

	brand, err := scanBrand(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": slug}))
	if err != nil {
		return domain.Brand{}, fmt.Errorf("repo.BrandRepo.GetBySlug: %w", err)
	}
	return brand, nil
}

// List returns all brands ordered by slug.
func (r *pgBrandRepo) List(ctx context.Context) ([]domain.Brand, error) {
	const q = `SELECT id, name, slug, founded_year, created_at FROM brands ORDER BY slug`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.BrandRepo.List: %w", err)
	}
	defer rows.Close()

	brands := []domain.Brand{}
	for rows.Next() {
		brand, err := scanBrand(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.BrandRepo.List: scan: %w", err)
		}
		brands = append(brands, brand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.BrandRepo.List: rows: %w", err)
	}
	return brands, nil
}

// scanBrand maps a single database row into a domain.Brand.
func scanBrand(s scanner) (domain.Brand, error) {
	var (
		b       domain.Brand
		founded pgtype.Int4
	)
	err := s.Scan(&b.ID, &b.Name, &b.Slug, &founded, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Brand{}, domain.ErrNotFound
		}
		return domain.Brand{}, err
	}
	if founded.Valid {
		fy := int(founded.Int32)
		b.FoundedYear = &fy
	}
	return b, nil
}
