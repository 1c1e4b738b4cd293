package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/threaddate/backend/internal/domain"
	"github.com/threaddate/backend/internal/repo"
)

// IdentifierMetrics is the subset of application metrics the identifier
// service records.
type IdentifierMetrics interface {
	RecordIdentifierSubmitted()
}

// IdentifierService implements business logic for identifier submission and
// browsing. It holds the brand repo because submitting an identifier requires
// verifying the referenced brand exists, and listings filter by brand slug.
type IdentifierService struct {
	identifiers repo.IdentifierRepo
	votes       repo.VoteRepo
	brands      repo.BrandRepo
	metrics     IdentifierMetrics
}

// NewIdentifierService constructs an IdentifierService backed by the provided repos.
func NewIdentifierService(identifiers repo.IdentifierRepo, votes repo.VoteRepo, brands repo.BrandRepo, m IdentifierMetrics) *IdentifierService {
	return &IdentifierService{identifiers: identifiers, votes: votes, brands: brands, metrics: m}
}

// Submit validates and persists a new identifier. The record is created in
// pending status with score 0; SubmittedBy must be the authenticated caller.
// Returns domain.ErrUnauthenticated when no caller identity is present,
// domain.ErrNotFound when the referenced brand does not exist, and
// domain.ErrValidation for invalid input.
func (s *IdentifierService) Submit(ctx context.Context, ident domain.Identifier) (domain.Identifier, error) {
	if ident.SubmittedBy == uuid.Nil {
		return domain.Identifier{}, fmt.Errorf("service.IdentifierService.Submit: %w", domain.ErrUnauthenticated)
	}
	if err := validateIdentifier(ident); err != nil {
		return domain.Identifier{}, err
	}
	if _, err := s.brands.GetByID(ctx, ident.BrandID); err != nil {
		return domain.Identifier{}, fmt.Errorf("service.IdentifierService.Submit: %w", err)
	}

	result, err := s.identifiers.Create(ctx, ident)
	if err != nil {
		return domain.Identifier{}, fmt.Errorf("service.IdentifierService.Submit: %w", err)
	}
	s.metrics.RecordIdentifierSubmitted()
	return result, nil
}

// GetByID returns a single identifier plus the caller's current vote on it.
// The vote is nil when voterID is uuid.Nil (anonymous caller) or when the
// caller has not voted.
func (s *IdentifierService) GetByID(ctx context.Context, id int64, voterID uuid.UUID) (domain.Identifier, *domain.VoteValue, error) {
	ident, err := s.identifiers.GetByID(ctx, id)
	if err != nil {
		return domain.Identifier{}, nil, fmt.Errorf("service.IdentifierService.GetByID: %w", err)
	}

	if voterID == uuid.Nil {
		return ident, nil, nil
	}
	vote, err := s.votes.GetByVoter(ctx, id, voterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ident, nil, nil
		}
		return domain.Identifier{}, nil, fmt.Errorf("service.IdentifierService.GetByID: %w", err)
	}
	return ident, &vote.Value, nil
}

// List returns one page of identifiers matching the filter and the total
// match count. Non-empty filter enums are validated so typos surface as 422
// instead of silently empty listings.
// Always returns a non-nil slice so callers can safely range over it.
func (s *IdentifierService) List(ctx context.Context, f domain.IdentifierFilter, p domain.PaginationParams) ([]domain.Identifier, int64, error) {
	if f.Category != "" && !f.Category.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown category %q", domain.ErrValidation, f.Category)
	}
	if f.Era != "" && !f.Era.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown era %q", domain.ErrValidation, f.Era)
	}
	if f.Status != "" && !f.Status.Valid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, f.Status)
	}

	idents, total, err := s.identifiers.List(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.IdentifierService.List: %w", err)
	}
	if idents == nil {
		idents = []domain.Identifier{}
	}
	return idents, total, nil
}

// validateIdentifier enforces submission rules:
//   - Category and Era must come from the closed enumerations.
//   - ImageURL must be a non-empty absolute http(s) URL.
//   - YearStart must not exceed YearEnd when both are present.
func validateIdentifier(ident domain.Identifier) error {
	if !ident.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", domain.ErrValidation, ident.Category)
	}
	if !ident.Era.Valid() {
		return fmt.Errorf("%w: unknown era %q", domain.ErrValidation, ident.Era)
	}
	if strings.TrimSpace(ident.ImageURL) == "" {
		return fmt.Errorf("%w: image_url is required", domain.ErrValidation)
	}
	u, err := url.Parse(ident.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: image_url must be an absolute http(s) URL", domain.ErrValidation)
	}
	if ident.YearStart != nil && ident.YearEnd != nil && *ident.YearStart > *ident.YearEnd {
		return fmt.Errorf("%w: year_start must not be after year_end", domain.ErrValidation)
	}
	return nil
}
