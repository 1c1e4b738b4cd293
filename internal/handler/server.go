// Package handler implements the HTTP handlers for the ThreadDate API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (health.go, vote.go, identifier.go, brand.go) but all share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/threaddate/backend/internal/domain"
	"github.com/threaddate/backend/internal/service"
)

// VoteServicer defines the business operations the vote handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type VoteServicer interface {
	Cast(ctx context.Context, tagID int64, voterID uuid.UUID, value domain.VoteValue) (service.VoteResult, error)
	Remove(ctx context.Context, tagID int64, voterID uuid.UUID) (service.VoteResult, error)
	Reconcile(ctx context.Context, tagID int64) (service.VoteResult, error)
}

// IdentifierServicer defines the business operations the identifier handlers depend on.
type IdentifierServicer interface {
	Submit(ctx context.Context, ident domain.Identifier) (domain.Identifier, error)
	GetByID(ctx context.Context, id int64, voterID uuid.UUID) (domain.Identifier, *domain.VoteValue, error)
	List(ctx context.Context, f domain.IdentifierFilter, p domain.PaginationParams) ([]domain.Identifier, int64, error)
}

// BrandServicer defines the business operations the brand handlers depend on.
type BrandServicer interface {
	List(ctx context.Context) ([]domain.Brand, error)
	GetBySlug(ctx context.Context, slug string) (domain.Brand, error)
}

// Server holds the dependencies for all API endpoints.
// Methods are in resource-specific files but all operate on this struct.
type Server struct {
	votes       VoteServicer
	identifiers IdentifierServicer
	brands      BrandServicer
	log         *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(votes VoteServicer, identifiers IdentifierServicer, brands BrandServicer, log *slog.Logger) *Server {
	return &Server{votes: votes, identifiers: identifiers, brands: brands, log: log}
}
