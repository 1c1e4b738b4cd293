package domain

import "time"

// Brand is a clothing label identifiers are attributed to.
// Brands are seeded and managed outside this service; the verification core
// only reads them and validates references.
type Brand struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	FoundedYear *int      `json:"founded_year,omitempty"` // nil when unknown
	CreatedAt   time.Time `json:"created_at"`
}
