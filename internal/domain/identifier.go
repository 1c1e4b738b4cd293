// Package domain contains the core data types for the ThreadDate API.
// This package has zero external dependencies beyond uuid and is imported by
// every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the verification state of an identifier, derived from its score.
// It is never set directly by users — only the status transition rule writes it.
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the three known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusVerified, StatusRejected:
		return true
	}
	return false
}

// Category classifies the physical marker an identifier documents.
type Category string

const (
	CategoryNeckTag   Category = "neck_tag"
	CategoryCareTag   Category = "care_tag"
	CategoryButton    Category = "button_snap"
	CategoryZipper    Category = "zipper"
	CategoryTab       Category = "tab"
	CategoryStitching Category = "stitching"
	CategoryPrint     Category = "print_graphic"
	CategoryHardware  Category = "hardware"
	CategoryOther     Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{
	CategoryNeckTag,
	CategoryCareTag,
	CategoryButton,
	CategoryZipper,
	CategoryTab,
	CategoryStitching,
	CategoryPrint,
	CategoryHardware,
	CategoryOther,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Era is a decade bucket an identifier is dated to, e.g. "1970s".
type Era string

// Eras lists every valid decade bucket, oldest first.
var Eras = []Era{
	"1900s", "1910s", "1920s", "1930s", "1940s", "1950s", "1960s",
	"1970s", "1980s", "1990s", "2000s", "2010s", "2020s",
}

// Valid reports whether e is one of the known decade buckets.
func (e Era) Valid() bool {
	for _, known := range Eras {
		if e == known {
			return true
		}
	}
	return false
}

// Identifier is a single submitted photograph+metadata record documenting one
// vintage-clothing marker (neck tag, button, care tag, ...).
//
// Score is derived state: it must always equal the sum of the identifier's
// current vote rows, and Status must always be consistent with Score under
// the verification thresholds at the moment of last recomputation.
type Identifier struct {
	ID          int64     `json:"id"`
	BrandID     int64     `json:"brand_id"`
	Category    Category  `json:"category"`
	Era         Era       `json:"era"`
	YearStart   *int      `json:"year_start,omitempty"` // nil when unknown
	YearEnd     *int      `json:"year_end,omitempty"`
	ImageURL    string    `json:"image_url"`
	Description string    `json:"description,omitempty"`
	Score       int       `json:"score"`
	Status      Status    `json:"status"`
	SubmittedBy uuid.UUID `json:"submitted_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// IdentifierFilter narrows identifier listings. Zero values mean "no filter".
type IdentifierFilter struct {
	BrandSlug string
	Category  Category
	Era       Era
	Status    Status
}
