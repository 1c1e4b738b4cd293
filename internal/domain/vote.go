package domain

import (
	"time"

	"github.com/google/uuid"
)

// VoteValue is a single user's judgment on an identifier: +1 or -1.
type VoteValue int

const (
	VoteUp   VoteValue = 1
	VoteDown VoteValue = -1
)

// Valid reports whether v is exactly +1 or -1.
func (v VoteValue) Valid() bool {
	return v == VoteUp || v == VoteDown
}

// Vote is one user's current vote on one identifier.
// At most one Vote exists per (voter, identifier) pair — casting again
// replaces the prior vote rather than adding a second row.
type Vote struct {
	ID        int64     `json:"id"`
	TagID     int64     `json:"tag_id"`
	UserID    uuid.UUID `json:"user_id"`
	Value     VoteValue `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}
