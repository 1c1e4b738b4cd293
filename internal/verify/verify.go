// Package verify implements the status transition rule: the pure mapping from
// an identifier's verification score to its pending/verified/rejected status.
//
// The rule is deliberately stateless. Status is a function of the current
// score only, never of history, so a previously verified identifier falls
// back to pending or rejected if enough downvotes accumulate.
package verify

import (
	"fmt"

	"github.com/threaddate/backend/internal/domain"
)

// Thresholds holds the score boundaries for status transitions.
// These are product configuration, not business logic — load them from the
// environment and treat the numbers as tunable.
type Thresholds struct {
	// Verified is the score at or above which an identifier is verified.
	// Must be positive.
	Verified int
	// Rejected is the score at or below which an identifier is rejected.
	// Must be negative.
	Rejected int
}

// Validate checks that the thresholds describe a non-empty pending band
// around zero. A zero or inverted band would make the rule ambiguous.
func (t Thresholds) Validate() error {
	if t.Verified <= 0 {
		return fmt.Errorf("verified threshold must be positive, got %d", t.Verified)
	}
	if t.Rejected >= 0 {
		return fmt.Errorf("rejected threshold must be negative, got %d", t.Rejected)
	}
	return nil
}

// Evaluate maps a score to a status. Pure and total over the integers:
// it never fails, and the same score always yields the same status.
func (t Thresholds) Evaluate(score int) domain.Status {
	switch {
	case score >= t.Verified:
		return domain.StatusVerified
	case score <= t.Rejected:
		return domain.StatusRejected
	default:
		return domain.StatusPending
	}
}
