package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. unknown category, submitter voting on own submission).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrUnauthenticated is returned when an operation requires a verified caller
// identity and none is present. Handlers should map this to HTTP 401.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrInvalidVoteValue is returned when a vote value is not exactly +1 or -1.
// This indicates a programming error at the caller boundary, not user input;
// it is still surfaced as 422 rather than 500 so the client can see what broke.
var ErrInvalidVoteValue = errors.New("invalid vote value")
