package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// contextKeyUserID is the private context key for the authenticated user ID.
type contextKeyUserID struct{}

// UserID retrieves the authenticated user ID from the context.
// Returns uuid.Nil and false when the request was not authenticated.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(contextKeyUserID{}).(uuid.UUID)
	return id, ok
}

// WithUserID returns a context carrying the given user ID.
// Exported for handler tests; production code only sets it via Authenticate.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, contextKeyUserID{}, id)
}

// TokenVerifier validates HS256 bearer tokens minted by the hosted auth
// provider and extracts the subject user ID.
type TokenVerifier struct {
	secret []byte
}

// NewTokenVerifier constructs a TokenVerifier for the given shared secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret)}
}

// Verify parses and validates the token string and returns the subject as a
// user UUID. Expiry and signature are checked by the jwt library; a subject
// that is not a UUID is rejected.
func (v *TokenVerifier) Verify(tokenString string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject: %w", err)
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("token subject is not a user id: %w", err)
	}
	return id, nil
}

// Authenticate returns a middleware that, when a Bearer token is present and
// valid, puts the caller's user ID in the request context. Requests without a
// token pass through unauthenticated — read endpoints serve anonymous callers,
// and write endpoints reject them via RequireUser.
// A token that is present but invalid is rejected with 401 immediately.
func Authenticate(verifier *TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}
			id, err := verifier.Verify(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

// RequireUser returns a middleware that rejects unauthenticated requests with
// 401. Wire it after Authenticate on routes that mutate state.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserID(r.Context()); !ok {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"unauthenticated","message":"missing or invalid bearer token"}}`))
}
