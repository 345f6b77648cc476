// Package middleware provides HTTP middleware for candidate authentication.
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// candidateIDKey is the context key for storing the authenticated candidate ID.
const candidateIDKey ContextKey = "candidateID"

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (CandidateIDGetter, error)
}

// CandidateIDGetter is an interface for extracting the candidate ID from token claims.
type CandidateIDGetter interface {
	GetCandidateID() string
}

// AuthOption configures AuthMiddleware
type AuthOption func(*authConfig)

type authConfig struct {
	public map[string]bool
}

// WithPublicPaths lets requests to the exact paths through without a token.
func WithPublicPaths(paths ...string) AuthOption {
	return func(c *authConfig) {
		for _, p := range paths {
			c.public[p] = true
		}
	}
}

// AuthMiddleware creates middleware that validates bearer tokens and adds the candidate
// ID to the request context.
func AuthMiddleware(validator TokenValidator, opts ...AuthOption) func(http.Handler) http.Handler {
	cfg := &authConfig{public: make(map[string]bool)}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || cfg.public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(tokenString)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), candidateIDKey, claims.GetCandidateID())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken parses a case-insensitive "Bearer <token>" header
func bearerToken(header string) (string, bool) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
}

// GetCandidateID extracts the authenticated candidate ID from the request context.
func GetCandidateID(r *http.Request) (string, error) {
	candidateID, ok := r.Context().Value(candidateIDKey).(string)
	if !ok {
		return "", fmt.Errorf("candidate ID not found in request context")
	}
	return candidateID, nil
}

// CandidateIDKey returns the context key for the candidate ID (for testing purposes).
func CandidateIDKey() ContextKey {
	return candidateIDKey
}
