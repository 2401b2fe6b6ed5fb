// Package domain provides core business types, the application error
// taxonomy, and context helpers for Sellorama.
//
// Context helpers centralize request-scoped identity access so every
// ownership check reads the same resolved identity instead of ambient
// state.
package domain

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// identityContextKey stores the resolved request identity in context.
	identityContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// Identity is the resolved user behind a session token.
// This is a minimal struct for context storage - the full user record
// can be fetched from the database if needed.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
	Username  string
}

// NewContextWithIdentity returns a new context with the identity attached.
func NewContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFromContext retrieves the identity from context.
// Returns nil if the request is unauthenticated.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey).(*Identity)
	return id
}

// RequireIdentity retrieves the identity from context or returns an
// unauthorized error. Services use this at the top of every
// identity-gated operation.
func RequireIdentity(ctx context.Context, op string) (*Identity, error) {
	id := IdentityFromContext(ctx)
	if id == nil {
		return nil, Unauthorized(op, "session expired or does not exist")
	}
	return id, nil
}

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns an empty string if none is present.
func RequestIDFromContext(ctx context.Context) string {
	requestID, _ := ctx.Value(requestIDContextKey).(string)
	return requestID
}
