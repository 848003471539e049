// Package session carries the caller's tenant scope.
//
// Every persistence and cache call takes an explicit [Scope]; nothing reads
// the current establishment from global state. The HTTP API resolves the
// scope from a bearer session token through a [Store]:
//   - [MemoryStore]: in-process, for development and tests
//   - [RedisStore]: shared with the hosted backend that signs users in
//
// Sessions are created by that backend; this package only reads them,
// except for [MemoryStore.Issue] used by local development servers.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	apperrors "github.com/eduplan/seatplan/pkg/errors"
)

// Sentinel errors for session operations.
var (
	ErrNotFound = errors.New("session not found")
	ErrExpired  = errors.New("session expired")
)

// DefaultTTL is the lifetime of sessions issued locally.
const DefaultTTL = 24 * time.Hour

// Scope identifies the tenant and user a request acts for.
type Scope struct {
	EstablishmentID string `json:"establishment_id"`
	UserID          string `json:"user_id"`
}

// Validate checks both identifiers.
func (s Scope) Validate() error {
	if err := apperrors.ValidateIdentifier("establishment", s.EstablishmentID); err != nil {
		return err
	}
	if s.UserID == "" {
		return nil
	}
	return apperrors.ValidateIdentifier("user", s.UserID)
}

// CachePrefix returns the cache namespace of the establishment.
func (s Scope) CachePrefix() string { return "est:" + s.EstablishmentID + ":" }

// Session is a signed-in user bound to one establishment.
type Session struct {
	ID        string    `json:"id"`
	Scope     Scope     `json:"scope"`
	Name      string    `json:"name,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool { return time.Now().After(s.ExpiresAt) }

// Store looks sessions up by ID.
type Store interface {
	// Get returns ErrNotFound for unknown IDs and ErrExpired for stale ones.
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

// GenerateID creates a random URL-safe session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session for scope.
func New(scope Scope, name string, ttl time.Duration) (*Session, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{ID: id, Scope: scope, Name: name, ExpiresAt: now.Add(ttl), CreatedAt: now}, nil
}

// Local returns a long-lived session for running without authentication.
func Local(establishmentID string) *Session {
	now := time.Now()
	return &Session{
		ID:        "local-session",
		Scope:     Scope{EstablishmentID: establishmentID, UserID: "local"},
		Name:      "Local User",
		ExpiresAt: now.Add(365 * 24 * time.Hour),
		CreatedAt: now,
	}
}
