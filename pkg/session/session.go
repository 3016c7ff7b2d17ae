// Package session stores journeys started through the HTTP API.
//
// Each API client gets its own route-continuation state, identified by a
// random UUID. A [Session] holds a serializable snapshot of that state; the
// server restores it into a fresh journey.Machine per request and saves the
// updated snapshot afterwards, so any [Store] backend works:
//   - [MemoryStore]: in-process, for a single server
//   - [FileStore]: JSON files, survives restarts
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New(connector.Elevator, machine.Snapshot(), session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/indoorroute/pkg/connector"
	"github.com/matzehuels/indoorroute/pkg/journey"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist or has expired.
	ErrNotFound = errors.New("session not found")

	// ErrInvalidID is returned for ids that are not UUIDs.
	ErrInvalidID = errors.New("invalid session id")
)

// DefaultTTL is how long an idle session lives.
const DefaultTTL = 30 * time.Minute

// Session is one client's journey.
type Session struct {
	ID        string                  `json:"id"`
	Via       connector.Type          `json:"via"`
	Route     journey.MultiFloorRoute `json:"route"`
	Floor     string                  `json:"floor,omitempty"`
	Published []string                `json:"published,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
	ExpiresAt time.Time               `json:"expiresAt"`
}

// New creates a session with a fresh UUID.
func New(via connector.Type, route journey.MultiFloorRoute, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Via:       via,
		Route:     route,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has outlived its TTL at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Touch records activity and extends the expiry by ttl.
func (s *Session) Touch(ttl time.Duration) {
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// ValidateID checks that id is a UUID. Stores use it before touching
// storage so ids can never name arbitrary files.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session. Missing and expired sessions yield ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error

	// Close releases resources.
	Close() error
}
