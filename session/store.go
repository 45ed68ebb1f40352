package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session does not exist in the store.
var ErrNotFound = errors.New("session not found")

// Session is one orchestration's registry record.
type Session struct {
	ID           string    `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActiveAt time.Time `json:"last_active_at"`
	Executions   int       `json:"executions"`
	TotalCalls   int       `json:"total_calls"`
}

// NewSession creates a session record. An empty id gets a generated UUID.
func NewSession(id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}
	now := time.Now()
	return &Session{ID: id, CreatedAt: now, LastActiveAt: now}
}

// RecordExecution updates activity counters after one execution.
func (s *Session) RecordExecution(callCount int) {
	s.Executions++
	s.TotalCalls += callCount
	s.LastActiveAt = time.Now()
}

// Store persists session records. Implementations must be safe for
// concurrent use.
type Store interface {
	// Put saves or replaces a session.
	Put(ctx context.Context, s *Session) error
	// Get retrieves a session by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error
	// List returns the ids of all known sessions.
	List(ctx context.Context) ([]string, error)
	// Ping checks backend health.
	Ping(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
