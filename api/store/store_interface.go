/* store_interface.go
 * Contains the Store interface for dependency injection and testing
 */

package store

import (
	"context"

	"cyber-scout/api/external"
	"cyber-scout/api/shared"
)

// Interface defines the methods that Store implements.
// This allows for mocking in tests.
type Interface interface {
	SaveMatch(ctx context.Context, rec shared.ScoredMatchRecord, submittedBy shared.User) error
	LoadMatches(ctx context.Context) ([]shared.ScoredMatchRecord, error)
	ClearMatches(ctx context.Context) error
	FetchSchedule(ctx context.Context) (ScheduleDoc, error)
	StoreSchedule(ctx context.Context, matches []external.Match) error
	EnsureSchedule(ctx context.Context) error

	// Getter and setter methods for accessing fields
	GetEventKey() string
	SetEventKey(key string)
	GetDatabase() interface{ Name() string }
	GetClient() interface{ Disconnect(context.Context) error }
}

// Ensure Store implements Interface
var _ Interface = (*Store)(nil)

// GetEventKey returns the TBA event records are stored under
func (s *Store) GetEventKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventKey
}

// SetEventKey switches the event used by later calls
func (s *Store) SetEventKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eventKey = key
}

// GetDatabase returns the database instance
func (s *Store) GetDatabase() interface{ Name() string } {
	return s.Database
}

// GetClient returns the MongoDB client
func (s *Store) GetClient() interface{ Disconnect(context.Context) error } {
	return s.Client
}
