/* test_mocks.go
 * Contains mock structures and interfaces for testing the API package and its front ends
 */

package api

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"cyber-scout/api/external"
	"cyber-scout/api/shared"
	"cyber-scout/api/store"
)

// MockStore implements the Store interface for testing
type MockStore struct {
	mu sync.Mutex

	// Storage for mock data
	Matches     map[string][]shared.ScoredMatchRecord
	SubmittedBy []string
	Schedules   map[string]store.ScheduleDoc

	// Error injection for testing error paths
	SaveMatchError     error
	LoadMatchesError   error
	ClearMatchesError  error
	FetchScheduleError error
	StoreScheduleError error

	DatabaseName string
	EventKey     string
	Disconnected bool
}

// mockDatabase implements the minimal Database interface needed for tests
type mockDatabase struct {
	name string
}

func (m *mockDatabase) Name() string {
	return m.name
}

// NewMockStore creates a new MockStore with default values
func NewMockStore(eventKey string) *MockStore {
	return &MockStore{
		Matches:      make(map[string][]shared.ScoredMatchRecord),
		Schedules:    make(map[string]store.ScheduleDoc),
		DatabaseName: "test_db",
		EventKey:     eventKey,
	}
}

// SaveMatch mock implementation
func (m *MockStore) SaveMatch(_ context.Context, rec shared.ScoredMatchRecord, submittedBy shared.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveMatchError != nil {
		return m.SaveMatchError
	}
	m.Matches[m.EventKey] = append(m.Matches[m.EventKey], rec)
	m.SubmittedBy = append(m.SubmittedBy, submittedBy.Username)
	return nil
}

// LoadMatches mock implementation
func (m *MockStore) LoadMatches(_ context.Context) ([]shared.ScoredMatchRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadMatchesError != nil {
		return nil, m.LoadMatchesError
	}
	return append([]shared.ScoredMatchRecord(nil), m.Matches[m.EventKey]...), nil
}

// ClearMatches mock implementation
func (m *MockStore) ClearMatches(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearMatchesError != nil {
		return m.ClearMatchesError
	}
	delete(m.Matches, m.EventKey)
	return nil
}

// FetchSchedule mock implementation
func (m *MockStore) FetchSchedule(_ context.Context) (store.ScheduleDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchScheduleError != nil {
		return store.ScheduleDoc{}, m.FetchScheduleError
	}
	doc, ok := m.Schedules[m.EventKey]
	if !ok {
		return store.ScheduleDoc{}, fmt.Errorf("schedule for %s: %w", m.EventKey, mongo.ErrNoDocuments)
	}
	return doc, nil
}

// StoreSchedule mock implementation
func (m *MockStore) StoreSchedule(_ context.Context, matches []external.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.StoreScheduleError != nil {
		return m.StoreScheduleError
	}
	m.Schedules[m.EventKey] = store.ScheduleDoc{
		EventKey: m.EventKey,
		TTL:      store.DetermineTTL(matches, time.Now()),
		Matches:  matches,
	}
	return nil
}

// EnsureSchedule mock implementation
func (m *MockStore) EnsureSchedule(ctx context.Context) error {
	_, err := m.FetchSchedule(ctx)
	return err
}

// SetCachedSchedule sets up a cached schedule that expires after ttl
func (m *MockStore) SetCachedSchedule(matches []external.Match, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Schedules[m.EventKey] = store.ScheduleDoc{
		EventKey: m.EventKey,
		TTL:      time.Now().Add(ttl).Unix(),
		Matches:  matches,
	}
}

// StoredMatches returns the records saved for the current event
func (m *MockStore) StoredMatches() []shared.ScoredMatchRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]shared.ScoredMatchRecord(nil), m.Matches[m.EventKey]...)
}

// Implement getter methods for StoreInterface
func (m *MockStore) GetEventKey() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.EventKey
}

func (m *MockStore) SetEventKey(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EventKey = key
}

func (m *MockStore) GetDatabase() interface{ Name() string } {
	return &mockDatabase{name: m.DatabaseName}
}

// mockClient implements minimal client interface
type mockClient struct {
	store *MockStore
}

func (mc *mockClient) Disconnect(ctx context.Context) error {
	mc.store.mu.Lock()
	defer mc.store.mu.Unlock()
	mc.store.Disconnected = true
	return nil
}

func (m *MockStore) GetClient() interface{ Disconnect(context.Context) error } {
	return &mockClient{store: m}
}

var _ store.Interface = (*MockStore)(nil)

// MockTBA implements EventSource with canned data
type MockTBA struct {
	DistrictList      []external.District
	DistrictEventList []external.Event
	TeamEventList     []external.Event
	Events            map[string]external.Event
	MatchesByEvent    map[string][]external.Match

	EventMatchesError error
	MatchCalls        int
}

// NewMockTBA creates an empty MockTBA
func NewMockTBA() *MockTBA {
	return &MockTBA{
		Events:         make(map[string]external.Event),
		MatchesByEvent: make(map[string][]external.Match),
	}
}

func (m *MockTBA) Districts(_ context.Context, _ int) ([]external.District, error) {
	return slices.Clone(m.DistrictList), nil
}

func (m *MockTBA) DistrictEvents(_ context.Context, _ string) ([]external.Event, error) {
	return m.DistrictEventList, nil
}

func (m *MockTBA) TeamEvents(_ context.Context, _, _ int) ([]external.Event, error) {
	return m.TeamEventList, nil
}

func (m *MockTBA) EventMatches(_ context.Context, eventKey string) ([]external.Match, error) {
	m.MatchCalls++
	if m.EventMatchesError != nil {
		return nil, m.EventMatchesError
	}
	return m.MatchesByEvent[eventKey], nil
}

func (m *MockTBA) Event(_ context.Context, eventKey string) (external.Event, error) {
	e, ok := m.Events[eventKey]
	if !ok {
		return external.Event{}, fmt.Errorf("event %s not found", eventKey)
	}
	return e, nil
}

var _ EventSource = (*MockTBA)(nil)
