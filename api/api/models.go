/* models.go
 * This file contain the interfaces, structs and errors that are used by api consumers
 */

package api

import (
	"context"
	"errors"
	"log/slog"

	"cyber-scout/api/external"
	"cyber-scout/api/flatrow"
	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
	"cyber-scout/api/store"
)

var (
	// ErrNotScheduled is returned when a submission names a team that doesn't play in that qualification match
	ErrNotScheduled = errors.New("team is not scheduled in match")
	// ErrNoEvent is returned by event operations before an event is selected
	ErrNoEvent = errors.New("no event selected")
)

// EventSource is the part of the TBA client the API uses
type EventSource interface {
	Districts(ctx context.Context, year int) ([]external.District, error)
	DistrictEvents(ctx context.Context, districtKey string) ([]external.Event, error)
	TeamEvents(ctx context.Context, team, year int) ([]external.Event, error)
	EventMatches(ctx context.Context, eventKey string) ([]external.Match, error)
	Event(ctx context.Context, eventKey string) (external.Event, error)
}

var _ EventSource = (*external.Client)(nil)

// Options configures an API. Store and TBA may be nil, the API then works without persistence or schedule checks
type Options struct {
	Store   store.Interface
	TBA     EventSource
	Rubric  logic.Rubric
	Metrics *Metrics
	Logger  *slog.Logger

	// District and HomeTeam pick the events offered by $event, Year is the season
	District string
	HomeTeam int
	Year     int
}

// ImportSummary is the outcome of a bulk import
type ImportSummary struct {
	Accepted []shared.ScoredMatchRecord
	Errors   []flatrow.RowError
}

// EventInfo describes the selected event for display
type EventInfo struct {
	Key              string
	Name             string
	Rubric           string
	ScheduledMatches int
	Records          int
	Teams            int
}
