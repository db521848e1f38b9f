/* models.go
 * This file contain the structs and helper functions that relate to DB objects
 */

package store

import (
	"time"

	"github.com/google/uuid"

	"cyber-scout/api/external"
	"cyber-scout/api/shared"
)

// MatchDoc is one submitted record. Ids are version 7 uuids, so sorting on _id returns submission order
type MatchDoc struct {
	ID          string                   `bson:"_id"`
	EventKey    string                   `bson:"event_key"`
	SubmittedBy string                   `bson:"submitted_by,omitempty"`
	SubmittedAt time.Time                `bson:"submitted_at"`
	Record      shared.ScoredMatchRecord `bson:"record"`
}

// NewMatchDoc wraps a scored record for storage
func NewMatchDoc(eventKey string, rec shared.ScoredMatchRecord, submittedBy shared.User, now time.Time) (MatchDoc, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return MatchDoc{}, err
	}
	return MatchDoc{
		ID:          id.String(),
		EventKey:    eventKey,
		SubmittedBy: submittedBy.Username,
		SubmittedAt: now.UTC(),
		Record:      rec,
	}, nil
}

// ScheduleDoc is the cached match list of one event
type ScheduleDoc struct {
	EventKey string           `bson:"event_key,omitempty"`
	TTL      int64            `bson:"ttl,omitempty"`
	Matches  []external.Match `bson:"matches,omitempty"`
}

// Expired reports whether the cached schedule should be fetched again
func (d ScheduleDoc) Expired(now time.Time) bool {
	return d.TTL < now.Unix()
}

const (
	// Qualification matches cycle every few minutes, a match in progress means scores land soon
	shortTTL  = 3 * time.Minute
	normalTTL = 30 * time.Minute
	// Once every match has a score the schedule won't change again
	finishedTTL = 24 * time.Hour
	// A match is treated as ongoing from its scheduled time until this long after it
	matchWindow = 15 * time.Minute
)

// DetermineTTL returns the unix time a cached schedule expires.
// Preconditions: Receives the event's matches and the current time
// Postconditions: Returns a short ttl if an unplayed match is scheduled around now, a long ttl if every match has
// been played, and the normal ttl otherwise
func DetermineTTL(matches []external.Match, now time.Time) int64 {
	allPlayed := len(matches) > 0
	for _, m := range matches {
		if m.Played() {
			continue
		}
		allPlayed = false
		if m.Time == 0 {
			continue
		}
		start := time.Unix(m.Time, 0)
		if !now.Before(start.Add(-matchWindow)) && !now.After(start.Add(matchWindow)) {
			return now.Add(shortTTL).Unix()
		}
	}
	if allPlayed {
		return now.Add(finishedTTL).Unix()
	}
	return now.Add(normalTTL).Unix()
}
