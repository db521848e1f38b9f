/* match_schedule.go
 * Contains the methods for interacting with the event_schedules collection
 */

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"cyber-scout/api/external"
)

// FetchSchedule returns the cached schedule for the current event. The caller decides whether an expired
// document is refreshed from TBA
// Preconditions: Receives a context
// Postconditions: Returns the cached document, or an error wrapping mongo.ErrNoDocuments if nothing is cached
func (s *Store) FetchSchedule(ctx context.Context) (ScheduleDoc, error) {
	var res ScheduleDoc
	err := s.Collections.Schedules.FindOne(ctx, bson.D{{Key: "event_key", Value: s.GetEventKey()}}).Decode(&res)
	if err != nil {
		return ScheduleDoc{}, fmt.Errorf("error fetching schedule from db: %w", err)
	}
	return res, nil
}

// StoreSchedule inserts or replaces the cached schedule for the current event
// Preconditions: Receives a context and the event's matches
// Postconditions: Updates the data stored in the db, returns error message if the operation was unsuccessful
func (s *Store) StoreSchedule(ctx context.Context, matches []external.Match) error {
	if len(matches) == 0 {
		return fmt.Errorf("schedule input has length 0, requires at least 1")
	}
	eventKey := s.GetEventKey()

	// Attempt to find an existing document
	var raw bson.M
	err := s.Collections.Schedules.FindOne(ctx, bson.M{"event_key": eventKey}).Decode(&raw)
	notFound := errors.Is(err, mongo.ErrNoDocuments)
	if err != nil && !notFound {
		return fmt.Errorf("lookup for existing schedule failed: %w", err)
	}

	doc := ScheduleDoc{
		EventKey: eventKey,
		Matches:  matches,
		TTL:      DetermineTTL(matches, time.Now()),
	}

	s.logger().Info("updating event schedule in db", "event", eventKey, "matches", len(matches))

	// Perform insert or update
	if notFound {
		if _, err := s.Collections.Schedules.InsertOne(ctx, doc); err != nil {
			return fmt.Errorf("failed to insert schedule: %w", err)
		}
		return nil
	}
	filter := bson.M{"event_key": eventKey}
	if _, err := s.Collections.Schedules.UpdateOne(ctx, filter, bson.M{"$set": doc}); err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}
	return nil
}

// EnsureSchedule checks a schedule is cached for the current event. Submissions are validated against it, so this
// gives a way to check the data exists before the program relies on it
// Preconditions: Receives a context
// Postconditions: Returns nil, or an error if no document exists, it has no matches, or another error occurs
func (s *Store) EnsureSchedule(ctx context.Context) error {
	var result struct {
		Matches []external.Match `bson:"matches"`
	}
	eventKey := s.GetEventKey()
	err := s.Collections.Schedules.FindOne(ctx, bson.M{"event_key": eventKey}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return fmt.Errorf("no schedule found for event %s", eventKey)
		}
		return fmt.Errorf("error checking schedule: %w", err)
	}
	if len(result.Matches) == 0 {
		return fmt.Errorf("schedule found but it has no matches for event %s", eventKey)
	}
	return nil
}
