/* match_snapshots.go
 * Contains the methods for interacting with the match_snapshots collection
 */

package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cyber-scout/api/shared"
)

// SaveMatch stores a copy of a scored record under the current event
// Preconditions: Receives a context, the scored record and the user that submitted it
// Postconditions: Inserts one document, returns an error if the insert fails
func (s *Store) SaveMatch(ctx context.Context, rec shared.ScoredMatchRecord, submittedBy shared.User) error {
	doc, err := NewMatchDoc(s.GetEventKey(), rec, submittedBy, time.Now())
	if err != nil {
		return fmt.Errorf("failed to create match id: %w", err)
	}
	if _, err := s.Collections.Matches.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	s.logger().Debug("stored match", "event", doc.EventKey, "team", rec.TeamNumber, "match", rec.MatchNumber)
	return nil
}

// LoadMatches returns every stored record for the current event in submission order
// Preconditions: Receives a context
// Postconditions: Returns the records, an empty slice if none are stored, or an error if the query fails
func (s *Store) LoadMatches(ctx context.Context) ([]shared.ScoredMatchRecord, error) {
	filter := bson.M{"event_key": s.GetEventKey()}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.Collections.Matches.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []MatchDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode matches: %w", err)
	}

	records := make([]shared.ScoredMatchRecord, 0, len(docs))
	for _, doc := range docs {
		records = append(records, doc.Record)
	}
	return records, nil
}

// ClearMatches deletes the stored records for the current event
func (s *Store) ClearMatches(ctx context.Context) error {
	res, err := s.Collections.Matches.DeleteMany(ctx, bson.M{"event_key": s.GetEventKey()})
	if err != nil {
		return fmt.Errorf("failed to clear matches: %w", err)
	}
	s.logger().Info("cleared stored matches", "event", s.GetEventKey(), "deleted", res.DeletedCount)
	return nil
}
