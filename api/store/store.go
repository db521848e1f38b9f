/* store.go
 * Contains the Store struct and NewStore function. The methods for this package are split by collection:
 * match_snapshots holds submitted records and match_schedule caches event schedules from TBA. The in memory
 * Repository in repository.go is the source of truth during a session, the Store only keeps a copy
 */

package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Logger      *slog.Logger
	Collections struct {
		Matches   *mongo.Collection
		Schedules *mongo.Collection
	}

	mu       sync.RWMutex
	eventKey string
}

// Function for initialising Store. Connects to the db and sets the collections
// Preconditions: Receives a context, the db name, the mongo uri and the TBA event key records are stored under
// Postconditions: Returns pointer to the Store object, or error if it occurs
func NewStore(ctx context.Context, dbName string, mongoURI string, eventKey string) (*Store, error) {
	if eventKey == "" {
		return nil, fmt.Errorf("event key cannot be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	db := client.Database(dbName)

	s := &Store{
		Client:   client,
		Database: db,
		Logger:   slog.Default(),
		eventKey: eventKey,
	}
	s.Collections.Matches = db.Collection("match_snapshots")
	s.Collections.Schedules = db.Collection("event_schedules")
	return s, nil
}

func (s *Store) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
