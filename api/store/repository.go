/* repository.go
 * Contains the in memory match repository. Records are appended in submission order, duplicates are kept and
 * stored records are never modified. Queries return lazy sequences over a snapshot of the collection
 */

package store

import (
	"iter"
	"slices"
	"sync"

	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
)

// Repository is the session's ordered collection of scored records
type Repository struct {
	mu      sync.RWMutex
	rubric  logic.Rubric
	records []shared.ScoredMatchRecord
}

// NewRepository creates an empty repository that scores inserts with the given rubric
func NewRepository(rubric logic.Rubric) *Repository {
	return &Repository{rubric: rubric}
}

// Rubric returns the rubric used to score inserted records
func (r *Repository) Rubric() logic.Rubric {
	return r.rubric
}

// Insert scores a raw record and appends it.
// Preconditions: Receives a raw record
// Postconditions: Returns the scored copy that was stored, or an error if the record is invalid in which case the
// repository is unchanged
func (r *Repository) Insert(raw shared.RawMatchRecord) (shared.ScoredMatchRecord, error) {
	scored, err := logic.ScoreWith(r.rubric, raw)
	if err != nil {
		return shared.ScoredMatchRecord{}, err
	}
	r.Append(scored)
	return scored, nil
}

// Append adds records that are already scored, e.g. when restoring a snapshot
func (r *Repository) Append(scored ...shared.ScoredMatchRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, scored...)
}

// Clear drops every record
func (r *Repository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}

// Len returns the number of stored records
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// snapshot returns the current slice capped at its length. Elements below len are never written again and a
// later append can't write into the capped slice, so the result can be read without holding the lock
func (r *Repository) snapshot() []shared.ScoredMatchRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records[:len(r.records):len(r.records)]
}

// Snapshot returns a copy of every record in insertion order
func (r *Repository) Snapshot() []shared.ScoredMatchRecord {
	return slices.Clone(r.snapshot())
}

// Query returns the records matching pred in insertion order. The sequence can be ranged over more than once,
// each pass sees the records present when it starts
func (r *Repository) Query(pred func(shared.ScoredMatchRecord) bool) iter.Seq[shared.ScoredMatchRecord] {
	return func(yield func(shared.ScoredMatchRecord) bool) {
		for _, rec := range r.snapshot() {
			if pred != nil && !pred(rec) {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// All returns every record
func (r *Repository) All() iter.Seq[shared.ScoredMatchRecord] {
	return r.Query(nil)
}

// ByTeam returns the records for one team
func (r *Repository) ByTeam(team int) iter.Seq[shared.ScoredMatchRecord] {
	return r.Query(func(rec shared.ScoredMatchRecord) bool {
		return rec.TeamNumber == team
	})
}

// ByMatch returns the records for one match number
func (r *Repository) ByMatch(match int) iter.Seq[shared.ScoredMatchRecord] {
	return r.Query(func(rec shared.ScoredMatchRecord) bool {
		return rec.MatchNumber == match
	})
}

// Teams returns the distinct team numbers in the order they were first recorded
func (r *Repository) Teams() []int {
	seen := make(map[int]bool)
	var teams []int
	for _, rec := range r.snapshot() {
		if seen[rec.TeamNumber] {
			continue
		}
		seen[rec.TeamNumber] = true
		teams = append(teams, rec.TeamNumber)
	}
	return teams
}

var _ logic.MatchSource = (*Repository)(nil)
