/* repository_test.go
 * Contains unit tests for repository.go
 */

package store

import (
	"slices"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
)

func raw(team, match int) shared.RawMatchRecord {
	return shared.RawMatchRecord{
		TeamNumber:      team,
		MatchNumber:     match,
		AutoCoral:       shared.CoralCounts{2, 1, 0, 0},
		EndgamePosition: shared.EndgamePark,
	}
}

// region Insert tests

func TestRepository_Insert(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())

	scored, err := repo.Insert(raw(4481, 1))

	require.NoError(t, err)
	assert.Equal(t, 10, scored.AutoPoints)
	assert.Equal(t, 12, scored.TotalPoints)
	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, []shared.ScoredMatchRecord{scored}, repo.Snapshot())
}

func TestRepository_InsertInvalidLeavesRepositoryUnchanged(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())
	_, err := repo.Insert(raw(4481, 1))
	require.NoError(t, err)

	bad := raw(4481, 2)
	bad.AutoAlgaeNet = -1
	_, err = repo.Insert(bad)

	assert.ErrorIs(t, err, shared.ErrInvalidRecord)
	assert.Equal(t, 1, repo.Len())
}

func TestRepository_DuplicatesKept(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())
	for i := 0; i < 3; i++ {
		_, err := repo.Insert(raw(4481, 1))
		require.NoError(t, err)
	}

	assert.Equal(t, 3, repo.Len())
	assert.Len(t, slices.Collect(repo.ByTeam(4481)), 3)
}

func TestRepository_UsesRubric(t *testing.T) {
	early, err := logic.DefaultRubrics().Lookup(logic.EarlyRubricName)
	require.NoError(t, err)
	repo := NewRepository(early)
	r := raw(4481, 1)
	r.MovedInAuto = true

	scored, err := repo.Insert(r)

	require.NoError(t, err)
	assert.Equal(t, logic.EarlyRubricName, repo.Rubric().Name)
	assert.Equal(t, 1, scored.RankPoints.AutoBonus)
}

// endregion

// region Query tests

func TestRepository_Queries(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())
	for _, r := range []shared.RawMatchRecord{raw(1, 1), raw(2, 1), raw(1, 2), raw(3, 2), raw(2, 3)} {
		_, err := repo.Insert(r)
		require.NoError(t, err)
	}

	byTeam := slices.Collect(repo.ByTeam(1))
	require.Len(t, byTeam, 2)
	assert.Equal(t, 1, byTeam[0].MatchNumber)
	assert.Equal(t, 2, byTeam[1].MatchNumber)

	byMatch := slices.Collect(repo.ByMatch(2))
	require.Len(t, byMatch, 2)
	assert.Equal(t, 1, byMatch[0].TeamNumber)
	assert.Equal(t, 3, byMatch[1].TeamNumber)

	assert.Len(t, slices.Collect(repo.All()), 5)
	assert.Equal(t, []int{1, 2, 3}, repo.Teams())
	assert.Empty(t, slices.Collect(repo.ByTeam(99)))
}

func TestRepository_QueryRestartable(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())
	_, err := repo.Insert(raw(1, 1))
	require.NoError(t, err)

	seq := repo.All()
	assert.Len(t, slices.Collect(seq), 1)

	_, err = repo.Insert(raw(1, 2))
	require.NoError(t, err)
	assert.Len(t, slices.Collect(seq), 2)
}

func TestRepository_QueryEarlyStop(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())
	for match := 1; match <= 5; match++ {
		_, err := repo.Insert(raw(1, match))
		require.NoError(t, err)
	}

	count := 0
	for range repo.All() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestRepository_SnapshotIsCopy(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())
	_, err := repo.Insert(raw(1, 1))
	require.NoError(t, err)

	snapshot := repo.Snapshot()
	snapshot[0].TotalPoints = 999

	assert.Equal(t, 12, slices.Collect(repo.All())[0].TotalPoints)
}

func TestRepository_AppendAndClear(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())
	scored, err := logic.Score(raw(1, 1))
	require.NoError(t, err)

	repo.Append(scored, scored)
	assert.Equal(t, 2, repo.Len())

	repo.Clear()
	assert.Equal(t, 0, repo.Len())
	assert.Empty(t, repo.Teams())
}

// endregion

func TestRepository_ConcurrentAccess(t *testing.T) {
	repo := NewRepository(logic.DefaultRubric())
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(2)
		go func(team int) {
			defer wg.Done()
			for match := 1; match <= 25; match++ {
				_, _ = repo.Insert(raw(team, match))
			}
		}(w + 1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				for rec := range repo.All() {
					_ = rec.TotalPoints
				}
				_ = logic.HeadToHead(1, 2, repo)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, repo.Len())
}
