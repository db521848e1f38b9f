/* scorer.go
 * Contains the match scorer which turns a raw record into a scored record
 */

package logic

import (
	"fmt"

	"cyber-scout/api/shared"
)

// Score scores a record with the default rubric
func Score(raw shared.RawMatchRecord) (shared.ScoredMatchRecord, error) {
	return ScoreWith(DefaultRubric(), raw)
}

// ScoreWith validates and scores a record.
// Preconditions: Receives the rubric used for ranking points and the raw record
// Postconditions: Returns a new scored record, or an error wrapping ErrInvalidRecord. Nothing is partially scored
func ScoreWith(rubric Rubric, raw shared.RawMatchRecord) (shared.ScoredMatchRecord, error) {
	if err := raw.Validate(); err != nil {
		return shared.ScoredMatchRecord{}, fmt.Errorf("team %d match %d: %w", raw.TeamNumber, raw.MatchNumber, err)
	}

	endgame, err := EndgamePoints(raw.EndgamePosition)
	if err != nil {
		return shared.ScoredMatchRecord{}, err
	}

	auto := AutoCoralPoints(raw.AutoCoral[0], raw.AutoCoral[1], raw.AutoCoral[2], raw.AutoCoral[3]) +
		AlgaePoints(raw.AutoAlgaeProcessor, raw.AutoAlgaeNet)

	teleop := TeleopCoralPoints(raw.TeleopCoral[0], raw.TeleopCoral[1], raw.TeleopCoral[2], raw.TeleopCoral[3]) +
		AlgaePoints(raw.TeleopAlgaeProcessor, raw.TeleopAlgaeNet) +
		HumanPlayerNetPoints(raw.HumanPlayerNetScoring)

	total := auto + teleop + endgame
	if raw.UseScoreOverride {
		total = raw.ScoreOverride
	}

	var rankPoints shared.RankPointBreakdown
	if raw.UseRankPointsOverride {
		rankPoints = shared.RankPointBreakdown{Total: raw.RankPointsOverride}
	} else {
		rankPoints = rubric.Evaluate(raw)
	}

	return shared.ScoredMatchRecord{
		RawMatchRecord: raw,
		AutoPoints:     auto,
		TeleopPoints:   teleop,
		EndgamePoints:  endgame,
		TotalPoints:    total,
		RankPoints:     rankPoints,
	}, nil
}
