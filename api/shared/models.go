/* models.go
 * This file contain the structs and enumerations shared between sub packages: the raw record a scout submits,
 * the scored record derived from it, and the rank point breakdown
 */

package shared

import "fmt"

const (
	MaxTeamNumber  = 25000
	MaxMatchNumber = 999
)

// User is the person submitting a record. On Discord this is the message author.
type User struct {
	UserID   string
	Username string
}

// StartingPosition is the driver station slot a robot starts the match in
type StartingPosition string

const (
	PositionUnset StartingPosition = ""
	Blue1         StartingPosition = "blue1"
	Blue2         StartingPosition = "blue2"
	Blue3         StartingPosition = "blue3"
	Red1          StartingPosition = "red1"
	Red2          StartingPosition = "red2"
	Red3          StartingPosition = "red3"
)

func (p StartingPosition) Valid() bool {
	switch p {
	case PositionUnset, Blue1, Blue2, Blue3, Red1, Red2, Red3:
		return true
	}
	return false
}

// EndgamePosition is where the robot finished the match. An empty value is read as none
type EndgamePosition string

const (
	EndgameUnset   EndgamePosition = ""
	EndgameNone    EndgamePosition = "none"
	EndgamePark    EndgamePosition = "park"
	EndgameShallow EndgamePosition = "shallow"
	EndgameDeep    EndgamePosition = "deep"
)

func (e EndgamePosition) Valid() bool {
	switch e {
	case EndgameUnset, EndgameNone, EndgamePark, EndgameShallow, EndgameDeep:
		return true
	}
	return false
}

// MatchResult is the alliance outcome from the scouted team's point of view
type MatchResult string

const (
	ResultUnset MatchResult = ""
	ResultWin   MatchResult = "win"
	ResultLoss  MatchResult = "loss"
	ResultTie   MatchResult = "tie"
)

func (m MatchResult) Valid() bool {
	switch m {
	case ResultUnset, ResultWin, ResultLoss, ResultTie:
		return true
	}
	return false
}

// Playstyle is the scout's judgement of how the robot played
type Playstyle string

const (
	PlaystyleUnset   Playstyle = ""
	PlaystyleOffense Playstyle = "offense"
	PlaystyleDefense Playstyle = "defense"
	PlaystyleSupport Playstyle = "support"
	PlaystyleHybrid  Playstyle = "hybrid"
)

func (p Playstyle) Valid() bool {
	switch p {
	case PlaystyleUnset, PlaystyleOffense, PlaystyleDefense, PlaystyleSupport, PlaystyleHybrid:
		return true
	}
	return false
}

// CoralCounts holds coral scored on reef levels L1 to L4, index 0 is L1
type CoralCounts [4]int

// Total returns the number of coral across all levels
func (c CoralCounts) Total() int {
	return c[0] + c[1] + c[2] + c[3]
}

// RawMatchRecord is what a scout captures for one team in one match
type RawMatchRecord struct {
	ScouterName      string           `bson:"scouter_name,omitempty"`
	MatchNumber      int              `bson:"match_number"`
	TeamNumber       int              `bson:"team_number"`
	StartingPosition StartingPosition `bson:"starting_position,omitempty"`

	// Safety and fouls
	AutoStop            bool `bson:"auto_stop"`
	EStop               bool `bson:"e_stop"`
	DiedOnField         bool `bson:"died_on_field"`
	FellOver            bool `bson:"fell_over"`
	YellowCard          bool `bson:"yellow_card"`
	RedCard             bool `bson:"red_card"`
	HitOpponentCage     bool `bson:"hit_opponent_cage"`
	CrossedOpponentSide bool `bson:"crossed_opponent_side"`

	// Autonomous
	MovedInAuto               bool        `bson:"moved_in_auto"`
	OtherAllianceMembersMoved int         `bson:"other_alliance_members_moved"`
	AutoCoral                 CoralCounts `bson:"auto_coral"`
	AutoAlgaeProcessor        int         `bson:"auto_algae_processor"`
	AutoAlgaeNet              int         `bson:"auto_algae_net"`
	AutoNotes                 string      `bson:"auto_notes,omitempty"`

	// Teleop
	TeleopCoral           CoralCounts `bson:"teleop_coral"`
	TeleopCoralMissed     int         `bson:"teleop_coral_missed"`
	TeleopAlgaeProcessor  int         `bson:"teleop_algae_processor"`
	TeleopAlgaeNet        int         `bson:"teleop_algae_net"`
	HumanPlayerNetScoring int         `bson:"human_player_net_scoring"`
	HumanPlayerNetMisses  int         `bson:"human_player_net_misses"`
	TeleopNotes           string      `bson:"teleop_notes,omitempty"`

	// Endgame and result
	EndgamePosition EndgamePosition `bson:"endgame_position,omitempty"`
	BotPlaystyle    Playstyle       `bson:"bot_playstyle,omitempty"`
	MatchResult     MatchResult     `bson:"match_result,omitempty"`

	// Manual corrections, trusted as entered
	ScoreOverride         int  `bson:"score_override"`
	UseScoreOverride      bool `bson:"use_score_override"`
	RankPointsOverride    int  `bson:"rank_points_override"`
	UseRankPointsOverride bool `bson:"use_rank_points_override"`
}

// Validate checks the record invariants. The returned error wraps ErrInvalidRecord
func (r RawMatchRecord) Validate() error {
	if r.MatchNumber < 1 || r.MatchNumber > MaxMatchNumber {
		return invalid("matchNumber", fmt.Sprintf("%d is outside 1..%d", r.MatchNumber, MaxMatchNumber))
	}
	if r.TeamNumber < 1 || r.TeamNumber > MaxTeamNumber {
		return invalid("teamNumber", fmt.Sprintf("%d is outside 1..%d", r.TeamNumber, MaxTeamNumber))
	}
	if !r.StartingPosition.Valid() {
		return invalid("startingPosition", fmt.Sprintf("unknown value %q", r.StartingPosition))
	}
	if !r.EndgamePosition.Valid() {
		return invalid("endgamePosition", fmt.Sprintf("unknown value %q", r.EndgamePosition))
	}
	if !r.MatchResult.Valid() {
		return invalid("matchResult", fmt.Sprintf("unknown value %q", r.MatchResult))
	}
	if !r.BotPlaystyle.Valid() {
		return invalid("botPlaystyle", fmt.Sprintf("unknown value %q", r.BotPlaystyle))
	}
	if r.OtherAllianceMembersMoved < 0 || r.OtherAllianceMembersMoved > 2 {
		return invalid("otherAllianceMembersMoved", fmt.Sprintf("%d is outside 0..2", r.OtherAllianceMembersMoved))
	}

	counts := []struct {
		name  string
		value int
	}{
		{"autoCoralL1", r.AutoCoral[0]},
		{"autoCoralL2", r.AutoCoral[1]},
		{"autoCoralL3", r.AutoCoral[2]},
		{"autoCoralL4", r.AutoCoral[3]},
		{"autoAlgaeProcessor", r.AutoAlgaeProcessor},
		{"autoAlgaeNet", r.AutoAlgaeNet},
		{"teleopCoralL1", r.TeleopCoral[0]},
		{"teleopCoralL2", r.TeleopCoral[1]},
		{"teleopCoralL3", r.TeleopCoral[2]},
		{"teleopCoralL4", r.TeleopCoral[3]},
		{"teleopCoralMissed", r.TeleopCoralMissed},
		{"teleopAlgaeProcessor", r.TeleopAlgaeProcessor},
		{"teleopAlgaeNet", r.TeleopAlgaeNet},
		{"humanPlayerNetScoring", r.HumanPlayerNetScoring},
		{"humanPlayerNetMisses", r.HumanPlayerNetMisses},
	}
	for _, c := range counts {
		if c.value < 0 {
			return invalid(c.name, fmt.Sprintf("count %d is negative", c.value))
		}
	}
	return nil
}

// RankPointBreakdown is the per category ranking point award for one record
type RankPointBreakdown struct {
	MatchResultPoints int `bson:"match_result_points"`
	AutoBonus         int `bson:"auto_bonus"`
	CoralBonus        int `bson:"coral_bonus"`
	BargeBonus        int `bson:"barge_bonus"`
	Total             int `bson:"total"`
}

// ScoredMatchRecord is a raw record plus its derived points. Values are never patched after scoring,
// re-scoring produces a new value
type ScoredMatchRecord struct {
	RawMatchRecord `bson:",inline"`

	AutoPoints    int                `bson:"auto_points"`
	TeleopPoints  int                `bson:"teleop_points"`
	EndgamePoints int                `bson:"endgame_points"`
	TotalPoints   int                `bson:"total_points"`
	RankPoints    RankPointBreakdown `bson:"rank_points"`
}
