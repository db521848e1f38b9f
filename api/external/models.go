/* models.go
 * This file contains the structs returned by The Blue Alliance API v3 and the outcome type derived from them
 */

package external

import (
	"strconv"
	"strings"

	"cyber-scout/api/shared"
)

// District is a TBA district, e.g. 2025ne
type District struct {
	Abbreviation string `json:"abbreviation" bson:"abbreviation"`
	DisplayName  string `json:"display_name" bson:"display_name"`
	Key          string `json:"key" bson:"key"`
	Year         int    `json:"year" bson:"year"`
}

// Event is a TBA event. StartDate is yyyy-mm-dd so it sorts as a string
type Event struct {
	Key       string    `json:"key" bson:"key"`
	Name      string    `json:"name" bson:"name"`
	ShortName string    `json:"short_name" bson:"short_name"`
	EventCode string    `json:"event_code" bson:"event_code"`
	EventType int       `json:"event_type" bson:"event_type"`
	City      string    `json:"city" bson:"city"`
	StartDate string    `json:"start_date" bson:"start_date"`
	EndDate   string    `json:"end_date" bson:"end_date"`
	Year      int       `json:"year" bson:"year"`
	District  *District `json:"district,omitempty" bson:"district,omitempty"`
}

// DisplayName returns the short name when TBA has one
func (e Event) DisplayName() string {
	if e.ShortName != "" {
		return e.ShortName
	}
	return e.Name
}

// Alliance is one side of a match. Score is -1 until the match is played
type Alliance struct {
	Score             int      `json:"score" bson:"score"`
	TeamKeys          []string `json:"team_keys" bson:"team_keys"`
	SurrogateTeamKeys []string `json:"surrogate_team_keys" bson:"surrogate_team_keys"`
	DQTeamKeys        []string `json:"dq_team_keys" bson:"dq_team_keys"`
}

type Alliances struct {
	Red  Alliance `json:"red" bson:"red"`
	Blue Alliance `json:"blue" bson:"blue"`
}

// AllianceBreakdown is the part of the score breakdown we read. The rest of the game specific breakdown is ignored
type AllianceBreakdown struct {
	RP *int `json:"rp,omitempty" bson:"rp,omitempty"`
}

type ScoreBreakdown struct {
	Red  AllianceBreakdown `json:"red" bson:"red"`
	Blue AllianceBreakdown `json:"blue" bson:"blue"`
}

// Match is a TBA match. CompLevel is qm, ef, qf, sf or f
type Match struct {
	Key             string          `json:"key" bson:"key"`
	EventKey        string          `json:"event_key" bson:"event_key"`
	CompLevel       string          `json:"comp_level" bson:"comp_level"`
	SetNumber       int             `json:"set_number" bson:"set_number"`
	MatchNumber     int             `json:"match_number" bson:"match_number"`
	Alliances       Alliances       `json:"alliances" bson:"alliances"`
	WinningAlliance string          `json:"winning_alliance" bson:"winning_alliance"`
	Time            int64           `json:"time" bson:"time"`
	ScoreBreakdown  *ScoreBreakdown `json:"score_breakdown,omitempty" bson:"score_breakdown,omitempty"`
}

// Played reports whether both alliances have a score
func (m Match) Played() bool {
	return m.Alliances.Red.Score >= 0 && m.Alliances.Blue.Score >= 0
}

// AllianceOutcome is how one team's alliance did in a match
type AllianceOutcome struct {
	Alliance      string
	Score         int
	OpponentScore int
	// RankPoints is nil when TBA has no score breakdown for the match
	RankPoints *int
	Result     shared.MatchResult
}

// TeamKey returns the TBA key for a team number, e.g. frc4481
func TeamKey(team int) string {
	return "frc" + strconv.Itoa(team)
}

// TeamNumber parses a TBA team key. Keys with a suffix such as frc4481B are read as the base team
func TeamNumber(key string) (int, bool) {
	digits := strings.TrimPrefix(key, "frc")
	end := 0
	for end < len(digits) && digits[end] >= '0' && digits[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(digits[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ScheduleLookup answers the three questions a submission needs about the event schedule
type ScheduleLookup interface {
	IsScheduled(team, match int) bool
	TeamSlot(team, match int) (shared.StartingPosition, bool)
	AllianceResult(team, match int) (AllianceOutcome, bool)
}

// Webhook message types sent by TBA
const (
	WebhookVerification    = "verification"
	WebhookMatchScore      = "match_score"
	WebhookScheduleUpdated = "schedule_updated"
	WebhookPing            = "ping"
)

// WebhookMessage is the envelope of every TBA webhook POST
type WebhookMessage struct {
	MessageType string         `json:"message_type"`
	MessageData map[string]any `json:"message_data"`
}

// MatchScoreData is the message_data of a match_score webhook
type MatchScoreData struct {
	EventKey  string `json:"event_key"`
	MatchKey  string `json:"match_key"`
	EventName string `json:"event_name"`
	Match     Match  `json:"match"`
}

// ScheduleUpdatedData is the message_data of a schedule_updated webhook
type ScheduleUpdatedData struct {
	EventKey  string `json:"event_key"`
	EventName string `json:"event_name"`
}
