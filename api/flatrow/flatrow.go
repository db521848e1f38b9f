/* flatrow.go
 * Contains the flat row text format used by the scouting spreadsheet. A record is written as one tab separated
 * line in a fixed field order. The field order is versioned, SchemaVersion is the only version read
 */

package flatrow

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cyber-scout/api/shared"
)

const SchemaVersion = 2

// ErrFieldCount is returned when a row does not have exactly one value per schema field
var ErrFieldCount = errors.New("wrong number of fields for flat row schema")

// Fields is the schema v2 field order
var Fields = []string{
	"ScouterName",
	"MatchNumber",
	"TeamNumber",
	"StartingPosition",
	"AutoStop",
	"EStop",
	"DiedOnField",
	"FellOver",
	"YellowCard",
	"RedCard",
	"HitOpponentCage",
	"CrossedOpponentSide",
	"MovedInAuto",
	"OtherAllianceMembersMoved",
	"AutoCoralL1",
	"AutoCoralL2",
	"AutoCoralL3",
	"AutoCoralL4",
	"AutoAlgaeProcessor",
	"AutoAlgaeNet",
	"AutoNotes",
	"AutoPoints",
	"TeleopCoralL1",
	"TeleopCoralL2",
	"TeleopCoralL3",
	"TeleopCoralL4",
	"TeleopCoralMissed",
	"TeleopAlgaeProcessor",
	"TeleopAlgaeNet",
	"HumanPlayerNetScoring",
	"HumanPlayerNetMisses",
	"TeleopNotes",
	"TeleopPoints",
	"EndgamePosition",
	"EndgamePoints",
	"BotPlaystyle",
	"MatchResult",
	"UseScoreOverride",
	"ScoreOverride",
	"UseRankPointsOverride",
	"RankPointsOverride",
	"RankPoints",
	"TotalPoints",
}

// Width is the number of fields in a schema v2 row
var Width = len(Fields)

var noteReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// parseBool accepts the values the spreadsheet has used over time, anything else is false
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

// parseCount returns 0 for an empty or malformed number
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// ToFlatRow returns one value per schema field for a scored record
func ToFlatRow(rec shared.ScoredMatchRecord) []string {
	itoa := strconv.Itoa
	return []string{
		noteReplacer.Replace(rec.ScouterName),
		itoa(rec.MatchNumber),
		itoa(rec.TeamNumber),
		string(rec.StartingPosition),
		formatBool(rec.AutoStop),
		formatBool(rec.EStop),
		formatBool(rec.DiedOnField),
		formatBool(rec.FellOver),
		formatBool(rec.YellowCard),
		formatBool(rec.RedCard),
		formatBool(rec.HitOpponentCage),
		formatBool(rec.CrossedOpponentSide),
		formatBool(rec.MovedInAuto),
		itoa(rec.OtherAllianceMembersMoved),
		itoa(rec.AutoCoral[0]),
		itoa(rec.AutoCoral[1]),
		itoa(rec.AutoCoral[2]),
		itoa(rec.AutoCoral[3]),
		itoa(rec.AutoAlgaeProcessor),
		itoa(rec.AutoAlgaeNet),
		noteReplacer.Replace(rec.AutoNotes),
		itoa(rec.AutoPoints),
		itoa(rec.TeleopCoral[0]),
		itoa(rec.TeleopCoral[1]),
		itoa(rec.TeleopCoral[2]),
		itoa(rec.TeleopCoral[3]),
		itoa(rec.TeleopCoralMissed),
		itoa(rec.TeleopAlgaeProcessor),
		itoa(rec.TeleopAlgaeNet),
		itoa(rec.HumanPlayerNetScoring),
		itoa(rec.HumanPlayerNetMisses),
		noteReplacer.Replace(rec.TeleopNotes),
		itoa(rec.TeleopPoints),
		string(rec.EndgamePosition),
		itoa(rec.EndgamePoints),
		string(rec.BotPlaystyle),
		string(rec.MatchResult),
		formatBool(rec.UseScoreOverride),
		itoa(rec.ScoreOverride),
		formatBool(rec.UseRankPointsOverride),
		itoa(rec.RankPointsOverride),
		itoa(rec.RankPoints.Total),
		itoa(rec.TotalPoints),
	}
}

// quoteCell wraps a cell holding a double quote in quotes and doubles the quotes inside, so SplitRow reads it back
func quoteCell(cell string) string {
	if !strings.Contains(cell, `"`) {
		return cell
	}
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// Encode returns the tab separated row for a scored record
func Encode(rec shared.ScoredMatchRecord) string {
	cells := ToFlatRow(rec)
	for i, cell := range cells {
		cells[i] = quoteCell(cell)
	}
	return strings.Join(cells, "\t")
}

// Header returns the tab separated field names
func Header() string {
	return strings.Join(Fields, "\t")
}

// FromFlatRow rebuilds a raw record from one row of values.
// Preconditions: Receives exactly Width values in schema order
// Postconditions: Returns the raw record, or ErrFieldCount / an error wrapping ErrInvalidRecord. Derived columns
// (points and rank points) are ignored, the record is scored again on insert
func FromFlatRow(fields []string) (shared.RawMatchRecord, error) {
	if len(fields) != Width {
		return shared.RawMatchRecord{}, fmt.Errorf("%w: got %d, want %d", ErrFieldCount, len(fields), Width)
	}

	value := make(map[string]string, Width)
	for i, name := range Fields {
		value[name] = fields[i]
	}
	count := func(name string) int { return parseCount(value[name]) }
	flag := func(name string) bool { return parseBool(value[name]) }
	text := func(name string) string { return strings.TrimSpace(value[name]) }

	raw := shared.RawMatchRecord{
		ScouterName:               text("ScouterName"),
		MatchNumber:               count("MatchNumber"),
		TeamNumber:                count("TeamNumber"),
		StartingPosition:          shared.StartingPosition(strings.ToLower(text("StartingPosition"))),
		AutoStop:                  flag("AutoStop"),
		EStop:                     flag("EStop"),
		DiedOnField:               flag("DiedOnField"),
		FellOver:                  flag("FellOver"),
		YellowCard:                flag("YellowCard"),
		RedCard:                   flag("RedCard"),
		HitOpponentCage:           flag("HitOpponentCage"),
		CrossedOpponentSide:       flag("CrossedOpponentSide"),
		MovedInAuto:               flag("MovedInAuto"),
		OtherAllianceMembersMoved: count("OtherAllianceMembersMoved"),
		AutoCoral: shared.CoralCounts{
			count("AutoCoralL1"), count("AutoCoralL2"), count("AutoCoralL3"), count("AutoCoralL4"),
		},
		AutoAlgaeProcessor: count("AutoAlgaeProcessor"),
		AutoAlgaeNet:       count("AutoAlgaeNet"),
		AutoNotes:          value["AutoNotes"],
		TeleopCoral: shared.CoralCounts{
			count("TeleopCoralL1"), count("TeleopCoralL2"), count("TeleopCoralL3"), count("TeleopCoralL4"),
		},
		TeleopCoralMissed:     count("TeleopCoralMissed"),
		TeleopAlgaeProcessor:  count("TeleopAlgaeProcessor"),
		TeleopAlgaeNet:        count("TeleopAlgaeNet"),
		HumanPlayerNetScoring: count("HumanPlayerNetScoring"),
		HumanPlayerNetMisses:  count("HumanPlayerNetMisses"),
		TeleopNotes:           value["TeleopNotes"],
		EndgamePosition:       shared.EndgamePosition(strings.ToLower(text("EndgamePosition"))),
		BotPlaystyle:          shared.Playstyle(strings.ToLower(text("BotPlaystyle"))),
		MatchResult:           shared.MatchResult(strings.ToLower(text("MatchResult"))),
		UseScoreOverride:      flag("UseScoreOverride"),
		ScoreOverride:         count("ScoreOverride"),
		UseRankPointsOverride: flag("UseRankPointsOverride"),
		RankPointsOverride:    count("RankPointsOverride"),
	}

	if err := raw.Validate(); err != nil {
		return shared.RawMatchRecord{}, err
	}
	return raw, nil
}
