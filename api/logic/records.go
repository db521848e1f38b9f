/* records.go
 * Contains the aggregation over recorded matches: head to head records, best and worst opponents, percentage
 * changes between two matches and team comparisons. Nothing here fails on missing data, results carry flags instead
 */

package logic

import (
	"cmp"
	"fmt"
	"iter"
	"math"
	"slices"
	"strconv"

	"cyber-scout/api/shared"
)

const DefaultRecordLimit = 5

// MatchSource is the query surface the aggregation needs from a repository
type MatchSource interface {
	ByTeam(team int) iter.Seq[shared.ScoredMatchRecord]
	Teams() []int
}

// HeadToHeadRecord compares one team against another over the match numbers both have records for
type HeadToHeadRecord struct {
	Team          int
	Opponent      int
	Wins          int
	Losses        int
	Ties          int
	WinPercentage float64
	// NoData is set when the teams share no matches, WinPercentage is 0 in that case
	NoData bool
}

// Played returns the number of compared matches
func (h HeadToHeadRecord) Played() int {
	return h.Wins + h.Losses + h.Ties
}

// String formats the record as wins-losses[-ties] (pct%)
func (h HeadToHeadRecord) String() string {
	if h.NoData {
		return "no shared matches"
	}
	record := fmt.Sprintf("%d-%d", h.Wins, h.Losses)
	if h.Ties > 0 {
		record = fmt.Sprintf("%s-%d", record, h.Ties)
	}
	return fmt.Sprintf("%s (%.1f%%)", record, h.WinPercentage*100)
}

// HeadToHead compares totals for every match number both teams have a record for. When the opponent has more than
// one record for a match number the first one is used
func HeadToHead(team, opponent int, src MatchSource) HeadToHeadRecord {
	record := HeadToHeadRecord{Team: team, Opponent: opponent}
	opponentMatches := slices.Collect(src.ByTeam(opponent))

	for teamMatch := range src.ByTeam(team) {
		idx := slices.IndexFunc(opponentMatches, func(m shared.ScoredMatchRecord) bool {
			return m.MatchNumber == teamMatch.MatchNumber
		})
		if idx < 0 {
			continue
		}
		switch other := opponentMatches[idx]; {
		case teamMatch.TotalPoints > other.TotalPoints:
			record.Wins++
		case teamMatch.TotalPoints < other.TotalPoints:
			record.Losses++
		default:
			record.Ties++
		}
	}

	played := record.Played()
	if played == 0 {
		record.NoData = true
		return record
	}
	record.WinPercentage = (float64(record.Wins) + 0.5*float64(record.Ties)) / float64(played)
	return record
}

// Records holds a team's best and worst head to head records
type Records struct {
	Team  int
	Best  []HeadToHeadRecord
	Worst []HeadToHeadRecord
}

// BestAndWorstRecords computes head to head records against every other team with a shared match.
// Preconditions: Receives the team, the match source and how many records to keep (5 when n <= 0)
// Postconditions: Returns records sorted by win percentage, best descending and worst ascending. Equal percentages
// keep the order the opponents were first recorded in
func BestAndWorstRecords(team int, src MatchSource, n int) Records {
	if n <= 0 {
		n = DefaultRecordLimit
	}

	var all []HeadToHeadRecord
	for _, opponent := range src.Teams() {
		if opponent == team {
			continue
		}
		record := HeadToHead(team, opponent, src)
		if record.NoData {
			continue
		}
		all = append(all, record)
	}

	best := slices.Clone(all)
	slices.SortStableFunc(best, func(a, b HeadToHeadRecord) int {
		return cmp.Compare(b.WinPercentage, a.WinPercentage)
	})
	worst := slices.Clone(all)
	slices.SortStableFunc(worst, func(a, b HeadToHeadRecord) int {
		return cmp.Compare(a.WinPercentage, b.WinPercentage)
	})

	return Records{
		Team:  team,
		Best:  best[:min(n, len(best))],
		Worst: worst[:min(n, len(worst))],
	}
}

// RankLabels returns display ranks for an ordered list, an entry with the same percentage as the one before it
// is shown as tied (e.g. "T-2")
func RankLabels(records []HeadToHeadRecord) []string {
	labels := make([]string, len(records))
	for i, record := range records {
		labels[i] = strconv.Itoa(i + 1)
		if i > 0 && record.WinPercentage == records[i-1].WinPercentage {
			labels[i] = "T-" + labels[i]
		}
	}
	return labels
}

// Points are the four point categories, floats so averages fit
type Points struct {
	Auto    float64
	Teleop  float64
	Endgame float64
	Total   float64
}

// PointsOf returns the point categories of a scored record
func PointsOf(rec shared.ScoredMatchRecord) Points {
	return Points{
		Auto:    float64(rec.AutoPoints),
		Teleop:  float64(rec.TeleopPoints),
		Endgame: float64(rec.EndgamePoints),
		Total:   float64(rec.TotalPoints),
	}
}

// Delta is one percentage. Err is ErrDivisionByZero when the base value was zero
type Delta struct {
	Value    float64
	Decimals int
	Err      error
}

// Available reports whether the percentage could be computed
func (d Delta) Available() bool {
	return d.Err == nil
}

func (d Delta) String() string {
	if !d.Available() {
		return "not available"
	}
	return strconv.FormatFloat(d.Value, 'f', d.Decimals, 64) + "%"
}

// PercentageChanges holds a delta per point category
type PercentageChanges struct {
	Auto    Delta
	Teleop  Delta
	Endgame Delta
	Total   Delta
}

func percentDelta(start, end float64, decimals int) Delta {
	if start == 0 {
		return Delta{Decimals: decimals, Err: shared.ErrDivisionByZero}
	}
	scale := math.Pow(10, float64(decimals))
	return Delta{Value: math.Round((end-start)/start*100*scale) / scale, Decimals: decimals}
}

func percentDeltas(start, end Points, decimals int) PercentageChanges {
	return PercentageChanges{
		Auto:    percentDelta(start.Auto, end.Auto, decimals),
		Teleop:  percentDelta(start.Teleop, end.Teleop, decimals),
		Endgame: percentDelta(start.Endgame, end.Endgame, decimals),
		Total:   percentDelta(start.Total, end.Total, decimals),
	}
}

// PercentageChange returns (end - start) / start * 100 per category rounded to one decimal. A category with a zero
// start is marked not available, the others are still computed
func PercentageChange(start, end Points) PercentageChanges {
	return percentDeltas(start, end, 1)
}

// MatchChange finds a team's records for two match numbers and returns the percentage change between them
func MatchChange(team, startMatch, endMatch int, src MatchSource) (PercentageChanges, error) {
	start, ok := firstMatch(team, startMatch, src)
	if !ok {
		return PercentageChanges{}, fmt.Errorf("team %d match %d: %w", team, startMatch, shared.ErrNoMatches)
	}
	end, ok := firstMatch(team, endMatch, src)
	if !ok {
		return PercentageChanges{}, fmt.Errorf("team %d match %d: %w", team, endMatch, shared.ErrNoMatches)
	}
	return PercentageChange(PointsOf(start), PointsOf(end)), nil
}

// AggregateMode selects how a team's matches are combined for a comparison
type AggregateMode string

const (
	ModeAverage AggregateMode = "average"
	ModeTotal   AggregateMode = "total"
	ModeMatch   AggregateMode = "match"
)

// Comparison is team A against team B, Difference is B relative to A rounded to two decimals
type Comparison struct {
	TeamA    int
	TeamB    int
	Mode     AggregateMode
	A        Points
	B        Points
	MatchesA int
	MatchesB int
	// UnequalMatches warns that the teams played a different number of matches, the comparison still happened
	UnequalMatches bool
	Difference     PercentageChanges
}

// Aggregate sums or averages the point categories of a set of records
func Aggregate(records []shared.ScoredMatchRecord, mode AggregateMode) (Points, error) {
	var sum Points
	for _, rec := range records {
		p := PointsOf(rec)
		sum.Auto += p.Auto
		sum.Teleop += p.Teleop
		sum.Endgame += p.Endgame
		sum.Total += p.Total
	}

	switch mode {
	case ModeTotal:
		return sum, nil
	case ModeAverage:
		if len(records) == 0 {
			return Points{}, shared.ErrNoMatches
		}
		n := float64(len(records))
		return Points{Auto: sum.Auto / n, Teleop: sum.Teleop / n, Endgame: sum.Endgame / n, Total: sum.Total / n}, nil
	default:
		return Points{}, fmt.Errorf("unknown aggregate mode %q", mode)
	}
}

// CompareAggregate compares two teams over all of their recorded matches.
// Preconditions: Receives both team numbers, the mode (average or total) and the match source
// Postconditions: Returns the comparison, or an error wrapping ErrNoMatches if either team has no records
func CompareAggregate(teamA, teamB int, mode AggregateMode, src MatchSource) (Comparison, error) {
	matchesA := slices.Collect(src.ByTeam(teamA))
	matchesB := slices.Collect(src.ByTeam(teamB))
	if len(matchesA) == 0 {
		return Comparison{}, fmt.Errorf("team %d: %w", teamA, shared.ErrNoMatches)
	}
	if len(matchesB) == 0 {
		return Comparison{}, fmt.Errorf("team %d: %w", teamB, shared.ErrNoMatches)
	}

	a, err := Aggregate(matchesA, mode)
	if err != nil {
		return Comparison{}, err
	}
	b, err := Aggregate(matchesB, mode)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		TeamA:          teamA,
		TeamB:          teamB,
		Mode:           mode,
		A:              a,
		B:              b,
		MatchesA:       len(matchesA),
		MatchesB:       len(matchesB),
		UnequalMatches: len(matchesA) != len(matchesB),
		Difference:     percentDeltas(a, b, 2),
	}, nil
}

// CompareMatch compares two teams on one match number
func CompareMatch(teamA, teamB, match int, src MatchSource) (Comparison, error) {
	recA, ok := firstMatch(teamA, match, src)
	if !ok {
		return Comparison{}, fmt.Errorf("team %d match %d: %w", teamA, match, shared.ErrNoMatches)
	}
	recB, ok := firstMatch(teamB, match, src)
	if !ok {
		return Comparison{}, fmt.Errorf("team %d match %d: %w", teamB, match, shared.ErrNoMatches)
	}

	a, b := PointsOf(recA), PointsOf(recB)
	return Comparison{
		TeamA:      teamA,
		TeamB:      teamB,
		Mode:       ModeMatch,
		A:          a,
		B:          b,
		MatchesA:   1,
		MatchesB:   1,
		Difference: percentDeltas(a, b, 2),
	}, nil
}

// MatchPoints is one entry of a team's per match history
type MatchPoints struct {
	MatchNumber int
	Points
}

// TeamSummary returns a team's points per recorded match in insertion order
func TeamSummary(team int, src MatchSource) []MatchPoints {
	var summary []MatchPoints
	for rec := range src.ByTeam(team) {
		summary = append(summary, MatchPoints{MatchNumber: rec.MatchNumber, Points: PointsOf(rec)})
	}
	return summary
}

func firstMatch(team, match int, src MatchSource) (shared.ScoredMatchRecord, bool) {
	for rec := range src.ByTeam(team) {
		if rec.MatchNumber == match {
			return rec, true
		}
	}
	return shared.ScoredMatchRecord{}, false
}
