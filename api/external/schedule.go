/* schedule.go
 * Contains the event schedule built from an event's TBA matches. Only qualification matches are indexed, they are
 * the ones a scout records by match number
 */

package external

import (
	"slices"
	"sync"

	"cyber-scout/api/shared"
)

const qualificationLevel = "qm"

// EventSchedule indexes an event's qualification matches by match number. Safe for concurrent use, webhooks
// update it while commands read it
type EventSchedule struct {
	EventKey string

	mu      sync.RWMutex
	matches map[int]Match
}

// NewEventSchedule builds a schedule from the matches returned for an event. Playoff matches are dropped
func NewEventSchedule(eventKey string, matches []Match) *EventSchedule {
	s := &EventSchedule{EventKey: eventKey, matches: make(map[int]Match)}
	for _, m := range matches {
		if m.CompLevel != qualificationLevel {
			continue
		}
		s.matches[m.MatchNumber] = m
	}
	return s
}

// Len returns the number of qualification matches
func (s *EventSchedule) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matches)
}

// Matches returns the indexed matches ordered by match number
func (s *EventSchedule) Matches() []Match {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := make([]Match, 0, len(s.matches))
	for _, m := range s.matches {
		matches = append(matches, m)
	}
	slices.SortFunc(matches, func(a, b Match) int { return a.MatchNumber - b.MatchNumber })
	return matches
}

// Update replaces one match, e.g. when a score arrives by webhook
func (s *EventSchedule) Update(m Match) {
	if m.CompLevel != qualificationLevel {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches[m.MatchNumber] = m
}

// slot finds the team in a match, returning the alliance colour and 1-based station. Callers hold mu
func (s *EventSchedule) slot(team, match int) (string, int, bool) {
	m, ok := s.matches[match]
	if !ok {
		return "", 0, false
	}
	key := TeamKey(team)
	if i := slices.Index(m.Alliances.Red.TeamKeys, key); i >= 0 {
		return "red", i + 1, true
	}
	if i := slices.Index(m.Alliances.Blue.TeamKeys, key); i >= 0 {
		return "blue", i + 1, true
	}
	return "", 0, false
}

// IsScheduled reports whether the team plays in the qualification match
func (s *EventSchedule) IsScheduled(team, match int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, _, ok := s.slot(team, match)
	return ok
}

// TeamSlot returns the driver station the team is assigned to, e.g. red2
func (s *EventSchedule) TeamSlot(team, match int) (shared.StartingPosition, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	colour, station, ok := s.slot(team, match)
	if !ok || station > 3 {
		return shared.PositionUnset, false
	}
	position := shared.StartingPosition(colour + string(rune('0'+station)))
	return position, position.Valid()
}

// AllianceResult returns the team's alliance score against the other alliance.
// Preconditions: Receives the team and qualification match number
// Postconditions: Returns the outcome, or false when the team isn't in the match or it hasn't been played
func (s *EventSchedule) AllianceResult(team, match int) (AllianceOutcome, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	colour, _, ok := s.slot(team, match)
	if !ok {
		return AllianceOutcome{}, false
	}
	m := s.matches[match]
	if !m.Played() {
		return AllianceOutcome{}, false
	}

	own, other := m.Alliances.Red, m.Alliances.Blue
	if colour == "blue" {
		own, other = other, own
	}
	outcome := AllianceOutcome{Alliance: colour, Score: own.Score, OpponentScore: other.Score}

	if m.ScoreBreakdown != nil {
		if colour == "red" {
			outcome.RankPoints = m.ScoreBreakdown.Red.RP
		} else {
			outcome.RankPoints = m.ScoreBreakdown.Blue.RP
		}
	}

	switch {
	case own.Score > other.Score:
		outcome.Result = shared.ResultWin
	case own.Score < other.Score:
		outcome.Result = shared.ResultLoss
	default:
		outcome.Result = shared.ResultTie
	}
	return outcome, true
}

var _ ScheduleLookup = (*EventSchedule)(nil)
