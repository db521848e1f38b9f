/* input_processing.go
 * Contains the logic for processing user input: event names, team numbers, match numbers and compare modes
 */

package logic

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"cyber-scout/api/external"
	"cyber-scout/api/shared"
)

// ErrUnknownEvent is returned when a query matches none of the offered events
var ErrUnknownEvent = errors.New("no event matches")

// ResolveEvent finds the event a user meant from its key or part of its name.
// Preconditions: Receives the user's query and the events that can be picked from
// Postconditions: Returns an event whose key equals the query (ignoring case), otherwise the best fuzzy match on the
// event name. An exact name match wins over better ranked partial matches. Returns ErrUnknownEvent if nothing matches
func ResolveEvent(query string, events []external.Event) (external.Event, error) {
	lowerQuery := strings.ToLower(strings.TrimSpace(query))
	if lowerQuery == "" {
		return external.Event{}, fmt.Errorf("%w: empty query", ErrUnknownEvent)
	}

	// Names are matched in lowercase, lookup maps back to the event
	lookup := make(map[string]external.Event)
	var names []string
	for _, event := range events {
		if strings.ToLower(event.Key) == lowerQuery {
			return event, nil
		}
		for _, name := range []string{event.Name, event.ShortName} {
			lower := strings.ToLower(name)
			if lower == "" {
				continue
			}
			if _, ok := lookup[lower]; ok {
				continue
			}
			lookup[lower] = event
			names = append(names, lower)
		}
	}

	fuzzyResults := fuzzy.RankFind(lowerQuery, names)
	if len(fuzzyResults) == 0 {
		return external.Event{}, fmt.Errorf("%w %q", ErrUnknownEvent, query)
	}
	for _, result := range fuzzyResults {
		if result.Target == lowerQuery {
			return lookup[result.Target], nil
		}
	}
	// If no exact match was found, take the best ranked match
	sort.Sort(fuzzyResults)
	return lookup[fuzzyResults[0].Target], nil
}

// ParseTeamNumber reads a team number as typed by a user, either 4481 or frc4481
func ParseTeamNumber(s string) (int, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "frc")
	team, err := strconv.Atoi(s)
	if err != nil {
		return 0, shared.InvalidField("teamNumber", fmt.Sprintf("%q is not a number", s))
	}
	if team < 1 || team > shared.MaxTeamNumber {
		return 0, shared.InvalidField("teamNumber", fmt.Sprintf("%d is outside 1..%d", team, shared.MaxTeamNumber))
	}
	return team, nil
}

// ParseMatchNumber reads a qualification match number, either 12 or qm12
func ParseMatchNumber(s string) (int, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "qm")
	match, err := strconv.Atoi(s)
	if err != nil {
		return 0, shared.InvalidField("matchNumber", fmt.Sprintf("%q is not a number", s))
	}
	if match < 1 || match > shared.MaxMatchNumber {
		return 0, shared.InvalidField("matchNumber", fmt.Sprintf("%d is outside 1..%d", match, shared.MaxMatchNumber))
	}
	return match, nil
}

// ParseAggregateMode reads a compare mode, an empty string is average
func ParseAggregateMode(s string) (AggregateMode, error) {
	switch mode := AggregateMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return ModeAverage, nil
	case ModeAverage, ModeTotal:
		return mode, nil
	default:
		return "", fmt.Errorf("unknown compare mode %q, use average or total", s)
	}
}
