/* errors.go
 * Sentinel errors shared by the scoring, aggregation and import code
 */

package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is returned for negative counts, out of range identifiers or unknown enum values
	ErrInvalidRecord = errors.New("invalid match record")
	// ErrDivisionByZero marks a percentage that is not available because its base is zero
	ErrDivisionByZero = errors.New("not available: start value is zero")
	// ErrNoSharedData marks a head to head record between teams that never played the same match
	ErrNoSharedData = errors.New("no shared matches")
	// ErrNoMatches is returned when a comparison needs matches for a team that has none
	ErrNoMatches = errors.New("no matches recorded for team")
	// ErrImportParse wraps a malformed import row
	ErrImportParse = errors.New("import parse failure")
)

func invalid(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidRecord, field, reason)
}

// InvalidField builds an ErrInvalidRecord error for a named field. Used by packages that validate their own input
func InvalidField(field string, reason string) error {
	return invalid(field, reason)
}
