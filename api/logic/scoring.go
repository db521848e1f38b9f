/* scoring.go
 * Contains the 2025 point tables and the pure functions that turn per period tallies into points.
 * Inputs are assumed non-negative, the scorer validates records before calling these
 */

package logic

import (
	"fmt"

	"cyber-scout/api/shared"
)

// Point values per coral level, index 0 is L1
var (
	AutoCoralValues   = [4]int{3, 4, 6, 7}
	TeleopCoralValues = [4]int{2, 3, 4, 5}
)

const (
	ProcessorValue      = 6
	NetValue            = 4
	HumanPlayerNetValue = 4
)

var endgameValues = map[shared.EndgamePosition]int{
	shared.EndgameUnset:   0,
	shared.EndgameNone:    0,
	shared.EndgamePark:    2,
	shared.EndgameShallow: 6,
	shared.EndgameDeep:    12,
}

// AutoCoralPoints returns the autonomous coral points for counts on L1..L4
func AutoCoralPoints(l1, l2, l3, l4 int) int {
	return coralPoints(AutoCoralValues, l1, l2, l3, l4)
}

// TeleopCoralPoints returns the teleop coral points for counts on L1..L4
func TeleopCoralPoints(l1, l2, l3, l4 int) int {
	return coralPoints(TeleopCoralValues, l1, l2, l3, l4)
}

func coralPoints(values [4]int, l1, l2, l3, l4 int) int {
	return values[0]*l1 + values[1]*l2 + values[2]*l3 + values[3]*l4
}

// AlgaePoints is the same in auto and teleop, so counts from both periods can be combined
func AlgaePoints(processor, net int) int {
	return ProcessorValue*processor + NetValue*net
}

// EndgamePoints returns the points for where the robot finished.
// Preconditions: Receives an endgame position
// Postconditions: Returns the points, or an error wrapping ErrInvalidRecord for an unknown position
func EndgamePoints(position shared.EndgamePosition) (int, error) {
	points, ok := endgameValues[position]
	if !ok {
		return 0, shared.InvalidField("endgamePosition", fmt.Sprintf("unknown value %q", position))
	}
	return points, nil
}

// HumanPlayerNetPoints only counts made shots, misses never subtract
func HumanPlayerNetPoints(count int) int {
	return HumanPlayerNetValue * count
}
