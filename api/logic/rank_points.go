/* rank_points.go
 * Contains the ranking point evaluation: match result, auto bonus, coral bonus (with coopertition) and barge bonus
 */

package logic

import "cyber-scout/api/shared"

// Evaluate computes the ranking point breakdown for a record from scratch.
// Preconditions: Receives a record that has passed Validate
// Postconditions: Returns the breakdown, Total is always within 0..6 for a valid rubric
func (r Rubric) Evaluate(raw shared.RawMatchRecord) shared.RankPointBreakdown {
	var rp shared.RankPointBreakdown

	switch raw.MatchResult {
	case shared.ResultWin:
		rp.MatchResultPoints = r.WinPoints
	case shared.ResultTie:
		rp.MatchResultPoints = r.TiePoints
	}

	if r.autoQualifies(raw) {
		rp.AutoBonus = 1
	}
	if r.coralQualifies(raw) {
		rp.CoralBonus = 1
	}
	if r.bargeQualifies(raw) {
		rp.BargeBonus = 1
	}

	rp.Total = rp.MatchResultPoints + rp.AutoBonus + rp.CoralBonus + rp.BargeBonus
	return rp
}

func (r Rubric) autoQualifies(raw shared.RawMatchRecord) bool {
	if !raw.MovedInAuto {
		return false
	}
	switch r.AutoRule {
	case AutoRuleCoralAndMoved:
		return raw.AutoCoral.Total() >= 1
	default:
		return raw.OtherAllianceMembersMoved == 2
	}
}

// Coopertition is at least the minimum algae in the processor in both periods
func (r Rubric) coopertition(raw shared.RawMatchRecord) bool {
	return raw.AutoAlgaeProcessor >= r.CoopertitionProcessorMin && raw.TeleopAlgaeProcessor >= r.CoopertitionProcessorMin
}

func (r Rubric) coralQualifies(raw shared.RawMatchRecord) bool {
	levelsAtTarget := 0
	for level := range raw.AutoCoral {
		if raw.AutoCoral[level]+raw.TeleopCoral[level] >= r.CoralLevelTarget {
			levelsAtTarget++
		}
	}

	if r.coopertition(raw) {
		return levelsAtTarget >= r.CoopertitionLevelsRequired
	}
	return levelsAtTarget >= r.CoralLevelsRequired
}

func (r Rubric) bargeQualifies(raw shared.RawMatchRecord) bool {
	points := AlgaePoints(raw.AutoAlgaeProcessor+raw.TeleopAlgaeProcessor, raw.AutoAlgaeNet+raw.TeleopAlgaeNet)
	return points >= r.BargeThreshold
}
