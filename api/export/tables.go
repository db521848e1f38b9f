/* tables.go
 * Contains the plain text tables shown by the bot (inside code blocks) and the CLI
 */

package export

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
)

func newTable(header table.Row) table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	// footers carry sentences such as the unequal matches warning
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(header)
	return tbl
}

// RecordsTable renders a team's best and worst head to head records with display ranks
func RecordsTable(records logic.Records) string {
	render := func(title string, rows []logic.HeadToHeadRecord) string {
		tbl := newTable(table.Row{"Rank", "Opponent", "W", "L", "T", "Win %"})
		tbl.SetTitle(title)
		labels := logic.RankLabels(rows)
		for i, r := range rows {
			tbl.AppendRow(table.Row{labels[i], r.Opponent, r.Wins, r.Losses, r.Ties, fmt.Sprintf("%.1f", r.WinPercentage*100)})
		}
		return tbl.Render()
	}
	return render(fmt.Sprintf("Best records for %d", records.Team), records.Best) + "\n" +
		render(fmt.Sprintf("Worst records for %d", records.Team), records.Worst)
}

// ScoredTable renders one line per scored record
func ScoredTable(records []shared.ScoredMatchRecord) string {
	tbl := newTable(table.Row{"Team", "Match", "Auto", "Teleop", "Endgame", "Total", "RP"})
	for _, rec := range records {
		tbl.AppendRow(table.Row{rec.TeamNumber, rec.MatchNumber, rec.AutoPoints, rec.TeleopPoints, rec.EndgamePoints,
			rec.TotalPoints, rec.RankPoints.Total})
	}
	tbl.AppendFooter(table.Row{fmt.Sprintf("%d records", len(records))})
	return tbl.Render()
}

// ComparisonTable renders two teams side by side with the percentage difference of the second team
func ComparisonTable(c logic.Comparison) string {
	tbl := newTable(table.Row{"", strconv.Itoa(c.TeamA), strconv.Itoa(c.TeamB), "Difference"})
	tbl.SetTitle(comparisonTitle(c))
	tbl.AppendRows([]table.Row{
		{"Auto", formatPoints(c.A.Auto), formatPoints(c.B.Auto), c.Difference.Auto.String()},
		{"Teleop", formatPoints(c.A.Teleop), formatPoints(c.B.Teleop), c.Difference.Teleop.String()},
		{"Endgame", formatPoints(c.A.Endgame), formatPoints(c.B.Endgame), c.Difference.Endgame.String()},
		{"Total", formatPoints(c.A.Total), formatPoints(c.B.Total), c.Difference.Total.String()},
	})
	if c.UnequalMatches {
		tbl.AppendFooter(table.Row{fmt.Sprintf("%d has %d matches, %d has %d", c.TeamA, c.MatchesA, c.TeamB, c.MatchesB)})
	}
	return tbl.Render()
}

func comparisonTitle(c logic.Comparison) string {
	switch c.Mode {
	case logic.ModeMatch:
		return "Single match"
	case logic.ModeTotal:
		return "Total points"
	default:
		return "Average points"
	}
}

// ChangeTable renders the percentage change of a team between two matches
func ChangeTable(team, startMatch, endMatch int, change logic.PercentageChanges) string {
	tbl := newTable(table.Row{"", "Change"})
	tbl.SetTitle(fmt.Sprintf("%d: match %d to %d", team, startMatch, endMatch))
	tbl.AppendRows([]table.Row{
		{"Auto", change.Auto.String()},
		{"Teleop", change.Teleop.String()},
		{"Endgame", change.Endgame.String()},
		{"Total", change.Total.String()},
	})
	return tbl.Render()
}

// SummaryTable renders a team's points per match
func SummaryTable(summary []logic.MatchPoints) string {
	tbl := newTable(table.Row{"Match", "Auto", "Teleop", "Endgame", "Total"})
	for _, entry := range summary {
		tbl.AppendRow(table.Row{entry.MatchNumber, formatPoints(entry.Auto), formatPoints(entry.Teleop),
			formatPoints(entry.Endgame), formatPoints(entry.Total)})
	}
	return tbl.Render()
}
