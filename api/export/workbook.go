/* workbook.go
 * Contains the xlsx workbook the scouting spreadsheet imports. The Matches sheet uses the flat row schema so a
 * workbook can be read back in, the Teams sheet holds per team averages
 */

package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"cyber-scout/api/flatrow"
	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
)

const (
	MatchesSheet = "Matches"
	TeamsSheet   = "Teams"
)

var teamHeader = []any{"Team", "Matches", "Avg Auto", "Avg Teleop", "Avg Endgame", "Avg Total", "Avg RP"}

// cellValue keeps numbers numeric in the sheet
func cellValue(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return s
}

func toRow[T any](values []T, convert func(T) any) []any {
	row := make([]any, len(values))
	for i, v := range values {
		row[i] = convert(v)
	}
	return row
}

// WriteWorkbook writes the records as an xlsx workbook.
// Preconditions: Receives the records in the order they should appear and the writer to write the file to
// Postconditions: Writes a workbook with a Matches sheet (one flat row per record) and a Teams sheet (one row per
// team in first recorded order), or returns an error if the workbook can't be built or written
func WriteWorkbook(w io.Writer, records []shared.ScoredMatchRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", MatchesSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	header := toRow(flatrow.Fields, func(s string) any { return s })
	if err := f.SetSheetRow(MatchesSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := toRow(flatrow.ToFlatRow(rec), cellValue)
		if err := f.SetSheetRow(MatchesSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(TeamsSheet); err != nil {
		return fmt.Errorf("failed to create teams sheet: %w", err)
	}
	if err := f.SetSheetRow(TeamsSheet, "A1", &teamHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, team := range teamAverages(records) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{team.team, team.matches, team.points.Auto, team.points.Teleop, team.points.Endgame,
			team.points.Total, team.rankPoints}
		if err := f.SetSheetRow(TeamsSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write team %d: %w", team.team, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type teamAverage struct {
	team       int
	matches    int
	points     logic.Points
	rankPoints float64
}

func teamAverages(records []shared.ScoredMatchRecord) []teamAverage {
	var order []int
	byTeam := make(map[int][]shared.ScoredMatchRecord)
	for _, rec := range records {
		if _, ok := byTeam[rec.TeamNumber]; !ok {
			order = append(order, rec.TeamNumber)
		}
		byTeam[rec.TeamNumber] = append(byTeam[rec.TeamNumber], rec)
	}

	averages := make([]teamAverage, 0, len(order))
	for _, team := range order {
		matches := byTeam[team]
		points, err := logic.Aggregate(matches, logic.ModeAverage)
		if err != nil {
			continue
		}
		rp := 0
		for _, m := range matches {
			rp += m.RankPoints.Total
		}
		averages = append(averages, teamAverage{
			team:       team,
			matches:    len(matches),
			points:     points,
			rankPoints: float64(rp) / float64(len(matches)),
		})
	}
	return averages
}

// ReadWorkbook reads records back from the Matches sheet, or the first sheet if there is none
// Preconditions: Receives a reader over an xlsx file
// Postconditions: Returns the parsed rows with per row errors, or an error if the file can't be opened
func ReadWorkbook(r io.Reader) (flatrow.ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return flatrow.ImportResult{}, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return flatrow.ImportResult{}, fmt.Errorf("XLSX file has no sheets")
	}
	sheetName := sheets[0]
	for _, name := range sheets {
		if name == MatchesSheet {
			sheetName = name
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return flatrow.ImportResult{}, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	return flatrow.ParseTable(rows), nil
}
