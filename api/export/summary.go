/* summary.go
 * Contains the per team summary export: one line per recorded match with its point categories
 */

package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"cyber-scout/api/flatrow"
	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
)

var summaryHeader = []string{"Match", "Auto", "Teleop", "Endgame", "Total"}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteSummaryCSV writes Match,Auto,Teleop,Endgame,Total for each entry
func WriteSummaryCSV(w io.Writer, summary []logic.MatchPoints) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(summaryHeader); err != nil {
		return err
	}
	for _, entry := range summary {
		if err := cw.Write([]string{
			strconv.Itoa(entry.MatchNumber),
			formatPoints(entry.Auto),
			formatPoints(entry.Teleop),
			formatPoints(entry.Endgame),
			formatPoints(entry.Total),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTSV writes a header line then one flat row per record
func WriteTSV(w io.Writer, records []shared.ScoredMatchRecord) error {
	var b strings.Builder
	b.WriteString(flatrow.Header())
	b.WriteByte('\n')
	for _, rec := range records {
		b.WriteString(flatrow.Encode(rec))
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}
