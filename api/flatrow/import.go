/* import.go
 * Contains bulk import of flat rows pasted from the spreadsheet. Each line is split on its own delimiter and a bad
 * line is reported without stopping the rest of the import
 */

package flatrow

import (
	"fmt"
	"strings"

	"github.com/go-andiamo/splitter"

	"cyber-scout/api/shared"
)

var (
	tabSplitter   = mustSplitter('\t')
	commaSplitter = mustSplitter(',')
)

func mustSplitter(separator rune) splitter.Splitter {
	s, err := splitter.NewSplitter(separator, splitter.DoubleQuotesDoubleEscaped)
	if err != nil {
		panic(err)
	}
	return s
}

// RowError is a failure for one line of an import. Row is 1-based and counts every line of the input
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// ImportResult holds the rows that parsed and the rows that did not. Rows[i] is the row Records[i] came from
type ImportResult struct {
	Records []shared.RawMatchRecord
	Rows    []int
	Errors  []RowError
}

// unquote removes the enclosing double quotes from a cell and collapses escaped quotes
func unquote(cell string) string {
	cell = strings.TrimSpace(cell)
	if len(cell) >= 2 && strings.HasPrefix(cell, `"`) && strings.HasSuffix(cell, `"`) {
		cell = strings.ReplaceAll(cell[1:len(cell)-1], `""`, `"`)
	}
	return cell
}

// SplitRow splits one line into cells. A line with a tab in it is tab separated, anything else is comma separated.
// Cells wrapped in double quotes may contain the delimiter, a quote inside them is written twice
func SplitRow(line string) ([]string, error) {
	s := commaSplitter
	if strings.Contains(line, "\t") {
		s = tabSplitter
	}
	parts, err := s.Split(line)
	if err != nil {
		return nil, err
	}
	for i, part := range parts {
		parts[i] = unquote(part)
	}
	return parts, nil
}

func isHeader(fields []string) bool {
	return len(fields) > 0 && strings.EqualFold(fields[0], Fields[0])
}

// add parses one row of values into the result
func (r *ImportResult) add(row int, fields []string) {
	if isHeader(fields) {
		return
	}
	raw, err := FromFlatRow(fields)
	if err != nil {
		r.Errors = append(r.Errors, RowError{Row: row, Err: fmt.Errorf("%w: %w", shared.ErrImportParse, err)})
		return
	}
	r.Records = append(r.Records, raw)
	r.Rows = append(r.Rows, row)
}

// ParseRows parses a block of text with one record per line.
// Preconditions: Receives the pasted text, blank lines and a header line are skipped
// Postconditions: Returns every valid record in order, and one RowError wrapping ErrImportParse per bad line
func ParseRows(text string) ImportResult {
	var result ImportResult
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	for i, line := range lines {
		row := i + 1
		if strings.TrimSpace(line) == "" {
			continue
		}

		fields, err := SplitRow(line)
		if err != nil {
			result.Errors = append(result.Errors, RowError{Row: row, Err: fmt.Errorf("%w: %w", shared.ErrImportParse, err)})
			continue
		}
		result.add(row, fields)
	}
	return result
}

// ParseTable parses rows that are already split into cells, e.g. from a spreadsheet. Rows shorter than the
// schema are padded with empty cells since spreadsheet readers drop trailing blanks
func ParseTable(rows [][]string) ImportResult {
	var result ImportResult
	for i, cells := range rows {
		if len(cells) == 0 {
			continue
		}
		if len(cells) < Width {
			padded := make([]string, Width)
			copy(padded, cells)
			cells = padded
		}
		result.add(i+1, cells)
	}
	return result
}
