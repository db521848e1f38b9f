/* utils.go
 * Utility functions used by the command line tools
 */

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cyber-scout/api/api"
	"cyber-scout/api/flatrow"
	"cyber-scout/api/logic"
	"cyber-scout/api/shared"
)

// records imported from the command line are attributed to this user
var cliUser = shared.User{UserID: "cli", Username: "cli"}

// isWorkbook reports whether a path names an Excel workbook rather than a text export
func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

// importFile scores every row of a TSV, CSV or xlsx file into the API
// Preconditions: Receives a context, the API and the file path
// Postconditions: Returns the import summary, or an error if the file can't be read or no row was accepted
func importFile(ctx context.Context, a *api.API, path string) (api.ImportSummary, error) {
	if path == "" {
		return api.ImportSummary{}, fmt.Errorf("an input file is required")
	}

	var summary api.ImportSummary
	if isWorkbook(path) {
		f, err := os.Open(path)
		if err != nil {
			return api.ImportSummary{}, err
		}
		defer f.Close()
		if summary, err = a.ImportWorkbook(ctx, cliUser, f); err != nil {
			return api.ImportSummary{}, err
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return api.ImportSummary{}, err
		}
		summary = a.ImportRows(ctx, cliUser, string(data))
	}

	if len(summary.Accepted) == 0 {
		if len(summary.Errors) > 0 {
			return summary, fmt.Errorf("no rows imported from %s:\n%s", path, formatRowErrors(summary.Errors, 0))
		}
		return summary, fmt.Errorf("no rows imported from %s: %w", path, shared.ErrNoMatches)
	}
	return summary, nil
}

// parseTeamArg reads the team argument of a command
func parseTeamArg(s string) (int, error) {
	if s == "" {
		return 0, fmt.Errorf("a team number is required")
	}
	return logic.ParseTeamNumber(s)
}

// formatRowErrors lists row errors one per line. limit <= 0 lists them all
func formatRowErrors(rowErrors []flatrow.RowError, limit int) string {
	var sb strings.Builder
	for i, rowErr := range rowErrors {
		if i > 0 {
			sb.WriteString("\n")
		}
		if limit > 0 && i == limit {
			fmt.Fprintf(&sb, "...and %d more", len(rowErrors)-limit)
			break
		}
		sb.WriteString(rowErr.Error())
	}
	return sb.String()
}

// writeFile creates path and passes it to write, the file is removed if write fails
func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
