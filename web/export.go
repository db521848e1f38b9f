/* export.go
 * Contains the endpoint the scouting spreadsheet pulls flat rows from
 */

package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"cyber-scout/api/logic"
)

// ExportHandler serves GET /export/{team}.tsv with a header line and one flat row per record. all.tsv returns
// every team
func (s *Server) ExportHandler(w http.ResponseWriter, r *http.Request) {
	name, ok := strings.CutSuffix(r.PathValue("file"), ".tsv")
	if !ok || s.api == nil {
		http.NotFound(w, r)
		return
	}

	team := 0
	if name != "all" {
		var err error
		if team, err = logic.ParseTeamNumber(name); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var buf bytes.Buffer
	if err := s.api.ExportTSV(&buf, team); err != nil {
		s.logger.Error("export failed", "team", team, "error", err)
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".tsv"))
	w.Write(buf.Bytes())
}
