/* server_test.go
 * Contains unit tests for models.go and export.go
 */

package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyber-scout/api/flatrow"
	"cyber-scout/api/shared"
)

func get(s *Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

// region Server tests

func TestNewServer_Defaults(t *testing.T) {
	s := NewServer(Config{Addr: ":8080"})
	assert.NotNil(t, s.logger)
	assert.Nil(t, s.api)
	assert.Empty(t, s.secret)
}

func TestRoutes_Healthz(t *testing.T) {
	s := NewServer(Config{})
	assert.Equal(t, http.StatusOK, get(s, "/healthz").Code)
}

func TestRoutes_Metrics(t *testing.T) {
	s, _, _ := newTestServer(t, "")
	post(s, `{"message_type":"ping","message_data":{}}`, nil)

	rec := get(s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `scout_tba_webhooks_total{type="ping"} 1`)
}

func TestRoutes_NoMetricsWithoutAPI(t *testing.T) {
	s := NewServer(Config{})
	assert.Equal(t, http.StatusNotFound, get(s, "/metrics").Code)
}

// endregion

// region ExportHandler tests

func TestExportHandler(t *testing.T) {
	s, a, _ := newTestServer(t, "")
	for _, team := range []int{4481, 254} {
		_, err := a.SubmitMatch(t.Context(), shared.User{Username: "scout"}, shared.RawMatchRecord{TeamNumber: team, MatchNumber: 1})
		require.NoError(t, err)
	}

	rec := get(s, "/export/4481.tsv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/tab-separated-values; charset=utf-8", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, flatrow.Header(), lines[0])

	result := flatrow.ParseRows(rec.Body.String())
	require.Len(t, result.Records, 1)
	assert.Equal(t, 4481, result.Records[0].TeamNumber)

	rec = get(s, "/export/all.tsv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, strings.Split(strings.TrimSpace(rec.Body.String()), "\n"), 3)
}

func TestExportHandler_BadPaths(t *testing.T) {
	s, _, _ := newTestServer(t, "")
	assert.Equal(t, http.StatusNotFound, get(s, "/export/4481.csv").Code)
	assert.Equal(t, http.StatusBadRequest, get(s, "/export/team.tsv").Code)

	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export/4481.tsv", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// endregion
