/* tba_test.go
 * Contains unit tests for tba.go functions
 */

package web

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cyber-scout/api/api"
	"cyber-scout/api/external"
	"cyber-scout/api/shared"
)

const testEventKey = "2025nhsal"

func testMatches() []external.Match {
	return []external.Match{
		{
			Key: testEventKey + "_qm1", EventKey: testEventKey, CompLevel: "qm", MatchNumber: 1,
			Alliances: external.Alliances{
				Red:  external.Alliance{Score: -1, TeamKeys: []string{"frc4481", "frc254", "frc1678"}},
				Blue: external.Alliance{Score: -1, TeamKeys: []string{"frc118", "frc971", "frc2056"}},
			},
		},
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestServer returns a server over an API with the test event loaded
func newTestServer(t *testing.T, secret string) (*Server, *api.API, *api.MockTBA) {
	t.Helper()
	mockTBA := api.NewMockTBA()
	mockTBA.MatchesByEvent[testEventKey] = testMatches()
	a := api.NewAPI(api.Options{
		Store:   api.NewMockStore(testEventKey),
		TBA:     mockTBA,
		Metrics: api.NewMetrics(),
		Logger:  quietLogger(),
	})
	require.NoError(t, a.LoadEvent(t.Context(), external.Event{Key: testEventKey}))
	return NewServer(Config{API: a, WebhookSecret: secret, Logger: quietLogger()}), a, mockTBA
}

func post(s *Server, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/tba", bytes.NewBufferString(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

const matchScoreBody = `{
	"message_type": "match_score",
	"message_data": {
		"event_key": "2025nhsal",
		"match_key": "2025nhsal_qm1",
		"event_name": "Granite State",
		"match": {
			"key": "2025nhsal_qm1",
			"comp_level": "qm",
			"match_number": 1,
			"alliances": {
				"red": {"score": 101, "team_keys": ["frc4481", "frc254", "frc1678"]},
				"blue": {"score": 87, "team_keys": ["frc118", "frc971", "frc2056"]}
			},
			"score_breakdown": {"red": {"rp": 5}, "blue": {"rp": 0}}
		}
	}
}`

// region signature tests

func TestValidSignature(t *testing.T) {
	body := []byte(`{"message_type":"ping"}`)
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(body)
	signature := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, validSignature("secret", body, signature))
	assert.False(t, validSignature("other", body, signature))
	assert.False(t, validSignature("secret", body, ""))
}

// endregion

// region TBAWebhookHandler tests

func TestTBAWebhookHandler_WrongMethod(t *testing.T) {
	s, _, _ := newTestServer(t, "")
	req := httptest.NewRequest(http.MethodGet, "/webhooks/tba", nil)
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestTBAWebhookHandler_BadJSON(t *testing.T) {
	s, _, _ := newTestServer(t, "")
	assert.Equal(t, http.StatusBadRequest, post(s, "{not json", nil).Code)
	assert.Equal(t, http.StatusBadRequest, post(s, `{"message_data": {}}`, nil).Code)
}

func TestTBAWebhookHandler_Signature(t *testing.T) {
	s, _, _ := newTestServer(t, "secret")
	body := `{"message_type":"ping","message_data":{}}`

	assert.Equal(t, http.StatusUnauthorized, post(s, body, map[string]string{"X-TBA-HMAC": "deadbeef"}).Code)

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte(body))
	rec := post(s, body, map[string]string{"X-TBA-HMAC": hex.EncodeToString(mac.Sum(nil))})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTBAWebhookHandler_Verification(t *testing.T) {
	s, a, _ := newTestServer(t, "")
	rec := post(s, `{"message_type":"verification","message_data":{"verification_key":"abc123"}}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Metrics.Webhooks.WithLabelValues(external.WebhookVerification)))
}

func TestTBAWebhookHandler_MatchScore(t *testing.T) {
	s, a, _ := newTestServer(t, "")
	_, played := a.Schedule().AllianceResult(4481, 1)
	require.False(t, played)

	rec := post(s, matchScoreBody, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	outcome, ok := a.Schedule().AllianceResult(4481, 1)
	require.True(t, ok)
	assert.Equal(t, shared.ResultWin, outcome.Result)
	require.NotNil(t, outcome.RankPoints)
	assert.Equal(t, 5, *outcome.RankPoints)

	// A submission for the match now picks up the result
	scored, err := a.SubmitMatch(t.Context(), shared.User{Username: "scout"}, shared.RawMatchRecord{TeamNumber: 4481, MatchNumber: 1})
	require.NoError(t, err)
	assert.Equal(t, shared.ResultWin, scored.MatchResult)
}

func TestTBAWebhookHandler_MatchScoreWithoutMatch(t *testing.T) {
	s, _, _ := newTestServer(t, "")
	rec := post(s, `{"message_type":"match_score","message_data":{"event_key":"2025nhsal"}}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTBAWebhookHandler_ScheduleUpdated(t *testing.T) {
	s, a, mockTBA := newTestServer(t, "")
	calls := mockTBA.MatchCalls
	mockTBA.MatchesByEvent[testEventKey] = append(testMatches(), external.Match{
		Key: testEventKey + "_qm2", EventKey: testEventKey, CompLevel: "qm", MatchNumber: 2,
	})

	rec := post(s, `{"message_type":"schedule_updated","message_data":{"event_key":"2025nhsal"}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s.Wait()

	assert.Equal(t, calls+1, mockTBA.MatchCalls)
	assert.Equal(t, 2, a.Schedule().Len())
}

func TestTBAWebhookHandler_ScheduleUpdatedOtherEvent(t *testing.T) {
	s, _, mockTBA := newTestServer(t, "")
	calls := mockTBA.MatchCalls

	rec := post(s, `{"message_type":"schedule_updated","message_data":{"event_key":"2025mabos"}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s.Wait()
	assert.Equal(t, calls, mockTBA.MatchCalls)
}

func TestTBAWebhookHandler_RefreshFailureIsLogged(t *testing.T) {
	s, a, mockTBA := newTestServer(t, "")
	mockTBA.EventMatchesError = errors.New("503")

	rec := post(s, `{"message_type":"schedule_updated","message_data":{"event_key":"2025nhsal"}}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	s.Wait()
	assert.Equal(t, 1, a.Schedule().Len())
}

func TestTBAWebhookHandler_UnknownType(t *testing.T) {
	s, _, _ := newTestServer(t, "")
	rec := post(s, `{"message_type":"upcoming_match","message_data":{}}`, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// endregion
