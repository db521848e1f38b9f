/* external_test.go
 * Contains unit tests for the TBA client in external.go using httptest
 */

package external

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient("test-key",
		WithBaseURL(server.URL),
		WithRateLimit(1000, 10),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

// region request tests

func TestClient_SendsAuthHeader(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("X-TBA-Auth-Key"))
		assert.Equal(t, "/districts/2025", r.URL.Path)
		w.Write([]byte(`[{"abbreviation":"ne","display_name":"New England","key":"2025ne","year":2025}]`))
	})

	districts, err := client.Districts(context.Background(), 2025)

	require.NoError(t, err)
	require.Len(t, districts, 1)
	assert.Equal(t, "2025ne", districts[0].Key)
	assert.Equal(t, "New England", districts[0].DisplayName)
}

func TestClient_GzipResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "gzip", r.Header.Get("Accept-Encoding"))

		var buf bytes.Buffer
		gzWriter := gzip.NewWriter(&buf)
		gzWriter.Write([]byte(`[{"key":"2025nhsal","name":"NE District Salem Event","start_date":"2025-03-07"}]`))
		gzWriter.Close()

		w.Header().Set("Content-Encoding", "gzip")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	})

	events, err := client.DistrictEvents(context.Background(), "2025ne")

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025nhsal", events[0].Key)
}

func TestClient_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	events, err := client.EventMatches(context.Background(), "2025nhsal")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Nil(t, events)
}

func TestClient_InvalidJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := client.Match(context.Background(), "2025nhsal_qm1")

	assert.Error(t, err)
}

func TestClient_MissingKeyDegrades(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()
	client := NewClient("", WithBaseURL(server.URL), WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	districts, err := client.Districts(context.Background(), 2025)
	assert.NoError(t, err)
	assert.Empty(t, districts)

	_, err = client.Match(context.Background(), "2025nhsal_qm1")
	assert.ErrorIs(t, err, ErrNoAPIKey)
	assert.False(t, called)
	assert.False(t, client.HasKey())
}

func TestClient_CancelledContext(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.EventMatches(ctx, "2025nhsal")

	assert.Error(t, err)
}

// endregion

// region TeamEvents tests

func TestTeamEvents_MostRecentThree(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/team/frc4481/events/2025", r.URL.Path)
		w.Write([]byte(`[
			{"key":"2025a","start_date":"2025-02-01"},
			{"key":"2025d","start_date":"2025-04-01"},
			{"key":"2025b","start_date":"2025-03-01"},
			{"key":"2025c","start_date":"2025-03-15"}
		]`))
	})

	events, err := client.TeamEvents(context.Background(), 4481, 2025)

	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "2025d", events[0].Key)
	assert.Equal(t, "2025c", events[1].Key)
	assert.Equal(t, "2025b", events[2].Key)
}

func TestTeamEvents_FewerThanLimit(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"key":"2025a","start_date":"2025-02-01"}]`))
	})

	events, err := client.TeamEvents(context.Background(), 4481, 2025)

	require.NoError(t, err)
	assert.Len(t, events, 1)
}

// endregion

// region models tests

func TestTeamKeyAndNumber(t *testing.T) {
	assert.Equal(t, "frc4481", TeamKey(4481))

	n, ok := TeamNumber("frc4481")
	assert.True(t, ok)
	assert.Equal(t, 4481, n)

	n, ok = TeamNumber("frc4481B")
	assert.True(t, ok)
	assert.Equal(t, 4481, n)

	_, ok = TeamNumber("frc")
	assert.False(t, ok)
}

func TestEvent_DisplayName(t *testing.T) {
	assert.Equal(t, "Salem", Event{Name: "NE District Salem Event", ShortName: "Salem"}.DisplayName())
	assert.Equal(t, "NE District Salem Event", Event{Name: "NE District Salem Event"}.DisplayName())
}

// endregion
