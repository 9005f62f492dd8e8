package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mysticlabs/tiktrend/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.SQLiteStore) {
	t.Helper()
	db, err := store.New(filepath.Join(t.TempDir(), "trends.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	srv := New(db, 0, "http://localhost:5173")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, db
}

func TestTrendsEmptyStore(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/trends")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var views []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestTrendsProjection(t *testing.T) {
	ts, db := newTestServer(t)

	require.NoError(t, db.UpsertTrend(context.Background(), &store.Trend{
		Name:    "DanceChallenge",
		Score:   5,
		Stage:   "Niche",
		Summary: "fun dance trend",
		URL:     "https://www.tiktok.com/tag/DanceChallenge",
		Snippet: "should not be exposed",
		Views:   "2.1M",
	}))

	resp, err := http.Get(ts.URL + "/trends")
	require.NoError(t, err)
	defer resp.Body.Close()

	var views []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	require.Len(t, views, 1)

	assert.Equal(t, "DanceChallenge", views[0]["name"])
	assert.Equal(t, float64(5), views[0]["score"])
	assert.Equal(t, "Niche", views[0]["stage"])
	assert.Equal(t, "fun dance trend", views[0]["summary"])
	assert.Equal(t, "https://www.tiktok.com/tag/DanceChallenge", views[0]["url"])
	assert.NotContains(t, views[0], "snippet", "projection is name/score/stage/summary/url only")
	assert.NotContains(t, views[0], "views")
}

func TestTrendsMethodNotAllowed(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/trends", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestCORSHeaders(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/trends")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/trends", nil)
	require.NoError(t, err)
	pre, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer pre.Body.Close()
	assert.Equal(t, http.StatusNoContent, pre.StatusCode)
	assert.Equal(t, "*", pre.Header.Get("Access-Control-Allow-Methods"))
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHistoryEndpoint(t *testing.T) {
	ts, db := newTestServer(t)

	resp, err := http.Get(ts.URL + "/trends/history")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "name parameter required")

	require.NoError(t, db.AddHistorySample(context.Background(), &store.HistorySample{
		Name:      "CleanTok",
		Timestamp: time.Now().UTC(),
		Score:     63,
		Stage:     "Rising",
	}))

	resp, err = http.Get(ts.URL + "/trends/history?name=CleanTok")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var samples []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&samples))
	require.Len(t, samples, 1)
	assert.Equal(t, "CleanTok", samples[0]["name"])

	resp, err = http.Get(ts.URL + "/trends/history?name=NoSuchTag")
	require.NoError(t, err)
	defer resp.Body.Close()
	var empty []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
