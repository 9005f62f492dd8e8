package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const suggestFixture = `{
	"data": {
		"suggests": [
			{"keyword": "#DanceChallenge", "desc": "everyone is dancing", "extra": {"view_count": "2.1M"}},
			{"keyword": "plain keyword", "desc": "not a hashtag"},
			{"keyword": "#glowup", "extra": {"view_count": "800K"}},
			{"keyword": "#"}
		]
	}
}`

func TestSearchCollect(t *testing.T) {
	var gotQuery map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"keyword":   r.URL.Query().Get("keyword"),
			"from_page": r.URL.Query().Get("from_page"),
			"region":    r.URL.Query().Get("region"),
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(suggestFixture))
	}))
	defer ts.Close()

	s := NewSearch([]string{"trending"}, "US", nil)
	s.baseURL = ts.URL

	records, err := s.Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "trending", gotQuery["keyword"])
	assert.Equal(t, "search", gotQuery["from_page"])
	assert.Equal(t, "US", gotQuery["region"])

	require.Len(t, records, 2, "non-hashtag and empty suggestions are skipped")
	assert.Equal(t, "#DanceChallenge", records[0].Name)
	assert.Equal(t, "https://www.tiktok.com/tag/DanceChallenge", records[0].URL)
	assert.Equal(t, "everyone is dancing", records[0].Snippet)
	assert.Equal(t, "2.1M", records[0].Views)
	assert.Equal(t, SourceSearch, records[0].Source)
	assert.False(t, records[0].CollectedAt.IsZero())
	assert.Equal(t, "#glowup", records[1].Name)
}

func TestSearchFailingSeedSkipped(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("keyword") == "broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(suggestFixture))
	}))
	defer ts.Close()

	s := NewSearch([]string{"broken", "trending"}, "", nil)
	s.baseURL = ts.URL

	records, err := s.Collect(context.Background())
	require.NoError(t, err, "per-seed failures never fail the collector")
	assert.Equal(t, 2, calls)
	assert.Len(t, records, 2, "records from the healthy seed still collected")
}

func TestSearchAppliesFilter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(suggestFixture))
	}))
	defer ts.Close()

	s := NewSearch([]string{"trending"}, "", NewFilter([]string{"glowup"}))
	s.baseURL = ts.URL

	records, err := s.Collect(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "#DanceChallenge", records[0].Name)
}
