package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const creativeCenterFixture = `<!DOCTYPE html>
<html><body>
<div id="hashtagItemContainer">
  <div class="CardPc_detail__abc12">
    <a href="/business/creativecenter/hashtag/dancechallenge/pc/en"><h3>#DanceChallenge</h3></a>
    <span class="CardPc_number__1l4Z1">2.1M</span>
  </div>
  <div class="CardPc_detail__abc12">
    <a href="https://ads.tiktok.com/hashtag/glowup"><h3>#glowup</h3></a>
    <span class="CardPc_number__1l4Z1">800K</span>
  </div>
  <div class="CardPc_detail__abc12">
    <span class="CardPc_number__1l4Z1">orphan card without title</span>
  </div>
</div>
</body></html>`

func TestCreativeCenterCollect(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(creativeCenterFixture))
	}))
	defer ts.Close()

	c := NewCreativeCenter(ts.URL, "")
	records, err := c.Collect(context.Background())
	require.NoError(t, err)

	require.Len(t, records, 2, "cards without a title are skipped")
	assert.Equal(t, "DanceChallenge", records[0].Name)
	assert.Equal(t, "https://ads.tiktok.com/business/creativecenter/hashtag/dancechallenge/pc/en", records[0].URL)
	assert.Equal(t, "2.1M", records[0].Views)
	require.NotNil(t, records[0].LeaderboardRank)
	assert.Equal(t, 1, *records[0].LeaderboardRank)

	assert.Equal(t, "glowup", records[1].Name)
	assert.Equal(t, "https://ads.tiktok.com/hashtag/glowup", records[1].URL)
	require.NotNil(t, records[1].LeaderboardRank)
	assert.Equal(t, 2, *records[1].LeaderboardRank)
}

func TestCreativeCenterSendsCookies(t *testing.T) {
	cookiesPath := filepath.Join(t.TempDir(), "cookies.txt")
	require.NoError(t, os.WriteFile(cookiesPath,
		[]byte(`cookies = {"sessionid": "abc123", "tt_csrf": "xyz"}`), 0o600))

	var gotCookie string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		w.Write([]byte(creativeCenterFixture))
	}))
	defer ts.Close()

	c := NewCreativeCenter(ts.URL, cookiesPath)
	_, err := c.Collect(context.Background())
	require.NoError(t, err)

	assert.True(t, strings.Contains(gotCookie, "sessionid=abc123"))
	assert.True(t, strings.Contains(gotCookie, "tt_csrf=xyz"))
}

func TestCreativeCenterBadStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	c := NewCreativeCenter(ts.URL, "")
	_, err := c.Collect(context.Background())
	assert.Error(t, err)
}
