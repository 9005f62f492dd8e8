package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const searchSuggestURL = "https://www.tiktok.com/api/search/general/full/"

// DefaultSeeds are the seed keywords queried against the suggest endpoint.
var DefaultSeeds = []string{"trending", "viral", "challenge", "meme", "fashion", "music"}

// Search collects hashtag suggestions from TikTok's search suggest API.
type Search struct {
	client  *http.Client
	baseURL string
	seeds   []string
	region  string
	filter  *Filter
}

// NewSearch creates a new search-suggest collector.
func NewSearch(seeds []string, region string, filter *Filter) *Search {
	if len(seeds) == 0 {
		seeds = DefaultSeeds
	}
	if region == "" {
		region = "US"
	}
	return &Search{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: searchSuggestURL,
		seeds:   seeds,
		region:  region,
		filter:  filter,
	}
}

func (s *Search) Name() SourceType { return SourceSearch }

// Collect queries the suggest endpoint once per seed. A failing seed is
// skipped; whatever the remaining seeds returned is still delivered.
func (s *Search) Collect(ctx context.Context) ([]TrendRecord, error) {
	var records []TrendRecord

	for _, seed := range s.seeds {
		recs, err := s.collectSeed(ctx, seed)
		if err != nil {
			slog.Warn("search seed failed", "seed", seed, "error", err)
			continue
		}
		records = append(records, recs...)
	}

	return s.filter.Apply(records), nil
}

type suggestResponse struct {
	Data struct {
		Suggests []struct {
			Keyword string `json:"keyword"`
			Desc    string `json:"desc"`
			Extra   struct {
				ViewCount string `json:"view_count"`
			} `json:"extra"`
		} `json:"suggests"`
	} `json:"data"`
}

func (s *Search) collectSeed(ctx context.Context, seed string) ([]TrendRecord, error) {
	q := url.Values{}
	q.Set("keyword", seed)
	q.Set("from_page", "search")
	q.Set("region", s.region)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create suggest request %q: %w", seed, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/115.0.0.0 Safari/537.36")
	req.Header.Set("Referer", "https://www.tiktok.com/")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch suggestions %q: %w", seed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("suggest %q status %d", seed, resp.StatusCode)
	}

	var parsed suggestResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode suggestions %q: %w", seed, err)
	}

	var records []TrendRecord
	now := time.Now().UTC()

	for _, sug := range parsed.Data.Suggests {
		// Only hashtag suggestions carry a trend; plain keywords are noise.
		if !strings.HasPrefix(sug.Keyword, "#") {
			continue
		}
		tag := sug.Keyword[1:]
		if tag == "" {
			continue
		}
		// Keep the raw keyword as the name; the pipeline normalizes it.
		records = append(records, TrendRecord{
			Name:        sug.Keyword,
			URL:         "https://www.tiktok.com/tag/" + tag,
			Snippet:     sug.Desc,
			Views:       sug.Extra.ViewCount,
			Source:      SourceSearch,
			CollectedAt: now,
		})
	}

	return records, nil
}
