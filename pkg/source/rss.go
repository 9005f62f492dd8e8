package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

// RSSFeed is a named RSS/Atom feed URL.
type RSSFeed struct {
	Name string
	URL  string
}

// RSS collects trend candidates from RSS/Atom feeds that track viral
// content (trend newsletters, leaderboard sites with feeds). Feed item
// titles become trend names, descriptions become snippets.
type RSS struct {
	client *http.Client
	parser *gofeed.Parser
	feeds  []RSSFeed
	filter *Filter
}

// NewRSS creates a new RSS collector.
func NewRSS(feeds []RSSFeed, filter *Filter) *RSS {
	return &RSS{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
		feeds:  feeds,
		filter: filter,
	}
}

func (r *RSS) Name() SourceType { return SourceRSS }

func (r *RSS) Collect(ctx context.Context) ([]TrendRecord, error) {
	var all []TrendRecord

	for _, feed := range r.feeds {
		recs, err := r.collectFeed(ctx, feed)
		if err != nil {
			slog.Warn("rss feed failed", "feed", feed.Name, "error", err)
			continue
		}
		all = append(all, recs...)
	}

	return r.filter.Apply(all), nil
}

func (r *RSS) collectFeed(ctx context.Context, feed RSSFeed) ([]TrendRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create rss request %s: %w", feed.Name, err)
	}
	req.Header.Set("User-Agent", "tiktrend/1.0")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rss %s: %w", feed.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss %s status %d", feed.Name, resp.StatusCode)
	}

	parsed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse rss %s: %w", feed.Name, err)
	}

	var records []TrendRecord
	now := time.Now().UTC()

	for _, entry := range parsed.Items {
		if entry.Title == "" {
			continue
		}

		link := entry.Link
		if link == "" && len(entry.Links) > 0 {
			link = entry.Links[0]
		}

		records = append(records, TrendRecord{
			Name:        entry.Title,
			URL:         link,
			Snippet:     truncate(entry.Description, 500),
			Source:      SourceRSS,
			CollectedAt: now,
		})
	}

	return records, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
