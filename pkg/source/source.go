package source

import (
	"context"
	"strings"
	"time"
)

// SourceType identifies which upstream a trend record came from.
type SourceType string

const (
	SourceSearch         SourceType = "search"
	SourceCreativeCenter SourceType = "creativecenter"
	SourceRSS            SourceType = "rss"
)

// TrendRecord is the standardized raw record produced by every collector.
// Engagement counters are kept as the free-form strings TikTok serves
// ("1.2M", "N/A", empty); the pipeline never interprets them.
type TrendRecord struct {
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	Snippet         string     `json:"snippet"`
	Views           string     `json:"views"`
	Likes           string     `json:"likes"`
	Comments        string     `json:"comments"`
	LeaderboardRank *int       `json:"leaderboard_rank,omitempty"`
	Source          SourceType `json:"source"`
	CollectedAt     time.Time  `json:"collected_at"`
}

// Collector is the interface every trend source must implement.
type Collector interface {
	Name() SourceType
	Collect(ctx context.Context) ([]TrendRecord, error)
}

// Normalize canonicalizes a trend name: surrounding whitespace is trimmed
// and one leading "#" is stripped. Casing is preserved; dedup across
// casings is handled by the store's case-insensitive name constraint.
func Normalize(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "#")
}

// AllSourceTypes returns all known source types.
func AllSourceTypes() []SourceType {
	return []SourceType{SourceSearch, SourceCreativeCenter, SourceRSS}
}
