package source

import "strings"

// Filter drops collected records whose name or snippet matches an
// exclude keyword. TikTok's suggest endpoint mixes ads and spam tags
// into the results; operators list the noise here.
type Filter struct {
	exclude []string
}

// NewFilter creates a filter from a list of exclude keywords.
// A nil or empty list produces a filter that keeps everything.
func NewFilter(excludeKeywords []string) *Filter {
	exclude := make([]string, len(excludeKeywords))
	for i, kw := range excludeKeywords {
		exclude[i] = strings.ToLower(kw)
	}
	return &Filter{exclude: exclude}
}

// Keep returns true if the record should pass through to ingestion.
func (f *Filter) Keep(rec TrendRecord) bool {
	if f == nil || len(f.exclude) == 0 {
		return true
	}
	text := strings.ToLower(rec.Name + " " + rec.Snippet)
	for _, kw := range f.exclude {
		if strings.Contains(text, kw) {
			return false
		}
	}
	return true
}

// Apply filters a batch in place-order, returning only kept records.
func (f *Filter) Apply(recs []TrendRecord) []TrendRecord {
	if f == nil || len(f.exclude) == 0 {
		return recs
	}
	var kept []TrendRecord
	for _, r := range recs {
		if f.Keep(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
