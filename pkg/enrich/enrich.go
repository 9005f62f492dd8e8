// Package enrich generates natural-language trend summaries through an
// external text-generation service. The ingestion pipeline owns the
// fallback behaviour on failure; implementations just return errors.
package enrich

import "context"

// Enricher produces a summary and optional example strings for a trend.
type Enricher interface {
	Enrich(ctx context.Context, name, snippet string) (summary string, examples []string, err error)
}
