package trend

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mysticlabs/tiktrend/internal/store"
	"github.com/mysticlabs/tiktrend/pkg/enrich"
	"github.com/mysticlabs/tiktrend/pkg/source"
)

// SummaryUnavailable is the sentinel stored when enrichment fails. A row
// holding it is retried on the next pass; a real summary never is.
const SummaryUnavailable = "Summary unavailable."

// Pipeline turns raw collected records into canonical trend rows plus an
// append-only history log. It holds no internal locking: the caller
// guarantees at most one concurrent ingestion pass.
type Pipeline struct {
	store    store.Store
	enricher enrich.Enricher // nil disables enrichment
}

// NewPipeline creates an ingestion pipeline over the given store and
// enrichment service.
func NewPipeline(s store.Store, e enrich.Enricher) *Pipeline {
	return &Pipeline{store: s, enricher: e}
}

// needsEnrichment is the summary-presence policy: enrich when no summary
// exists yet, or when the stored one is the failure sentinel. An
// up-to-date summary is never regenerated, regardless of snippet drift.
func needsEnrichment(existing *store.Trend) bool {
	return existing == nil || existing.Summary == "" || existing.Summary == SummaryUnavailable
}

// Upsert processes one record: normalize the name, derive score and
// stage, conditionally enrich, write through to the trends table, and
// append a history sample. The history append is unconditional; it
// happens even when the trends write fails, so the time series stays
// gap-free.
func (p *Pipeline) Upsert(ctx context.Context, rec source.TrendRecord) (*store.Trend, error) {
	name := source.Normalize(rec.Name)
	if name == "" {
		return nil, fmt.Errorf("record has empty trend name")
	}

	score := Score(rec.Name)
	stage := Stage(score)

	existing, err := p.store.GetTrend(ctx, name)
	if err != nil {
		slog.Warn("trend lookup failed, treating as new", "name", name, "error", err)
		existing = nil
	}

	var summary string
	var examples []string

	switch {
	case !needsEnrichment(existing):
		summary = existing.Summary
		examples = existing.Examples
		slog.Debug("already summarized", "name", name)
	case p.enricher == nil:
		if existing != nil {
			summary = existing.Summary
		}
	default:
		summary, examples, err = p.enricher.Enrich(ctx, name, rec.Snippet)
		if err != nil {
			slog.Warn("enrichment failed", "name", name, "error", err)
			summary = SummaryUnavailable
			examples = []string{}
		}
	}

	t := &store.Trend{
		Name:            name,
		Summary:         summary,
		Score:           score,
		Stage:           stage,
		Examples:        examples,
		URL:             rec.URL,
		Snippet:         rec.Snippet,
		Views:           rec.Views,
		Likes:           rec.Likes,
		Comments:        rec.Comments,
		LeaderboardRank: rec.LeaderboardRank,
	}
	if !rec.CollectedAt.IsZero() {
		ts := rec.CollectedAt
		t.Timestamp = &ts
	}

	upsertErr := p.store.UpsertTrend(ctx, t)

	ts := rec.CollectedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	sample := &store.HistorySample{
		Name:            name,
		Timestamp:       ts,
		Score:           score,
		Stage:           stage,
		Views:           rec.Views,
		Likes:           rec.Likes,
		Comments:        rec.Comments,
		LeaderboardRank: rec.LeaderboardRank,
	}
	if err := p.store.AddHistorySample(ctx, sample); err != nil {
		slog.Warn("history append failed", "name", name, "error", err)
	}

	if upsertErr != nil {
		return nil, upsertErr
	}
	return t, nil
}

// IngestBatch upserts records in input order. A failing record is logged
// and skipped; the rest of the batch still runs. Returns the number of
// successful upserts. An empty batch is a no-op.
func (p *Pipeline) IngestBatch(ctx context.Context, records []source.TrendRecord) int {
	count := 0
	for _, rec := range records {
		t, err := p.Upsert(ctx, rec)
		if err != nil {
			slog.Error("trend upsert failed", "name", rec.Name, "error", err)
			continue
		}
		slog.Info("saved trend", "name", t.Name, "score", t.Score, "stage", t.Stage)
		count++
	}
	return count
}
