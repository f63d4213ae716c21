package services

import (
	"context"

	"github.com/vault-md/tmatch/internal/database"
	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/tm"
)

// Aggregator summarises stored entries.
type Aggregator interface {
	Aggregate(ctx context.Context, s scope.Scope) (database.Aggregate, error)
}

// StatsAggregator reports read-only statistics over the visible entries.
type StatsAggregator struct {
	source Aggregator
}

// NewStatsAggregator creates a StatsAggregator over source.
func NewStatsAggregator(source Aggregator) *StatsAggregator {
	return &StatsAggregator{source: source}
}

// Stats returns totals and the per language pair breakdown for s.
func (a *StatsAggregator) Stats(ctx context.Context, s scope.Scope) (tm.Stats, error) {
	agg, err := a.source.Aggregate(ctx, s)
	if err != nil {
		return tm.Stats{}, err
	}

	stats := tm.Stats{
		TotalEntries:    agg.TotalEntries,
		TotalUseCount:   agg.TotalUseCount,
		PerLanguagePair: make([]tm.LanguagePairStats, 0, len(agg.PerLanguagePair)),
	}
	for _, pair := range agg.PerLanguagePair {
		stats.PerLanguagePair = append(stats.PerLanguagePair, tm.LanguagePairStats{
			SourceLanguage: pair.SourceLanguage,
			TargetLanguage: pair.TargetLanguage,
			EntryCount:     pair.EntryCount,
			UseCount:       pair.UseCount,
		})
	}
	return stats, nil
}
