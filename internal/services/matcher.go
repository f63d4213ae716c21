package services

import (
	"context"
	"runtime"
	"slices"
	"strings"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/vault-md/tmatch/internal/database"
	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/textutil"
	"github.com/vault-md/tmatch/internal/tm"
)

// CandidateSource supplies the entries a lookup may score.
type CandidateSource interface {
	FindCandidates(ctx context.Context, s scope.Scope, sourceLanguage, targetLanguage string, filter database.CandidateFilter) ([]database.EntryRecord, error)
}

// MatcherOptions tunes candidate retrieval and scoring.
type MatcherOptions struct {
	// MaxCandidates caps the pool fetched per lookup. Zero means unbounded.
	MaxCandidates int
	// ParallelThreshold is the pool size above which scoring is spread
	// across goroutines. Zero or negative disables parallel scoring.
	ParallelThreshold int
	// FoldCacheSize bounds the cache of folded candidate texts, keyed by
	// fingerprint. Zero disables the cache.
	FoldCacheSize int
}

// MatchRequest describes one lookup. Thresholds are validated by Match.
type MatchRequest struct {
	Scope           scope.Scope
	SourceLanguage  string
	TargetLanguage  string
	Query           string
	MinMatchPercent int
	MaxResults      int
}

// ScoredEntry pairs a candidate with its similarity to the query.
type ScoredEntry struct {
	Entry   database.EntryRecord
	Percent int
}

// Matcher ranks stored entries by similarity to a query.
type Matcher struct {
	source CandidateSource
	opts   MatcherOptions
	folds  *lru.Cache[string, string]
}

// NewMatcher creates a Matcher reading candidates from source.
func NewMatcher(source CandidateSource, opts MatcherOptions) *Matcher {
	m := &Matcher{source: source, opts: opts}
	if opts.FoldCacheSize > 0 {
		// lru.New only fails for a non-positive size.
		m.folds, _ = lru.New[string, string](opts.FoldCacheSize)
	}
	return m
}

// Match returns at most MaxResults entries scoring at least MinMatchPercent,
// best first. Lookups never mutate the store.
func (m *Matcher) Match(ctx context.Context, req MatchRequest) ([]ScoredEntry, error) {
	if err := tm.ValidateThresholds(req.MinMatchPercent, req.MaxResults); err != nil {
		return nil, err
	}

	folded := textutil.NormalizeForHash(req.Query)
	queryLen := utf8.RuneCountInString(folded)

	hash := textutil.Fingerprint(req.Query)
	filter := database.CandidateFilter{
		Limit:        m.opts.MaxCandidates,
		SourceHash:   hash,
		SourceLength: queryLen,
	}
	if lo, hi, ok := textutil.LengthBounds(queryLen, req.MinMatchPercent); ok {
		filter.LengthBounded = true
		filter.MinLength = lo
		filter.MaxLength = hi
	}

	candidates, err := m.source.FindCandidates(ctx, req.Scope, req.SourceLanguage, req.TargetLanguage, filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []ScoredEntry{}, nil
	}

	percents, err := m.score(ctx, folded, hash, candidates)
	if err != nil {
		return nil, err
	}

	results := make([]ScoredEntry, 0, len(candidates))
	for i, candidate := range candidates {
		if percents[i] < req.MinMatchPercent {
			continue
		}
		results = append(results, ScoredEntry{Entry: candidate, Percent: percents[i]})
	}

	slices.SortFunc(results, compareScored)
	if len(results) > req.MaxResults {
		results = results[:req.MaxResults]
	}
	return results, nil
}

func (m *Matcher) score(ctx context.Context, folded, hash string, candidates []database.EntryRecord) ([]int, error) {
	percents := make([]int, len(candidates))
	scoreRange := func(from, to int) {
		for i := from; i < to; i++ {
			percents[i] = m.scoreCandidate(folded, hash, candidates[i])
		}
	}

	if m.opts.ParallelThreshold <= 0 || len(candidates) <= m.opts.ParallelThreshold {
		scoreRange(0, len(candidates))
		return percents, nil
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (len(candidates) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for from := 0; from < len(candidates); from += chunk {
		to := min(from+chunk, len(candidates))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scoreRange(from, to)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return percents, nil
}

func (m *Matcher) scoreCandidate(folded, hash string, candidate database.EntryRecord) int {
	if candidate.SourceHash == hash {
		return 100
	}
	return textutil.ScoreFolded(folded, m.foldedSource(candidate))
}

// foldedSource returns the hash form of the candidate's source text. Equal
// fingerprints imply equal hash forms, so the fingerprint is a safe key.
func (m *Matcher) foldedSource(candidate database.EntryRecord) string {
	if m.folds == nil || candidate.SourceHash == "" {
		return textutil.NormalizeForHash(candidate.SourceText)
	}
	if f, ok := m.folds.Get(candidate.SourceHash); ok {
		return f
	}
	f := textutil.NormalizeForHash(candidate.SourceText)
	m.folds.Add(candidate.SourceHash, f)
	return f
}

func compareScored(a, b ScoredEntry) int {
	if a.Percent != b.Percent {
		return b.Percent - a.Percent
	}
	if a.Entry.UseCount != b.Entry.UseCount {
		if a.Entry.UseCount > b.Entry.UseCount {
			return -1
		}
		return 1
	}
	if c := b.Entry.UpdatedAt.Compare(a.Entry.UpdatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.Entry.ID.String(), b.Entry.ID.String())
}

// ToMatch converts a scored entry to the public result shape.
func ToMatch(s ScoredEntry) tm.Match {
	return tm.Match{
		EntryID:        s.Entry.ID,
		SourceText:     s.Entry.SourceText,
		TranslatedText: s.Entry.TranslatedText,
		MatchPercent:   s.Percent,
		UseCount:       s.Entry.UseCount,
		UpdatedAt:      s.Entry.UpdatedAt,
		Context:        s.Entry.Context,
	}
}
