package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vault-md/tmatch/internal/config"
	"github.com/vault-md/tmatch/internal/database"
	"github.com/vault-md/tmatch/internal/logging"
	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/services"
	"github.com/vault-md/tmatch/internal/tm"
)

// Memory is the translation memory. It is safe for concurrent use.
type Memory struct {
	repo     *database.EntryRepository
	matcher  *services.Matcher
	usage    *services.UsageTracker
	stats    *services.StatsAggregator
	settings config.Matching
	logger   *slog.Logger
}

// Option customises a Memory.
type Option func(*Memory)

// WithLogger sets the logger used for operation records.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Memory) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMatching overrides the lookup defaults and candidate limits.
func WithMatching(settings config.Matching) Option {
	return func(m *Memory) {
		m.settings = settings
	}
}

// WithClock stamps stored entries using now.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.repo = m.repo.WithClock(now)
	}
}

// NewMemory wires a Memory over an open database.
func NewMemory(dbCtx *database.Context, opts ...Option) *Memory {
	m := &Memory{
		repo:     database.NewEntryRepository(dbCtx),
		settings: config.Default().Matching,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger = logging.NewComponentLogger(m.logger, "memory")
	m.matcher = services.NewMatcher(m.repo, services.MatcherOptions{
		MaxCandidates:     m.settings.MaxCandidates,
		ParallelThreshold: m.settings.ParallelThreshold,
		FoldCacheSize:     m.settings.FoldCacheSize,
	})
	m.usage = services.NewUsageTracker(m.repo)
	m.stats = services.NewStatsAggregator(m.repo)
	return m
}

// Lookup returns stored translations similar to the input text, best first.
// No matches is an empty slice, not an error.
func (m *Memory) Lookup(ctx context.Context, input tm.LookupInput) ([]tm.Match, error) {
	input.SourceLanguage, input.TargetLanguage = tm.CanonicalLanguages(input.SourceLanguage, input.TargetLanguage)
	if err := tm.ValidateScope(input.Scope); err != nil {
		return nil, err
	}
	if err := tm.ValidateLanguages(input.SourceLanguage, input.TargetLanguage); err != nil {
		return nil, err
	}

	minPercent := m.settings.DefaultMinMatchPercent
	if input.MinMatchPercent != nil {
		minPercent = *input.MinMatchPercent
	}
	maxResults := m.settings.DefaultMaxResults
	if input.MaxResults != nil {
		maxResults = *input.MaxResults
	}

	log := m.operationLogger(ctx, "lookup", input.Scope)
	start := time.Now()

	scored, err := m.matcher.Match(ctx, services.MatchRequest{
		Scope:           input.Scope,
		SourceLanguage:  input.SourceLanguage,
		TargetLanguage:  input.TargetLanguage,
		Query:           input.SourceText,
		MinMatchPercent: minPercent,
		MaxResults:      maxResults,
	})
	if err != nil {
		if !tm.IsValidation(err) {
			log.ErrorContext(ctx, "lookup failed", slog.Any("error", err))
		}
		return nil, err
	}

	matches := make([]tm.Match, 0, len(scored))
	for _, s := range scored {
		matches = append(matches, services.ToMatch(s))
	}

	log.DebugContext(ctx, "lookup completed",
		slog.String("source_language", input.SourceLanguage),
		slog.String("target_language", input.TargetLanguage),
		slog.Int("min_match_percent", minPercent),
		slog.Int("matches", len(matches)),
		slog.Duration("duration", time.Since(start)),
	)
	return matches, nil
}

// Store remembers a translation. Storing the same source again in the same
// scope and language pair updates the existing entry and bumps its use count.
func (m *Memory) Store(ctx context.Context, input tm.StoreInput) (tm.Entry, error) {
	input.SourceLanguage, input.TargetLanguage = tm.CanonicalLanguages(input.SourceLanguage, input.TargetLanguage)
	if err := tm.ValidateScope(input.Scope); err != nil {
		return tm.Entry{}, err
	}
	if err := tm.ValidateStoreItem(input.StoreItem); err != nil {
		return tm.Entry{}, err
	}

	log := m.operationLogger(ctx, "store", input.Scope)
	record, err := m.repo.Upsert(ctx, database.UpsertParams{
		Scope:          input.Scope,
		SourceLanguage: input.SourceLanguage,
		TargetLanguage: input.TargetLanguage,
		SourceText:     input.SourceText,
		TranslatedText: input.TranslatedText,
		Context:        input.Context,
	})
	if err != nil {
		log.ErrorContext(ctx, "store failed", slog.Any("error", err))
		return tm.Entry{}, err
	}

	log.DebugContext(ctx, "entry stored",
		slog.String(logging.FieldEntryID, record.ID.String()),
		slog.Int64("use_count", record.UseCount),
	)
	return entryFromRecord(record), nil
}

// StoreBatch stores every item in s. Items are independent: a failing item
// is reported in the result and the remaining items are still stored.
func (m *Memory) StoreBatch(ctx context.Context, s scope.Scope, items []tm.StoreItem) tm.BatchResult {
	result := tm.BatchResult{
		Stored: make([]tm.Entry, 0, len(items)),
		Failed: []tm.BatchFailure{},
	}
	log := m.operationLogger(ctx, "store_batch", s)

	for i, item := range items {
		entry, err := m.Store(ctx, tm.StoreInput{Scope: s, StoreItem: item})
		if err != nil {
			log.WarnContext(ctx, "batch item not stored", slog.Int("index", i), slog.Any("error", err))
			result.Failed = append(result.Failed, tm.BatchFailure{Index: i, Err: err})
			continue
		}
		result.Stored = append(result.Stored, entry)
	}

	log.DebugContext(ctx, "batch stored",
		slog.Int("stored", len(result.Stored)),
		slog.Int("failed", len(result.Failed)),
	)
	return result
}

// Accept records that a suggestion was used. Unknown ids are ignored.
func (m *Memory) Accept(ctx context.Context, id uuid.UUID) error {
	if err := m.usage.Accept(ctx, id); err != nil {
		logging.WithContext(ctx, m.logger).ErrorContext(ctx, "accept failed",
			slog.String(logging.FieldOperation, "accept"),
			slog.String(logging.FieldEntryID, id.String()),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// Stats summarises the entries visible to s.
func (m *Memory) Stats(ctx context.Context, s scope.Scope) (tm.Stats, error) {
	if err := tm.ValidateScope(s); err != nil {
		return tm.Stats{}, err
	}

	stats, err := m.stats.Stats(ctx, s)
	if err != nil {
		m.operationLogger(ctx, "stats", s).ErrorContext(ctx, "stats failed", slog.Any("error", err))
		return tm.Stats{}, err
	}
	return stats, nil
}

// Clear deletes the entries of s's own partition, optionally narrowed to a
// source and target language. Empty languages do not restrict.
func (m *Memory) Clear(ctx context.Context, s scope.Scope, sourceLanguage, targetLanguage string) (int64, error) {
	sourceLanguage, targetLanguage = tm.CanonicalLanguages(sourceLanguage, targetLanguage)
	if err := tm.ValidateScope(s); err != nil {
		return 0, err
	}

	log := m.operationLogger(ctx, "clear", s)
	removed, err := m.repo.ClearScoped(ctx, s, database.ClearFilter{
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
	})
	if err != nil {
		log.ErrorContext(ctx, "clear failed", slog.Any("error", err))
		return 0, err
	}

	log.InfoContext(ctx, "entries cleared",
		slog.String("source_language", sourceLanguage),
		slog.String("target_language", targetLanguage),
		slog.Int64("removed", removed),
	)
	return removed, nil
}

// Delete removes one entry owned by s's owner. It reports false when the
// entry does not exist or belongs to someone else.
func (m *Memory) Delete(ctx context.Context, s scope.Scope, id uuid.UUID) (bool, error) {
	if err := tm.ValidateScope(s); err != nil {
		return false, err
	}

	log := m.operationLogger(ctx, "delete", s).With(slog.String(logging.FieldEntryID, id.String()))
	deleted, err := m.repo.DeleteOwned(ctx, s, id)
	if err != nil {
		log.ErrorContext(ctx, "delete failed", slog.Any("error", err))
		return false, err
	}

	log.InfoContext(ctx, "delete processed", slog.Bool("deleted", deleted))
	return deleted, nil
}

// Get returns one entry visible to s, or tm.ErrNotFound.
func (m *Memory) Get(ctx context.Context, s scope.Scope, id uuid.UUID) (*tm.Entry, error) {
	if err := tm.ValidateScope(s); err != nil {
		return nil, err
	}

	record, err := m.repo.FindVisibleByID(ctx, s, id)
	if err != nil {
		m.operationLogger(ctx, "get", s).ErrorContext(ctx, "get failed", slog.Any("error", err))
		return nil, err
	}
	if record == nil {
		return nil, tm.ErrNotFound
	}

	entry := entryFromRecord(*record)
	return &entry, nil
}

// List pages through the entries visible to s, most recently updated first.
func (m *Memory) List(ctx context.Context, s scope.Scope, input tm.ListInput) ([]tm.Entry, error) {
	if err := tm.ValidateScope(s); err != nil {
		return nil, err
	}
	if input.Limit < 0 {
		return nil, tm.NewValidationError("limit", "must not be negative")
	}
	if input.Offset < 0 {
		return nil, tm.NewValidationError("offset", "must not be negative")
	}

	sourceLanguage, targetLanguage := tm.CanonicalLanguages(input.SourceLanguage, input.TargetLanguage)
	records, err := m.repo.List(ctx, s, database.ListFilter{
		SourceLanguage: sourceLanguage,
		TargetLanguage: targetLanguage,
		Limit:          input.Limit,
		Offset:         input.Offset,
	})
	if err != nil {
		m.operationLogger(ctx, "list", s).ErrorContext(ctx, "list failed", slog.Any("error", err))
		return nil, err
	}

	entries := make([]tm.Entry, 0, len(records))
	for _, record := range records {
		entries = append(entries, entryFromRecord(record))
	}
	return entries, nil
}

func (m *Memory) operationLogger(ctx context.Context, operation string, s scope.Scope) *slog.Logger {
	attrs := []any{
		slog.String(logging.FieldOperation, operation),
		slog.String(logging.FieldOwnerID, s.OwnerID),
	}
	if org, ok := s.Organization(); ok {
		attrs = append(attrs, slog.String(logging.FieldOrganizationID, org))
	}
	return logging.WithContext(ctx, m.logger).With(attrs...)
}

func entryFromRecord(record database.EntryRecord) tm.Entry {
	return tm.Entry{
		ID:             record.ID,
		Scope:          record.Scope,
		SourceLanguage: record.SourceLanguage,
		TargetLanguage: record.TargetLanguage,
		SourceText:     record.SourceText,
		TranslatedText: record.TranslatedText,
		Context:        record.Context,
		UseCount:       record.UseCount,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
}
