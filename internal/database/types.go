package database

import (
	"time"

	"github.com/google/uuid"

	"github.com/vault-md/tmatch/internal/scope"
)

// EntryRecord represents a row in the tm_entries table.
type EntryRecord struct {
	ID             uuid.UUID
	Scope          scope.Scope
	SourceLanguage string
	TargetLanguage string
	SourceText     string
	TranslatedText string
	// SourceHash is the fingerprint of the case-folded, whitespace-normalized
	// source text and, with scope and language pair, the dedup key.
	SourceHash   string
	SourceLength int
	Context      *string
	UseCount     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UpsertParams describes a store request. Hash and length are derived from
// SourceText by the repository.
type UpsertParams struct {
	Scope          scope.Scope
	SourceLanguage string
	TargetLanguage string
	SourceText     string
	TranslatedText string
	Context        *string
}

// CandidateFilter bounds the candidate pool returned for a lookup. The zero
// value returns every visible entry for the language pair.
//
// When Limit truncates the pool, entries whose fingerprint equals SourceHash
// are kept first, then entries whose length is closest to SourceLength.
type CandidateFilter struct {
	LengthBounded bool
	MinLength     int
	MaxLength     int
	Limit         int
	SourceHash    string
	SourceLength  int
}

// ClearFilter narrows a scoped clear. Empty fields do not restrict.
type ClearFilter struct {
	SourceLanguage string
	TargetLanguage string
}

// ListFilter narrows and pages a listing. Empty languages do not restrict.
type ListFilter struct {
	SourceLanguage string
	TargetLanguage string
	Limit          int
	Offset         int
}

// LanguagePairCount summarises one language pair.
type LanguagePairCount struct {
	SourceLanguage string
	TargetLanguage string
	EntryCount     int64
	UseCount       int64
}

// Aggregate summarises the entries visible to a scope.
type Aggregate struct {
	TotalEntries    int64
	TotalUseCount   int64
	PerLanguagePair []LanguagePairCount
}
