// Package tm provides the inputs, results and errors of translation memory
// operations.
package tm

import (
	"time"

	"github.com/google/uuid"

	"github.com/vault-md/tmatch/internal/scope"
)

// Entry is a stored source to translation pair.
type Entry struct {
	ID             uuid.UUID   `json:"id"`
	Scope          scope.Scope `json:"-"`
	SourceLanguage string      `json:"sourceLanguage"`
	TargetLanguage string      `json:"targetLanguage"`
	SourceText     string      `json:"sourceText"`
	TranslatedText string      `json:"translatedText"`
	Context        *string     `json:"context,omitempty"`
	UseCount       int64       `json:"useCount"`
	CreatedAt      time.Time   `json:"createdAt"`
	UpdatedAt      time.Time   `json:"updatedAt"`
}

// Match is one ranked lookup suggestion.
type Match struct {
	EntryID        uuid.UUID `json:"entryId"`
	SourceText     string    `json:"sourceText"`
	TranslatedText string    `json:"translatedText"`
	MatchPercent   int       `json:"matchPercent"`
	UseCount       int64     `json:"useCount"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Context        *string   `json:"context,omitempty"`
}

// LookupInput asks for stored translations similar to SourceText. Nil
// thresholds fall back to the configured defaults.
type LookupInput struct {
	Scope           scope.Scope
	SourceLanguage  string
	TargetLanguage  string
	SourceText      string
	MinMatchPercent *int
	MaxResults      *int
}

// StoreItem is one pair to remember.
type StoreItem struct {
	SourceLanguage string  `json:"sourceLanguage"`
	TargetLanguage string  `json:"targetLanguage"`
	SourceText     string  `json:"sourceText"`
	TranslatedText string  `json:"translatedText"`
	Context        *string `json:"context,omitempty"`
}

// StoreInput is a StoreItem bound to a scope.
type StoreInput struct {
	Scope scope.Scope
	StoreItem
}

// BatchFailure reports an item of a batch that was not stored.
type BatchFailure struct {
	Index int
	Err   error
}

// BatchResult reports the outcome of StoreBatch. Items are applied
// independently, so both slices may be non-empty.
type BatchResult struct {
	Stored []Entry
	Failed []BatchFailure
}

// LanguagePairStats summarises one language pair.
type LanguagePairStats struct {
	SourceLanguage string `json:"sourceLanguage"`
	TargetLanguage string `json:"targetLanguage"`
	EntryCount     int64  `json:"entryCount"`
	UseCount       int64  `json:"useCount"`
}

// Stats summarises the entries visible to a scope.
type Stats struct {
	TotalEntries    int64               `json:"totalEntries"`
	TotalUseCount   int64               `json:"totalUseCount"`
	PerLanguagePair []LanguagePairStats `json:"perLanguagePair"`
}

// ListInput pages through visible entries. Empty languages do not restrict.
type ListInput struct {
	SourceLanguage string
	TargetLanguage string
	Limit          int
	Offset         int
}
