package database

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	sqldb "github.com/vault-md/tmatch/internal/database/sqlc"
	"github.com/vault-md/tmatch/internal/scope"
	"github.com/vault-md/tmatch/internal/textutil"
)

// EntryRepository is the translation memory entry store. Fixed statements go
// through sqldb.Queries; statements with optional predicates are assembled
// with squirrel.
type EntryRepository struct {
	ctx *Context
	sq  sq.StatementBuilderType
	now func() time.Time
}

func NewEntryRepository(dbCtx *Context) *EntryRepository {
	return &EntryRepository{ctx: dbCtx, sq: sq.StatementBuilder, now: time.Now}
}

// WithClock returns a copy of the repository that stamps rows using now.
func (r *EntryRepository) WithClock(now func() time.Time) *EntryRepository {
	cp := *r
	cp.now = now
	return &cp
}

// Upsert stores the pair, or bumps the existing entry with the same scope,
// language pair and source fingerprint. The conflict is resolved by SQLite in
// a single statement, so concurrent callers never create duplicates.
func (r *EntryRepository) Upsert(ctx context.Context, params UpsertParams) (EntryRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return EntryRecord{}, errMissingContext
	}

	now := sqldb.NewTimestamp(r.now())
	row, err := queries.UpsertEntry(ctx, sqldb.UpsertEntryParams{
		ID:             uuid.NewString(),
		OwnerID:        params.Scope.OwnerID,
		OrganizationID: organizationKey(params.Scope),
		SourceLanguage: params.SourceLanguage,
		TargetLanguage: params.TargetLanguage,
		SourceText:     params.SourceText,
		TranslatedText: params.TranslatedText,
		SourceHash:     textutil.Fingerprint(params.SourceText),
		SourceLength:   int64(textutil.Length(params.SourceText)),
		Context:        stringPtrToNullString(params.Context),
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return EntryRecord{}, err
	}

	return EntryRecordFromRow(row)
}

// IncrementUseCount records one more use of the entry. A missing entry is
// ignored.
func (r *EntryRepository) IncrementUseCount(ctx context.Context, id uuid.UUID) error {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return errMissingContext
	}

	_, err := queries.IncrementEntryUseCount(ctx, sqldb.IncrementEntryUseCountParams{
		UpdatedAt: sqldb.NewTimestamp(r.now()),
		ID:        id.String(),
	})
	return err
}

// DeleteOwned removes the entry when it belongs to s's owner, either as a
// personal entry or inside s's organization. It reports false for entries
// that do not exist and for entries owned by someone else alike.
func (r *EntryRepository) DeleteOwned(ctx context.Context, s scope.Scope, id uuid.UUID) (bool, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return false, errMissingContext
	}

	affected, err := queries.DeleteOwnedEntry(ctx, sqldb.DeleteOwnedEntryParams{
		ID:             id.String(),
		OwnerID:        s.OwnerID,
		OrganizationID: organizationKey(s),
	})
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Count returns the number of stored entries across all scopes.
func (r *EntryRepository) Count(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, errMissingContext
	}
	return queries.CountEntries(ctx)
}
