package sqldb

import (
	"context"
	"database/sql"
)

const upsertEntry = `INSERT INTO tm_entries (
    id, owner_id, organization_id, source_language, target_language,
    source_text, translated_text, source_hash, source_length, context,
    use_count, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)
ON CONFLICT (owner_id, organization_id, source_language, target_language, source_hash) DO UPDATE SET
    translated_text = excluded.translated_text,
    context = COALESCE(excluded.context, tm_entries.context),
    use_count = tm_entries.use_count + 1,
    updated_at = excluded.updated_at
RETURNING id, owner_id, organization_id, source_language, target_language, source_text, translated_text, source_hash, source_length, context, use_count, created_at, updated_at`

type UpsertEntryParams struct {
	ID             string
	OwnerID        string
	OrganizationID string
	SourceLanguage string
	TargetLanguage string
	SourceText     string
	TranslatedText string
	SourceHash     string
	SourceLength   int64
	Context        sql.NullString
	CreatedAt      Timestamp
	UpdatedAt      Timestamp
}

func (q *Queries) UpsertEntry(ctx context.Context, arg UpsertEntryParams) (TmEntry, error) {
	row := q.db.QueryRowContext(ctx, upsertEntry,
		arg.ID,
		arg.OwnerID,
		arg.OrganizationID,
		arg.SourceLanguage,
		arg.TargetLanguage,
		arg.SourceText,
		arg.TranslatedText,
		arg.SourceHash,
		arg.SourceLength,
		arg.Context,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	var i TmEntry
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.OrganizationID,
		&i.SourceLanguage,
		&i.TargetLanguage,
		&i.SourceText,
		&i.TranslatedText,
		&i.SourceHash,
		&i.SourceLength,
		&i.Context,
		&i.UseCount,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const incrementEntryUseCount = `UPDATE tm_entries
SET use_count = use_count + 1, updated_at = ?
WHERE id = ?`

type IncrementEntryUseCountParams struct {
	UpdatedAt Timestamp
	ID        string
}

func (q *Queries) IncrementEntryUseCount(ctx context.Context, arg IncrementEntryUseCountParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, incrementEntryUseCount, arg.UpdatedAt, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteOwnedEntry = `DELETE FROM tm_entries
WHERE id = ? AND owner_id = ? AND (organization_id = '' OR organization_id = ?)`

type DeleteOwnedEntryParams struct {
	ID             string
	OwnerID        string
	OrganizationID string
}

func (q *Queries) DeleteOwnedEntry(ctx context.Context, arg DeleteOwnedEntryParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteOwnedEntry, arg.ID, arg.OwnerID, arg.OrganizationID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countEntries = `SELECT COUNT(*) FROM tm_entries`

func (q *Queries) CountEntries(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countEntries)
	var count int64
	err := row.Scan(&count)
	return count, err
}
