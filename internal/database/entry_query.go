package database

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/vault-md/tmatch/internal/scope"
)

const entriesTable = "tm_entries"

// visibleTo matches the owner's personal entries and, for organization
// scopes, every entry of that organization.
func visibleTo(s scope.Scope) sq.Sqlizer {
	personal := sq.Eq{"owner_id": s.OwnerID, "organization_id": ""}
	if org, ok := s.Organization(); ok {
		return sq.Or{personal, sq.Eq{"organization_id": org}}
	}
	return personal
}

// partitionOf matches exactly the partition entries stored under s land in.
func partitionOf(s scope.Scope) sq.Eq {
	return sq.Eq{"owner_id": s.OwnerID, "organization_id": organizationKey(s)}
}

func languageFilter(sourceLanguage, targetLanguage string) sq.And {
	var preds sq.And
	if sourceLanguage != "" {
		preds = append(preds, sq.Eq{"source_language": sourceLanguage})
	}
	if targetLanguage != "" {
		preds = append(preds, sq.Eq{"target_language": targetLanguage})
	}
	return preds
}

// FindCandidates returns the entries visible to s for the exact language
// pair. Under a pool limit an exact fingerprint match is never cut: it sorts
// ahead of the length-closest entries, which sort ahead of the most used and
// most recently updated ones.
func (r *EntryRepository) FindCandidates(ctx context.Context, s scope.Scope, sourceLanguage, targetLanguage string, filter CandidateFilter) ([]EntryRecord, error) {
	q := r.sq.Select(entryColumns...).
		From(entriesTable).
		Where(visibleTo(s)).
		Where(sq.Eq{"source_language": sourceLanguage, "target_language": targetLanguage})

	if filter.SourceHash != "" {
		q = q.OrderByClause("source_hash = ? DESC", filter.SourceHash).
			OrderByClause("ABS(source_length - ?)", filter.SourceLength)
	}
	q = q.OrderBy("use_count DESC", "updated_at DESC", "id")

	if filter.LengthBounded {
		q = q.Where(sq.GtOrEq{"source_length": filter.MinLength}).
			Where(sq.LtOrEq{"source_length": filter.MaxLength})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	return r.queryEntries(ctx, q)
}

// FindVisibleByID returns the entry when s may see it, or nil.
func (r *EntryRepository) FindVisibleByID(ctx context.Context, s scope.Scope, id uuid.UUID) (*EntryRecord, error) {
	if r.ctx == nil || r.ctx.DB == nil {
		return nil, errMissingContext
	}

	q := r.sq.Select(entryColumns...).
		From(entriesTable).
		Where(sq.Eq{"id": id.String()}).
		Where(visibleTo(s)).
		Limit(1)

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	row, err := scanEntry(r.ctx.DB.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record, err := EntryRecordFromRow(row)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// List pages through the entries visible to s, newest first.
func (r *EntryRepository) List(ctx context.Context, s scope.Scope, filter ListFilter) ([]EntryRecord, error) {
	q := r.sq.Select(entryColumns...).
		From(entriesTable).
		Where(visibleTo(s)).
		OrderBy("updated_at DESC", "id")

	if preds := languageFilter(filter.SourceLanguage, filter.TargetLanguage); len(preds) > 0 {
		q = q.Where(preds)
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.queryEntries(ctx, q)
}

// ClearScoped deletes every entry in s's own partition, optionally narrowed
// by language, and returns how many were removed.
func (r *EntryRepository) ClearScoped(ctx context.Context, s scope.Scope, filter ClearFilter) (int64, error) {
	if r.ctx == nil || r.ctx.DB == nil {
		return 0, errMissingContext
	}

	q := r.sq.Delete(entriesTable).Where(partitionOf(s))
	if preds := languageFilter(filter.SourceLanguage, filter.TargetLanguage); len(preds) > 0 {
		q = q.Where(preds)
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return 0, err
	}

	res, err := r.ctx.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Aggregate summarises the entries visible to s per language pair. Totals
// are derived from the same grouped rows so they always agree.
func (r *EntryRepository) Aggregate(ctx context.Context, s scope.Scope) (Aggregate, error) {
	if r.ctx == nil || r.ctx.DB == nil {
		return Aggregate{}, errMissingContext
	}

	q := r.sq.Select("source_language", "target_language", "COUNT(*)", "COALESCE(SUM(use_count), 0)").
		From(entriesTable).
		Where(visibleTo(s)).
		GroupBy("source_language", "target_language").
		OrderBy("COUNT(*) DESC", "source_language", "target_language")

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return Aggregate{}, err
	}

	rows, err := r.ctx.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return Aggregate{}, err
	}
	defer rows.Close()

	result := Aggregate{PerLanguagePair: []LanguagePairCount{}}
	for rows.Next() {
		var pair LanguagePairCount
		if err := rows.Scan(&pair.SourceLanguage, &pair.TargetLanguage, &pair.EntryCount, &pair.UseCount); err != nil {
			return Aggregate{}, err
		}
		result.TotalEntries += pair.EntryCount
		result.TotalUseCount += pair.UseCount
		result.PerLanguagePair = append(result.PerLanguagePair, pair)
	}
	if err := rows.Err(); err != nil {
		return Aggregate{}, err
	}

	return result, nil
}

func (r *EntryRepository) queryEntries(ctx context.Context, q sq.SelectBuilder) ([]EntryRecord, error) {
	if r.ctx == nil || r.ctx.DB == nil {
		return nil, errMissingContext
	}

	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.ctx.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []EntryRecord{}
	for rows.Next() {
		row, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		record, err := EntryRecordFromRow(row)
		if err != nil {
			return nil, err
		}
		result = append(result, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
