package database

import (
	"database/sql"

	sqldb "github.com/vault-md/tmatch/internal/database/sqlc"
	"github.com/vault-md/tmatch/internal/scope"
)

// entryColumns lists tm_entries columns in the order scanEntry expects.
var entryColumns = []string{
	"id",
	"owner_id",
	"organization_id",
	"source_language",
	"target_language",
	"source_text",
	"translated_text",
	"source_hash",
	"source_length",
	"context",
	"use_count",
	"created_at",
	"updated_at",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (sqldb.TmEntry, error) {
	var i sqldb.TmEntry
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

// organizationKey is the stored organization column for s; personal scopes
// map to the empty string.
func organizationKey(s scope.Scope) string {
	org, _ := s.Organization()
	return org
}

func scopeFromColumns(ownerID, organizationID string) scope.Scope {
	if organizationID == "" {
		return scope.NewPersonal(ownerID)
	}
	return scope.NewOrganization(ownerID, organizationID)
}

func stringPtrToNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	if *value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func optionalStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func queriesFromContext(ctx *Context) *sqldb.Queries {
	if ctx == nil {
		return nil
	}
	if ctx.Queries != nil {
		return ctx.Queries
	}
	if ctx.DB == nil {
		return nil
	}
	return sqldb.New(ctx.DB)
}
