package database

import (
	"fmt"

	"github.com/google/uuid"

	sqldb "github.com/vault-md/tmatch/internal/database/sqlc"
)

// EntryRecordFromRow converts a tm_entries row to an EntryRecord.
func EntryRecordFromRow(row sqldb.TmEntry) (EntryRecord, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return EntryRecord{}, fmt.Errorf("tm_entries: invalid id %q: %w", row.ID, err)
	}

	return EntryRecord{
		ID:             id,
		Scope:          scopeFromColumns(row.OwnerID, row.OrganizationID),
		SourceLanguage: row.SourceLanguage,
		TargetLanguage: row.TargetLanguage,
		SourceText:     row.SourceText,
		TranslatedText: row.TranslatedText,
		SourceHash:     row.SourceHash,
		SourceLength:   int(row.SourceLength),
		Context:        optionalStringPtr(row.Context),
		UseCount:       row.UseCount,
		CreatedAt:      row.CreatedAt.Time,
		UpdatedAt:      row.UpdatedAt.Time,
	}, nil
}
