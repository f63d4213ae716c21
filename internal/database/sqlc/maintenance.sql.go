package sqldb

import "context"

const deleteAllEntries = `DELETE FROM tm_entries`

func (q *Queries) DeleteAllEntries(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteAllEntries)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
