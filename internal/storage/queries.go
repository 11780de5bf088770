package storage

import (
	"context"
)

const listCategories = `-- name: ListCategories :many
SELECT id, name, color, position FROM categories
ORDER BY position
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name, &i.Color, &i.Position); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertImport = `-- name: InsertImport :execrows
INSERT INTO import_history (
    import_id, session_id, bank, file_name, row_count, accepted_count, skipped_count, total_amount, imported_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (import_id) DO NOTHING
`

type InsertImportParams struct {
	ImportID      string
	SessionID     string
	Bank          string
	FileName      string
	RowCount      int64
	AcceptedCount int64
	SkippedCount  int64
	TotalAmount   string
	ImportedAt    string
}

func (q *Queries) InsertImport(ctx context.Context, arg InsertImportParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, insertImport,
		arg.ImportID,
		arg.SessionID,
		arg.Bank,
		arg.FileName,
		arg.RowCount,
		arg.AcceptedCount,
		arg.SkippedCount,
		arg.TotalAmount,
		arg.ImportedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listImports = `-- name: ListImports :many
SELECT id, import_id, session_id, bank, file_name, row_count, accepted_count, skipped_count, total_amount, imported_at
FROM import_history
ORDER BY imported_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListImports(ctx context.Context, limit int64) ([]ImportHistory, error) {
	rows, err := q.db.QueryContext(ctx, listImports, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportHistory
	for rows.Next() {
		var i ImportHistory
		if err := rows.Scan(
			&i.ID,
			&i.ImportID,
			&i.SessionID,
			&i.Bank,
			&i.FileName,
			&i.RowCount,
			&i.AcceptedCount,
			&i.SkippedCount,
			&i.TotalAmount,
			&i.ImportedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
