package sqldb

import (
	"context"
	"database/sql"
)

// Version mirrors a row of the versions table.
type Version struct {
	ID        int64
	TableName string
	Label     string
	Author    string
	Note      sql.NullString
	Dimension string
	Size      int64
	Cells     int64
	Changes   int64
	Metric    string
	CreatedAt sql.NullTime
}

const versionColumns = `id, table_name, label, author, note, dimension, size, cells, changes, metric, created_at`

func scanVersion(row interface{ Scan(...any) error }) (Version, error) {
	var v Version
	err := row.Scan(&v.ID, &v.TableName, &v.Label, &v.Author, &v.Note, &v.Dimension,
		&v.Size, &v.Cells, &v.Changes, &v.Metric, &v.CreatedAt)
	return v, err
}

const insertVersion = `
INSERT INTO versions (table_name, label, author, note)
VALUES (?, ?, ?, ?)
`

type InsertVersionParams struct {
	TableName string
	Label     string
	Author    string
	Note      sql.NullString
}

func (q *Queries) InsertVersion(ctx context.Context, arg InsertVersionParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertVersion, arg.TableName, arg.Label, arg.Author, arg.Note)
}

const updateVersionStats = `
UPDATE versions
SET dimension = ?, size = ?, cells = ?, changes = ?, metric = ?
WHERE id = ?
`

type UpdateVersionStatsParams struct {
	Dimension string
	Size      int64
	Cells     int64
	Changes   int64
	Metric    string
	ID        int64
}

func (q *Queries) UpdateVersionStats(ctx context.Context, arg UpdateVersionStatsParams) error {
	_, err := q.db.ExecContext(ctx, updateVersionStats,
		arg.Dimension, arg.Size, arg.Cells, arg.Changes, arg.Metric, arg.ID)
	return err
}

const findVersionByID = `
SELECT ` + versionColumns + `
FROM versions
WHERE id = ?
`

func (q *Queries) FindVersionByID(ctx context.Context, id int64) (Version, error) {
	return scanVersion(q.db.QueryRowContext(ctx, findVersionByID, id))
}

const maxVersionIDForTable = `
SELECT COALESCE(MAX(id), 0) FROM versions WHERE table_name = ?
`

func (q *Queries) MaxVersionIDForTable(ctx context.Context, tableName string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, maxVersionIDForTable, tableName).Scan(&id)
	return id, err
}

const maxVersionID = `
SELECT COALESCE(MAX(id), 0) FROM versions
`

func (q *Queries) MaxVersionID(ctx context.Context) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, maxVersionID).Scan(&id)
	return id, err
}

const listVersionsByTable = `
SELECT ` + versionColumns + `
FROM versions
WHERE table_name = ?
ORDER BY id
`

func (q *Queries) ListVersionsByTable(ctx context.Context, tableName string) ([]Version, error) {
	rows, err := q.db.QueryContext(ctx, listVersionsByTable, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}
