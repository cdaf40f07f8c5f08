package sqldb

import (
	"context"
	"database/sql"
)

// Record mirrors a row of the records table.
type Record struct {
	ID           int64
	TableDefID   int64
	Key          string
	ValueNum     sql.NullString
	ValueText    sql.NullString
	ValueItemID  sql.NullInt64
	VersionFirst sql.NullInt64
	VersionLast  sql.NullInt64
	CreatedAt    sql.NullTime
}

// RecordField mirrors a row of the record_fields table.
type RecordField struct {
	RecordID int64
	Field    string
	ItemID   int64
}

const recordColumns = `id, table_def_id, key, value_num, value_text, value_item_id, version_first, version_last, created_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.TableDefID, &rec.Key, &rec.ValueNum, &rec.ValueText,
		&rec.ValueItemID, &rec.VersionFirst, &rec.VersionLast, &rec.CreatedAt)
	return rec, err
}

const insertRecord = `
INSERT INTO records (table_def_id, key, value_num, value_text, value_item_id)
VALUES (?, ?, ?, ?, ?)
`

type InsertRecordParams struct {
	TableDefID  int64
	Key         string
	ValueNum    sql.NullString
	ValueText   sql.NullString
	ValueItemID sql.NullInt64
}

func (q *Queries) InsertRecord(ctx context.Context, arg InsertRecordParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertRecord, arg.TableDefID, arg.Key, arg.ValueNum, arg.ValueText, arg.ValueItemID)
}

const insertRecordField = `
INSERT INTO record_fields (record_id, field, item_id)
VALUES (?, ?, ?)
`

type InsertRecordFieldParams struct {
	RecordID int64
	Field    string
	ItemID   int64
}

func (q *Queries) InsertRecordField(ctx context.Context, arg InsertRecordFieldParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertRecordField, arg.RecordID, arg.Field, arg.ItemID)
}

const findProposedRecordByKey = `
SELECT ` + recordColumns + `
FROM records
WHERE table_def_id = ? AND key = ? AND version_first IS NULL AND version_last IS NULL
`

type FindProposedRecordByKeyParams struct {
	TableDefID int64
	Key        string
}

func (q *Queries) FindProposedRecordByKey(ctx context.Context, arg FindProposedRecordByKeyParams) (Record, error) {
	return scanRecord(q.db.QueryRowContext(ctx, findProposedRecordByKey, arg.TableDefID, arg.Key))
}

const updateRecordValue = `
UPDATE records
SET value_num = ?, value_text = ?, value_item_id = ?
WHERE id = ?
`

type UpdateRecordValueParams struct {
	ValueNum    sql.NullString
	ValueText   sql.NullString
	ValueItemID sql.NullInt64
	ID          int64
}

func (q *Queries) UpdateRecordValue(ctx context.Context, arg UpdateRecordValueParams) error {
	_, err := q.db.ExecContext(ctx, updateRecordValue, arg.ValueNum, arg.ValueText, arg.ValueItemID, arg.ID)
	return err
}

const listCurrentRecords = `
SELECT ` + recordColumns + `
FROM records
WHERE table_def_id = ? AND version_first IS NOT NULL AND version_last IS NULL
ORDER BY id
`

func (q *Queries) ListCurrentRecords(ctx context.Context, tableDefID int64) ([]Record, error) {
	return q.listRecords(ctx, listCurrentRecords, tableDefID)
}

const listProposedViewRecords = `
SELECT ` + recordColumns + `
FROM records
WHERE table_def_id = ? AND version_last IS NULL
ORDER BY id
`

// ListProposedViewRecords returns the cumulative proposed-stage view: every
// record not yet superseded, whether current or still unversioned.
func (q *Queries) ListProposedViewRecords(ctx context.Context, tableDefID int64) ([]Record, error) {
	return q.listRecords(ctx, listProposedViewRecords, tableDefID)
}

const listProposedOnlyRecords = `
SELECT ` + recordColumns + `
FROM records
WHERE table_def_id = ? AND version_first IS NULL AND version_last IS NULL
ORDER BY id
`

func (q *Queries) ListProposedOnlyRecords(ctx context.Context, tableDefID int64) ([]Record, error) {
	return q.listRecords(ctx, listProposedOnlyRecords, tableDefID)
}

const listArchivedRecords = `
SELECT ` + recordColumns + `
FROM records
WHERE table_def_id = ? AND version_first IS NOT NULL AND version_first <= ?
ORDER BY id
`

type ListArchivedRecordsParams struct {
	TableDefID int64
	VersionID  int64
}

func (q *Queries) ListArchivedRecords(ctx context.Context, arg ListArchivedRecordsParams) ([]Record, error) {
	return q.listRecords(ctx, listArchivedRecords, arg.TableDefID, arg.VersionID)
}

const listChangedRecords = `
SELECT ` + recordColumns + `
FROM records
WHERE table_def_id = ? AND version_first = ?
ORDER BY id
`

type ListChangedRecordsParams struct {
	TableDefID int64
	VersionID  int64
}

func (q *Queries) ListChangedRecords(ctx context.Context, arg ListChangedRecordsParams) ([]Record, error) {
	return q.listRecords(ctx, listChangedRecords, arg.TableDefID, arg.VersionID)
}

func (q *Queries) listRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

const archiveCurrentRecordByKey = `
UPDATE records
SET version_last = ?
WHERE table_def_id = ? AND key = ? AND version_first IS NOT NULL AND version_last IS NULL
`

type ArchiveCurrentRecordByKeyParams struct {
	VersionLast sql.NullInt64
	TableDefID  int64
	Key         string
}

func (q *Queries) ArchiveCurrentRecordByKey(ctx context.Context, arg ArchiveCurrentRecordByKeyParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, archiveCurrentRecordByKey, arg.VersionLast, arg.TableDefID, arg.Key)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const promoteProposedRecords = `
UPDATE records
SET version_first = ?
WHERE table_def_id = ? AND version_first IS NULL AND version_last IS NULL
`

type PromoteProposedRecordsParams struct {
	VersionFirst sql.NullInt64
	TableDefID   int64
}

func (q *Queries) PromoteProposedRecords(ctx context.Context, arg PromoteProposedRecordsParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, promoteProposedRecords, arg.VersionFirst, arg.TableDefID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteProposedRecords = `
DELETE FROM records
WHERE table_def_id = ? AND version_first IS NULL AND version_last IS NULL
`

func (q *Queries) DeleteProposedRecords(ctx context.Context, tableDefID int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteProposedRecords, tableDefID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countProposedRecords = `
SELECT COUNT(*) FROM records
WHERE table_def_id = ? AND version_first IS NULL AND version_last IS NULL
`

func (q *Queries) CountProposedRecords(ctx context.Context, tableDefID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countProposedRecords, tableDefID).Scan(&count)
	return count, err
}

const countCurrentRecords = `
SELECT COUNT(*) FROM records
WHERE table_def_id = ? AND version_first IS NOT NULL AND version_last IS NULL
`

func (q *Queries) CountCurrentRecords(ctx context.Context, tableDefID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCurrentRecords, tableDefID).Scan(&count)
	return count, err
}

const countChangedRecords = `
SELECT COUNT(*) FROM records
WHERE table_def_id = ? AND version_first = ?
`

type CountChangedRecordsParams struct {
	TableDefID int64
	VersionID  int64
}

func (q *Queries) CountChangedRecords(ctx context.Context, arg CountChangedRecordsParams) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countChangedRecords, arg.TableDefID, arg.VersionID).Scan(&count)
	return count, err
}
