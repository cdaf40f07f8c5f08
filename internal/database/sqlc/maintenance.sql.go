package sqldb

import "context"

const deleteAllRecordFields = `DELETE FROM record_fields`

func (q *Queries) DeleteAllRecordFields(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllRecordFields)
	return err
}

const deleteAllRecords = `DELETE FROM records`

func (q *Queries) DeleteAllRecords(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllRecords)
	return err
}

const deleteAllVersions = `DELETE FROM versions`

func (q *Queries) DeleteAllVersions(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllVersions)
	return err
}

const deleteAllItems = `DELETE FROM items`

func (q *Queries) DeleteAllItems(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllItems)
	return err
}

const deleteAllTableFields = `DELETE FROM table_fields`

func (q *Queries) DeleteAllTableFields(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTableFields)
	return err
}

const deleteAllTableDefs = `DELETE FROM table_defs`

func (q *Queries) DeleteAllTableDefs(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTableDefs)
	return err
}
