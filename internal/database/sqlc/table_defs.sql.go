package sqldb

import (
	"context"
	"database/sql"
)

// TableDef mirrors a row of the table_defs table.
type TableDef struct {
	ID          int64
	Name        string
	ModelType   string
	ValueField  string
	ValueType   string
	ValueDomain string
	ColumnField string
	CreatedAt   sql.NullTime
}

// TableField mirrors a row of the table_fields table.
type TableField struct {
	ID         int64
	TableDefID int64
	Name       string
	Domain     string
	Position   int64
}

const insertTableDef = `
INSERT INTO table_defs (name, model_type, value_field, value_type, value_domain, column_field)
VALUES (?, ?, ?, ?, ?, ?)
`

type InsertTableDefParams struct {
	Name        string
	ModelType   string
	ValueField  string
	ValueType   string
	ValueDomain string
	ColumnField string
}

func (q *Queries) InsertTableDef(ctx context.Context, arg InsertTableDefParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertTableDef,
		arg.Name, arg.ModelType, arg.ValueField, arg.ValueType, arg.ValueDomain, arg.ColumnField)
}

const insertTableField = `
INSERT INTO table_fields (table_def_id, name, domain, position)
VALUES (?, ?, ?, ?)
`

type InsertTableFieldParams struct {
	TableDefID int64
	Name       string
	Domain     string
	Position   int64
}

func (q *Queries) InsertTableField(ctx context.Context, arg InsertTableFieldParams) (sql.Result, error) {
	return q.db.ExecContext(ctx, insertTableField, arg.TableDefID, arg.Name, arg.Domain, arg.Position)
}

const findTableDefByName = `
SELECT id, name, model_type, value_field, value_type, value_domain, column_field, created_at
FROM table_defs
WHERE name = ?
`

func (q *Queries) FindTableDefByName(ctx context.Context, name string) (TableDef, error) {
	row := q.db.QueryRowContext(ctx, findTableDefByName, name)
	var def TableDef
	err := row.Scan(&def.ID, &def.Name, &def.ModelType, &def.ValueField, &def.ValueType,
		&def.ValueDomain, &def.ColumnField, &def.CreatedAt)
	return def, err
}

const listTableDefs = `
SELECT id, name, model_type, value_field, value_type, value_domain, column_field, created_at
FROM table_defs
ORDER BY name
`

func (q *Queries) ListTableDefs(ctx context.Context) ([]TableDef, error) {
	rows, err := q.db.QueryContext(ctx, listTableDefs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []TableDef
	for rows.Next() {
		var def TableDef
		if err := rows.Scan(&def.ID, &def.Name, &def.ModelType, &def.ValueField, &def.ValueType,
			&def.ValueDomain, &def.ColumnField, &def.CreatedAt); err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

const listTableFieldsByTableDef = `
SELECT id, table_def_id, name, domain, position
FROM table_fields
WHERE table_def_id = ?
ORDER BY position
`

func (q *Queries) ListTableFieldsByTableDef(ctx context.Context, tableDefID int64) ([]TableField, error) {
	rows, err := q.db.QueryContext(ctx, listTableFieldsByTableDef, tableDefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fields []TableField
	for rows.Next() {
		var field TableField
		if err := rows.Scan(&field.ID, &field.TableDefID, &field.Name, &field.Domain, &field.Position); err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}
