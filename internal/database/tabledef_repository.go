package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqldb "github.com/grid-vault/gridvault/internal/database/sqlc"
	"github.com/grid-vault/gridvault/internal/tabular"
)

type TableDefRepository struct {
	ctx *Context
}

func NewTableDefRepository(dbCtx *Context) *TableDefRepository {
	return &TableDefRepository{ctx: dbCtx}
}

func (r *TableDefRepository) FindByName(ctx context.Context, name string) (*TableDefRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("table def repository: missing database context")
	}

	row, err := queries.FindTableDefByName(ctx, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := mapTableDefRow(row)
	return &record, nil
}

func (r *TableDefRepository) List(ctx context.Context) ([]TableDefRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("table def repository: missing database context")
	}

	rows, err := queries.ListTableDefs(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]TableDefRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapTableDefRow(row))
	}
	return result, nil
}

func (r *TableDefRepository) ListFields(ctx context.Context, tableDefID int64) ([]TableFieldRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("table def repository: missing database context")
	}

	rows, err := queries.ListTableFieldsByTableDef(ctx, tableDefID)
	if err != nil {
		return nil, err
	}

	result := make([]TableFieldRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, TableFieldRecord{
			ID:         row.ID,
			TableDefID: row.TableDefID,
			Name:       row.Name,
			Domain:     row.Domain,
			Position:   row.Position,
		})
	}
	return result, nil
}

// Schema assembles the tabular schema descriptor for a named table.
func (r *TableDefRepository) Schema(ctx context.Context, name string) (*tabular.Schema, int64, error) {
	def, err := r.FindByName(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	if def == nil {
		return nil, 0, ErrNotFound
	}

	fields, err := r.ListFields(ctx, def.ID)
	if err != nil {
		return nil, 0, err
	}

	schema := &tabular.Schema{
		Name:  def.Name,
		Model: def.Model,
		ValueField: tabular.Field{
			Name:   def.ValueField,
			Type:   def.ValueType,
			Domain: def.ValueDomain,
		},
		ColumnField: def.ColumnField,
	}
	for _, field := range fields {
		schema.IndexFields = append(schema.IndexFields, tabular.Field{
			Name:   field.Name,
			Type:   tabular.ForeignKeyField,
			Domain: field.Domain,
		})
	}
	return schema, def.ID, nil
}

func mapTableDefRow(row sqldb.TableDef) TableDefRecord {
	return TableDefRecord{
		ID:          row.ID,
		Name:        row.Name,
		Model:       tabular.ModelType(row.ModelType),
		ValueField:  row.ValueField,
		ValueType:   tabular.FieldType(row.ValueType),
		ValueDomain: row.ValueDomain,
		ColumnField: row.ColumnField,
		CreatedAt:   optionalTime(row.CreatedAt),
	}
}
