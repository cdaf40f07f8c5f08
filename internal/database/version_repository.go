package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sqldb "github.com/grid-vault/gridvault/internal/database/sqlc"
)

type VersionRepository struct {
	ctx *Context
}

func NewVersionRepository(dbCtx *Context) *VersionRepository {
	return &VersionRepository{ctx: dbCtx}
}

func (r *VersionRepository) FindByID(ctx context.Context, id int64) (*VersionRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("version repository: missing database context")
	}

	row, err := queries.FindVersionByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	record := mapVersionRow(row)
	return &record, nil
}

// MaxIDForTable returns the highest version id recorded against a table, or 0
// when no commit exists yet.
func (r *VersionRepository) MaxIDForTable(ctx context.Context, tableName string) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("version repository: missing database context")
	}
	return queries.MaxVersionIDForTable(ctx, tableName)
}

// MaxID returns the highest version id across all tables, or 0.
func (r *VersionRepository) MaxID(ctx context.Context) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("version repository: missing database context")
	}
	return queries.MaxVersionID(ctx)
}

func (r *VersionRepository) ListByTable(ctx context.Context, tableName string) ([]VersionRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("version repository: missing database context")
	}

	rows, err := queries.ListVersionsByTable(ctx, tableName)
	if err != nil {
		return nil, err
	}

	result := make([]VersionRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapVersionRow(row))
	}
	return result, nil
}

func mapVersionRow(row sqldb.Version) VersionRecord {
	return VersionRecord{
		ID:        row.ID,
		TableName: row.TableName,
		Label:     row.Label,
		Author:    row.Author,
		Note:      stringPtr(row.Note),
		Dimension: row.Dimension,
		Size:      row.Size,
		Cells:     row.Cells,
		Changes:   row.Changes,
		Metric:    row.Metric,
		CreatedAt: optionalTime(row.CreatedAt),
	}
}
