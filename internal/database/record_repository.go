package database

import (
	"context"
	"fmt"

	sqldb "github.com/grid-vault/gridvault/internal/database/sqlc"
)

type RecordRepository struct {
	ctx *Context
}

func NewRecordRepository(dbCtx *Context) *RecordRepository {
	return &RecordRepository{ctx: dbCtx}
}

func (r *RecordRepository) ListCurrent(ctx context.Context, tableDefID int64) ([]StoredRecord, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return nil, fmt.Errorf("record repository: missing database context")
	}

	rows, err := queries.ListCurrentRecords(ctx, tableDefID)
	if err != nil {
		return nil, err
	}
	return mapRecordRows(rows), nil
}

func (r *RecordRepository) CountProposed(ctx context.Context, tableDefID int64) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("record repository: missing database context")
	}
	return queries.CountProposedRecords(ctx, tableDefID)
}

func (r *RecordRepository) DeleteProposed(ctx context.Context, tableDefID int64) (int64, error) {
	queries := queriesFromContext(r.ctx)
	if queries == nil {
		return 0, fmt.Errorf("record repository: missing database context")
	}
	return queries.DeleteProposedRecords(ctx, tableDefID)
}

func mapRecordRows(rows []sqldb.Record) []StoredRecord {
	result := make([]StoredRecord, 0, len(rows))
	for _, row := range rows {
		result = append(result, mapRecordRow(row))
	}
	return result
}

func mapRecordRow(row sqldb.Record) StoredRecord {
	return StoredRecord{
		ID:           row.ID,
		TableDefID:   row.TableDefID,
		Key:          row.Key,
		ValueNum:     stringPtr(row.ValueNum),
		ValueText:    stringPtr(row.ValueText),
		ValueItemID:  int64Ptr(row.ValueItemID),
		VersionFirst: int64Ptr(row.VersionFirst),
		VersionLast:  int64Ptr(row.VersionLast),
		CreatedAt:    optionalTime(row.CreatedAt),
	}
}
