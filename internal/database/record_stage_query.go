package database

import (
	"context"
	"fmt"

	sqldb "github.com/grid-vault/gridvault/internal/database/sqlc"
	"github.com/grid-vault/gridvault/internal/tabular"
)

// RecordStageQuery selects records by lifecycle stage, mirroring the
// Stage.MatchAll / Stage.MatchChanges predicates in SQL.
type RecordStageQuery struct {
	ctx *Context
}

func NewRecordStageQuery(dbCtx *Context) *RecordStageQuery {
	return &RecordStageQuery{ctx: dbCtx}
}

// ListAll returns the cumulative record view up to and including the stage.
//
// For an archived stage at the live current version id this keeps rows whose
// version_last is still null; see Stage.MatchAll.
func (q *RecordStageQuery) ListAll(ctx context.Context, tableDefID int64, stage tabular.Stage) ([]StoredRecord, error) {
	queries := queriesFromContext(q.ctx)
	if queries == nil {
		return nil, fmt.Errorf("record stage query: missing database context")
	}

	var (
		rows []sqldb.Record
		err  error
	)
	switch stage.Kind {
	case tabular.StageCurrent:
		rows, err = queries.ListCurrentRecords(ctx, tableDefID)
	case tabular.StageProposed:
		rows, err = queries.ListProposedViewRecords(ctx, tableDefID)
	case tabular.StageArchived:
		rows, err = queries.ListArchivedRecords(ctx, sqldb.ListArchivedRecordsParams{
			TableDefID: tableDefID,
			VersionID:  stage.ID,
		})
	default:
		return nil, fmt.Errorf("record stage query: unknown stage %q", stage.Kind)
	}
	if err != nil {
		return nil, err
	}
	return mapRecordRows(rows), nil
}

// ListChanges returns the records whose transition is attributable to exactly
// the given stage.
func (q *RecordStageQuery) ListChanges(ctx context.Context, tableDefID int64, stage tabular.Stage) ([]StoredRecord, error) {
	queries := queriesFromContext(q.ctx)
	if queries == nil {
		return nil, fmt.Errorf("record stage query: missing database context")
	}

	var (
		rows []sqldb.Record
		err  error
	)
	switch stage.Kind {
	case tabular.StageCurrent, tabular.StageArchived:
		rows, err = queries.ListChangedRecords(ctx, sqldb.ListChangedRecordsParams{
			TableDefID: tableDefID,
			VersionID:  stage.ID,
		})
	case tabular.StageProposed:
		rows, err = queries.ListProposedOnlyRecords(ctx, tableDefID)
	default:
		return nil, fmt.Errorf("record stage query: unknown stage %q", stage.Kind)
	}
	if err != nil {
		return nil, err
	}
	return mapRecordRows(rows), nil
}
