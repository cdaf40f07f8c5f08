package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grid-vault/gridvault/internal/catalog"
	"github.com/grid-vault/gridvault/internal/database"
	sqldb "github.com/grid-vault/gridvault/internal/database/sqlc"
	"github.com/grid-vault/gridvault/internal/tabular"
)

// CommitInfo carries the user-supplied metadata of a commit.
type CommitInfo struct {
	Label  string
	Author string
	Note   string
}

// CommitResult summarizes a completed commit.
type CommitResult struct {
	VersionID int64
	Dimension string
	Size      int64
	Cells     int64
	Changes   int64
	Metric    string
}

// CommitService turns a table's proposed records into a new current version.
type CommitService struct {
	ctx      *database.Context
	defs     *database.TableDefRepository
	items    *database.ItemRepository
	records  *database.RecordRepository
	versions *database.VersionRepository
}

// NewCommitService creates a new CommitService.
func NewCommitService(ctx *database.Context) *CommitService {
	return &CommitService{
		ctx:      ctx,
		defs:     database.NewTableDefRepository(ctx),
		items:    database.NewItemRepository(ctx),
		records:  database.NewRecordRepository(ctx),
		versions: database.NewVersionRepository(ctx),
	}
}

// Commit archives every current record superseded by a proposed one, promotes
// the proposed records to current under a fresh version id, and stamps the
// version row with the table's summary statistics. The whole transition is one
// transaction; a table without proposed records has nothing to commit.
func (s *CommitService) Commit(ctx context.Context, tableName string, info CommitInfo) (*CommitResult, error) {
	schema, defID, err := s.schema(ctx, tableName)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Build(ctx, schema, s.items)
	if err != nil {
		return nil, err
	}

	var result CommitResult
	err = s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		proposed, err := q.ListProposedOnlyRecords(txCtx, defID)
		if err != nil {
			return err
		}
		if len(proposed) == 0 {
			return fmt.Errorf("commit service: table %q has no proposed records", tableName)
		}

		res, err := q.InsertVersion(txCtx, sqldb.InsertVersionParams{
			TableName: tableName,
			Label:     info.Label,
			Author:    info.Author,
			Note:      sql.NullString{String: info.Note, Valid: info.Note != ""},
		})
		if err != nil {
			return err
		}
		versionID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		// Supersede before promoting, or the promoted rows would archive
		// themselves.
		for _, rec := range proposed {
			if _, err := q.ArchiveCurrentRecordByKey(txCtx, sqldb.ArchiveCurrentRecordByKeyParams{
				VersionLast: sql.NullInt64{Int64: versionID, Valid: true},
				TableDefID:  defID,
				Key:         rec.Key,
			}); err != nil {
				return err
			}
		}

		promoted, err := q.PromoteProposedRecords(txCtx, sqldb.PromoteProposedRecordsParams{
			VersionFirst: sql.NullInt64{Int64: versionID, Valid: true},
			TableDefID:   defID,
		})
		if err != nil {
			return err
		}

		current, err := q.ListCurrentRecords(txCtx, defID)
		if err != nil {
			return err
		}

		result = CommitResult{
			VersionID: versionID,
			Dimension: cat.Dimension(),
			Size:      cat.Size(),
			Cells:     int64(len(current)),
			Changes:   promoted,
			Metric:    metricFor(schema.ValueField.Type, current),
		}
		return q.UpdateVersionStats(txCtx, sqldb.UpdateVersionStatsParams{
			Dimension: result.Dimension,
			Size:      result.Size,
			Cells:     result.Cells,
			Changes:   result.Changes,
			Metric:    result.Metric,
			ID:        versionID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RevertProposed discards a table's proposed records. Unlike the archive path
// this is a hard delete: a record that never became current leaves no trace.
func (s *CommitService) RevertProposed(ctx context.Context, tableName string) (int64, error) {
	_, defID, err := s.schema(ctx, tableName)
	if err != nil {
		return 0, err
	}
	return s.records.DeleteProposed(ctx, defID)
}

// ProposedCount returns the number of records pending commit.
func (s *CommitService) ProposedCount(ctx context.Context, tableName string) (int64, error) {
	_, defID, err := s.schema(ctx, tableName)
	if err != nil {
		return 0, err
	}
	return s.records.CountProposed(ctx, defID)
}

// Versions lists a table's commit history in version order.
func (s *CommitService) Versions(ctx context.Context, tableName string) ([]database.VersionRecord, error) {
	if _, _, err := s.schema(ctx, tableName); err != nil {
		return nil, err
	}
	return s.versions.ListByTable(ctx, tableName)
}

// metricFor computes the summary metric of a record set: the mean of the
// numeric values for data tables, "0" otherwise and for empty sets.
func metricFor(valueType tabular.FieldType, records []sqldb.Record) string {
	if valueType != tabular.IntegerField && valueType != tabular.DecimalField {
		return "0"
	}
	if len(records) == 0 {
		return "0"
	}

	sum := decimal.Zero
	for _, rec := range records {
		if !rec.ValueNum.Valid {
			continue
		}
		num, err := decimal.NewFromString(rec.ValueNum.String)
		if err != nil {
			continue
		}
		sum = sum.Add(num)
	}
	return sum.Div(decimal.NewFromInt(int64(len(records)))).String()
}

func (s *CommitService) schema(ctx context.Context, name string) (*tabular.Schema, int64, error) {
	schema, defID, err := s.defs.Schema(ctx, name)
	if errors.Is(err, database.ErrNotFound) {
		return nil, 0, ErrNotFound
	}
	return schema, defID, err
}

func (s *CommitService) withTx(ctx context.Context, fn func(context.Context, *sqldb.Queries) error) error {
	if s.ctx == nil || s.ctx.DB == nil {
		return fmt.Errorf("commit service: missing database context")
	}

	tx, err := s.ctx.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	queries := sqldb.New(tx)

	if err := fn(ctx, queries); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		_ = tx.Rollback()
		return err
	}

	return nil
}
