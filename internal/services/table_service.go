package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/grid-vault/gridvault/internal/catalog"
	"github.com/grid-vault/gridvault/internal/changeset"
	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	sqldb "github.com/grid-vault/gridvault/internal/database/sqlc"
	"github.com/grid-vault/gridvault/internal/pivot"
	"github.com/grid-vault/gridvault/internal/record"
	"github.com/grid-vault/gridvault/internal/tabular"
)

// TableService orchestrates table definition, stage-aware loading, pivoted
// display, and the upload-diff-save pipeline.
type TableService struct {
	ctx      *database.Context
	defs     *database.TableDefRepository
	items    *database.ItemRepository
	records  *database.RecordRepository
	versions *database.VersionRepository
	stages   *database.RecordStageQuery
	format   config.CSVFormat
}

// NewTableService creates a new TableService using the given wire format.
func NewTableService(ctx *database.Context, format config.CSVFormat) *TableService {
	return &TableService{
		ctx:      ctx,
		defs:     database.NewTableDefRepository(ctx),
		items:    database.NewItemRepository(ctx),
		records:  database.NewRecordRepository(ctx),
		versions: database.NewVersionRepository(ctx),
		stages:   database.NewRecordStageQuery(ctx),
		format:   format,
	}
}

// Define persists a new table schema: the definition row plus its ordered
// index fields, in one transaction.
func (s *TableService) Define(ctx context.Context, schema *tabular.Schema) (int64, error) {
	if len(schema.IndexFields) == 0 {
		return 0, fmt.Errorf("table service: a table needs at least one index field")
	}

	var defID int64
	err := s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		res, err := q.InsertTableDef(txCtx, sqldb.InsertTableDefParams{
			Name:        schema.Name,
			ModelType:   string(schema.Model),
			ValueField:  schema.ValueField.Name,
			ValueType:   string(schema.ValueField.Type),
			ValueDomain: schema.ValueField.Domain,
			ColumnField: schema.ColumnField,
		})
		if err != nil {
			return err
		}
		if defID, err = res.LastInsertId(); err != nil {
			return err
		}

		for i, field := range schema.IndexFields {
			if _, err := q.InsertTableField(txCtx, sqldb.InsertTableFieldParams{
				TableDefID: defID,
				Name:       field.Name,
				Domain:     field.Domain,
				Position:   int64(i),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return defID, nil
}

// Schema loads the schema descriptor for a named table.
func (s *TableService) Schema(ctx context.Context, name string) (*tabular.Schema, int64, error) {
	schema, defID, err := s.defs.Schema(ctx, name)
	if errors.Is(err, database.ErrNotFound) {
		return nil, 0, ErrNotFound
	}
	return schema, defID, err
}

// List returns all table definitions.
func (s *TableService) List(ctx context.Context) ([]database.TableDefRecord, error) {
	return s.defs.List(ctx)
}

// Catalog builds the item-domain snapshot for a schema with the requested
// column axis.
func (s *TableService) Catalog(ctx context.Context, schema *tabular.Schema, columnField string) (*catalog.Catalog, error) {
	cat, err := catalog.Build(ctx, schema, s.items)
	if err != nil {
		return nil, err
	}
	cat.SetHeaders(columnField)
	return cat, nil
}

// ResolveStage resolves a version token against the table's version history.
func (s *TableService) ResolveStage(ctx context.Context, tableName, token string) (tabular.Stage, error) {
	latest, err := s.versions.MaxIDForTable(ctx, tableName)
	if err != nil {
		return tabular.Stage{}, err
	}
	return tabular.ResolveStage(token, latest)
}

// LoadStage loads the record map of one lifecycle stage.
func (s *TableService) LoadStage(ctx context.Context, defID int64, schema *tabular.Schema, stage tabular.Stage, changesOnly bool) (map[tabular.Key]*tabular.Record, error) {
	var (
		rows []database.StoredRecord
		err  error
	)
	if changesOnly {
		rows, err = s.stages.ListChanges(ctx, defID, stage)
	} else {
		rows, err = s.stages.ListAll(ctx, defID, stage)
	}
	if err != nil {
		return nil, err
	}

	records := make(map[tabular.Key]*tabular.Record, len(rows))
	for _, row := range rows {
		rec, err := s.recordFromStored(ctx, row, schema)
		if err != nil {
			return nil, err
		}
		// Later rows win within a stage; the archived cumulative view can
		// hold several generations of the same key and the newest is the
		// one valid at the stage.
		records[rec.Key] = rec
	}
	return records, nil
}

// Show pivots one stage of a table for display.
func (s *TableService) Show(ctx context.Context, name, columnField, stageToken string) (*pivot.Table, error) {
	schema, defID, err := s.Schema(ctx, name)
	if err != nil {
		return nil, err
	}

	stage, err := s.ResolveStage(ctx, name, stageToken)
	if err != nil {
		return nil, err
	}

	cat, err := s.Catalog(ctx, schema, columnField)
	if err != nil {
		return nil, err
	}

	records, err := s.LoadStage(ctx, defID, schema, stage, false)
	if err != nil {
		return nil, err
	}
	return pivot.ForDisplay(cat, records), nil
}

// Export serializes one stage of a table back to CSV.
func (s *TableService) Export(ctx context.Context, name, columnField, stageToken string) (string, error) {
	schema, defID, err := s.Schema(ctx, name)
	if err != nil {
		return "", err
	}

	stage, err := s.ResolveStage(ctx, name, stageToken)
	if err != nil {
		return "", err
	}

	cat, err := s.Catalog(ctx, schema, columnField)
	if err != nil {
		return "", err
	}

	records, err := s.LoadStage(ctx, defID, schema, stage, false)
	if err != nil {
		return "", err
	}
	return pivot.WriteCSV(cat, records, s.format.Separator)
}

// Upload parses a CSV document, diffs it against the current stage, and
// saves the change set as proposed records. The returned count is the number
// of records written; accumulated parse errors leave the store untouched.
func (s *TableService) Upload(ctx context.Context, name, input, columnField string) (int, tabular.Errors, error) {
	schema, defID, err := s.Schema(ctx, name)
	if err != nil {
		return 0, nil, err
	}

	cat, err := s.Catalog(ctx, schema, columnField)
	if err != nil {
		return 0, nil, err
	}

	resolver := record.NewResolver(cat, s.format.Numbers)
	incoming, parseErrs := pivot.ParseCSV(cat, resolver, input, s.format.Separator)
	if parseErrs.HasErrors() {
		return 0, parseErrs, nil
	}

	stored, err := s.LoadStage(ctx, defID, schema, tabular.Stage{Kind: tabular.StageCurrent}, false)
	if err != nil {
		return 0, nil, err
	}

	changed := changeset.Diff(incoming, stored, schema.ValueField.Type)
	if len(changed) == 0 {
		return 0, nil, nil
	}

	if err := s.SaveChangeSet(ctx, defID, schema, changed); err != nil {
		return 0, nil, err
	}
	return len(changed), nil, nil
}

// UploadPosted resolves a posted cell map and saves its change set, the
// posted-form counterpart of Upload.
func (s *TableService) UploadPosted(ctx context.Context, name string, posted map[string]string, columnField string) (int, tabular.Errors, error) {
	schema, defID, err := s.Schema(ctx, name)
	if err != nil {
		return 0, nil, err
	}

	cat, err := s.Catalog(ctx, schema, columnField)
	if err != nil {
		return 0, nil, err
	}

	resolver := record.NewResolver(cat, s.format.Numbers)
	incoming, parseErrs := pivot.ParsePosted(cat, resolver, posted)
	if parseErrs.HasErrors() {
		return 0, parseErrs, nil
	}

	stored, err := s.LoadStage(ctx, defID, schema, tabular.Stage{Kind: tabular.StageCurrent}, false)
	if err != nil {
		return 0, nil, err
	}

	changed := changeset.Diff(incoming, stored, schema.ValueField.Type)
	if len(changed) == 0 {
		return 0, nil, nil
	}

	if err := s.SaveChangeSet(ctx, defID, schema, changed); err != nil {
		return 0, nil, err
	}
	return len(changed), nil, nil
}

// SaveChangeSet writes a change set as proposed records in one all-or-nothing
// transaction. A proposed record already present for a key is updated in
// place rather than duplicated, so repeated uploads before a commit keep one
// pending row per key.
func (s *TableService) SaveChangeSet(ctx context.Context, defID int64, schema *tabular.Schema, changed map[tabular.Key]*tabular.Record) error {
	return s.withTx(ctx, func(txCtx context.Context, q *sqldb.Queries) error {
		for key, rec := range changed {
			valueNum, valueText, valueItem := storedValue(rec, schema.ValueField.Type)

			existing, err := q.FindProposedRecordByKey(txCtx, sqldb.FindProposedRecordByKeyParams{
				TableDefID: defID,
				Key:        string(key),
			})
			switch {
			case err == nil:
				if err := q.UpdateRecordValue(txCtx, sqldb.UpdateRecordValueParams{
					ValueNum:    valueNum,
					ValueText:   valueText,
					ValueItemID: valueItem,
					ID:          existing.ID,
				}); err != nil {
					return err
				}
			case errors.Is(err, sql.ErrNoRows):
				res, err := q.InsertRecord(txCtx, sqldb.InsertRecordParams{
					TableDefID:  defID,
					Key:         string(key),
					ValueNum:    valueNum,
					ValueText:   valueText,
					ValueItemID: valueItem,
				})
				if err != nil {
					return err
				}
				recordID, err := res.LastInsertId()
				if err != nil {
					return err
				}
				for field, item := range rec.Dims {
					if _, err := q.InsertRecordField(txCtx, sqldb.InsertRecordFieldParams{
						RecordID: recordID,
						Field:    field,
						ItemID:   item.ID,
					}); err != nil {
						return err
					}
				}
			default:
				return err
			}
		}
		return nil
	})
}

// recordFromStored rebuilds a resolved record from its stored row. Labels
// come from the canonical key string; foreign-key values resolve through the
// items table so archived labels stay readable in historical stages.
func (s *TableService) recordFromStored(ctx context.Context, row database.StoredRecord, schema *tabular.Schema) (*tabular.Record, error) {
	rec := &tabular.Record{Key: tabular.Key(row.Key)}

	switch schema.ValueField.Type {
	case tabular.TextField:
		if row.ValueText != nil {
			rec.Text = *row.ValueText
		}
	case tabular.IntegerField, tabular.DecimalField:
		if row.ValueNum != nil {
			num, err := decimal.NewFromString(*row.ValueNum)
			if err != nil {
				return nil, fmt.Errorf("table service: corrupt numeric value for key %s: %w", row.Key, err)
			}
			rec.Num = num
		}
	case tabular.ForeignKeyField:
		if row.ValueItemID != nil {
			item, err := s.items.FindByID(ctx, *row.ValueItemID)
			if err != nil {
				return nil, err
			}
			if item == nil {
				return nil, fmt.Errorf("table service: dangling value item %d for key %s", *row.ValueItemID, row.Key)
			}
			rec.Value = tabular.Item{ID: item.ID, Label: item.Label}
		}
	}
	return rec, nil
}

// storedValue maps a resolved record value onto the records table columns.
func storedValue(rec *tabular.Record, valueType tabular.FieldType) (sql.NullString, sql.NullString, sql.NullInt64) {
	var valueNum, valueText sql.NullString
	var valueItem sql.NullInt64
	switch valueType {
	case tabular.TextField:
		valueText = sql.NullString{String: rec.Text, Valid: true}
	case tabular.IntegerField, tabular.DecimalField:
		valueNum = sql.NullString{String: rec.Num.String(), Valid: true}
	case tabular.ForeignKeyField:
		valueItem = sql.NullInt64{Int64: rec.Value.ID, Valid: true}
	}
	return valueNum, valueText, valueItem
}

func (s *TableService) withTx(ctx context.Context, fn func(context.Context, *sqldb.Queries) error) error {
	if s.ctx == nil || s.ctx.DB == nil {
		return fmt.Errorf("table service: missing database context")
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
