// Package usecase composes the services layer into the operations the CLI
// and the MCP server expose.
package usecase

import (
	"context"

	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/database"
	"github.com/grid-vault/gridvault/internal/pivot"
	"github.com/grid-vault/gridvault/internal/services"
	"github.com/grid-vault/gridvault/internal/tabular"
)

type Table struct {
	tables  *services.TableService
	commits *services.CommitService
}

func NewTable(dbCtx *database.Context, format config.CSVFormat) *Table {
	return &Table{
		tables:  services.NewTableService(dbCtx, format),
		commits: services.NewCommitService(dbCtx),
	}
}

// Define registers a new table schema parsed from CLI/MCP-level options.
func (u *Table) Define(ctx context.Context, opts DefineOptions) (int64, error) {
	schema, err := ParseSchema(opts)
	if err != nil {
		return 0, err
	}
	return u.tables.Define(ctx, schema)
}

// List returns all defined tables.
func (u *Table) List(ctx context.Context) ([]database.TableDefRecord, error) {
	return u.tables.List(ctx)
}

// ShowInput selects one stage of one table with an optional column axis.
type ShowInput struct {
	Table       string
	ColumnField string
	Version     string
}

// Show returns the pivoted view of the selected stage.
func (u *Table) Show(ctx context.Context, input ShowInput) (*pivot.Table, error) {
	return u.tables.Show(ctx, input.Table, input.ColumnField, input.Version)
}

// Export returns the selected stage serialized as CSV.
func (u *Table) Export(ctx context.Context, input ShowInput) (string, error) {
	return u.tables.Export(ctx, input.Table, input.ColumnField, input.Version)
}

// UploadInput carries one CSV document to parse against a table.
type UploadInput struct {
	Table       string
	Input       string
	ColumnField string
}

// UploadResult reports what an upload did. Errors holds the accumulated
// parse errors of a rejected document; Written is zero in that case.
type UploadResult struct {
	Written int
	Errors  tabular.Errors
}

// Upload parses a CSV document and stages its changed records as proposed.
func (u *Table) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	written, errs, err := u.tables.Upload(ctx, input.Table, input.Input, input.ColumnField)
	if err != nil {
		return nil, err
	}
	return &UploadResult{Written: written, Errors: errs}, nil
}

// UploadPosted stages a posted cell map keyed by literal key strings.
func (u *Table) UploadPosted(ctx context.Context, table string, posted map[string]string, columnField string) (*UploadResult, error) {
	written, errs, err := u.tables.UploadPosted(ctx, table, posted, columnField)
	if err != nil {
		return nil, err
	}
	return &UploadResult{Written: written, Errors: errs}, nil
}

// Commit promotes a table's proposed records to a new current version.
func (u *Table) Commit(ctx context.Context, table string, info services.CommitInfo) (*services.CommitResult, error) {
	return u.commits.Commit(ctx, table, info)
}

// Revert discards a table's proposed records and reports how many were
// removed.
func (u *Table) Revert(ctx context.Context, table string) (int64, error) {
	return u.commits.RevertProposed(ctx, table)
}

// Pending returns the number of records staged for the next commit.
func (u *Table) Pending(ctx context.Context, table string) (int64, error) {
	return u.commits.ProposedCount(ctx, table)
}

// Versions returns a table's commit history.
func (u *Table) Versions(ctx context.Context, table string) ([]database.VersionRecord, error) {
	return u.commits.Versions(ctx, table)
}
