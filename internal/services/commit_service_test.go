package services

import (
	"context"
	"strings"
	"testing"

	"github.com/grid-vault/gridvault/internal/tabular"
)

func TestCommitServicePromotesProposed(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	tables := setupSalesTable(t, dbCtx)
	commits := NewCommitService(dbCtx)

	if _, _, err := tables.Upload(ctx, "sales", salesUpload, ""); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	result, err := commits.Commit(ctx, "sales", CommitInfo{Label: "initial", Author: "tester", Note: "first load"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.VersionID != 1 {
		t.Fatalf("expected version id 1, got %d", result.VersionID)
	}
	if result.Cells != 4 || result.Changes != 4 || result.Size != 4 {
		t.Fatalf("unexpected stats: %#v", result)
	}
	if result.Dimension != "{2 x 2}" {
		t.Fatalf("unexpected dimension: %q", result.Dimension)
	}
	// (1+2+3+4)/4
	if result.Metric != "2.5" {
		t.Fatalf("unexpected metric: %q", result.Metric)
	}

	proposed, err := commits.ProposedCount(ctx, "sales")
	if err != nil {
		t.Fatalf("ProposedCount failed: %v", err)
	}
	if proposed != 0 {
		t.Fatalf("expected no pending records after commit, got %d", proposed)
	}

	table, err := tables.Show(ctx, "sales", "", "current")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if table.Rows[0]["ax"] != "1" || table.Rows[1]["bx"] != "4" {
		t.Fatalf("unexpected current rows: %#v", table.Rows)
	}
}

func TestCommitServiceArchivesSupersededRecords(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	tables := setupSalesTable(t, dbCtx)
	commits := NewCommitService(dbCtx)

	if _, _, err := tables.Upload(ctx, "sales", salesUpload, ""); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if _, err := commits.Commit(ctx, "sales", CommitInfo{Label: "v1", Author: "tester"}); err != nil {
		t.Fatalf("first Commit failed: %v", err)
	}

	changed := strings.Replace(salesUpload, "north\t1\t2", "north\t5\t2", 1)
	count, _, err := tables.Upload(ctx, "sales", changed, "")
	if err != nil {
		t.Fatalf("second Upload failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 changed record, got %d", count)
	}

	result, err := commits.Commit(ctx, "sales", CommitInfo{Label: "v2", Author: "tester"})
	if err != nil {
		t.Fatalf("second Commit failed: %v", err)
	}
	if result.VersionID != 2 {
		t.Fatalf("expected version id 2, got %d", result.VersionID)
	}
	if result.Cells != 4 || result.Changes != 1 {
		t.Fatalf("unexpected stats: %#v", result)
	}
	// (5+2+3+4)/4
	if result.Metric != "3.5" {
		t.Fatalf("unexpected metric: %q", result.Metric)
	}

	current, err := tables.Show(ctx, "sales", "", "current")
	if err != nil {
		t.Fatalf("Show current failed: %v", err)
	}
	if current.Rows[0]["ax"] != "5" {
		t.Fatalf("expected updated current cell, got %#v", current.Rows[0])
	}

	// The historical view at version 1 still carries the superseded value.
	archived, err := tables.Show(ctx, "sales", "", "1")
	if err != nil {
		t.Fatalf("Show archived failed: %v", err)
	}
	if archived.Rows[0]["ax"] != "1" {
		t.Fatalf("expected historical cell 1, got %#v", archived.Rows[0])
	}

	// The cumulative view at the live current version includes the live rows.
	atCurrent, err := tables.Show(ctx, "sales", "", "2")
	if err != nil {
		t.Fatalf("Show at current version failed: %v", err)
	}
	if atCurrent.Rows[0]["ax"] != "5" {
		t.Fatalf("expected live cell at current version, got %#v", atCurrent.Rows[0])
	}
}

func TestCommitServiceNothingToCommit(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	tables := setupSalesTable(t, dbCtx)
	commits := NewCommitService(dbCtx)

	if _, err := commits.Commit(ctx, "sales", CommitInfo{Label: "empty", Author: "tester"}); err == nil {
		t.Fatal("expected error when no proposed records exist")
	}

	// A failed commit must not burn a version id.
	if _, _, err := tables.Upload(ctx, "sales", salesUpload, ""); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	result, err := commits.Commit(ctx, "sales", CommitInfo{Label: "v1", Author: "tester"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.VersionID != 1 {
		t.Fatalf("expected version id 1 after aborted commit, got %d", result.VersionID)
	}
}

func TestCommitServiceUnknownTable(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	commits := NewCommitService(dbCtx)

	if _, err := commits.Commit(ctx, "missing", CommitInfo{Label: "x", Author: "y"}); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := commits.ProposedCount(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := commits.Versions(ctx, "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCommitServiceRevertProposed(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	tables := setupSalesTable(t, dbCtx)
	commits := NewCommitService(dbCtx)

	if _, _, err := tables.Upload(ctx, "sales", salesUpload, ""); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	removed, err := commits.RevertProposed(ctx, "sales")
	if err != nil {
		t.Fatalf("RevertProposed failed: %v", err)
	}
	if removed != 4 {
		t.Fatalf("expected 4 records discarded, got %d", removed)
	}

	proposed, err := commits.ProposedCount(ctx, "sales")
	if err != nil {
		t.Fatalf("ProposedCount failed: %v", err)
	}
	if proposed != 0 {
		t.Fatalf("expected no pending records, got %d", proposed)
	}
}

func TestCommitServiceVersionHistory(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	tables := setupSalesTable(t, dbCtx)
	commits := NewCommitService(dbCtx)

	if _, _, err := tables.Upload(ctx, "sales", salesUpload, ""); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if _, err := commits.Commit(ctx, "sales", CommitInfo{Label: "v1", Author: "alice", Note: "seed"}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	versions, err := commits.Versions(ctx, "sales")
	if err != nil {
		t.Fatalf("Versions failed: %v", err)
	}
	if len(versions) != 1 {
		t.Fatalf("expected 1 version, got %d", len(versions))
	}
	v := versions[0]
	if v.Label != "v1" || v.Author != "alice" || v.Note == nil || *v.Note != "seed" {
		t.Fatalf("unexpected version metadata: %#v", v)
	}
	if v.Cells != 4 || v.Changes != 4 || v.Size != 4 || v.Dimension != "{2 x 2}" {
		t.Fatalf("unexpected version stats: %#v", v)
	}
}

func TestCommitServiceMappingsMetricIsZero(t *testing.T) {
	dbCtx := setupServiceDB(t)
	ctx := context.Background()

	items := NewItemService(dbCtx)
	for _, label := range []string{"north", "south"} {
		if _, err := items.Add(ctx, "region", label); err != nil {
			t.Fatalf("Add region %q failed: %v", label, err)
		}
	}
	for _, label := range []string{"alice", "bob"} {
		if _, err := items.Add(ctx, "owner", label); err != nil {
			t.Fatalf("Add owner %q failed: %v", label, err)
		}
	}

	tables := NewTableService(dbCtx, testCSVFormat())
	schema := &tabular.Schema{
		Name:  "owners",
		Model: tabular.MappingsModel,
		IndexFields: []tabular.Field{
			{Name: "region", Type: tabular.ForeignKeyField, Domain: "region"},
		},
		ValueField:  tabular.Field{Name: "owner", Type: tabular.ForeignKeyField, Domain: "owner"},
		ColumnField: "owner",
	}
	if _, err := tables.Define(ctx, schema); err != nil {
		t.Fatalf("Define failed: %v", err)
	}

	upload := "region\towner\nnorth\talice\nsouth\tbob\n"
	count, errs, err := tables.Upload(ctx, "owners", upload, "")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if errs.HasErrors() {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	if count != 2 {
		t.Fatalf("expected 2 records, got %d", count)
	}

	commits := NewCommitService(dbCtx)
	result, err := commits.Commit(ctx, "owners", CommitInfo{Label: "v1", Author: "tester"})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if result.Metric != "0" {
		t.Fatalf("expected metric 0 for item-valued table, got %q", result.Metric)
	}
	if result.Dimension != "{2}" || result.Size != 2 {
		t.Fatalf("unexpected stats: %#v", result)
	}

	table, err := tables.Show(ctx, "owners", "", "current")
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if table.Rows[0]["owner"] != "alice" || table.Rows[1]["owner"] != "bob" {
		t.Fatalf("unexpected mappings rows: %#v", table.Rows)
	}
}
