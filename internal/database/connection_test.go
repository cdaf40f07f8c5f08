package database

import (
	"database/sql"
	"os"
	"testing"

	"github.com/grid-vault/gridvault/internal/config"
)

func setupTestDB(t *testing.T) *Context {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("GRIDVAULT_DIR", tmp)

	ctx, err := CreateDatabase("")
	if err != nil {
		t.Fatalf("CreateDatabase returned error: %v", err)
	}

	t.Cleanup(func() {
		if err := CloseDatabase(ctx); err != nil {
			t.Fatalf("CloseDatabase error: %v", err)
		}
	})

	return ctx
}

func TestDatabaseCreationAndMigration(t *testing.T) {
	ctx := setupTestDB(t)

	dbPath := config.GetDBPath()
	if _, err := os.Stat(dbPath); err != nil {
		t.Fatalf("expected database file to exist at %s: %v", dbPath, err)
	}

	tables := []string{"table_defs", "table_fields", "items", "versions", "records", "record_fields"}
	for _, table := range tables {
		if !tableExists(t, ctx.DB, table) {
			t.Fatalf("expected table %s to exist", table)
		}
	}
}

func TestClearDatabaseRemovesAllRows(t *testing.T) {
	ctx := setupTestDB(t)

	defID := insertTableDef(t, ctx.DB, "sales")
	insertTableField(t, ctx.DB, defID, "region", "region", 0)
	itemID := insertItem(t, ctx.DB, "region", "north")
	versionID := insertVersion(t, ctx.DB, "sales", "v1")
	recordID := insertRecord(t, ctx.DB, defID, "(north,amount)", "1", versionID)
	insertRecordField(t, ctx.DB, recordID, "region", itemID)

	for _, table := range []string{"table_defs", "table_fields", "items", "versions", "records", "record_fields"} {
		assertCount(t, ctx.DB, table, 1)
	}

	if err := ClearDatabase(ctx); err != nil {
		t.Fatalf("ClearDatabase returned error: %v", err)
	}

	for _, table := range []string{"table_defs", "table_fields", "items", "versions", "records", "record_fields"} {
		assertCount(t, ctx.DB, table, 0)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		t.Fatalf("tableExists query failed for %s: %v", table, err)
	}
	return true
}

func insertTableDef(t *testing.T, db *sql.DB, name string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO table_defs(name, model_type, value_field, value_type, column_field) VALUES(?, 'data', 'amount', 'decimal', 'region')`, name)
	if err != nil {
		t.Fatalf("insertTableDef failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertTableDef LastInsertId failed: %v", err)
	}
	return id
}

func insertTableField(t *testing.T, db *sql.DB, defID int64, name, domain string, position int64) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO table_fields(table_def_id, name, domain, position) VALUES(?, ?, ?, ?)`, defID, name, domain, position); err != nil {
		t.Fatalf("insertTableField failed: %v", err)
	}
}

func insertItem(t *testing.T, db *sql.DB, domain, label string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO items(domain, label, version_first) VALUES(?, ?, 0)`, domain, label)
	if err != nil {
		t.Fatalf("insertItem failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertItem LastInsertId failed: %v", err)
	}
	return id
}

func insertVersion(t *testing.T, db *sql.DB, tableName, label string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO versions(table_name, label) VALUES(?, ?)`, tableName, label)
	if err != nil {
		t.Fatalf("insertVersion failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertVersion LastInsertId failed: %v", err)
	}
	return id
}

func insertRecord(t *testing.T, db *sql.DB, defID int64, key, valueNum string, versionFirst int64) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO records(table_def_id, key, value_num, version_first) VALUES(?, ?, ?, ?)`, defID, key, valueNum, versionFirst)
	if err != nil {
		t.Fatalf("insertRecord failed: %v", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		t.Fatalf("insertRecord LastInsertId failed: %v", err)
	}
	return id
}

func insertRecordField(t *testing.T, db *sql.DB, recordID int64, field string, itemID int64) {
	t.Helper()
	if _, err := db.Exec(`INSERT INTO record_fields(record_id, field, item_id) VALUES(?, ?, ?)`, recordID, field, itemID); err != nil {
		t.Fatalf("insertRecordField failed: %v", err)
	}
}

func assertCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("count query failed for %s: %v", table, err)
	}
	if count != expected {
		t.Fatalf("expected %s to have %d rows, got %d", table, expected, count)
	}
}
