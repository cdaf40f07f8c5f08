package database

import (
	"time"

	"github.com/grid-vault/gridvault/internal/tabular"
)

// TableDefRecord represents a row in the table_defs table: one declared table
// schema with its value field and default column axis.
type TableDefRecord struct {
	ID          int64
	Name        string
	Model       tabular.ModelType
	ValueField  string
	ValueType   tabular.FieldType
	ValueDomain string
	ColumnField string
	CreatedAt   time.Time
}

// TableFieldRecord represents one ordered index field of a table definition.
type TableFieldRecord struct {
	ID         int64
	TableDefID int64
	Name       string
	Domain     string
	Position   int64
}

// ItemRecord represents a row in the items table. The paired version markers
// encode the lifecycle: both null never occurs for items (they become current
// on creation), version_last set means archived.
type ItemRecord struct {
	ID           int64
	Domain       string
	Label        string
	VersionFirst *int64
	VersionLast  *int64
	CreatedAt    time.Time
}

// StoredRecord represents a row in the records table: a narrow fact keyed by
// its canonical key string, carrying the paired version markers.
type StoredRecord struct {
	ID           int64
	TableDefID   int64
	Key          string
	ValueNum     *string
	ValueText    *string
	ValueItemID  *int64
	VersionFirst *int64
	VersionLast  *int64
	CreatedAt    time.Time
}

// VersionRecord represents a row in the versions table: one commit marker
// with its computed summary metrics.
type VersionRecord struct {
	ID        int64
	TableName string
	Label     string
	Author    string
	Note      *string
	Dimension string
	Size      int64
	Cells     int64
	Changes   int64
	Metric    string
	CreatedAt time.Time
}
