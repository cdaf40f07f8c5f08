// Package pivot reshapes narrow key/value record sets into wide display
// tables and parses wide input (CSV, posted cell maps, pre-split rows) back
// into resolved records.
package pivot

import (
	"github.com/grid-vault/gridvault/internal/catalog"
	"github.com/grid-vault/gridvault/internal/tabular"
)

// Table is the transient pivoted view of a record set: row-axis field names,
// column-axis labels, and one dict per row keyed by the union of both header
// sets. It is recomputed on every read and never persisted.
type Table struct {
	IndexHeaders []string
	ValueHeaders []string
	Rows         []map[string]string
}

// ForDisplay pivots a record map into a wide table. Rows follow the
// catalog's key-list order; cells without a matching record are left absent
// from the row dict rather than zeroed.
func ForDisplay(cat *catalog.Catalog, records map[tabular.Key]*tabular.Record) *Table {
	schema := cat.Schema()
	table := &Table{
		IndexHeaders: append([]string(nil), cat.IndexHeaders()...),
		ValueHeaders: append([]string(nil), cat.ValueHeaders()...),
	}

	for _, keyRow := range cat.KeyList() {
		row := make(map[string]string, len(table.IndexHeaders)+len(table.ValueHeaders))
		for i, field := range table.IndexHeaders {
			row[field] = keyRow[i]
		}
		for _, header := range table.ValueHeaders {
			key := rowKey(cat, row, header)
			if rec, ok := records[key]; ok {
				row[header] = rec.DisplayValue(schema.ValueField.Type)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// rowKey composes the full index-field key for one cell, substituting the
// column field's current label into its slot for multi-column tables.
func rowKey(cat *catalog.Catalog, row map[string]string, header string) tabular.Key {
	schema := cat.Schema()
	labels := make([]string, 0, len(schema.IndexFields))
	for _, field := range schema.IndexFields {
		if !cat.OneColumn() && field.Name == cat.ColumnField() {
			labels = append(labels, header)
			continue
		}
		labels = append(labels, row[field.Name])
	}
	return tabular.MakeKey(labels, schema.ValueField.Name)
}
