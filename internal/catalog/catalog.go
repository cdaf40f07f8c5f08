// Package catalog builds per-schema snapshots of the valid item domains and
// answers every label/id lookup the resolvers and the pivot engine need.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/grid-vault/gridvault/internal/tabular"
)

// ItemSource loads the currently valid items of a domain. The database layer
// satisfies it; tests provide in-memory fixtures.
type ItemSource interface {
	CurrentItems(ctx context.Context, domain string) ([]tabular.Item, error)
}

type fieldIndex struct {
	labels    []string
	idByLabel map[string]int64
	labelByID map[int64]string
}

// Catalog is an immutable snapshot of a schema's item domains, built once per
// operation and passed by reference to the resolvers. Only SetHeaders mutates
// it, and only to choose the display axis.
type Catalog struct {
	schema       *tabular.Schema
	fields       map[string]fieldIndex
	valueLookup  map[string]int64
	columnField  string
	indexHeaders []string
	valueHeaders []string
	oneColumn    bool
}

// Build loads the current item set for every index field (and the value field
// of a mappings table) and assembles the lookup snapshot. A field without a
// resolvable domain is a configuration defect and fails the whole build.
func Build(ctx context.Context, schema *tabular.Schema, source ItemSource) (*Catalog, error) {
	cat := &Catalog{
		schema: schema,
		fields: make(map[string]fieldIndex, len(schema.IndexFields)+1),
	}

	for _, field := range schema.IndexFields {
		idx, err := loadField(ctx, field, source)
		if err != nil {
			return nil, err
		}
		cat.fields[field.Name] = idx
	}

	if schema.Model == tabular.MappingsModel {
		idx, err := loadField(ctx, schema.ValueField, source)
		if err != nil {
			return nil, err
		}
		cat.fields[schema.ValueField.Name] = idx
		cat.valueLookup = idx.idByLabel
	}

	cat.SetHeaders(schema.ColumnField)
	return cat, nil
}

func loadField(ctx context.Context, field tabular.Field, source ItemSource) (fieldIndex, error) {
	if field.Domain == "" {
		return fieldIndex{}, &tabular.Error{Kind: tabular.CatalogBuild, Field: field.Name}
	}

	items, err := source.CurrentItems(ctx, field.Domain)
	if err != nil {
		return fieldIndex{}, &tabular.Error{Kind: tabular.CatalogBuild, Field: field.Name, Err: err}
	}

	idx := fieldIndex{
		labels:    make([]string, 0, len(items)),
		idByLabel: make(map[string]int64, len(items)),
		labelByID: make(map[int64]string, len(items)),
	}
	for _, item := range items {
		idx.labels = append(idx.labels, item.Label)
		idx.idByLabel[item.Label] = item.ID
		idx.labelByID[item.ID] = item.Label
	}
	return idx, nil
}

// Schema returns the descriptor the catalog was built for.
func (c *Catalog) Schema() *tabular.Schema { return c.schema }

// Size is the cartesian size of the table: the product of the per-field item
// counts across all index dimensions.
func (c *Catalog) Size() int64 {
	size := int64(1)
	for _, field := range c.schema.IndexFields {
		size *= int64(len(c.fields[field.Name].labels))
	}
	return size
}

// Dimension renders the per-field item counts as "{n1 x n2 x ...}".
func (c *Catalog) Dimension() string {
	counts := make([]string, 0, len(c.schema.IndexFields))
	for _, field := range c.schema.IndexFields {
		counts = append(counts, fmt.Sprintf("%d", len(c.fields[field.Name].labels)))
	}
	return "{" + strings.Join(counts, " x ") + "}"
}

// SetHeaders chooses the column axis and splits the schema's fields into row
// headers and column headers. A single-index table always pivots on the value
// field; an invalid or empty request falls back to the schema's declared
// default rather than failing, since the axis is a display convenience.
func (c *Catalog) SetHeaders(columnField string) {
	valueName := c.schema.ValueField.Name

	switch {
	case len(c.schema.IndexFields) < 2:
		columnField = valueName
	case columnField == valueName:
	default:
		if _, ok := c.schema.IndexField(columnField); !ok {
			columnField = c.schema.ColumnField
			if _, ok := c.schema.IndexField(columnField); !ok && columnField != valueName {
				columnField = valueName
			}
		}
	}

	c.columnField = columnField
	c.indexHeaders = c.indexHeaders[:0]
	for _, field := range c.schema.IndexFields {
		if field.Name != columnField {
			c.indexHeaders = append(c.indexHeaders, field.Name)
		}
	}

	if columnField == valueName {
		c.oneColumn = true
		c.valueHeaders = []string{valueName}
		return
	}
	c.oneColumn = false
	c.valueHeaders = append([]string(nil), c.fields[columnField].labels...)
}

// ColumnField returns the currently chosen column axis.
func (c *Catalog) ColumnField() string { return c.columnField }

// IndexHeaders returns the row-axis field names.
func (c *Catalog) IndexHeaders() []string { return c.indexHeaders }

// ValueHeaders returns the column-axis labels, or the value-field name for a
// one-column table.
func (c *Catalog) ValueHeaders() []string { return c.valueHeaders }

// OneColumn reports whether the table pivots on its value field.
func (c *Catalog) OneColumn() bool { return c.oneColumn }

// Labels returns the ordered label list of a field's domain.
func (c *Catalog) Labels(field string) []string { return c.fields[field].labels }

// LookupID resolves a label within a field's domain.
func (c *Catalog) LookupID(field, label string) (int64, bool) {
	id, ok := c.fields[field].idByLabel[label]
	return id, ok
}

// LookupLabel resolves an item id within a field's domain.
func (c *Catalog) LookupLabel(field string, id int64) (string, bool) {
	label, ok := c.fields[field].labelByID[id]
	return label, ok
}

// ValueID resolves a label against the value field's domain. Only mappings
// tables carry this lookup.
func (c *Catalog) ValueID(label string) (int64, bool) {
	id, ok := c.valueLookup[label]
	return id, ok
}

// KeyList enumerates the full cartesian product of the row headers' label
// lists. The iteration order is a contract: fields keep their declared order
// and the last-declared field varies fastest, which fixes the display row
// order downstream.
func (c *Catalog) KeyList() [][]string {
	rows := [][]string{nil}
	for _, field := range c.indexHeaders {
		labels := c.fields[field].labels
		next := make([][]string, 0, len(rows)*len(labels))
		for _, row := range rows {
			for _, label := range labels {
				widened := make([]string, len(row), len(row)+1)
				copy(widened, row)
				next = append(next, append(widened, label))
			}
		}
		rows = next
	}
	return rows
}

// SplitKeyString parses a literal key string "(label1,...,marker)" into its
// label tokens and the resolved item ids keyed by "<field>_id". The token
// count must match the index-field count plus the trailing marker, and every
// non-marker token must be a known label for its field.
func (c *Catalog) SplitKeyString(key string) ([]string, map[string]int64, error) {
	tokens := tabular.SplitKey(key)
	want := len(c.schema.IndexFields) + 1
	if len(tokens) != want {
		return nil, nil, &tabular.Error{
			Kind:   tabular.KeyInvalid,
			Value:  key,
			Detail: fmt.Sprintf("expected %d tokens, got %d", want, len(tokens)),
		}
	}

	labels := make([]string, 0, len(c.schema.IndexFields))
	ids := make(map[string]int64, len(c.schema.IndexFields))
	for i, field := range c.schema.IndexFields {
		label := strings.TrimSpace(tokens[i])
		id, ok := c.fields[field.Name].idByLabel[label]
		if !ok {
			return nil, nil, &tabular.Error{Kind: tabular.KeyNotFound, Field: field.Name, Value: label}
		}
		labels = append(labels, label)
		ids[field.Name+"_id"] = id
	}
	return labels, ids, nil
}
