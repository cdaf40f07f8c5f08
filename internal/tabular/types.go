// Package tabular provides the core domain types for versioned
// multi-dimensional tables: schemas, items, records, keys, lifecycle stages,
// and the shared error taxonomy.
package tabular

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"
)

// ModelType distinguishes the three table shapes the store manages.
type ModelType string

const (
	// DataModel tables carry a numeric measurement per index-key tuple.
	DataModel ModelType = "data"
	// MappingsModel tables map an index-key tuple onto another item.
	MappingsModel ModelType = "mappings"
	// ItemModel tables hold the foreign-key lookup targets themselves.
	ItemModel ModelType = "item"
)

// ParseModelType validates a model-type token.
func ParseModelType(s string) (ModelType, error) {
	switch ModelType(s) {
	case DataModel, MappingsModel, ItemModel:
		return ModelType(s), nil
	}
	return "", fmt.Errorf("invalid model type: %q (valid values: data, mappings, item)", s)
}

// FieldType is the closed set of value representations a field can declare.
type FieldType string

const (
	TextField       FieldType = "text"
	IntegerField    FieldType = "integer"
	DecimalField    FieldType = "decimal"
	ForeignKeyField FieldType = "item"
)

// ParseFieldType validates a field-type token.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case TextField, IntegerField, DecimalField, ForeignKeyField:
		return FieldType(s), nil
	}
	return "", fmt.Errorf("invalid field type: %q (valid values: text, integer, decimal, item)", s)
}

// Field describes one declared field of a table schema. Index fields always
// resolve through an item domain; the value field may be any FieldType.
type Field struct {
	Name   string
	Type   FieldType
	Domain string
}

// Schema describes the shape of one table: its ordered index fields, the
// measured value field, and the default column axis for pivoted display.
type Schema struct {
	Name        string
	Model       ModelType
	IndexFields []Field
	ValueField  Field
	ColumnField string
}

// IndexField returns the declared index field with the given name.
func (s *Schema) IndexField(name string) (Field, bool) {
	for _, f := range s.IndexFields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldNames returns the index-field names followed by the value-field name.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.IndexFields)+1)
	for _, f := range s.IndexFields {
		names = append(names, f.Name)
	}
	return append(names, s.ValueField.Name)
}

// Item is one foreign-key lookup target inside a domain.
type Item struct {
	ID    int64
	Label string
}

// Key is the canonical string form of a record key: the index-field labels in
// schema order plus the value-field name as trailing marker, wrapped in
// parentheses. Keys are derived from resolved records and never stored apart
// from them; the literal form round-trips through Catalog.SplitKeyString.
type Key string

// MakeKey builds a canonical key from ordered index labels and the
// value-field marker.
func MakeKey(labels []string, marker string) Key {
	parts := make([]string, 0, len(labels)+1)
	parts = append(parts, labels...)
	parts = append(parts, marker)
	return Key("(" + strings.Join(parts, ",") + ")")
}

// SplitKey breaks a key string into its raw comma-separated tokens without
// validating them. Catalog.SplitKeyString performs the validated variant.
func SplitKey(key string) []string {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(key), "("), ")")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, ",")
}

// Record is a fully resolved narrow record: every index field bound to an
// item, and the value parsed according to the schema's value-field type.
type Record struct {
	Key   Key
	Dims  map[string]Item
	Num   decimal.Decimal
	Text  string
	Value Item
}

// DisplayValue renders the record's value for a pivoted cell.
func (r *Record) DisplayValue(valueType FieldType) string {
	switch valueType {
	case TextField:
		return r.Text
	case IntegerField, DecimalField:
		return r.Num.String()
	case ForeignKeyField:
		return r.Value.Label
	}
	return ""
}

// SameValue reports whether two resolved records carry an identical value.
// Numeric values compare by decimal equality so that "7" and "7.0" are the
// same cell; foreign-key values compare by item identity.
func (r *Record) SameValue(other *Record, valueType FieldType) bool {
	if other == nil {
		return false
	}
	switch valueType {
	case TextField:
		return r.Text == other.Text
	case IntegerField, DecimalField:
		return r.Num.Equal(other.Num)
	case ForeignKeyField:
		return r.Value.ID == other.Value.ID
	}
	return false
}

// EscapeText sanitizes a text value for storage alongside user-facing output.
func EscapeText(s string) string {
	return html.EscapeString(s)
}
