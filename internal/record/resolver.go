// Package record converts raw label-keyed input into fully resolved records,
// applying per-field-type conversion and reporting field-scoped errors.
package record

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/grid-vault/gridvault/internal/catalog"
	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/tabular"
)

// Resolver binds a catalog snapshot and a number format for one parse pass.
type Resolver struct {
	cat    *catalog.Catalog
	format config.NumberFormat
}

// NewResolver creates a resolver over the given catalog.
func NewResolver(cat *catalog.Catalog, format config.NumberFormat) *Resolver {
	return &Resolver{cat: cat, format: format}
}

// FromDict resolves a flat record dict (field name -> raw label or cell) into
// a typed record. Every declared index field and the value field must be
// present and nothing else; failures are accumulated so one pass surfaces
// every problem in the dict.
func (r *Resolver) FromDict(dict map[string]string) (*tabular.Record, tabular.Errors) {
	schema := r.cat.Schema()
	valueName := schema.ValueField.Name

	var errs tabular.Errors
	for name := range dict {
		if name == valueName {
			continue
		}
		if _, ok := schema.IndexField(name); !ok {
			errs = append(errs, &tabular.Error{Kind: tabular.NoField, Field: name})
		}
	}

	rec := &tabular.Record{Dims: make(map[string]tabular.Item, len(schema.IndexFields))}
	labels := make([]string, 0, len(schema.IndexFields))
	for _, field := range schema.IndexFields {
		label, ok := dict[field.Name]
		if !ok {
			errs = append(errs, &tabular.Error{Kind: tabular.NoField, Field: field.Name, Detail: "missing"})
			continue
		}
		id, ok := r.cat.LookupID(field.Name, label)
		if !ok {
			errs = append(errs, &tabular.Error{Kind: tabular.NoItem, Value: label, Domain: field.Domain})
			continue
		}
		rec.Dims[field.Name] = tabular.Item{ID: id, Label: label}
		labels = append(labels, label)
	}

	raw, ok := dict[valueName]
	if !ok {
		errs = append(errs, &tabular.Error{Kind: tabular.NoField, Field: valueName, Detail: "missing"})
	} else if err := r.setValue(rec, schema.ValueField, raw); err != nil {
		errs = append(errs, err)
	}

	if errs.HasErrors() {
		return nil, errs
	}
	rec.Key = tabular.MakeKey(labels, valueName)
	return rec, nil
}

// FromCell resolves a (row key, column header, cell) triple. For a one-column
// table the header is the value field itself; otherwise the header must be a
// label within the column field's domain and is folded into the record dict
// before delegating to FromDict.
func (r *Resolver) FromCell(keyDict map[string]string, header, cell, columnField string) (*tabular.Record, tabular.Errors) {
	schema := r.cat.Schema()
	valueName := schema.ValueField.Name

	dict := make(map[string]string, len(keyDict)+2)
	for k, v := range keyDict {
		dict[k] = v
	}

	switch {
	case columnField == valueName && header == valueName:
		dict[valueName] = cell
	case hasIndexField(schema, columnField):
		if _, ok := r.cat.LookupID(columnField, header); !ok {
			return nil, tabular.Errors{{Kind: tabular.NoField, Field: header, Detail: "not a column of " + columnField}}
		}
		dict[columnField] = header
		dict[valueName] = cell
	default:
		return nil, tabular.Errors{{Kind: tabular.NoField, Field: columnField}}
	}

	return r.FromDict(dict)
}

func hasIndexField(schema *tabular.Schema, name string) bool {
	_, ok := schema.IndexField(name)
	return ok
}

// setValue applies the per-type conversion for the value field. The switch is
// exhaustive over the FieldType enum; a type outside it is a schema defect.
func (r *Resolver) setValue(rec *tabular.Record, field tabular.Field, raw string) *tabular.Error {
	switch field.Type {
	case tabular.TextField:
		rec.Text = tabular.EscapeText(raw)
	case tabular.DecimalField:
		num, err := ParseDecimal(raw, r.format)
		if err != nil {
			return &tabular.Error{Kind: tabular.NotDecimal, Value: raw, Err: err}
		}
		rec.Num = num
	case tabular.IntegerField:
		num, err := ParseDecimal(raw, r.format)
		if err != nil {
			return &tabular.Error{Kind: tabular.NotDecimal, Value: raw, Err: err}
		}
		// Truncation is intentional: "3.0" is valid integer input.
		rec.Num = decimal.NewFromInt(num.IntPart())
	case tabular.ForeignKeyField:
		id, ok := r.cat.ValueID(raw)
		if !ok {
			return &tabular.Error{Kind: tabular.NoItem, Value: raw, Domain: field.Domain}
		}
		rec.Value = tabular.Item{ID: id, Label: raw}
	default:
		return &tabular.Error{
			Kind:   tabular.ValidationFailure,
			Field:  field.Name,
			Detail: fmt.Sprintf("unknown field type %q", field.Type),
		}
	}
	return nil
}

// ParseDecimal parses a numeric cell, accepting either a plain numeric string
// or one using the configured thousands/decimal separator pair.
func ParseDecimal(raw string, format config.NumberFormat) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if num, err := decimal.NewFromString(trimmed); err == nil {
		return num, nil
	}

	normalized := trimmed
	if format.ThousandsSep != "" {
		normalized = strings.ReplaceAll(normalized, format.ThousandsSep, "")
	}
	if format.DecimalSep != "" {
		normalized = strings.ReplaceAll(normalized, format.DecimalSep, ".")
	}
	return decimal.NewFromString(normalized)
}
