package usecase

import (
	"fmt"
	"strings"

	"github.com/grid-vault/gridvault/internal/tabular"
)

// DefineOptions are the raw CLI/MCP-level options for defining a table.
// Fields are "name:domain" pairs in declaration order; Value is
// "name:type[:domain]", the trailing domain being required for item-valued
// tables.
type DefineOptions struct {
	Name        string
	Model       string
	Fields      []string
	Value       string
	ColumnField string
}

// ParseSchema converts define options into a validated schema descriptor.
func ParseSchema(opts DefineOptions) (*tabular.Schema, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("table name is required")
	}

	model := opts.Model
	if model == "" {
		model = string(tabular.DataModel)
	}
	modelType, err := tabular.ParseModelType(model)
	if err != nil {
		return nil, err
	}

	if len(opts.Fields) == 0 {
		return nil, fmt.Errorf("at least one index field is required")
	}
	indexFields := make([]tabular.Field, 0, len(opts.Fields))
	for _, spec := range opts.Fields {
		name, domain, ok := strings.Cut(spec, ":")
		if !ok || name == "" || domain == "" {
			return nil, fmt.Errorf("invalid field %q (expected name:domain)", spec)
		}
		indexFields = append(indexFields, tabular.Field{
			Name:   name,
			Type:   tabular.ForeignKeyField,
			Domain: domain,
		})
	}

	valueField, err := parseValueField(opts.Value, modelType)
	if err != nil {
		return nil, err
	}

	columnField := opts.ColumnField
	if columnField == "" {
		columnField = indexFields[len(indexFields)-1].Name
	}
	if columnField != valueField.Name {
		found := false
		for _, f := range indexFields {
			if f.Name == columnField {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("column field %q is not a declared field", columnField)
		}
	}

	return &tabular.Schema{
		Name:        opts.Name,
		Model:       modelType,
		IndexFields: indexFields,
		ValueField:  valueField,
		ColumnField: columnField,
	}, nil
}

func parseValueField(spec string, model tabular.ModelType) (tabular.Field, error) {
	if spec == "" {
		return tabular.Field{}, fmt.Errorf("value field is required (name:type[:domain])")
	}

	parts := strings.SplitN(spec, ":", 3)
	if len(parts) < 2 || parts[0] == "" {
		return tabular.Field{}, fmt.Errorf("invalid value field %q (expected name:type[:domain])", spec)
	}

	fieldType, err := tabular.ParseFieldType(parts[1])
	if err != nil {
		return tabular.Field{}, err
	}

	field := tabular.Field{Name: parts[0], Type: fieldType}
	if len(parts) == 3 {
		field.Domain = parts[2]
	}

	switch {
	case fieldType == tabular.ForeignKeyField && field.Domain == "":
		return tabular.Field{}, fmt.Errorf("item-valued field %q needs a domain (name:item:domain)", field.Name)
	case fieldType != tabular.ForeignKeyField && field.Domain != "":
		return tabular.Field{}, fmt.Errorf("field %q of type %s does not take a domain", field.Name, fieldType)
	case model == tabular.MappingsModel && fieldType != tabular.ForeignKeyField:
		return tabular.Field{}, fmt.Errorf("a mappings table needs an item-valued field")
	}
	return field, nil
}
