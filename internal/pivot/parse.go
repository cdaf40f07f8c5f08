package pivot

import (
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/grid-vault/gridvault/internal/catalog"
	"github.com/grid-vault/gridvault/internal/record"
	"github.com/grid-vault/gridvault/internal/tabular"
)

// ParseCSV parses an uploaded CSV document into resolved records. The first
// line is the header and must cover exactly the table's row and column
// headers (order-independent). Per-line and per-cell failures accumulate; a
// batch with any error yields no records, so a flawed upload can never be
// partially committed.
func ParseCSV(cat *catalog.Catalog, res *record.Resolver, input string, sep rune) (map[tabular.Key]*tabular.Record, tabular.Errors) {
	reader := csv.NewReader(strings.NewReader(input))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, tabular.Errors{{Kind: tabular.SchemaMismatch, Detail: err.Error(), Err: err}}
	}
	if len(lines) == 0 {
		return nil, tabular.Errors{{Kind: tabular.SchemaMismatch, Detail: "input has no header line"}}
	}

	header := lines[0]
	if err := CheckHeaders(cat, header); err != nil {
		return nil, tabular.Errors{err}
	}

	records := make(map[tabular.Key]*tabular.Record)
	var errs tabular.Errors
	for i, line := range lines[1:] {
		lineNo := i + 2
		if len(line) != len(header) {
			errs = append(errs, &tabular.Error{
				Kind:   tabular.WrongColumnCount,
				Line:   lineNo,
				Detail: fmt.Sprintf("expected %d cells, got %d", len(header), len(line)),
			})
			continue
		}

		row := make(map[string]string, len(header))
		for j, name := range header {
			row[name] = line[j]
		}
		errs = append(errs, resolveRow(cat, res, row, lineNo, records)...)
	}

	if errs.HasErrors() {
		return map[tabular.Key]*tabular.Record{}, errs
	}
	return records, nil
}

// ParseRows resolves pre-split rows (header -> cell dicts) with the same cell
// semantics as the CSV path.
func ParseRows(cat *catalog.Catalog, res *record.Resolver, headers []string, rows []map[string]string) (map[tabular.Key]*tabular.Record, tabular.Errors) {
	if err := CheckHeaders(cat, headers); err != nil {
		return nil, tabular.Errors{err}
	}

	records := make(map[tabular.Key]*tabular.Record)
	var errs tabular.Errors
	for i, row := range rows {
		errs = append(errs, resolveRow(cat, res, row, i+1, records)...)
	}

	if errs.HasErrors() {
		return map[tabular.Key]*tabular.Record{}, errs
	}
	return records, nil
}

// ParsePosted resolves a posted cell map whose keys are literal key strings
// "(label1,...,marker)" and whose values are single cells. Entries are
// processed independently; a bad entry never aborts the rest.
func ParsePosted(cat *catalog.Catalog, res *record.Resolver, posted map[string]string) (map[tabular.Key]*tabular.Record, tabular.Errors) {
	schema := cat.Schema()

	// Deterministic processing order for stable error reporting.
	keys := make([]string, 0, len(posted))
	for key := range posted {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	records := make(map[tabular.Key]*tabular.Record)
	var errs tabular.Errors
	for _, key := range keys {
		labels, _, err := cat.SplitKeyString(key)
		if err != nil {
			if te, ok := err.(*tabular.Error); ok {
				errs = append(errs, te)
			} else {
				errs = append(errs, &tabular.Error{Kind: tabular.KeyInvalid, Value: key, Detail: err.Error()})
			}
			continue
		}

		dict := make(map[string]string, len(labels)+1)
		for i, field := range schema.IndexFields {
			dict[field.Name] = labels[i]
		}
		dict[schema.ValueField.Name] = posted[key]

		rec, recErrs := res.FromDict(dict)
		if recErrs.HasErrors() {
			errs = append(errs, recErrs...)
			continue
		}
		records[rec.Key] = rec
	}

	if errs.HasErrors() {
		return map[tabular.Key]*tabular.Record{}, errs
	}
	return records, nil
}

// CheckHeaders validates an upload's header set against the catalog's row and
// column headers in both directions, enumerating everything that is missing
// or unknown in one error.
func CheckHeaders(cat *catalog.Catalog, headers []string) *tabular.Error {
	expected := make(map[string]bool, len(cat.IndexHeaders())+len(cat.ValueHeaders()))
	for _, name := range cat.IndexHeaders() {
		expected[name] = true
	}
	for _, name := range cat.ValueHeaders() {
		expected[name] = true
	}

	seen := make(map[string]bool, len(headers))
	var unknown []string
	for _, name := range headers {
		seen[name] = true
		if !expected[name] {
			unknown = append(unknown, name)
		}
	}

	var missing []string
	for _, name := range cat.IndexHeaders() {
		if !seen[name] {
			missing = append(missing, name)
		}
	}
	for _, name := range cat.ValueHeaders() {
		if !seen[name] {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 && len(unknown) == 0 {
		return nil
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, fmt.Sprintf("table fields missing from headers: %s", strings.Join(missing, ", ")))
	}
	if len(unknown) > 0 {
		parts = append(parts, fmt.Sprintf("headers that are not table fields: %s", strings.Join(unknown, ", ")))
	}
	return &tabular.Error{Kind: tabular.SchemaMismatch, Detail: strings.Join(parts, "; ")}
}

// resolveRow resolves every value-header cell of one wide row into records.
// Empty cells are simply absent, matching how ForDisplay renders them.
func resolveRow(cat *catalog.Catalog, res *record.Resolver, row map[string]string, lineNo int, records map[tabular.Key]*tabular.Record) tabular.Errors {
	keyDict := make(map[string]string, len(cat.IndexHeaders()))
	for _, name := range cat.IndexHeaders() {
		keyDict[name] = row[name]
	}

	var errs tabular.Errors
	for _, header := range cat.ValueHeaders() {
		cell, ok := row[header]
		if !ok || strings.TrimSpace(cell) == "" {
			continue
		}

		rec, recErrs := res.FromCell(keyDict, header, cell, cat.ColumnField())
		if recErrs.HasErrors() {
			for _, e := range recErrs {
				if e.Line == 0 {
					e.Line = lineNo
				}
			}
			errs = append(errs, recErrs...)
			continue
		}
		records[rec.Key] = rec
	}
	return errs
}
