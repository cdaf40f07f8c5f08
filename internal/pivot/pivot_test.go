package pivot

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/grid-vault/gridvault/internal/catalog"
	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/record"
	"github.com/grid-vault/gridvault/internal/tabular"
)

type fakeSource map[string][]tabular.Item

func (s fakeSource) CurrentItems(_ context.Context, domain string) ([]tabular.Item, error) {
	return s[domain], nil
}

var numberFormat = config.NumberFormat{ThousandsSep: ".", DecimalSep: ","}

func twoDimSchema() *tabular.Schema {
	return &tabular.Schema{
		Name:  "facts",
		Model: tabular.DataModel,
		IndexFields: []tabular.Field{
			{Name: "testitema", Type: tabular.ForeignKeyField, Domain: "dim_a"},
			{Name: "testitemb", Type: tabular.ForeignKeyField, Domain: "dim_b"},
		},
		ValueField:  tabular.Field{Name: "value", Type: tabular.DecimalField},
		ColumnField: "value",
	}
}

func buildFixture(t *testing.T, schema *tabular.Schema, columnField string) (*catalog.Catalog, *record.Resolver) {
	t.Helper()
	source := fakeSource{
		"dim_a": {{ID: 1, Label: "a1"}, {ID: 2, Label: "a2"}},
		"dim_b": {{ID: 3, Label: "b1"}, {ID: 4, Label: "b2"}},
		"dim_c": {{ID: 5, Label: "c1"}, {ID: 6, Label: "c2"}},
	}
	cat, err := catalog.Build(context.Background(), schema, source)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	cat.SetHeaders(columnField)
	return cat, record.NewResolver(cat, numberFormat)
}

func storedRecords(t *testing.T, res *record.Resolver, values map[string]string) map[tabular.Key]*tabular.Record {
	t.Helper()
	records := make(map[tabular.Key]*tabular.Record, len(values))
	for key, value := range values {
		tokens := tabular.SplitKey(key)
		rec, errs := res.FromDict(map[string]string{
			"testitema": tokens[0],
			"testitemb": tokens[1],
			"value":     value,
		})
		if errs.HasErrors() {
			t.Fatalf("fixture record %q failed: %v", key, errs)
		}
		records[rec.Key] = rec
	}
	return records
}

// The end-to-end display scenario: a one-column data table indexed by (A,B)
// pivoted with B as the column axis.
func TestForDisplayMultiColumn(t *testing.T) {
	cat, res := buildFixture(t, twoDimSchema(), "testitemb")
	records := storedRecords(t, res, map[string]string{
		"(a1,b1,value)": "1",
		"(a1,b2,value)": "3",
		"(a2,b1,value)": "5",
		"(a2,b2,value)": "7",
	})

	table := ForDisplay(cat, records)

	want := []map[string]string{
		{"testitema": "a1", "b1": "1", "b2": "3"},
		{"testitema": "a2", "b1": "5", "b2": "7"},
	}
	if !reflect.DeepEqual(table.Rows, want) {
		t.Fatalf("unexpected rows: %#v", table.Rows)
	}
	if !reflect.DeepEqual(table.IndexHeaders, []string{"testitema"}) {
		t.Fatalf("unexpected index headers: %#v", table.IndexHeaders)
	}
	if !reflect.DeepEqual(table.ValueHeaders, []string{"b1", "b2"}) {
		t.Fatalf("unexpected value headers: %#v", table.ValueHeaders)
	}
}

func TestForDisplayOmitsEmptyCells(t *testing.T) {
	cat, res := buildFixture(t, twoDimSchema(), "testitemb")
	records := storedRecords(t, res, map[string]string{"(a1,b2,value)": "3"})

	table := ForDisplay(cat, records)
	if _, ok := table.Rows[0]["b1"]; ok {
		t.Fatalf("cell without a record must be absent, got %#v", table.Rows[0])
	}
	if table.Rows[0]["b2"] != "3" {
		t.Fatalf("unexpected cell value: %#v", table.Rows[0])
	}
}

func TestParseCSVOneColumn(t *testing.T) {
	cat, res := buildFixture(t, twoDimSchema(), "value")

	input := "testitema\ttestitemb\tvalue\n" +
		"a1\tb1\t1.234,56\n" +
		"a2\tb2\t7\n"

	records, errs := ParseCSV(cat, res, input, '\t')
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if rec := records["(a1,b1,value)"]; rec == nil || rec.Num.String() != "1234.56" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestParseCSVMultiColumnHeaders(t *testing.T) {
	schema := &tabular.Schema{
		Name:  "facts",
		Model: tabular.DataModel,
		IndexFields: []tabular.Field{
			{Name: "testitema", Type: tabular.ForeignKeyField, Domain: "dim_a"},
			{Name: "testitemb", Type: tabular.ForeignKeyField, Domain: "dim_b"},
			{Name: "testitemc", Type: tabular.ForeignKeyField, Domain: "dim_c"},
		},
		ValueField:  tabular.Field{Name: "value", Type: tabular.DecimalField},
		ColumnField: "testitemc",
	}
	cat, res := buildFixture(t, schema, "testitemc")

	input := "testitema\ttestitemb\tc1\tc2\n" +
		"a1\tb1\t1\t2\n"

	records, errs := ParseCSV(cat, res, input, '\t')
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("expected one record per column cell, got %d", len(records))
	}
	if rec := records["(a1,b1,c2,value)"]; rec == nil || rec.Num.String() != "2" {
		t.Fatalf("unexpected record for c2 cell: %+v", rec)
	}

	// A bad header is rejected with a SchemaMismatch naming it.
	bad := "testitema\ttestitemBAD\tc1\tc2\na1\tb1\t1\t2\n"
	_, errs = ParseCSV(cat, res, bad, '\t')
	if len(errs) != 1 || errs[0].Kind != tabular.SchemaMismatch {
		t.Fatalf("expected SchemaMismatch, got %v", errs)
	}
	if detail := errs[0].Error(); !strings.Contains(detail, "testitemBAD") || !strings.Contains(detail, "testitemb") {
		t.Fatalf("error should enumerate both the unknown header and the missing field: %s", detail)
	}
}

func TestParseCSVWrongColumnCountSkipsLine(t *testing.T) {
	cat, res := buildFixture(t, twoDimSchema(), "value")

	input := "testitema\ttestitemb\tvalue\n" +
		"a1\tb1\n" +
		"a2\tb2\t7\n"

	records, errs := ParseCSV(cat, res, input, '\t')
	if len(errs) != 1 || errs[0].Kind != tabular.WrongColumnCount || errs[0].Line != 2 {
		t.Fatalf("expected WrongColumnCount for line 2, got %v", errs)
	}
	if len(records) != 0 {
		t.Fatalf("a batch with errors must yield no records, got %d", len(records))
	}
}

func TestParseCSVAccumulatesCellErrors(t *testing.T) {
	cat, res := buildFixture(t, twoDimSchema(), "value")

	input := "testitema\ttestitemb\tvalue\n" +
		"a1\tb1\tabc\n" +
		"a9\tb2\t7\n"

	records, errs := ParseCSV(cat, res, input, '\t')
	if len(records) != 0 {
		t.Fatal("expected all-or-nothing semantics")
	}
	if len(errs) != 2 {
		t.Fatalf("expected both errors surfaced in one pass, got %v", errs)
	}
	if errs[0].Kind != tabular.NotDecimal || errs[0].Line != 2 {
		t.Fatalf("expected NotDecimal on line 2, got %+v", errs[0])
	}
	if errs[1].Kind != tabular.NoItem || errs[1].Line != 3 {
		t.Fatalf("expected NoItem on line 3, got %+v", errs[1])
	}
}

func TestParsePosted(t *testing.T) {
	cat, res := buildFixture(t, twoDimSchema(), "value")

	records, errs := ParsePosted(cat, res, map[string]string{
		"(a1,b1,value)": "1",
		"(a2,b2,value)": "2,5",
	})
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if rec := records["(a2,b2,value)"]; rec.Num.String() != "2.5" {
		t.Fatalf("unexpected value: %s", rec.Num)
	}
}

func TestParsePostedAccumulatesEntryErrors(t *testing.T) {
	cat, res := buildFixture(t, twoDimSchema(), "value")

	records, errs := ParsePosted(cat, res, map[string]string{
		"(a1,value)":    "1", // token count mismatch
		"(a1,zz,value)": "2", // unknown label
		"(a2,b2,value)": "3", // fine on its own
	})
	if len(records) != 0 {
		t.Fatal("expected all-or-nothing semantics")
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %v", errs)
	}
	if errs[0].Kind != tabular.KeyInvalid || errs[1].Kind != tabular.KeyNotFound {
		t.Fatalf("unexpected error kinds: %v", errs)
	}
}

func TestParseRows(t *testing.T) {
	cat, res := buildFixture(t, twoDimSchema(), "testitemb")

	records, errs := ParseRows(cat, res, []string{"testitema", "b1", "b2"}, []map[string]string{
		{"testitema": "a1", "b1": "1", "b2": "3"},
		{"testitema": "a2", "b1": "5"},
	})
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
}

// Round-trip property: pivot to CSV and parse back, for both column-axis
// choices of a two-dimensional table.
func TestCSVRoundTrip(t *testing.T) {
	for _, columnField := range []string{"value", "testitemb", "testitema"} {
		cat, res := buildFixture(t, twoDimSchema(), columnField)
		original := storedRecords(t, res, map[string]string{
			"(a1,b1,value)": "1",
			"(a1,b2,value)": "3",
			"(a2,b1,value)": "5",
			"(a2,b2,value)": "7",
		})

		out, err := WriteCSV(cat, original, '\t')
		if err != nil {
			t.Fatalf("WriteCSV(%s) failed: %v", columnField, err)
		}

		parsed, errs := ParseCSV(cat, res, out, '\t')
		if errs.HasErrors() {
			t.Fatalf("ParseCSV(%s) failed: %v", columnField, errs)
		}
		if len(parsed) != len(original) {
			t.Fatalf("round trip with column %s lost records: %d != %d", columnField, len(parsed), len(original))
		}
		for key, rec := range original {
			got, ok := parsed[key]
			if !ok {
				t.Fatalf("round trip with column %s lost key %s", columnField, key)
			}
			if !got.Num.Equal(rec.Num) {
				t.Fatalf("round trip with column %s changed %s: %s != %s", columnField, key, got.Num, rec.Num)
			}
		}
	}
}
