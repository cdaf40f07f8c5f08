package record

import (
	"context"
	"testing"

	"github.com/grid-vault/gridvault/internal/catalog"
	"github.com/grid-vault/gridvault/internal/config"
	"github.com/grid-vault/gridvault/internal/tabular"
)

type fakeSource map[string][]tabular.Item

func (s fakeSource) CurrentItems(_ context.Context, domain string) ([]tabular.Item, error) {
	return s[domain], nil
}

func dataSchema() *tabular.Schema {
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

func testResolver(t *testing.T, schema *tabular.Schema) *Resolver {
	t.Helper()
	source := fakeSource{
		"dim_a": {{ID: 1, Label: "a1"}, {ID: 2, Label: "a2"}},
		"dim_b": {{ID: 3, Label: "b1"}, {ID: 4, Label: "b2"}},
	}
	cat, err := catalog.Build(context.Background(), schema, source)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return NewResolver(cat, config.NumberFormat{ThousandsSep: ".", DecimalSep: ","})
}

func TestFromDictResolvesDataRecord(t *testing.T) {
	r := testResolver(t, dataSchema())

	rec, errs := r.FromDict(map[string]string{
		"testitema": "a1",
		"testitemb": "b2",
		"value":     "1.234,56",
	})
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rec.Key != "(a1,b2,value)" {
		t.Fatalf("unexpected key: %q", rec.Key)
	}
	if rec.Num.String() != "1234.56" {
		t.Fatalf("unexpected value: %s", rec.Num)
	}
	if rec.Dims["testitemb"].ID != 4 {
		t.Fatalf("unexpected resolved dim: %+v", rec.Dims["testitemb"])
	}
}

func TestFromDictAccumulatesErrors(t *testing.T) {
	r := testResolver(t, dataSchema())

	rec, errs := r.FromDict(map[string]string{
		"testitema": "nope",
		"bogus":     "x",
		"value":     "abc",
	})
	if rec != nil {
		t.Fatal("expected no record on error")
	}
	if len(errs) != 4 {
		t.Fatalf("expected 4 accumulated errors, got %d: %v", len(errs), errs)
	}

	kinds := map[tabular.ErrorKind]int{}
	for _, e := range errs {
		kinds[e.Kind]++
	}
	if kinds[tabular.NoField] != 2 || kinds[tabular.NoItem] != 1 || kinds[tabular.NotDecimal] != 1 {
		t.Fatalf("unexpected error kinds: %v", kinds)
	}
}

func TestFromDictIntegerTruncation(t *testing.T) {
	schema := dataSchema()
	schema.ValueField.Type = tabular.IntegerField
	r := testResolver(t, schema)

	rec, errs := r.FromDict(map[string]string{"testitema": "a1", "testitemb": "b1", "value": "3.0"})
	if errs.HasErrors() {
		t.Fatalf("integer field should accept \"3.0\": %v", errs)
	}
	if rec.Num.String() != "3" {
		t.Fatalf("expected truncated 3, got %s", rec.Num)
	}
}

func TestFromDictMappingsValue(t *testing.T) {
	schema := dataSchema()
	schema.Model = tabular.MappingsModel
	schema.ValueField = tabular.Field{Name: "target", Type: tabular.ForeignKeyField, Domain: "dim_b"}
	schema.ColumnField = "target"
	r := testResolver(t, schema)

	rec, errs := r.FromDict(map[string]string{"testitema": "a2", "testitemb": "b1", "target": "b2"})
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rec.Value.ID != 4 || rec.Value.Label != "b2" {
		t.Fatalf("unexpected resolved value: %+v", rec.Value)
	}

	_, errs = r.FromDict(map[string]string{"testitema": "a2", "testitemb": "b1", "target": "nope"})
	if len(errs) != 1 || errs[0].Kind != tabular.NoItem {
		t.Fatalf("expected NoItem for unresolvable target, got %v", errs)
	}
}

func TestFromDictTextEscaping(t *testing.T) {
	schema := dataSchema()
	schema.ValueField.Type = tabular.TextField
	r := testResolver(t, schema)

	rec, errs := r.FromDict(map[string]string{"testitema": "a1", "testitemb": "b1", "value": "<b>x</b>"})
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rec.Text != "&lt;b&gt;x&lt;/b&gt;" {
		t.Fatalf("text value should be escaped, got %q", rec.Text)
	}
}

func TestFromCellOneColumn(t *testing.T) {
	r := testResolver(t, dataSchema())

	rec, errs := r.FromCell(map[string]string{"testitema": "a1", "testitemb": "b1"}, "value", "7", "value")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rec.Key != "(a1,b1,value)" || rec.Num.String() != "7" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestFromCellColumnFieldHeader(t *testing.T) {
	r := testResolver(t, dataSchema())

	rec, errs := r.FromCell(map[string]string{"testitema": "a2"}, "b2", "5", "testitemb")
	if errs.HasErrors() {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if rec.Key != "(a2,b2,value)" || rec.Num.String() != "5" {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestFromCellRejectsBadHeader(t *testing.T) {
	r := testResolver(t, dataSchema())

	_, errs := r.FromCell(map[string]string{"testitema": "a2"}, "zz", "5", "testitemb")
	if len(errs) != 1 || errs[0].Kind != tabular.NoField || errs[0].Field != "zz" {
		t.Fatalf("expected NoField naming the header, got %v", errs)
	}

	_, errs = r.FromCell(map[string]string{"testitema": "a2"}, "b1", "5", "bogus")
	if len(errs) != 1 || errs[0].Kind != tabular.NoField || errs[0].Field != "bogus" {
		t.Fatalf("expected NoField naming the column field, got %v", errs)
	}
}

func TestParseDecimal(t *testing.T) {
	format := config.NumberFormat{ThousandsSep: ".", DecimalSep: ","}

	cases := map[string]string{
		"1.234,56": "1234.56",
		"1234.56":  "1234.56",
		"7":        "7",
		"-2,5":     "-2.5",
	}
	for input, want := range cases {
		num, err := ParseDecimal(input, format)
		if err != nil {
			t.Fatalf("ParseDecimal(%q) error: %v", input, err)
		}
		if num.String() != want {
			t.Fatalf("ParseDecimal(%q) = %s, want %s", input, num, want)
		}
	}

	if _, err := ParseDecimal("abc", format); err == nil {
		t.Fatal("expected error for non-numeric input")
	}
}
