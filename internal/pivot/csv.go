package pivot

import (
	"encoding/csv"
	"strings"

	"github.com/grid-vault/gridvault/internal/catalog"
	"github.com/grid-vault/gridvault/internal/tabular"
)

// WriteCSV serializes the pivoted view of a record map back to CSV, the
// inverse of ParseCSV. Cells without a record stay empty.
func WriteCSV(cat *catalog.Catalog, records map[tabular.Key]*tabular.Record, sep rune) (string, error) {
	table := ForDisplay(cat, records)

	var b strings.Builder
	writer := csv.NewWriter(&b)
	writer.Comma = sep

	header := make([]string, 0, len(table.IndexHeaders)+len(table.ValueHeaders))
	header = append(header, table.IndexHeaders...)
	header = append(header, table.ValueHeaders...)
	if err := writer.Write(header); err != nil {
		return "", err
	}

	line := make([]string, len(header))
	for _, row := range table.Rows {
		for i, name := range header {
			line[i] = row[name]
		}
		if err := writer.Write(line); err != nil {
			return "", err
		}
	}

	writer.Flush()
	return b.String(), writer.Error()
}
