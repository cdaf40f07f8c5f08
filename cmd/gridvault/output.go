package main

import (
	"encoding/json"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/grid-vault/gridvault/internal/pivot"
)

func getTerminalWidth() int {
	// Try to get terminal width from stdout
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	// Default width if terminal size cannot be determined
	return 80
}

// truncateCell shortens a cell to fit within maxWidth, accounting for
// multi-byte characters.
func truncateCell(s string, maxWidth int) string {
	if maxWidth <= 0 || runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// renderPivot writes a pivoted table with go-pretty, sizing cell widths to
// the terminal.
func renderPivot(cmd *cobra.Command, pt *pivot.Table) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	headers := make([]string, 0, len(pt.IndexHeaders)+len(pt.ValueHeaders))
	headers = append(headers, pt.IndexHeaders...)
	headers = append(headers, pt.ValueHeaders...)

	// Budget the terminal width evenly across columns, with a sane floor so
	// narrow terminals still render something readable.
	maxCell := 0
	if n := len(headers); n > 0 {
		maxCell = (getTerminalWidth() - 3*n) / n
		if maxCell < 8 {
			maxCell = 8
		}
	}

	headerRow := make(table.Row, 0, len(headers))
	for _, name := range headers {
		headerRow = append(headerRow, truncateCell(name, maxCell))
	}
	t.AppendHeader(headerRow)

	for _, row := range pt.Rows {
		cells := make(table.Row, 0, len(headers))
		for _, name := range headers {
			cells = append(cells, truncateCell(row[name], maxCell))
		}
		t.AppendRow(cells)
	}

	t.Render()
}

func outputJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
