// Package stats summarizes courses and renders them as plain-text tables.
package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column describes one table column. Numeric columns are right-aligned.
type column struct {
	title   string
	numeric bool
}

// courseColumns is the layout of the list report.
var courseColumns = []column{
	{title: "ID", numeric: true},
	{title: "Name"},
	{title: "Missed", numeric: true},
	{title: "Cap", numeric: true},
	{title: "Left", numeric: true},
	{title: "Status"},
}

// renderTable lays out a header line plus one line per row. Cells are
// measured in terminal cells so wide runes in course names stay aligned;
// missing cells render empty and trailing blanks are trimmed.
func renderTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := columnWidths(cols, rows)

	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = col.title
	}
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, renderRow(cols, widths, header))
	for _, row := range rows {
		lines = append(lines, renderRow(cols, widths, row))
	}
	return lines
}

func columnWidths(cols []column, rows [][]string) []int {
	widths := make([]int, len(cols))
	for i, col := range cols {
		widths[i] = runewidth.StringWidth(col.title)
	}
	for _, row := range rows {
		for i := range cols {
			if i < len(row) {
				widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
			}
		}
	}
	return widths
}

func renderRow(cols []column, widths []int, row []string) string {
	cells := make([]string, len(cols))
	for i, col := range cols {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		gap := strings.Repeat(" ", max(0, widths[i]-runewidth.StringWidth(cell)))
		if col.numeric {
			cells[i] = gap + cell
		} else {
			cells[i] = cell + gap
		}
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}
