package ui

// columns.go computes bubbles/table column widths from flexible specs.

import (
	"github.com/charmbracelet/bubbles/table"
)

// ColumnSpec sizes one table column. A column with Width set is fixed; the
// others split the leftover width in proportion to Flex, never below Min.
type ColumnSpec struct {
	Title string
	Width int
	Flex  int
	Min   int
}

// minTableWidth keeps columns readable on very narrow terminals
const minTableWidth = 50

// cellPadding is the space bubbles/table adds around every cell
const cellPadding = 2

// CalculateColumns turns specs into bubbles/table columns that fill totalWidth.
// Rounding leftovers go to the flex columns from the left.
func CalculateColumns(specs []ColumnSpec, totalWidth int) []table.Column {
	totalWidth = max(totalWidth, minTableWidth)

	free := totalWidth - cellPadding*len(specs)
	flex := 0
	for _, s := range specs {
		if s.Width > 0 {
			free -= s.Width
		} else {
			flex += s.Flex
		}
	}
	free = max(free, 0)

	columns := make([]table.Column, len(specs))
	used := 0
	for i, s := range specs {
		w := s.Width
		if w == 0 && flex > 0 {
			w = free * s.Flex / flex
			used += w
		}
		columns[i] = table.Column{Title: s.Title, Width: w}
	}

	for i := 0; used < free && flex > 0; i = (i + 1) % len(specs) {
		if specs[i].Width == 0 && specs[i].Flex > 0 {
			columns[i].Width++
			used++
		}
	}

	for i, s := range specs {
		columns[i].Width = max(columns[i].Width, s.Min)
	}
	return columns
}

// IssueColumns returns column specs for the issue list
func IssueColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "Issue", Width: 12},
		{Title: "Title", Flex: 70, Min: 20},
		{Title: "Level", Width: 8},
		{Title: "Events", Width: 8},
		{Title: "Users", Width: 6},
		{Title: "Last Seen", Flex: 30, Min: 14},
	}
}

// SavedSearchColumns returns column specs for the saved search list
func SavedSearchColumns() []ColumnSpec {
	return []ColumnSpec{
		{Title: "", Width: 2},
		{Title: "Name", Flex: 35, Min: 12},
		{Title: "Query", Flex: 50, Min: 20},
		{Title: "Sort", Width: 9},
		{Title: "Owner", Flex: 15, Min: 7},
	}
}
