package display

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	indent = "  "
	gutter = "  "
)

// Table renders an aligned text table. One row can be highlighted (today,
// tonight, the block in progress) and any number of rows dimmed (disabled
// alarms).
type Table struct {
	headers []string
	rows    [][]string
	// highlightRow is the 0-based row index to highlight. -1 = none.
	highlightRow int
	dimmed       map[int]bool
}

// NewTable creates a new table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:      headers,
		highlightRow: -1,
		dimmed:       make(map[int]bool),
	}
}

// AddRow appends a row. Missing cells render empty; extra cells are dropped.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetHighlightRow sets which row index (0-based) should be highlighted.
func (t *Table) SetHighlightRow(idx int) {
	t.highlightRow = idx
}

// DimRow renders row idx in the dim style. Highlighting wins over dimming.
func (t *Table) DimRow(idx int) {
	t.dimmed[idx] = true
}

// Len reports the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Render produces the formatted table string with leading indent.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := t.widths()
	var sb strings.Builder

	sb.WriteString(indent + Bold(formatRow(t.headers, widths)) + "\n")

	sepParts := make([]string, len(widths))
	for i, w := range widths {
		sepParts[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim(indent+strings.Join(sepParts, gutter)) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		switch {
		case i == t.highlightRow:
			line = Accent(line)
		case t.dimmed[i]:
			line = Dim(line)
		}
		sb.WriteString(indent + line + "\n")
	}

	return sb.String()
}

// widths measures columns in runes so names like "Ramaḍān" stay aligned.
func (t *Table) widths() []int {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}
	return widths
}

// formatRow pads each cell to its column width. fmt pads by rune count.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = fmt.Sprintf("%-*s", w, cell)
	}
	return strings.Join(parts, gutter)
}
