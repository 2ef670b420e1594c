package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column defines a table column.
type Column struct {
	Title string
	Width int
	Right bool // right-align cell text
}

// Row is a slice of cell values.
type Row []string

// Table renders the token panel and the status listings.
type Table struct {
	Columns []Column
	Rows    []Row
	SelIdx  int // selected row index (-1 = none)
	// Dim marks rows rendered in the metadata colour (unused panel slots).
	Dim map[int]bool
}

// NewTable creates a new table.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols, SelIdx: -1}
}

// AddRow appends a row.
func (t *Table) AddRow(r Row) {
	t.Rows = append(t.Rows, r)
}

// fit returns s padded or cut to exactly width display cells.
func fit(s string, width int, right bool) string {
	if w := lipgloss.Width(s); w < width {
		if right {
			return strings.Repeat(" ", width-w) + s
		}
		return s + strings.Repeat(" ", width-w)
	}
	runes := []rune(s)
	for lipgloss.Width(string(runes)) > width {
		runes = runes[:len(runes)-1]
	}
	out := string(runes)
	return out + strings.Repeat(" ", width-lipgloss.Width(out))
}

// Render returns the full table as a string. Cells are fitted before styling
// so every column keeps its exact width.
func (t *Table) Render() string {
	var sb strings.Builder

	headerStyle := lipgloss.NewStyle().Foreground(ColorHighlight).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(ColorValue)

	headers := make([]string, 0, len(t.Columns))
	divider := make([]string, 0, len(t.Columns))
	for _, col := range t.Columns {
		headers = append(headers, headerStyle.Render(fit(col.Title, col.Width, col.Right)))
		divider = append(divider, StyleDim.Render(strings.Repeat("-", col.Width)))
	}
	sb.WriteString(strings.Join(headers, " "))
	sb.WriteString("\n")
	sb.WriteString(strings.Join(divider, " "))
	sb.WriteString("\n")

	for i, row := range t.Rows {
		style := cellStyle
		switch {
		case i == t.SelIdx:
			style = StyleSelected
		case t.Dim[i]:
			style = StyleDim
		}
		cells := make([]string, 0, len(t.Columns))
		for j, col := range t.Columns {
			val := ""
			if j < len(row) {
				val = row[j]
			}
			cells = append(cells, style.Render(fit(val, col.Width, col.Right)))
		}
		sb.WriteString(strings.Join(cells, " "))
		sb.WriteString("\n")
	}

	return sb.String()
}

// KeyValueBlock renders key-value pairs in a bordered box.
func KeyValueBlock(title string, pairs [][2]string) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(StyleTitle.Render(title))
		sb.WriteString("\n")
	}
	for i, p := range pairs {
		key := StyleMeta.Render(fmt.Sprintf("%-14s", p[0]+":"))
		sb.WriteString(key + " " + StyleValue.Render(p[1]))
		if i < len(pairs)-1 {
			sb.WriteString("\n")
		}
	}
	return StyleBorder.Render(sb.String())
}
