package latex

import "strings"

const (
	rowBreak      = `\\ \hline` + "\n"
	tableFootnote = "Gdzie"
)

// Table is rectangular tabular value: ordered column names and rows of cell
// values aligned to them.
type Table struct {
	Columns []string
	Rows    [][]string
}

// RowsNum returns number of data rows (header is not counted).
func (t *Table) RowsNum() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// ColsNum returns number of columns.
func (t *Table) ColsNum() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// RenderTableBody returns header and data rows of the table. Header cells are
// single column spans, every row is terminated by a row break and horizontal
// rule. Rows are padded or truncated to the number of columns.
func RenderTableBody(t *Table) string {
	var b strings.Builder

	cols := t.ColsNum()
	for i := 0; i < cols; i++ {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(`\multicolumn1{|l|}{` + t.Columns[i] + "}")
	}
	b.WriteString(rowBreak)

	for r := 0; r < t.RowsNum(); r++ {
		row := t.Rows[r]
		for i := 0; i < cols; i++ {
			if i > 0 {
				b.WriteByte('&')
			}
			if i < len(row) {
				b.WriteString(row[i])
			}
		}
		b.WriteString(rowBreak)
	}
	return b.String()
}

// RenderTable returns complete table environment: one right aligned ruled
// column per table column, header and data rows, label and caption footer.
// Empty table still produces well formed environment.
func RenderTable(t *Table, label string) string {
	var b strings.Builder
	b.WriteString("\n\\begin{table}[h!]\n")
	b.WriteString("\\centering\n")
	b.WriteString("\\caption{}\n")
	b.WriteString("\\begin{tabular}{|" + strings.Repeat("r|", t.ColsNum()) + "}\n")
	b.WriteString(`\hline`)
	b.WriteString(RenderTableBody(t))
	b.WriteString("\n\\end{tabular}\n")
	b.WriteString("\\label{" + label + "}\n")
	b.WriteString("\\caption*{" + tableFootnote + "}\n")
	b.WriteString("\\end{table}")
	return b.String()
}
