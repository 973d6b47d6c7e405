package format

import (
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table is a terminal table with a header row. Numeric columns are marked
// right-aligned and long free-text columns get a wrap width.
type Table struct {
	w       table.Writer
	columns map[int]table.ColumnConfig
	rows    int
}

// NewTable starts a table with the given header.
func NewTable(header ...string) *Table {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	row := make(table.Row, len(header))
	for i, h := range header {
		row[i] = h
	}
	w.AppendHeader(row)
	return &Table{w: w, columns: make(map[int]table.ColumnConfig)}
}

// AlignRight right-aligns the given 1-based columns.
func (t *Table) AlignRight(cols ...int) *Table {
	for _, n := range cols {
		c := t.column(n)
		c.Align = text.AlignRight
		c.AlignHeader = text.AlignRight
		t.columns[n] = c
	}
	return t
}

// Wrap limits a 1-based column to width runes, wrapping longer cells.
func (t *Table) Wrap(col, width int) *Table {
	c := t.column(col)
	c.WidthMax = width
	t.columns[col] = c
	return t
}

func (t *Table) column(n int) table.ColumnConfig {
	if c, ok := t.columns[n]; ok {
		return c
	}
	return table.ColumnConfig{Number: n}
}

// Row appends a data row. Cells are rendered with fmt.Sprint.
func (t *Table) Row(vals ...any) {
	t.w.AppendRow(table.Row(append([]any(nil), vals...)))
	t.rows++
}

func (t *Table) Len() int { return t.rows }

func (t *Table) String() string {
	cfgs := make([]table.ColumnConfig, 0, len(t.columns))
	for _, c := range t.columns {
		cfgs = append(cfgs, c)
	}
	sort.Slice(cfgs, func(i, j int) bool { return cfgs[i].Number < cfgs[j].Number })
	t.w.SetColumnConfigs(cfgs)
	return t.w.Render()
}
