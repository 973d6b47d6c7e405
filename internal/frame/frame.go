package frame

import (
	"fmt"
	"io"
	"math"
	"strconv"
)

// Frame is an in-memory table: ordered named columns over rows of cells.
// Column names are unique within a frame.
type Frame struct {
	columns []string
	index   map[string]int
	rows    [][]Value
}

// New creates an empty frame. Repeated names are made unique by appending
// ".1", ".2", ... to later occurrences.
func New(columns []string) *Frame {
	f := &Frame{index: make(map[string]int, len(columns))}
	for _, c := range columns {
		name := c
		for n := 1; ; n++ {
			if _, dup := f.index[name]; !dup {
				break
			}
			name = c + "." + strconv.Itoa(n)
		}
		f.index[name] = len(f.columns)
		f.columns = append(f.columns, name)
	}
	return f
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

func (f *Frame) Len() int { return len(f.rows) }

func (f *Frame) Has(col string) bool {
	_, ok := f.index[col]
	return ok
}

// Append adds a row. The row must have one cell per column.
func (f *Frame) Append(row []Value) error {
	if len(row) != len(f.columns) {
		return fmt.Errorf("row has %d cells, frame has %d columns", len(row), len(f.columns))
	}
	cp := make([]Value, len(row))
	copy(cp, row)
	f.rows = append(f.rows, cp)
	return nil
}

// Get returns the cell at (row, col), null when the column does not exist.
func (f *Frame) Get(row int, col string) Value {
	idx, ok := f.index[col]
	if !ok {
		return NullValue()
	}
	return f.rows[row][idx]
}

// Set overwrites a cell. Unknown columns are ignored.
func (f *Frame) Set(row int, col string, v Value) {
	if idx, ok := f.index[col]; ok {
		f.rows[row][idx] = v
	}
}

// Row returns a copy of one row.
func (f *Frame) Row(i int) []Value {
	out := make([]Value, len(f.rows[i]))
	copy(out, f.rows[i])
	return out
}

// Column returns a copy of one column, nil when it does not exist.
func (f *Frame) Column(col string) []Value {
	idx, ok := f.index[col]
	if !ok {
		return nil
	}
	out := make([]Value, len(f.rows))
	for i, r := range f.rows {
		out[i] = r[idx]
	}
	return out
}

// AddColumn appends a column filled with fill. An existing column of the same
// name is overwritten in place instead.
func (f *Frame) AddColumn(name string, fill Value) {
	if idx, ok := f.index[name]; ok {
		for _, r := range f.rows {
			r[idx] = fill
		}
		return
	}
	f.index[name] = len(f.columns)
	f.columns = append(f.columns, name)
	for i := range f.rows {
		f.rows[i] = append(f.rows[i], fill)
	}
}

// Rename renames columns per mapping. Renaming onto a name that is already
// taken is an error and leaves the frame unchanged.
func (f *Frame) Rename(mapping map[string]string) error {
	next := make([]string, len(f.columns))
	copy(next, f.columns)
	for i, c := range next {
		if to, ok := mapping[c]; ok {
			next[i] = to
		}
	}
	seen := make(map[string]int, len(next))
	for i, c := range next {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("rename would duplicate column %q", c)
		}
		seen[c] = i
	}
	f.columns = next
	f.index = seen
	return nil
}

// Drop returns a copy of the frame without the named columns. Names that do
// not exist are ignored.
func (f *Frame) Drop(cols ...string) *Frame {
	drop := make(map[string]bool, len(cols))
	for _, c := range cols {
		drop[c] = true
	}
	var keep []string
	var idx []int
	for i, c := range f.columns {
		if !drop[c] {
			keep = append(keep, c)
			idx = append(idx, i)
		}
	}
	out := New(keep)
	out.rows = make([][]Value, len(f.rows))
	for i, r := range f.rows {
		row := make([]Value, len(idx))
		for k, j := range idx {
			row[k] = r[j]
		}
		out.rows[i] = row
	}
	return out
}

// Clone deep-copies the frame.
func (f *Frame) Clone() *Frame {
	out := New(f.columns)
	out.rows = make([][]Value, len(f.rows))
	for i, r := range f.rows {
		cp := make([]Value, len(r))
		copy(cp, r)
		out.rows[i] = cp
	}
	return out
}

// Filter returns a new frame with the rows for which keep returns true.
func (f *Frame) Filter(keep func(row int) bool) *Frame {
	out := New(f.columns)
	for i, r := range f.rows {
		if keep(i) {
			cp := make([]Value, len(r))
			copy(cp, r)
			out.rows = append(out.rows, cp)
		}
	}
	return out
}

// InferNumbers converts every column whose non-null cells all parse as
// numbers into a Number column. Columns with no values at all count as
// numeric.
func (f *Frame) InferNumbers() {
	for idx := range f.columns {
		numeric := true
		for _, r := range f.rows {
			v := r[idx]
			if v.Kind == Null || v.Kind == Number {
				continue
			}
			if v.Kind != String {
				numeric = false
				break
			}
			if _, ok := parseNumber(v.Str); !ok {
				numeric = false
				break
			}
		}
		if !numeric {
			continue
		}
		for _, r := range f.rows {
			if r[idx].Kind == String {
				n, _ := parseNumber(r[idx].Str)
				r[idx] = NumberValue(n)
			}
		}
	}
}

// ToDate parses a column into dates. Cells that do not parse become null.
func (f *Frame) ToDate(col string) {
	idx, ok := f.index[col]
	if !ok {
		return
	}
	for _, r := range f.rows {
		switch r[idx].Kind {
		case Date:
		case String:
			if t, ok := ParseDate(r[idx].Str); ok {
				r[idx] = DateValue(t)
			} else {
				r[idx] = NullValue()
			}
		default:
			r[idx] = NullValue()
		}
	}
}

// NumericColumns lists, in order, the columns holding only numbers and nulls.
func (f *Frame) NumericColumns() []string {
	var out []string
	for idx, name := range f.columns {
		numeric := true
		for _, r := range f.rows {
			if k := r[idx].Kind; k != Null && k != Number {
				numeric = false
				break
			}
		}
		if numeric {
			out = append(out, name)
		}
	}
	return out
}

// Floats returns the non-null numbers of a column in row order.
func (f *Frame) Floats(col string) []float64 {
	idx, ok := f.index[col]
	if !ok {
		return nil
	}
	var out []float64
	for _, r := range f.rows {
		if r[idx].Kind == Number && !math.IsNaN(r[idx].Num) {
			out = append(out, r[idx].Num)
		}
	}
	return out
}

// FillNull replaces null cells of a column with v and returns how many were filled.
func (f *Frame) FillNull(col string, v Value) int {
	idx, ok := f.index[col]
	if !ok {
		return 0
	}
	n := 0
	for _, r := range f.rows {
		if r[idx].Kind == Null {
			r[idx] = v
			n++
		}
	}
	return n
}

// Digest writes a stable byte representation of the frame to w.
func (f *Frame) Digest(w io.Writer) {
	for _, c := range f.columns {
		fmt.Fprintf(w, "%q,", c)
	}
	io.WriteString(w, "\n")
	for _, r := range f.rows {
		for _, v := range r {
			fmt.Fprintf(w, "%d:%q,", v.Kind, v.Text())
		}
		io.WriteString(w, "\n")
	}
}
