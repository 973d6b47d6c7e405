package frame

import "fmt"

// Suffixes disambiguate columns present on both sides of a join.
type Suffixes struct {
	Left, Right string
}

// LeftJoin joins right onto left where left[leftKey] equals right[rightKey]
// (compared as text; null keys never match). Every left row appears at least
// once; unmatched left rows get null right-hand cells. When both keys share a
// name the right key column is dropped, and any other name present on both
// sides gets the corresponding suffix.
//
// origin[i] is the index of the left row that produced output row i.
func LeftJoin(left, right *Frame, leftKey, rightKey string, sfx Suffixes) (out *Frame, origin []int, err error) {
	li, ok := left.index[leftKey]
	if !ok {
		return nil, nil, fmt.Errorf("left frame has no column %q", leftKey)
	}
	ri, ok := right.index[rightKey]
	if !ok {
		return nil, nil, fmt.Errorf("right frame has no column %q", rightKey)
	}

	sharedKey := leftKey == rightKey
	overlap := make(map[string]bool)
	for _, c := range left.columns {
		if _, both := right.index[c]; both && !(sharedKey && c == leftKey) {
			overlap[c] = true
		}
	}

	var columns []string
	for _, c := range left.columns {
		if overlap[c] {
			c += sfx.Left
		}
		columns = append(columns, c)
	}
	var rightCols []int
	for idx, c := range right.columns {
		if sharedKey && idx == ri {
			continue
		}
		if overlap[c] {
			c += sfx.Right
		}
		columns = append(columns, c)
		rightCols = append(rightCols, idx)
	}

	byKey := make(map[string][]int)
	for i, r := range right.rows {
		if r[ri].Kind == Null {
			continue
		}
		k := r[ri].Text()
		byKey[k] = append(byKey[k], i)
	}

	out = New(columns)
	for i, l := range left.rows {
		var matches []int
		if l[li].Kind != Null {
			matches = byKey[l[li].Text()]
		}
		if len(matches) == 0 {
			row := make([]Value, len(columns))
			copy(row, l)
			out.rows = append(out.rows, row)
			origin = append(origin, i)
			continue
		}
		for _, m := range matches {
			row := make([]Value, 0, len(columns))
			row = append(row, l...)
			for _, rc := range rightCols {
				row = append(row, right.rows[m][rc])
			}
			out.rows = append(out.rows, row)
			origin = append(origin, i)
		}
	}
	return out, origin, nil
}
