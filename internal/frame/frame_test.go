package frame

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func mustRead(t *testing.T, data string) *Frame {
	t.Helper()
	f, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	return f
}

func TestReadCSV_InfersNumbersAndNulls(t *testing.T) {
	f := mustRead(t, "id,hearings,status\nA,3,Pending\nB,,Disposed\nC,NaN,\n")

	if f.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", f.Len())
	}
	if got := f.NumericColumns(); !cmp.Equal(got, []string{"hearings"}) {
		t.Errorf("numeric columns = %v, want [hearings]", got)
	}
	if v := f.Get(0, "hearings"); v.Kind != Number || v.Num != 3 {
		t.Errorf("hearings[0] = %+v, want number 3", v)
	}
	if !f.Get(1, "hearings").IsNull() || !f.Get(2, "hearings").IsNull() {
		t.Error("empty and NaN cells should be null")
	}
	if !f.Get(2, "status").IsNull() {
		t.Error("empty string cell should be null")
	}
	if v := f.Get(0, "id"); v.Kind != String || v.Str != "A" {
		t.Errorf("id[0] = %+v, want string A", v)
	}
}

func TestReadCSV_EmptyInput(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for csv without header")
	}
}

func TestReadCSV_AllEmptyColumnIsNumeric(t *testing.T) {
	f := mustRead(t, "a,b\nx,\ny,\n")
	if got := f.NumericColumns(); !cmp.Equal(got, []string{"b"}) {
		t.Errorf("numeric columns = %v, want [b]", got)
	}
}

func TestNew_DeduplicatesNames(t *testing.T) {
	f := New([]string{"a", "b", "a", "a"})
	want := []string{"a", "b", "a.1", "a.2"}
	if diff := cmp.Diff(want, f.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
}

func TestDrop(t *testing.T) {
	f := mustRead(t, "a,b,c\n1,x,3\n4,y,6\n")
	got := f.Drop("b", "missing")
	if diff := cmp.Diff([]string{"a", "c"}, got.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if got.Len() != 2 || got.Get(1, "c").Num != 6 {
		t.Errorf("rows not carried over: len=%d c=%v", got.Len(), got.Get(1, "c"))
	}
	if !f.Has("b") {
		t.Error("Drop must not modify the source frame")
	}
}

func TestRename_RejectsDuplicate(t *testing.T) {
	f := New([]string{"cnr", "cnr_number"})
	if err := f.Rename(map[string]string{"cnr": "cnr_number"}); err == nil {
		t.Fatal("expected duplicate-name error")
	}
	if diff := cmp.Diff([]string{"cnr", "cnr_number"}, f.Columns()); diff != "" {
		t.Errorf("failed rename must leave columns untouched:\n%s", diff)
	}
}

func TestToDate_UnparseableBecomesNull(t *testing.T) {
	f := mustRead(t, "d\n2021-03-04\n15/06/2020\nnot a date\n")
	f.ToDate("d")

	want0 := time.Date(2021, 3, 4, 0, 0, 0, 0, time.UTC)
	if v := f.Get(0, "d"); v.Kind != Date || !v.Time.Equal(want0) {
		t.Errorf("d[0] = %+v, want %v", v, want0)
	}
	want1 := time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC)
	if v := f.Get(1, "d"); v.Kind != Date || !v.Time.Equal(want1) {
		t.Errorf("d[1] = %+v, want %v", v, want1)
	}
	if !f.Get(2, "d").IsNull() {
		t.Error("unparseable date should become null")
	}
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{"median even", []float64{4, 1, 3, 2}, 0.5, 2.5},
		{"median odd", []float64{5, 1, 3}, 0.5, 3},
		{"p33 interpolated", []float64{100, 200, 300, 400, 500, 600}, 0.33, 265},
		{"p66 interpolated", []float64{100, 200, 300, 400, 500, 600}, 0.66, 430},
		{"max", []float64{1, 9, 5}, 1, 9},
		{"single", []float64{7}, 0.9, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Quantile(tt.values, tt.q)
			if !ok {
				t.Fatal("expected ok")
			}
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("Quantile = %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := Quantile(nil, 0.5); ok {
		t.Error("empty input should not be ok")
	}
}

func TestLeftJoin_KeepsUnmatchedRowsOnce(t *testing.T) {
	cases := mustRead(t, "cnr_number,status\nC1,Pending\nC2,Disposed\n")
	hearings := mustRead(t, "cnr_number,status,judge\nC1,listed,J1\nC1,adjourned,J2\n")

	out, origin, err := LeftJoin(cases, hearings, "cnr_number", "cnr_number", Suffixes{"_case", "_hear"})
	if err != nil {
		t.Fatalf("LeftJoin: %v", err)
	}

	wantCols := []string{"cnr_number", "status_case", "status_hear", "judge"}
	if diff := cmp.Diff(wantCols, out.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 0, 1}, origin); diff != "" {
		t.Errorf("origin mismatch (-want +got):\n%s", diff)
	}

	var c2 int
	for i := 0; i < out.Len(); i++ {
		if out.Get(i, "cnr_number").Text() != "C2" {
			continue
		}
		c2++
		if !out.Get(i, "judge").IsNull() || !out.Get(i, "status_hear").IsNull() {
			t.Errorf("unmatched row should have null hearing cells, got %v", out.Row(i))
		}
	}
	if c2 != 1 {
		t.Errorf("case without hearings should appear exactly once, got %d", c2)
	}
}

func TestLeftJoin_DistinctKeyNames(t *testing.T) {
	cases := mustRead(t, "combined_case_number,x\nK1,1\n")
	hearings := mustRead(t, "combinedcasenumber,y\nK1,2\n")

	out, _, err := LeftJoin(cases, hearings, "combined_case_number", "combinedcasenumber", Suffixes{"_case", "_hear"})
	if err != nil {
		t.Fatalf("LeftJoin: %v", err)
	}
	want := []string{"combined_case_number", "x", "combinedcasenumber", "y"}
	if diff := cmp.Diff(want, out.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	if out.Get(0, "y").Num != 2 {
		t.Errorf("expected matched hearing value 2, got %v", out.Get(0, "y"))
	}
}

func TestLeftJoin_MissingKey(t *testing.T) {
	a := New([]string{"a"})
	b := New([]string{"b"})
	if _, _, err := LeftJoin(a, b, "a", "missing", Suffixes{}); err == nil {
		t.Fatal("expected error for missing right key")
	}
}

func TestWriteCSV_RoundTripsText(t *testing.T) {
	f := mustRead(t, "a,b\nx,1.5\ny,\n")
	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if got, want := buf.String(), "a,b\nx,1.5\ny,\n"; got != want {
		t.Errorf("WriteCSV = %q, want %q", got, want)
	}
}
