package metrics

import (
	"math"
	"time"

	"nyayadrishti/casemetrics/internal/frame"
)

// CleanCases parses the filing and decision dates, derives case_duration and
// fills the nulls of every numeric column with that column's median. The input
// is not modified.
func CleanCases(cases *frame.Frame) *frame.Frame {
	out := cases.Clone()
	out.ToDate(ColDateFiled)
	out.ToDate(ColDecisionDate)

	out.AddColumn(ColCaseDuration, frame.NullValue())
	if out.Has(ColDateFiled) && out.Has(ColDecisionDate) {
		for i := 0; i < out.Len(); i++ {
			filed := out.Get(i, ColDateFiled)
			decided := out.Get(i, ColDecisionDate)
			if filed.Kind != frame.Date || decided.Kind != frame.Date {
				continue
			}
			out.Set(i, ColCaseDuration, frame.NumberValue(daysBetween(filed.Time, decided.Time)))
		}
	}

	imputeMedians(out)
	return out
}

func imputeMedians(f *frame.Frame) {
	for _, col := range f.NumericColumns() {
		med, ok := frame.Median(f.Floats(col))
		if !ok {
			continue
		}
		f.FillNull(col, frame.NumberValue(med))
	}
}

// CleanHearings lower-cases the hearing column names, resolves the hearing
// schema and parses its date fields.
func CleanHearings(hearings *frame.Frame) (*frame.Frame, HearingSchema) {
	out := lowerColumns(hearings)
	schema := ResolveHearingSchema(out)
	for _, col := range []string{schema.Date, schema.NextDate, schema.PreviousDate} {
		if col != "" {
			out.ToDate(col)
		}
	}
	return out, schema
}

// daysBetween returns whole days from a to b, floored like a timedelta's days.
func daysBetween(a, b time.Time) float64 {
	return math.Floor(b.Sub(a).Hours() / 24)
}
