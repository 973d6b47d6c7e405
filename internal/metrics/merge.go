package metrics

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"nyayadrishti/casemetrics/internal/frame"
)

// ErrNoJoinKey means cases and hearings share no usable identifier column.
var ErrNoJoinKey = errors.New("no common case identifier between cases and hearings")

const unknownJudge = "UNKNOWN"

var joinSuffixes = frame.Suffixes{Left: "_case", Right: "_hear"}

// Schema is the resolved layout of a case/hearing join.
type Schema struct {
	CaseKey    string        `json:"case_key"`
	HearingKey string        `json:"hearing_key"`
	Hearings   HearingSchema `json:"hearings"`
}

// HearingRow is the hearing side of one joined row. All fields are empty for
// a case without hearings.
type HearingRow struct {
	Matched     bool       `json:"matched"`
	Judge       string     `json:"judge"`
	HearingDate *time.Time `json:"hearing_date,omitempty"`
	NextHearing *time.Time `json:"next_hearing_date,omitempty"`
	PrevHearing *time.Time `json:"previous_hearing_date,omitempty"`
	Purpose     string     `json:"purpose,omitempty"`
	Stage       string     `json:"stage,omitempty"`
}

// JoinedRow pairs a case index with one of its hearings.
type JoinedRow struct {
	CaseIndex int `json:"-"`
	HearingRow
}

// Joined is the left join of cases onto hearings. Cases is the cleaned case
// table that JoinedRow.CaseIndex points into.
type Joined struct {
	Frame  *frame.Frame
	Cases  *frame.Frame
	Schema Schema
	Rows   []JoinedRow
}

// Merge left-joins cleaned cases onto cleaned hearings. Every case appears at
// least once; a case with no hearings appears exactly once with null hearing
// columns.
func Merge(cases, hearings *frame.Frame, hs HearingSchema) (*Joined, error) {
	caseKey, _ := CaseKeyCandidates.Resolve(cases)
	if caseKey == "" || hs.Key == "" {
		return nil, ErrNoJoinKey
	}

	out, origin, err := frame.LeftJoin(cases, hearings, caseKey, hs.Key, joinSuffixes)
	if err != nil {
		return nil, fmt.Errorf("joining on %s/%s: %w", caseKey, hs.Key, err)
	}

	j := &Joined{
		Frame:  out,
		Cases:  cases,
		Schema: Schema{CaseKey: caseKey, HearingKey: hs.Key, Hearings: hs},
		Rows:   make([]JoinedRow, out.Len()),
	}
	keys := keySet(hearings, hs.Key)
	for i := 0; i < out.Len(); i++ {
		row := JoinedRow{CaseIndex: origin[i]}
		if k := cases.Get(origin[i], caseKey); !k.IsNull() {
			row.Matched = keys[k.Text()]
		}
		row.Judge = strings.TrimSpace(j.text(i, hs.Judge))
		if row.Judge == "" {
			row.Judge = unknownJudge
		}
		row.HearingDate = j.value(i, hs.Date).TimePtr()
		row.NextHearing = j.value(i, hs.NextDate).TimePtr()
		row.PrevHearing = j.value(i, hs.PreviousDate).TimePtr()
		row.Purpose = j.text(i, hs.Purpose)
		row.Stage = j.text(i, hs.Stage)
		j.Rows[i] = row
	}
	return j, nil
}

// value reads a hearing-side column of joined row i, following the suffix
// applied when the name also exists on the case side.
func (j *Joined) value(i int, hearingCol string) frame.Value {
	if hearingCol == "" {
		return frame.NullValue()
	}
	if j.Frame.Has(hearingCol + joinSuffixes.Right) {
		return j.Frame.Get(i, hearingCol+joinSuffixes.Right)
	}
	return j.Frame.Get(i, hearingCol)
}

// caseValue reads a case-side column of joined row i.
func (j *Joined) caseValue(i int, caseCol string) frame.Value {
	if j.Frame.Has(caseCol + joinSuffixes.Left) {
		return j.Frame.Get(i, caseCol+joinSuffixes.Left)
	}
	return j.Frame.Get(i, caseCol)
}

func (j *Joined) text(i int, hearingCol string) string {
	return j.value(i, hearingCol).Text()
}

func keySet(f *frame.Frame, col string) map[string]bool {
	keys := make(map[string]bool)
	for _, v := range f.Column(col) {
		if !v.IsNull() {
			keys[v.Text()] = true
		}
	}
	return keys
}
