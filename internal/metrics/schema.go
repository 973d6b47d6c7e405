package metrics

import (
	"fmt"
	"strings"

	"nyayadrishti/casemetrics/internal/frame"
)

// Canonical case columns
const (
	ColCNR                = "cnr_number"
	ColCombinedCaseNumber = "combined_case_number"
	ColCaseNumber         = "case_number"
	ColCourtName          = "court_name"
	ColCaseType           = "case_type"
	ColFilingYear         = "filing_year"
	ColDateFiled          = "date_filed"
	ColDecisionDate       = "decision_date"
	ColTotalHearings      = "total_hearings"
	ColDisposalDays       = "disposal_days"
	ColDisposalYear       = "disposal_year"
	ColCurrentStatus      = "current_status"
	ColCaseDuration       = "case_duration"
	ColPetitionerAdvocate = "petitioneradvocate"
	ColRespondentAdvocate = "respondentadvocate"
)

// columnAliases maps source spellings (already lower-cased and trimmed) to
// canonical names.
var columnAliases = map[string]string{
	"cnr":                ColCNR,
	"cnr_no":             ColCNR,
	"case_id":            ColCNR,
	"no_of_hearings":     ColTotalHearings,
	"hearing_count":      ColTotalHearings,
	"disposal_days":      ColDisposalDays,
	"case_disposal_days": ColDisposalDays,
	"date_filed":         ColDateFiled,
	"decision_date":      ColDecisionDate,
}

// PredictionColumns must be present for the disposal predictor.
var PredictionColumns = []string{ColCNR, ColDisposalDays, ColTotalHearings, ColFilingYear}

// FieldCandidates is an ordered list of column names that may carry one
// logical field. The first one present wins.
type FieldCandidates []string

var (
	CaseKeyCandidates     = FieldCandidates{ColCombinedCaseNumber, ColCNR, ColCaseNumber}
	HearingKeyCandidates  = FieldCandidates{"combinedcasenumber", ColCNR, ColCaseNumber}
	JudgeCandidates       = FieldCandidates{"beforehonourablejudges", "before_honourable_judges", "before_hon_judge", "njdg_judge_name"}
	HearingDateCandidates = FieldCandidates{"hearingdate", "hearing_date", "businessondate", "business_on_date"}
	NextHearingCandidates = FieldCandidates{"nexthearingdate", "next_hearing_date"}
	PrevHearingCandidates = FieldCandidates{"previoushearing", "previous_hearing", "previoushearingdate", "previous_hearing_date"}
	PurposeCandidates     = FieldCandidates{"purposeofhearing", "purpose_of_hearing", "purpose"}
	StageCandidates       = FieldCandidates{"remappedstages", "remapped_stages", "stage"}
)

// Resolve returns the first candidate present in f and every candidate
// present. More than one present means the field is ambiguous.
func (fc FieldCandidates) Resolve(f *frame.Frame) (string, []string) {
	var present []string
	for _, c := range fc {
		if f.Has(c) {
			present = append(present, c)
		}
	}
	if len(present) == 0 {
		return "", nil
	}
	return present[0], present
}

// SchemaError reports required columns that are absent from a table or do
// not hold numbers.
type SchemaError struct {
	Missing    []string
	NotNumeric []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing columns: "+strings.Join(e.Missing, ", "))
	}
	if len(e.NotNumeric) > 0 {
		parts = append(parts, "non-numeric columns: "+strings.Join(e.NotNumeric, ", "))
	}
	return strings.Join(parts, "; ")
}

// RequireColumns returns a *SchemaError listing every column in cols that f lacks.
func RequireColumns(f *frame.Frame, cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !f.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Missing: missing}
	}
	return nil
}

// RequireNumeric returns a *SchemaError listing every column in cols holding
// a non-numeric cell. Absent columns are not reported here.
func RequireNumeric(f *frame.Frame, cols ...string) error {
	numeric := make(map[string]bool)
	for _, c := range f.NumericColumns() {
		numeric[c] = true
	}
	var bad []string
	for _, c := range cols {
		if f.Has(c) && !numeric[c] {
			bad = append(bad, c)
		}
	}
	if len(bad) > 0 {
		return &SchemaError{NotNumeric: bad}
	}
	return nil
}

// lowerColumns returns a copy of f with names lower-cased and trimmed.
func lowerColumns(f *frame.Frame) *frame.Frame {
	cols := f.Columns()
	for i, c := range cols {
		cols[i] = strings.ToLower(strings.TrimSpace(c))
	}
	out := frame.New(cols)
	for i := 0; i < f.Len(); i++ {
		_ = out.Append(f.Row(i))
	}
	return out
}

// NormalizeColumns lower-cases and trims every column name, then renames
// known aliases to canonical names. A column already holding the canonical
// name keeps it; otherwise the first alias in column order takes it and later
// aliases keep their source names.
func NormalizeColumns(f *frame.Frame) *frame.Frame {
	out := lowerColumns(f)

	taken := make(map[string]bool)
	for _, c := range out.Columns() {
		taken[c] = true
	}
	mapping := make(map[string]string)
	for _, c := range out.Columns() {
		to, ok := columnAliases[c]
		if !ok || to == c || taken[to] {
			continue
		}
		mapping[c] = to
		delete(taken, c)
		taken[to] = true
	}
	if len(mapping) > 0 {
		// mapping never targets a taken name, so Rename cannot fail
		_ = out.Rename(mapping)
	}
	return out
}

// HearingSchema is the resolved column layout of a hearings table.
type HearingSchema struct {
	Key          string   `json:"key"`
	Date         string   `json:"date,omitempty"`
	NextDate     string   `json:"next_date,omitempty"`
	PreviousDate string   `json:"previous_date,omitempty"`
	Purpose      string   `json:"purpose,omitempty"`
	Judge        string   `json:"judge,omitempty"`
	Stage        string   `json:"stage,omitempty"`
	Ambiguous    []string `json:"ambiguous,omitempty"`
}

// ResolveHearingSchema resolves each logical hearing field once.
func ResolveHearingSchema(f *frame.Frame) HearingSchema {
	var s HearingSchema
	resolve := func(name string, fc FieldCandidates) string {
		col, present := fc.Resolve(f)
		if len(present) > 1 {
			s.Ambiguous = append(s.Ambiguous, fmt.Sprintf("%s: %s", name, strings.Join(present, "|")))
		}
		return col
	}
	s.Key = resolve("key", HearingKeyCandidates)
	s.Date = resolve("hearing_date", HearingDateCandidates)
	s.NextDate = resolve("next_hearing_date", NextHearingCandidates)
	s.PreviousDate = resolve("previous_hearing_date", PrevHearingCandidates)
	s.Purpose = resolve("purpose", PurposeCandidates)
	s.Judge = resolve("judge", JudgeCandidates)
	s.Stage = resolve("stage", StageCandidates)
	return s
}
