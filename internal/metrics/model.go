package metrics

import (
	"time"

	"nyayadrishti/casemetrics/internal/frame"
)

// Case is the typed view of one cleaned case row. Numeric fields read as 0
// when the cell is null after imputation (an entirely empty column).
type Case struct {
	CNRNumber          string     `json:"cnr_number"`
	CombinedCaseNumber string     `json:"combined_case_number,omitempty"`
	CaseNumber         string     `json:"case_number,omitempty"`
	CourtName          string     `json:"court_name,omitempty"`
	CaseType           string     `json:"case_type,omitempty"`
	FilingYear         float64    `json:"filing_year"`
	DateFiled          *time.Time `json:"date_filed"`
	DecisionDate       *time.Time `json:"decision_date"`
	TotalHearings      float64    `json:"total_hearings"`
	DisposalDays       float64    `json:"disposal_days"`
	DisposalYear       *float64   `json:"disposal_year,omitempty"`
	CurrentStatus      string     `json:"current_status"`
	PetitionerAdvocate string     `json:"petitioneradvocate,omitempty"`
	RespondentAdvocate string     `json:"respondentadvocate,omitempty"`
	CaseDuration       *float64   `json:"case_duration"`
}

// Prediction holds the disposal estimate and its explanation.
type Prediction struct {
	HearingComponent  float64 `json:"hearing_component"`
	YearComponent     float64 `json:"year_component"`
	BaselineComponent float64 `json:"baseline_component"`
	PredictedDisposal float64 `json:"predicted_disposal"`
	BestCaseDays      float64 `json:"best_case_days"`
	WorstCaseDays     float64 `json:"worst_case_days"`
	DelayRisk         string  `json:"delay_risk"`
	PrimaryBottleneck string  `json:"primary_bottleneck"`
}

// Health is the freshness/urgency pair used for triage.
type Health struct {
	AgeDays         float64 `json:"age_days"`
	CaseHealthScore float64 `json:"case_health_score"`
	PriorityScore   float64 `json:"priority_score"`
}

// Anomaly is the outlier verdict plus its rule-based explanation.
type Anomaly struct {
	AnomalyFlag   bool    `json:"anomaly_flag"`
	AnomalyScore  float64 `json:"anomaly_score"`
	AnomalyReason string  `json:"anomaly_reason"`
	Severity      string  `json:"severity"`
}

// EnrichedCase is a case with every derived field.
type EnrichedCase struct {
	Case
	Prediction
	Health
	Anomaly
}

func textAt(f *frame.Frame, row int, col string) string {
	return f.Get(row, col).Text()
}

func floatAt(f *frame.Frame, row int, col string) float64 {
	v, _ := f.Get(row, col).Float()
	return v
}

// extractCase reads row i of a cleaned case table.
func extractCase(f *frame.Frame, i int) Case {
	return Case{
		CNRNumber:          textAt(f, i, ColCNR),
		CombinedCaseNumber: textAt(f, i, ColCombinedCaseNumber),
		CaseNumber:         textAt(f, i, ColCaseNumber),
		CourtName:          textAt(f, i, ColCourtName),
		CaseType:           textAt(f, i, ColCaseType),
		FilingYear:         floatAt(f, i, ColFilingYear),
		DateFiled:          f.Get(i, ColDateFiled).TimePtr(),
		DecisionDate:       f.Get(i, ColDecisionDate).TimePtr(),
		TotalHearings:      floatAt(f, i, ColTotalHearings),
		DisposalDays:       floatAt(f, i, ColDisposalDays),
		DisposalYear:       f.Get(i, ColDisposalYear).FloatPtr(),
		CurrentStatus:      textAt(f, i, ColCurrentStatus),
		PetitionerAdvocate: textAt(f, i, ColPetitionerAdvocate),
		RespondentAdvocate: textAt(f, i, ColRespondentAdvocate),
		CaseDuration:       f.Get(i, ColCaseDuration).FloatPtr(),
	}
}
