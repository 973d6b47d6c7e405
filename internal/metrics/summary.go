package metrics

import (
	"errors"
	"strings"
)

// ErrCaseNotFound means no case carries the requested CNR.
var ErrCaseNotFound = errors.New("case not found")

// CaseSummary is the one-row digest used for verification and printed
// reports.
type CaseSummary struct {
	CNRNumber     string  `json:"cnr_number"`
	CourtName     string  `json:"court_name,omitempty"`
	CaseType      string  `json:"case_type,omitempty"`
	FilingYear    float64 `json:"filing_year"`
	TotalHearings float64 `json:"total_hearings"`
	DisposalDays  float64 `json:"disposal_days"`
	Status        string  `json:"status"`
	Risk          string  `json:"risk"`

	Prediction *Prediction `json:"prediction,omitempty"`
	Anomaly    *Anomaly    `json:"anomaly,omitempty"`
}

// Summarize looks a case up by exact CNR in a pipeline result. Surrounding
// whitespace in cnr is ignored.
func Summarize(res *Result, cnr string) (*CaseSummary, error) {
	c, ok := res.Find(strings.TrimSpace(cnr))
	if !ok {
		return nil, ErrCaseNotFound
	}
	s := &CaseSummary{
		CNRNumber:     c.CNRNumber,
		CourtName:     c.CourtName,
		CaseType:      c.CaseType,
		FilingYear:    c.FilingYear,
		TotalHearings: c.TotalHearings,
		DisposalDays:  c.DisposalDays,
		Status:        "Pending",
		Risk:          "Normal",
		Prediction:    &c.Prediction,
		Anomaly:       &c.Anomaly,
	}
	if c.DisposalDays > 0 {
		s.Status = "Disposed"
	}
	if c.DisposalDays > pendingLongDays {
		s.Risk = "High"
	}
	return s, nil
}
