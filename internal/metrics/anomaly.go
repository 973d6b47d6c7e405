package metrics

import (
	"errors"
	"fmt"
	"strings"

	"nyayadrishti/casemetrics/internal/frame"
)

// ErrNoNumericColumns means the case table has nothing to fit a model on.
var ErrNoNumericColumns = errors.New("no numeric columns available for anomaly detection")

// Severity levels
const (
	SeverityLow      = "Low"
	SeverityHigh     = "High"
	SeverityCritical = "Critical"
)

// Explanation reasons
const (
	ReasonDuration = "Unusually long case duration"
	ReasonHearings = "Excessive number of hearings"
	ReasonDisposal = "Abnormally high disposal days"
	ReasonDefault  = "Statistical outlier pattern"
)

// FeatureColumns lists the numeric columns of f that hold at least one value.
func FeatureColumns(f *frame.Frame) []string {
	var out []string
	for _, col := range f.NumericColumns() {
		if len(f.Floats(col)) > 0 {
			out = append(out, col)
		}
	}
	return out
}

// DetectAnomalies fits an isolation forest over the feature columns of a
// cleaned case table and returns the flag and decision score per row.
func DetectAnomalies(f *frame.Frame, contamination float64) (flags []bool, scores []float64, features []string, err error) {
	features = FeatureColumns(f)
	if len(features) == 0 {
		return nil, nil, nil, ErrNoNumericColumns
	}

	X := make([][]float64, f.Len())
	for i := range X {
		row := make([]float64, len(features))
		for j, col := range features {
			v, ok := f.Get(i, col).Float()
			if !ok {
				return nil, nil, nil, fmt.Errorf("feature %s row %d: not imputed", col, i)
			}
			row[j] = v
		}
		X[i] = row
	}

	forest := NewIsolationForest()
	forest.Fit(X, contamination)
	scores = forest.DecisionFunction(X)
	flags = make([]bool, len(scores))
	for i, s := range scores {
		flags[i] = s < 0
	}
	return flags, scores, features, nil
}

// Threshold is a percentile cut-off that may be unavailable when its column
// is missing or empty.
type Threshold struct {
	Value float64 `json:"value"`
	OK    bool    `json:"ok"`
}

func (t Threshold) exceeded(v *float64) bool {
	return t.OK && v != nil && *v > t.Value
}

// ExplainThresholds are the cut-offs used by Explain.
type ExplainThresholds struct {
	CaseDuration  Threshold `json:"case_duration_p90"`
	TotalHearings Threshold `json:"total_hearings_p95"`
	DisposalDays  Threshold `json:"disposal_days_p95"`
}

func percentileOf(f *frame.Frame, col string, q float64) Threshold {
	v, ok := frame.Quantile(f.Floats(col), q)
	return Threshold{Value: v, OK: ok}
}

// ComputeExplainThresholds derives the cut-offs from a whole case table.
func ComputeExplainThresholds(f *frame.Frame) ExplainThresholds {
	return ExplainThresholds{
		CaseDuration:  percentileOf(f, ColCaseDuration, 0.90),
		TotalHearings: percentileOf(f, ColTotalHearings, 0.95),
		DisposalDays:  percentileOf(f, ColDisposalDays, 0.95),
	}
}

// Explain gives the reasons and severity for one case. The rules run in a
// fixed order and each matching rule that sets a severity overwrites the
// previous one, so the hearings rule wins over the duration rule.
func Explain(c Case, t ExplainThresholds) (reason, severity string) {
	var reasons []string
	severity = SeverityLow

	if t.CaseDuration.exceeded(c.CaseDuration) {
		reasons = append(reasons, ReasonDuration)
		severity = SeverityHigh
	}
	if t.TotalHearings.exceeded(&c.TotalHearings) {
		reasons = append(reasons, ReasonHearings)
		severity = SeverityCritical
	}
	if t.DisposalDays.exceeded(&c.DisposalDays) {
		reasons = append(reasons, ReasonDisposal)
	}

	if len(reasons) == 0 {
		return ReasonDefault, severity
	}
	return strings.Join(reasons, ", "), severity
}
