package metrics

import (
	"fmt"
	"math"
	"strings"

	"nyayadrishti/casemetrics/internal/frame"
)

// Risk buckets
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Bottleneck labels
const (
	BottleneckHearings = "High hearings"
	BottleneckBacklog  = "Old backlog"
	BottleneckNone     = "Normal flow"
)

const (
	highHearingCount = 8
	bestCaseFactor   = 0.8
	worstCaseFactor  = 1.25
)

// Params are the tuning knobs a caller may change per run.
type Params struct {
	HearingWeight int     `json:"hearing_weight" yaml:"hearing_weight"`
	YearWeight    int     `json:"year_weight" yaml:"year_weight"`
	BaselineDelay int     `json:"baseline_delay" yaml:"baseline_delay"`
	Contamination float64 `json:"contamination" yaml:"contamination"`
}

// DefaultParams returns the dashboard defaults.
func DefaultParams() Params {
	return Params{
		HearingWeight: 20,
		YearWeight:    10,
		BaselineDelay: 100,
		Contamination: 0.05,
	}
}

// ParamError reports a parameter outside its allowed range.
type ParamError struct {
	Name     string
	Value    float64
	Min, Max float64
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s=%v out of range [%v, %v]", e.Name, e.Value, e.Min, e.Max)
}

// Validate checks every parameter against its range.
func (p Params) Validate() error {
	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"hearing_weight", float64(p.HearingWeight), 10, 50},
		{"year_weight", float64(p.YearWeight), 5, 30},
		{"baseline_delay", float64(p.BaselineDelay), 50, 200},
		{"contamination", p.Contamination, 0.01, 0.20},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || c.v < c.min || c.v > c.max {
			return &ParamError{Name: c.name, Value: c.v, Min: c.min, Max: c.max}
		}
	}
	return nil
}

// Predict computes the disposal estimate for one case. Rounding is half to
// even. DelayRisk is left empty; see RiskThresholds.Assign.
func Predict(totalHearings, filingYear, minFilingYear float64, p Params) Prediction {
	hearing := totalHearings * float64(p.HearingWeight)
	year := (filingYear - minFilingYear) * float64(p.YearWeight)
	baseline := float64(p.BaselineDelay)

	predicted := math.RoundToEven(hearing + year + baseline)
	return Prediction{
		HearingComponent:  hearing,
		YearComponent:     year,
		BaselineComponent: baseline,
		PredictedDisposal: predicted,
		BestCaseDays:      math.RoundToEven(predicted * bestCaseFactor),
		WorstCaseDays:     math.RoundToEven(predicted * worstCaseFactor),
		PrimaryBottleneck: Bottleneck(totalHearings, filingYear, minFilingYear),
	}
}

// Bottleneck names what most likely slows a case down.
func Bottleneck(totalHearings, filingYear, minFilingYear float64) string {
	var reasons []string
	if totalHearings >= highHearingCount {
		reasons = append(reasons, BottleneckHearings)
	}
	if filingYear <= minFilingYear+1 {
		reasons = append(reasons, BottleneckBacklog)
	}
	if len(reasons) == 0 {
		return BottleneckNone
	}
	return strings.Join(reasons, " & ")
}

// RiskThresholds are the 33rd/66th percentiles of predicted disposal over the
// rows in scope.
type RiskThresholds struct {
	P33 float64 `json:"p33"`
	P66 float64 `json:"p66"`
}

// ComputeRiskThresholds derives thresholds from a set of predictions.
func ComputeRiskThresholds(predicted []float64) RiskThresholds {
	p33, _ := frame.Quantile(predicted, 0.33)
	p66, _ := frame.Quantile(predicted, 0.66)
	return RiskThresholds{P33: p33, P66: p66}
}

// Assign buckets one prediction. Boundaries are inclusive.
func (t RiskThresholds) Assign(predicted float64) string {
	switch {
	case predicted <= t.P33:
		return RiskLow
	case predicted <= t.P66:
		return RiskMedium
	default:
		return RiskHigh
	}
}
