package metrics

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"nyayadrishti/casemetrics/internal/frame"
	"nyayadrishti/casemetrics/internal/logging"
)

// Query selects what a run computes: tuning parameters, an optional
// filing-year filter (empty means every year) and the reference date for
// age-based scores.
type Query struct {
	Params Params
	Years  []int
	Today  time.Time
}

func (q Query) includesYear(year float64) bool {
	if len(q.Years) == 0 {
		return true
	}
	for _, y := range q.Years {
		if float64(y) == year {
			return true
		}
	}
	return false
}

// Result is one pipeline run. Cases holds the rows that pass the year filter;
// anomaly and explanation thresholds are computed over the whole table.
type Result struct {
	Params        Params            `json:"params"`
	Today         string            `json:"today"`
	Years         []int             `json:"years,omitempty"`
	MinFilingYear float64           `json:"min_filing_year"`
	Risk          RiskThresholds    `json:"risk_thresholds"`
	Explain       ExplainThresholds `json:"explain_thresholds"`
	Features      []string          `json:"anomaly_features"`
	Cases         []EnrichedCase    `json:"cases"`

	cleaned *frame.Frame
	rows    []int
}

// Table returns the cleaned source columns of the filtered rows followed by
// every derived column.
func (r *Result) Table() *frame.Frame {
	cols := append(r.cleaned.Columns(), derivedColumns...)
	out := frame.New(cols)
	for k, i := range r.rows {
		row := append(r.cleaned.Row(i), derivedValues(r.Cases[k])...)
		_ = out.Append(row)
	}
	return out
}

var derivedColumns = []string{
	"hearing_component", "year_component", "baseline_component",
	"predicted_disposal", "best_case_days", "worst_case_days", "delay_risk", "primary_bottleneck",
	"age_days", "case_health_score", "priority_score",
	"anomaly_flag", "anomaly_score", "anomaly_reason", "severity",
}

func derivedValues(c EnrichedCase) []frame.Value {
	num := frame.NumberValue
	str := frame.StringValue
	return []frame.Value{
		num(c.HearingComponent), num(c.YearComponent), num(c.BaselineComponent),
		num(c.PredictedDisposal), num(c.BestCaseDays), num(c.WorstCaseDays), str(c.DelayRisk), str(c.PrimaryBottleneck),
		num(c.AgeDays), num(c.CaseHealthScore), num(c.PriorityScore),
		str(fmt.Sprint(c.AnomalyFlag)), num(c.AnomalyScore), str(c.AnomalyReason), str(c.Severity),
	}
}

// Find returns the enriched case with the given CNR among the filtered rows.
func (r *Result) Find(cnr string) (EnrichedCase, bool) {
	for _, c := range r.Cases {
		if c.CNRNumber == cnr {
			return c, true
		}
	}
	return EnrichedCase{}, false
}

// Anomalies returns the flagged cases in table order.
func (r *Result) Anomalies() []EnrichedCase {
	var out []EnrichedCase
	for _, c := range r.Cases {
		if c.AnomalyFlag {
			out = append(out, c)
		}
	}
	return out
}

// Pipeline turns raw tables into enriched cases.
type Pipeline struct {
	log   *zap.Logger
	cache *Cache
}

// NewPipeline creates a pipeline. Both arguments may be nil.
func NewPipeline(log *zap.Logger, cache *Cache) *Pipeline {
	log = logging.OrNop(log)
	return &Pipeline{log: log, cache: cache}
}

// PrepareCases normalizes and cleans the case table and checks that the
// predictor's columns are present and numeric. Columns named like derived
// fields, as in a re-imported export, are dropped before cleaning.
func PrepareCases(raw *frame.Frame) (*frame.Frame, error) {
	cleaned := CleanCases(NormalizeColumns(raw).Drop(derivedColumns...))
	if err := RequireColumns(cleaned, PredictionColumns...); err != nil {
		return nil, err
	}
	if err := RequireNumeric(cleaned, ColDisposalDays, ColTotalHearings, ColFilingYear); err != nil {
		return nil, err
	}
	return cleaned, nil
}

// Run derives every enriched field. Identical inputs return the cached result.
// A year filter that keeps no rows is reported as ErrNoCases.
func (p *Pipeline) Run(ds Dataset, q Query) (*Result, error) {
	if err := q.Params.Validate(); err != nil {
		return nil, err
	}
	if ds.Cases == nil {
		return nil, fmt.Errorf("no case table loaded")
	}
	q.Today = Today(q.Today)

	key := cacheKey("run", Dataset{Cases: ds.Cases}, q)
	if v, ok := p.cache.get(key); ok {
		p.log.Debug("pipeline cache hit", zap.String("key", key[:12]))
		return v.(*Result), nil
	}

	start := time.Now()
	cleaned, err := PrepareCases(ds.Cases)
	if err != nil {
		return nil, err
	}

	all := make([]EnrichedCase, cleaned.Len())
	for i := range all {
		all[i].Case = extractCase(cleaned, i)
	}

	flags, scores, features, err := DetectAnomalies(cleaned, q.Params.Contamination)
	if err != nil {
		return nil, err
	}
	explain := ComputeExplainThresholds(cleaned)

	minYear := math.Inf(1)
	for _, c := range all {
		minYear = math.Min(minYear, c.FilingYear)
	}
	if math.IsInf(minYear, 1) {
		minYear = 0
	}

	for i := range all {
		c := &all[i]
		c.AnomalyFlag, c.AnomalyScore = flags[i], scores[i]
		c.AnomalyReason, c.Severity = Explain(c.Case, explain)
		c.Health = ScoreHealth(c.DateFiled, c.CurrentStatus, q.Today)
		c.Prediction = Predict(c.TotalHearings, c.FilingYear, minYear, q.Params)
	}

	res := &Result{
		Params:        q.Params,
		Today:         q.Today.Format(time.DateOnly),
		Years:         q.Years,
		MinFilingYear: minYear,
		Explain:       explain,
		Features:      features,
		Cases:         []EnrichedCase{},
		cleaned:       cleaned,
	}
	var predicted []float64
	for i, c := range all {
		if !q.includesYear(c.FilingYear) {
			continue
		}
		res.Cases = append(res.Cases, c)
		res.rows = append(res.rows, i)
		predicted = append(predicted, c.PredictedDisposal)
	}
	if len(q.Years) > 0 && len(res.Cases) == 0 {
		return nil, fmt.Errorf("%w for filing years %v", ErrNoCases, q.Years)
	}
	res.Risk = ComputeRiskThresholds(predicted)
	for i := range res.Cases {
		res.Cases[i].DelayRisk = res.Risk.Assign(res.Cases[i].PredictedDisposal)
	}

	p.log.Info("pipeline run",
		zap.Int("cases", cleaned.Len()),
		zap.Int("in_scope", len(res.Cases)),
		zap.Int("features", len(features)),
		zap.Duration("elapsed", time.Since(start)),
	)
	p.cache.put(key, res)
	return res, nil
}

// Merge cleans both tables and joins them. Ambiguous hearing columns are
// logged and resolved to the first candidate.
func (p *Pipeline) Merge(ds Dataset) (*Joined, error) {
	if ds.Cases == nil {
		return nil, fmt.Errorf("no case table loaded")
	}
	if ds.Hearings == nil {
		return nil, ErrNoJoinKey
	}

	key := cacheKey("merge", ds, Query{})
	if v, ok := p.cache.get(key); ok {
		return v.(*Joined), nil
	}

	cases := CleanCases(NormalizeColumns(ds.Cases))
	hearings, hs := CleanHearings(ds.Hearings)
	for _, amb := range hs.Ambiguous {
		p.log.Warn("ambiguous hearing column", zap.String("field", amb))
	}
	j, err := Merge(cases, hearings, hs)
	if err != nil {
		return nil, err
	}
	p.log.Info("merged cases and hearings",
		zap.String("case_key", j.Schema.CaseKey),
		zap.String("hearing_key", j.Schema.HearingKey),
		zap.Int("rows", j.Frame.Len()),
	)
	p.cache.put(key, j)
	return j, nil
}
