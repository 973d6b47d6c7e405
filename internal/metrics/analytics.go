package metrics

import (
	"math"
	"sort"

	"nyayadrishti/casemetrics/internal/frame"
)

const (
	pendingLongDays   = 365
	judgeWorkloadTopN = 15
	DisposalBins      = 40
)

// Totals are the headline counts over the filtered cases. Disposal is read
// from disposal_days, not from the status text.
type Totals struct {
	Total           int     `json:"total_cases"`
	Disposed        int     `json:"disposed_cases"`
	Pending         int     `json:"pending_cases"`
	PendingOverYear int     `json:"pending_over_one_year"`
	ClearanceRate   float64 `json:"clearance_rate"`
}

// Count is one labelled tally.
type Count struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// YearValue is one point of a per-filing-year series.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// Bin is one histogram bucket, [Lo, Hi) except the last which includes Hi.
type Bin struct {
	Lo    float64 `json:"lo"`
	Hi    float64 `json:"hi"`
	Count int     `json:"count"`
}

// PredictionSummary describes predictor quality and court-level insights.
type PredictionSummary struct {
	MAE             float64 `json:"mae"`
	AvgPredicted    float64 `json:"avg_predicted_disposal"`
	HighRiskPercent float64 `json:"high_risk_percent"`
	AvgHearings     float64 `json:"avg_hearings"`
	LowRisk         int     `json:"low_risk"`
	MediumRisk      int     `json:"medium_risk"`
	HighRisk        int     `json:"high_risk"`
}

// AnomalySummary is the anomaly overview.
type AnomalySummary struct {
	Total     int     `json:"total_cases"`
	Anomalous int     `json:"anomalous_cases"`
	Percent   float64 `json:"anomaly_percent"`
	Critical  int     `json:"critical"`
	High      int     `json:"high"`
}

// AnalyticsReport is the full analytics result
type AnalyticsReport struct {
	Years          []int             `json:"years,omitempty"`
	Totals         Totals            `json:"totals"`
	StageFunnel    []Count           `json:"stage_funnel"`
	DisposalTrend  []YearValue       `json:"disposal_trend"`
	ClearanceTrend []YearValue       `json:"clearance_trend"`
	Distribution   []Bin             `json:"disposal_distribution"`
	JudgeWorkload  []Count           `json:"judge_workload"`
	Predictions    PredictionSummary `json:"predictions"`
	Anomalies      AnomalySummary    `json:"anomalies"`
}

// Analyze builds the analytics report from a pipeline result and, when
// hearings are available, the case/hearing join. Stage and judge figures stay
// empty without a join.
func Analyze(res *Result, j *Joined) *AnalyticsReport {
	report := &AnalyticsReport{
		Years:          res.Years,
		Totals:         ComputeTotals(res.Cases),
		StageFunnel:    []Count{},
		DisposalTrend:  disposalTrend(res.Cases),
		ClearanceTrend: clearanceTrend(res.Cases),
		JudgeWorkload:  []Count{},
		Predictions:    SummarizePredictions(res.Cases),
		Anomalies:      SummarizeAnomalies(res.Cases),
	}

	days := make([]float64, len(res.Cases))
	for i, c := range res.Cases {
		days[i] = c.DisposalDays
	}
	report.Distribution = Histogram(days, DisposalBins)

	if j != nil {
		q := Query{Years: res.Years}
		report.StageFunnel = stageFunnel(j, q)
		report.JudgeWorkload = judgeWorkload(j, q, judgeWorkloadTopN)
	}
	return report
}

// ComputeTotals counts disposed and pending cases.
func ComputeTotals(cases []EnrichedCase) Totals {
	t := Totals{Total: len(cases)}
	for _, c := range cases {
		if c.DisposalDays > 0 {
			t.Disposed++
		}
		if c.DisposalDays > pendingLongDays {
			t.PendingOverYear++
		}
	}
	t.Pending = t.Total - t.Disposed
	if t.Total > 0 {
		t.ClearanceRate = float64(t.Disposed) / float64(t.Total) * 100
	}
	return t
}

type yearAcc struct {
	sum      float64
	n        int
	disposed int
}

func byYear(cases []EnrichedCase) ([]int, map[int]*yearAcc) {
	acc := make(map[int]*yearAcc)
	var years []int
	for _, c := range cases {
		y := int(c.FilingYear)
		a, ok := acc[y]
		if !ok {
			a = &yearAcc{}
			acc[y] = a
			years = append(years, y)
		}
		a.sum += c.DisposalDays
		a.n++
		if c.DisposalDays > 0 {
			a.disposed++
		}
	}
	sort.Ints(years)
	return years, acc
}

func disposalTrend(cases []EnrichedCase) []YearValue {
	years, acc := byYear(cases)
	out := make([]YearValue, 0, len(years))
	for _, y := range years {
		a := acc[y]
		out = append(out, YearValue{Year: y, Value: a.sum / float64(a.n)})
	}
	return out
}

func clearanceTrend(cases []EnrichedCase) []YearValue {
	years, acc := byYear(cases)
	out := make([]YearValue, 0, len(years))
	for _, y := range years {
		a := acc[y]
		out = append(out, YearValue{Year: y, Value: float64(a.disposed) / float64(a.n) * 100})
	}
	return out
}

// Histogram splits values into bins equal-width buckets between their min
// and max.
func Histogram(values []float64, bins int) []Bin {
	if len(values) == 0 || bins <= 0 {
		return []Bin{}
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		return []Bin{{Lo: lo, Hi: hi, Count: len(values)}}
	}
	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi
	for _, v := range values {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}

// rankCounts sorts tallies by count descending, then label.
func rankCounts(counts map[string]int) []Count {
	out := make([]Count, 0, len(counts))
	for label, n := range counts {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Count != out[b].Count {
			return out[a].Count > out[b].Count
		}
		return out[a].Label < out[b].Label
	})
	return out
}

func joinedYear(j *Joined, i int) float64 {
	v, _ := j.caseValue(i, ColFilingYear).Float()
	return v
}

func stageFunnel(j *Joined, q Query) []Count {
	counts := make(map[string]int)
	for i, r := range j.Rows {
		if r.Stage == "" || !q.includesYear(joinedYear(j, i)) {
			continue
		}
		counts[r.Stage]++
	}
	return rankCounts(counts)
}

// judgeWorkload counts matched hearings per judge.
func judgeWorkload(j *Joined, q Query, topN int) []Count {
	counts := make(map[string]int)
	for i, r := range j.Rows {
		if !r.Matched || r.Judge == unknownJudge || !q.includesYear(joinedYear(j, i)) {
			continue
		}
		counts[r.Judge]++
	}
	out := rankCounts(counts)
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

// SummarizePredictions reports MAE against actual disposal days and the
// court-level averages.
func SummarizePredictions(cases []EnrichedCase) PredictionSummary {
	var s PredictionSummary
	if len(cases) == 0 {
		return s
	}
	var absErr, predicted, hearings []float64
	for _, c := range cases {
		absErr = append(absErr, math.Abs(c.DisposalDays-c.PredictedDisposal))
		predicted = append(predicted, c.PredictedDisposal)
		hearings = append(hearings, c.TotalHearings)
		switch c.DelayRisk {
		case RiskLow:
			s.LowRisk++
		case RiskMedium:
			s.MediumRisk++
		case RiskHigh:
			s.HighRisk++
		}
	}
	s.MAE = frame.Mean(absErr)
	s.AvgPredicted = frame.Mean(predicted)
	s.AvgHearings = frame.Mean(hearings)
	s.HighRiskPercent = float64(s.HighRisk) / float64(len(cases)) * 100
	return s
}

// SummarizeAnomalies is the anomaly overview.
func SummarizeAnomalies(cases []EnrichedCase) AnomalySummary {
	s := AnomalySummary{Total: len(cases)}
	for _, c := range cases {
		if !c.AnomalyFlag {
			continue
		}
		s.Anomalous++
		switch c.Severity {
		case SeverityCritical:
			s.Critical++
		case SeverityHigh:
			s.High++
		}
	}
	s.Percent = float64(s.Anomalous) / float64(max(s.Total, 1)) * 100
	return s
}
