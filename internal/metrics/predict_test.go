package metrics

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// --- Predictor ---

func TestPredict_Components(t *testing.T) {
	p := Predict(3, 2015, 2010, DefaultParams())

	if p.HearingComponent != 60 || p.YearComponent != 50 || p.BaselineComponent != 100 {
		t.Errorf("components = %v/%v/%v, want 60/50/100", p.HearingComponent, p.YearComponent, p.BaselineComponent)
	}
	if p.PredictedDisposal != 210 {
		t.Errorf("predicted = %v, want 210", p.PredictedDisposal)
	}
	if p.BestCaseDays != 168 {
		t.Errorf("best = %v, want 168", p.BestCaseDays)
	}
	// 210 * 1.25 = 262.5 rounds half to even
	if p.WorstCaseDays != 262 {
		t.Errorf("worst = %v, want 262", p.WorstCaseDays)
	}
}

func TestPredict_BoundsHold(t *testing.T) {
	params := []Params{
		DefaultParams(),
		{HearingWeight: 10, YearWeight: 5, BaselineDelay: 50, Contamination: 0.01},
		{HearingWeight: 50, YearWeight: 30, BaselineDelay: 200, Contamination: 0.2},
	}
	for _, prm := range params {
		for hearings := 0.0; hearings <= 40; hearings++ {
			for year := 2000.0; year <= 2024; year++ {
				p := Predict(hearings, year, 2000, prm)
				if !(p.BestCaseDays <= p.PredictedDisposal && p.PredictedDisposal <= p.WorstCaseDays) {
					t.Fatalf("bounds violated for hearings=%v year=%v: %+v", hearings, year, p)
				}
			}
		}
	}
}

func TestPredict_Monotonic(t *testing.T) {
	prm := DefaultParams()
	prev := Predict(0, 2015, 2010, prm).PredictedDisposal
	for h := 1.0; h <= 50; h++ {
		cur := Predict(h, 2015, 2010, prm).PredictedDisposal
		if cur < prev {
			t.Fatalf("prediction decreased with hearings at %v: %v < %v", h, cur, prev)
		}
		prev = cur
	}

	prev = Predict(4, 2010, 2010, prm).PredictedDisposal
	for y := 2011.0; y <= 2030; y++ {
		cur := Predict(4, y, 2010, prm).PredictedDisposal
		if cur < prev {
			t.Fatalf("prediction decreased with filing year at %v: %v < %v", y, cur, prev)
		}
		prev = cur
	}
}

func TestBottleneck(t *testing.T) {
	const minYear = 2010
	tests := []struct {
		name     string
		hearings float64
		year     float64
		want     string
	}{
		{"both", 9, minYear, "High hearings & Old backlog"},
		{"neither", 2, minYear + 5, "Normal flow"},
		{"hearings only", 8, minYear + 2, "High hearings"},
		{"backlog boundary", 0, minYear + 1, "Old backlog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Bottleneck(tt.hearings, tt.year, minYear); got != tt.want {
				t.Errorf("Bottleneck = %q, want %q", got, tt.want)
			}
			if got := Predict(tt.hearings, tt.year, minYear, DefaultParams()).PrimaryBottleneck; got != tt.want {
				t.Errorf("Predict bottleneck = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRiskThresholds_Bucketing(t *testing.T) {
	predicted := []float64{100, 200, 300, 400, 500, 600}
	th := ComputeRiskThresholds(predicted)

	if math.Abs(th.P33-265) > 1e-9 || math.Abs(th.P66-430) > 1e-9 {
		t.Fatalf("thresholds = %+v, want p33=265 p66=430", th)
	}

	var got []string
	for _, v := range predicted {
		got = append(got, th.Assign(v))
	}
	want := []string{RiskLow, RiskLow, RiskMedium, RiskMedium, RiskHigh, RiskHigh}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buckets mismatch (-want +got):\n%s", diff)
	}
}

func TestRiskThresholds_BoundaryInclusive(t *testing.T) {
	th := RiskThresholds{P33: 200, P66: 400}
	tests := []struct {
		v    float64
		want string
	}{
		{200, RiskLow},
		{200.5, RiskMedium},
		{400, RiskMedium},
		{400.5, RiskHigh},
	}
	for _, tt := range tests {
		if got := th.Assign(tt.v); got != tt.want {
			t.Errorf("Assign(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestParams_Validate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Params)
		field  string
	}{
		{"hearing weight low", func(p *Params) { p.HearingWeight = 5 }, "hearing_weight"},
		{"year weight high", func(p *Params) { p.YearWeight = 31 }, "year_weight"},
		{"baseline low", func(p *Params) { p.BaselineDelay = 49 }, "baseline_delay"},
		{"contamination high", func(p *Params) { p.Contamination = 0.5 }, "contamination"},
		{"contamination NaN", func(p *Params) { p.Contamination = math.NaN() }, "contamination"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			var pe *ParamError
			if err := p.Validate(); !errors.As(err, &pe) {
				t.Fatalf("expected *ParamError, got %v", err)
			}
			if pe.Name != tt.field {
				t.Errorf("error names %q, want %q", pe.Name, tt.field)
			}
		})
	}
}

// --- Health ---

func TestScoreHealth(t *testing.T) {
	daysBefore := func(d int) *time.Time {
		ts := testToday.AddDate(0, 0, -d)
		return &ts
	}
	tests := []struct {
		name     string
		filed    *time.Time
		status   string
		age      float64
		health   float64
		priority float64
	}{
		{"no filing date", nil, "Pending", 0, 68, 19.2},
		{"disposed substring", nil, "Case Disposed", 0, 80, 12},
		{"250 days", daysBefore(250), "pending", 250, 43, 44.2},
		{"very old", daysBefore(1000), "Pending", 1000, 18, 89.2},
		{"filed in future", daysBefore(-30), "Pending", 0, 68, 19.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := ScoreHealth(tt.filed, tt.status, testToday)
			if h.AgeDays != tt.age || h.CaseHealthScore != tt.health || h.PriorityScore != tt.priority {
				t.Errorf("ScoreHealth = %+v, want age=%v health=%v priority=%v", h, tt.age, tt.health, tt.priority)
			}
		})
	}
}

func TestScoreHealth_Bounds(t *testing.T) {
	for d := 0; d <= 3000; d += 7 {
		ts := testToday.AddDate(0, 0, -d)
		for _, status := range []string{"Pending", "Disposed"} {
			h := ScoreHealth(&ts, status, testToday)
			if h.CaseHealthScore < 0 || h.CaseHealthScore > 80 {
				t.Fatalf("health out of range at %d days: %v", d, h.CaseHealthScore)
			}
			if h.PriorityScore < 0 || h.PriorityScore > 100 {
				t.Fatalf("priority out of range at %d days: %v", d, h.PriorityScore)
			}
		}
	}
}

func TestIsDisposed(t *testing.T) {
	for status, want := range map[string]bool{
		"Disposed":      true,
		"disposed of":   true,
		"CASE DISPOSED": true,
		"Pending":       false,
		"Closed":        false,
		"":              false,
	} {
		if got := IsDisposed(status); got != want {
			t.Errorf("IsDisposed(%q) = %v, want %v", status, got, want)
		}
	}
}
