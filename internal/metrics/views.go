package metrics

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"nyayadrishti/casemetrics/internal/frame"
)

// Role is what a session is allowed to see.
type Role string

const (
	RoleJudge   Role = "judge"
	RoleLawyer  Role = "lawyer"
	RoleAnalyst Role = "analyst"
)

// ParseRole accepts a role name in any case.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleJudge, RoleLawyer, RoleAnalyst:
		return r, true
	}
	return "", false
}

// Session identifies the caller of a view. It is passed explicitly to every
// per-user view.
type Session struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Token  string `json:"-"`
}

var (
	// ErrNoCases means a view matched no rows for the session's user.
	ErrNoCases = errors.New("no cases found")
	// ErrForbidden means the session's role may not open the view.
	ErrForbidden = errors.New("role not permitted for this view")
)

const (
	alertHealthBelow   = 40
	alertAgeAbove      = 730
	lawyerHearingDays  = 7
	reminderLeadDays   = 2
	healthHistogramBin = 10
)

// CaseRow is one case/hearing row of a per-user view.
type CaseRow struct {
	Case
	Health
	HearingRow
}

func caseRows(j *Joined, today time.Time, keep func(JoinedRow, Case) bool) []CaseRow {
	var out []CaseRow
	for _, r := range j.Rows {
		c := extractCase(j.Cases, r.CaseIndex)
		if !keep(r, c) {
			continue
		}
		out = append(out, CaseRow{
			Case:       c,
			Health:     ScoreHealth(c.DateFiled, c.CurrentStatus, today),
			HearingRow: r.HearingRow,
		})
	}
	return out
}

// JudgeReport is the judge's workspace.
type JudgeReport struct {
	Judge             string    `json:"judge"`
	Cases             []CaseRow `json:"cases"`
	Alerts            []CaseRow `json:"alerts"`
	TodayHearings     []CaseRow `json:"today_hearings"`
	UpcomingHearings  []CaseRow `json:"upcoming_hearings"`
	Rescheduled       []CaseRow `json:"rescheduled"`
	StatusCounts      []Count   `json:"status_counts"`
	DisposalYearTrend []Count   `json:"disposal_year_trend"`
	Disposed          int       `json:"disposed"`
	Pending           int       `json:"pending"`
	AvgHealth         float64   `json:"avg_health"`
	HealthHistogram   []Bin     `json:"health_histogram"`
}

// JudgeView returns the rows presided over by the session's user, highest
// priority first.
func JudgeView(s Session, j *Joined, today time.Time) (*JudgeReport, error) {
	if s.Role != RoleJudge {
		return nil, ErrForbidden
	}
	today = Today(today)
	rows := caseRows(j, today, func(r JoinedRow, _ Case) bool {
		return strings.EqualFold(r.Judge, s.UserID)
	})
	if len(rows) == 0 {
		return nil, ErrNoCases
	}
	sort.SliceStable(rows, func(a, b int) bool {
		return rows[a].PriorityScore > rows[b].PriorityScore
	})

	rep := &JudgeReport{
		Judge:            s.UserID,
		Cases:            rows,
		Alerts:           []CaseRow{},
		TodayHearings:    []CaseRow{},
		UpcomingHearings: []CaseRow{},
		Rescheduled:      []CaseRow{},
	}
	status := make(map[string]int)
	disposalYears := make(map[string]int)
	var health []float64
	for _, r := range rows {
		if r.CaseHealthScore < alertHealthBelow || r.AgeDays > alertAgeAbove {
			rep.Alerts = append(rep.Alerts, r)
		}
		if r.NextHearing != nil {
			switch next := Today(*r.NextHearing); {
			case next.Equal(today):
				rep.TodayHearings = append(rep.TodayHearings, r)
			case next.After(today):
				rep.UpcomingHearings = append(rep.UpcomingHearings, r)
			}
		}
		if r.PrevHearing != nil {
			rep.Rescheduled = append(rep.Rescheduled, r)
		}
		if r.CurrentStatus != "" {
			status[r.CurrentStatus]++
		}
		if r.DisposalYear != nil {
			disposalYears[formatYear(*r.DisposalYear)]++
		}
		if IsDisposed(r.CurrentStatus) {
			rep.Disposed++
		} else {
			rep.Pending++
		}
		health = append(health, r.CaseHealthScore)
	}
	rep.StatusCounts = rankCounts(status)
	rep.DisposalYearTrend = yearCounts(disposalYears)
	rep.AvgHealth = round1(frame.Mean(health))
	rep.HealthHistogram = Histogram(health, healthHistogramBin)
	return rep, nil
}

func formatYear(y float64) string {
	return strconv.Itoa(int(y))
}

// yearCounts orders per-year tallies chronologically.
func yearCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for y, n := range m {
		out = append(out, Count{Label: y, Count: n})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Label < out[b].Label })
	return out
}

// Reminder is a date to follow up on a case before its next hearing.
type Reminder struct {
	CNR  string    `json:"cnr_number"`
	Date time.Time `json:"date"`
}

// LawyerReport is the advocate's workspace.
type LawyerReport struct {
	Lawyer          string     `json:"lawyer"`
	Portfolio       []CaseRow  `json:"portfolio"`
	Active          int        `json:"active"`
	HearingsWithin7 int        `json:"hearings_within_7_days"`
	Health          int        `json:"lawyer_health"`
	Reminders       []Reminder `json:"reminders"`
}

// LawyerView returns the rows where the session's user appears as petitioner
// or respondent advocate.
func LawyerView(s Session, j *Joined, today time.Time) (*LawyerReport, error) {
	if s.Role != RoleLawyer {
		return nil, ErrForbidden
	}
	name := strings.ToLower(strings.TrimSpace(s.UserID))
	if name == "" {
		return nil, ErrNoCases
	}
	today = Today(today)
	rows := caseRows(j, today, func(_ JoinedRow, c Case) bool {
		return strings.Contains(strings.ToLower(c.PetitionerAdvocate), name) ||
			strings.Contains(strings.ToLower(c.RespondentAdvocate), name)
	})
	if len(rows) == 0 {
		return nil, ErrNoCases
	}

	rep := &LawyerReport{Lawyer: s.UserID, Portfolio: rows}
	horizon := today.AddDate(0, 0, lawyerHearingDays)
	for _, r := range rows {
		if !IsDisposed(r.CurrentStatus) {
			rep.Active++
		}
		if r.NextHearing != nil && !r.NextHearing.After(horizon) {
			rep.HearingsWithin7++
		}
	}
	rep.Health = LawyerHealth(rep.Active, rep.HearingsWithin7)
	rep.Reminders = Reminders(rows)
	return rep, nil
}

// LawyerHealth falls two points per unit of workload pressure.
func LawyerHealth(active, within7 int) int {
	pressure := 0.4*float64(active) + 0.3*float64(within7)
	return int(clamp(100-pressure*2, 0, 100))
}

// Reminders returns one reminder per case with a next hearing, two days
// ahead of it. When a case has several hearing rows the last one wins.
func Reminders(rows []CaseRow) []Reminder {
	idx := make(map[string]int)
	var out []Reminder
	for _, r := range rows {
		if r.NextHearing == nil || r.CNRNumber == "" {
			continue
		}
		rem := Reminder{CNR: r.CNRNumber, Date: Today(r.NextHearing.AddDate(0, 0, -reminderLeadDays))}
		if i, ok := idx[r.CNRNumber]; ok {
			out[i] = rem
			continue
		}
		idx[r.CNRNumber] = len(out)
		out = append(out, rem)
	}
	if out == nil {
		out = []Reminder{}
	}
	return out
}
