package metrics

import (
	"math"
	"strings"
	"time"
)

// IsDisposed is the one place the "disposed" policy lives: a case-insensitive
// substring match on free-text status. Synonyms such as "Closed" or
// "Decided" are not recognised.
func IsDisposed(status string) bool {
	return strings.Contains(strings.ToLower(status), "disposed")
}

// ScoreHealth computes age, health and priority for a case as of today.
func ScoreHealth(dateFiled *time.Time, status string, today time.Time) Health {
	var age float64
	if dateFiled != nil {
		age = math.Max(0, daysBetween(*dateFiled, today))
	}

	statusScore := 60.0
	if IsDisposed(status) {
		statusScore = 100
	}
	health := round1(0.5*clamp(100-age/5, 0, 100) + 0.3*statusScore)
	priority := round1(0.6*(100-health) + 0.4*clamp(age/10, 0, 100))

	return Health{
		AgeDays:         age,
		CaseHealthScore: health,
		PriorityScore:   priority,
	}
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}

func clamp(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Today truncates t to midnight UTC of its calendar day.
func Today(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
