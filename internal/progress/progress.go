// Package progress computes the figures shown on the progress and recap
// views. Everything here is pure arithmetic over habit snapshots.
package progress

import (
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

// Daily reports how many habits carry the completed-today flag.
func Daily(habits []models.Habit) (done, total int, ratio float64) {
	total = len(habits)
	for _, h := range habits {
		if h.Notified {
			done++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}
	return done, total, float64(done) / float64(total)
}

// Goal is completions divided by the days in the habit's period. It can
// exceed 1; unrecognized periods give 0.
func Goal(h models.Habit) float64 {
	days := h.Period.TargetDays()
	if days == 0 {
		return 0
	}
	return float64(h.CompletedCount) / float64(days)
}

// Elapsed is the share of the period that has passed at now, in [0, 1].
func Elapsed(h models.Habit, now time.Time) float64 {
	d := h.Period.Duration()
	if d == 0 {
		return 0
	}
	f := float64(now.UnixMilli()-h.StartDate) / float64(d.Milliseconds())
	return min(max(f, 0), 1)
}

// TargetCount reads yourGoal as a completion target. Anything that is not a
// positive integer counts as 1.
func TargetCount(h models.Habit) int {
	n, err := strconv.Atoi(strings.TrimSpace(h.YourGoal))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

func Achieved(h models.Habit) bool {
	return h.CompletedCount >= TargetCount(h)
}

type Summary struct {
	Achieved int
	Total    int
	Percent  float64
}

// Recap counts habits that reached their target.
func Recap(habits []models.Habit) Summary {
	s := Summary{Total: len(habits)}
	for _, h := range habits {
		if Achieved(h) {
			s.Achieved++
		}
	}
	if s.Total > 0 {
		s.Percent = float64(s.Achieved) / float64(s.Total) * 100
	}
	return s
}

// GoalHabits drops week-long habits, which the goal view does not show.
func GoalHabits(habits []models.Habit) []models.Habit {
	out := make([]models.Habit, 0, len(habits))
	for _, h := range habits {
		if h.Period != models.PeriodWeek {
			out = append(out, h)
		}
	}
	return out
}
