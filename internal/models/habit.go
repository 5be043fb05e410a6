package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/julianstephens/habitual/internal/constants"
)

// Habit is a tracked behavior goal owned by one user.
type Habit struct {
	ID                string    `json:"id"`
	YourGoal          string    `json:"yourGoal"`
	HabitName         string    `json:"habitName"`
	Period            Period    `json:"period"`
	HabitType         HabitType `json:"habitType"`
	Notified          bool      `json:"notified"`
	StartDate         int64     `json:"startDate"`         // epoch millis
	LastCompletedDate string    `json:"lastCompletedDate"` // YYYY-MM-DD or empty
	CompletedCount    int       `json:"completedCount"`
}

// NewHabit builds an unsaved habit starting at now.
func NewHabit(goal, name string, period Period, habitType HabitType, now time.Time) Habit {
	return Habit{
		ID:                "",
		YourGoal:          goal,
		HabitName:         name,
		Period:            period,
		HabitType:         habitType,
		Notified:          false,
		StartDate:         now.UnixMilli(),
		LastCompletedDate: "",
		CompletedCount:    0,
	}
}

// StartTime returns StartDate as a time.Time.
func (h Habit) StartTime() time.Time {
	return time.UnixMilli(h.StartDate)
}

// CompletedOn reports whether the habit was last completed on the given day.
func (h Habit) CompletedOn(day string) bool {
	return day != "" && h.LastCompletedDate == day
}

// Complete returns the habit marked done on day. The second result is false
// when the habit was already completed on that day and nothing changed.
func (h Habit) Complete(day string) (Habit, bool) {
	if h.LastCompletedDate == day {
		return h, false
	}
	h.LastCompletedDate = day
	h.CompletedCount++
	h.Notified = true
	return h, true
}

// Undo clears the last completion. The second result is false when there
// was no completion to clear.
func (h Habit) Undo() (Habit, bool) {
	if h.LastCompletedDate == "" {
		return h, false
	}
	h.LastCompletedDate = ""
	h.CompletedCount = max(0, h.CompletedCount-1)
	h.Notified = false
	return h, true
}

// Expired reports whether the habit's tracking period has elapsed at now.
func (h Habit) Expired(now time.Time) bool {
	return now.UnixMilli()-h.StartDate > h.Period.Duration().Milliseconds()
}

// Validate checks the stored invariants of a decoded habit.
func (h Habit) Validate() error {
	if h.CompletedCount < 0 {
		return fmt.Errorf("completedCount must not be negative (got %d)", h.CompletedCount)
	}
	if h.LastCompletedDate != "" {
		if _, err := time.Parse(constants.DateFormat, h.LastCompletedDate); err != nil {
			return fmt.Errorf("invalid lastCompletedDate %q (expected YYYY-MM-DD): %w", h.LastCompletedDate, err)
		}
	}
	return nil
}

// DecodeHabit decodes a stored habit document. Absent fields keep their zero
// defaults; wrong-typed fields and invariant violations are errors. The
// document key is authoritative for the id.
func DecodeHabit(key string, data []byte) (Habit, error) {
	var h Habit
	if err := json.Unmarshal(data, &h); err != nil {
		return Habit{}, fmt.Errorf("decoding habit %s: %w", key, err)
	}
	if err := h.Validate(); err != nil {
		return Habit{}, fmt.Errorf("decoding habit %s: %w", key, err)
	}
	h.ID = key
	return h, nil
}

// Encode returns the stored representation of the habit.
func (h Habit) Encode() ([]byte, error) {
	return json.Marshal(h)
}
