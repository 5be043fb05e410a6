// Package validation checks user input before it is dispatched to a
// container, so invalid forms never reach the credential service or store.
package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/julianstephens/habitual/internal/constants"
	"github.com/julianstephens/habitual/internal/models"
)

// ProblemType classifies a rejected field.
type ProblemType string

const (
	ProblemRequired         ProblemType = "required"
	ProblemInvalidEmail     ProblemType = "invalid_email"
	ProblemPasswordTooShort ProblemType = "password_too_short"
	ProblemPasswordMismatch ProblemType = "password_mismatch"
	ProblemUnknownPeriod    ProblemType = "unknown_period"
	ProblemUnknownHabitType ProblemType = "unknown_habit_type"
)

type Problem struct {
	Type    ProblemType
	Field   string
	Message string
}

// Result lists every problem found in a form.
type Result struct {
	Problems []Problem
}

func (r Result) Valid() bool { return len(r.Problems) == 0 }

// Has reports whether a problem of type t was found.
func (r Result) Has(t ProblemType) bool {
	for _, p := range r.Problems {
		if p.Type == t {
			return true
		}
	}
	return false
}

// Error joins the problem messages, one per line.
func (r Result) Error() string {
	msgs := make([]string, len(r.Problems))
	for i, p := range r.Problems {
		msgs[i] = p.Message
	}
	return strings.Join(msgs, "\n")
}

// Err returns r as an error, or nil when valid.
func (r Result) Err() error {
	if r.Valid() {
		return nil
	}
	return r
}

func (r *Result) add(t ProblemType, field, format string, args ...any) {
	r.Problems = append(r.Problems, Problem{Type: t, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) required(field, value string) bool {
	if strings.TrimSpace(value) == "" {
		r.add(ProblemRequired, field, "%s is required", field)
		return false
	}
	return true
}

// Registration is the sign-up form.
type Registration struct {
	Name     string
	Username string
	Email    string
	Password string
	Confirm  string
}

func (f Registration) Validate() Result {
	var r Result
	r.required("name", f.Name)
	r.required("username", f.Username)
	if r.required("email", f.Email) {
		if _, err := mail.ParseAddress(strings.TrimSpace(f.Email)); err != nil {
			r.add(ProblemInvalidEmail, "email", "email %q is not a valid address", f.Email)
		}
	}
	if r.required("password", f.Password) && len(f.Password) < constants.MinPasswordLength {
		r.add(ProblemPasswordTooShort, "password", "password must be at least %d characters", constants.MinPasswordLength)
	}
	if r.required("confirm", f.Confirm) && f.Password != f.Confirm {
		r.add(ProblemPasswordMismatch, "confirm", "passwords do not match")
	}
	return r
}

// User returns the profile described by the form.
func (f Registration) User() models.User {
	return models.User{
		Name:     strings.TrimSpace(f.Name),
		Username: strings.TrimSpace(f.Username),
		Email:    strings.TrimSpace(f.Email),
	}
}

// HabitInput is the new-habit form.
type HabitInput struct {
	Goal      string
	Name      string
	Period    string
	HabitType string
}

// Validate accepts only known period and cadence labels. Stored habits with
// other labels still load; they just cannot be created.
func (f HabitInput) Validate() Result {
	var r Result
	r.required("goal", f.Goal)
	r.required("name", f.Name)
	if r.required("period", f.Period) {
		if _, err := models.ParsePeriod(f.Period); err != nil {
			r.add(ProblemUnknownPeriod, "period", "%v", err)
		}
	}
	if r.required("habit type", f.HabitType) {
		if _, err := models.ParseHabitType(f.HabitType); err != nil {
			r.add(ProblemUnknownHabitType, "habit type", "%v", err)
		}
	}
	return r
}

// Parse validates the form and returns the typed labels.
func (f HabitInput) Parse() (models.Period, models.HabitType, error) {
	if err := f.Validate().Err(); err != nil {
		return "", "", err
	}
	return models.Period(f.Period), models.HabitType(f.HabitType), nil
}
