package models

import (
	"fmt"
	"time"
)

// Period is the span over which a habit is tracked before it drops out of
// the active list. Labels are stored verbatim, so an unrecognized label
// survives a load/save round trip.
type Period string

// HabitType is the cadence label of a habit. It is informational only.
type HabitType string

const (
	PeriodWeek  Period = "1 Week (7 Days)"
	PeriodMonth Period = "1 Month (30 Days)"
	PeriodYear  Period = "1 Year (360 Days)"

	HabitTypeEveryday   HabitType = "Everyday"
	HabitTypeOnceAWeek  HabitType = "Once a Week"
	HabitTypeEvery3Days HabitType = "Every 3 Days"
)

const day = 24 * time.Hour

// Periods lists the known periods in display order.
var Periods = []Period{PeriodWeek, PeriodMonth, PeriodYear}

// HabitTypes lists the known cadences in display order.
var HabitTypes = []HabitType{HabitTypeEveryday, HabitTypeOnceAWeek, HabitTypeEvery3Days}

// Known reports whether p is one of the three recognized periods.
func (p Period) Known() bool {
	return p.TargetDays() > 0
}

// TargetDays returns the number of days the period covers, or 0 when the
// label is unrecognized.
func (p Period) TargetDays() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodYear:
		return 360
	default:
		return 0
	}
}

// Duration returns the maximum tracking duration. Unrecognized periods have
// zero duration and are eligible for expiry immediately.
func (p Period) Duration() time.Duration {
	return time.Duration(p.TargetDays()) * day
}

// ParsePeriod accepts only the known labels.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if !p.Known() {
		return "", fmt.Errorf("unknown period %q (expected one of %q, %q, %q)", s, PeriodWeek, PeriodMonth, PeriodYear)
	}
	return p, nil
}

// Known reports whether t is one of the recognized cadences.
func (t HabitType) Known() bool {
	switch t {
	case HabitTypeEveryday, HabitTypeOnceAWeek, HabitTypeEvery3Days:
		return true
	default:
		return false
	}
}

// ParseHabitType accepts only the known cadence labels.
func ParseHabitType(s string) (HabitType, error) {
	t := HabitType(s)
	if !t.Known() {
		return "", fmt.Errorf("unknown habit type %q (expected one of %q, %q, %q)", s, HabitTypeEveryday, HabitTypeOnceAWeek, HabitTypeEvery3Days)
	}
	return t, nil
}
