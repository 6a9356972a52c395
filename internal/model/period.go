// Package model defines the domain types shared by the savings tracker:
// periods, goals, rate snapshots and progress.
package model

import (
	"fmt"
	"time"
)

const (
	// PeriodCount is the number of tracked periods per session.
	PeriodCount = 12
	// PeriodDays is the fixed length of one period. Months are not calendar-aware.
	PeriodDays = 30
	// PeriodLayout formats a period label, e.g. "July 2025".
	PeriodLayout = "January 2006"
	// DateLayout is the ISO date form used in config and flags.
	DateLayout = "2006-01-02"
)

// Date truncates t to a UTC calendar date.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO date (2006-01-02) into a UTC date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// AddPeriods returns start shifted by n fixed-length periods.
func AddPeriods(start time.Time, n int) time.Time {
	return Date(start).AddDate(0, 0, n*PeriodDays)
}

// PeriodStart returns the first day of the i-th period.
func PeriodStart(start time.Time, i int) time.Time {
	return AddPeriods(start, i)
}

// Periods returns the ordered labels of the PeriodCount periods starting at start.
//
// Twelve 30-day windows cover less than a year, so two windows can begin in the
// same calendar month (e.g. a start on Jan 31). Later duplicates get a " (2)",
// " (3)" suffix so every label stays unique.
func Periods(start time.Time) []string {
	labels := make([]string, 0, PeriodCount)
	seen := make(map[string]int, PeriodCount)
	for i := 0; i < PeriodCount; i++ {
		label := PeriodStart(start, i).Format(PeriodLayout)
		seen[label]++
		if n := seen[label]; n > 1 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		labels = append(labels, label)
	}
	return labels
}

// PeriodIndex returns the index of the period containing t, clamped to
// [0, PeriodCount-1].
func PeriodIndex(start, t time.Time) int {
	days := int(Date(t).Sub(Date(start)).Hours() / 24)
	if days < 0 {
		return 0
	}
	i := days / PeriodDays
	if i >= PeriodCount {
		return PeriodCount - 1
	}
	return i
}
