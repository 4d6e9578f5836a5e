package core

import (
	"fmt"
	"time"
)

// Ledger timestamps arrive as "2024-01-15 10:30:00.000000"; RFC 3339 is
// accepted as a fallback for fixtures and other sources.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.000000",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseTimestamp parses a ledger timestamp string, failing with
// ErrBadTimestamp on anything unrecognized.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, ErrBadTimestamp)
}

// StartOfNextMonth returns the first instant of the month after t's month.
// time.Date normalizes month 13, so December rolls into January.
func StartOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, t.Location())
}

// StartOfPreviousMonth returns the first instant of the month before t's
// month, rolling January back into December.
func StartOfPreviousMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()-1, 1, 0, 0, 0, 0, t.Location())
}

// MonthKey returns the canonical "YYYY-MM" grouping key for t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// InUpcomingMonthWindow decides whether a scheduled payment belongs to next
// month's projection. The window is [start of next month, start of the month
// after next). A ONCE schedule's effective end is its own start; a recurring
// schedule's is its end date, if any. Schedules whose effective end falls
// before the window are concluded and excluded. Otherwise the schedule is
// admitted when it starts before the window closes. Note this admits
// recurring schedules that start after the window too; callers wanting
// strictly-in-window semantics must bound the lower side themselves.
func InUpcomingMonthWindow(s ScheduledPayment, now time.Time) (bool, error) {
	windowStart := StartOfNextMonth(now)
	windowEnd := StartOfNextMonth(windowStart)

	start, err := ParseTimestamp(s.Start)
	if err != nil {
		return false, err
	}

	var end time.Time
	hasEnd := false
	if s.Recurrence.IsOnce() {
		end, hasEnd = start, true
	} else if s.End != "" {
		end, err = ParseTimestamp(s.End)
		if err != nil {
			return false, err
		}
		hasEnd = true
	}

	if hasEnd && end.Before(windowStart) {
		return false, nil
	}
	return start.Before(windowEnd), nil
}

// MonthGroup is one adjacent run of payments sharing a month key.
type MonthGroup struct {
	Key      string
	Payments []Payment
}

// GroupByMonth groups payments into adjacent runs by creation month.
// Precondition: the input is already ordered by creation time (the ledger
// source delivers most-recent-first); equal keys at non-adjacent positions
// produce separate runs rather than being merged.
func GroupByMonth(payments []Payment) ([]MonthGroup, error) {
	var groups []MonthGroup
	for _, p := range payments {
		created, err := ParseTimestamp(p.CreatedAt)
		if err != nil {
			return nil, err
		}
		key := MonthKey(created)
		if n := len(groups); n > 0 && groups[n-1].Key == key {
			groups[n-1].Payments = append(groups[n-1].Payments, p)
			continue
		}
		groups = append(groups, MonthGroup{Key: key, Payments: []Payment{p}})
	}
	return groups, nil
}
