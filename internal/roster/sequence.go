package roster

import (
	"errors"
	"fmt"
	"time"

	"rostercal/internal/model"
)

// LeaveName is the summary used for merged leave blocks.
const LeaveName = "Annual leave"

// ErrInvariantViolation is returned by GenerateMonth when its input does not
// describe exactly one calendar month.
var ErrInvariantViolation = errors.New("roster: invariant violation")

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstOfMonth returns midnight on the first day of the month in loc.
func FirstOfMonth(year int, month time.Month, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}

// GenerateMonth validates that first is the first day of a month and that
// days has one entry per day of that month, then calls Generate.
func GenerateMonth(first time.Time, days []ShiftCode, table TimeTable) ([]model.Event, error) {
	if first.Day() != 1 || first.Hour() != 0 || first.Minute() != 0 {
		return nil, fmt.Errorf("%w: %s is not the start of a month", ErrInvariantViolation, first.Format(time.DateTime))
	}
	want := DaysInMonth(first.Year(), first.Month())
	if len(days) != want {
		return nil, fmt.Errorf("%w: %s has %d days, got %d", ErrInvariantViolation, first.Format("2006-01"), want, len(days))
	}
	return Generate(first, days, table), nil
}

// Generate turns one month of classified days into calendar events.
//
// Timed codes become timed events (overnight codes end on the next day).
// Consecutive leave and day-off days form a run; a run containing at least one
// leave day is emitted as a single "Annual leave" event (all-day for one date,
// multi-day with an exclusive end otherwise), and a run of days off alone is
// dropped. Any other absence closes the open run and emits nothing.
//
// day i is first.AddDate(0, 0, i). The function keeps no state between calls.
func Generate(first time.Time, days []ShiftCode, table TimeTable) []model.Event {
	summer := IsSummer(first.Month())
	events := make([]model.Event, 0, len(days))

	var (
		runStart   time.Time
		runOpen    bool
		runIsLeave bool
	)

	flush := func(last time.Time) {
		if !runOpen {
			return
		}
		if runIsLeave {
			if runStart.Equal(last) {
				events = append(events, model.AllDay(LeaveName, runStart))
			} else {
				events = append(events, model.MultiDay(LeaveName, runStart, last.AddDate(0, 0, 1)))
			}
		}
		runOpen, runIsLeave = false, false
	}

	for i, code := range days {
		date := first.AddDate(0, 0, i)

		if span, ok := table.Times(code, summer); ok {
			flush(date.AddDate(0, 0, -1))
			events = append(events, timedEvent(code, date, span))
			continue
		}

		switch code.Kind {
		case KindLeave:
			runIsLeave = true
			if !runOpen {
				runStart, runOpen = date, true
			}
		case KindDayOff:
			if !runOpen {
				runStart, runOpen = date, true
			}
		default:
			flush(date.AddDate(0, 0, -1))
		}
	}

	if len(days) > 0 {
		flush(first.AddDate(0, 0, len(days)-1))
	}
	return events
}

func timedEvent(code ShiftCode, date time.Time, span Span) model.Event {
	start := at(date, span.Start)
	endDate := date
	if code.Overnight {
		endDate = date.AddDate(0, 0, 1)
	}
	return model.Timed(code.Name, start, at(endDate, span.End))
}

func at(date time.Time, c Clock) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
}
