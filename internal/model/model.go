package model

import "time"

// Kind distinguishes how an Event is bounded and therefore how it is encoded
// in the calendar file (date-time vs date-only values).
type Kind int

const (
	// KindTimed is a shift with a start and end instant.
	KindTimed Kind = iota
	// KindAllDay covers exactly one calendar date.
	KindAllDay
	// KindMultiDay covers a range of dates with an exclusive end date.
	KindMultiDay
)

func (k Kind) String() string {
	switch k {
	case KindTimed:
		return "timed"
	case KindAllDay:
		return "all-day"
	case KindMultiDay:
		return "multi-day"
	default:
		return "unknown"
	}
}

// Event represents a single calendar entry generated from a roster month.
//
// Field meaning depends on Kind:
//   - KindTimed: Start/End are wall-clock instants in the roster's location.
//     End may fall on the next calendar date (overnight shifts).
//   - KindAllDay: Start is the date (midnight); End equals Start.
//   - KindMultiDay: Start is the first date; End is one day past the last
//     affected date. Serializers rely on this exclusive end as-is.
type Event struct {
	Kind Kind
	Name string

	Start time.Time
	End   time.Time
}

// Timed returns a KindTimed event.
func Timed(name string, start, end time.Time) Event {
	return Event{Kind: KindTimed, Name: name, Start: start, End: end}
}

// AllDay returns a KindAllDay event on date.
func AllDay(name string, date time.Time) Event {
	return Event{Kind: KindAllDay, Name: name, Start: date, End: date}
}

// MultiDay returns a KindMultiDay event. end is exclusive.
func MultiDay(name string, start, end time.Time) Event {
	return Event{Kind: KindMultiDay, Name: name, Start: start, End: end}
}

// LastDate returns the last calendar date the event touches.
func (e Event) LastDate() time.Time {
	switch e.Kind {
	case KindMultiDay:
		return e.End.AddDate(0, 0, -1)
	case KindTimed:
		return time.Date(e.End.Year(), e.End.Month(), e.End.Day(), 0, 0, 0, 0, e.End.Location())
	default:
		return e.Start
	}
}
