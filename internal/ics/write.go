package ics

import (
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"

	appLog "rostercal/internal/log"
	"rostercal/internal/model"
)

const (
	DefaultProdID       = "-//rostercal//Roster to ICS//EN"
	DefaultCalendarName = "MY CALENDAR"
	DefaultTimezone     = "Europe/London"

	localDateTime = "20060102T150405"
	uidDomain     = "rostercal"
)

var ErrInvalidEvent = errors.New("invalid event")

// uidNamespace scopes the name-based event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(uidDomain))

// Options controls calendar output. Zero fields take the package defaults.
type Options struct {
	CalendarName string
	ProdID       string
	// Timezone is the TZID of timed events; see ZoneIDs.
	Timezone string

	// AlarmMinutes > 0 adds a reminder that many minutes before each event.
	AlarmMinutes int
	// AlarmEmail turns the reminder into an e-mail notification.
	AlarmEmail string

	// UIDSeed is mixed into every UID so that calendars of different people
	// do not collide. Usually the person's name.
	UIDSeed string
	// Stamp is written as DTSTAMP. Defaults to now.
	Stamp time.Time
}

func (o Options) withDefaults() Options {
	if o.CalendarName == "" {
		o.CalendarName = DefaultCalendarName
	}
	if o.ProdID == "" {
		o.ProdID = DefaultProdID
	}
	if o.Timezone == "" {
		o.Timezone = DefaultTimezone
	}
	if o.Stamp.IsZero() {
		o.Stamp = time.Now()
	}
	return o
}

func (o Options) validate() error {
	if o.AlarmMinutes < 0 {
		return fmt.Errorf("alarm lead time must not be negative, got %d minutes", o.AlarmMinutes)
	}
	if o.AlarmEmail != "" {
		if err := ValidateEmail(o.AlarmEmail); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEmail accepts a bare address such as "me@example.com".
func ValidateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return fmt.Errorf("invalid e-mail address %q: %w", s, err)
	}
	if addr.Address != s {
		return fmt.Errorf("invalid e-mail address %q: want a bare address", s)
	}
	return nil
}

// Build assembles a calendar holding one VEVENT per event.
func Build(events []model.Event, opts Options) (*ical.Calendar, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	zone, err := LookupZone(opts.Timezone)
	if err != nil {
		return nil, err
	}

	cal := ical.NewCalendar()
	cal.SetProductId(opts.ProdID)
	cal.SetMethod(ical.MethodPublish)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(opts.CalendarName)
	cal.SetXWRTimezone(zone.ID)
	if err := zone.addTo(cal); err != nil {
		return nil, err
	}

	for i, ev := range events {
		if err := addEvent(cal, ev, zone.ID, opts); err != nil {
			return nil, fmt.Errorf("event %d (%s): %w", i, ev.Name, err)
		}
	}
	return cal, nil
}

// Write serializes events as an iCalendar file to w.
func Write(w io.Writer, events []model.Event, opts Options) error {
	cal, err := Build(events, opts)
	if err != nil {
		return err
	}
	if err := cal.SerializeTo(w, ical.WithNewLineWindows); err != nil {
		return fmt.Errorf("serialize calendar: %w", err)
	}
	appLog.Debug("calendar serialized", "events", len(events))
	return nil
}

func addEvent(cal *ical.Calendar, ev model.Event, tzid string, opts Options) error {
	if strings.TrimSpace(ev.Name) == "" {
		return fmt.Errorf("%w: empty summary", ErrInvalidEvent)
	}

	vev := cal.AddEvent(EventUID(ev, opts.UIDSeed))
	vev.SetDtStampTime(opts.Stamp)
	vev.SetSummary(ev.Name)

	switch ev.Kind {
	case model.KindTimed:
		if !ev.End.After(ev.Start) {
			return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidEvent,
				ev.End.Format(time.DateTime), ev.Start.Format(time.DateTime))
		}
		vev.SetProperty(ical.ComponentPropertyDtStart, ev.Start.Format(localDateTime), ical.WithTZID(tzid))
		vev.SetProperty(ical.ComponentPropertyDtEnd, ev.End.Format(localDateTime), ical.WithTZID(tzid))
	case model.KindAllDay:
		vev.SetAllDayStartAt(ev.Start)
		vev.SetAllDayEndAt(ev.Start.AddDate(0, 0, 1))
	case model.KindMultiDay:
		if !ev.End.After(ev.Start) {
			return fmt.Errorf("%w: multi-day end %s is not after start %s", ErrInvalidEvent,
				ev.End.Format(time.DateOnly), ev.Start.Format(time.DateOnly))
		}
		vev.SetAllDayStartAt(ev.Start)
		vev.SetAllDayEndAt(ev.End)
	default:
		return fmt.Errorf("%w: kind %s", ErrInvalidEvent, ev.Kind)
	}

	if opts.AlarmMinutes > 0 {
		alarm := vev.AddAlarm()
		alarm.SetTrigger(fmt.Sprintf("-PT%dM", opts.AlarmMinutes))
		if opts.AlarmEmail != "" {
			alarm.SetAction(ical.ActionEmail)
			alarm.SetSummary(ev.Name)
			alarm.SetDescription("Reminder: " + ev.Name)
			alarm.AddAttendee(opts.AlarmEmail)
		} else {
			alarm.SetAction(ical.ActionDisplay)
			alarm.SetDescription(ev.Name)
		}
	}
	return nil
}

// EventUID derives a stable UID from the event, so that importing a
// regenerated calendar updates events instead of duplicating them.
func EventUID(ev model.Event, seed string) string {
	name := strings.Join([]string{
		seed,
		ev.Kind.String(),
		ev.Name,
		ev.Start.Format(localDateTime),
		ev.End.Format(localDateTime),
	}, "\x1f")
	return uuid.NewSHA1(uidNamespace, []byte(name)).String() + "@" + uidDomain
}
