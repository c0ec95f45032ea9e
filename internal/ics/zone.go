package ics

import (
	"errors"
	"fmt"
	"sort"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
)

var ErrUnknownZone = errors.New("unknown timezone")

// Observance is one half of a zone's yearly daylight-saving cycle: the
// clocks change at Hour local time on the last Sunday of Month.
type Observance struct {
	Name       string
	Month      time.Month
	Hour       int
	OffsetFrom string
	OffsetTo   string
}

// Zone is a fixed-rule VTIMEZONE definition.
type Zone struct {
	ID       string
	Standard Observance
	Daylight Observance
}

var zones = map[string]Zone{
	"Europe/London": {
		ID:       "Europe/London",
		Daylight: Observance{Name: "BST", Month: time.March, Hour: 1, OffsetFrom: "+0000", OffsetTo: "+0100"},
		Standard: Observance{Name: "GMT", Month: time.October, Hour: 2, OffsetFrom: "+0100", OffsetTo: "+0000"},
	},
	"Europe/Dublin": {
		ID:       "Europe/Dublin",
		Daylight: Observance{Name: "IST", Month: time.March, Hour: 1, OffsetFrom: "+0000", OffsetTo: "+0100"},
		Standard: Observance{Name: "GMT", Month: time.October, Hour: 2, OffsetFrom: "+0100", OffsetTo: "+0000"},
	},
}

// LookupZone returns the definition for a zone ID such as "Europe/London".
func LookupZone(id string) (Zone, error) {
	z, ok := zones[id]
	if !ok {
		return Zone{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownZone, id, ZoneIDs())
	}
	return z, nil
}

// ZoneIDs lists the supported zones.
func ZoneIDs() []string {
	ids := make([]string, 0, len(zones))
	for id := range zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// rule is the yearly recurrence of an observance.
func (o Observance) rule() rrule.ROption {
	return rrule.ROption{
		Freq:      rrule.YEARLY,
		Bymonth:   []int{int(o.Month)},
		Byweekday: []rrule.Weekday{rrule.SU.Nth(-1)},
	}
}

// RRule renders the observance as an RRULE value.
func (o Observance) RRule() string {
	opt := o.rule()
	return opt.RRuleString()
}

// first returns the first change on or after January of year, as local
// wall time expressed in UTC.
func (o Observance) first(year int) (time.Time, error) {
	opt := o.rule()
	opt.Dtstart = time.Date(year, time.January, 1, o.Hour, 0, 0, 0, time.UTC)
	opt.Count = 1
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, err
	}
	all := r.All()
	if len(all) == 0 {
		return time.Time{}, fmt.Errorf("observance %s has no occurrence in %d", o.Name, year)
	}
	return all[0], nil
}

// Transitions returns the local wall times at which daylight saving starts
// and ends in year.
func (z Zone) Transitions(year int) (start, end time.Time, err error) {
	if start, err = z.Daylight.first(year); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = z.Standard.first(year); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// epochYear anchors the DTSTART of each observance, as calendar clients
// expect for rule-based zones.
const epochYear = 1970

// addTo appends the VTIMEZONE component to cal.
func (z Zone) addTo(cal *ical.Calendar) error {
	tz := cal.AddTimezone(z.ID)
	tz.AddProperty(ical.ComponentProperty("X-LIC-LOCATION"), z.ID)

	daylight := &ical.Daylight{}
	if err := z.Daylight.fill(&daylight.ComponentBase); err != nil {
		return err
	}
	tz.Components = append(tz.Components, daylight)

	standard := tz.AddStandard()
	return z.Standard.fill(&standard.ComponentBase)
}

func (o Observance) fill(cb *ical.ComponentBase) error {
	dtstart, err := o.first(epochYear)
	if err != nil {
		return err
	}
	cb.AddProperty(ical.ComponentProperty(ical.PropertyTzname), o.Name)
	cb.AddProperty(ical.ComponentPropertyDtStart, dtstart.Format(localDateTime))
	cb.AddProperty(ical.ComponentProperty(ical.PropertyTzoffsetfrom), o.OffsetFrom)
	cb.AddProperty(ical.ComponentProperty(ical.PropertyTzoffsetto), o.OffsetTo)
	cb.AddProperty(ical.ComponentPropertyRrule, o.RRule())
	return nil
}
