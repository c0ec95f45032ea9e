package ics

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "rostercal/internal/log"

	// TZID parameters are resolved with time.LoadLocation; embed the zone
	// database so that works on hosts without one.
	_ "time/tzdata"
)

// ParsedEvent is the normalized representation of a VEVENT read back from
// a calendar file.
type ParsedEvent struct {
	UID     string
	Summary string

	// Start/End carry the TZID location for timed events. For all-day
	// events they are dates and End is exclusive.
	Start  time.Time
	End    time.Time
	AllDay bool
	TZID   string

	// Alarms holds the TRIGGER value of each VALARM.
	Alarms []string
}

// Document is a parsed calendar file.
type Document struct {
	Name     string
	ProdID   string
	Timezone string
	Events   []ParsedEvent
}

// ParseFile reads and parses the calendar at path.
func ParseFile(path string) (*Document, error) {
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse parses a single ICS payload.
//
//   - It relies on the underlying library's TZID handling to construct
//     time.Time values with Location set.
//   - It detects all-day events by inspecting the DTSTART value format.
//   - Events are returned sorted by start time.
func Parse(body []byte) (*Document, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err)
		return nil, err
	}

	doc := &Document{}
	for _, p := range cal.CalendarProperties {
		switch ical.Property(p.IANAToken) {
		case ical.PropertyXWRCalName:
			doc.Name = ical.FromText(p.Value)
		case ical.PropertyProductId:
			doc.ProdID = p.Value
		case ical.PropertyXWRTimezone:
			doc.Timezone = p.Value
		}
	}

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(comp)
		if perr != nil {
			// Log and skip this event, but keep parsing others.
			appLog.Error("ics vevent parse failed", perr, "uid", comp.Id())
			continue
		}
		doc.Events = append(doc.Events, ev)
	}
	sort.SliceStable(doc.Events, func(i, j int) bool {
		return doc.Events[i].Start.Before(doc.Events[j].Start)
	})

	appLog.Debug("ics parse completed", "event_count", len(doc.Events))
	return doc, nil
}

func parseVEvent(ve *ical.VEvent) (ParsedEvent, error) {
	var out ParsedEvent

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = ical.FromText(p.Value)
	}

	dtStartProp := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStartProp == nil {
		return out, errors.New("missing DTSTART")
	}
	// VALUE=DATE or no 'T' in the value -> all-day
	if vs := dtStartProp.ICalParameters[string(ical.ParameterValue)]; len(vs) > 0 && strings.EqualFold(vs[0], string(ical.ValueDataTypeDate)) {
		out.AllDay = true
	}
	if !strings.Contains(dtStartProp.Value, "T") {
		out.AllDay = true
	}
	if tzs := dtStartProp.ICalParameters[string(ical.ParameterTzid)]; len(tzs) > 0 {
		out.TZID = tzs[0]
	}

	var err error
	if out.AllDay {
		if out.Start, err = ve.GetAllDayStartAt(); err != nil {
			return out, fmt.Errorf("DTSTART: %w", err)
		}
		out.End, err = ve.GetAllDayEndAt()
		if err != nil {
			// A date-only event without DTEND lasts one day.
			out.End = out.Start.AddDate(0, 0, 1)
		}
	} else {
		if out.Start, err = ve.GetStartAt(); err != nil {
			return out, fmt.Errorf("DTSTART: %w", err)
		}
		if out.End, err = ve.GetEndAt(); err != nil {
			out.End = out.Start
		}
	}

	for _, a := range ve.Alarms() {
		if p := a.GetProperty(ical.ComponentPropertyTrigger); p != nil {
			out.Alarms = append(out.Alarms, p.Value)
		}
	}

	return out, nil
}
