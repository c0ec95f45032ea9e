package ics

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rostercal/internal/model"
)

func london(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)
	return loc
}

func sampleEvents(loc *time.Location) []model.Event {
	d := func(day int) time.Time { return time.Date(2024, time.February, day, 0, 0, 0, 0, loc) }
	at := func(day, h, m int) time.Time { return time.Date(2024, time.February, day, h, m, 0, 0, loc) }
	return []model.Event{
		model.MultiDay("Annual leave", d(1), d(5)),
		model.Timed("M shift", at(5, 6, 30), at(5, 13, 30)),
		model.AllDay("Annual leave", d(7)),
		model.Timed("N shift", at(29, 22, 0), time.Date(2024, time.March, 1, 6, 30, 0, 0, loc)),
	}
}

var stamp = time.Date(2024, time.January, 20, 12, 0, 0, 0, time.UTC)

func writeString(t *testing.T, events []model.Event, opts Options) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, events, opts))
	return buf.String()
}

func TestWrite_CalendarProperties(t *testing.T) {
	out := writeString(t, nil, Options{Stamp: stamp})

	for _, line := range []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//rostercal//Roster to ICS//EN",
		"METHOD:PUBLISH",
		"CALSCALE:GREGORIAN",
		"X-WR-CALNAME:MY CALENDAR",
		"X-WR-TIMEZONE:Europe/London",
		"BEGIN:VTIMEZONE",
		"TZID:Europe/London",
		"X-LIC-LOCATION:Europe/London",
		"BEGIN:DAYLIGHT",
		"TZNAME:BST",
		"DTSTART:19700329T010000",
		"RRULE:FREQ=YEARLY;BYMONTH=3;BYDAY=-1SU",
		"BEGIN:STANDARD",
		"TZNAME:GMT",
		"DTSTART:19701025T020000",
		"TZOFFSETFROM:+0100",
		"TZOFFSETTO:+0000",
		"RRULE:FREQ=YEARLY;BYMONTH=10;BYDAY=-1SU",
		"END:VCALENDAR",
	} {
		assert.Contains(t, out, line+"\r\n")
	}
	assert.NotContains(t, out, "BEGIN:VEVENT")
}

func TestWrite_LinesEndWithCRLF(t *testing.T) {
	out := writeString(t, sampleEvents(london(t)), Options{AlarmMinutes: 15, Stamp: stamp})

	require.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	lines := strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n")
	for _, line := range lines {
		assert.NotContains(t, line, "\n")
	}
}

func TestWrite_TimezoneLocationProperty(t *testing.T) {
	out := writeString(t, nil, Options{Timezone: "Europe/Dublin", Stamp: stamp})

	var xlines []string
	for _, line := range strings.Split(out, "\r\n") {
		if strings.HasPrefix(line, "X-") {
			xlines = append(xlines, line)
		}
	}
	assert.Equal(t, []string{
		"X-WR-CALNAME:MY CALENDAR",
		"X-WR-TIMEZONE:Europe/Dublin",
		"X-LIC-LOCATION:Europe/Dublin",
	}, xlines)
}

func TestWrite_EventForms(t *testing.T) {
	loc := london(t)
	out := writeString(t, sampleEvents(loc), Options{CalendarName: "Ward rota", Stamp: stamp})

	assert.Contains(t, out, "X-WR-CALNAME:Ward rota\r\n")
	assert.Equal(t, 4, strings.Count(out, "BEGIN:VEVENT"))
	assert.Contains(t, out, "DTSTAMP:20240120T120000Z\r\n")

	// Multi-day block: exclusive DATE end.
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240201\r\n")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240205\r\n")
	// Single all-day: DTEND is the next day.
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240207\r\n")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240208\r\n")
	// Timed: local wall clock with TZID.
	assert.Contains(t, out, "DTSTART;TZID=Europe/London:20240205T063000\r\n")
	assert.Contains(t, out, "DTEND;TZID=Europe/London:20240205T133000\r\n")
	assert.Contains(t, out, "DTEND;TZID=Europe/London:20240301T063000\r\n")
	assert.Contains(t, out, "SUMMARY:M shift\r\n")

	assert.NotContains(t, out, "BEGIN:VALARM")
}

func TestWrite_DisplayAlarm(t *testing.T) {
	out := writeString(t, sampleEvents(london(t))[:1], Options{AlarmMinutes: 45, Stamp: stamp})

	assert.Contains(t, out, "BEGIN:VALARM\r\n")
	assert.Contains(t, out, "TRIGGER:-PT45M\r\n")
	assert.Contains(t, out, "ACTION:DISPLAY\r\n")
	assert.NotContains(t, out, "ATTENDEE")
}

func TestWrite_EmailAlarm(t *testing.T) {
	out := writeString(t, sampleEvents(london(t))[:2], Options{
		AlarmMinutes: 60,
		AlarmEmail:   "nurse@example.com",
		Stamp:        stamp,
	})

	assert.Equal(t, 2, strings.Count(out, "BEGIN:VALARM"))
	assert.Contains(t, out, "ACTION:EMAIL\r\n")
	assert.Contains(t, out, "ATTENDEE:mailto:nurse@example.com\r\n")
	assert.Contains(t, out, "TRIGGER:-PT60M\r\n")
}

func TestWrite_DublinZone(t *testing.T) {
	out := writeString(t, nil, Options{Timezone: "Europe/Dublin", Stamp: stamp})
	assert.Contains(t, out, "TZID:Europe/Dublin\r\n")
	assert.Contains(t, out, "TZNAME:IST\r\n")
}

func TestBuild_Errors(t *testing.T) {
	loc := london(t)
	events := sampleEvents(loc)

	_, err := Build(events, Options{Timezone: "Mars/Olympus"})
	assert.ErrorIs(t, err, ErrUnknownZone)

	_, err = Build(events, Options{AlarmMinutes: -5})
	assert.Error(t, err)

	_, err = Build(events, Options{AlarmMinutes: 5, AlarmEmail: "not-an-address"})
	assert.Error(t, err)

	start := time.Date(2024, time.March, 1, 9, 0, 0, 0, loc)
	_, err = Build([]model.Event{model.Timed("Backwards", start, start.Add(-time.Hour))}, Options{})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = Build([]model.Event{model.Timed(" ", start, start.Add(time.Hour))}, Options{})
	assert.ErrorIs(t, err, ErrInvalidEvent)

	_, err = Build([]model.Event{model.MultiDay("Annual leave", start, start)}, Options{})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestEventUID_Stable(t *testing.T) {
	ev := sampleEvents(london(t))[1]

	a := EventUID(ev, "Jane Smith")
	assert.Equal(t, a, EventUID(ev, "Jane Smith"))
	assert.True(t, strings.HasSuffix(a, "@rostercal"))
	assert.NotEqual(t, a, EventUID(ev, "Sam Jones"))

	moved := ev
	moved.Start = moved.Start.Add(time.Hour)
	assert.NotEqual(t, a, EventUID(moved, "Jane Smith"))
}

func TestWriteParse_RoundTrip(t *testing.T) {
	loc := london(t)
	events := sampleEvents(loc)
	out := writeString(t, events, Options{AlarmMinutes: 30, UIDSeed: "Jane", Stamp: stamp})

	path := filepath.Join(t.TempDir(), "out.ics")
	require.NoError(t, os.WriteFile(path, []byte(out), 0o644))

	doc, err := ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, "MY CALENDAR", doc.Name)
	assert.Equal(t, DefaultProdID, doc.ProdID)
	assert.Equal(t, "Europe/London", doc.Timezone)
	require.Len(t, doc.Events, len(events))

	for i, got := range doc.Events {
		want := events[i]
		assert.Equal(t, want.Name, got.Summary)
		assert.Equal(t, EventUID(want, "Jane"), got.UID)
		assert.Equal(t, []string{"-PT30M"}, got.Alarms)

		if want.Kind == model.KindTimed {
			assert.False(t, got.AllDay)
			assert.Equal(t, "Europe/London", got.TZID)
			assert.True(t, want.Start.Equal(got.Start), "start %v vs %v", want.Start, got.Start)
			assert.True(t, want.End.Equal(got.End), "end %v vs %v", want.End, got.End)
			continue
		}
		assert.True(t, got.AllDay)
		assert.Equal(t, want.Start.Format(time.DateOnly), got.Start.Format(time.DateOnly))
		wantEnd := want.End
		if want.Kind == model.KindAllDay {
			wantEnd = want.Start.AddDate(0, 0, 1)
		}
		assert.Equal(t, wantEnd.Format(time.DateOnly), got.End.Format(time.DateOnly))
	}
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)

	_, err = ParseFile(filepath.Join(t.TempDir(), "missing.ics"))
	assert.Error(t, err)
}

func TestParse_SkipsEventWithoutUID(t *testing.T) {
	body := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//EN",
		"BEGIN:VEVENT",
		"SUMMARY:No uid",
		"DTSTART;VALUE=DATE:20240301",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:abc",
		"SUMMARY:Course\\, day one",
		"DTSTART;VALUE=DATE:20240302",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	doc, err := Parse([]byte(body))
	require.NoError(t, err)
	require.Len(t, doc.Events, 1)
	ev := doc.Events[0]
	assert.Equal(t, "abc", ev.UID)
	assert.Equal(t, "Course, day one", ev.Summary)
	assert.True(t, ev.AllDay)
	assert.Equal(t, "2024-03-03", ev.End.Format(time.DateOnly))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("me@example.com"))
	assert.Error(t, ValidateEmail("Me <me@example.com>"))
	assert.Error(t, ValidateEmail("me"))
	assert.Error(t, ValidateEmail(""))
}
