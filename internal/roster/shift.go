// Package roster turns a month of roster cells into calendar events.
//
// The pipeline is Classify (cell text -> ShiftCode), Times (ShiftCode ->
// wall-clock span) and Generate (day sequence -> events). All three are pure
// and safe for concurrent use.
package roster

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the family a ShiftCode belongs to.
type Kind int

const (
	// KindShift is a timed duty with a catalog span.
	KindShift Kind = iota
	KindLeave
	KindSick
	KindDayOff
	KindDayInLieu
	// KindFreeText is an unrecognised cell. It carries its own name and span.
	KindFreeText
)

var kindNames = map[Kind]string{
	KindShift:     "shift",
	KindLeave:     "leave",
	KindSick:      "sick",
	KindDayOff:    "day_off",
	KindDayInLieu: "day_in_lieu",
	KindFreeText:  "free_text",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind is the inverse of Kind.String. An empty string means KindShift.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindShift, nil
	}
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown shift kind %q", s)
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// Valid reports whether c is a real 24h time.
func (c Clock) Valid() bool {
	return c.Hour >= 0 && c.Hour <= 23 && c.Minute >= 0 && c.Minute <= 59
}

var ErrInvalidClock = errors.New("invalid time")

// ParseClock parses a 24h time written as four digits ("0830") or with a
// colon ("08:30").
func ParseClock(s string) (Clock, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ":", "")
	if len(s) != 4 {
		return Clock{}, fmt.Errorf("%w %q: want four digits, e.g. 0830", ErrInvalidClock, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return Clock{}, fmt.Errorf("%w %q: want four digits, e.g. 0830", ErrInvalidClock, s)
	}
	c := Clock{Hour: n / 100, Minute: n % 100}
	if !c.Valid() {
		return Clock{}, fmt.Errorf("%w %q: hours must be 00-23 and minutes 00-59", ErrInvalidClock, s)
	}
	return c, nil
}

// Span is a start/end pair of wall-clock times on the same nominal day.
type Span struct {
	Start Clock
	End   Clock
}

func (s Span) String() string {
	return s.Start.String() + "-" + s.End.String()
}

// CrossesMidnight reports whether the span ends at or before its start on
// the clock, so the end falls on the next day.
func (s Span) CrossesMidnight() bool {
	return s.End.Hour*60+s.End.Minute <= s.Start.Hour*60+s.Start.Minute
}

// ShiftSpec is one catalog entry.
type ShiftSpec struct {
	// Token is matched case-insensitively against cell text.
	Token string
	// Name is the event summary, e.g. "M shift".
	Name string
	Kind Kind
	// Span applies to KindShift only.
	Span Span
	// Summer, when set, replaces Span for months April to October.
	Summer *Span
	// Overnight shifts end on the following calendar day.
	Overnight bool
}

// ShiftCode is the classification of a single roster cell.
type ShiftCode struct {
	// Token is the catalog token (upper case) or, for free text, the cell text.
	Token     string
	Name      string
	Kind      Kind
	Overnight bool
	// Span is only meaningful for KindFreeText.
	Span Span
}

func (c ShiftCode) String() string {
	return c.Name
}

// FreeText builds a free-text code with an explicit span.
func FreeText(name string, span Span) ShiftCode {
	return ShiftCode{Token: name, Name: name, Kind: KindFreeText, Span: span}
}

// WithSpan returns a copy of a free-text code with span and name replaced.
func (c ShiftCode) WithSpan(name string, span Span) ShiftCode {
	c.Name = name
	c.Span = span
	return c
}

// Filled reports whether a free-text code has been given its times. An
// overnight code is filled even if both ends are midnight.
func (c ShiftCode) Filled() bool {
	return c.Kind == KindFreeText && (c.Span != Span{} || c.Overnight)
}

// DayOff is the code every empty cell classifies as.
var DayOff = ShiftCode{Token: "//", Name: "Day off", Kind: KindDayOff}

func shift(token, name string, start, end Clock) ShiftSpec {
	return ShiftSpec{Token: token, Name: name, Kind: KindShift, Span: Span{Start: start, End: end}}
}

func absence(token, name string, kind Kind) ShiftSpec {
	return ShiftSpec{Token: token, Name: name, Kind: kind}
}

func hm(h, m int) Clock { return Clock{Hour: h, Minute: m} }

func builtinSpecs() []ShiftSpec {
	d4Summer := Span{Start: hm(15, 30), End: hm(23, 0)}
	d4 := shift("D4", "D4 shift", hm(15, 0), hm(22, 30))
	d4.Summer = &d4Summer
	d4t := shift("D4T", "D4T shift", hm(15, 0), hm(22, 30))
	d4t.Summer = &d4Summer
	n := shift("N", "N shift", hm(22, 0), hm(6, 30))
	n.Overnight = true

	return []ShiftSpec{
		shift("M", "M shift", hm(6, 30), hm(13, 30)),
		shift("MX", "Mx shift", hm(6, 30), hm(14, 0)),
		shift("MT", "MT shift", hm(6, 30), hm(13, 30)),
		shift("D1", "D1 shift", hm(8, 0), hm(15, 30)),
		shift("D1T", "D1T shift", hm(8, 0), hm(15, 30)),
		shift("D2", "D2 shift", hm(9, 0), hm(17, 30)),
		shift("D2T", "D2T shift", hm(9, 0), hm(17, 30)),
		shift("D3", "D3 shift", hm(10, 0), hm(18, 30)),
		shift("D3T", "D3T shift", hm(10, 0), hm(18, 30)),
		d4,
		d4t,
		shift("D5", "D5 shift", hm(15, 15), hm(23, 45)),
		shift("D5T", "D5T shift", hm(15, 15), hm(23, 45)),
		shift("A", "A shift", hm(13, 30), hm(22, 0)),
		shift("AT", "AT shift", hm(13, 30), hm(22, 0)),
		shift("A1", "A1 shift", hm(13, 30), hm(21, 0)),
		shift("A1T", "A1T shift", hm(13, 30), hm(21, 0)),
		n,
		absence("DIL", "DIL", KindDayInLieu),
		absence("AL", "Annual leave", KindLeave),
		absence("SC", "Sick leave", KindSick),
		absence("SSC", "Sick leave", KindSick),
		absence("//", "Day off", KindDayOff),
		absence("S", "Day off", KindDayOff),
	}
}

// Catalog maps cell tokens to shift specs. The zero value is empty; use
// DefaultCatalog or NewCatalog.
type Catalog struct {
	specs map[string]ShiftSpec
	order []string
}

// NewCatalog builds a catalog from specs. Later specs override earlier ones
// with the same token.
func NewCatalog(specs ...ShiftSpec) *Catalog {
	c := &Catalog{specs: make(map[string]ShiftSpec, len(specs))}
	c.add(specs...)
	return c
}

// DefaultCatalog returns the built-in shift table.
func DefaultCatalog() *Catalog {
	return NewCatalog(builtinSpecs()...)
}

func (c *Catalog) add(specs ...ShiftSpec) {
	for _, s := range specs {
		key := strings.ToLower(strings.TrimSpace(s.Token))
		if key == "" {
			continue
		}
		s.Token = strings.ToUpper(strings.TrimSpace(s.Token))
		if _, exists := c.specs[key]; !exists {
			c.order = append(c.order, key)
		}
		c.specs[key] = s
	}
}

// With returns a copy of c extended (or overridden) by specs.
func (c *Catalog) With(specs ...ShiftSpec) *Catalog {
	out := &Catalog{
		specs: make(map[string]ShiftSpec, len(c.specs)+len(specs)),
		order: append([]string(nil), c.order...),
	}
	for k, v := range c.specs {
		out.specs[k] = v
	}
	out.add(specs...)
	return out
}

// Specs lists the catalog entries in insertion order.
func (c *Catalog) Specs() []ShiftSpec {
	out := make([]ShiftSpec, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.specs[k])
	}
	return out
}

// Lookup finds the spec for token, ignoring case.
func (c *Catalog) Lookup(token string) (ShiftSpec, bool) {
	s, ok := c.specs[strings.ToLower(strings.TrimSpace(token))]
	return s, ok
}

// Classify maps a raw cell value to exactly one ShiftCode. Empty cells are
// days off; unknown text becomes a free-text code named after the cell with a
// zero span, to be filled in by the caller.
func (c *Catalog) Classify(cell string) ShiftCode {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return DayOff
	}
	if s, ok := c.Lookup(cell); ok {
		return ShiftCode{Token: s.Token, Name: s.Name, Kind: s.Kind, Overnight: s.Overnight}
	}
	return FreeText(cell, Span{})
}

// ClassifyAll classifies a whole row of cells.
func (c *Catalog) ClassifyAll(cells []string) []ShiftCode {
	out := make([]ShiftCode, len(cells))
	for i, cell := range cells {
		out[i] = c.Classify(cell)
	}
	return out
}

var defaultCatalog = DefaultCatalog()

// Classify classifies cell against the built-in catalog.
func Classify(cell string) ShiftCode {
	return defaultCatalog.Classify(cell)
}
