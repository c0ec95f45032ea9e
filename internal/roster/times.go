package roster

import "time"

// TimeTable resolves the wall-clock span of a code. ok is false for codes with
// no fixed time (absences).
type TimeTable interface {
	Times(code ShiftCode, summer bool) (span Span, ok bool)
}

var _ TimeTable = (*Catalog)(nil)

// IsSummer reports whether month lies in the April to October season that
// selects summer spans.
func IsSummer(month time.Month) bool {
	return month >= time.April && month <= time.October
}

// Times implements TimeTable. Free-text codes return their own span
// regardless of summer. A free-text code that was never filled in (zero span,
// not overnight) is not returned verbatim as 00:00-00:00: it reports ok=false,
// so the sequencer treats that day as untimed. A KindShift code whose token is
// not in the catalog has no time.
func (c *Catalog) Times(code ShiftCode, summer bool) (Span, bool) {
	switch code.Kind {
	case KindFreeText:
		return code.Span, code.Filled()
	case KindShift:
		s, ok := c.Lookup(code.Token)
		if !ok || s.Kind != KindShift {
			return Span{}, false
		}
		if summer && s.Summer != nil {
			return *s.Summer, true
		}
		return s.Span, true
	default:
		return Span{}, false
	}
}
