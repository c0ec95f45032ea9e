package prompt

import (
	"fmt"
	"strings"
	"time"

	"rostercal/internal/roster"
)

type answer struct {
	name string
	span roster.Span
}

// FillFreeText asks for the name and times of every free-text day and
// returns a new sequence with those days filled in; days is not modified.
// When a token repeats, the earlier answers are offered as defaults.
//
// An end time at or before the start time makes the entry overnight.
func FillFreeText(first time.Time, days []roster.ShiftCode, asker Asker) ([]roster.ShiftCode, error) {
	out := make([]roster.ShiftCode, len(days))
	copy(out, days)

	seen := make(map[string]answer)
	for i, code := range days {
		if code.Kind != roster.KindFreeText {
			continue
		}
		date := first.AddDate(0, 0, i)
		label := fmt.Sprintf("%q on %s", code.Token, date.Format("Mon 2 Jan"))
		key := strings.ToLower(code.Token)

		prev, repeated := seen[key]
		def := code.Token
		if repeated {
			def = prev.name
		}
		name, err := asker.AskText(fmt.Sprintf("Unrecognised roster entry %s. Event name:", label), def)
		if err != nil {
			return nil, err
		}
		if name = strings.TrimSpace(name); name == "" {
			name = def
		}

		if repeated {
			reuse, err := asker.AskText(fmt.Sprintf("Use the same times as before (%s)? [Y/n]", prev.span), "y")
			if err != nil {
				return nil, err
			}
			if isYes(reuse) {
				out[i] = fill(code, name, prev.span)
				seen[key] = answer{name: name, span: prev.span}
				continue
			}
		}

		start, err := asker.AskClock(fmt.Sprintf("Start time for %s:", label))
		if err != nil {
			return nil, err
		}
		end, err := asker.AskClock(fmt.Sprintf("End time for %s:", label))
		if err != nil {
			return nil, err
		}
		span := roster.Span{Start: start, End: end}
		out[i] = fill(code, name, span)
		seen[key] = answer{name: name, span: span}
	}
	return out, nil
}

func fill(code roster.ShiftCode, name string, span roster.Span) roster.ShiftCode {
	c := code.WithSpan(name, span)
	c.Overnight = span.CrossesMidnight()
	return c
}

func isYes(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "y", "yes":
		return true
	}
	return false
}

// FreeTextDays returns the indexes of days that still need filling in.
func FreeTextDays(days []roster.ShiftCode) []int {
	var idx []int
	for i, c := range days {
		if c.Kind == roster.KindFreeText && !c.Filled() {
			idx = append(idx, i)
		}
	}
	return idx
}
