package sheet

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrYearNotFound  = errors.New("unable to determine year from file name")
	ErrMonthNotFound = errors.New("unable to determine month from file name")
	ErrInvalidYear   = errors.New("year must be between 2000 and 2099")
	ErrInvalidMonth  = errors.New("month must be between 1 and 12")
)

var (
	yearPattern  = regexp.MustCompile(`20\d{2}`)
	monthPattern = regexp.MustCompile(`(?i)january|february|march|april|may|june|july|august|september|october|november|december`)
)

// ResolveMonth works out which month a roster file covers. Non-zero year or
// month arguments win; otherwise they are taken from the file name, e.g.
// "Roster March 2024.xlsx". The year is the first run of 20xx digits in the
// name, not the lowest year it contains, so "Rota 2025 (copy of 2024)" gives
// 2025.
func ResolveMonth(fileName string, year, month int) (int, time.Month, error) {
	if year == 0 {
		m := yearPattern.FindString(fileName)
		if m == "" {
			return 0, 0, fmt.Errorf("%w %q; pass the year explicitly", ErrYearNotFound, fileName)
		}
		year, _ = strconv.Atoi(m)
	}
	if year < 2000 || year > 2099 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidYear, year)
	}

	if month == 0 {
		m := monthPattern.FindString(fileName)
		if m == "" {
			return 0, 0, fmt.Errorf("%w %q; pass the month explicitly", ErrMonthNotFound, fileName)
		}
		n, err := ParseMonth(m)
		if err != nil {
			return 0, 0, err
		}
		month = int(n)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return year, time.Month(month), nil
}

// ParseMonth accepts a month number (1-12), an English month name, or any
// prefix of one at least three letters long ("Mar", "sept").
func ParseMonth(s string) (time.Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("%w: %d", ErrInvalidMonth, n)
		}
		return time.Month(n), nil
	}
	lower := strings.ToLower(s)
	if len(lower) >= 3 {
		for m := time.January; m <= time.December; m++ {
			if strings.HasPrefix(strings.ToLower(m.String()), lower) {
				return m, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}
