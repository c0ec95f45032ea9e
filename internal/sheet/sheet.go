// Package sheet reads a monthly roster out of an .xlsx workbook.
//
// A roster sheet has one header row holding a name column marker ("NAME")
// followed, a few columns later, by day numbers 1..31. Each row below the
// header is one person; cell text under each day is that day's shift code.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	appLog "rostercal/internal/log"
)

var (
	ErrSheetNotFound      = errors.New("roster worksheet not found")
	ErrHeaderNotFound     = errors.New("header row not found")
	ErrDayColumnsNotFound = errors.New("day columns not found")
	ErrPersonNotFound     = errors.New("person not found in roster")
	ErrDayHeaderMismatch  = errors.New("day header does not match month")
)

// dayColumnWindow is how many cells right of the name column are searched
// for the first day number.
const dayColumnWindow = 5

// Options locates the roster inside the workbook.
type Options struct {
	Sheet             string
	HeaderMarker      string
	HeaderSearchRows  int
	NameSearchColumns int
}

// DefaultOptions matches the layout of the usual roster export.
func DefaultOptions() Options {
	return Options{
		Sheet:             "Roster",
		HeaderMarker:      "NAME",
		HeaderSearchRows:  10,
		NameSearchColumns: 5,
	}
}

func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Sheet == "" {
		o.Sheet = def.Sheet
	}
	if strings.TrimSpace(o.HeaderMarker) == "" {
		o.HeaderMarker = def.HeaderMarker
	}
	if o.HeaderSearchRows <= 0 {
		o.HeaderSearchRows = def.HeaderSearchRows
	}
	if o.NameSearchColumns <= 0 {
		o.NameSearchColumns = def.NameSearchColumns
	}
	return o
}

// Roster is the located roster table of one worksheet.
type Roster struct {
	sheet       string
	rows        [][]string
	headerRow   int
	nameCol     int
	firstDayCol int
}

// Open reads the workbook at path.
func Open(path string, opts Options) (*Roster, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return FromFile(f, opts)
}

// Read reads a workbook from r.
func Read(r io.Reader, opts Options) (*Roster, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return FromFile(f, opts)
}

// FromFile locates the roster in an already opened workbook. The rows are
// copied, so f may be closed afterwards.
func FromFile(f *excelize.File, opts Options) (*Roster, error) {
	opts = opts.normalized()

	idx, err := f.GetSheetIndex(opts.Sheet)
	if err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q (have %s)", ErrSheetNotFound, opts.Sheet, strings.Join(f.GetSheetList(), ", "))
	}
	rows, err := f.GetRows(opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", opts.Sheet, err)
	}

	r := &Roster{sheet: opts.Sheet, rows: rows}
	if err := r.locate(opts); err != nil {
		return nil, err
	}

	appLog.Debug("roster layout found",
		"sheet", r.sheet,
		"header_row", r.headerRow+1,
		"name_column", r.nameCol+1,
		"first_day_column", r.firstDayCol+1,
	)
	return r, nil
}

func (r *Roster) locate(opts Options) error {
	marker := strings.TrimSpace(opts.HeaderMarker)

	r.headerRow, r.nameCol = -1, -1
	for i := 0; i < len(r.rows) && i < opts.HeaderSearchRows; i++ {
		row := r.rows[i]
		for j := 0; j < len(row) && j < opts.NameSearchColumns; j++ {
			if strings.EqualFold(strings.TrimSpace(row[j]), marker) {
				r.headerRow, r.nameCol = i, j
				break
			}
		}
		if r.headerRow >= 0 {
			break
		}
	}
	if r.headerRow < 0 {
		return fmt.Errorf("%w: no %q cell in the first %d rows of %q",
			ErrHeaderNotFound, marker, opts.HeaderSearchRows, r.sheet)
	}

	header := r.rows[r.headerRow]
	r.firstDayCol = -1
	for j := r.nameCol + 1; j < len(header) && j <= r.nameCol+dayColumnWindow; j++ {
		if n, ok := dayNumber(header[j]); ok && n == 1 {
			r.firstDayCol = j
			break
		}
	}
	if r.firstDayCol < 0 {
		return fmt.Errorf("%w: no day 1 within %d columns of the name column in row %d",
			ErrDayColumnsNotFound, dayColumnWindow, r.headerRow+1)
	}
	return nil
}

// dayNumber reads a header cell as a day of month. Numeric cells may come
// back formatted as "1" or "1.0".
func dayNumber(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// Sheet returns the worksheet name the roster was read from.
func (r *Roster) Sheet() string { return r.sheet }

// Names lists the people in roster order.
func (r *Roster) Names() []string {
	var names []string
	for i := r.headerRow + 1; i < len(r.rows); i++ {
		if name := r.name(i); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (r *Roster) name(row int) string {
	cells := r.rows[row]
	if r.nameCol >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[r.nameCol])
}

// Cells returns exactly days cell values for person, day 1 first. Trailing
// cells the workbook left empty come back as "".
func (r *Roster) Cells(person string, days int) ([]string, error) {
	if err := r.checkDays(days); err != nil {
		return nil, err
	}

	want := normalizeName(person)
	for i := r.headerRow + 1; i < len(r.rows); i++ {
		if normalizeName(r.name(i)) != want || want == "" {
			continue
		}
		row := r.rows[i]
		out := make([]string, days)
		for d := range out {
			if c := r.firstDayCol + d; c < len(row) {
				out[d] = strings.TrimSpace(row[c])
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPersonNotFound, person)
}

func (r *Roster) checkDays(days int) error {
	header := r.rows[r.headerRow]
	for d := 1; d <= days; d++ {
		c := r.firstDayCol + d - 1
		var got string
		if c < len(header) {
			got = header[c]
		}
		if n, ok := dayNumber(got); !ok || n != d {
			return fmt.Errorf("%w: column %d is %q, want day %d",
				ErrDayHeaderMismatch, c+1, strings.TrimSpace(got), d)
		}
	}
	return nil
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
