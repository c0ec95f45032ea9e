package sheet

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// newWorkbook builds a single-sheet workbook in memory.
func newWorkbook(t *testing.T, sheet string, rows [][]any) *excelize.File {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	if sheet != "Sheet1" {
		idx, err := f.NewSheet(sheet)
		require.NoError(t, err)
		f.SetActiveSheet(idx)
		require.NoError(t, f.DeleteSheet("Sheet1"))
	}
	for i, row := range rows {
		row := row
		require.NoError(t, f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+1), &row))
	}
	return f
}

func headerRow(lead []any, days int) []any {
	row := append([]any{}, lead...)
	for d := 1; d <= days; d++ {
		row = append(row, d)
	}
	return row
}

func marchRows() [][]any {
	return [][]any{
		{"Ward 7 roster", "", "", "March 2024"},
		{""},
		headerRow([]any{"", "NAME", "Grade"}, 31),
		{"", "Jane Smith", "B5", "M", "", "AL", "al", " N "},
		{"", "", ""},
		{"", "  Sam   Jones ", "B6", "D4", "//"},
	}
}

func TestFromFile_LocatesLayout(t *testing.T) {
	f := newWorkbook(t, "Roster", marchRows())

	r, err := FromFile(f, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Roster", r.Sheet())
	assert.Equal(t, 2, r.headerRow)
	assert.Equal(t, 1, r.nameCol)
	assert.Equal(t, 3, r.firstDayCol)
	assert.Equal(t, []string{"Jane Smith", "Sam   Jones"}, r.Names())
}

func TestCells_PadsAndTrims(t *testing.T) {
	r, err := FromFile(newWorkbook(t, "Roster", marchRows()), DefaultOptions())
	require.NoError(t, err)

	cells, err := r.Cells("jane smith", 31)
	require.NoError(t, err)
	require.Len(t, cells, 31)
	assert.Equal(t, []string{"M", "", "AL", "al", "N", ""}, cells[:6])
	for _, c := range cells[5:] {
		assert.Empty(t, c)
	}

	cells, err = r.Cells("Sam Jones", 31)
	require.NoError(t, err)
	assert.Equal(t, "D4", cells[0])
	assert.Equal(t, "//", cells[1])
}

func TestCells_UnknownPerson(t *testing.T) {
	r, err := FromFile(newWorkbook(t, "Roster", marchRows()), DefaultOptions())
	require.NoError(t, err)

	_, err = r.Cells("Nobody", 31)
	assert.ErrorIs(t, err, ErrPersonNotFound)

	_, err = r.Cells("", 31)
	assert.ErrorIs(t, err, ErrPersonNotFound)
}

func TestCells_DayHeaderMismatch(t *testing.T) {
	rows := marchRows()
	rows[2] = headerRow([]any{"", "NAME", "Grade"}, 30)
	r, err := FromFile(newWorkbook(t, "Roster", rows), DefaultOptions())
	require.NoError(t, err)

	_, err = r.Cells("Jane Smith", 30)
	assert.NoError(t, err)
	_, err = r.Cells("Jane Smith", 31)
	assert.ErrorIs(t, err, ErrDayHeaderMismatch)
}

func TestFromFile_Errors(t *testing.T) {
	t.Run("missing sheet", func(t *testing.T) {
		_, err := FromFile(newWorkbook(t, "Sheet1", marchRows()), DefaultOptions())
		assert.ErrorIs(t, err, ErrSheetNotFound)
	})

	t.Run("header beyond search rows", func(t *testing.T) {
		rows := make([][]any, 0, 12)
		for i := 0; i < 10; i++ {
			rows = append(rows, []any{"notes"})
		}
		rows = append(rows, headerRow([]any{"NAME"}, 31))
		_, err := FromFile(newWorkbook(t, "Roster", rows), DefaultOptions())
		assert.ErrorIs(t, err, ErrHeaderNotFound)
	})

	t.Run("marker beyond name columns", func(t *testing.T) {
		rows := [][]any{headerRow([]any{"", "", "", "", "", "NAME"}, 31)}
		_, err := FromFile(newWorkbook(t, "Roster", rows), DefaultOptions())
		assert.ErrorIs(t, err, ErrHeaderNotFound)
	})

	t.Run("no day one", func(t *testing.T) {
		rows := [][]any{{"NAME", "Grade", "Team", "Base", "Notes", "Extra", 1, 2, 3}}
		_, err := FromFile(newWorkbook(t, "Roster", rows), DefaultOptions())
		assert.ErrorIs(t, err, ErrDayColumnsNotFound)
	})
}

func TestFromFile_CustomOptions(t *testing.T) {
	rows := [][]any{
		headerRow([]any{"Staff"}, 28),
		{"Alex", "A", "A"},
	}
	opts := Options{Sheet: "Feb", HeaderMarker: "staff"}
	r, err := FromFile(newWorkbook(t, "Feb", rows), opts)
	require.NoError(t, err)

	cells, err := r.Cells("ALEX", 28)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "A", ""}, cells[:3])
}

func TestOpenAndRead(t *testing.T) {
	f := newWorkbook(t, "Roster", marchRows())

	path := filepath.Join(t.TempDir(), "Roster March 2024.xlsx")
	require.NoError(t, f.SaveAs(path))
	r, err := Open(path, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, r.Names(), 2)

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	r, err = Read(&buf, DefaultOptions())
	require.NoError(t, err)
	assert.Len(t, r.Names(), 2)

	_, err = Open(filepath.Join(t.TempDir(), "missing.xlsx"), DefaultOptions())
	assert.Error(t, err)
}

func TestDayNumber(t *testing.T) {
	for in, want := range map[string]int{"1": 1, " 12 ": 12, "3.0": 3} {
		got, ok := dayNumber(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "Mon", "1.5"} {
		_, ok := dayNumber(in)
		assert.False(t, ok, in)
	}
}
