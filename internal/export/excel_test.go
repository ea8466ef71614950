package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"planhebdo/internal/timeslots"
)

func sampleWeekRecaps() []EmployeeWeekRecap {
	return []EmployeeWeekRecap{
		{
			EmployeeID:   "marie",
			EmployeeName: "Marie Dupont",
			Days: []DayRecap{
				{DayKey: "2026-08-31", Hours: timeslots.WorkHours{
					Entry: "09:00", Pause: "12:00", Return: "13:00", Exit: "17:00", Hours: 7,
				}},
				{DayKey: "2026-09-01", Hours: timeslots.WorkHours{}},
			},
			TotalHours: 7,
		},
	}
}

func TestWriteWeekXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWeekXLSX(&buf, "Boutique Centre", "2026-08-31", sampleWeekRecaps()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	sheet := f.GetSheetName(0)
	assert.Equal(t, "Semaine 2026-08-31", sheet)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	// Header, two day rows, one total row.
	require.Len(t, rows, 4)
	assert.Equal(t, weekHeaderColumns, rows[0])
	assert.Equal(t, []string{"Marie Dupont", "2026-08-31", "09:00", "12:00", "13:00", "17:00", "7"}, rows[1])
	assert.Equal(t, "Total", rows[3][1])
	assert.Equal(t, "7", rows[3][6])
}

func TestWriteMonthXLSX(t *testing.T) {
	recaps := []EmployeeMonthRecap{
		{EmployeeID: "marie", EmployeeName: "Marie Dupont", DaysWorked: 12, TotalHours: 84.5},
		{EmployeeID: "julien", EmployeeName: "Julien Martin", DaysWorked: 0, TotalHours: 0},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteMonthXLSX(&buf, "Boutique Centre", "2026-08", recaps))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Mois 2026-08")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Marie Dupont", rows[1][0])
	assert.Equal(t, "84.5", rows[1][2])
}

func TestWriteWeekPDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWeekPDF(&buf, "Boutique Centre", "2026-08-31", sampleWeekRecaps()))

	assert.Greater(t, buf.Len(), 500)
	assert.Equal(t, "%PDF", buf.String()[:4])
}

func TestAddSheetCapsName(t *testing.T) {
	w := newWorkbookWriter()
	long := "une-boutique-avec-un-nom-vraiment-beaucoup-trop-long"
	require.NoError(t, w.addSheet(long))
	assert.Equal(t, long[:31], w.file.GetSheetName(0))
}
