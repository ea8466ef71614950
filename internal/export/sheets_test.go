package export

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"planhebdo/internal/timeslots"
)

func TestRecapRowValues(t *testing.T) {
	day := DayRecap{
		DayKey: "2026-08-31",
		Hours: timeslots.WorkHours{
			Entry: "09:00", Pause: "12:00", Return: "13:00", Exit: "17:30", Hours: 7.5,
		},
	}

	row := recapRowValues("Marie Dupont", day)
	assert.Equal(t, []any{"Marie Dupont", "2026-08-31", "09:00", "12:00", "13:00", "17:30", 7.5}, row)
	assert.Len(t, row, len(weekHeaderColumns), "rows line up with the header")
}

func TestNewSheetsExporterMissingCredentials(t *testing.T) {
	_, err := NewSheetsExporter(context.Background(), "/nonexistent/creds.json", "sheet-id")
	assert.Error(t, err)
}
