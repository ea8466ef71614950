package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConvertToNumber(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected float64
		wantErr  bool
	}{
		{"plain euros", "45.5", 45.5, false},
		{"french decimal comma", "45,5", 45.5, false},
		{"cents encoding above threshold", "150000", 1500, false},
		{"negative cents encoding", "-250050", -2500.50, false},
		{"exactly 1000 stays euros", "1000", 1000, false},
		{"just above threshold", "1000.5", 10.005, false},
		{"currency sign and spaces", " 1 234,56 €", 12.3456, false},
		{"empty cell is zero", "", 0, false},
		{"whitespace only is zero", "   ", 0, false},
		{"zero", "0", 0, false},
		{"garbage", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ConvertToNumber(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.InDelta(t, tt.expected, v, 1e-9)
		})
	}
}

func TestParseCellDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{"french date", "03/08/2026", "2026-08-03", false},
		{"iso date", "2026-08-03", "2026-08-03", false},
		{"short year", "03/08/26", "2026-08-03", false},
		{"dashed", "03-08-2026", "2026-08-03", false},
		{"excel serial", "46237", "2026-08-03", false},
		{"empty", "", "", true},
		{"garbage", "lundi", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseCellDate(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, d.Format("2006-01-02"))
		})
	}
}

func TestExcelSerialToDate(t *testing.T) {
	// The 1899-12-30 epoch absorbs the 1900 leap-year bug for modern dates.
	assert.Equal(t, time.Date(1899, 12, 31, 0, 0, 0, 0, time.UTC), ExcelSerialToDate(1))
	assert.Equal(t, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC), ExcelSerialToDate(46237))
}
