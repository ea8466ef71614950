package importer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// excelEpoch is the zero of Excel serial dates (day 1 = 1900-01-01, with
// the historical off-by-two from the 1900 leap-year bug).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// dateLayouts are the calendar formats the POS exports have been seen to
// use, day-first as is usual in French exports.
var dateLayouts = []string{
	"02/01/2006",
	"2006-01-02",
	"02/01/06",
	"02-01-2006",
	"01-02-06", // excelize default short format for date-styled cells
}

// ConvertToNumber parses a monetary cell into euros.
//
// Contract: a parsed magnitude above 1000 is treated as a cents encoding
// and divided by 100; anything else is taken as already in euros. The
// threshold cannot distinguish a legitimately large euro amount from a
// cents encoding; that narrowing is inherited from the data source.
func ConvertToNumber(raw string) (float64, error) {
	s := cleanNumeric(raw)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", raw)
	}
	if math.Abs(v) > 1000 {
		return v / 100, nil
	}
	return v, nil
}

// ParseCellDate normalizes a date cell: either an Excel serial number or a
// calendar date string.
func ParseCellDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date cell")
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return ExcelSerialToDate(serial), nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", raw)
}

// ExcelSerialToDate converts an Excel serial date to a UTC calendar date.
func ExcelSerialToDate(serial float64) time.Time {
	days := int(serial)
	return excelEpoch.AddDate(0, 0, days)
}

func cleanNumeric(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "€", "")
	s = strings.ReplaceAll(s, ",", ".")
	return s
}
