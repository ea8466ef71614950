package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"planhebdo/internal/metrics"
)

// workbookWriter accumulates rows into an excelize workbook, one cursor per
// active sheet.
type workbookWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
}

func newWorkbookWriter() *workbookWriter {
	return &workbookWriter{file: excelize.NewFile()}
}

// addSheet adds (or renames the default) sheet and resets the row cursor.
func (w *workbookWriter) addSheet(name string) error {
	// Excel caps sheet names at 31 chars
	if len(name) > 31 {
		name = name[:31]
	}
	if w.currentSheet == "" {
		w.file.SetSheetName("Sheet1", name)
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	w.currentSheet = name
	w.currentRow = 1
	return nil
}

func (w *workbookWriter) writeHeader(columns []string) error {
	if err := w.writeRow(toAny(columns)); err != nil {
		return err
	}
	style, err := w.file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow-1)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow-1)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}
	return nil
}

func (w *workbookWriter) writeRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}
	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}
	w.currentRow++
	return nil
}

func (w *workbookWriter) save(out io.Writer) error {
	defer w.file.Close()
	return w.file.Write(out)
}

var weekHeaderColumns = []string{
	"Employé", "Jour", "Entrée", "Pause", "Retour", "Sortie", "Heures",
}

// WriteWeekXLSX renders a week recap workbook: one sheet, one row per
// employee per day, plus a total row per employee.
func WriteWeekXLSX(out io.Writer, shopName, weekKey string, recaps []EmployeeWeekRecap) error {
	w := newWorkbookWriter()
	if err := w.addSheet(fmt.Sprintf("Semaine %s", weekKey)); err != nil {
		return err
	}
	if err := w.writeHeader(weekHeaderColumns); err != nil {
		return err
	}

	for _, recap := range recaps {
		for _, day := range recap.Days {
			row := []any{
				recap.EmployeeName,
				day.DayKey,
				day.Hours.Entry,
				day.Hours.Pause,
				day.Hours.Return,
				day.Hours.Exit,
				day.Hours.Hours,
			}
			if err := w.writeRow(row); err != nil {
				return err
			}
		}
		total := []any{recap.EmployeeName, "Total", "", "", "", "", recap.TotalHours}
		if err := w.writeRow(total); err != nil {
			return err
		}
	}

	if err := w.save(out); err != nil {
		return fmt.Errorf("write workbook for %s: %w", shopName, err)
	}
	metrics.IncExport("xlsx")
	return nil
}

var monthHeaderColumns = []string{"Employé", "Jours travaillés", "Heures"}

// WriteMonthXLSX renders a monthly totals workbook.
func WriteMonthXLSX(out io.Writer, shopName, monthLabel string, recaps []EmployeeMonthRecap) error {
	w := newWorkbookWriter()
	if err := w.addSheet(fmt.Sprintf("Mois %s", monthLabel)); err != nil {
		return err
	}
	if err := w.writeHeader(monthHeaderColumns); err != nil {
		return err
	}
	for _, recap := range recaps {
		if err := w.writeRow([]any{recap.EmployeeName, recap.DaysWorked, recap.TotalHours}); err != nil {
			return err
		}
	}
	if err := w.save(out); err != nil {
		return fmt.Errorf("write workbook for %s: %w", shopName, err)
	}
	metrics.IncExport("xlsx")
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
