package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"planhebdo/internal/metrics"
)

// pdf layout constants, landscape A4
const (
	pdfNameColWidth = 50.0
	pdfColWidth     = 33.0
	pdfRowHeight    = 7.0
)

// WriteWeekPDF renders the week recap as a landscape table, one row per
// employee per day.
func WriteWeekPDF(out io.Writer, shopName, weekKey string, recaps []EmployeeWeekRecap) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Planning %s - semaine du %s", shopName, weekKey),
		"", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(pdfNameColWidth, pdfRowHeight, "Employe", "1", 0, "L", true, 0, "")
	for _, h := range []string{"Jour", "Entree", "Pause", "Retour", "Sortie", "Heures"} {
		pdf.CellFormat(pdfColWidth, pdfRowHeight, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, recap := range recaps {
		for _, day := range recap.Days {
			pdf.CellFormat(pdfNameColWidth, pdfRowHeight, recap.EmployeeName, "1", 0, "L", false, 0, "")
			cells := []string{
				day.DayKey,
				day.Hours.Entry,
				day.Hours.Pause,
				day.Hours.Return,
				day.Hours.Exit,
				fmt.Sprintf("%.2f", day.Hours.Hours),
			}
			for _, c := range cells {
				pdf.CellFormat(pdfColWidth, pdfRowHeight, c, "1", 0, "C", false, 0, "")
			}
			pdf.Ln(-1)
		}

		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(pdfNameColWidth+5*pdfColWidth, pdfRowHeight, "Total", "1", 0, "R", false, 0, "")
		pdf.CellFormat(pdfColWidth, pdfRowHeight, fmt.Sprintf("%.2f", recap.TotalHours), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
	}

	if err := pdf.Output(out); err != nil {
		return fmt.Errorf("render pdf for %s: %w", shopName, err)
	}
	metrics.IncExport("pdf")
	return nil
}
