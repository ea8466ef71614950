package export

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"planhebdo/internal/metrics"
)

// SheetsExporter pushes week recaps to a Google Sheets spreadsheet, one
// tab per (shop, week).
type SheetsExporter struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheetsExporter builds the Sheets client from a service-account
// credentials file.
func NewSheetsExporter(ctx context.Context, credentialsFile, spreadsheetID string) (*SheetsExporter, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read sheets credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse sheets credentials: %w", err)
	}
	service, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &SheetsExporter{service: service, spreadsheetID: spreadsheetID}, nil
}

// PushWeek writes the recap rows into the tab named after (shop, week),
// creating the tab when missing and replacing its content otherwise.
func (e *SheetsExporter) PushWeek(ctx context.Context, shopName, weekKey string, recaps []EmployeeWeekRecap) error {
	tab := fmt.Sprintf("%s %s", shopName, weekKey)
	if len(tab) > 31 {
		tab = tab[:31]
	}

	if err := e.ensureTab(ctx, tab); err != nil {
		return err
	}

	values := [][]any{toAny(weekHeaderColumns)}
	for _, recap := range recaps {
		for _, day := range recap.Days {
			values = append(values, recapRowValues(recap.EmployeeName, day))
		}
		values = append(values, []any{recap.EmployeeName, "Total", "", "", "", "", recap.TotalHours})
	}

	vr := &sheets.ValueRange{Values: values}
	_, err := e.service.Spreadsheets.Values.
		Update(e.spreadsheetID, fmt.Sprintf("'%s'!A1", tab), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update sheet %q: %w", tab, err)
	}
	metrics.IncExport("sheets")
	return nil
}

func recapRowValues(name string, day DayRecap) []any {
	return []any{
		name,
		day.DayKey,
		day.Hours.Entry,
		day.Hours.Pause,
		day.Hours.Return,
		day.Hours.Exit,
		day.Hours.Hours,
	}
}

func (e *SheetsExporter) ensureTab(ctx context.Context, title string) error {
	spreadsheet, err := e.service.Spreadsheets.Get(e.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return nil
		}
	}

	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := e.service.Spreadsheets.BatchUpdate(e.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %q: %w", title, err)
	}
	return nil
}
