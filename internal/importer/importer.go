// Package importer parses point-of-sale spreadsheet exports into revenue
// rows. Three importer variants exist, matching the three export shapes the
// POS produces: a minimal CA-only sheet, a fixed-order "complete" sheet and
// a header-named "complete data" ticket dump.
package importer

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"planhebdo/internal/events"
	"planhebdo/internal/metrics"
	"planhebdo/internal/models"
)

// Result reports the outcome of one import run. A malformed row is skipped
// and counted, never failing the whole import; Success is false only for
// file-level problems (unreadable file, missing required headers).
type Result struct {
	Success  bool       `json:"success"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Error    string     `json:"error,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
	BatchID  string     `json:"batch_id,omitempty"`
	Months   []MonthRef `json:"months,omitempty"`
}

// MonthRef identifies one shop month whose revenue an import changed.
// Cached aggregates keyed on it are stale once the run finishes.
type MonthRef struct {
	ShopID string `json:"shop_id"`
	Month  string `json:"month"`
}

// RevenueStore is the persistence surface the importers write through.
type RevenueStore interface {
	UpsertRevenueDay(ctx context.Context, day *models.RevenueDay) error
}

// Importer runs spreadsheet imports against a revenue store.
type Importer struct {
	store  RevenueStore
	bus    *events.Bus
	logger zerolog.Logger
}

// New creates an importer. The bus may be nil.
func New(store RevenueStore, bus *events.Bus, logger zerolog.Logger) *Importer {
	return &Importer{store: store, bus: bus, logger: logger}
}

// readFirstSheet opens the workbook and returns the rows of its first
// sheet. Row 0 is expected to hold headers.
func readFirstSheet(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func (imp *Importer) newBatch() string {
	return uuid.New().String()
}

// touch records the month a persisted day falls in, once per run.
func (imp *Importer) touch(res *Result, shopID string, date time.Time) {
	ref := MonthRef{ShopID: shopID, Month: date.Format("2006-01")}
	for _, m := range res.Months {
		if m == ref {
			return
		}
	}
	res.Months = append(res.Months, ref)
}

func (imp *Importer) skip(res *Result, rowIdx int, reason string) {
	res.Skipped++
	res.Errors = append(res.Errors, fmt.Sprintf("row %d: %s", rowIdx+1, reason))
	metrics.IncImportRow("skipped")
}

func (imp *Importer) finish(ctx context.Context, res *Result, shopID, variant string) {
	res.Success = true
	imp.logger.Info().
		Str("variant", variant).
		Str("shop", shopID).
		Str("batch", res.BatchID).
		Int("imported", res.Imported).
		Int("skipped", res.Skipped).
		Msg("import completed")
	if imp.bus != nil {
		imp.bus.Publish(events.Event{
			Type:    events.TypeImportCompleted,
			ShopID:  shopID,
			Payload: *res,
		})
	}
}

func fileError(msg string) *Result {
	return &Result{Success: false, Error: msg}
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
