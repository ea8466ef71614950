package importer

import (
	"context"
	"fmt"
	"io"
	"strings"

	"planhebdo/internal/metrics"
	"planhebdo/internal/models"
)

// ShopResolver maps a "Boutique" cell value to a shop ID.
type ShopResolver func(name string) (string, bool)

// completeDataColumns locates the named headers of a complete-data export.
type completeDataColumns struct {
	date     int
	boutique int
	ca       int
	caisse   int
	caissier int
	client   int
}

// mapCompleteDataHeaders matches headers by normalized name. Date, Boutique
// and CA are required; the rest is informational.
func mapCompleteDataHeaders(headers []string) (*completeDataColumns, error) {
	cols := &completeDataColumns{date: -1, boutique: -1, ca: -1, caisse: -1, caissier: -1, client: -1}
	for i, h := range headers {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date":
			cols.date = i
		case "boutique":
			cols.boutique = i
		case "ca":
			cols.ca = i
		case "caisse":
			cols.caisse = i
		case "caissier":
			cols.caissier = i
		case "client":
			cols.client = i
		}
	}

	var missing []string
	if cols.date < 0 {
		missing = append(missing, "Date")
	}
	if cols.boutique < 0 {
		missing = append(missing, "Boutique")
	}
	if cols.ca < 0 {
		missing = append(missing, "CA")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required headers: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

// ImportCompleteData imports the ticket-level export. Rows are aggregated
// into one revenue row per (shop, date) before anything is persisted;
// a missing required header aborts with no persisted mutation.
func (imp *Importer) ImportCompleteData(ctx context.Context, r io.Reader, resolve ShopResolver) (*Result, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		return fileError(err.Error()), nil
	}
	if len(rows) < 1 {
		return fileError("sheet is empty"), nil
	}

	cols, err := mapCompleteDataHeaders(rows[0])
	if err != nil {
		return fileError(err.Error()), nil
	}

	res := &Result{BatchID: imp.newBatch()}

	type dayKey struct {
		shopID string
		date   string
	}
	type dayTotal struct {
		day  *models.RevenueDay
		rows int
	}
	totals := make(map[dayKey]*dayTotal)

	for i, row := range rows[1:] {
		rowIdx := i + 1

		date, err := ParseCellDate(cell(row, cols.date))
		if err != nil {
			imp.skip(res, rowIdx, err.Error())
			continue
		}
		boutique := strings.TrimSpace(cell(row, cols.boutique))
		shopID, ok := resolve(boutique)
		if !ok {
			imp.skip(res, rowIdx, fmt.Sprintf("unknown boutique %q", boutique))
			continue
		}
		ca, err := ConvertToNumber(cell(row, cols.ca))
		if err != nil {
			imp.skip(res, rowIdx, "CA: "+err.Error())
			continue
		}

		key := dayKey{shopID: shopID, date: date.Format(models.DateFormat)}
		total, ok := totals[key]
		if !ok {
			total = &dayTotal{day: &models.RevenueDay{
				ShopID:   shopID,
				Date:     date,
				Payments: map[string]models.PaymentPair{},
				BatchID:  res.BatchID,
			}}
			totals[key] = total
		}
		total.day.CA += ca
		total.rows++
	}

	// Rows count as imported only once their aggregated day is persisted.
	for _, total := range totals {
		if err := imp.store.UpsertRevenueDay(ctx, total.day); err != nil {
			res.Skipped += total.rows
			res.Errors = append(res.Errors, fmt.Sprintf(
				"persist %s/%s: %v", total.day.ShopID, total.day.Date.Format(models.DateFormat), err,
			))
			metrics.AddImportRows("skipped", total.rows)
			continue
		}
		imp.touch(res, total.day.ShopID, total.day.Date)
		res.Imported += total.rows
		metrics.AddImportRows("imported", total.rows)
	}

	imp.finish(ctx, res, "", "complete_data")
	return res, nil
}
