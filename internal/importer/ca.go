package importer

import (
	"context"
	"io"

	"planhebdo/internal/metrics"
	"planhebdo/internal/models"
)

// CA-only sheet layout: column A holds the date, column J the daily CA.
// Column order is trusted; headers are not inspected.
const (
	caOnlyColDate = 0
	caOnlyColCA   = 9
)

// ImportCAOnly imports the minimal CA export for one shop.
func (imp *Importer) ImportCAOnly(ctx context.Context, shopID string, r io.Reader) (*Result, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		return fileError(err.Error()), nil
	}
	if len(rows) < 2 {
		return fileError("sheet has no data rows"), nil
	}

	res := &Result{BatchID: imp.newBatch()}
	for i, row := range rows[1:] {
		rowIdx := i + 1

		date, err := ParseCellDate(cell(row, caOnlyColDate))
		if err != nil {
			imp.skip(res, rowIdx, err.Error())
			continue
		}
		ca, err := ConvertToNumber(cell(row, caOnlyColCA))
		if err != nil {
			imp.skip(res, rowIdx, "CA: "+err.Error())
			continue
		}

		day := &models.RevenueDay{
			ShopID:   shopID,
			Date:     date,
			CA:       ca,
			Payments: map[string]models.PaymentPair{},
			BatchID:  res.BatchID,
		}
		if err := imp.store.UpsertRevenueDay(ctx, day); err != nil {
			imp.skip(res, rowIdx, "persist: "+err.Error())
			continue
		}
		imp.touch(res, shopID, date)
		res.Imported++
		metrics.IncImportRow("imported")
	}

	imp.finish(ctx, res, shopID, "ca_only")
	return res, nil
}
