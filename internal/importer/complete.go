package importer

import (
	"context"
	"fmt"
	"io"

	"planhebdo/internal/metrics"
	"planhebdo/internal/models"
)

// Complete sheet layout: fixed ordinal columns, no header lookup. The first
// six columns are the daily figures, followed by one credit/debit column
// pair per payment method.
const (
	completeColDate         = 0
	completeColCA           = 1
	completeColCAHT         = 2
	completeColTVA          = 3
	completeColEncaissement = 4
	completeColBC           = 5
	completeFirstPayment    = 6
)

// completePaymentMethods lists the payment methods in their column order.
// Each occupies two consecutive columns: credit then debit.
var completePaymentMethods = []string{
	"especes",
	"cb",
	"cheque",
	"virement",
	"amex",
	"ticket_resto",
	"carte_cadeau",
	"avoir",
	"acompte",
	"web",
	"paypal",
	"cb_sans_contact",
	"prelevement",
	"autre",
}

// completeMinColumns is the expected width of a complete export row.
var completeMinColumns = completeFirstPayment + 2*len(completePaymentMethods)

// ImportComplete imports the full daily export for one shop. Credit and
// debit are stored as-is; netting happens when the data is read.
func (imp *Importer) ImportComplete(ctx context.Context, shopID string, r io.Reader) (*Result, error) {
	rows, err := readFirstSheet(r)
	if err != nil {
		return fileError(err.Error()), nil
	}
	if len(rows) < 2 {
		return fileError("sheet has no data rows"), nil
	}
	if len(rows[0]) < completeMinColumns {
		return fileError(fmt.Sprintf(
			"expected at least %d columns, found %d", completeMinColumns, len(rows[0]),
		)), nil
	}

	res := &Result{BatchID: imp.newBatch()}
	for i, row := range rows[1:] {
		rowIdx := i + 1

		date, err := ParseCellDate(cell(row, completeColDate))
		if err != nil {
			imp.skip(res, rowIdx, err.Error())
			continue
		}

		day := &models.RevenueDay{
			ShopID:   shopID,
			Date:     date,
			Payments: make(map[string]models.PaymentPair, len(completePaymentMethods)),
			BatchID:  res.BatchID,
		}

		fields := []struct {
			col  int
			name string
			dst  *float64
		}{
			{completeColCA, "CA", &day.CA},
			{completeColCAHT, "CA HT", &day.CAHT},
			{completeColTVA, "TVA totale", &day.TVATotale},
			{completeColEncaissement, "encaissement", &day.Encaissement},
			{completeColBC, "BC", &day.BC},
		}

		bad := false
		for _, f := range fields {
			v, err := ConvertToNumber(cell(row, f.col))
			if err != nil {
				imp.skip(res, rowIdx, f.name+": "+err.Error())
				bad = true
				break
			}
			*f.dst = v
		}
		if bad {
			continue
		}

		for m, method := range completePaymentMethods {
			credit, errC := ConvertToNumber(cell(row, completeFirstPayment+2*m))
			debit, errD := ConvertToNumber(cell(row, completeFirstPayment+2*m+1))
			if errC != nil || errD != nil {
				// A bad payment cell degrades to zero for that method only.
				continue
			}
			if credit != 0 || debit != 0 {
				day.Payments[method] = models.PaymentPair{Credit: credit, Debit: debit}
			}
		}

		if err := imp.store.UpsertRevenueDay(ctx, day); err != nil {
			imp.skip(res, rowIdx, "persist: "+err.Error())
			continue
		}
		imp.touch(res, shopID, date)
		res.Imported++
		metrics.IncImportRow("imported")
	}

	imp.finish(ctx, res, shopID, "complete")
	return res, nil
}
