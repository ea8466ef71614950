package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"planhebdo/internal/models"
)

// UpsertRevenueDay inserts or replaces the revenue row for (shop, date).
// Re-imports overwrite the previous row wholesale.
func (s *Store) UpsertRevenueDay(ctx context.Context, day *models.RevenueDay) error {
	if day == nil {
		return fmt.Errorf("revenue day is nil")
	}
	payments, err := json.Marshal(day.Payments)
	if err != nil {
		return fmt.Errorf("marshal payments: %w", err)
	}

	now := time.Now()
	date := truncateToDay(day.Date)
	_, err = s.ExecContext(ctx, `
		INSERT INTO revenue_days (
			shop_id, date, ca, ca_ht, tva_totale, encaissement, bc,
			payments, batch_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(shop_id, date) DO UPDATE SET
			ca = excluded.ca,
			ca_ht = excluded.ca_ht,
			tva_totale = excluded.tva_totale,
			encaissement = excluded.encaissement,
			bc = excluded.bc,
			payments = excluded.payments,
			batch_id = excluded.batch_id,
			updated_at = excluded.updated_at`,
		day.ShopID, date, day.CA, day.CAHT, day.TVATotale, day.Encaissement, day.BC,
		string(payments), day.BatchID, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert revenue day %s/%s: %w", day.ShopID, date.Format(models.DateFormat), err)
	}
	return nil
}

// ListRevenueDays returns revenue rows for a shop within [from, to], ordered
// by date.
func (s *Store) ListRevenueDays(ctx context.Context, shopID string, from, to time.Time) ([]models.RevenueDay, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT shop_id, date, ca, ca_ht, tva_totale, encaissement, bc,
		       payments, batch_id, created_at, updated_at
		FROM revenue_days
		WHERE shop_id = ? AND date >= ? AND date <= ?
		ORDER BY date`,
		shopID, truncateToDay(from), truncateToDay(to),
	)
	if err != nil {
		return nil, fmt.Errorf("list revenue days: %w", err)
	}
	defer rows.Close()

	var days []models.RevenueDay
	for rows.Next() {
		day, err := scanRevenueDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, *day)
	}
	return days, rows.Err()
}

// GetRevenueDay returns the row for (shop, date) or sql.ErrNoRows.
func (s *Store) GetRevenueDay(ctx context.Context, shopID string, date time.Time) (*models.RevenueDay, error) {
	row := s.QueryRowContext(ctx, `
		SELECT shop_id, date, ca, ca_ht, tva_totale, encaissement, bc,
		       payments, batch_id, created_at, updated_at
		FROM revenue_days
		WHERE shop_id = ? AND date = ?`,
		shopID, truncateToDay(date),
	)
	return scanRevenueDay(row)
}

// CountRevenueDays returns the number of revenue rows for a shop.
func (s *Store) CountRevenueDays(ctx context.Context, shopID string) (int, error) {
	var count int
	err := s.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM revenue_days WHERE shop_id = ?", shopID,
	).Scan(&count)
	return count, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRevenueDay(row rowScanner) (*models.RevenueDay, error) {
	var d models.RevenueDay
	var payments string
	var batchID sql.NullString
	if err := row.Scan(
		&d.ShopID, &d.Date, &d.CA, &d.CAHT, &d.TVATotale, &d.Encaissement, &d.BC,
		&payments, &batchID, &d.CreatedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if batchID.Valid {
		d.BatchID = batchID.String
	}
	if err := json.Unmarshal([]byte(payments), &d.Payments); err != nil {
		return nil, fmt.Errorf("decode payments for %s: %w", d.Date.Format(models.DateFormat), err)
	}
	if d.Payments == nil {
		d.Payments = map[string]models.PaymentPair{}
	}
	return &d, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
