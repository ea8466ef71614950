// Package stats aggregates imported revenue rows into monthly summaries
// for the profitability dashboards.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"planhebdo/internal/events"
	"planhebdo/internal/importer"
	"planhebdo/internal/models"
)

// MonthlySummary is the aggregate of one shop's revenue for one month.
// Payment amounts are nets (credit minus debit), computed at read time.
type MonthlySummary struct {
	ShopID            string             `json:"shop_id"`
	Year              int                `json:"year"`
	Month             time.Month         `json:"month"`
	Days              int                `json:"days"`
	TotalCA           float64            `json:"total_ca"`
	TotalCAHT         float64            `json:"total_ca_ht"`
	TotalTVA          float64            `json:"total_tva"`
	TotalEncaissement float64            `json:"total_encaissement"`
	AverageCA         float64            `json:"average_ca"`
	Payments          map[string]float64 `json:"payments"`
}

// RevenueSource lists revenue rows for aggregation.
type RevenueSource interface {
	ListRevenueDays(ctx context.Context, shopID string, from, to time.Time) ([]models.RevenueDay, error)
}

// Service computes monthly revenue summaries, optionally read-through
// cached in Redis.
type Service struct {
	source RevenueSource
	cache  *Cache
	logger zerolog.Logger
}

// NewService creates a stats service. The cache may be nil.
func NewService(source RevenueSource, cache *Cache, logger zerolog.Logger) *Service {
	return &Service{source: source, cache: cache, logger: logger}
}

func monthlyCacheKey(shopID, month string) string {
	return "stats:monthly:" + shopID + ":" + month
}

// RegisterHandlers drops cached summaries for the months a finished import
// touched, so dashboards see fresh revenue before the TTL runs out.
func (s *Service) RegisterHandlers(bus *events.Bus) {
	if s.cache == nil {
		return
	}
	bus.Subscribe(events.TypeImportCompleted, func(event events.Event) error {
		res, ok := event.Payload.(importer.Result)
		if !ok {
			return nil
		}
		for _, ref := range res.Months {
			s.cache.Invalidate(context.Background(), monthlyCacheKey(ref.ShopID, ref.Month))
			s.logger.Debug().
				Str("shop", ref.ShopID).
				Str("month", ref.Month).
				Msg("monthly stats cache invalidated")
		}
		return nil
	})
}

// Monthly returns the summary for (shop, year, month). Sums stay in
// float64; rounding is the renderer's concern.
func (s *Service) Monthly(ctx context.Context, shopID string, year int, month time.Month) (*MonthlySummary, error) {
	cacheKey := monthlyCacheKey(shopID, fmt.Sprintf("%04d-%02d", year, month))
	if s.cache != nil {
		var cached MonthlySummary
		if s.cache.Read(ctx, cacheKey, &cached) {
			return &cached, nil
		}
	}

	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	days, err := s.source.ListRevenueDays(ctx, shopID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list revenue for %s %04d-%02d: %w", shopID, year, month, err)
	}

	summary := &MonthlySummary{
		ShopID:   shopID,
		Year:     year,
		Month:    month,
		Payments: map[string]float64{},
	}
	for _, day := range days {
		summary.Days++
		summary.TotalCA += day.CA
		summary.TotalCAHT += day.CAHT
		summary.TotalTVA += day.TVATotale
		summary.TotalEncaissement += day.Encaissement
		for method, pair := range day.Payments {
			summary.Payments[method] += pair.Net()
		}
	}
	if summary.Days > 0 {
		summary.AverageCA = summary.TotalCA / float64(summary.Days)
	}

	if s.cache != nil {
		s.cache.Write(ctx, cacheKey, summary)
	}
	return summary, nil
}
