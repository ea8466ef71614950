package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planhebdo/internal/events"
	"planhebdo/internal/importer"
	"planhebdo/internal/models"
)

// fakeSource serves canned revenue rows and counts queries.
type fakeSource struct {
	days  []models.RevenueDay
	calls int
	err   error
}

func (f *fakeSource) ListRevenueDays(_ context.Context, shopID string, from, to time.Time) ([]models.RevenueDay, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	var out []models.RevenueDay
	for _, d := range f.days {
		if d.ShopID == shopID && !d.Date.Before(from) && !d.Date.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func augustDays() []models.RevenueDay {
	return []models.RevenueDay{
		{
			ShopID: "centre",
			Date:   time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC),
			CA:     1000, CAHT: 833.33, TVATotale: 166.67, Encaissement: 990,
			Payments: map[string]models.PaymentPair{
				"cb":      {Credit: 800},
				"especes": {Credit: 220, Debit: 20},
			},
		},
		{
			ShopID: "centre",
			Date:   time.Date(2026, 8, 4, 0, 0, 0, 0, time.UTC),
			CA:     500, CAHT: 416.67, TVATotale: 83.33, Encaissement: 500,
			Payments: map[string]models.PaymentPair{
				"cb":    {Credit: 450},
				"avoir": {Debit: 50},
			},
		},
		{
			ShopID: "centre",
			Date:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			CA:     9999,
		},
	}
}

func TestMonthly(t *testing.T) {
	source := &fakeSource{days: augustDays()}
	svc := NewService(source, nil, zerolog.Nop())

	summary, err := svc.Monthly(context.Background(), "centre", 2026, time.August)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Days, "september row is out of range")
	assert.Equal(t, 1500.0, summary.TotalCA)
	assert.InDelta(t, 1250.0, summary.TotalCAHT, 0.01)
	assert.InDelta(t, 250.0, summary.TotalTVA, 0.01)
	assert.Equal(t, 1490.0, summary.TotalEncaissement)
	assert.Equal(t, 750.0, summary.AverageCA)

	// Payments are netted per method across the month.
	assert.Equal(t, 1250.0, summary.Payments["cb"])
	assert.Equal(t, 200.0, summary.Payments["especes"])
	assert.Equal(t, -50.0, summary.Payments["avoir"])
}

func TestMonthlyEmptyMonth(t *testing.T) {
	svc := NewService(&fakeSource{}, nil, zerolog.Nop())

	summary, err := svc.Monthly(context.Background(), "centre", 2026, time.February)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Days)
	assert.Equal(t, 0.0, summary.AverageCA)
	assert.NotNil(t, summary.Payments)
}

func TestMonthlySourceError(t *testing.T) {
	svc := NewService(&fakeSource{err: fmt.Errorf("db gone")}, nil, zerolog.Nop())

	_, err := svc.Monthly(context.Background(), "centre", 2026, time.August)
	assert.Error(t, err)
}

func TestMonthlyCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	require.NotNil(t, cache)

	source := &fakeSource{days: augustDays()}
	svc := NewService(source, cache, zerolog.Nop())
	ctx := context.Background()

	first, err := svc.Monthly(ctx, "centre", 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	// Second call is served from the cache.
	second, err := svc.Monthly(ctx, "centre", 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)
	assert.Equal(t, first, second)

	// Expiry falls back to the source.
	mr.FastForward(2 * time.Minute)
	_, err = svc.Monthly(ctx, "centre", 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestMonthlyCacheInvalidatedByImport(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Hour)

	source := &fakeSource{days: augustDays()}
	svc := NewService(source, cache, zerolog.Nop())
	bus := events.NewBus()
	svc.RegisterHandlers(bus)
	ctx := context.Background()

	_, err := svc.Monthly(ctx, "centre", 2026, time.August)
	require.NoError(t, err)
	_, err = svc.Monthly(ctx, "centre", 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls)

	// A finished import drops only the months it touched.
	bus.Publish(events.Event{
		Type: events.TypeImportCompleted,
		Payload: importer.Result{
			Months: []importer.MonthRef{{ShopID: "centre", Month: "2026-08"}},
		},
	})

	_, err = svc.Monthly(ctx, "centre", 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls, "import invalidates the cached month")

	// Months the import did not touch keep their cache entries.
	_, err = svc.Monthly(ctx, "centre", 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)

	// Unknown payloads are ignored.
	bus.Publish(events.Event{Type: events.TypeImportCompleted, Payload: "junk"})
	_, err = svc.Monthly(ctx, "centre", 2026, time.August)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls)
}

func TestNewCacheNilCases(t *testing.T) {
	assert.Nil(t, NewCache(nil, time.Minute))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	assert.Nil(t, NewCache(client, 0))
	assert.NotNil(t, NewCache(client, time.Second))
}

func TestCacheDegradesOnRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache := NewCache(client, time.Minute)
	mr.Close()

	source := &fakeSource{days: augustDays()}
	svc := NewService(source, cache, zerolog.Nop())

	summary, err := svc.Monthly(context.Background(), "centre", 2026, time.August)
	require.NoError(t, err, "cache errors must not fail the read")
	assert.Equal(t, 2, summary.Days)
}
