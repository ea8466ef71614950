package planning

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planhebdo/internal/events"
	"planhebdo/internal/store"
	"planhebdo/internal/timeslots"
)

func newTestManager(t *testing.T) (*Manager, *events.Bus) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "planning.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	bus := events.NewBus()
	return NewManager(st, bus, zerolog.Nop()), bus
}

func TestLoadWeekDefaultsAndNormalization(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	grid := timeslots.DefaultGridConfig()

	w, err := m.LoadWeek(ctx, "centre", "2026-08-31", grid)
	require.NoError(t, err)
	assert.Empty(t, w.Planning)
	assert.Empty(t, w.SelectedEmployees)
	assert.Equal(t, -1, w.LastModifiedDay)

	_, err = m.LoadWeek(ctx, "centre", "2026-09-01", grid)
	assert.Error(t, err, "week key must be a Monday")
}

func TestSaveAndReloadWeek(t *testing.T) {
	m, bus := newTestManager(t)
	ctx := context.Background()
	grid := timeslots.DefaultGridConfig()

	saved := 0
	bus.Subscribe(events.TypePlanningSaved, func(events.Event) error {
		saved++
		return nil
	})

	w, err := m.LoadWeek(ctx, "centre", "2026-08-31", grid)
	require.NoError(t, err)
	w.SelectedEmployees = []string{"marie"}
	w.normalize()
	require.NoError(t, w.ToggleSlot("marie", "2026-08-31", 2, Guard{}, false))
	require.NoError(t, m.SaveWeek(ctx, w))
	assert.Equal(t, 1, saved)

	reloaded, err := m.LoadWeek(ctx, "centre", "2026-08-31", grid)
	require.NoError(t, err)
	assert.Equal(t, []string{"marie"}, reloaded.SelectedEmployees)
	assert.True(t, reloaded.Planning["marie"]["2026-08-31"][2])
	// Every selected employee gets all seven day arrays on load.
	assert.Len(t, reloaded.Planning["marie"], 7)
	for _, slots := range reloaded.Planning["marie"] {
		assert.Len(t, slots, len(grid.TimeSlots))
	}
}

func TestCopyWeekMapsDayPositions(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	grid := timeslots.DefaultGridConfig()

	src, err := m.LoadWeek(ctx, "centre", "2026-08-31", grid)
	require.NoError(t, err)
	src.SelectedEmployees = []string{"marie"}
	src.normalize()
	require.NoError(t, src.ToggleSlot("marie", "2026-09-02", 5, Guard{}, false)) // wednesday
	require.NoError(t, m.SaveWeek(ctx, src))

	require.NoError(t, m.CopyWeek(ctx, "centre", "2026-08-31", "2026-09-07", grid))

	dst, err := m.LoadWeek(ctx, "centre", "2026-09-07", grid)
	require.NoError(t, err)
	assert.Equal(t, []string{"marie"}, dst.SelectedEmployees)
	// Wednesday maps to wednesday of the target week.
	assert.True(t, dst.Planning["marie"]["2026-09-09"][5])
	assert.False(t, dst.Planning["marie"]["2026-09-07"][5])

	// Source week is untouched.
	src, err = m.LoadWeek(ctx, "centre", "2026-08-31", grid)
	require.NoError(t, err)
	assert.True(t, src.Planning["marie"]["2026-09-02"][5])
}

func TestResetWeekKeepsSelection(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()
	grid := timeslots.DefaultGridConfig()

	w, err := m.LoadWeek(ctx, "centre", "2026-08-31", grid)
	require.NoError(t, err)
	w.SelectedEmployees = []string{"marie", "julien"}
	w.normalize()
	require.NoError(t, w.ToggleSlot("marie", "2026-08-31", 0, Guard{}, false))
	require.NoError(t, m.SaveWeek(ctx, w))

	require.NoError(t, m.ResetWeek(ctx, "centre", "2026-08-31", grid))

	reloaded, err := m.LoadWeek(ctx, "centre", "2026-08-31", grid)
	require.NoError(t, err)
	assert.Equal(t, []string{"marie", "julien"}, reloaded.SelectedEmployees)
	for _, days := range reloaded.Planning {
		for _, slots := range days {
			for _, set := range slots {
				assert.False(t, set)
			}
		}
	}
}
