// Package planning manages weekly shift grids: loading and saving the
// per-week planning document, slot toggling with lock enforcement, and the
// day-advance lock transition.
package planning

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"planhebdo/internal/events"
	"planhebdo/internal/models"
	"planhebdo/internal/store"
	"planhebdo/internal/timeslots"
)

// Week is the in-memory planning state of one (shop, week).
type Week struct {
	ShopID            string          `json:"shop_id"`
	WeekKey           string          `json:"week_key"`
	Planning          models.Planning `json:"planning"`
	SelectedEmployees []string        `json:"selected_employees"`

	// LastModifiedDay is the 0-based day index of the last unforced toggle,
	// -1 when the week has not been touched.
	LastModifiedDay int `json:"last_modified_day"`

	grid timeslots.GridConfig
}

// Grid returns the grid configuration the week was loaded with.
func (w *Week) Grid() timeslots.GridConfig {
	return w.grid
}

// Manager loads, normalizes and saves weekly planning state.
type Manager struct {
	store  *store.Store
	bus    *events.Bus
	logger zerolog.Logger
}

// NewManager creates a planning manager. The bus may be nil.
func NewManager(st *store.Store, bus *events.Bus, logger zerolog.Logger) *Manager {
	return &Manager{store: st, bus: bus, logger: logger}
}

// LoadWeek returns the normalized {planning, selectedEmployees} tuple for
// (shop, week), defaulting to empty structures when nothing was saved.
// Every selected employee gets a slot array for every day of the week.
func (m *Manager) LoadWeek(ctx context.Context, shopID, weekKey string, grid timeslots.GridConfig) (*Week, error) {
	if _, err := models.ParseWeekKey(weekKey); err != nil {
		return nil, err
	}

	planning, err := m.store.LoadPlanning(ctx, shopID, weekKey)
	if err != nil {
		return nil, fmt.Errorf("load planning %s/%s: %w", shopID, weekKey, err)
	}
	selected, err := m.store.LoadSelectedEmployees(ctx, shopID, weekKey)
	if err != nil {
		return nil, fmt.Errorf("load selection %s/%s: %w", shopID, weekKey, err)
	}

	w := &Week{
		ShopID:            shopID,
		WeekKey:           weekKey,
		Planning:          planning,
		SelectedEmployees: selected,
		LastModifiedDay:   -1,
		grid:              grid,
	}
	w.normalize()
	return w, nil
}

// SaveWeek persists the week's planning and selection. Persistence is on
// demand only; toggles never write through on their own.
func (m *Manager) SaveWeek(ctx context.Context, w *Week) error {
	if err := m.store.SavePlanning(ctx, w.ShopID, w.WeekKey, w.Planning); err != nil {
		return err
	}
	if err := m.store.SaveSelectedEmployees(ctx, w.ShopID, w.WeekKey, w.SelectedEmployees); err != nil {
		return err
	}
	if m.bus != nil {
		m.bus.Publish(events.Event{
			Type:    events.TypePlanningSaved,
			ShopID:  w.ShopID,
			WeekKey: w.WeekKey,
		})
	}
	m.logger.Debug().
		Str("shop", w.ShopID).
		Str("week", w.WeekKey).
		Int("employees", len(w.Planning)).
		Msg("planning saved")
	return nil
}

// CopyWeek overwrites the destination week wholesale with the source
// week's planning and selection.
func (m *Manager) CopyWeek(ctx context.Context, shopID, fromWeek, toWeek string, grid timeslots.GridConfig) error {
	src, err := m.LoadWeek(ctx, shopID, fromWeek, grid)
	if err != nil {
		return err
	}
	fromDays, err := models.DayKeys(fromWeek)
	if err != nil {
		return err
	}
	toDays, err := models.DayKeys(toWeek)
	if err != nil {
		return err
	}

	copied := models.Planning{}
	for emp, days := range src.Planning {
		copied[emp] = make(map[string][]bool, len(toDays))
		for i, fromDay := range fromDays {
			slots := days[fromDay]
			dst := make([]bool, len(slots))
			copy(dst, slots)
			copied[emp][toDays[i]] = dst
		}
	}

	dest := &Week{
		ShopID:            shopID,
		WeekKey:           toWeek,
		Planning:          copied,
		SelectedEmployees: append([]string{}, src.SelectedEmployees...),
		LastModifiedDay:   -1,
		grid:              grid,
	}
	return m.SaveWeek(ctx, dest)
}

// ResetWeek overwrites the week with an empty planning, keeping the
// employee selection.
func (m *Manager) ResetWeek(ctx context.Context, shopID, weekKey string, grid timeslots.GridConfig) error {
	w, err := m.LoadWeek(ctx, shopID, weekKey, grid)
	if err != nil {
		return err
	}
	w.Planning = models.Planning{}
	w.normalize()
	return m.SaveWeek(ctx, w)
}

// normalize makes sure each selected employee has a full set of day arrays
// of the configured length.
func (w *Week) normalize() {
	dayKeys, err := models.DayKeys(w.WeekKey)
	if err != nil {
		return
	}
	slotCount := len(w.grid.TimeSlots)
	for _, emp := range w.SelectedEmployees {
		for _, day := range dayKeys {
			w.Planning.EnsureDay(emp, day, slotCount)
		}
	}
	// Legacy arrays of the wrong length are normalized too.
	for emp, days := range w.Planning {
		for day := range days {
			w.Planning.EnsureDay(emp, day, slotCount)
		}
	}
}
