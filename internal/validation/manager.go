// Package validation tracks the per-week lock and validation state of
// employees and exposes the validate/unlock operations.
package validation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"planhebdo/internal/events"
	"planhebdo/internal/metrics"
	"planhebdo/internal/models"
	"planhebdo/internal/store"
)

// Manager performs read-modify-write operations on the validation state
// of a (shop, week). Every operation persists synchronously.
type Manager struct {
	store  *store.Store
	bus    *events.Bus
	logger zerolog.Logger
}

// NewManager creates a validation manager. The bus may be nil.
func NewManager(st *store.Store, bus *events.Bus, logger zerolog.Logger) *Manager {
	return &Manager{store: st, bus: bus, logger: logger}
}

// Load returns the validation state, defaulting to an empty state.
func (m *Manager) Load(ctx context.Context, shopID, weekKey string) (models.ValidationState, error) {
	return m.store.LoadValidation(ctx, shopID, weekKey)
}

// ValidateWeek locks every selected employee, marks them validated and sets
// IsWeekValidated. Locked employees stay a subset of the selection made at
// validation time plus any earlier explicit locks.
func (m *Manager) ValidateWeek(ctx context.Context, shopID, weekKey string, selected []string) (models.ValidationState, error) {
	state, err := m.store.LoadValidation(ctx, shopID, weekKey)
	if err != nil {
		return state, err
	}

	state.IsWeekValidated = true
	for _, emp := range selected {
		state = state.WithLocked(emp)
		if !state.IsValidated(emp) {
			state.ValidatedEmployees = append(state.ValidatedEmployees, emp)
		}
	}

	if err := m.save(ctx, shopID, weekKey, state); err != nil {
		return state, err
	}

	metrics.IncWeekValidated()
	if m.bus != nil {
		m.bus.Publish(events.Event{
			Type:    events.TypeWeekValidated,
			ShopID:  shopID,
			WeekKey: weekKey,
			Payload: state,
		})
	}
	m.logger.Info().
		Str("shop", shopID).
		Str("week", weekKey).
		Int("locked", len(state.LockedEmployees)).
		Msg("week validated")
	return state, nil
}

// UnlockEmployee removes one employee from the locked and validated lists.
// Unlock is always explicit; nothing ever unlocks automatically.
func (m *Manager) UnlockEmployee(ctx context.Context, shopID, weekKey, employee string) (models.ValidationState, error) {
	state, err := m.store.LoadValidation(ctx, shopID, weekKey)
	if err != nil {
		return state, err
	}

	state.LockedEmployees = remove(state.LockedEmployees, employee)
	state.ValidatedEmployees = remove(state.ValidatedEmployees, employee)

	if err := m.save(ctx, shopID, weekKey, state); err != nil {
		return state, err
	}

	metrics.IncEmployeeUnlocked()
	if m.bus != nil {
		m.bus.Publish(events.Event{
			Type:    events.TypeEmployeeUnlocked,
			ShopID:  shopID,
			WeekKey: weekKey,
			Payload: employee,
		})
	}
	return state, nil
}

// UnlockAll resets the entire validation state: empty lists and
// IsWeekValidated false, regardless of prior state.
func (m *Manager) UnlockAll(ctx context.Context, shopID, weekKey string) (models.ValidationState, error) {
	state := models.NewValidationState()
	if err := m.save(ctx, shopID, weekKey, state); err != nil {
		return state, err
	}
	m.logger.Info().Str("shop", shopID).Str("week", weekKey).Msg("all employees unlocked")
	return state, nil
}

// RevalidateEmployee re-locks a previously unlocked employee and marks them
// validated again.
func (m *Manager) RevalidateEmployee(ctx context.Context, shopID, weekKey, employee string) (models.ValidationState, error) {
	state, err := m.store.LoadValidation(ctx, shopID, weekKey)
	if err != nil {
		return state, err
	}

	state = state.WithLocked(employee)
	if !state.IsValidated(employee) {
		state.ValidatedEmployees = append(state.ValidatedEmployees, employee)
	}

	if err := m.save(ctx, shopID, weekKey, state); err != nil {
		return state, err
	}
	return state, nil
}

// WeekLocks binds a loaded state to the planning.LockChecker shape.
type WeekLocks struct {
	State models.ValidationState
}

// IsLocked reports whether the employee is locked.
func (l WeekLocks) IsLocked(employee string) bool {
	return l.State.IsLocked(employee)
}

func (m *Manager) save(ctx context.Context, shopID, weekKey string, state models.ValidationState) error {
	if err := m.store.SaveValidation(ctx, shopID, weekKey, state); err != nil {
		return fmt.Errorf("save validation %s/%s: %w", shopID, weekKey, err)
	}
	return nil
}

func remove(list []string, s string) []string {
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
