package planning

import (
	"errors"
	"fmt"

	"planhebdo/internal/metrics"
	"planhebdo/internal/models"
)

var (
	// ErrEmployeeLocked is returned when the employee is locked for the
	// week and the call did not force the change.
	ErrEmployeeLocked = errors.New("employee is locked for this week")

	// ErrSlotValidated is returned when the target day was individually
	// validated; callers surface this as a confirmation and may retry with
	// force.
	ErrSlotValidated = errors.New("slot was validated; confirmation required")

	// ErrSlotOutOfRange is returned for slot indices outside the grid.
	ErrSlotOutOfRange = errors.New("slot index out of range")
)

// LockChecker reports whether an employee is locked for the week.
type LockChecker interface {
	IsLocked(employee string) bool
}

// Guard carries the lock state consulted by toggle operations.
// ValidatedSlots is keyed "employee_day" (models.SlotKey).
type Guard struct {
	Locks          LockChecker
	ValidatedSlots map[string]bool
}

func (g Guard) locked(employee string) bool {
	return g.Locks != nil && g.Locks.IsLocked(employee)
}

func (g Guard) validated(employee, dayKey string) bool {
	return g.ValidatedSlots[models.SlotKey(employee, dayKey)]
}

// ToggleSlot flips one slot for (employee, dayKey). Guards:
//   - a locked employee is rejected unless force is set;
//   - a validated day is rejected with ErrSlotValidated unless force is set.
//
// On rejection the planning is left unchanged. Unforced toggles record the
// day index in LastModifiedDay.
func (w *Week) ToggleSlot(employee, dayKey string, slot int, guard Guard, force bool) error {
	return w.setSlots(employee, dayKey, slot, slot, nil, guard, force)
}

// PaintSlots applies one drag value across the slot range [from, to] under
// the same guards as ToggleSlot.
func (w *Week) PaintSlots(employee, dayKey string, from, to int, value bool, guard Guard, force bool) error {
	return w.setSlots(employee, dayKey, from, to, &value, guard, force)
}

// setSlots toggles when dragValue is nil, otherwise paints dragValue.
func (w *Week) setSlots(employee, dayKey string, from, to int, dragValue *bool, guard Guard, force bool) error {
	if !force && guard.locked(employee) {
		metrics.IncSlotToggled("rejected_locked")
		return fmt.Errorf("%w: %s", ErrEmployeeLocked, employee)
	}
	if !force && guard.validated(employee, dayKey) {
		metrics.IncSlotToggled("rejected_validated")
		return fmt.Errorf("%w: %s", ErrSlotValidated, models.SlotKey(employee, dayKey))
	}

	dayIndex := models.DayIndex(w.WeekKey, dayKey)
	if dayIndex < 0 {
		return fmt.Errorf("day %q outside week %q", dayKey, w.WeekKey)
	}

	slotCount := len(w.grid.TimeSlots)
	if from < 0 || to >= slotCount || from > to {
		return fmt.Errorf("%w: [%d, %d] with %d slots", ErrSlotOutOfRange, from, to, slotCount)
	}

	slots := w.Planning.EnsureDay(employee, dayKey, slotCount)
	for i := from; i <= to; i++ {
		if dragValue != nil {
			slots[i] = *dragValue
		} else {
			slots[i] = !slots[i]
		}
	}

	if !force {
		w.LastModifiedDay = dayIndex
	}
	metrics.IncSlotToggled("applied")
	return nil
}
