package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"planhebdo/internal/models"
	"planhebdo/internal/timeslots"
)

const testWeek = "2026-08-31"

func newTestWeek(selected ...string) *Week {
	w := &Week{
		ShopID:            "centre",
		WeekKey:           testWeek,
		Planning:          models.Planning{},
		SelectedEmployees: selected,
		LastModifiedDay:   -1,
		grid:              timeslots.DefaultGridConfig(),
	}
	w.normalize()
	return w
}

func TestToggleSlot(t *testing.T) {
	w := newTestWeek("marie")

	err := w.ToggleSlot("marie", testWeek, 3, Guard{}, false)
	assert.NoError(t, err)
	assert.True(t, w.Planning["marie"][testWeek][3])
	assert.Equal(t, 0, w.LastModifiedDay)

	// Toggling again flips back.
	err = w.ToggleSlot("marie", testWeek, 3, Guard{}, false)
	assert.NoError(t, err)
	assert.False(t, w.Planning["marie"][testWeek][3])
}

func TestToggleSlotRejectedWhenLocked(t *testing.T) {
	w := newTestWeek("marie")
	guard := Guard{Locks: models.NewValidationState().WithLocked("marie")}

	err := w.ToggleSlot("marie", testWeek, 0, guard, false)
	assert.ErrorIs(t, err, ErrEmployeeLocked)
	assert.False(t, w.Planning["marie"][testWeek][0], "rejected toggle must not change state")
	assert.Equal(t, -1, w.LastModifiedDay)

	// Force bypasses the lock but does not mark the day modified.
	err = w.ToggleSlot("marie", testWeek, 0, guard, true)
	assert.NoError(t, err)
	assert.True(t, w.Planning["marie"][testWeek][0])
	assert.Equal(t, -1, w.LastModifiedDay)
}

func TestToggleSlotRejectedWhenValidated(t *testing.T) {
	w := newTestWeek("marie")
	guard := Guard{ValidatedSlots: map[string]bool{
		models.SlotKey("marie", testWeek): true,
	}}

	err := w.ToggleSlot("marie", testWeek, 0, guard, false)
	assert.ErrorIs(t, err, ErrSlotValidated)

	// The validation mark covers one (employee, day) pair only.
	err = w.ToggleSlot("marie", "2026-09-01", 0, guard, false)
	assert.NoError(t, err)

	err = w.ToggleSlot("marie", testWeek, 0, guard, true)
	assert.NoError(t, err)
}

func TestToggleSlotBounds(t *testing.T) {
	w := newTestWeek("marie")

	assert.ErrorIs(t, w.ToggleSlot("marie", testWeek, -1, Guard{}, false), ErrSlotOutOfRange)
	assert.ErrorIs(t, w.ToggleSlot("marie", testWeek, 22, Guard{}, false), ErrSlotOutOfRange)

	err := w.ToggleSlot("marie", "2026-09-08", 0, Guard{}, false)
	assert.Error(t, err, "day outside the week is rejected")
}

func TestPaintSlots(t *testing.T) {
	w := newTestWeek("marie")

	err := w.PaintSlots("marie", testWeek, 2, 5, true, Guard{}, false)
	assert.NoError(t, err)
	for i := 2; i <= 5; i++ {
		assert.True(t, w.Planning["marie"][testWeek][i])
	}
	assert.False(t, w.Planning["marie"][testWeek][1])
	assert.False(t, w.Planning["marie"][testWeek][6])

	// Painting false clears the range regardless of current values.
	err = w.PaintSlots("marie", testWeek, 3, 4, false, Guard{}, false)
	assert.NoError(t, err)
	assert.True(t, w.Planning["marie"][testWeek][2])
	assert.False(t, w.Planning["marie"][testWeek][3])
	assert.False(t, w.Planning["marie"][testWeek][4])
	assert.True(t, w.Planning["marie"][testWeek][5])

	assert.ErrorIs(t, w.PaintSlots("marie", testWeek, 5, 2, true, Guard{}, false), ErrSlotOutOfRange)
}

func TestToggleRecordsLastModifiedDay(t *testing.T) {
	w := newTestWeek("marie")

	assert.NoError(t, w.ToggleSlot("marie", "2026-09-03", 0, Guard{}, false))
	assert.Equal(t, 3, w.LastModifiedDay)

	assert.NoError(t, w.ToggleSlot("marie", testWeek, 0, Guard{}, false))
	assert.Equal(t, 0, w.LastModifiedDay)
}
