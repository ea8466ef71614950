package planning

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"planhebdo/internal/models"
)

func TestAdvanceDay(t *testing.T) {
	selected := []string{"marie", "julien"}

	tests := []struct {
		name            string
		fromDay         int
		toDay           int
		lastModifiedDay int
		expectLocked    bool
	}{
		{"forward past modified day locks", 0, 1, 0, true},
		{"forward jump past modified day locks", 0, 4, 2, true},
		{"backward never locks", 3, 1, 2, false},
		{"same day never locks", 2, 2, 1, false},
		{"untouched week never locks", 0, 3, -1, false},
		{"modification ahead of target does not lock", 0, 2, 4, false},
		{"modification on target day does not lock", 1, 3, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := models.NewValidationState()
			out := AdvanceDay(state, selected, tt.fromDay, tt.toDay, tt.lastModifiedDay)

			if tt.expectLocked {
				assert.True(t, out.IsLocked("marie"))
				assert.True(t, out.IsLocked("julien"))
			} else {
				assert.Empty(t, out.LockedEmployees)
			}
			assert.Empty(t, state.LockedEmployees, "input state is never mutated")
		})
	}
}

func TestAdvanceDayKeepsExistingLocks(t *testing.T) {
	state := models.NewValidationState().WithLocked("karim")

	out := AdvanceDay(state, []string{"marie"}, 0, 2, 1)
	assert.True(t, out.IsLocked("karim"))
	assert.True(t, out.IsLocked("marie"))

	// A no-op transition returns the state as-is.
	same := AdvanceDay(state, []string{"marie"}, 2, 1, 1)
	assert.Equal(t, state, same)
}
