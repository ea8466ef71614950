package planning

import "planhebdo/internal/models"

// AdvanceDay is the lock transition applied when the user navigates from
// one day to another within a week.
//
// Moving forward past a day that was modified commits it: every currently
// selected employee is added to the locked list. The function is pure; it
// never unlocks anything (unlock is always an explicit operation) and
// returns the input state unchanged for backward or same-day navigation.
func AdvanceDay(state models.ValidationState, selected []string, fromDay, toDay, lastModifiedDay int) models.ValidationState {
	if toDay <= fromDay {
		return state
	}
	if lastModifiedDay < 0 || lastModifiedDay >= toDay {
		return state
	}
	out := state
	for _, emp := range selected {
		out = out.WithLocked(emp)
	}
	return out
}
