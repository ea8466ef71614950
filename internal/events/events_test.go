package events

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusPublish(t *testing.T) {
	bus := NewBus()

	var seen []string
	bus.Subscribe(TypeWeekValidated, func(e Event) error {
		seen = append(seen, e.ShopID)
		return nil
	})
	bus.Subscribe(TypeWeekValidated, func(e Event) error {
		seen = append(seen, e.WeekKey)
		return nil
	})
	bus.Subscribe(TypeImportCompleted, func(Event) error {
		t.Fatal("wrong type delivered")
		return nil
	})

	bus.Publish(Event{Type: TypeWeekValidated, ShopID: "centre", WeekKey: "2026-08-31"})
	assert.Equal(t, []string{"centre", "2026-08-31"}, seen)
}

func TestBusHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := NewBus()

	called := false
	bus.Subscribe(TypePlanningSaved, func(Event) error { return errors.New("boom") })
	bus.Subscribe(TypePlanningSaved, func(Event) error {
		called = true
		return nil
	})

	bus.Publish(Event{Type: TypePlanningSaved})
	assert.True(t, called)
}

func TestBusStampsCreatedAt(t *testing.T) {
	bus := NewBus()

	bus.Subscribe(TypeEmployeeUnlocked, func(e Event) error {
		assert.False(t, e.CreatedAt.IsZero())
		return nil
	})
	bus.Publish(Event{Type: TypeEmployeeUnlocked})
}

func TestBusNoSubscribers(t *testing.T) {
	bus := NewBus()
	assert.NotPanics(t, func() {
		bus.Publish(Event{Type: "unknown"})
	})
}
