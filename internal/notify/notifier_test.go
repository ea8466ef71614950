package notify

import (
	"context"
	"fmt"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planhebdo/internal/events"
	"planhebdo/internal/importer"
	"planhebdo/internal/models"
)

// fakeSender records sent messages, optionally failing the first sends.
type fakeSender struct {
	sent      []tgbotapi.MessageConfig
	failFirst int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.failFirst > 0 {
		f.failFirst--
		return tgbotapi.Message{}, fmt.Errorf("telegram unavailable")
	}
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, fmt.Errorf("unexpected chattable %T", c)
	}
	f.sent = append(f.sent, msg)
	return tgbotapi.Message{}, nil
}

func newTestNotifier(sender MessageSender, managers ...int64) *Notifier {
	n := NewWithSender(sender, managers, zerolog.Nop())
	// Keep retries fast in tests.
	n.retryDelays = []time.Duration{time.Millisecond}
	return n
}

func TestNewDisabledWithoutConfig(t *testing.T) {
	n, err := New("", []int64{1}, false, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, n)

	n, err = New("token", nil, false, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, n)
}

func TestWeekValidatedBroadcast(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender, 100, 200)

	require.NoError(t, n.WeekValidated(context.Background(), "centre", "2026-08-31", 3))

	require.Len(t, sender.sent, 2)
	assert.Equal(t, int64(100), sender.sent[0].ChatID)
	assert.Equal(t, int64(200), sender.sent[1].ChatID)
	assert.Contains(t, sender.sent[0].Text, "2026-08-31")
	assert.Contains(t, sender.sent[0].Text, "centre")
	assert.Contains(t, sender.sent[0].Text, "3 employés")
}

func TestImportCompletedMessage(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender, 100)

	res := &importer.Result{Imported: 5, Skipped: 2}
	require.NoError(t, n.ImportCompleted(context.Background(), "centre", res))

	require.Len(t, sender.sent, 1)
	assert.Contains(t, sender.sent[0].Text, "5 lignes importées")
	assert.Contains(t, sender.sent[0].Text, "2 ignorées")
}

func TestSendRetriesTransientFailures(t *testing.T) {
	sender := &fakeSender{failFirst: 1}
	n := newTestNotifier(sender, 100)

	require.NoError(t, n.WeekValidated(context.Background(), "centre", "2026-08-31", 1))
	assert.Len(t, sender.sent, 1)
}

func TestSendGivesUpAfterRetries(t *testing.T) {
	sender := &fakeSender{failFirst: 10}
	n := newTestNotifier(sender, 100)

	err := n.WeekValidated(context.Background(), "centre", "2026-08-31", 1)
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}

func TestRegisterHandlers(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender, 100)
	bus := events.NewBus()
	n.RegisterHandlers(context.Background(), bus)

	state := models.NewValidationState().WithLocked("marie")
	bus.Publish(events.Event{
		Type:    events.TypeWeekValidated,
		ShopID:  "centre",
		WeekKey: "2026-08-31",
		Payload: state,
	})
	bus.Publish(events.Event{
		Type:    events.TypeImportCompleted,
		ShopID:  "centre",
		Payload: importer.Result{Imported: 3},
	})
	// Events without the expected payload are ignored, not fatal.
	bus.Publish(events.Event{Type: events.TypeImportCompleted, Payload: "junk"})

	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[0].Text, "validée")
	assert.Contains(t, sender.sent[1].Text, "Import")
}
