// Package notify pushes planning events to managers over Telegram.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"planhebdo/internal/events"
	"planhebdo/internal/importer"
	"planhebdo/internal/models"
)

// MessageSender is the Telegram surface the notifier depends on.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends rate-limited notifications to the configured manager
// chats, retrying transient failures on a fixed backoff schedule.
type Notifier struct {
	sender      MessageSender
	managers    []int64
	limiter     *rate.Limiter
	retryDelays []time.Duration
	logger      zerolog.Logger
}

// defaultRetryDelays is the backoff schedule for failed sends.
var defaultRetryDelays = []time.Duration{
	1 * time.Second,
	5 * time.Second,
	30 * time.Second,
}

// New creates a notifier from a bot token. Returns nil (disabled) when the
// token is empty or no manager chats are configured.
func New(token string, managers []int64, debug bool, logger zerolog.Logger) (*Notifier, error) {
	if token == "" || len(managers) == 0 {
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = debug
	return NewWithSender(bot, managers, logger), nil
}

// NewWithSender creates a notifier over an explicit sender.
func NewWithSender(sender MessageSender, managers []int64, logger zerolog.Logger) *Notifier {
	return &Notifier{
		sender:   sender,
		managers: managers,
		// Telegram allows ~30 msg/s overall; stay well below.
		limiter:     rate.NewLimiter(rate.Limit(20), 30),
		retryDelays: defaultRetryDelays,
		logger:      logger,
	}
}

// RegisterHandlers subscribes the notifier to the event bus.
func (n *Notifier) RegisterHandlers(ctx context.Context, bus *events.Bus) {
	bus.Subscribe(events.TypeWeekValidated, func(e events.Event) error {
		state, _ := e.Payload.(models.ValidationState)
		return n.WeekValidated(ctx, e.ShopID, e.WeekKey, len(state.LockedEmployees))
	})
	bus.Subscribe(events.TypeImportCompleted, func(e events.Event) error {
		res, ok := e.Payload.(importer.Result)
		if !ok {
			return nil
		}
		return n.ImportCompleted(ctx, e.ShopID, &res)
	})
}

// WeekValidated announces a validated week.
func (n *Notifier) WeekValidated(ctx context.Context, shopID, weekKey string, locked int) error {
	text := fmt.Sprintf("✅ Semaine du %s validée pour %s (%d employés verrouillés)",
		weekKey, shopID, locked)
	return n.broadcast(ctx, text)
}

// ImportCompleted announces an import result, including skips.
func (n *Notifier) ImportCompleted(ctx context.Context, shopID string, res *importer.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "📥 Import CA terminé")
	if shopID != "" {
		fmt.Fprintf(&b, " pour %s", shopID)
	}
	fmt.Fprintf(&b, " : %d lignes importées", res.Imported)
	if res.Skipped > 0 {
		fmt.Fprintf(&b, ", %d ignorées", res.Skipped)
	}
	return n.broadcast(ctx, b.String())
}

func (n *Notifier) broadcast(ctx context.Context, text string) error {
	var lastErr error
	for _, chatID := range n.managers {
		if err := n.sendWithRetry(ctx, chatID, text); err != nil {
			n.logger.Error().Err(err).Int64("chat", chatID).Msg("notification failed")
			lastErr = err
		}
	}
	return lastErr
}

func (n *Notifier) sendWithRetry(ctx context.Context, chatID int64, text string) error {
	var lastErr error
	for attempt := 0; attempt <= len(n.retryDelays); attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(n.retryDelays[attempt-1]):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := n.limiter.Wait(ctx); err != nil {
			return err
		}
		if _, err := n.sender.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("send to %d after %d attempts: %w", chatID, len(n.retryDelays)+1, lastErr)
}
