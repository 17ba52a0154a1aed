package notifier

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// TelegramNotifier sends messages via the Telegram Bot API. A nil notifier
// is valid and drops everything, so callers never need an enabled check.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authorizes the bot. An empty token disables alerting
// and returns (nil, nil); the bot still runs, logs, and records.
func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	if botToken == "" {
		log.Warn().Msg("Telegram token not configured, alerts disabled")
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("Telegram bot authorized")
	return &TelegramNotifier{bot: bot, chatID: chatID}, nil
}

// Enabled reports whether messages actually go anywhere.
func (t *TelegramNotifier) Enabled() bool {
	return t != nil && t.bot != nil
}

// Send delivers one HTML-formatted message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	if !t.Enabled() {
		return nil
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// SendWithRetry sends with linear-backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	if !t.Enabled() {
		return nil
	}
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := t.Send(text); err != nil {
			lastErr = err
			delay := time.Duration(i+1) * time.Second
			log.Warn().Err(err).Int("attempt", i+1).Dur("retry_in", delay).
				Msg("Telegram send failed")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}
		return nil
	}
	return fmt.Errorf("telegram: %d attempts failed: %w", maxRetries, lastErr)
}
