package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// CommandHandler maps one slash command (e.g. "/status") to its reply text.
// An empty reply sends nothing.
type CommandHandler func(command string) string

// ListenForCommands starts a goroutine that long-polls for bot commands and
// answers them through the handler. Returns immediately; the goroutine
// stops when ctx is cancelled. No-op on a disabled notifier.
func (t *TelegramNotifier) ListenForCommands(ctx context.Context, handler CommandHandler) {
	if !t.Enabled() {
		return
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := t.bot.GetUpdatesChan(u)

	go func() {
		for {
			select {
			case <-ctx.Done():
				t.bot.StopReceivingUpdates()
				log.Info().Msg("Telegram command polling stopped")
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.Message == nil || !update.Message.IsCommand() {
					continue
				}
				cmd := "/" + update.Message.Command()
				log.Info().Str("command", cmd).Msg("Received command")
				if reply := handler(cmd); reply != "" {
					if err := t.Send(reply); err != nil {
						log.Error().Err(err).Str("command", cmd).
							Msg("Failed to send command reply")
					}
				}
			}
		}
	}()
}
