package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yukikurage/pto-approval-api/internal/utils"
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramDispatcher posts a one-line digest of every notification to a
// single HR chat
type TelegramDispatcher struct {
	bot    messageSender
	chatID int64
}

// NewTelegramDispatcher connects to the bot API
func NewTelegramDispatcher(token string, chatID int64) (*TelegramDispatcher, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	return &TelegramDispatcher{bot: bot, chatID: chatID}, nil
}

// Send implements Dispatcher
func (d *TelegramDispatcher) Send(_ context.Context, n Notification) error {
	msg := tgbotapi.NewMessage(d.chatID, Digest(n))
	if _, err := d.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to post telegram message: %w", err)
	}
	return nil
}

// Digest renders the short chat form of a notification
func Digest(n Notification) string {
	return fmt.Sprintf("[%s] %s <%s>: %s to %s",
		n.Status,
		n.UserName,
		n.To,
		utils.FormatDate(n.StartDate),
		utils.FormatDate(n.EndDate),
	)
}
