package notifier

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramDispatcher delivers messages through the Telegram Bot API.
type TelegramDispatcher struct {
	bot *tgbotapi.BotAPI
}

// NewTelegramDispatcher authenticates the bot token.
func NewTelegramDispatcher(token string) (*TelegramDispatcher, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramDispatcher{bot: bot}, nil
}

// Compile-time interface check.
var _ Dispatcher = (*TelegramDispatcher)(nil)

// SendMessage sends HTML text to a chat. Link previews are disabled:
// messages carry several links and previews would bury the text.
func (d *TelegramDispatcher) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := d.bot.Send(msg); err != nil {
		return fmt.Errorf("send to chat %d: %w", chatID, err)
	}
	return nil
}

// ForwardMessage forwards a message between chats.
func (d *TelegramDispatcher) ForwardMessage(toChatID, fromChatID int64, messageID int) error {
	fwd := tgbotapi.NewForward(toChatID, fromChatID, messageID)
	if _, err := d.bot.Send(fwd); err != nil {
		return fmt.Errorf("forward %d to chat %d: %w", messageID, toChatID, err)
	}
	return nil
}

// LogDispatcher writes messages to the logger instead of a chat
// service. Used when no bot token is configured.
type LogDispatcher struct {
	logger *log.Logger
}

// NewLogDispatcher creates a LogDispatcher.
func NewLogDispatcher(logger *log.Logger) *LogDispatcher {
	if logger == nil {
		logger = log.Default()
	}
	return &LogDispatcher{logger: logger}
}

// Compile-time interface check.
var _ Dispatcher = (*LogDispatcher)(nil)

// SendMessage logs the message.
func (d *LogDispatcher) SendMessage(chatID int64, text string) error {
	d.logger.Printf("notification for chat %d:\n%s", chatID, text)
	return nil
}

// ForwardMessage logs the forward.
func (d *LogDispatcher) ForwardMessage(toChatID, fromChatID int64, messageID int) error {
	d.logger.Printf("forward message %d from chat %d to chat %d", messageID, fromChatID, toChatID)
	return nil
}
