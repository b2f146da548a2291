package notifier

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quantcrew/quantcrew/models"
)

// Telegram sends notifications to one Telegram chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a Telegram notifier from a bot token and target chat.
func NewTelegram(botToken string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chatID: chatID,
		logger: log.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// NotifyDecision sends a formatted trade decision.
func (t *Telegram) NotifyDecision(decision models.TradeDecision) error {
	return t.NotifyText(FormatDecision(decision))
}

// NotifyText sends a plain text message to the configured chat.
func (t *Telegram) NotifyText(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).Msg("failed to send telegram message")
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}
