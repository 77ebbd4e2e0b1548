package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"chucky-bot/internal/domain"
	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var _ adapter.Messenger = (*Messenger)(nil)

// NewBotAPI connects to the Bot API. endpoint is a format string such as
// tgbotapi.APIEndpoint; empty selects the public endpoint.
func NewBotAPI(token, endpoint string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		return nil, errors.New("telegram token empty")
	}
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	return tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
}

// Messenger sends texts to Telegram chats; the recipient id is the numeric chat id.
type Messenger struct {
	bot *tgbotapi.BotAPI
}

func NewMessenger(bot *tgbotapi.BotAPI) *Messenger {
	return &Messenger{bot: bot}
}

func (m *Messenger) Platform() string { return "telegram" }

func (m *Messenger) SendMessage(ctx context.Context, recipientID, text string) error {
	msg, err := model.NewOutboundMessage(recipientID, text)
	if err != nil {
		return err
	}
	chatID, err := strconv.ParseInt(msg.RecipientID, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: telegram chat id %q", domain.ErrInvalidArgument, msg.RecipientID)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err = m.bot.Send(tgbotapi.NewMessage(chatID, msg.Text))
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return &model.SendError{Platform: m.Platform(), StatusCode: apiErr.Code, Body: apiErr.Message}
	}
	return fmt.Errorf("telegram send: %w", err)
}
