package messenger

import (
	"context"

	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

var _ adapter.Messenger = (*NoopMessenger)(nil)

// NoopMessenger implements adapter.Messenger for local/dev runs.
// It logs messages instead of sending them.
type NoopMessenger struct {
	log *zerolog.Logger
}

func NewNoopMessenger(logger *zerolog.Logger) *NoopMessenger {
	return &NoopMessenger{log: logger}
}

func (n *NoopMessenger) Platform() string { return "noop" }

func (n *NoopMessenger) SendMessage(ctx context.Context, recipientID, text string) error {
	msg, err := model.NewOutboundMessage(recipientID, text)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.Info().Str("recipient_id", msg.RecipientID).Str("text", msg.Text).Msg("[noop-messenger] message")
	return nil
}
