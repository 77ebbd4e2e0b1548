package messenger

import (
	"context"
	"errors"
	"fmt"

	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"

	"github.com/slack-go/slack"
)

var _ adapter.Messenger = (*SlackMessenger)(nil)

// SlackMessenger posts to a channel id (or user id for DMs) with a bot token.
type SlackMessenger struct {
	api *slack.Client
}

// NewSlackMessenger creates the client; apiURL may be empty for the public API.
func NewSlackMessenger(token, apiURL string) (*SlackMessenger, error) {
	if token == "" {
		return nil, errors.New("slack token empty")
	}
	var opts []slack.Option
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &SlackMessenger{api: slack.New(token, opts...)}, nil
}

func (s *SlackMessenger) Platform() string { return "slack" }

func (s *SlackMessenger) SendMessage(ctx context.Context, recipientID, text string) error {
	msg, err := model.NewOutboundMessage(recipientID, text)
	if err != nil {
		return err
	}
	_, _, err = s.api.PostMessageContext(ctx, msg.RecipientID, slack.MsgOptionText(msg.Text, false))
	if err == nil {
		return nil
	}

	var apiErr slack.SlackErrorResponse
	if errors.As(err, &apiErr) {
		return &model.SendError{Platform: s.Platform(), StatusCode: 200, Body: apiErr.Err}
	}
	var statusErr slack.StatusCodeError
	if errors.As(err, &statusErr) {
		return &model.SendError{Platform: s.Platform(), StatusCode: statusErr.Code, Body: statusErr.Status}
	}
	return fmt.Errorf("slack send: %w", err)
}
