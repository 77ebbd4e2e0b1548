package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"
)

var _ adapter.Messenger = (*FacebookMessenger)(nil)

// FacebookMessenger posts texts to the Messenger Send API of a page.
type FacebookMessenger struct {
	endpoint  string
	pageToken string
	client    *http.Client
}

// NewFacebookMessenger matches the Graph API messages endpoint, e.g.
// https://graph.facebook.com/v2.6/me/messages.
func NewFacebookMessenger(endpoint, pageToken string, timeout time.Duration) (*FacebookMessenger, error) {
	if pageToken == "" {
		return nil, errors.New("page token empty")
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid graph url: %w", err)
	}
	return &FacebookMessenger{
		endpoint:  endpoint,
		pageToken: pageToken,
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (f *FacebookMessenger) Platform() string { return "facebook" }

type graphRecipient struct {
	ID string `json:"id"`
}

type graphMessage struct {
	Text string `json:"text"`
}

type graphSendRequest struct {
	Recipient graphRecipient `json:"recipient"`
	Message   graphMessage   `json:"message"`
}

// SendMessage issues one POST per call. Non-2xx answers come back as
// *model.SendError with the body untouched.
func (f *FacebookMessenger) SendMessage(ctx context.Context, recipientID, text string) error {
	msg, err := model.NewOutboundMessage(recipientID, text)
	if err != nil {
		return err
	}
	b, err := json.Marshal(graphSendRequest{
		Recipient: graphRecipient{ID: msg.RecipientID},
		Message:   graphMessage{Text: msg.Text},
	})
	if err != nil {
		return err
	}

	u, err := url.Parse(f.endpoint)
	if err != nil {
		return fmt.Errorf("invalid graph url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", f.pageToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("facebook send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("facebook send: read body: %w", err)
	}
	return &model.SendError{Platform: f.Platform(), StatusCode: resp.StatusCode, Body: string(body)}
}
