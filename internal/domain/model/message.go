package model

import (
	"fmt"
	"strings"

	"chucky-bot/internal/domain"
)

// OutboundMessage is a single text addressed to a messaging-platform
// recipient. It lives for one send and is never stored.
type OutboundMessage struct {
	RecipientID string
	Text        string
}

func NewOutboundMessage(recipientID, text string) (OutboundMessage, error) {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return OutboundMessage{}, fmt.Errorf("%w: empty recipient id", domain.ErrInvalidArgument)
	}
	return OutboundMessage{RecipientID: recipientID, Text: text}, nil
}

// SendError is a non-success answer from the messaging platform. Body is the
// raw response body exactly as received.
type SendError struct {
	Platform   string
	StatusCode int
	Body       string
}

func (e *SendError) Error() string {
	return fmt.Sprintf("%s send failed with status %d: %s", e.Platform, e.StatusCode, e.Body)
}
