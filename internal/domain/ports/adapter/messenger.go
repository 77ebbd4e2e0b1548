// File: internal/domain/ports/adapter/messenger.go
package adapter

import "context"

// Messenger delivers a text to one recipient on a messaging platform.
// A non-success platform answer is returned as *model.SendError carrying the
// raw response body.
type Messenger interface {
	Platform() string
	SendMessage(ctx context.Context, recipientID string, text string) error
}
