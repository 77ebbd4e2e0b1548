package web

import (
	"context"
	"io"
	"sync"

	"chucky-bot/internal/domain/model"

	"github.com/rs/zerolog"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

type mockBot struct {
	WeatherFunc    func(ctx context.Context, recipientID, city string) (string, error)
	SoundcloudFunc func(ctx context.Context, recipientID, artist string) (string, error)
	StackFunc      func(ctx context.Context, recipientID string, filter model.StackFilter) (string, error)
	TweetFunc      func(ctx context.Context, status string) (string, error)
	MailFunc       func(ctx context.Context, to, subject, body string) (string, error)
}

func (m *mockBot) SendWeatherMessage(ctx context.Context, recipientID, city string) (string, error) {
	return m.WeatherFunc(ctx, recipientID, city)
}

func (m *mockBot) SendSoundcloudMessage(ctx context.Context, recipientID, artist string) (string, error) {
	return m.SoundcloudFunc(ctx, recipientID, artist)
}

func (m *mockBot) SendStackQuestions(ctx context.Context, recipientID string, filter model.StackFilter) (string, error) {
	return m.StackFunc(ctx, recipientID, filter)
}

func (m *mockBot) SendTweet(ctx context.Context, status string) (string, error) {
	return m.TweetFunc(ctx, status)
}

func (m *mockBot) SendMail(ctx context.Context, to, subject, body string) (string, error) {
	return m.MailFunc(ctx, to, subject, body)
}

type handledText struct {
	SenderID string
	Text     string
	TraceID  string
}

type mockCommands struct {
	mu      sync.Mutex
	Handled []handledText
}

func (m *mockCommands) Handle(ctx context.Context, senderID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Handled = append(m.Handled, handledText{SenderID: senderID, Text: text, TraceID: traceIDOf(ctx)})
	return nil
}

// syncPool runs tasks inline so tests can assert right after the request.
type syncPool struct {
	SubmitErr error
}

func (p *syncPool) Submit(task func(ctx context.Context) error) error {
	if p.SubmitErr != nil {
		return p.SubmitErr
	}
	return task(context.Background())
}
