package application_test

import (
	"context"
	"io"
	"sync"
	"time"

	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// ---- Mock Messenger ----

type sentMessage struct {
	RecipientID string
	Text        string
}

type mockMessenger struct {
	mu   sync.Mutex
	Sent []sentMessage

	SendMessageFunc func(ctx context.Context, recipientID, text string) error
}

var _ adapter.Messenger = (*mockMessenger)(nil)

func (m *mockMessenger) Platform() string { return "mock" }

func (m *mockMessenger) SendMessage(ctx context.Context, recipientID, text string) error {
	m.mu.Lock()
	m.Sent = append(m.Sent, sentMessage{RecipientID: recipientID, Text: text})
	m.mu.Unlock()
	if m.SendMessageFunc != nil {
		return m.SendMessageFunc(ctx, recipientID, text)
	}
	return nil
}

func (m *mockMessenger) lastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return ""
	}
	return m.Sent[len(m.Sent)-1].Text
}

// ---- Mock providers ----

type mockWeather struct {
	Calls  int
	Report model.WeatherReport
	Err    error
}

func (m *mockWeather) CurrentWeather(ctx context.Context, city string) (model.WeatherReport, error) {
	m.Calls++
	return m.Report, m.Err
}

type mockTwitter struct {
	Calls  int
	Status string
	Result model.Result[model.Tweet]
}

func (m *mockTwitter) PostTweet(ctx context.Context, status string) model.Result[model.Tweet] {
	m.Calls++
	m.Status = status
	return m.Result
}

type mockSoundCloud struct {
	Calls  int
	Result model.Result[model.Artist]
}

func (m *mockSoundCloud) Search(ctx context.Context, artist string) model.Result[model.Artist] {
	m.Calls++
	return m.Result
}

type mockStack struct {
	Calls  int
	Filter model.StackFilter
	Links  []string
	Err    error
}

func (m *mockStack) SearchAnswers(ctx context.Context, filter model.StackFilter) ([]string, error) {
	m.Calls++
	m.Filter = filter
	return m.Links, m.Err
}

type mockMail struct {
	Calls  int
	To     string
	Result model.Result[model.MailReceipt]
}

func (m *mockMail) SendMail(ctx context.Context, to, subject, body string) model.Result[model.MailReceipt] {
	m.Calls++
	m.To = to
	return m.Result
}

// ---- Mock rate limiter ----

type mockLimiter struct {
	mu      sync.Mutex
	Keys    []string
	Allowed bool
	Err     error
}

func (m *mockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Keys = append(m.Keys, key)
	return m.Allowed, m.Err
}

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func fullCredentials() model.Credentials {
	return model.Credentials{
		OpenWeatherToken: "ow-token",
		Twitter: model.TwitterCredentials{
			ConsumerKey:       "ck",
			ConsumerSecret:    "cs",
			AccessTokenKey:    "ak",
			AccessTokenSecret: "as",
		},
		SoundCloudClientID: "sc-id",
		Gmail: model.GmailCredentials{
			ClientID:     "gid",
			ClientSecret: "gsecret",
			RefreshToken: "grefresh",
		},
	}
}
