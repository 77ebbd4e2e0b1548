package adapter

import (
	"context"

	"chucky-bot/internal/domain/model"
)

// WeatherProvider looks up current conditions by city name. Transport
// failures are returned as errors; everything the provider answered,
// including 401 and 404, comes back as a report.
type WeatherProvider interface {
	CurrentWeather(ctx context.Context, city string) (model.WeatherReport, error)
}

type TwitterProvider interface {
	PostTweet(ctx context.Context, status string) model.Result[model.Tweet]
}

type SoundCloudProvider interface {
	Search(ctx context.Context, artist string) model.Result[model.Artist]
}

// StackExchangeProvider returns links to answered questions matching the filter.
type StackExchangeProvider interface {
	SearchAnswers(ctx context.Context, filter model.StackFilter) ([]string, error)
}

type MailProvider interface {
	SendMail(ctx context.Context, to, subject, body string) model.Result[model.MailReceipt]
}
