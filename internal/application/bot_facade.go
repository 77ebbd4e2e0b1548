package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"chucky-bot/internal/domain"
	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"
	"chucky-bot/internal/infra/logging"
	"chucky-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Provider names as shown to users in credential errors.
const (
	ProviderWeather    = "Open Weather"
	ProviderTwitter    = "Twitter"
	ProviderSoundCloud = "SoundCloud"
	ProviderGmail      = "Gmail"
)

const (
	stackNotFoundText   = "I can't find questions for you;( try again"
	weatherOKCode       = 200
	weatherNotFoundCode = 404
)

// Providers groups the external API adapters the facade calls. A nil
// adapter is only acceptable when its credentials are also absent.
type Providers struct {
	Weather       adapter.WeatherProvider
	Twitter       adapter.TwitterProvider
	SoundCloud    adapter.SoundCloudProvider
	StackExchange adapter.StackExchangeProvider
	Mail          adapter.MailProvider
}

// BotFacade composes credentials, provider adapters and the messenger into
// high-level bot features. Each feature checks its credentials, calls one
// provider, formats a text and either sends it or hands it back.
type BotFacade struct {
	creds     model.Credentials
	messenger adapter.Messenger
	providers Providers
	log       *zerolog.Logger
}

func NewBotFacade(creds model.Credentials, messenger adapter.Messenger, providers Providers, logger *zerolog.Logger) *BotFacade {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BotFacade{
		creds:     creds,
		messenger: messenger,
		providers: providers,
		log:       logger,
	}
}

// Reply sends text to recipientID through the configured messenger.
func (b *BotFacade) Reply(ctx context.Context, recipientID, text string) error {
	msg, err := model.NewOutboundMessage(recipientID, text)
	if err != nil {
		return err
	}
	platform := b.messenger.Platform()
	err = b.messenger.SendMessage(ctx, msg.RecipientID, msg.Text)

	log := logging.With(ctx, b.log)
	var sendErr *model.SendError
	switch {
	case err == nil:
		metrics.IncMessageSent(platform, "ok")
		log.Debug().Str("platform", platform).Str("recipient_id", msg.RecipientID).Msg("message sent")
	case errors.As(err, &sendErr):
		metrics.IncMessageSent(platform, "rejected")
		log.Warn().Str("platform", platform).Int("status", sendErr.StatusCode).Str("body", sendErr.Body).Msg("message rejected")
	default:
		metrics.IncMessageSent(platform, "error")
		log.Error().Err(err).Str("platform", platform).Msg("message send failed")
	}
	return err
}

// SendWeatherMessage sends the current weather in city to recipientID.
func (b *BotFacade) SendWeatherMessage(ctx context.Context, recipientID, city string) (string, error) {
	if !b.creds.HasWeather() {
		return "", domain.MissingCredential(ProviderWeather)
	}
	defer logging.TraceDuration(b.log, "BotFacade.SendWeatherMessage")()

	start := time.Now()
	report, err := b.providers.Weather.CurrentWeather(ctx, city)
	if err != nil {
		metrics.ObserveProviderCall("weather", "error", time.Since(start))
		return "", fmt.Errorf("weather lookup: %w", err)
	}
	outcome := "success"
	if report.Code != weatherOKCode {
		outcome = "failure"
	}
	metrics.ObserveProviderCall("weather", outcome, time.Since(start))

	if report.Code == 401 {
		return "", domain.InvalidCredential(ProviderWeather, report.Message)
	}

	if report.Code != weatherOKCode && report.Code != weatherNotFoundCode {
		return "", fmt.Errorf("weather lookup: provider status %d: %s", report.Code, report.Message)
	}

	var text string
	if report.Code == weatherNotFoundCode || report.Description == "" {
		text = fmt.Sprintf("Sorry I cant find information about weather in %s, ", city)
	} else {
		text = fmt.Sprintf("Current weather in %s is: %s", city, report.Description)
	}
	if err := b.Reply(ctx, recipientID, text); err != nil {
		return "", err
	}
	return text, nil
}

// SendTweet posts status and returns a confirmation or error text. The
// text is returned to the caller rather than sent to a recipient.
func (b *BotFacade) SendTweet(ctx context.Context, status string) (string, error) {
	if !b.creds.HasTwitter() {
		return "", domain.MissingCredential(ProviderTwitter)
	}

	start := time.Now()
	res := b.providers.Twitter.PostTweet(ctx, status)
	metrics.ObserveProviderCall("twitter", outcomeOf(res.IsSuccess()), time.Since(start))

	if res.IsSuccess() {
		return fmt.Sprintf("I have placed your tweet with status '%s'.", status), nil
	}
	logging.With(ctx, b.log).Warn().Str("detail", res.Detail).Msg("tweet rejected")
	return fmt.Sprintf("Twitter Error: %s.", res.Detail), nil
}

// SendSoundcloudMessage sends the artist and its track listing to recipientID.
func (b *BotFacade) SendSoundcloudMessage(ctx context.Context, recipientID, artist string) (string, error) {
	if !b.creds.HasSoundCloud() {
		return "", domain.MissingCredential(ProviderSoundCloud)
	}

	start := time.Now()
	res := b.providers.SoundCloud.Search(ctx, artist)
	metrics.ObserveProviderCall("soundcloud", outcomeOf(res.IsSuccess()), time.Since(start))

	text := fmt.Sprintf("SoundCloud Error: %s", res.Detail)
	if res.IsSuccess() {
		text = fmt.Sprintf("SoundCloud found %s, \nTrack Listing: %s", res.Payload.Name, formatTracks(res.Payload.Tracks))
	}
	if err := b.Reply(ctx, recipientID, text); err != nil {
		return "", err
	}
	return text, nil
}

// SendStackQuestions sends up to two question links matching filter.
func (b *BotFacade) SendStackQuestions(ctx context.Context, recipientID string, filter model.StackFilter) (string, error) {
	start := time.Now()
	links, err := b.providers.StackExchange.SearchAnswers(ctx, filter)
	if err != nil {
		metrics.ObserveProviderCall("stackexchange", "error", time.Since(start))
		logging.With(ctx, b.log).Warn().Err(err).Msg("stackexchange search failed")
		links = nil
	} else {
		metrics.ObserveProviderCall("stackexchange", outcomeOf(len(links) > 0), time.Since(start))
	}

	var text string
	switch {
	case len(links) == 0:
		text = stackNotFoundText
	case len(links) == 1:
		text = fmt.Sprintf("I found question for you, link below\n\n Question: %s", links[0])
	default:
		text = fmt.Sprintf("I found questions for you, links below\n\n Question 1: %s\nQuestion 2: %s", links[0], links[1])
	}
	if err := b.Reply(ctx, recipientID, text); err != nil {
		return "", err
	}
	return text, nil
}

// SendMail delivers an email and returns a status text for the caller.
func (b *BotFacade) SendMail(ctx context.Context, to, subject, body string) (string, error) {
	if !b.creds.HasGmail() {
		return "", domain.MissingCredential(ProviderGmail)
	}

	start := time.Now()
	res := b.providers.Mail.SendMail(ctx, to, subject, body)
	metrics.ObserveProviderCall("gmail", outcomeOf(res.IsSuccess()), time.Since(start))

	if res.IsSuccess() {
		return fmt.Sprintf("Sent mail successfully to %s", to), nil
	}
	logging.With(ctx, b.log).Warn().Str("detail", res.Detail).Msg("mail rejected")
	return fmt.Sprintf("Gmail Error: %s", res.Detail), nil
}

// formatTracks renders titles as ["T1", "T2"].
func formatTracks(titles []string) string {
	quoted := make([]string, len(titles))
	for i, t := range titles {
		quoted[i] = strconv.Quote(t)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func outcomeOf(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
