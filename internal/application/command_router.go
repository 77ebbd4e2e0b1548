package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"chucky-bot/internal/domain"
	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/infra/logging"
	"chucky-bot/internal/infra/metrics"

	"github.com/rs/zerolog"
)

const helpText = "I can help with:\n" +
	"weather <city>\n" +
	"soundcloud <artist>\n" +
	"stack title=<words> tag=<tag>\n" +
	"tweet <status>\n" +
	"mail <to> | <subject> | <body>"

const rateLimitedText = "Rate limit exceeded. Please try again later."

// RateLimiter answers whether key may run once more inside window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type commandHandler func(ctx context.Context, senderID, args string) error

// CommandRouter turns inbound chat text into facade calls and makes sure the
// sender always gets an answer.
type CommandRouter struct {
	facade  *BotFacade
	limiter RateLimiter
	limit   int
	window  time.Duration
	log     *zerolog.Logger
}

// NewCommandRouter builds a router; limiter may be nil to disable rate limiting.
func NewCommandRouter(facade *BotFacade, limiter RateLimiter, limit int, window time.Duration, logger *zerolog.Logger) *CommandRouter {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CommandRouter{
		facade:  facade,
		limiter: limiter,
		limit:   limit,
		window:  window,
		log:     logger,
	}
}

func (r *CommandRouter) routes() map[string]commandHandler {
	return map[string]commandHandler{
		"weather":    r.handleWeather,
		"soundcloud": r.handleSoundcloud,
		"stack":      r.handleStack,
		"tweet":      r.handleTweet,
		"mail":       r.handleMail,
		"help":       r.handleHelp,
		"start":      r.handleHelp,
	}
}

// Handle processes one inbound text from senderID.
func (r *CommandRouter) Handle(ctx context.Context, senderID, text string) error {
	ctx = logging.WithSenderID(ctx, senderID)
	log := logging.With(ctx, r.log)

	name, args := splitCommand(text)
	handler, ok := r.routes()[name]
	if !ok {
		name = "unknown"
	}
	metrics.IncCommand(name)

	if r.limiter != nil {
		allowed, err := r.limiter.Allow(ctx, commandKey(senderID, name), r.limit, r.window)
		if err != nil {
			// fail open
			log.Warn().Err(err).Msg("rate limiter unavailable")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.facade.Reply(ctx, senderID, rateLimitedText)
		}
	}

	if !ok {
		log.Debug().Str("text", text).Msg("unknown command")
		return r.facade.Reply(ctx, senderID, "Sorry, I don't know that command.\n"+helpText)
	}

	if err := handler(ctx, senderID, args); err != nil {
		return r.replyError(ctx, senderID, name, err)
	}
	return nil
}

func (r *CommandRouter) handleWeather(ctx context.Context, senderID, args string) error {
	if args == "" {
		return r.facade.Reply(ctx, senderID, "Usage: weather <city>")
	}
	_, err := r.facade.SendWeatherMessage(ctx, senderID, args)
	return err
}

func (r *CommandRouter) handleSoundcloud(ctx context.Context, senderID, args string) error {
	if args == "" {
		return r.facade.Reply(ctx, senderID, "Usage: soundcloud <artist>")
	}
	_, err := r.facade.SendSoundcloudMessage(ctx, senderID, args)
	return err
}

func (r *CommandRouter) handleStack(ctx context.Context, senderID, args string) error {
	filter, err := model.ParseStackFilter(args)
	if err != nil {
		return r.facade.Reply(ctx, senderID, "Usage: stack title=<words> tag=<tag>")
	}
	_, err = r.facade.SendStackQuestions(ctx, senderID, filter)
	return err
}

func (r *CommandRouter) handleTweet(ctx context.Context, senderID, args string) error {
	if args == "" {
		return r.facade.Reply(ctx, senderID, "Usage: tweet <status>")
	}
	text, err := r.facade.SendTweet(ctx, args)
	if err != nil {
		return err
	}
	return r.facade.Reply(ctx, senderID, text)
}

func (r *CommandRouter) handleMail(ctx context.Context, senderID, args string) error {
	parts := strings.SplitN(args, "|", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return r.facade.Reply(ctx, senderID, "Usage: mail <to> | <subject> | <body>")
	}
	to, subject, body := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
	text, err := r.facade.SendMail(ctx, to, subject, body)
	if err != nil {
		return err
	}
	return r.facade.Reply(ctx, senderID, text)
}

func (r *CommandRouter) handleHelp(ctx context.Context, senderID, _ string) error {
	return r.facade.Reply(ctx, senderID, helpText)
}

// replyError tells the sender what went wrong. Messenger failures are only
// logged since the sender cannot be reached anyway.
func (r *CommandRouter) replyError(ctx context.Context, senderID, command string, err error) error {
	log := logging.With(ctx, r.log)

	var sendErr *model.SendError
	if errors.As(err, &sendErr) || errors.Is(err, domain.ErrInvalidArgument) {
		log.Error().Err(err).Str("command", command).Msg("reply not delivered")
		return err
	}

	var credErr *domain.CredentialError
	text := "Sorry, something went wrong. Please try again later."
	switch {
	case errors.As(err, &credErr) && errors.Is(err, domain.ErrMissingCredential):
		text = fmt.Sprintf("Sorry, %s is not configured for this bot.", credErr.Provider)
	case errors.As(err, &credErr) && errors.Is(err, domain.ErrInvalidCredential):
		text = fmt.Sprintf("Sorry, %s rejected my credentials.", credErr.Provider)
	}
	log.Warn().Err(err).Str("command", command).Msg("command failed")

	if replyErr := r.facade.Reply(ctx, senderID, text); replyErr != nil {
		return errors.Join(err, replyErr)
	}
	return err
}

// splitCommand returns the lower-cased first word (without a leading "/")
// and the trimmed remainder.
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	name, args := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		name, args = text[:i], text[i:]
	}
	name = strings.ToLower(strings.TrimPrefix(name, "/"))
	// telegram appends the bot name to commands in groups: /weather@chucky_bot
	name, _, _ = strings.Cut(name, "@")
	return name, strings.TrimSpace(args)
}

func commandKey(senderID, command string) string {
	return fmt.Sprintf("rate_limit:%s:%s", senderID, command)
}
