// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chucky-bot/internal/application"
	"chucky-bot/internal/config"
	"chucky-bot/internal/domain/ports/adapter"
	"chucky-bot/internal/infra/adapters/mail"
	"chucky-bot/internal/infra/adapters/messenger"
	"chucky-bot/internal/infra/adapters/soundcloud"
	"chucky-bot/internal/infra/adapters/stackexchange"
	tele "chucky-bot/internal/infra/adapters/telegram"
	"chucky-bot/internal/infra/adapters/twitter"
	"chucky-bot/internal/infra/adapters/weather"
	"chucky-bot/internal/infra/logging"
	"chucky-bot/internal/infra/metrics"
	red "chucky-bot/internal/infra/redis"
	"chucky-bot/internal/infra/web"
	"chucky-bot/internal/infra/worker"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Set through -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, unredacted tokens)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)
	logger.Info().Str("version", version).Str("platform", cfg.Messenger.Platform).Bool("dev", cfg.Runtime.Dev).Msg("starting chucky")

	// ---- Messenger ----
	var bot *tgbotapi.BotAPI
	var msgr adapter.Messenger
	switch cfg.Messenger.Platform {
	case "telegram":
		bot, err = tele.NewBotAPI(cfg.Messenger.TelegramToken, cfg.Messenger.TelegramEndpoint)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		msgr = tele.NewMessenger(bot)
	case "slack":
		msgr, err = messenger.NewSlackMessenger(cfg.Messenger.SlackToken, cfg.Messenger.SlackAPIURL)
	case "noop":
		msgr = messenger.NewNoopMessenger(logger)
	default:
		msgr, err = messenger.NewFacebookMessenger(cfg.Messenger.GraphURL, cfg.Messenger.PageToken, cfg.HTTP.Timeout)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("messenger")
	}

	// ---- Providers ----
	providers, err := buildProviders(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("providers")
	}
	logCredentials(logger, cfg)

	facade := application.NewBotFacade(cfg.Credentials, msgr, providers, logger)

	// ---- Redis rate limiter (optional) ----
	var limiter application.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Str("url", logging.Redact(cfg.Redis.URL, cfg.Runtime.Dev)).Msg("redis")
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Info().Msg("redis.url empty; command rate limiting disabled")
	}
	router := application.NewCommandRouter(facade, limiter, cfg.Redis.CommandLimit, cfg.Redis.CommandWindow, logger)

	// ---- Worker pool ----
	pool := worker.NewPool(cfg.Workers, logger)
	pool.Start(ctx)

	// ---- Telegram polling ----
	if bot != nil {
		poller := tele.NewPoller(bot, router, cfg.Messenger.PollWorkers, logger)
		go func() {
			if err := poller.Start(ctx); err != nil && err != context.Canceled {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- HTTP server ----
	server := web.NewServer(cfg.HTTP, cfg.Messenger, web.Deps{
		Bot:      facade,
		Commands: router,
		Pool:     pool,
	}, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigc:
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown requested")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
	pool.Stop()
}

func buildProviders(ctx context.Context, cfg *config.Config) (application.Providers, error) {
	var p application.Providers
	pc, creds, timeout := cfg.Providers, cfg.Credentials, cfg.HTTP.Timeout

	w, err := weather.NewOpenWeather(pc.OpenWeatherURL, creds.OpenWeatherToken, timeout)
	if err != nil {
		return p, err
	}
	tw, err := twitter.NewClient(pc.TwitterURL, creds.Twitter, timeout)
	if err != nil {
		return p, err
	}
	sc, err := soundcloud.NewClient(pc.SoundCloudURL, creds.SoundCloudClientID, timeout)
	if err != nil {
		return p, err
	}
	se, err := stackexchange.NewClient(pc.StackExchangeURL, pc.StackExchangeSite, pc.StackExchangeKey, timeout)
	if err != nil {
		return p, err
	}
	p = application.Providers{Weather: w, Twitter: tw, SoundCloud: sc, StackExchange: se}

	if creds.HasGmail() {
		gm, err := mail.NewGmail(ctx, creds.Gmail, pc.MailFrom, mail.Options{Endpoint: pc.GmailEndpoint})
		if err != nil {
			return p, fmt.Errorf("gmail: %w", err)
		}
		p.Mail = gm
	}
	return p, nil
}

func logCredentials(logger *zerolog.Logger, cfg *config.Config) {
	c := cfg.Credentials
	logger.Info().
		Bool("weather", c.HasWeather()).
		Bool("twitter", c.HasTwitter()).
		Bool("soundcloud", c.HasSoundCloud()).
		Bool("gmail", c.HasGmail()).
		Str("open_weather_token", logging.Redact(c.OpenWeatherToken, cfg.Runtime.Dev)).
		Msg("provider credentials")
}
