package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chucky-bot/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Deps are the application services the HTTP surface drives.
type Deps struct {
	Bot      Bot
	Commands CommandHandler
	Pool     Submitter
}

// Server hosts the Messenger webhook, the notify API, health and metrics.
type Server struct {
	bot         Bot
	commands    CommandHandler
	pool        Submitter
	auth        *AuthManager
	verifyToken string
	appSecret   string
	timeout     time.Duration
	validate    *validator.Validate
	log         *zerolog.Logger
	srv         *http.Server
}

func NewServer(cfg config.HTTPConfig, webhook config.MessengerConfig, deps Deps, logger *zerolog.Logger) *Server {
	s := &Server{
		bot:         deps.Bot,
		commands:    deps.Commands,
		pool:        deps.Pool,
		auth:        NewAuthManager(cfg.JWTSecret, 0),
		verifyToken: webhook.VerifyToken,
		appSecret:   webhook.AppSecret,
		timeout:     cfg.Timeout,
		validate:    validator.New(),
		log:         logger,
	}
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(TraceID)
	r.Use(RequestLog(s.log))
	r.Use(Recover(s.log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/webhook", s.handleVerify)
	r.Post("/webhook", s.handleEvents)

	r.Route("/api/v1/notify", func(api chi.Router) {
		api.Use(s.auth.Require)
		if s.timeout > 0 {
			api.Use(Timeout(s.timeout))
		}
		api.Post("/weather", s.handleWeather)
		api.Post("/soundcloud", s.handleSoundcloud)
		api.Post("/stack", s.handleStack)
		api.Post("/tweet", s.handleTweet)
		api.Post("/mail", s.handleMail)
	})
	return r
}

// Start blocks until the server stops; a clean Shutdown returns nil.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
