// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"chucky-bot/internal/domain/model"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type MessengerConfig struct {
	Platform    string `yaml:"platform" validate:"oneof=facebook telegram slack noop"`
	PageToken   string `yaml:"page_token" validate:"required_if=Platform facebook"`
	GraphURL    string `yaml:"graph_url" validate:"omitempty,url"`
	VerifyToken string `yaml:"verify_token"`
	// AppSecret signs webhook deliveries (X-Hub-Signature-256); without it
	// POST /webhook refuses every event.
	AppSecret string `yaml:"app_secret"`

	TelegramToken string `yaml:"telegram_token" validate:"required_if=Platform telegram"`
	// TelegramEndpoint is a Bot API endpoint format such as
	// "https://api.telegram.org/bot%s/%s"; empty means the library default.
	TelegramEndpoint string `yaml:"telegram_endpoint"`
	PollWorkers      int    `yaml:"poll_workers"`

	SlackToken  string `yaml:"slack_token" validate:"required_if=Platform slack"`
	SlackAPIURL string `yaml:"slack_api_url" validate:"omitempty,url"`
}

type ProvidersConfig struct {
	OpenWeatherURL    string `yaml:"open_weather_url" validate:"url"`
	TwitterURL        string `yaml:"twitter_url" validate:"url"`
	SoundCloudURL     string `yaml:"soundcloud_url" validate:"url"`
	StackExchangeURL  string `yaml:"stackexchange_url" validate:"url"`
	StackExchangeSite string `yaml:"stackexchange_site"`
	StackExchangeKey  string `yaml:"stackexchange_key"`
	GmailEndpoint     string `yaml:"gmail_endpoint" validate:"omitempty,url"`
	MailFrom          string `yaml:"mail_from" validate:"omitempty,email"`
}

type HTTPConfig struct {
	Port      int           `yaml:"port" validate:"min=1,max=65535"`
	Timeout   time.Duration `yaml:"timeout"`
	JWTSecret string        `yaml:"jwt_secret"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type RedisConfig struct {
	URL           string        `yaml:"url"` // empty disables rate limiting
	Password      string        `yaml:"password"`
	DB            int           `yaml:"db"`
	CommandLimit  int           `yaml:"command_limit"`
	CommandWindow time.Duration `yaml:"command_window"`
}

type Config struct {
	Messenger   MessengerConfig   `yaml:"messenger"`
	Credentials model.Credentials `yaml:"credentials"`
	Providers   ProvidersConfig   `yaml:"providers"`
	HTTP        HTTPConfig        `yaml:"http"`
	Log         LogConfig         `yaml:"log"`
	Redis       RedisConfig       `yaml:"redis"`
	Workers     int               `yaml:"workers"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file at path, applies secrets from the
// environment (a local .env is loaded first when present), fills defaults
// and validates the result.
func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	_ = godotenv.Load(".env")
	applyEnv(&cfg)
	applyDefaults(&cfg)

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// envOverrides maps environment variables onto secret fields so tokens
// need not live in the YAML file.
func envOverrides(cfg *Config) map[string]*string {
	c := &cfg.Credentials
	return map[string]*string{
		"CHUCKY_PLATFORM":                    &cfg.Messenger.Platform,
		"CHUCKY_PAGE_TOKEN":                  &cfg.Messenger.PageToken,
		"CHUCKY_VERIFY_TOKEN":                &cfg.Messenger.VerifyToken,
		"CHUCKY_APP_SECRET":                  &cfg.Messenger.AppSecret,
		"CHUCKY_TELEGRAM_TOKEN":              &cfg.Messenger.TelegramToken,
		"CHUCKY_SLACK_TOKEN":                 &cfg.Messenger.SlackToken,
		"CHUCKY_OPEN_WEATHER_TOKEN":          &c.OpenWeatherToken,
		"CHUCKY_TWITTER_CONSUMER_KEY":        &c.Twitter.ConsumerKey,
		"CHUCKY_TWITTER_CONSUMER_SECRET":     &c.Twitter.ConsumerSecret,
		"CHUCKY_TWITTER_ACCESS_TOKEN_KEY":    &c.Twitter.AccessTokenKey,
		"CHUCKY_TWITTER_ACCESS_TOKEN_SECRET": &c.Twitter.AccessTokenSecret,
		"CHUCKY_SOUNDCLOUD_CLIENT_ID":        &c.SoundCloudClientID,
		"CHUCKY_GMAIL_CLIENT_ID":             &c.Gmail.ClientID,
		"CHUCKY_GMAIL_CLIENT_SECRET":         &c.Gmail.ClientSecret,
		"CHUCKY_GMAIL_REFRESH_TOKEN":         &c.Gmail.RefreshToken,
		"CHUCKY_JWT_SECRET":                  &cfg.HTTP.JWTSecret,
		"CHUCKY_REDIS_PASSWORD":              &cfg.Redis.Password,
	}
}

func applyEnv(cfg *Config) {
	for name, field := range envOverrides(cfg) {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			*field = strings.TrimSpace(v)
		}
	}
}

func applyDefaults(cfg *Config) {
	cfg.Messenger.Platform = strings.ToLower(strings.TrimSpace(cfg.Messenger.Platform))
	if cfg.Messenger.Platform == "" {
		cfg.Messenger.Platform = "facebook"
	}
	if cfg.Messenger.GraphURL == "" {
		cfg.Messenger.GraphURL = "https://graph.facebook.com/v2.6/me/messages"
	}
	if cfg.Messenger.PollWorkers <= 0 {
		cfg.Messenger.PollWorkers = 5
	}

	p := &cfg.Providers
	if p.OpenWeatherURL == "" {
		p.OpenWeatherURL = "https://api.openweathermap.org"
	}
	if p.TwitterURL == "" {
		p.TwitterURL = "https://api.twitter.com"
	}
	if p.SoundCloudURL == "" {
		p.SoundCloudURL = "https://api.soundcloud.com"
	}
	if p.StackExchangeURL == "" {
		p.StackExchangeURL = "https://api.stackexchange.com"
	}
	if p.StackExchangeSite == "" {
		p.StackExchangeSite = "stackoverflow"
	}

	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.Timeout <= 0 {
		cfg.HTTP.Timeout = 15 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Redis.CommandLimit <= 0 {
		cfg.Redis.CommandLimit = 20
	}
	if cfg.Redis.CommandWindow <= 0 {
		cfg.Redis.CommandWindow = time.Minute
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
}
