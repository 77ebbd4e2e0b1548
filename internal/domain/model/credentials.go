package model

import "strings"

// TwitterCredentials are the four OAuth 1.0a user-context secrets.
type TwitterCredentials struct {
	ConsumerKey       string `yaml:"consumer_key"`
	ConsumerSecret    string `yaml:"consumer_secret"`
	AccessTokenKey    string `yaml:"access_token_key"`
	AccessTokenSecret string `yaml:"access_token_secret"`
}

// GmailCredentials authorise users.messages.send through a refresh token.
type GmailCredentials struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
}

// Credentials holds the optional per-provider secrets. It is read-only once
// the facade is built.
type Credentials struct {
	OpenWeatherToken   string             `yaml:"open_weather_token"`
	Twitter            TwitterCredentials `yaml:"twitter"`
	SoundCloudClientID string             `yaml:"soundcloud_client_id"`
	Gmail              GmailCredentials   `yaml:"gmail"`
}

func (c Credentials) HasWeather() bool { return present(c.OpenWeatherToken) }

func (c Credentials) HasTwitter() bool {
	t := c.Twitter
	return present(t.ConsumerKey, t.ConsumerSecret, t.AccessTokenKey, t.AccessTokenSecret)
}

func (c Credentials) HasSoundCloud() bool { return present(c.SoundCloudClientID) }

func (c Credentials) HasGmail() bool {
	g := c.Gmail
	return present(g.ClientID, g.ClientSecret, g.RefreshToken)
}

func present(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}
