package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"

	"github.com/dghubble/oauth1"
)

var _ adapter.TwitterProvider = (*Client)(nil)

// Client posts tweets through the v2 API with OAuth 1.0a user-context signing.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, creds model.TwitterCredentials, timeout time.Duration) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid twitter url: %w", err)
	}
	base := &http.Client{Timeout: timeout}
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, base)
	cfg := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessTokenKey, creds.AccessTokenSecret)
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    cfg.Client(ctx, token),
	}, nil
}

type tweetResponse struct {
	Data struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	} `json:"data"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// failureDetail picks the most specific explanation the API gave.
func (r tweetResponse) failureDetail(status int) string {
	switch {
	case r.Detail != "":
		return r.Detail
	case r.Title != "":
		return r.Title
	case len(r.Errors) > 0 && r.Errors[0].Message != "":
		return r.Errors[0].Message
	}
	return http.StatusText(status)
}

func (c *Client) PostTweet(ctx context.Context, status string) model.Result[model.Tweet] {
	b, _ := json.Marshal(map[string]string{"text": status})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/2/tweets", bytes.NewReader(b))
	if err != nil {
		return model.Failure[model.Tweet](err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return model.Failure[model.Tweet](err.Error())
	}
	defer resp.Body.Close()

	var out tweetResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.Failure[model.Tweet](out.failureDetail(resp.StatusCode))
	}
	if decodeErr != nil {
		return model.Failure[model.Tweet](fmt.Sprintf("decode tweet: %v", decodeErr))
	}
	if len(out.Errors) > 0 {
		return model.Failure[model.Tweet](out.failureDetail(resp.StatusCode))
	}
	return model.Success(model.Tweet{ID: out.Data.ID, Text: out.Data.Text})
}
