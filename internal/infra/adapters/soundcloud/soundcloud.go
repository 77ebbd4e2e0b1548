package soundcloud

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"
)

var _ adapter.SoundCloudProvider = (*Client)(nil)

// Client resolves an artist through the users search and lists their tracks.
type Client struct {
	baseURL  string
	clientID string
	http     *http.Client
}

func NewClient(baseURL, clientID string, timeout time.Duration) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid soundcloud url: %w", err)
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		clientID: clientID,
		http:     &http.Client{Timeout: timeout},
	}, nil
}

type user struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type track struct {
	Title string `json:"title"`
}

type apiError struct {
	Message string `json:"message"`
	Errors  []struct {
		ErrorMessage string `json:"error_message"`
	} `json:"errors"`
}

func (e apiError) detail(status int) string {
	if e.Message != "" {
		return e.Message
	}
	if len(e.Errors) > 0 && e.Errors[0].ErrorMessage != "" {
		return e.Errors[0].ErrorMessage
	}
	return http.StatusText(status)
}

func (c *Client) Search(ctx context.Context, artist string) model.Result[model.Artist] {
	q := url.Values{}
	q.Set("q", artist)
	q.Set("limit", "1")
	var users []user
	if detail := c.get(ctx, "/users", q, &users); detail != "" {
		return model.Failure[model.Artist](detail)
	}
	if len(users) == 0 {
		return model.Failure[model.Artist](fmt.Sprintf("no artist named '%s'", artist))
	}
	u := users[0]

	var tracks []track
	if detail := c.get(ctx, fmt.Sprintf("/users/%d/tracks", u.ID), url.Values{}, &tracks); detail != "" {
		return model.Failure[model.Artist](detail)
	}
	titles := make([]string, 0, len(tracks))
	for _, t := range tracks {
		titles = append(titles, t.Title)
	}
	return model.Success(model.Artist{Name: u.Username, Tracks: titles})
}

// get decodes a successful response into out and returns a failure detail
// otherwise.
func (c *Client) get(ctx context.Context, path string, q url.Values, out any) string {
	q.Set("client_id", c.clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err.Error()
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err.Error()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e apiError
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return e.detail(resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Sprintf("decode %s: %v", path, err)
	}
	return ""
}
