package stackexchange

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

var _ adapter.StackExchangeProvider = (*Client)(nil)

// criterionParams maps the bot's filter keys to search/advanced parameters.
// Unknown keys are passed through as is.
var criterionParams = map[string]string{
	"title": "intitle",
	"tag":   "tagged",
	"tags":  "tagged",
}

// Client searches answered questions with the StackExchange 2.3 API.
// No key is needed; a key only raises the daily quota.
type Client struct {
	baseURL string
	site    string
	key     string
	http    *http.Client
}

func NewClient(baseURL, site, key string, timeout time.Duration) (*Client, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid stackexchange url: %w", err)
	}
	if site == "" {
		site = "stackoverflow"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		site:    site,
		key:     key,
		http:    &http.Client{Timeout: timeout},
	}, nil
}

type searchResponse struct {
	Items []struct {
		Link string `json:"link"`
	} `json:"items"`
	ErrorID      int    `json:"error_id"`
	ErrorName    string `json:"error_name"`
	ErrorMessage string `json:"error_message"`
}

func (c *Client) query(filter model.StackFilter) url.Values {
	q := url.Values{}
	q.Set("site", c.site)
	q.Set("order", "desc")
	q.Set("sort", "activity")
	q.Set("answers", "1")
	if c.key != "" {
		q.Set("key", c.key)
	}
	for _, cr := range filter {
		name, ok := criterionParams[cr.Key]
		if !ok {
			name = cr.Key
		}
		q.Set(name, cr.Value)
	}
	return q
}

// SearchAnswers returns question links in the order the API ranked them.
func (c *Client) SearchAnswers(ctx context.Context, filter model.StackFilter) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/2.3/search/advanced?"+c.query(filter).Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode search (http %d): %w", resp.StatusCode, err)
	}
	if out.ErrorID != 0 || resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stackexchange %d %s: %s", out.ErrorID, out.ErrorName, out.ErrorMessage)
	}
	links := make([]string, 0, len(out.Items))
	for _, it := range out.Items {
		if it.Link != "" {
			links = append(links, it.Link)
		}
	}
	return links, nil
}
