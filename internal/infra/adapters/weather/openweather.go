package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"chucky-bot/internal/domain/model"
	"chucky-bot/internal/domain/ports/adapter"
)

var _ adapter.WeatherProvider = (*OpenWeather)(nil)

// OpenWeather queries the current-weather endpoint of OpenWeatherMap.
type OpenWeather struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewOpenWeather(baseURL, token string, timeout time.Duration) (*OpenWeather, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid open weather url: %w", err)
	}
	return &OpenWeather{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// statusCode accepts both 200 and "404": the API is inconsistent about the
// JSON type of cod.
type statusCode int

func (c *statusCode) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("cod %s: %w", b, err)
	}
	*c = statusCode(n)
	return nil
}

type currentWeather struct {
	Cod     statusCode `json:"cod"`
	Message string     `json:"message"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// CurrentWeather returns the provider's answer for city whatever its status;
// only transport and decoding failures are errors.
func (o *OpenWeather) CurrentWeather(ctx context.Context, city string) (model.WeatherReport, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", o.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/data/2.5/weather?"+q.Encode(), nil)
	if err != nil {
		return model.WeatherReport{}, err
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return model.WeatherReport{}, err
	}
	defer resp.Body.Close()

	var out currentWeather
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return model.WeatherReport{}, fmt.Errorf("decode weather (http %d): %w", resp.StatusCode, err)
	}
	report := model.WeatherReport{Code: int(out.Cod), Message: out.Message}
	if report.Code == 0 {
		report.Code = resp.StatusCode
	}
	if len(out.Weather) > 0 {
		report.Description = out.Weather[0].Description
	}
	return report, nil
}
