// Package client fetches readings from the temperature service.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/luki/tempwatch/internal/temperature"
)

// Latest is the /temperature/latest payload after parsing.
type Latest struct {
	Reading temperature.Reading
	State   temperature.AlertState
}

// Health is the /health payload.
type Health struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type latestPayload struct {
	Temperature *float64 `json:"temperature"`
	CollectedAt string   `json:"collected_at"`
	IsAlert     bool     `json:"is_alert"`
	IsNormal    bool     `json:"is_normal"`
}

type readingPayload struct {
	Temperature *float64 `json:"temperature"`
	CollectedAt string   `json:"collected_at"`
}

type errorPayload struct {
	Error string `json:"error"`
}

// Client talks to one temperature service.
type Client struct {
	base *url.URL
	http *http.Client
}

// New creates a client for the service at baseURL. timeout bounds each
// request.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	return &Client{base: u, http: &http.Client{Timeout: timeout}}, nil
}

// BaseURL returns the service URL.
func (c *Client) BaseURL() string { return c.base.String() }

// FetchLatest retrieves the most recent reading and its alert flags.
func (c *Client) FetchLatest(ctx context.Context) (Latest, error) {
	var p latestPayload
	if err := c.getJSON(ctx, "/temperature/latest", nil, &p); err != nil {
		return Latest{}, err
	}
	r, err := toReading(p.Temperature, p.CollectedAt)
	if err != nil {
		return Latest{}, fmt.Errorf("latest: %w", err)
	}
	return Latest{Reading: r, State: temperature.StateFromFlags(p.IsAlert, p.IsNormal)}, nil
}

// FetchHourly retrieves the past hour of readings, newest first.
func (c *Client) FetchHourly(ctx context.Context) (temperature.Series, error) {
	return c.fetchSeries(ctx, "/temperature/hourly", nil)
}

// FetchHistory retrieves readings between start and end, newest first.
func (c *Client) FetchHistory(ctx context.Context, start, end time.Time) (temperature.Series, error) {
	q := url.Values{}
	q.Set("start_time", start.UTC().Format(time.RFC3339))
	q.Set("end_time", end.UTC().Format(time.RFC3339))
	return c.fetchSeries(ctx, "/temperature/history", q)
}

// Health probes the service health endpoint.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/health", nil, &h); err != nil {
		return Health{}, err
	}
	return h, nil
}

func (c *Client) fetchSeries(ctx context.Context, path string, q url.Values) (temperature.Series, error) {
	var rows []readingPayload
	if err := c.getJSON(ctx, path, q, &rows); err != nil {
		return nil, err
	}
	series := make(temperature.Series, 0, len(rows))
	for i, row := range rows {
		r, err := toReading(row.Temperature, row.CollectedAt)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", path, i, err)
		}
		series = append(series, r)
	}
	return series, nil
}

func (c *Client) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	u := c.base.JoinPath(path)
	if q != nil {
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e errorPayload
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("%s: unexpected status %s: %s", path, resp.Status, e.Error)
		}
		return fmt.Errorf("%s: unexpected status %s", path, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func toReading(temp *float64, collectedAt string) (temperature.Reading, error) {
	if temp == nil {
		return temperature.Reading{}, fmt.Errorf("missing temperature")
	}
	t, err := temperature.ParseTimestamp(collectedAt)
	if err != nil {
		return temperature.Reading{}, err
	}
	r := temperature.Reading{Celsius: *temp, CollectedAt: t}
	if err := r.Validate(); err != nil {
		return temperature.Reading{}, err
	}
	return r, nil
}
