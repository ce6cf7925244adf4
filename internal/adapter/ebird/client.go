// Package ebird fetches recent notable observations from the eBird API 2.0
// and memoizes results for the duration of one build.
package ebird

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/mmcgee/ebird-notable-maps/internal/domain"
)

const defaultBaseURL = "https://api.ebird.org/v2/data/obs/geo/recent/notable"

// ErrUnauthorized signals a missing or invalid API key. The message is
// deliberately generic; the key itself never appears in logs or errors.
var ErrUnauthorized = errors.New("ebird API key missing or invalid")

// Client implements domain.ObservationFetcher against the eBird API.
// Each call is a single attempt; a circuit breaker stops scheduled builds
// from hammering the API while it is failing.
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewClient creates an eBird API client.
func NewClient(apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: defaultBaseURL,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "ebird",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
			Timeout: time.Minute,
		}),
		logger: logger,
	}
}

// RecentNotable fetches recent notable observations around a point. Radius
// is coerced to whole kilometers, matching the API's dist parameter.
func (c *Client) RecentNotable(ctx context.Context, q domain.Query) ([]domain.ObservationRecord, error) {
	params := url.Values{
		"lat":        {strconv.FormatFloat(q.Lat, 'f', -1, 64)},
		"lng":        {strconv.FormatFloat(q.Lon, 'f', -1, 64)},
		"dist":       {strconv.Itoa(int(q.RadiusKm))},
		"back":       {strconv.Itoa(q.BackDays)},
		"maxResults": {strconv.Itoa(q.MaxResults)},
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.doRequest(ctx, c.baseURL+"?"+params.Encode())
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("ebird circuit open: %w", err)
		}
		return nil, err
	}

	records, ok := result.([]domain.ObservationRecord)
	if !ok {
		return nil, errors.New("unexpected result type from circuit breaker")
	}
	return records, nil
}

func (c *Client) doRequest(ctx context.Context, fullURL string) ([]domain.ObservationRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-eBirdApiToken", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ebird request: %w", err)
	}
	defer resp.Body.Close()

	// Keep failure details generic. Never echo the key or response headers.
	if resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ebird API error: status %d", resp.StatusCode)
	}

	var records []domain.ObservationRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return records, nil
}
