package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
)

// Client fetches live conditions for a coordinate.
type Client interface {
	Current(ctx context.Context, lat, lon float64) (Observation, error)
}

// Observation is the raw reading returned by the weather provider, before it
// is bucketed into a scene weather type.
type Observation struct {
	TemperatureC float64
	WMOCode      int
	WindSpeedKmh float64
}

var (
	ErrUpstreamFailure = errors.New("weather upstream failure")
	ErrCircuitOpen     = errors.New("weather circuit open")
)

// OpenMeteoClient implements Client against the Open-Meteo forecast API.
// Calls run through a circuit breaker so a flapping upstream degrades to
// simulated weather instead of stalling every frame refresh.
type OpenMeteoClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewOpenMeteoClient creates a client for the given base URL
// (e.g. "https://api.open-meteo.com").
func NewOpenMeteoClient(baseURL string, timeout time.Duration) *OpenMeteoClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "open-meteo",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	return &OpenMeteoClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		breaker: breaker,
	}
}

type openMeteoResponse struct {
	Current struct {
		Temperature  float64 `json:"temperature_2m"`
		WeatherCode  int     `json:"weather_code"`
		WindSpeed10m float64 `json:"wind_speed_10m"`
	} `json:"current"`
}

// Current implements Client.Current.
func (c *OpenMeteoClient) Current(ctx context.Context, lat, lon float64) (Observation, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.callAPI(ctx, lat, lon)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Observation{}, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		return Observation{}, err
	}
	return result.(Observation), nil
}

func (c *OpenMeteoClient) callAPI(ctx context.Context, lat, lon float64) (Observation, error) {
	endpoint, err := url.Parse(c.baseURL + "/v1/forecast")
	if err != nil {
		return Observation{}, fmt.Errorf("invalid base URL: %w", err)
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', 4, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', 4, 64))
	params.Set("current", "temperature_2m,weather_code,wind_speed_10m")
	params.Set("wind_speed_unit", "kmh")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return Observation{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return Observation{}, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Observation{}, fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Observation{}, fmt.Errorf("read response body: %w", err)
	}

	var apiResp openMeteoResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return Observation{}, fmt.Errorf("parse response: %w", err)
	}

	return Observation{
		TemperatureC: apiResp.Current.Temperature,
		WMOCode:      apiResp.Current.WeatherCode,
		WindSpeedKmh: apiResp.Current.WindSpeed10m,
	}, nil
}
