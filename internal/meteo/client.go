// Package meteo fetches marine and atmospheric forecasts from Open-Meteo and
// merges them into one environmental snapshot per coordinate.
package meteo

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

	"github.com/lucas-hudsn/wavereader/internal/models"
	"github.com/lucas-hudsn/wavereader/internal/observability"
)

// EnvironmentalClient fetches a combined marine + wind snapshot for a coordinate.
type EnvironmentalClient interface {
	Fetch(ctx context.Context, latitude, longitude float64) (models.EnvironmentalSnapshot, error)
}

var (
	ErrUpstreamFailure = errors.New("upstream failure")
	ErrUpstreamOpen    = errors.New("upstream circuit open")
)

const forecastDays = 7

// OpenMeteoClient issues two independent calls per fetch: the marine API for
// wave data and the forecast API for wind data. No single Open-Meteo endpoint
// serves both series, so a failure on either call fails the combined fetch.
type OpenMeteoClient struct {
	marineURL  string
	weatherURL string
	timeout    time.Duration
	client     *http.Client

	marineBreaker  *gobreaker.CircuitBreaker
	weatherBreaker *gobreaker.CircuitBreaker
}

// NewOpenMeteoClient creates an OpenMeteoClient with a circuit breaker per
// upstream host so a dead marine API does not trip calls to the weather API.
func NewOpenMeteoClient(marineURL, weatherURL string, timeout time.Duration) *OpenMeteoClient {
	newBreaker := func(name string) *gobreaker.CircuitBreaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     2 * time.Minute,
			OnStateChange: func(name string, from, to gobreaker.State) {
				observability.RecordUpstreamBreakerTransition(name, from.String(), to.String())
			},
		})
	}
	return &OpenMeteoClient{
		marineURL:      marineURL,
		weatherURL:     weatherURL,
		timeout:        timeout,
		client:         &http.Client{Timeout: timeout},
		marineBreaker:  newBreaker("openmeteo_marine"),
		weatherBreaker: newBreaker("openmeteo_weather"),
	}
}

type marineResponse struct {
	Timezone string `json:"timezone"`
	Hourly   struct {
		Time          []string  `json:"time"`
		WaveHeight    []float64 `json:"wave_height"`
		WavePeriod    []float64 `json:"wave_period"`
		WaveDirection []float64 `json:"wave_direction"`
	} `json:"hourly"`
	Daily struct {
		WaveHeightMax []*float64 `json:"wave_height_max"`
		WavePeriodMax []*float64 `json:"wave_period_max"`
	} `json:"daily"`
}

type weatherResponse struct {
	Hourly struct {
		WindSpeed     []float64 `json:"wind_speed_10m"`
		WindDirection []float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
	Daily struct {
		WindSpeedMax  []*float64 `json:"wind_speed_10m_max"`
		WindDirection []*float64 `json:"wind_direction_10m_dominant"`
	} `json:"daily"`
}

// Fetch retrieves wave and wind forecasts for the coordinate and merges them.
// Both upstream calls must succeed; a timeout, transport error, or non-2xx on
// either fails the fetch. Missing daily values come back nil rather than zero.
func (c *OpenMeteoClient) Fetch(ctx context.Context, latitude, longitude float64) (models.EnvironmentalSnapshot, error) {
	var marine marineResponse
	if err := c.call(ctx, c.marineBreaker, "marine", c.marineURL, marineQuery(latitude, longitude), &marine); err != nil {
		return models.EnvironmentalSnapshot{}, fmt.Errorf("marine fetch: %w", err)
	}

	var weather weatherResponse
	if err := c.call(ctx, c.weatherBreaker, "weather", c.weatherURL, weatherQuery(latitude, longitude), &weather); err != nil {
		return models.EnvironmentalSnapshot{}, fmt.Errorf("weather fetch: %w", err)
	}

	tz := marine.Timezone
	if tz == "" {
		tz = "UTC"
	}

	return models.EnvironmentalSnapshot{
		Success:       true,
		Latitude:      latitude,
		Longitude:     longitude,
		WaveHeightMax: first(marine.Daily.WaveHeightMax),
		WavePeriodMax: first(marine.Daily.WavePeriodMax),
		WindSpeedMax:  first(weather.Daily.WindSpeedMax),
		WindDirection: first(weather.Daily.WindDirection),
		Hourly: models.HourlySeries{
			Time:          marine.Hourly.Time,
			WaveHeight:    marine.Hourly.WaveHeight,
			WavePeriod:    marine.Hourly.WavePeriod,
			WaveDirection: marine.Hourly.WaveDirection,
			WindSpeed:     weather.Hourly.WindSpeed,
			WindDirection: weather.Hourly.WindDirection,
		},
		Timezone: tz,
	}, nil
}

// call runs one upstream GET through its circuit breaker and decodes the body
// into out.
func (c *OpenMeteoClient) call(ctx context.Context, breaker *gobreaker.CircuitBreaker, upstream, baseURL string, query url.Values, out interface{}) error {
	start := time.Now()
	_, err := breaker.Execute(func() (interface{}, error) {
		return nil, c.doRequest(ctx, baseURL, query, out)
	})
	duration := time.Since(start).Seconds()
	if err != nil {
		observability.MeteoAPICallsTotal.WithLabelValues(upstream, "error").Inc()
		observability.MeteoAPIDuration.WithLabelValues(upstream, "error").Observe(duration)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%w: %s", ErrUpstreamOpen, upstream)
		}
		return err
	}
	observability.MeteoAPICallsTotal.WithLabelValues(upstream, "success").Inc()
	observability.MeteoAPIDuration.WithLabelValues(upstream, "success").Observe(duration)
	return nil
}

func (c *OpenMeteoClient) doRequest(ctx context.Context, baseURL string, query url.Values, out interface{}) error {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid upstream URL: %w", err)
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return fmt.Errorf("request timeout: %w", err)
		}
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}

func marineQuery(latitude, longitude float64) url.Values {
	q := coordQuery(latitude, longitude)
	q.Set("hourly", "wave_height,wave_period,wave_direction")
	q.Set("daily", "wave_height_max,wave_period_max")
	return q
}

func weatherQuery(latitude, longitude float64) url.Values {
	q := coordQuery(latitude, longitude)
	q.Set("hourly", "wind_speed_10m,wind_direction_10m")
	q.Set("daily", "wind_speed_10m_max,wind_direction_10m_dominant")
	return q
}

func coordQuery(latitude, longitude float64) url.Values {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(forecastDays))
	return q
}

func first(vals []*float64) *float64 {
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}
