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

	"weatherbot/core/logger"
	"log/slog"
)

// ErrUpstream marks failures of the weather service (transport errors and
// non-200 responses from either endpoint). Terminal for the user turn.
var ErrUpstream = errors.New("weather: upstream request failed")

// Config holds weather service settings.
type Config struct {
	BaseURL string `yaml:"base_url" envconfig:"WEATHER_BASE_URL"`
	Token   string `yaml:"token" envconfig:"WEATHER_TOKEN"`
}

// Reading is a merged current-weather observation for one coordinate pair.
// Conditions and the UV index come from two independent requests, so the
// two halves may reflect slightly different instants.
type Reading struct {
	ConditionCodes       []int
	ConditionMain        string
	ConditionDescription string
	TemperatureC         float64
	FeelsLikeC           float64
	WindSpeedMPS         float64
	UVIndex              float64
}

// Client fetches current conditions from an OpenWeatherMap-compatible API.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient builds a weather client. A nil httpClient falls back to a
// client with a sane timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "weather",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{cfg: cfg, http: httpClient, breaker: cb}
}

type conditionsPayload struct {
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

type uvPayload struct {
	Value float64 `json:"value"`
}

// Current fetches conditions (metric units) and the UV index for the given
// coordinates. Both requests must succeed for a reading to be returned; the
// calls are independent and are never retried.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Reading, error) {
	coords := url.Values{}
	coords.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	coords.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	coords.Set("appid", c.cfg.Token)

	condParams := url.Values{}
	for k, v := range coords {
		condParams[k] = v
	}
	condParams.Set("units", "metric")

	start := time.Now()
	condBody, err := c.get(ctx, c.cfg.BaseURL+"/weather?"+condParams.Encode())
	if err != nil {
		logger.Warn(ctx, "service.weather", "fetch.fail",
			slog.String("status", "fail"),
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.String("err", err.Error()),
		)
		return Reading{}, err
	}
	var cond conditionsPayload
	if err := json.Unmarshal(condBody, &cond); err != nil {
		return Reading{}, fmt.Errorf("%w: decode conditions: %v", ErrUpstream, err)
	}

	uvBody, err := c.get(ctx, c.cfg.BaseURL+"/uvi?"+coords.Encode())
	if err != nil {
		logger.Warn(ctx, "service.weather", "uv.fail",
			slog.String("status", "fail"),
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.String("err", err.Error()),
		)
		return Reading{}, err
	}
	var uv uvPayload
	if err := json.Unmarshal(uvBody, &uv); err != nil {
		return Reading{}, fmt.Errorf("%w: decode uv: %v", ErrUpstream, err)
	}

	reading := Reading{
		TemperatureC: cond.Main.Temp,
		FeelsLikeC:   cond.Main.FeelsLike,
		WindSpeedMPS: cond.Wind.Speed,
		UVIndex:      uv.Value,
	}
	for i, w := range cond.Weather {
		reading.ConditionCodes = append(reading.ConditionCodes, w.ID)
		if i == 0 {
			reading.ConditionMain = w.Main
			reading.ConditionDescription = w.Description
		}
	}

	logger.Debug(ctx, "service.weather", "fetch.done",
		slog.String("status", "ok"),
		slog.Float64("temp_c", reading.TemperatureC),
		slog.Float64("feels_like_c", reading.FeelsLikeC),
		slog.Float64("wind_mps", reading.WindSpeedMPS),
		slog.Float64("uv", reading.UVIndex),
		slog.Duration("duration", logger.Took(start)),
	)
	return reading, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
		}
		buf, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return buf, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}
