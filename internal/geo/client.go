package geo

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

// ErrUpstream marks failures of the geocoding service itself (transport
// errors and non-200 responses). Callers treat it as terminal for the
// current user turn; there are no retries.
var ErrUpstream = errors.New("geo: upstream request failed")

const searchLimit = 5

// Config holds geocoding service settings.
type Config struct {
	BaseURL string `yaml:"base_url" envconfig:"GEO_BASE_URL"`
	Token   string `yaml:"token" envconfig:"GEO_TOKEN"`
}

// Client talks to a LocationIQ-compatible geocoding service.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient builds a geocoding client. A nil httpClient falls back to a
// client with a sane timeout.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "geocoder",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Client{cfg: cfg, http: httpClient, breaker: cb}
}

type forwardResult struct {
	Lat     string   `json:"lat"`
	Lon     string   `json:"lon"`
	Address *address `json:"address"`
}

type reverseResult struct {
	Address *address `json:"address"`
}

// Search resolves a free-text query into up to five deduplicated place
// candidates. It returns an error (never an empty slice) when the upstream
// call does not succeed; candidates missing a label or coordinates are
// dropped silently.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	params := url.Values{}
	params.Set("key", c.cfg.Token)
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("normalizecity", "1")

	body, err := c.get(ctx, c.cfg.BaseURL+"/v1/search.php?"+params.Encode())
	if err != nil {
		logger.Warn(ctx, "service.geo", "search.fail",
			slog.String("status", "fail"),
			slog.String("query", logger.SanitizeLimit(query, 128)),
			slog.String("err", err.Error()),
		)
		return nil, err
	}

	var raw []forwardResult
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}

	places := make([]Place, 0, len(raw))
	for _, r := range raw {
		place, ok := buildPlace(r)
		if !ok {
			logger.Debug(ctx, "service.geo", "search.drop",
				slog.String("status", "skip"),
				slog.String("query", logger.SanitizeLimit(query, 128)),
			)
			continue
		}
		places = append(places, place)
	}
	places = Dedupe(places)

	logger.Debug(ctx, "service.geo", "search.done",
		slog.String("status", "ok"),
		slog.String("query", logger.SanitizeLimit(query, 128)),
		slog.Int("candidates", len(places)),
	)
	return places, nil
}

// Reverse resolves coordinates to a human-readable label. Any failure
// yields an empty string; a location is storable with coordinates alone.
func (c *Client) Reverse(ctx context.Context, lat, lon float64) string {
	params := url.Values{}
	params.Set("key", c.cfg.Token)
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")
	params.Set("normalizecity", "1")

	body, err := c.get(ctx, c.cfg.BaseURL+"/v1/reverse.php?"+params.Encode())
	if err != nil {
		logger.Warn(ctx, "service.geo", "reverse.fail",
			slog.String("status", "fail"),
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.String("err", err.Error()),
		)
		return ""
	}

	var raw reverseResult
	if err := json.Unmarshal(body, &raw); err != nil {
		logger.Warn(ctx, "service.geo", "reverse.fail",
			slog.String("status", "fail"),
			slog.Float64("lat", lat),
			slog.Float64("lon", lon),
			slog.String("err", err.Error()),
		)
		return ""
	}
	return buildPlaceLabel(raw.Address)
}

func buildPlace(r forwardResult) (Place, bool) {
	label := buildPlaceLabel(r.Address)
	if label == "" {
		return Place{}, false
	}
	lat, err := strconv.ParseFloat(r.Lat, 64)
	if err != nil {
		return Place{}, false
	}
	lon, err := strconv.ParseFloat(r.Lon, 64)
	if err != nil {
		return Place{}, false
	}
	return Place{Label: label, Lat: lat, Lon: lon}, true
}

// get performs a single attempt behind the circuit breaker. Upstream
// failures are never retried; the breaker only sheds load while the
// service stays down.
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
