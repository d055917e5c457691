package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCurrentMergesBothEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("appid") != "secret" {
			t.Errorf("appid = %q", q.Get("appid"))
		}
		switch r.URL.Path {
		case "/weather":
			if q.Get("units") != "metric" {
				t.Errorf("units = %q", q.Get("units"))
			}
			_, _ = w.Write([]byte(`{
				"weather": [
					{"id": 500, "main": "Rain", "description": "light rain"},
					{"id": 701, "main": "Mist", "description": "mist"}
				],
				"main": {"temp": 11.5, "feels_like": 9.8},
				"wind": {"speed": 4.2}
			}`))
		case "/uvi":
			if q.Get("units") != "" {
				t.Errorf("uvi request must not carry units, got %q", q.Get("units"))
			}
			_, _ = w.Write([]byte(`{"value": 2.4}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "secret"}, srv.Client())
	got, err := c.Current(context.Background(), 40.71, -74.00)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if len(got.ConditionCodes) != 2 || got.ConditionCodes[0] != 500 || got.ConditionCodes[1] != 701 {
		t.Errorf("condition codes: %v", got.ConditionCodes)
	}
	if got.ConditionMain != "Rain" || got.ConditionDescription != "light rain" {
		t.Errorf("primary condition: %q / %q", got.ConditionMain, got.ConditionDescription)
	}
	if got.TemperatureC != 11.5 || got.FeelsLikeC != 9.8 {
		t.Errorf("temperatures: %v / %v", got.TemperatureC, got.FeelsLikeC)
	}
	if got.WindSpeedMPS != 4.2 {
		t.Errorf("wind: %v", got.WindSpeedMPS)
	}
	if got.UVIndex != 2.4 {
		t.Errorf("uv: %v", got.UVIndex)
	}
}

func TestCurrentConditionsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/weather" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"value": 1.0}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "k"}, srv.Client())
	_, err := c.Current(context.Background(), 0, 0)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestCurrentUVFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/uvi" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"weather": [], "main": {"temp": 1, "feels_like": 1}, "wind": {"speed": 1}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "k"}, srv.Client())
	_, err := c.Current(context.Background(), 0, 0)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
