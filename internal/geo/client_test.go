package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSearchBuildsCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/search.php" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("key") != "secret" {
			t.Errorf("key = %q", q.Get("key"))
		}
		if q.Get("q") != "springfield" {
			t.Errorf("q = %q", q.Get("q"))
		}
		if q.Get("limit") != "5" || q.Get("format") != "json" {
			t.Errorf("unexpected query params: %v", q)
		}
		if q.Get("addressdetails") != "1" || q.Get("normalizecity") != "1" {
			t.Errorf("unexpected query params: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"lat": "39.80", "lon": "-89.64", "address": {"city": "Springfield", "state": "Illinois", "country": "USA"}},
			{"lat": "not-a-number", "lon": "0", "address": {"city": "Broken"}},
			{"lat": "39.81", "lon": "-89.65", "address": {"city": "Springfield Twp", "country": "USA"}},
			{"lat": "37.21", "lon": "-93.30", "address": {"city": "Springfield", "state": "Missouri", "country": "USA"}}
		]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "secret"}, srv.Client())
	got, err := c.Search(context.Background(), "springfield")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// The malformed entry is dropped and the near-duplicate collapses
	// into the first candidate.
	want := []string{"Springfield, Illinois, USA", "Springfield, Missouri, USA"}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d: %+v", len(want), len(got), got)
	}
	for i, label := range want {
		if got[i].Label != label {
			t.Errorf("candidate %d: got %q, want %q", i, got[i].Label, label)
		}
	}
	if got[0].Lat != 39.80 || got[0].Lon != -89.64 {
		t.Errorf("unexpected coordinates: %+v", got[0])
	}
}

func TestSearchEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "k"}, srv.Client())
	got, err := c.Search(context.Background(), "nowhere")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no candidates, got %d", len(got))
	}
}

func TestSearchUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "k"}, srv.Client())
	_, err := c.Search(context.Background(), "anywhere")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestReverseReturnsLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/reverse.php" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"address": {"city": "New York", "state": "New York", "country": "USA"}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "k"}, srv.Client())
	got := c.Reverse(context.Background(), 40.71, -74.00)
	if got != "New York, New York, USA" {
		t.Fatalf("got %q", got)
	}
}

func TestReverseFailureYieldsEmptyLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Token: "k"}, srv.Client())
	if got := c.Reverse(context.Background(), 0, 0); got != "" {
		t.Fatalf("expected empty label, got %q", got)
	}
}
