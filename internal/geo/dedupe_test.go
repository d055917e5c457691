package geo

import "testing"

func TestDedupeDropsNearbyCandidates(t *testing.T) {
	places := []Place{
		{Label: "A", Lat: 10, Lon: 10},
		{Label: "B", Lat: 10.5, Lon: 10.5},
		{Label: "C", Lat: 12, Lon: 12},
	}

	got := Dedupe(places)
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if got[0].Label != "A" || got[1].Label != "C" {
		t.Fatalf("expected first-seen order A, C; got %q, %q", got[0].Label, got[1].Label)
	}
}

func TestDedupeThresholdIsExclusive(t *testing.T) {
	// Squared distance exactly at the threshold keeps both points.
	places := []Place{
		{Label: "A", Lat: 0, Lon: 0},
		{Label: "B", Lat: 1, Lon: 1},
	}
	if got := Dedupe(places); len(got) != 2 {
		t.Fatalf("expected both candidates at the threshold, got %d", len(got))
	}
}

func TestDedupeIdempotent(t *testing.T) {
	places := []Place{
		{Label: "A", Lat: 0, Lon: 0},
		{Label: "B", Lat: 0.1, Lon: 0.1},
		{Label: "C", Lat: 50, Lon: 50},
	}
	once := Dedupe(places)
	twice := Dedupe(once)
	if len(once) != len(twice) {
		t.Fatalf("second pass changed the result: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("candidate %d changed: %+v -> %+v", i, once[i], twice[i])
		}
	}
}

func TestDedupeEmpty(t *testing.T) {
	if got := Dedupe(nil); len(got) != 0 {
		t.Fatalf("expected empty result, got %d", len(got))
	}
}
