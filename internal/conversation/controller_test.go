package conversation

import (
	"context"
	"errors"
	"testing"
	"time"

	"weatherbot/core/telegram/state"
	"weatherbot/internal/geo"
	"weatherbot/internal/location"
)

type fakeResolver struct {
	searchResults []geo.Place
	searchErr     error
	reverseLabel  string
	searchCalls   int
}

func (f *fakeResolver) Search(_ context.Context, _ string) ([]geo.Place, error) {
	f.searchCalls++
	return f.searchResults, f.searchErr
}

func (f *fakeResolver) Reverse(_ context.Context, _, _ float64) string {
	return f.reverseLabel
}

type fakeStore struct {
	records []location.Record
	err     error
}

func (f *fakeStore) Upsert(_ context.Context, rec location.Record) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

type fakeMessenger struct {
	texts   []string
	choices [][]Choice
}

func (f *fakeMessenger) SendText(_ int64, text string) error {
	f.texts = append(f.texts, text)
	return nil
}

func (f *fakeMessenger) SendChoices(_ int64, text string, options []Choice) error {
	f.texts = append(f.texts, text)
	f.choices = append(f.choices, options)
	return nil
}

func testTexts() Texts {
	return Texts{
		Inquiry:       "inquiry",
		Cancelled:     "cancelled",
		Timeout:       "timeout",
		RetryGuidance: "retry",
		WhichOne:      "which",
		NoneOfThose:   "none",
		NothingActive: "nothing",
	}
}

func newTestController(resolver *fakeResolver, store *fakeStore) (*Controller, *fakeMessenger) {
	ctrl := NewController(Config{}, state.NewMemoryManager(), resolver, store, testTexts())
	out := &fakeMessenger{}
	ctrl.SetMessenger(out)
	return ctrl, out
}

func lastText(t *testing.T, out *fakeMessenger) string {
	t.Helper()
	if len(out.texts) == 0 {
		t.Fatal("no messages sent")
	}
	return out.texts[len(out.texts)-1]
}

func TestStartSendsInquiry(t *testing.T) {
	ctrl, out := newTestController(&fakeResolver{}, &fakeStore{})
	if err := ctrl.Start(context.Background(), 1); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := lastText(t, out); got != "inquiry" {
		t.Fatalf("got %q", got)
	}
	if ctrl.ActiveSessions() != 1 {
		t.Fatalf("expected 1 active session, got %d", ctrl.ActiveSessions())
	}
}

func TestZeroCandidatesEndsDialogue(t *testing.T) {
	ctrl, out := newTestController(&fakeResolver{}, &fakeStore{})
	_ = ctrl.Start(context.Background(), 1)

	if err := ctrl.HandleText(context.Background(), 1, "nowhere"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if got := lastText(t, out); got != "cancelled" {
		t.Fatalf("got %q", got)
	}
	if len(out.choices) != 0 {
		t.Fatal("clarification must not be entered with zero candidates")
	}
	if ctrl.ActiveSessions() != 0 {
		t.Fatalf("expected dialogue to end, %d active", ctrl.ActiveSessions())
	}
}

func TestSearchErrorEndsDialogue(t *testing.T) {
	resolver := &fakeResolver{searchErr: errors.New("boom")}
	ctrl, out := newTestController(resolver, &fakeStore{})
	_ = ctrl.Start(context.Background(), 1)

	if err := ctrl.HandleText(context.Background(), 1, "anywhere"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if got := lastText(t, out); got != "cancelled" {
		t.Fatalf("got %q", got)
	}
	if ctrl.ActiveSessions() != 0 {
		t.Fatal("dialogue must end on upstream failure")
	}
}

func TestClarificationAndSelection(t *testing.T) {
	resolver := &fakeResolver{searchResults: []geo.Place{
		{Label: "Springfield, Illinois, USA", Lat: 39.80, Lon: -89.64},
		{Label: "Springfield, Missouri, USA", Lat: 37.21, Lon: -93.30},
	}}
	store := &fakeStore{}
	ctrl, out := newTestController(resolver, store)
	_ = ctrl.Start(context.Background(), 1)

	if err := ctrl.HandleText(context.Background(), 1, "springfield"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if len(out.choices) != 1 {
		t.Fatalf("expected one choice prompt, got %d", len(out.choices))
	}
	options := out.choices[0]
	if len(options) != 3 {
		t.Fatalf("expected 2 candidates plus cancel, got %d", len(options))
	}
	last := options[len(options)-1]
	if last.Label != "none" || last.Index != CancelSelection {
		t.Fatalf("unexpected cancel option: %+v", last)
	}

	if err := ctrl.HandleSelection(context.Background(), 1, 1); err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.records))
	}
	rec := store.records[0]
	if rec.UserID != 1 || rec.Label != "Springfield, Missouri, USA" || rec.Lat != 37.21 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if got := lastText(t, out); got != NewLocationMessage(37.21, -93.30, rec.Label) {
		t.Fatalf("got %q", got)
	}
	if ctrl.ActiveSessions() != 0 {
		t.Fatal("dialogue must end after a selection")
	}
}

func TestNoneOfThoseClearsWithoutStoring(t *testing.T) {
	resolver := &fakeResolver{searchResults: []geo.Place{{Label: "A", Lat: 1, Lon: 1}}}
	store := &fakeStore{}
	ctrl, out := newTestController(resolver, store)
	_ = ctrl.Start(context.Background(), 1)
	_ = ctrl.HandleText(context.Background(), 1, "a")

	if err := ctrl.HandleSelection(context.Background(), 1, CancelSelection); err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(store.records) != 0 {
		t.Fatal("nothing may be stored on cancel")
	}
	if got := lastText(t, out); got != "retry" {
		t.Fatalf("got %q", got)
	}
	if ctrl.ActiveSessions() != 0 {
		t.Fatal("dialogue must end")
	}
}

func TestOutOfRangeSelectionIgnored(t *testing.T) {
	resolver := &fakeResolver{searchResults: []geo.Place{{Label: "A", Lat: 1, Lon: 1}}}
	store := &fakeStore{}
	ctrl, out := newTestController(resolver, store)
	_ = ctrl.Start(context.Background(), 1)
	_ = ctrl.HandleText(context.Background(), 1, "a")
	sent := len(out.texts)

	if err := ctrl.HandleSelection(context.Background(), 1, 7); err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(out.texts) != sent {
		t.Fatal("out-of-range selection must be silent")
	}
	if len(store.records) != 0 {
		t.Fatal("nothing may be stored")
	}
	if ctrl.ActiveSessions() != 1 {
		t.Fatal("dialogue must stay open")
	}
}

func TestSelectionOutsideDialogueIgnored(t *testing.T) {
	store := &fakeStore{}
	ctrl, out := newTestController(&fakeResolver{}, store)

	if err := ctrl.HandleSelection(context.Background(), 1, 0); err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(out.texts) != 0 || len(store.records) != 0 {
		t.Fatal("stale selection must do nothing")
	}
}

func TestGeotagStoresLocation(t *testing.T) {
	resolver := &fakeResolver{reverseLabel: "New York, USA"}
	store := &fakeStore{}
	ctrl, out := newTestController(resolver, store)
	_ = ctrl.Start(context.Background(), 1)

	if err := ctrl.HandleGeotag(context.Background(), 1, 40.71, -74.00); err != nil {
		t.Fatalf("HandleGeotag: %v", err)
	}
	if len(store.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.records))
	}
	rec := store.records[0]
	if rec.Lat != 40.71 || rec.Lon != -74.00 || rec.Label != "New York, USA" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	want := "Your new location has latitude 40.71 and longitude -74.00.\n\nThis point is in New York, USA."
	if got := lastText(t, out); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if ctrl.ActiveSessions() != 0 {
		t.Fatal("dialogue must end after a geotag")
	}
}

func TestCoordinateTextActsAsGeotag(t *testing.T) {
	resolver := &fakeResolver{reverseLabel: ""}
	store := &fakeStore{}
	ctrl, out := newTestController(resolver, store)
	_ = ctrl.Start(context.Background(), 1)

	if err := ctrl.HandleText(context.Background(), 1, "40.71, -74.00"); err != nil {
		t.Fatalf("HandleText: %v", err)
	}
	if resolver.searchCalls != 0 {
		t.Fatal("coordinate text must bypass the forward search")
	}
	if len(store.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(store.records))
	}
	if got := lastText(t, out); got != "Your new location has latitude 40.71 and longitude -74.00." {
		t.Fatalf("got %q", got)
	}
}

func TestCancelWithoutDialogue(t *testing.T) {
	ctrl, out := newTestController(&fakeResolver{}, &fakeStore{})
	if err := ctrl.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := lastText(t, out); got != "nothing" {
		t.Fatalf("got %q", got)
	}
}

func TestRestartOverwritesDialogue(t *testing.T) {
	resolver := &fakeResolver{searchResults: []geo.Place{{Label: "A", Lat: 1, Lon: 1}}}
	store := &fakeStore{}
	ctrl, out := newTestController(resolver, store)
	_ = ctrl.Start(context.Background(), 1)
	_ = ctrl.HandleText(context.Background(), 1, "a")

	// Restart while awaiting clarification drops the pending candidates.
	_ = ctrl.Start(context.Background(), 1)
	sent := len(out.texts)
	if err := ctrl.HandleSelection(context.Background(), 1, 0); err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(out.texts) != sent || len(store.records) != 0 {
		t.Fatal("selection after restart must be ignored")
	}
	if ctrl.ActiveSessions() != 1 {
		t.Fatal("restarted dialogue must stay open")
	}
}

func TestSweepClosesExpiredClarification(t *testing.T) {
	resolver := &fakeResolver{searchResults: []geo.Place{{Label: "A", Lat: 1, Lon: 1}}}
	store := &fakeStore{}
	ctrl, out := newTestController(resolver, store)
	ctrl.timeout = 10 * time.Millisecond
	_ = ctrl.Start(context.Background(), 1)
	_ = ctrl.HandleText(context.Background(), 1, "a")
	time.Sleep(25 * time.Millisecond)

	if closed := ctrl.sweepExpired(context.Background()); closed != 1 {
		t.Fatalf("expected 1 expired dialogue, got %d", closed)
	}
	if got := lastText(t, out); got != "timeout" {
		t.Fatalf("got %q", got)
	}
	if ctrl.ActiveSessions() != 0 {
		t.Fatal("dialogue must be closed")
	}

	// The stashed candidates are gone with the session: a late button
	// press stores nothing and stays silent.
	sent := len(out.texts)
	if err := ctrl.HandleSelection(context.Background(), 1, 0); err != nil {
		t.Fatalf("HandleSelection: %v", err)
	}
	if len(out.texts) != sent || len(store.records) != 0 {
		t.Fatal("selection after expiry must do nothing")
	}
}

func TestSweepClosesExpiredDialogues(t *testing.T) {
	ctrl, out := newTestController(&fakeResolver{}, &fakeStore{})
	ctrl.timeout = 10 * time.Millisecond
	_ = ctrl.Start(context.Background(), 1)
	_ = ctrl.Start(context.Background(), 2)
	time.Sleep(25 * time.Millisecond)
	_ = ctrl.Start(context.Background(), 3)

	closed := ctrl.sweepExpired(context.Background())
	if closed != 2 {
		t.Fatalf("expected 2 expired dialogues, got %d", closed)
	}
	if ctrl.ActiveSessions() != 1 {
		t.Fatalf("expected 1 surviving dialogue, got %d", ctrl.ActiveSessions())
	}
	if got := lastText(t, out); got != "timeout" {
		t.Fatalf("got %q", got)
	}
}
