package bot

import (
	"context"
	"strings"
	"testing"

	tele "gopkg.in/telebot.v4"

	"weatherbot/core/telegram/state"
	"weatherbot/internal/conversation"
	"weatherbot/internal/geo"
	"weatherbot/internal/location"
	"weatherbot/internal/weather"
)

// stubContext covers the tele.Context surface the command handlers touch.
// Unimplemented methods panic via the embedded nil interface.
type stubContext struct {
	tele.Context
	sender *tele.User
	data   map[string]interface{}
	sent   []string
}

func newStubContext(userID int64) *stubContext {
	return &stubContext{
		sender: &tele.User{ID: userID},
		data:   make(map[string]interface{}),
	}
}

func (s *stubContext) Sender() *tele.User  { return s.sender }
func (s *stubContext) Chat() *tele.Chat    { return nil }
func (s *stubContext) Update() tele.Update { return tele.Update{} }

func (s *stubContext) Get(key string) interface{} { return s.data[key] }

func (s *stubContext) Set(key string, value interface{}) { s.data[key] = value }

func (s *stubContext) Send(what interface{}, _ ...interface{}) error {
	if text, ok := what.(string); ok {
		s.sent = append(s.sent, text)
	}
	return nil
}

type nullResolver struct{}

func (nullResolver) Search(context.Context, string) ([]geo.Place, error) { return nil, nil }
func (nullResolver) Reverse(context.Context, float64, float64) string    { return "" }

type nullStore struct{}

func (nullStore) Upsert(context.Context, location.Record) error { return nil }

type recordingMessenger struct {
	texts []string
}

func (m *recordingMessenger) SendText(_ int64, text string) error {
	m.texts = append(m.texts, text)
	return nil
}

func (m *recordingMessenger) SendChoices(_ int64, text string, _ []conversation.Choice) error {
	m.texts = append(m.texts, text)
	return nil
}

func newTestApp() (*App, state.Manager, *recordingMessenger) {
	sessions := state.NewMemoryManager()
	ctrl := conversation.NewController(conversation.Config{}, sessions, nullResolver{}, nullStore{}, dialogueTexts())
	out := &recordingMessenger{}
	ctrl.SetMessenger(out)
	return &App{svc: &services{sessions: sessions, ctrl: ctrl}}, sessions, out
}

func TestStartCommandEntersDialogue(t *testing.T) {
	app, sessions, out := newTestApp()
	c := newStubContext(42)

	if err := app.onStartCommand(c); err != nil {
		t.Fatalf("onStartCommand: %v", err)
	}
	if len(c.sent) == 0 || c.sent[0] != greetingText {
		t.Fatalf("expected greeting first, sent: %q", c.sent)
	}
	if got := sessions.GetState(42); got != conversation.StateAwaitingLocation {
		t.Fatalf("expected awaiting_location, got %q", got)
	}
	if len(out.texts) != 1 || out.texts[0] != locationInquiryText {
		t.Fatalf("expected location inquiry, got %q", out.texts)
	}
}

func TestSetLocationCommandEntersDialogue(t *testing.T) {
	app, sessions, _ := newTestApp()
	c := newStubContext(7)

	if err := app.onSetLocation(c); err != nil {
		t.Fatalf("onSetLocation: %v", err)
	}
	if got := sessions.GetState(7); got != conversation.StateAwaitingLocation {
		t.Fatalf("expected awaiting_location, got %q", got)
	}
}

func TestWeatherReportUsesConditionGroup(t *testing.T) {
	got := weatherReport(weather.Reading{
		ConditionCodes:       []int{500},
		ConditionMain:        "Rain",
		ConditionDescription: "light intensity shower rain",
		TemperatureC:         11.5,
		FeelsLikeC:           9.8,
	})

	if !strings.HasPrefix(got, "Right now weather is Rain.") {
		t.Fatalf("expected condition group in the report, got %q", got)
	}
	if strings.Contains(got, "light intensity shower rain") {
		t.Fatalf("verbose description must not leak into the report: %q", got)
	}
	if !strings.Contains(got, "The temperature is 11.50°C, but it feels like 9.80°C.") {
		t.Fatalf("missing temperatures: %q", got)
	}
	if !strings.Contains(got, "My advice is to wear") {
		t.Fatalf("missing advice block: %q", got)
	}
}
