// Package conversation implements the set-location dialogue: a two-state
// machine per user that acquires a location by free text, coordinates or
// geotag, disambiguates geocoding candidates, and times out on inactivity.
package conversation

import (
	"context"
	"fmt"
	"time"

	"weatherbot/core/logger"
	tghelpers "weatherbot/core/telegram/helpers"
	"weatherbot/core/telegram/state"
	"weatherbot/internal/geo"
	"weatherbot/internal/location"

	"log/slog"
)

// Dialogue states. Sessions not in either state are idle.
const (
	StateAwaitingLocation      state.State = "awaiting_location"
	StateAwaitingClarification state.State = "awaiting_clarification"
)

// CancelSelection is the sentinel payload of the "none of those" option.
const CancelSelection = -1

const candidatesKey = "location_candidates"

// Config holds dialogue settings.
type Config struct {
	// ReplyTimeoutSeconds is the inactivity window after which an active
	// dialogue is closed; 0 falls back to 600.
	ReplyTimeoutSeconds int `yaml:"reply_timeout_seconds" envconfig:"CONV_REPLY_TIMEOUT_SECONDS"`
	// SweepIntervalSeconds controls how often stale sessions are swept;
	// 0 falls back to 30.
	SweepIntervalSeconds int `yaml:"sweep_interval_seconds" envconfig:"CONV_SWEEP_INTERVAL_SECONDS"`
}

// Texts collects the user-facing replies the controller sends.
type Texts struct {
	Inquiry       string
	Cancelled     string
	Timeout       string
	RetryGuidance string
	WhichOne      string
	NoneOfThose   string
	NothingActive string
}

// Choice is one selectable option of a disambiguation turn. Index is the
// candidate's position in the stashed list; CancelSelection marks the
// "none of those" option.
type Choice struct {
	Label string
	Index int
}

// Messenger delivers outbound replies. The transport layer provides the
// implementation; the controller never talks to Telegram directly.
type Messenger interface {
	SendText(userID int64, text string) error
	SendChoices(userID int64, text string, options []Choice) error
}

// Resolver is the geocoding dependency of the dialogue.
type Resolver interface {
	Search(ctx context.Context, query string) ([]geo.Place, error)
	Reverse(ctx context.Context, lat, lon float64) string
}

// LocationStore persists the confirmed location.
type LocationStore interface {
	Upsert(ctx context.Context, rec location.Record) error
}

// Controller owns all conversation sessions. Session state may only be
// mutated through it; terminating transitions always remove the session.
type Controller struct {
	sessions state.Manager
	resolver Resolver
	store    LocationStore
	out      Messenger
	texts    Texts
	timeout  time.Duration
	sweep    time.Duration
}

// NewController wires the dialogue over the given session manager and
// collaborators. The messenger may be attached later via SetMessenger
// when the transport is not up yet at construction time.
func NewController(cfg Config, sessions state.Manager, resolver Resolver, store LocationStore, texts Texts) *Controller {
	timeout := time.Duration(cfg.ReplyTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 600 * time.Second
	}
	sweep := time.Duration(cfg.SweepIntervalSeconds) * time.Second
	if sweep <= 0 {
		sweep = 30 * time.Second
	}
	return &Controller{
		sessions: sessions,
		resolver: resolver,
		store:    store,
		texts:    texts,
		timeout:  timeout,
		sweep:    sweep,
	}
}

// SetMessenger attaches the outbound transport.
func (c *Controller) SetMessenger(out Messenger) {
	c.out = out
}

// ActiveSessions reports the number of dialogues currently in progress.
func (c *Controller) ActiveSessions() int {
	return c.sessions.ActiveCount()
}

// Start opens (or restarts) the dialogue for a user. An active session is
// overwritten: state resets to awaiting_location and stashed candidates
// are discarded.
func (c *Controller) Start(ctx context.Context, userID int64) error {
	c.sessions.ClearTemp(userID, candidatesKey)
	c.sessions.SetState(userID, StateAwaitingLocation)
	logger.Info(ctx, "service.conversation", "dialogue.start",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
	)
	return c.send(userID, c.texts.Inquiry)
}

// Cancel closes an active dialogue on explicit user request.
func (c *Controller) Cancel(ctx context.Context, userID int64) error {
	if !c.sessions.HasState(userID) {
		return c.send(userID, c.texts.NothingActive)
	}
	c.end(ctx, userID, "cancelled")
	return c.send(userID, c.texts.Cancelled)
}

// HandleText processes a free-text message while awaiting a location.
// Text that parses as a coordinate pair is treated like a geotag;
// otherwise it is forward-geocoded and the user is asked to pick a
// candidate. Zero candidates or an upstream failure end the dialogue with
// a cancellation reply; clarification is never entered in that case.
func (c *Controller) HandleText(ctx context.Context, userID int64, text string) error {
	if c.sessions.GetState(userID) != StateAwaitingLocation {
		return nil
	}
	if lat, lon, ok := tghelpers.ParseLatLon(text); ok {
		return c.HandleGeotag(ctx, userID, lat, lon)
	}

	candidates, err := c.resolver.Search(ctx, text)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			logger.Warn(ctx, "service.conversation", "search.fail",
				slog.String("status", "fail"),
				slog.Int64("user_id", userID),
				slog.String("err", err.Error()),
			)
		}
		c.end(ctx, userID, "no_candidates")
		return c.send(userID, c.texts.Cancelled)
	}

	c.sessions.SetTemp(userID, candidatesKey, candidates)
	c.sessions.SetState(userID, StateAwaitingClarification)

	options := make([]Choice, 0, len(candidates)+1)
	for i, cand := range candidates {
		options = append(options, Choice{Label: cand.Label, Index: i})
	}
	options = append(options, Choice{Label: c.texts.NoneOfThose, Index: CancelSelection})

	logger.Info(ctx, "service.conversation", "dialogue.clarify",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.Int("candidates", len(candidates)),
	)
	return c.sendChoices(userID, c.texts.WhichOne, options)
}

// HandleGeotag stores a location received as coordinates, with a
// best-effort reverse-geocoded label (empty when the lookup fails).
func (c *Controller) HandleGeotag(ctx context.Context, userID int64, lat, lon float64) error {
	if c.sessions.GetState(userID) != StateAwaitingLocation {
		return nil
	}
	label := c.resolver.Reverse(ctx, lat, lon)
	rec := location.Record{UserID: userID, Lat: lat, Lon: lon, Label: label}
	if err := c.store.Upsert(ctx, rec); err != nil {
		c.end(ctx, userID, "store_fail")
		return c.send(userID, c.texts.Cancelled)
	}
	c.end(ctx, userID, "stored")
	return c.send(userID, NewLocationMessage(lat, lon, label))
}

// HandleSelection resolves a clarification pick by candidate index.
// Selections outside the clarification state, out of range, or after the
// candidates are gone are ignored; they must never crash the dialogue.
func (c *Controller) HandleSelection(ctx context.Context, userID int64, index int) error {
	if c.sessions.GetState(userID) != StateAwaitingClarification {
		return nil
	}
	if index == CancelSelection {
		c.end(ctx, userID, "none_of_those")
		return c.send(userID, c.texts.RetryGuidance)
	}

	stash, ok := c.sessions.GetTemp(userID, candidatesKey)
	if !ok {
		return nil
	}
	candidates, ok := stash.([]geo.Place)
	if !ok || index < 0 || index >= len(candidates) {
		logger.Debug(ctx, "service.conversation", "selection.ignored",
			slog.String("status", "skip"),
			slog.Int64("user_id", userID),
			slog.Int("count", index),
		)
		return nil
	}

	chosen := candidates[index]
	rec := location.Record{UserID: userID, Lat: chosen.Lat, Lon: chosen.Lon, Label: chosen.Label}
	if err := c.store.Upsert(ctx, rec); err != nil {
		c.end(ctx, userID, "store_fail")
		return c.send(userID, c.texts.Cancelled)
	}
	c.end(ctx, userID, "stored")
	return c.send(userID, NewLocationMessage(chosen.Lat, chosen.Lon, chosen.Label))
}

// end removes the session and its stashed candidates.
func (c *Controller) end(ctx context.Context, userID int64, outcome string) {
	c.sessions.Clear(userID)
	logger.Info(ctx, "service.conversation", "dialogue.end",
		slog.String("status", "ok"),
		slog.Int64("user_id", userID),
		slog.String("cause", outcome),
	)
}

func (c *Controller) send(userID int64, text string) error {
	if c.out == nil {
		return fmt.Errorf("conversation: messenger not attached")
	}
	return c.out.SendText(userID, text)
}

func (c *Controller) sendChoices(userID int64, text string, options []Choice) error {
	if c.out == nil {
		return fmt.Errorf("conversation: messenger not attached")
	}
	return c.out.SendChoices(userID, text, options)
}

// NewLocationMessage builds the confirmation reply with coordinates
// rounded to two decimals and the place label when one is known.
func NewLocationMessage(lat, lon float64, label string) string {
	msg := fmt.Sprintf("Your new location has latitude %.2f and longitude %.2f.", lat, lon)
	if label != "" {
		msg += fmt.Sprintf("\n\nThis point is in %s.", label)
	}
	return msg
}
