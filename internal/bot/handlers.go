package bot

import (
	"errors"
	"fmt"

	tele "gopkg.in/telebot.v4"

	coretelegram "weatherbot/core/telegram"
	"weatherbot/core/telegram/callbacks"
	"weatherbot/core/telegram/commands"
	"weatherbot/core/telegram/format"
	tghelpers "weatherbot/core/telegram/helpers"
	"weatherbot/core/telegram/middleware"
	"weatherbot/core/telegram/state"
	"weatherbot/core/telegram/ui"
	"weatherbot/internal/advice"
	"weatherbot/internal/conversation"
	"weatherbot/internal/location"
	"weatherbot/internal/weather"
)

var _ ui.FallbackProvider = (*App)(nil)

// stateAdapter narrows state.Manager to the string-based guard interface.
type stateAdapter struct {
	mgr state.Manager
}

func (a stateAdapter) GetState(userID int64) string {
	return string(a.mgr.GetState(userID))
}

func (a *App) registerCommands(reg *coretelegram.Registry) {
	reg.RegisterCommand("/start", commands.Command{
		Handler:     a.onStartCommand,
		Description: "What this bot can do",
	})
	reg.RegisterCommand("/set_location", commands.Command{
		Handler:     a.onSetLocation,
		Description: "Set or update your location",
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     a.onCancel,
		Description: "Cancel the current dialogue",
	})
	reg.RegisterCommand("/my_location", commands.Command{
		Handler:     a.onMyLocation,
		Description: "Show your saved location",
	})
	reg.RegisterCommand("/current_weather", commands.Command{
		Handler:     a.onCurrentWeather,
		Description: "Current weather and outerwear advice",
		Aliases:     []string{"weather"},
	})
	reg.RegisterCommand("/stats", commands.Command{
		Handler:     a.onStats,
		Description: "Runtime counters",
		AdminOnly:   true,
		Hidden:      true,
	})
}

// onStartCommand greets the user and opens the set-location dialogue;
// /start and /set_location are both entry points.
func (a *App) onStartCommand(c tele.Context) error {
	if err := tghelpers.SendText(c, greetingText); err != nil {
		return err
	}
	ctx := tghelpers.WithHandler(c, "start")
	return a.svc.ctrl.Start(ctx, c.Sender().ID)
}

func (a *App) onSetLocation(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "set_location")
	return a.svc.ctrl.Start(ctx, c.Sender().ID)
}

func (a *App) onCancel(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cancel")
	return a.svc.ctrl.Cancel(ctx, c.Sender().ID)
}

func (a *App) onMyLocation(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "my_location")
	rec, err := tghelpers.StoredLocation[location.Record](ctx, a.svc.store, c.Sender().ID)
	if err != nil {
		if errors.Is(err, location.ErrNotFound) {
			return tghelpers.SendText(c, locationNotSetText)
		}
		return tghelpers.SendText(c, cancellationText)
	}
	if rec.Label == "" {
		place := fmt.Sprintf("%.2f, %.2f", rec.Lat, rec.Lon)
		return tghelpers.SendText(c, fmt.Sprintf(myLocationTemplate, place))
	}
	escaped, err := format.EscapeMarkdown(rec.Label, format.MarkdownV1, "")
	if err != nil {
		return tghelpers.SendText(c, fmt.Sprintf(myLocationTemplate, rec.Label))
	}
	return tghelpers.SendMD(c, fmt.Sprintf(myLocationTemplate, "*"+escaped+"*"))
}

func (a *App) onCurrentWeather(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "current_weather")
	rec, err := tghelpers.StoredLocation[location.Record](ctx, a.svc.store, c.Sender().ID)
	if err != nil {
		if errors.Is(err, location.ErrNotFound) {
			return tghelpers.SendText(c, locationNotSetText)
		}
		return tghelpers.SendText(c, cancellationText)
	}

	reading, err := a.svc.weather.Current(ctx, rec.Lat, rec.Lon)
	if err != nil {
		return tghelpers.SendText(c, cancellationText)
	}
	return tghelpers.SendText(c, weatherReport(reading))
}

// weatherReport renders the condition group (not the verbose description),
// the temperatures and the outerwear advice.
func weatherReport(r weather.Reading) string {
	report := fmt.Sprintf(currentWeatherTemplate,
		r.ConditionMain, r.TemperatureC, r.FeelsLikeC)
	return report + "\n\n" + advice.Outerwear(r)
}

func (a *App) onStats(c tele.Context) error {
	var sendErrors uint64
	if a.dispatcher != nil {
		sendErrors = a.dispatcher.ErrorCount()
	}
	return tghelpers.SendText(c, fmt.Sprintf(
		"Active dialogues: %d\nFailed sends: %d",
		a.svc.ctrl.ActiveSessions(), sendErrors,
	))
}

// onLocationPick resolves a clarification button press. The state guard
// drops stale presses, for example after a timeout or a restarted dialogue.
func (a *App) onLocationPick() tele.HandlerFunc {
	guard := middleware.State(stateAdapter{mgr: a.svc.sessions}, string(conversation.StateAwaitingClarification))
	return guard(func(c tele.Context) error {
		ctx := tghelpers.WithHandler(c, "location_pick")
		index, err := callbacks.PayloadInt(c)
		if err != nil {
			return nil
		}
		return a.svc.ctrl.HandleSelection(ctx, c.Sender().ID, index)
	})
}

// onDialogueMessage handles updates routed to the awaiting_location state:
// a geotag goes straight to storage, anything else is treated as a query.
func (a *App) onDialogueMessage(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "dialogue_message")
	userID := c.Sender().ID
	if msg := c.Message(); msg != nil && msg.Location != nil {
		return a.svc.ctrl.HandleGeotag(ctx, userID, float64(msg.Location.Lat), float64(msg.Location.Lng))
	}
	return a.svc.ctrl.HandleText(ctx, userID, c.Text())
}

// UnknownText replies to text that matches no command and no dialogue.
func (a *App) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, unknownTextReply)
	}
}

// UnknownLocation replies to a geotag sent outside the dialogue.
func (a *App) UnknownLocation() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendText(c, unexpectedLocationText)
	}
}

// UnknownCallback acknowledges callbacks with no registered handler.
func (a *App) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: "Nothing to do here"})
	}
}
