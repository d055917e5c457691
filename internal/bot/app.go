// Package bot wires the weather bot: configuration, service construction,
// command and callback handlers, and the Telegram runtime options.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"weatherbot/core/bootstrap"
	coretelegram "weatherbot/core/telegram"
	"weatherbot/core/telegram/router"
	tgsender "weatherbot/core/telegram/sender"
	"weatherbot/core/telegram/state"
	"weatherbot/internal/conversation"
	"weatherbot/internal/geo"
	"weatherbot/internal/location"
	"weatherbot/internal/weather"
)

// services groups the domain collaborators built by the service provider.
type services struct {
	geo      *geo.Client
	weather  *weather.Client
	store    *location.Store
	sessions state.Manager
	ctrl     *conversation.Controller
}

var serviceProvider bootstrap.TypedServiceProvider[*services] = bootstrap.TypedServiceProviderFunc[*services](buildServices)

func buildServices(_ context.Context, rawCfg interface{}, storage bootstrap.Storage) (*services, error) {
	cfg, ok := rawCfg.(*Config)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected config type %T", rawCfg)
	}
	db, ok := storage.(*sqlx.DB)
	if !ok {
		return nil, fmt.Errorf("bot: unexpected storage type %T", storage)
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}
	sessions := state.NewMemoryManager()
	store := location.NewStore(db)
	resolver := geo.NewClient(cfg.Geo, httpClient)
	return &services{
		geo:      resolver,
		weather:  weather.NewClient(cfg.Weather, httpClient),
		store:    store,
		sessions: sessions,
		ctrl:     conversation.NewController(cfg.Conversation, sessions, resolver, store, dialogueTexts()),
	}, nil
}

// App is the running application: configuration, storage and services.
type App struct {
	cfg *Config
	db  *sqlx.DB
	svc *services

	dispatcher *tgsender.Dispatcher
	stopReaper context.CancelFunc
}

// NewApp initializes infrastructure (logger, database, migrations) and
// builds the application services on top of it.
func NewApp(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	svc, err := serviceProvider.ProvideTyped(context.Background(), cfg, res.DB)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	return &App{cfg: cfg, db: res.DB, svc: svc}, nil
}

// TelegramRunOptions assembles the registry, middleware chain, routes and
// lifecycle hooks for the core Telegram runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := coretelegram.NewRegistry()
	a.registerCommands(reg)
	if err := reg.RegisterCallback(pickCallbackKey, a.onLocationPick()); err != nil {
		return coretelegram.RunOptions{}, err
	}
	reg.SetTextFallback(a.UnknownText())
	reg.SetCallbackNotFound(a.UnknownCallback())

	state.RegisterHandler(conversation.StateAwaitingLocation, a.onDialogueMessage)

	mws := coretelegram.DefaultMiddlewares(a.cfg.CoreConfig(), nil)
	mws = append(mws, coretelegram.Middleware{
		Name: "session",
		Use:  state.WithSession(a.svc.sessions),
	})

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID: a.cfg.Core.Telegram.AdminID,
	})
	routes = append(routes, router.TextRoutes(a.svc.sessions, reg, router.TextOptions{
		UnknownText:     a.UnknownText(),
		UnknownLocation: a.UnknownLocation(),
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: mws,
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

// onStart attaches the outbound transport to the dialogue controller and
// launches the session expiry sweeper. The sweeper is bound to its own
// context so onStop can terminate it before the bot goes away.
func (a *App) onStart(_ context.Context, rt coretelegram.Runtime) error {
	a.dispatcher = rt.Dispatcher
	a.svc.ctrl.SetMessenger(&telegramMessenger{bot: rt.Bot})

	reaperCtx, cancel := context.WithCancel(context.Background())
	a.stopReaper = cancel
	go a.svc.ctrl.Run(reaperCtx)
	return nil
}

func (a *App) onStop(_ context.Context, _ coretelegram.Runtime) error {
	if a.stopReaper != nil {
		a.stopReaper()
	}
	return a.db.Close()
}
