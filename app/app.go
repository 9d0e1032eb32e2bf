// Package app wires configuration, backends, services and HTTP routing into
// one explicit application context.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"helmet-store/cache"
	"helmet-store/config"
	"helmet-store/controllers"
	"helmet-store/metrics"
	"helmet-store/middleware"
	"helmet-store/routes"
	"helmet-store/services"
	"helmet-store/store"
	"helmet-store/utils"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Store   store.Store
	Cache   cache.Cache
	Mailer  utils.Mailer
	Tokens  *utils.TokenIssuer
	Metrics *metrics.Metrics
	Router  http.Handler

	closers []func(context.Context) error
}

// Deps holds already constructed backends. Nil fields get defaults: an
// in-memory store, no cache and no mail.
type Deps struct {
	Store  store.Store
	Cache  cache.Cache
	Mailer utils.Mailer
}

// New connects the configured backends and builds the application. Redis is
// optional: when it cannot be reached the catalog runs uncached.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	var (
		deps    Deps
		closers []func(context.Context) error
	)

	switch cfg.Server.StoreDriver {
	case "memory":
		deps.Store = store.NewMemoryStore()
		log.Warn("using in-memory store, data is lost on restart")
	default:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		ms, err := store.ConnectMongo(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Transactions)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		indexCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = ms.EnsureIndexes(indexCtx)
		cancel()
		if err != nil {
			_ = ms.Close(ctx)
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		deps.Store = ms
		closers = append(closers, ms.Close)
		log.Info("Connected to MongoDB", zap.String("db_name", cfg.Mongo.Database))
	}

	if cfg.Redis.Disabled {
		deps.Cache = cache.Noop{}
	} else {
		rc := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rc.Ping(pingCtx)
		cancel()
		if err != nil {
			log.Warn("redis unavailable, product cache disabled", zap.String("addr", cfg.Redis.Addr()), zap.Error(err))
			_ = rc.Close()
			deps.Cache = cache.Noop{}
		} else {
			deps.Cache = rc
			closers = append(closers, func(context.Context) error { return rc.Close() })
			log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
		}
	}

	mailer, err := utils.NewMailer(cfg.Email.Provider, cfg.Email.PostmarkToken, cfg.Email.SendgridKey, cfg.Email.Sender)
	if err != nil {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i](ctx)
		}
		return nil, err
	}
	deps.Mailer = mailer

	a := NewWithDeps(cfg, log, deps)
	a.closers = closers
	return a, nil
}

// NewWithDeps builds the application around the given backends
func NewWithDeps(cfg *config.Config, log *zap.Logger, deps Deps) *App {
	if deps.Store == nil {
		deps.Store = store.NewMemoryStore()
	}
	if deps.Cache == nil {
		deps.Cache = cache.Noop{}
	}
	if deps.Mailer == nil {
		deps.Mailer = utils.NoopMailer{}
	}

	a := &App{
		Config:  cfg,
		Log:     log,
		Store:   deps.Store,
		Cache:   deps.Cache,
		Mailer:  deps.Mailer,
		Tokens:  utils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Metrics: metrics.New(),
	}

	authService := services.NewAuthService(a.Store.Users(), a.Tokens, log)
	catalogService := services.NewCatalogService(a.Store.Products(), a.Cache, cfg.Redis.TTL, a.Metrics, log)
	cartService := services.NewCartService(a.Store.Carts(), log)
	orderService := services.NewOrderService(a.Store, a.Mailer, a.Metrics, log)

	router := mux.NewRouter()
	router.Use(a.Metrics.Middleware)
	routes.RegisterRoutes(router, routes.Controllers{
		User:    controllers.NewUserController(authService, log),
		Product: controllers.NewProductController(catalogService, log),
		Cart:    controllers.NewCartController(cartService, log),
		Order:   controllers.NewOrderController(orderService, log),
		Debug:   controllers.NewDebugController(authService, log),
	}, routes.Options{
		Prefix:      cfg.Server.APIPrefix,
		Tokens:      a.Tokens,
		AuthLimiter: middleware.NewRateLimiter(cfg.Server.AuthRateLimit, cfg.Server.AuthRateBurst),
		DebugKey:    cfg.Auth.DebugKey,
		Metrics:     a.Metrics.Handler(),
		Ready:       controllers.Ready(a.Store, log),
	})
	if cfg.Auth.DebugKey != "" {
		log.Warn("debug routes mounted", zap.String("path", cfg.Server.APIPrefix+"/debug/promote"))
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.Server.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "x-debug-key"}),
	)
	a.Router = cors(middleware.TrustedProxies(cfg.Server.TrustedProxies)(middleware.LoggingMiddleware(log)(router)))
	return a
}

// Close releases backends in reverse order of acquisition
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
