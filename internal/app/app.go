package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/medli/medli-api/config"
	"github.com/medli/medli-api/internal/container"
	pginfra "github.com/medli/medli-api/internal/infrastructure/postgres"
	"github.com/medli/medli-api/internal/infrastructure/search"
	"github.com/medli/medli-api/internal/router"
	"github.com/medli/medli-api/pkg/helpers"
	"github.com/medli/medli-api/pkg/validation"
)

type shutdownHook struct {
	name string
	fn   func(ctx context.Context) error
}

// App owns the HTTP server and every connection opened for it.
// Connections are released in reverse order of opening on Shutdown.
type App struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Container *container.Container
	Server    *http.Server

	hooks []shutdownHook
}

// New connects the backends, runs migrations and builds the HTTP server.
// Postgres is required. Redis, RabbitMQ, Elasticsearch and GCS degrade to
// disabled features when they cannot be reached.
func New(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}
	if err := a.connect(ctx); err != nil {
		_ = a.runHooks(context.Background())
		return nil, err
	}

	validation.Init()
	gin.SetMode(cfg.GinMode)
	a.Server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.NewEngine(a.Container),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

func (a *App) connect(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger
	c := &container.Container{Config: cfg, Logger: logger}
	a.Container = c

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	a.OnShutdown("postgres", func(context.Context) error { pool.Close(); return nil })
	c.DB = pool

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	a.OnShutdown("redis", func(context.Context) error { return rdb.Close() })
	if err := helpers.PingRedis(ctx, rdb); err != nil {
		helpers.LogWarn(logger, "redis unavailable; rate limits and identity cache are bypassed", err, nil)
	}
	c.Redis = rdb

	c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpire)

	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			helpers.LogWarn(logger, "rabbitmq unavailable; notification emails disabled", err, nil)
		} else {
			a.OnShutdown("rabbitmq", func(context.Context) error { return pub.Close() })
			c.Rabbit = pub
		}
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err == nil {
			err = helpers.PingES(ctx, es)
		}
		if err == nil {
			err = search.NewRecordingIndex(es, cfg.ESRecordingsIndex).EnsureIndex(ctx)
		}
		if err != nil {
			helpers.LogWarn(logger, "elasticsearch unavailable; recording search uses the database", err, nil)
		} else {
			c.ES = es
		}
	}

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			helpers.LogWarn(logger, "gcs unavailable; export archives disabled", err, logrus.Fields{"bucket": cfg.GCSBucket})
		} else {
			a.OnShutdown("gcs", func(context.Context) error { return gcs.Close() })
			c.GCS = gcs
		}
	}
	return nil
}

// OnShutdown registers fn to run during Shutdown, after the server has stopped.
func (a *App) OnShutdown(name string, fn func(ctx context.Context) error) {
	a.hooks = append(a.hooks, shutdownHook{name: name, fn: fn})
}

// Start serves HTTP in the background. The channel yields the listener error,
// or is closed once the server stops after Shutdown.
func (a *App) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		a.Logger.Infof("server starting on %s", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// Serve is Start on an existing listener.
func (a *App) Serve(ln net.Listener) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	return errCh
}

// Shutdown drains in-flight requests, then runs the hooks newest first.
// Every hook runs even when an earlier step failed; the errors are joined.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if err := a.runHooks(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) runHooks(ctx context.Context) error {
	var errs []error
	for i := len(a.hooks) - 1; i >= 0; i-- {
		h := a.hooks[i]
		if err := h.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", h.name, err))
			if a.Logger != nil {
				a.Logger.WithError(err).WithField("component", h.name).Warn("shutdown hook failed")
			}
		}
	}
	a.hooks = nil
	return errors.Join(errs...)
}
