package router

import (
	"time"

	"github.com/medli/medli-api/internal/application"
	"github.com/medli/medli-api/internal/container"
	repo "github.com/medli/medli-api/internal/domain/repository"
	pginfra "github.com/medli/medli-api/internal/infrastructure/postgres"
	handlers "github.com/medli/medli-api/internal/interface/http"
	"github.com/medli/medli-api/internal/interface/middleware"
	"github.com/medli/medli-api/internal/router/modules"
)

type AccountModuleDeps struct {
	Repo    repo.UserRepository
	Service *application.AccountService
	Handler *handlers.AuthHandler
}

type HealthModuleDeps struct {
	Repo    repo.HealthRecordRepository
	Service *application.HealthService
	Handler *handlers.HealthHandler
}

func buildAccountDeps(c *container.Container, index application.RecordingIndex) AccountModuleDeps {
	users := pginfra.NewUserRepository(c.DB)
	identity := application.NewIdentityCache(users, c.Redis, c.Config.IdentityCacheTTL, c.Logger)
	notifier := application.NewNotifier(c.Publisher(), c.Config.MailSendEnabled, c.Brand(), c.Logger)

	service := application.NewAccountService(users, c.JWT, identity, index, notifier, c.Logger)
	return AccountModuleDeps{
		Repo:    users,
		Service: service,
		Handler: handlers.NewAuthHandler(service, c.Logger),
	}
}

func buildHealthDeps(c *container.Container, index application.RecordingIndex) HealthModuleDeps {
	records := pginfra.NewHealthRecordRepository(c.DB)
	service := application.NewHealthService(records, index, c.ExportArchiver(), c.Logger)
	return HealthModuleDeps{
		Repo:    records,
		Service: service,
		Handler: handlers.NewHealthHandler(service, c.Logger),
	}
}

// InitModules builds every feature module from c and adds it to the registry.
func InitModules(r *Registry, c *container.Container) {
	index := c.RecordingIndex()
	account := buildAccountDeps(c, index)
	health := buildHealthDeps(c, index)

	guard := middleware.Auth(account.Service, c.Logger)
	authLimiter := middleware.RateLimit(c.Redis, middleware.RateLimitConfig{
		Max:            c.Config.AuthRateLimit,
		Window:         c.Config.AuthRateWindow,
		Key:            middleware.KeyByIP("auth"),
		Allow:          allowFunc(c),
		Message:        middleware.MsgTooManyAuthAttempts,
		SkipSuccessful: true,
		Logger:         c.Logger,
	})

	r.Add(modules.NewSystemModule(r.System))
	r.Add(modules.NewAuthModule(account.Handler, guard, authLimiter))
	r.Add(modules.NewHealthModule(health.Handler, guard))
	if c.Config.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(middleware.RateLimit(c.Redis, middleware.RateLimitConfig{
			Max:    120,
			Window: time.Minute,
			Key:    middleware.KeyByIP("debug"),
			Logger: c.Logger,
		})))
	}
}

func allowFunc(c *container.Container) middleware.AllowFunc {
	if c.Config.RateLimitAllowPrivate {
		return middleware.AllowPrivateIP()
	}
	return nil
}
