// Package app assembles the service from configuration: stores, the shared
// project locks, the notification pipeline, every module and the router.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mintgate/internal/authority"
	jwttoken "mintgate/internal/jwt_token"
	"mintgate/internal/ledger"
	minterhandler "mintgate/internal/minter/handler"
	mintermetrics "mintgate/internal/minter/metrics"
	mintermodels "mintgate/internal/minter/models"
	minterservice "mintgate/internal/minter/service"
	"mintgate/internal/platform/config"
	"mintgate/internal/platform/kafka"
	platformmetrics "mintgate/internal/platform/metrics"
	"mintgate/internal/platform/postgres"
	redisclient "mintgate/internal/platform/redis"
	projecthandler "mintgate/internal/project/handler"
	projectmetrics "mintgate/internal/project/metrics"
	projectservice "mintgate/internal/project/service"
	projectstore "mintgate/internal/project/store"
	ratelimitmetrics "mintgate/internal/ratelimit/metrics"
	ratelimit "mintgate/internal/ratelimit/middleware"
	"mintgate/internal/ratelimit/store/bucket"
	registryhandler "mintgate/internal/registry/handler"
	registrymetrics "mintgate/internal/registry/metrics"
	registryservice "mintgate/internal/registry/service"
	registrystore "mintgate/internal/registry/store"
	httptransport "mintgate/internal/transport/http"
	"mintgate/pkg/domain"
	"mintgate/pkg/platform/audit/publisher"
	auditmemory "mintgate/pkg/platform/audit/store/memory"
	"mintgate/pkg/platform/circuit"
	"mintgate/pkg/platform/keylock"
)

// Bearer tokens are issued and checked with these claims.
const (
	TokenIssuer   = "mintgate"
	TokenAudience = "mintgate-api"
)

// projectStore is what every module needs from the project backend.
type projectStore interface {
	ledger.Store
	projectservice.Store
}

// App is a fully wired service.
type App struct {
	Handler   http.Handler
	Tokens    *jwttoken.JWTService
	Ledger    *ledger.Core
	Policy    *projectservice.Service
	Registry  *registryservice.Service
	Engine    *minterservice.Engine
	Publisher *publisher.Publisher

	logger  *slog.Logger
	redis   *redisclient.Client
	closers []func(context.Context) error
}

type Option func(*options)

type options struct {
	registry *prometheus.Registry
	version  string
}

// WithPrometheusRegistry registers every collector on reg and serves /metrics
// from it. Without it the default registerer is used.
func WithPrometheusRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

func WithVersion(version string) Option {
	return func(o *options) {
		o.version = version
	}
}

// New connects the configured backends and wires the modules. On error every
// backend opened so far is closed again.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (_ *App, err error) {
	o := options{version: "dev"}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{logger: logger}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	superAdmin, err := domain.ParseAddress(cfg.Auth.SuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("super admin: %w", err)
	}
	catalogue, err := mintermodels.ParseTokenMinters(cfg.Minters.Tokens)
	if err != nil {
		return nil, err
	}
	if domain.ProjectID(cfg.Ledger.StartingProjectID) > ledger.MaxProjectID {
		return nil, fmt.Errorf("ledger.startingProjectID must be at most %d", ledger.MaxProjectID)
	}

	var reg prometheus.Registerer = prometheus.DefaultRegisterer
	metricsHandler := platformmetrics.Handler()
	if o.registry != nil {
		reg = o.registry
		metricsHandler = promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
	}
	httpMetrics := platformmetrics.NewWithRegisterer(reg)
	httpMetrics.SetBuildInfo(o.version)

	checks := map[string]httptransport.HealthCheck{}

	projects, err := a.openProjectStore(ctx, cfg, checks)
	if err != nil {
		return nil, err
	}
	registryStore, err := a.openRegistryStore(ctx, cfg, checks)
	if err != nil {
		return nil, err
	}

	publisherOpts := []publisher.Option{
		publisher.WithLogger(logger),
		publisher.WithAsyncBuffer(cfg.Ledger.AuditBuffer),
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := kafka.NewProducer(ctx, cfg.Kafka, kafka.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("kafka: %w", err)
		}
		a.closers = append(a.closers, producer.Close)
		checks["kafka"] = producer.Health
		publisherOpts = append(publisherOpts,
			publisher.WithSink(producer),
			publisher.WithSinkBreaker(circuit.WithCooldown(cfg.Kafka.BreakerCooldown)),
		)
	}
	a.Publisher = publisher.NewPublisher(auditmemory.NewInMemoryStore(), publisherOpts...)
	// Registered after the producer so queued events drain before it closes.
	a.closers = append(a.closers, func(context.Context) error {
		a.Publisher.Close()
		return nil
	})

	locks := keylock.New[domain.ProjectID]()
	roles := authority.New(superAdmin, projects)

	a.Ledger = ledger.NewCore(projects, roles,
		ledger.WithLogger(logger),
		ledger.WithAuditPublisher(a.Publisher),
		ledger.WithMetrics(ledger.NewMetricsWithRegisterer(reg)),
		ledger.WithProjectLocks(locks),
		ledger.WithNativeCurrency(cfg.Ledger.NativeSymbol),
		ledger.WithStartingProjectID(domain.ProjectID(cfg.Ledger.StartingProjectID)),
	)
	a.Policy = projectservice.New(projects, roles,
		projectservice.WithLogger(logger),
		projectservice.WithNativeSymbol(cfg.Ledger.NativeSymbol),
		projectservice.WithAuditPublisher(a.Publisher),
		projectservice.WithMetrics(projectmetrics.NewWithRegisterer(reg)),
		projectservice.WithProjectLocks(locks),
	)
	a.Registry = registryservice.New(registryStore, roles, projects,
		registryservice.WithLogger(logger),
		registryservice.WithAuditPublisher(a.Publisher),
		registryservice.WithMetrics(registrymetrics.NewWithRegisterer(reg)),
		registryservice.WithProjectLocks(locks),
	)
	a.Engine = minterservice.NewEngine(a.Registry, a.Policy, a.Ledger,
		minterservice.WithLogger(logger),
		minterservice.WithNativeSymbol(cfg.Ledger.NativeSymbol),
		minterservice.WithAuditPublisher(a.Publisher),
		minterservice.WithMetrics(mintermetrics.NewWithRegisterer(reg)),
		minterservice.WithProjectLocks(locks),
		minterservice.WithCatalogue(catalogue),
	)

	var buckets ratelimit.BucketStore = bucket.NewInMemoryBucketStore()
	if a.redis != nil {
		buckets = bucket.NewRedisBucketStore(a.redis.Client)
	}
	limiter := ratelimit.New(buckets, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger,
		ratelimit.WithDisabled(!cfg.RateLimit.Enabled),
		ratelimit.WithMetrics(ratelimitmetrics.NewWithRegisterer(reg)),
	)

	a.Tokens = jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, TokenIssuer, TokenAudience)

	a.Handler = httptransport.NewRouter(httptransport.Options{
		Logger:  logger,
		Metrics: httpMetrics,
		Handlers: []httptransport.Registrar{
			projecthandler.New(a.Ledger, a.Policy, logger, a.Tokens),
			registryhandler.New(a.Registry, logger, a.Tokens),
			minterhandler.New(a.Engine, a.Policy, logger, a.Tokens,
				minterhandler.WithPurchaseLimit(limiter.PerCaller("purchase"))),
		},
		Checks:         checks,
		MetricsHandler: metricsHandler,
	})

	logger.InfoContext(ctx, "service wired",
		"project_store", cfg.Storage.Projects,
		"registry_store", cfg.Storage.Registry,
		"kafka", len(cfg.Kafka.Brokers) > 0,
		"token_minters", len(cfg.Minters.Tokens),
		"rate_limit", cfg.RateLimit.Enabled,
	)
	return a, nil
}

func (a *App) openProjectStore(ctx context.Context, cfg *config.Config, checks map[string]httptransport.HealthCheck) (projectStore, error) {
	if cfg.Storage.Projects != config.BackendPostgres {
		return projectstore.NewInMemory(), nil
	}
	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeDB(db))
	if err := postgres.Migrate(ctx, db); err != nil {
		return nil, err
	}
	checks["postgres"] = db.PingContext
	return projectstore.NewPostgres(db), nil
}

func (a *App) openRegistryStore(ctx context.Context, cfg *config.Config, checks map[string]httptransport.HealthCheck) (registryservice.Store, error) {
	if cfg.Storage.Registry != config.BackendRedis {
		return registrystore.NewInMemory(), nil
	}
	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	checks["redis"] = client.Health
	a.redis = client
	return registrystore.NewRedis(client.Client, registrystore.WithKeyPrefix(cfg.Redis.KeyPrefix)), nil
}

func closeDB(db *sql.DB) func(context.Context) error {
	return func(context.Context) error { return db.Close() }
}

// Close releases backends in reverse order of acquisition.
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
